package minimaptext

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T, opt Options) *Recoverer {
	t.Helper()
	b := synth(t, darkBg, NewTemplate(opt.Weight), 48, sampleLines()...)
	opt.Logger = quietLogger()
	r := NewRecoverer(b, opt)
	require.NoError(t, r.Build())
	return r
}

func TestBuildRecoversSample(t *testing.T) {
	t.Parallel()
	for _, w := range []Weight{WeightNormal, WeightLight} {
		opt := DefaultOptions()
		opt.Weight = w
		r := buildSample(t, opt)

		assert.Equal(t, darkBg, r.Background)
		assert.Zero(t, r.Mismatches(), "weight %s", w)
		requireSound(t, r.Template, r.Background, r.Resolution)

		blank := Blank(r.Background)
		_, answered := r.Resolution.Answer[blank]
		_, credited := r.Resolution.Refer[blank]
		assert.False(t, answered)
		assert.False(t, credited)
		for _, p := range r.Pairs {
			assert.True(t, r.Resolution.Resolved(p), "%s", p)
		}

		lines := r.Lines
		src := sampleLines()
		require.Len(t, lines, len(src))
		for i, spans := range src {
			var sb strings.Builder
			for _, s := range spans {
				sb.WriteString(s.text)
			}
			want := strings.TrimRight(sb.String(), " ")
			assert.Len(t, lines[i], len(want), "line %d", i)
			assert.NotContains(t, lines[i], "?")
			for x := range len(want) {
				assert.Equal(t, want[x] == ' ', lines[i][x] == ' ', "line %d col %d", i, x)
			}
		}
		assert.True(t, strings.HasPrefix(lines[6], "    "))
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()
	a := buildSample(t, DefaultOptions())
	b := buildSample(t, DefaultOptions())
	assert.Equal(t, a.Pairs, b.Pairs)
	assert.Equal(t, a.Clusters, b.Clusters)
	assert.Equal(t, a.Lines, b.Lines)
	assert.Equal(t, a.ClusterImage.Pix, b.ClusterImage.Pix)
	assert.Equal(t, a.Resolution, b.Resolution)
}

func TestBuildIsolateComments(t *testing.T) {
	t.Parallel()
	opt := DefaultOptions()
	opt.IsolateComments = true
	r := buildSample(t, opt)
	assert.Zero(t, r.Mismatches())

	last := r.Clusters[len(r.Clusters)-1]
	assert.Contains(t, last, render(t, r.Template, darkBg, comment, '#'))
}

func TestFromImage(t *testing.T) {
	t.Parallel()
	_, err := FromImage(image.NewRGBA(image.Rect(0, 0, 4, 3)), DefaultOptions())
	assert.ErrorIs(t, err, ErrOddHeight)

	r, err := FromImage(image.NewRGBA(image.Rect(0, 0, 4, 2)), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Input.Lines())
	assert.Len(t, r.Template, 96)
}

func TestBuildStoresRenderedOutput(t *testing.T) {
	t.Parallel()
	r := buildSample(t, DefaultOptions())
	lines, img := Render(r.Input, r.Background, r.Resolution)
	assert.Equal(t, lines, r.Lines)
	require.NotNil(t, r.ClusterImage)
	assert.Equal(t, img.Pix, r.ClusterImage.Pix)
	assert.Equal(t, r.Input.W, r.ClusterImage.Bounds().Dx())
	assert.Equal(t, r.Input.H, r.ClusterImage.Bounds().Dy())

	cells := 0
	for _, spans := range sampleLines() {
		for _, sp := range spans {
			cells += len(sp.text) - strings.Count(sp.text, " ")
		}
	}
	total := 0
	for _, n := range r.CellCounts() {
		total += n
	}
	assert.Equal(t, cells, total)
	assert.NotContains(t, r.CellCounts(), r.Background)
}
