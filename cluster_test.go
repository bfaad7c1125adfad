package minimaptext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = Color{R: 230, G: 30, B: 30}
	green = Color{R: 30, G: 230, B: 30}
	blue  = Color{R: 30, G: 30, B: 230}
)

func render(t testing.TB, tmpl Template, bg, fg Color, ch byte) PixelPair {
	t.Helper()
	g, ok := tmpl.Glyph(ch)
	require.True(t, ok)
	return g.Render(bg, fg)
}

func clusterOf(clusters []Cluster, p PixelPair) int {
	for i, cl := range clusters {
		for _, q := range cl {
			if q == p {
				return i
			}
		}
	}
	return -1
}

func TestBuildClustersGroupsByColor(t *testing.T) {
	t.Parallel()
	tmpl := NewTemplate(WeightNormal)
	b := synth(t, darkBg, tmpl, 30,
		[]span{{red, "return"}, {blue, " nil"}},
		[]span{{blue, "if"}, {red, " err != nil {"}},
	)
	o := NewOracle(darkBg)
	pairs := Catalog(b, darkBg)
	clusters := BuildClusters(pairs, o)

	total := 0
	for _, cl := range clusters {
		total += len(cl)
	}
	assert.Equal(t, len(pairs), total)

	redCluster := clusterOf(clusters, render(t, tmpl, darkBg, red, 'r'))
	blueCluster := clusterOf(clusters, render(t, tmpl, darkBg, blue, 'n'))
	require.NotEqual(t, -1, redCluster)
	require.NotEqual(t, -1, blueCluster)
	assert.NotEqual(t, redCluster, blueCluster)
	for _, ch := range []byte("eturn!={") {
		assert.Equal(t, redCluster, clusterOf(clusters, render(t, tmpl, darkBg, red, ch)), "%q", ch)
	}
	for _, ch := range []byte("ilf") {
		assert.Equal(t, blueCluster, clusterOf(clusters, render(t, tmpl, darkBg, blue, ch)), "%q", ch)
	}
}

func TestBuildClustersMergeOrder(t *testing.T) {
	t.Parallel()
	tmpl := NewTemplate(WeightNormal)
	o := NewOracle(darkBg)
	r1 := render(t, tmpl, darkBg, red, 'M')
	r2 := render(t, tmpl, darkBg, red, 'a')
	b1 := render(t, tmpl, darkBg, blue, 'M')
	require.False(t, o.Compatible(r1, b1))

	clusters := BuildClusters([]PixelPair{r1, b1, r2}, o)
	assert.Equal(t, []Cluster{{b1}, {r2, r1}}, clusters)
}

func TestIsolateComments(t *testing.T) {
	t.Parallel()
	tmpl := NewTemplate(WeightNormal)
	b := synth(t, darkBg, tmpl, 24,
		[]span{{green, "# note"}},
		[]span{{blue, "func"}, {red, " main"}},
		[]span{{red, "x = 1 "}, {green, "# tail"}},
	)
	o := NewOracle(darkBg)
	clusters := BuildClusters(Catalog(b, darkBg), o)

	out, ok := IsolateComments(b, darkBg, clusters)
	require.True(t, ok)
	comment := out[len(out)-1]
	for _, ch := range []byte("#notetail") {
		assert.Contains(t, comment, render(t, tmpl, darkBg, green, ch), "%q", ch)
	}
	assert.NotContains(t, comment, Blank(darkBg))

	seen := make(map[PixelPair]int)
	for _, cl := range out {
		require.NotEmpty(t, cl)
		for _, p := range cl {
			seen[p]++
		}
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "%s", p)
	}
	assert.Len(t, seen, len(Catalog(b, darkBg)))
}

func TestIsolateCommentsWithoutComment(t *testing.T) {
	t.Parallel()
	tmpl := NewTemplate(WeightNormal)
	b := synth(t, darkBg, tmpl, 16,
		[]span{{blue, "func"}, {red, " main"}},
	)
	clusters := BuildClusters(Catalog(b, darkBg), NewOracle(darkBg))
	out, ok := IsolateComments(b, darkBg, clusters)
	assert.False(t, ok)
	assert.Equal(t, clusters, out)
}
