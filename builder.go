package minimaptext

import (
	"image"

	"github.com/sirupsen/logrus"
)

type Options struct {
	// Font weight the minimap was rendered with. Picks the coverage table.
	Weight Weight
	// Coverage table override. Nil uses NewTemplate(Weight).
	Template Template
	// Split line comments into their own cluster before assignment.
	// Helps when comment text sits on the same color ray as other tokens;
	// a no-op when no line looks like a comment.
	IsolateComments bool
	// Receives progress and the chosen colors. Nil uses the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

func DefaultOptions() Options {
	return Options{
		Weight: WeightNormal,
		Logger: logrus.StandardLogger(),
	}
}

// Recoverer holds every stage of one minimap recovery.
type Recoverer struct {
	Input      *Buffer
	Template   Template
	Background Color
	Pairs      []PixelPair
	Clusters   []Cluster
	Resolution *Resolution
	// Lines is the recovered text, trailing spaces trimmed.
	Lines []string
	// ClusterImage paints every cell in its credited color.
	ClusterImage *image.RGBA

	opt Options
	log logrus.FieldLogger
}

func NewRecoverer(input *Buffer, opt Options) *Recoverer {
	tmpl := opt.Template
	if tmpl == nil {
		tmpl = NewTemplate(opt.Weight)
	}
	log := opt.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recoverer{
		Input:    input,
		Template: tmpl,
		opt:      opt,
		log:      log,
	}
}

// FromImage converts img and returns a Recoverer for it.
func FromImage(img image.Image, opt Options) (*Recoverer, error) {
	buf, err := BufferFromImage(img)
	if err != nil {
		return nil, err
	}
	return NewRecoverer(buf, opt), nil
}

// Build estimates the background, clusters the pairs, assigns colors and
// characters and renders Lines and ClusterImage. It fails only on a
// *SignError.
func (r *Recoverer) Build() error {
	r.Background = EstimateBackground(r.Input)
	r.log.Infof("Background Color: %s", r.Background.Hex())

	oracle := NewOracle(r.Background)
	r.Pairs = Catalog(r.Input, r.Background)
	r.Clusters = BuildClusters(r.Pairs, oracle)
	r.log.WithField("pairs", len(r.Pairs)).Infof("%d clusters", len(r.Clusters))

	if r.opt.IsolateComments {
		clusters, ok := IsolateComments(r.Input, r.Background, r.Clusters)
		if ok {
			r.log.Infof("comment cluster: %d pairs", len(clusters[len(clusters)-1]))
		} else {
			r.log.Warn("no comment line found, clusters unchanged")
		}
		r.Clusters = clusters
	}

	r.Resolution = NewResolution()
	if err := Assign(r.Clusters, oracle, NewSolver(r.Background, r.Template), r.Resolution, r.log); err != nil {
		return err
	}
	r.Lines, r.ClusterImage = Render(r.Input, r.Background, r.Resolution)
	return nil
}

func (r *Recoverer) Reconstruct() *image.RGBA {
	return Reconstruct(r.Input, r.Background, r.Template, r.Resolution)
}

func (r *Recoverer) Mismatches() int {
	return Mismatches(r.Input, r.Background, r.Template, r.Resolution)
}

func (r *Recoverer) Layers() ([]Color, []*image.NRGBA) {
	return Layers(r.Input, r.Background, r.Template, r.Resolution)
}

func (r *Recoverer) CellCounts() map[Color]int {
	return CellCounts(r.Input, r.Background, r.Resolution)
}
