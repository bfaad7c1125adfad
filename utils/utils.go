package utils

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
	// PaletteMethodCredited reads the colors straight from the resolution
	// instead of the cluster image.
	PaletteMethodCredited
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	case PaletteMethodCredited:
		return "credited"
	default:
		return "dominantcolor"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(s) {
	case "", "dominantcolor":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	case "credited":
		return PaletteMethodCredited, nil
	}
	return PaletteMethodDominantColor, fmt.Errorf("unknown palette method %q", s)
}

// Colors closer than this (CIE76) to the background or the unknown marker
// are not syntax colors.
const ignoreDistance = 0.02

// Credited colors closer than this are one theme color.
const mergeDistance = 0.05

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func ignored(c colorful.Color, skip []colorful.Color) bool {
	for _, s := range skip {
		if c.DistanceLab(s) < ignoreDistance {
			return true
		}
	}
	return false
}

func toColorful(cs []color.Color) []colorful.Color {
	out := make([]colorful.Color, 0, len(cs))
	for _, c := range cs {
		col, _ := colorful.MakeColor(c)
		out = append(out, col)
	}
	return out
}

// ExtractDominantPalette picks up to k syntax colors from a cluster image.
// Colors near any of skip (usually background and the unknown marker) are
// dropped.
func ExtractDominantPalette(img image.Image, k int, skip ...color.Color) []colorful.Color {
	if k <= 0 {
		return nil
	}
	skipCols := toColorful(skip)
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		if ignored(col, skipCols) {
			continue
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: max(c.Weight, 1e-6)})
	}
	return SelectThemeColors(weighted, k)
}

// SelectThemeColors folds colors closer than mergeDistance into the
// heaviest of them and returns the k heaviest groups. The search often
// credits one token kind to neighbouring candidates (#dbdbdb and #dcdcdc),
// which are one theme color.
func SelectThemeColors(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(a, b weightedColor) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return strings.Compare(a.Col.Hex(), b.Col.Hex())
	})

	var groups []weightedColor
	for _, c := range sorted {
		merged := false
		for i := range groups {
			if groups[i].Col.DistanceLab(c.Col) < mergeDistance {
				groups[i].Weight += c.Weight
				merged = true
				break
			}
		}
		if !merged {
			groups = append(groups, c)
		}
	}
	slices.SortStableFunc(groups, func(a, b weightedColor) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	out := make([]colorful.Color, 0, min(k, len(groups)))
	for _, g := range groups[:min(k, len(groups))] {
		out = append(out, g.Col)
	}
	return out
}

// CreditedPalette weights every credited color by the number of cells
// drawn in it.
func CreditedPalette(colors []color.Color, cells []int, k int) []colorful.Color {
	weighted := make([]weightedColor, 0, len(colors))
	for i, c := range colors {
		if i >= len(cells) || cells[i] <= 0 {
			continue
		}
		col, _ := colorful.MakeColor(c)
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(cells[i])})
	}
	return SelectThemeColors(weighted, k)
}

// ExtractKMeansPalette clusters the cell colors of a cluster image into
// theme colors. Neighbouring candidate colors credited to the same token
// kind land in one center.
func ExtractKMeansPalette(img image.Image, k int, skip ...color.Color) []colorful.Color {
	if k <= 0 {
		return nil
	}
	skipCols := toColorful(skip)
	b := img.Bounds()
	// cells span two identical rows
	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			col, _ := colorful.MakeColor(img.At(x, y))
			if ignored(col, skipCols) {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{col.R, col.G, col.B})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, min(k, len(dataset)))
	if err != nil || len(cc) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return SelectThemeColors(weighted, k)
}

// ExtractPalette returns up to k theme colors, falling back to
// dominantcolor when kmeans finds nothing. The image carries no cell
// counts, so PaletteMethodCredited also uses dominantcolor here.
func ExtractPalette(img image.Image, k int, method PaletteMethod, skip ...color.Color) []colorful.Color {
	if method == PaletteMethodKMeans {
		if p := ExtractKMeansPalette(img, k, skip...); len(p) != 0 {
			return p
		}
		logrus.Warn("palette: kmeans returned an empty palette, falling back to dominantcolor")
	}
	return ExtractDominantPalette(img, k, skip...)
}

// ReadImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveLayers writes layer i to <prefix>_layer_NN.png.
func SaveLayers(layers []*image.NRGBA, prefix string) error {
	for i, l := range layers {
		if err := SaveImage(l, fmt.Sprintf("%s_layer_%02d.png", prefix, i)); err != nil {
			return err
		}
	}
	return nil
}

// SaveText writes lines joined by newlines, without a trailing newline.
func SaveText(lines []string, filename string) error {
	return os.WriteFile(filename, []byte(strings.Join(lines, "\n")), 0o644)
}

// SavePalette writes the palette as a row of tileSize squares.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
	}
	return SaveImage(img, filename)
}

// OutputPrefix strips the extension of the input path.
func OutputPrefix(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}
