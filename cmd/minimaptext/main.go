// Command minimaptext recovers source text from a cropped screenshot of an
// editor minimap.
//
// The image must start at the first character of the first line and have an
// even height. It writes <name>_recovered.txt and <name>_cluster.png next to
// the input; the cluster image shows which color every cell was credited to,
// so misclassified cells can be fixed by hand.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/minimaptext"
	"github.com/setanarut/minimaptext/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	input := flag.String("input", "",
		"Minimap screenshot (prompted for when empty, .png assumed without extension)")
	weight := flag.String("weight", "normal",
		"Minimap font weight: normal or light")
	comments := flag.Bool("comments", false,
		"Split line comments into their own cluster")
	paletteSize := flag.Int("palette", 0,
		"Write a palette of up to N theme colors, 0 to disable")
	paletteMethod := flag.String("palette-method", "dominantcolor",
		"Palette extraction: dominantcolor, kmeans or credited")
	layers := flag.Bool("layers", false,
		"Write one alpha layer per recovered color")
	verbose := flag.Bool("verbose", false,
		"Log channel candidates")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := run(*input, *weight, *comments, *paletteSize, *paletteMethod, *layers); err != nil {
		logrus.Fatal(err)
	}
}

func promptInput() string {
	fmt.Print("Filename: ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func themePalette(r *minimaptext.Recoverer, k int, method utils.PaletteMethod) []colorful.Color {
	if method != utils.PaletteMethodCredited {
		return utils.ExtractPalette(r.ClusterImage, k, method, r.Background, minimaptext.Unknown)
	}
	counts := r.CellCounts()
	credited := make([]minimaptext.Color, 0, len(counts))
	for c := range counts {
		credited = append(credited, c)
	}
	slices.SortFunc(credited, minimaptext.Color.Compare)
	colors := make([]color.Color, len(credited))
	cells := make([]int, len(credited))
	for i, c := range credited {
		colors[i], cells[i] = c, counts[c]
	}
	return utils.CreditedPalette(colors, cells, k)
}

func run(input, weight string, comments bool, paletteSize int, paletteMethod string, layers bool) error {
	if input == "" {
		input = promptInput()
	}
	if input == "" {
		input = "minimap"
	}
	if filepath.Ext(input) == "" {
		input += ".png"
	}

	w, err := minimaptext.ParseWeight(weight)
	if err != nil {
		return err
	}
	method, err := utils.ParsePaletteMethod(paletteMethod)
	if err != nil {
		return err
	}

	img, err := utils.ReadImage(input)
	if err != nil {
		return err
	}
	opt := minimaptext.DefaultOptions()
	opt.Weight = w
	opt.IsolateComments = comments
	r, err := minimaptext.FromImage(img, opt)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := r.Build(); err != nil {
		return err
	}

	prefix := utils.OutputPrefix(input)
	if err := utils.SaveText(r.Lines, prefix+"_recovered.txt"); err != nil {
		return err
	}
	if err := utils.SaveImage(r.ClusterImage, prefix+"_cluster.png"); err != nil {
		return err
	}
	if n := r.Mismatches(); n > 0 {
		logrus.Warnf("%d cells do not reproduce the input, see %s_cluster.png", n, prefix)
	}

	if paletteSize > 0 {
		palette := themePalette(r, paletteSize, method)
		utils.SortPaletteByBrightness(palette)
		for _, c := range palette {
			logrus.Infof("theme color %s", c.Hex())
		}
		if len(palette) == 0 {
			logrus.Warn("no theme colors found, palette not written")
		} else if err := utils.SavePalette(palette, 64, prefix+"_palette.png"); err != nil {
			return err
		}
	}
	if layers {
		colors, imgs := r.Layers()
		for i, c := range colors {
			logrus.Debugf("layer %02d: %s", i, c.Hex())
		}
		if err := utils.SaveLayers(imgs, prefix); err != nil {
			return err
		}
	}
	logrus.Infof("recovered %d lines into %s_recovered.txt", len(r.Lines), prefix)
	return nil
}
