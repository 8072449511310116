package pack

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/config"
	"github.com/ironsheep/lci-tools/internal/imaging"
	"github.com/ironsheep/lci-tools/internal/lci"
)

// ManifestName is the manifest file Unpack writes next to the layer images.
const ManifestName = "manifest.yaml"

// Unpack writes every layer of doc to dir as a full-size PNG, using at most
// workers concurrent encoders, and then writes a manifest that Build turns
// back into an equivalent document. It returns the image paths in layer
// order.
func Unpack(ctx context.Context, doc *lci.Raster, dir string, workers int, level png.CompressionLevel) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	layers := doc.RasterLayers()
	width, height := doc.Size()
	m := &config.Manifest{
		Width:  width,
		Height: height,
		Layers: make([]config.LayerSpec, len(layers)),
	}
	paths := make([]string, len(layers))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, l := range layers {
		spec := layerSpec(l)
		spec.File = fileName(i, spec.Name)
		m.Layers[i] = spec
		paths[i] = filepath.Join(dir, spec.File)

		path := paths[i]
		img := l.NRGBA()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return imaging.SavePNG(path, img, level)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := config.SaveManifest(filepath.Join(dir, ManifestName), m); err != nil {
		return nil, err
	}
	return paths, nil
}

// layerSpec describes l without its file. Defaults are left unset so the
// manifest stays short.
func layerSpec(l *lci.RasterLayer) config.LayerSpec {
	name, props := config.SplitRawName(l.Name())
	spec := config.LayerSpec{Name: name, Properties: props}
	if spec.RawName() != l.Name() {
		spec.Raw = l.Name()
	}
	if !l.Visible() {
		hidden := false
		spec.Visible = &hidden
	}
	if l.Opacity() != 255 {
		opacity := int(l.Opacity())
		spec.Opacity = &opacity
	}
	if l.BlendMode() != blendmode.Normal {
		spec.Blend = l.BlendMode().String()
	}
	return spec
}

// fileName derives a file name from the layer index and bare name. Runes
// other than letters, digits, '-' and '_' become '_'.
func fileName(index int, name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
	clean = strings.Trim(clean, "_")
	if clean == "" {
		clean = "layer"
	}
	return fmt.Sprintf("%02d_%s.png", index, clean)
}
