// Package pack converts between LCI documents and directories of loose layer
// images described by a YAML manifest.
package pack

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/ironsheep/lci-tools/internal/config"
	"github.com/ironsheep/lci-tools/internal/imaging"
	"github.com/ironsheep/lci-tools/internal/lci"
)

// Build assembles the document described by m. Layer files are resolved
// against baseDir and placed at the top-left of full-size layers.
func Build(m *config.Manifest, baseDir string, cache *imaging.ImageCache) (*lci.Raster, error) {
	if err := m.Validate(baseDir); err != nil {
		return nil, err
	}

	doc := lci.NewRaster(m.Width, m.Height)
	for i := range m.Layers {
		spec := &m.Layers[i]

		var src image.Image
		if spec.File != "" {
			img, err := cache.Load(filepath.Join(baseDir, spec.File))
			if err != nil {
				return nil, fmt.Errorf("layer %q: %w", spec.Name, err)
			}
			src = img
		}

		mode, err := spec.BlendMode()
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", spec.Name, err)
		}

		layer := lci.NewRasterLayer(spec.RawName(), imaging.Place(src, m.Width, m.Height))
		layer.SetVisible(spec.IsVisible())
		layer.SetOpacity(spec.OpacityValue())
		layer.SetBlendMode(mode)
		doc.Add(layer)
	}
	return doc, nil
}

// BuildFile builds the manifest at manifestPath and saves the document to
// out. The built document is returned for callers that report on it.
func BuildFile(manifestPath, out string, cache *imaging.ImageCache, opts ...lci.Option) (*lci.Raster, error) {
	m, err := config.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	doc, err := Build(m, filepath.Dir(manifestPath), cache)
	if err != nil {
		return nil, err
	}
	if err := lci.SaveFile(out, doc, opts...); err != nil {
		return nil, err
	}
	return doc, nil
}
