// Package config holds the YAML pack manifest and the environment settings
// shared by the command line tools and the MCP server.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/layername"
)

// ErrInvalidManifest is returned for manifests that can not be packed.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest describes an LCI document to build from individual images.
//
//	width: 320
//	height: 240
//	layers:
//	  - name: defaults
//	    properties: {restrict: ""}
//	  - file: sky.png
//	    name: sky
//	  - file: hero.png
//	    name: hero
//	    properties: {anchor: bottom_center, team: blue}
//	    blend: multiply
//	    opacity: 200
type Manifest struct {
	Width  int         `yaml:"width"`
	Height int         `yaml:"height"`
	Layers []LayerSpec `yaml:"layers"`
}

// LayerSpec is one manifest layer, bottom first. File is relative to the
// manifest directory; a layer without a file is fully transparent.
//
// Raw is the exact encoded layer name. Unpack writes it only when Name and
// Properties can not reproduce the original, for example when segment order
// differs from RawName's or a key has an empty "k=" value. It must agree
// with Name and Properties.
type LayerSpec struct {
	File       string            `yaml:"file,omitempty"`
	Name       string            `yaml:"name"`
	Raw        string            `yaml:"raw_name,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
	Visible    *bool             `yaml:"visible,omitempty"`
	Opacity    *int              `yaml:"opacity,omitempty"`
	Blend      string            `yaml:"blend,omitempty"`
}

// propertyOrder lists the recognized keys in the order RawName writes them.
// Other keys follow in sorted order.
var propertyOrder = []string{
	"restrict", "layer", "anchor", "offset", "physicsGroup",
	"bounds", "placeholder", "multiBounds",
}

// RawName composes the layer name with its property segments. An empty
// property value is written as a bare key. Raw is returned as is when set.
func (l *LayerSpec) RawName() string {
	if l.Raw != "" {
		return l.Raw
	}
	var sb strings.Builder
	sb.WriteString(l.Name)

	keys := make([]string, 0, len(l.Properties))
	for k := range l.Properties {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ia, ib := slices.Index(propertyOrder, a), slices.Index(propertyOrder, b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		}
		return strings.Compare(a, b)
	})

	for _, k := range keys {
		sb.WriteString("|")
		sb.WriteString(k)
		if v := l.Properties[k]; v != "" {
			sb.WriteString("=")
			sb.WriteString(v)
		}
	}
	return sb.String()
}

// SplitRawName is the inverse of RawName. Bare keys map to "".
func SplitRawName(raw string) (string, map[string]string) {
	segs := strings.Split(raw, "|")
	if len(segs) == 1 {
		return raw, nil
	}
	props := make(map[string]string, len(segs)-1)
	for _, seg := range segs[1:] {
		k, v, _ := strings.Cut(seg, "=")
		props[k] = v
	}
	return segs[0], props
}

// IsVisible returns the visibility, defaulting to true.
func (l *LayerSpec) IsVisible() bool {
	return l.Visible == nil || *l.Visible
}

// OpacityValue returns the opacity, defaulting to 255.
func (l *LayerSpec) OpacityValue() uint8 {
	if l.Opacity == nil {
		return 255
	}
	return uint8(*l.Opacity)
}

// BlendMode parses Blend. An empty value is Normal.
func (l *LayerSpec) BlendMode() (blendmode.Mode, error) {
	return blendmode.ParseMode(l.Blend)
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}
	return &m, nil
}

// SaveManifest writes m to path as YAML.
func SaveManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Validate checks the manifest against the files under baseDir. Layer names
// are parsed with the LCI grammar so errors surface before any image loads.
func (m *Manifest) Validate(baseDir string) error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidManifest, m.Width, m.Height)
	}

	seen := make(map[string]bool)
	for i := range m.Layers {
		l := &m.Layers[i]
		if l.Name == "" {
			return fmt.Errorf("%w: layer %d has no name", ErrInvalidManifest, i)
		}
		if strings.Contains(l.Name, "|") {
			return fmt.Errorf("%w: layer %q: name must not contain \"|\"; use properties", ErrInvalidManifest, l.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate layer name %q", ErrInvalidManifest, l.Name)
		}
		seen[l.Name] = true

		if l.Raw != "" {
			name, props := SplitRawName(l.Raw)
			if name != l.Name || !maps.Equal(props, l.Properties) {
				return fmt.Errorf("%w: layer %q: raw_name %q does not match name and properties", ErrInvalidManifest, l.Name, l.Raw)
			}
		}
		if _, err := layername.Parse(l.RawName(), nil, nil); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		if _, err := l.BlendMode(); err != nil {
			return fmt.Errorf("%w: layer %q: %v", ErrInvalidManifest, l.Name, err)
		}
		if l.Opacity != nil && (*l.Opacity < 0 || *l.Opacity > 255) {
			return fmt.Errorf("%w: layer %q: opacity %d out of range 0-255", ErrInvalidManifest, l.Name, *l.Opacity)
		}
		if l.File != "" {
			if _, err := os.Stat(filepath.Join(baseDir, l.File)); err != nil {
				return fmt.Errorf("%w: layer %q: %v", ErrInvalidManifest, l.Name, err)
			}
		}
	}
	return nil
}
