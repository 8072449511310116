package lci

import (
	"bufio"
	"fmt"
	"os"
)

// SaveFile saves doc to path, replacing any existing file.
func SaveFile(path string, doc Document, opts ...Option) error {
	dd, err := Encode(doc, opts...)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Write(w, dd); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// LoadFile loads the LCI document at path.
func LoadFile(path string, opts ...Option) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// DecodeFile reads the document structure at path without decoding pixels.
func DecodeFile(path string) (*DocumentData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
