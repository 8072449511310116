package pack

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ironsheep/lci-tools/internal/config"
)

// DefaultDebounce is the quiet period Run waits for before rebuilding.
const DefaultDebounce = 250 * time.Millisecond

// Watcher rebuilds a document when its manifest or any referenced image
// changes. Directories are watched rather than files so editors that save
// by renaming are still seen.
type Watcher struct {
	manifest string
	watcher  *fsnotify.Watcher
	dirs     map[string]bool
	files    map[string]bool
}

// NewWatcher starts watching manifestPath and the files it references.
func NewWatcher(manifestPath string) (*Watcher, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		manifest: abs,
		watcher:  fw,
		dirs:     make(map[string]bool),
	}
	if err := w.refresh(); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Files returns the number of watched files, the manifest included.
func (w *Watcher) Files() int { return len(w.files) }

// Close stops watching.
func (w *Watcher) Close() error { return w.watcher.Close() }

// refresh recomputes the watched file set from the manifest. A manifest that
// does not parse leaves only itself watched so the next save is still seen.
func (w *Watcher) refresh() error {
	files := map[string]bool{w.manifest: true}
	if m, err := config.LoadManifest(w.manifest); err == nil {
		base := filepath.Dir(w.manifest)
		for _, l := range m.Layers {
			if l.File != "" {
				files[filepath.Join(base, l.File)] = true
			}
		}
	}

	for f := range files {
		dir := filepath.Dir(f)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files = files
	return nil
}

// Run calls rebuild once the watched files have been quiet for debounce
// after a change. Rebuild errors are logged and watching continues. Run
// returns when ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, debounce time.Duration, rebuild func() error) error {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			fire = time.After(debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %v", err)

		case <-fire:
			fire = nil
			if err := rebuild(); err != nil {
				log.Printf("Rebuild failed: %v", err)
			}
			if err := w.refresh(); err != nil {
				log.Printf("Failed to refresh watch list: %v", err)
			}
		}
	}
}

// Watch is NewWatcher followed by Run. The watcher is closed on return.
func Watch(ctx context.Context, manifestPath string, debounce time.Duration, rebuild func() error) error {
	w, err := NewWatcher(manifestPath)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, debounce, rebuild)
}
