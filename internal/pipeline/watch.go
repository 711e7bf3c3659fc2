package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/docrank/internal/parser"
)

// DefaultDebounce is how long a file must stay quiet before it is processed.
const DefaultDebounce = 500 * time.Millisecond

// Watch writes outlines for documents created or modified in inputDir until
// ctx is cancelled. Bursts of events for one file collapse into a single
// outline pass once the file has been quiet for debounce.
func (p *Pipeline) Watch(ctx context.Context, inputDir, outputDir string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(inputDir); err != nil {
		return fmt.Errorf("watch %s: %w", inputDir, err)
	}
	p.log.Info("watching for documents", "input_dir", inputDir, "output_dir", outputDir)

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
		wg     sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok && t.Stop() {
			t.Reset(debounce)
			return
		}
		wg.Add(1)
		var t *time.Timer
		t = time.AfterFunc(debounce, func() {
			defer wg.Done()
			mu.Lock()
			if timers[path] == t {
				delete(timers, path)
			}
			mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			log := p.log.With("document", filepath.Base(path))
			if names, err := ListDocuments(inputDir); err == nil {
				if err := claimOutline(outlineOwners(names), filepath.Base(path)); err != nil {
					log.Warn("outline name collides with another document, skipping", "error", err)
					return
				}
			}
			o, err := p.OutlineFile(path, outputDir)
			if err != nil {
				log.Warn("outline failed", "error", err)
				return
			}
			log.Info("outline written", "title", o.Title, "headings", len(o.Headings))
		})
		timers[path] = t
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !parser.IsSupportedExtension(ev.Name) {
				continue
			}
			schedule(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("watcher error", "error", err)
		}
	}
}
