// Package watcher triggers a pipeline run when the master tracker file
// is replaced on disk. Office tools save through temp-file renames, so
// it watches the containing directory and debounces the event burst.
package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 2 * time.Second

// Watcher observes one file and invokes a callback after it settles.
type Watcher struct {
	path     string
	onChange func()
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// New watches the directory containing path. onChange fires once per
// settled change to the watched file.
func New(path string, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{
		path:     path,
		onChange: onChange,
		fw:       fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	base := filepath.Base(w.path)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.relevant(event, base) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				log.Printf("watcher: %s changed, triggering run", w.path)
				w.onChange()
			})
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant matches writes, creates and renames of the watched file.
// Editor temp names like "~$tracker.xlsx" fail the base match and are
// ignored.
func (w *Watcher) relevant(event fsnotify.Event, base string) bool {
	if filepath.Base(event.Name) != base {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
