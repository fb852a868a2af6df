// Package watch reports edits to agent definitions and director scripts.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the minimum gap between two reported changes to the same
// file unless WithDebounce says otherwise.
const DefaultDebounce = 100 * time.Millisecond

// changeOps are the operations that can leave a file with new contents.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

type Option func(*Watcher)

// WithFilter replaces Relevant as the test for which paths are reported.
func WithFilter(keep func(path string) bool) Option {
	return func(w *Watcher) {
		if keep != nil {
			w.keep = keep
		}
	}
}

// WithDebounce sets the per-file quiet period. Zero reports every change.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.quiet.window = d
		}
	}
}

// Watcher forwards relevant file changes on Events. Errors holds at most one
// pending watch error; later ones are dropped until it is read.
type Watcher struct {
	Events chan string
	Errors chan error

	fs    *fsnotify.Watcher
	keep  func(string) bool
	quiet debouncer
	now   func() time.Time

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// New watches dirs (not recursively).
func New(dirs []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		keep:    Relevant,
		quiet:   debouncer{window: DefaultDebounce},
		now:     time.Now,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	w.fs = fw

	go w.loop()
	return w, nil
}

// Close stops the watcher. Events and Errors are closed once the forwarding
// goroutine has exited.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.fs.Close()
		<-w.stopped
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	defer close(w.Errors)
	defer close(w.Events)

	for {
		select {
		case <-w.stop:
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.accept(ev) {
				continue
			}
			select {
			case w.Events <- ev.Name:
			case <-w.stop:
				return
			}
		}
	}
}

func (w *Watcher) accept(ev fsnotify.Event) bool {
	return ev.Op&changeOps != 0 && w.keep(ev.Name) && w.quiet.allow(ev.Name, w.now())
}

// debouncer drops a change to a file seen less than window ago. Editors often
// write a file in several steps and one reload is enough.
type debouncer struct {
	window time.Duration
	seen   map[string]time.Time
}

func (d *debouncer) allow(name string, now time.Time) bool {
	if d.window <= 0 {
		return true
	}
	if prev, ok := d.seen[name]; ok && now.Sub(prev) < d.window {
		return false
	}
	if d.seen == nil {
		d.seen = make(map[string]time.Time)
	}
	d.seen[name] = now
	return true
}

// Relevant reports whether a change to path should trigger a reload.
func Relevant(path string) bool {
	return IsDefinition(path) || IsScript(path)
}

// IsDefinition reports whether path names an agent definition file.
func IsDefinition(path string) bool {
	switch strings.ToLower(filepath.Base(path)) {
	case "agent.json", "agent.yaml", "agent.yml":
		return true
	}
	return false
}

// IsScript reports whether path names a director script.
func IsScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tengo")
}
