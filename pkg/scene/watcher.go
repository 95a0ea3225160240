package scene

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/host/memory"
	"github.com/matzehuels/blendview/pkg/roster"
)

// Watcher mirrors a directory of scene files into a roster. Each file
// contributes one graph. When a file changes the rebuilt graph takes over
// the old graph's ID and roster position, then the old graph is destroyed.
// When a file is removed its graph is destroyed and unregistered.
//
// A file that fails to load is logged and skipped. If it previously loaded,
// the earlier graph stays registered until the file loads again or is
// removed.
type Watcher struct {
	dir    string
	roster *roster.Roster
	logger *log.Logger

	mu     sync.Mutex
	graphs map[string]*memory.Graph
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger. The default discards output.
func WithWatcherLogger(l *log.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher for dir. Nothing is loaded until
// [Watcher.LoadAll] or [Watcher.Run].
func NewWatcher(dir string, r *roster.Roster, opts ...WatcherOption) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scene directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", dir)
	}
	w := &Watcher{
		dir:    dir,
		roster: r,
		logger: log.New(io.Discard),
		graphs: make(map[string]*memory.Graph),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// LoadAll loads every scene file in the directory in name order and returns
// the number of graphs registered.
func (w *Watcher) LoadAll() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read scene dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && errors.IsSceneFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		if w.reload(filepath.Join(w.dir, name)) {
			loaded++
		}
	}
	return loaded, nil
}

// Graph returns the graph currently loaded from path, or nil.
func (w *Watcher) Graph(path string) *memory.Graph {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.graphs[filepath.Clean(path)]
}

// Run loads the directory and then applies file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("scene watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("scene watcher add %s: %w", w.dir, err)
	}
	if _, err := w.LoadAll(); err != nil {
		return err
	}
	w.logger.Info("watching scenes", "dir", w.dir, "graphs", w.roster.Len())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("scene watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !errors.IsSceneFile(filepath.Base(ev.Name)) {
		return
	}
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.remove(ev.Name)
	case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
		w.reload(ev.Name)
	}
}

// reload rebuilds the graph for path and reports whether it loaded.
func (w *Watcher) reload(path string) bool {
	path = filepath.Clean(path)
	g, err := Load(path)
	if err != nil {
		w.logger.Warn("scene not loaded", "file", filepath.Base(path), "err", errors.UserMessage(err))
		return false
	}

	w.mu.Lock()
	old := w.graphs[path]
	if old != nil {
		// Same ID and roster slot, so inspectors keep their selection.
		g.SetID(old.ID())
	}
	w.graphs[path] = g
	w.mu.Unlock()

	if old == nil || !w.roster.Replace(old, g) {
		w.roster.Register(g)
	}
	if old != nil {
		old.Destroy()
	}
	w.logger.Debug("scene loaded", "file", filepath.Base(path), "graph", g.Name(), "replaced", old != nil)
	return true
}

// remove destroys and unregisters the graph loaded from path.
func (w *Watcher) remove(path string) {
	path = filepath.Clean(path)
	w.mu.Lock()
	old := w.graphs[path]
	delete(w.graphs, path)
	w.mu.Unlock()

	if old == nil {
		return
	}
	old.Destroy()
	w.roster.Unregister(old)
	w.logger.Debug("scene removed", "file", filepath.Base(path), "graph", old.Name())
}

// Close destroys and unregisters every loaded graph.
func (w *Watcher) Close() error {
	w.mu.Lock()
	graphs := w.graphs
	w.graphs = make(map[string]*memory.Graph)
	w.mu.Unlock()

	for _, g := range graphs {
		g.Destroy()
		w.roster.Unregister(g)
	}
	return nil
}
