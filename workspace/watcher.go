package workspace

import (
	"context"
	"io/fs"
	"sync"
	"time"
)

// Watcher polls the workspace root and reparses files whose modification
// time moved forward. Files that disappear are removed.
type Watcher struct {
	ws       *Workspace
	interval time.Duration

	mu       sync.Mutex
	modTimes map[string]time.Time

	cancel context.CancelFunc
	done   sync.WaitGroup
}

func NewWatcher(ws *Workspace, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{
		ws:       ws,
		interval: interval,
		modTimes: make(map[string]time.Time),
	}
}

// Start runs the first poll synchronously, then keeps polling until ctx is
// done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.Poll()
	w.done.Add(1)
	go w.run(ctx)
}

func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.done.Wait()
}

func (w *Watcher) run(ctx context.Context) {
	defer w.done.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll performs a single pass and reports how many files were reparsed
// or removed.
func (w *Watcher) Poll() (updated, removed int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[string]bool)

	err := w.ws.walk(func(path string, info fs.FileInfo) {
		current[path] = true
		last, known := w.modTimes[path]
		if known && !info.ModTime().After(last) {
			return
		}
		w.modTimes[path] = info.ModTime()
		if _, err := w.ws.Open(path); err != nil {
			log.Warningf("watch: %s", err)
			return
		}
		updated++
	})
	if err != nil {
		log.Errorf("watch %s: %s", w.ws.rootDir, err)
	}

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.ws.Remove(path)
			removed++
		}
	}
	return updated, removed
}
