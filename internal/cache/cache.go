// Package cache provides small in-process caches for rendered data.
// The server keeps its task list and summary snapshots here so partial
// reloads do not hit the backend on every request.
package cache

import (
	"log/slog"
	"time"
)

// Cache is the read/write surface shared by cache implementations.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry sweeps over registered caches.
type Manager struct {
	registered []Cleaner
	quit       chan struct{}
	done       chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set. Not safe to call after
// StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.registered = append(m.registered, c)
}

// StartCleanup launches the background sweep loop.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.sweep(interval)
}

func (m *Manager) sweep(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, c := range m.registered {
				removed += c.CleanExpired()
			}
			if removed > 0 {
				slog.Debug("Cache sweep removed expired entries", "removed", removed)
			}
		case <-m.quit:
			return
		}
	}
}

// Stop ends the sweep loop and waits for it to finish.
func (m *Manager) Stop() {
	close(m.quit)
	<-m.done
}
