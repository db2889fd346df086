package cache

import (
	"log/slog"
	"sync"
	"time"

	"spendlens/internal/metrics"
)

// Sweeper is a cache that can drop its expired entries.
type Sweeper interface {
	CleanExpired() int
	Size() int
}

// Manager sweeps named caches on an interval and reports their sizes.
type Manager struct {
	mu      sync.Mutex
	caches  map[string]Sweeper
	logger  *slog.Logger
	stop    chan struct{}
	done    chan struct{}
	started bool
	once    sync.Once
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		caches: make(map[string]Sweeper),
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds c under name, replacing any cache already registered there.
func (m *Manager) Register(name string, c Sweeper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// StartCleanup sweeps every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	go m.run(interval)
}

func (m *Manager) run(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "count", n)
			}
		case <-m.stop:
			return
		}
	}
}

// CleanNow sweeps every registered cache once, updates the size gauge and
// returns the total number of entries removed.
func (m *Manager) CleanNow() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for name, c := range m.caches {
		total += c.CleanExpired()
		metrics.CacheEntries.WithLabelValues(name).Set(float64(c.Size()))
	}
	return total
}

// Stop ends the sweep loop and waits for it. It is safe to call more than
// once, and without StartCleanup.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stop)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
	})
}
