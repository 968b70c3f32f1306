// Package cache keeps derived ledger views in memory between writes.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is the subset of LRU the ledger service depends on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Purge()
	Len() int
}

// Cleaner is a cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps expired entries out of registered caches.
type Janitor struct {
	logger *slog.Logger
	caches []Cleaner

	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

func NewJanitor(logger *slog.Logger, caches ...Cleaner) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		logger: logger,
		caches: caches,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the sweep loop. It must be called at most once.
func (j *Janitor) Start(interval time.Duration) {
	j.started = true
	go j.run(interval)
}

// Sweep cleans every cache once and returns the number of entries dropped.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				j.logger.Debug("Expired cache entries removed", "count", n)
			}
		case <-j.stop:
			return
		}
	}
}

// Stop ends the sweep loop and waits for it. Safe to call more than once.
func (j *Janitor) Stop() error {
	j.stopOnce.Do(func() {
		close(j.stop)
		if j.started {
			<-j.done
		}
	})
	return nil
}
