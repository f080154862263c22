// internal/ratelimit/ratelimit.go
package ratelimit

import (
	"sort"
	"sync"
	"time"
)

// Limiter is a process-wide fixed-window request counter keyed by client.
// State lives in memory only; a restart resets all windows.
type Limiter struct {
	mu         sync.Mutex
	window     time.Duration
	limit      int
	maxEntries int
	entries    map[string]*entry
	now        func() time.Time
}

type entry struct {
	count       int
	windowStart time.Time
}

// maxEntries caps memory; when exceeded, the oldest windows are pruned first.
const (
	defaultMaxEntries = 2000
	pruneBatch        = 100
)

// New creates a limiter allowing limit requests per key per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		window:     window,
		limit:      limit,
		maxEntries: defaultMaxEntries,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
}

// Allow reports whether the request identified by key fits in its current
// window, counting it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		l.entries[key] = &entry{count: 1, windowStart: now}
		l.pruneLocked()
		return true
	}

	if now.Sub(e.windowStart) > l.window {
		e.count = 1
		e.windowStart = now
		return true
	}

	e.count++
	return e.count <= l.limit
}

func (l *Limiter) pruneLocked() {
	if len(l.entries) <= l.maxEntries {
		return
	}

	type aged struct {
		key   string
		start time.Time
	}
	all := make([]aged, 0, len(l.entries))
	for k, e := range l.entries {
		all = append(all, aged{key: k, start: e.windowStart})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].start.Before(all[j].start) })

	// Drop a batch of the oldest windows, but never the newest one: it was
	// counted for the request being served right now.
	n := pruneBatch
	if n >= len(all) {
		n = len(all) - 1
	}
	for _, a := range all[:n] {
		delete(l.entries, a.key)
	}
}
