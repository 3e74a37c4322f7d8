// Package persister flushes the in-memory word cache to its store while the program runs.
package persister

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

const DefaultInterval = 2 * time.Second

// Source is the cache being watched.
type Source interface {
	Len() int
	Snapshot() map[string]dictionary.Record
	Changed() <-chan struct{}
}

type Saver interface {
	Save(records map[string]dictionary.Record) error
}

// Persister saves the cache whenever its size differs from the last saved size.
// Entries are only ever inserted, so a size change is the only change to detect.
// An overwrite of an existing word is not detected.
type Persister struct {
	source   Source
	store    Saver
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	lastSize  int
	lastFlush time.Time
}

// New creates a Persister. The current size of source is assumed to be saved already.
func New(source Source, store Saver, interval time.Duration) *Persister {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Persister{
		source:   source,
		store:    store,
		interval: interval,
		logger:   slog.Default(),
		lastSize: source.Len(),
	}
}

// Run flushes at most once per interval after the cache changes, and checks the size on
// every interval in case a change signal was missed. It flushes one last time and returns
// when ctx is done.
func (p *Persister) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.flushAndLog()
			return
		case <-ticker.C:
			p.flushAndLog()
		case <-p.source.Changed():
			if wait := p.interval - p.sinceLastFlush(); wait > 0 {
				select {
				case <-ctx.Done():
					p.flushAndLog()
					return
				case <-time.After(wait):
				}
			}
			p.flushAndLog()
		}
	}
}

// Flush saves the cache if its size changed since the last save.
func (p *Persister) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source.Len() == p.lastSize {
		return nil
	}
	records := p.source.Snapshot()
	if err := p.store.Save(records); err != nil {
		return fmt.Errorf("store.Save > %w", err)
	}
	p.lastSize = len(records)
	p.lastFlush = time.Now()
	p.logger.Debug("cache persisted", slog.Int("records", len(records)))
	return nil
}

func (p *Persister) flushAndLog() {
	if err := p.Flush(); err != nil {
		p.logger.Error("failed to persist the cache", slog.Any("error", err))
	}
}

func (p *Persister) sinceLastFlush() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.lastFlush)
}
