// Package populate fills the word cache from a word list with a bounded pool of remote lookups.
package populate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/ydweb/internal/cache"
	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

const DefaultCheckpointInterval = 60 * time.Second

// Known is a read-only layer of words that do not need a remote lookup.
type Known interface {
	Has(word string) bool
}

// Store receives checkpoints of the batch results.
type Store interface {
	Save(records map[string]dictionary.Record) error
	Merge(records map[string]dictionary.Record) error
}

type Config struct {
	Concurrency        int
	CheckpointInterval time.Duration
	// Standalone writes checkpoints with Save, so the store only holds this batch's results.
	// Otherwise they are merged into the existing contents.
	Standalone bool
}

// Result holds batch statistics. Words are counted once however often they are listed.
type Result struct {
	Total       int
	Skipped     int // already in a known layer
	Resolved    int
	Failed      int
	Checkpoints int
}

type Populator struct {
	remote   dictionary.Lookuper
	known    []Known
	store    Store
	reporter Reporter
	config   Config
	logger   *slog.Logger
}

func NewPopulator(remote dictionary.Lookuper, known []Known, store Store, reporter Reporter, config Config) *Populator {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.CheckpointInterval <= 0 {
		config.CheckpointInterval = DefaultCheckpointInterval
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Populator{
		remote:   remote,
		known:    known,
		store:    store,
		reporter: reporter,
		config:   config,
		logger:   slog.Default(),
	}
}

// Populate looks up every word that is not known yet and persists the results.
// A failed lookup is reported and leaves the word for a later run. When ctx is cancelled,
// no new lookups start; results gathered so far are still persisted and ctx.Err is returned.
func (p *Populator) Populate(ctx context.Context, words []string) (Result, error) {
	var result Result
	pending := p.plan(words, &result)
	p.logger.Info("word list planned",
		slog.Int("total", result.Total),
		slog.Int("skipped", result.Skipped),
		slog.Int("pending", len(pending)),
	)
	if len(pending) == 0 {
		return result, nil
	}

	results := cache.New()
	var resolved, failed atomic.Int64

	stopCheckpoints := make(chan struct{})
	var checkpoints sync.WaitGroup
	checkpoints.Add(1)
	go func() {
		defer checkpoints.Done()
		p.checkpointLoop(results, stopCheckpoints, &result)
	}()

	var group errgroup.Group
	group.SetLimit(p.config.Concurrency)
	for i, word := range pending {
		if ctx.Err() != nil {
			break
		}
		index := i + 1
		// Blocks until a worker slot is free.
		group.Go(func() error {
			p.reporter.Start(index, len(pending), word)
			record, err := p.remote.Lookup(ctx, word)
			p.reporter.Done(index, len(pending), word, err)
			if err != nil {
				failed.Add(1)
				p.logger.Warn("lookup failed",
					slog.String("word", word),
					slog.Any("error", err),
				)
				return nil
			}
			results.Put(word, record)
			resolved.Add(1)
			return nil
		})
	}
	_ = group.Wait()

	close(stopCheckpoints)
	checkpoints.Wait()

	result.Resolved = int(resolved.Load())
	result.Failed = int(failed.Load())
	if results.Len() > 0 || p.config.Standalone {
		if err := p.persist(results.Snapshot()); err != nil {
			return result, fmt.Errorf("p.persist > %w", err)
		}
		result.Checkpoints++
	}

	p.logger.Info("populate complete",
		slog.Int("total", result.Total),
		slog.Int("skipped", result.Skipped),
		slog.Int("resolved", result.Resolved),
		slog.Int("failed", result.Failed),
		slog.Int("checkpoints", result.Checkpoints),
	)
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("populate interrupted > %w", err)
	}
	return result, nil
}

// plan normalizes words and drops empty, repeated and known ones.
func (p *Populator) plan(words []string, result *Result) []string {
	seen := make(map[string]struct{}, len(words))
	pending := make([]string, 0, len(words))
	for _, raw := range words {
		word := dictionary.NormalizeWord(raw)
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		result.Total++

		if p.isKnown(word) {
			result.Skipped++
			continue
		}
		pending = append(pending, word)
	}
	return pending
}

func (p *Populator) isKnown(word string) bool {
	for _, layer := range p.known {
		if layer.Has(word) {
			return true
		}
	}
	return false
}

// checkpointLoop persists results on every tick until stop is closed.
// Ticks without new results are skipped.
func (p *Populator) checkpointLoop(results *cache.Cache, stop <-chan struct{}, result *Result) {
	ticker := time.NewTicker(p.config.CheckpointInterval)
	defer ticker.Stop()

	var lastSize, count int
	defer func() {
		result.Checkpoints += count
	}()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			size := results.Len()
			if size == lastSize {
				continue
			}
			if err := p.persist(results.Snapshot()); err != nil {
				p.logger.Error("checkpoint failed", slog.Any("error", err))
				continue
			}
			lastSize = size
			count++
			p.logger.Info("checkpoint saved", slog.Int("records", size))
		}
	}
}

func (p *Populator) persist(records map[string]dictionary.Record) error {
	if p.config.Standalone {
		if err := p.store.Save(records); err != nil {
			return fmt.Errorf("store.Save > %w", err)
		}
		return nil
	}
	if err := p.store.Merge(records); err != nil {
		return fmt.Errorf("store.Merge > %w", err)
	}
	return nil
}
