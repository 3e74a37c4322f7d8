package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Source tells where a resolved Record came from.
type Source string

const (
	SourceCache  Source = "cache"
	SourceStatic Source = "static"
	SourceRemote Source = "remote"
)

// Result is a resolved and rendered query.
type Result struct {
	Query  Query
	Record Record
	Source Source
	Text   string
}

// Resolver looks words up in the cache, then the static dictionary, then the remote source.
type Resolver struct {
	cache  Cache
	static Lookuper
	remote Lookuper
	group  singleflight.Group
}

// NewResolver creates a Resolver. static may be nil.
func NewResolver(cache Cache, static Lookuper, remote Lookuper) *Resolver {
	return &Resolver{
		cache:  cache,
		static: static,
		remote: remote,
	}
}

// Resolve parses a raw query, resolves its Record and renders it.
// It returns ErrEmptyResult with a populated Result when nothing is displayable,
// and a *NetworkError when the remote lookup fails.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Result, error) {
	query := ParseQuery(raw)
	result := Result{Query: query}
	if query.Word == "" {
		return result, ErrEmptyWord
	}

	record, source, err := r.Fetch(ctx, query.Word)
	if err != nil {
		return result, err
	}
	result.Record = record
	result.Source = source
	result.Text = record.Render(query.Verbosity)
	if result.Text == "" {
		return result, ErrEmptyResult
	}
	return result, nil
}

// Fetch resolves a normalized word without rendering it.
func (r *Resolver) Fetch(ctx context.Context, word string) (Record, Source, error) {
	if record, ok := r.cache.Get(word); ok {
		return record, SourceCache, nil
	}

	if r.static != nil {
		record, err := r.static.Lookup(ctx, word)
		if err == nil {
			return record, SourceStatic, nil
		}
		if !errors.Is(err, ErrNotFound) {
			slog.Default().Warn("static dictionary lookup failed",
				slog.String("word", word),
				slog.Any("error", err),
			)
		}
	}

	// Concurrent misses for the same word share one remote call.
	value, err, _ := r.group.Do(word, func() (interface{}, error) {
		if record, ok := r.cache.Get(word); ok {
			return record, nil
		}
		record, err := r.remote.Lookup(ctx, word)
		if err != nil {
			return Record{}, err
		}
		r.cache.Put(word, record)
		return record, nil
	})
	if err != nil {
		if !IsNetworkError(err) {
			err = &NetworkError{Word: word, Err: err}
		}
		return Record{}, "", fmt.Errorf("remote.Lookup > %w", err)
	}
	return value.(Record), SourceRemote, nil
}
