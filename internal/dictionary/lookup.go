package dictionary

import "context"

//go:generate mockgen -source=lookup.go -destination=../mocks/dictionary/mock_lookup.go -package=mock_dictionary

// Lookuper resolves a normalized word into a Record.
// Static dictionaries return ErrNotFound for a miss and remote lookups return *NetworkError.
type Lookuper interface {
	Lookup(ctx context.Context, word string) (Record, error)
}

// LookupFunc adapts a function to a Lookuper.
type LookupFunc func(ctx context.Context, word string) (Record, error)

func (f LookupFunc) Lookup(ctx context.Context, word string) (Record, error) {
	return f(ctx, word)
}

// Cache is the in-memory word to Record mapping shared between lookups.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(word string) (Record, bool)
	Put(word string, record Record)
}
