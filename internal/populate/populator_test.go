package populate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/ydweb/internal/cache"
	"github.com/at-ishikawa/ydweb/internal/dictionary"
	"github.com/at-ishikawa/ydweb/internal/dictionary/static"
)

// countingLookuper records calls and the highest number of concurrent calls.
type countingLookuper struct {
	mu       sync.Mutex
	calls    []string
	inFlight int
	peak     int
	delay    time.Duration
	fail     map[string]error
}

func (l *countingLookuper) Lookup(ctx context.Context, word string) (dictionary.Record, error) {
	l.mu.Lock()
	l.calls = append(l.calls, word)
	l.inFlight++
	if l.inFlight > l.peak {
		l.peak = l.inFlight
	}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.inFlight--
		l.mu.Unlock()
	}()

	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return dictionary.Record{}, &dictionary.NetworkError{Word: word, Err: ctx.Err()}
		}
	}
	if err, ok := l.fail[word]; ok {
		return dictionary.Record{}, err
	}
	return dictionary.Record{Basic: "basic of " + word}, nil
}

func (l *countingLookuper) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *countingLookuper) Peak() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak
}

func newFileStore(t *testing.T) *cache.FileStore {
	t.Helper()
	return cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json.sz"))
}

func TestPopulator_Populate_SkipsKnownWords(t *testing.T) {
	memory := cache.NewFrom(map[string]dictionary.Record{
		"cat":  {Basic: "n. 猫"},
		"dog":  {Basic: "n. 狗"},
		"bird": {},
	})
	remote := &countingLookuper{}
	store := newFileStore(t)

	populator := NewPopulator(remote, []Known{memory}, store, nil, Config{Concurrency: 2})
	result, err := populator.Populate(context.Background(), []string{"cat", "fish", "Dog", "bird", "horse"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"fish", "horse"}, remote.Calls())
	assert.Equal(t, Result{Total: 5, Skipped: 3, Resolved: 2, Checkpoints: 1}, result)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]dictionary.Record{
		"fish":  {Basic: "basic of fish"},
		"horse": {Basic: "basic of horse"},
	}, stored)
}

func TestPopulator_Populate_ExampleScenario(t *testing.T) {
	dictionaries := static.New(map[string]dictionary.Record{"dog": {Basic: "n. 狗"}})
	remote := &countingLookuper{}

	populator := NewPopulator(remote, []Known{cache.New(), dictionaries}, newFileStore(t), nil, Config{Concurrency: 4})
	result, err := populator.Populate(context.Background(), []string{"cat", "cat", "dog!", ""})
	require.NoError(t, err)

	assert.Equal(t, []string{"cat"}, remote.Calls())
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Resolved)
}

func TestPopulator_Populate_NothingToDo(t *testing.T) {
	remote := &countingLookuper{}
	store := newFileStore(t)

	populator := NewPopulator(remote, nil, store, nil, Config{})
	result, err := populator.Populate(context.Background(), []string{"", "  ", "!"})
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	assert.Empty(t, remote.Calls())
	assert.NoFileExists(t, store.Path())
}

func TestPopulator_Populate_ConcurrencyBound(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		wantPeak    int
	}{
		{name: "single worker", concurrency: 1, wantPeak: 1},
		{name: "three workers", concurrency: 3, wantPeak: 3},
		{name: "zero means one", concurrency: 0, wantPeak: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &countingLookuper{delay: 20 * time.Millisecond}
			words := make([]string, 12)
			for i := range words {
				words[i] = fmt.Sprintf("word%d", i)
			}

			populator := NewPopulator(remote, nil, newFileStore(t), nil, Config{Concurrency: tt.concurrency})
			result, err := populator.Populate(context.Background(), words)
			require.NoError(t, err)

			assert.Equal(t, 12, result.Resolved)
			assert.LessOrEqual(t, remote.Peak(), tt.wantPeak)
			assert.Equal(t, tt.wantPeak, remote.Peak())
		})
	}
}

func TestPopulator_Populate_FailureDoesNotAbort(t *testing.T) {
	remote := &countingLookuper{
		fail: map[string]error{
			"bad": &dictionary.NetworkError{Word: "bad", StatusCode: 500},
		},
	}
	store := newFileStore(t)
	var out bytes.Buffer

	populator := NewPopulator(remote, nil, store, NewTextReporter(&out), Config{Concurrency: 2})
	result, err := populator.Populate(context.Background(), []string{"good", "bad", "fine"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Resolved)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, out.String(), "Failed bad")
	assert.Contains(t, out.String(), "Fetched good")

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, stored, "good")
	assert.Contains(t, stored, "fine")
	assert.NotContains(t, stored, "bad")
}

func TestPopulator_Populate_MergesIntoExistingStore(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, store.Save(map[string]dictionary.Record{"cat": {Basic: "n. 猫"}}))

	existing, err := store.Load()
	require.NoError(t, err)

	populator := NewPopulator(&countingLookuper{}, []Known{cache.NewFrom(existing)}, store, nil, Config{})
	_, err = populator.Populate(context.Background(), []string{"cat", "dog"})
	require.NoError(t, err)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]dictionary.Record{
		"cat": {Basic: "n. 猫"},
		"dog": {Basic: "basic of dog"},
	}, stored)
}

func TestPopulator_Populate_StandaloneCheckpoint(t *testing.T) {
	mainStore := newFileStore(t)
	require.NoError(t, mainStore.Save(map[string]dictionary.Record{"cat": {Basic: "n. 猫"}}))
	checkpointStore := newFileStore(t)

	populator := NewPopulator(&countingLookuper{}, nil, checkpointStore, nil, Config{Standalone: true})
	_, err := populator.Populate(context.Background(), []string{"dog"})
	require.NoError(t, err)

	stored, err := checkpointStore.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]dictionary.Record{"dog": {Basic: "basic of dog"}}, stored)

	untouched, err := mainStore.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]dictionary.Record{"cat": {Basic: "n. 猫"}}, untouched)
}

func TestPopulator_Populate_CheckpointDurability(t *testing.T) {
	release := make(chan struct{})
	remote := dictionary.LookupFunc(func(ctx context.Context, word string) (dictionary.Record, error) {
		if word == "slow" {
			select {
			case <-release:
			case <-ctx.Done():
				return dictionary.Record{}, ctx.Err()
			}
		}
		return dictionary.Record{Basic: word}, nil
	})
	store := newFileStore(t)

	populator := NewPopulator(remote, nil, store, nil, Config{
		Concurrency:        3,
		CheckpointInterval: 20 * time.Millisecond,
	})

	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := populator.Populate(context.Background(), []string{"slow", "fast", "quick"})
		done <- outcome{result, err}
	}()

	// The batch is still running, yet the artifact already holds the finished words.
	require.Eventually(t, func() bool {
		stored, err := store.Load()
		if err != nil {
			return false
		}
		_, fast := stored["fast"]
		_, quick := stored["quick"]
		return fast && quick
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.NotContains(t, stored, "slow")

	close(release)
	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Equal(t, 3, got.result.Resolved)
		assert.GreaterOrEqual(t, got.result.Checkpoints, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("populate did not finish")
	}

	stored, err = store.Load()
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestPopulator_Populate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var started atomic.Int32
	remote := dictionary.LookupFunc(func(ctx context.Context, word string) (dictionary.Record, error) {
		if word == "first" {
			return dictionary.Record{Basic: word}, nil
		}
		started.Add(1)
		<-ctx.Done()
		return dictionary.Record{}, &dictionary.NetworkError{Word: word, Err: ctx.Err()}
	})
	store := newFileStore(t)

	populator := NewPopulator(remote, nil, store, nil, Config{Concurrency: 1})
	done := make(chan error, 1)
	go func() {
		_, err := populator.Populate(ctx, []string{"first", "second", "third", "fourth"})
		done <- err
	}()

	require.Eventually(t, func() bool { return started.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("populate did not stop after cancellation")
	}

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]dictionary.Record{"first": {Basic: "first"}}, stored)
}
