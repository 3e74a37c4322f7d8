package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

func TestCache_GetPut(t *testing.T) {
	c := New()
	_, ok := c.Get("cat")
	assert.False(t, ok)
	assert.False(t, c.Has("cat"))

	c.Put("cat", dictionary.Record{Basic: "n. 猫"})
	got, ok := c.Get("cat")
	require.True(t, ok)
	assert.Equal(t, "n. 猫", got.Basic)
	assert.True(t, c.Has("cat"))
	assert.Equal(t, 1, c.Len())
}

func TestNewFrom(t *testing.T) {
	records := map[string]dictionary.Record{
		"cat": {Basic: "n. 猫"},
		"xyz": {},
	}
	c := NewFrom(records)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, records, c.Snapshot())
}

func TestCache_Snapshot_IsACopy(t *testing.T) {
	c := New()
	c.Put("cat", dictionary.Record{Basic: "n. 猫"})

	snapshot := c.Snapshot()
	snapshot["dog"] = dictionary.Record{Basic: "n. 狗"}
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Has("dog"))
}

func TestCache_Changed(t *testing.T) {
	c := New()
	select {
	case <-c.Changed():
		t.Fatal("unexpected notification before any Put")
	default:
	}

	c.Put("cat", dictionary.Record{})
	c.Put("dog", dictionary.Record{})

	select {
	case <-c.Changed():
	default:
		t.Fatal("expected a notification after Put")
	}
	// Puts are coalesced into a single pending signal.
	select {
	case <-c.Changed():
		t.Fatal("expected notifications to be coalesced")
	default:
	}
}

func TestCache_ConcurrentPut(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				// Every goroutine also races on a shared key.
				c.Put("shared", dictionary.Record{Basic: "same"})
				c.Put(fmt.Sprintf("w%d-%d", i, j), dictionary.Record{Basic: "x"})
				_ = c.Len()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16*100+1, c.Len())
	got, ok := c.Get("shared")
	require.True(t, ok)
	assert.Equal(t, "same", got.Basic)
}
