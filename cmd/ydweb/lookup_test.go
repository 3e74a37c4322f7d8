package main

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/ydweb/internal/cache"
	"github.com/at-ishikawa/ydweb/internal/testutil"
)

func TestLookupCommand(t *testing.T) {
	server := testutil.NewWordPageServer(t, testutil.WithStatus("broken", http.StatusNotFound))
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir, server.URL)

	for range 2 {
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetArgs([]string{"lookup", "Apple", "--config", cfgPath})
		cmd.SetOut(&out)
		require.NoError(t, cmd.Execute())
		assert.Equal(t, "n. apple 的释义\n", out.String())
	}
	assert.Equal(t, 1, server.Count("apple"), "the second lookup is served from the cache file")

	records, err := cache.NewFileStore(testutil.CachePath(tmpDir)).Load()
	require.NoError(t, err)
	assert.Contains(t, records, "apple")
}

func TestLookupCommand_OfflineWord(t *testing.T) {
	server := testutil.NewWordPageServer(t, testutil.WithStatus("broken", http.StatusNotFound))
	cfgPath := testutil.SetupTestConfig(t, t.TempDir(), server.URL)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs([]string{"lookup", "the", "--config", cfgPath})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "art.")
	assert.Equal(t, 0, server.Total())
}

func TestLookupCommand_NetworkError(t *testing.T) {
	server := testutil.NewWordPageServer(t, testutil.WithStatus("broken", http.StatusNotFound))
	cfgPath := testutil.SetupTestConfig(t, t.TempDir(), server.URL)

	cmd := newRootCommand()
	cmd.SetArgs([]string{"lookup", "broken", "--config", cfgPath})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 404")
}
