// Package testutil provides shared test helpers for config files, word lists and a fake word page server.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// CachePath returns the cache file path used by SetupTestConfig.
func CachePath(tmpDir string) string {
	return filepath.Join(tmpDir, "cache", "word_cache.json.sz")
}

// HistoryPath returns the history file path used by SetupTestConfig.
func HistoryPath(tmpDir string) string {
	return filepath.Join(tmpDir, "word_history.txt")
}

// SetupTestConfig creates a config file that keeps every file under tmpDir and sends remote
// lookups to baseURL. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, baseURL string) string {
	t.Helper()

	configContent := fmt.Sprintf(`cache:
  path: %s
persister:
  interval: 50ms
history:
  path: %s
remote:
  base_url: %s/w/
  timeout: 2s
populate:
  checkpoint_interval: 1s
`,
		CachePath(tmpDir),
		HistoryPath(tmpDir),
		strings.TrimSuffix(baseURL, "/"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupBrokenConfig creates a config file that cannot be parsed.
func SetupBrokenConfig(t *testing.T) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("remote:\n  base_url: [\n"), 0644))
	return cfgPath
}

// WriteWordList writes one word per line into dir/words.txt and returns its path.
func WriteWordList(t *testing.T, dir string, words ...string) string {
	t.Helper()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0644))
	return path
}

// WordPage returns a minimal word page whose basic translation is "n. <word> 的释义".
func WordPage(word string) string {
	return fmt.Sprintf(`<html><body><div id="phrsListTab"><div class="trans-container"><ul><li>n. %s 的释义</li></ul></div></div></body></html>`, word)
}

// WordPageServer serves WordPage for every /w/<word> request and counts the requests per word.
type WordPageServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests map[string]int
	statuses map[string]int
}

// WordPageServerOption configures a WordPageServer.
type WordPageServerOption func(*WordPageServer)

// WithStatus makes the server answer word with status and an empty body.
func WithStatus(word string, status int) WordPageServerOption {
	return func(s *WordPageServer) {
		s.statuses[word] = status
	}
}

// NewWordPageServer starts a server that is closed when the test finishes.
func NewWordPageServer(t *testing.T, opts ...WordPageServerOption) *WordPageServer {
	t.Helper()

	server := &WordPageServer{
		requests: make(map[string]int),
		statuses: make(map[string]int),
	}
	for _, opt := range opts {
		opt(server)
	}

	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		word := strings.TrimPrefix(r.URL.Path, "/w/")

		server.mu.Lock()
		server.requests[word]++
		status, ok := server.statuses[word]
		server.mu.Unlock()

		if ok {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, WordPage(word))
	}))
	t.Cleanup(server.Close)
	return server
}

// Count returns how often word was requested.
func (s *WordPageServer) Count(word string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[word]
}

// Total returns the number of requests for any word.
func (s *WordPageServer) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}
