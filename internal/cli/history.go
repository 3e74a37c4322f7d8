package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// History appends queries to a file in the prompt_toolkit FileHistory format:
//
//	# 2024-05-01 10:00:00.000000
//	+query
type History struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewHistory(path string) *History {
	return &History{
		path: path,
		now:  time.Now,
	}
}

func (h *History) Append(entry string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}
	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("os.OpenFile > %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var builder strings.Builder
	builder.WriteString("\n# " + h.now().Format("2006-01-02 15:04:05.000000") + "\n")
	for _, line := range strings.Split(entry, "\n") {
		builder.WriteString("+" + line + "\n")
	}
	if _, err := file.WriteString(builder.String()); err != nil {
		return fmt.Errorf("file.WriteString > %w", err)
	}
	return nil
}

// Entries returns the stored queries, oldest first. A missing file has no entries.
func (h *History) Entries() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.Open > %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var entries []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			entries = append(entries, strings.Join(current, "\n"))
			current = nil
		}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "+") {
			current = append(current, line[1:])
			continue
		}
		flush()
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Scan > %w", err)
	}
	return entries, nil
}
