package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/snappy"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

const formatVersion = 1

type payload struct {
	Version int                          `json:"version"`
	Records map[string]dictionary.Record `json:"records"`
}

// FileStore persists the whole cache as one snappy-compressed JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The file does not need to exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every record. A missing file is an empty cache.
func (s *FileStore) Load() (map[string]dictionary.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the file contents with records.
// The data is written to a temporary file first and renamed over the target.
func (s *FileStore) Save(records map[string]dictionary.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

// Merge adds records to the stored ones. records win over stored entries with the same word.
func (s *FileStore) Merge(records map[string]dictionary.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load()
	if err != nil {
		return fmt.Errorf("s.load > %w", err)
	}
	maps.Copy(stored, records)
	return s.save(stored)
}

func (s *FileStore) load() (map[string]dictionary.Record, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]dictionary.Record), nil
	}
	if err != nil {
		return nil, &dictionary.IOError{Op: "open", Path: s.path, Err: err}
	}
	defer func() {
		_ = file.Close()
	}()

	var p payload
	if err := json.NewDecoder(snappy.NewReader(file)).Decode(&p); err != nil {
		return nil, &dictionary.DecodeError{Path: s.path, Err: err}
	}
	if p.Version != formatVersion {
		return nil, &dictionary.DecodeError{Path: s.path, Err: fmt.Errorf("unsupported format version %d", p.Version)}
	}
	if p.Records == nil {
		p.Records = make(map[string]dictionary.Record)
	}
	return p.Records, nil
}

func (s *FileStore) save(records map[string]dictionary.Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &dictionary.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &dictionary.IOError{Op: "create", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if records == nil {
		records = make(map[string]dictionary.Record)
	}
	writer := snappy.NewBufferedWriter(tmp)
	if err := json.NewEncoder(writer).Encode(payload{Version: formatVersion, Records: records}); err != nil {
		return &dictionary.IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := writer.Close(); err != nil {
		return &dictionary.IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &dictionary.IOError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &dictionary.IOError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &dictionary.IOError{Op: "rename", Path: s.path, Err: err}
	}
	committed = true
	return nil
}
