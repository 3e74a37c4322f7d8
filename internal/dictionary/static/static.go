// Package static provides the read-only dictionaries bundled with the tool.
package static

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

//go:embed data/offline.yml
var offline []byte

// Dictionary is an immutable word to Record mapping.
type Dictionary struct {
	records map[string]dictionary.Record
}

var _ dictionary.Lookuper = (*Dictionary)(nil)

// New creates a Dictionary from records. Keys are normalized.
func New(records map[string]dictionary.Record) *Dictionary {
	normalized := make(map[string]dictionary.Record, len(records))
	for word, record := range records {
		normalized[dictionary.NormalizeWord(word)] = record
	}
	return &Dictionary{records: normalized}
}

// Load returns the bundled dictionary extended with the YAML files at paths.
// Later files override earlier entries.
func Load(paths ...string) (*Dictionary, error) {
	records, err := Parse(bytes.NewReader(offline))
	if err != nil {
		return nil, fmt.Errorf("Parse(offline.yml) > %w", err)
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		extra, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for word, record := range extra {
			records[word] = record
		}
	}
	return New(records), nil
}

// Parse decodes a YAML mapping from word to Record.
func Parse(reader io.Reader) (map[string]dictionary.Record, error) {
	records := make(map[string]dictionary.Record)
	if err := yaml.NewDecoder(reader).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml.Decode > %w", err)
	}
	return records, nil
}

func readFile(path string) (map[string]dictionary.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	records, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("Parse(%s) > %w", path, err)
	}
	return records, nil
}

// Lookup returns dictionary.ErrNotFound for unknown words.
func (d *Dictionary) Lookup(_ context.Context, word string) (dictionary.Record, error) {
	record, ok := d.records[dictionary.NormalizeWord(word)]
	if !ok {
		return dictionary.Record{}, dictionary.ErrNotFound
	}
	return record, nil
}

// Has reports whether word is in the dictionary.
func (d *Dictionary) Has(word string) bool {
	_, ok := d.records[dictionary.NormalizeWord(word)]
	return ok
}

func (d *Dictionary) Len() int {
	return len(d.records)
}
