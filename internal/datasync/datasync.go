// Package datasync copies cached records between the cache file and a database.
package datasync

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

// Result tracks counts for an export or import run.
type Result struct {
	New     int
	Skipped int
	Updated int
}

// Options controls sync behavior.
type Options struct {
	DryRun         bool
	UpdateExisting bool
}

// Exporter writes cached records to a repository.
type Exporter struct {
	repository dictionary.RecordRepository
	writer     io.Writer
}

func NewExporter(repository dictionary.RecordRepository, writer io.Writer) *Exporter {
	return &Exporter{
		repository: repository,
		writer:     writer,
	}
}

// Export writes records in word order. Rows that already exist are left alone unless
// opts.UpdateExisting is set and their content differs.
func (exp *Exporter) Export(ctx context.Context, records map[string]dictionary.Record, opts Options) (*Result, error) {
	var result Result

	for _, word := range slices.Sorted(maps.Keys(records)) {
		if err := ctx.Err(); err != nil {
			return &result, fmt.Errorf("export interrupted > %w", err)
		}
		record := records[word]

		existing, err := exp.repository.FindByWord(ctx, word)
		if err != nil {
			return nil, fmt.Errorf("FindByWord(%s) > %w", word, err)
		}

		if existing != nil {
			if !opts.UpdateExisting || existing.Record == record {
				result.Skipped++
				continue
			}
			existing.Record = record
			if !opts.DryRun {
				if err := exp.repository.Upsert(ctx, existing); err != nil {
					return nil, fmt.Errorf("Upsert(%s) > %w", word, err)
				}
			}
			_, _ = fmt.Fprintf(exp.writer, "updated: %s\n", word)
			result.Updated++
			continue
		}

		if !opts.DryRun {
			if err := exp.repository.Upsert(ctx, &dictionary.Entry{Word: word, Record: record}); err != nil {
				return nil, fmt.Errorf("Upsert(%s) > %w", word, err)
			}
		}
		_, _ = fmt.Fprintf(exp.writer, "new: %s\n", word)
		result.New++
	}

	return &result, nil
}

// Importer reads records from a repository.
type Importer struct {
	repository dictionary.RecordRepository
}

func NewImporter(repository dictionary.RecordRepository) *Importer {
	return &Importer{repository: repository}
}

// Import returns the repository rows that should be merged into cached, keyed by normalized
// word. Words already in cached are skipped unless opts.UpdateExisting is set.
func (imp *Importer) Import(ctx context.Context, cached map[string]dictionary.Record, opts Options) (map[string]dictionary.Record, *Result, error) {
	entries, err := imp.repository.FindAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("FindAll() > %w", err)
	}

	var result Result
	records := make(map[string]dictionary.Record, len(entries))
	for _, entry := range entries {
		word := dictionary.NormalizeWord(entry.Word)
		if word == "" {
			result.Skipped++
			continue
		}
		current, ok := cached[word]
		switch {
		case !ok:
			result.New++
		case current == entry.Record || !opts.UpdateExisting:
			result.Skipped++
			continue
		default:
			result.Updated++
		}
		records[word] = entry.Record
	}
	return records, &result, nil
}
