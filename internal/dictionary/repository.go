package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Entry is a Record stored in the dictionary_records table.
type Entry struct {
	Word string `db:"word" yaml:"word"`
	Record
	CreatedAt time.Time `db:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" yaml:"updated_at"`
}

//go:generate mockgen -source=repository.go -destination=../mocks/dictionary/mock_repository.go -package=mock_dictionary

// RecordRepository defines operations for records kept in a database.
type RecordRepository interface {
	FindAll(ctx context.Context) ([]Entry, error)
	FindByWord(ctx context.Context, word string) (*Entry, error)
	Upsert(ctx context.Context, entry *Entry) error
}

// DBRecordRepository implements RecordRepository using MySQL.
type DBRecordRepository struct {
	db *sqlx.DB
}

func NewDBRecordRepository(db *sqlx.DB) *DBRecordRepository {
	return &DBRecordRepository{db: db}
}

// FindAll returns all records ordered by word.
func (r *DBRecordRepository) FindAll(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, "SELECT * FROM dictionary_records ORDER BY word"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(dictionary_records) > %w", err)
	}
	return entries, nil
}

// FindByWord returns the record for word, or nil if there is none.
func (r *DBRecordRepository) FindByWord(ctx context.Context, word string) (*Entry, error) {
	var entry Entry
	err := r.db.GetContext(ctx, &entry, "SELECT * FROM dictionary_records WHERE word = ?", word)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(dictionary_record) > %w", err)
	}
	return &entry, nil
}

func (r *DBRecordRepository) Upsert(ctx context.Context, entry *Entry) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO dictionary_records (word, basic, authoritative, extended, examples, typo_suggestion)
		VALUES (:word, :basic, :authoritative, :extended, :examples, :typo_suggestion)
		ON DUPLICATE KEY UPDATE
			basic = VALUES(basic),
			authoritative = VALUES(authoritative),
			extended = VALUES(extended),
			examples = VALUES(examples),
			typo_suggestion = VALUES(typo_suggestion)`,
		entry)
	if err != nil {
		return fmt.Errorf("db.NamedExecContext(upsert dictionary_record) > %w", err)
	}
	return nil
}
