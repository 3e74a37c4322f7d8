package datasync

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
	mock_dictionary "github.com/at-ishikawa/ydweb/internal/mocks/dictionary"
)

func TestExporter_Export(t *testing.T) {
	cat := dictionary.Record{Basic: "n. 猫"}
	dog := dictionary.Record{Basic: "n. 狗"}

	tests := []struct {
		name    string
		records map[string]dictionary.Record
		opts    Options
		setup   func(repo *mock_dictionary.MockRecordRepository)
		want    *Result
		wantOut string
	}{
		{
			name:    "new records are inserted in word order",
			records: map[string]dictionary.Record{"dog": dog, "cat": cat},
			setup: func(repo *mock_dictionary.MockRecordRepository) {
				gomock.InOrder(
					repo.EXPECT().FindByWord(gomock.Any(), "cat").Return(nil, nil),
					repo.EXPECT().Upsert(gomock.Any(), &dictionary.Entry{Word: "cat", Record: cat}).Return(nil),
					repo.EXPECT().FindByWord(gomock.Any(), "dog").Return(nil, nil),
					repo.EXPECT().Upsert(gomock.Any(), &dictionary.Entry{Word: "dog", Record: dog}).Return(nil),
				)
			},
			want:    &Result{New: 2},
			wantOut: "new: cat\nnew: dog\n",
		},
		{
			name:    "existing records are skipped by default",
			records: map[string]dictionary.Record{"cat": cat},
			setup: func(repo *mock_dictionary.MockRecordRepository) {
				repo.EXPECT().FindByWord(gomock.Any(), "cat").Return(&dictionary.Entry{Word: "cat", Record: dictionary.Record{Basic: "old"}}, nil)
			},
			want: &Result{Skipped: 1},
		},
		{
			name:    "existing records are updated when requested",
			records: map[string]dictionary.Record{"cat": cat},
			opts:    Options{UpdateExisting: true},
			setup: func(repo *mock_dictionary.MockRecordRepository) {
				repo.EXPECT().FindByWord(gomock.Any(), "cat").Return(&dictionary.Entry{Word: "cat", Record: dictionary.Record{Basic: "old"}}, nil)
				repo.EXPECT().Upsert(gomock.Any(), &dictionary.Entry{Word: "cat", Record: cat}).Return(nil)
			},
			want:    &Result{Updated: 1},
			wantOut: "updated: cat\n",
		},
		{
			name:    "identical records are not rewritten",
			records: map[string]dictionary.Record{"cat": cat},
			opts:    Options{UpdateExisting: true},
			setup: func(repo *mock_dictionary.MockRecordRepository) {
				repo.EXPECT().FindByWord(gomock.Any(), "cat").Return(&dictionary.Entry{Word: "cat", Record: cat}, nil)
			},
			want: &Result{Skipped: 1},
		},
		{
			name:    "dry run does not write",
			records: map[string]dictionary.Record{"cat": cat, "dog": dog},
			opts:    Options{DryRun: true, UpdateExisting: true},
			setup: func(repo *mock_dictionary.MockRecordRepository) {
				repo.EXPECT().FindByWord(gomock.Any(), "cat").Return(nil, nil)
				repo.EXPECT().FindByWord(gomock.Any(), "dog").Return(&dictionary.Entry{Word: "dog"}, nil)
				repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Times(0)
			},
			want:    &Result{New: 1, Updated: 1},
			wantOut: "new: cat\nupdated: dog\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock_dictionary.NewMockRecordRepository(ctrl)
			tt.setup(repo)

			var out bytes.Buffer
			got, err := NewExporter(repo, &out).Export(context.Background(), tt.records, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

func TestExporter_Export_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_dictionary.NewMockRecordRepository(ctrl)
	repo.EXPECT().FindByWord(gomock.Any(), "cat").Return(nil, nil)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	_, err := NewExporter(repo, &bytes.Buffer{}).Export(context.Background(), map[string]dictionary.Record{
		"cat": {Basic: "n. 猫"},
	}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestExporter_Export_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_dictionary.NewMockRecordRepository(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter(repo, &bytes.Buffer{}).Export(ctx, map[string]dictionary.Record{
		"cat": {Basic: "n. 猫"},
	}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImporter_Import(t *testing.T) {
	cat := dictionary.Record{Basic: "n. 猫"}
	dog := dictionary.Record{Basic: "n. 狗"}

	tests := []struct {
		name       string
		entries    []dictionary.Entry
		cached     map[string]dictionary.Record
		opts       Options
		want       map[string]dictionary.Record
		wantResult *Result
	}{
		{
			name:       "new rows are imported with normalized words",
			entries:    []dictionary.Entry{{Word: " Cat ", Record: cat}, {Word: "", Record: dog}},
			cached:     map[string]dictionary.Record{},
			want:       map[string]dictionary.Record{"cat": cat},
			wantResult: &Result{New: 1, Skipped: 1},
		},
		{
			name:       "cached words win by default",
			entries:    []dictionary.Entry{{Word: "cat", Record: cat}, {Word: "dog", Record: dog}},
			cached:     map[string]dictionary.Record{"cat": {Basic: "cached"}},
			want:       map[string]dictionary.Record{"dog": dog},
			wantResult: &Result{New: 1, Skipped: 1},
		},
		{
			name:       "cached words are replaced when requested",
			entries:    []dictionary.Entry{{Word: "cat", Record: cat}},
			cached:     map[string]dictionary.Record{"cat": {Basic: "cached"}},
			opts:       Options{UpdateExisting: true},
			want:       map[string]dictionary.Record{"cat": cat},
			wantResult: &Result{Updated: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock_dictionary.NewMockRecordRepository(ctrl)
			repo.EXPECT().FindAll(gomock.Any()).Return(tt.entries, nil)

			got, result, err := NewImporter(repo).Import(context.Background(), tt.cached, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantResult, result)
		})
	}
}
