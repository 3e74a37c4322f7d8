package populate

import (
	"io"
	"sync"

	"github.com/fatih/color"
)

// Reporter is notified around every remote lookup of a batch. index starts at 1.
// Methods are called from several goroutines.
type Reporter interface {
	Start(index, total int, word string)
	Done(index, total int, word string, err error)
}

// NopReporter discards every notification.
type NopReporter struct{}

func (NopReporter) Start(int, int, string)       {}
func (NopReporter) Done(int, int, string, error) {}

// TextReporter writes one line per notification.
type TextReporter struct {
	mu     sync.Mutex
	writer io.Writer
	green  *color.Color
	red    *color.Color
}

func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
	}
}

func (r *TextReporter) Start(index, total int, word string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.green.Fprintf(r.writer, "[%d/%d] Fetching %s\n", index, total, word)
}

func (r *TextReporter) Done(index, total int, word string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		_, _ = r.red.Fprintf(r.writer, "[%d/%d] Failed %s: %v\n", index, total, word, err)
		return
	}
	_, _ = r.green.Fprintf(r.writer, "[%d/%d] Fetched %s\n", index, total, word)
}
