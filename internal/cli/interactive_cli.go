package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

const (
	prompt    = "> "
	farewell  = "Bye!"
	separator = "================================================================"
)

//go:generate mockgen -source=interactive_cli.go -destination=../mocks/cli/mock_resolver.go -package=mock_cli Resolver

type Resolver interface {
	Resolve(ctx context.Context, raw string) (dictionary.Result, error)
}

// InteractiveCLI reads one query per line and prints its explanation.
type InteractiveCLI struct {
	resolver   Resolver
	history    *History
	reader     *bufio.Reader
	writer     io.Writer
	interrupts chan os.Signal
	red        *color.Color
}

// NewInteractiveCLI creates the CLI. history may be nil.
func NewInteractiveCLI(resolver Resolver, history *History, stdin io.Reader, stdout io.Writer) *InteractiveCLI {
	return &InteractiveCLI{
		resolver:   resolver,
		history:    history,
		reader:     bufio.NewReader(stdin),
		writer:     stdout,
		interrupts: make(chan os.Signal, 1),
		red:        color.New(color.FgRed),
	}
}

type inputLine struct {
	text string
	err  error
}

// Run loops until the input ends, a read fails, or ctx is done. An interrupt abandons the
// current query or lookup and the loop continues.
func (cli *InteractiveCLI) Run(ctx context.Context) error {
	signal.Notify(cli.interrupts, os.Interrupt)
	defer signal.Stop(cli.interrupts)

	lines := make(chan inputLine)
	go cli.readLines(ctx, lines)

	for {
		cli.print(prompt)

		var line inputLine
		select {
		case <-ctx.Done():
			cli.println("\n" + farewell)
			return nil
		case <-cli.interrupts:
			cli.println("")
			continue
		case line = <-lines:
		}

		if line.text != "" {
			cli.lookup(ctx, line.text)
		}
		if line.err != nil {
			if !errors.Is(line.err, io.EOF) {
				slog.Default().Debug("failed to read input", slog.Any("error", line.err))
			}
			cli.println(farewell)
			return nil
		}
	}
}

func (cli *InteractiveCLI) readLines(ctx context.Context, lines chan<- inputLine) {
	for {
		text, err := cli.reader.ReadString('\n')
		select {
		case lines <- inputLine{text: text, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (cli *InteractiveCLI) lookup(ctx context.Context, text string) {
	query := strings.TrimSpace(text)
	if query == "" {
		return
	}
	if cli.history != nil {
		if err := cli.history.Append(query); err != nil {
			slog.Default().Warn("failed to save history", slog.Any("error", err))
		}
	}

	lookupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result dictionary.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := cli.resolver.Resolve(lookupCtx, query)
		done <- outcome{result, err}
	}()

	var got outcome
	select {
	case got = <-done:
	case <-cli.interrupts:
		cancel()
		<-done
		cli.println("")
		cli.printError("Interrupted")
		return
	}

	switch {
	case got.err == nil:
		cli.println(got.result.Text)
		cli.println(separator)
	case errors.Is(got.err, dictionary.ErrEmptyResult):
		cli.printError("[ERROR] Failed to fetch explanation!")
	case dictionary.IsNetworkError(got.err):
		cli.printError(fmt.Sprintf("[ERROR] %v", got.err))
	default:
		cli.printError(got.err.Error())
	}
}

func (cli *InteractiveCLI) print(text string) {
	_, _ = fmt.Fprint(cli.writer, text)
}

func (cli *InteractiveCLI) println(text string) {
	_, _ = fmt.Fprintln(cli.writer, text)
}

func (cli *InteractiveCLI) printError(text string) {
	_, _ = cli.red.Fprintln(cli.writer, text)
}
