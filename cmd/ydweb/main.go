package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configFile string
	debugMode  bool
	logFormat  = LogFormatText
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

var (
	_             pflag.Value = (*LogFormat)(nil)
	allLogFormats             = []LogFormat{LogFormatText, LogFormatJSON}
)

func (f *LogFormat) Set(val string) error {
	for _, format := range allLogFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid log format: %s", val)
}

func (f LogFormat) String() string {
	return string(f)
}

func (f *LogFormat) Type() string {
	return "LogFormat"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "ydweb",
		Short:         "Look up English words with a local cache",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debugMode, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd)
		},
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./config.yml or $HOME/.config/ydweb/config.yml)")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	flags.Var(&logFormat, "log-format", fmt.Sprintf("Log format. Possible values are %v", allLogFormats))

	rootCommand.AddCommand(
		newPopulateCommand(),
		newLookupCommand(),
		newExportCommand(),
		newImportCommand(),
	)
	return rootCommand
}

func setupLogger(debugMode bool, format LogFormat) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	var handler slog.Handler
	switch format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(os.Stderr, options)
	default:
		handler = slog.NewTextHandler(os.Stderr, options)
	}
	slog.SetDefault(slog.New(handler))
}
