package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
	"github.com/at-ishikawa/ydweb/internal/persister"
)

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look up a word once and print the explanation",
		Long:  "Look up a word once. Append ! to the word for more detail, e.g. cat!!",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, memory, err := loadCache(cfg)
			if err != nil {
				return fmt.Errorf("loadCache > %w", err)
			}
			resolver, err := newResolver(cfg, memory)
			if err != nil {
				return fmt.Errorf("newResolver > %w", err)
			}

			saver := persister.New(memory, store, cfg.Persister.Interval)
			result, err := resolver.Resolve(cmd.Context(), args[0])
			if flushErr := saver.Flush(); flushErr != nil {
				return fmt.Errorf("persister.Flush > %w", flushErr)
			}
			if errors.Is(err, dictionary.ErrEmptyResult) {
				return fmt.Errorf("no explanation found for %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("resolver.Resolve > %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}
}
