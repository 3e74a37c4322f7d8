package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/ydweb/internal/cli"
	"github.com/at-ishikawa/ydweb/internal/persister"
)

func runInteractive(cmd *cobra.Command) error {
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

	var history *cli.History
	if cfg.History.Path != "" {
		history = cli.NewHistory(cfg.History.Path)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	background := persister.New(memory, store, cfg.Persister.Interval)
	done := make(chan struct{})
	go func() {
		defer close(done)
		background.Run(ctx)
	}()

	err = cli.NewInteractiveCLI(resolver, history, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)

	// Run flushes once more before it returns
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("cli.Run > %w", err)
	}
	return nil
}
