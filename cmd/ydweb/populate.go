package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/ydweb/internal/cache"
	"github.com/at-ishikawa/ydweb/internal/populate"
)

func newPopulateCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "populate <word list> <concurrency> [checkpoint path]",
		Short: "Fetch every uncached word of a word list",
		Long: "Fetch every word of a newline-delimited word list that is neither cached nor in the offline dictionary.\n" +
			"Results are merged into the cache file, or written to the checkpoint path when it is given.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			concurrency, err := strconv.Atoi(args[1])
			if err != nil || concurrency < 1 {
				return fmt.Errorf("invalid concurrency %q: must be a positive integer", args[1])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			words, err := populate.ReadWordListFile(args[0])
			if err != nil {
				return fmt.Errorf("populate.ReadWordListFile > %w", err)
			}

			mainStore, memory, err := loadCache(cfg)
			if err != nil {
				return fmt.Errorf("loadCache > %w", err)
			}
			dict, err := loadStatic(cfg)
			if err != nil {
				return err
			}

			var store populate.Store = mainStore
			standalone := len(args) == 3
			if standalone {
				store = cache.NewFileStore(args[2])
			}

			var reporter populate.Reporter = populate.NewTextReporter(cmd.OutOrStdout())
			if quiet {
				reporter = populate.NopReporter{}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			populator := populate.NewPopulator(
				newRemote(cfg),
				[]populate.Known{memory, dict},
				store,
				reporter,
				populate.Config{
					Concurrency:        concurrency,
					CheckpointInterval: cfg.Populate.CheckpointInterval,
					Standalone:         standalone,
				},
			)
			result, err := populator.Populate(ctx, words)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"%d words: %d skipped, %d resolved, %d failed, %d checkpoints\n",
				result.Total, result.Skipped, result.Resolved, result.Failed, result.Checkpoints)
			if err != nil {
				return fmt.Errorf("populator.Populate > %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print per-word progress")
	return cmd
}
