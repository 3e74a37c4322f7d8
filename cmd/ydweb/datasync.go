package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/ydweb/internal/cache"
	"github.com/at-ishikawa/ydweb/internal/database"
	"github.com/at-ishikawa/ydweb/internal/datasync"
	"github.com/at-ishikawa/ydweb/internal/dictionary"
	"github.com/at-ishikawa/ydweb/schemas"
)

func newExportCommand() *cobra.Command {
	var opts datasync.Options
	var migrate bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export cached records into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			records, err := cache.NewFileStore(cfg.Cache.Path).Load()
			if err != nil {
				return fmt.Errorf("store.Load() > %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()
			if migrate && !opts.DryRun {
				if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
					return fmt.Errorf("database.Migrate() > %w", err)
				}
			}

			exporter := datasync.NewExporter(dictionary.NewDBRecordRepository(db), cmd.OutOrStdout())
			result, err := exporter.Export(ctx, records, opts)
			if err != nil {
				return fmt.Errorf("exporter.Export() > %w", err)
			}
			printSummary(cmd, "Export", result, opts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update-existing", false, "Update existing rows with cached data")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create the tables before exporting")
	return cmd
}

func newImportCommand() *cobra.Command {
	var opts datasync.Options

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from the database into the cache file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := cache.NewFileStore(cfg.Cache.Path)
			cached, err := store.Load()
			if err != nil {
				return fmt.Errorf("store.Load() > %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			records, result, err := datasync.NewImporter(dictionary.NewDBRecordRepository(db)).Import(cmd.Context(), cached, opts)
			if err != nil {
				return fmt.Errorf("importer.Import() > %w", err)
			}
			if !opts.DryRun && len(records) > 0 {
				if err := store.Merge(records); err != nil {
					return fmt.Errorf("store.Merge() > %w", err)
				}
			}
			printSummary(cmd, "Import", result, opts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview changes without modifying the cache file")
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update-existing", false, "Replace cached records with database rows")
	return cmd
}

func printSummary(cmd *cobra.Command, title string, result *datasync.Result, opts datasync.Options) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "\n%s Summary:\n", title)
	if opts.DryRun {
		_, _ = fmt.Fprintln(out, "  (dry-run mode, no changes made)")
	}
	_, _ = fmt.Fprintf(out, "  Records: %d new, %d skipped, %d updated\n", result.New, result.Skipped, result.Updated)
}
