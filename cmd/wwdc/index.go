package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [root]",
		Short: "Load sessions into the local search index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			root, err := cfg.Root(args)
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Scanning %s...\n", root)

			stats, err := index.IndexAll(db, root, index.Options{URLBase: cfg.URLBase, Logger: log})
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %s\n", stats)
			if stats.Errors > 0 {
				return fmt.Errorf("%d years failed to index", stats.Errors)
			}
			return nil
		},
	}
}
