package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
	"github.com/Zuo-Peng/wwdc-sessions/internal/open"
)

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <year> <sessionId>",
		Short: "Open the session page in the browser",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}

			cfg, _, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenSession(db, year, args[1])
		},
	}
}
