package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
	"github.com/Zuo-Peng/wwdc-sessions/internal/render"
)

func showCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "show <year> <sessionId>",
		Short: "Print one indexed session",
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

			opts := render.Options{Query: query, NoColor: true}
			if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
				opts.NoColor = false
				if w, _, err := term.GetSize(fd); err == nil {
					opts.Width = w
				}
			}

			out, err := render.RenderSession(db, year, args[1], opts)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")

	return cmd
}
