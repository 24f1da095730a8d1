package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
	"github.com/Zuo-Peng/wwdc-sessions/internal/search"
	"github.com/Zuo-Peng/wwdc-sessions/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}

func searchCmd() *cobra.Command {
	var track string
	var year uint
	var limit int
	var plain bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search across indexed sessions",
		Long: `Search session titles and descriptions using FTS5. On a terminal this opens an
interactive browser; Enter copies the session URL. When piped, output is TSV:
  year, sessionId, track, title, url, snippet`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			// Auto-update index before searching
			if cfg.SessionsRoot != "" {
				if _, err := index.IndexAll(db, cfg.SessionsRoot, index.Options{URLBase: cfg.URLBase, Logger: log}); err != nil {
					log.Warn().Err(err).Msg("index update")
				}
			}

			var query string
			if len(args) > 0 {
				query = args[0]
			}
			opts := search.Options{
				Year:  year,
				Track: track,
				Limit: limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if !plain && term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, query, opts)
			}

			opts.Query = query
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No results found.")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				snippet := tsvField(r.Snippet)
				if !plain {
					snippet = colorizeSnippet(snippet)
				} else {
					snippet = strings.NewReplacer(">>>", "", "<<<", "").Replace(snippet)
				}
				url := r.URL
				if url == "" {
					url = "-"
				}
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.Year,
					r.SessionID,
					tsvField(r.Track),
					tsvField(r.Title),
					url,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().UintVar(&year, "year", 0, "Only sessions from this year")
	cmd.Flags().StringVar(&track, "track", "", "Only sessions from this track")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&plain, "plain", false, "Never open the interactive browser; no colors")

	return cmd
}
