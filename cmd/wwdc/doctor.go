package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wwdc-sessions/internal/events"
	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
	"github.com/Zuo-Peng/wwdc-sessions/internal/scan"
)

func doctorCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "doctor [root]",
		Short: "Self-check: verify the sessions root, DB, FTS5 and the JSON output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "=== Sessions Root ===")
			root, rootErr := cfg.Root(args)
			if rootErr != nil {
				fmt.Fprintf(out, "  %v\n", rootErr)
			} else {
				checkDir(out, "Root", root)

				fmt.Fprintln(out, "\n=== File Scan ===")
				years, err := scan.ScanYears(root)
				if err != nil {
					fmt.Fprintf(out, "  scan error: %v\n", err)
				} else {
					fmt.Fprintf(out, "  Years with %s: %d\n", "_sessions.yml", len(years))
				}
			}

			if output == "" {
				output = cfg.Output
			}
			if output != "" {
				fmt.Fprintln(out, "\n=== JSON Output ===")
				fmt.Fprintf(out, "  Path: %s\n", output)
				if data, err := os.ReadFile(output); err != nil {
					fmt.Fprintf(out, "  Status: NOT READABLE (%v)\n", err)
				} else if err := events.Validate(data); err != nil {
					fmt.Fprintf(out, "  Status: INVALID\n  %v\n", err)
				} else {
					fmt.Fprintln(out, "  Status: OK (matches schema)")
				}
			}

			fmt.Fprintln(out, "\n=== Database ===")
			fmt.Fprintf(out, "  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Fprintln(out, "  Status: NOT FOUND (run 'wwdc index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			yearCount, err := db.YearCount()
			if err != nil {
				return fmt.Errorf("count years: %w", err)
			}
			sessionCount, err := db.SessionCount()
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			fmt.Fprintf(out, "  Years:    %d\n", yearCount)
			fmt.Fprintf(out, "  Sessions: %d\n", sessionCount)

			fmt.Fprintln(out, "\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM sessions_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Fprintf(out, "  FTS5 error: %v\n", err)
			} else {
				fmt.Fprintf(out, "  FTS5 entries: %d\n", ftsCount)
				if ftsCount == sessionCount {
					fmt.Fprintln(out, "  Status: OK (synced)")
				} else {
					fmt.Fprintf(out, "  Status: MISMATCH (sessions=%d, fts=%d)\n", sessionCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeKB := float64(info.Size()) / 1024
				fmt.Fprintf(out, "\n=== DB Size: %.1f KB ===\n", sizeKB)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "JSON file to validate (defaults to config output)")

	return cmd
}

func checkDir(out io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Fprintf(out, "  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(out, "  %s: %s (OK)\n", name, path)
	}
}
