package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wwdc-sessions/internal/convert"
	"github.com/Zuo-Peng/wwdc-sessions/internal/watch"
)

func convertCmd() *cobra.Command {
	var output string
	var jobs int
	var failFast, watchMode bool

	cmd := &cobra.Command{
		Use:   "convert <root>",
		Short: "Convert every year's _sessions.yml under root into one JSON document",
		Long: `Walks root for year directories (e.g. 2021/) holding a _sessions.yml file,
decodes each one and writes a single JSON document keyed by year and session id.
Without --output the document is printed to stdout.

Years that fail to decode are reported and skipped; the command then exits
with status 1. Use --fail-fast to stop at the first failure instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("jobs") {
				cfg.Jobs = jobs
			}
			if cmd.Flags().Changed("fail-fast") {
				cfg.FailFast = failFast
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			root := args[0]
			opts := convert.Options{
				URLBase:  cfg.URLBase,
				Jobs:     cfg.Jobs,
				FailFast: cfg.FailFast,
				Logger:   log,
			}

			run := func(ctx context.Context) error {
				res, err := convert.Run(ctx, root, opts)
				if err != nil {
					return err
				}
				if err := convert.WriteOutput(cfg.Output, res.Data, cmd.OutOrStdout()); err != nil {
					return err
				}
				if cfg.Output != "" {
					log.Info().Str("output", cfg.Output).Msg("written")
				}
				return res.Err()
			}

			if !watchMode {
				return run(cmd.Context())
			}

			if cfg.Output == "" {
				return errors.New("--watch requires --output")
			}
			if err := run(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("initial conversion")
			}

			w, err := watch.New(root, watch.DefaultDebounce, log)
			if err != nil {
				return err
			}
			defer w.Close()

			log.Info().Str("root", root).Msg("watching for changes")
			return w.Run(cmd.Context(), run)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().IntVar(&jobs, "jobs", 1, "Years decoded in parallel")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Abort on the first year that fails to decode")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "Rebuild the output whenever a _sessions.yml changes")

	return cmd
}
