package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wwdc-sessions/internal/config"
	"github.com/Zuo-Peng/wwdc-sessions/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wwdc",
		Short:         "WWDC sessions - convert yearly _sessions.yml files to JSON and search them",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace/debug/info/warn/error/disabled)")

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	return rootCmd
}

// loadEnv reads the config file, applies the persistent flags and builds
// the logger every subcommand shares.
func loadEnv(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		cfg.LogLevel = f.Value.String()
		if err := cfg.Validate(); err != nil {
			return nil, zerolog.Nop(), err
		}
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Out:    cmd.ErrOrStderr(),
		Pretty: true,
	})
	return cfg, log, nil
}

func parseYearArg(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return uint(n), nil
}
