package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagniknandigit/internship-management/api"
	"github.com/sagniknandigit/internship-management/internal/config"
	"github.com/sagniknandigit/internship-management/pkg/logs"
	"github.com/sagniknandigit/internship-management/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"

	// logFile is the rotating log output opened by setup.
	logFile io.Closer = io.NopCloser(nil)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ims",
		Short:         "Internship management service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// serve is the default action
		RunE: runServe,
	}
	root.PersistentFlags().String("config", "", "Path to config YAML file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newBackupCmd())
	root.AddCommand(newRestoreCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newScreenCmd())
	return root
}

// setup loads and validates the config and installs the process logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, closer := logs.New(cfg.Logging, os.Stdout)
	logFile = closer
	slog.SetDefault(logger)
	api.SetLogger(logger)
	ollama.SetLogger(logger)
	return cfg, logger, nil
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		slog.Error("command failed", "err", err)
	}
	if cerr := logFile.Close(); cerr != nil {
		slog.Error("close log file", "err", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
