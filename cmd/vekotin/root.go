package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/cleanup"
	"github.com/oukeidos/vekotin/internal/files"
	"github.com/oukeidos/vekotin/internal/logger"
	"github.com/oukeidos/vekotin/internal/version"
)

type globalOptions struct {
	configDir   string
	logLevel    string
	logFilePath string
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		logger.Debug("Command failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", apperrors.PublicMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "vekotin",
		Short: "Desktop widget host",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configDir, "config-dir", "", "Configuration directory (default: $"+configDirEnv+" or the user config dir)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&opts.logFilePath, "log-file", "", "Also write JSONL logs to this file")

	cmd.AddCommand(
		newAboutCmd(),
		newLicensesCmd(),
		newWidgetsCmd(opts),
		newConfigCmd(opts),
		newPlaceCmd(),
		newWatchCmd(opts),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func setupLogging(opts *globalOptions) error {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return apperrors.InvalidArgument(err.Error())
	}
	var logFileW io.Writer
	if opts.logFilePath != "" {
		if err := files.RejectSymlinkPath(opts.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return apperrors.IO("Failed to open log file", err)
		}
		cleanup.Register("log file", f.Close)
		logFileW = f
	}
	logger.Init(level, logFileW)
	return nil
}
