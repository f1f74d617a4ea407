package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oukeidos/vekotin/internal/cleanup"
	"github.com/oukeidos/vekotin/internal/config"
	"github.com/oukeidos/vekotin/internal/logger"
	"github.com/oukeidos/vekotin/internal/prompt"
)

const configDirEnv = "VEKOTIN_CONFIG_DIR"

var (
	getenv        = os.Getenv
	defaultConfig = config.DefaultDir
	newConfirmer  = prompt.DefaultConfirmer
)

// resolveConfigDir picks --config-dir, then $VEKOTIN_CONFIG_DIR, then the
// per-user default.
func resolveConfigDir(opts *globalOptions) (string, error) {
	if dir := strings.TrimSpace(opts.configDir); dir != "" {
		return dir, nil
	}
	if dir := strings.TrimSpace(getenv(configDirEnv)); dir != "" {
		return dir, nil
	}
	return defaultConfig()
}

// openStore opens the configuration store without a file watcher and
// closes it when the command finishes.
func openStore(opts *globalOptions, extra ...config.Option) (*config.Store, error) {
	return openStoreWith(opts, append([]config.Option{config.WithoutWatch()}, extra...))
}

// openWatchedStore is openStore with external edits picked up.
func openWatchedStore(opts *globalOptions, extra ...config.Option) (*config.Store, error) {
	return openStoreWith(opts, extra)
}

func openStoreWith(opts *globalOptions, storeOpts []config.Option) (*config.Store, error) {
	dir, err := resolveConfigDir(opts)
	if err != nil {
		return nil, err
	}
	store, err := config.Open(dir, storeOpts...)
	if err != nil {
		return nil, err
	}
	cleanup.Register("config store", store.Close)
	return store, nil
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Interrupted; stopping")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
