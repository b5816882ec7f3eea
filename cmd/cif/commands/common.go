package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/observability"
	"github.com/Sumatoshi-tech/cif/pkg/version"
)

const (
	stdinArg   = "-"
	stdinLabel = "stdin"
)

// boolFlag reads a flag that may be inherited from the root command.
// Commands run without a root report false.
func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}

	return v
}

// initObservability builds the providers for one command run. Log settings
// come from cfg and are overridden by --verbose and --quiet.
func initObservability(cmd *cobra.Command, cfg *config.Config, mode observability.AppMode) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogWriter = cmd.ErrOrStderr()
	obsCfg.LogJSON = cfg.Logging.Format == config.LogFormatJSON || mode == observability.ModeMCP
	obsCfg = obsCfg.WithEnv(os.LookupEnv)

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg.LogLevel = level

	switch {
	case boolFlag(cmd, flagVerbose):
		obsCfg.LogLevel = slog.LevelDebug
	case boolFlag(cmd, flagQuiet):
		obsCfg.LogLevel = slog.LevelError
	}

	return observability.Init(obsCfg)
}

func shutdownProviders(providers observability.Providers) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// openInput opens path for reading; "-" selects in.
func openInput(path string, in io.Reader) (io.ReadCloser, string, error) {
	if path == stdinArg {
		return io.NopCloser(in), stdinLabel, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf("open input: %w", err)
	}

	return f, path, nil
}

func readInput(path string, in io.Reader) ([]byte, string, error) {
	rc, label, err := openInput(path, in)
	if err != nil {
		return nil, label, err
	}

	data, readErr := io.ReadAll(rc)

	closeErr := rc.Close()
	if readErr != nil || closeErr != nil {
		return nil, label, fmt.Errorf("read %s: %w", label, errors.Join(readErr, closeErr))
	}

	return data, label, nil
}
