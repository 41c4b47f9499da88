// Package cliutil holds the flag, environment and startup wiring shared by
// the YUDL command-line tools.
package cliutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/yudl-client/pkg/client"
	"github.com/Sternrassler/yudl-client/pkg/credentials"
	"github.com/Sternrassler/yudl-client/pkg/logging"
)

// EnvPrefix is prepended to every flag name to form its environment variable.
const EnvPrefix = "YUDL"

// Flag names shared by the tools.
const (
	FlagCredentials = "credentials"
	FlagOutputDir   = "output-dir"
	FlagTimeout     = "timeout"
	FlagLogLevel    = "log-level"
	FlagLogPretty   = "log-pretty"
	FlagMetricsFile = "metrics-file"
)

// NewViper returns a viper instance reading YUDL_* environment variables,
// with dashes in flag names mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// AddLoggingFlags registers the logging and metrics flags on cmd.
func AddLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagLogLevel, string(logging.LevelInfo), "Log level (debug, info, warn, error)")
	cmd.Flags().Bool(FlagLogPretty, true, "Human-readable log output instead of JSON")
	cmd.Flags().String(FlagMetricsFile, "", "Write Prometheus metrics to this file when the run ends")
}

// AddFetchFlags registers the flags of the tools that talk to the API.
func AddFetchFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagCredentials, "", "Path to the credentials file")
	cmd.Flags().String(FlagOutputDir, ".", "Directory for output files")
	cmd.Flags().Duration(FlagTimeout, 0, "Per-request timeout (0 waits indefinitely)")
	AddLoggingFlags(cmd)
}

// BindFlags binds every flag of cmd to v so that each can also be set
// through its environment variable.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	return v.BindPFlags(cmd.Flags())
}

// RequireString returns the value of key or an error naming both the flag
// and its environment variable.
func RequireString(v *viper.Viper, key string) (string, error) {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return "", fmt.Errorf("required flag --%s (or %s) not set", key, EnvName(key))
	}
	return value, nil
}

// EnvName returns the environment variable for a flag name.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// SetupLogging configures the global logger from the logging flags.
func SetupLogging(v *viper.Viper, out io.Writer) zerolog.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(v.GetString(FlagLogLevel))
	cfg.Pretty = v.GetBool(FlagLogPretty)
	if out != nil {
		cfg.Output = out
	}
	return logging.Setup(cfg)
}

// NewClient loads the credential named by the credentials flag and returns
// an API client. Errors here are fatal: no request has been made yet.
func NewClient(v *viper.Viper, fs afero.Fs) (*client.Client, error) {
	path, err := RequireString(v, FlagCredentials)
	if err != nil {
		return nil, err
	}

	password, err := credentials.Load(fs, path)
	if err != nil {
		return nil, err
	}

	cfg := client.DefaultConfig(password)
	cfg.Timeout = v.GetDuration(FlagTimeout)
	return client.New(cfg)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs cmd and returns the process exit code. Errors are printed to
// the command's error stream.
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
