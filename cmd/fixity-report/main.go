// Package main provides the fixity-report command, which exports YUDL fixity
// check results to a date-stamped CSV file.
package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/yudl-client/internal/cliutil"
	"github.com/Sternrassler/yudl-client/pkg/fixity"
	"github.com/Sternrassler/yudl-client/pkg/logging"
	"github.com/Sternrassler/yudl-client/pkg/metrics"
)

const flagEndpoint = "endpoint"

func newRootCmd() *cobra.Command {
	v := cliutil.NewViper()

	cmd := &cobra.Command{
		Use:   "fixity-report",
		Short: "Fetch fixity reports from YUDL and write results to a CSV file",
		Long: "Fetch fixity check results from the YUDL fixity endpoint, page by page, and append them\n" +
			"to yudl-fixity-results-{YYYYMMDD}.csv. The header row is written once per file.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String(flagEndpoint, "", "URL for the fixity report endpoint")
	cliutil.AddFetchFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := cliutil.BindFlags(cmd, v); err != nil {
			return err
		}
		cliutil.SetupLogging(v, cmd.ErrOrStderr())
		logger := logging.NewLogger("fixity-report")

		endpoint, err := cliutil.RequireString(v, flagEndpoint)
		if err != nil {
			return err
		}

		fs := afero.NewOsFs()
		yudl, err := cliutil.NewClient(v, fs)
		if err != nil {
			return err
		}

		ctx, stop := cliutil.SignalContext()
		defer stop()

		reporter := fixity.NewReporter(yudl, fs, fixity.Config{
			OutputDir: v.GetString(cliutil.FlagOutputDir),
		}, logger)

		_, runErr := reporter.Run(ctx, endpoint)
		return errors.Join(runErr, metrics.WriteTextfile(v.GetString(cliutil.FlagMetricsFile)))
	}

	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	os.Exit(cliutil.Execute(newRootCmd()))
}
