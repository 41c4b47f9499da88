// Package main provides the fetch-fids command, which exports YUDL file
// identifiers to one date-stamped text file per category.
package main

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/yudl-client/internal/cliutil"
	"github.com/Sternrassler/yudl-client/pkg/fids"
	"github.com/Sternrassler/yudl-client/pkg/logging"
	"github.com/Sternrassler/yudl-client/pkg/metrics"
)

const (
	flagBaseURL   = "base-url"
	flagEndpoints = "endpoints"
)

func newRootCmd() *cobra.Command {
	v := cliutil.NewViper()

	cmd := &cobra.Command{
		Use:   "fetch-fids",
		Short: "Fetch file ids (fids) from YUDL and write them to files",
		Long: "Fetch file ids (fids) from the YUDL fid endpoints, page by page, and append them to\n" +
			"yudl-fids-{category}-{YYYYMMDD}.txt. Categories: " + strings.Join(fids.Categories, ", ") + ".",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String(flagBaseURL, "", "Base URL for the fid API endpoints (e.g., https://digital.library.yorku.ca)")
	cmd.Flags().String(flagEndpoints, "", "Comma-separated list of fid endpoints, or 'all'")
	cliutil.AddFetchFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := cliutil.BindFlags(cmd, v); err != nil {
			return err
		}
		cliutil.SetupLogging(v, cmd.ErrOrStderr())
		logger := logging.NewLogger("fetch-fids")

		baseURL, err := cliutil.RequireString(v, flagBaseURL)
		if err != nil {
			return err
		}
		selection, err := cliutil.RequireString(v, flagEndpoints)
		if err != nil {
			return err
		}

		fs := afero.NewOsFs()
		yudl, err := cliutil.NewClient(v, fs)
		if err != nil {
			return err
		}

		categories, unknown := fids.ParseCategories(selection)
		for _, name := range unknown {
			logger.Warn().Str("category", name).Msg("Skipping unknown endpoint")
		}

		ctx, stop := cliutil.SignalContext()
		defer stop()

		fetcher := fids.NewFetcher(yudl, fs, fids.Config{
			OutputDir: v.GetString(cliutil.FlagOutputDir),
		}, logger)

		_, runErr := fetcher.Run(ctx, baseURL, categories)
		return errors.Join(runErr, metrics.WriteTextfile(v.GetString(cliutil.FlagMetricsFile)))
	}

	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	os.Exit(cliutil.Execute(newRootCmd()))
}
