// Package main provides the reconcile-fids command, which filters a previous
// fid list against a more recent one.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/yudl-client/internal/cliutil"
	"github.com/Sternrassler/yudl-client/pkg/logging"
	"github.com/Sternrassler/yudl-client/pkg/reconcile"
)

const flagRedisAddr = "redis-addr"

func newRootCmd() *cobra.Command {
	v := cliutil.NewViper()

	cmd := &cobra.Command{
		Use:   "reconcile-fids PREVIOUS RECENT OUTPUT",
		Short: "Create a fid list from a previous and a recent list, sorted in descending order",
		Long: "Create a new fid list with the unique lines of a previous and a recent fid list, sorted\n" +
			"in descending order. Lines that exist only in the recent list are excluded from the output.",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String(flagRedisAddr, "", "Compute the reconciliation in Redis at this address instead of in memory")
	cliutil.AddLoggingFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := cliutil.BindFlags(cmd, v); err != nil {
			return err
		}
		cliutil.SetupLogging(v, cmd.ErrOrStderr())
		logger := logging.NewLogger("reconcile-fids")

		previousPath, recentPath, outputPath := args[0], args[1], args[2]

		fs := afero.NewOsFs()
		for _, path := range []string{previousPath, recentPath} {
			exists, err := afero.Exists(fs, path)
			if err != nil {
				return fmt.Errorf("check %s: %w", path, err)
			}
			if !exists {
				return fmt.Errorf("path %q does not exist", path)
			}
		}

		var lines []string
		if addr := v.GetString(flagRedisAddr); addr != "" {
			previous, recent, err := reconcile.ReadSnapshots(fs, previousPath, recentPath)
			if err != nil {
				return err
			}

			redisClient := redis.NewClient(&redis.Options{Addr: addr})
			defer redisClient.Close()

			ctx := context.Background()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("connect to redis at %s: %w", addr, err)
			}

			lines, err = reconcile.NewRedisSets(redisClient, logger).Reconcile(ctx, previous, recent)
			if err != nil {
				return err
			}
			if err := reconcile.WriteFile(fs, outputPath, lines); err != nil {
				return err
			}
		} else {
			var err error
			lines, err = reconcile.Files(fs, previousPath, recentPath, outputPath)
			if err != nil {
				return err
			}
		}

		logger.Info().
			Str("previous", previousPath).
			Str("recent", recentPath).
			Str("path", outputPath).
			Int("lines", len(lines)).
			Msg("Processed fid lists, output written")

		return nil
	}

	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	os.Exit(cliutil.Execute(newRootCmd()))
}
