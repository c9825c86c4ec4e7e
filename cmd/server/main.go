// Command server runs the storyboard HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ferdiebergado/storyboard/internal/app"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	opts := app.Options{}

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve the storyboard API until interrupted",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			if err := app.Run(ctx, opts); err != nil {
				return err
			}
			slog.Info("Server shutdown gracefully.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "config.json", "path to the JSON config file")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded outside production")
	return cmd
}

func main() {
	if err := newServeCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("Server stopped with an error.", "reason", err)
		os.Exit(1)
	}
}
