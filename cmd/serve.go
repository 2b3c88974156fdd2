package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sebrandon1/pulsepoint/internal/server"
	"github.com/sebrandon1/pulsepoint/internal/triage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the triage page and HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(os.Stdout)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Warn().Err(err).Msg("closing provider")
			}
		}()

		if _, _, err := a.resolver.Resolve(ctx); err != nil {
			log.Error().Err(err).Msg("no model available")
			return fmt.Errorf("%w: %w", triage.ErrConfiguration, err)
		}

		return server.New(cfg, log, a.provider.Name(), a.resolver, a.triage).Run(ctx)
	},
}
