package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sebrandon1/pulsepoint/internal/triage"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the provider's models and show which one triage would use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		runErr := runModels(cmd.Context(), a, cmd.OutOrStdout())
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("closing provider")
		}
		return runErr
	},
}

func runModels(ctx context.Context, a *app, out io.Writer) error {
	fmt.Fprintf(out, "Provider: %s\n", a.provider.Name())

	_, sel, err := a.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", triage.ErrConfiguration, err)
	}
	if len(sel.Candidates) > 0 {
		fmt.Fprintf(out, "Models (%d):\n", len(sel.Candidates))
		for _, id := range sel.Candidates {
			fmt.Fprintf(out, "  %s\n", id)
		}
	}
	fmt.Fprintf(out, "Selected: %s (%s)\n", sel.Model, sel.Source)
	if sel.Warning != "" {
		fmt.Fprintf(out, "Warning: %s\n", sel.Warning)
	}
	return nil
}
