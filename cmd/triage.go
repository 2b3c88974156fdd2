package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sebrandon1/pulsepoint/internal/alert"
	"github.com/sebrandon1/pulsepoint/internal/media"
	"github.com/sebrandon1/pulsepoint/internal/server"
	"github.com/sebrandon1/pulsepoint/internal/triage"
)

// triageOptions are the inputs of a one-shot triage.
type triageOptions struct {
	Age       int
	Symptoms  string
	ImagePath string
	AudioPath string
	Contact   string
	Latitude  *float64
	Longitude *float64
	JSON      bool
}

var (
	triageFlags triageOptions
	latFlag     float64
	lonFlag     float64
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage one patient from the command line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		opts := triageFlags
		if !cmd.Flags().Changed("age") {
			opts.Age = cfg.DefaultAge
		}
		if !cmd.Flags().Changed("contact") {
			opts.Contact = cfg.DefaultContact
		}
		if cmd.Flags().Changed("lat") {
			opts.Latitude = &latFlag
		}
		if cmd.Flags().Changed("lon") {
			opts.Longitude = &lonFlag
		}

		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		runErr := runTriage(cmd.Context(), a, opts, cmd.OutOrStdout())
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("closing provider")
		}
		return runErr
	},
}

func init() {
	f := triageCmd.Flags()
	f.IntVar(&triageFlags.Age, "age", 25, "patient age (1-100)")
	f.StringVar(&triageFlags.Symptoms, "symptoms", "", "description of the condition")
	f.StringVar(&triageFlags.ImagePath, "image", "", "photo of visual symptoms")
	f.StringVar(&triageFlags.AudioPath, "audio", "", "recording, e.g. a cough")
	f.StringVar(&triageFlags.Contact, "contact", "", "emergency contact number for SMS alerts")
	f.Float64Var(&latFlag, "lat", 0, "latitude of the patient")
	f.Float64Var(&lonFlag, "lon", 0, "longitude of the patient")
	f.BoolVar(&triageFlags.JSON, "json", false, "print the result as JSON")
	_ = triageCmd.MarkFlagRequired("symptoms")
}

func runTriage(ctx context.Context, a *app, opts triageOptions, out io.Writer) error {
	req := triage.Request{Age: opts.Age, Symptoms: opts.Symptoms}

	var err error
	if req.Image, req.ImageMIME, err = readMedia(opts.ImagePath, media.Images); err != nil {
		return fmt.Errorf("%w: image: %w", triage.ErrValidation, err)
	}
	if req.Audio, req.AudioMIME, err = readMedia(opts.AudioPath, media.Audio); err != nil {
		return fmt.Errorf("%w: audio: %w", triage.ErrValidation, err)
	}
	loc, err := alert.NewLocation(opts.Latitude, opts.Longitude)
	if err != nil {
		return fmt.Errorf("%w: %w", triage.ErrValidation, err)
	}

	// Reject bad input before spending a discovery call.
	if err := a.triage.Validate(req); err != nil {
		return err
	}

	model, _, err := a.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", triage.ErrConfiguration, err)
	}
	resp, err := a.triage.Triage(ctx, req, model, loc, opts.Contact)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewTriageResponse(resp))
	}
	printTriage(out, resp, opts.Contact)
	return nil
}

func readMedia(path string, accepted media.Allowlist) ([]byte, string, error) {
	if path == "" {
		return nil, "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", nil
	}
	mimeType, err := accepted.Detect(data)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

func printTriage(out io.Writer, resp *triage.Response, contact string) {
	fmt.Fprintf(out, "Triage report (%s)\n\n%s\n", resp.Model, resp.Report)
	for _, w := range resp.Warnings {
		fmt.Fprintf(out, "\nwarning: %s\n", w)
	}
	if !resp.Decision.Critical {
		return
	}
	fmt.Fprintf(out, "\nCRITICAL ALERT (Level %d)\n", resp.Decision.Level)
	if resp.Decision.MapURL != "" {
		fmt.Fprintf(out, "Navigate to hospital: %s\n", resp.Decision.MapURL)
	}
	if resp.AlertDispatched {
		fmt.Fprintf(out, "Emergency SMS sent to %s\n", contact)
	}
}
