package cmd

import (
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pulsepoint",
	Short: "Multi-modal emergency triage backed by a generative model",
	Long: `PulsePoint classifies the urgency of a patient's symptoms with a hosted or
local language model. Critical results produce a hospital navigation link and
an SMS alert to an emergency contact.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, triageCmd, modelsCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
