package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/config.yaml"

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

// newRootCmd wires start, migrate and dispatch under one binary. PORT and CONFIG_PATH
// seed the flag defaults; an empty port falls through to server.port in the config.
func newRootCmd() *cobra.Command {
	var port, configPath string

	cmd := &cobra.Command{
		Use:          "quiz-service",
		Short:        "Daily quiz with OTP-verified lead capture",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&port, "port", os.Getenv("PORT"), "port to listen on (defaults to server.port, then 8080)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", defaultConfigPath), "path to YAML config")

	cmd.AddCommand(
		NewStartCmd(&configPath, &port),
		NewMigrateCmd(&configPath),
		NewDispatchCmd(&configPath),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
