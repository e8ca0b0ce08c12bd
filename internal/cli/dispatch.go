package cli

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"daily-quiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewDispatchCmd runs OTP SMS delivery as its own process, consuming the Redis stream.
func NewDispatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver OTP codes by SMS from the request stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatcher(cmd.Context(), *configPath)
		},
	}
}

func runDispatcher(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Redis.Addr == "" || cfg.Postgres.URL == "" {
		return fmt.Errorf("dispatch needs both redis and postgres configured")
	}

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = d.worker().Run(ctx)
	log.Printf("dispatcher stopped")
	return err
}
