package cli

import (
	"context"
	"errors"
	"testing"

	"daily-quiz-service/internal/config"
)

func TestRootRegistersSubcommands(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/quiz/config.yaml")
	cmd := newRootCmd()

	for _, name := range []string{"start", "migrate", "dispatch"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, sub, err)
		}
	}
	if got := cmd.PersistentFlags().Lookup("config").DefValue; got != "/etc/quiz/config.yaml" {
		t.Fatalf("expected CONFIG_PATH default, got %q", got)
	}
	migrateCmd, _, _ := cmd.Find([]string{"migrate"})
	if migrateCmd.Flags().Lookup("rollback") == nil {
		t.Fatalf("expected --rollback on migrate")
	}
}

func TestEnvOrFallsBack(t *testing.T) {
	t.Setenv("QUIZ_TEST_UNSET", "")
	if got := envOr("QUIZ_TEST_UNSET", defaultConfigPath); got != defaultConfigPath {
		t.Fatalf("got %q", got)
	}
}

func TestMigrationsNeedPostgres(t *testing.T) {
	ctx := context.Background()
	if err := runMigrationsWithConfig(ctx, config.Config{}); !errors.Is(err, errPostgresNotConfigured) {
		t.Fatalf("expected missing postgres error, got %v", err)
	}
	if err := rollbackMigrations(ctx, config.Config{}); !errors.Is(err, errPostgresNotConfigured) {
		t.Fatalf("expected missing postgres error, got %v", err)
	}
}

func TestDispatchNeedsRedisAndPostgres(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	if err := runDispatcher(context.Background(), t.TempDir()+"/missing.yaml"); err == nil {
		t.Fatalf("expected dispatch to refuse running without redis and postgres")
	}
}
