package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0001_create_quizzes.sql
var createQuizzesSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, createQuizzesSQL); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS quizzes_quiz_date_idx ON quizzes (quiz_date DESC)`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS quizzes`)
			return err
		},
	)
}
