package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0003_create_leads.sql
var createLeadsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, createLeadsSQL); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS leads_quiz_id_idx ON leads (quiz_id)`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS leads`)
			return err
		},
	)
}
