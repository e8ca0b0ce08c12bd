package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0002_create_otp_requests.sql
var createOTPRequestsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, createOTPRequestsSQL); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS otp_requests_mobile_idx ON otp_requests (mobile_number, created_at DESC)`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS otp_requests`)
			return err
		},
	)
}
