package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

// Rows sharing a created_at are ordered by insertion through seq.
//
//go:embed 0002_insert_sequence.sql
var insertSequenceSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, insertSequenceSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
				DROP INDEX IF EXISTS answers_game_seq_idx;
				DROP INDEX IF EXISTS players_game_seq_idx;
				ALTER TABLE answers DROP COLUMN IF EXISTS seq;
				ALTER TABLE players DROP COLUMN IF EXISTS seq;`)
			return err
		},
	)
}
