package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the tables used by the service when they do not exist yet
func CreateSchema(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().
			Model((*User)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create users table: %w", err)
		}

		if _, err := tx.NewCreateTable().
			Model((*Video)(nil)).
			IfNotExists().
			ForeignKey(`("owner_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create videos table: %w", err)
		}

		if _, err := tx.NewCreateTable().
			Model((*Subscription)(nil)).
			IfNotExists().
			ForeignKey(`("subscriber_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			ForeignKey(`("channel_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create subscriptions table: %w", err)
		}

		if _, err := tx.NewCreateTable().
			Model((*WatchHistoryEntry)(nil)).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			ForeignKey(`("video_id") REFERENCES "videos" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create watch_history table: %w", err)
		}

		indexes := []struct {
			model   any
			name    string
			columns []string
		}{
			{(*Subscription)(nil), "subscriptions_channel_id_idx", []string{"channel_id"}},
			{(*Subscription)(nil), "subscriptions_subscriber_id_idx", []string{"subscriber_id"}},
			{(*Video)(nil), "videos_owner_id_idx", []string{"owner_id"}},
		}
		for _, idx := range indexes {
			if _, err := tx.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				IfNotExists().
				Column(idx.columns...).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.name, err)
			}
		}

		return nil
	})
}
