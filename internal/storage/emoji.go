package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"pkg.mon.icu/relay/internal/entity"
	"pkg.mon.icu/relay/internal/snowflake"
)

// SaveEmojis upserts the emojis of a guild in a single transaction.
func (s *Storage) SaveEmojis(ctx context.Context, guildID snowflake.ID, emojis []*entity.Emoji) error {
	return s.Begin(ctx, func(tx pgx.Tx) error {
		for _, e := range emojis {
			if err := saveEmoji(ctx, tx, guildID, e); err != nil {
				return fmt.Errorf("failed to save emoji %s: %w", e.Format(), err)
			}
		}
		return nil
	})
}

func saveEmoji(ctx context.Context, tx pgx.Tx, guildID snowflake.ID, e *entity.Emoji) error {
	var err error
	if e.IsCustom() {
		_, err = exec(
			ctx,
			tx,
			`insert into emoji (discord_id, guild_id, name, animated) values ($1, $2, $3, $4)
			on conflict (discord_id) do update set guild_id = excluded.guild_id, name = excluded.name, animated = excluded.animated`,
			int64(e.ID), int64(guildID), e.Name, e.IsAnimated(),
		)
	} else {
		_, err = exec(ctx, tx, `insert into emoji (name) values ($1) on conflict do nothing`, e.Name)
	}
	return err
}
