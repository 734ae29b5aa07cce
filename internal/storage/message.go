package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"pkg.mon.icu/relay/internal/entity"
	"pkg.mon.icu/relay/internal/snowflake"
)

// SaveMessage archives m, overwriting the content of an already archived
// message with the same Discord ID.
func (s *Storage) SaveMessage(ctx context.Context, m *entity.Message) error {
	return s.Begin(ctx, func(tx pgx.Tx) error {
		var id int32
		if err := query(
			ctx,
			tx,
			`insert into message (discord_id, channel_id, guild_id, author_id, content) values ($1, $2, $3, $4, $5)
			on conflict (discord_id) do update set content = excluded.content returning id`,
			[]interface{}{int64(m.ID), int64(m.ChannelID), int64(m.GuildID), int64(m.AuthorID), m.Content},
			[]interface{}{&id},
		); err != nil {
			return fmt.Errorf("failed to save message %s: %w", m.ID, err)
		}
		s.logger.Sugar().Debugf("Saved message %s as %d.", m.ID, id)
		return nil
	})
}

// DeleteMessages removes the archived messages with the given Discord IDs
// and returns how many were removed.
func (s *Storage) DeleteMessages(ctx context.Context, ids []snowflake.ID) (int64, error) {
	args := make([]int64, len(ids))
	for i, id := range ids {
		args[i] = int64(id)
	}

	var n int64
	err := s.Begin(ctx, func(tx pgx.Tx) error {
		var err error
		if n, err = exec(ctx, tx, `delete from message where discord_id = any($1)`, args); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		return nil
	})
	return n, err
}
