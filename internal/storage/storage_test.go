package storage

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pkg.mon.icu/relay/internal/entity"
	"pkg.mon.icu/relay/internal/snowflake"
)

// These tests need a scratch database, e.g.
// CONF_STORAGE_POSTGRESDSN=postgres://postgres@localhost/relay_test go test ./internal/storage
func connect(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("CONF_STORAGE_POSTGRESDSN")
	if dsn == "" {
		t.Skip("CONF_STORAGE_POSTGRESDSN not set")
	}

	ctx := context.Background()
	s := NewStorage(ctx, zaptest.NewLogger(t))
	require.NoError(t, s.Connect(dsn))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate())
	require.NoError(t, s.Begin(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `truncate message, emoji`)
		return err
	}))
	return s
}

func count(t *testing.T, s *Storage, sql string, args ...interface{}) int {
	t.Helper()

	var n int
	require.NoError(t, s.Begin(context.Background(), func(tx pgx.Tx) error {
		return tx.QueryRow(context.Background(), sql, args...).Scan(&n)
	}))
	return n
}

func TestMessages(t *testing.T) {
	s := connect(t)
	ctx := context.Background()

	m := &entity.Message{Managed: entity.Managed{ID: 100}, ChannelID: 2, GuildID: 3, AuthorID: 4, Content: "first"}
	require.NoError(t, s.SaveMessage(ctx, m))
	m.Content = "edited"
	require.NoError(t, s.SaveMessage(ctx, m))
	require.NoError(t, s.SaveMessage(ctx, &entity.Message{Managed: entity.Managed{ID: 101}, ChannelID: 2, GuildID: 3}))

	assert.Equal(t, 2, count(t, s, `select count(*) from message`))
	assert.Equal(t, 1, count(t, s, `select count(*) from message where content = 'edited'`))

	n, err := s.DeleteMessages(ctx, []snowflake.ID{100, 101, 102})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestEmojis(t *testing.T) {
	s := connect(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmojis(ctx, 9, []*entity.Emoji{
		entity.NewEmoji("pepe", 10, 0),
		entity.NewEmoji("😀", 0, 0),
	}))
	require.NoError(t, s.SaveEmojis(ctx, 9, []*entity.Emoji{
		entity.NewEmoji("pepe_dance", 10, entity.EmojiAnimated),
		entity.NewEmoji("😀", 0, 0),
	}))

	assert.Equal(t, 2, count(t, s, `select count(*) from emoji`))
	assert.Equal(t, 1, count(t, s, `select count(*) from emoji where discord_id = $1 and name = 'pepe_dance' and animated`, int64(10)))
}
