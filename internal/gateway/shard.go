package gateway

import (
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"pkg.mon.icu/relay/internal/event"
)

// Shard is one gateway connection. Events received on a shard are
// dispatched sequentially on the session's read loop.
type Shard struct {
	id         int
	session    *discordgo.Session
	dispatcher *event.Dispatcher
	logger     *zap.Logger
	open       atomic.Bool
}

func newShard(id, count int, auth string, d *event.Dispatcher, log *zap.Logger) (*Shard, error) {
	s, err := discordgo.New(auth)
	if err != nil {
		return nil, err
	}
	s.ShardID, s.ShardCount = id, count
	// Handlers run on the read loop so per-shard order is kept.
	s.SyncEvents = true
	// Entities are decoded from the raw payloads, the session's cache is not needed.
	s.StateEnabled = false

	sh := &Shard{id: id, session: s, dispatcher: d, logger: log.With(zap.Int("shard", id))}
	s.AddHandler(sh.onEvent)
	s.AddHandlerOnce(sh.onReady)
	return sh, nil
}

func (s *Shard) ShardID() int {
	return s.id
}

func (s *Shard) Open() error {
	if err := s.session.Open(); err != nil {
		return err
	}
	s.open.Store(true)
	return nil
}

// Close closes the connection. It reports whether the shard was open.
func (s *Shard) Close() (bool, error) {
	return s.open.Swap(false), s.session.Close()
}

// Receive dispatches one raw gateway payload as if it was read from the
// websocket.
func (s *Shard) Receive(raw []byte) {
	s.dispatcher.Dispatch(s, raw)
}

func (s *Shard) onReady(_ *discordgo.Session, e *discordgo.Ready) {
	s.logger.Sugar().Infof("Logged in Discord API as %s.", e.User)
}

// onEvent receives every dispatch event discordgo reads off the socket.
// discordgo only keeps the data section, so the envelope is rebuilt.
func (s *Shard) onEvent(_ *discordgo.Session, e *discordgo.Event) {
	raw, err := envelope(e)
	if err != nil {
		s.logger.Error("Failed to rebuild gateway payload.", zap.String("event", e.Type), zap.Error(err))
		return
	}
	s.Receive(raw)
}

func envelope(e *discordgo.Event) ([]byte, error) {
	raw, err := sjson.SetBytes([]byte(`{}`), "op", e.Operation)
	if err != nil {
		return nil, err
	}
	if raw, err = sjson.SetBytes(raw, "s", e.Sequence); err != nil {
		return nil, err
	}
	if raw, err = sjson.SetBytes(raw, "t", e.Type); err != nil {
		return nil, err
	}
	if len(e.RawData) > 0 {
		if raw, err = sjson.SetRawBytes(raw, "d", e.RawData); err != nil {
			return nil, err
		}
	}
	return raw, nil
}
