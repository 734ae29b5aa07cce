package archive

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"
	"pkg.mon.icu/relay/internal/entity"
	"pkg.mon.icu/relay/internal/event"
	"pkg.mon.icu/relay/internal/snowflake"
)

// Store persists archived messages and emojis. *storage.Storage implements it.
type Store interface {
	SaveMessage(ctx context.Context, m *entity.Message) error
	DeleteMessages(ctx context.Context, ids []snowflake.ID) (int64, error)
	SaveEmojis(ctx context.Context, guildID snowflake.ID, emojis []*entity.Emoji) error
}

type Config struct {
	guilds       *snowflake.Set
	chans        *snowflake.Set
	ignoreRegexp *regexp.Regexp
}

func NewConfig(guilds, channels []snowflake.ID, ignoreRegexp *regexp.Regexp) *Config {
	return &Config{
		guilds:       snowflake.NewSet(guilds),
		chans:        snowflake.NewSet(channels),
		ignoreRegexp: ignoreRegexp,
	}
}

// Archiver mirrors media posts and guild emojis of the configured guilds
// into a Store.
type Archiver struct {
	ctx    context.Context
	logger *zap.Logger
	config *Config
	store  Store

	unsubscribe []func()
}

func NewArchiver(ctx context.Context, log *zap.Logger, config *Config, store Store) *Archiver {
	return &Archiver{ctx: ctx, logger: log.Named("archive"), config: config, store: store}
}

// Attach subscribes the archiver to d.
func (a *Archiver) Attach(d *event.Dispatcher) {
	if a.config.guilds.Len() == 0 || a.config.chans.Len() == 0 {
		a.logger.Warn("No guilds or channels are allowed, messages will not be archived.")
	} else {
		a.logger.Info(
			"Archiving messages.",
			zap.Stringers("guilds", a.config.guilds.Values()),
			zap.Stringers("channels", a.config.chans.Values()),
		)
	}

	a.unsubscribe = append(a.unsubscribe,
		subscribe(d.OnMessageCreate, a.onMessageCreate),
		subscribe(d.OnMessageDelete, a.onMessageDelete),
		subscribe(d.OnMessageDeleteBulk, a.onMessageDeleteBulk),
		subscribe(d.OnGuildEmojisUpdate, a.onGuildEmojisUpdate),
	)
}

// Detach removes every subscription made by Attach.
func (a *Archiver) Detach() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

func subscribe[E any](l *event.Listeners[E], fn func(E) error) func() {
	h := l.Subscribe(fn)
	return func() { l.Unsubscribe(h) }
}

// ignoreCanceled drops errors caused by shutdown.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *Archiver) shouldArchive(m *entity.Message) bool {
	if !a.config.guilds.Contains(m.GuildID) {
		a.logger.Sugar().Debugf("Not archiving message %s that is not in any allowed guilds.", m.ID)
		return false
	}

	if !a.config.chans.Contains(m.ChannelID) {
		a.logger.Sugar().Debugf("Not archiving message %s that is not in any allowed channels.", m.ID)
		return false
	}

	if a.config.ignoreRegexp != nil && a.config.ignoreRegexp.MatchString(m.Content) {
		a.logger.Sugar().Debugf("Not archiving message %s that matches ignore pattern.", m.ID)
		return false
	}

	if !m.HasMedia() {
		a.logger.Sugar().Debugf("Not archiving message %s that contains no attachments or embeds.", m.ID)
		return false
	}

	return true
}

func (a *Archiver) onMessageCreate(e *event.MessageCreate) error {
	if !a.shouldArchive(e.Message) {
		return nil
	}
	a.logger.Sugar().Infof("Archiving message %s.", e.Message.ID)
	return ignoreCanceled(a.store.SaveMessage(a.ctx, e.Message))
}

func (a *Archiver) onMessageDelete(e *event.MessageDelete) error {
	return a.deleteMessages([]snowflake.ID{e.Deleted.ID})
}

func (a *Archiver) onMessageDeleteBulk(e *event.MessageDeleteBulk) error {
	if len(e.IDs) == 0 {
		return nil
	}
	return a.deleteMessages(e.IDs)
}

func (a *Archiver) deleteMessages(ids []snowflake.ID) error {
	n, err := a.store.DeleteMessages(a.ctx, ids)
	if err != nil {
		return ignoreCanceled(err)
	}
	if n > 0 {
		a.logger.Sugar().Infof("Deleted %d archived messages.", n)
	}
	return nil
}

func (a *Archiver) onGuildEmojisUpdate(e *event.GuildEmojisUpdate) error {
	if !a.config.guilds.Contains(e.GuildID) {
		return nil
	}
	a.logger.Sugar().Infof("Updating %d emojis of guild %s.", len(e.Emojis), e.GuildID)
	return ignoreCanceled(a.store.SaveEmojis(a.ctx, e.GuildID, e.Emojis))
}
