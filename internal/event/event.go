package event

import (
	"github.com/tidwall/gjson"
	"pkg.mon.icu/relay/internal/entity"
	"pkg.mon.icu/relay/internal/snowflake"
)

// Type is the gateway dispatch event name carried in the "t" field.
type Type string

const (
	TypeMessageCreate         Type = "MESSAGE_CREATE"
	TypeMessageDelete         Type = "MESSAGE_DELETE"
	TypeMessageDeleteBulk     Type = "MESSAGE_DELETE_BULK"
	TypeGuildEmojisUpdate     Type = "GUILD_EMOJIS_UPDATE"
	TypeMessageReactionAdd    Type = "MESSAGE_REACTION_ADD"
	TypeMessageReactionRemove Type = "MESSAGE_REACTION_REMOVE"
)

// Connection is the shard an event arrived on.
type Connection interface {
	ShardID() int
}

// Base is embedded in every event. Subscribers must not keep a reference
// to an event after their callback returns.
type Base struct {
	Conn Connection
	// Raw is the full gateway payload the event was decoded from.
	Raw string
}

type MessageCreate struct {
	Base
	Message *entity.Message
}

type MessageDelete struct {
	Base
	// Deleted only carries the message, channel and guild IDs.
	Deleted *entity.Message
}

type MessageDeleteBulk struct {
	Base
	IDs       []snowflake.ID
	ChannelID snowflake.ID
	GuildID   snowflake.ID
}

type GuildEmojisUpdate struct {
	Base
	GuildID snowflake.ID
	Emojis  []*entity.Emoji
}

// MessageReaction is sent for both reaction adds and removes.
type MessageReaction struct {
	Base
	UserID    snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	GuildID   snowflake.ID
	Emoji     *entity.Emoji
}

func buildMessageCreate(b Base, d gjson.Result) *MessageCreate {
	return &MessageCreate{Base: b, Message: new(entity.Message).FillFromJSON(d)}
}

func buildMessageDelete(b Base, d gjson.Result) *MessageDelete {
	return &MessageDelete{Base: b, Deleted: new(entity.Message).FillFromJSON(d)}
}

func buildMessageDeleteBulk(b Base, d gjson.Result) *MessageDeleteBulk {
	e := &MessageDeleteBulk{
		Base:      b,
		ChannelID: snowflake.FromJSON(d.Get("channel_id")),
		GuildID:   snowflake.FromJSON(d.Get("guild_id")),
	}
	for _, id := range d.Get("ids").Array() {
		if sf := snowflake.FromJSON(id); !sf.IsZero() {
			e.IDs = append(e.IDs, sf)
		}
	}
	return e
}

func buildGuildEmojisUpdate(b Base, d gjson.Result) *GuildEmojisUpdate {
	e := &GuildEmojisUpdate{Base: b, GuildID: snowflake.FromJSON(d.Get("guild_id"))}
	for _, em := range d.Get("emojis").Array() {
		if em.IsObject() {
			e.Emojis = append(e.Emojis, new(entity.Emoji).FillFromJSON(em))
		}
	}
	return e
}

func buildMessageReaction(b Base, d gjson.Result) *MessageReaction {
	return &MessageReaction{
		Base:      b,
		UserID:    snowflake.FromJSON(d.Get("user_id")),
		ChannelID: snowflake.FromJSON(d.Get("channel_id")),
		MessageID: snowflake.FromJSON(d.Get("message_id")),
		GuildID:   snowflake.FromJSON(d.Get("guild_id")),
		Emoji:     new(entity.Emoji).FillFromJSON(d.Get("emoji")),
	}
}
