package entity

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"pkg.mon.icu/relay/internal/snowflake"
)

type MessageFlags uint8

const (
	MessageTTS MessageFlags = 1 << iota
	MessagePinned
	MessageMentionEveryone
)

func (f MessageFlags) IsTTS() bool            { return f&MessageTTS != 0 }
func (f MessageFlags) IsPinned() bool         { return f&MessagePinned != 0 }
func (f MessageFlags) MentionsEveryone() bool { return f&MessageMentionEveryone != 0 }

var messageFlagFields = []struct {
	flag  MessageFlags
	field string
}{
	{MessageTTS, "tts"},
	{MessagePinned, "pinned"},
	{MessageMentionEveryone, "mention_everyone"},
}

// Message is the subset of a Discord message the relay cares about.
// Delete events only carry the IDs, everything else stays zero.
type Message struct {
	Managed
	ChannelID snowflake.ID
	GuildID   snowflake.ID
	AuthorID  snowflake.ID
	Content   string
	Flags     MessageFlags

	Attachments int
	Embeds      int
}

func (m *Message) FillFromJSON(j gjson.Result) *Message {
	m.ID = snowflake.FromJSON(j.Get("id"))
	m.ChannelID = snowflake.FromJSON(j.Get("channel_id"))
	m.GuildID = snowflake.FromJSON(j.Get("guild_id"))
	if a := j.Get("author"); a.IsObject() {
		m.AuthorID = snowflake.FromJSON(a.Get("id"))
	}
	m.Content = stringField(j, "content")
	for _, ff := range messageFlagFields {
		if boolField(j, ff.field) {
			m.Flags |= ff.flag
		}
	}
	if a := j.Get("attachments"); a.IsArray() {
		m.Attachments = len(a.Array())
	}
	if e := j.Get("embeds"); e.IsArray() {
		m.Embeds = len(e.Array())
	}
	return m
}

// BuildJSON encodes the fields that can be sent when creating or editing a
// message. Unset fields are omitted.
func (m *Message) BuildJSON(withID bool) (string, error) {
	j, err := sjson.Set("{}", "content", m.Content)
	if err != nil {
		return "", fmt.Errorf("failed to set content: %w", err)
	}
	ids := []struct {
		field string
		id    snowflake.ID
		ok    bool
	}{
		{"id", m.ID, withID},
		{"channel_id", m.ChannelID, !m.ChannelID.IsZero()},
		{"guild_id", m.GuildID, !m.GuildID.IsZero()},
	}
	for _, i := range ids {
		if !i.ok {
			continue
		}
		if j, err = sjson.Set(j, i.field, i.id.String()); err != nil {
			return "", fmt.Errorf("failed to set %s: %w", i.field, err)
		}
	}
	for _, ff := range messageFlagFields {
		if m.Flags&ff.flag == 0 {
			continue
		}
		if j, err = sjson.Set(j, ff.field, true); err != nil {
			return "", fmt.Errorf("failed to set %s: %w", ff.field, err)
		}
	}
	return j, nil
}

// HasMedia reports whether the message carries attachments or embeds.
func (m *Message) HasMedia() bool {
	return m.Attachments > 0 || m.Embeds > 0
}
