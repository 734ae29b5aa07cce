package entity

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"pkg.mon.icu/relay/internal/snowflake"
)

// MaxEmojiSize is the largest image Discord accepts for an emoji, in bytes.
const MaxEmojiSize = 256 * 1024

var ErrEmojiTooLarge = errors.New("emoji file exceeds discord limit of 256 kilobytes")

// EmojiFlags holds the boolean attributes of an emoji.
type EmojiFlags uint8

const (
	EmojiRequireColons EmojiFlags = 1 << iota
	EmojiManaged
	EmojiAnimated
	EmojiAvailable
)

func (f EmojiFlags) RequiresColons() bool { return f&EmojiRequireColons != 0 }
func (f EmojiFlags) IsManaged() bool      { return f&EmojiManaged != 0 }
func (f EmojiFlags) IsAnimated() bool     { return f&EmojiAnimated != 0 }
func (f EmojiFlags) IsAvailable() bool    { return f&EmojiAvailable != 0 }

// emojiFlagFields maps each flag bit to its gateway field.
var emojiFlagFields = []struct {
	flag  EmojiFlags
	field string
}{
	{EmojiRequireColons, "require_colons"},
	{EmojiManaged, "managed"},
	{EmojiAnimated, "animated"},
	{EmojiAvailable, "available"},
}

// Emoji is either a custom guild emoji (non-zero ID) or a unicode literal.
type Emoji struct {
	Managed
	Name string
	// UserID is the creator, only present when the emoji was fetched with
	// the manage emojis permission.
	UserID snowflake.ID
	Flags  EmojiFlags

	// image is a data URI staged for upload, nil when nothing is staged.
	image *string
}

func NewEmoji(name string, id snowflake.ID, flags EmojiFlags) *Emoji {
	return &Emoji{Managed: Managed{ID: id}, Name: name, Flags: flags}
}

func (e *Emoji) RequiresColons() bool { return e.Flags.RequiresColons() }
func (e *Emoji) IsManaged() bool      { return e.Flags.IsManaged() }
func (e *Emoji) IsAnimated() bool     { return e.Flags.IsAnimated() }
func (e *Emoji) IsAvailable() bool    { return e.Flags.IsAvailable() }

// FillFromJSON populates the emoji from a gateway or REST emoji object.
// Missing or mistyped fields are left at their zero value.
func (e *Emoji) FillFromJSON(j gjson.Result) *Emoji {
	e.ID = snowflake.FromJSON(j.Get("id"))
	e.Name = stringField(j, "name")
	if u := j.Get("user"); u.IsObject() {
		e.UserID = snowflake.FromJSON(u.Get("id"))
	}
	for _, ff := range emojiFlagFields {
		if boolField(j, ff.field) {
			e.Flags |= ff.flag
		}
	}
	return e
}

// BuildJSON encodes the emoji. The ID is only included when withID is set,
// the image only while one is staged.
func (e *Emoji) BuildJSON(withID bool) (string, error) {
	j, err := sjson.Set("{}", "name", e.Name)
	if err != nil {
		return "", fmt.Errorf("failed to set name: %w", err)
	}
	if withID {
		if j, err = sjson.Set(j, "id", e.ID.String()); err != nil {
			return "", fmt.Errorf("failed to set id: %w", err)
		}
	}
	for _, ff := range emojiFlagFields {
		if e.Flags&ff.flag == 0 {
			continue
		}
		if j, err = sjson.Set(j, ff.field, true); err != nil {
			return "", fmt.Errorf("failed to set %s: %w", ff.field, err)
		}
	}
	if e.image != nil {
		if j, err = sjson.Set(j, "image", *e.image); err != nil {
			return "", fmt.Errorf("failed to set image: %w", err)
		}
	}
	return j, nil
}

// LoadImage stages blob as the emoji image, replacing any previous one.
// The emoji is left untouched on error.
func (e *Emoji) LoadImage(blob []byte, t ImageType) (*Emoji, error) {
	if len(blob) > MaxEmojiSize {
		return e, ErrEmojiTooLarge
	}
	uri, err := dataURI(blob, t)
	if err != nil {
		return e, err
	}
	e.image = &uri
	return e, nil
}

func (e *Emoji) HasImage() bool {
	return e.image != nil
}

// ClearImage drops the staged image, if any.
func (e *Emoji) ClearImage() {
	e.image = nil
}

// Format returns the emoji in the form used by the reaction endpoints.
func (e *Emoji) Format() string {
	if e.ID.IsZero() {
		return e.Name
	}
	prefix := ""
	if e.IsAnimated() {
		prefix = "a:"
	}
	return prefix + e.Name + ":" + e.ID.String()
}

func (e *Emoji) Mention() string {
	return EmojiMention(e.Name, e.ID, e.IsAnimated())
}

// URL returns the CDN URL of a custom emoji, or an empty string for literals.
func (e *Emoji) URL(size uint16, format ImageType, preferAnimated bool) string {
	if e.ID.IsZero() {
		return ""
	}
	return CDNURL(
		[]ImageType{ImageJPG, ImagePNG, ImageWEBP, ImageGIF},
		"emojis/"+e.ID.String(),
		format, size, preferAnimated, e.IsAnimated(),
	)
}

// EmojiMention formats an emoji for use in message content without needing a
// materialized Emoji.
func EmojiMention(name string, id snowflake.ID, animated bool) string {
	if id.IsZero() {
		return ":" + name + ":"
	}
	prefix := "<:"
	if animated {
		prefix = "<a:"
	}
	return prefix + name + ":" + id.String() + ">"
}
