package snowflake

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ID is a Discord snowflake. Zero is never a valid reference.
type ID uint64

// Parse parses the decimal textual form of a snowflake.
func Parse(s string) (ID, error) {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse Snowflake ID string: %w", err)
	}
	return ID(val), nil
}

// FromJSON reads a snowflake from a gateway value, which Discord sends as a
// string. Numbers are accepted too if they are plain unsigned integers.
// Anything else yields zero.
func FromJSON(r gjson.Result) ID {
	var text string
	switch r.Type {
	case gjson.String:
		text = r.Str
	case gjson.Number:
		text = r.Raw
	default:
		return 0
	}
	id, err := Parse(text)
	if err != nil {
		return 0
	}
	return id
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id ID) IsZero() bool {
	return id == 0
}
