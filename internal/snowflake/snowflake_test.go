package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParse(t *testing.T) {
	id, err := Parse("175928847299117063")
	require.NoError(t, err)
	assert.Equal(t, ID(175928847299117063), id)
	assert.Equal(t, "175928847299117063", id.String())

	_, err = Parse("not-a-number")
	assert.Error(t, err)
}

func TestMaxValueRoundTrip(t *testing.T) {
	id := ID(18446744073709551615)
	parsed, err := Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestFromJSON(t *testing.T) {
	j := gjson.Parse(`{"a":"123","b":456,"c":true,"d":"abc"}`)

	assert.Equal(t, ID(123), FromJSON(j.Get("a")))
	assert.Equal(t, ID(456), FromJSON(j.Get("b")))
	assert.Zero(t, FromJSON(j.Get("c")))
	assert.Zero(t, FromJSON(j.Get("d")))
	assert.Zero(t, FromJSON(j.Get("missing")))
}

func TestFromJSONRejectsNonIntegerNumbers(t *testing.T) {
	j := gjson.Parse(`{"neg":-1,"frac":1.5,"exp":1e3,"big":99999999999999999999,"bigstr":"99999999999999999999","max":18446744073709551615}`)

	assert.Zero(t, FromJSON(j.Get("neg")))
	assert.Zero(t, FromJSON(j.Get("frac")))
	assert.Zero(t, FromJSON(j.Get("exp")))
	assert.Zero(t, FromJSON(j.Get("big")))
	assert.Zero(t, FromJSON(j.Get("bigstr")))
	assert.Equal(t, ID(18446744073709551615), FromJSON(j.Get("max")))
}

func TestSet(t *testing.T) {
	s := NewSet([]ID{1, 2, 2, 3})
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(4))
	assert.ElementsMatch(t, []ID{1, 2, 3}, s.Values())
}
