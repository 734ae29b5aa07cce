package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"pkg.mon.icu/relay/internal/snowflake"
)

func read(t *testing.T, yaml string) (*Config, error) {
	t.Helper()

	v := viper.New()
	configureDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yaml)))
	return unmarshalConfig(v)
}

func TestUnmarshal(t *testing.T) {
	c, err := read(t, `
discord:
  auth: "Bot abc"
  shards: 4
  guilds: ["290926798626357999", 81384788765712384]
  channels: ["290926798999357250"]
archive:
  ignoreregexp: "^!nosave"
storage:
  postgresdsn: postgres://localhost/relay
logging:
  level: warn
metrics:
  port: 9100
`)
	require.NoError(t, err)

	assert.Equal(t, "Bot abc", c.Discord.Auth)
	assert.Equal(t, 4, c.Discord.Shards)
	assert.Equal(t, []snowflake.ID{290926798626357999, 81384788765712384}, c.Discord.Guilds)
	assert.Equal(t, []snowflake.ID{290926798999357250}, c.Discord.Channels)
	require.NotNil(t, c.Archive.IgnoreRegexp)
	assert.True(t, c.Archive.IgnoreRegexp.MatchString("!nosave this"))
	assert.Equal(t, "postgres://localhost/relay", c.Storage.PostgresDSN)
	assert.True(t, c.Storage.Migrate)
	assert.Equal(t, zapcore.WarnLevel, c.Logging.Level)
	assert.Equal(t, uint16(9100), c.Metrics.Port)
}

func TestDefaults(t *testing.T) {
	c, err := read(t, `
discord:
  auth: "Bot abc"
`)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Discord.Shards)
	assert.Nil(t, c.Archive.IgnoreRegexp)
	assert.Equal(t, zapcore.InfoLevel, c.Logging.Level)
	assert.Equal(t, uint16(9090), c.Metrics.Port)
}

func TestInvalidValues(t *testing.T) {
	_, err := read(t, `
discord:
  guilds: ["not-a-snowflake"]
`)
	assert.Error(t, err)

	_, err = read(t, `
logging:
  level: loud
`)
	assert.Error(t, err)

	_, err = read(t, `
archive:
  ignoreregexp: "(["
`)
	assert.Error(t, err)
}
