package config

import (
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"pkg.mon.icu/relay/internal/config/hook"
	"pkg.mon.icu/relay/internal/snowflake"
)

type Config struct {
	Discord struct {
		Auth     string
		Shards   int
		Guilds   []snowflake.ID
		Channels []snowflake.ID
	}

	Archive struct {
		IgnoreRegexp *regexp.Regexp
	}

	Storage struct {
		PostgresDSN string
		Migrate     bool
	}

	Logging struct {
		Level zapcore.Level
	}

	Metrics struct {
		Port uint16
	}
}

func Read() (*Config, error) {
	v := viper.New()
	configureDefaults(v)
	configureEnv(v)
	configureLocation(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return unmarshalConfig(v)
}

func configureDefaults(v *viper.Viper) {
	v.SetDefault("discord.shards", 1)
	v.SetDefault("storage.migrate", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.port", 9090)
}

func configureEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("conf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func configureLocation(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
}

func unmarshalConfig(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		hook.Regexp(), hook.Level(), hook.Snowflake(),
	))); err != nil {
		return nil, err
	}
	return c, nil
}
