package hook

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"pkg.mon.icu/relay/internal/snowflake"
)

var (
	snowflakeType = reflect.TypeOf(snowflake.ID(0))
)

// Snowflake decodes snowflakes written as strings, which keeps IDs above
// 2^53 intact in YAML and environment values.
func Snowflake() mapstructure.DecodeHookFuncType {
	return func(in reflect.Type, out reflect.Type, val interface{}) (interface{}, error) {
		if in.Kind() == reflect.String && out == snowflakeType {
			return snowflake.Parse(val.(string))
		}
		return val, nil
	}
}
