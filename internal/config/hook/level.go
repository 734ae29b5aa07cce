package hook

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap/zapcore"
)

var (
	levelType = reflect.TypeOf(zapcore.InfoLevel)
)

// Level decodes zap level names such as "debug" or "WARN". An empty string
// is the info level.
func Level() mapstructure.DecodeHookFuncType {
	return func(in reflect.Type, out reflect.Type, val interface{}) (interface{}, error) {
		if in.Kind() == reflect.String && out == levelType {
			l := zapcore.InfoLevel
			if s := val.(string); s != "" {
				if err := l.UnmarshalText([]byte(s)); err != nil {
					return nil, err
				}
			}
			return l, nil
		}
		return val, nil
	}
}
