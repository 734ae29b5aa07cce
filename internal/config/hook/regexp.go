package hook

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/mitchellh/mapstructure"
)

var (
	regexpType = reflect.TypeOf(&regexp.Regexp{})
)

// Regexp compiles patterns into *regexp.Regexp fields. Leave the key unset
// for a nil pattern.
func Regexp() mapstructure.DecodeHookFuncType {
	return func(in reflect.Type, out reflect.Type, val interface{}) (interface{}, error) {
		if in.Kind() == reflect.String && out == regexpType {
			re, err := regexp.Compile(val.(string))
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", val, err)
			}
			return re, nil
		}
		return val, nil
	}
}
