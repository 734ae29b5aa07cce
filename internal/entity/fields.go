package entity

import (
	"github.com/tidwall/gjson"
)

// stringField returns the string at key, or "" if it is absent or not a string.
func stringField(j gjson.Result, key string) string {
	if r := j.Get(key); r.Type == gjson.String {
		return r.Str
	}
	return ""
}

// boolField returns true only for a literal JSON true at key.
func boolField(j gjson.Result, key string) bool {
	return j.Get(key).Type == gjson.True
}
