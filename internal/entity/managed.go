package entity

import (
	"pkg.mon.icu/relay/internal/snowflake"
)

// Managed is the base of every entity that carries a Discord-assigned ID.
type Managed struct {
	ID snowflake.ID
}

// IsCustom reports whether the entity has a server-assigned ID.
func (m Managed) IsCustom() bool {
	return !m.ID.IsZero()
}
