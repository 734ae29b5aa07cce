package snowflake

// Set is a simple map-based set of unique snowflakes.
type Set struct {
	backingMap map[ID]struct{}
}

// NewSet creates a new Set from the specified slice of snowflakes.
func NewSet(s []ID) *Set {
	set := &Set{make(map[ID]struct{}, len(s))}
	for _, i := range s {
		set.backingMap[i] = struct{}{}
	}
	return set
}

// Contains checks if this Set contains the specified snowflake.
func (s *Set) Contains(i ID) bool {
	_, exists := s.backingMap[i]
	return exists
}

// Len returns the number of snowflakes in this Set.
func (s *Set) Len() int {
	return len(s.backingMap)
}

// Values return values contained by this Set as slice, in no particular order.
func (s *Set) Values() []ID {
	v := make([]ID, 0, len(s.backingMap))
	for k := range s.backingMap {
		v = append(v, k)
	}

	return v
}
