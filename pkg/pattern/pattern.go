package pattern

import "strconv"

// Wildcard marks the spot in a filename pattern that is replaced by the
// 1-based case index.
const Wildcard = '*'

// Pattern is a filename template split at its first wildcard.
type Pattern struct {
	Prefix      string
	Suffix      string
	HasWildcard bool
}

// Parse splits raw at the first Wildcard. Without a wildcard the whole
// string becomes the prefix and every case expands to the same name.
func Parse(raw string) Pattern {
	for i := 0; i < len(raw); i++ {
		if raw[i] == Wildcard {
			return Pattern{Prefix: raw[:i], Suffix: raw[i+1:], HasWildcard: true}
		}
	}
	return Pattern{Prefix: raw}
}

// Expand returns the concrete filename for the given case index.
func (p Pattern) Expand(index int) string {
	if !p.HasWildcard {
		return p.Prefix
	}
	return p.Prefix + strconv.Itoa(index) + p.Suffix
}

func (p Pattern) String() string {
	if !p.HasWildcard {
		return p.Prefix
	}
	return p.Prefix + string(Wildcard) + p.Suffix
}
