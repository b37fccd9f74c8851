package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Pattern
	}{
		{name: "wildcard in the middle", raw: "case*.txt", want: Pattern{Prefix: "case", Suffix: ".txt", HasWildcard: true}},
		{name: "no wildcard", raw: "case.txt", want: Pattern{Prefix: "case.txt"}},
		{name: "wildcard at start", raw: "*x", want: Pattern{Prefix: "", Suffix: "x", HasWildcard: true}},
		{name: "wildcard at end", raw: "case*", want: Pattern{Prefix: "case", Suffix: "", HasWildcard: true}},
		{name: "only first wildcard splits", raw: "a*b*c", want: Pattern{Prefix: "a", Suffix: "b*c", HasWildcard: true}},
		{name: "empty", raw: "", want: Pattern{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		raw   string
		index int
		want  string
	}{
		{raw: "case*.txt", index: 3, want: "case3.txt"},
		{raw: "case.txt", index: 3, want: "case.txt"},
		{raw: "*x", index: 1, want: "1x"},
		{raw: "out*", index: 12, want: "out12"},
		{raw: "dir/in*.txt", index: 7, want: "dir/in7.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw).Expand(tt.index))
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, raw := range []string{"case*.txt", "case.txt", "*", "a*b*c"} {
		assert.Equal(t, raw, Parse(raw).String())
	}
}
