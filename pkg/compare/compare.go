// Package compare finds where a program's output first departs from the
// expected output.
//
// The comparison is a plain common-prefix scan. Once the two outputs
// diverge everything after the divergence counts as different, even when
// the text lines up again later.
package compare

// LengthHint relates the expected output's length to the actual one.
type LengthHint int

const (
	SameLength LengthHint = iota
	ExpectedLonger
	ExpectedShorter
)

func (h LengthHint) String() string {
	switch h {
	case ExpectedLonger:
		return "Correct output is longer than actual output"
	case ExpectedShorter:
		return "Correct output is shorter than actual output"
	default:
		return "Correct output has the same length as actual output"
	}
}

// Hint points at a likely whitespace mistake at the first mismatch.
type Hint int

const (
	HintExtraNewline Hint = iota + 1
	HintExtraSpace
	HintMissingNewline
	HintMissingSpace
)

func (h Hint) String() string {
	switch h {
	case HintExtraNewline:
		return "Check for extra newlines in your output"
	case HintExtraSpace:
		return "Check for extra spaces in your output"
	case HintMissingNewline:
		return "Your output might be missing a newline"
	case HintMissingSpace:
		return "Your output might be missing a space"
	default:
		return ""
	}
}

// Key is the short identifier used in machine-readable output.
func (h Hint) Key() string {
	switch h {
	case HintExtraNewline:
		return "extra_newline"
	case HintExtraSpace:
		return "extra_space"
	case HintMissingNewline:
		return "missing_newline"
	case HintMissingSpace:
		return "missing_space"
	default:
		return ""
	}
}

type Result struct {
	Match bool
	// Prefix is the number of leading bytes on which both outputs agree.
	Prefix      int
	ActualLen   int
	ExpectedLen int
	Hints       []Hint
}

// Compare reports how far actual agrees with expected.
func Compare(actual, expected []byte) Result {
	n := min(len(actual), len(expected))
	prefix := 0
	for prefix < n && actual[prefix] == expected[prefix] {
		prefix++
	}

	r := Result{
		Prefix:      prefix,
		ActualLen:   len(actual),
		ExpectedLen: len(expected),
	}
	if prefix == len(actual) && prefix == len(expected) {
		r.Match = true
		return r
	}

	if prefix < len(actual) {
		switch actual[prefix] {
		case '\n':
			r.Hints = append(r.Hints, HintExtraNewline)
		case ' ':
			r.Hints = append(r.Hints, HintExtraSpace)
		}
	}
	if prefix < len(expected) {
		switch expected[prefix] {
		case '\n':
			r.Hints = append(r.Hints, HintMissingNewline)
		case ' ':
			r.Hints = append(r.Hints, HintMissingSpace)
		}
	}
	return r
}

func (r Result) Length() LengthHint {
	switch {
	case r.ExpectedLen > r.ActualLen:
		return ExpectedLonger
	case r.ExpectedLen < r.ActualLen:
		return ExpectedShorter
	default:
		return SameLength
	}
}
