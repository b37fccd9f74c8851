// Package cliargs extracts the positional part of the autocompare command
// line: the executable, the two -test_cases patterns and the -num count.
// Everything else is handed back untouched for flag parsing.
package cliargs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	TestCasesFlag = "-test_cases"
	NumFlag       = "-num"

	defaultCount = 1
)

var (
	ErrUsage            = errors.New("usage error")
	ErrMissingTestCases = fmt.Errorf("%w: the command line argument %s followed by two files is required", ErrUsage, TestCasesFlag)
	ErrMissingPatterns  = fmt.Errorf("%w: %s must be followed by an input and an output file", ErrUsage, TestCasesFlag)
)

type Args struct {
	Executable    string
	InputPattern  string
	OutputPattern string
	Count         int
	// CountInvalid holds the raw -num value when it was rejected and
	// Count fell back to the default.
	CountInvalid string
	Rest         []string
}

// Parse scans args (os.Args without the program name). args[0] is the
// executable under test; the -test_cases marker may appear anywhere after
// it and consumes the next two arguments verbatim.
func Parse(args []string) (Args, error) {
	marker := -1
	for i := 1; i < len(args); i++ {
		if args[i] == TestCasesFlag {
			marker = i
			break
		}
	}
	if marker < 0 {
		return Args{}, ErrMissingTestCases
	}
	if marker+2 >= len(args) {
		return Args{}, ErrMissingPatterns
	}

	out := Args{
		Executable:    args[0],
		InputPattern:  args[marker+1],
		OutputPattern: args[marker+2],
		Count:         defaultCount,
	}

	numSeen := false
	for i := 1; i < len(args); i++ {
		if i >= marker && i <= marker+2 {
			continue
		}
		arg := args[i]
		var raw string
		hasValue := false
		switch {
		case arg == NumFlag:
			if i+1 < len(args) && (i+1 < marker || i+1 > marker+2) {
				i++
				raw, hasValue = args[i], true
			}
		case strings.HasPrefix(arg, NumFlag+"="):
			raw, hasValue = strings.TrimPrefix(arg, NumFlag+"="), true
		default:
			out.Rest = append(out.Rest, arg)
			continue
		}
		// Only the first -num counts; repeats are dropped with their values.
		if !numSeen && hasValue {
			out.Count, out.CountInvalid = parseCount(raw)
		}
		numSeen = true
	}
	return out, nil
}

func parseCount(raw string) (int, string) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultCount, raw
	}
	return n, ""
}
