package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/nethoundsh/autocompare/pkg/compare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func report(index int, actual, expected string) CaseReport {
	return CaseReport{
		Index:        index,
		InputPath:    "in.txt",
		ExpectedPath: "out.txt",
		Actual:       []byte(actual),
		Expected:     []byte(expected),
		Result:       compare.Compare([]byte(actual), []byte(expected)),
		CaptureLimit: 256,
		Duration:     3 * time.Millisecond,
	}
}

func TestPrintDiffPass(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	require.NoError(t, PrintDiff(&buf, report(1, "5\n", "5\n")))
	assert.Equal(t, "5\n", buf.String())
}

func TestPrintDiffFail(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	require.NoError(t, PrintDiff(&buf, report(2, "1 2 \n", "1 2\n")))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "1 2 \n"+divider+"\n"), "unexpected output: %q", out)
	assert.Contains(t, out, "Correct output is shorter than actual output")
	assert.Contains(t, out, "Check for extra spaces in your output")
	assert.Contains(t, out, "Your output might be missing a newline")
}

func TestPrintDiffColorsSplitAtMismatch(t *testing.T) {
	old := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	require.NoError(t, PrintDiff(&buf, report(1, "abX", "abY")))
	out := buf.String()
	if !strings.Contains(out, "\033[") {
		t.Skip("no ANSI support in this terminal")
	}
	assert.Contains(t, out, passColor.Sprint("ab"))
	assert.Contains(t, out, failColor.Sprint("X"))
}

func TestPrintDiffNotes(t *testing.T) {
	noColor(t)
	r := report(1, "", "x")
	r.LaunchErr = errors.New("starting ./missing: no such file or directory")
	r.TimedOut = true
	r.Timeout = 2 * time.Second
	r.Truncated = true

	var buf bytes.Buffer
	require.NoError(t, PrintDiff(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "Could not launch program: starting ./missing")
	assert.Contains(t, out, "Timed out after 2s")
	assert.Contains(t, out, "Output truncated at 256 B")
}

func TestCaseHeader(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "text").CaseHeader(4))
	assert.Equal(t, divider+"\nRunning Test 4\n"+divider+"\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, "json").CaseHeader(4))
	assert.Empty(t, buf.String())
}

func TestPrintJSON(t *testing.T) {
	r := report(3, "1", "1\n")
	r.Truncated = true

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "json").Case(r))

	var rec JSONRecord
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec))
	assert.Equal(t, 3, rec.Case)
	assert.False(t, rec.Passed)
	assert.Equal(t, 1, rec.Matched)
	assert.Equal(t, 2, rec.ExpectedBytes)
	assert.True(t, rec.Truncated)
	assert.Equal(t, []string{"missing_newline"}, rec.Hints)
	assert.NotContains(t, buf.String(), "launch_error")
}

func TestPrintJSONSummary(t *testing.T) {
	reports := []CaseReport{report(1, "a", "a"), report(2, "a", "b"), report(3, "c", "c")}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "json").Summary(reports))

	var rec JSONSummaryRecord
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec))
	assert.Equal(t, JSONSummary{Total: 3, Passed: 2, Failed: 1, Cases: []int{2}}, rec.Summary)
}

func TestPrintSummary(t *testing.T) {
	noColor(t)
	reports := []CaseReport{report(1, "5\n", "5\n"), report(2, "3\n", "4\n")}

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, reports))
	out := buf.String()

	assert.Contains(t, out, "SUMMARY:")
	lines := strings.Split(out, "\n")
	var case1, case2 string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "case1"):
			case1 = l
		case strings.HasPrefix(l, "case2"):
			case2 = l
		}
	}
	assert.Contains(t, case1, "[1/1]")
	assert.Contains(t, case1, "2/2")
	assert.Contains(t, case2, "[0/1]")
	assert.Contains(t, case2, "0/2")
	assert.Contains(t, out, "Passed 1/2 cases")
}
