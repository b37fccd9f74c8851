package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/nethoundsh/autocompare/pkg/compare"
	"github.com/rodaine/table"
)

const divider = "--------------------------------------------"

// CaseReport is everything known about one finished case.
type CaseReport struct {
	Index        int
	InputPath    string
	ExpectedPath string
	Actual       []byte
	Expected     []byte
	Result       compare.Result
	CaptureLimit int64
	Truncated    bool
	TimedOut     bool
	Timeout      time.Duration
	LaunchErr    error
	Duration     time.Duration
}

func (r CaseReport) Passed() bool { return r.Result.Match }

// NDJSON output: each line is a self-contained JSON object.
type JSONRecord struct {
	Case          int      `json:"case"`
	Input         string   `json:"input"`
	Expected      string   `json:"expected"`
	Passed        bool     `json:"passed"`
	Matched       int      `json:"matched"`
	ActualBytes   int      `json:"actual_bytes"`
	ExpectedBytes int      `json:"expected_bytes"`
	Truncated     bool     `json:"truncated,omitempty"`
	TimedOut      bool     `json:"timed_out,omitempty"`
	LaunchError   string   `json:"launch_error,omitempty"`
	Hints         []string `json:"hints,omitempty"`
	DurationMS    int64    `json:"duration_ms"`
}

type JSONSummary struct {
	Total  int   `json:"total"`
	Passed int   `json:"passed"`
	Failed int   `json:"failed"`
	Cases  []int `json:"failed_cases,omitempty"`
}

type JSONSummaryRecord struct {
	Summary JSONSummary `json:"summary"`
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) print(s string) {
	if ew.err == nil {
		_, ew.err = io.WriteString(ew.w, s)
	}
}

func (ew *errWriter) printf(format string, a ...any) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintf(ew.w, format, a...)
	}
}

func (ew *errWriter) println(a ...any) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintln(ew.w, a...)
	}
}

var (
	passColor    = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	hintColor    = color.New(color.FgYellow, color.Bold)
	bannerColor  = color.New(color.FgBlue)
	indexColor   = color.New(color.FgYellow)
	summaryColor = color.New(color.FgCyan, color.Bold)
)

// Printer renders case results as colored text or NDJSON.
type Printer struct {
	w      io.Writer
	format string
}

func NewPrinter(w io.Writer, format string) *Printer {
	return &Printer{w: w, format: format}
}

func (p *Printer) JSON() bool { return p.format == "json" }

// CaseHeader prints the banner that opens a case. JSON output has none.
func (p *Printer) CaseHeader(index int) error {
	if p.JSON() {
		return nil
	}
	ew := &errWriter{w: p.w}
	ew.print(bannerColor.Sprintf("%s\nRunning Test ", divider))
	ew.print(indexColor.Sprintf("%d", index))
	ew.print(bannerColor.Sprintf("\n%s\n", divider))
	return ew.err
}

func (p *Printer) Case(r CaseReport) error {
	if p.JSON() {
		return PrintJSON(p.w, r)
	}
	return PrintDiff(p.w, r)
}

func (p *Printer) Summary(reports []CaseReport) error {
	if p.JSON() {
		return PrintJSONSummary(p.w, reports)
	}
	return PrintSummary(p.w, reports)
}

// PrintDiff shows the actual output with the agreeing prefix in green and
// everything from the first mismatch in red, followed by hints.
func PrintDiff(w io.Writer, r CaseReport) error {
	ew := &errWriter{w: w}
	res := r.Result

	if res.Match {
		ew.print(passColor.Sprint(string(r.Actual)))
	} else {
		ew.print(passColor.Sprint(string(r.Actual[:res.Prefix])))
		ew.print(failColor.Sprint(string(r.Actual[res.Prefix:])))
		ew.print(hintColor.Sprintf("%s\n", divider))
		ew.println(hintColor.Sprint(res.Length().String()))
		for _, h := range res.Hints {
			ew.println(hintColor.Sprint(h.String()))
		}
	}

	for _, note := range notes(r) {
		ew.println(hintColor.Sprint(note))
	}
	return ew.err
}

func notes(r CaseReport) []string {
	var out []string
	if r.LaunchErr != nil {
		out = append(out, fmt.Sprintf("Could not launch program: %v", r.LaunchErr))
	}
	if r.TimedOut {
		out = append(out, fmt.Sprintf("Timed out after %s waiting for output", r.Timeout))
	}
	if r.Truncated {
		out = append(out, fmt.Sprintf("Output truncated at %s (raise -cap to capture more)", humanize.IBytes(uint64(r.CaptureLimit))))
	}
	return out
}

// PrintJSON emits a single NDJSON line for one case.
func PrintJSON(w io.Writer, r CaseReport) error {
	rec := JSONRecord{
		Case:          r.Index,
		Input:         r.InputPath,
		Expected:      r.ExpectedPath,
		Passed:        r.Passed(),
		Matched:       r.Result.Prefix,
		ActualBytes:   r.Result.ActualLen,
		ExpectedBytes: r.Result.ExpectedLen,
		Truncated:     r.Truncated,
		TimedOut:      r.TimedOut,
		DurationMS:    r.Duration.Milliseconds(),
	}
	if r.LaunchErr != nil {
		rec.LaunchError = r.LaunchErr.Error()
	}
	for _, h := range r.Result.Hints {
		rec.Hints = append(rec.Hints, h.Key())
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func PrintJSONSummary(w io.Writer, reports []CaseReport) error {
	s := JSONSummary{Total: len(reports)}
	for _, r := range reports {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
			s.Cases = append(s.Cases, r.Index)
		}
	}
	b, err := json.Marshal(JSONSummaryRecord{Summary: s})
	if err != nil {
		return fmt.Errorf("marshaling JSON summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// PrintSummary writes one row per case followed by the pass count.
func PrintSummary(w io.Writer, reports []CaseReport) error {
	ew := &errWriter{w: w}
	ew.print(summaryColor.Sprintf("%s\nSUMMARY:\n", divider))
	if ew.err != nil {
		return ew.err
	}

	tbl := table.New("CASE", "RESULT", "MATCHED", "OUTPUT", "TIME").
		WithWriter(w).
		WithHeaderFormatter(summaryColor.SprintfFunc())

	passed := 0
	for _, r := range reports {
		mark := 0
		if r.Passed() {
			mark = 1
			passed++
		}
		tbl.AddRow(
			fmt.Sprintf("case%d", r.Index),
			resultCell(mark),
			fmt.Sprintf("%d/%d", r.Result.Prefix, r.Result.ExpectedLen),
			humanize.Bytes(uint64(r.Result.ActualLen)),
			r.Duration.Round(time.Millisecond),
		)
	}
	tbl.Print()

	passedStr := color.GreenString("%d", passed)
	if passed < len(reports) {
		passedStr = color.RedString("%d", passed)
	}
	unit := "cases"
	if len(reports) == 1 {
		unit = "case"
	}
	ew.printf("Passed %s/%d %s\n", passedStr, len(reports), unit)
	return ew.err
}

func resultCell(mark int) string {
	if mark == 1 {
		return color.GreenString("[%d/1]", mark)
	}
	return color.RedString("[%d/1]", mark)
}
