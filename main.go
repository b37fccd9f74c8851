// autocompare runs a program against a numbered set of test cases and
// compares what it prints with the expected output, highlighting the
// first byte where the two disagree.
//
// Usage:
//
//	autocompare <executable> -test_cases <input> <output> [-num N] [flags]
//
// The input and output arguments may contain a '*' that is replaced by
// the case number (quote it so the shell leaves it alone):
//
//	autocompare ./a.out -test_cases 'case*' 'case*.correct' -num 6
//
// runs ./a.out on case1..case6 and compares against case1.correct..case6.correct.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/nethoundsh/autocompare/internal/runner"
	"github.com/nethoundsh/autocompare/pkg/cliargs"
	"github.com/nethoundsh/autocompare/pkg/pattern"
	"github.com/nethoundsh/autocompare/pkg/proc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// version can be overridden at build time with:
//
//	go build -ldflags "-X main.version=v1.2.3"
var version = "dev"

var (
	errVersion = errors.New("version requested")
	errHelp    = errors.New("help requested")
)

const usageHeader = `Usage: autocompare <executable> -test_cases <input-pattern> <output-pattern> [-num <count>] [flags]

A '*' in a pattern is replaced by the test case number (1..count).

Flags:
  -num int
    	number of test cases to run (default 1)
`

type appConfig struct {
	run  runner.AppConfig
	stop func()
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseConfig(args)
	if err != nil {
		switch {
		case errors.Is(err, errVersion):
			fmt.Println("autocompare", version)
			return 0
		case errors.Is(err, errHelp):
			printUsage(os.Stderr, newFlagSet(io.Discard, &flagValues{}))
			return 0
		case errors.Is(err, cliargs.ErrUsage):
			fmt.Fprintln(os.Stderr, err)
			printUsage(os.Stderr, newFlagSet(io.Discard, &flagValues{}))
			return 1
		default:
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	defer cfg.stop()

	return runner.Run(cfg.run)
}

type flagValues struct {
	capture    string
	timeout    time.Duration
	rate       int
	output     string
	noColor    bool
	noProgress bool
	debug      bool
}

func newFlagSet(w io.Writer, v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("autocompare", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.StringVar(&v.capture, "cap", fmt.Sprint(proc.DefaultCaptureLimit), "max bytes of program output captured per case (e.g. \"256\", \"4KiB\")")
	fs.DurationVar(&v.timeout, "timeout", 0, "give up waiting for a case's output after this long (0 = wait forever)")
	fs.IntVar(&v.rate, "rate", 0, "max test case launches per minute (0 = no limit)")
	fs.StringVar(&v.output, "o", "text", "output format: text or json")
	fs.BoolVar(&v.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&v.noProgress, "no-progress", false, "disable the progress bar")
	fs.BoolVar(&v.debug, "debug", false, "log file and process activity to stderr")
	return fs
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, usageHeader)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// parseConfig parses the command line and initializes the run's
// resources (rate limiter, signal handler, log level).
func parseConfig(args []string) (appConfig, error) {
	parsed, err := cliargs.Parse(args)

	// The two -test_cases patterns are file names, never flags.
	scan := args
	if err == nil {
		scan = append([]string{parsed.Executable}, parsed.Rest...)
	}
	if slices.Contains(scan, "-version") || slices.Contains(scan, "--version") {
		return appConfig{}, errVersion
	}
	if slices.Contains(scan, "-h") || slices.Contains(scan, "-help") || slices.Contains(scan, "--help") {
		return appConfig{}, errHelp
	}
	if err != nil {
		return appConfig{}, err
	}

	var v flagValues
	// Errors are reported by run() together with the full usage text.
	fs := newFlagSet(io.Discard, &v)
	fs.Usage = func() {}
	if err := fs.Parse(parsed.Rest); err != nil {
		return appConfig{}, fmt.Errorf("%w: %v", cliargs.ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return appConfig{}, fmt.Errorf("%w: unexpected argument %q", cliargs.ErrUsage, fs.Arg(0))
	}

	if v.debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if parsed.CountInvalid != "" {
		log.Warn().Str("value", parsed.CountInvalid).Msg("ignoring invalid -num value, running 1 test case")
	}

	captureLimit, err := humanize.ParseBytes(v.capture)
	if err != nil {
		return appConfig{}, fmt.Errorf("invalid -cap value %q: %w", v.capture, err)
	}
	if captureLimit == 0 {
		return appConfig{}, fmt.Errorf("invalid -cap value %q: must be greater than zero", v.capture)
	}

	if v.timeout < 0 {
		return appConfig{}, fmt.Errorf("invalid -timeout value %s: must not be negative", v.timeout)
	}

	if v.rate < 0 {
		return appConfig{}, fmt.Errorf("invalid -rate value %d: must not be negative", v.rate)
	}

	switch v.output {
	case "text", "json":
	default:
		return appConfig{}, fmt.Errorf("invalid -o value; must be 'text' or 'json'")
	}

	if v.output == "json" || v.noColor {
		color.NoColor = true
	}

	// Progress bar: text output only, on a real terminal (not piped).
	showProgress := v.output == "text" && !v.noProgress &&
		isatty.IsTerminal(os.Stderr.Fd())

	var limiter *rate.Limiter
	if v.rate > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(v.rate)), 1)
		log.Info().Int("per_minute", v.rate).Msg("rate limiting test case launches")
	}

	// Cancelled on Ctrl+C. The in-flight case is killed and no further
	// cases start.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	return appConfig{
		run: runner.AppConfig{
			Ctx:           ctx,
			Executable:    parsed.Executable,
			InputPattern:  pattern.Parse(parsed.InputPattern),
			OutputPattern: pattern.Parse(parsed.OutputPattern),
			Count:         parsed.Count,
			CaptureLimit:  int64(captureLimit),
			Timeout:       v.timeout,
			Limiter:       limiter,
			Output:        v.output,
			ShowProgress:  showProgress,
		},
		stop: stop,
	}, nil
}
