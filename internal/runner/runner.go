package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nethoundsh/autocompare/pkg/casefile"
	"github.com/nethoundsh/autocompare/pkg/compare"
	outputpkg "github.com/nethoundsh/autocompare/pkg/output"
	"github.com/nethoundsh/autocompare/pkg/pattern"
	"github.com/nethoundsh/autocompare/pkg/proc"
	"github.com/rs/zerolog/log"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/time/rate"
)

type AppConfig struct {
	Ctx           context.Context
	Executable    string
	InputPattern  pattern.Pattern
	OutputPattern pattern.Pattern
	Count         int
	CaptureLimit  int64
	Timeout       time.Duration
	Limiter       *rate.Limiter
	Output        string
	ShowProgress  bool
	Stdout        io.Writer
	Stderr        io.Writer
}

// Exit codes: 0 = every case passed, 1 = error, 2 = at least one case failed.

// Run executes every case in order and prints the summary.
func Run(cfg AppConfig) int {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.CaptureLimit <= 0 {
		cfg.CaptureLimit = proc.DefaultCaptureLimit
	}

	set, err := casefile.Open(cfg.InputPattern, cfg.OutputPattern, cfg.Count)
	if err != nil {
		var openErr *casefile.OpenError
		if errors.As(err, &openErr) {
			fmt.Fprintf(cfg.Stderr, "Could not open file %s\nCheck if file arguments are correct\n", openErr.Path)
		} else {
			fmt.Fprintln(cfg.Stderr, "Error:", err)
		}
		return 1
	}
	defer func() {
		if cerr := set.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close case files")
		}
	}()

	var progress *mpb.Progress
	var bar *mpb.Bar
	if cfg.ShowProgress && set.Len() > 1 {
		progress, bar = initProgressBar(cfg.Ctx, cfg.Stderr, int64(set.Len()))
	}
	sink := cfg.Stdout
	if progress != nil {
		sink = progress
	}

	reports := make([]outputpkg.CaseReport, 0, set.Len())

	err = func() error {
		for i := 0; i < set.Len(); i++ {
			if err := cfg.Ctx.Err(); err != nil {
				return err
			}
			if cfg.Limiter != nil {
				if err := cfg.Limiter.Wait(cfg.Ctx); err != nil {
					return fmt.Errorf("rate limiter: %w", err)
				}
			}

			// Each case is rendered into its own buffer and flushed in one
			// write so it does not interleave with the progress bar.
			var buf bytes.Buffer
			casePrinter := outputpkg.NewPrinter(&buf, cfg.Output)
			report, err := runCase(cfg, set, i, casePrinter)
			if _, werr := sink.Write(buf.Bytes()); werr != nil && err == nil {
				err = werr
			}
			if err != nil {
				return err
			}
			reports = append(reports, report)
			if bar != nil {
				bar.Increment()
			}
		}
		return nil
	}()

	if progress != nil {
		if err != nil {
			bar.Abort(true)
		}
		progress.Wait()
	}

	if err != nil {
		if cfg.Ctx.Err() != nil {
			fmt.Fprintln(cfg.Stderr, "\nInterrupted")
		} else {
			fmt.Fprintln(cfg.Stderr, "Error:", err)
		}
		return 1
	}

	summary := outputpkg.NewPrinter(cfg.Stdout, cfg.Output)
	if err := summary.Summary(reports); err != nil {
		fmt.Fprintln(cfg.Stderr, "Error:", err)
		return 1
	}

	for _, r := range reports {
		if !r.Passed() {
			return 2
		}
	}
	return 0
}

// runCase loads case i, runs the program on its input and compares the
// captured output. The process is always killed and reaped before return.
func runCase(cfg AppConfig, set *casefile.Set, i int, printer *outputpkg.Printer) (outputpkg.CaseReport, error) {
	c := set.Case(i)
	report := outputpkg.CaseReport{
		Index:        c.Index,
		InputPath:    c.InputPath,
		ExpectedPath: c.ExpectedPath,
		CaptureLimit: cfg.CaptureLimit,
		Timeout:      cfg.Timeout,
	}

	if err := printer.CaseHeader(c.Index); err != nil {
		return report, err
	}

	data, err := set.Load(i)
	if err != nil {
		return report, err
	}
	report.Expected = data.Expected
	log.Debug().
		Int("case", c.Index).
		Str("input_size", data.InputMeta.SizeHuman).
		Str("expected_size", data.ExpectedMeta.SizeHuman).
		Msg("loaded case")

	start := time.Now()
	capture, launchErr, err := execute(cfg, data.Input)
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}
	if launchErr != nil {
		// The case still runs against empty output and fails like any
		// other wrong answer.
		log.Warn().Err(launchErr).Int("case", c.Index).Msg("could not launch program")
		report.LaunchErr = launchErr
	}

	report.Actual = capture.Output
	report.Truncated = capture.Full
	report.TimedOut = capture.TimedOut
	report.Result = compare.Compare(report.Actual, report.Expected)

	if err := printer.Case(report); err != nil {
		return report, err
	}
	return report, nil
}

// execute runs one process. A failed launch is reported separately from
// errors that should abort the run, cancellation included.
func execute(cfg AppConfig, input []byte) (capture proc.Capture, launchErr, err error) {
	p, launchErr := proc.Start(cfg.Executable, input)
	if launchErr != nil {
		return proc.Capture{}, launchErr, nil
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	log.Debug().Int("pid", p.Pid()).Msg("capturing output")
	capture, err = p.Capture(cfg.Ctx, cfg.CaptureLimit, cfg.Timeout)
	return capture, nil, err
}

func initProgressBar(ctx context.Context, w io.Writer, total int64) (*mpb.Progress, *mpb.Bar) {
	p := mpb.NewWithContext(ctx, mpb.WithOutput(w))
	b := p.New(total,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(decor.Name("Running ")),
		mpb.AppendDecorators(
			decor.CountersNoUnit(" %d / %d "),
			decor.AverageETA(decor.ET_STYLE_MMSS),
		),
		mpb.BarRemoveOnComplete(),
	)
	return p, b
}
