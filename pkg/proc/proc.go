// Package proc runs the program under test: one fresh process per case,
// stdin fed from a buffer, stdout and stderr merged into a single pipe,
// and an unconditional kill plus reap when the case is done.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCaptureLimit is the number of output bytes read per case unless
// the caller asks for more.
const DefaultCaptureLimit = 256

// Capture is the output read from a process.
type Capture struct {
	Output []byte
	// Full is set when the capture limit was reached. Anything the process
	// wrote past the limit is discarded.
	Full     bool
	TimedOut bool
}

// Process is a running program under test. Close must be called once the
// output has been captured.
type Process struct {
	cmd    *exec.Cmd
	out    *os.File
	closed bool
}

// Start launches path with no arguments. input is written to its stdin,
// which is closed afterwards. A relative path is resolved against the
// working directory.
func Start(path string, input []byte) (*Process, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating output pipe: %w", err)
	}

	// Built by hand so a bare name like "a.out" runs from the working
	// directory instead of being looked up in $PATH.
	cmd := &exec.Cmd{Path: path, Args: []string{path}}
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("starting %s: %w", path, err)
	}
	// The child holds its own copy of the write end; ours must go so that
	// the read side sees EOF once the child exits.
	_ = pw.Close()

	log.Debug().Str("path", path).Int("pid", cmd.Process.Pid).Msg("started process")
	return &Process{cmd: cmd, out: pr}, nil
}

func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Capture reads up to limit bytes of merged output. It returns when the
// buffer is full, the process closes its output, or timeout elapses.
// A zero timeout waits indefinitely. If ctx is cancelled first, Capture
// returns what was read so far together with ctx.Err().
func (p *Process) Capture(ctx context.Context, limit int64, timeout time.Duration) (Capture, error) {
	if limit <= 0 {
		return Capture{}, fmt.Errorf("capture limit must be positive, got %d", limit)
	}
	if timeout > 0 {
		if err := p.out.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return Capture{}, fmt.Errorf("setting read deadline: %w", err)
		}
	}

	// Cancellation moves the deadline to now, which unblocks the read.
	stop := context.AfterFunc(ctx, func() {
		_ = p.out.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, limit)
	n, err := io.ReadFull(p.out, buf)
	c := Capture{Output: buf[:n], Full: int64(n) == limit}
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
	case errors.Is(err, os.ErrDeadlineExceeded) && ctx.Err() != nil:
		return c, ctx.Err()
	case errors.Is(err, os.ErrDeadlineExceeded):
		c.TimedOut = true
	default:
		return c, fmt.Errorf("reading process output: %w", err)
	}
	return c, nil
}

// Close kills the process, whether or not it already exited, and waits
// for it. It is safe to call more than once.
func (p *Process) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if err := kill(p.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		log.Debug().Err(err).Int("pid", p.cmd.Process.Pid).Msg("kill failed")
	}
	_ = p.out.Close()

	err := p.cmd.Wait()
	log.Debug().Int("pid", p.cmd.Process.Pid).Str("state", p.cmd.ProcessState.String()).Msg("reaped process")

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("waiting for process %d: %w", p.cmd.Process.Pid, err)
	}
	return nil
}
