//go:build unix

package proc

import (
	"errors"
	"os/exec"

	"golang.org/x/sys/unix"
)

func kill(cmd *exec.Cmd) error {
	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return cmd.Process.Kill()
		}
		return err
	}
	return nil
}
