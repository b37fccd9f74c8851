//go:build !unix

package proc

import (
	"os/exec"
	"syscall"
)

// TODO: assign the child to a Windows job object with
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE so it dies with autocompare.
func sysProcAttr() *syscall.SysProcAttr { return nil }

func kill(cmd *exec.Cmd) error { return cmd.Process.Kill() }
