package proc

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// The child gets its own process group so the whole tree can be killed,
// and the kernel kills it if autocompare dies first.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: unix.SIGKILL,
	}
}
