//go:build unix && !linux

package proc

import "syscall"

// No parent-death signal outside Linux; the process group still lets
// Close take down anything the child spawned.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
