//go:build unix

package setup

import (
	"os/exec"
	"syscall"
)

// isolate keeps terminal signals away from the bootstrapper by giving
// it its own process group.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
