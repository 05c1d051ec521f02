package setup

import (
	"os/exec"
	"syscall"
)

// isolate keeps console Ctrl-C away from the bootstrapper.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
