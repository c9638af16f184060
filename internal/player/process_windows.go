//go:build windows

package player

import (
	"os/exec"
	"syscall"

	"github.com/PizzaHomicide/vidctl/internal/log"
)

// setupPlayerProcess starts mpv in a new process group so console control events reach only vidctl
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

func terminateProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil {
		log.Warn("Failed to kill MPV", "pid", cmd.Process.Pid, "error", err)
	}
}
