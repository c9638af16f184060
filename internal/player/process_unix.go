//go:build !windows

package player

import (
	"os/exec"
	"syscall"

	"github.com/PizzaHomicide/vidctl/internal/log"
)

// setupPlayerProcess puts mpv in its own process group so terminal signals reach only vidctl
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// terminateProcess signals the whole mpv process group
func terminateProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil {
		log.Warn("Failed to terminate MPV", "pid", cmd.Process.Pid, "error", err)
	}
}
