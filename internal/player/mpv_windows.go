//go:build windows

package player

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"gopkg.in/natefinch/npipe.v2"
)

// dialIPC connects to mpv's named pipe
func dialIPC(ctx context.Context, pipePath string) (net.Conn, error) {
	log.Debug("Connecting to Windows named pipe", "path", pipePath)

	timeout := time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	conn, err := npipe.DialTimeout(pipePath, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPV pipe: %w", err)
	}
	return conn, nil
}

// Named pipes cannot be checked before dialing
func socketReady(string) bool {
	return true
}

func removeStaleSocket(string) {}
