//go:build !windows

package player

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/PizzaHomicide/vidctl/internal/log"
)

// dialIPC connects to mpv's unix domain socket
func dialIPC(ctx context.Context, socketPath string) (net.Conn, error) {
	log.Debug("Connecting to Unix socket", "path", socketPath)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPV socket: %w", err)
	}
	return conn, nil
}

func socketReady(socketPath string) bool {
	_, err := os.Stat(socketPath)
	return err == nil
}

// removeStaleSocket deletes a socket left behind by an mpv that did not shut down cleanly
func removeStaleSocket(socketPath string) {
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Failed to remove stale MPV socket", "path", socketPath, "error", err)
	}
}
