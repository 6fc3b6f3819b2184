//go:build linux || darwin

// Package server provides network listener functionality.
package server

import (
	"errors"
	"net"
	"os"
	"strconv"
)

// GetListener returns a listener for addr. When SOCKET_ACTIVATION=1 it
// accepts a systemd-passed socket (LISTEN_FDS) instead of binding itself,
// falling back to net.Listen otherwise.
func GetListener(addr string) (net.Listener, error) {
	if os.Getenv("SOCKET_ACTIVATION") != "1" {
		return net.Listen("tcp", addr)
	}
	if os.Getenv("LISTEN_FDS") == "1" {
		if pidStr := os.Getenv("LISTEN_PID"); pidStr != "" {
			pid, _ := strconv.Atoi(pidStr)
			if pid == os.Getpid() {
				// fd 3 is SD_LISTEN_FDS_START
				if f := os.NewFile(uintptr(3), "listener"); f != nil {
					if ln, err := net.FileListener(f); err == nil {
						return ln, nil
					}
				}
			}
		}
	}
	return nil, errors.New("socket activation requested but no valid LISTEN_FDS")
}
