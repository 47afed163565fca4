package server

import (
	"fmt"
	"net"
	"os"

	"github.com/coreos/go-systemd/v22/activation"
	"golang.org/x/sys/unix"
)

// MakeListeners returns sockets passed by systemd if the server is socket-activated,
// otherwise it listens to tcp addresses and (if set) a unix socket.
func MakeListeners(listenAddrs []string, unixSocket string, unixSocketMode os.FileMode) ([]net.Listener, error) {
	listeners, err := activation.Listeners()
	if err != nil {
		return nil, fmt.Errorf("systemd activation: %w", err)
	}
	if len(listeners) > 0 {
		logServer.Info(0, "using", len(listeners), "sockets from systemd")
		return listeners, nil
	}

	for _, addr := range listenAddrs {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			closeAll(listeners)
			return nil, err
		}
		listeners = append(listeners, listener)
	}

	if unixSocket != "" {
		listener, err := listenUnixSocket(unixSocket, unixSocketMode)
		if err != nil {
			closeAll(listeners)
			return nil, err
		}
		listeners = append(listeners, listener)
	}

	return listeners, nil
}

// listenUnixSocket creates a socket file with mode applied via umask at creation time.
func listenUnixSocket(socketPath string, mode os.FileMode) (net.Listener, error) {
	_ = os.Remove(socketPath)

	oldMask := unix.Umask(int(^mode.Perm() & 0o777))
	listener, err := net.Listen("unix", socketPath)
	unix.Umask(oldMask)

	return listener, err
}

func closeAll(listeners []net.Listener) {
	for _, listener := range listeners {
		_ = listener.Close()
	}
}
