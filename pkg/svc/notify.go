// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svc

import (
	"fmt"
	"log"
	"net"
	"os"
	"strings"
)

// NotifySocketEnv names the environment variable holding the systemd
// notification socket.
const NotifySocketEnv = "NOTIFY_SOCKET"

// NotifyReady tells systemd the daemon finished starting. It is a no-op when
// socket is empty. A leading '@' denotes an abstract socket.
func NotifyReady(socket string) error {
	if socket == "" {
		return nil
	}
	addr := notifyAddr(socket)
	log.Printf("Notifying systemd we are running (socket '%s')", addr.Name)
	conn, err := net.DialUnix("unixgram", nil, addr)
	if err == nil {
		_, err = conn.Write([]byte("READY=1"))
		conn.Close()
	}
	if err != nil {
		log.Printf("Unable to notify systemd on '%s': %v", addr.Name, err)
		return fmt.Errorf("notify systemd: %w", err)
	}
	return nil
}

func notifyAddr(socket string) *net.UnixAddr {
	addr := &net.UnixAddr{Net: "unixgram", Name: socket}
	if strings.HasPrefix(socket, "@") {
		addr.Name = "\x00" + socket[1:]
	}
	return addr
}

// NotifyReadyFromEnv calls NotifyReady with the socket from the environment.
func NotifyReadyFromEnv() error {
	return NotifyReady(os.Getenv(NotifySocketEnv))
}
