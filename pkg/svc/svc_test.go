// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svc

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oalbrigt/pcs/pkg/cmdutil"
)

func fakeSystemd(active, enabled []string) *cmdutil.FakeRunner {
	f := cmdutil.NewFakeRunner()
	for _, d := range ClusterDaemons {
		f.Set("systemctl is-active "+d.Name+".service", "inactive\n", 3)
		f.Set("systemctl is-enabled "+d.Name+".service", "disabled\n", 1)
	}
	for _, d := range active {
		f.Set("systemctl is-active "+d+".service", "active\n", 0)
	}
	for _, d := range enabled {
		f.Set("systemctl is-enabled "+d+".service", "enabled\n", 0)
	}
	return f
}

func TestStatus(t *testing.T) {
	s := &Systemd{Runner: fakeSystemd([]string{"sbd"}, nil)}
	ctx := context.Background()
	if got, err := s.Status(ctx, "sbd"); err != nil || got != StatusRunning {
		t.Fatalf("Status(sbd) = %q, %v; want %q", got, err, StatusRunning)
	}
	if got, err := s.Status(ctx, "corosync"); err != nil || got != StatusStopped {
		t.Fatalf("Status(corosync) = %q, %v; want %q", got, err, StatusStopped)
	}
}

func TestWriteDaemonStatus(t *testing.T) {
	f := fakeSystemd(
		[]string{"corosync", "pacemaker", "pcsd"},
		[]string{"pcsd", "sbd"},
	)
	var buf bytes.Buffer
	(&Systemd{Runner: f}).WriteDaemonStatus(context.Background(), &buf, "  ")
	want := `Daemon Status:
  corosync: active/disabled
  pacemaker: active/disabled
  pcsd: active/enabled
  sbd: inactive/enabled
`
	if got := buf.String(); got != want {
		t.Fatalf("WriteDaemonStatus =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteDaemonStatusSkipsErrors(t *testing.T) {
	f := fakeSystemd(nil, nil)
	f.Responses["systemctl is-active pcsd.service"] = cmdutil.FakeResponse{Err: errors.New("boom")}
	var buf bytes.Buffer
	(&Systemd{Runner: f}).WriteDaemonStatus(context.Background(), &buf, " ")
	want := "Daemon Status:\n corosync: inactive/disabled\n pacemaker: inactive/disabled\n"
	if got := buf.String(); got != want {
		t.Fatalf("WriteDaemonStatus = %q, want %q", got, want)
	}
}

func TestNotifyReady(t *testing.T) {
	if err := NotifyReady(""); err != nil {
		t.Fatalf("NotifyReady(\"\") = %v", err)
	}

	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Net: "unixgram", Name: path})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := NotifyReady(path); err != nil {
		t.Fatalf("NotifyReady = %v", err)
	}
	buf := make([]byte, 64)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(buf[:n]); got != "READY=1" {
		t.Fatalf("message = %q, want READY=1", got)
	}

	if err := NotifyReady(filepath.Join(t.TempDir(), "missing.sock")); err == nil {
		t.Fatalf("NotifyReady(missing) = nil")
	}
}

func TestNotifyAddr(t *testing.T) {
	tests := []struct {
		socket, want string
	}{
		{"/run/systemd/notify", "/run/systemd/notify"},
		{"@/org/freedesktop/systemd1/notify", "\x00/org/freedesktop/systemd1/notify"},
	}
	for _, tt := range tests {
		if got := notifyAddr(tt.socket); got.Name != tt.want || got.Net != "unixgram" {
			t.Fatalf("notifyAddr(%q) = %#v, want name %q", tt.socket, got, tt.want)
		}
	}
}

func TestNotifyReadyLogsResolvedAddress(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	NotifyReady("@pcsd-test-no-listener")
	want := "Notifying systemd we are running (socket '\x00pcsd-test-no-listener')"
	if got := buf.String(); !strings.Contains(got, want) {
		t.Fatalf("log = %q, want it to contain %q", got, want)
	}
}
