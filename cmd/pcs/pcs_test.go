// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/oalbrigt/pcs/pkg/pcsd"
	"github.com/oalbrigt/pcs/pkg/settings"
)

const testConf = `totem {
    version: 2
    cluster_name: test99
}

quorum {
    provider: corosync_votequorum
    wait_for_all: 1
}
`

func runPcs(t *testing.T, argv ...string) (int, string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	data := fmt.Sprintf("known_hosts_file = %q\n", filepath.Join(dir, "known-hosts.toml"))
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PCS_SETTINGS", path)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), argv, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runPcs(t, "--version")
	if code != 0 || stdout != settings.Version+"\n" {
		t.Fatalf("pcs --version = %d %q", code, stdout)
	}
}

func TestUsage(t *testing.T) {
	code, stdout, stderr := runPcs(t)
	if code != 1 || stdout != "" || !strings.Contains(stderr, "USAGE:") {
		t.Fatalf("pcs = %d, stdout %q, stderr %q", code, stdout, stderr)
	}
	code, stdout, _ = runPcs(t, "-h")
	if code != 0 || !strings.Contains(stdout, "quorum") {
		t.Fatalf("pcs -h = %d, stdout %q", code, stdout)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		argv []string
		want string
	}{
		{[]string{"--bogus", "status"}, "Error: option --bogus not recognized\n"},
		{[]string{"bogus"}, "Error: unknown command 'bogus'\n"},
		{[]string{"--request-timeout=0", "status"}, "Error: '0' is not a valid --request-timeout value, use a positive integer\n"},
	}
	for _, tt := range tests {
		code, _, stderr := runPcs(t, tt.argv...)
		if code != 1 || !strings.HasSuffix(stderr, tt.want) {
			t.Fatalf("pcs %q = %d, stderr %q, want suffix %q", tt.argv, code, stderr, tt.want)
		}
	}
}

func TestQuorumConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corosync.conf")
	if err := os.WriteFile(path, []byte(testConf), 0644); err != nil {
		t.Fatal(err)
	}
	code, stdout, stderr := runPcs(t, "quorum", "config", "--corosync_conf", path)
	if code != 0 {
		t.Fatalf("pcs quorum config = %d, stderr %q", code, stderr)
	}
	if stdout != "Options:\n  wait_for_all: 1\n" {
		t.Fatalf("stdout = %q", stdout)
	}

	code, _, _ = runPcs(t, "quorum", "update", "wait_for_all=0", "--corosync_conf", path)
	if code != 0 {
		t.Fatalf("pcs quorum update = %d", code)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "wait_for_all: 0") {
		t.Fatalf("corosync.conf:\n%s", b)
	}
}

func TestUnsupportedOption(t *testing.T) {
	code, _, stderr := runPcs(t, "quorum", "config", "--full")
	want := "Error: Specified options '--full' are not supported in this command\n"
	if code != 1 || stderr != want {
		t.Fatalf("pcs quorum config --full = %d, stderr %q, want %q", code, stderr, want)
	}
}

func TestNewEnv(t *testing.T) {
	mods := parseargs.NewInputModifiers(map[string]string{
		"-f":                "cib.xml",
		"--corosync_conf":   "/tmp/corosync.conf",
		"--debug":           "",
		"--request-timeout": "5",
	})
	set := settings.Default()
	set.KnownHostsFile = filepath.Join(t.TempDir(), "known-hosts.toml")
	if err := os.WriteFile(set.KnownHostsFile, []byte("[hosts.rh7-1]\ntoken = \"abc\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	env, err := newEnv(set, mods, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	client := env.Pcsd.(*pcsd.Client)
	if got := client.Tokens["rh7-1"]; got != "abc" {
		t.Fatalf("token of rh7-1 = %q, want %q", got, "abc")
	}
	runner := env.Runner.(*cmdutil.ExecRunner)
	abs, _ := filepath.Abs("cib.xml")
	if !runner.Debug || len(runner.Env) != 1 || runner.Env[0] != "CIB_file="+abs {
		t.Fatalf("runner = %#v", runner)
	}
	if env.Settings.CorosyncConfFile != "/tmp/corosync.conf" {
		t.Fatalf("CorosyncConfFile = %q", env.Settings.CorosyncConfFile)
	}
}
