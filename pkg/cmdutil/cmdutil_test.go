// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"n\n", false},
		{"\n", false},
		{"yes\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(strings.NewReader(tt.in), &out, "Are you sure?")
		if err != nil {
			t.Fatalf("Confirm(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if out.String() != "Are you sure? [y/N]: " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestCommandLine(t *testing.T) {
	got := CommandLine("crm_mon", "--one-shot", "a b", "")
	want := `crm_mon --one-shot "a b" ""`
	if got != want {
		t.Fatalf("CommandLine = %q, want %q", got, want)
	}
}

func TestFakeRunner(t *testing.T) {
	f := NewFakeRunner().
		Set("crm_mon -1 -r -X", "<crm_mon/>", 0).
		Set("corosync-quorumtool", "", 1)
	ctx := context.Background()

	res, err := f.Run(ctx, "crm_mon", "-1", "-r", "-X")
	if err != nil || res.Stdout != "<crm_mon/>" || !res.Success() {
		t.Fatalf("Run(crm_mon) = %#v, %v", res, err)
	}
	res, err = f.Run(ctx, "corosync-quorumtool", "-l")
	if err != nil || res.ExitCode != 1 {
		t.Fatalf("Run(corosync-quorumtool) = %#v, %v", res, err)
	}
	if _, err := f.Run(ctx, "cibadmin"); err == nil {
		t.Fatalf("Run(cibadmin) succeeded")
	}
	want := []string{"crm_mon -1 -r -X", "corosync-quorumtool -l", "cibadmin"}
	if got := f.CommandLines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("CommandLines() = %#v, want %#v", got, want)
	}
}

func TestExecRunnerExitCode(t *testing.T) {
	var log bytes.Buffer
	r := &ExecRunner{Debug: true, Log: &log}
	res, err := r.Run(context.Background(), "sh", "-c", "echo out; exit 3")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExitCode != 3 || res.Stdout != "out\n" {
		t.Fatalf("Run = %#v", res)
	}
	if !strings.Contains(log.String(), `Running: sh -c "echo out; exit 3"`) {
		t.Fatalf("debug log = %q", log.String())
	}
	if !strings.Contains(log.String(), "Return Value: 3") {
		t.Fatalf("debug log = %q", log.String())
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{}
	if _, err := r.Run(context.Background(), "/nonexistent/pcs-test-binary"); err == nil {
		t.Fatalf("Run succeeded for a missing binary")
	}
}

func TestRunInput(t *testing.T) {
	r := &ExecRunner{}
	res, err := r.RunInput(context.Background(), "a b\n", "cat")
	if err != nil {
		t.Fatalf("RunInput failed: %v", err)
	}
	if res.Stdout != "a b\n" {
		t.Fatalf("Stdout = %q", res.Stdout)
	}

	f := NewFakeRunner().Set("pcs status", "ok", 0)
	var ir InputRunner = f
	if _, err := ir.RunInput(context.Background(), "in", "pcs", "status"); err != nil {
		t.Fatal(err)
	}
	if got := f.Calls()[0].Stdin; got != "in" {
		t.Fatalf("Stdin = %q, want %q", got, "in")
	}
}
