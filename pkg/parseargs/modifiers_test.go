// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"errors"
	"reflect"
	"testing"
)

func TestInputModifiersGet(t *testing.T) {
	m := NewInputModifiers(map[string]string{
		"--force":   "",
		"-f":        "cib.xml",
		"--wait":    "30",
		"--version": "",
	})
	tests := []struct {
		name string
		want Value
	}{
		{"--force", Bool(true)},
		{"--full", Bool(false)},
		{"-f", String("cib.xml")},
		{"-p", None},
		{"--wait", String("30")},
		{"--version", String("")},
	}
	for _, tt := range tests {
		if got := m.Get(tt.name); got != tt.want {
			t.Errorf("Get(%s) = %#v, want %#v", tt.name, got, tt.want)
		}
	}
	if !m.Bool("--force") || m.Bool("--full") {
		t.Fatalf("Bool misreported")
	}
	if got := m.String("-f"); got != "cib.xml" {
		t.Fatalf("String(-f) = %q", got)
	}
}

func TestInputModifiersWaitDefault(t *testing.T) {
	m := NewInputModifiers(nil)
	got := m.Get("--wait")
	if got.Kind() != KindBool || got.Truthy() {
		t.Fatalf("Get(--wait) = %#v, want Bool(false)", got)
	}
	if m.IsSpecified("--wait") {
		t.Fatalf("--wait reported as specified")
	}
}

func TestInputModifiersResolve(t *testing.T) {
	m := NewInputModifiers(map[string]string{"--name": "x"})
	tests := []struct {
		name     string
		override Value
		want     Resolved
	}{
		{"--name", String("y"), Resolved{String("x"), SourceExplicit}},
		{"--node", String("n1"), Resolved{String("n1"), SourceOverride}},
		{"--node", None, Resolved{None, SourceBuiltin}},
		{"--all", Bool(false), Resolved{Bool(false), SourceOverride}},
		{"--request-timeout", String(""), Resolved{String(""), SourceOverride}},
	}
	for _, tt := range tests {
		got, err := m.Resolve(tt.name, tt.override)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%s, %v) = %#v, want %#v", tt.name, tt.override, got, tt.want)
		}
	}
}

func TestInputModifiersNoDefault(t *testing.T) {
	m := NewInputModifiers(nil)
	_, err := m.Resolve("--frce", None)
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("Resolve err = %v, want *InvariantError", err)
	}
	if got, err := m.Resolve("--frce", String("x")); err != nil || got.Source != SourceOverride {
		t.Fatalf("Resolve with override = %#v, %v", got, err)
	}

	defer func() {
		if _, ok := recover().(*InvariantError); !ok {
			t.Fatalf("Get did not panic with *InvariantError")
		}
	}()
	m.Get("--frce")
}

func TestInputModifiersEnsureOnlySupported(t *testing.T) {
	m := NewInputModifiers(map[string]string{"--all": "", "--bogus": "", "--debug": ""})
	err := m.EnsureOnlySupported("--all")
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InputError", err)
	}
	if want := "Specified options '--bogus' are not supported in this command"; ie.Message != want {
		t.Fatalf("message = %q, want %q", ie.Message, want)
	}
	if err := m.EnsureOnlySupported("--all", "--bogus"); err != nil {
		t.Fatalf("EnsureOnlySupported failed: %v", err)
	}
	if err := NewInputModifiers(nil).EnsureOnlySupported(); err != nil {
		t.Fatalf("EnsureOnlySupported on empty modifiers failed: %v", err)
	}
}

func TestInputModifiersGetSubset(t *testing.T) {
	raw := map[string]string{"--all": "", "-f": "file", "--name": "n"}
	m := NewInputModifiers(raw)
	sub := m.GetSubset("--force", "-f", "--all")
	if sub.IsSpecified("--force") {
		t.Fatalf("--force specified in subset")
	}
	if got, want := sub.Specified(), []string{"--all", "-f"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Specified() = %#v, want %#v", got, want)
	}
	if got := sub.String("-f"); got != "file" {
		t.Fatalf("String(-f) = %q", got)
	}

	raw["--force"] = ""
	if m.IsSpecified("--force") {
		t.Fatalf("modifiers share the caller's map")
	}
}
