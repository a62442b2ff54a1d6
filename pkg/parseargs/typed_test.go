// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"errors"
	"testing"
)

func TestParseTypedArg(t *testing.T) {
	allowed := Keywords("integer", "string", "version")
	tests := []struct {
		arg  string
		want TypedArg
	}{
		{"5", TypedArg{"string", "5"}},
		{"integer%5", TypedArg{"integer", "5"}},
		{"version%1.2%3", TypedArg{"version", "1.2%3"}},
		{"%integer%5", TypedArg{"string", "integer%5"}},
		{"%", TypedArg{"string", ""}},
		{"integer%", TypedArg{"integer", ""}},
	}
	for _, tt := range tests {
		got, err := ParseTypedArg(tt.arg, allowed, "string")
		if err != nil {
			t.Fatalf("ParseTypedArg(%q) failed: %v", tt.arg, err)
		}
		if got != tt.want {
			t.Errorf("ParseTypedArg(%q) = %#v, want %#v", tt.arg, got, tt.want)
		}
	}
}

func TestParseTypedArgRoundTrip(t *testing.T) {
	for _, typ := range []string{"a", "integer", "x-y"} {
		for _, v := range []string{"", "1", "value", "a=b"} {
			allowed := Keywords(typ)
			got, err := ParseTypedArg(typ+ArgTypeDelimiter+v, allowed, "d")
			if err != nil || got != (TypedArg{typ, v}) {
				t.Fatalf("typed %q %q = %#v, %v", typ, v, got, err)
			}
			got, err = ParseTypedArg(v, allowed, "d")
			if err != nil || got != (TypedArg{"d", v}) {
				t.Fatalf("untyped %q = %#v, %v", v, got, err)
			}
		}
	}
}

func TestParseTypedArgNotAllowed(t *testing.T) {
	_, err := ParseTypedArg("float%1.5", Keywords("string", "integer"), "string")
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InputError", err)
	}
	want := "'float' is not an allowed type for 'float%1.5', use integer, string"
	if ie.Message != want {
		t.Fatalf("message = %q, want %q", ie.Message, want)
	}
}
