// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"maps"
	"slices"
)

// ValueKind is the kind of a modifier Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindBool
	KindString
)

// Value is the effective value of a modifier. The zero value is None, which
// is distinct from Bool(false) and String("").
type Value struct {
	kind ValueKind
	b    bool
	s    string
}

// None is the absent value.
var None = Value{}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the kind of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNone reports whether v is None.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Truthy reports whether v is Bool(true) or a non-empty String.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.s != ""
	}
	return false
}

// Str returns the string of a String value and "" otherwise.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return v.s
	}
	return "<none>"
}

// Source tells where a resolved modifier value came from.
type Source int

const (
	// SourceExplicit means the option was given on the command line.
	SourceExplicit Source = iota + 1
	// SourceOverride means the caller supplied the default.
	SourceOverride
	// SourceBuiltin means the documented default of the option was used.
	SourceBuiltin
)

// Resolved is a modifier value with its origin.
type Resolved struct {
	Value  Value
	Source Source
}

// DebugOption is accepted by every command.
const DebugOption = "--debug"

// Flag options resolve to Bool(presence).
var flagModifiers = []string{
	"--all",
	"--autocorrect",
	"--autodelete",
	"--config",
	"--corosync",
	"--debug",
	"--defaults",
	"--disabled",
	"--enable",
	"--force",
	"--full",
	"--groups",
	"--hide-inactive",
	"--interactive",
	"--local",
	"--master",
	"--monitor",
	"--no-default-ops",
	"--nodesc",
	"--off",
	"--pacemaker",
	"--skip-offline",
	"--start",
}

// Value options resolve to String(value) or their default.
var valueModifiers = map[string]Value{
	"--after":           None,
	"--before":          None,
	"--booth-conf":      None,
	"--booth-key":       None,
	"--corosync_conf":   None,
	"--from":            None,
	"--group":           None,
	"--name":            None,
	"--node":            None,
	"--request-timeout": None,
	"--to":              None,
	"--wait":            Bool(false),
	"-f":                None,
	"-p":                None,
	"-u":                None,
}

var builtinDefaults = func() map[string]Value {
	m := maps.Clone(valueModifiers)
	for _, name := range flagModifiers {
		m[name] = Bool(false)
	}
	return m
}()

func isFlagModifier(name string) bool {
	return slices.Contains(flagModifiers, name)
}

// InputModifiers is an immutable view of the options given on the command
// line, keyed by their canonical spelling ("-f", "--force"). Flag options
// have an empty value in the raw map.
type InputModifiers struct {
	raw map[string]string
}

// NewInputModifiers returns InputModifiers for raw options.
func NewInputModifiers(raw map[string]string) InputModifiers {
	return InputModifiers{raw: maps.Clone(raw)}
}

// IsSpecified reports whether the option was given on the command line.
func (m InputModifiers) IsSpecified(name string) bool {
	_, ok := m.raw[name]
	return ok
}

// Specified returns the sorted names of the options given on the command
// line.
func (m InputModifiers) Specified() []string {
	return slices.Sorted(maps.Keys(m.raw))
}

// Raw returns a copy of the options as given on the command line.
func (m InputModifiers) Raw() map[string]string {
	return maps.Clone(m.raw)
}

func (m InputModifiers) explicit(name string) Value {
	if isFlagModifier(name) {
		return Bool(true)
	}
	return String(m.raw[name])
}

// Resolve returns the value of an option: the value given on the command
// line, else override unless it is None, else the documented default. An
// option with neither is an *InvariantError.
func (m InputModifiers) Resolve(name string, override Value) (Resolved, error) {
	if m.IsSpecified(name) {
		return Resolved{Value: m.explicit(name), Source: SourceExplicit}, nil
	}
	if !override.IsNone() {
		return Resolved{Value: override, Source: SourceOverride}, nil
	}
	if def, ok := builtinDefaults[name]; ok {
		return Resolved{Value: def, Source: SourceBuiltin}, nil
	}
	return Resolved{}, invariantf("non existing default value for '%s'", name)
}

// Get returns the value of an option. It panics with an *InvariantError for
// an option which was not given and has no documented default.
func (m InputModifiers) Get(name string) Value {
	return m.GetOr(name, None)
}

// GetOr is like Get but uses def when the option was not given.
func (m InputModifiers) GetOr(name string, def Value) Value {
	r, err := m.Resolve(name, def)
	if err != nil {
		panic(err)
	}
	return r.Value
}

// Bool reports whether the value of an option is truthy.
func (m InputModifiers) Bool(name string) bool {
	return m.Get(name).Truthy()
}

// String returns the string value of an option or "".
func (m InputModifiers) String(name string) string {
	return m.Get(name).Str()
}

// GetSubset returns InputModifiers restricted to the named options which
// were given on the command line.
func (m InputModifiers) GetSubset(names ...string) InputModifiers {
	raw := make(map[string]string)
	for _, name := range names {
		if v, ok := m.raw[name]; ok {
			raw[name] = v
		}
	}
	return InputModifiers{raw: raw}
}

// EnsureOnlySupported returns an *InputError listing the given options which
// are not among supported. DebugOption is always supported.
func (m InputModifiers) EnsureOnlySupported(supported ...string) error {
	var unsupported []string
	for name := range m.raw {
		if name == DebugOption || slices.Contains(supported, name) {
			continue
		}
		unsupported = append(unsupported, name)
	}
	if len(unsupported) > 0 {
		return Errorf("Specified options %s are not supported in this command", FormatList(unsupported))
	}
	return nil
}
