// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"slices"
	"strings"

	"tailscale.com/util/set"
)

// SplitOption splits a "key=value" argument on the first "=".
func SplitOption(arg string) (key, value string, err error) {
	key, value, found := strings.Cut(arg, "=")
	if !found {
		return "", "", Errorf("missing value of '%s' option", arg)
	}
	if key == "" {
		return "", "", Errorf("missing key in '%s' option", arg)
	}
	return key, value, nil
}

// Options holds "key=value" command line arguments.
type Options struct {
	values     map[string][]string
	order      []string
	repeatable set.Set[string]
}

// PrepareOptions builds Options from "key=value" arguments. An option may be
// given more than once only with the same value, unless it is listed in
// repeatable; values of repeatable options are collected in order.
func PrepareOptions(args []string, repeatable ...string) (Options, error) {
	o := Options{
		values:     make(map[string][]string),
		repeatable: set.Of(repeatable...),
	}
	for _, arg := range args {
		name, value, err := SplitOption(arg)
		if err != nil {
			return Options{}, err
		}
		existing, seen := o.values[name]
		switch {
		case !seen:
			o.values[name] = []string{value}
			o.order = append(o.order, name)
		case o.repeatable.Contains(name):
			o.values[name] = append(existing, value)
		case existing[0] != value:
			return Options{}, Errorf(
				"duplicate option '%s' with different values '%s' and '%s'",
				name, existing[0], value,
			)
		}
	}
	return o, nil
}

// Len returns the number of distinct option names.
func (o Options) Len() int { return len(o.values) }

// Has reports whether the option was given.
func (o Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Lookup returns the value of an option. For a repeatable option it returns
// the last value.
func (o Options) Lookup(name string) (string, bool) {
	vals, ok := o.values[name]
	if !ok {
		return "", false
	}
	return vals[len(vals)-1], true
}

// Get is like Lookup but returns "" for a missing option.
func (o Options) Get(name string) string {
	v, _ := o.Lookup(name)
	return v
}

// Values returns all values of an option in command line order.
func (o Options) Values(name string) []string {
	return slices.Clone(o.values[name])
}

// IsRepeatable reports whether name was allowed to repeat.
func (o Options) IsRepeatable(name string) bool {
	return o.repeatable.Contains(name)
}

// Names returns option names in the order they first appeared.
func (o Options) Names() []string {
	return slices.Clone(o.order)
}

// Map returns options as a plain map. Repeatable options map to their last
// value.
func (o Options) Map() map[string]string {
	m := make(map[string]string, len(o.values))
	for name := range o.values {
		m[name] = o.Get(name)
	}
	return m
}
