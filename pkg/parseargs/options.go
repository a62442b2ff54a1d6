// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultShortOptions is the getopt short option spec of pcs.
// h = help, f = file, p = password (cluster auth), u = user (cluster auth)
const DefaultShortOptions = "hf:p:u:"

// DefaultLongOptions is the getopt long option spec of pcs. A trailing "="
// marks an option expecting a value.
var DefaultLongOptions = []string{
	"debug", "version", "help", "fullhelp",
	"force", "skip-offline", "autocorrect", "interactive", "autodelete",
	"all", "full", "groups", "local", "wait", "config",
	"start", "enable", "disabled", "off", "request-timeout=",
	"pacemaker", "corosync",
	"no-default-ops", "defaults", "nodesc",
	"clone", "master", "name=", "group=", "node=",
	"from=", "to=", "after=", "before=",
	"corosync_conf=", "cluster_conf=",
	"booth-conf=", "booth-key=",
	// pcs status: do not display resource status on inactive nodes
	"hide-inactive",
	// pcs resource (un)manage: enable or disable monitor operations
	"monitor",
}

// OptionSpec describes a single command line option.
type OptionSpec struct {
	// Name is the canonical spelling including dashes, e.g. "-f" or "--name".
	Name         string
	ExpectsValue bool
}

// IsShort reports whether the option is a one letter option.
func (s OptionSpec) IsShort() bool {
	return len(s.Name) == 2 && s.Name[0] == '-' && s.Name[1] != '-'
}

// OptionTable is an immutable registry of the options a program accepts. The
// zero value knows no options.
type OptionTable struct {
	short map[byte]bool
	long  map[string]bool
	specs []OptionSpec
}

// NewOptionTable builds an OptionTable from getopt style specs: short is a
// string of option letters, each optionally followed by ":" when the option
// expects a value; every long entry is an option name optionally followed by
// "=" when the option expects a value.
func NewOptionTable(short string, long []string) (OptionTable, error) {
	t := OptionTable{
		short: make(map[byte]bool),
		long:  make(map[string]bool),
	}
	for i := 0; i < len(short); i++ {
		c := short[i]
		if c == ':' || c == '-' || c > unicode.MaxASCII {
			return OptionTable{}, fmt.Errorf("invalid short option spec %q at %d", short, i)
		}
		expects := i+1 < len(short) && short[i+1] == ':'
		if expects {
			i++
		}
		if _, dup := t.short[c]; dup {
			return OptionTable{}, fmt.Errorf("short option -%c defined twice", c)
		}
		t.short[c] = expects
		t.specs = append(t.specs, OptionSpec{Name: "-" + string(c), ExpectsValue: expects})
	}
	for _, l := range long {
		name, expects := strings.CutSuffix(l, "=")
		if name == "" || strings.HasPrefix(name, "-") || strings.Contains(name, "=") {
			return OptionTable{}, fmt.Errorf("invalid long option spec %q", l)
		}
		if _, dup := t.long[name]; dup {
			return OptionTable{}, fmt.Errorf("long option --%s defined twice", name)
		}
		t.long[name] = expects
		t.specs = append(t.specs, OptionSpec{Name: "--" + name, ExpectsValue: expects})
	}
	return t, nil
}

// MustOptionTable is like NewOptionTable but panics on an invalid spec.
func MustOptionTable(short string, long []string) OptionTable {
	t, err := NewOptionTable(short, long)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultOptionTable returns the option table of the pcs command line.
func DefaultOptionTable() OptionTable {
	return MustOptionTable(DefaultShortOptions, DefaultLongOptions)
}

// Specs returns the known options in declaration order.
func (t OptionTable) Specs() []OptionSpec {
	return append([]OptionSpec(nil), t.specs...)
}

// Lookup returns the spec of the option spelled exactly as name ("-f",
// "--name").
func (t OptionTable) Lookup(name string) (OptionSpec, bool) {
	if l, ok := strings.CutPrefix(name, "--"); ok {
		expects, found := t.long[l]
		return OptionSpec{Name: name, ExpectsValue: expects}, found
	}
	if len(name) == 2 && name[0] == '-' {
		expects, found := t.short[name[1]]
		return OptionSpec{Name: name, ExpectsValue: expects}, found
	}
	return OptionSpec{}, false
}

// IsShortOptionExpectingValue reports whether arg is a short option, such as
// "-f", which takes a value.
func (t OptionTable) IsShortOptionExpectingValue(arg string) bool {
	return len(arg) == 2 && arg[0] == '-' && t.short[arg[1]]
}

// IsLongOptionExpectingValue reports whether arg is a long option, such as
// "--name", which takes a value.
func (t OptionTable) IsLongOptionExpectingValue(arg string) bool {
	return len(arg) > 2 && arg[:2] == "--" && t.long[arg[2:]]
}

// IsOptionExpectingValue reports whether arg is any option which takes a
// value.
func (t OptionTable) IsOptionExpectingValue(arg string) bool {
	return t.IsShortOptionExpectingValue(arg) || t.IsLongOptionExpectingValue(arg)
}

// IsNum reports whether arg consists of decimal digits only or is the word
// "infinity" in any case.
func IsNum(arg string) bool {
	if strings.EqualFold(arg, "infinity") {
		return true
	}
	if arg == "" {
		return false
	}
	for _, r := range arg {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsNegativeNum reports whether arg is "-" followed by a number as defined by
// IsNum, e.g. "-5" or "-INFINITY".
func IsNegativeNum(arg string) bool {
	rest, ok := strings.CutPrefix(arg, "-")
	return ok && IsNum(rest)
}
