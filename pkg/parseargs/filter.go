// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"slices"
	"strings"
)

// FilterOutNonOptionNegativeNumbers returns args without negative numbers,
// except negative numbers which are the value of the preceding option.
//
// "--" could mark the end of options and solve this in the standard way, but
// pcs never required it for negative numbers and starting to do so would
// break existing command lines.
func (t OptionTable) FilterOutNonOptionNegativeNumbers(args []string) []string {
	out := make([]string, 0, len(args))
	prev := ""
	for _, arg := range args {
		if !IsNegativeNum(arg) || t.IsOptionExpectingValue(prev) {
			out = append(out, arg)
		}
		prev = arg
	}
	return out
}

// FilterOutOptions returns args without options and option values. Negative
// numbers and a lone "-" are kept.
func (t OptionTable) FilterOutOptions(args []string) []string {
	out := make([]string, 0, len(args))
	prev := ""
	for _, arg := range args {
		if !t.IsOptionExpectingValue(prev) &&
			(!strings.HasPrefix(arg, "-") || arg == "-" || IsNegativeNum(arg)) {
			out = append(out, arg)
		}
		prev = arg
	}
	return out
}

// UpgradeArgs returns a copy of args with deprecated syntax rewritten to the
// current syntax.
func (t OptionTable) UpgradeArgs(args []string) []string {
	positional := t.FilterOutOptions(args)
	resourceCreate := len(positional) >= 2 &&
		slices.Equal(positional[:2], []string{"resource", "create"})

	out := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "--cloneopt" || arg == "--clone":
			out = append(out, "clone")
		case strings.HasPrefix(arg, "--cloneopt="):
			_, value, _ := strings.Cut(arg, "=")
			out = append(out, "clone", value)
		case arg == "--master" && resourceCreate:
			// Only "resource create" is known to be affected; elsewhere
			// --master is an ordinary flag.
			out = append(out, "master")
		default:
			out = append(out, arg)
		}
	}
	return out
}
