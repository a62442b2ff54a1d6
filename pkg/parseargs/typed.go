// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"slices"
	"strings"

	"tailscale.com/util/set"
)

// ArgTypeDelimiter separates the type from the value in a typed argument,
// e.g. "regexp%node-[0-9]".
const ArgTypeDelimiter = "%"

// TypedArg is a command line argument with an explicit or default type.
type TypedArg struct {
	Type  string
	Value string
}

// ParseTypedArg splits arg on the first ArgTypeDelimiter into a type and a
// value. An argument without a type, or with an empty type ("%value"), gets
// defaultType. A type not in allowedTypes is an *InputError.
func ParseTypedArg(arg string, allowedTypes set.Set[string], defaultType string) (TypedArg, error) {
	argType, value, found := strings.Cut(arg, ArgTypeDelimiter)
	if !found {
		return TypedArg{Type: defaultType, Value: arg}, nil
	}
	if argType == "" {
		return TypedArg{Type: defaultType, Value: value}, nil
	}
	if !allowedTypes.Contains(argType) {
		allowed := allowedTypes.Slice()
		slices.Sort(allowed)
		return TypedArg{}, Errorf(
			"'%s' is not an allowed type for '%s', use %s",
			argType, arg, strings.Join(allowed, ", "),
		)
	}
	return TypedArg{Type: argType, Value: value}, nil
}
