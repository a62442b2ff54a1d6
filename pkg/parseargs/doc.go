// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parseargs turns a flat pcs argument vector into structured input for
// command handlers.
//
// The package is made of small, pure building blocks:
//   - OptionTable classifies tokens as value-expecting options, negative
//     numbers or positionals, based on getopt style option specs.
//   - FilterOutNonOptionNegativeNumbers and FilterOutOptions remove tokens
//     using one token of lookback.
//   - UpgradeArgs rewrites deprecated spellings (--clone, --cloneopt=,
//     --master in "resource create") before classification.
//   - GroupByKeywords partitions positionals into keyword groups.
//   - ParseTypedArg splits "type%value" tokens.
//   - PrepareOptions folds "key=value" tokens into an Options map.
//   - InputModifiers is an immutable view over the parsed command line
//     options with documented defaults.
//
// # Errors
//
// User mistakes are reported as *InputError. Mistakes of the calling code
// (an unknown keyword in GroupOptions.GroupRepeated, asking InputModifiers for
// an option that has no registered default) are reported as *InvariantError
// and raised with panic by the functions documented to do so.
//
// # Example
//
//	groups, err := parseargs.GroupByKeywords(
//	    []string{"net", "host=qnetd", "model", "net", "algorithm=ffsplit"},
//	    parseargs.Keywords("model", "heuristics"),
//	    parseargs.GroupOptions{ImplicitFirstGroup: "generic", NoKeywordRepeat: true},
//	)
//	if err != nil {
//	    return err
//	}
//	generic, err := parseargs.PrepareOptions(groups.Get("generic"))
package parseargs
