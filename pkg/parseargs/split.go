// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitList returns the parts of args delimited by separator. The result
// always has one more element than there are separators and no part is nil.
func SplitList(args []string, separator string) [][]string {
	out := [][]string{}
	start := 0
	for i, arg := range args {
		if arg == separator {
			out = append(out, append([]string{}, args[start:i]...))
			start = i + 1
		}
	}
	return append(out, append([]string{}, args[start:]...))
}

// KeywordGroup is a keyword with the "key=value" arguments following it.
type KeywordGroup struct {
	Keyword string
	Args    []string
}

// SplitListByAnyKeywords groups args by keywords where any argument not
// containing "=" is a keyword. label describes the keywords in error
// messages, e.g. "resource set".
func SplitListByAnyKeywords(args []string, label string) ([]KeywordGroup, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if strings.Contains(args[0], "=") {
		return nil, Errorf("Invalid character '=' in %s '%s'", label, args[0])
	}
	var groups []KeywordGroup
	seen := make(map[string]bool)
	for _, arg := range args {
		if strings.Contains(arg, "=") {
			last := &groups[len(groups)-1]
			last.Args = append(last.Args, arg)
			continue
		}
		if seen[arg] {
			return nil, Errorf("%s '%s' defined multiple times", capitalize(label), arg)
		}
		seen[arg] = true
		groups = append(groups, KeywordGroup{Keyword: arg, Args: []string{}})
	}
	return groups, nil
}

// FormatList quotes items and joins them sorted, e.g. "'a', 'b'".
func FormatList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("'%s'", item)
	}
	slices.Sort(quoted)
	return strings.Join(quoted, ", ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
