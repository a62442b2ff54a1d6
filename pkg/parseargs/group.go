// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"slices"
	"strings"

	"tailscale.com/util/set"
)

// Keywords returns a keyword set for GroupByKeywords.
func Keywords(keywords ...string) set.Set[string] {
	return set.Of(keywords...)
}

// GroupOptions tunes GroupByKeywords. The zero value allows keywords to be
// repeated, requires the first argument to be a keyword and fills in every
// keyword missing from the arguments.
type GroupOptions struct {
	// ImplicitFirstGroup is the group collecting the arguments preceding the
	// first keyword. It is not a keyword: its occurrence in the arguments is
	// an ordinary argument.
	ImplicitFirstGroup string

	// NoKeywordRepeat makes a second occurrence of a keyword an error.
	NoKeywordRepeat bool

	// GroupRepeated lists keywords whose occurrences are collected
	// separately, see Groups.Occurrences. These keywords may always repeat.
	// Every one of them must be in the keyword set.
	GroupRepeated []string

	// OnlyFoundKeywords leaves out keywords which do not appear in the
	// arguments.
	OnlyFoundKeywords bool
}

// Groups is the result of GroupByKeywords.
type Groups struct {
	flat     map[string][]string
	repeated map[string][][]string
}

// Has reports whether the group exists.
func (g Groups) Has(key string) bool {
	if _, ok := g.flat[key]; ok {
		return true
	}
	_, ok := g.repeated[key]
	return ok
}

// Get returns the arguments of a group. It returns nil for missing groups and
// for keywords listed in GroupOptions.GroupRepeated.
func (g Groups) Get(key string) []string {
	return g.flat[key]
}

// Occurrences returns the arguments of every occurrence of a keyword listed
// in GroupOptions.GroupRepeated, one slice per occurrence.
func (g Groups) Occurrences(key string) [][]string {
	return g.repeated[key]
}

// Keys returns the sorted names of all groups.
func (g Groups) Keys() []string {
	keys := make([]string, 0, len(g.flat)+len(g.repeated))
	for k := range g.flat {
		keys = append(keys, k)
	}
	for k := range g.repeated {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of groups.
func (g Groups) Len() int {
	return len(g.flat) + len(g.repeated)
}

// GroupByKeywords splits args into groups started by keywords. For keywords
// "first" and "second", ["first", "1", "2", "second", "3"] is grouped as
// {"first": ["1", "2"], "second": ["3"]}.
//
// With GroupRepeated: ["first"], ["first", "1", "2", "second", "3", "first",
// "4"] is grouped as {"first": [["1", "2"], ["4"]], "second": ["3"]}.
//
// If args do not start with a keyword and no ImplicitFirstGroup is set,
// ErrUsage is returned. GroupByKeywords panics with an *InvariantError when
// GroupRepeated contains a word missing from keywords.
func GroupByKeywords(args []string, keywords set.Set[string], opts GroupOptions) (Groups, error) {
	grouped := make(set.Set[string], len(opts.GroupRepeated))
	var unknown []string
	for _, kw := range opts.GroupRepeated {
		if !keywords.Contains(kw) {
			unknown = append(unknown, kw)
		}
		grouped.Add(kw)
	}
	if len(unknown) > 0 {
		panic(invariantf("keywords in grouping not in keyword set: %s", strings.Join(unknown, ", ")))
	}

	g := Groups{
		flat:     make(map[string][]string),
		repeated: make(map[string][][]string),
	}
	open := func(kw string) error {
		if g.Has(kw) && opts.NoKeywordRepeat && !grouped.Contains(kw) {
			return Errorf("'%s' cannot be used more than once", kw)
		}
		if grouped.Contains(kw) {
			g.repeated[kw] = append(g.repeated[kw], []string{})
		} else if _, ok := g.flat[kw]; !ok {
			g.flat[kw] = []string{}
		}
		return nil
	}

	if len(args) > 0 {
		var current string
		if !keywords.Contains(args[0]) {
			if opts.ImplicitFirstGroup == "" {
				return Groups{}, ErrUsage
			}
			if err := open(opts.ImplicitFirstGroup); err != nil {
				return Groups{}, err
			}
			current = opts.ImplicitFirstGroup
		}
		for _, arg := range args {
			if keywords.Contains(arg) {
				if err := open(arg); err != nil {
					return Groups{}, err
				}
				current = arg
				continue
			}
			if grouped.Contains(current) {
				occ := g.repeated[current]
				occ[len(occ)-1] = append(occ[len(occ)-1], arg)
				continue
			}
			g.flat[current] = append(g.flat[current], arg)
		}
	}

	if !opts.OnlyFoundKeywords {
		for kw := range keywords {
			if g.Has(kw) {
				continue
			}
			if grouped.Contains(kw) {
				g.repeated[kw] = [][]string{}
			} else {
				g.flat[kw] = []string{}
			}
		}
		if opts.ImplicitFirstGroup != "" && !g.Has(opts.ImplicitFirstGroup) {
			g.flat[opts.ImplicitFirstGroup] = []string{}
		}
	}
	return g, nil
}
