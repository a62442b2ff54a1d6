// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"reflect"
	"strings"

	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/shayne/yargs"
)

// WaitOption is a flag which optionally takes a value in --wait=N form.
const WaitOption = "--wait"

// CommandLine is a parsed pcs command line.
type CommandLine struct {
	// Options maps canonical option names ("-f", "--force") to their values.
	// Flags have an empty value.
	Options map[string]string
	// Args are the positional arguments, i.e. the command and its operands.
	Args []string
}

// Modifiers returns the options as InputModifiers.
func (c CommandLine) Modifiers() parseargs.InputModifiers {
	return parseargs.NewInputModifiers(c.Options)
}

// Parse splits argv into options and positional arguments. Options are
// parsed the way GNU getopt does: options and operands may be mixed, short
// options may be clustered and may carry their value attached ("-fcib.xml"),
// long options may be abbreviated to a unique prefix and take their value
// either after "=" or as the next token. Parsing stops at "--"; everything
// after it is positional. Negative numbers which are not option values are
// positional arguments.
func Parse(t parseargs.OptionTable, argv []string) (CommandLine, error) {
	upgraded := t.UpgradeArgs(argv)
	before, after := upgraded, []string(nil)
	for i, a := range upgraded {
		if a == "--" {
			before, after = upgraded[:i], upgraded[i+1:]
			break
		}
	}

	canonical, withValue, err := normalizeOptions(t, t.FilterOutNonOptionNegativeNumbers(before))
	if err != nil {
		return CommandLine{}, err
	}
	_, values := yargs.ConsumeFlagsBySpec(canonical, consumeSpecs(t))

	opts := make(map[string]string, len(values))
	for bare, vals := range values {
		name := "--" + bare
		if len(bare) == 1 {
			name = "-" + bare
		}
		v := vals[len(vals)-1]
		if !withValue[name] {
			v = ""
		}
		opts[name] = v
	}
	args := append(t.FilterOutOptions(before), after...)
	return CommandLine{Options: opts, Args: args}, nil
}

// normalizeOptions returns the options in args rewritten to "-x", "--long",
// "-x=value" or "--long=value" form, dropping operands. withValue holds the
// options which were given a value.
func normalizeOptions(t parseargs.OptionTable, args []string) (canonical []string, withValue map[string]bool, err error) {
	withValue = make(map[string]bool)
	emit := func(name string, value *string) {
		if value == nil {
			canonical = append(canonical, name)
			return
		}
		canonical = append(canonical, name+"="+*value)
		withValue[name] = true
	}
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "-" || !strings.HasPrefix(a, "-") || parseargs.IsNegativeNum(a) {
			continue
		}
		if strings.HasPrefix(a, "--") {
			given, value, hasValue := strings.Cut(a, "=")
			spec, err := lookupLong(t, given)
			if err != nil {
				return nil, nil, err
			}
			switch {
			case hasValue && !spec.ExpectsValue && spec.Name != WaitOption:
				return nil, nil, parseargs.Errorf("option %s must not have an argument", spec.Name)
			case hasValue:
				emit(spec.Name, &value)
			case spec.ExpectsValue:
				if i+1 >= len(args) {
					return nil, nil, parseargs.Errorf("option %s requires argument", spec.Name)
				}
				i++
				emit(spec.Name, &args[i])
			default:
				emit(spec.Name, nil)
			}
			continue
		}
		// cluster of short options, e.g. "-hf" or "-fcib.xml"
		for j := 1; j < len(a); j++ {
			spec, ok := t.Lookup("-" + a[j:j+1])
			if !ok {
				return nil, nil, parseargs.Errorf("option -%s not recognized", a[j:j+1])
			}
			if !spec.ExpectsValue {
				emit(spec.Name, nil)
				continue
			}
			value := a[j+1:]
			if value == "" {
				if i+1 >= len(args) {
					return nil, nil, parseargs.Errorf("option %s requires argument", spec.Name)
				}
				i++
				value = args[i]
			}
			emit(spec.Name, &value)
			break
		}
	}
	return canonical, withValue, nil
}

// lookupLong resolves a long option given in full or as a unique prefix.
func lookupLong(t parseargs.OptionTable, given string) (parseargs.OptionSpec, error) {
	if spec, ok := t.Lookup(given); ok {
		return spec, nil
	}
	var matches []parseargs.OptionSpec
	for _, spec := range t.Specs() {
		if !spec.IsShort() && strings.HasPrefix(spec.Name, given) {
			matches = append(matches, spec)
		}
	}
	switch len(matches) {
	case 0:
		return parseargs.OptionSpec{}, parseargs.Errorf("option %s not recognized", given)
	case 1:
		return matches[0], nil
	}
	return parseargs.OptionSpec{}, parseargs.Errorf("option %s not a unique prefix", given)
}

func consumeSpecs(t parseargs.OptionTable) map[string]yargs.ConsumeSpec {
	specs := make(map[string]yargs.ConsumeSpec)
	for _, spec := range t.Specs() {
		kind := reflect.Bool
		if spec.ExpectsValue {
			kind = reflect.String
		}
		specs[strings.TrimLeft(spec.Name, "-")] = yargs.ConsumeSpec{Kind: kind}
	}
	return specs
}
