// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parseargs

import (
	"errors"
	"fmt"
)

// InputError is returned when the command line given by the user is not
// valid. An empty Message means the caller should print the usage of the
// command instead of a specific message.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	if e.Message == "" {
		return "invalid command line input"
	}
	return e.Message
}

// Errorf returns an *InputError with a formatted message.
func Errorf(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// ErrUsage is an *InputError without a message. Command dispatchers print the
// usage of the command when they see it.
var ErrUsage error = &InputError{}

// IsUsage reports whether err is an *InputError without a message.
func IsUsage(err error) bool {
	var ie *InputError
	return errors.As(err, &ie) && ie.Message == ""
}

// InvariantError reports a programming error in the caller, for example a
// typo in an option name. It is not meant to be handled as user input error.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "parseargs: " + e.Message
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}
