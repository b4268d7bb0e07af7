// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package werr classifies the failures wpamenu can report.
package werr

import (
	"errors"
	"fmt"
)

// Kind is the class of a failure.
type Kind int

const (
	// IO covers spawn, read, write and file failures.
	IO Kind = iota + 1
	// Protocol covers missing or unexpected replies on the control channel.
	Protocol
	// Derivation covers failures extracting a PSK.
	Derivation
	// NotConfigured means the daemon does not know the selected network.
	NotConfigured
	// Decode means subprocess output was not valid text.
	Decode
	// Persistence covers (de)serialization of the library or config file.
	Persistence
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "I/O error"
	case Protocol:
		return "protocol error"
	case Derivation:
		return "derivation error"
	case NotConfigured:
		return "not configured"
	case Decode:
		return "decode error"
	case Persistence:
		return "persistence error"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure of operation Op.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// E builds an *Error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error from a format string.
func Errorf(kind Kind, op, format string, a ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, a...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether any error in err's chain is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
