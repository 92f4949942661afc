// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a required argument is missing or empty.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCyclicImport is returned when a module (transitively) imports itself.
	ErrCyclicImport = errors.New("cyclic import")
)

type (
	// InvalidArgumentError describes a rejected argument.
	// It wraps ErrInvalidArgument for errors.Is() compatibility.
	InvalidArgumentError struct {
		Argument string
		Reason   string
	}

	// CyclicImportError is returned when the import graph contains a cycle.
	// It wraps ErrCyclicImport for errors.Is() compatibility.
	CyclicImportError struct {
		// Cycle lists the modules forming the cycle, starting and ending with
		// the module that was re-entered.
		Cycle []string
	}
)

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid argument: %s", e.Argument)
	}
	return fmt.Sprintf("invalid argument: %s %s", e.Argument, e.Reason)
}

// Unwrap returns ErrInvalidArgument.
func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// Error implements the error interface.
func (e *CyclicImportError) Error() string {
	return fmt.Sprintf("cyclic import detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCyclicImport.
func (e *CyclicImportError) Unwrap() error { return ErrCyclicImport }

func cannotBeNil(argument string) error {
	return &InvalidArgumentError{Argument: argument, Reason: "cannot be nil"}
}

func cannotBeEmpty(argument string) error {
	return &InvalidArgumentError{Argument: argument, Reason: "cannot be empty"}
}
