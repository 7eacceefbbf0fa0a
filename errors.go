// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrNotFound is returned when no resource is registered under a name.
	ErrNotFound = errors.New("gres: resource not found")

	// ErrStaleEntry is returned by Release when the directory entry of the
	// handle vanished through another path (double release, Erase, Clear
	// or a newer resource registered under the same name).
	ErrStaleEntry = errors.New("gres: directory entry vanished before release")

	// ErrNullHandle is the panic value class for dereferencing a null handle.
	ErrNullHandle = errors.New("gres: null handle")

	// ErrKindMismatch is the panic value class for casting a handle to a
	// kind its resource does not implement.
	ErrKindMismatch = errors.New("gres: kind mismatch")

	// ErrNameMismatch is returned when a constructor produced a resource
	// whose Name differs from the requested name.
	ErrNameMismatch = errors.New("gres: resource name does not match registration name")

	// ErrNilResource is returned when a constructor or Adopt supplies a nil resource.
	ErrNilResource = errors.New("gres: resource is nil")

	// ErrClosed is returned when registering into a registry after Shutdown.
	ErrClosed = errors.New("gres: registry is shut down")
)

// LookupError reports a failed directory lookup.
// It wraps ErrNotFound (Op "alias") or ErrStaleEntry (Op "release").
type LookupError struct {
	Op   string
	Kind string
	Name string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("gres: %s %s %q: %v", e.Op, e.Kind, e.Name, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// NullHandleError is the panic value raised when a null handle is dereferenced.
type NullHandleError struct {
	Kind string
}

func (e *NullHandleError) Error() string {
	return "gres: dereference of null " + e.Kind + " handle"
}

func (e *NullHandleError) Is(target error) bool { return target == ErrNullHandle }

// KindMismatchError is the panic value raised when Cast targets a kind the
// resource does not implement.
type KindMismatchError struct {
	Name string
	From string
	To   string
	// Actual is the dynamic type of the resource.
	Actual string
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("gres: cannot cast %s handle %q to %s (resource is %s)", e.From, e.Name, e.To, e.Actual)
}

func (e *KindMismatchError) Is(target error) bool { return target == ErrKindMismatch }
