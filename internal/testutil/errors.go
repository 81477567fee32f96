// Package testutil provides testing utilities for xcbundle.
//
// This package contains mock errors and a scripted process runner used across
// test files. It should only be imported by test files (*_test.go).
package testutil

import "errors"

// ErrMockToolFailed simulates an external tool failure that is not a process exit.
var ErrMockToolFailed = errors.New("tool failed")
