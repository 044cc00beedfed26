// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package handler

import (
	"fmt"
	"syscall"
)

// ErrorKind classifies a PosixError for dispatcher logging decisions
// (lookup/FileNotFound logs at info, everything else at warn) as well
// as errno extraction.
type ErrorKind int

const (
	// ErrFileNotFound corresponds to ENOENT.
	ErrFileNotFound ErrorKind = iota
	// ErrInvalidArgument corresponds to EINVAL.
	ErrInvalidArgument
	// ErrFunctionNotImplemented corresponds to ENOSYS; the
	// NotImplementedHandler default returns this for every operation.
	ErrFunctionNotImplemented
	// ErrRawErrno passes through an arbitrary syscall.Errno supplied by
	// the handler (e.g. EACCES, EEXIST, ENOTEMPTY).
	ErrRawErrno
)

// IncludeContext controls whether PosixError retains its human-readable
// Context string. It defaults to true, and nothing in this module sets it
// to false.
var IncludeContext = true

// PosixError is the error type every Handler operation (other than
// Init, Destroy, Forget, PostLookup) returns on failure.
type PosixError struct {
	Kind    ErrorKind
	Errno   syscall.Errno
	Context string
}

// NewPosixError builds a PosixError, formatting Context only when
// IncludeContext is true.
func NewPosixError(kind ErrorKind, errno syscall.Errno, format string, args ...any) *PosixError {
	e := &PosixError{Kind: kind, Errno: errno}
	if IncludeContext {
		e.Context = fmt.Sprintf(format, args...)
	}
	return e
}

// ErrNotFound builds an ErrFileNotFound PosixError.
func ErrNotFound(format string, args ...any) *PosixError {
	return NewPosixError(ErrFileNotFound, syscall.ENOENT, format, args...)
}

// ErrInvalid builds an ErrInvalidArgument PosixError.
func ErrInvalid(format string, args ...any) *PosixError {
	return NewPosixError(ErrInvalidArgument, syscall.EINVAL, format, args...)
}

// ErrNotImplemented builds an ErrFunctionNotImplemented PosixError.
func ErrNotImplemented(op string) *PosixError {
	return NewPosixError(ErrFunctionNotImplemented, syscall.ENOSYS, "%s not implemented", op)
}

// FromErrno wraps a raw syscall error (as returned by a golang.org/x/sys/unix
// call) in a PosixError, classifying ENOENT/EINVAL/ENOSYS specially so
// dispatcher logging picks the right severity.
func FromErrno(errno syscall.Errno, format string, args ...any) *PosixError {
	switch errno {
	case syscall.ENOENT:
		return NewPosixError(ErrFileNotFound, errno, format, args...)
	case syscall.EINVAL:
		return NewPosixError(ErrInvalidArgument, errno, format, args...)
	case syscall.ENOSYS:
		return NewPosixError(ErrFunctionNotImplemented, errno, format, args...)
	default:
		return NewPosixError(ErrRawErrno, errno, format, args...)
	}
}

// RawErrno returns the raw errno value the dispatcher replies to the
// kernel with.
func (e *PosixError) RawErrno() syscall.Errno {
	return e.Errno
}

func (e *PosixError) Error() string {
	if e.Context == "" {
		return e.Errno.Error()
	}
	return fmt.Sprintf("%s: %s", e.Context, e.Errno.Error())
}

// IsNotFound reports whether e is a FileNotFound error; the dispatcher
// logs one returned by a lookup at info rather than warn.
func (e *PosixError) IsNotFound() bool {
	return e.Kind == ErrFileNotFound
}
