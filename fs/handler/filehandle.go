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

// OwnedFileHandle is a scoped capability: a handler mints one on
// open/opendir/create and must receive it back, unchanged, on the
// matching release/releasedir call, at which point it must close or
// otherwise dispose of whatever resource it wraps. The zero value is
// not a valid handle.
type OwnedFileHandle struct {
	raw uint64
}

// NewOwnedFileHandle wraps a raw 64-bit value (e.g. an open file
// descriptor, or an index into a handler-private table) as an
// OwnedFileHandle. The caller asserts that raw uniquely identifies a
// live resource it is transferring ownership of to the dispatcher,
// which will return it unchanged on the corresponding release call.
func NewOwnedFileHandle(raw uint64) OwnedFileHandle {
	return OwnedFileHandle{raw: raw}
}

// Raw returns the underlying 64-bit value.
func (h OwnedFileHandle) Raw() uint64 {
	return h.raw
}

// Borrow produces a BorrowedFileHandle valid for the duration of a
// single call (read, write, fsync, …) without transferring ownership.
func (h OwnedFileHandle) Borrow() BorrowedFileHandle {
	return BorrowedFileHandle{raw: h.raw}
}

// BorrowedFileHandle is a non-owning reference to a file handle,
// valid only for the duration of the call it was passed into.
type BorrowedFileHandle struct {
	raw uint64
}

// NewBorrowedFileHandle wraps a raw 64-bit value as a
// BorrowedFileHandle. The caller asserts that raw is currently a live
// handle (i.e. was previously returned from open/opendir/create and
// has not yet been released).
func NewBorrowedFileHandle(raw uint64) BorrowedFileHandle {
	return BorrowedFileHandle{raw: raw}
}

// Raw returns the underlying 64-bit value.
func (h BorrowedFileHandle) Raw() uint64 {
	return h.raw
}
