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

import "time"

// Handler is the contract a filesystem author implements. T is the
// identity type the handler operates on (an inode.ID, a path string, a
// path-component slice, or a resolver.HybridID, depending on which
// resolver the dispatcher was built with). IDType is the matching
// resolver's notion of "a child id the caller may supply" — meaningful
// only when T is inode.ID, ignored (struct{}) otherwise; see
// fs/resolver.Resolver for the same split.
//
// A concrete handler embeds a *NotImplementedHandler[T, IDType] (see
// not_implemented.go) to get ENOSYS defaults for every method it does not
// define, or embeds another Handler to layer behavior on top of it, the
// decorator pattern spec.md §9 calls out in place of subtype inheritance.
// Methods are not forwarded through Inner(): neither
// NotImplementedHandler nor the dispatcher calls it.
type Handler[T any, IDType any] interface {
	// Inner returns the handler this one wraps. A handler that wraps
	// nothing returns itself or a NotImplementedHandler.
	Inner() Handler[T, IDType]

	// DefaultTTL is the fallback entry/attribute TTL applied when a
	// FileAttribute's own TTL field is zero.
	DefaultTTL() time.Duration

	Init(req RequestInfo, config *KernelConfig) *PosixError
	Destroy()

	Access(req RequestInfo, id T, mask AccessMask) *PosixError
	Bmap(req RequestInfo, id T, blocksize uint32, idx uint64) (uint64, *PosixError)
	CopyFileRange(req RequestInfo, fileIn T, handleIn BorrowedFileHandle, offsetIn int64, fileOut T, handleOut BorrowedFileHandle, offsetOut int64, length uint64, flags uint32) (uint32, *PosixError)
	Create(req RequestInfo, parent T, name string, mode uint32, umask uint32, flags OpenFlags) (OwnedFileHandle, Metadata[IDType], OpenResponseFlags, *PosixError)
	Fallocate(req RequestInfo, id T, fh BorrowedFileHandle, offset int64, length int64, mode FallocateFlags) *PosixError
	Flush(req RequestInfo, id T, fh BorrowedFileHandle, lockOwner uint64) *PosixError
	Forget(req RequestInfo, id T, nlookup uint64)
	Fsync(req RequestInfo, id T, fh BorrowedFileHandle, datasync bool) *PosixError
	FsyncDir(req RequestInfo, id T, fh BorrowedFileHandle, datasync bool) *PosixError
	GetAttr(req RequestInfo, id T, fh *BorrowedFileHandle) (FileAttribute, *PosixError)
	GetLk(req RequestInfo, id T, fh BorrowedFileHandle, lockOwner uint64, lock LockInfo) (LockInfo, *PosixError)
	GetXAttr(req RequestInfo, id T, name string, size uint32) ([]byte, *PosixError)
	IOCtl(req RequestInfo, id T, fh BorrowedFileHandle, flags IOCtlFlags, cmd uint32, inData []byte, outSize uint32) (int32, []byte, *PosixError)
	Link(req RequestInfo, id T, newParent T, newName string) (Metadata[IDType], *PosixError)
	ListXAttr(req RequestInfo, id T, size uint32) ([]byte, *PosixError)
	Lookup(req RequestInfo, parent T, name string) (Metadata[IDType], *PosixError)
	Lseek(req RequestInfo, id T, fh BorrowedFileHandle, seek SeekFrom) (int64, *PosixError)
	Mkdir(req RequestInfo, parent T, name string, mode uint32, umask uint32) (Metadata[IDType], *PosixError)
	Mknod(req RequestInfo, parent T, name string, mode uint32, umask uint32, rdev DeviceType) (Metadata[IDType], *PosixError)
	Open(req RequestInfo, id T, flags OpenFlags) (OwnedFileHandle, OpenResponseFlags, *PosixError)
	OpenDir(req RequestInfo, id T, flags OpenFlags) (OwnedFileHandle, OpenResponseFlags, *PosixError)
	PostLookup(req RequestInfo, id T, attr *FileAttribute) *PosixError
	Read(req RequestInfo, id T, fh BorrowedFileHandle, seek SeekFrom, size uint32, flags OpenFlags, lockOwner *uint64) ([]byte, *PosixError)
	ReadDir(req RequestInfo, id T, fh BorrowedFileHandle) ([]DirEntry[IDType], *PosixError)
	ReadDirPlus(req RequestInfo, id T, fh BorrowedFileHandle) ([]DirEntryPlus[IDType], *PosixError)
	ReadLink(req RequestInfo, id T) (string, *PosixError)
	Release(req RequestInfo, id T, fh OwnedFileHandle, flags OpenFlags, lockOwner *uint64, flush bool) *PosixError
	ReleaseDir(req RequestInfo, id T, fh OwnedFileHandle, flags OpenFlags) *PosixError
	RemoveXAttr(req RequestInfo, id T, name string) *PosixError
	Rename(req RequestInfo, parent T, name string, newParent T, newName string, flags RenameFlags) *PosixError
	Rmdir(req RequestInfo, parent T, name string) *PosixError
	SetAttr(req RequestInfo, id T, attrs SetAttrRequest) (FileAttribute, *PosixError)
	SetLk(req RequestInfo, id T, fh BorrowedFileHandle, lockOwner uint64, lock LockInfo, sleep bool) *PosixError
	SetXAttr(req RequestInfo, id T, name string, value []byte, flags SetXAttrFlags, position uint32) *PosixError
	StatFs(req RequestInfo, id T) (StatFs, *PosixError)
	Symlink(req RequestInfo, parent T, linkName string, target string) (Metadata[IDType], *PosixError)
	Unlink(req RequestInfo, parent T, name string) *PosixError
	Write(req RequestInfo, id T, fh BorrowedFileHandle, seek SeekFrom, data []byte, writeFlags WriteFlags, flags OpenFlags, lockOwner *uint64) (uint32, *PosixError)
}

// DirEntry is one readdir result: minimal per-entry metadata, enough to
// populate a getdents64-style reply without a full attribute fetch.
type DirEntry[IDType any] struct {
	Name string
	MinimalMetadata[IDType]
}

// DirEntryPlus is one readdirplus result: full per-entry metadata.
type DirEntryPlus[IDType any] struct {
	Name string
	Metadata[IDType]
}
