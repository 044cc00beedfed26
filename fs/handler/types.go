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

// Package handler defines the polymorphic contract a filesystem author
// implements: the Handler interface, the value types that cross its
// boundary (attributes, flags, lock descriptors, file handles), and the
// POSIX-flavoured error taxonomy every operation returns through.
package handler

import (
	"os"
	"time"
)

// FileKind mirrors the handful of file types FUSE cares about.
type FileKind uint32

const (
	FileKindRegular FileKind = iota
	FileKindDirectory
	FileKindSymlink
	FileKindCharDevice
	FileKindBlockDevice
	FileKindNamedPipe
	FileKindSocket
)

// FileAttribute is the full attribute set a handler returns for an
// entry. Fields mirror struct stat plus the handler-supplied TTL and
// generation that the dispatcher attaches to entry replies.
type FileAttribute struct {
	Size    uint64
	Blocks  uint64
	Atime   time.Time
	Mtime   time.Time
	Ctime   time.Time
	Crtime  time.Time
	Kind    FileKind
	Perm    os.FileMode
	Nlink   uint32
	UID     uint32
	GID     uint32
	Rdev    uint32
	Flags   uint32
	BlkSize uint32

	// TTL overrides the handler's default entry/attribute TTL for this
	// specific reply. Zero means "use the handler default".
	TTL time.Duration

	// Generation overrides the default (zero) generation number for
	// this specific reply.
	Generation uint64
}

// Metadata is what "entry producing" operations (lookup, create, mkdir,
// mknod, symlink, link) return: the resolver-specific identifier ID (a
// zero-value struct{} for path/component-based resolvers, the
// caller-managed inode.ID for InodeResolver) alongside the full
// attribute set.
type Metadata[IDType any] struct {
	ID   IDType
	Attr FileAttribute
}

// MinimalMetadata is what Readdir returns per entry: just enough to
// paint an entry's kind in getdents64, without materializing a full
// FileAttribute for every name in a potentially huge directory.
type MinimalMetadata[IDType any] struct {
	ID   IDType
	Kind FileKind
}

// AccessMask mirrors the F_OK/R_OK/W_OK/X_OK bits passed to access(2).
type AccessMask uint32

const (
	AccessOK      AccessMask = 0
	AccessExecute AccessMask = 1 << (iota - 1)
	AccessWrite
	AccessRead
)

// OpenFlags mirrors the O_* bits passed to open(2)/openat(2), minus the
// ones FUSE strips before handing them to a handler (O_CREAT, O_EXCL,
// O_NOCTTY, O_TRUNC for open(); those are implied by which operation was
// called).
type OpenFlags uint32

// FallocateFlags mirrors the FALLOC_FL_* bits passed to fallocate(2).
type FallocateFlags uint32

// RenameFlags mirrors the RENAME_* bits passed to renameat2(2)
// (RENAME_NOREPLACE, RENAME_EXCHANGE, RENAME_WHITEOUT).
type RenameFlags uint32

// DeviceType packages the major/minor device numbers passed to mknod(2)
// for device-special files.
type DeviceType struct {
	Major uint32
	Minor uint32
}

// SeekWhence mirrors the SEEK_* constants.
type SeekWhence int

const (
	SeekSet SeekWhence = iota
	SeekCur
	SeekEnd
	SeekData
	SeekHole
)

// SeekFrom is the (whence, offset) pair passed to lseek/read/write.
type SeekFrom struct {
	Whence SeekWhence
	Offset int64
}

// LockInfo is a POSIX file-lock descriptor, as used by getlk/setlk.
type LockInfo struct {
	Start  uint64
	End    uint64
	Type   int32
	PID    uint32
	Whence SeekWhence
}

// SetAttrRequest carries the optional fields setattr may change; a nil
// pointer field means "leave this attribute unchanged".
type SetAttrRequest struct {
	Size  *uint64
	Mode  *os.FileMode
	UID   *uint32
	GID   *uint32
	Atime *time.Time
	Mtime *time.Time
	Ctime *time.Time

	// FileHandle is set when setattr arrives via an already-open file
	// descriptor (e.g. ftruncate), letting the handler avoid a path
	// lookup.
	FileHandle *BorrowedFileHandle
}

// StatFs mirrors struct statvfs, returned by the statfs operation.
type StatFs struct {
	TotalBlocks       uint64
	FreeBlocks        uint64
	AvailableBlocks   uint64
	TotalFiles        uint64
	FreeFiles         uint64
	BlockSize         uint32
	MaxFilenameLength uint32
	FragmentSize      uint32
}

// RequestInfo carries per-call metadata handed to each handler method.
// The dispatcher fills in only RequestID, a counter it mints per op for
// logging correlation; UID, GID and PID are left zero.
type RequestInfo struct {
	UID       uint32
	GID       uint32
	PID       uint32
	RequestID uint64
}

// KernelConfig is handed to Init so a handler can negotiate optional
// FUSE protocol features (e.g. readdirplus, writeback caching) before
// the first real operation arrives.
type KernelConfig struct {
	MaxReadahead   uint32
	MaxWrite       uint32
	MaxBackground  uint16
	CongestionThreshold uint16
}

// IOCtlFlags mirrors FUSE_IOCTL_* bits (e.g. unrestricted/32-bit/dir).
type IOCtlFlags uint32

// WriteFlags mirrors FUSE_WRITE_* bits (e.g. FUSE_WRITE_CACHE).
type WriteFlags uint32

// OpenResponseFlags mirrors FOPEN_* bits a handler may set on open
// (direct_io, keep_cache, nonseekable, cache_dir).
type OpenResponseFlags uint32

// SetXAttrFlags mirrors XATTR_CREATE/XATTR_REPLACE.
type SetXAttrFlags uint32
