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

// NotImplementedHandler is the base of the decorator chain: every
// operation returns FunctionNotImplemented (ENOSYS). A concrete handler
// embeds this to get safe defaults for whatever it doesn't override,
// mirroring jacobsa/fuse/fuseutil's NotImplementedFileSystem and
// DefaultFuseHandler's HandlingMethod::Error behavior in the reference
// implementation this framework is modeled on.
type NotImplementedHandler[T any, IDType any] struct{}

// Inner returns the receiver itself: there is nothing further to
// delegate to.
func (h *NotImplementedHandler[T, IDType]) Inner() Handler[T, IDType] {
	return h
}

func (h *NotImplementedHandler[T, IDType]) DefaultTTL() time.Duration {
	return time.Second
}

func (h *NotImplementedHandler[T, IDType]) Init(req RequestInfo, config *KernelConfig) *PosixError {
	return nil
}

func (h *NotImplementedHandler[T, IDType]) Destroy() {}

func (h *NotImplementedHandler[T, IDType]) Access(req RequestInfo, id T, mask AccessMask) *PosixError {
	return ErrNotImplemented("access")
}

func (h *NotImplementedHandler[T, IDType]) Bmap(req RequestInfo, id T, blocksize uint32, idx uint64) (uint64, *PosixError) {
	return 0, ErrNotImplemented("bmap")
}

func (h *NotImplementedHandler[T, IDType]) CopyFileRange(req RequestInfo, fileIn T, handleIn BorrowedFileHandle, offsetIn int64, fileOut T, handleOut BorrowedFileHandle, offsetOut int64, length uint64, flags uint32) (uint32, *PosixError) {
	return 0, ErrNotImplemented("copy_file_range")
}

func (h *NotImplementedHandler[T, IDType]) Create(req RequestInfo, parent T, name string, mode uint32, umask uint32, flags OpenFlags) (OwnedFileHandle, Metadata[IDType], OpenResponseFlags, *PosixError) {
	return OwnedFileHandle{}, Metadata[IDType]{}, 0, ErrNotImplemented("create")
}

func (h *NotImplementedHandler[T, IDType]) Fallocate(req RequestInfo, id T, fh BorrowedFileHandle, offset int64, length int64, mode FallocateFlags) *PosixError {
	return ErrNotImplemented("fallocate")
}

func (h *NotImplementedHandler[T, IDType]) Flush(req RequestInfo, id T, fh BorrowedFileHandle, lockOwner uint64) *PosixError {
	return ErrNotImplemented("flush")
}

func (h *NotImplementedHandler[T, IDType]) Forget(req RequestInfo, id T, nlookup uint64) {}

func (h *NotImplementedHandler[T, IDType]) Fsync(req RequestInfo, id T, fh BorrowedFileHandle, datasync bool) *PosixError {
	return ErrNotImplemented("fsync")
}

func (h *NotImplementedHandler[T, IDType]) FsyncDir(req RequestInfo, id T, fh BorrowedFileHandle, datasync bool) *PosixError {
	return ErrNotImplemented("fsyncdir")
}

func (h *NotImplementedHandler[T, IDType]) GetAttr(req RequestInfo, id T, fh *BorrowedFileHandle) (FileAttribute, *PosixError) {
	return FileAttribute{}, ErrNotImplemented("getattr")
}

func (h *NotImplementedHandler[T, IDType]) GetLk(req RequestInfo, id T, fh BorrowedFileHandle, lockOwner uint64, lock LockInfo) (LockInfo, *PosixError) {
	return LockInfo{}, ErrNotImplemented("getlk")
}

func (h *NotImplementedHandler[T, IDType]) GetXAttr(req RequestInfo, id T, name string, size uint32) ([]byte, *PosixError) {
	return nil, ErrNotImplemented("getxattr")
}

func (h *NotImplementedHandler[T, IDType]) IOCtl(req RequestInfo, id T, fh BorrowedFileHandle, flags IOCtlFlags, cmd uint32, inData []byte, outSize uint32) (int32, []byte, *PosixError) {
	return 0, nil, ErrNotImplemented("ioctl")
}

func (h *NotImplementedHandler[T, IDType]) Link(req RequestInfo, id T, newParent T, newName string) (Metadata[IDType], *PosixError) {
	return Metadata[IDType]{}, ErrNotImplemented("link")
}

func (h *NotImplementedHandler[T, IDType]) ListXAttr(req RequestInfo, id T, size uint32) ([]byte, *PosixError) {
	return nil, ErrNotImplemented("listxattr")
}

func (h *NotImplementedHandler[T, IDType]) Lookup(req RequestInfo, parent T, name string) (Metadata[IDType], *PosixError) {
	return Metadata[IDType]{}, ErrNotImplemented("lookup")
}

func (h *NotImplementedHandler[T, IDType]) Lseek(req RequestInfo, id T, fh BorrowedFileHandle, seek SeekFrom) (int64, *PosixError) {
	return 0, ErrNotImplemented("lseek")
}

func (h *NotImplementedHandler[T, IDType]) Mkdir(req RequestInfo, parent T, name string, mode uint32, umask uint32) (Metadata[IDType], *PosixError) {
	return Metadata[IDType]{}, ErrNotImplemented("mkdir")
}

func (h *NotImplementedHandler[T, IDType]) Mknod(req RequestInfo, parent T, name string, mode uint32, umask uint32, rdev DeviceType) (Metadata[IDType], *PosixError) {
	return Metadata[IDType]{}, ErrNotImplemented("mknod")
}

func (h *NotImplementedHandler[T, IDType]) Open(req RequestInfo, id T, flags OpenFlags) (OwnedFileHandle, OpenResponseFlags, *PosixError) {
	return OwnedFileHandle{}, 0, ErrNotImplemented("open")
}

func (h *NotImplementedHandler[T, IDType]) OpenDir(req RequestInfo, id T, flags OpenFlags) (OwnedFileHandle, OpenResponseFlags, *PosixError) {
	return OwnedFileHandle{}, 0, ErrNotImplemented("opendir")
}

func (h *NotImplementedHandler[T, IDType]) PostLookup(req RequestInfo, id T, attr *FileAttribute) *PosixError {
	return nil
}

func (h *NotImplementedHandler[T, IDType]) Read(req RequestInfo, id T, fh BorrowedFileHandle, seek SeekFrom, size uint32, flags OpenFlags, lockOwner *uint64) ([]byte, *PosixError) {
	return nil, ErrNotImplemented("read")
}

// ReadDir has no forwarding default beyond ENOSYS: the not-implemented
// base cannot synthesize entries it doesn't have. ReadDirPlus below is
// not built from ReadDir either; a handler that serves both implements
// each one itself, as fs/mirrorfs does.
func (h *NotImplementedHandler[T, IDType]) ReadDir(req RequestInfo, id T, fh BorrowedFileHandle) ([]DirEntry[IDType], *PosixError) {
	return nil, ErrNotImplemented("readdir")
}

func (h *NotImplementedHandler[T, IDType]) ReadDirPlus(req RequestInfo, id T, fh BorrowedFileHandle) ([]DirEntryPlus[IDType], *PosixError) {
	return nil, ErrNotImplemented("readdirplus")
}

func (h *NotImplementedHandler[T, IDType]) ReadLink(req RequestInfo, id T) (string, *PosixError) {
	return "", ErrNotImplemented("readlink")
}

func (h *NotImplementedHandler[T, IDType]) Release(req RequestInfo, id T, fh OwnedFileHandle, flags OpenFlags, lockOwner *uint64, flush bool) *PosixError {
	return ErrNotImplemented("release")
}

func (h *NotImplementedHandler[T, IDType]) ReleaseDir(req RequestInfo, id T, fh OwnedFileHandle, flags OpenFlags) *PosixError {
	return ErrNotImplemented("releasedir")
}

func (h *NotImplementedHandler[T, IDType]) RemoveXAttr(req RequestInfo, id T, name string) *PosixError {
	return ErrNotImplemented("removexattr")
}

func (h *NotImplementedHandler[T, IDType]) Rename(req RequestInfo, parent T, name string, newParent T, newName string, flags RenameFlags) *PosixError {
	return ErrNotImplemented("rename")
}

func (h *NotImplementedHandler[T, IDType]) Rmdir(req RequestInfo, parent T, name string) *PosixError {
	return ErrNotImplemented("rmdir")
}

func (h *NotImplementedHandler[T, IDType]) SetAttr(req RequestInfo, id T, attrs SetAttrRequest) (FileAttribute, *PosixError) {
	return FileAttribute{}, ErrNotImplemented("setattr")
}

func (h *NotImplementedHandler[T, IDType]) SetLk(req RequestInfo, id T, fh BorrowedFileHandle, lockOwner uint64, lock LockInfo, sleep bool) *PosixError {
	return ErrNotImplemented("setlk")
}

func (h *NotImplementedHandler[T, IDType]) SetXAttr(req RequestInfo, id T, name string, value []byte, flags SetXAttrFlags, position uint32) *PosixError {
	return ErrNotImplemented("setxattr")
}

func (h *NotImplementedHandler[T, IDType]) StatFs(req RequestInfo, id T) (StatFs, *PosixError) {
	return StatFs{}, ErrNotImplemented("statfs")
}

func (h *NotImplementedHandler[T, IDType]) Symlink(req RequestInfo, parent T, linkName string, target string) (Metadata[IDType], *PosixError) {
	return Metadata[IDType]{}, ErrNotImplemented("symlink")
}

func (h *NotImplementedHandler[T, IDType]) Unlink(req RequestInfo, parent T, name string) *PosixError {
	return ErrNotImplemented("unlink")
}

func (h *NotImplementedHandler[T, IDType]) Write(req RequestInfo, id T, fh BorrowedFileHandle, seek SeekFrom, data []byte, writeFlags WriteFlags, flags OpenFlags, lockOwner *uint64) (uint32, *PosixError) {
	return 0, ErrNotImplemented("write")
}

var _ Handler[struct{}, struct{}] = (*NotImplementedHandler[struct{}, struct{}])(nil)
