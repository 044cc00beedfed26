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

//go:build linux

package handler

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// StatFsAt is the statfs(2) wrapper sample handlers use to answer the
// statfs operation. Core dispatch never calls this directly (§6: "Core
// dispatch does not depend on these").
func StatFsAt(path string) (StatFs, *PosixError) {
	var raw unix.Statfs_t
	if err := unix.Statfs(path, &raw); err != nil {
		return StatFs{}, FromErrno(err.(syscall.Errno), "%s: statfs failed", path)
	}
	return StatFs{
		TotalBlocks:       raw.Blocks,
		FreeBlocks:        raw.Bfree,
		AvailableBlocks:   raw.Bavail,
		TotalFiles:        raw.Files,
		FreeFiles:         raw.Ffree,
		BlockSize:         uint32(raw.Bsize),
		MaxFilenameLength: uint32(raw.Namelen),
		FragmentSize:      uint32(raw.Frsize),
	}, nil
}

// RenameAt2 wraps renameat2(2), used by sample handlers to perform an
// atomic rename honoring RenameFlags (RENAME_NOREPLACE etc).
func RenameAt2(oldPath string, newPath string, flags RenameFlags) *PosixError {
	if err := unix.Renameat2(unix.AT_FDCWD, oldPath, unix.AT_FDCWD, newPath, uint(flags)); err != nil {
		return FromErrno(err.(syscall.Errno), "renameat2 %s -> %s failed", oldPath, newPath)
	}
	return nil
}

// Fdatasync wraps fdatasync(2).
func Fdatasync(fd int) *PosixError {
	if err := unix.Fdatasync(fd); err != nil {
		return FromErrno(err.(syscall.Errno), "fdatasync failed")
	}
	return nil
}

// FallocateAt wraps fallocate(2).
func FallocateAt(fd int, mode FallocateFlags, offset int64, length int64) *PosixError {
	if err := unix.Fallocate(fd, uint32(mode), offset, length); err != nil {
		return FromErrno(err.(syscall.Errno), "fallocate failed")
	}
	return nil
}

// SetXAttrAt wraps setxattr(2).
func SetXAttrAt(path string, name string, value []byte, flags SetXAttrFlags) *PosixError {
	if err := unix.Setxattr(path, name, value, int(flags)); err != nil {
		return FromErrno(err.(syscall.Errno), "%s: setxattr %s failed", path, name)
	}
	return nil
}

// GetXAttrAt wraps getxattr(2), sizing the destination buffer to size.
func GetXAttrAt(path string, name string, size uint32) ([]byte, *PosixError) {
	buf := make([]byte, size)
	n, err := unix.Getxattr(path, name, buf)
	if err != nil {
		return nil, FromErrno(err.(syscall.Errno), "%s: getxattr %s failed", path, name)
	}
	return buf[:n], nil
}

// ListXAttrAt wraps listxattr(2).
func ListXAttrAt(path string, size uint32) ([]byte, *PosixError) {
	buf := make([]byte, size)
	n, err := unix.Listxattr(path, buf)
	if err != nil {
		return nil, FromErrno(err.(syscall.Errno), "%s: listxattr failed", path)
	}
	return buf[:n], nil
}

// RemoveXAttrAt wraps removexattr(2).
func RemoveXAttrAt(path string, name string) *PosixError {
	if err := unix.Removexattr(path, name); err != nil {
		return FromErrno(err.(syscall.Errno), "%s: removexattr %s failed", path, name)
	}
	return nil
}

// CopyFileRangeAt wraps copy_file_range(2).
func CopyFileRangeAt(fdIn int, offsetIn int64, fdOut int, offsetOut int64, length uint64) (uint32, *PosixError) {
	off1, off2 := offsetIn, offsetOut
	n, err := unix.CopyFileRange(fdIn, &off1, fdOut, &off2, int(length), 0)
	if err != nil {
		return 0, FromErrno(err.(syscall.Errno), "copy_file_range failed")
	}
	return uint32(n), nil
}
