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

// Package mirrorfs is a reference Handler implementation that projects a
// real directory tree through the framework unchanged, the same role
// easy_fuser's own mirror_fs template plays in its test suite (see
// tests/mount_mirror_fs.rs): every operation is a thin translation to the
// matching syscall against a source directory on the host.
package mirrorfs

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/khanhtranngoccva/easy-fuser/cfg"
	"github.com/khanhtranngoccva/easy-fuser/fs/handler"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// MirrorFs mirrors SourceDir at the mount point. T is string: the
// PathResolver's relative-path identity, joined onto SourceDir to reach
// the real file. ReadOnly rejects every mutating operation with EROFS,
// matching the MirrorFsReadOnly variant the reference test suite mounts
// alongside the writable one.
type MirrorFs struct {
	handler.NotImplementedHandler[string, struct{}]

	SourceDir string
	ReadOnly  bool
	TTL       time.Duration

	mu         sync.Mutex
	nextHandle uint64
	files      map[uint64]*os.File
}

// New builds a MirrorFs rooted at sourceDir.
func New(sourceDir string, readOnly bool) *MirrorFs {
	return &MirrorFs{
		SourceDir: sourceDir,
		ReadOnly:  readOnly,
		TTL:       time.Second,
		files:     make(map[uint64]*os.File),
	}
}

func (m *MirrorFs) DefaultTTL() time.Duration { return m.TTL }

func (m *MirrorFs) realPath(id string) string {
	return filepath.Join(m.SourceDir, id)
}

func childID(parent string, name string) string {
	return path.Join(parent, name)
}

func (m *MirrorFs) allocHandle(f *os.File) handler.OwnedFileHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextHandle++
	raw := m.nextHandle
	m.files[raw] = f
	return handler.NewOwnedFileHandle(raw)
}

func (m *MirrorFs) file(fh handler.BorrowedFileHandle) *os.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[fh.Raw()]
}

func (m *MirrorFs) takeFile(raw uint64) (*os.File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[raw]
	delete(m.files, raw)
	return f, ok
}

// errnoFrom unwraps the syscall.Errno buried in the *os.PathError/
// *os.LinkError the os package returns, so callers can report the exact
// POSIX error the kernel expects instead of a generic I/O failure.
func errnoFrom(err error, format string, args ...any) *handler.PosixError {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	switch e := err.(type) {
	case *os.PathError:
		if n, ok := e.Err.(syscall.Errno); ok {
			errno = n
		}
	case *os.LinkError:
		if n, ok := e.Err.(syscall.Errno); ok {
			errno = n
		}
	case syscall.Errno:
		errno = e
	}
	if errno == 0 {
		errno = syscall.EIO
	}
	return handler.FromErrno(errno, format, args...)
}

func toAttr(fi os.FileInfo) handler.FileAttribute {
	attr := handler.FileAttribute{
		Size:  uint64(fi.Size()),
		Mtime: fi.ModTime(),
		Perm:  fi.Mode().Perm(),
		Nlink: 1,
	}
	switch {
	case fi.IsDir():
		attr.Kind = handler.FileKindDirectory
	case fi.Mode()&os.ModeSymlink != 0:
		attr.Kind = handler.FileKindSymlink
	case fi.Mode()&os.ModeCharDevice != 0:
		attr.Kind = handler.FileKindCharDevice
	case fi.Mode()&os.ModeDevice != 0:
		attr.Kind = handler.FileKindBlockDevice
	case fi.Mode()&os.ModeNamedPipe != 0:
		attr.Kind = handler.FileKindNamedPipe
	case fi.Mode()&os.ModeSocket != 0:
		attr.Kind = handler.FileKindSocket
	default:
		attr.Kind = handler.FileKindRegular
	}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		attr.Nlink = uint32(st.Nlink)
		attr.UID = st.Uid
		attr.GID = st.Gid
		attr.Rdev = uint32(st.Rdev)
		attr.Blocks = uint64(st.Blocks)
		attr.Atime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
		attr.Ctime = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return attr
}

func (m *MirrorFs) statAttr(full string) (handler.FileAttribute, *handler.PosixError) {
	fi, err := os.Lstat(full)
	if err != nil {
		return handler.FileAttribute{}, errnoFrom(err, "%s: lstat failed", full)
	}
	return toAttr(fi), nil
}

func (m *MirrorFs) checkWritable() *handler.PosixError {
	if m.ReadOnly {
		return handler.NewPosixError(handler.ErrRawErrno, syscall.EROFS, "mirrorfs is mounted read-only")
	}
	return nil
}

////////////////////////////////////////////////////////////////////////
// Lookup / attributes
////////////////////////////////////////////////////////////////////////

func (m *MirrorFs) Lookup(req handler.RequestInfo, parent string, name string) (handler.Metadata[struct{}], *handler.PosixError) {
	child := childID(parent, name)
	attr, perr := m.statAttr(m.realPath(child))
	if perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	return handler.Metadata[struct{}]{Attr: attr}, nil
}

func (m *MirrorFs) PostLookup(req handler.RequestInfo, id string, attr *handler.FileAttribute) *handler.PosixError {
	return nil
}

func (m *MirrorFs) GetAttr(req handler.RequestInfo, id string, fh *handler.BorrowedFileHandle) (handler.FileAttribute, *handler.PosixError) {
	return m.statAttr(m.realPath(id))
}

func (m *MirrorFs) SetAttr(req handler.RequestInfo, id string, attrs handler.SetAttrRequest) (handler.FileAttribute, *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return handler.FileAttribute{}, perr
	}
	full := m.realPath(id)
	if attrs.Size != nil {
		if err := os.Truncate(full, int64(*attrs.Size)); err != nil {
			return handler.FileAttribute{}, errnoFrom(err, "%s: truncate failed", full)
		}
	}
	if attrs.Mode != nil {
		if err := os.Chmod(full, *attrs.Mode); err != nil {
			return handler.FileAttribute{}, errnoFrom(err, "%s: chmod failed", full)
		}
	}
	if attrs.UID != nil || attrs.GID != nil {
		uid, gid := -1, -1
		if attrs.UID != nil {
			uid = int(*attrs.UID)
		}
		if attrs.GID != nil {
			gid = int(*attrs.GID)
		}
		if err := os.Chown(full, uid, gid); err != nil {
			return handler.FileAttribute{}, errnoFrom(err, "%s: chown failed", full)
		}
	}
	if attrs.Atime != nil || attrs.Mtime != nil {
		fi, err := os.Lstat(full)
		if err != nil {
			return handler.FileAttribute{}, errnoFrom(err, "%s: lstat failed", full)
		}
		atime, mtime := toAttr(fi).Atime, attrs.Mtime
		if attrs.Atime != nil {
			atime = *attrs.Atime
		}
		mt := fi.ModTime()
		if mtime != nil {
			mt = *mtime
		}
		if err := os.Chtimes(full, atime, mt); err != nil {
			return handler.FileAttribute{}, errnoFrom(err, "%s: chtimes failed", full)
		}
	}
	return m.statAttr(full)
}

func (m *MirrorFs) Access(req handler.RequestInfo, id string, mask handler.AccessMask) *handler.PosixError {
	var mode uint32
	if mask&handler.AccessRead != 0 {
		mode |= unix.R_OK
	}
	if mask&handler.AccessWrite != 0 {
		mode |= unix.W_OK
	}
	if mask&handler.AccessExecute != 0 {
		mode |= unix.X_OK
	}
	if err := unix.Access(m.realPath(id), mode); err != nil {
		return handler.FromErrno(err.(syscall.Errno), "%s: access failed", id)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////
// Directory entries
////////////////////////////////////////////////////////////////////////

func (m *MirrorFs) Mkdir(req handler.RequestInfo, parent string, name string, mode uint32, umask uint32) (handler.Metadata[struct{}], *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	child := childID(parent, name)
	full := m.realPath(child)
	if err := os.Mkdir(full, os.FileMode(mode&^umask)); err != nil {
		return handler.Metadata[struct{}]{}, errnoFrom(err, "%s: mkdir failed", full)
	}
	attr, perr := m.statAttr(full)
	if perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	return handler.Metadata[struct{}]{Attr: attr}, nil
}

func (m *MirrorFs) Mknod(req handler.RequestInfo, parent string, name string, mode uint32, umask uint32, rdev handler.DeviceType) (handler.Metadata[struct{}], *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	child := childID(parent, name)
	full := m.realPath(child)
	dev := int(unix.Mkdev(rdev.Major, rdev.Minor))
	if err := unix.Mknod(full, mode&^umask, dev); err != nil {
		return handler.Metadata[struct{}]{}, handler.FromErrno(err.(syscall.Errno), "%s: mknod failed", full)
	}
	attr, perr := m.statAttr(full)
	if perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	return handler.Metadata[struct{}]{Attr: attr}, nil
}

func (m *MirrorFs) Symlink(req handler.RequestInfo, parent string, linkName string, target string) (handler.Metadata[struct{}], *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	child := childID(parent, linkName)
	full := m.realPath(child)
	if err := os.Symlink(target, full); err != nil {
		return handler.Metadata[struct{}]{}, errnoFrom(err, "%s: symlink failed", full)
	}
	attr, perr := m.statAttr(full)
	if perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	return handler.Metadata[struct{}]{Attr: attr}, nil
}

func (m *MirrorFs) ReadLink(req handler.RequestInfo, id string) (string, *handler.PosixError) {
	target, err := os.Readlink(m.realPath(id))
	if err != nil {
		return "", errnoFrom(err, "%s: readlink failed", id)
	}
	return target, nil
}

func (m *MirrorFs) Link(req handler.RequestInfo, id string, newParent string, newName string) (handler.Metadata[struct{}], *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	child := childID(newParent, newName)
	full := m.realPath(child)
	if err := os.Link(m.realPath(id), full); err != nil {
		return handler.Metadata[struct{}]{}, errnoFrom(err, "%s: link failed", full)
	}
	attr, perr := m.statAttr(full)
	if perr != nil {
		return handler.Metadata[struct{}]{}, perr
	}
	return handler.Metadata[struct{}]{Attr: attr}, nil
}

func (m *MirrorFs) Unlink(req handler.RequestInfo, parent string, name string) *handler.PosixError {
	if perr := m.checkWritable(); perr != nil {
		return perr
	}
	full := m.realPath(childID(parent, name))
	if err := os.Remove(full); err != nil {
		return errnoFrom(err, "%s: unlink failed", full)
	}
	return nil
}

func (m *MirrorFs) Rmdir(req handler.RequestInfo, parent string, name string) *handler.PosixError {
	if perr := m.checkWritable(); perr != nil {
		return perr
	}
	full := m.realPath(childID(parent, name))
	if err := os.Remove(full); err != nil {
		return errnoFrom(err, "%s: rmdir failed", full)
	}
	return nil
}

func (m *MirrorFs) Rename(req handler.RequestInfo, parent string, name string, newParent string, newName string, flags handler.RenameFlags) *handler.PosixError {
	if perr := m.checkWritable(); perr != nil {
		return perr
	}
	oldFull := m.realPath(childID(parent, name))
	newFull := m.realPath(childID(newParent, newName))
	if flags != 0 {
		return handler.RenameAt2(oldFull, newFull, flags)
	}
	if err := os.Rename(oldFull, newFull); err != nil {
		return errnoFrom(err, "%s -> %s: rename failed", oldFull, newFull)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////
// Readdir
////////////////////////////////////////////////////////////////////////

func (m *MirrorFs) OpenDir(req handler.RequestInfo, id string, flags handler.OpenFlags) (handler.OwnedFileHandle, handler.OpenResponseFlags, *handler.PosixError) {
	f, err := os.Open(m.realPath(id))
	if err != nil {
		return handler.OwnedFileHandle{}, 0, errnoFrom(err, "%s: opendir failed", id)
	}
	return m.allocHandle(f), 0, nil
}

func (m *MirrorFs) ReleaseDir(req handler.RequestInfo, id string, fh handler.OwnedFileHandle, flags handler.OpenFlags) *handler.PosixError {
	f, ok := m.takeFile(fh.Raw())
	if !ok {
		return nil
	}
	if err := f.Close(); err != nil {
		return errnoFrom(err, "%s: closedir failed", id)
	}
	return nil
}

func (m *MirrorFs) FsyncDir(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle, datasync bool) *handler.PosixError {
	return nil
}

func (m *MirrorFs) ReadDir(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle) ([]handler.DirEntry[struct{}], *handler.PosixError) {
	names, err := m.file(fh).Readdirnames(0)
	if err != nil {
		return nil, errnoFrom(err, "%s: readdir failed", id)
	}
	entries := make([]handler.DirEntry[struct{}], 0, len(names))
	for _, name := range names {
		fi, err := os.Lstat(m.realPath(childID(id, name)))
		if err != nil {
			continue
		}
		entries = append(entries, handler.DirEntry[struct{}]{
			Name:            name,
			MinimalMetadata: handler.MinimalMetadata[struct{}]{Kind: toAttr(fi).Kind},
		})
	}
	return entries, nil
}

// ReadDirPlus stats every child concurrently before replying: a
// readdirplus on a large directory is dominated by per-entry lstat
// latency, and those lstats have no dependency on one another.
func (m *MirrorFs) ReadDirPlus(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle) ([]handler.DirEntryPlus[struct{}], *handler.PosixError) {
	names, err := m.file(fh).Readdirnames(0)
	if err != nil {
		return nil, errnoFrom(err, "%s: readdirplus failed", id)
	}

	type stated struct {
		attr handler.FileAttribute
		ok   bool
	}
	results := make([]stated, len(names))

	var g errgroup.Group
	g.SetLimit(cfg.DefaultReaddirConcurrency())
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			attr, perr := m.statAttr(m.realPath(childID(id, name)))
			if perr == nil {
				results[i] = stated{attr: attr, ok: true}
			}
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]handler.DirEntryPlus[struct{}], 0, len(names))
	for i, name := range names {
		if !results[i].ok {
			continue
		}
		entries = append(entries, handler.DirEntryPlus[struct{}]{
			Name:     name,
			Metadata: handler.Metadata[struct{}]{Attr: results[i].attr},
		})
	}
	return entries, nil
}

////////////////////////////////////////////////////////////////////////
// File handles
////////////////////////////////////////////////////////////////////////

func toOSFlags(flags handler.OpenFlags) int {
	return int(flags)
}

func (m *MirrorFs) Create(req handler.RequestInfo, parent string, name string, mode uint32, umask uint32, flags handler.OpenFlags) (handler.OwnedFileHandle, handler.Metadata[struct{}], handler.OpenResponseFlags, *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return handler.OwnedFileHandle{}, handler.Metadata[struct{}]{}, 0, perr
	}
	full := m.realPath(childID(parent, name))
	f, err := os.OpenFile(full, toOSFlags(flags)|os.O_CREATE, os.FileMode(mode&^umask))
	if err != nil {
		return handler.OwnedFileHandle{}, handler.Metadata[struct{}]{}, 0, errnoFrom(err, "%s: create failed", full)
	}
	attr, perr := m.statAttr(full)
	if perr != nil {
		f.Close()
		return handler.OwnedFileHandle{}, handler.Metadata[struct{}]{}, 0, perr
	}
	return m.allocHandle(f), handler.Metadata[struct{}]{Attr: attr}, 0, nil
}

func (m *MirrorFs) Open(req handler.RequestInfo, id string, flags handler.OpenFlags) (handler.OwnedFileHandle, handler.OpenResponseFlags, *handler.PosixError) {
	f, err := os.OpenFile(m.realPath(id), toOSFlags(flags), 0)
	if err != nil {
		return handler.OwnedFileHandle{}, 0, errnoFrom(err, "%s: open failed", id)
	}
	return m.allocHandle(f), 0, nil
}

func (m *MirrorFs) Read(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle, seek handler.SeekFrom, size uint32, flags handler.OpenFlags, lockOwner *uint64) ([]byte, *handler.PosixError) {
	buf := make([]byte, size)
	n, err := m.file(fh).ReadAt(buf, seek.Offset)
	if err != nil && err != io.EOF {
		return nil, errnoFrom(err, "%s: read failed", id)
	}
	return buf[:n], nil
}

func (m *MirrorFs) Write(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle, seek handler.SeekFrom, data []byte, writeFlags handler.WriteFlags, flags handler.OpenFlags, lockOwner *uint64) (uint32, *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return 0, perr
	}
	n, err := m.file(fh).WriteAt(data, seek.Offset)
	if err != nil {
		return 0, errnoFrom(err, "%s: write failed", id)
	}
	return uint32(n), nil
}

func (m *MirrorFs) Lseek(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle, seek handler.SeekFrom) (int64, *handler.PosixError) {
	whence := int(seek.Whence)
	off, err := unix.Seek(int(m.file(fh).Fd()), seek.Offset, whence)
	if err != nil {
		return 0, handler.FromErrno(err.(syscall.Errno), "%s: lseek failed", id)
	}
	return off, nil
}

func (m *MirrorFs) Flush(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle, lockOwner uint64) *handler.PosixError {
	return nil
}

func (m *MirrorFs) Fsync(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle, datasync bool) *handler.PosixError {
	f := m.file(fh)
	if datasync {
		return handler.Fdatasync(int(f.Fd()))
	}
	if err := f.Sync(); err != nil {
		return errnoFrom(err, "%s: fsync failed", id)
	}
	return nil
}

func (m *MirrorFs) Release(req handler.RequestInfo, id string, fh handler.OwnedFileHandle, flags handler.OpenFlags, lockOwner *uint64, flush bool) *handler.PosixError {
	f, ok := m.takeFile(fh.Raw())
	if !ok {
		return nil
	}
	if err := f.Close(); err != nil {
		return errnoFrom(err, "%s: close failed", id)
	}
	return nil
}

func (m *MirrorFs) Fallocate(req handler.RequestInfo, id string, fh handler.BorrowedFileHandle, offset int64, length int64, mode handler.FallocateFlags) *handler.PosixError {
	if perr := m.checkWritable(); perr != nil {
		return perr
	}
	return handler.FallocateAt(int(m.file(fh).Fd()), mode, offset, length)
}

func (m *MirrorFs) CopyFileRange(req handler.RequestInfo, fileIn string, handleIn handler.BorrowedFileHandle, offsetIn int64, fileOut string, handleOut handler.BorrowedFileHandle, offsetOut int64, length uint64, flags uint32) (uint32, *handler.PosixError) {
	if perr := m.checkWritable(); perr != nil {
		return 0, perr
	}
	return handler.CopyFileRangeAt(int(m.file(handleIn).Fd()), offsetIn, int(m.file(handleOut).Fd()), offsetOut, length)
}

////////////////////////////////////////////////////////////////////////
// Xattrs, statfs
////////////////////////////////////////////////////////////////////////

func (m *MirrorFs) GetXAttr(req handler.RequestInfo, id string, name string, size uint32) ([]byte, *handler.PosixError) {
	return handler.GetXAttrAt(m.realPath(id), name, size)
}

func (m *MirrorFs) ListXAttr(req handler.RequestInfo, id string, size uint32) ([]byte, *handler.PosixError) {
	return handler.ListXAttrAt(m.realPath(id), size)
}

func (m *MirrorFs) SetXAttr(req handler.RequestInfo, id string, name string, value []byte, flags handler.SetXAttrFlags, position uint32) *handler.PosixError {
	if perr := m.checkWritable(); perr != nil {
		return perr
	}
	return handler.SetXAttrAt(m.realPath(id), name, value, flags)
}

func (m *MirrorFs) RemoveXAttr(req handler.RequestInfo, id string, name string) *handler.PosixError {
	if perr := m.checkWritable(); perr != nil {
		return perr
	}
	return handler.RemoveXAttrAt(m.realPath(id), name)
}

func (m *MirrorFs) StatFs(req handler.RequestInfo, id string) (handler.StatFs, *handler.PosixError) {
	return handler.StatFsAt(m.SourceDir)
}
