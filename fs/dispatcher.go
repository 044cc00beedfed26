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

// Package fs wires a resolver.Resolver and a handler.Handler together into
// a jacobsa/fuse-compatible file system: it is the operation dispatcher that
// turns kernel ops into handler calls and handler results back into kernel
// replies.
package fs

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/khanhtranngoccva/easy-fuser/clock"
	"github.com/khanhtranngoccva/easy-fuser/fs/handler"
	"github.com/khanhtranngoccva/easy-fuser/fs/inode"
	"github.com/khanhtranngoccva/easy-fuser/fs/resolver"
	"github.com/khanhtranngoccva/easy-fuser/internal/logger"
)

// Dispatcher implements fuse's FileSystem contract over a Resolver[T,
// IDType] and a Handler[T, IDType], following the same op -> find-inode ->
// call-domain-method -> fill-reply shape as the teacher's own fileSystem in
// fs/fs.go, generalized from GCS-object semantics to a generic entry flow:
// resolve -> handler -> resolver.Lookup(incr=true) -> PostLookup with a
// Forget rollback on failure -> TTL/generation attach.
type Dispatcher[T any, IDType any] struct {
	resolver resolver.Resolver[T, IDType]
	handler  handler.Handler[T, IDType]

	// id tags this mount's unknown-handle error messages, telling mounts
	// apart when several run in one process.
	id uuid.UUID

	mu          sync.Mutex
	nextHandle  uint64
	fileHandles map[fuseops.HandleID]handler.OwnedFileHandle
	dirHandles  map[fuseops.HandleID]handler.OwnedFileHandle

	nextRequestID atomic.Uint64

	dirCursors *cursorStore[handler.DirEntryPlus[IDType]]

	clock clock.Clock
}

// NewDispatcher builds a Dispatcher over the given resolver/handler pair,
// computing entry/attribute expirations against the real wall clock.
func NewDispatcher[T any, IDType any](r resolver.Resolver[T, IDType], h handler.Handler[T, IDType]) *Dispatcher[T, IDType] {
	return NewDispatcherWithClock(r, h, clock.RealClock{})
}

// NewDispatcherWithClock is NewDispatcher with an injectable clock, so
// tests can assert on TTL expiration with a SimulatedClock or FakeClock
// instead of racing wall-clock time.
func NewDispatcherWithClock[T any, IDType any](r resolver.Resolver[T, IDType], h handler.Handler[T, IDType], c clock.Clock) *Dispatcher[T, IDType] {
	return &Dispatcher[T, IDType]{
		resolver:    r,
		handler:     h,
		id:          uuid.New(),
		fileHandles: make(map[fuseops.HandleID]handler.OwnedFileHandle),
		dirHandles:  make(map[fuseops.HandleID]handler.OwnedFileHandle),
		dirCursors:  newCursorStore[handler.DirEntryPlus[IDType]](),
		clock:       c,
	}
}

// ID identifies this dispatcher instance, for namespacing diagnostics
// when multiple mounts run in one process.
func (d *Dispatcher[T, IDType]) ID() uuid.UUID {
	return d.id
}

// requestInfo builds the handler-facing request metadata for one op. The
// dispatcher mints its own monotonic request id rather than threading one
// out of the kernel header, since core dispatch only uses RequestID for
// handler-side logging correlation, never for kernel-visible behavior.
func (d *Dispatcher[T, IDType]) requestInfo() handler.RequestInfo {
	return handler.RequestInfo{RequestID: d.nextRequestID.Add(1)}
}

func (d *Dispatcher[T, IDType]) allocHandle() fuseops.HandleID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextHandle++
	return fuseops.HandleID(d.nextHandle)
}

// resolveEntry fills op.Entry-shaped fields (used by LookUpInode, MkDir,
// CreateFile, CreateSymlink, Mknod, Link): it registers the child with the
// resolver (incrementing its lookup count), runs the attribute the
// originating handler call already returned through PostLookup, and rolls
// the resolver registration back via Forget if PostLookup rejects it.
// meta.Attr is used as-is rather than refetched with GetAttr, since the
// handler already produced it as part of Lookup/Mkdir/Mknod/Create/
// Symlink/Link.
func (d *Dispatcher[T, IDType]) resolveEntry(parent inode.ID, name string, id IDType, attr handler.FileAttribute) (ino inode.ID, _ handler.FileAttribute, perr *handler.PosixError) {
	ino = d.resolver.Lookup(parent, name, id, true)
	identity := d.resolver.ResolveID(ino)
	if perr = d.handler.PostLookup(d.requestInfo(), identity, &attr); perr != nil {
		d.resolver.Forget(ino, 1)
		return 0, handler.FileAttribute{}, perr
	}
	return ino, attr, nil
}

func (d *Dispatcher[T, IDType]) fillChildEntry(entry *fuseops.ChildInodeEntry, ino inode.ID, attr handler.FileAttribute) {
	ttl := entryTTL(attr, d.handler.DefaultTTL())
	entry.Child = fuseops.InodeID(ino)
	entry.Generation = fuseops.GenerationNumber(attr.Generation)
	entry.Attributes = toInodeAttributes(attr)
	now := d.clock.Now()
	entry.AttributesExpiration = now.Add(ttl)
	entry.EntryExpiration = now.Add(ttl)
}

// toErr converts a *handler.PosixError into the error fuse expects (a
// syscall.Errno, which fuse.Server recognizes and maps to the right wire
// errno), matching the teacher's own convention of returning a bare error
// from every op method. It also logs the failure before replying: the
// common lookup/FileNotFound case at info, everything else at warn.
func toErr(op string, perr *handler.PosixError) error {
	if perr == nil {
		return nil
	}
	if op == "LookUpInode" && perr.IsNotFound() {
		logger.Infof("%s: %v", op, perr)
	} else {
		logger.Warnf("%s: %v", op, perr)
	}
	return perr.RawErrno()
}

////////////////////////////////////////////////////////////////////////
// Inodes
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher[T, IDType]) Init(op *fuseops.InitOp) error {
	return toErr("Init", d.handler.Init(d.requestInfo(), &handler.KernelConfig{
		MaxReadahead:        op.MaxReadahead,
		MaxWrite:            128 * 1024,
		MaxBackground:       uint16(op.MaxBackground),
		CongestionThreshold: uint16(op.CongestionThreshold),
	}))
}

func (d *Dispatcher[T, IDType]) LookUpInode(op *fuseops.LookUpInodeOp) error {
	parent := inode.ID(op.Parent)
	meta, perr := d.handler.Lookup(d.requestInfo(), d.resolver.ResolveID(parent), op.Name)
	if perr != nil {
		return toErr("LookUpInode", perr)
	}
	ino, attr, perr := d.resolveEntry(parent, op.Name, meta.ID, meta.Attr)
	if perr != nil {
		return toErr("LookUpInode", perr)
	}
	d.fillChildEntry(&op.Entry, ino, attr)
	return nil
}

func (d *Dispatcher[T, IDType]) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	attr, perr := d.handler.GetAttr(d.requestInfo(), identity, nil)
	if perr != nil {
		return toErr("GetInodeAttributes", perr)
	}
	op.Attributes = toInodeAttributes(attr)
	op.AttributesExpiration = d.clock.Now().Add(entryTTL(attr, d.handler.DefaultTTL()))
	return nil
}

func (d *Dispatcher[T, IDType]) SetInodeAttributes(op *fuseops.SetInodeAttributesOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	req := handler.SetAttrRequest{Size: op.Size, Mode: op.Mode, Atime: op.Atime, Mtime: op.Mtime}
	attr, perr := d.handler.SetAttr(d.requestInfo(), identity, req)
	if perr != nil {
		return toErr("SetInodeAttributes", perr)
	}
	op.Attributes = toInodeAttributes(attr)
	op.AttributesExpiration = d.clock.Now().Add(entryTTL(attr, d.handler.DefaultTTL()))
	return nil
}

func (d *Dispatcher[T, IDType]) ForgetInode(op *fuseops.ForgetInodeOp) error {
	ino := inode.ID(op.Inode)
	d.handler.Forget(d.requestInfo(), d.resolver.ResolveID(ino), op.N)
	d.resolver.Forget(ino, op.N)
	return nil
}

////////////////////////////////////////////////////////////////////////
// Inode creation
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher[T, IDType]) MkDir(op *fuseops.MkDirOp) error {
	parent := inode.ID(op.Parent)
	meta, perr := d.handler.Mkdir(d.requestInfo(), d.resolver.ResolveID(parent), op.Name, uint32(op.Mode), 0)
	if perr != nil {
		return toErr("MkDir", perr)
	}
	ino, attr, perr := d.resolveEntry(parent, op.Name, meta.ID, meta.Attr)
	if perr != nil {
		return toErr("MkDir", perr)
	}
	d.fillChildEntry(&op.Entry, ino, attr)
	return nil
}

func (d *Dispatcher[T, IDType]) MkNode(op *fuseops.MkNodeOp) error {
	parent := inode.ID(op.Parent)
	meta, perr := d.handler.Mknod(d.requestInfo(), d.resolver.ResolveID(parent), op.Name, uint32(op.Mode), 0, handler.DeviceType{})
	if perr != nil {
		return toErr("MkNode", perr)
	}
	ino, attr, perr := d.resolveEntry(parent, op.Name, meta.ID, meta.Attr)
	if perr != nil {
		return toErr("MkNode", perr)
	}
	d.fillChildEntry(&op.Entry, ino, attr)
	return nil
}

func (d *Dispatcher[T, IDType]) CreateFile(op *fuseops.CreateFileOp) error {
	parent := inode.ID(op.Parent)
	fh, meta, _, perr := d.handler.Create(d.requestInfo(), d.resolver.ResolveID(parent), op.Name, uint32(op.Mode), 0, handler.OpenFlags(op.Flags))
	if perr != nil {
		return toErr("CreateFile", perr)
	}
	ino, attr, perr := d.resolveEntry(parent, op.Name, meta.ID, meta.Attr)
	if perr != nil {
		return toErr("CreateFile", perr)
	}
	d.fillChildEntry(&op.Entry, ino, attr)
	handleID := d.allocHandle()
	d.mu.Lock()
	d.fileHandles[handleID] = fh
	d.mu.Unlock()
	op.Handle = handleID
	return nil
}

func (d *Dispatcher[T, IDType]) CreateSymlink(op *fuseops.CreateSymlinkOp) error {
	parent := inode.ID(op.Parent)
	meta, perr := d.handler.Symlink(d.requestInfo(), d.resolver.ResolveID(parent), op.Name, op.Target)
	if perr != nil {
		return toErr("CreateSymlink", perr)
	}
	ino, attr, perr := d.resolveEntry(parent, op.Name, meta.ID, meta.Attr)
	if perr != nil {
		return toErr("CreateSymlink", perr)
	}
	d.fillChildEntry(&op.Entry, ino, attr)
	return nil
}

func (d *Dispatcher[T, IDType]) CreateLink(op *fuseops.CreateLinkOp) error {
	parent := inode.ID(op.Parent)
	target := inode.ID(op.Target)
	meta, perr := d.handler.Link(d.requestInfo(), d.resolver.ResolveID(target), d.resolver.ResolveID(parent), op.Name)
	if perr != nil {
		return toErr("CreateLink", perr)
	}
	ino, attr, perr := d.resolveEntry(parent, op.Name, meta.ID, meta.Attr)
	if perr != nil {
		return toErr("CreateLink", perr)
	}
	d.fillChildEntry(&op.Entry, ino, attr)
	return nil
}

////////////////////////////////////////////////////////////////////////
// Unlinking / renaming
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher[T, IDType]) Rename(op *fuseops.RenameOp) error {
	oldParent := inode.ID(op.OldParent)
	newParent := inode.ID(op.NewParent)
	perr := d.handler.Rename(d.requestInfo(), d.resolver.ResolveID(oldParent), op.OldName, d.resolver.ResolveID(newParent), op.NewName, 0)
	if perr != nil {
		return toErr("Rename", perr)
	}
	d.resolver.Rename(oldParent, op.OldName, newParent, op.NewName)
	return nil
}

// RmDir and Unlink leave the (parent, name) mapping entry alone: a
// displaced or removed inode's mapping state is reclaimed lazily, the same
// way a renamed-over inode is, when the kernel eventually sends
// ForgetInode for it rather than synchronously here.
func (d *Dispatcher[T, IDType]) RmDir(op *fuseops.RmDirOp) error {
	parent := inode.ID(op.Parent)
	return toErr("RmDir", d.handler.Rmdir(d.requestInfo(), d.resolver.ResolveID(parent), op.Name))
}

func (d *Dispatcher[T, IDType]) Unlink(op *fuseops.UnlinkOp) error {
	parent := inode.ID(op.Parent)
	return toErr("Unlink", d.handler.Unlink(d.requestInfo(), d.resolver.ResolveID(parent), op.Name))
}

////////////////////////////////////////////////////////////////////////
// Directory handles
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher[T, IDType]) OpenDir(op *fuseops.OpenDirOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	fh, _, perr := d.handler.OpenDir(d.requestInfo(), identity, handler.OpenFlags(op.Flags))
	if perr != nil {
		return toErr("OpenDir", perr)
	}
	handleID := d.allocHandle()
	d.mu.Lock()
	d.dirHandles[handleID] = fh
	d.mu.Unlock()
	op.Handle = handleID
	return nil
}

// ReadDir implements cursor-store-backed pagination: a fresh listing is
// fetched from the handler only at offset 0, its names registered with the
// resolver in one AddChildren call rather than per-entry Lookups, and the
// result queued. Entries are packed into op.Data via fuseutil.WriteDirent
// until one doesn't fit; offset only advances past an entry once it is
// actually written, so the remainder is staged back under the offset of
// the last entry this call wrote — exactly the value the kernel will send
// as op.Offset on its next call. A miss at offset > 0 means the kernel is
// past whatever this dispatcher ever produced (handle dropped, cursor
// evicted): that replies OK with zero entries rather than restarting the
// listing from the beginning.
func (d *Dispatcher[T, IDType]) ReadDir(op *fuseops.ReadDirOp) error {
	// DirOffset is unsigned on the wire; a cookie with its top bit set is a
	// negative offset reinterpreted, not a legitimately huge one.
	if int64(op.Offset) < 0 {
		return toErr("ReadDir", handler.ErrInvalid("negative readdir offset %d", int64(op.Offset)))
	}

	ino := inode.ID(op.Inode)
	identity := d.resolver.ResolveID(ino)

	queue, ok := d.dirCursors.take(ino, uint64(op.Offset))
	if !ok {
		if op.Offset > 0 {
			op.BytesRead = 0
			return nil
		}

		d.mu.Lock()
		fh := d.dirHandles[op.Handle]
		d.mu.Unlock()
		entries, perr := d.handler.ReadDirPlus(d.requestInfo(), identity, fh.Borrow())
		if perr != nil {
			return toErr("ReadDir", perr)
		}

		children := make([]resolver.NamedChild[IDType], len(entries))
		for i, e := range entries {
			children[i] = resolver.NamedChild[IDType]{Name: e.Name, ID: e.ID}
		}
		d.resolver.AddChildren(ino, children, false)
		queue = entries
	}

	written := 0
	offset := uint64(op.Offset)
	for len(queue) > 0 {
		e := queue[0]
		childIno := fuseops.InodeID(d.resolver.Lookup(ino, e.Name, e.ID, false))
		n := writeDirent(op.Data[written:], offset+1, childIno, e.Name, e.Attr.Kind)
		if n == 0 {
			break
		}
		offset++
		written += n
		queue = queue[1:]
	}
	op.BytesRead = written

	if len(queue) > 0 {
		d.dirCursors.stage(ino, offset, queue)
	}
	return nil
}

func (d *Dispatcher[T, IDType]) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) error {
	d.mu.Lock()
	fh, ok := d.dirHandles[op.Handle]
	delete(d.dirHandles, op.Handle)
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("easy-fuser[%s]: unknown directory handle %v", d.id, op.Handle)
	}
	d.dirCursors.releaseInode(inode.ID(op.Inode))
	return toErr("ReleaseDirHandle", d.handler.ReleaseDir(d.requestInfo(), resolverZero[T](), fh, 0))
}

// resolverZero returns the zero value of T; ReleaseDir's identity argument
// is informational only once the handle itself identifies the directory,
// mirroring the teacher's own ReleaseDirHandle (fs/fs.go), which keys
// purely off the handle map and never re-derives the owning inode.
func resolverZero[T any]() (zero T) { return }

////////////////////////////////////////////////////////////////////////
// File handles
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher[T, IDType]) OpenFile(op *fuseops.OpenFileOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	fh, _, perr := d.handler.Open(d.requestInfo(), identity, handler.OpenFlags(op.Flags))
	if perr != nil {
		return toErr("OpenFile", perr)
	}
	handleID := d.allocHandle()
	d.mu.Lock()
	d.fileHandles[handleID] = fh
	d.mu.Unlock()
	op.Handle = handleID
	return nil
}

func (d *Dispatcher[T, IDType]) ReadFile(op *fuseops.ReadFileOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	d.mu.Lock()
	fh := d.fileHandles[op.Handle]
	d.mu.Unlock()
	data, perr := d.handler.Read(d.requestInfo(), identity, fh.Borrow(), handler.SeekFrom{Offset: op.Offset}, uint32(op.Size), 0, nil)
	if perr != nil {
		return toErr("ReadFile", perr)
	}
	op.BytesRead = copy(op.Dst, data)
	return nil
}

func (d *Dispatcher[T, IDType]) WriteFile(op *fuseops.WriteFileOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	d.mu.Lock()
	fh := d.fileHandles[op.Handle]
	d.mu.Unlock()
	_, perr := d.handler.Write(d.requestInfo(), identity, fh.Borrow(), handler.SeekFrom{Offset: op.Offset}, op.Data, 0, 0, nil)
	return toErr("WriteFile", perr)
}

func (d *Dispatcher[T, IDType]) SyncFile(op *fuseops.SyncFileOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	d.mu.Lock()
	fh := d.fileHandles[op.Handle]
	d.mu.Unlock()
	return toErr("SyncFile", d.handler.Fsync(d.requestInfo(), identity, fh.Borrow(), false))
}

func (d *Dispatcher[T, IDType]) FlushFile(op *fuseops.FlushFileOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	d.mu.Lock()
	fh := d.fileHandles[op.Handle]
	d.mu.Unlock()
	return toErr("FlushFile", d.handler.Flush(d.requestInfo(), identity, fh.Borrow(), 0))
}

func (d *Dispatcher[T, IDType]) ReleaseFileHandle(op *fuseops.ReleaseFileHandleOp) error {
	d.mu.Lock()
	fh, ok := d.fileHandles[op.Handle]
	delete(d.fileHandles, op.Handle)
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("easy-fuser[%s]: unknown file handle %v", d.id, op.Handle)
	}
	return toErr("ReleaseFileHandle", d.handler.Release(d.requestInfo(), resolverZero[T](), fh, 0, nil, false))
}

////////////////////////////////////////////////////////////////////////
// Symlinks, xattrs, statfs
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher[T, IDType]) ReadSymlink(op *fuseops.ReadSymlinkOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	target, perr := d.handler.ReadLink(d.requestInfo(), identity)
	if perr != nil {
		return toErr("ReadSymlink", perr)
	}
	op.Target = target
	return nil
}

func (d *Dispatcher[T, IDType]) GetXattr(op *fuseops.GetXattrOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	value, perr := d.handler.GetXAttr(d.requestInfo(), identity, op.Name, uint32(len(op.Dst)))
	if perr != nil {
		return toErr("GetXattr", perr)
	}
	op.BytesRead = copy(op.Dst, value)
	return nil
}

func (d *Dispatcher[T, IDType]) ListXattr(op *fuseops.ListXattrOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	names, perr := d.handler.ListXAttr(d.requestInfo(), identity, uint32(len(op.Dst)))
	if perr != nil {
		return toErr("ListXattr", perr)
	}
	op.BytesRead = copy(op.Dst, names)
	return nil
}

func (d *Dispatcher[T, IDType]) SetXattr(op *fuseops.SetXattrOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	return toErr("SetXattr", d.handler.SetXAttr(d.requestInfo(), identity, op.Name, op.Value, handler.SetXAttrFlags(op.Flags), 0))
}

func (d *Dispatcher[T, IDType]) RemoveXattr(op *fuseops.RemoveXattrOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	return toErr("RemoveXattr", d.handler.RemoveXAttr(d.requestInfo(), identity, op.Name))
}

func (d *Dispatcher[T, IDType]) Fallocate(op *fuseops.FallocateOp) error {
	identity := d.resolver.ResolveID(inode.ID(op.Inode))
	d.mu.Lock()
	fh := d.fileHandles[op.Handle]
	d.mu.Unlock()
	return toErr("Fallocate", d.handler.Fallocate(d.requestInfo(), identity, fh.Borrow(), int64(op.Offset), int64(op.Length), handler.FallocateFlags(op.Mode)))
}

func (d *Dispatcher[T, IDType]) StatFS(op *fuseops.StatFSOp) error {
	stat, perr := d.handler.StatFs(d.requestInfo(), resolverZero[T]())
	if perr != nil {
		return toErr("StatFS", perr)
	}
	op.Blocks = stat.TotalBlocks
	op.BlocksFree = stat.FreeBlocks
	op.BlocksAvailable = stat.AvailableBlocks
	op.Inodes = stat.TotalFiles
	op.InodesFree = stat.FreeFiles
	op.IoSize = stat.BlockSize
	return nil
}

func (d *Dispatcher[T, IDType]) Destroy() {
	d.handler.Destroy()
}
