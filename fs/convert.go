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

package fs

import (
	"os"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/khanhtranngoccva/easy-fuser/fs/handler"
)

// toInodeAttributes converts the handler's wire-agnostic FileAttribute
// into the on-wire fuseops.InodeAttributes the kernel expects.
func toInodeAttributes(attr handler.FileAttribute) fuseops.InodeAttributes {
	mode := attr.Perm
	switch attr.Kind {
	case handler.FileKindDirectory:
		mode |= os.ModeDir
	case handler.FileKindSymlink:
		mode |= os.ModeSymlink
	case handler.FileKindCharDevice:
		mode |= os.ModeCharDevice
	case handler.FileKindBlockDevice:
		mode |= os.ModeDevice
	case handler.FileKindNamedPipe:
		mode |= os.ModeNamedPipe
	case handler.FileKindSocket:
		mode |= os.ModeSocket
	}

	return fuseops.InodeAttributes{
		Size:   attr.Size,
		Nlink:  attr.Nlink,
		Mode:   mode,
		Atime:  attr.Atime,
		Mtime:  attr.Mtime,
		Ctime:  attr.Ctime,
		Crtime: attr.Crtime,
		Uid:    attr.UID,
		Gid:    attr.GID,
	}
}

// entryTTL picks attr's own TTL override, falling back to def.
func entryTTL(attr handler.FileAttribute, def time.Duration) time.Duration {
	if attr.TTL > 0 {
		return attr.TTL
	}
	return def
}

// direntType maps a handler.FileKind to the on-wire dirent type tag
// fuseutil.WriteDirent expects in its fuseops.Dirent.Type field.
func direntType(kind handler.FileKind) fuseutil.DirentType {
	switch kind {
	case handler.FileKindDirectory:
		return fuseutil.DT_Directory
	case handler.FileKindSymlink:
		return fuseutil.DT_Link
	case handler.FileKindBlockDevice:
		return fuseutil.DT_Block
	case handler.FileKindCharDevice:
		return fuseutil.DT_Char
	case handler.FileKindNamedPipe:
		return fuseutil.DT_FIFO
	case handler.FileKindSocket:
		return fuseutil.DT_Socket
	default:
		return fuseutil.DT_File
	}
}

// writeDirent renders one queued entry into buf at the given reply
// offset, in the fuse_dirent wire format. It returns 0, matching
// fuseutil.WriteDirent, when the entry doesn't fit and must be pushed
// back onto the cursor for the next call.
func writeDirent(buf []byte, offset uint64, ino fuseops.InodeID, name string, kind handler.FileKind) int {
	return fuseutil.WriteDirent(buf, fuseops.Dirent{
		Offset: fuseops.DirOffset(offset),
		Inode:  ino,
		Name:   name,
		Type:   direntType(kind),
	})
}
