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

package mirrorfs_test

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/khanhtranngoccva/easy-fuser/fs/handler"
	"github.com/khanhtranngoccva/easy-fuser/fs/mirrorfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*mirrorfs.MirrorFs, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	return mirrorfs.New(root, false), root
}

func TestMirrorFs_LookupAndGetAttr(t *testing.T) {
	fs, _ := newFixture(t)

	meta, perr := fs.Lookup(handler.RequestInfo{}, "", "hello.txt")
	require.Nil(t, perr)
	assert.Equal(t, handler.FileKindRegular, meta.Attr.Kind)
	assert.Equal(t, uint64(2), meta.Attr.Size)

	attr, perr := fs.GetAttr(handler.RequestInfo{}, "hello.txt", nil)
	require.Nil(t, perr)
	assert.Equal(t, uint64(2), attr.Size)

	_, perr = fs.Lookup(handler.RequestInfo{}, "", "missing.txt")
	require.NotNil(t, perr)
	assert.True(t, perr.IsNotFound())
}

func TestMirrorFs_MkdirAndReadDirPlus(t *testing.T) {
	fs, root := newFixture(t)

	_, perr := fs.Mkdir(handler.RequestInfo{}, "sub", "nested", 0o755, 0)
	require.Nil(t, perr)
	_, err := os.Stat(filepath.Join(root, "sub", "nested"))
	require.NoError(t, err)

	fh, _, perr := fs.OpenDir(handler.RequestInfo{}, "sub", 0)
	require.Nil(t, perr)
	entries, perr := fs.ReadDirPlus(handler.RequestInfo{}, "sub", fh.Borrow())
	require.Nil(t, perr)
	require.Len(t, entries, 1)
	assert.Equal(t, "nested", entries[0].Name)
	assert.Equal(t, handler.FileKindDirectory, entries[0].Attr.Kind)

	perr = fs.ReleaseDir(handler.RequestInfo{}, "sub", fh, 0)
	require.Nil(t, perr)
}

func TestMirrorFs_CreateWriteReadRelease(t *testing.T) {
	fs, _ := newFixture(t)

	fh, meta, _, perr := fs.Create(handler.RequestInfo{}, "", "new.txt", 0o644, 0, handler.OpenFlags(os.O_RDWR))
	require.Nil(t, perr)
	assert.Equal(t, handler.FileKindRegular, meta.Attr.Kind)

	n, perr := fs.Write(handler.RequestInfo{}, "new.txt", fh.Borrow(), handler.SeekFrom{Offset: 0}, []byte("payload"), 0, 0, nil)
	require.Nil(t, perr)
	assert.Equal(t, uint32(len("payload")), n)

	data, perr := fs.Read(handler.RequestInfo{}, "new.txt", fh.Borrow(), handler.SeekFrom{Offset: 0}, 64, 0, nil)
	require.Nil(t, perr)
	assert.Equal(t, "payload", string(data))

	perr = fs.Release(handler.RequestInfo{}, "new.txt", fh, 0, nil, false)
	require.Nil(t, perr)
}

func TestMirrorFs_RenameAndUnlink(t *testing.T) {
	fs, root := newFixture(t)

	perr := fs.Rename(handler.RequestInfo{}, "", "hello.txt", "", "renamed.txt", 0)
	require.Nil(t, perr)
	_, err := os.Stat(filepath.Join(root, "renamed.txt"))
	require.NoError(t, err)

	perr = fs.Unlink(handler.RequestInfo{}, "", "renamed.txt")
	require.Nil(t, perr)
	_, err = os.Stat(filepath.Join(root, "renamed.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestMirrorFs_ReadOnlyRejectsMutation(t *testing.T) {
	root := t.TempDir()
	fs := mirrorfs.New(root, true)

	_, perr := fs.Mkdir(handler.RequestInfo{}, "", "dir", 0o755, 0)
	require.NotNil(t, perr)
	assert.Equal(t, syscall.EROFS, perr.RawErrno())
}

func TestMirrorFs_SymlinkAndReadLink(t *testing.T) {
	fs, _ := newFixture(t)

	_, perr := fs.Symlink(handler.RequestInfo{}, "", "link", "hello.txt")
	require.Nil(t, perr)

	target, perr := fs.ReadLink(handler.RequestInfo{}, "link")
	require.Nil(t, perr)
	assert.Equal(t, "hello.txt", target)
}
