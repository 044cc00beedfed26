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

package resolver_test

import (
	"testing"

	"github.com/khanhtranngoccva/easy-fuser/fs/inode"
	"github.com/khanhtranngoccva/easy-fuser/fs/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInodeResolver_IdentityPassthrough(t *testing.T) {
	r := resolver.NewInodeResolver()
	assert.Equal(t, inode.ID(42), r.ResolveID(42))
	assert.Equal(t, inode.ID(7), r.Lookup(1, "x", 7, true))

	children := r.AddChildren(1, []resolver.NamedChild[inode.ID]{{Name: "a", ID: 10}}, true)
	require.Len(t, children, 1)
	assert.Equal(t, inode.ID(10), children[0].Inode)

	r.Forget(7, 1)
	r.Rename(1, "a", 1, "b")
}

func TestComponentsResolver_LookupAndResolve(t *testing.T) {
	r := resolver.NewComponentsResolver()

	childIno := r.Lookup(inode.Root, "child", struct{}{}, true)
	assert.Equal(t, []string{"child"}, r.ResolveID(childIno))

	added := r.AddChildren(childIno, []resolver.NamedChild[struct{}]{
		{Name: "grandchild1"},
		{Name: "grandchild2"},
	}, true)
	require.Len(t, added, 2)

	// A second lookup raises the refcount to 2, so Forget(childIno, 1)
	// leaves the inode in place for the rename below.
	r.Lookup(inode.Root, "child", struct{}{}, true)
	r.Forget(childIno, 1)

	r.Rename(inode.Root, "child", inode.Root, "renamed_child")
	assert.Equal(t, []string{"renamed_child"}, r.ResolveID(childIno))
}

func TestPathResolver_NestedStructureAndRename(t *testing.T) {
	r := resolver.NewPathResolver()
	assert.Equal(t, "", r.ResolveID(inode.Root))

	dir1 := r.Lookup(inode.Root, "dir1", struct{}{}, true)
	dir2 := r.Lookup(dir1, "dir2", struct{}{}, true)
	file := r.Lookup(dir2, "file.txt", struct{}{}, true)

	assert.Equal(t, "dir1/dir2/file.txt", r.ResolveID(file))

	added := r.AddChildren(dir2, []resolver.NamedChild[struct{}]{
		{Name: "child1.txt"}, {Name: "child2.txt"},
	}, true)
	for _, c := range added {
		assert.Equal(t, "dir1/dir2/"+c.Name, r.ResolveID(c.Inode))
	}

	// A second lookup raises the refcount to 2, so Forget(file, 1) leaves
	// the inode in place for the renames below.
	r.Lookup(dir2, "file.txt", struct{}{}, true)
	r.Forget(file, 1)

	r.Rename(dir2, "file.txt", dir2, "renamed_file.txt")
	assert.Equal(t, "dir1/dir2/renamed_file.txt", r.ResolveID(file))

	dir3 := r.Lookup(inode.Root, "dir3", struct{}{}, true)
	r.Rename(dir2, "renamed_file.txt", dir3, "moved_file.txt")
	assert.Equal(t, "dir3/moved_file.txt", r.ResolveID(file))

	nonExistent := r.Lookup(inode.Root, "non_existent", struct{}{}, false)
	assert.NotEqual(t, inode.ID(0), nonExistent)
	assert.Equal(t, "non_existent", r.ResolveID(nonExistent))
}

func TestPathResolver_BackAndForthRename(t *testing.T) {
	r := resolver.NewPathResolver()

	dir1 := r.Lookup(inode.Root, "dir1", struct{}{}, true)
	dir2 := r.Lookup(dir1, "dir2", struct{}{}, true)
	file := r.Lookup(inode.Root, "file.txt", struct{}{}, true)

	r.Rename(inode.Root, "file.txt", dir2, "file.txt")
	assert.Equal(t, "dir1/dir2/file.txt", r.ResolveID(file))

	r.Rename(dir2, "file.txt", inode.Root, "file.txt")
	assert.Equal(t, "file.txt", r.ResolveID(file))
}

func TestComponentsResolver_ForgetRemovesAtZero(t *testing.T) {
	r := resolver.NewComponentsResolver()
	ino := r.Lookup(inode.Root, "a", struct{}{}, true)

	r.Forget(ino, 1)
	// Inode is gone now; looking the name up again mints a fresh inode.
	fresh := r.Lookup(inode.Root, "a", struct{}{}, false)
	assert.NotEqual(t, ino, fresh)
}

func TestHybridResolver_CarriesInodeAndPath(t *testing.T) {
	r := resolver.NewHybridResolver()
	ino := r.Lookup(inode.Root, "dir1", struct{}{}, true)

	id := r.ResolveID(ino)
	assert.Equal(t, ino, id.Inode)
	assert.Equal(t, "dir1", id.Path)
	assert.False(t, id.IsFilesystemRoot())

	rootID := r.ResolveID(inode.Root)
	assert.True(t, rootID.IsFilesystemRoot())
}
