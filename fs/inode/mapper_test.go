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

package inode_test

import (
	"testing"

	"github.com/khanhtranngoccva/easy-fuser/fs/inode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constCreator[D any](v D) inode.ValueCreator[D] {
	return func(inode.ValueCreatorParams[D]) D { return v }
}

func TestNewMapper_RootInvariants(t *testing.T) {
	m := inode.NewMapper(0)
	info, ok := m.Get(inode.Root)
	require.True(t, ok)
	assert.Equal(t, inode.Root, info.Parent)
	assert.Equal(t, "", info.Name)
}

func TestInsertChild_CreatesFreshInode(t *testing.T) {
	m := inode.NewMapper(0)
	child, err := m.InsertChild(inode.Root, "dir1", constCreator(1))
	require.NoError(t, err)
	assert.Equal(t, inode.Root.Next(), child)

	info, ok := m.Get(child)
	require.True(t, ok)
	assert.Equal(t, inode.Root, info.Parent)
	assert.Equal(t, "dir1", info.Name)
	assert.Equal(t, 1, info.Data)
}

func TestInsertChild_ParentNotFound(t *testing.T) {
	m := inode.NewMapper(0)
	_, err := m.InsertChild(inode.ID(999), "x", constCreator(0))
	assert.ErrorIs(t, err, inode.ErrParentNotFound)
}

func TestInsertChild_Reinsert_SameInode_MergesData(t *testing.T) {
	m := inode.NewMapper(0)
	first, err := m.InsertChild(inode.Root, "a", constCreator(1))
	require.NoError(t, err)

	second, err := m.InsertChild(inode.Root, "a", func(p inode.ValueCreatorParams[int]) int {
		require.NotNil(t, p.ExistingData)
		return *p.ExistingData + 10
	})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, _ := m.Get(first)
	assert.Equal(t, 11, info.Data)
}

func TestLookup(t *testing.T) {
	m := inode.NewMapper(0)
	child, _ := m.InsertChild(inode.Root, "file.txt", constCreator(5))

	res, ok := m.Lookup(inode.Root, "file.txt")
	require.True(t, ok)
	assert.Equal(t, child, res.Inode)
	assert.Equal(t, 5, res.Data)

	_, ok = m.Lookup(inode.Root, "missing")
	assert.False(t, ok)
}

func TestPathResolutionScenario(t *testing.T) {
	// Mirrors the literal end-to-end scenario: dir1/dir2/file.txt.
	m := inode.NewMapper(0)
	dir1, err := m.InsertChild(inode.Root, "dir1", constCreator(0))
	require.NoError(t, err)
	assert.Equal(t, inode.ID(2), dir1)

	dir2, err := m.InsertChild(dir1, "dir2", constCreator(0))
	require.NoError(t, err)
	assert.Equal(t, inode.ID(3), dir2)

	file, err := m.InsertChild(dir2, "file.txt", constCreator(0))
	require.NoError(t, err)
	assert.Equal(t, inode.ID(4), file)

	chain, ok := m.Resolve(file)
	require.True(t, ok)
	require.Len(t, chain, 3)
	assert.Equal(t, "file.txt", chain[0].Name)
	assert.Equal(t, "dir2", chain[1].Name)
	assert.Equal(t, "dir1", chain[2].Name)
}

func TestRename_CrossDirectory(t *testing.T) {
	m := inode.NewMapper(0)
	dir1, _ := m.InsertChild(inode.Root, "dir1", constCreator(0))
	dir2, _ := m.InsertChild(dir1, "dir2", constCreator(0))
	file, _ := m.InsertChild(dir2, "file.txt", constCreator(0))

	_, _, _, err := m.Rename(dir2, "file.txt", inode.Root, "moved.txt")
	require.NoError(t, err)

	info, ok := m.Get(file)
	require.True(t, ok)
	assert.Equal(t, inode.Root, info.Parent)
	assert.Equal(t, "moved.txt", info.Name)

	_, ok = m.Lookup(dir2, "file.txt")
	assert.False(t, ok)

	res, ok := m.Lookup(inode.Root, "moved.txt")
	require.True(t, ok)
	assert.Equal(t, file, res.Inode)

	// Looking up the vacated name materializes a brand new, distinct inode.
	fresh, err := m.InsertChild(dir2, "file.txt", constCreator(0))
	require.NoError(t, err)
	assert.NotEqual(t, file, fresh)
	assert.GreaterOrEqual(t, uint64(fresh), uint64(5))
}

func TestRename_Identity_NoOp(t *testing.T) {
	m := inode.NewMapper(0)
	m.InsertChild(inode.Root, "a", constCreator(0))
	before := m.GetChildren(inode.Root)

	_, _, _, err := m.Rename(inode.Root, "a", inode.Root, "a")
	require.NoError(t, err)

	after := m.GetChildren(inode.Root)
	assert.Equal(t, before, after)
}

func TestRename_OverExisting_PersistsDisplaced(t *testing.T) {
	m := inode.NewMapper(0)
	a, _ := m.InsertChild(inode.Root, "a", constCreator(0))
	b, _ := m.InsertChild(inode.Root, "b", constCreator(0))

	_, _, _, err := m.Rename(inode.Root, "a", inode.Root, "b")
	require.NoError(t, err)

	res, ok := m.Lookup(inode.Root, "b")
	require.True(t, ok)
	assert.Equal(t, a, res.Inode)

	// b's original inode is displaced but not removed; still gettable.
	_, ok = m.Get(b)
	assert.True(t, ok)
}

func TestRename_Inverse_RestoresResolve(t *testing.T) {
	m := inode.NewMapper(0)
	dir1, _ := m.InsertChild(inode.Root, "dir1", constCreator(0))
	file, _ := m.InsertChild(dir1, "file.txt", constCreator(0))

	_, _, _, err := m.Rename(dir1, "file.txt", inode.Root, "moved.txt")
	require.NoError(t, err)
	_, _, _, err = m.Rename(inode.Root, "moved.txt", dir1, "file.txt")
	require.NoError(t, err)

	chain, ok := m.Resolve(file)
	require.True(t, ok)
	require.Len(t, chain, 2)
	assert.Equal(t, "file.txt", chain[0].Name)
	assert.Equal(t, "dir1", chain[1].Name)
}

func TestRename_Errors(t *testing.T) {
	m := inode.NewMapper(0)
	m.InsertChild(inode.Root, "a", constCreator(0))

	_, _, _, err := m.Rename(inode.ID(999), "a", inode.Root, "b")
	assert.ErrorIs(t, err, inode.ErrParentNotFound)

	_, _, _, err = m.Rename(inode.Root, "a", inode.ID(999), "b")
	assert.ErrorIs(t, err, inode.ErrNewParentNotFound)

	_, _, _, err = m.Rename(inode.Root, "nope", inode.Root, "b")
	assert.ErrorIs(t, err, inode.ErrNotFound)
}

func TestRemove_CascadesToDescendants(t *testing.T) {
	m := inode.NewMapper(0)
	dir1, _ := m.InsertChild(inode.Root, "dir1", constCreator(0))
	file, _ := m.InsertChild(dir1, "file.txt", constCreator(0))

	_, ok := m.Remove(dir1)
	require.True(t, ok)

	_, ok = m.Get(dir1)
	assert.False(t, ok)
	_, ok = m.Get(file)
	assert.False(t, ok)
	_, ok = m.Lookup(inode.Root, "dir1")
	assert.False(t, ok)
}

func TestRemove_PrunesEmptyChildIndex(t *testing.T) {
	m := inode.NewMapper(0)
	a, _ := m.InsertChild(inode.Root, "a", constCreator(0))
	m.Remove(a)
	assert.Empty(t, m.GetChildren(inode.Root))
}

func TestRemove_RootPanics(t *testing.T) {
	m := inode.NewMapper(0)
	assert.Panics(t, func() {
		m.Remove(inode.Root)
	})
}

func TestRemove_InodeNeverReused(t *testing.T) {
	m := inode.NewMapper(0)
	a, _ := m.InsertChild(inode.Root, "a", constCreator(0))
	m.Remove(a)
	b, _ := m.InsertChild(inode.Root, "b", constCreator(0))
	assert.NotEqual(t, a, b)
	assert.Greater(t, uint64(b), uint64(a))
}

func TestInsertChildren_Bulk_PreservesOrder(t *testing.T) {
	m := inode.NewMapper(0)
	ids, err := m.InsertChildren(inode.Root, []inode.NamedCreator[int]{
		{Name: "a", Create: constCreator(1)},
		{Name: "b", Create: constCreator(2)},
		{Name: "c", Create: constCreator(3)},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	for i, name := range []string{"a", "b", "c"} {
		res, ok := m.Lookup(inode.Root, name)
		require.True(t, ok)
		assert.Equal(t, ids[i], res.Inode)
	}
}

func TestBatchInsert_CreatesIntermediateDirectories(t *testing.T) {
	m := inode.NewMapper(0)
	defaultCreate := constCreator(-1)

	err := m.BatchInsert(inode.Root, []inode.PathEntry[int]{
		{Path: []string{"d0", "f0"}, Create: constCreator(0)},
		{Path: []string{"d0", "d1", "f1"}, Create: constCreator(1)},
		{Path: []string{"f2"}, Create: constCreator(2)},
	}, defaultCreate)
	require.NoError(t, err)

	d0, ok := m.Lookup(inode.Root, "d0")
	require.True(t, ok)
	assert.Equal(t, -1, d0.Data)

	f0, ok := m.Lookup(d0.Inode, "f0")
	require.True(t, ok)
	assert.Equal(t, 0, f0.Data)

	d1, ok := m.Lookup(d0.Inode, "d1")
	require.True(t, ok)
	assert.Equal(t, -1, d1.Data)

	f1, ok := m.Lookup(d1.Inode, "f1")
	require.True(t, ok)
	assert.Equal(t, 1, f1.Data)

	f2, ok := m.Lookup(inode.Root, "f2")
	require.True(t, ok)
	assert.Equal(t, 2, f2.Data)
}

func TestResolve_MissingInode(t *testing.T) {
	m := inode.NewMapper(0)
	_, ok := m.Resolve(inode.ID(12345))
	assert.False(t, ok)
}

func TestInodeNext_StrictlyMonotonic(t *testing.T) {
	seen := map[inode.ID]bool{inode.Root: true}
	cur := inode.Root
	for i := 0; i < 100; i++ {
		cur = cur.Next()
		assert.False(t, seen[cur])
		seen[cur] = true
	}
}
