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

package inode

import (
	"fmt"
	"sort"
)

// ErrParentNotFound is returned when an operation names a parent inode that
// does not exist in the Mapper.
var ErrParentNotFound = fmt.Errorf("inode: parent not found")

// ErrNotFound is returned by Rename when the source edge does not exist.
var ErrNotFound = fmt.Errorf("inode: edge not found")

// ErrNewParentNotFound is returned by Rename when the destination parent
// does not exist.
var ErrNewParentNotFound = fmt.Errorf("inode: new parent not found")

// record is the per-inode entry kept by the Mapper. name is an immutable Go
// string; like Arc<OsString> in the reference implementation, copying it
// only copies a small header, never the backing bytes, so returning it by
// value from Get/GetChildren is already allocation-free sharing.
type record[D any] struct {
	parent ID
	name   string
	data   D
}

// ValueCreatorParams is handed to the value-creator closure passed to
// InsertChild/InsertChildren/BatchInsert. ExistingData is nil when the
// child is being created for the first time, and points at the current
// value when the child already exists (i.e. this call is updating it).
type ValueCreatorParams[D any] struct {
	NewInode     ID
	Parent       ID
	ChildName    string
	ExistingData *D
}

// ValueCreator produces the data to store for a child inode, given whether
// it already existed.
type ValueCreator[D any] func(ValueCreatorParams[D]) D

// Info is a snapshot of one inode's record, returned by Get and Resolve.
type Info[D any] struct {
	Parent ID
	Name   string
	Data   D
}

// LookupResult is returned by Lookup.
type LookupResult[D any] struct {
	Inode ID
	Name  string
	Data  D
}

// Mapper is the authoritative inode tree: parent/name/data per inode, plus
// a per-parent child index. It is parameterized over a user data type D,
// stored per inode — resolver.ComponentsResolver uses D to hold the
// per-inode lookup refcount.
//
// Mapper is not safe for concurrent use; callers that need concurrent
// access (e.g. the resolver package) must guard it with their own lock.
type Mapper[D any] struct {
	inodes   map[ID]record[D]
	children map[ID]map[string]ID
	next     ID
}

// NewMapper creates a mapper with only the root inode present, carrying
// rootData as its data.
func NewMapper[D any](rootData D) *Mapper[D] {
	m := &Mapper[D]{
		inodes:   make(map[ID]record[D]),
		children: make(map[ID]map[string]ID),
		next:     Root.Next(),
	}
	m.inodes[Root] = record[D]{parent: Root, name: "", data: rootData}
	return m
}

// Get returns the record for inode, or ok=false if it does not exist.
func (m *Mapper[D]) Get(i ID) (info Info[D], ok bool) {
	r, ok := m.inodes[i]
	if !ok {
		return Info[D]{}, false
	}
	return Info[D]{Parent: r.parent, Name: r.name, Data: r.data}, true
}

// GetChildren returns the (name, child) pairs registered under parent, in
// unspecified order. Does not check that parent exists; returns an empty
// slice if it has no children.
func (m *Mapper[D]) GetChildren(parent ID) []LookupResult[D] {
	kids := m.children[parent]
	if len(kids) == 0 {
		return nil
	}
	out := make([]LookupResult[D], 0, len(kids))
	for name, child := range kids {
		out = append(out, LookupResult[D]{Inode: child, Name: name, Data: m.inodes[child].data})
	}
	return out
}

// Lookup returns the child named name under parent, if any.
func (m *Mapper[D]) Lookup(parent ID, name string) (LookupResult[D], bool) {
	kids, ok := m.children[parent]
	if !ok {
		return LookupResult[D]{}, false
	}
	child, ok := kids[name]
	if !ok {
		return LookupResult[D]{}, false
	}
	return LookupResult[D]{Inode: child, Name: name, Data: m.inodes[child].data}, true
}

// insertChildUnchecked creates or updates a child of parent without
// verifying that parent exists. Used internally once the caller has
// already checked, and by batch_insert's intermediate-directory creation.
func (m *Mapper[D]) insertChildUnchecked(parent ID, name string, create ValueCreator[D]) ID {
	kids, ok := m.children[parent]
	if !ok {
		kids = make(map[string]ID)
		m.children[parent] = kids
	}

	if child, exists := kids[name]; exists {
		r := m.inodes[child]
		existing := r.data
		r.data = create(ValueCreatorParams[D]{
			NewInode:     child,
			Parent:       parent,
			ChildName:    name,
			ExistingData: &existing,
		})
		m.inodes[child] = r
		return child
	}

	child := m.next
	m.next = m.next.Next()
	kids[name] = child
	m.inodes[child] = record[D]{
		parent: parent,
		name:   name,
		data: create(ValueCreatorParams[D]{
			NewInode:     child,
			Parent:       parent,
			ChildName:    name,
			ExistingData: nil,
		}),
	}
	return child
}

// InsertChild creates or updates a single child of parent, failing if
// parent does not exist. Re-inserting an existing name returns the same
// inode, with its data replaced by the output of create.
func (m *Mapper[D]) InsertChild(parent ID, name string, create ValueCreator[D]) (ID, error) {
	if _, ok := m.inodes[parent]; !ok {
		return 0, ErrParentNotFound
	}
	return m.insertChildUnchecked(parent, name, create), nil
}

// NamedCreator pairs a child name with its value-creator closure, for bulk
// insertion via InsertChildren.
type NamedCreator[D any] struct {
	Name   string
	Create ValueCreator[D]
}

// InsertChildren bulk-inserts children of parent under a single logical
// operation, preserving the input order in the returned slice.
func (m *Mapper[D]) InsertChildren(parent ID, entries []NamedCreator[D]) ([]ID, error) {
	if _, ok := m.inodes[parent]; !ok {
		return nil, ErrParentNotFound
	}
	out := make([]ID, len(entries))
	for i, e := range entries {
		out[i] = m.insertChildUnchecked(parent, e.Name, e.Create)
	}
	return out, nil
}

// PathEntry is one (path, value-creator) pair for BatchInsert. Path must
// include the entry's own name as its last component.
type PathEntry[D any] struct {
	Path   []string
	Create ValueCreator[D]
}

// BatchInsert inserts many, possibly deeply nested, entries in one call,
// materializing missing intermediate directories with defaultCreate.
// Entries are processed shortest-path-first so that a directory is always
// created before any of its descendants are inserted.
func (m *Mapper[D]) BatchInsert(parent ID, entries []PathEntry[D], defaultCreate ValueCreator[D]) error {
	if _, ok := m.inodes[parent]; !ok {
		return ErrParentNotFound
	}

	sorted := make([]PathEntry[D], len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Path) < len(sorted[j].Path)
	})

	type pathKey = string
	cache := make(map[pathKey]ID)
	cache[""] = parent

	for _, e := range sorted {
		if len(e.Path) == 0 {
			continue
		}
		dir := e.Path[:len(e.Path)-1]
		name := e.Path[len(e.Path)-1]
		cur := m.ensurePathExists(cache, dir, defaultCreate)
		m.insertChildUnchecked(cur, name, e.Create)
	}
	return nil
}

func (m *Mapper[D]) ensurePathExists(cache map[string]ID, path []string, defaultCreate ValueCreator[D]) ID {
	cur := cache[""]
	built := ""
	for _, component := range path {
		key := built + "\x00" + component
		if inode, ok := cache[key]; ok {
			cur = inode
			built = key
			continue
		}
		var next ID
		if kids, ok := m.children[cur]; ok {
			if child, ok := kids[component]; ok {
				next = child
			}
		}
		if next == 0 {
			next = m.insertChildUnchecked(cur, component, func(p ValueCreatorParams[D]) D {
				p.ExistingData = nil
				return defaultCreate(p)
			})
		}
		cache[key] = next
		cur = next
		built = key
	}
	return cur
}

// Resolve walks upward from inode, following parent links, collecting
// records in leaf-to-root order (inode itself first). Root is never
// included. Returns ok=false if any link in the chain is missing, which
// indicates a torn tree (should not happen if invariant I2 holds).
func (m *Mapper[D]) Resolve(inode ID) ([]Info[D], bool) {
	var result []Info[D]
	cur := inode
	info, ok := m.Get(cur)
	if !ok {
		return nil, false
	}
	for info.Parent != cur {
		next := info.Parent
		result = append(result, info)
		cur = next
		info, ok = m.Get(cur)
		if !ok {
			return nil, false
		}
	}
	return result, true
}

// Rename moves the edge (parent, name) to (newParent, newName). If the
// destination edge already existed, the displaced inode is NOT removed:
// it lingers, unreachable from its old name, until the refcount-driven
// removal path (Remove) reclaims it. This mirrors POSIX semantics where a
// file descriptor open on an unlinked/renamed-over file stays valid.
//
// The returned (ID, D, bool) is always (0, zero, false): the disposition of
// a displaced inode is deliberately left to the caller's own forget/remove
// bookkeeping (see SPEC_FULL.md's "Open Question decision" in §9).
func (m *Mapper[D]) Rename(parent ID, name string, newParent ID, newName string) (ID, D, bool, error) {
	var zero D
	if _, ok := m.inodes[parent]; !ok {
		return 0, zero, false, ErrParentNotFound
	}
	if _, ok := m.inodes[newParent]; !ok {
		return 0, zero, false, ErrNewParentNotFound
	}

	kids, ok := m.children[parent]
	if !ok {
		return 0, zero, false, ErrNotFound
	}
	child, ok := kids[name]
	if !ok {
		return 0, zero, false, ErrNotFound
	}
	delete(kids, name)
	if len(kids) == 0 {
		delete(m.children, parent)
	}

	r := m.inodes[child]
	r.parent = newParent
	r.name = newName
	m.inodes[child] = r

	newKids, ok := m.children[newParent]
	if !ok {
		newKids = make(map[string]ID)
		m.children[newParent] = newKids
	}
	newKids[newName] = child

	return 0, zero, false, nil
}

// Remove deletes inode and cascades to every descendant reachable through
// the child index. Removing Root panics: the root of the namespace must
// never be garbage-collected.
func (m *Mapper[D]) Remove(i ID) (data D, ok bool) {
	if i == Root {
		panic("inode: cannot remove root")
	}
	r, ok := m.inodes[i]
	if !ok {
		return data, false
	}
	delete(m.inodes, i)

	if parentKids, ok := m.children[r.parent]; ok {
		if parentKids[r.name] == i {
			delete(parentKids, r.name)
		}
		if len(parentKids) == 0 {
			delete(m.children, r.parent)
		}
	}

	if kids, ok := m.children[i]; ok {
		delete(m.children, i)
		for _, child := range kids {
			m.removeCascade(child)
		}
	}

	return r.data, true
}

// removeCascade is Remove without the root panic guard, used internally
// once we know i is strictly below root.
func (m *Mapper[D]) removeCascade(i ID) {
	r, ok := m.inodes[i]
	if !ok {
		return
	}
	delete(m.inodes, i)
	if kids, ok := m.children[i]; ok {
		delete(m.children, i)
		for _, child := range kids {
			m.removeCascade(child)
		}
	}
	_ = r
}
