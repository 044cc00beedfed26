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

package resolver

import "github.com/khanhtranngoccva/easy-fuser/fs/inode"

// HybridID composes a managed inode number with its resolved path,
// giving a handler the convenience of path-based operations alongside
// an escape hatch to the precise inode when it needs refcount-aware
// behavior (e.g. deciding whether a file is still open under another
// name before reusing storage for it).
type HybridID struct {
	Inode inode.ID
	Path  string
}

// IsFilesystemRoot reports whether id names the mountpoint.
func (id HybridID) IsFilesystemRoot() bool {
	return id.Inode == inode.Root
}

// HybridResolver wraps a ComponentsResolver the same way PathResolver
// does, but resolves identity to a HybridID carrying both the inode and
// the path instead of the path alone.
type HybridResolver struct {
	inner *ComponentsResolver
}

// NewHybridResolver creates a resolver with only the root inode present.
func NewHybridResolver() *HybridResolver {
	return &HybridResolver{inner: NewComponentsResolver()}
}

var _ Resolver[HybridID, struct{}] = (*HybridResolver)(nil)

// ResolveID returns both ino itself and its resolved path.
func (r *HybridResolver) ResolveID(ino inode.ID) HybridID {
	path := (&PathResolver{inner: r.inner}).ResolveID(ino)
	return HybridID{Inode: ino, Path: path}
}

// Lookup forwards to the wrapped ComponentsResolver.
func (r *HybridResolver) Lookup(parent inode.ID, name string, id struct{}, increment bool) inode.ID {
	return r.inner.Lookup(parent, name, id, increment)
}

// AddChildren forwards to the wrapped ComponentsResolver.
func (r *HybridResolver) AddChildren(parent inode.ID, children []NamedChild[struct{}], increment bool) []ResolvedChild {
	return r.inner.AddChildren(parent, children, increment)
}

// Forget forwards to the wrapped ComponentsResolver.
func (r *HybridResolver) Forget(ino inode.ID, nlookup uint64) {
	r.inner.Forget(ino, nlookup)
}

// Rename forwards to the wrapped ComponentsResolver.
func (r *HybridResolver) Rename(parent inode.ID, name string, newParent inode.ID, newName string) {
	r.inner.Rename(parent, name, newParent, newName)
}
