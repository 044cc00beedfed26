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

// InodeResolver hands inode management entirely to the caller: the
// handler supplies its own inode.ID on every operation, and this
// resolver performs no bookkeeping of its own. Root is therefore the
// caller's responsibility to reserve as inode.Root as well.
type InodeResolver struct{}

// NewInodeResolver returns a resolver with no backing storage.
func NewInodeResolver() *InodeResolver {
	return &InodeResolver{}
}

var _ Resolver[inode.ID, inode.ID] = (*InodeResolver)(nil)

// ResolveID is the identity function: the caller's inode.ID is returned
// unchanged.
func (r *InodeResolver) ResolveID(ino inode.ID) inode.ID {
	return ino
}

// Lookup returns id directly; parent and name are unused, since the
// caller already decided the inode number.
func (r *InodeResolver) Lookup(parent inode.ID, name string, id inode.ID, increment bool) inode.ID {
	return id
}

// AddChildren passes every supplied id through unchanged.
func (r *InodeResolver) AddChildren(parent inode.ID, children []NamedChild[inode.ID], increment bool) []ResolvedChild {
	out := make([]ResolvedChild, len(children))
	for i, c := range children {
		out[i] = ResolvedChild{Name: c.Name, Inode: c.ID}
	}
	return out
}

// Forget is a no-op: InodeResolver keeps no refcounts.
func (r *InodeResolver) Forget(ino inode.ID, nlookup uint64) {}

// Rename is a no-op: nothing to update, since the caller owns identity.
func (r *InodeResolver) Rename(parent inode.ID, name string, newParent inode.ID, newName string) {}
