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

import (
	"sync"
	"sync/atomic"

	"github.com/khanhtranngoccva/easy-fuser/fs/inode"
)

// ComponentsResolver owns an inode.Mapper whose per-inode data is a
// lookup refcount. The handler sees identity as a leaf-to-root slice of
// path components (empty for root). A single RWMutex guards the
// mapper's structure; the refcount itself is an *atomic.Uint64, mutable
// under the read lock, which is what makes the optimistic lookup/forget
// fast paths safe without taking the write lock.
type ComponentsResolver struct {
	mu     sync.RWMutex
	mapper *inode.Mapper[*atomic.Uint64]
}

// NewComponentsResolver creates a resolver with only the root inode
// present and a zeroed root refcount.
func NewComponentsResolver() *ComponentsResolver {
	return &ComponentsResolver{
		mapper: inode.NewMapper[*atomic.Uint64](&atomic.Uint64{}),
	}
}

var _ Resolver[[]string, struct{}] = (*ComponentsResolver)(nil)

// ResolveID walks the mapper from ino up to (excluding) root, returning
// the component names leaf-first.
func (r *ComponentsResolver) ResolveID(ino inode.ID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, ok := r.mapper.Resolve(ino)
	if !ok {
		return nil
	}
	names := make([]string, len(chain))
	for i, info := range chain {
		names[i] = info.Name
	}
	return names
}

// Lookup implements the "optimistic read, pessimistic write with merge"
// pattern: try the read-locked hit path first; only fall back to a
// write-locked insert when the child doesn't exist yet, and even then
// re-merge against any refcount that appeared in the interim.
func (r *ComponentsResolver) Lookup(parent inode.ID, name string, _ struct{}, increment bool) inode.ID {
	r.mu.RLock()
	if res, ok := r.mapper.Lookup(parent, name); ok {
		if increment {
			res.Data.Add(1)
		}
		r.mu.RUnlock()
		return res.Inode
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	child, err := r.mapper.InsertChild(parent, name, func(p inode.ValueCreatorParams[*atomic.Uint64]) *atomic.Uint64 {
		if p.ExistingData != nil {
			existing := (*p.ExistingData).Load()
			c := &atomic.Uint64{}
			if increment {
				c.Store(existing + 1)
			} else {
				c.Store(existing)
			}
			return c
		}
		c := &atomic.Uint64{}
		if increment {
			c.Store(1)
		}
		return c
	})
	if err != nil {
		panic(err)
	}
	return child
}

// AddChildren bulk-inserts children of parent under a single write-lock
// acquisition, merging refcounts the same way Lookup does for entries
// that already existed.
func (r *ComponentsResolver) AddChildren(parent inode.ID, children []NamedChild[struct{}], increment bool) []ResolvedChild {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]inode.NamedCreator[*atomic.Uint64], len(children))
	for i, c := range children {
		entries[i] = inode.NamedCreator[*atomic.Uint64]{
			Name: c.Name,
			Create: func(p inode.ValueCreatorParams[*atomic.Uint64]) *atomic.Uint64 {
				if p.ExistingData != nil {
					existing := (*p.ExistingData).Load()
					out := &atomic.Uint64{}
					if increment {
						out.Store(existing + 1)
					} else {
						out.Store(existing)
					}
					return out
				}
				out := &atomic.Uint64{}
				if increment {
					out.Store(1)
				}
				return out
			},
		}
	}

	ids, err := r.mapper.InsertChildren(parent, entries)
	if err != nil {
		panic(err)
	}
	out := make([]ResolvedChild, len(ids))
	for i, id := range ids {
		out[i] = ResolvedChild{Name: children[i].Name, Inode: id}
	}
	return out
}

// Forget subtracts nlookup from ino's refcount under the read lock; if
// the pre-subtract value was not strictly greater than nlookup, the
// inode is removed under the write lock.
func (r *ComponentsResolver) Forget(ino inode.ID, nlookup uint64) {
	r.mu.RLock()
	info, ok := r.mapper.Get(ino)
	if !ok {
		r.mu.RUnlock()
		return
	}
	after := info.Data.Add(-nlookup)
	before := after + nlookup
	r.mu.RUnlock()

	if before > nlookup {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapper.Remove(ino)
}

// Rename delegates to the mapper under the write lock.
func (r *ComponentsResolver) Rename(parent inode.ID, name string, newParent inode.ID, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, _, _, err := r.mapper.Rename(parent, name, newParent, newName); err != nil {
		panic(err)
	}
}
