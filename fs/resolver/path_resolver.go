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
	"path"

	"github.com/khanhtranngoccva/easy-fuser/fs/inode"
)

// PathResolver wraps a ComponentsResolver, presenting identity as a
// single slash-joined relative path instead of a component slice. Every
// operation other than ResolveID forwards unchanged.
type PathResolver struct {
	inner *ComponentsResolver
}

// NewPathResolver creates a resolver with only the root inode present.
func NewPathResolver() *PathResolver {
	return &PathResolver{inner: NewComponentsResolver()}
}

var _ Resolver[string, struct{}] = (*PathResolver)(nil)

// ResolveID joins the leaf-to-root component chain into a path,
// reversing it to root-to-leaf order first. Root resolves to "".
func (r *PathResolver) ResolveID(ino inode.ID) string {
	components := r.inner.ResolveID(ino)
	if len(components) == 0 {
		return ""
	}
	reversed := make([]string, len(components))
	for i, c := range components {
		reversed[len(components)-1-i] = c
	}
	return path.Join(reversed...)
}

// Lookup forwards to the wrapped ComponentsResolver.
func (r *PathResolver) Lookup(parent inode.ID, name string, id struct{}, increment bool) inode.ID {
	return r.inner.Lookup(parent, name, id, increment)
}

// AddChildren forwards to the wrapped ComponentsResolver.
func (r *PathResolver) AddChildren(parent inode.ID, children []NamedChild[struct{}], increment bool) []ResolvedChild {
	return r.inner.AddChildren(parent, children, increment)
}

// Forget forwards to the wrapped ComponentsResolver.
func (r *PathResolver) Forget(ino inode.ID, nlookup uint64) {
	r.inner.Forget(ino, nlookup)
}

// Rename forwards to the wrapped ComponentsResolver.
func (r *PathResolver) Rename(parent inode.ID, name string, newParent inode.ID, newName string) {
	r.inner.Rename(parent, name, newParent, newName)
}
