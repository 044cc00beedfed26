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

// Package resolver sits between the kernel-visible inode namespace (see
// package inode) and a handler's preferred file identity model. Four
// variants implement the same contract: InodeResolver hands identity
// management entirely to the caller, ComponentsResolver owns an
// inode.Mapper and derives identity from it, and PathResolver and
// HybridResolver wrap a ComponentsResolver.
package resolver

import "github.com/khanhtranngoccva/easy-fuser/fs/inode"

// NamedChild pairs a child name with the id the caller associates with
// it, as passed to AddChildren (used by readdir/readdirplus prefetch).
type NamedChild[IDType any] struct {
	Name string
	ID   IDType
}

// ResolvedChild is the (name, kernel inode) pairing AddChildren returns.
type ResolvedChild struct {
	Name  string
	Inode inode.ID
}

// Resolver is the uniform contract implemented by InodeResolver,
// ComponentsResolver, PathResolver and HybridResolver. T is the resolved
// identity type the handler sees (inode.ID for InodeResolver, string for
// PathResolver, []string for ComponentsResolver, HybridID for
// HybridResolver). IDType is the per-variant shape of the identifier a
// caller supplies to Lookup/AddChildren: for InodeResolver it is
// inode.ID itself; for the others it is carried only for interface
// uniformity and ignored (struct{}{}).
type Resolver[T any, IDType any] interface {
	// ResolveID projects a kernel inode number into this resolver's
	// identity model.
	ResolveID(ino inode.ID) T

	// Lookup resolves (or creates) the child named name under parent.
	// When increment is true the child's lookup refcount (if any) is
	// incremented by one.
	Lookup(parent inode.ID, name string, id IDType, increment bool) inode.ID

	// AddChildren bulk-registers children of parent in one locked pass,
	// preserving input order in the result, incrementing refcounts by
	// one per entry when increment is true.
	AddChildren(parent inode.ID, children []NamedChild[IDType], increment bool) []ResolvedChild

	// Forget decrements ino's lookup refcount by nlookup, removing the
	// inode (and cascading to descendants) if it reaches zero.
	Forget(ino inode.ID, nlookup uint64)

	// Rename moves the edge (parent, name) to (newParent, newName).
	Rename(parent inode.ID, name string, newParent inode.ID, newName string)
}
