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
	"fmt"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/khanhtranngoccva/easy-fuser/fs/handler"
	"github.com/khanhtranngoccva/easy-fuser/fs/resolver"
)

// MountOptions carries the subset of fuse.MountConfig callers of Mount
// typically need to set, grounded on the teacher's own
// cmd.getFuseMountConfig (FSName/Subtype/VolumeName/Options/
// EnableParallelDirOps knobs, trimmed to what a generic mount framework
// exposes instead of GCS-specific cache TTL and streaming-write flags).
type MountOptions struct {
	FSName     string
	Subtype    string
	VolumeName string
	ReadOnly   bool

	// EnableParallelDirOps allows the kernel to issue concurrent
	// LookUpInode/ReadDir calls rather than serializing them.
	EnableParallelDirOps bool

	// RawOptions are passed through as "-o key=value"/"-o key" mount
	// options (e.g. allow_other, default_permissions).
	RawOptions map[string]string
}

// Mount builds a Dispatcher over the given resolver/handler pair, mounts
// it at mountpoint, and returns the running fuse.MountedFileSystem for the
// caller to Join on, mirroring the teacher's own NewServer + fuse.Mount
// sequence in cmd/mount.go.
func Mount[T any, IDType any](mountpoint string, r resolver.Resolver[T, IDType], h handler.Handler[T, IDType], opts MountOptions) (*fuse.MountedFileSystem, error) {
	dispatcher := NewDispatcher(r, h)
	server := fuseutil.NewFileSystemServer(dispatcher)

	cfg := &fuse.MountConfig{
		FSName:               opts.FSName,
		Subtype:              opts.Subtype,
		VolumeName:           opts.VolumeName,
		ReadOnly:             opts.ReadOnly,
		EnableParallelDirOps: opts.EnableParallelDirOps,
		Options:              opts.RawOptions,
	}

	mfs, err := fuse.Mount(mountpoint, server, cfg)
	if err != nil {
		return nil, fmt.Errorf("fuse.Mount: %w", err)
	}
	return mfs, nil
}
