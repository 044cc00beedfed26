// Copyright 2024 Google LLC
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

package cfg

import "runtime"

// DefaultReaddirConcurrency returns the number of lstat-style lookups a
// ReadDirPlus implementation should issue concurrently when prefetching
// child attributes, scaled to the host's core count.
func DefaultReaddirConcurrency() int {
	return max(16, 2*runtime.NumCPU())
}

// IsMetadataCacheEnabled reports whether attribute caching is turned on for
// this mount.
func IsMetadataCacheEnabled(config *Config) bool {
	return config.MetadataCache.StatCacheMaxSizeMb != 0 && config.MetadataCache.TtlSecs != 0
}
