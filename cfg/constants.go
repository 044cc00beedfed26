// Copyright 2024 Google Inc. All Rights Reserved.
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

const (
	// unsetTtlSecs is the flag default for metadata-cache.ttl-secs, chosen
	// so "not set by the user" is distinguishable from the valid value 0
	// (caching disabled).
	unsetTtlSecs int64 = -2

	// DefaultTtlSecs is applied when the user never sets ttl-secs.
	DefaultTtlSecs int64 = 60

	// DefaultStatCacheMaxSizeMB is applied when the user never sets
	// stat-cache-max-size-mb.
	DefaultStatCacheMaxSizeMB int64 = 32

	// MaxSupportedStatCacheMaxSizeMB is the largest value stat-cache-max-size-mb
	// may take before overflowing the byte-count arithmetic that sizes the
	// underlying cache.
	MaxSupportedStatCacheMaxSizeMB int64 = 17592186044415
)

func isMetadataCacheTtlSet(c *MetadataCacheConfig) bool {
	return c.TtlSecs != unsetTtlSecs
}
