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

import "time"

// Rationalize updates the config fields based on the values of other fields,
// after flags/file have been parsed but before ValidateConfig runs.
func Rationalize(c *Config) error {
	if c.Debug.LogMutex {
		c.Logging.Severity = TraceLogSeverity
	}

	c.MetadataCache.TtlSecs = int64(resolveMetadataCacheTTL(&c.MetadataCache).Seconds())

	return nil
}

// resolveMetadataCacheTTL returns the ttl to be used for the attribute cache
// based on the user's flags/config.
func resolveMetadataCacheTTL(c *MetadataCacheConfig) time.Duration {
	if !isMetadataCacheTtlSet(c) {
		return time.Duration(DefaultTtlSecs) * time.Second
	}
	if c.TtlSecs == -1 {
		return time.Duration(MaxSupportedTtlInSeconds) * time.Second
	}
	return time.Second * time.Duration(c.TtlSecs)
}
