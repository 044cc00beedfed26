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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRationalize_LogMutexBumpsSeverityToTrace(t *testing.T) {
	c := &Config{
		Debug:         DebugConfig{LogMutex: true},
		Logging:       LoggingConfig{Severity: InfoLogSeverity},
		MetadataCache: GetDefaultMetadataCacheConfig(),
	}

	require.NoError(t, Rationalize(c))

	assert.Equal(t, TraceLogSeverity, c.Logging.Severity)
}

func TestRationalize_LeavesSeverityAloneWithoutLogMutex(t *testing.T) {
	c := &Config{
		Logging:       LoggingConfig{Severity: WarningLogSeverity},
		MetadataCache: GetDefaultMetadataCacheConfig(),
	}

	require.NoError(t, Rationalize(c))

	assert.Equal(t, WarningLogSeverity, c.Logging.Severity)
}

func TestRationalize_MetadataCacheTtl(t *testing.T) {
	testCases := []struct {
		name        string
		ttlSecs     int64
		expectedTtl int64
	}{
		{name: "unset falls back to default", ttlSecs: unsetTtlSecs, expectedTtl: DefaultTtlSecs},
		{name: "-1 means cache forever", ttlSecs: -1, expectedTtl: MaxSupportedTtlInSeconds},
		{name: "explicit positive value is preserved", ttlSecs: 120, expectedTtl: 120},
		{name: "explicit zero disables caching", ttlSecs: 0, expectedTtl: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Config{MetadataCache: MetadataCacheConfig{TtlSecs: tc.ttlSecs}}

			require.NoError(t, Rationalize(c))

			assert.Equal(t, tc.expectedTtl, c.MetadataCache.TtlSecs)
		})
	}
}
