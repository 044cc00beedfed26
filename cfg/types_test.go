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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOctalUnmarshalling(t *testing.T) {
	var o Octal
	require.NoError(t, o.UnmarshalText([]byte("755")))
	assert.Equal(t, Octal(0755), o)
	assert.Equal(t, "755", o.String())

	text, err := o.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "755", string(text))
}

func TestOctalUnmarshalling_Invalid(t *testing.T) {
	var o Octal
	assert.Error(t, o.UnmarshalText([]byte("not-octal")))
}

func TestLogSeverityUnmarshalling(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogSeverity
		wantErr  bool
	}{
		{input: "trace", expected: TraceLogSeverity},
		{input: "INFO", expected: InfoLogSeverity},
		{input: "Warning", expected: WarningLogSeverity},
		{input: "bogus", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var l LogSeverity
			err := l.UnmarshalText([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, l)
		})
	}
}

func TestLogSeverityRank(t *testing.T) {
	assert.Less(t, TraceLogSeverity.Rank(), DebugLogSeverity.Rank())
	assert.Less(t, ErrorLogSeverity.Rank(), OffLogSeverity.Rank())
	assert.Equal(t, -1, LogSeverity("bogus").Rank())
}

func TestResolvedPathUnmarshalling(t *testing.T) {
	var p ResolvedPath
	require.NoError(t, p.UnmarshalText([]byte("relative/dir")))
	assert.True(t, filepath.IsAbs(string(p)))

	var abs ResolvedPath
	require.NoError(t, abs.UnmarshalText([]byte("/already/absolute")))
	assert.Equal(t, ResolvedPath("/already/absolute"), abs)

	var empty ResolvedPath
	require.NoError(t, empty.UnmarshalText([]byte("")))
	assert.Equal(t, ResolvedPath(""), empty)
}
