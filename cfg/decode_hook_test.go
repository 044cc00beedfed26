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

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHook_DecodesIntoConfig(t *testing.T) {
	raw := map[string]any{
		"file-system": map[string]any{
			"file-mode": "755",
		},
		"logging": map[string]any{
			"severity": "debug",
			"file-path": "relative/log",
		},
	}

	var c Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       DecodeHook(),
		WeaklyTypedInput: true,
		Result:           &c,
		TagName:          "yaml",
	})
	require.NoError(t, err)
	require.NoError(t, decoder.Decode(raw))

	assert.Equal(t, Octal(0755), c.FileSystem.FileMode)
	assert.Equal(t, LogSeverity("DEBUG"), c.Logging.Severity)
	assert.NotEmpty(t, c.Logging.FilePath)
}

func TestDecodeHook_RejectsInvalidLogSeverity(t *testing.T) {
	raw := map[string]any{
		"logging": map[string]any{
			"severity": "not-a-level",
		},
	}

	var c Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       DecodeHook(),
		WeaklyTypedInput: true,
		Result:           &c,
		TagName:          "yaml",
	})
	require.NoError(t, err)
	assert.Error(t, decoder.Decode(raw))
}
