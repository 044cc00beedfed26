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

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags_DefaultsAndOverrides(t *testing.T) {
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	require.NoError(t, BindFlags(fs))
	require.NoError(t, v.BindPFlags(fs))
	require.NoError(t, fs.Set("app-name", "my-mount"))
	require.NoError(t, fs.Set("log-severity", "debug"))

	assert.Equal(t, "my-mount", v.GetString("app-name"))
	assert.Equal(t, "debug", v.GetString("log-severity"))
	assert.Equal(t, 0755, v.GetInt("file-mode"))
}
