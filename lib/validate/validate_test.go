// Copyright (c) 2016-2019 Uber Technologies, Inc.
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
package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsHash(t *testing.T) {
	require.True(t, IsHash("abc123_-"))
	require.False(t, IsHash(""))
	require.False(t, IsHash("has a space"))
	require.False(t, IsHash("has/slash"))
}

func TestIsFilename(t *testing.T) {
	require.True(t, IsFilename("report.final-v2.txt"))
	require.False(t, IsFilename(""))
	require.False(t, IsFilename("../escape"))
}

func TestIsAbsolutePath(t *testing.T) {
	require.True(t, IsAbsolutePath("/workspace/out.txt"))
	require.False(t, IsAbsolutePath("relative/path"))
	require.False(t, IsAbsolutePath("/"))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"3s", 3 * time.Second},
		{"7d", 7 * 24 * time.Hour},
		{" 2 W ", 14 * 24 * time.Hour},
		{"5H", 5 * time.Hour},
		{"10m", 10 * time.Minute},
	}
	for _, tt := range tests {
		d, err := ParseDuration(tt.in)
		require.NoError(t, err)
		require.NotNil(t, d)
		require.Equal(t, tt.want, *d)
	}
}

func TestParseDurationEmpty(t *testing.T) {
	d, err := ParseDuration("")
	require.NoError(t, err)
	require.Nil(t, d)

	d, err = ParseDuration("   ")
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestParseDurationInvalid(t *testing.T) {
	_, err := ParseDuration("bogus")
	require.Error(t, err)

	_, err = ParseDuration("3x")
	require.Error(t, err)

	_, err = ParseDuration("-3s")
	require.Error(t, err)
}
