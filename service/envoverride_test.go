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
package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverrides(t *testing.T) {
	require := require.New(t)

	t.Setenv("APP_HTTP_LISTEN_ADDR", ":9999")
	t.Setenv("APP_EXECUTOR_IMAGE", "registry/sandbox:latest")
	t.Setenv("APP_EXECUTOR_POD_QUEUE_TARGET_LENGTH", "7")
	t.Setenv("APP_GLOBAL_MAX_DOWNLOADS", "3")
	t.Setenv("APP_PUBLIC_SPAWN_ENABLED", "true")
	t.Setenv("APP_INTERNAL_HOST_ALLOWLIST", "a.internal, b.internal")
	t.Setenv("APP_REQUIRE_CHAT_ID", "true")

	var config Config
	ApplyEnvOverrides(&config)

	require.Equal(":9999", config.Ingress.Listener)
	require.Equal("registry/sandbox:latest", config.Cluster.Image)
	require.Equal(7, config.Pool.TargetDepth)
	require.EqualValues(3, config.Pipeline.DefaultMaxDownloads)
	require.True(config.Ingress.PublicSpawnEnabled)
	require.Equal([]string{"a.internal", "b.internal"}, config.Ingress.AllowedHosts)
	require.True(config.Ingress.RequireChatID)
}

func TestApplyEnvOverridesLeavesDefaultsWhenUnset(t *testing.T) {
	require := require.New(t)

	var config Config
	config.Ingress.Listener = ":7800"
	ApplyEnvOverrides(&config)

	require.Equal(":7800", config.Ingress.Listener)
	require.False(config.Ingress.PublicSpawnEnabled)
}
