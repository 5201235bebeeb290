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
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides overlays APP_-prefixed environment variables onto a
// YAML-loaded Config, mirroring the original service's pydantic
// env_prefix="APP_" behavior. Only a fixed, named set of fields is
// overridable -- there is no reflection-driven env-to-struct mapping, so
// adding a new override means adding a line here.
func ApplyEnvOverrides(config *Config) {
	if v, ok := lookupEnv("http_listen_addr"); ok {
		config.Ingress.Listener = v
	}
	if v, ok := lookupEnv("executor_image"); ok {
		config.Cluster.Image = v
	}
	if v, ok := lookupEnv("executor_pod_name_prefix"); ok {
		config.Pool.NamePrefix = v
	}
	if v, ok := lookupEnvInt("executor_pod_queue_target_length"); ok {
		config.Pool.TargetDepth = v
	}
	if v, ok := lookupEnv("file_storage_path"); ok {
		config.ObjectStore.Root = v
	}
	if v, ok := lookupEnv("file_size_limit"); ok {
		config.Ingress.MaxUploadSize = v
	}
	if v, ok := lookupEnvInt64("global_max_downloads"); ok {
		config.Pipeline.DefaultMaxDownloads = v
	}
	if v, ok := lookupEnvBool("public_spawn_enabled"); ok {
		config.Ingress.PublicSpawnEnabled = v
	}
	if v, ok := lookupEnvList("internal_host_allowlist"); ok {
		config.Ingress.AllowedHosts = v
	}
	if v, ok := lookupEnvList("internal_ip_allowlist"); ok {
		config.Ingress.AllowedCIDRs = v
	}
	if v, ok := lookupEnvBool("require_chat_id"); ok {
		config.Ingress.RequireChatID = v
	}
}

const envPrefix = "APP_"

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + strings.ToUpper(name))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func lookupEnvBool(name string) (bool, bool) {
	v, ok := lookupEnv(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func lookupEnvInt(name string) (int, bool) {
	v, ok := lookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupEnvInt64(name string) (int64, bool) {
	v, ok := lookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// lookupEnvList splits a comma-separated env value into a slice,
// trimming whitespace around each entry.
func lookupEnvList(name string) ([]string, bool) {
	v, ok := lookupEnv(name)
	if !ok {
		return nil, false
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
