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
package healthcheck

import "time"

// Config defines Monitor configuration.
type Config struct {
	// Timeout bounds how long a single readiness sweep may take before the
	// slowest check is considered failed.
	Timeout time.Duration `yaml:"timeout"`

	// CacheTTL is how long a successful readiness result is reused before
	// the checks are re-run. Zero disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}
