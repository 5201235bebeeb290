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
package pool

import (
	"time"

	"github.com/uber/beebox/utils/backoff"
)

// Config configures a Manager.
type Config struct {
	// TargetDepth is the number of Ready containers the pool tries to
	// keep queued up.
	TargetDepth int `yaml:"target_depth"`

	// NamePrefix is prepended to the random 6-character suffix when
	// naming spawned containers.
	NamePrefix string `yaml:"name_prefix"`

	// ReadyTimeout bounds how long a single spawn waits for the
	// container to report Ready.
	ReadyTimeout time.Duration `yaml:"ready_timeout"`

	// Spawn configures the retry backoff scoped to the spawn step.
	Spawn backoff.Config `yaml:"spawn"`
}

func (c *Config) applyDefaults() {
	if c.TargetDepth == 0 {
		c.TargetDepth = 1
	}
	if c.NamePrefix == "" {
		c.NamePrefix = "sandbox-"
	}
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = 60 * time.Second
	}
	if c.Spawn.Min == 0 {
		c.Spawn.Min = 4 * time.Second
	}
	if c.Spawn.Max == 0 {
		c.Spawn.Max = 10 * time.Second
	}
}
