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
package cluster

import "time"

// Config configures the Kubernetes-backed Client.
type Config struct {
	// Namespace is the namespace sandbox containers are created in.
	Namespace string `yaml:"namespace"`

	// Image is the sandbox container image.
	Image string `yaml:"image"`

	// FieldManager is the field owner name recorded on the pods this
	// service creates.
	FieldManager string `yaml:"field_manager"`

	// PollInterval is how often Wait re-checks object status.
	PollInterval time.Duration `yaml:"poll_interval"`
}

func (c *Config) applyDefaults() {
	if c.FieldManager == "" {
		c.FieldManager = "beebox"
	}
	if c.PollInterval == 0 {
		c.PollInterval = 250 * time.Millisecond
	}
}
