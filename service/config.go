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

// Package service assembles the per-component Config structs into the
// one root configuration loaded at startup, and wires every component
// together into a running process.
package service

import (
	"go.uber.org/zap"

	"github.com/uber/beebox/ingress"
	"github.com/uber/beebox/lib/cluster"
	"github.com/uber/beebox/lib/healthcheck"
	"github.com/uber/beebox/lib/objectstore"
	"github.com/uber/beebox/lib/pipeline"
	"github.com/uber/beebox/lib/pool"
	"github.com/uber/beebox/lib/reaper"
	"github.com/uber/beebox/lib/tracing"
	"github.com/uber/beebox/localdb"
	"github.com/uber/beebox/metrics"
)

// Config is the root configuration, assembled from every component's own
// Config struct.
type Config struct {
	ZapLogging  zap.Config         `yaml:"zap"`
	Metrics     metrics.Config     `yaml:"metrics"`
	LocalDB     localdb.Config     `yaml:"localdb"`
	ObjectStore objectstore.Config `yaml:"objectstore"`
	Cluster     cluster.Config     `yaml:"cluster"`
	Pool        pool.Config        `yaml:"pool"`
	Pipeline    pipeline.Config    `yaml:"pipeline"`
	Ingress     ingress.Config     `yaml:"ingress"`
	HealthCheck healthcheck.Config `yaml:"healthcheck"`
	Reaper      reaper.Config      `yaml:"reaper"`
	Tracing     tracing.Config     `yaml:"tracing"`

	// SelfKind/SelfName identify this process's own pod, used to own
	// spawned sandbox containers. Left empty outside Kubernetes (e.g.
	// tests), where the pool's self-lookup is never exercised.
	SelfKind string `yaml:"self_kind"`
	SelfName string `yaml:"self_name"`
}
