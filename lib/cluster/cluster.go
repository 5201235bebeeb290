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

// Package cluster is a narrow façade over the orchestrator that the pool
// manager and execution pipeline use to spawn, observe, and tear down
// sandbox containers. It never exposes the underlying client so the rest
// of the service stays orchestrator-agnostic.
package cluster

import (
	"context"
	"time"
)

// Object identifies a cluster-managed object by kind and name within the
// configured namespace.
type Object struct {
	Kind string
	Name string

	// Namespace is populated on objects returned by Get/Create; callers
	// constructing a Spec for Create may leave it empty to use the
	// client's configured namespace.
	Namespace string

	// UID is populated on objects returned by Get/Create, and is what
	// OwnerReference needs to point Create at an owning object.
	UID string

	// IP is the pod IP, populated once the object is Running.
	IP string

	// Ready reports the last-observed readiness condition.
	Ready bool

	// Failed reports that the object reached a terminal state from which
	// it can never become Ready, e.g. a pod whose phase is Failed.
	Failed bool
}

// OwnerReference points a created object back at the container that owns
// it, so that deleting the owner cascades to every object it spawned.
type OwnerReference struct {
	Kind string
	Name string
	UID  string
}

// Spec describes the container to create.
type Spec struct {
	Name         string
	GenerateName string
	Image        string
	Owner        *OwnerReference
	Labels       map[string]string
	Env          map[string]string
}

// Client is the façade every cluster implementation satisfies. All
// operations are cancellable via ctx.
type Client interface {
	// Get fetches an object by kind and name.
	Get(ctx context.Context, kind, name string) (Object, error)

	// Create creates an object from spec and returns its identity. It
	// does not wait for readiness; callers use Wait for that.
	Create(ctx context.Context, spec Spec) (Object, error)

	// Wait blocks until the named object reports condition, or ctx is
	// cancelled, or timeout elapses, whichever comes first. A negative
	// condition report (e.g. the pod entered a terminal failed phase)
	// returns an error without waiting for the timeout.
	Wait(ctx context.Context, kind, name, condition string, timeout time.Duration) (Object, error)

	// Delete idempotently, best-effort deletes the named object. A
	// missing object is not an error.
	Delete(ctx context.Context, kind, name string) error
}

// ConditionReady is the condition Wait is typically called with: the pod
// has entered Running phase and its Ready status condition is true.
const ConditionReady = "Ready"

// KindPod is the only kind this service currently manages.
const KindPod = "Pod"
