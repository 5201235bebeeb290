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

// Package pool maintains a warm queue of Ready sandbox containers so that
// Lease returns immediately in the common case instead of paying pod
// startup latency on every execute call.
package pool

import (
	"context"
	"fmt"
	"sync"

	"github.com/uber/beebox/lib/cluster"
	"github.com/uber/beebox/utils/backoff"
	"github.com/uber/beebox/utils/log"
	"github.com/uber/beebox/utils/randutil"
)

const maxSpawnAttempts = 3

// Manager maintains a FIFO queue of Ready containers, an in-flight spawn
// counter, and a target depth the pool tries to stay at.
//
// Invariants: |Q| + S <= TargetDepth holds after every Replenish call
// returns; every container entering Q has been observed Ready; every
// container handed out of Q is the caller's responsibility to delete.
type Manager struct {
	config       Config
	cluster      cluster.Client
	backoff      *backoff.Backoff
	selfIdentity SelfIdentity

	mu       sync.Mutex
	q        []cluster.Object
	self     *cluster.Object // this process's own container identity, resolved lazily
	inFlight int
}

// SelfIdentity names the container this process is running in, used to
// resolve the owner reference attached to every spawned sandbox.
type SelfIdentity struct {
	Kind string
	Name string
}

// NewManager creates a Manager. self identifies this process's own
// container so spawned sandboxes can be owned by it; it is resolved via
// cluster.Get on first use.
func NewManager(config Config, client cluster.Client, self SelfIdentity) *Manager {
	config.applyDefaults()
	return &Manager{
		config:       config,
		cluster:      client,
		backoff:      backoff.New(config.Spawn),
		selfIdentity: self,
	}
}

// Lease returns a Ready container, popping the queue head if non-empty or
// spawning synchronously otherwise. Either way it schedules a background
// Replenish before returning.
func (m *Manager) Lease(ctx context.Context) (cluster.Object, error) {
	m.mu.Lock()
	var obj cluster.Object
	var err error
	if len(m.q) > 0 {
		obj, m.q = m.q[0], m.q[1:]
	}
	m.mu.Unlock()

	if obj.Name == "" {
		obj, err = m.spawn(ctx)
		if err != nil {
			return cluster.Object{}, err
		}
	}

	go m.Replenish(context.Background())
	return obj, nil
}

// Replenish tops the queue back up to TargetDepth, spawning the shortfall
// in parallel. Spawn failures are logged, not retried here — Lease retries
// on demand by spawning synchronously when the queue runs dry.
func (m *Manager) Replenish(ctx context.Context) {
	m.mu.Lock()
	k := m.config.TargetDepth - len(m.q) - m.inFlight
	if k < 0 {
		k = 0
	}
	m.inFlight += k
	m.mu.Unlock()

	if k == 0 {
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obj, err := m.spawn(ctx)

			m.mu.Lock()
			m.inFlight--
			if err == nil {
				m.q = append(m.q, obj)
			}
			m.mu.Unlock()

			if err != nil {
				log.Warnf("pool: replenish spawn failed: %s", err)
			}
		}()
	}
	wg.Wait()
}

// spawn creates one container, waits for it to become Ready, and retries
// the whole spawn up to maxSpawnAttempts times with exponential backoff.
func (m *Manager) spawn(ctx context.Context) (cluster.Object, error) {
	self, err := m.resolveSelf(ctx)
	if err != nil {
		return cluster.Object{}, fmt.Errorf("pool: resolve self identity: %s", err)
	}

	attempts := m.backoff.Attempts()
	var lastErr error
	for attempt := 1; attempt <= maxSpawnAttempts; attempt++ {
		if !attempts.WaitForNext() {
			break
		}

		obj, err := m.spawnOnce(ctx, self)
		if err == nil {
			return obj, nil
		}
		lastErr = err
		log.Warnf("pool: spawn attempt %d/%d failed: %s", attempt, maxSpawnAttempts, err)
	}
	return cluster.Object{}, fmt.Errorf("pool: spawn failed after %d attempts: %s", maxSpawnAttempts, lastErr)
}

func (m *Manager) spawnOnce(ctx context.Context, self cluster.Object) (cluster.Object, error) {
	name := m.config.NamePrefix + randutil.LowerAlphaNumeric(6)

	created, err := m.cluster.Create(ctx, cluster.Spec{
		Name: name,
		Owner: &cluster.OwnerReference{
			Kind: self.Kind,
			Name: self.Name,
			UID:  self.UID,
		},
	})
	if err != nil {
		return cluster.Object{}, fmt.Errorf("create: %s", err)
	}

	ready, err := m.cluster.Wait(ctx, cluster.KindPod, created.Name, cluster.ConditionReady, m.config.ReadyTimeout)
	if err != nil {
		if delErr := m.cluster.Delete(context.Background(), cluster.KindPod, created.Name); delErr != nil {
			log.Warnf("pool: cleanup of half-created container %s failed: %s", created.Name, delErr)
		}
		return cluster.Object{}, fmt.Errorf("wait ready: %s", err)
	}
	return ready, nil
}

func (m *Manager) resolveSelf(ctx context.Context) (cluster.Object, error) {
	m.mu.Lock()
	if m.self != nil {
		self := *m.self
		m.mu.Unlock()
		return self, nil
	}
	identity := m.selfIdentity
	m.mu.Unlock()

	self, err := m.cluster.Get(ctx, identity.Kind, identity.Name)
	if err != nil {
		return cluster.Object{}, err
	}

	m.mu.Lock()
	m.self = &self
	m.mu.Unlock()
	return self, nil
}

// Depth returns the current queue length, for tests and metrics.
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.q)
}
