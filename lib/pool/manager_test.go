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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/uber/beebox/lib/cluster"
	"github.com/uber/beebox/utils/backoff"
)

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom = boomError{}

func backoffConfigFast() backoff.Config {
	return backoff.Config{Min: time.Millisecond, Max: 2 * time.Millisecond, NoJitter: true}
}

func fixture(t *testing.T, targetDepth int) (*Manager, *cluster.Fake) {
	fake := cluster.NewFake()
	_, err := fake.Create(context.Background(), cluster.Spec{Name: "beebox-0"})
	require.NoError(t, err)
	_, err = fake.Wait(context.Background(), cluster.KindPod, "beebox-0", cluster.ConditionReady, time.Second)
	require.NoError(t, err)

	m := NewManager(Config{TargetDepth: targetDepth, ReadyTimeout: time.Second}, fake, SelfIdentity{
		Kind: cluster.KindPod,
		Name: "beebox-0",
	})
	return m, fake
}

func TestLeaseSpawnsWhenQueueEmpty(t *testing.T) {
	require := require.New(t)
	m, _ := fixture(t, 1)

	obj, err := m.Lease(context.Background())
	require.NoError(err)
	require.True(obj.Ready)
}

func TestReplenishFillsToTargetDepth(t *testing.T) {
	require := require.New(t)
	m, _ := fixture(t, 3)

	m.Replenish(context.Background())
	require.Equal(3, m.Depth())

	m.Replenish(context.Background())
	require.Equal(3, m.Depth())
}

func TestLeasePopsFromQueueBeforeSpawning(t *testing.T) {
	require := require.New(t)
	m, _ := fixture(t, 2)

	m.Replenish(context.Background())
	require.Equal(2, m.Depth())

	obj, err := m.Lease(context.Background())
	require.NoError(err)
	require.True(obj.Ready)

	// Lease scheduled a background replenish; the queue recovers to the
	// target depth without another lease.
	require.Eventually(func() bool { return m.Depth() == 2 }, time.Second, 5*time.Millisecond)
}

func TestSpawnRetriesOnFailure(t *testing.T) {
	require := require.New(t)
	fake := cluster.NewFake()
	_, err := fake.Create(context.Background(), cluster.Spec{Name: "beebox-0"})
	require.NoError(err)
	_, err = fake.Wait(context.Background(), cluster.KindPod, "beebox-0", cluster.ConditionReady, time.Second)
	require.NoError(err)

	fake.FailCreate = errBoom

	m := NewManager(Config{
		TargetDepth:  1,
		ReadyTimeout: time.Second,
		Spawn:        backoffConfigFast(),
	}, fake, SelfIdentity{Kind: cluster.KindPod, Name: "beebox-0"})

	_, err = m.Lease(context.Background())
	require.Error(err)
}
