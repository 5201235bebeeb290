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

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Fake is an in-memory Client for tests. Created objects start out not
// Ready; Wait marks them Ready immediately unless ReadyDelay or
// FailCreate/FailWait are configured.
type Fake struct {
	mu      sync.Mutex
	objects map[string]Object
	seq     int

	// ReadyDelay, if set, is how long Wait blocks before reporting an
	// object Ready, to exercise timeout paths.
	ReadyDelay time.Duration

	// FailCreate, if non-nil, is returned by Create instead of creating
	// the object.
	FailCreate error

	// FailWait, if non-nil, is returned by Wait instead of reporting
	// readiness.
	FailWait error

	// IP is assigned to every created object; defaults to 10.0.0.1 so
	// tests that don't care about the address still get a stable one.
	// Tests pointing the pipeline at an httptest server set this to
	// that server's host:port.
	IP string
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{objects: make(map[string]Object)}
}

func (f *Fake) Get(ctx context.Context, kind, name string) (Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key(kind, name)]
	if !ok {
		return Object{}, fmt.Errorf("cluster: %s/%s not found", kind, name)
	}
	return obj, nil
}

func (f *Fake) Create(ctx context.Context, spec Spec) (Object, error) {
	if f.FailCreate != nil {
		return Object{}, f.FailCreate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	name := spec.Name
	if name == "" {
		f.seq++
		name = fmt.Sprintf("%sfake%d", spec.GenerateName, f.seq)
	}
	ip := f.IP
	if ip == "" {
		ip = "10.0.0.1"
	}
	obj := Object{
		Kind:      spec.Kind(),
		Name:      name,
		Namespace: "default",
		UID:       fmt.Sprintf("uid-%s", name),
		IP:        ip,
		Ready:     false,
	}
	f.objects[key(obj.Kind, obj.Name)] = obj
	return obj, nil
}

func (f *Fake) Wait(ctx context.Context, kind, name, condition string, timeout time.Duration) (Object, error) {
	if f.FailWait != nil {
		return Object{}, f.FailWait
	}
	if f.ReadyDelay > timeout {
		return Object{}, fmt.Errorf("cluster: timed out waiting for %s/%s %s", kind, name, condition)
	}
	if f.ReadyDelay > 0 {
		select {
		case <-time.After(f.ReadyDelay):
		case <-ctx.Done():
			return Object{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key(kind, name)]
	if !ok {
		return Object{}, fmt.Errorf("cluster: %s/%s not found", kind, name)
	}
	obj.Ready = true
	f.objects[key(kind, name)] = obj
	return obj, nil
}

func (f *Fake) Delete(ctx context.Context, kind, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key(kind, name))
	return nil
}

func key(kind, name string) string {
	return kind + "/" + name
}
