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

// Package healthcheck aggregates a set of named readiness probes, running
// them concurrently with a bounded timeout, and caches the last successful
// result for CacheTTL so that frequent readiness polling does not re-run
// expensive checks on every call.
package healthcheck

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uber/beebox/utils/errutil"
)

// Check is a single named readiness probe.
type Check struct {
	Name string
	Run  func() error
}

// Monitor runs a fixed set of Checks on demand, concurrently, and caches a
// successful result.
type Monitor struct {
	config Config
	checks []Check

	mu       sync.RWMutex
	lastOK   time.Time
	lastErrs []string
}

// NewMonitor creates a Monitor over checks.
func NewMonitor(config Config, checks ...Check) *Monitor {
	config.applyDefaults()
	return &Monitor{config: config, checks: checks}
}

// Probe runs every check concurrently, bounded by config.Timeout, and
// returns a combined error naming every check that failed or did not
// complete in time. A cached success within config.CacheTTL short-circuits
// re-running the checks.
func (m *Monitor) Probe() error {
	if m.config.CacheTTL > 0 {
		m.mu.RLock()
		cached := m.lastOK.Add(m.config.CacheTTL).After(time.Now())
		m.mu.RUnlock()
		if cached {
			return nil
		}
	}

	type result struct {
		idx  int
		name string
		err  error
	}

	results := make(chan result, len(m.checks))
	for i, c := range m.checks {
		i, c := i, c
		go func() {
			results <- result{i, c.name(), c.Run()}
		}()
	}

	var failed []error
	done := make([]bool, len(m.checks))
	timeout := time.After(m.config.Timeout)
	for i := 0; i < len(m.checks); i++ {
		select {
		case r := <-results:
			done[r.idx] = true
			if r.err != nil {
				failed = append(failed, fmt.Errorf("%s: %s", r.name, r.err))
			}
		case <-timeout:
			for j, c := range m.checks {
				if !done[j] {
					failed = append(failed, fmt.Errorf("%s: timed out after %s", c.name(), m.config.Timeout))
				}
			}
			m.record(failed)
			return fmt.Errorf("readiness: %s", errutil.Join(sorted(failed)))
		}
	}

	m.record(failed)
	if err := errutil.Join(sorted(failed)); err != nil {
		return fmt.Errorf("readiness: %s", err)
	}
	return nil
}

func sorted(errs []error) []error {
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errs
}

func (m *Monitor) record(failed []error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErrs = make([]string, len(failed))
	for i, err := range failed {
		m.lastErrs[i] = err.Error()
	}
	if len(failed) == 0 {
		m.lastOK = time.Now()
	}
}

func (c Check) name() string {
	if c.Name == "" {
		return "unnamed"
	}
	return c.Name
}
