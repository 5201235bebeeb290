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

// Package reaper runs the file index's expiry sweep on a fixed interval.
// It tombstones time-expired records that still have downloads left; it
// never deletes blobs from disk.
package reaper

import (
	"time"

	"github.com/uber/beebox/lib/fileindex"
	"github.com/uber/beebox/utils/log"
)

// DefaultInterval is how often CleanupExpired runs when Config.Interval is
// left unset.
const DefaultInterval = 3 * time.Hour

// Config configures a Reaper.
type Config struct {
	Interval time.Duration `yaml:"interval"`
}

func (c *Config) applyDefaults() {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
}

// Reaper periodically sweeps an Index for expired records.
type Reaper struct {
	config Config
	index  fileindex.Index
	stop   chan struct{}
	done   chan struct{}
}

// New creates a Reaper over index.
func New(config Config, index fileindex.Index) *Reaper {
	config.applyDefaults()
	return &Reaper{
		config: config,
		index:  index,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the sweep loop in a background goroutine until Stop is
// called. Errors from a sweep are logged and swallowed -- a failed sweep
// just means expired records live a little longer, not a request failure.
func (r *Reaper) Start() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop signals the sweep loop to exit and blocks until it has.
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Reaper) sweep() {
	n, err := r.index.CleanupExpired()
	if err != nil {
		log.Warnf("reaper: cleanup sweep failed: %s", err)
		return
	}
	if n > 0 {
		log.Infof("reaper: tombstoned %d expired records", n)
	}
}
