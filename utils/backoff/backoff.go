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

// Package backoff implements exponential backoff with an overall retry
// timeout, used by the pool manager's pod spawn retries and the execution
// pipeline's cluster-client retries.
package backoff

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config defines backoff parameters.
type Config struct {
	// Min is the wait before the second attempt.
	Min time.Duration `yaml:"min"`

	// Max caps the wait between any two attempts.
	Max time.Duration `yaml:"max"`

	// Factor is the exponential growth factor applied to Min on each
	// subsequent attempt.
	Factor float64 `yaml:"factor"`

	// NoJitter disables randomizing the wait duration.
	NoJitter bool `yaml:"no_jitter"`

	// RetryTimeout bounds the cumulative wait across all attempts. The
	// first attempt is always allowed regardless of RetryTimeout.
	RetryTimeout time.Duration `yaml:"retry_timeout"`
}

func (c *Config) applyDefaults() {
	if c.Factor == 0 {
		c.Factor = 2
	}
	if c.Max == 0 {
		c.Max = time.Hour
	}
}

// Backoff constructs Attempts iterators sharing the same Config.
type Backoff struct {
	config Config
}

// New creates a new Backoff.
func New(config Config) *Backoff {
	config.applyDefaults()
	return &Backoff{config}
}

func (b *Backoff) wait(attemptsSoFar int) time.Duration {
	d := float64(b.config.Min) * math.Pow(b.config.Factor, float64(attemptsSoFar-1))
	wait := time.Duration(d)
	if wait > b.config.Max {
		wait = b.config.Max
	}
	if !b.config.NoJitter {
		wait = time.Duration(float64(wait) * (0.5 + rand.Float64()*0.5))
	}
	return wait
}

// Attempts returns a fresh retry iterator.
func (b *Backoff) Attempts() *Attempts {
	return &Attempts{b: b, start: time.Now()}
}

// Attempts iterates through a single retry sequence.
type Attempts struct {
	b     *Backoff
	start time.Time
	n     int
	err   error
}

// WaitForNext blocks until the caller should make its next attempt,
// returning false once the retry timeout has been exceeded. The very
// first attempt is always allowed.
func (a *Attempts) WaitForNext() bool {
	if a.err != nil {
		return false
	}
	if a.n == 0 {
		a.n++
		return true
	}
	wait := a.b.wait(a.n)
	if a.b.config.RetryTimeout > 0 && time.Since(a.start)+wait > a.b.config.RetryTimeout {
		a.err = fmt.Errorf("backoff: retry timeout exceeded after %d attempts", a.n)
		return false
	}
	time.Sleep(wait)
	a.n++
	return true
}

// Err returns the error that terminated the sequence, if any.
func (a *Attempts) Err() error {
	return a.err
}
