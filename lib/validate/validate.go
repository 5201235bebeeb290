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

// Package validate provides the syntactic predicates shared by the file
// index and ingress front-end: hash/chat-id/filename patterns,
// workspace path shape, and duration literal parsing.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	idPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)
	filenamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,255}$`)
	absPathPattern  = regexp.MustCompile(`^/[^/].*$`)
	durationPattern = regexp.MustCompile(`^\s*(\d+)\s*([sSmMhHdDwW])\s*$`)
)

var durationUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// IsHash reports whether s is a syntactically valid file hash.
func IsHash(s string) bool {
	return idPattern.MatchString(s)
}

// IsChatID reports whether s is a syntactically valid chat id.
func IsChatID(s string) bool {
	return idPattern.MatchString(s)
}

// IsFilename reports whether s is a syntactically valid filename.
func IsFilename(s string) bool {
	return filenamePattern.MatchString(s)
}

// IsAbsolutePath reports whether s is an absolute, non-root workspace path.
func IsAbsolutePath(s string) bool {
	return absPathPattern.MatchString(s)
}

// ParseDuration parses a duration literal of the form "<integer><unit>",
// where unit is one of s, m, h, d, w (case-insensitive), with optional
// surrounding whitespace. An empty or all-whitespace input returns a nil
// duration, meaning "no expiry". Any other malformed input is an error.
func ParseDuration(s string) (*time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid duration literal: %q", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration literal: %q: %s", s, err)
	}
	unit := durationUnits[strings.ToLower(m[2])[0]]
	d := time.Duration(n) * unit
	return &d, nil
}
