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

// Package randutil provides cryptographically random tokens used to
// allocate opaque object-store handles and container name suffixes.
package randutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const lowerAlphaNumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// Hex returns a random hex string encoding n random bytes.
func Hex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("randutil: read random bytes: %s", err))
	}
	return hex.EncodeToString(b)
}

// LowerAlphaNumeric returns a random string of length n drawn from
// [a-z0-9], suitable for use as a Kubernetes name suffix.
func LowerAlphaNumeric(n int) string {
	idx := make([]byte, n)
	if _, err := rand.Read(idx); err != nil {
		panic(fmt.Sprintf("randutil: read random bytes: %s", err))
	}
	out := make([]byte, n)
	for i, b := range idx {
		out[i] = lowerAlphaNumeric[int(b)%len(lowerAlphaNumeric)]
	}
	return string(out)
}
