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

// repairJSON is a best-effort pass over near-JSON produced by LLM-style
// callers that forget to quote keys, use single quotes, or leave a
// trailing comma before a closing bracket. It is not a general JSON5
// parser -- it only fixes the handful of malformations the original
// service's client population is known to produce, and the repaired
// output is still run back through encoding/json, which rejects anything
// left broken.
package ingress

import (
	"regexp"
)

var (
	trailingComma  = regexp.MustCompile(`,(\s*[}\]])`)
	singleQuoted   = regexp.MustCompile(`'([^'\\]*(?:\\.[^'\\]*)*)'`)
	unquotedObjKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
)

func repairJSON(raw []byte) ([]byte, error) {
	s := string(raw)
	s = singleQuoted.ReplaceAllString(s, `"$1"`)
	s = unquotedObjKey.ReplaceAllString(s, `$1"$2"$3`)
	s = trailingComma.ReplaceAllString(s, "$1")
	return []byte(s), nil
}
