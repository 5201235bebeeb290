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
package ingress

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// aliasTable maps caller-supplied key spellings to the canonical field
// name, checked before the generic camelCase->snake_case fallback.
var aliasTable = map[string]string{
	"sourceCode":      "source_code",
	"code":            "source_code",
	"timeoutSeconds":  "timeout",
	"limitDownloads":  "limit",
}

// canonicalizePayload parses raw into a canonical map keyed by snake_case
// field names, tolerating malformed JSON via a lenient repair pass and
// unwrapping a sole top-level "requestBody" key.
func canonicalizePayload(raw []byte) (map[string]interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		repaired, repairErr := repairJSON(raw)
		if repairErr != nil {
			return nil, fmt.Errorf("parse payload: %s", err)
		}
		if err := json.Unmarshal(repaired, &decoded); err != nil {
			return nil, fmt.Errorf("parse repaired payload: %s", err)
		}
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("payload must be a JSON object")
	}

	if inner, ok := soleKey(obj, "requestBody"); ok {
		nested, ok := inner.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("requestBody must be a JSON object")
		}
		obj = nested
	}

	return canonicalizeKeys(obj).(map[string]interface{}), nil
}

func soleKey(obj map[string]interface{}, key string) (interface{}, bool) {
	if len(obj) != 1 {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok
}

// canonicalizeKeys recursively renames object keys via aliasTable, falling
// back to camelCase->snake_case for anything not in the table.
func canonicalizeKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[canonicalKey(k)] = canonicalizeKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = canonicalizeKeys(val)
		}
		return out
	default:
		return v
	}
}

func canonicalKey(k string) string {
	if alias, ok := aliasTable[k]; ok {
		return alias
	}
	return camelToSnake(k)
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
