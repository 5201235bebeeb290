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
	"io/ioutil"
)

// minimalSchema is a deliberately small subset of JSON Schema -- just
// "required" and per-property "type" -- sufficient to reject payloads
// missing mandatory fields or carrying the wrong shape, without pulling in
// a full validator for a check that's optional and off by default.
type minimalSchema struct {
	Required   []string                  `json:"required"`
	Properties map[string]schemaProperty `json:"properties"`
}

type schemaProperty struct {
	Type string `json:"type"`
}

func validateAgainstSchema(path string, payload map[string]interface{}) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %s", err)
	}
	var schema minimalSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return fmt.Errorf("parse schema: %s", err)
	}

	for _, field := range schema.Required {
		if _, ok := payload[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}

	for field, prop := range schema.Properties {
		v, ok := payload[field]
		if !ok || prop.Type == "" {
			continue
		}
		if !matchesType(v, prop.Type) {
			return fmt.Errorf("field %q: expected type %q", field, prop.Type)
		}
	}
	return nil
}

func matchesType(v interface{}, t string) bool {
	switch t {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		_, ok := v.(float64)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]interface{})
		return ok
	case "array":
		_, ok := v.([]interface{})
		return ok
	default:
		return true
	}
}
