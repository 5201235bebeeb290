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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizePayloadAlias(t *testing.T) {
	require := require.New(t)

	out, err := canonicalizePayload([]byte(`{"sourceCode": "print(1)", "chatId": "c1"}`))
	require.NoError(err)
	require.Equal("print(1)", out["source_code"])
	require.Equal("c1", out["chat_id"])
}

func TestCanonicalizePayloadUnwrapsRequestBody(t *testing.T) {
	require := require.New(t)

	out, err := canonicalizePayload([]byte(`{"requestBody": {"code": "1+1"}}`))
	require.NoError(err)
	require.Equal("1+1", out["source_code"])
}

func TestCanonicalizePayloadRepairsTrailingComma(t *testing.T) {
	require := require.New(t)

	out, err := canonicalizePayload([]byte(`{"chatId": "c1",}`))
	require.NoError(err)
	require.Equal("c1", out["chat_id"])
}

func TestCanonicalizePayloadRepairsSingleQuotesAndUnquotedKeys(t *testing.T) {
	require := require.New(t)

	out, err := canonicalizePayload([]byte(`{chatId: 'c1'}`))
	require.NoError(err)
	require.Equal("c1", out["chat_id"])
}

func TestCanonicalizePayloadRejectsUnrepairable(t *testing.T) {
	require := require.New(t)

	_, err := canonicalizePayload([]byte(`not json at all {{{`))
	require.Error(err)
}

func TestCanonicalizeKeysIdempotent(t *testing.T) {
	require := require.New(t)

	in := map[string]interface{}{
		"sourceCode": "print(1)",
		"nested":     map[string]interface{}{"limitDownloads": 2.0},
	}
	once := canonicalizeKeys(in)
	twice := canonicalizeKeys(once)
	require.Equal(once, twice)
}

func TestCamelToSnake(t *testing.T) {
	require := require.New(t)
	require.Equal("limit_downloads_now", camelToSnake("limitDownloadsNow"))
	require.Equal("a", camelToSnake("a"))
}
