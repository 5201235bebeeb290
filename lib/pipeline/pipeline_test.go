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
package pipeline

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/uber/beebox/lib/cluster"
	"github.com/uber/beebox/lib/fileindex"
	"github.com/uber/beebox/lib/objectstore"
	"github.com/uber/beebox/lib/pool"
)

func newTestPipeline(t *testing.T, config Config, runner http.Handler) (*Pipeline, *objectstore.Store, fileindex.Index, func()) {
	srv := httptest.NewServer(runner)

	store, storeCleanup := objectstore.Fixture()
	index, _, indexCleanup := fileindex.Fixture()

	fake := cluster.NewFake()
	fake.IP = strings.TrimPrefix(srv.URL, "http://")
	_, err := fake.Create(nil, cluster.Spec{Name: "beebox-0"})
	require.NoError(t, err)
	_, err = fake.Wait(nil, cluster.KindPod, "beebox-0", cluster.ConditionReady, time.Second)
	require.NoError(t, err)

	p := pool.NewManager(pool.Config{TargetDepth: 1, ReadyTimeout: time.Second}, fake, pool.SelfIdentity{
		Kind: cluster.KindPod, Name: "beebox-0",
	})

	pipeline := New(config, p, fake, store, index)

	cleanup := func() {
		srv.Close()
		storeCleanup()
		indexCleanup()
	}
	return pipeline, store, index, cleanup
}

func TestExecuteRunsSnippetAndReturnsOutput(t *testing.T) {
	require := require.New(t)

	runner := http.NewServeMux()
	runner.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		var body runnerRequest
		require.NoError(json.NewDecoder(r.Body).Decode(&body))
		require.Equal("print(1)", body.SourceCode)

		json.NewEncoder(w).Encode(runnerResponse{
			Stdout:   "1\n",
			ExitCode: 0,
		})
	})

	p, _, _, cleanup := newTestPipeline(t, Config{}, runner)
	defer cleanup()

	result, err := p.Execute(Request{
		ChatID:     "chat1",
		SourceCode: "print(1)",
	})
	require.NoError(err)
	require.Equal("1\n", result.Stdout)
	require.Equal(0, result.ExitCode)
}

func TestExecuteStagesInputFiles(t *testing.T) {
	require := require.New(t)

	var gotBody []byte
	runner := http.NewServeMux()
	runner.HandleFunc("/workspace/input.txt", func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = ioutil.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})
	runner.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(runnerResponse{ExitCode: 0})
	})

	p, store, _, cleanup := newTestPipeline(t, Config{}, runner)
	defer cleanup()

	w, err := store.NewWriter("chat1", "input.txt")
	require.NoError(err)
	_, err = w.Write([]byte("hello"))
	require.NoError(err)
	require.NoError(w.Commit())

	_, err = p.Execute(Request{
		ChatID:     "chat1",
		SourceCode: "noop",
		Files: map[string]FileHandle{
			"input.txt": {FileHash: w.Hash(), Filename: "input.txt"},
		},
	})
	require.NoError(err)
	require.Equal("hello", string(gotBody))
}

func TestExecuteHarvestsOutputFiles(t *testing.T) {
	require := require.New(t)

	runner := http.NewServeMux()
	runner.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(runnerResponse{
			ExitCode: 0,
			Files:    []string{"/workspace/output.txt"},
		})
	})
	runner.HandleFunc("/workspace/output.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("result data"))
	})

	p, _, _, cleanup := newTestPipeline(t, Config{}, runner)
	defer cleanup()

	result, err := p.Execute(Request{
		ChatID:              "chat1",
		SourceCode:          "write output",
		PersistentWorkspace: true,
	})
	require.NoError(err)
	require.Len(result.Files, 1)
	require.Equal("output.txt", result.Files["/workspace/output.txt"].Filename)
	require.Equal("chat1", result.ChatID)
	require.Equal("output.txt", result.FilesMetadata["/workspace/output.txt"].Filename)
}

func TestHarvestRegistersGlobalDefaultQuotaAndNoExpiry(t *testing.T) {
	require := require.New(t)

	runner := http.NewServeMux()
	runner.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(runnerResponse{
			ExitCode: 0,
			Files:    []string{"/workspace/output.txt"},
		})
	})
	runner.HandleFunc("/workspace/output.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("result data"))
	})

	p, _, index, cleanup := newTestPipeline(t, Config{DefaultMaxDownloads: 5}, runner)
	defer cleanup()

	result, err := p.Execute(Request{
		ChatID:              "chat1",
		SourceCode:          "write output",
		PersistentWorkspace: true,
	})
	require.NoError(err)

	handle := result.Files["/workspace/output.txt"]
	info, err := index.GetInfo(handle.FileHash, "chat1", handle.Filename)
	require.NoError(err)
	require.NotNil(info.RemainingDownloads)
	require.EqualValues(5, *info.RemainingDownloads)
	require.Nil(info.ExpiresAt)
}

func TestExecuteRunnerErrorIsNotRetried(t *testing.T) {
	require := require.New(t)

	calls := 0
	runner := http.NewServeMux()
	runner.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	p, _, _, cleanup := newTestPipeline(t, Config{}, runner)
	defer cleanup()

	_, err := p.Execute(Request{ChatID: "chat1", SourceCode: "boom"})
	require.Error(err)
	require.Equal(1, calls)
}
