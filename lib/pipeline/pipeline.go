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

// Package pipeline runs one code-execution request end to end over a
// leased sandbox container: staging input files in, invoking the runner,
// harvesting any produced files back into the object store, and retiring
// the container.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uber/beebox/lib/cluster"
	"github.com/uber/beebox/lib/fileindex"
	"github.com/uber/beebox/lib/objectstore"
	"github.com/uber/beebox/lib/pool"
	"github.com/uber/beebox/lib/tracing"
	"github.com/uber/beebox/utils/backoff"
	"github.com/uber/beebox/utils/closers"
	"github.com/uber/beebox/utils/httputil"
	"github.com/uber/beebox/utils/log"
)

const maxExecuteAttempts = 3

// FileHandle identifies a blob already resident in the object store.
type FileHandle struct {
	FileHash string `json:"file_hash"`
	Filename string `json:"filename"`
}

// Request is one code-execution request. Files harvested back into the
// object store when PersistentWorkspace is set are always registered with
// the global default download quota and no time expiry.
type Request struct {
	ChatID              string
	SourceCode          string
	Files               map[string]FileHandle // workspace path -> input handle
	Env                 map[string]string
	PersistentWorkspace bool
}

// Result is what the runner reported, with Files replaced by durable
// object-store handles when PersistentWorkspace harvested them.
type Result struct {
	Stdout   string                `json:"stdout"`
	Stderr   string                `json:"stderr"`
	ExitCode int                   `json:"exit_code"`
	Files    map[string]FileHandle `json:"files"`

	// FilesMetadata mirrors Files, keyed the same way, with the full
	// index record for each harvested file so a caller doesn't need a
	// second round trip to learn its download quota/expiry.
	FilesMetadata map[string]*fileindex.Info `json:"files_metadata,omitempty"`
	ChatID        string                     `json:"chat_id"`
}

// runnerRequest is the body POSTed to the in-pod runner.
type runnerRequest struct {
	SourceCode string            `json:"source_code"`
	Env        map[string]string `json:"env"`
}

// runnerResponse is the body returned by the in-pod runner.
type runnerResponse struct {
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	ExitCode int      `json:"exit_code"`
	Files    []string `json:"files"`
}

// Config configures a Pipeline.
type Config struct {
	// DefaultMaxDownloads is applied to files harvested back into the
	// object store.
	DefaultMaxDownloads int64 `yaml:"default_max_downloads"`

	// Retry configures the whole-operation retry scoped to cluster
	// client failures (not runner HTTP errors).
	Retry backoff.Config `yaml:"retry"`
}

func (c *Config) applyDefaults() {
	if c.DefaultMaxDownloads == 0 {
		c.DefaultMaxDownloads = 1
	}
	if c.Retry.Min == 0 {
		c.Retry.Min = time.Second
	}
}

// Pipeline wires a lease pool, the object store, and the file index
// together to execute requests.
type Pipeline struct {
	config  Config
	pool    *pool.Manager
	cluster cluster.Client
	store   *objectstore.Store
	index   fileindex.Index
	backoff *backoff.Backoff

	// transport carries trace context on every round trip to the in-pod
	// runner.
	transport http.RoundTripper
}

// New creates a Pipeline.
func New(config Config, p *pool.Manager, c cluster.Client, store *objectstore.Store, index fileindex.Index) *Pipeline {
	config.applyDefaults()
	return &Pipeline{
		config:    config,
		pool:      p,
		cluster:   c,
		store:     store,
		index:     index,
		backoff:   backoff.New(config.Retry),
		transport: tracing.NewHTTPTransport(nil),
	}
}

// Execute runs req to completion, retrying the whole operation on transient
// cluster-client failures. HTTP errors returned by the in-container runner
// reflect user code and are not retried.
func (p *Pipeline) Execute(req Request) (*Result, error) {
	attempts := p.backoff.Attempts()
	var lastErr error
	for attempt := 1; attempt <= maxExecuteAttempts; attempt++ {
		if !attempts.WaitForNext() {
			break
		}

		result, err := p.executeOnce(req)
		if err == nil {
			return result, nil
		}
		if !isTransientClusterError(err) {
			return nil, err
		}
		lastErr = err
		log.Warnf("pipeline: execute attempt %d/%d failed: %s", attempt, maxExecuteAttempts, err)
	}
	return nil, fmt.Errorf("pipeline: execute failed after retries: %s", lastErr)
}

func (p *Pipeline) executeOnce(req Request) (result *Result, err error) {
	container, err := p.pool.Lease(context.Background())
	if err != nil {
		return nil, clusterErrorf("lease container: %s", err)
	}

	defer func() {
		go func() {
			if delErr := p.cluster.Delete(context.Background(), cluster.KindPod, container.Name); delErr != nil {
				log.Warnf("pipeline: retire container %s failed: %s", container.Name, delErr)
			}
		}()
	}()

	base := "http://" + container.IP
	if !strings.Contains(container.IP, ":") {
		base += ":8000"
	}

	if err := p.stageInputs(base, req); err != nil {
		return nil, err
	}

	runnerResp, err := p.invokeRunner(base, req)
	if err != nil {
		return nil, err
	}

	result = &Result{
		Stdout:   runnerResp.Stdout,
		Stderr:   runnerResp.Stderr,
		ExitCode: runnerResp.ExitCode,
		ChatID:   req.ChatID,
	}

	if req.PersistentWorkspace && len(runnerResp.Files) > 0 {
		harvested, metadata, err := p.harvest(base, req, runnerResp.Files)
		if err != nil {
			return nil, err
		}
		result.Files = harvested
		result.FilesMetadata = metadata
	}

	return result, nil
}

// stageInputs opens a privileged reader scope over the object store for
// each input file -- bypassing the public download-quota decrement, since
// this read is the service executing the user's own request rather than a
// third party downloading -- and streams it into the container's
// workspace, all uploads proceeding concurrently.
func (p *Pipeline) stageInputs(base string, req Request) error {
	var g errgroup.Group
	for path, handle := range req.Files {
		path, handle := path, handle
		g.Go(func() error {
			r, err := p.store.NewReader(req.ChatID, handle.FileHash, handle.Filename)
			if err != nil {
				return fmt.Errorf("stage %s: open blob: %s", path, err)
			}
			defer closers.Close(r)

			// Streamed by hand rather than via httputil, which buffers
			// request bodies for retries. Staged inputs can be large and
			// are never retried at this layer.
			url := fmt.Sprintf("%s/workspace/%s", base, strings.TrimPrefix(path, "/workspace/"))
			httpReq, err := http.NewRequest(http.MethodPut, url, r)
			if err != nil {
				return fmt.Errorf("stage %s: new request: %s", path, err)
			}
			resp, err := (&http.Client{Transport: p.transport}).Do(httpReq)
			if err != nil {
				return fmt.Errorf("stage %s: put: %s", path, err)
			}
			defer closers.Close(resp.Body)
			if resp.StatusCode != http.StatusOK &&
				resp.StatusCode != http.StatusCreated &&
				resp.StatusCode != http.StatusNoContent {
				return fmt.Errorf("stage %s: put: %s", path, httputil.NewStatusError(resp))
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) invokeRunner(base string, req Request) (*runnerResponse, error) {
	body, err := json.Marshal(runnerRequest{SourceCode: req.SourceCode, Env: req.Env})
	if err != nil {
		return nil, fmt.Errorf("marshal runner request: %s", err)
	}

	resp, err := httputil.Post(
		base+"/execute",
		httputil.SendBody(bytes.NewReader(body)),
		httputil.SendTransport(p.transport))
	if err != nil {
		return nil, err
	}
	defer closers.Close(resp.Body)

	var out runnerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode runner response: %s", err)
	}
	return &out, nil
}

func (p *Pipeline) harvest(base string, req Request, paths []string) (map[string]FileHandle, map[string]*fileindex.Info, error) {
	var mu sync.Mutex
	out := make(map[string]FileHandle, len(paths))
	metadata := make(map[string]*fileindex.Info, len(paths))

	var g errgroup.Group
	for _, path := range paths {
		path := path
		g.Go(func() error {
			filename := path
			if i := strings.LastIndex(path, "/"); i >= 0 {
				filename = path[i+1:]
			}

			resp, err := httputil.Get(
				fmt.Sprintf("%s/workspace/%s", base, strings.TrimPrefix(path, "/workspace/")),
				httputil.SendTransport(p.transport))
			if err != nil {
				return fmt.Errorf("harvest %s: get: %s", path, err)
			}
			defer closers.Close(resp.Body)

			w, err := p.store.NewWriter(req.ChatID, filename)
			if err != nil {
				return fmt.Errorf("harvest %s: open writer: %s", path, err)
			}
			if _, err := objectstore.CopyChunked(w, resp.Body); err != nil {
				w.Cancel()
				return fmt.Errorf("harvest %s: copy: %s", path, err)
			}
			if err := w.Commit(); err != nil {
				return fmt.Errorf("harvest %s: commit: %s", path, err)
			}

			// Harvested files always get the global default download
			// quota and no time expiry.
			if err := p.index.Register(w.Hash(), req.ChatID, filename, p.config.DefaultMaxDownloads, ""); err != nil {
				return fmt.Errorf("harvest %s: register: %s", path, err)
			}
			info, err := p.index.GetInfo(w.Hash(), req.ChatID, filename)
			if err != nil {
				return fmt.Errorf("harvest %s: load registered metadata: %s", path, err)
			}

			mu.Lock()
			out[path] = FileHandle{FileHash: w.Hash(), Filename: filename}
			metadata[path] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return out, metadata, nil
}

// clusterErr marks an error as a transient cluster-client failure eligible
// for whole-operation retry, as opposed to an HTTP error from the runner
// reflecting user code.
type clusterErr struct{ error }

func clusterErrorf(format string, args ...interface{}) error {
	return clusterErr{fmt.Errorf(format, args...)}
}

func isTransientClusterError(err error) bool {
	_, ok := err.(clusterErr)
	return ok
}
