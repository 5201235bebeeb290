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
	"net/http"

	"github.com/uber/beebox/lib/pipeline"
	"github.com/uber/beebox/lib/validate"
	"github.com/uber/beebox/utils/handler"
	"github.com/uber/beebox/utils/log"
)

// executeRequest is the canonicalised, coerced shape of a /v1/execute
// payload.
type executeRequest struct {
	ChatID              string                         `json:"chat_id"`
	SourceCode          string                         `json:"source_code"`
	Files               map[string]pipeline.FileHandle `json:"files"`
	Env                 map[string]string              `json:"env"`
	PersistentWorkspace bool                           `json:"persistent_workspace"`
}

func (req *executeRequest) validate() error {
	if req.ChatID != "" && !validate.IsChatID(req.ChatID) {
		return fmt.Errorf("invalid chat_id")
	}
	for path, h := range req.Files {
		if !validate.IsAbsolutePath(path) {
			return fmt.Errorf("invalid workspace path %q", path)
		}
		if !validate.IsHash(h.FileHash) || !validate.IsFilename(h.Filename) {
			return fmt.Errorf("invalid file handle for %q", path)
		}
	}
	return nil
}

func (s *Server) executeHandler(w http.ResponseWriter, r *http.Request) error {
	raw, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return handler.Errorf("read body: %s", err).Status(http.StatusBadRequest)
	}

	canon, err := canonicalizePayload(raw)
	if err != nil {
		log.Warnf("execute[%s]: %s", requestID(r.Context()), err)
		return handler.ErrorStatus(http.StatusUnprocessableEntity)
	}

	if s.config.SchemaPath != "" {
		if err := validateAgainstSchema(s.config.SchemaPath, canon); err != nil {
			log.Warnf("execute[%s]: schema validation: %s", requestID(r.Context()), err)
			return handler.ErrorStatus(http.StatusUnprocessableEntity)
		}
	}

	coerced, err := json.Marshal(canon)
	if err != nil {
		return handler.Errorf("marshal canonical payload: %s", err).Status(http.StatusInternalServerError)
	}

	var req executeRequest
	if err := json.Unmarshal(coerced, &req); err != nil {
		return handler.ErrorStatus(http.StatusUnprocessableEntity)
	}

	if s.config.RequireChatID && req.ChatID == "" {
		return handler.ErrorStatus(http.StatusForbidden)
	}
	if err := req.validate(); err != nil {
		return handler.Errorf("%s", err).Status(http.StatusBadRequest)
	}

	result, err := s.pipeline.Execute(pipeline.Request{
		ChatID:              req.ChatID,
		SourceCode:          req.SourceCode,
		Files:               req.Files,
		Env:                 req.Env,
		PersistentWorkspace: req.PersistentWorkspace,
	})
	if err != nil {
		log.Errorf("execute[%s]: %s", requestID(r.Context()), err)
		return handler.Errorf("execution failed: %s", err).Status(http.StatusInternalServerError)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}
