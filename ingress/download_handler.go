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
	"net/http"
	"strconv"

	"github.com/uber/beebox/lib/objectstore"
	"github.com/uber/beebox/lib/validate"
	"github.com/uber/beebox/utils/closers"
	"github.com/uber/beebox/utils/handler"
)

type blobKey struct {
	ChatID   string `json:"chat_id"`
	FileHash string `json:"file_hash"`
	Filename string `json:"filename"`
}

func decodeBlobKey(r *http.Request) (blobKey, error) {
	var key blobKey
	if err := json.NewDecoder(r.Body).Decode(&key); err != nil {
		return blobKey{}, err
	}
	return key, nil
}

func (k blobKey) valid() bool {
	return validate.IsChatID(k.ChatID) && validate.IsHash(k.FileHash) && validate.IsFilename(k.Filename)
}

// downloadHandler streams a blob to the caller. Every index failure --
// not found, expired, exhausted quota -- collapses to a plain 404 so a
// caller can't distinguish "wrong hash" from "quota used up", which would
// otherwise leak whether a handle is valid.
func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) error {
	key, err := decodeBlobKey(r)
	if err != nil || !key.valid() {
		return handler.ErrorStatus(http.StatusBadRequest)
	}

	if err := s.index.CheckAndDecrement(key.FileHash, key.ChatID, key.Filename); err != nil {
		return handler.Errorf("File not found").Status(http.StatusNotFound)
	}

	reader, err := s.store.NewReader(key.ChatID, key.FileHash, key.Filename)
	if err != nil {
		return handler.Errorf("File not found").Status(http.StatusNotFound)
	}
	defer closers.Close(reader)

	w.Header().Set("Content-Type", reader.ContentType())
	w.Header().Set("Content-Length", strconv.FormatInt(reader.Size(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", key.Filename))
	_, err = objectstore.CopyChunked(w, reader)
	return err
}

func (s *Server) expireHandler(w http.ResponseWriter, r *http.Request) error {
	key, err := decodeBlobKey(r)
	if err != nil || !key.valid() {
		return handler.ErrorStatus(http.StatusBadRequest)
	}

	if err := s.index.Expire(key.FileHash, key.ChatID, key.Filename); err != nil {
		return handler.ErrorStatus(http.StatusNotFound)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(struct {
		Success bool `json:"success"`
	}{true})
}
