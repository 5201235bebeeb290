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
	"io"
	"net/http"
	"strconv"

	"github.com/uber/beebox/lib/fileindex"
	"github.com/uber/beebox/lib/validate"
	"github.com/uber/beebox/utils/handler"
)

// limitedWriter tracks bytes written and reports errUploadTooLarge as soon
// as the configured cap is exceeded, rather than buffering the whole
// upload first.
type limitedWriter struct {
	dst     io.Writer
	limit   int64
	written int64
}

var errUploadTooLarge = handler.ErrorStatus(http.StatusRequestEntityTooLarge)

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.written+int64(len(p)) > w.limit {
		return 0, errUploadTooLarge
	}
	n, err := w.dst.Write(p)
	w.written += int64(n)
	return n, err
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) error {
	maxBytes, err := s.config.maxUploadBytes()
	if err != nil {
		return handler.Errorf("server misconfigured: %s", err).Status(http.StatusInternalServerError)
	}

	if err := r.ParseMultipartForm(32 << 10); err != nil {
		return handler.Errorf("parse multipart form: %s", err).Status(http.StatusBadRequest)
	}

	chatID := r.FormValue("chat_id")
	if !validate.IsChatID(chatID) {
		return handler.ErrorStatus(http.StatusBadRequest)
	}

	file, header, err := r.FormFile("upload")
	if err != nil {
		return handler.Errorf("missing upload file part: %s", err).Status(http.StatusBadRequest)
	}
	defer file.Close()

	if !validate.IsFilename(header.Filename) {
		return handler.ErrorStatus(http.StatusBadRequest)
	}

	maxDownloads := int64(0)
	if v := r.FormValue("max_downloads"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return handler.ErrorStatus(http.StatusBadRequest)
		}
		maxDownloads = n
	}
	expiresIn := r.FormValue("expires_in")
	if _, err := validate.ParseDuration(expiresIn); err != nil {
		return handler.Errorf("invalid expires_in: %s", err).Status(http.StatusBadRequest)
	}

	writer, err := s.store.NewWriter(chatID, header.Filename)
	if err != nil {
		return handler.Errorf("open blob writer: %s", err).Status(http.StatusInternalServerError)
	}

	limited := &limitedWriter{dst: writer, limit: maxBytes}
	_, copyErr := io.Copy(limited, file)
	if copyErr != nil {
		writer.Cancel()
		if herr, ok := copyErr.(*handler.Error); ok {
			return herr
		}
		return handler.Errorf("write upload: %s", copyErr).Status(http.StatusInternalServerError)
	}

	if err := writer.Commit(); err != nil {
		return handler.Errorf("commit upload: %s", err).Status(http.StatusInternalServerError)
	}

	if err := s.index.Register(writer.Hash(), chatID, header.Filename, maxDownloads, expiresIn); err != nil {
		return handler.Errorf("register upload: %s", err).Status(http.StatusInternalServerError)
	}

	info, err := s.index.GetInfo(writer.Hash(), chatID, header.Filename)
	if err != nil {
		return handler.Errorf("load registered upload: %s", err).Status(http.StatusInternalServerError)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(struct {
		FileHash string          `json:"file_hash"`
		Filename string          `json:"filename"`
		ChatID   string          `json:"chat_id"`
		Metadata *fileindex.Info `json:"metadata"`
	}{
		FileHash: writer.Hash(),
		Filename: header.Filename,
		ChatID:   chatID,
		Metadata: info,
	})
}
