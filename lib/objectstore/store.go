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

// Package objectstore implements content-addressed blob storage laid out as
// <root>/<chat_id>/<file_hash>/<filename>. The hash is an opaque random
// token allocated at write time, not a digest of the content -- two writes
// of identical bytes get distinct handles.
package objectstore

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/uber/beebox/utils/osutil"
	"github.com/uber/beebox/utils/randutil"
)

// ChunkSize is the buffer size used when streaming blobs, keeping both
// reads and writes in bounded memory.
const ChunkSize = 8 * 1024

// Store is a content-addressed blob store rooted at a single directory.
type Store struct {
	root string
}

// New creates a Store rooted at config.Root, creating the directory if it
// does not exist.
func New(config Config) (*Store, error) {
	if err := osutil.EnsureDirExists(config.Root); err != nil {
		return nil, fmt.Errorf("ensure store root exists: %s", err)
	}
	return &Store{root: config.Root}, nil
}

func (s *Store) blobPath(chatID, hash, filename string) string {
	return filepath.Join(s.root, chatID, hash, filename)
}

// NewWriter opens a scoped writer for a new blob under chatID, allocating a
// fresh opaque hash. The caller must call Commit on success or Cancel on
// failure.
func (s *Store) NewWriter(chatID, filename string) (*Writer, error) {
	hash := randutil.Hex(32)
	dir := filepath.Join(s.root, chatID, hash)
	if err := os.MkdirAll(dir, 0775); err != nil {
		return nil, fmt.Errorf("mkdir: %s", err)
	}
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("create: %s", err)
	}
	return &Writer{dir: dir, f: f, hash: hash}, nil
}

// NewReader opens a scoped reader over an existing blob. Callers responsible
// for download-quota enforcement (the ingress download handler) must invoke
// the file index's CheckAndDecrement before calling this; privileged
// internal callers (the execution pipeline staging inputs) call it directly
// and so bypass quota. NewReader itself never touches the index.
func (s *Store) NewReader(chatID, hash, filename string) (*Reader, error) {
	path := s.blobPath(chatID, hash, filename)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFoundOnDisk
	}
	if err != nil {
		return nil, fmt.Errorf("open: %s", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat: %s", err)
	}
	return &Reader{
		f:           f,
		size:        info.Size(),
		contentType: contentTypeForFilename(filename),
	}, nil
}

// extensionContentTypes augments mime.TypeByExtension, whose registry is
// platform-dependent and often empty in minimal container images (no
// /etc/mime.types), with the extensions this service actually serves.
var extensionContentTypes = map[string]string{
	".txt":  "text/plain",
	".json": "application/json",
	".csv":  "text/csv",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".html": "text/html",
	".py":   "text/x-python",
	".go":   "text/x-go",
	".md":   "text/markdown",
	".log":  "text/plain",
}

func contentTypeForFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := extensionContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// CopyChunked copies from src to dst in ChunkSize chunks, keeping memory use
// bounded regardless of blob size.
func CopyChunked(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	return io.CopyBuffer(dst, src, buf)
}
