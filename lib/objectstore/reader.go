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
package objectstore

import "os"

// Reader is a scoped read handle over an existing blob.
type Reader struct {
	f           *os.File
	size        int64
	contentType string
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	return r.f.Read(p)
}

// Close implements io.Closer.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Size returns the blob's size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// ContentType returns the blob's content type, inferred from its filename
// extension at read time.
func (r *Reader) ContentType() string {
	return r.contentType
}
