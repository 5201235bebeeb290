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

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenRead(t *testing.T) {
	s, cleanup := Fixture()
	defer cleanup()

	w, err := s.NewWriter("chat1", "hello.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	r, err := s.NewReader("chat1", w.Hash(), "hello.txt")
	require.NoError(t, err)
	defer r.Close()

	b, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(b))
	require.Equal(t, "text/plain", r.ContentType())
}

func TestReadMissingBlob(t *testing.T) {
	s, cleanup := Fixture()
	defer cleanup()

	_, err := s.NewReader("chat1", "deadbeef", "missing.txt")
	require.Equal(t, ErrNotFoundOnDisk, err)
}

func TestCancelRemovesPartialWrite(t *testing.T) {
	s, cleanup := Fixture()
	defer cleanup()

	w, err := s.NewWriter("chat1", "partial.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	dir := filepath.Dir(filepath.Join(s.root, "chat1", w.Hash(), "partial.txt"))
	require.NoError(t, w.Cancel())

	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}

func TestDistinctHandlesForIdenticalContent(t *testing.T) {
	s, cleanup := Fixture()
	defer cleanup()

	w1, err := s.NewWriter("chat1", "a.txt")
	require.NoError(t, err)
	_, err = w1.Write([]byte("same bytes"))
	require.NoError(t, err)
	require.NoError(t, w1.Commit())

	w2, err := s.NewWriter("chat1", "a.txt")
	require.NoError(t, err)
	_, err = w2.Write([]byte("same bytes"))
	require.NoError(t, err)
	require.NoError(t, w2.Commit())

	require.NotEqual(t, w1.Hash(), w2.Hash())
}

func TestDefaultContentType(t *testing.T) {
	s, cleanup := Fixture()
	defer cleanup()

	w, err := s.NewWriter("chat1", "blob.unknownext")
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	r, err := s.NewReader("chat1", w.Hash(), "blob.unknownext")
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, "application/octet-stream", r.ContentType())
}
