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

// Package osutil contains small filesystem helpers shared across storage
// layers.
package osutil

import (
	"os"
	"path/filepath"
)

// EnsureFilePresent creates an empty file (and its parent directories) at
// path if it does not already exist.
func EnsureFilePresent(path string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0775); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, perm)
	if err != nil {
		return err
	}
	return f.Close()
}

// EnsureDirExists creates dir (and parents) if it does not already exist.
func EnsureDirExists(dir string) error {
	return os.MkdirAll(dir, 0775)
}
