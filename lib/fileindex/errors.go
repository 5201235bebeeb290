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
package fileindex

import "errors"

// Index errors. NotFound and Expired are deliberately indistinguishable to
// HTTP callers (see ingress), but are distinct here so the pipeline and
// reaper can tell them apart.
var (
	// ErrNotFound indicates no record exists for the given key.
	ErrNotFound = errors.New("fileindex: record not found")

	// ErrExpired indicates a record exists but is expired, either by time
	// or by download-quota exhaustion.
	ErrExpired = errors.New("fileindex: record expired")

	// ErrInvalidDate indicates expires_in could not be parsed.
	ErrInvalidDate = errors.New("fileindex: invalid expires_in")
)
