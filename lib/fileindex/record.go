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

import (
	"database/sql"
	"time"
)

// Record is the metadata index's primary entity: a (file_hash, chat_id,
// filename) key with a download quota and an optional expiry time.
type Record struct {
	FileHash           string       `db:"file_hash"`
	ChatID             string       `db:"chat_id"`
	Filename           string       `db:"filename"`
	RemainingDownloads sql.NullInt64 `db:"remaining_downloads"`
	ExpiresAt          sql.NullTime  `db:"expires_at"`
	CreatedAt          time.Time     `db:"created_at"`
}

// Unlimited reports whether r has no download quota.
func (r *Record) Unlimited() bool {
	return !r.RemainingDownloads.Valid
}

// HasTimeExpiry reports whether r has a time-based expiry set.
func (r *Record) HasTimeExpiry() bool {
	return r.ExpiresAt.Valid
}

// Expired reports whether r is expired as of now: either its download quota
// is exhausted, or its expiry time has passed.
func (r *Record) Expired(now time.Time) bool {
	if !r.Unlimited() && r.RemainingDownloads.Int64 == 0 {
		return true
	}
	if r.HasTimeExpiry() && !r.ExpiresAt.Time.After(now) {
		return true
	}
	return false
}

// Info is the read-only, client-facing projection of a Record. It carries
// the full key, including filename, so callers like the download handler
// can build a Content-Disposition header without a second lookup.
type Info struct {
	FileHash           string     `json:"file_hash"`
	ChatID             string     `json:"chat_id"`
	Filename           string     `json:"filename"`
	RemainingDownloads *int64     `json:"remaining_downloads,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
}

func (r *Record) info() *Info {
	info := &Info{
		FileHash: r.FileHash,
		ChatID:   r.ChatID,
		Filename: r.Filename,
	}
	if r.RemainingDownloads.Valid {
		v := r.RemainingDownloads.Int64
		info.RemainingDownloads = &v
	}
	if r.ExpiresAt.Valid {
		t := r.ExpiresAt.Time
		info.ExpiresAt = &t
	}
	return info
}
