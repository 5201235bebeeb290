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

// Package fileindex implements the transactional file-metadata index: a
// durable (file_hash, chat_id, filename) -> (remaining_downloads,
// expires_at) map with an atomic check-and-decrement operation. Expiry never
// deletes a record -- it zeroes remaining_downloads, leaving a tombstone
// that downloads report as not found but that remains available for
// auditing and for get_info.
package fileindex

import (
	"database/sql"
	"fmt"

	"github.com/andres-erbsen/clock"
	"github.com/jmoiron/sqlx"

	"github.com/uber/beebox/lib/validate"
)

// Index is the capability interface the ingress front-end, the execution
// pipeline, and the reaper depend on.
type Index interface {
	Register(hash, chatID, filename string, maxDownloads int64, expiresIn string) error
	CheckAndDecrement(hash, chatID, filename string) error
	Expire(hash, chatID, filename string) error
	GetInfo(hash, chatID, filename string) (*Info, error)
	CleanupExpired() (int64, error)
}

// SQLIndex is the sqlite-backed Index implementation.
type SQLIndex struct {
	db    *sqlx.DB
	clock clock.Clock
}

// New creates a SQLIndex backed by db.
func New(db *sqlx.DB) *SQLIndex {
	return &SQLIndex{db: db, clock: clock.New()}
}

// NewWithClock creates a SQLIndex using an injected clock, for testing.
func NewWithClock(db *sqlx.DB, c clock.Clock) *SQLIndex {
	return &SQLIndex{db: db, clock: c}
}

// Register upserts a record for (hash, chatID, filename). maxDownloads <= 0
// means unlimited. expiresIn is a duration literal ("" means no expiry).
func (idx *SQLIndex) Register(
	hash, chatID, filename string, maxDownloads int64, expiresIn string) error {

	var remaining sql.NullInt64
	if maxDownloads > 0 {
		remaining = sql.NullInt64{Int64: maxDownloads, Valid: true}
	}

	var expiresAt sql.NullTime
	if expiresIn != "" {
		d, err := validate.ParseDuration(expiresIn)
		if err != nil {
			return ErrInvalidDate
		}
		if d != nil {
			expiresAt = sql.NullTime{Time: idx.clock.Now().Add(*d), Valid: true}
		}
	}

	_, err := idx.db.Exec(`
		INSERT INTO file_records (file_hash, chat_id, filename, remaining_downloads, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_hash, chat_id, filename) DO UPDATE SET
			remaining_downloads = excluded.remaining_downloads,
			expires_at = excluded.expires_at
	`, hash, chatID, filename, remaining, expiresAt)
	if err != nil {
		return fmt.Errorf("register: %s", err)
	}
	return nil
}

// CheckAndDecrement atomically checks (hash, chatID, filename) for
// expiry/exhaustion and, if live, decrements its download quota by one. Two
// concurrent calls racing against remaining_downloads=1 result in exactly
// one success and one ErrExpired.
func (idx *SQLIndex) CheckAndDecrement(hash, chatID, filename string) error {
	tx, err := idx.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %s", err)
	}
	defer tx.Rollback()

	var rec Record
	err = tx.Get(&rec, `
		SELECT file_hash, chat_id, filename, remaining_downloads, expires_at, created_at
		FROM file_records
		WHERE file_hash = ? AND chat_id = ? AND filename = ?
	`, hash, chatID, filename)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select: %s", err)
	}

	now := idx.clock.Now()

	if rec.HasTimeExpiry() && !rec.ExpiresAt.Time.After(now) {
		if _, err := tx.Exec(`
			UPDATE file_records SET remaining_downloads = 0
			WHERE file_hash = ? AND chat_id = ? AND filename = ?
		`, hash, chatID, filename); err != nil {
			return fmt.Errorf("expire on read: %s", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %s", err)
		}
		return ErrExpired
	}

	if !rec.Unlimited() && rec.RemainingDownloads.Int64 == 0 {
		return ErrExpired
	}

	if !rec.Unlimited() {
		if _, err := tx.Exec(`
			UPDATE file_records SET remaining_downloads = remaining_downloads - 1
			WHERE file_hash = ? AND chat_id = ? AND filename = ?
		`, hash, chatID, filename); err != nil {
			return fmt.Errorf("decrement: %s", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %s", err)
	}
	return nil
}

// Expire sets remaining_downloads to 0 for (hash, chatID, filename).
func (idx *SQLIndex) Expire(hash, chatID, filename string) error {
	res, err := idx.db.Exec(`
		UPDATE file_records SET remaining_downloads = 0
		WHERE file_hash = ? AND chat_id = ? AND filename = ?
	`, hash, chatID, filename)
	if err != nil {
		return fmt.Errorf("expire: %s", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %s", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetInfo returns the current metadata for (hash, chatID, filename) without
// mutating it.
func (idx *SQLIndex) GetInfo(hash, chatID, filename string) (*Info, error) {
	var rec Record
	err := idx.db.Get(&rec, `
		SELECT file_hash, chat_id, filename, remaining_downloads, expires_at, created_at
		FROM file_records
		WHERE file_hash = ? AND chat_id = ? AND filename = ?
	`, hash, chatID, filename)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select: %s", err)
	}
	return rec.info(), nil
}

// CleanupExpired zeroes remaining_downloads for every record whose
// expires_at has passed and which is not already exhausted. Returns the
// number of records swept. Blob deletion is intentionally out of scope --
// expiry is a tombstone, not a GC.
func (idx *SQLIndex) CleanupExpired() (int64, error) {
	res, err := idx.db.Exec(`
		UPDATE file_records SET remaining_downloads = 0
		WHERE expires_at IS NOT NULL
		AND expires_at <= ?
		AND (remaining_downloads IS NULL OR remaining_downloads != 0)
	`, idx.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired: %s", err)
	}
	return res.RowsAffected()
}
