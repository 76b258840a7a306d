/* Copyright (C) 2025, 2026 Studylog contributors
 *
 * This file is part of Studylog.
 *
 * Studylog is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * Studylog is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with Studylog.  If not, see <https://www.gnu.org/licenses/>.
 */

package database

import (
	"database/sql"

	"github.com/pkg/errors"
)

// EntityRow is the persisted form of one entity of a family
type EntityRow struct {
	Family    string
	LocalID   string
	Data      []byte
	CreatedAt int64
	UpdatedAt int64
}

// Upsert inserts the row or replaces the row with the same family and local id
func (r EntityRow) Upsert(db *DB) error {
	_, err := db.Exec(`INSERT INTO entities (family, local_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(family, local_id) DO UPDATE SET
			data = excluded.data,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		r.Family, r.LocalID, string(r.Data), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "upserting %s entity %s", r.Family, r.LocalID)
	}

	return nil
}

// Expunge hard-deletes the row
func (r EntityRow) Expunge(db *DB) error {
	if _, err := db.Exec("DELETE FROM entities WHERE family = ? AND local_id = ?", r.Family, r.LocalID); err != nil {
		return errors.Wrapf(err, "deleting %s entity %s", r.Family, r.LocalID)
	}

	return nil
}

// ListEntities returns the rows of the given family, newest first
func ListEntities(db *DB, family string) ([]EntityRow, error) {
	rows, err := db.Query(`SELECT family, local_id, data, created_at, updated_at
		FROM entities
		WHERE family = ?
		ORDER BY created_at DESC, rowid DESC`, family)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s entities", family)
	}
	defer rows.Close()

	ret := []EntityRow{}
	for rows.Next() {
		var r EntityRow
		var data string
		if err := rows.Scan(&r.Family, &r.LocalID, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning a row")
		}
		r.Data = []byte(data)

		ret = append(ret, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating rows")
	}

	return ret, nil
}

// ExpungeFamily hard-deletes every row and mapping of the given family
func ExpungeFamily(db *DB, family string) error {
	if _, err := db.Exec("DELETE FROM entities WHERE family = ?", family); err != nil {
		return errors.Wrapf(err, "deleting %s entities", family)
	}
	if _, err := db.Exec("DELETE FROM identity_map WHERE family = ?", family); err != nil {
		return errors.Wrapf(err, "deleting %s identity map", family)
	}

	return nil
}

// Mapping links a local id to the id assigned by the remote
type Mapping struct {
	Family   string
	LocalID  string
	RemoteID string
}

// Upsert inserts the mapping or replaces the remote id of an existing one
func (m Mapping) Upsert(db *DB) error {
	_, err := db.Exec(`INSERT INTO identity_map (family, local_id, remote_id)
		VALUES (?, ?, ?)
		ON CONFLICT(family, local_id) DO UPDATE SET remote_id = excluded.remote_id`,
		m.Family, m.LocalID, m.RemoteID)
	if err != nil {
		return errors.Wrapf(err, "upserting %s mapping %s -> %s", m.Family, m.LocalID, m.RemoteID)
	}

	return nil
}

// Expunge deletes the mapping of the local id
func (m Mapping) Expunge(db *DB) error {
	if _, err := db.Exec("DELETE FROM identity_map WHERE family = ? AND local_id = ?", m.Family, m.LocalID); err != nil {
		return errors.Wrapf(err, "deleting %s mapping %s", m.Family, m.LocalID)
	}

	return nil
}

// GetIdentityMap returns the identity map of the given family keyed by local id
func GetIdentityMap(db *DB, family string) (map[string]string, error) {
	rows, err := db.Query("SELECT local_id, remote_id FROM identity_map WHERE family = ?", family)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s identity map", family)
	}
	defer rows.Close()

	ret := map[string]string{}
	for rows.Next() {
		var localID, remoteID string
		if err := rows.Scan(&localID, &remoteID); err != nil {
			return nil, errors.Wrap(err, "scanning a row")
		}

		ret[localID] = remoteID
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating rows")
	}

	return ret, nil
}

// Tombstone marks a deleted entity. RemoteID is empty if the entity never
// reached the remote. Archived is set once the remote copy is archived.
type Tombstone struct {
	Family    string
	LocalID   string
	RemoteID  string
	Archived  bool
	DeletedAt int64
}

// Upsert inserts the tombstone or replaces the one with the same local id
func (t Tombstone) Upsert(db *DB) error {
	_, err := db.Exec(`INSERT INTO tombstones (family, local_id, remote_id, archived, deleted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(family, local_id) DO UPDATE SET
			remote_id = excluded.remote_id,
			archived = excluded.archived`,
		t.Family, t.LocalID, t.RemoteID, t.Archived, t.DeletedAt)
	if err != nil {
		return errors.Wrapf(err, "upserting %s tombstone %s", t.Family, t.LocalID)
	}

	return nil
}

// ListTombstones returns the tombstones of the given family
func ListTombstones(db *DB, family string) ([]Tombstone, error) {
	rows, err := db.Query(`SELECT family, local_id, remote_id, archived, deleted_at
		FROM tombstones
		WHERE family = ?
		ORDER BY deleted_at ASC, rowid ASC`, family)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s tombstones", family)
	}
	defer rows.Close()

	ret := []Tombstone{}
	for rows.Next() {
		var t Tombstone
		if err := rows.Scan(&t.Family, &t.LocalID, &t.RemoteID, &t.Archived, &t.DeletedAt); err != nil {
			return nil, errors.Wrap(err, "scanning a row")
		}

		ret = append(ret, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating rows")
	}

	return ret, nil
}

// GetSystem reads the value of the given key in the system table. The second
// return value is false if the key does not exist.
func GetSystem(db *DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "finding system value for %s", key)
	}

	return value, true, nil
}

// UpdateSystem sets the value of the given key in the system table
func UpdateSystem(db *DB, key, value string) error {
	_, err := db.Exec(`INSERT INTO system (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return errors.Wrapf(err, "updating system value for %s", key)
	}

	return nil
}

// DeleteSystem removes the given key from the system table
func DeleteSystem(db *DB, key string) error {
	if _, err := db.Exec("DELETE FROM system WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting system value for %s", key)
	}

	return nil
}
