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

// Package store implements the local, persisted collections that are the
// single source of truth for reads.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/utils"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

// ErrNotFound is an error for a local id that is not in the collection
var ErrNotFound = errors.New("not found")

// State is the persisted state of one entity family
type State[T any] struct {
	Entities     []T
	IdentityMap  map[string]string
	LastPulledAt time.Time
}

// Store holds the collection of one entity family in memory and writes every
// mutation through to the database
type Store[T models.Entity[T]] struct {
	family   string
	db       *database.DB
	clock    clock.Clock
	deviceID string

	mu           sync.RWMutex
	entities     []T
	identityMap  map[string]string
	lastPulledAt time.Time
	tombstones   map[string]database.Tombstone
}

// Check inspects the collection before an input is created and returns an
// error to reject it
type Check[T any] func(existing []T, input T) error

// New loads the collection of the given family from the database
func New[T models.Entity[T]](db *database.DB, family string, c clock.Clock, deviceID string) (*Store[T], error) {
	s := &Store[T]{
		family:     family,
		db:         db,
		clock:      c,
		deviceID:   deviceID,
		tombstones: map[string]database.Tombstone{},
	}

	if err := s.load(); err != nil {
		return nil, errors.Wrapf(err, "loading %s", family)
	}

	return s, nil
}

func (s *Store[T]) load() error {
	rows, err := database.ListEntities(s.db, s.family)
	if err != nil {
		return errors.Wrap(err, "listing entities")
	}

	entities := make([]T, 0, len(rows))
	for _, row := range rows {
		var e T
		if err := json.Unmarshal(row.Data, &e); err != nil {
			return errors.Wrapf(err, "unmarshalling entity %s", row.LocalID)
		}

		entities = append(entities, e)
	}

	idMap, err := database.GetIdentityMap(s.db, s.family)
	if err != nil {
		return errors.Wrap(err, "getting identity map")
	}

	lastPulledAt, err := getLastPulledAt(s.db, s.family)
	if err != nil {
		return errors.Wrap(err, "getting last pull time")
	}

	tombstones, err := database.ListTombstones(s.db, s.family)
	if err != nil {
		return errors.Wrap(err, "listing tombstones")
	}

	s.entities = entities
	s.identityMap = idMap
	s.lastPulledAt = lastPulledAt
	for _, t := range tombstones {
		s.tombstones[t.LocalID] = t
	}

	return nil
}

// Family returns the name of the entity family
func (s *Store[T]) Family() string {
	return s.family
}

func toRow[T models.Entity[T]](family string, e T) (database.EntityRow, error) {
	meta := e.GetMeta()

	b, err := json.Marshal(e)
	if err != nil {
		return database.EntityRow{}, errors.Wrapf(err, "marshalling entity %s", meta.ID)
	}

	return database.EntityRow{
		Family:    family,
		LocalID:   meta.ID,
		Data:      b,
		CreatedAt: meta.CreatedAt.UnixNano(),
		UpdatedAt: meta.UpdatedAt.UnixNano(),
	}, nil
}

func (s *Store[T]) indexOf(id string) int {
	for i, e := range s.entities {
		if e.GetMeta().ID == id {
			return i
		}
	}

	return -1
}

// Create assigns a new local id, the device id and timestamps to the input,
// and inserts it at the head of the collection. The checks run against the
// collection while it is locked.
func (s *Store[T]) Create(input T, checks ...Check[T]) (T, error) {
	var zero T

	id, err := utils.GenerateUUID()
	if err != nil {
		return zero, errors.Wrap(err, "generating local id")
	}

	now := s.clock.Now()
	e := input.WithMeta(models.Meta{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		DeviceID:  s.deviceID,
	})
	if err := e.Validate(); err != nil {
		return zero, errors.Wrap(err, "validating")
	}

	row, err := toRow(s.family, e)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, check := range checks {
		if err := check(s.entities, input); err != nil {
			return zero, err
		}
	}

	if err := row.Upsert(s.db); err != nil {
		return zero, errors.Wrap(err, "persisting")
	}

	s.entities = append([]T{e}, s.entities...)

	return e, nil
}

// Update applies the patch to the entity with the given local id and sets its
// updatedAt to now. The id, createdAt and deviceId are left unchanged.
func (s *Store[T]) Update(id string, patch models.Patch[T]) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		log.Debug("%s: update of unknown id %s\n", s.family, id)
		return zero, errors.Wrapf(ErrNotFound, "%s %s", s.family, id)
	}

	cur := s.entities[idx]
	meta := cur.GetMeta()

	meta.UpdatedAt = s.clock.Now()
	if meta.UpdatedAt.Before(meta.CreatedAt) {
		meta.UpdatedAt = meta.CreatedAt
	}

	next := patch.Apply(cur).WithMeta(meta)
	if err := next.Validate(); err != nil {
		return zero, errors.Wrap(err, "validating")
	}

	row, err := toRow(s.family, next)
	if err != nil {
		return zero, err
	}
	if err := row.Upsert(s.db); err != nil {
		return zero, errors.Wrap(err, "persisting")
	}

	s.entities[idx] = next

	return next, nil
}

// Delete removes the entity and its identity map entry, and leaves a
// tombstone until the remote copy is archived. It returns the remote id the
// entity was mapped to, if any.
func (s *Store[T]) Delete(id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		log.Debug("%s: delete of unknown id %s\n", s.family, id)
		return "", false, errors.Wrapf(ErrNotFound, "%s %s", s.family, id)
	}

	remoteID, mapped := s.identityMap[id]
	tomb := database.Tombstone{
		Family:    s.family,
		LocalID:   id,
		RemoteID:  remoteID,
		DeletedAt: s.clock.Now().UnixNano(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", false, errors.Wrap(err, "beginning a transaction")
	}

	if err := (database.EntityRow{Family: s.family, LocalID: id}).Expunge(tx); err != nil {
		tx.Rollback()
		return "", false, err
	}
	if err := (database.Mapping{Family: s.family, LocalID: id}).Expunge(tx); err != nil {
		tx.Rollback()
		return "", false, err
	}
	if err := tomb.Upsert(tx); err != nil {
		tx.Rollback()
		return "", false, err
	}
	if err := tx.Commit(); err != nil {
		return "", false, errors.Wrap(err, "committing a transaction")
	}

	delete(s.identityMap, id)
	s.entities = append(s.entities[:idx:idx], s.entities[idx+1:]...)
	s.tombstones[id] = tomb

	return remoteID, mapped, nil
}

// Get returns the entity with the given local id
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx == -1 {
		var zero T
		return zero, false
	}

	return s.entities[idx], true
}

// List returns a copy of the collection
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]T(nil), s.entities...)
}

// Mapping returns the remote id the local id is mapped to
func (s *Store[T]) Mapping(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	remoteID, ok := s.identityMap[id]
	return remoteID, ok
}

// SetMapping records that the entity with the given local id exists on the
// remote under remoteID. It returns false if the entity was deleted in the
// meantime, in which case the remote id goes on its tombstone instead.
func (s *Store[T]) SetMapping(id, remoteID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tomb, ok := s.tombstones[id]; ok {
		tomb.RemoteID = remoteID
		tomb.Archived = false
		if err := tomb.Upsert(s.db); err != nil {
			return false, err
		}
		s.tombstones[id] = tomb

		return false, nil
	}
	if s.indexOf(id) == -1 {
		return false, nil
	}

	m := database.Mapping{Family: s.family, LocalID: id, RemoteID: remoteID}
	if err := m.Upsert(s.db); err != nil {
		return false, err
	}

	s.identityMap[id] = remoteID

	return true, nil
}

// Deleted reports whether the entity with the given local id was deleted
func (s *Store[T]) Deleted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tombstones[id]
	return ok
}

// DeletedRemote reports whether a deleted entity was mapped to remoteID
func (s *Store[T]) DeletedRemote(remoteID string) bool {
	if remoteID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tombstones {
		if t.RemoteID == remoteID {
			return true
		}
	}

	return false
}

// PendingArchives returns the tombstones whose remote copy is not archived
// yet, oldest first
func (s *Store[T]) PendingArchives() []database.Tombstone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := []database.Tombstone{}
	for _, t := range s.tombstones {
		if t.RemoteID != "" && !t.Archived {
			ret = append(ret, t)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].DeletedAt < ret[j].DeletedAt
	})

	return ret
}

// MarkArchived records that the remote copy of the deleted entity with the
// given local id is archived
func (s *Store[T]) MarkArchived(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tomb, ok := s.tombstones[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "%s tombstone %s", s.family, id)
	}
	if tomb.Archived {
		return nil
	}

	tomb.Archived = true
	if err := tomb.Upsert(s.db); err != nil {
		return err
	}
	s.tombstones[id] = tomb

	return nil
}

// LastPulledAt returns the time of the last successful pull
func (s *Store[T]) LastPulledAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastPulledAt, !s.lastPulledAt.IsZero()
}

// Snapshot returns a copy of the current state
func (s *Store[T]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot()
}

func (s *Store[T]) snapshot() State[T] {
	idMap := make(map[string]string, len(s.identityMap))
	for k, v := range s.identityMap {
		idMap[k] = v
	}

	return State[T]{
		Entities:     append([]T(nil), s.entities...),
		IdentityMap:  idMap,
		LastPulledAt: s.lastPulledAt,
	}
}

// Reconcile replaces the collection and identity map with the result of fn,
// which receives a snapshot of the current state, and records pulledAt as
// the time of the last pull. No local mutation can interleave with fn.
func (s *Store[T]) Reconcile(pulledAt time.Time, fn func(State[T]) State[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.snapshot())

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := s.persist(tx, next, pulledAt); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing a transaction")
	}

	s.entities = next.Entities
	s.identityMap = next.IdentityMap
	s.lastPulledAt = pulledAt

	return nil
}

func (s *Store[T]) persist(tx *database.DB, st State[T], pulledAt time.Time) error {
	if err := database.ExpungeFamily(tx, s.family); err != nil {
		return errors.Wrap(err, "clearing the family")
	}

	// rows are read back newest rowid first
	for i := len(st.Entities) - 1; i >= 0; i-- {
		row, err := toRow(s.family, st.Entities[i])
		if err != nil {
			return err
		}
		if err := row.Upsert(tx); err != nil {
			return err
		}
	}

	for localID, remoteID := range st.IdentityMap {
		m := database.Mapping{Family: s.family, LocalID: localID, RemoteID: remoteID}
		if err := m.Upsert(tx); err != nil {
			return err
		}
	}

	if err := setLastPulledAt(tx, s.family, pulledAt); err != nil {
		return err
	}

	return nil
}

func lastPulledAtKey(family string) string {
	return fmt.Sprintf("%s.%s", consts.SystemLastPulledAt, family)
}

func getLastPulledAt(db *database.DB, family string) (time.Time, error) {
	val, ok, err := database.GetSystem(db, lastPulledAtKey(family))
	if err != nil || !ok {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing %s", val)
	}

	return t, nil
}

func setLastPulledAt(db *database.DB, family string, t time.Time) error {
	return database.UpdateSystem(db, lastPulledAtKey(family), t.UTC().Format(time.RFC3339Nano))
}
