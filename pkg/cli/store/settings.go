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

package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

// SettingsStore holds the settings singleton
type SettingsStore struct {
	db    *database.DB
	clock clock.Clock

	mu           sync.RWMutex
	settings     models.Settings
	remoteID     string
	lastPulledAt time.Time
}

// NewSettingsStore loads the settings from the database, falling back to the
// defaults on a fresh installation
func NewSettingsStore(db *database.DB, c clock.Clock) (*SettingsStore, error) {
	s := &SettingsStore{
		db:       db,
		clock:    c,
		settings: models.DefaultSettings(),
	}

	val, ok, err := database.GetSystem(db, consts.SystemSettings)
	if err != nil {
		return nil, errors.Wrap(err, "reading settings")
	}
	if ok {
		if err := json.Unmarshal([]byte(val), &s.settings); err != nil {
			return nil, errors.Wrap(err, "unmarshalling settings")
		}
		s.settings = s.settings.Clone()
	}

	remoteID, _, err := database.GetSystem(db, consts.SystemSettingsRemoteID)
	if err != nil {
		return nil, errors.Wrap(err, "reading settings remote id")
	}
	s.remoteID = remoteID

	s.lastPulledAt, err = getLastPulledAt(db, consts.FamilySettings)
	if err != nil {
		return nil, errors.Wrap(err, "reading settings last pull time")
	}

	return s, nil
}

func (s *SettingsStore) save(db *database.DB, st models.Settings) error {
	b, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "marshalling settings")
	}

	return database.UpdateSystem(db, consts.SystemSettings, string(b))
}

// Get returns a copy of the settings
func (s *SettingsStore) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings.Clone()
}

// Update applies the patch in place and sets updatedAt to now
func (s *SettingsStore) Update(patch models.SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.Apply(s.settings)
	next.UpdatedAt = s.clock.Now()
	if err := next.Validate(); err != nil {
		return models.Settings{}, errors.Wrap(err, "validating")
	}

	if err := s.save(s.db, next); err != nil {
		return models.Settings{}, errors.Wrap(err, "persisting")
	}

	s.settings = next

	return next.Clone(), nil
}

// ApplyRemote overwrites the exam dates with the remote values and records
// pulledAt as the time of the last pull. Other fields are left unchanged.
func (s *SettingsStore) ApplyRemote(remote models.Settings, pulledAt time.Time) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Clone()
	next.ExamDates = map[models.Subject]string{}
	for k, v := range remote.ExamDates {
		next.ExamDates[k] = v
	}
	if err := next.Validate(); err != nil {
		return models.Settings{}, errors.Wrap(err, "validating remote settings")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Settings{}, errors.Wrap(err, "beginning a transaction")
	}
	if err := s.save(tx, next); err != nil {
		tx.Rollback()
		return models.Settings{}, errors.Wrap(err, "persisting")
	}
	if err := setLastPulledAt(tx, consts.FamilySettings, pulledAt); err != nil {
		tx.Rollback()
		return models.Settings{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Settings{}, errors.Wrap(err, "committing a transaction")
	}

	s.settings = next
	s.lastPulledAt = pulledAt

	return next.Clone(), nil
}

// MarkPulled records pulledAt as the time of the last pull without changing
// the settings
func (s *SettingsStore) MarkPulled(pulledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := setLastPulledAt(s.db, consts.FamilySettings, pulledAt); err != nil {
		return err
	}
	s.lastPulledAt = pulledAt

	return nil
}

// LastPulledAt returns the time of the last successful pull
func (s *SettingsStore) LastPulledAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastPulledAt, !s.lastPulledAt.IsZero()
}

// RemoteID returns the id of the remote settings document
func (s *SettingsStore) RemoteID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.remoteID, s.remoteID != ""
}

// SetRemoteID records the id of the remote settings document
func (s *SettingsStore) SetRemoteID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.UpdateSystem(s.db, consts.SystemSettingsRemoteID, id); err != nil {
		return err
	}
	s.remoteID = id

	return nil
}
