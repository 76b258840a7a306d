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

package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/store"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

// SettingsSyncer keeps the settings singleton in step with the remote. It
// has no merge: a pull overwrites the local exam dates and a push upserts
// the whole settings.
type SettingsSyncer struct {
	store   *store.SettingsStore
	adapter remote.SettingsAdapter
	clock   clock.Clock

	wg sync.WaitGroup
	// pushMu orders upserts so that only one settings document is created
	pushMu sync.Mutex
}

// NewSettingsSyncer returns a SettingsSyncer
func NewSettingsSyncer(s *store.SettingsStore, adapter remote.SettingsAdapter, c clock.Clock) *SettingsSyncer {
	return &SettingsSyncer{
		store:   s,
		adapter: adapter,
		clock:   c,
	}
}

// Family returns the name of the settings family
func (s *SettingsSyncer) Family() string {
	return consts.FamilySettings
}

// Get returns the settings
func (s *SettingsSyncer) Get() models.Settings {
	return s.store.Get()
}

// LastPulledAt returns the time of the last successful pull
func (s *SettingsSyncer) LastPulledAt() (time.Time, bool) {
	return s.store.LastPulledAt()
}

// Wait blocks until every push started so far has finished
func (s *SettingsSyncer) Wait() {
	s.wg.Wait()
}

// Update applies the patch locally and pushes the settings in the
// background
func (s *SettingsSyncer) Update(patch models.SettingsPatch) (models.Settings, error) {
	next, err := s.store.Update(patch)
	if err != nil {
		return next, err
	}

	if s.adapter.Configured() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()

			if err := s.push(context.Background(), next); err != nil {
				log.Warnf("failed to push settings: %s\n", err.Error())
			}
		}()
	}

	return next, nil
}

// Push upserts the current settings. It is a no-op if the remote is not
// configured.
func (s *SettingsSyncer) Push(ctx context.Context) error {
	if !s.adapter.Configured() {
		return nil
	}

	return s.push(ctx, s.store.Get())
}

func (s *SettingsSyncer) push(ctx context.Context, settings models.Settings) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	remoteID, _ := s.store.RemoteID()

	id, err := s.adapter.Upsert(ctx, remoteID, settings)
	countPush(consts.FamilySettings, opUpsert, err)
	if err != nil {
		return errors.Wrap(err, "upserting")
	}

	if id != remoteID {
		if err := s.store.SetRemoteID(id); err != nil {
			return errors.Wrap(err, "saving the remote id")
		}
	}

	return nil
}

// Pull overwrites the local exam dates with the remote ones. Pull is a
// no-op if the remote is not configured.
func (s *SettingsSyncer) Pull(ctx context.Context) error {
	if !s.adapter.Configured() {
		return nil
	}

	doc, err := s.adapter.Fetch(ctx)
	if err != nil {
		countPull(consts.FamilySettings, err)
		return errors.Wrap(err, "pulling settings")
	}

	pulledAt := s.clock.Now()
	if doc == nil {
		err = s.store.MarkPulled(pulledAt)
		countPull(consts.FamilySettings, err)
		return err
	}

	_, err = s.store.ApplyRemote(doc.Entity, pulledAt)
	countPull(consts.FamilySettings, err)
	if err != nil {
		return errors.Wrap(err, "applying remote settings")
	}

	if _, ok := s.store.RemoteID(); !ok {
		if err := s.store.SetRemoteID(doc.RemoteID); err != nil {
			return errors.Wrap(err, "saving the remote id")
		}
	}

	log.Debug("pulled settings from %s\n", doc.RemoteID)

	return nil
}
