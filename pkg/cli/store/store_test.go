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
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

func newRecord(subject models.Subject, minutes int) models.Record {
	return models.Record{
		Type:         models.RecordTypeTextbook,
		Subject:      subject,
		StudyMinutes: minutes,
		StudiedAt:    "2026-01-10",
		Source:       models.SourceManual,
	}
}

func newTestStore(t *testing.T) (*Store[models.Record], *database.DB, *clock.Mock) {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()

	s, err := New[models.Record](db, consts.FamilyRecords, c, "device-1")
	assert.NoError(t, err, "creating store")

	return s, db, c
}

func TestCreate(t *testing.T) {
	s, _, c := newTestStore(t)

	first, err := s.Create(newRecord(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating first")
	c.Advance(time.Minute)
	second, err := s.Create(newRecord(models.SubjectAUD, 30))
	assert.NoError(t, err, "creating second")

	assert.NotEqual(t, first.ID, "", "id should be assigned")
	assert.NotEqual(t, first.ID, second.ID, "ids should be unique")
	assert.Equal(t, first.DeviceID, "device-1", "device id mismatch")
	assert.Equal(t, first.CreatedAt.Equal(first.UpdatedAt), true, "updatedAt should equal createdAt")

	got, ok := s.Get(first.ID)
	assert.Equal(t, ok, true, "created entity should be readable")
	assert.DeepEqual(t, got, first, "entity mismatch")

	list := s.List()
	assert.Equal(t, len(list), 2, "list length mismatch")
	assert.Equal(t, list[0].ID, second.ID, "newest should be at the head")
}

func TestCreateInvalid(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, err := s.Create(newRecord(models.SubjectFAR, 0))
	assert.EqualErrors(t, err, models.ErrInvalidMinutes, "error mismatch")
	assert.Equal(t, len(s.List()), 0, "invalid entity should not be stored")
}

func TestUpdate(t *testing.T) {
	s, _, c := newTestStore(t)

	rec, err := s.Create(newRecord(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")

	c.Advance(10 * time.Minute)
	minutes := 60
	updated, err := s.Update(rec.ID, models.RecordPatch{StudyMinutes: &minutes})
	assert.NoError(t, err, "updating")

	assert.Equal(t, updated.StudyMinutes, 60, "minutes mismatch")
	assert.Equal(t, updated.ID, rec.ID, "id should be unchanged")
	assert.Equal(t, updated.CreatedAt.Equal(rec.CreatedAt), true, "createdAt should be unchanged")
	assert.Equal(t, updated.DeviceID, rec.DeviceID, "deviceId should be unchanged")
	assert.Equal(t, updated.UpdatedAt.Equal(c.Now()), true, "updatedAt should be now")

	c.SetNow(rec.CreatedAt.Add(-time.Hour))
	updated, err = s.Update(rec.ID, models.RecordPatch{StudyMinutes: &minutes})
	assert.NoError(t, err, "updating with a clock behind createdAt")
	assert.Equal(t, updated.UpdatedAt.Before(updated.CreatedAt), false, "updatedAt should never be older than createdAt")
}

func TestUpdateUnknown(t *testing.T) {
	s, _, _ := newTestStore(t)

	rec, err := s.Create(newRecord(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")

	minutes := 60
	_, err = s.Update("missing", models.RecordPatch{StudyMinutes: &minutes})
	assert.EqualErrors(t, err, ErrNotFound, "error mismatch")

	zero := 0
	_, err = s.Update(rec.ID, models.RecordPatch{StudyMinutes: &zero})
	assert.EqualErrors(t, err, models.ErrInvalidMinutes, "error mismatch")

	got, _ := s.Get(rec.ID)
	assert.DeepEqual(t, got, rec, "entity should be untouched")
	assert.Equal(t, len(s.List()), 1, "collection should be untouched")
}

func TestDelete(t *testing.T) {
	s, db, _ := newTestStore(t)

	rec, err := s.Create(newRecord(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")
	ok, err := s.SetMapping(rec.ID, "remote-1")
	assert.NoError(t, err, "mapping")
	assert.Equal(t, ok, true, "mapping should be recorded")

	remoteID, mapped, err := s.Delete(rec.ID)
	assert.NoError(t, err, "deleting")
	assert.Equal(t, mapped, true, "entity was mapped")
	assert.Equal(t, remoteID, "remote-1", "remote id mismatch")

	_, ok = s.Get(rec.ID)
	assert.Equal(t, ok, false, "entity should be gone")
	_, ok = s.Mapping(rec.ID)
	assert.Equal(t, ok, false, "mapping should be gone")

	ok, err = s.SetMapping(rec.ID, "remote-2")
	assert.NoError(t, err, "mapping after delete")
	assert.Equal(t, ok, false, "a deleted entity should not be mapped")

	var count int
	database.MustScan(t, "counting mappings", db.QueryRow("SELECT count(*) FROM identity_map"), &count)
	assert.Equal(t, count, 0, "mapping rows mismatch")

	_, _, err = s.Delete(rec.ID)
	assert.EqualErrors(t, err, ErrNotFound, "deleting twice")
}

func TestPersistence(t *testing.T) {
	s, db, c := newTestStore(t)

	a, err := s.Create(newRecord(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating a")
	b, err := s.Create(newRecord(models.SubjectREG, 20))
	assert.NoError(t, err, "creating b")
	_, err = s.SetMapping(a.ID, "remote-a")
	assert.NoError(t, err, "mapping a")

	pulledAt := c.Now().Add(time.Hour)
	err = s.Reconcile(pulledAt, func(st State[models.Record]) State[models.Record] {
		return st
	})
	assert.NoError(t, err, "reconciling")

	reloaded, err := New[models.Record](db, consts.FamilyRecords, c, "device-1")
	assert.NoError(t, err, "reloading")

	list := reloaded.List()
	assert.Equal(t, len(list), 2, "list length mismatch")
	assert.Equal(t, list[0].ID, b.ID, "order should survive a reload")
	assert.Equal(t, list[1].ID, a.ID, "order should survive a reload")
	assert.DeepEqual(t, list[1], a, "entity should survive a reload")

	remoteID, ok := reloaded.Mapping(a.ID)
	assert.Equal(t, ok, true, "mapping should survive a reload")
	assert.Equal(t, remoteID, "remote-a", "remote id mismatch")

	got, ok := reloaded.LastPulledAt()
	assert.Equal(t, ok, true, "last pull time should survive a reload")
	assert.Equal(t, got.Equal(pulledAt), true, "last pull time mismatch")
}

func TestReconcile(t *testing.T) {
	s, _, c := newTestStore(t)

	_, ok := s.LastPulledAt()
	assert.Equal(t, ok, false, "a fresh store has never been pulled")

	a, err := s.Create(newRecord(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")

	arrival := newRecord(models.SubjectBEC, 15).WithMeta(models.Meta{
		ID:        "remote-b",
		CreatedAt: c.Now().Add(-time.Hour),
		UpdatedAt: c.Now().Add(-time.Hour),
	})

	err = s.Reconcile(c.Now(), func(st State[models.Record]) State[models.Record] {
		assert.Equal(t, len(st.Entities), 1, "snapshot length mismatch")

		st.Entities = append(st.Entities, arrival)
		st.IdentityMap["remote-b"] = "remote-b"
		return st
	})
	assert.NoError(t, err, "reconciling")

	list := s.List()
	assert.Equal(t, len(list), 2, "list length mismatch")
	assert.Equal(t, list[0].ID, a.ID, "local entity mismatch")
	assert.Equal(t, list[1].ID, "remote-b", "arrival mismatch")

	snap := s.Snapshot()
	assert.DeepEqual(t, snap.IdentityMap, map[string]string{"remote-b": "remote-b"}, "identity map mismatch")
}

func TestTombstones(t *testing.T) {
	s, db, c := newTestStore(t)

	rec, err := s.Create(newRecord(models.SubjectBEC, 25))
	assert.NoError(t, err, "creating")

	_, mapped, err := s.Delete(rec.ID)
	assert.NoError(t, err, "deleting")
	assert.Equal(t, mapped, false, "entity was not mapped")
	assert.Equal(t, s.Deleted(rec.ID), true, "entity should be tombstoned")
	assert.Equal(t, len(s.PendingArchives()), 0, "nothing to archive without a remote copy")

	// the create push resolves after the delete
	ok, err := s.SetMapping(rec.ID, "remote-late")
	assert.NoError(t, err, "mapping after delete")
	assert.Equal(t, ok, false, "a deleted entity should not be mapped")
	assert.Equal(t, s.DeletedRemote("remote-late"), true, "remote id should be tombstoned")
	assert.Equal(t, s.DeletedRemote(""), false, "empty remote id should never match")

	pending := s.PendingArchives()
	assert.Equal(t, len(pending), 1, "pending archives mismatch")
	assert.Equal(t, pending[0].LocalID, rec.ID, "local id mismatch")
	assert.Equal(t, pending[0].RemoteID, "remote-late", "remote id mismatch")

	reloaded, err := New[models.Record](db, consts.FamilyRecords, c, "device-1")
	assert.NoError(t, err, "reloading")
	assert.Equal(t, reloaded.Deleted(rec.ID), true, "tombstone should survive a reload")
	assert.Equal(t, len(reloaded.PendingArchives()), 1, "pending archive should survive a reload")

	assert.NoError(t, reloaded.MarkArchived(rec.ID), "marking archived")
	assert.Equal(t, len(reloaded.PendingArchives()), 0, "archive should be done")
	assert.Equal(t, reloaded.DeletedRemote("remote-late"), true, "archived remote id should stay tombstoned")

	err = reloaded.MarkArchived("unknown")
	assert.EqualErrors(t, err, ErrNotFound, "marking an unknown id")
}

func TestCreateCheck(t *testing.T) {
	s, _, _ := newTestStore(t)

	errTaken := errors.New("taken")
	oneFAR := func(existing []models.Record, input models.Record) error {
		for _, r := range existing {
			if r.Subject == input.Subject {
				return errTaken
			}
		}

		return nil
	}

	_, err := s.Create(newRecord(models.SubjectFAR, 45), oneFAR)
	assert.NoError(t, err, "creating first")
	_, err = s.Create(newRecord(models.SubjectFAR, 30), oneFAR)
	assert.EqualErrors(t, err, errTaken, "creating a duplicate")
	_, err = s.Create(newRecord(models.SubjectAUD, 30), oneFAR)
	assert.NoError(t, err, "creating another subject")

	assert.Equal(t, len(s.List()), 2, "rejected input should not be stored")
}
