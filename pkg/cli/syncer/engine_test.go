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
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/store"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newInput(subject models.Subject, minutes int) models.Record {
	return models.Record{
		Type:         models.RecordTypeTextbook,
		Subject:      subject,
		StudyMinutes: minutes,
		StudiedAt:    "2026-01-10",
		Source:       models.SourceManual,
	}
}

func TestCreateIsVisibleBeforePush(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	adapter.gate = make(chan struct{})
	e, _, _, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")

	got, ok := e.Get(r.ID)
	assert.Equal(t, ok, true, "entity should be readable before the push resolves")
	assert.DeepEqual(t, got, r, "entity mismatch")
	_, mapped := e.Mapping(r.ID)
	assert.Equal(t, mapped, false, "entity should not be mapped yet")

	close(adapter.gate)
	e.Wait()

	remoteID, mapped := e.Mapping(r.ID)
	assert.Equal(t, mapped, true, "entity should be mapped after the push")
	assert.Equal(t, remoteID, "remote-1", "remote id mismatch")
}

func TestCreateExampleScenario(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, c, _ := newRecordEngine(t, adapter)

	original, err := e.Create(newInput(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")
	e.Wait()

	assert.NotEqual(t, original.ID, "", "local id should be assigned")
	assert.Equal(t, original.UpdatedAt, original.CreatedAt, "updatedAt should equal createdAt")
	assert.Equal(t, e.List()[0].ID, original.ID, "record should be at the head")

	other := rec("other-device-record", c.Now(), c.Now().Add(time.Hour), 30)
	adapter.setDocs(
		doc("remote-1", original),
		doc("remote-other", other),
	)

	assert.NoError(t, e.Pull(context.Background()), "pulling")

	list := e.List()
	assert.Equal(t, len(list), 2, "count should be incremented by one")
	got, ok := e.Get(original.ID)
	assert.Equal(t, ok, true, "original should be kept")
	assert.DeepEqual(t, got, original, "original should be untouched")
	got, ok = e.Get(other.ID)
	assert.Equal(t, ok, true, "new arrival should be added")
	assert.DeepEqual(t, got, other, "new arrival mismatch")
}

func TestPushTwiceUsesUpdate(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, c, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectAUD, 30))
	assert.NoError(t, err, "creating")
	e.Wait()

	c.Advance(time.Minute)
	_, err = e.Update(r.ID, models.RecordPatch{StudyMinutes: models.Int(40)})
	assert.NoError(t, err, "updating")
	e.Wait()

	assert.DeepEqual(t, adapter.getCalls(), []string{"create " + r.ID, "update remote-1"}, "calls mismatch")
	assert.Equal(t, len(adapter.docs), 1, "a single remote document should exist")
	assert.Equal(t, adapter.docs[0].Entity.StudyMinutes, 40, "remote copy should be updated")
}

func TestUpdateUnmappedDoesNotPush(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	adapter.createErr = errRemote
	e, _, _, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectAUD, 30))
	assert.NoError(t, err, "creating")
	e.Wait()

	got, err := e.Update(r.ID, models.RecordPatch{Memo: models.String("review")})
	assert.NoError(t, err, "updating")
	e.Wait()

	assert.Equal(t, got.Memo, "review", "memo mismatch")
	assert.DeepEqual(t, adapter.getCalls(), []string{"create " + r.ID}, "calls mismatch")
}

func TestUpdateUnknown(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, _, _ := newRecordEngine(t, adapter)

	_, err := e.Update("unknown", models.RecordPatch{Memo: models.String("x")})
	assert.EqualErrors(t, err, store.ErrNotFound, "error mismatch")

	err = e.Delete("unknown")
	assert.EqualErrors(t, err, store.ErrNotFound, "error mismatch")
	assert.Equal(t, len(adapter.getCalls()), 0, "no remote call should be made")
}

func TestRoundTrip(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, c, _ := newRecordEngine(t, adapter)

	_, err := e.Create(newInput(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")
	e.Wait()
	before := e.List()

	c.Advance(time.Hour)
	assert.NoError(t, e.Pull(context.Background()), "pulling")

	assert.DeepEqual(t, e.List(), before, "collection should be unchanged")
	pulledAt, ok := e.LastPulledAt()
	assert.Equal(t, ok, true, "pull time should be recorded")
	assert.Equal(t, pulledAt, c.Now(), "pull time mismatch")
}

func TestDeleteWithoutMapping(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	adapter.createErr = errRemote
	e, s, _, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectREG, 20))
	assert.NoError(t, err, "creating")
	e.Wait()

	assert.NoError(t, e.Delete(r.ID), "deleting")
	e.Wait()

	assert.DeepEqual(t, adapter.getCalls(), []string{"create " + r.ID}, "no archive call should be made")
	assert.Equal(t, len(e.List()), 0, "entity should be removed")
	assert.Equal(t, len(s.Snapshot().IdentityMap), 0, "identity map should be empty")
}

func TestDeleteMapped(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, _, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectREG, 20))
	assert.NoError(t, err, "creating")
	e.Wait()

	assert.NoError(t, e.Delete(r.ID), "deleting")
	e.Wait()

	assert.DeepEqual(t, adapter.getCalls(), []string{"create " + r.ID, "archive remote-1"}, "calls mismatch")
	assert.Equal(t, len(adapter.docs), 0, "remote copy should be archived")
}

func TestDeleteDuringPush(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	adapter.gate = make(chan struct{})
	e, s, _, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectBEC, 25))
	assert.NoError(t, err, "creating")
	assert.NoError(t, e.Delete(r.ID), "deleting")

	close(adapter.gate)
	e.Wait()

	assert.DeepEqual(t, adapter.getCalls(), []string{"create " + r.ID, "archive remote-1"}, "orphan should be archived")
	assert.Equal(t, len(s.Snapshot().IdentityMap), 0, "orphan should not be mapped")

	// a listing taken before the archive does not bring the entity back
	adapter.setDocs(doc("remote-1", r))
	assert.NoError(t, e.Pull(context.Background()), "pulling")
	assert.Equal(t, len(e.List()), 0, "deleted entity should stay deleted")
}

func TestPullNotConfigured(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	adapter.configured = false
	e, _, _, _ := newRecordEngine(t, adapter)

	_, err := e.Create(newInput(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")
	assert.NoError(t, e.Pull(context.Background()), "pulling")
	e.Wait()

	assert.Equal(t, len(adapter.getCalls()), 0, "no remote call should be made")
	assert.Equal(t, len(e.List()), 1, "local entity should be kept")
	_, ok := e.LastPulledAt()
	assert.Equal(t, ok, false, "pull time should not be recorded")
}

func TestPullFailure(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, _, _ := newRecordEngine(t, adapter)

	_, err := e.Create(newInput(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")
	e.Wait()
	before := e.List()

	adapter.listErr = errRemote
	failuresBefore := testutil.ToFloat64(pullTotal.WithLabelValues(consts.FamilyRecords, resultError))

	err = e.Pull(context.Background())
	assert.EqualErrors(t, err, errRemote, "error mismatch")

	assert.DeepEqual(t, e.List(), before, "collection should be unchanged")
	_, ok := e.LastPulledAt()
	assert.Equal(t, ok, false, "pull time should not advance")
	assert.Equal(t, testutil.ToFloat64(pullTotal.WithLabelValues(consts.FamilyRecords, resultError)), failuresBefore+1, "failure count mismatch")
}

func TestPullPersists(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, c, db := newRecordEngine(t, adapter)

	arrival := rec("arrival", c.Now(), c.Now(), 30)
	adapter.setDocs(doc("remote-arrival", arrival))
	assert.NoError(t, e.Pull(context.Background()), "pulling")

	reloaded, err := store.New[models.Record](db, consts.FamilyRecords, c, "device-1")
	assert.NoError(t, err, "reloading")

	assert.DeepEqual(t, reloaded.List(), []models.Record{arrival}, "entities mismatch")
	remoteID, ok := reloaded.Mapping("arrival")
	assert.Equal(t, ok, true, "mapping should be persisted")
	assert.Equal(t, remoteID, "remote-arrival", "remote id mismatch")

	var count int
	database.MustScan(t, "counting mappings", db.QueryRow("SELECT count(*) FROM identity_map"), &count)
	assert.Equal(t, count, 1, "mapping row count mismatch")
}

func TestPushPending(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	adapter.createErr = errRemote
	e, _, _, _ := newRecordEngine(t, adapter)

	first, err := e.Create(newInput(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating first")
	second, err := e.Create(newInput(models.SubjectAUD, 30))
	assert.NoError(t, err, "creating second")
	e.Wait()

	adapter.mu.Lock()
	adapter.createErr = nil
	adapter.mu.Unlock()

	assert.Equal(t, e.PushPending(context.Background()), 2, "pushed count mismatch")
	_, ok := e.Mapping(first.ID)
	assert.Equal(t, ok, true, "first should be mapped")
	_, ok = e.Mapping(second.ID)
	assert.Equal(t, ok, true, "second should be mapped")

	assert.Equal(t, e.PushPending(context.Background()), 0, "nothing should be pending")
}

func TestCreateWhileNotConfigured(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	adapter.configured = false
	e, _, _, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectFAR, 45))
	assert.NoError(t, err, "creating")
	e.Wait()

	_, ok := e.Get(r.ID)
	assert.Equal(t, ok, true, "entity should be stored")
	assert.Equal(t, len(adapter.getCalls()), 0, "no remote call should be made")
	assert.Equal(t, e.PushPending(context.Background()), 0, "nothing should be pushed")
}

func TestCreateInvalid(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, _, _ := newRecordEngine(t, adapter)

	_, err := e.Create(newInput("XYZ", 45))
	assert.EqualErrors(t, err, models.ErrInvalidSubject, "error mismatch")
	e.Wait()

	assert.Equal(t, len(adapter.getCalls()), 0, "no remote call should be made")
}

func TestNoteEngine(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()

	s, err := store.New[models.Note](db, consts.FamilyNotes, c, "device-1")
	assert.NoError(t, err, "creating store")

	adapter := newFakeAdapter[models.Note]()
	var replaced []Replacement[models.Note]
	e := NewEngine(s, adapter, c,
		WithCreateCheck(UniquePage),
		WithReplaceHook(func(r Replacement[models.Note]) {
			replaced = append(replaced, r)
		}),
	)

	pageNote := models.Note{
		Type:       models.NoteTypePage,
		Content:    "lessee",
		MaterialID: "far-textbook",
		Page:       models.Int(42),
	}

	n, err := e.Create(pageNote)
	assert.NoError(t, err, "creating")
	e.Wait()

	_, err = e.Create(pageNote)
	assert.EqualErrors(t, err, ErrDuplicatePage, "error mismatch")

	pageNote.Page = models.Int(43)
	_, err = e.Create(pageNote)
	assert.NoError(t, err, "creating on another page")
	e.Wait()

	newer := n
	newer.Content = "lessee\nlessor"
	newer.UpdatedAt = c.Now().Add(time.Hour)
	remoteID, _ := e.Mapping(n.ID)
	adapter.setDocs(remote.Doc[models.Note]{RemoteID: remoteID, Entity: newer})

	assert.NoError(t, e.Pull(context.Background()), "pulling")

	got, _ := e.Get(n.ID)
	assert.Equal(t, got.Content, "lessee\nlessor", "content should be replaced")
	assert.Equal(t, len(replaced), 1, "replace hook should be called once")
	assert.Equal(t, replaced[0].Local.Content, "lessee", "local content mismatch")
}

func TestResolve(t *testing.T) {
	e, _, _, _ := newRecordEngine(t, newFakeAdapter[models.Record]())

	r1, err := e.Create(newInput(models.SubjectFAR, 30))
	assert.NoError(t, err, "creating the first record")
	r2, err := e.Create(newInput(models.SubjectAUD, 40))
	assert.NoError(t, err, "creating the second record")
	e.Wait()

	got, err := e.Resolve(r1.ID)
	assert.NoError(t, err, "resolving a full id")
	assert.Equal(t, got.ID, r1.ID, "full id mismatch")

	got, err = e.Resolve(r2.ID[:len(r2.ID)-1])
	assert.NoError(t, err, "resolving a prefix")
	assert.Equal(t, got.ID, r2.ID, "prefix mismatch")

	_, err = e.Resolve("")
	assert.EqualErrors(t, err, store.ErrNotFound, "empty id")

	_, err = e.Resolve("zzzz")
	assert.EqualErrors(t, err, store.ErrNotFound, "unknown id")
}

func TestDeleteSurvivesRestart(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, c, db := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectREG, 20))
	assert.NoError(t, err, "creating")
	e.Wait()

	adapter.archiveErr = errRemote
	assert.NoError(t, e.Delete(r.ID), "deleting")
	e.Wait()
	assert.Equal(t, len(adapter.docs), 1, "remote copy should survive the failed archive")

	// a new process on the same database
	s2, err := store.New[models.Record](db, consts.FamilyRecords, c, "device-1")
	assert.NoError(t, err, "reopening store")
	e2 := NewEngine(s2, adapter, c)

	assert.NoError(t, e2.Pull(context.Background()), "pulling")
	assert.Equal(t, len(e2.List()), 0, "deleted entity should not come back")
	assert.Equal(t, len(s2.PendingArchives()), 1, "archive should be pending")

	adapter.archiveErr = nil
	assert.Equal(t, e2.PushPending(context.Background()), 0, "pushed count mismatch")
	assert.DeepEqual(t, adapter.getCalls(), []string{"create " + r.ID, "archive remote-1", "list", "archive remote-1"}, "calls mismatch")
	assert.Equal(t, len(adapter.docs), 0, "remote copy should be archived")
	assert.Equal(t, len(s2.PendingArchives()), 0, "no archive should be pending")

	s3, err := store.New[models.Record](db, consts.FamilyRecords, c, "device-1")
	assert.NoError(t, err, "reopening store")
	assert.Equal(t, len(s3.PendingArchives()), 0, "archived tombstone should be persisted")
	assert.Equal(t, s3.Deleted(r.ID), true, "tombstone should be persisted")
}

func TestDeleteArchiveOutcome(t *testing.T) {
	testCases := []struct {
		archiveErr      error
		expectedPending int
	}{
		{
			archiveErr:      nil,
			expectedPending: 0,
		},
		{
			archiveErr:      &remote.HTTPError{StatusCode: http.StatusNotFound, Message: "not found"},
			expectedPending: 0,
		},
		{
			archiveErr:      &remote.HTTPError{StatusCode: http.StatusInternalServerError, Message: "boom"},
			expectedPending: 1,
		},
		{
			archiveErr:      errRemote,
			expectedPending: 1,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			adapter := newFakeAdapter[models.Record]()
			e, s, _, _ := newRecordEngine(t, adapter)

			r, err := e.Create(newInput(models.SubjectFAR, 30))
			assert.NoError(t, err, "creating")
			e.Wait()

			adapter.archiveErr = tc.archiveErr
			assert.NoError(t, e.Delete(r.ID), "deleting")
			e.Wait()

			assert.Equal(t, len(s.PendingArchives()), tc.expectedPending, "pending archives mismatch")
			assert.Equal(t, s.Deleted(r.ID), true, "tombstone should be kept")
		})
	}
}

func TestDeleteOfflineArchivesLater(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, s, _, _ := newRecordEngine(t, adapter)

	r, err := e.Create(newInput(models.SubjectAUD, 15))
	assert.NoError(t, err, "creating")
	e.Wait()

	adapter.configured = false
	assert.NoError(t, e.Delete(r.ID), "deleting")
	e.Wait()
	assert.Equal(t, len(adapter.docs), 1, "nothing should be archived while offline")

	adapter.configured = true
	e.PushPending(context.Background())

	assert.Equal(t, len(adapter.docs), 0, "remote copy should be archived")
	assert.Equal(t, len(s.PendingArchives()), 0, "no archive should be pending")
}

func TestCreateCheckIsAtomic(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()
	s, err := store.New[models.Note](db, consts.FamilyNotes, c, "device-1")
	assert.NoError(t, err, "creating store")

	adapter := newFakeAdapter[models.Note]()
	adapter.configured = false
	e := NewEngine(s, adapter, c, WithCreateCheck(UniquePage))

	input := models.Note{Type: models.NoteTypePage, MaterialID: "far", Page: models.Int(12), Content: "lease"}

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Create(input)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.EqualErrors(t, err, ErrDuplicatePage, "error mismatch")
	}

	assert.Equal(t, succeeded, 1, "exactly one create should succeed")
	assert.Equal(t, len(e.List()), 1, "a single note should exist")
}
