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
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
)

func TestRecorder(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, _, _ := newRecordEngine(t, adapter)
	sink := &fakeSink{configured: true}
	r := NewRecorder(e, sink, "device-1")

	started := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	session := models.Session{
		Subject:   models.SubjectREG,
		Subtopic:  "Ethics",
		Seconds:   25*60 + 40,
		StartedAt: started,
		EndedAt:   started.Add(26 * time.Minute),
	}

	got, err := r.Record(session)
	assert.NoError(t, err, "recording")
	r.Wait()
	e.Wait()

	assert.Equal(t, got.Source, models.SourceTimer, "source mismatch")
	assert.Equal(t, got.Type, models.RecordTypeTextbook, "type mismatch")
	assert.Equal(t, got.StudyMinutes, 26, "minutes mismatch")
	assert.Equal(t, got.StudiedAt, "2026-01-10", "studiedAt mismatch")
	assert.NotEqual(t, got.SessionID, "", "session id should be set")

	assert.Equal(t, len(sink.sessions), 1, "session count mismatch")
	assert.Equal(t, sink.sessions[0].SessionID, got.SessionID, "session ids should match")
	assert.Equal(t, sink.sessions[0].DeviceID, "device-1", "device id mismatch")
	assert.DeepEqual(t, sink.sessions[0].Session, session, "session mismatch")

	_, mapped := e.Mapping(got.ID)
	assert.Equal(t, mapped, true, "record should be pushed")
}

func TestRecorderShortSession(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, _, _ := newRecordEngine(t, adapter)
	sink := &fakeSink{configured: true}
	r := NewRecorder(e, sink, "device-1")

	_, err := r.Record(models.Session{Subject: models.SubjectFAR, Seconds: 59})
	assert.EqualErrors(t, err, ErrSessionTooShort, "error mismatch")
	r.Wait()

	assert.Equal(t, len(e.List()), 0, "no record should be created")
	assert.Equal(t, len(sink.sessions), 0, "no session should be pushed")
}

func TestRecorderSinkNotConfigured(t *testing.T) {
	adapter := newFakeAdapter[models.Record]()
	e, _, _, _ := newRecordEngine(t, adapter)
	sink := &fakeSink{}
	r := NewRecorder(e, sink, "device-1")

	_, err := r.Record(models.Session{Subject: models.SubjectFAR, Seconds: 600, StartedAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)})
	assert.NoError(t, err, "recording")
	r.Wait()

	assert.Equal(t, len(e.List()), 1, "record should be created")
	assert.Equal(t, len(sink.sessions), 0, "no session should be pushed")
}
