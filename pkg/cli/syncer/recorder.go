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

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/identity"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/pkg/errors"
)

// ErrSessionTooShort is an error for a timer session under the minimum
// duration
var ErrSessionTooShort = errors.Errorf("sessions shorter than %d seconds are not recorded", models.MinSessionSeconds)

// Recorder turns finalized timer sessions into study records
type Recorder struct {
	records  *Engine[models.Record]
	sink     remote.SessionSink
	deviceID string

	wg sync.WaitGroup
}

// NewRecorder returns a Recorder creating records through the given engine
func NewRecorder(records *Engine[models.Record], sink remote.SessionSink, deviceID string) *Recorder {
	return &Recorder{
		records:  records,
		sink:     sink,
		deviceID: deviceID,
	}
}

// Wait blocks until every raw session push started so far has finished
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Record creates a timer-sourced record for the session and mirrors the raw
// session to the remote. Both carry the same fresh session id.
func (r *Recorder) Record(s models.Session) (models.Record, error) {
	if s.Seconds < models.MinSessionSeconds {
		return models.Record{}, ErrSessionTooShort
	}

	sessionID := identity.NewSessionID()

	rec, err := r.records.Create(models.Record{
		Type:         models.RecordTypeTextbook,
		Subject:      s.Subject,
		Subtopic:     s.Subtopic,
		StudyMinutes: s.Minutes(),
		StudiedAt:    s.StartedAt.Local().Format(models.DateLayout),
		Source:       models.SourceTimer,
		SessionID:    sessionID,
	})
	if err != nil {
		return models.Record{}, errors.Wrap(err, "creating the record")
	}

	if r.sink.Configured() {
		raw := models.RawSession{
			Session:   s,
			SessionID: sessionID,
			DeviceID:  r.deviceID,
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()

			_, err := r.sink.CreateSession(context.Background(), raw)
			countPush(consts.FamilySessions, opCreate, err)
			if err != nil {
				log.Warnf("failed to push session %s: %s\n", sessionID, err.Error())
			}
		}()
	}

	return rec, nil
}
