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
	"sync"
	"testing"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/store"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

var errRemote = errors.New("remote unavailable")

// fakeAdapter is an in-memory remote collection recording every call
type fakeAdapter[T models.Entity[T]] struct {
	mu         sync.Mutex
	configured bool
	docs       []remote.Doc[T]
	calls      []string
	seq        int

	listErr    error
	createErr  error
	archiveErr error
	// gate, if set, blocks Create until it is closed
	gate chan struct{}
}

func newFakeAdapter[T models.Entity[T]]() *fakeAdapter[T] {
	return &fakeAdapter[T]{configured: true}
}

func (f *fakeAdapter[T]) Configured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.configured
}

func (f *fakeAdapter[T]) setDocs(docs ...remote.Doc[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docs = docs
}

func (f *fakeAdapter[T]) getCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeAdapter[T]) List(ctx context.Context, filter remote.Filter) ([]remote.Doc[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}

	return append([]remote.Doc[T](nil), f.docs...), nil
}

func (f *fakeAdapter[T]) Get(ctx context.Context, remoteID string) (*remote.Doc[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, d := range f.docs {
		if d.RemoteID == remoteID {
			doc := d
			return &doc, nil
		}
	}

	return nil, nil
}

func (f *fakeAdapter[T]) Create(ctx context.Context, e T) (remote.Doc[T], error) {
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "create "+e.GetMeta().ID)
	if f.createErr != nil {
		return remote.Doc[T]{}, f.createErr
	}

	f.seq++
	doc := remote.Doc[T]{RemoteID: fmt.Sprintf("remote-%d", f.seq), Entity: e}
	f.docs = append(f.docs, doc)

	return doc, nil
}

func (f *fakeAdapter[T]) Update(ctx context.Context, remoteID string, e T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "update "+remoteID)
	for i, d := range f.docs {
		if d.RemoteID == remoteID {
			f.docs[i].Entity = e
		}
	}

	return nil
}

func (f *fakeAdapter[T]) Archive(ctx context.Context, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "archive "+remoteID)
	if f.archiveErr != nil {
		return f.archiveErr
	}

	for i, d := range f.docs {
		if d.RemoteID == remoteID {
			f.docs = append(f.docs[:i:i], f.docs[i+1:]...)
			break
		}
	}

	return nil
}

type fakeSettingsAdapter struct {
	mu       sync.Mutex
	doc      *remote.Doc[models.Settings]
	upserts  []string
	fetchErr error
}

func (f *fakeSettingsAdapter) Configured() bool {
	return true
}

func (f *fakeSettingsAdapter) Fetch(ctx context.Context) (*remote.Doc[models.Settings], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.doc == nil {
		return nil, nil
	}

	doc := *f.doc
	doc.Entity = doc.Entity.Clone()

	return &doc, nil
}

func (f *fakeSettingsAdapter) Upsert(ctx context.Context, remoteID string, s models.Settings) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts = append(f.upserts, remoteID)
	if remoteID == "" {
		remoteID = "remote-settings"
	}
	f.doc = &remote.Doc[models.Settings]{RemoteID: remoteID, Entity: s.Clone()}

	return remoteID, nil
}

type fakeSink struct {
	mu         sync.Mutex
	configured bool
	sessions   []models.RawSession
}

func (f *fakeSink) Configured() bool {
	return f.configured
}

func (f *fakeSink) CreateSession(ctx context.Context, s models.RawSession) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions = append(f.sessions, s)

	return fmt.Sprintf("session-doc-%d", len(f.sessions)), nil
}

func newRecordEngine(t *testing.T, adapter remote.Adapter[models.Record]) (*Engine[models.Record], *store.Store[models.Record], *clock.Mock, *database.DB) {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()

	s, err := store.New[models.Record](db, consts.FamilyRecords, c, "device-1")
	assert.NoError(t, err, "creating store")

	return NewEngine(s, adapter, c), s, c, db
}
