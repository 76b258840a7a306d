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

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/pkg/errors"
)

// fakeStore is an in-memory document store serving a page of two documents
// at a time
type fakeStore struct {
	mu       sync.Mutex
	docs     map[string]*Document
	seq      int
	requests []string
	token    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]*Document{}, token: "secret"}
}

func (f *fakeStore) put(d Document) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docs[d.ID] = &d
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if r.URL.Path == "/health" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/"), "/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case len(parts) == 3 && parts[0] == "databases" && r.Method == http.MethodGet:
		f.list(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "databases" && r.Method == http.MethodPost:
		var p DocumentPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.seq++
		now := time.Date(2026, 1, 10, 9, 0, f.seq, 0, time.UTC)
		d := &Document{
			ID:             fmt.Sprintf("remote-%d", f.seq),
			Database:       parts[1],
			CreatedTime:    now,
			LastEditedTime: now,
			Properties:     p.Properties,
			Children:       p.Children,
		}
		for k, v := range d.Properties {
			if v == nil {
				delete(d.Properties, k)
			}
		}
		f.docs[d.ID] = d
		json.NewEncoder(w).Encode(d)
	case len(parts) == 2 && parts[0] == "documents":
		d, ok := f.docs[parts[1]]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(d)
		case http.MethodPatch:
			var p DocumentPayload
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			for k, v := range p.Properties {
				if v == nil {
					delete(d.Properties, k)
					continue
				}
				d.Properties[k] = v
			}
			if p.Children != nil {
				d.Children = p.Children
			}
			json.NewEncoder(w).Encode(d)
		case http.MethodDelete:
			d.Archived = true
			json.NewEncoder(w).Encode(d)
		}
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (f *fakeStore) list(w http.ResponseWriter, r *http.Request, db string) {
	var ids []string
	for id, d := range f.docs {
		if d.Database == db {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	offset, _ := strconv.Atoi(r.URL.Query().Get("cursor"))
	end := offset + 2
	if end > len(ids) {
		end = len(ids)
	}

	page := DocumentList{Results: []Document{}}
	for _, id := range ids[offset:end] {
		page.Results = append(page.Results, *f.docs[id])
	}
	if end < len(ids) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}

	json.NewEncoder(w).Encode(page)
}

func setupClient(t *testing.T, f *fakeStore) (*Client, func()) {
	server := httptest.NewServer(f)

	c := NewClient(Options{
		Endpoint: server.URL + "/api",
		Token:    "secret",
		Version:  "test",
		Databases: map[string]string{
			consts.FamilyRecords:  "db-records",
			consts.FamilyNotes:    "db-notes",
			consts.FamilySettings: "db-settings",
			consts.FamilySessions: "db-sessions",
		},
	}, server.Client())

	return c, server.Close
}

func newRecord(id string) models.Record {
	ts := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	return models.Record{
		Meta: models.Meta{
			ID:        id,
			CreatedAt: ts,
			UpdatedAt: ts.Add(time.Minute),
			DeviceID:  "device-1",
		},
		Type:          models.RecordTypePractice,
		Subject:       models.SubjectFAR,
		Subtopic:      "Leases",
		StudyMinutes:  45,
		QuestionCount: models.Int(20),
		CorrectCount:  models.Int(15),
		Round:         models.Int(2),
		StudiedAt:     "2026-01-10",
		Source:        models.SourceManual,
	}
}

func TestRecordCodec(t *testing.T) {
	r := newRecord("local-1")

	payload := RecordCodec{}.Encode(r)

	// decode what would come back over the wire
	b, err := json.Marshal(payload.Properties)
	assert.NoError(t, err, "marshalling")
	var props Properties
	assert.NoError(t, json.Unmarshal(b, &props), "unmarshalling")

	got, err := RecordCodec{}.Decode(Document{ID: "remote-1", Properties: props})
	assert.NoError(t, err, "decoding")
	assert.DeepEqual(t, got, r, "record mismatch")
}

func TestDecodeMetaFallback(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	edited := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	d := Document{
		ID:             "remote-1",
		CreatedTime:    created,
		LastEditedTime: edited,
		Properties: Properties{
			"recordType":   "textbook",
			"subject":      "AUD",
			"studyMinutes": float64(30),
			"studiedAt":    "2026-01-01",
		},
	}

	got, err := RecordCodec{}.Decode(d)
	assert.NoError(t, err, "decoding")
	assert.Equal(t, got.ID, "remote-1", "id mismatch")
	assert.Equal(t, got.CreatedAt, created, "createdAt mismatch")
	assert.Equal(t, got.UpdatedAt, edited, "updatedAt mismatch")
	assert.Equal(t, got.Source, models.SourceManual, "source mismatch")
}

func TestNoteCodec(t *testing.T) {
	ts := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	n := models.Note{
		Meta:       models.Meta{ID: "note-1", CreatedAt: ts, UpdatedAt: ts},
		Type:       models.NoteTypePage,
		Title:      "Leases",
		Content:    "# Lessee\n\n- right of use\n- lease liability",
		Subject:    models.SubjectFAR,
		MaterialID: "far-textbook",
		Page:       models.Int(42),
		Tags:       []string{"leases", "review"},
	}

	payload := NoteCodec{}.Encode(n)
	assert.Equal(t, len(payload.Children), 3, "children length mismatch")

	b, err := json.Marshal(Document{ID: "remote-1", Properties: payload.Properties, Children: payload.Children})
	assert.NoError(t, err, "marshalling")
	var d Document
	assert.NoError(t, json.Unmarshal(b, &d), "unmarshalling")

	got, err := NoteCodec{}.Decode(d)
	assert.NoError(t, err, "decoding")
	assert.DeepEqual(t, got, n, "note mismatch")
}

func TestCollectionNotConfigured(t *testing.T) {
	c := NewClient(Options{}, nil)
	records := NewCollection[models.Record](c, consts.FamilyRecords, RecordCodec{})

	assert.Equal(t, records.Configured(), false, "configured mismatch")

	_, err := records.List(context.Background(), Filter{})
	assert.EqualErrors(t, err, ErrNotConfigured, "error mismatch")

	_, err = records.Create(context.Background(), newRecord("local-1"))
	assert.EqualErrors(t, err, ErrNotConfigured, "error mismatch")
}

func TestCollectionMissingDatabase(t *testing.T) {
	c := NewClient(Options{Endpoint: "http://localhost/api", Token: "secret"}, nil)
	notes := NewCollection[models.Note](c, consts.FamilyNotes, NoteCodec{})

	assert.Equal(t, notes.Configured(), false, "configured mismatch")
}

func TestCollection(t *testing.T) {
	f := newFakeStore()
	c, teardown := setupClient(t, f)
	defer teardown()

	ctx := context.Background()
	records := NewCollection[models.Record](c, consts.FamilyRecords, RecordCodec{})
	assert.Equal(t, records.Configured(), true, "configured mismatch")

	// create more documents than fit in a page
	var remoteIDs []string
	for i := 0; i < 5; i++ {
		doc, err := records.Create(ctx, newRecord(fmt.Sprintf("local-%d", i)))
		assert.NoError(t, err, "creating")
		remoteIDs = append(remoteIDs, doc.RemoteID)
	}

	// a document that cannot be decoded is skipped
	f.put(Document{ID: "remote-broken", Database: "db-records", Properties: Properties{"subject": "XYZ"}})

	docs, err := records.List(ctx, Filter{})
	assert.NoError(t, err, "listing")
	assert.Equal(t, len(docs), 5, "length mismatch")

	updated := newRecord("local-0")
	updated.StudyMinutes = 90
	assert.NoError(t, records.Update(ctx, remoteIDs[0], updated), "updating")

	doc, err := records.Get(ctx, remoteIDs[0])
	assert.NoError(t, err, "getting")
	assert.Equal(t, doc.Entity.StudyMinutes, 90, "minutes mismatch")
	assert.Equal(t, doc.Entity.ID, "local-0", "local id mismatch")

	assert.NoError(t, records.Archive(ctx, remoteIDs[1]), "archiving")

	doc, err = records.Get(ctx, remoteIDs[1])
	assert.NoError(t, err, "getting archived")
	assert.Equal(t, doc == nil, true, "archived document should be absent")

	doc, err = records.Get(ctx, "remote-unknown")
	assert.NoError(t, err, "getting unknown")
	assert.Equal(t, doc == nil, true, "unknown document should be absent")

	docs, err = records.List(ctx, Filter{})
	assert.NoError(t, err, "listing after archive")
	assert.Equal(t, len(docs), 4, "length mismatch after archive")
}

func TestEncodeClearsEmptyFields(t *testing.T) {
	r := newRecord("local-1")
	r.QuestionCount = nil
	r.CorrectCount = nil
	r.Round = nil
	r.Subtopic = ""

	p := RecordCodec{}.Encode(r).Properties
	for _, key := range []string{"subtopic", "questionCount", "correctCount", "round", "chapter", "pageRange", "memo", "sessionId"} {
		v, ok := p[key]
		assert.Equal(t, ok, true, fmt.Sprintf("%s should be sent", key))
		assert.Equal(t, v, nil, fmt.Sprintf("%s should be null", key))
	}

	ts := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	payload := NoteCodec{}.Encode(models.Note{
		Meta: models.Meta{ID: "note-1", CreatedAt: ts, UpdatedAt: ts},
		Type: models.NoteTypeStandalone,
	})
	b, err := json.Marshal(payload)
	assert.NoError(t, err, "marshalling")
	assert.Equal(t, strings.Contains(string(b), `"children":[]`), true, "empty content should be sent as an empty body")
	assert.Equal(t, strings.Contains(string(b), `"tags":null`), true, "empty tags should be sent as null")

	b, err = json.Marshal(RecordCodec{}.Encode(newRecord("local-2")))
	assert.NoError(t, err, "marshalling")
	assert.Equal(t, strings.Contains(string(b), `"children":null`), true, "records should leave the body unchanged")
}

func TestCollectionUpdateClearsFields(t *testing.T) {
	f := newFakeStore()
	c, teardown := setupClient(t, f)
	defer teardown()

	ctx := context.Background()
	records := NewCollection[models.Record](c, consts.FamilyRecords, RecordCodec{})
	notes := NewCollection[models.Note](c, consts.FamilyNotes, NoteCodec{})

	textbook := newRecord("local-1")
	textbook.Type = models.RecordTypeTextbook
	textbook.QuestionCount = nil
	textbook.CorrectCount = nil
	textbook.Chapter = "3"
	textbook.PageRange = "40-58"
	textbook.Memo = "first"

	doc, err := records.Create(ctx, textbook)
	assert.NoError(t, err, "creating the record")

	practice := newRecord("local-1")
	practice.UpdatedAt = practice.UpdatedAt.Add(time.Minute)
	assert.NoError(t, records.Update(ctx, doc.RemoteID, practice), "updating the record")

	got, err := records.Get(ctx, doc.RemoteID)
	assert.NoError(t, err, "getting the record")
	if got == nil {
		t.Fatal("the record should be present")
	}
	assert.Equal(t, got.Entity.Type, models.RecordTypePractice, "type mismatch")
	assert.Equal(t, got.Entity.Chapter, "", "chapter should be cleared")
	assert.Equal(t, got.Entity.PageRange, "", "page range should be cleared")
	assert.Equal(t, got.Entity.Memo, "", "memo should be cleared")

	ts := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	note := models.Note{
		Meta:    models.Meta{ID: "note-1", CreatedAt: ts, UpdatedAt: ts},
		Type:    models.NoteTypeStandalone,
		Title:   "Leases",
		Content: "plain text",
		Tags:    []string{"leases"},
	}
	ndoc, err := notes.Create(ctx, note)
	assert.NoError(t, err, "creating the note")

	note.Title = ""
	note.Content = ""
	note.Tags = nil
	note.UpdatedAt = ts.Add(time.Minute)
	assert.NoError(t, notes.Update(ctx, ndoc.RemoteID, note), "updating the note")

	gotNote, err := notes.Get(ctx, ndoc.RemoteID)
	assert.NoError(t, err, "getting the note")
	if gotNote == nil {
		t.Fatal("the note should be present")
	}
	assert.Equal(t, gotNote.Entity.Title, "", "title should be cleared")
	assert.Equal(t, gotNote.Entity.Content, "", "content should be cleared")
	assert.Equal(t, len(gotNote.Entity.Tags), 0, "tags should be cleared")
}

func TestCollectionUnauthorized(t *testing.T) {
	f := newFakeStore()
	f.token = "other"
	c, teardown := setupClient(t, f)
	defer teardown()

	records := NewCollection[models.Record](c, consts.FamilyRecords, RecordCodec{})

	_, err := records.List(context.Background(), Filter{})

	var httpErr *HTTPError
	assert.Equal(t, errors.As(err, &httpErr), true, "error should be an http error")
	assert.Equal(t, httpErr.StatusCode, http.StatusUnauthorized, "status code mismatch")
}

func TestSettingsRemote(t *testing.T) {
	f := newFakeStore()
	c, teardown := setupClient(t, f)
	defer teardown()

	ctx := context.Background()
	s := NewSettingsRemote(c)

	doc, err := s.Fetch(ctx)
	assert.NoError(t, err, "fetching empty")
	assert.Equal(t, doc == nil, true, "settings should be absent")

	settings := models.DefaultSettings()
	settings.ExamDates[models.SubjectFAR] = "2026-05-01"
	settings.TargetHours[models.SubjectFAR] = 300
	settings.UpdatedAt = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	remoteID, err := s.Upsert(ctx, "", settings)
	assert.NoError(t, err, "creating")

	settings.ExamDates[models.SubjectAUD] = "2026-07-01"
	id, err := s.Upsert(ctx, remoteID, settings)
	assert.NoError(t, err, "updating")
	assert.Equal(t, id, remoteID, "remote id should be kept")

	doc, err = s.Fetch(ctx)
	assert.NoError(t, err, "fetching")
	assert.Equal(t, doc.RemoteID, remoteID, "remote id mismatch")
	assert.DeepEqual(t, doc.Entity, settings, "settings mismatch")

	// a vanished document is recreated
	id, err = s.Upsert(ctx, "remote-gone", settings)
	assert.NoError(t, err, "upserting vanished")
	assert.NotEqual(t, id, "remote-gone", "a new document should be created")
}

func TestSessionRemote(t *testing.T) {
	f := newFakeStore()
	c, teardown := setupClient(t, f)
	defer teardown()

	started := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	session := models.RawSession{
		Session: models.Session{
			Subject:   models.SubjectREG,
			Seconds:   1500,
			StartedAt: started,
			EndedAt:   started.Add(25 * time.Minute),
		},
		SessionID: "session-1",
		DeviceID:  "device-1",
	}

	s := NewSessionRemote(c)
	assert.Equal(t, s.Configured(), true, "configured mismatch")

	id, err := s.CreateSession(context.Background(), session)
	assert.NoError(t, err, "creating session")

	d := f.docs[id]
	got, err := SessionCodec{}.Decode(*d)
	assert.NoError(t, err, "decoding")
	assert.DeepEqual(t, got, session, "session mismatch")
}

func TestPing(t *testing.T) {
	f := newFakeStore()
	c, teardown := setupClient(t, f)
	defer teardown()

	assert.NoError(t, c.Ping(context.Background()), "pinging")
	assert.Equal(t, f.requests[0], "GET /health", "request mismatch")

	offline := NewClient(Options{Endpoint: "http://127.0.0.1:1/api", Token: "secret"}, nil)
	assert.NotEqual(t, offline.Ping(context.Background()), nil, "offline ping should fail")
}
