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

package app

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/testutils"
	"github.com/pkg/errors"
)

func newTestApp(t *testing.T) (App, *clock.Mock) {
	c := clock.NewMock()
	c.SetNow(time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))

	a := NewTest()
	a.DB = testutils.InitMemoryDB(t)
	a.Clock = c

	return a, c
}

func TestCreateDocument(t *testing.T) {
	a, c := newTestApp(t)

	doc, err := a.CreateDocument("db-records", DocumentParams{
		Properties: Properties{"subject": "FAR", "minutes": 45},
		Children:   json.RawMessage(`[{"type":"paragraph","text":"hi"}]`),
	})
	assert.NoError(t, err, "creating document")

	var got database.Document
	testutils.MustExec(t, a.DB.Where("uuid = ?", doc.UUID).First(&got), "finding document")

	props, err := DecodeProperties(got)
	assert.NoError(t, err, "decoding properties")

	assert.Equal(t, got.DatabaseID, "db-records", "database id mismatch")
	assert.Equal(t, props["subject"], "FAR", "subject mismatch")
	assert.Equal(t, props["minutes"], float64(45), "minutes mismatch")
	assert.Equal(t, got.Children, `[{"type":"paragraph","text":"hi"}]`, "children mismatch")
	assert.Equal(t, got.Archived, false, "archived mismatch")
	assert.Equal(t, got.UpdatedAt.Equal(c.Now()), true, "updated_at mismatch")
}

func TestCreateDocumentDropsNullProperties(t *testing.T) {
	a, _ := newTestApp(t)

	doc, err := a.CreateDocument("db-records", DocumentParams{
		Properties: Properties{"subject": "FAR", "memo": nil},
	})
	assert.NoError(t, err, "creating document")

	props, err := DecodeProperties(doc)
	assert.NoError(t, err, "decoding properties")

	_, ok := props["memo"]
	assert.Equal(t, ok, false, "a null property should not be stored")
	assert.Equal(t, props["subject"], "FAR", "subject mismatch")
}

func TestCreateDocumentEmptyDatabase(t *testing.T) {
	a, _ := newTestApp(t)

	_, err := a.CreateDocument("", DocumentParams{})
	assert.Equal(t, err, ErrEmptyDatabaseID, "error mismatch")
}

func TestUpdateDocument(t *testing.T) {
	a, c := newTestApp(t)

	doc := testutils.SetupDocument(t, a.DB, "db-notes", map[string]interface{}{
		"title": "Revenue",
		"page":  12,
	}, c.Now())
	doc.Children = `[{"type":"paragraph","text":"old"}]`
	testutils.MustExec(t, a.DB.Save(&doc), "setting children")

	c.Advance(time.Minute)

	testCases := []struct {
		params           DocumentParams
		expectedTitle    interface{}
		expectedPage     interface{}
		expectedChildren string
	}{
		{
			params:           DocumentParams{Properties: Properties{"title": "Leases"}},
			expectedTitle:    "Leases",
			expectedPage:     float64(12),
			expectedChildren: `[{"type":"paragraph","text":"old"}]`,
		},
		{
			params: DocumentParams{
				Properties: Properties{"page": nil},
				Children:   json.RawMessage(`[]`),
			},
			expectedTitle:    "Leases",
			expectedPage:     nil,
			expectedChildren: `[]`,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			updated, err := a.UpdateDocument(doc.UUID, tc.params)
			assert.NoError(t, err, "updating document")

			props, err := DecodeProperties(updated)
			assert.NoError(t, err, "decoding properties")

			assert.Equal(t, props["title"], tc.expectedTitle, "title mismatch")
			assert.Equal(t, props["page"], tc.expectedPage, "page mismatch")
			assert.Equal(t, updated.Children, tc.expectedChildren, "children mismatch")
			assert.Equal(t, updated.UpdatedAt.Equal(c.Now()), true, "updated_at mismatch")
		})
	}
}

func TestUpdateDocumentErrors(t *testing.T) {
	a, c := newTestApp(t)

	archived := testutils.SetupDocument(t, a.DB, "db-notes", nil, c.Now())
	_, err := a.ArchiveDocument(archived.UUID)
	assert.NoError(t, err, "archiving document")

	testCases := []struct {
		uuid        string
		expectedErr error
	}{
		{uuid: testutils.MustUUID(t), expectedErr: ErrNotFound},
		{uuid: archived.UUID, expectedErr: ErrArchived},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			_, err := a.UpdateDocument(tc.uuid, DocumentParams{Properties: Properties{"title": "x"}})
			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")
		})
	}
}

func TestArchiveDocument(t *testing.T) {
	a, c := newTestApp(t)

	doc := testutils.SetupDocument(t, a.DB, "db-records", nil, c.Now())
	c.Advance(time.Hour)

	archived, err := a.ArchiveDocument(doc.UUID)
	assert.NoError(t, err, "archiving document")
	assert.Equal(t, archived.Archived, true, "archived mismatch")
	assert.Equal(t, archived.ArchivedAt.Equal(c.Now()), true, "archived_at mismatch")

	// archiving again keeps the first archive time
	c.Advance(time.Hour)
	again, err := a.ArchiveDocument(doc.UUID)
	assert.NoError(t, err, "archiving document again")
	assert.Equal(t, again.ArchivedAt.Equal(archived.ArchivedAt.UTC()), true, "archived_at should not change")

	_, err = a.ArchiveDocument(testutils.MustUUID(t))
	assert.Equal(t, errors.Cause(err), ErrNotFound, "error mismatch")
}

func TestListDocuments(t *testing.T) {
	a, c := newTestApp(t)

	t0 := c.Now()
	d1 := testutils.SetupDocument(t, a.DB, "db-records", nil, t0)
	d2 := testutils.SetupDocument(t, a.DB, "db-records", nil, t0.Add(time.Hour))
	d3 := testutils.SetupDocument(t, a.DB, "db-records", nil, t0.Add(2*time.Hour))
	testutils.SetupDocument(t, a.DB, "db-notes", nil, t0)
	d5 := testutils.SetupDocument(t, a.DB, "db-records", nil, t0)
	_, err := a.ArchiveDocument(d5.UUID)
	assert.NoError(t, err, "archiving d5")

	uuids := func(docs []database.Document) []string {
		ret := []string{}
		for _, d := range docs {
			ret = append(ret, d.UUID)
		}
		return ret
	}

	testCases := []struct {
		params             ListParams
		expected           []string
		expectedHasMore    bool
		expectedNextCursor int
	}{
		{
			params:   ListParams{},
			expected: []string{d1.UUID, d2.UUID, d3.UUID},
		},
		{
			params:             ListParams{PageSize: 2},
			expected:           []string{d1.UUID, d2.UUID},
			expectedHasMore:    true,
			expectedNextCursor: d2.ID,
		},
		{
			params:   ListParams{PageSize: 2, Cursor: d2.ID},
			expected: []string{d3.UUID},
		},
		{
			params:   ListParams{UpdatedSince: t0.Add(time.Hour)},
			expected: []string{d2.UUID, d3.UUID},
		},
		{
			params:   ListParams{Archived: true},
			expected: []string{d5.UUID},
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			got, err := a.ListDocuments("db-records", tc.params)
			assert.NoError(t, err, "listing documents")

			assert.DeepEqual(t, uuids(got.Documents), tc.expected, "documents mismatch")
			assert.Equal(t, got.HasMore, tc.expectedHasMore, "has_more mismatch")
			assert.Equal(t, got.NextCursor, tc.expectedNextCursor, "next cursor mismatch")
		})
	}
}
