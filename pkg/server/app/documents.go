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
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is an error for a document that does not exist
	ErrNotFound = errors.New("document not found")
	// ErrArchived is an error for a write to an archived document
	ErrArchived = errors.New("document is archived")
	// ErrEmptyDatabaseID is an error for a document without a database
	ErrEmptyDatabaseID = errors.New("database id is empty")
)

const (
	// DefaultPageSize is the page size of a document list when none is given
	DefaultPageSize = 100
	// MaxPageSize is the largest page of a document list
	MaxPageSize = 100
)

// Properties are the typed fields of a document
type Properties map[string]interface{}

// DocumentParams is the content of a document in a create or an update
type DocumentParams struct {
	Properties Properties
	// Children is the JSON encoded body. Nil keeps the current body on update.
	Children json.RawMessage
}

func encodeProperties(p Properties) (string, error) {
	if p == nil {
		p = Properties{}
	}

	b, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "marshalling properties")
	}

	return string(b), nil
}

// DecodeProperties decodes the stored properties of a document
func DecodeProperties(doc database.Document) (Properties, error) {
	ret := Properties{}
	if doc.Properties == "" {
		return ret, nil
	}

	if err := json.Unmarshal([]byte(doc.Properties), &ret); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling properties of %s", doc.UUID)
	}
	if ret == nil {
		ret = Properties{}
	}

	return ret, nil
}

// CreateDocument creates a document in the given database. Null properties
// are not stored.
func (a *App) CreateDocument(databaseID string, p DocumentParams) (database.Document, error) {
	if databaseID == "" {
		return database.Document{}, ErrEmptyDatabaseID
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.Document{}, err
	}

	stored := Properties{}
	for k, v := range p.Properties {
		if v != nil {
			stored[k] = v
		}
	}

	props, err := encodeProperties(stored)
	if err != nil {
		return database.Document{}, err
	}

	now := a.Clock.Now().UTC()
	doc := database.Document{
		UUID:       uuid,
		DatabaseID: databaseID,
		Properties: props,
		Children:   string(p.Children),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.DB.Create(&doc).Error; err != nil {
		return doc, errors.Wrap(err, "inserting document")
	}

	return doc, nil
}

// GetDocument returns the document with the given uuid, archived or not
func (a *App) GetDocument(uuid string) (database.Document, error) {
	var doc database.Document

	err := a.DB.Where("uuid = ?", uuid).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, ErrNotFound
	} else if err != nil {
		return doc, errors.Wrap(err, "finding document")
	}

	return doc, nil
}

// UpdateDocument merges the given properties into the document and replaces
// its children if given. A nil property value removes the property.
func (a *App) UpdateDocument(uuid string, p DocumentParams) (database.Document, error) {
	doc, err := a.GetDocument(uuid)
	if err != nil {
		return doc, err
	}
	if doc.Archived {
		return doc, ErrArchived
	}

	props, err := DecodeProperties(doc)
	if err != nil {
		return doc, err
	}
	for k, v := range p.Properties {
		if v == nil {
			delete(props, k)
			continue
		}

		props[k] = v
	}

	encoded, err := encodeProperties(props)
	if err != nil {
		return doc, err
	}

	doc.Properties = encoded
	if p.Children != nil {
		doc.Children = string(p.Children)
	}
	doc.UpdatedAt = a.Clock.Now().UTC()

	if err := a.DB.Save(&doc).Error; err != nil {
		return doc, errors.Wrap(err, "saving document")
	}

	return doc, nil
}

// ArchiveDocument archives the document. Archiving an archived document is a
// no-op.
func (a *App) ArchiveDocument(uuid string) (database.Document, error) {
	doc, err := a.GetDocument(uuid)
	if err != nil {
		return doc, err
	}
	if doc.Archived {
		return doc, nil
	}

	now := a.Clock.Now().UTC()
	doc.Archived = true
	doc.ArchivedAt = &now
	doc.UpdatedAt = now

	if err := a.DB.Save(&doc).Error; err != nil {
		return doc, errors.Wrap(err, "archiving document")
	}

	return doc, nil
}

// ListParams is the parameters for listing documents
type ListParams struct {
	UpdatedSince time.Time
	// Archived lists archived documents instead of live ones
	Archived bool
	// Cursor is the id of the last document of the previous page
	Cursor   int
	PageSize int
}

// DocumentList is a page of documents
type DocumentList struct {
	Documents  []database.Document
	HasMore    bool
	NextCursor int
}

// ListDocuments returns a page of the documents in the given database in
// insertion order
func (a *App) ListDocuments(databaseID string, p ListParams) (DocumentList, error) {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	conn := a.DB.Where("database_id = ? AND archived = ?", databaseID, p.Archived)
	if !p.UpdatedSince.IsZero() {
		conn = conn.Where("updated_at >= ?", p.UpdatedSince.UTC())
	}
	if p.Cursor > 0 {
		conn = conn.Where("id > ?", p.Cursor)
	}

	var docs []database.Document
	if err := conn.Order("id ASC").Limit(pageSize + 1).Find(&docs).Error; err != nil {
		return DocumentList{}, errors.Wrap(err, "finding documents")
	}

	ret := DocumentList{Documents: docs}
	if len(docs) > pageSize {
		ret.Documents = docs[:pageSize]
		ret.HasMore = true
		ret.NextCursor = ret.Documents[pageSize-1].ID
	}

	return ret, nil
}
