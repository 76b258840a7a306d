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

package presenters

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/app"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database"
	"github.com/pkg/errors"
)

// Document is a result of PresentDocument
type Document struct {
	ID             string          `json:"id"`
	Database       string          `json:"database"`
	Archived       bool            `json:"archived"`
	CreatedTime    time.Time       `json:"created_time"`
	LastEditedTime time.Time       `json:"last_edited_time"`
	Properties     app.Properties  `json:"properties"`
	Children       json.RawMessage `json:"children,omitempty"`
}

// formatTime rounds the timestamp to the microsecond in UTC, the precision
// every database driver keeps
func formatTime(ts time.Time) time.Time {
	return ts.UTC().Round(time.Microsecond)
}

// PresentDocument presents a document
func PresentDocument(doc database.Document) (Document, error) {
	props, err := app.DecodeProperties(doc)
	if err != nil {
		return Document{}, errors.Wrap(err, "decoding properties")
	}

	ret := Document{
		ID:             doc.UUID,
		Database:       doc.DatabaseID,
		Archived:       doc.Archived,
		CreatedTime:    formatTime(doc.CreatedAt),
		LastEditedTime: formatTime(doc.UpdatedAt),
		Properties:     props,
	}
	if doc.Children != "" {
		ret.Children = json.RawMessage(doc.Children)
	}

	return ret, nil
}

// DocumentList is a result of PresentDocumentList
type DocumentList struct {
	Results    []Document `json:"results"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor"`
}

// PresentDocumentList presents a page of documents
func PresentDocumentList(l app.DocumentList) (DocumentList, error) {
	ret := DocumentList{
		Results: []Document{},
		HasMore: l.HasMore,
	}
	if l.HasMore {
		ret.NextCursor = strconv.Itoa(l.NextCursor)
	}

	for _, doc := range l.Documents {
		p, err := PresentDocument(doc)
		if err != nil {
			return DocumentList{}, err
		}

		ret.Results = append(ret.Results, p)
	}

	return ret, nil
}
