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
	"net/url"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote/blocks"
	"github.com/pkg/errors"
)

// Properties are the typed fields of a remote document. Values decode from
// JSON as strings, float64 numbers, bools, or []interface{}.
type Properties map[string]interface{}

// String returns the string property with the given key
func (p Properties) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}

	return ""
}

// Int returns the integer property with the given key, or nil if absent
func (p Properties) Int(key string) *int {
	var i int

	switch v := p[key].(type) {
	case float64:
		i = int(v)
	case int:
		i = v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil
		}
		i = int(n)
	default:
		return nil
	}

	return &i
}

// Float returns the number property with the given key
func (p Properties) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}

	return 0
}

// Time returns the RFC3339 timestamp property with the given key
func (p Properties) Time(key string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, p.String(key))
	if err != nil {
		return time.Time{}
	}

	return t
}

// Strings returns the string list property with the given key
func (p Properties) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []interface{}:
		ret := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				ret = append(ret, s)
			}
		}
		return ret
	}

	return nil
}

// Map returns the object property with the given key
func (p Properties) Map(key string) map[string]interface{} {
	m, _ := p[key].(map[string]interface{})
	return m
}

// Document is a document as served by the remote
type Document struct {
	ID             string         `json:"id"`
	Database       string         `json:"database"`
	Archived       bool           `json:"archived"`
	CreatedTime    time.Time      `json:"created_time"`
	LastEditedTime time.Time      `json:"last_edited_time"`
	Properties     Properties     `json:"properties"`
	Children       []blocks.Block `json:"children,omitempty"`
}

// DocumentPayload is the body of a create or update request. A null property
// removes it from the document. Nil children leave the body unchanged while
// an empty list clears it.
type DocumentPayload struct {
	Properties Properties     `json:"properties"`
	Children   []blocks.Block `json:"children"`
}

// DocumentList is a page of documents
type DocumentList struct {
	Results    []Document `json:"results"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor"`
}

const listPageSize = 100

// ListDocuments returns every non-archived document of the given database,
// following pagination
func (c *Client) ListDocuments(ctx context.Context, databaseID string, f Filter) ([]Document, error) {
	var ret []Document

	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprintf("%d", listPageSize))
		if !f.UpdatedSince.IsZero() {
			q.Set("updated_since", f.UpdatedSince.UTC().Format(time.RFC3339Nano))
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var page DocumentList
		path := fmt.Sprintf("/v1/databases/%s/documents?%s", url.PathEscape(databaseID), q.Encode())
		if err := c.do(ctx, "GET", path, nil, &page); err != nil {
			return nil, errors.Wrap(err, "listing documents")
		}

		for _, d := range page.Results {
			if !d.Archived {
				ret = append(ret, d)
			}
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return ret, nil
}

// GetDocument returns the document with the given id, or nil if it does not
// exist or is archived
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := c.do(ctx, "GET", fmt.Sprintf("/v1/documents/%s", url.PathEscape(id)), nil, &doc); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "getting document %s", id)
	}
	if doc.Archived {
		return nil, nil
	}

	return &doc, nil
}

// CreateDocument creates a document in the given database
func (c *Client) CreateDocument(ctx context.Context, databaseID string, p DocumentPayload) (Document, error) {
	var doc Document
	path := fmt.Sprintf("/v1/databases/%s/documents", url.PathEscape(databaseID))
	if err := c.do(ctx, "POST", path, p, &doc); err != nil {
		return Document{}, errors.Wrap(err, "creating document")
	}

	return doc, nil
}

// UpdateDocument replaces the given properties and, if not nil, the children
// of the document
func (c *Client) UpdateDocument(ctx context.Context, id string, p DocumentPayload) error {
	if err := c.do(ctx, "PATCH", fmt.Sprintf("/v1/documents/%s", url.PathEscape(id)), p, nil); err != nil {
		return errors.Wrapf(err, "updating document %s", id)
	}

	return nil
}

// ArchiveDocument archives the document
func (c *Client) ArchiveDocument(ctx context.Context, id string) error {
	if err := c.do(ctx, "DELETE", fmt.Sprintf("/v1/documents/%s", url.PathEscape(id)), nil, nil); err != nil {
		return errors.Wrapf(err, "archiving document %s", id)
	}

	return nil
}
