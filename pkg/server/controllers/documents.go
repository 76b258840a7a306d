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

package controllers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/app"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/helpers"
	mw "github.com/hotsuka/uscpa-learning-sub000/pkg/server/middleware"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/presenters"
	"github.com/pkg/errors"
)

// NewDocuments creates a new Documents controller
func NewDocuments(app *app.App) *Documents {
	return &Documents{
		app:     app,
		decoder: newQueryDecoder(),
	}
}

// Documents is a documents controller
type Documents struct {
	app     *app.App
	decoder *schema.Decoder
}

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(t)
	})

	return d
}

// listQuery is the query string of a document list
type listQuery struct {
	UpdatedSince time.Time `schema:"updated_since"`
	Archived     bool      `schema:"archived"`
	Cursor       string    `schema:"cursor"`
	PageSize     int       `schema:"page_size"`
}

func (d *Documents) parseListParams(r *http.Request) (app.ListParams, error) {
	var q listQuery
	if err := d.decoder.Decode(&q, r.URL.Query()); err != nil {
		return app.ListParams{}, errors.Wrap(err, "invalid query")
	}

	ret := app.ListParams{
		UpdatedSince: q.UpdatedSince,
		Archived:     q.Archived,
		PageSize:     q.PageSize,
	}

	if q.Cursor != "" {
		c, err := strconv.Atoi(q.Cursor)
		if err != nil || c < 0 {
			return app.ListParams{}, errors.Errorf("invalid cursor '%s'", q.Cursor)
		}

		ret.Cursor = c
	}

	return ret, nil
}

// documentPayload is the body of a create or an update request
type documentPayload struct {
	Properties app.Properties  `json:"properties"`
	Children   json.RawMessage `json:"children"`
}

func parseDocumentPayload(r *http.Request) (app.DocumentParams, error) {
	var p documentPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return app.DocumentParams{}, errors.Wrap(err, "decoding payload")
	}

	children := p.Children
	if string(children) == "null" {
		children = nil
	}

	return app.DocumentParams{
		Properties: p.Properties,
		Children:   children,
	}, nil
}

func (d *Documents) respondDocument(w http.ResponseWriter, statusCode int, doc database.Document) {
	p, err := presenters.PresentDocument(doc)
	if err != nil {
		mw.DoError(w, "presenting the document", err, http.StatusInternalServerError)
		return
	}

	mw.RespondJSON(w, statusCode, p)
}

// respondAppError responds to an error from a document operation
func respondAppError(w http.ResponseWriter, msg string, err error) {
	switch errors.Cause(err) {
	case app.ErrNotFound, app.ErrArchived:
		mw.RespondNotFound(w)
	case app.ErrEmptyDatabaseID:
		mw.DoError(w, msg, err, http.StatusBadRequest)
	default:
		mw.DoError(w, msg, err, http.StatusInternalServerError)
	}
}

// Index lists the documents of a database
func (d *Documents) Index(w http.ResponseWriter, r *http.Request) {
	databaseID := mux.Vars(r)["databaseID"]

	params, err := d.parseListParams(r)
	if err != nil {
		mw.DoError(w, "parsing the list parameters", err, http.StatusBadRequest)
		return
	}

	list, err := d.app.ListDocuments(databaseID, params)
	if err != nil {
		respondAppError(w, "listing documents", err)
		return
	}

	p, err := presenters.PresentDocumentList(list)
	if err != nil {
		mw.DoError(w, "presenting documents", err, http.StatusInternalServerError)
		return
	}

	mw.RespondJSON(w, http.StatusOK, p)
}

// Create creates a document in a database
func (d *Documents) Create(w http.ResponseWriter, r *http.Request) {
	databaseID := mux.Vars(r)["databaseID"]

	params, err := parseDocumentPayload(r)
	if err != nil {
		mw.DoError(w, "parsing the payload", err, http.StatusBadRequest)
		return
	}

	doc, err := d.app.CreateDocument(databaseID, params)
	if err != nil {
		respondAppError(w, "creating document", err)
		return
	}

	d.respondDocument(w, http.StatusCreated, doc)
}

func documentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["documentID"]
	if !helpers.ValidateUUID(id) {
		mw.RespondNotFound(w)
		return "", false
	}

	return id, true
}

// Show returns a document. Archived documents are returned with the archived
// flag set.
func (d *Documents) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := d.app.GetDocument(id)
	if err != nil {
		respondAppError(w, "getting document", err)
		return
	}

	d.respondDocument(w, http.StatusOK, doc)
}

// Update updates the properties and the children of a document
func (d *Documents) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	params, err := parseDocumentPayload(r)
	if err != nil {
		mw.DoError(w, "parsing the payload", err, http.StatusBadRequest)
		return
	}

	doc, err := d.app.UpdateDocument(id, params)
	if err != nil {
		respondAppError(w, "updating document", err)
		return
	}

	d.respondDocument(w, http.StatusOK, doc)
}

// Archive archives a document
func (d *Documents) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := d.app.ArchiveDocument(id)
	if err != nil {
		respondAppError(w, "archiving document", err)
		return
	}

	d.respondDocument(w, http.StatusOK, doc)
}
