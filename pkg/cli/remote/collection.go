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
	"sort"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/pkg/errors"
)

// Collection is an Adapter backed by one database of the remote document
// store
type Collection[T any] struct {
	client *Client
	family string
	codec  Codec[T]
}

// NewCollection returns a collection for the database configured for the
// given family
func NewCollection[T any](client *Client, family string, codec Codec[T]) *Collection[T] {
	return &Collection[T]{
		client: client,
		family: family,
		codec:  codec,
	}
}

// Configured reports whether a database is configured for the family
func (c *Collection[T]) Configured() bool {
	_, ok := c.client.DatabaseID(c.family)
	return ok
}

func (c *Collection[T]) databaseID() (string, error) {
	id, ok := c.client.DatabaseID(c.family)
	if !ok {
		return "", ErrNotConfigured
	}

	return id, nil
}

// List returns the documents of the family. Documents that cannot be
// decoded are skipped.
func (c *Collection[T]) List(ctx context.Context, f Filter) ([]Doc[T], error) {
	dbID, err := c.databaseID()
	if err != nil {
		return nil, err
	}

	docs, err := c.client.ListDocuments(ctx, dbID, f)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", c.family)
	}

	ret := make([]Doc[T], 0, len(docs))
	for _, d := range docs {
		e, err := c.codec.Decode(d)
		if err != nil {
			log.Debug("skipping %s document %s: %s\n", c.family, d.ID, err.Error())
			continue
		}

		ret = append(ret, Doc[T]{RemoteID: d.ID, Entity: e})
	}

	return ret, nil
}

// Get returns the document with the given remote id, or nil if it is absent
func (c *Collection[T]) Get(ctx context.Context, remoteID string) (*Doc[T], error) {
	if _, err := c.databaseID(); err != nil {
		return nil, err
	}

	d, err := c.client.GetDocument(ctx, remoteID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	e, err := c.codec.Decode(*d)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s document %s", c.family, d.ID)
	}

	return &Doc[T]{RemoteID: d.ID, Entity: e}, nil
}

// Create creates a document for the entity
func (c *Collection[T]) Create(ctx context.Context, e T) (Doc[T], error) {
	dbID, err := c.databaseID()
	if err != nil {
		return Doc[T]{}, err
	}

	d, err := c.client.CreateDocument(ctx, dbID, c.codec.Encode(e))
	if err != nil {
		return Doc[T]{}, errors.Wrapf(err, "creating %s", c.family)
	}

	return Doc[T]{RemoteID: d.ID, Entity: e}, nil
}

// Update replaces the fields of the document with those of the entity
func (c *Collection[T]) Update(ctx context.Context, remoteID string, e T) error {
	if _, err := c.databaseID(); err != nil {
		return err
	}

	return c.client.UpdateDocument(ctx, remoteID, c.codec.Encode(e))
}

// Archive archives the document
func (c *Collection[T]) Archive(ctx context.Context, remoteID string) error {
	if _, err := c.databaseID(); err != nil {
		return err
	}

	return c.client.ArchiveDocument(ctx, remoteID)
}

// SettingsRemote is a SettingsAdapter backed by the settings database
type SettingsRemote struct {
	client *Client
	codec  SettingsCodec
}

// NewSettingsRemote returns the settings adapter
func NewSettingsRemote(client *Client) *SettingsRemote {
	return &SettingsRemote{client: client}
}

// Configured reports whether a settings database is configured
func (s *SettingsRemote) Configured() bool {
	_, ok := s.client.DatabaseID(consts.FamilySettings)
	return ok
}

// Fetch returns the most recently edited settings document
func (s *SettingsRemote) Fetch(ctx context.Context) (*Doc[models.Settings], error) {
	dbID, ok := s.client.DatabaseID(consts.FamilySettings)
	if !ok {
		return nil, ErrNotConfigured
	}

	docs, err := s.client.ListDocuments(ctx, dbID, Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "fetching settings")
	}
	if len(docs) == 0 {
		return nil, nil
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].LastEditedTime.After(docs[j].LastEditedTime)
	})

	settings, err := s.codec.Decode(docs[0])
	if err != nil {
		return nil, errors.Wrapf(err, "decoding settings document %s", docs[0].ID)
	}

	return &Doc[models.Settings]{RemoteID: docs[0].ID, Entity: settings}, nil
}

// Upsert writes the settings, creating the document if remoteID is empty
func (s *SettingsRemote) Upsert(ctx context.Context, remoteID string, settings models.Settings) (string, error) {
	dbID, ok := s.client.DatabaseID(consts.FamilySettings)
	if !ok {
		return "", ErrNotConfigured
	}

	payload := s.codec.Encode(settings)
	if remoteID != "" {
		err := s.client.UpdateDocument(ctx, remoteID, payload)
		if err == nil {
			return remoteID, nil
		}

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || !httpErr.IsNotFound() {
			return "", err
		}
		log.Debug("settings document %s is gone, creating a new one\n", remoteID)
	}

	d, err := s.client.CreateDocument(ctx, dbID, payload)
	if err != nil {
		return "", errors.Wrap(err, "creating settings")
	}

	return d.ID, nil
}

// SessionRemote is a SessionSink backed by the sessions database
type SessionRemote struct {
	client *Client
	codec  SessionCodec
}

// NewSessionRemote returns the session sink
func NewSessionRemote(client *Client) *SessionRemote {
	return &SessionRemote{client: client}
}

// Configured reports whether a sessions database is configured
func (s *SessionRemote) Configured() bool {
	_, ok := s.client.DatabaseID(consts.FamilySessions)
	return ok
}

// CreateSession mirrors a raw timer session
func (s *SessionRemote) CreateSession(ctx context.Context, session models.RawSession) (string, error) {
	dbID, ok := s.client.DatabaseID(consts.FamilySessions)
	if !ok {
		return "", ErrNotConfigured
	}

	d, err := s.client.CreateDocument(ctx, dbID, s.codec.Encode(session))
	if err != nil {
		return "", errors.Wrap(err, "creating session")
	}

	return d.ID, nil
}
