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

// Package remote talks to the remote document store that mirrors the local
// collections
package remote

import (
	"context"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/pkg/errors"
)

// ErrNotConfigured is returned by every call when remote sync is unavailable
var ErrNotConfigured = errors.New("remote sync is not configured")

// Doc is an entity as stored on the remote, together with its remote id
type Doc[T any] struct {
	RemoteID string
	Entity   T
}

// Filter narrows down a List call
type Filter struct {
	UpdatedSince time.Time
}

// Adapter is the remote store of one entity family
type Adapter[T any] interface {
	// Configured reports whether the adapter can reach a remote at all.
	// Callers check it before any other call.
	Configured() bool
	List(ctx context.Context, f Filter) ([]Doc[T], error)
	Get(ctx context.Context, remoteID string) (*Doc[T], error)
	Create(ctx context.Context, e T) (Doc[T], error)
	Update(ctx context.Context, remoteID string, e T) error
	Archive(ctx context.Context, remoteID string) error
}

// SettingsAdapter is the remote store of the settings singleton
type SettingsAdapter interface {
	Configured() bool
	// Fetch returns nil if the remote holds no settings yet
	Fetch(ctx context.Context) (*Doc[models.Settings], error)
	// Upsert creates the settings document if remoteID is empty and updates
	// it otherwise. It returns the remote id.
	Upsert(ctx context.Context, remoteID string, s models.Settings) (string, error)
}

// SessionSink receives raw timer sessions
type SessionSink interface {
	Configured() bool
	CreateSession(ctx context.Context, s models.RawSession) (string, error)
}
