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

// Package syncer keeps the local stores and the remote document store in
// step. Local writes return immediately and are pushed in the background;
// pulls merge the full remote collection into the local one.
package syncer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/store"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

// ErrAmbiguousID is an error for an id prefix matching more than one entity
var ErrAmbiguousID = errors.New("ambiguous id")

// Option configures an Engine
type Option[T models.Entity[T]] func(*Engine[T])

// WithCreateCheck runs fn against the current collection before every
// create. A non-nil error rejects the create.
func WithCreateCheck[T models.Entity[T]](fn func(existing []T, input T) error) Option[T] {
	return func(e *Engine[T]) {
		e.createCheck = fn
	}
}

// WithReplaceHook calls fn for every local entity a pull replaced
func WithReplaceHook[T models.Entity[T]](fn func(Replacement[T])) Option[T] {
	return func(e *Engine[T]) {
		e.onReplace = fn
	}
}

// Engine is the entry point for one entity family. Mutations are applied to
// the local store synchronously and pushed to the remote by detached
// goroutines whose failures are logged and dropped.
type Engine[T models.Entity[T]] struct {
	family  string
	store   *store.Store[T]
	adapter remote.Adapter[T]
	clock   clock.Clock

	createCheck func(existing []T, input T) error
	onReplace   func(Replacement[T])

	wg sync.WaitGroup
}

// NewEngine returns an engine for the family of the given store
func NewEngine[T models.Entity[T]](s *store.Store[T], adapter remote.Adapter[T], c clock.Clock, opts ...Option[T]) *Engine[T] {
	e := &Engine[T]{
		family:  s.Family(),
		store:   s,
		adapter: adapter,
		clock:   c,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Family returns the name of the entity family
func (e *Engine[T]) Family() string {
	return e.family
}

// Get returns the entity with the given local id
func (e *Engine[T]) Get(id string) (T, bool) {
	return e.store.Get(id)
}

// Resolve returns the entity whose local id is the given id or starts with
// the given prefix
func (e *Engine[T]) Resolve(prefix string) (T, error) {
	var zero T
	if prefix == "" {
		return zero, store.ErrNotFound
	}
	if ent, ok := e.store.Get(prefix); ok {
		return ent, nil
	}

	var ret []T
	for _, ent := range e.store.List() {
		if strings.HasPrefix(ent.GetMeta().ID, prefix) {
			ret = append(ret, ent)
		}
	}

	switch len(ret) {
	case 0:
		return zero, errors.Wrapf(store.ErrNotFound, "'%s'", prefix)
	case 1:
		return ret[0], nil
	default:
		return zero, errors.Wrapf(ErrAmbiguousID, "'%s' matches %d entities", prefix, len(ret))
	}
}

// List returns the collection, newest first
func (e *Engine[T]) List() []T {
	return e.store.List()
}

// LastPulledAt returns the time of the last successful pull
func (e *Engine[T]) LastPulledAt() (time.Time, bool) {
	return e.store.LastPulledAt()
}

// Mapping returns the remote id of the entity, if it was pushed
func (e *Engine[T]) Mapping(id string) (string, bool) {
	return e.store.Mapping(id)
}

// Wait blocks until every push started so far has finished
func (e *Engine[T]) Wait() {
	e.wg.Wait()
}

// Create stores a new entity and pushes it in the background
func (e *Engine[T]) Create(input T) (T, error) {
	var checks []store.Check[T]
	if e.createCheck != nil {
		checks = append(checks, e.createCheck)
	}

	ent, err := e.store.Create(input, checks...)
	if err != nil {
		return ent, err
	}

	e.schedulePush(ent)

	return ent, nil
}

// Update applies the patch to the entity. The change is pushed only if the
// entity already exists on the remote.
func (e *Engine[T]) Update(id string, patch models.Patch[T]) (T, error) {
	ent, err := e.store.Update(id, patch)
	if err != nil {
		return ent, err
	}

	if _, ok := e.store.Mapping(id); ok {
		e.schedulePush(ent)
	}

	return ent, nil
}

// Delete removes the entity and archives its remote copy, if there is one.
// An archive that fails is retried by PushPending.
func (e *Engine[T]) Delete(id string) error {
	remoteID, mapped, err := e.store.Delete(id)
	if err != nil {
		return err
	}

	if !mapped || !e.adapter.Configured() {
		return nil
	}

	e.spawn(func(ctx context.Context) {
		if err := e.archive(ctx, id, remoteID); err != nil {
			log.Warnf("failed to archive %s %s: %s\n", e.family, remoteID, err.Error())
		}
	})

	return nil
}

func (e *Engine[T]) spawn(fn func(ctx context.Context)) {
	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		fn(context.Background())
	}()
}

func (e *Engine[T]) schedulePush(ent T) {
	if !e.adapter.Configured() {
		return
	}

	e.spawn(func(ctx context.Context) {
		if err := e.push(ctx, ent); err != nil {
			log.Warnf("failed to push %s %s: %s\n", e.family, ent.GetMeta().ID, err.Error())
		}
	})
}

// push creates the remote copy of the entity, or updates it if the entity
// is mapped already
func (e *Engine[T]) push(ctx context.Context, ent T) error {
	id := ent.GetMeta().ID

	if remoteID, ok := e.store.Mapping(id); ok {
		err := e.adapter.Update(ctx, remoteID, ent)
		countPush(e.family, opUpdate, err)

		return errors.Wrap(err, "updating")
	}

	doc, err := e.adapter.Create(ctx, ent)
	countPush(e.family, opCreate, err)
	if err != nil {
		return errors.Wrap(err, "creating")
	}

	ok, err := e.store.SetMapping(id, doc.RemoteID)
	if err != nil {
		return errors.Wrap(err, "saving the mapping")
	}
	if !ok {
		log.Debug("%s %s was deleted while being pushed, archiving %s\n", e.family, id, doc.RemoteID)
		return errors.Wrap(e.archive(ctx, id, doc.RemoteID), "archiving")
	}

	log.Debug("pushed %s %s as %s\n", e.family, id, doc.RemoteID)

	return nil
}

// archive archives the remote copy of the deleted entity and clears its
// tombstone as done. A copy that is already gone counts as archived.
func (e *Engine[T]) archive(ctx context.Context, id, remoteID string) error {
	err := e.adapter.Archive(ctx, remoteID)
	countPush(e.family, opArchive, err)

	var httpErr *remote.HTTPError
	if err != nil && !(errors.As(err, &httpErr) && httpErr.IsNotFound()) {
		return err
	}

	return e.store.MarkArchived(id)
}

// PushPending archives the remote copies of deleted entities that failed to
// archive before, then pushes every entity that has no remote copy yet, one
// at a time. It returns the number of entities pushed. Failures are logged
// and skipped.
func (e *Engine[T]) PushPending(ctx context.Context) int {
	if !e.adapter.Configured() {
		return 0
	}

	for _, t := range e.store.PendingArchives() {
		if err := e.archive(ctx, t.LocalID, t.RemoteID); err != nil {
			log.Warnf("failed to archive %s %s: %s\n", e.family, t.RemoteID, err.Error())
			continue
		}
		log.Debug("archived deleted %s %s\n", e.family, t.LocalID)
	}

	snapshot := e.store.Snapshot()

	count := 0
	for _, ent := range snapshot.Entities {
		if _, ok := snapshot.IdentityMap[ent.GetMeta().ID]; ok {
			continue
		}

		if err := e.push(ctx, ent); err != nil {
			log.Warnf("failed to push %s %s: %s\n", e.family, ent.GetMeta().ID, err.Error())
			continue
		}
		count++
	}

	return count
}

// Pull fetches the full remote collection and merges it into the local
// store. On failure the local store is left untouched. Pull is a no-op if
// the remote is not configured.
func (e *Engine[T]) Pull(ctx context.Context) error {
	if !e.adapter.Configured() {
		return nil
	}

	docs, err := e.adapter.List(ctx, remote.Filter{})
	if err != nil {
		countPull(e.family, err)
		return errors.Wrapf(err, "pulling %s", e.family)
	}

	docs = e.dropDeleted(docs)
	pulledAt := e.clock.Now()

	var res MergeResult[T]
	err = e.store.Reconcile(pulledAt, func(st store.State[T]) store.State[T] {
		res = Merge(st.Entities, st.IdentityMap, docs)

		return store.State[T]{
			Entities:    res.Entities,
			IdentityMap: res.IdentityMap,
		}
	})
	countPull(e.family, err)
	if err != nil {
		return errors.Wrapf(err, "saving pulled %s", e.family)
	}

	if e.onReplace != nil {
		for _, r := range res.Replaced {
			e.onReplace(r)
		}
	}

	log.Debug("pulled %s: %d remote, %d added, %d replaced, %d skipped\n", e.family, len(docs), res.Added, len(res.Replaced), res.Skipped)

	return nil
}

// dropDeleted removes documents of entities that were deleted locally,
// whether or not the remote copy is archived yet
func (e *Engine[T]) dropDeleted(docs []remote.Doc[T]) []remote.Doc[T] {
	ret := make([]remote.Doc[T], 0, len(docs))
	for _, d := range docs {
		if e.store.DeletedRemote(d.RemoteID) || e.store.Deleted(d.Entity.GetMeta().ID) {
			continue
		}

		ret = append(ret, d)
	}

	return ret
}
