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
	"sort"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
)

// Replacement is a local entity that a pull replaced with a newer remote copy
type Replacement[T any] struct {
	Local  T
	Remote T
}

// MergeResult is the outcome of merging a remote collection into a local one
type MergeResult[T any] struct {
	Entities    []T
	IdentityMap map[string]string
	// Added is the number of entities that arrived from the remote
	Added    int
	Replaced []Replacement[T]
	// Skipped is the number of remote documents left out because no local id
	// was free for them
	Skipped int
}

// Merge reconciles the local collection and identity map with the full
// remote collection using last-write-wins on updatedAt, local winning ties.
// Local entities that are not mapped, or whose remote counterpart is
// absent, are always kept. The inputs are not modified.
func Merge[T models.Entity[T]](local []T, identityMap map[string]string, docs []remote.Doc[T]) MergeResult[T] {
	ids := make(map[string]string, len(identityMap)+len(docs))
	byRemote := make(map[string]string, len(identityMap)+len(docs))
	for localID, remoteID := range identityMap {
		ids[localID] = remoteID
		byRemote[remoteID] = localID
	}

	skipped := 0
	remoteByID := make(map[string]T, len(docs))
	for _, d := range docs {
		remoteByID[d.RemoteID] = d.Entity

		if _, ok := byRemote[d.RemoteID]; ok {
			continue
		}

		// never seen before. Prefer the local id the document carries so
		// that an entity whose mapping was lost is linked back.
		localID := d.Entity.GetMeta().ID
		if localID == "" {
			localID = d.RemoteID
		}
		if _, taken := ids[localID]; taken {
			localID = d.RemoteID
			if _, taken := ids[localID]; taken {
				log.Debug("skipping remote %s: local ids %s and %s are both taken\n", d.RemoteID, d.Entity.GetMeta().ID, d.RemoteID)
				skipped++
				continue
			}
		}

		ids[localID] = d.RemoteID
		byRemote[d.RemoteID] = localID
	}

	ret := MergeResult[T]{
		Entities:    make([]T, 0, len(local)+len(docs)),
		IdentityMap: ids,
		Skipped:     skipped,
	}

	consumed := map[string]bool{}
	for _, e := range local {
		meta := e.GetMeta()

		remoteID, ok := ids[meta.ID]
		if !ok {
			ret.Entities = append(ret.Entities, e)
			continue
		}
		r, ok := remoteByID[remoteID]
		if !ok {
			ret.Entities = append(ret.Entities, e)
			continue
		}

		consumed[remoteID] = true

		if !meta.UpdatedAt.Before(r.GetMeta().UpdatedAt) {
			ret.Entities = append(ret.Entities, e)
			continue
		}

		replacement := withID(r, meta.ID)
		ret.Entities = append(ret.Entities, replacement)
		ret.Replaced = append(ret.Replaced, Replacement[T]{Local: e, Remote: replacement})
	}

	for _, d := range docs {
		if consumed[d.RemoteID] {
			continue
		}
		localID, ok := byRemote[d.RemoteID]
		if !ok {
			continue
		}

		consumed[d.RemoteID] = true
		ret.Entities = append(ret.Entities, withID(d.Entity, localID))
		ret.Added++
	}

	sort.SliceStable(ret.Entities, func(i, j int) bool {
		return ret.Entities[i].GetMeta().CreatedAt.After(ret.Entities[j].GetMeta().CreatedAt)
	})

	return ret
}

func withID[T models.Entity[T]](e T, id string) T {
	meta := e.GetMeta()
	meta.ID = id

	return e.WithMeta(meta)
}
