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
	"fmt"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
)

var t0 = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func rec(id string, created, updated time.Time, minutes int) models.Record {
	return models.Record{
		Meta: models.Meta{
			ID:        id,
			CreatedAt: created,
			UpdatedAt: updated,
			DeviceID:  "device-1",
		},
		Type:         models.RecordTypeTextbook,
		Subject:      models.SubjectFAR,
		StudyMinutes: minutes,
		StudiedAt:    "2026-01-10",
		Source:       models.SourceManual,
	}
}

func withMemo(r models.Record, memo string) models.Record {
	r.Memo = memo
	return r
}

func doc(remoteID string, r models.Record) remote.Doc[models.Record] {
	return remote.Doc[models.Record]{RemoteID: remoteID, Entity: r}
}

func TestMerge(t *testing.T) {
	testCases := []struct {
		local               []models.Record
		identityMap         map[string]string
		remote              []remote.Doc[models.Record]
		expectedEntities    []models.Record
		expectedIdentityMap map[string]string
		expectedAdded       int
		expectedReplaced    int
	}{
		// identical updatedAt: local wins
		{
			local:               []models.Record{rec("a", at(0), at(5), 45)},
			identityMap:         map[string]string{"a": "r-a"},
			remote:              []remote.Doc[models.Record]{doc("r-a", rec("a", at(0), at(5), 60))},
			expectedEntities:    []models.Record{rec("a", at(0), at(5), 45)},
			expectedIdentityMap: map[string]string{"a": "r-a"},
		},
		// unmapped local entity survives an empty remote
		{
			local:               []models.Record{rec("a", at(0), at(0), 45)},
			identityMap:         map[string]string{},
			remote:              nil,
			expectedEntities:    []models.Record{rec("a", at(0), at(0), 45)},
			expectedIdentityMap: map[string]string{},
		},
		// newer remote replaces the whole local copy
		{
			local:               []models.Record{withMemo(rec("a", at(0), at(1), 45), "local only")},
			identityMap:         map[string]string{"a": "r-a"},
			remote:              []remote.Doc[models.Record]{doc("r-a", rec("a", at(0), at(2), 60))},
			expectedEntities:    []models.Record{rec("a", at(0), at(2), 60)},
			expectedIdentityMap: map[string]string{"a": "r-a"},
			expectedReplaced:    1,
		},
		// older remote is ignored
		{
			local:               []models.Record{rec("a", at(0), at(3), 45)},
			identityMap:         map[string]string{"a": "r-a"},
			remote:              []remote.Doc[models.Record]{doc("r-a", rec("a", at(0), at(2), 60))},
			expectedEntities:    []models.Record{rec("a", at(0), at(3), 45)},
			expectedIdentityMap: map[string]string{"a": "r-a"},
		},
		// mapped local entity missing from the remote is kept
		{
			local:               []models.Record{rec("a", at(0), at(0), 45)},
			identityMap:         map[string]string{"a": "r-a"},
			remote:              nil,
			expectedEntities:    []models.Record{rec("a", at(0), at(0), 45)},
			expectedIdentityMap: map[string]string{"a": "r-a"},
		},
		// new arrival keeps its own local id
		{
			local:       []models.Record{rec("a", at(0), at(0), 45)},
			identityMap: map[string]string{"a": "r-a"},
			remote: []remote.Doc[models.Record]{
				doc("r-a", rec("a", at(0), at(0), 45)),
				doc("r-b", rec("b", at(1), at(1), 30)),
			},
			expectedEntities:    []models.Record{rec("b", at(1), at(1), 30), rec("a", at(0), at(0), 45)},
			expectedIdentityMap: map[string]string{"a": "r-a", "b": "r-b"},
			expectedAdded:       1,
		},
		// new arrival without a local id uses its remote id
		{
			local:               nil,
			identityMap:         map[string]string{},
			remote:              []remote.Doc[models.Record]{doc("r-b", rec("", at(1), at(1), 30))},
			expectedEntities:    []models.Record{rec("r-b", at(1), at(1), 30)},
			expectedIdentityMap: map[string]string{"r-b": "r-b"},
			expectedAdded:       1,
		},
		// new arrival whose local id is mapped elsewhere uses its remote id
		{
			local:       []models.Record{rec("a", at(0), at(0), 45)},
			identityMap: map[string]string{"a": "r-a"},
			remote: []remote.Doc[models.Record]{
				doc("r-a", rec("a", at(0), at(0), 45)),
				doc("r-copy", rec("a", at(2), at(2), 10)),
			},
			expectedEntities:    []models.Record{rec("r-copy", at(2), at(2), 10), rec("a", at(0), at(0), 45)},
			expectedIdentityMap: map[string]string{"a": "r-a", "r-copy": "r-copy"},
			expectedAdded:       1,
		},
		// remote copy of an unmapped local entity is linked, not duplicated
		{
			local:               []models.Record{rec("a", at(0), at(4), 45)},
			identityMap:         map[string]string{},
			remote:              []remote.Doc[models.Record]{doc("r-a", rec("a", at(0), at(0), 45))},
			expectedEntities:    []models.Record{rec("a", at(0), at(4), 45)},
			expectedIdentityMap: map[string]string{"a": "r-a"},
		},
		// result is sorted by createdAt descending
		{
			local:       []models.Record{rec("a", at(0), at(0), 45), rec("c", at(5), at(5), 20)},
			identityMap: map[string]string{},
			remote: []remote.Doc[models.Record]{
				doc("r-b", rec("b", at(3), at(3), 30)),
			},
			expectedEntities: []models.Record{
				rec("c", at(5), at(5), 20),
				rec("b", at(3), at(3), 30),
				rec("a", at(0), at(0), 45),
			},
			expectedIdentityMap: map[string]string{"b": "r-b"},
			expectedAdded:       1,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			result := Merge(tc.local, tc.identityMap, tc.remote)

			assert.DeepEqual(t, result.Entities, tc.expectedEntities, "entities mismatch")
			assert.DeepEqual(t, result.IdentityMap, tc.expectedIdentityMap, "identity map mismatch")
			assert.Equal(t, result.Added, tc.expectedAdded, "added mismatch")
			assert.Equal(t, len(result.Replaced), tc.expectedReplaced, "replaced mismatch")
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	local := []models.Record{rec("a", at(0), at(0), 45)}
	identityMap := map[string]string{"a": "r-a"}
	docs := []remote.Doc[models.Record]{
		doc("r-a", rec("a", at(0), at(1), 60)),
		doc("r-b", rec("b", at(1), at(1), 30)),
	}

	Merge(local, identityMap, docs)

	assert.DeepEqual(t, local, []models.Record{rec("a", at(0), at(0), 45)}, "local mismatch")
	assert.DeepEqual(t, identityMap, map[string]string{"a": "r-a"}, "identity map mismatch")
}

func TestMergeSkipsDocumentWithoutFreeID(t *testing.T) {
	local := []models.Record{
		rec("a", at(0), at(0), 45),
		rec("b", at(1), at(1), 30),
	}
	identityMap := map[string]string{"a": "r-a", "b": "r-b"}
	// carries local id "a" and has remote id "b", both taken
	docs := []remote.Doc[models.Record]{
		doc("r-a", rec("a", at(0), at(0), 45)),
		doc("r-b", rec("b", at(1), at(1), 30)),
		doc("b", rec("a", at(2), at(2), 60)),
	}

	result := Merge(local, identityMap, docs)

	assert.Equal(t, result.Skipped, 1, "skipped mismatch")
	assert.Equal(t, result.Added, 0, "added mismatch")
	assert.DeepEqual(t, result.Entities, []models.Record{
		rec("b", at(1), at(1), 30),
		rec("a", at(0), at(0), 45),
	}, "entities mismatch")
	assert.DeepEqual(t, result.IdentityMap, map[string]string{"a": "r-a", "b": "r-b"}, "identity map mismatch")
}
