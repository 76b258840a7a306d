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

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
)

func TestUniquePage(t *testing.T) {
	existing := []models.Note{
		{Meta: models.Meta{ID: "n1"}, Type: models.NoteTypePage, MaterialID: "far", Page: models.Int(10)},
		{Meta: models.Meta{ID: "n2"}, Type: models.NoteTypeStandalone},
	}

	testCases := []struct {
		input       models.Note
		expectedErr error
	}{
		{
			input:       models.Note{Type: models.NoteTypePage, MaterialID: "far", Page: models.Int(10)},
			expectedErr: ErrDuplicatePage,
		},
		{
			input:       models.Note{Type: models.NoteTypePage, MaterialID: "far", Page: models.Int(11)},
			expectedErr: nil,
		},
		{
			input:       models.Note{Type: models.NoteTypePage, MaterialID: "aud", Page: models.Int(10)},
			expectedErr: nil,
		},
		{
			input:       models.Note{Type: models.NoteTypeStandalone, Title: "free"},
			expectedErr: nil,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			err := UniquePage(existing, tc.input)
			assert.EqualErrors(t, err, tc.expectedErr, "error mismatch")
		})
	}
}

func TestContentDiff(t *testing.T) {
	testCases := []struct {
		from     string
		to       string
		expected string
	}{
		{
			from:     "a\nb\nc",
			to:       "a\nb\nc",
			expected: "",
		},
		{
			from:     "a\nb\n",
			to:       "a\nx\n",
			expected: "- b\n+ x\n",
		},
		{
			from:     "",
			to:       "new line\n",
			expected: "+ new line\n",
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			assert.Equal(t, ContentDiff(tc.from, tc.to), tc.expected, "diff mismatch")
		})
	}
}
