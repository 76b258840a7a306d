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
	"strings"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrDuplicatePage is an error for a page note on a material page that
// already has one
var ErrDuplicatePage = errors.New("the page already has a note")

// UniquePage rejects a page note whose material and page are taken
func UniquePage(existing []models.Note, input models.Note) error {
	key, ok := input.PageKey()
	if !ok {
		return nil
	}

	for _, n := range existing {
		if k, ok := n.PageKey(); ok && k == key {
			return errors.Wrapf(ErrDuplicatePage, "%s page %d (note %s)", input.MaterialID, *input.Page, n.ID)
		}
	}

	return nil
}

// lineDiff computes a line-by-line diff between two strings
func lineDiff(s1, s2 string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = time.Second

	s1Chars, s2Chars, arr := dmp.DiffLinesToRunes(s1, s2)
	diffs := dmp.DiffMainRunes(s1Chars, s2Chars, false)

	return dmp.DiffCharsToLines(diffs, arr)
}

// ContentDiff renders the line changes from one note content to another in
// unified style
func ContentDiff(from, to string) string {
	var sb strings.Builder

	for _, d := range lineDiff(from, to) {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			continue
		}

		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			sb.WriteString(fmt.Sprintf("%s%s\n", prefix, line))
		}
	}

	return sb.String()
}

// LogNoteReplacement logs the content change of a note replaced by a pull
func LogNoteReplacement(r Replacement[models.Note]) {
	if r.Local.Content == r.Remote.Content {
		return
	}

	log.Debug("note %s replaced by a newer remote copy:\n%s", r.Local.ID, ContentDiff(r.Local.Content, r.Remote.Content))
}
