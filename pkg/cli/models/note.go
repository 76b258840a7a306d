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

package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// NoteType discriminates notes
type NoteType string

// Note types
const (
	NoteTypeStandalone NoteType = "standalone"
	NoteTypePage       NoteType = "page"
)

var (
	// ErrInvalidNoteType is an error for an unknown note type
	ErrInvalidNoteType = errors.New("invalid note type")
	// ErrMissingPage is an error for a page annotation without a material or page
	ErrMissingPage = errors.New("page annotations require a material id and a page number")
)

// Note is free-form markdown content, either standalone or annotating one
// page of a material
type Note struct {
	Meta

	Type       NoteType `json:"noteType"`
	Title      string   `json:"title,omitempty"`
	Content    string   `json:"content"`
	Subject    Subject  `json:"subject,omitempty"`
	MaterialID string   `json:"materialId,omitempty"`
	Page       *int     `json:"page,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// GetMeta returns the metadata of the note
func (n Note) GetMeta() Meta {
	return n.Meta
}

// WithMeta returns a copy of the note with the given metadata
func (n Note) WithMeta(m Meta) Note {
	n.Meta = m
	return n
}

// Validate checks the note invariants
func (n Note) Validate() error {
	if err := n.Meta.Validate(); err != nil {
		return err
	}
	if n.Subject != "" && !n.Subject.Valid() {
		return errors.Wrapf(ErrInvalidSubject, "'%s'", n.Subject)
	}

	switch n.Type {
	case NoteTypeStandalone:
		if n.Page != nil {
			return errors.Wrap(ErrFieldNotAllowed, "page is for page annotations")
		}
	case NoteTypePage:
		if n.MaterialID == "" || n.Page == nil || *n.Page < 1 {
			return ErrMissingPage
		}
	default:
		return errors.Wrapf(ErrInvalidNoteType, "'%s'", n.Type)
	}

	return nil
}

// PageKey returns the key identifying the annotated page. The second return
// value is false for standalone notes.
func (n Note) PageKey() (string, bool) {
	if n.Type != NoteTypePage || n.Page == nil {
		return "", false
	}

	return fmt.Sprintf("%s#%d", n.MaterialID, *n.Page), true
}

// NotePatch is a partial update of a note. Nil fields are left unchanged.
type NotePatch struct {
	Title   *string
	Content *string
	Subject *Subject
	Tags    []string
}

// Apply returns a copy of the note with the patch applied
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Subject != nil {
		n.Subject = *p.Subject
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), p.Tags...)
	}

	return n
}
