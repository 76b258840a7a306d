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
	"github.com/pkg/errors"
)

// RecordType discriminates study records
type RecordType string

// Record types
const (
	RecordTypePractice RecordType = "practice"
	RecordTypeTextbook RecordType = "textbook"
)

// Source is the provenance of a study record
type Source string

// Sources
const (
	SourceManual Source = "manual"
	SourceTimer  Source = "timer"
)

var (
	// ErrInvalidRecordType is an error for an unknown record type
	ErrInvalidRecordType = errors.New("invalid record type")
	// ErrInvalidMinutes is an error for a non-positive study duration
	ErrInvalidMinutes = errors.New("study minutes must be greater than 0")
	// ErrInvalidCounts is an error for question counts that do not add up
	ErrInvalidCounts = errors.New("correct count must be between 0 and the question count")
	// ErrFieldNotAllowed is an error for a field that does not belong to the record type
	ErrFieldNotAllowed = errors.New("field not allowed for the record type")
	// ErrInvalidSource is an error for an unknown provenance
	ErrInvalidSource = errors.New("invalid source")
)

// Record is a completed study activity
type Record struct {
	Meta

	Type          RecordType `json:"recordType"`
	Subject       Subject    `json:"subject"`
	Subtopic      string     `json:"subtopic,omitempty"`
	StudyMinutes  int        `json:"studyMinutes"`
	QuestionCount *int       `json:"questionCount,omitempty"`
	CorrectCount  *int       `json:"correctCount,omitempty"`
	Round         *int       `json:"round,omitempty"`
	Chapter       string     `json:"chapter,omitempty"`
	PageRange     string     `json:"pageRange,omitempty"`
	StudiedAt     string     `json:"studiedAt"`
	Memo          string     `json:"memo,omitempty"`
	Source        Source     `json:"source"`
	SessionID     string     `json:"sessionId,omitempty"`
}

// GetMeta returns the metadata of the record
func (r Record) GetMeta() Meta {
	return r.Meta
}

// WithMeta returns a copy of the record with the given metadata
func (r Record) WithMeta(m Meta) Record {
	r.Meta = m
	return r
}

// Validate checks the record invariants
func (r Record) Validate() error {
	if err := r.Meta.Validate(); err != nil {
		return err
	}

	switch r.Type {
	case RecordTypePractice:
		if r.Chapter != "" || r.PageRange != "" {
			return errors.Wrap(ErrFieldNotAllowed, "chapter and page range are for textbook records")
		}
	case RecordTypeTextbook:
		if r.QuestionCount != nil || r.CorrectCount != nil {
			return errors.Wrap(ErrFieldNotAllowed, "question counts are for practice records")
		}
	default:
		return errors.Wrapf(ErrInvalidRecordType, "'%s'", r.Type)
	}

	if !r.Subject.Valid() {
		return errors.Wrapf(ErrInvalidSubject, "'%s'", r.Subject)
	}
	if r.StudyMinutes <= 0 {
		return ErrInvalidMinutes
	}
	if err := validateCounts(r.QuestionCount, r.CorrectCount); err != nil {
		return err
	}
	if r.Round != nil && *r.Round < 1 {
		return errors.New("round must be at least 1")
	}
	if err := ValidateDate(r.StudiedAt); err != nil {
		return errors.Wrap(err, "studiedAt")
	}
	if r.Source != SourceManual && r.Source != SourceTimer {
		return errors.Wrapf(ErrInvalidSource, "'%s'", r.Source)
	}

	return nil
}

func validateCounts(total, correct *int) error {
	if total != nil && *total < 0 {
		return ErrInvalidCounts
	}
	if correct == nil {
		return nil
	}
	if total == nil || *correct < 0 || *correct > *total {
		return ErrInvalidCounts
	}

	return nil
}

// RecordPatch is a partial update of a record. Nil fields are left unchanged.
type RecordPatch struct {
	Type          *RecordType
	Subject       *Subject
	Subtopic      *string
	StudyMinutes  *int
	QuestionCount *int
	CorrectCount  *int
	Round         *int
	Chapter       *string
	PageRange     *string
	StudiedAt     *string
	Memo          *string
	// ClearRound removes the round. It is ignored if Round is set.
	ClearRound bool
}

// Apply returns a copy of the record with the patch applied. Changing the
// type drops the fields of the old type that the patch does not set.
func (p RecordPatch) Apply(r Record) Record {
	if p.Type != nil && *p.Type != r.Type {
		r.Type = *p.Type

		switch r.Type {
		case RecordTypeTextbook:
			r.QuestionCount = nil
			r.CorrectCount = nil
		case RecordTypePractice:
			r.Chapter = ""
			r.PageRange = ""
		}
	}
	if p.Subject != nil {
		r.Subject = *p.Subject
	}
	if p.Subtopic != nil {
		r.Subtopic = *p.Subtopic
	}
	if p.StudyMinutes != nil {
		r.StudyMinutes = *p.StudyMinutes
	}
	if p.QuestionCount != nil {
		r.QuestionCount = Int(*p.QuestionCount)
	}
	if p.CorrectCount != nil {
		r.CorrectCount = Int(*p.CorrectCount)
	}
	if p.Round != nil {
		r.Round = Int(*p.Round)
	} else if p.ClearRound {
		r.Round = nil
	}
	if p.Chapter != nil {
		r.Chapter = *p.Chapter
	}
	if p.PageRange != nil {
		r.PageRange = *p.PageRange
	}
	if p.StudiedAt != nil {
		r.StudiedAt = *p.StudiedAt
	}
	if p.Memo != nil {
		r.Memo = *p.Memo
	}

	return r
}

// Accuracy returns the ratio of correct answers, if the record has counts
func (r Record) Accuracy() (float64, bool) {
	if r.QuestionCount == nil || r.CorrectCount == nil || *r.QuestionCount == 0 {
		return 0, false
	}

	return float64(*r.CorrectCount) / float64(*r.QuestionCount), true
}
