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

// Package models defines the entity families tracked by studylog and the
// rules that keep each of them valid.
package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the layout of calendar date strings such as studiedAt
const DateLayout = "2006-01-02"

var (
	// ErrMissingID is an error for an entity without a local id
	ErrMissingID = errors.New("missing local id")
	// ErrTimestampOrder is an error for an entity updated before it was created
	ErrTimestampOrder = errors.New("updatedAt is older than createdAt")
	// ErrInvalidSubject is an error for a subject outside of the known set
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrInvalidDate is an error for a malformed calendar date
	ErrInvalidDate = errors.New("invalid date")
)

// Meta holds the identity and timestamps shared by every entity
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeviceID  string    `json:"deviceId"`
}

// Validate checks the invariants of the metadata
func (m Meta) Validate() error {
	if m.ID == "" {
		return ErrMissingID
	}
	if m.UpdatedAt.Before(m.CreatedAt) {
		return ErrTimestampOrder
	}

	return nil
}

// Entity is implemented by every entity family kept in a local store.
// Entities are values; WithMeta returns a copy carrying the given metadata.
type Entity[T any] interface {
	GetMeta() Meta
	WithMeta(Meta) T
	Validate() error
}

// Patch is a partial update of an entity
type Patch[T any] interface {
	Apply(T) T
}

// Subject is a section of the exam
type Subject string

// Subjects of the exam
const (
	SubjectFAR Subject = "FAR"
	SubjectAUD Subject = "AUD"
	SubjectREG Subject = "REG"
	SubjectBEC Subject = "BEC"
)

// Subjects is the closed set of subjects in display order
var Subjects = []Subject{SubjectFAR, SubjectAUD, SubjectREG, SubjectBEC}

// Valid reports whether the subject is one of Subjects
func (s Subject) Valid() bool {
	for _, v := range Subjects {
		if s == v {
			return true
		}
	}

	return false
}

// ParseSubject parses a subject case-insensitively
func ParseSubject(s string) (Subject, error) {
	ret := Subject(strings.ToUpper(strings.TrimSpace(s)))
	if !ret.Valid() {
		return "", errors.Wrapf(ErrInvalidSubject, "'%s'", s)
	}

	return ret, nil
}

// ValidateDate checks that the given string is a calendar date
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return errors.Wrapf(ErrInvalidDate, "'%s'", s)
	}

	return nil
}

// Int returns a pointer to the given int
func Int(i int) *int {
	return &i
}

// String returns a pointer to the given string
func String(s string) *string {
	return &s
}
