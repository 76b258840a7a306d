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

// Package timer implements the study stopwatch. Its state lives in the
// database so that a session can span several invocations of the CLI.
package timer

import (
	"encoding/json"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

var (
	// ErrAlreadyRunning is an error for starting a timer while one exists
	ErrAlreadyRunning = errors.New("a timer is already running")
	// ErrNotRunning is an error for an operation that requires a timer
	ErrNotRunning = errors.New("no timer is running")
	// ErrPaused is an error for pausing a paused timer
	ErrPaused = errors.New("the timer is already paused")
	// ErrNotPaused is an error for resuming a running timer
	ErrNotPaused = errors.New("the timer is not paused")
)

// State is the persisted stopwatch state
type State struct {
	Subject   models.Subject `json:"subject"`
	Subtopic  string         `json:"subtopic,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
	// ResumedAt is the start of the running segment. It is zero while paused.
	ResumedAt time.Time `json:"resumedAt"`
	// Accumulated is the time counted before the running segment
	Accumulated time.Duration `json:"accumulated"`
}

// Paused reports whether the stopwatch is paused
func (s State) Paused() bool {
	return s.ResumedAt.IsZero()
}

// Elapsed returns the counted time at the given instant
func (s State) Elapsed(now time.Time) time.Duration {
	if s.Paused() {
		return s.Accumulated
	}

	return s.Accumulated + now.Sub(s.ResumedAt)
}

// Timer is the stopwatch
type Timer struct {
	db    *database.DB
	clock clock.Clock
}

// New returns a stopwatch backed by the given database
func New(db *database.DB, c clock.Clock) *Timer {
	return &Timer{db: db, clock: c}
}

func (t *Timer) load() (*State, error) {
	val, ok, err := database.GetSystem(t.db, consts.SystemTimer)
	if err != nil {
		return nil, errors.Wrap(err, "reading timer")
	}
	if !ok || val == "" {
		return nil, nil
	}

	var s State
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, errors.Wrap(err, "unmarshalling timer")
	}

	return &s, nil
}

func (t *Timer) save(s State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshalling timer")
	}

	return database.UpdateSystem(t.db, consts.SystemTimer, string(b))
}

// Status returns the current state, or nil if no timer exists
func (t *Timer) Status() (*State, error) {
	return t.load()
}

// Start starts a timer for the given subject
func (t *Timer) Start(subject models.Subject, subtopic string) (State, error) {
	if !subject.Valid() {
		return State{}, errors.Wrapf(models.ErrInvalidSubject, "'%s'", subject)
	}

	cur, err := t.load()
	if err != nil {
		return State{}, err
	}
	if cur != nil {
		return State{}, ErrAlreadyRunning
	}

	now := t.clock.Now()
	s := State{
		Subject:   subject,
		Subtopic:  subtopic,
		StartedAt: now,
		ResumedAt: now,
	}

	return s, t.save(s)
}

// Pause stops counting time until Resume
func (t *Timer) Pause() (State, error) {
	s, err := t.load()
	if err != nil {
		return State{}, err
	}
	if s == nil {
		return State{}, ErrNotRunning
	}
	if s.Paused() {
		return *s, ErrPaused
	}

	s.Accumulated = s.Elapsed(t.clock.Now())
	s.ResumedAt = time.Time{}

	return *s, t.save(*s)
}

// Resume continues a paused timer
func (t *Timer) Resume() (State, error) {
	s, err := t.load()
	if err != nil {
		return State{}, err
	}
	if s == nil {
		return State{}, ErrNotRunning
	}
	if !s.Paused() {
		return *s, ErrNotPaused
	}

	s.ResumedAt = t.clock.Now()

	return *s, t.save(*s)
}

// Stop finalizes the timer. It returns nil if the counted time is shorter
// than models.MinSessionSeconds; such sessions are discarded.
func (t *Timer) Stop() (*models.Session, error) {
	s, err := t.load()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotRunning
	}

	now := t.clock.Now()
	seconds := int(s.Elapsed(now) / time.Second)

	if err := database.DeleteSystem(t.db, consts.SystemTimer); err != nil {
		return nil, errors.Wrap(err, "clearing timer")
	}

	if seconds < models.MinSessionSeconds {
		return nil, nil
	}

	return &models.Session{
		Subject:   s.Subject,
		Subtopic:  s.Subtopic,
		Seconds:   seconds,
		StartedAt: s.StartedAt,
		EndedAt:   now,
	}, nil
}
