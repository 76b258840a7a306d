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
	"time"
)

// MinSessionSeconds is the shortest timer session that is recorded
const MinSessionSeconds = 60

// Session is a finalized timer session
type Session struct {
	Subject   Subject   `json:"subject"`
	Subtopic  string    `json:"subtopic,omitempty"`
	Seconds   int       `json:"seconds"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// Minutes returns the session duration rounded to the nearest minute, and
// at least one minute
func (s Session) Minutes() int {
	m := (s.Seconds + 30) / 60
	if m < 1 {
		return 1
	}

	return m
}

// RawSession is the session as mirrored to the remote for later correlation
// with the record it produced
type RawSession struct {
	Session

	SessionID string `json:"sessionId"`
	DeviceID  string `json:"deviceId"`
}
