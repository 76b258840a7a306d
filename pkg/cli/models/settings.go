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

	"github.com/pkg/errors"
)

// Settings is the singleton holding exam dates and study targets
type Settings struct {
	ExamDates    map[Subject]string `json:"examDates"`
	TargetHours  map[Subject]int    `json:"targetHours"`
	WeekdayHours float64            `json:"weekdayHours"`
	WeekendHours float64            `json:"weekendHours"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// DefaultSettings returns the settings of a fresh installation
func DefaultSettings() Settings {
	return Settings{
		ExamDates:    map[Subject]string{},
		TargetHours:  map[Subject]int{},
		WeekdayHours: 2,
		WeekendHours: 5,
	}
}

// Validate checks the settings invariants
func (s Settings) Validate() error {
	for sub, date := range s.ExamDates {
		if !sub.Valid() {
			return errors.Wrapf(ErrInvalidSubject, "exam date for '%s'", sub)
		}
		if err := ValidateDate(date); err != nil {
			return errors.Wrapf(err, "exam date for %s", sub)
		}
	}
	for sub, hours := range s.TargetHours {
		if !sub.Valid() {
			return errors.Wrapf(ErrInvalidSubject, "target hours for '%s'", sub)
		}
		if hours < 0 {
			return errors.Errorf("target hours for %s must not be negative", sub)
		}
	}
	if s.WeekdayHours < 0 || s.WeekdayHours > 24 {
		return errors.New("weekday hours must be between 0 and 24")
	}
	if s.WeekendHours < 0 || s.WeekendHours > 24 {
		return errors.New("weekend hours must be between 0 and 24")
	}

	return nil
}

// Clone returns a deep copy of the settings
func (s Settings) Clone() Settings {
	ret := s
	ret.ExamDates = make(map[Subject]string, len(s.ExamDates))
	for k, v := range s.ExamDates {
		ret.ExamDates[k] = v
	}
	ret.TargetHours = make(map[Subject]int, len(s.TargetHours))
	for k, v := range s.TargetHours {
		ret.TargetHours[k] = v
	}

	return ret
}

// SettingsPatch is a partial update of the settings. An empty exam date
// removes the date for that subject.
type SettingsPatch struct {
	ExamDates    map[Subject]string
	TargetHours  map[Subject]int
	WeekdayHours *float64
	WeekendHours *float64
}

// Apply returns a copy of the settings with the patch applied
func (p SettingsPatch) Apply(s Settings) Settings {
	ret := s.Clone()

	for k, v := range p.ExamDates {
		if v == "" {
			delete(ret.ExamDates, k)
			continue
		}
		ret.ExamDates[k] = v
	}
	for k, v := range p.TargetHours {
		ret.TargetHours[k] = v
	}
	if p.WeekdayHours != nil {
		ret.WeekdayHours = *p.WeekdayHours
	}
	if p.WeekendHours != nil {
		ret.WeekendHours = *p.WeekendHours
	}

	return ret
}
