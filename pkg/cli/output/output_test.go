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

package output

import (
	"fmt"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
)

func TestShortID(t *testing.T) {
	testCases := []struct {
		id       string
		expected string
	}{
		{id: "", expected: ""},
		{id: "abc", expected: "abc"},
		{id: "12345678", expected: "12345678"},
		{id: "123456789abc", expected: "12345678"},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			assert.Equal(t, ShortID(tc.id), tc.expected, "result mismatch")
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	testCases := []struct {
		date     string
		expected int
		ok       bool
	}{
		{date: "2026-03-10", expected: 0, ok: true},
		{date: "2026-03-11", expected: 1, ok: true},
		{date: "2026-04-10", expected: 31, ok: true},
		{date: "2026-03-01", expected: -9, ok: true},
		{date: "not-a-date", expected: 0, ok: false},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			days, ok := DaysUntil(tc.date, now)
			assert.Equal(t, ok, tc.ok, "ok mismatch")
			assert.Equal(t, days, tc.expected, "days mismatch")
		})
	}
}

func TestTotals(t *testing.T) {
	records := []models.Record{
		{Subject: models.SubjectREG, Type: models.RecordTypeTextbook, StudyMinutes: 30},
		{Subject: models.SubjectFAR, Type: models.RecordTypePractice, StudyMinutes: 45, QuestionCount: models.Int(20), CorrectCount: models.Int(15)},
		{Subject: models.SubjectFAR, Type: models.RecordTypeTextbook, StudyMinutes: 60},
		{Subject: models.SubjectFAR, Type: models.RecordTypePractice, StudyMinutes: 15, QuestionCount: models.Int(10)},
	}

	result := Totals(records)

	assert.DeepEqual(t, result, []SubjectTotal{
		{Subject: models.SubjectFAR, Minutes: 120, Questions: 20, Correct: 15},
		{Subject: models.SubjectREG, Minutes: 30},
	}, "totals mismatch")
}
