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

// Package output provides functions to print information on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/timer"
)

const timeLayout = "Jan 2, 2006 3:04pm (MST)"

// ShortID returns the prefix of a local id shown in listings
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func syncState(remoteID string, mapped bool) string {
	if !mapped {
		return "pending"
	}

	return remoteID
}

// RecordLine prints a record in one line
func RecordLine(r models.Record) {
	var detail string
	if acc, ok := r.Accuracy(); ok {
		detail = fmt.Sprintf(" %d/%d (%.0f%%)", *r.CorrectCount, *r.QuestionCount, acc*100)
	} else if r.Chapter != "" {
		detail = " " + r.Chapter
	}

	var source string
	if r.Source == models.SourceTimer {
		source = " " + color.CyanString("[timer]")
	}

	log.Plainf("(%s) %s %s %s %dm%s%s\n",
		color.YellowString(ShortID(r.ID)), r.StudiedAt, r.Subject, r.Type, r.StudyMinutes, detail, source)
}

// RecordInfo prints the details of a record
func RecordInfo(r models.Record, remoteID string, mapped bool) {
	log.Infof("record id: %s\n", r.ID)
	log.Infof("type: %s\n", r.Type)
	log.Infof("subject: %s\n", r.Subject)
	if r.Subtopic != "" {
		log.Infof("subtopic: %s\n", r.Subtopic)
	}
	log.Infof("studied at: %s\n", r.StudiedAt)
	log.Infof("minutes: %d\n", r.StudyMinutes)
	if acc, ok := r.Accuracy(); ok {
		log.Infof("correct: %d/%d (%.1f%%)\n", *r.CorrectCount, *r.QuestionCount, acc*100)
	}
	if r.Round != nil {
		log.Infof("round: %d\n", *r.Round)
	}
	if r.Chapter != "" {
		log.Infof("chapter: %s\n", r.Chapter)
	}
	if r.PageRange != "" {
		log.Infof("pages: %s\n", r.PageRange)
	}
	if r.Memo != "" {
		log.Infof("memo: %s\n", r.Memo)
	}
	log.Infof("source: %s\n", r.Source)
	if r.SessionID != "" {
		log.Infof("session id: %s\n", r.SessionID)
	}
	log.Infof("created at: %s\n", formatTime(r.CreatedAt))
	if !r.UpdatedAt.Equal(r.CreatedAt) {
		log.Infof("updated at: %s\n", formatTime(r.UpdatedAt))
	}
	log.Infof("remote: %s\n", syncState(remoteID, mapped))
}

// SubjectTotal is the study time and question results of one subject
type SubjectTotal struct {
	Subject   models.Subject
	Minutes   int
	Questions int
	Correct   int
}

// Totals sums up records by subject, in the order of models.Subjects
func Totals(records []models.Record) []SubjectTotal {
	bySubject := map[models.Subject]*SubjectTotal{}
	for _, r := range records {
		t, ok := bySubject[r.Subject]
		if !ok {
			t = &SubjectTotal{Subject: r.Subject}
			bySubject[r.Subject] = t
		}

		t.Minutes += r.StudyMinutes
		if r.QuestionCount != nil && r.CorrectCount != nil {
			t.Questions += *r.QuestionCount
			t.Correct += *r.CorrectCount
		}
	}

	var ret []SubjectTotal
	for _, s := range models.Subjects {
		if t, ok := bySubject[s]; ok {
			ret = append(ret, *t)
		}
	}

	return ret
}

// RecordSummary prints the totals by subject against the target hours
func RecordSummary(records []models.Record, settings models.Settings) {
	for _, t := range Totals(records) {
		line := fmt.Sprintf("%s %.1fh", t.Subject, float64(t.Minutes)/60)
		if target, ok := settings.TargetHours[t.Subject]; ok && target > 0 {
			line += fmt.Sprintf(" / %dh", target)
		}
		if t.Questions > 0 {
			line += fmt.Sprintf(", %d/%d correct", t.Correct, t.Questions)
		}

		log.Plainf("  %s\n", line)
	}
}

// NoteLine prints a note in one line
func NoteLine(n models.Note) {
	title := n.Title
	if title == "" {
		title = firstLine(n.Content)
	}

	var where string
	if key, ok := n.PageKey(); ok {
		where = " " + color.CyanString(key)
	}

	log.Plainf("(%s) %s%s\n", color.YellowString(ShortID(n.ID)), title, where)
}

func firstLine(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]
	if len(line) > 60 {
		return line[:60] + "..."
	}

	return line
}

// NoteInfo prints a note information
func NoteInfo(n models.Note, remoteID string, mapped bool) {
	log.Infof("note id: %s\n", n.ID)
	if n.Title != "" {
		log.Infof("title: %s\n", n.Title)
	}
	if n.Subject != "" {
		log.Infof("subject: %s\n", n.Subject)
	}
	if key, ok := n.PageKey(); ok {
		log.Infof("page: %s\n", key)
	}
	if len(n.Tags) > 0 {
		log.Infof("tags: %s\n", strings.Join(n.Tags, ", "))
	}
	log.Infof("created at: %s\n", formatTime(n.CreatedAt))
	if !n.UpdatedAt.Equal(n.CreatedAt) {
		log.Infof("updated at: %s\n", formatTime(n.UpdatedAt))
	}
	log.Infof("remote: %s\n", syncState(remoteID, mapped))

	log.Plainf("\n------------------------content------------------------\n")
	log.Plainf("%s", n.Content)
	log.Plainf("\n-------------------------------------------------------\n")
}

// DaysUntil returns the number of calendar days from the local date of now
// to the given date
func DaysUntil(date string, now time.Time) (int, bool) {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return 0, false
	}
	today, err := time.Parse(models.DateLayout, now.Local().Format(models.DateLayout))
	if err != nil {
		return 0, false
	}

	return int(d.Sub(today).Hours() / 24), true
}

// SettingsInfo prints the settings
func SettingsInfo(s models.Settings, now time.Time) {
	subjects := make([]string, 0, len(s.ExamDates))
	for sub := range s.ExamDates {
		subjects = append(subjects, string(sub))
	}
	sort.Strings(subjects)

	log.Infof("exam dates:\n")
	if len(subjects) == 0 {
		log.Plainf("  none\n")
	}
	for _, sub := range subjects {
		date := s.ExamDates[models.Subject(sub)]

		var remaining string
		if days, ok := DaysUntil(date, now); ok && days >= 0 {
			remaining = fmt.Sprintf(" (%d days left)", days)
		}
		log.Plainf("  %s %s%s\n", sub, date, remaining)
	}

	log.Infof("target hours:\n")
	if len(s.TargetHours) == 0 {
		log.Plainf("  none\n")
	}
	for _, sub := range models.Subjects {
		if h, ok := s.TargetHours[sub]; ok {
			log.Plainf("  %s %dh\n", sub, h)
		}
	}

	log.Infof("weekday hours: %g\n", s.WeekdayHours)
	log.Infof("weekend hours: %g\n", s.WeekendHours)
}

// TimerStatus prints the stopwatch state
func TimerStatus(s timer.State, now time.Time) {
	elapsed := s.Elapsed(now).Truncate(time.Second)

	state := "running"
	if s.Paused() {
		state = "paused"
	}

	subject := string(s.Subject)
	if s.Subtopic != "" {
		subject += " / " + s.Subtopic
	}

	log.Infof("%s: %s, %s elapsed since %s\n", state, subject, elapsed, formatTime(s.StartedAt))
}
