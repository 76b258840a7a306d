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

// Package record implements the commands for study records
package record

import (
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewCmd returns a new record command
func NewCmd(ctx context.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "record",
		Aliases: []string{"r"},
		Short:   "Manage study records",
	}

	cmd.AddCommand(newAddCmd(ctx))
	cmd.AddCommand(newEditCmd(ctx))
	cmd.AddCommand(newRemoveCmd(ctx))
	cmd.AddCommand(newLsCmd(ctx))

	return cmd
}

// fields holds the values of the record flags shared by add and edit
type fields struct {
	recordType string
	subtopic   string
	minutes    int
	questions  int
	correct    int
	round      int
	chapter    string
	pages      string
	date       string
	memo       string
}

func (fl *fields) register(f *pflag.FlagSet) {
	f.StringVarP(&fl.recordType, "type", "t", "", "record type: practice or textbook (defaults to practice if --questions is given)")
	f.StringVarP(&fl.subtopic, "subtopic", "s", "", "the subtopic studied")
	f.IntVarP(&fl.minutes, "minutes", "m", 0, "study duration in minutes")
	f.IntVarP(&fl.questions, "questions", "q", 0, "number of questions solved")
	f.IntVarP(&fl.correct, "correct", "c", 0, "number of correct answers")
	f.IntVar(&fl.round, "round", 0, "the round of the question set")
	f.StringVar(&fl.chapter, "chapter", "", "the textbook chapter")
	f.StringVar(&fl.pages, "pages", "", "the textbook page range")
	f.StringVarP(&fl.date, "date", "d", "", "the date studied as YYYY-MM-DD (defaults to today)")
	f.StringVar(&fl.memo, "memo", "", "a free-form memo")
}

func parseType(s string) (models.RecordType, error) {
	t := models.RecordType(s)
	if t != models.RecordTypePractice && t != models.RecordTypeTextbook {
		return "", errors.Wrapf(models.ErrInvalidRecordType, "'%s'", s)
	}

	return t, nil
}

// toRecord builds a new manual record from the flags. today is used when no
// date is given.
func (fl fields) toRecord(subject models.Subject, changed func(string) bool, today string) (models.Record, error) {
	r := models.Record{
		Subject:      subject,
		Subtopic:     fl.subtopic,
		StudyMinutes: fl.minutes,
		Chapter:      fl.chapter,
		PageRange:    fl.pages,
		StudiedAt:    fl.date,
		Memo:         fl.memo,
		Source:       models.SourceManual,
	}

	switch {
	case fl.recordType != "":
		t, err := parseType(fl.recordType)
		if err != nil {
			return r, err
		}
		r.Type = t
	case changed("questions"):
		r.Type = models.RecordTypePractice
	default:
		r.Type = models.RecordTypeTextbook
	}

	if changed("questions") {
		r.QuestionCount = models.Int(fl.questions)
	}
	if changed("correct") {
		r.CorrectCount = models.Int(fl.correct)
	}
	if changed("round") {
		r.Round = models.Int(fl.round)
	}
	if r.StudiedAt == "" {
		r.StudiedAt = today
	}

	return r, nil
}

// toPatch builds a patch from the flags that were set on the command line
func (fl fields) toPatch(changed func(string) bool) (models.RecordPatch, error) {
	var p models.RecordPatch

	if changed("type") {
		t, err := parseType(fl.recordType)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if changed("subtopic") {
		p.Subtopic = models.String(fl.subtopic)
	}
	if changed("minutes") {
		p.StudyMinutes = models.Int(fl.minutes)
	}
	if changed("questions") {
		p.QuestionCount = models.Int(fl.questions)
	}
	if changed("correct") {
		p.CorrectCount = models.Int(fl.correct)
	}
	if changed("round") {
		p.Round = models.Int(fl.round)
	}
	if changed("chapter") {
		p.Chapter = models.String(fl.chapter)
	}
	if changed("pages") {
		p.PageRange = models.String(fl.pages)
	}
	if changed("date") {
		p.StudiedAt = models.String(fl.date)
	}
	if changed("memo") {
		p.Memo = models.String(fl.memo)
	}

	return p, nil
}
