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

package remote

import (
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote/blocks"
)

// Codec maps an entity to and from the fields of a remote document
type Codec[T any] interface {
	Encode(e T) DocumentPayload
	Decode(d Document) (T, error)
}

const (
	propLocalID   = "localId"
	propCreatedAt = "createdAt"
	propUpdatedAt = "updatedAt"
	propDeviceID  = "deviceId"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeMeta(m models.Meta, p Properties) {
	p[propLocalID] = m.ID
	p[propCreatedAt] = formatTime(m.CreatedAt)
	p[propUpdatedAt] = formatTime(m.UpdatedAt)
	p[propDeviceID] = m.DeviceID
}

// decodeMeta reads the metadata of a document. Documents created outside of
// studylog have no local id and use their remote id instead.
func decodeMeta(d Document) models.Meta {
	m := models.Meta{
		ID:        d.Properties.String(propLocalID),
		CreatedAt: d.Properties.Time(propCreatedAt),
		UpdatedAt: d.Properties.Time(propUpdatedAt),
		DeviceID:  d.Properties.String(propDeviceID),
	}

	if m.ID == "" {
		m.ID = d.ID
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = d.CreatedTime
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = d.LastEditedTime
	}
	if m.UpdatedAt.Before(m.CreatedAt) {
		m.UpdatedAt = m.CreatedAt
	}

	return m
}

// setInt and setString write an explicit null for an empty value so that an
// update clears the property on the remote
func setInt(p Properties, key string, v *int) {
	if v == nil {
		p[key] = nil
		return
	}

	p[key] = *v
}

func setString(p Properties, key, v string) {
	if v == "" {
		p[key] = nil
		return
	}

	p[key] = v
}

// RecordCodec maps study records
type RecordCodec struct{}

// Encode maps a record to document fields
func (RecordCodec) Encode(r models.Record) DocumentPayload {
	p := Properties{
		"recordType":   string(r.Type),
		"subject":      string(r.Subject),
		"studyMinutes": r.StudyMinutes,
		"studiedAt":    r.StudiedAt,
		"source":       string(r.Source),
	}
	encodeMeta(r.Meta, p)

	setString(p, "subtopic", r.Subtopic)
	setInt(p, "questionCount", r.QuestionCount)
	setInt(p, "correctCount", r.CorrectCount)
	setInt(p, "round", r.Round)
	setString(p, "chapter", r.Chapter)
	setString(p, "pageRange", r.PageRange)
	setString(p, "memo", r.Memo)
	setString(p, "sessionId", r.SessionID)

	return DocumentPayload{Properties: p}
}

// Decode maps document fields to a record
func (RecordCodec) Decode(d Document) (models.Record, error) {
	p := d.Properties

	r := models.Record{
		Meta:          decodeMeta(d),
		Type:          models.RecordType(p.String("recordType")),
		Subject:       models.Subject(p.String("subject")),
		Subtopic:      p.String("subtopic"),
		QuestionCount: p.Int("questionCount"),
		CorrectCount:  p.Int("correctCount"),
		Round:         p.Int("round"),
		Chapter:       p.String("chapter"),
		PageRange:     p.String("pageRange"),
		StudiedAt:     p.String("studiedAt"),
		Memo:          p.String("memo"),
		Source:        models.Source(p.String("source")),
		SessionID:     p.String("sessionId"),
	}
	if m := p.Int("studyMinutes"); m != nil {
		r.StudyMinutes = *m
	}
	if r.Source == "" {
		r.Source = models.SourceManual
	}

	return r, r.Validate()
}

// NoteCodec maps notes. The markdown content is stored as the document body
// and is always sent, so that an emptied note clears the remote body.
type NoteCodec struct{}

// Encode maps a note to document fields
func (NoteCodec) Encode(n models.Note) DocumentPayload {
	p := Properties{
		"noteType": string(n.Type),
	}
	encodeMeta(n.Meta, p)

	setString(p, "title", n.Title)
	setString(p, "subject", string(n.Subject))
	setString(p, "materialId", n.MaterialID)
	setInt(p, "page", n.Page)
	if len(n.Tags) > 0 {
		p["tags"] = n.Tags
	} else {
		p["tags"] = nil
	}

	return DocumentPayload{
		Properties: p,
		Children:   blocks.FromMarkdown(n.Content),
	}
}

// Decode maps document fields to a note
func (NoteCodec) Decode(d Document) (models.Note, error) {
	p := d.Properties

	n := models.Note{
		Meta:       decodeMeta(d),
		Type:       models.NoteType(p.String("noteType")),
		Title:      p.String("title"),
		Content:    blocks.ToMarkdown(d.Children),
		Subject:    models.Subject(p.String("subject")),
		MaterialID: p.String("materialId"),
		Page:       p.Int("page"),
		Tags:       p.Strings("tags"),
	}
	if n.Type == "" {
		n.Type = models.NoteTypeStandalone
	}

	return n, n.Validate()
}

// SettingsCodec maps the settings singleton
type SettingsCodec struct{}

// Encode maps the settings to document fields
func (SettingsCodec) Encode(s models.Settings) DocumentPayload {
	examDates := map[string]interface{}{}
	for k, v := range s.ExamDates {
		examDates[string(k)] = v
	}
	targetHours := map[string]interface{}{}
	for k, v := range s.TargetHours {
		targetHours[string(k)] = v
	}

	p := Properties{
		"examDates":    examDates,
		"targetHours":  targetHours,
		"weekdayHours": s.WeekdayHours,
		"weekendHours": s.WeekendHours,
	}
	p[propUpdatedAt] = formatTime(s.UpdatedAt)

	return DocumentPayload{Properties: p}
}

// Decode maps document fields to the settings
func (SettingsCodec) Decode(d Document) (models.Settings, error) {
	p := d.Properties

	s := models.DefaultSettings()
	for k, v := range p.Map("examDates") {
		if date, ok := v.(string); ok {
			s.ExamDates[models.Subject(k)] = date
		}
	}
	targetHours := Properties(p.Map("targetHours"))
	for k := range targetHours {
		if h := targetHours.Int(k); h != nil {
			s.TargetHours[models.Subject(k)] = *h
		}
	}
	s.WeekdayHours = p.Float("weekdayHours")
	s.WeekendHours = p.Float("weekendHours")
	s.UpdatedAt = p.Time(propUpdatedAt)
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = d.LastEditedTime
	}

	return s, s.Validate()
}

// SessionCodec maps raw timer sessions
type SessionCodec struct{}

// Encode maps a raw session to document fields
func (SessionCodec) Encode(s models.RawSession) DocumentPayload {
	p := Properties{
		"sessionId": s.SessionID,
		"deviceId":  s.DeviceID,
		"subject":   string(s.Subject),
		"seconds":   s.Seconds,
		"startedAt": formatTime(s.StartedAt),
		"endedAt":   formatTime(s.EndedAt),
	}
	setString(p, "subtopic", s.Subtopic)

	return DocumentPayload{Properties: p}
}

// Decode maps document fields to a raw session
func (SessionCodec) Decode(d Document) (models.RawSession, error) {
	p := d.Properties

	s := models.RawSession{
		Session: models.Session{
			Subject:   models.Subject(p.String("subject")),
			Subtopic:  p.String("subtopic"),
			StartedAt: p.Time("startedAt"),
			EndedAt:   p.Time("endedAt"),
		},
		SessionID: p.String("sessionId"),
		DeviceID:  p.String("deviceId"),
	}
	if sec := p.Int("seconds"); sec != nil {
		s.Seconds = *sec
	}

	return s, nil
}
