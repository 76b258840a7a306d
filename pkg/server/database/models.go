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

package database

import (
	"time"
)

// Document is a model for a document in a remote database. Properties and
// Children hold JSON text. The timestamps are set by the application clock.
type Document struct {
	ID         int        `gorm:"primaryKey"`
	UUID       string     `gorm:"uniqueIndex;type:text"`
	DatabaseID string     `gorm:"index;type:text"`
	Properties string     `gorm:"type:text"`
	Children   string     `gorm:"type:text"`
	Archived   bool       `gorm:"default:false"`
	ArchivedAt *time.Time `gorm:"index"`
	CreatedAt  time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime:false;index"`
}
