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

package app

import (
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// ArchiveRetention is how long an archived document is kept before it is
// purged
const ArchiveRetention = 30 * 24 * time.Hour

// PurgeArchived permanently deletes the documents archived for longer than
// ArchiveRetention and returns the number of deleted documents
func (a *App) PurgeArchived() (int64, error) {
	before := a.Clock.Now().UTC().Add(-ArchiveRetention)

	conn := a.DB.Where("archived = ? AND archived_at < ?", true, before).Delete(&database.Document{})
	if err := conn.Error; err != nil {
		return 0, errors.Wrap(err, "deleting archived documents")
	}

	return conn.RowsAffected, nil
}

// StartPurge schedules PurgeArchived on the given cron spec. onPurge, if not
// nil, is called with the number of purged documents after each run. The
// caller stops the returned cron.
func (a *App) StartPurge(spec string, onPurge func(int64)) (*cron.Cron, error) {
	c := cron.New()

	err := c.AddFunc(spec, func() {
		n, err := a.PurgeArchived()
		if err != nil {
			log.ErrorWrap(err, "purging archived documents")
			return
		}

		log.WithFields(log.Fields{
			"count": n,
		}).Info("Purged archived documents")

		if onPurge != nil {
			onPurge(n)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scheduling the purge with '%s'", spec)
	}

	c.Start()

	return c, nil
}
