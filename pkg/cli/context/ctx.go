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

// Package context defines the studylog runtime context
package context

import (
	"net/http"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/scheduler"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/syncer"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/timer"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
	State  string
}

// StudyCtx is a context holding the information of the current runtime.
// The services are constructed once at startup and shared by every command.
type StudyCtx struct {
	Paths      Paths
	Version    string
	Editor     string
	DB         *database.DB
	Clock      clock.Clock
	HTTPClient *http.Client
	Remote     *remote.Client
	DeviceID   string

	Records   *syncer.Engine[models.Record]
	Notes     *syncer.Engine[models.Note]
	Settings  *syncer.SettingsSyncer
	Recorder  *syncer.Recorder
	Scheduler *scheduler.Scheduler
	Timer     *timer.Timer
}

// Wait blocks until every background pull and push has finished
func (ctx StudyCtx) Wait() {
	if ctx.Scheduler != nil {
		ctx.Scheduler.Wait()
	}
	if ctx.Recorder != nil {
		ctx.Recorder.Wait()
	}
	if ctx.Records != nil {
		ctx.Records.Wait()
	}
	if ctx.Notes != nil {
		ctx.Notes.Wait()
	}
	if ctx.Settings != nil {
		ctx.Settings.Wait()
	}
}
