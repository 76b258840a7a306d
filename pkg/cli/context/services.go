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

package context

import (
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/identity"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/scheduler"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/store"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/syncer"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/timer"
	"github.com/pkg/errors"
)

// SetupServices constructs the stores and sync services on top of the
// database, clock and remote client of the context
func SetupServices(ctx StudyCtx) (StudyCtx, error) {
	deviceID, err := identity.DeviceID(ctx.DB)
	if err != nil {
		return ctx, err
	}
	ctx.DeviceID = deviceID

	recordStore, err := store.New[models.Record](ctx.DB, consts.FamilyRecords, ctx.Clock, deviceID)
	if err != nil {
		return ctx, errors.Wrap(err, "initializing records")
	}
	noteStore, err := store.New[models.Note](ctx.DB, consts.FamilyNotes, ctx.Clock, deviceID)
	if err != nil {
		return ctx, errors.Wrap(err, "initializing notes")
	}
	settingsStore, err := store.NewSettingsStore(ctx.DB, ctx.Clock)
	if err != nil {
		return ctx, errors.Wrap(err, "initializing settings")
	}

	ctx.Records = syncer.NewEngine(recordStore,
		remote.NewCollection[models.Record](ctx.Remote, consts.FamilyRecords, remote.RecordCodec{}),
		ctx.Clock,
	)
	ctx.Notes = syncer.NewEngine(noteStore,
		remote.NewCollection[models.Note](ctx.Remote, consts.FamilyNotes, remote.NoteCodec{}),
		ctx.Clock,
		syncer.WithCreateCheck(syncer.UniquePage),
		syncer.WithReplaceHook(syncer.LogNoteReplacement),
	)
	ctx.Settings = syncer.NewSettingsSyncer(settingsStore, remote.NewSettingsRemote(ctx.Remote), ctx.Clock)
	ctx.Recorder = syncer.NewRecorder(ctx.Records, remote.NewSessionRemote(ctx.Remote), deviceID)
	ctx.Scheduler = scheduler.New(ctx.Clock, ctx.Records, ctx.Notes, ctx.Settings)
	ctx.Timer = timer.New(ctx.DB, ctx.Clock)

	return ctx, nil
}
