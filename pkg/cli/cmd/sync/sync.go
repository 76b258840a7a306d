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

// Package sync implements the sync command
package sync

import (
	"context"
	"sort"

	studyctx "github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/config"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrNotConfigured is an error for syncing without an endpoint and a token
var ErrNotConfigured = errors.New("sync is not configured")

// ErrPartialSync is an error for a sync where some families failed
var ErrPartialSync = errors.New("some families failed to sync")

var example = `
  studylog sync`

var pushSettings bool

// NewCmd returns a new sync command
func NewCmd(ctx studyctx.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync data with the remote",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&pushSettings, "settings", false, "push the local settings before pulling")

	return cmd
}

// Do pushes the entities that were never pushed and pulls every family. It
// returns the errors of the families that failed to pull.
func Do(ctx context.Context, sctx studyctx.StudyCtx, withSettings bool) (map[string]error, error) {
	if !sctx.Remote.Reachable() {
		return nil, errors.Wrapf(ErrNotConfigured, "set apiToken in %s", config.GetPath(sctx))
	}

	if n := sctx.Records.PushPending(ctx); n > 0 {
		log.Infof("pushed %d records\n", n)
	}
	if n := sctx.Notes.PushPending(ctx); n > 0 {
		log.Infof("pushed %d notes\n", n)
	}
	if withSettings {
		if err := sctx.Settings.Push(ctx); err != nil {
			return nil, errors.Wrap(err, "pushing settings")
		}
	}

	return sctx.Scheduler.PullAll(ctx), nil
}

func newRun(ctx studyctx.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		errs, err := Do(cmd.Context(), ctx, pushSettings)
		if err != nil {
			return err
		}

		families := make([]string, 0, len(errs))
		for family := range errs {
			families = append(families, family)
		}
		sort.Strings(families)

		for _, family := range families {
			log.Errorf("%s: %s\n", family, errs[family].Error())
		}
		if len(families) > 0 {
			return ErrPartialSync
		}

		log.Success("synced\n")

		return nil
	}
}
