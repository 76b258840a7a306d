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

package record

import (
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var editExample = `
 * Correct the duration of a record
 studylog record edit 3f2a9c1e -m 50

 * Move a record to another subject
 studylog record edit 3f2a9c1e --subject AUD

 * Turn a practice record into a textbook record
 studylog record edit 3f2a9c1e -t textbook --chapter 4`

func newEditCmd(ctx context.StudyCtx) *cobra.Command {
	var fl fields
	var subject string
	var clearRound bool

	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Edit a study record",
		Aliases: []string{"e"},
		Example: editExample,
		Args:    cobra.ExactArgs(1),
		RunE:    newEditRun(ctx, &fl, &subject, &clearRound),
	}

	f := cmd.Flags()
	fl.register(f)
	f.StringVar(&subject, "subject", "", "a new subject for the record")
	f.BoolVar(&clearRound, "clear-round", false, "remove the round of the record")

	return cmd
}

func newEditRun(ctx context.StudyCtx, fl *fields, subject *string, clearRound *bool) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return runEdit(ctx, args[0], *fl, *subject, *clearRound, cmd.Flags().Changed)
	}
}

func runEdit(ctx context.StudyCtx, id string, fl fields, subject string, clearRound bool, changed func(string) bool) error {
	patch, err := fl.toPatch(changed)
	if err != nil {
		return err
	}
	patch.ClearRound = clearRound
	if changed("subject") {
		s, err := models.ParseSubject(subject)
		if err != nil {
			return err
		}
		patch.Subject = &s
	}
	if patch == (models.RecordPatch{}) {
		return errors.New("nothing to update")
	}

	r, err := ctx.Records.Resolve(id)
	if err != nil {
		return err
	}

	r, err = ctx.Records.Update(r.ID, patch)
	if err != nil {
		return errors.Wrap(err, "updating the record")
	}

	remoteID, mapped := ctx.Records.Mapping(r.ID)

	log.Success("edited the record\n")
	output.RecordInfo(r, remoteID, mapped)

	return nil
}
