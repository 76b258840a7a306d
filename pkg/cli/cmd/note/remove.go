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

package note

import (
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/output"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRemoveCmd(ctx context.StudyCtx) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <id>",
		Short:   "Remove a note",
		Aliases: []string{"rm", "d"},
		Args:    cobra.ExactArgs(1),
		RunE:    newRemoveRun(ctx, &yes),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "remove without confirmation")

	return cmd
}

func newRemoveRun(ctx context.StudyCtx, yes *bool) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		n, err := ctx.Notes.Resolve(args[0])
		if err != nil {
			return err
		}

		if !*yes {
			output.NoteLine(n)

			ok, err := ui.Confirm("remove this note?", false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		if err := ctx.Notes.Delete(n.ID); err != nil {
			return errors.Wrap(err, "removing the note")
		}

		log.Success("removed the note\n")

		return nil
	}
}
