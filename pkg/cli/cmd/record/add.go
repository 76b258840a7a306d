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

var addExample = `
 * Record 45 minutes of FAR practice questions
 studylog record add FAR -m 45 -q 20 -c 15 -s leases

 * Record a textbook session on a past date
 studylog record add REG -m 60 --chapter 3 --pages 40-58 -d 2026-01-10`

func newAddCmd(ctx context.StudyCtx) *cobra.Command {
	var fl fields

	cmd := &cobra.Command{
		Use:     "add <subject>",
		Short:   "Add a study record",
		Aliases: []string{"a", "new"},
		Example: addExample,
		Args:    cobra.ExactArgs(1),
		RunE:    newAddRun(ctx, &fl),
	}

	fl.register(cmd.Flags())

	return cmd
}

func newAddRun(ctx context.StudyCtx, fl *fields) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		subject, err := models.ParseSubject(args[0])
		if err != nil {
			return err
		}

		today := ctx.Clock.Now().Local().Format(models.DateLayout)
		input, err := fl.toRecord(subject, cmd.Flags().Changed, today)
		if err != nil {
			return err
		}

		r, err := ctx.Records.Create(input)
		if err != nil {
			return errors.Wrap(err, "adding the record")
		}

		log.Successf("added a %s record for %s\n", r.Type, r.Subject)
		output.RecordInfo(r, "", false)

		return nil
	}
}
