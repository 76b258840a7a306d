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
	"github.com/spf13/cobra"
)

var lsExample = `
 * List every record
 studylog record ls

 * List FAR records since March with totals
 studylog record ls --subject FAR --since 2026-03-01 --summary

 * View one record
 studylog record ls 3f2a9c1e`

type filter struct {
	subject string
	since   string
	until   string
}

// apply returns the records matching the filter, keeping the order
func (f filter) apply(records []models.Record) ([]models.Record, error) {
	var subject models.Subject
	if f.subject != "" {
		s, err := models.ParseSubject(f.subject)
		if err != nil {
			return nil, err
		}
		subject = s
	}
	for _, d := range []string{f.since, f.until} {
		if d == "" {
			continue
		}
		if err := models.ValidateDate(d); err != nil {
			return nil, err
		}
	}

	var ret []models.Record
	for _, r := range records {
		if subject != "" && r.Subject != subject {
			continue
		}
		// calendar dates compare lexically
		if f.since != "" && r.StudiedAt < f.since {
			continue
		}
		if f.until != "" && r.StudiedAt > f.until {
			continue
		}

		ret = append(ret, r)
	}

	return ret, nil
}

func newLsCmd(ctx context.StudyCtx) *cobra.Command {
	var fl filter
	var summary bool

	cmd := &cobra.Command{
		Use:     "ls [id]",
		Short:   "List study records or view one",
		Aliases: []string{"l", "view"},
		Example: lsExample,
		Args:    cobra.MaximumNArgs(1),
		RunE:    newLsRun(ctx, &fl, &summary),
	}

	f := cmd.Flags()
	f.StringVar(&fl.subject, "subject", "", "show records of the subject only")
	f.StringVar(&fl.since, "since", "", "show records studied on or after the date")
	f.StringVar(&fl.until, "until", "", "show records studied on or before the date")
	f.BoolVar(&summary, "summary", false, "print totals by subject")

	return cmd
}

func newLsRun(ctx context.StudyCtx, fl *filter, summary *bool) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			r, err := ctx.Records.Resolve(args[0])
			if err != nil {
				return err
			}

			remoteID, mapped := ctx.Records.Mapping(r.ID)
			output.RecordInfo(r, remoteID, mapped)

			return nil
		}

		records, err := fl.apply(ctx.Records.List())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			log.Info("no records\n")
			return nil
		}

		for _, r := range records {
			output.RecordLine(r)
		}

		if *summary {
			log.Plain("\n")
			output.RecordSummary(records, ctx.Settings.Get())
		}

		return nil
	}
}
