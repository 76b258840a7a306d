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

// Package settings implements the commands for exam dates and study targets
package settings

import (
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var setExample = `
 * Set the exam dates of two subjects
 studylog settings set --exam FAR=2026-05-01 --exam AUD=2026-07-15

 * Remove an exam date
 studylog settings set --exam FAR=

 * Set the target hours and the daily plan
 studylog settings set --target FAR=120 --weekday 2.5 --weekend 6`

// NewCmd returns a new settings command
func NewCmd(ctx context.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change exam dates and study targets",
		RunE:  newShowRun(ctx),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the settings",
		Args:  cobra.NoArgs,
		RunE:  newShowRun(ctx),
	})
	cmd.AddCommand(newSetCmd(ctx))

	return cmd
}

func newShowRun(ctx context.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		output.SettingsInfo(ctx.Settings.Get(), ctx.Clock.Now())
		return nil
	}
}

type setFlags struct {
	exams   map[string]string
	targets map[string]int
	weekday float64
	weekend float64
}

func newSetCmd(ctx context.StudyCtx) *cobra.Command {
	var fl setFlags

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Change the settings",
		Example: setExample,
		Args:    cobra.NoArgs,
		RunE:    newSetRun(ctx, &fl),
	}

	f := cmd.Flags()
	f.StringToStringVar(&fl.exams, "exam", nil, "exam date of a subject as SUBJECT=YYYY-MM-DD; an empty date removes it")
	f.StringToIntVar(&fl.targets, "target", nil, "target study hours of a subject as SUBJECT=HOURS")
	f.Float64Var(&fl.weekday, "weekday", 0, "planned study hours on weekdays")
	f.Float64Var(&fl.weekend, "weekend", 0, "planned study hours on weekends")

	return cmd
}

// toPatch builds a settings patch from the flags that were set
func (fl setFlags) toPatch(changed func(string) bool) (models.SettingsPatch, error) {
	var p models.SettingsPatch

	if len(fl.exams) > 0 {
		p.ExamDates = map[models.Subject]string{}
		for k, v := range fl.exams {
			s, err := models.ParseSubject(k)
			if err != nil {
				return p, err
			}
			p.ExamDates[s] = v
		}
	}
	if len(fl.targets) > 0 {
		p.TargetHours = map[models.Subject]int{}
		for k, v := range fl.targets {
			s, err := models.ParseSubject(k)
			if err != nil {
				return p, err
			}
			p.TargetHours[s] = v
		}
	}
	if changed("weekday") {
		v := fl.weekday
		p.WeekdayHours = &v
	}
	if changed("weekend") {
		v := fl.weekend
		p.WeekendHours = &v
	}

	return p, nil
}

func newSetRun(ctx context.StudyCtx, fl *setFlags) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		patch, err := fl.toPatch(cmd.Flags().Changed)
		if err != nil {
			return err
		}
		if patch.ExamDates == nil && patch.TargetHours == nil && patch.WeekdayHours == nil && patch.WeekendHours == nil {
			return errors.New("nothing to update")
		}

		s, err := ctx.Settings.Update(patch)
		if err != nil {
			return errors.Wrap(err, "updating the settings")
		}

		log.Success("updated the settings\n")
		output.SettingsInfo(s, ctx.Clock.Now())

		return nil
	}
}
