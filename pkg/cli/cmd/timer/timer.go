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

// Package timer implements the commands for the study stopwatch
package timer

import (
	"strings"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Start timing a FAR session on leases
 studylog timer start FAR leases

 * Take a break and come back
 studylog timer pause
 studylog timer resume

 * Stop and record the session
 studylog timer stop`

// NewCmd returns a new timer command
func NewCmd(ctx context.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timer",
		Aliases: []string{"t"},
		Short:   "Time a study session",
		Example: example,
		RunE:    newStatusRun(ctx),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start <subject> [subtopic]",
		Short: "Start the timer",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  newStartRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pause",
		Short: "Pause the timer",
		Args:  cobra.NoArgs,
		RunE:  newPauseRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "resume",
		Short: "Resume the paused timer",
		Args:  cobra.NoArgs,
		RunE:  newResumeRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and record the session",
		Args:  cobra.NoArgs,
		RunE:  newStopRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the timer",
		Args:  cobra.NoArgs,
		RunE:  newStatusRun(ctx),
	})

	return cmd
}

func newStartRun(ctx context.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		subject, err := models.ParseSubject(args[0])
		if err != nil {
			return err
		}

		var subtopic string
		if len(args) == 2 {
			subtopic = strings.TrimSpace(args[1])
		}

		s, err := ctx.Timer.Start(subject, subtopic)
		if err != nil {
			return errors.Wrap(err, "starting the timer")
		}

		log.Successf("started the timer for %s\n", s.Subject)

		return nil
	}
}

func newPauseRun(ctx context.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := ctx.Timer.Pause()
		if err != nil {
			return errors.Wrap(err, "pausing the timer")
		}

		output.TimerStatus(s, ctx.Clock.Now())

		return nil
	}
}

func newResumeRun(ctx context.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := ctx.Timer.Resume()
		if err != nil {
			return errors.Wrap(err, "resuming the timer")
		}

		output.TimerStatus(s, ctx.Clock.Now())

		return nil
	}
}

func newStopRun(ctx context.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		session, err := ctx.Timer.Stop()
		if err != nil {
			return errors.Wrap(err, "stopping the timer")
		}
		if session == nil {
			log.Warnf("the session was shorter than a minute and was not recorded\n")
			return nil
		}

		r, err := ctx.Recorder.Record(*session)
		if err != nil {
			return errors.Wrap(err, "recording the session")
		}

		log.Successf("recorded %d minutes of %s\n", r.StudyMinutes, r.Subject)
		output.RecordLine(r)

		return nil
	}
}

func newStatusRun(ctx context.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := ctx.Timer.Status()
		if err != nil {
			return errors.Wrap(err, "reading the timer")
		}
		if s == nil {
			log.Info("no timer is running\n")
			return nil
		}

		output.TimerStatus(*s, ctx.Clock.Now())

		return nil
	}
}
