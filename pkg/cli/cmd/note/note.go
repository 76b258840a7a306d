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

// Package note implements the commands for notes and page annotations
package note

import (
	"strings"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new note command
func NewCmd(ctx context.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"n"},
		Short:   "Manage notes and page annotations",
	}

	cmd.AddCommand(newAddCmd(ctx))
	cmd.AddCommand(newEditCmd(ctx))
	cmd.AddCommand(newRemoveCmd(ctx))
	cmd.AddCommand(newLsCmd(ctx))

	return cmd
}

func parseTags(s string) []string {
	ret := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			ret = append(ret, t)
		}
	}

	return ret
}

// getContent returns the content given by the flag, piped to the standard
// input, or written in the editor, in that order
func getContent(ctx context.StudyCtx, content string, hasFlag bool, initial string) (string, error) {
	if hasFlag {
		return content, nil
	}

	if ui.IsPiped() {
		c, err := ui.ReadStdInput()
		if err != nil {
			return "", errors.Wrap(err, "reading piped input")
		}
		return c, nil
	}

	fpath, err := ui.GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting temporarily content file path")
	}

	c, err := ui.GetEditorInput(ctx, fpath, initial)
	if err != nil {
		return "", errors.Wrap(err, "getting editor input")
	}

	return c, nil
}
