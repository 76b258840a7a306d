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
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/output"
	"github.com/spf13/cobra"
)

var lsExample = `
 * List every note
 studylog note ls

 * List the annotations of a material
 studylog note ls --material becker-far

 * View a note
 studylog note ls 9b1d04aa`

type filter struct {
	subject  string
	material string
	tag      string
}

func hasTag(n models.Note, tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

// apply returns the notes matching the filter, keeping the order
func (f filter) apply(notes []models.Note) ([]models.Note, error) {
	var subject models.Subject
	if f.subject != "" {
		s, err := models.ParseSubject(f.subject)
		if err != nil {
			return nil, err
		}
		subject = s
	}

	var ret []models.Note
	for _, n := range notes {
		if subject != "" && n.Subject != subject {
			continue
		}
		if f.material != "" && n.MaterialID != f.material {
			continue
		}
		if f.tag != "" && !hasTag(n, f.tag) {
			continue
		}

		ret = append(ret, n)
	}

	return ret, nil
}

func newLsCmd(ctx context.StudyCtx) *cobra.Command {
	var fl filter
	var contentOnly bool

	cmd := &cobra.Command{
		Use:     "ls [id]",
		Short:   "List notes or view one",
		Aliases: []string{"l", "view"},
		Example: lsExample,
		Args:    cobra.MaximumNArgs(1),
		RunE:    newLsRun(ctx, &fl, &contentOnly),
	}

	f := cmd.Flags()
	f.StringVar(&fl.subject, "subject", "", "show notes of the subject only")
	f.StringVar(&fl.material, "material", "", "show annotations of the material only")
	f.StringVar(&fl.tag, "tag", "", "show notes with the tag only")
	f.BoolVar(&contentOnly, "content-only", false, "print the note content only")

	return cmd
}

func newLsRun(ctx context.StudyCtx, fl *filter, contentOnly *bool) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			n, err := ctx.Notes.Resolve(args[0])
			if err != nil {
				return err
			}

			if *contentOnly {
				log.Plainf("%s\n", n.Content)
				return nil
			}

			remoteID, mapped := ctx.Notes.Mapping(n.ID)
			output.NoteInfo(n, remoteID, mapped)

			return nil
		}

		notes, err := fl.apply(ctx.Notes.List())
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			log.Info("no notes\n")
			return nil
		}

		for _, n := range notes {
			output.NoteLine(n)
		}

		return nil
	}
}
