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
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/syncer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var editExample = `
 * Edit the content of a note in an editor
 studylog note edit 9b1d04aa

 * Edit without launching an editor
 studylog note edit 9b1d04aa -c "new content"

 * Retitle and retag a note
 studylog note edit 9b1d04aa --title "Leases" --tags far,review`

type editFlags struct {
	content string
	title   string
	subject string
	tags    string
}

func newEditCmd(ctx context.StudyCtx) *cobra.Command {
	var fl editFlags

	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Edit a note",
		Aliases: []string{"e"},
		Example: editExample,
		Args:    cobra.ExactArgs(1),
		RunE:    newEditRun(ctx, &fl),
	}

	f := cmd.Flags()
	f.StringVarP(&fl.content, "content", "c", "", "a new content for the note")
	f.StringVarP(&fl.title, "title", "t", "", "a new title for the note")
	f.StringVarP(&fl.subject, "subject", "s", "", "a new subject for the note")
	f.StringVar(&fl.tags, "tags", "", "comma separated tags replacing the current ones")

	return cmd
}

// toPatch builds a patch from the metadata flags that were set
func (fl editFlags) toPatch(changed func(string) bool) (models.NotePatch, error) {
	var p models.NotePatch

	if changed("title") {
		p.Title = models.String(fl.title)
	}
	if changed("subject") {
		s, err := models.ParseSubject(fl.subject)
		if err != nil {
			return p, err
		}
		p.Subject = &s
	}
	if changed("tags") {
		p.Tags = parseTags(fl.tags)
	}

	return p, nil
}

func newEditRun(ctx context.StudyCtx, fl *editFlags) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		changed := cmd.Flags().Changed

		n, err := ctx.Notes.Resolve(args[0])
		if err != nil {
			return err
		}

		patch, err := fl.toPatch(changed)
		if err != nil {
			return err
		}

		// the editor opens only when no other change is requested
		metaOnly := changed("title") || changed("subject") || changed("tags")
		if changed("content") || !metaOnly {
			content, err := getContent(ctx, fl.content, changed("content"), n.Content)
			if err != nil {
				return errors.Wrap(err, "getting content")
			}
			if content == n.Content && !metaOnly {
				log.Info("nothing changed\n")
				return nil
			}
			patch.Content = models.String(content)
		}

		before := n.Content
		n, err = ctx.Notes.Update(n.ID, patch)
		if err != nil {
			return errors.Wrap(err, "updating the note")
		}

		log.Success("edited the note\n")
		if n.Content != before {
			log.Plain(syncer.ContentDiff(before, n.Content))
		}

		return nil
	}
}
