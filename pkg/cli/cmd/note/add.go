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
	"strings"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/models"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var addExample = `
 * Open an editor to write a note
 studylog note add "Lease classification"

 * Annotate a page of a material
 studylog note add --material becker-far --page 112 -c "watch the discount rate"

 * Send stdin content to a note
 echo "deferred tax assets need a valuation allowance" | studylog note add --subject FAR`

type addFlags struct {
	content  string
	subject  string
	material string
	page     int
	tags     string
}

func newAddCmd(ctx context.StudyCtx) *cobra.Command {
	var fl addFlags

	cmd := &cobra.Command{
		Use:     "add [title]",
		Short:   "Add a note",
		Aliases: []string{"a", "new"},
		Example: addExample,
		Args:    cobra.MaximumNArgs(1),
		RunE:    newAddRun(ctx, &fl),
	}

	f := cmd.Flags()
	f.StringVarP(&fl.content, "content", "c", "", "the content of the note")
	f.StringVarP(&fl.subject, "subject", "s", "", "the subject of the note")
	f.StringVar(&fl.material, "material", "", "the material the annotated page belongs to")
	f.IntVarP(&fl.page, "page", "p", 0, "the annotated page number")
	f.StringVar(&fl.tags, "tags", "", "comma separated tags")

	return cmd
}

// toNote builds a note from the flags. A note with a page is a page
// annotation.
func (fl addFlags) toNote(title, content string, hasPage bool) (models.Note, error) {
	n := models.Note{
		Type:       models.NoteTypeStandalone,
		Title:      title,
		Content:    content,
		MaterialID: fl.material,
	}

	if fl.subject != "" {
		s, err := models.ParseSubject(fl.subject)
		if err != nil {
			return n, err
		}
		n.Subject = s
	}
	if fl.tags != "" {
		n.Tags = parseTags(fl.tags)
	}
	if hasPage {
		n.Type = models.NoteTypePage
		n.Page = models.Int(fl.page)
	}

	return n, nil
}

func newAddRun(ctx context.StudyCtx, fl *addFlags) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var title string
		if len(args) == 1 {
			title = args[0]
		}

		content, err := getContent(ctx, fl.content, cmd.Flags().Changed("content"), "")
		if err != nil {
			return errors.Wrap(err, "getting content")
		}
		if strings.TrimSpace(content) == "" {
			return errors.New("empty content")
		}

		input, err := fl.toNote(title, content, cmd.Flags().Changed("page"))
		if err != nil {
			return err
		}

		n, err := ctx.Notes.Create(input)
		if err != nil {
			return errors.Wrap(err, "adding the note")
		}

		log.Success("added the note\n")
		output.NoteInfo(n, "", false)

		return nil
	}
}
