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

// Package logout implements the logout command
package logout

import (
	studyctx "github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/config"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is an error for logging out when not logged in
var ErrNotLoggedIn = errors.New("not logged in")

var example = `
  studylog logout`

// NewCmd returns a new logout command
func NewCmd(ctx studyctx.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Remove the API token and stop syncing",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	return cmd
}

// Do removes the token from the config. Local data is kept.
func Do(ctx studyctx.StudyCtx) error {
	cf, err := config.Read(ctx)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	if cf.APIToken == "" {
		return ErrNotLoggedIn
	}

	cf.APIToken = ""
	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	ctx.Remote.Reconfigure(cf.RemoteOptions(ctx.Version))

	return nil
}

func newRun(ctx studyctx.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		err := Do(ctx)
		if err == ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
