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

// Package login implements the login command
package login

import (
	"net/url"

	studyctx "github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/config"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  studylog login

  * Log in to a self-hosted server
  studylog login --apiEndpoint https://studylog.example.com/api`

var apiEndpointFlag string
var tokenFlag string

// NewCmd returns a new login command
func NewCmd(ctx studyctx.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Save the API token of the remote",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")
	f.StringVar(&tokenFlag, "token", "", "the API token (prompted if empty)")

	return cmd
}

// GetServerDisplayURL returns the scheme and host of the API endpoint, or an
// empty string if the endpoint is not a URL
func GetServerDisplayURL(apiEndpoint string) string {
	u, err := url.Parse(apiEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

// Do saves the endpoint and token to the config and applies them to the
// remote client. An empty endpoint keeps the current one.
func Do(ctx studyctx.StudyCtx, apiEndpoint, token string) (config.Config, error) {
	if token == "" {
		return config.Config{}, errors.New("empty token")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return cf, errors.Wrap(err, "reading config")
	}

	if apiEndpoint != "" {
		cf.APIEndpoint = apiEndpoint
	}
	cf.APIToken = token

	if err := config.Write(ctx, cf); err != nil {
		return cf, errors.Wrap(err, "writing config")
	}

	ctx.Remote.Reconfigure(cf.RemoteOptions(ctx.Version))

	return cf, nil
}

func newRun(ctx studyctx.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		token := tokenFlag
		if token == "" {
			if err := ui.PromptSecret("token", &token); err != nil {
				return errors.Wrap(err, "getting token input")
			}
		}

		cf, err := Do(ctx, apiEndpointFlag, token)
		if err != nil {
			return err
		}

		server := GetServerDisplayURL(cf.APIEndpoint)
		if err := ctx.Remote.Ping(cmd.Context()); err != nil {
			log.Warnf("saved the token, but %s is not reachable: %s\n", server, err.Error())
			return nil
		}

		log.Successf("logged in to %s\n", server)

		return nil
	}
}
