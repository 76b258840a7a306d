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

// Package infra provides operations and definitions for the
// local infrastructure for studylog
package infra

import (
	"os"
	"path/filepath"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/config"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/utils"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the endpoint written to a new config file
	DefaultAPIEndpoint = "http://localhost:3001/api"
)

// RunEFunc is a function type of studylog commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return filepath.Join(paths.Data, consts.DirName, consts.DBFileName)
}

func newPaths() context.Paths {
	dirs.Reload()

	return context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
		State:  dirs.StateHome,
	}
}

// Init initializes the studylog environment and returns a new context with
// every service constructed. dbPath overrides the default database path.
func Init(versionTag, dbPath string) (*context.StudyCtx, error) {
	ctx := context.StudyCtx{
		Paths:   newPaths(),
		Version: versionTag,
		Clock:   clock.New(),
	}

	if err := initFiles(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing files")
	}

	db, err := database.Open(getDBPath(ctx.Paths, dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to db")
	}
	ctx.DB = db

	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "running migration")
	}

	ctx, err = setupCtx(ctx)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: version=%s device=%s remote=%t\n", ctx.Version, ctx.DeviceID, ctx.Remote.Reachable())

	return &ctx, nil
}

// setupCtx enriches the base context with the remote client described by
// the config file and the services built on top of it
func setupCtx(ctx context.StudyCtx) (context.StudyCtx, error) {
	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	ctx.Editor = cf.Editor
	ctx.HTTPClient = remote.NewRateLimitedHTTPClient()
	ctx.Remote = remote.NewClient(cf.RemoteOptions(ctx.Version), ctx.HTTPClient)

	return context.SetupServices(ctx)
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	switch editor := os.Getenv("EDITOR"); editor {
	case "atom":
		return "atom -w"
	case "subl":
		return "subl -n -w"
	case "code":
		return "code -w"
	case "mate":
		return "mate -w"
	case "vim", "nano", "emacs", "nvim":
		return editor
	default:
		return "vi"
	}
}

// initConfigFile populates a new config file if it does not exist yet. The
// new config has no token, so sync stays off until it is filled in.
func initConfigFile(ctx context.StudyCtx) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	cf := config.Config{
		Editor:      getEditorCommand(),
		APIEndpoint: DefaultAPIEndpoint,
		Databases: map[string]string{
			consts.FamilyRecords:  "",
			consts.FamilyNotes:    "",
			consts.FamilySettings: "",
			consts.FamilySessions: "",
		},
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// initFiles creates, if necessary, the studylog directories and files inside
func initFiles(ctx context.StudyCtx) error {
	if err := context.InitDirs(ctx.Paths); err != nil {
		return errors.Wrap(err, "creating the studylog dirs")
	}
	if err := initConfigFile(ctx); err != nil {
		return errors.Wrap(err, "generating the config file")
	}

	return nil
}
