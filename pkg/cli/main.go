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

package main

import (
	"context"
	"os"
	"strings"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	// commands
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/login"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/logout"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/note"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/record"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/root"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/settings"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/sync"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/timer"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/version"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/cmd/watch"
)

// versionTag is populated during link time
var versionTag = "master"

// parseDBPath extracts --dbPath flag value from command line arguments
// regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseDBPath(args []string) string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "--dbPath=") {
			return strings.TrimPrefix(arg, "--dbPath=")
		}
		if arg == "--dbPath" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func run() int {
	// the database is opened before cobra parses the flags
	dbPath := parseDBPath(os.Args[1:])

	ctx, err := infra.Init(versionTag, dbPath)
	if err != nil {
		log.Errorf("%s\n", errors.Wrap(err, "initializing context").Error())
		return 1
	}
	defer ctx.DB.Close()
	// pushes started by the command finish before the database closes
	defer ctx.Wait()

	root.Register(record.NewCmd(*ctx))
	root.Register(note.NewCmd(*ctx))
	root.Register(settings.NewCmd(*ctx))
	root.Register(timer.NewCmd(*ctx))
	root.Register(sync.NewCmd(*ctx))
	root.Register(watch.NewCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(context.Background()); err != nil {
		log.Errorf("%s\n", err.Error())
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
