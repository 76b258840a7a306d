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

package context

import (
	"net/http"
	"testing"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
	"github.com/pkg/errors"
)

// getDefaultTestPaths creates default test paths with all paths pointing to a temp directory
func getDefaultTestPaths(t *testing.T) Paths {
	tmpDir := t.TempDir()
	return Paths{
		Home:   tmpDir,
		Cache:  tmpDir,
		Config: tmpDir,
		Data:   tmpDir,
		State:  tmpDir,
	}
}

// InitTestCtx initializes a test context with an in-memory database, a
// temporary directory for all paths and a remote that is not configured
func InitTestCtx(t *testing.T) StudyCtx {
	return InitTestCtxWithRemote(t, remote.Options{}, nil)
}

// InitTestCtxWithRemote initializes a test context whose remote client uses
// the given options and http client
func InitTestCtxWithRemote(t *testing.T, o remote.Options, httpClient *http.Client) StudyCtx {
	paths := getDefaultTestPaths(t)
	db := database.InitTestMemoryDB(t)

	if err := InitDirs(paths); err != nil {
		t.Fatal(errors.Wrap(err, "creating test directories"))
	}

	ctx := StudyCtx{
		DB:         db,
		Paths:      paths,
		Version:    "test",
		Clock:      clock.NewMock(), // Use a mock clock to test times
		HTTPClient: httpClient,
		Remote:     remote.NewClient(o, httpClient),
	}

	ctx, err := SetupServices(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "setting up services"))
	}

	return ctx
}
