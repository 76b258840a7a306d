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


// Package e2e provides utilities for the end-to-end tests that run studylog
// devices against a studylog server
package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	studyctx "github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/app"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/controllers"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database"
	apitest "github.com/hotsuka/uscpa-learning-sub000/pkg/server/testutils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Databases maps every family to its database on the test server
var Databases = map[string]string{
	consts.FamilyRecords:  "db-records",
	consts.FamilyNotes:    "db-notes",
	consts.FamilySettings: "db-settings",
	consts.FamilySessions: "db-sessions",
}

// TestEnv holds the server shared by the devices of a test
type TestEnv struct {
	Server *httptest.Server
	DB     *gorm.DB
}

// NewTestEnv starts a server backed by an in-memory database
func NewTestEnv(t *testing.T) TestEnv {
	db := apitest.InitMemoryDB(t)

	// pushes run concurrently and a shared-cache memory database locks
	// per connection
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting the sql db"))
	}
	sqlDB.SetMaxOpenConns(1)

	a := app.NewTest()
	a.DB = db

	server := controllers.MustNewServer(t, &a)
	t.Cleanup(server.Close)

	return TestEnv{Server: server, DB: db}
}

// RemoteOptions returns the options of a device connected to the server
func (e TestEnv) RemoteOptions() remote.Options {
	return remote.Options{
		Endpoint:  e.Server.URL + "/api",
		Token:     apitest.TestToken,
		Version:   "test",
		Databases: Databases,
	}
}

// NewDevice returns a device connected to the server. Every device has its
// own database and a mock clock.
func (e TestEnv) NewDevice(t *testing.T) studyctx.StudyCtx {
	ctx := studyctx.InitTestCtxWithRemote(t, e.RemoteOptions(), e.Server.Client())
	t.Cleanup(ctx.Wait)

	return ctx
}

// NewOfflineDevice returns a device without a remote. Reconfigure its
// remote client with RemoteOptions to bring it online.
func (e TestEnv) NewOfflineDevice(t *testing.T) studyctx.StudyCtx {
	ctx := studyctx.InitTestCtxWithRemote(t, remote.Options{}, e.Server.Client())
	t.Cleanup(ctx.Wait)

	return ctx
}

// Documents returns every document of the family on the server, archived
// ones included
func (e TestEnv) Documents(t *testing.T, family string) []database.Document {
	var docs []database.Document
	if err := e.DB.Where("database_id = ?", Databases[family]).Order("id ASC").Find(&docs).Error; err != nil {
		t.Fatal(errors.Wrap(err, "finding documents"))
	}

	return docs
}
