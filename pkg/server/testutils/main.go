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

// Package testutils provides utilities used in tests
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/helpers"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestToken is the API token accepted by test servers
const TestToken = "studylog-test-token"

var (
	testTokenHashOnce sync.Once
	testTokenHash     string
)

// TestTokenHash returns the bcrypt hash of TestToken
func TestTokenHash() string {
	testTokenHashOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte(TestToken), bcrypt.MinCost)
		if err != nil {
			panic(errors.Wrap(err, "hashing the test token"))
		}

		testTokenHash = string(b)
	})

	return testTokenHash
}

// InitMemoryDB creates an in-memory SQLite database with the schema initialized
func InitMemoryDB(t *testing.T) *gorm.DB {
	// a unique name per test keeps the databases apart
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatalf("failed to generate UUID for test database: %v", err)
	}
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid)
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	database.InitSchema(db)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate the test database: %v", err)
	}

	return db
}

// MustUUID generates a UUID and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}
	return uuid
}

// SetupDocument saves a document with the given properties
func SetupDocument(t *testing.T, db *gorm.DB, databaseID string, props map[string]interface{}, updatedAt time.Time) database.Document {
	if props == nil {
		props = map[string]interface{}{}
	}

	b, err := json.Marshal(props)
	if err != nil {
		t.Fatal(errors.Wrap(err, "marshalling properties"))
	}

	doc := database.Document{
		UUID:       MustUUID(t),
		DatabaseID: databaseID,
		Properties: string(b),
		CreatedAt:  updatedAt,
		UpdatedAt:  updatedAt,
	}
	MustExec(t, db.Save(&doc), "preparing document")

	return doc
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader sets the authorization header with the given token
func SetReqAuthHeader(req *http.Request, token string) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
}

// HTTPAuthDo makes an HTTP request authorized with TestToken
func HTTPAuthDo(t *testing.T, req *http.Request) *http.Response {
	SetReqAuthHeader(req, TestToken)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))
	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// MustDecodeJSON decodes the body of the response into v
func MustDecodeJSON(t *testing.T, res *http.Response, v interface{}) {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding the response body"))
	}
}

// ToJSON marshals the given payload
func ToJSON(t *testing.T, v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(errors.Wrap(err, "marshalling payload"))
	}

	return string(b)
}
