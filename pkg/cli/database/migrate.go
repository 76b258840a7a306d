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

package database

import (
	"embed"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationTableName is the name of the table that keeps track of migrations
var MigrationTableName = "migrations"

func migrationSource() migrate.MigrationSource {
	return migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// Migrate brings the schema up to date by applying the pending migrations
func Migrate(db *DB) error {
	migrate.SetTable(MigrationTableName)

	n, err := migrate.Exec(db.Conn, "sqlite3", migrationSource(), migrate.Up)
	if err != nil {
		return errors.Wrap(err, "running migrations")
	}

	if n > 0 {
		log.Debug("applied %d migrations\n", n)
	}

	return nil
}
