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
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/database/migrations"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var migrationNameRegex = regexp.MustCompile(`^(\d{3})-(.+)\.sql$`)

// migration is a versioned SQL file
type migration struct {
	name    string
	version int
}

func parseMigrationName(name string) (migration, error) {
	m := migrationNameRegex.FindStringSubmatch(name)
	if m == nil {
		return migration{}, errors.Errorf("invalid migration filename %s: must be NNN-description.sql", name)
	}

	version, err := strconv.Atoi(m[1])
	if err != nil {
		return migration{}, errors.Wrapf(err, "parsing the version of %s", name)
	}

	return migration{name: name, version: version}, nil
}

// loadMigrations returns the migrations in the given filesystem ordered by
// version
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading migration directory")
	}

	var ret []migration
	seen := map[int]string{}
	for _, e := range entries {
		m, err := parseMigrationName(e.Name())
		if err != nil {
			return nil, err
		}

		if existing, ok := seen[m.version]; ok {
			return nil, errors.Errorf("duplicate migration version %d: %s and %s", m.version, existing, m.name)
		}
		seen[m.version] = m.name

		ret = append(ret, m)
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].version < ret[j].version
	})

	return ret, nil
}

// Migrate runs the embedded migrations that have not been applied yet
func Migrate(db *gorm.DB) error {
	return migrate(db, migrations.Files)
}

func migrate(db *gorm.DB, fsys fs.FS) error {
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		return errors.Wrap(err, "initializing migration table")
	}

	var current int
	if err := db.Raw("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current).Error; err != nil {
		return errors.Wrap(err, "reading current version")
	}

	ms, err := loadMigrations(fsys)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"version": current,
	}).Debug("Database schema version.")

	for _, m := range ms {
		if m.version <= current {
			continue
		}

		sql, err := fs.ReadFile(fsys, m.name)
		if err != nil {
			return errors.Wrapf(err, "reading migration file %s", m.name)
		}
		if strings.TrimSpace(string(sql)) == "" {
			return errors.Errorf("migration file %s is empty", m.name)
		}

		if err := db.Exec(string(sql)).Error; err != nil {
			return errors.Wrapf(err, "running migration %s", m.name)
		}
		if err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version).Error; err != nil {
			return errors.Wrapf(err, "recording migration %s", m.name)
		}

		log.WithFields(log.Fields{
			"file": m.name,
		}).Info("Applied migration.")
	}

	return nil
}
