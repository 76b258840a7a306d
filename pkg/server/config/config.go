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

package config

import (
	"os"
	"path/filepath"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/dirs"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// DriverSQLite is the database driver for a SQLite file
	DriverSQLite = "sqlite"
	// DriverPostgres is the database driver for a PostgreSQL server
	DriverPostgres = "postgres"
	// DefaultDBDir is the default directory name for studylog server data
	DefaultDBDir = "studylog"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultPurgeSchedule runs the purge of archived documents once a day
	DefaultPurgeSchedule = "@daily"
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(dirs.DataHome, DefaultDBDir, DefaultDBFilename)
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrDBDriverInvalid is an error for an unknown database driver
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrTokenHashMissing is an error for a configuration without the API token hash
	ErrTokenHashMissing = errors.New("API token hash is empty")
)

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// Config is an application configuration
type Config struct {
	Port          string
	DBDriver      string
	DBPath        string
	TokenHash     string
	LogLevel      string
	PurgeSchedule string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	Port      string
	DBDriver  string
	DBPath    string
	TokenHash string
	LogLevel  string
}

// LoadEnvFile loads the environment variables defined in the file at the
// given path. A missing file is not an error. Variables that are already set
// take precedence.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
// For the postgres driver, DBPath is the connection string.
func New(p Params) (Config, error) {
	c := Config{
		Port:          getOrEnv(p.Port, "PORT", "3001"),
		DBDriver:      getOrEnv(p.DBDriver, "DB_DRIVER", DriverSQLite),
		TokenHash:     getOrEnv(p.TokenHash, "STUDYLOG_TOKEN_HASH", ""),
		LogLevel:      getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
		PurgeSchedule: getOrEnv("", "PURGE_SCHEDULE", DefaultPurgeSchedule),
	}

	if c.DBDriver == DriverPostgres {
		c.DBPath = getOrEnv(p.DBPath, "DATABASE_URL", "")
	} else {
		c.DBPath = getOrEnv(p.DBPath, "DBPath", DefaultDBPath)
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

func validate(c Config) error {
	if c.Port == "" {
		return ErrPortInvalid
	}
	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
	}
	if c.DBPath == "" {
		return ErrDBMissingPath
	}
	if c.TokenHash == "" {
		return ErrTokenHashMissing
	}

	return nil
}
