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

// Package consts provides definitions of constants
package consts

var (
	// DirName is the name of the directory containing studylog files
	DirName = "studylog"
	// DBFileName is a filename for the studylog SQLite database
	DBFileName = "studylog.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "studylogrc"
	// TmpContentFileBase is the base for the filename for a temporary content
	TmpContentFileBase = "STUDYLOG_TMPCONTENT"
	// TmpContentFileExt is the extension for the temporary content file
	TmpContentFileExt = "md"
	// LogFilename is the name of the log file written by the watch daemon
	LogFilename = "watch.log"

	// SystemDeviceID is the key for the installation's device id in the system table
	SystemDeviceID = "device_id"
	// SystemLastPulledAt is the key prefix for the timestamp of the last
	// successful pull of an entity family
	SystemLastPulledAt = "last_pulled_at"
	// SystemSettings is the key for the serialized settings singleton
	SystemSettings = "settings"
	// SystemSettingsRemoteID is the key for the remote id of the settings document
	SystemSettingsRemoteID = "settings_remote_id"
	// SystemTimer is the key for the serialized stopwatch state
	SystemTimer = "timer"
)

// Entity family names. They key persisted state and metric labels.
const (
	FamilyRecords  = "records"
	FamilyNotes    = "notes"
	FamilySettings = "settings"
	FamilySessions = "sessions"
)
