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

// Package identity provides the per-installation device id and the
// per-recording session ids stamped on entities for provenance.
package identity

import (
	"github.com/google/uuid"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/pkg/errors"
)

// DeviceID returns the device id of this installation, generating and
// persisting one on first use
func DeviceID(db *database.DB) (string, error) {
	id, ok, err := database.GetSystem(db, consts.SystemDeviceID)
	if err != nil {
		return "", errors.Wrap(err, "reading device id")
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := database.UpdateSystem(db, consts.SystemDeviceID, id); err != nil {
		return "", errors.Wrap(err, "persisting device id")
	}

	log.Debug("generated device id %s\n", id)

	return id, nil
}

// NewSessionID returns a fresh session id
func NewSessionID() string {
	return uuid.NewString()
}
