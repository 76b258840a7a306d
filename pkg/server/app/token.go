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

package app

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// tokenBytes is the number of random bytes in an API token
const tokenBytes = 32

// GenerateToken returns a new random API token and its bcrypt hash. Only the
// hash is given to the server.
func GenerateToken(cost int) (string, string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", errors.Wrap(err, "reading random bytes")
	}

	token := base64.RawURLEncoding.EncodeToString(b)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", "", errors.Wrap(err, "hashing the token")
	}

	return token, string(hash), nil
}

// VerifyToken reports whether the token matches the configured hash
func (a *App) VerifyToken(token string) bool {
	if token == "" || a.TokenHash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(a.TokenHash), []byte(token)) == nil
}
