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

package middleware

import (
	"crypto/subtle"
	"net/http"
	"sync"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/app"
)

// TokenAuth authenticates API requests with the bearer token. The last
// verified token is remembered so that bcrypt runs once per token.
type TokenAuth struct {
	app *app.App

	mu       sync.Mutex
	verified string
}

// NewTokenAuth returns a new token authenticator for the app
func NewTokenAuth(a *app.App) *TokenAuth {
	return &TokenAuth{app: a}
}

func (ta *TokenAuth) verify(token string) bool {
	if token == "" {
		return false
	}

	ta.mu.Lock()
	defer ta.mu.Unlock()

	if ta.verified != "" && subtle.ConstantTimeCompare([]byte(ta.verified), []byte(token)) == 1 {
		return true
	}

	if !ta.app.VerifyToken(token) {
		return false
	}

	ta.verified = token
	return true
}

// Auth is an authentication middleware
func (ta *TokenAuth) Auth(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ta.verify(getTokenFromAuth(r)) {
			RespondUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
