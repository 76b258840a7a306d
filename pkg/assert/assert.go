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

// Package assert provides functions to assert a condition in tests
package assert

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
)

func getMessage(message string, a, b interface{}) string {
	return fmt.Sprintf("%s. Actual: %+v. Expected: %+v.", message, a, b)
}

// Equal errors a test if the actual does not match the expected
func Equal(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if a == b {
		return
	}

	t.Error(getMessage(message, a, b))
}

// NotEqual fails a test if the actual matches the expected
func NotEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if a != b {
		return
	}

	t.Error(getMessage(message, a, b))
}

// DeepEqual fails a test if the actual does not deeply equal the expected.
// Nil and empty slices or maps are considered equal.
func DeepEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	opts := []cmp.Option{cmpopts.EquateEmpty()}
	if diff := cmp.Diff(b, a, opts...); diff != "" {
		t.Errorf("%s (-expected +actual):\n%s", message, diff)
	}
}

// EqualErrors fails a test if the cause of the actual error does not match
// the expected error
func EqualErrors(t *testing.T, a, b error, message string) {
	t.Helper()

	if errors.Is(a, b) || errors.Cause(a) == b {
		return
	}

	t.Error(getMessage(message, a, b))
}

// NoError fails a test immediately if the given error is not nil
func NoError(t *testing.T, err error, message string) {
	t.Helper()

	if err != nil {
		t.Fatal(errors.Wrap(err, message))
	}
}
