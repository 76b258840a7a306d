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

package context

import (
	"path/filepath"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/utils"
	"github.com/pkg/errors"
)

// InitDirs creates the studylog directories if they don't already exist.
func InitDirs(paths Paths) error {
	dirs := []struct {
		base string
		name string
	}{
		{paths.Config, "config"},
		{paths.Data, "data"},
		{paths.Cache, "cache"},
		{paths.State, "state"},
	}

	for _, d := range dirs {
		if d.base == "" {
			continue
		}

		if err := utils.EnsureDir(filepath.Join(d.base, consts.DirName)); err != nil {
			return errors.Wrapf(err, "initializing %s dir", d.name)
		}
	}

	return nil
}
