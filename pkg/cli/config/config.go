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

// Package config reads and writes the studylog configuration file
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"gopkg.in/yaml.v2"
)

// Config holds studylog configuration. A family whose database id is empty
// is not synced.
type Config struct {
	Editor      string            `yaml:"editor"`
	APIEndpoint string            `yaml:"apiEndpoint"`
	APIToken    string            `yaml:"apiToken"`
	Databases   map[string]string `yaml:"databases"`
}

// RemoteOptions returns the remote client options described by the config
func (c Config) RemoteOptions(version string) remote.Options {
	dbs := map[string]string{}
	for k, v := range c.Databases {
		dbs[k] = v
	}

	return remote.Options{
		Endpoint:  c.APIEndpoint,
		Token:     c.APIToken,
		Version:   version,
		Databases: dbs,
	}
}

// GetPath returns the path to the studylog config file
func GetPath(ctx context.StudyCtx) string {
	return filepath.Join(ctx.Paths.Config, consts.DirName, consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.StudyCtx) (Config, error) {
	return readFile(GetPath(ctx))
}

func readFile(path string) (Config, error) {
	var ret Config

	b, err := os.ReadFile(path)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.StudyCtx, cf Config) error {
	path := GetPath(ctx)

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	err = os.WriteFile(path, b, 0600)
	if err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}

// Watch polls the config file at the given interval and calls onChange with
// the new config whenever it is written. A config that fails to parse is
// logged and skipped. The returned function stops watching.
func Watch(path string, interval time.Duration, onChange func(Config)) (func(), error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)

	if err := w.Add(path); err != nil {
		return nil, errors.Wrapf(err, "watching %s", path)
	}

	go func() {
		for {
			select {
			case <-w.Event:
				cf, err := readFile(path)
				if err != nil {
					log.Warnf("ignoring config change: %s\n", err.Error())
					continue
				}

				log.Debug("config reloaded\n")
				onChange(cf)
			case err := <-w.Error:
				log.Debug("config watcher: %s\n", err.Error())
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		if err := w.Start(interval); err != nil {
			log.Errorf("config watcher stopped: %s\n", err.Error())
		}
	}()
	w.Wait()

	return w.Close, nil
}
