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

// Package root holds the root command every studylog command is registered on
package root

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var dbPathFlag string
var debugFlag bool

var root = &cobra.Command{
	Use:           "studylog",
	Short:         "Studylog - an offline-first study tracker for the CPA exam",
	SilenceErrors: true,
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugFlag {
			return os.Setenv("STUDYLOG_DEBUG", "1")
		}

		return nil
	},
}

func init() {
	f := root.PersistentFlags()
	f.StringVar(&dbPathFlag, "dbPath", "", "the path to the database file (defaults to standard location)")
	f.BoolVar(&debugFlag, "debug", false, "print debug logs")
}

// GetRoot returns the root command
func GetRoot() *cobra.Command {
	return root
}

// GetDBPathFlag returns the value of the --dbPath flag
func GetDBPathFlag() string {
	return dbPathFlag
}

// Register adds a new command
func Register(cmd *cobra.Command) {
	root.AddCommand(cmd)
}

// Execute runs the main command. The context is passed down to every
// command.
func Execute(ctx context.Context) error {
	return root.ExecuteContext(ctx)
}
