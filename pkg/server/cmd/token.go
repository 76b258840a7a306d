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

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/app"
	"golang.org/x/crypto/bcrypt"
)

func tokenCmd(args []string) {
	fs := setupFlagSet("token", "studylog-server token")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost of the hash")
	fs.Parse(args)

	if err := writeToken(os.Stdout, *cost); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}

// writeToken generates an API token and writes it with its hash
func writeToken(w io.Writer, cost int) error {
	token, hash, err := app.GenerateToken(cost)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "token: %s\n", token)
	fmt.Fprintf(w, "STUDYLOG_TOKEN_HASH=%s\n", hash)
	fmt.Fprintln(w, "\nGive the token to the client with 'studylog login' and the hash to the server.")

	return nil
}
