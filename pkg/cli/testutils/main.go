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

// Package testutils provides utilities to run the studylog binary in tests
package testutils

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/database"
	"github.com/pkg/errors"
)

// Prompts for user input
const (
	PromptRemoveRecord = "remove this record?"
	PromptRemoveNote   = "remove this note?"
)

// Timeout for waiting for prompts in tests
const promptTimeout = 10 * time.Second

// RunCmdOptions is an option for RunCmd
type RunCmdOptions struct {
	Env []string
}

// NewCmd returns a new studylog command and pointers to its stderr and
// stdout
func NewCmd(opts RunCmdOptions, binaryName string, arg ...string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer, error) {
	var stderr, stdout bytes.Buffer

	binaryPath, err := filepath.Abs(binaryName)
	if err != nil {
		return &exec.Cmd{}, &stderr, &stdout, errors.Wrap(err, "getting the absolute path to the test binary")
	}

	cmd := exec.Command(binaryPath, arg...)
	cmd.Stderr = &stderr
	cmd.Stdout = &stdout
	cmd.Env = opts.Env

	return cmd, &stderr, &stdout, nil
}

// RunCmd runs a studylog command and fails the test if it exits with an
// error. It returns the standard output.
func RunCmd(t *testing.T, opts RunCmdOptions, binaryName string, arg ...string) string {
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	cmd, stderr, stdout, err := NewCmd(opts, binaryName, arg...)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting command").Error())
	}

	cmd.Env = append(cmd.Env, "STUDYLOG_DEBUG=1")

	if err := cmd.Run(); err != nil {
		t.Logf("\n%s", stdout)
		t.Fatal(errors.Wrapf(err, "running command %s", stderr.String()))
	}

	// Print stdout if and only if test fails later
	t.Logf("\n%s", stdout)

	return stdout.String()
}

// RunCmdErr runs a studylog command that is expected to fail and returns
// its standard output
func RunCmdErr(t *testing.T, opts RunCmdOptions, binaryName string, arg ...string) string {
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	cmd, _, stdout, err := NewCmd(opts, binaryName, arg...)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting command").Error())
	}

	if err := cmd.Run(); err == nil {
		t.Logf("\n%s", stdout)
		t.Fatal("expected the command to fail")
	}

	return stdout.String()
}

// WaitCmd runs a studylog command and passes stdout and stdin to the
// callback, which plays the user
func WaitCmd(t *testing.T, opts RunCmdOptions, runFunc func(io.Reader, io.WriteCloser) error, binaryName string, arg ...string) (string, error) {
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	binaryPath, err := filepath.Abs(binaryName)
	if err != nil {
		return "", errors.Wrap(err, "getting absolute path to test binary")
	}

	cmd := exec.Command(binaryPath, arg...)
	cmd.Env = opts.Env

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", errors.Wrap(err, "getting stdout pipe")
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", errors.Wrap(err, "getting stdin")
	}
	defer stdin.Close()

	if err = cmd.Start(); err != nil {
		return "", errors.Wrap(err, "starting command")
	}

	var output bytes.Buffer
	tee := io.TeeReader(stdout, &output)

	if err := runFunc(tee, stdin); err != nil {
		t.Logf("\n%s", output.String())
		return output.String(), errors.Wrap(err, "running callback")
	}

	io.Copy(&output, stdout)

	if err := cmd.Wait(); err != nil {
		t.Logf("\n%s", output.String())
		return output.String(), errors.Wrapf(err, "command failed: %s", stderr.String())
	}

	t.Logf("\n%s", output.String())
	return output.String(), nil
}

// MustWaitCmd runs WaitCmd and fails the test on error
func MustWaitCmd(t *testing.T, opts RunCmdOptions, runFunc func(io.Reader, io.WriteCloser) error, binaryName string, arg ...string) string {
	output, err := WaitCmd(t, opts, runFunc, binaryName, arg...)
	if err != nil {
		t.Fatal(err)
	}

	return output
}

// waitForPrompt waits for an expected prompt to appear in stdout with a
// timeout. Prompts do not end with a newline, so stdout is read byte by
// byte.
func waitForPrompt(stdout io.Reader, expectedPrompt string, timeout time.Duration) error {
	type result struct {
		found bool
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		reader := bufio.NewReader(stdout)
		var buffer strings.Builder

		for {
			b, err := reader.ReadByte()
			if err != nil {
				resultCh <- result{err: err}
				return
			}

			buffer.WriteByte(b)
			if strings.Contains(buffer.String(), expectedPrompt) {
				resultCh <- result{found: true}
				return
			}
		}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil && res.err != io.EOF {
			return errors.Wrap(res.err, "reading stdout")
		}
		if !res.found {
			return errors.Errorf("expected prompt '%s' not found in stdout", expectedPrompt)
		}
		return nil
	case <-time.After(timeout):
		return errors.Errorf("timeout waiting for prompt '%s'", expectedPrompt)
	}
}

func userRespondToPrompt(stdout io.Reader, stdin io.WriteCloser, expectedPrompt, response, action string) error {
	if err := waitForPrompt(stdout, expectedPrompt, promptTimeout); err != nil {
		return err
	}

	if _, err := io.WriteString(stdin, response); err != nil {
		return errors.Wrapf(err, "indicating %s in stdin", action)
	}

	return nil
}

// ConfirmRemoveRecord waits for the prompt for removing a record and confirms
func ConfirmRemoveRecord(stdout io.Reader, stdin io.WriteCloser) error {
	return userRespondToPrompt(stdout, stdin, PromptRemoveRecord, "y\n", "confirmation")
}

// CancelRemoveRecord waits for the prompt for removing a record and cancels
func CancelRemoveRecord(stdout io.Reader, stdin io.WriteCloser) error {
	return userRespondToPrompt(stdout, stdin, PromptRemoveRecord, "n\n", "cancellation")
}

// ConfirmRemoveNote waits for the prompt for removing a note and confirms
func ConfirmRemoveNote(stdout io.Reader, stdin io.WriteCloser) error {
	return userRespondToPrompt(stdout, stdin, PromptRemoveNote, "y\n", "confirmation")
}

// UserContent writes note content to stdin as if it was piped
func UserContent(stdout io.Reader, stdin io.WriteCloser) error {
	text := `Revenue is recognized when control transfers,
	which can be over time or at a point in time.`

	if _, err := io.WriteString(stdin, text); err != nil {
		return errors.Wrap(err, "writing content to stdin")
	}

	// the reader stops at EOF only
	stdin.Close()

	return nil
}

// MustOpenDatabase opens the database at the path or fails the test
func MustOpenDatabase(t *testing.T, dbPath string) *database.DB {
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}

	return db
}

// MustCountEntities returns the number of stored entities of the family
func MustCountEntities(t *testing.T, db *database.DB, family string) int {
	var count int
	database.MustScan(t, "counting "+family, db.QueryRow("SELECT count(*) FROM entities WHERE family = ?", family), &count)

	return count
}
