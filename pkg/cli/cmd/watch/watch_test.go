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

package watch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/assert"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/config"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	studyctx "github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
)

func TestMetricsHandler(t *testing.T) {
	srv := httptest.NewServer(newMetricsHandler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	assert.NoError(t, err, "requesting metrics")
	defer res.Body.Close()

	assert.Equal(t, res.StatusCode, http.StatusOK, "status code mismatch")
}

func TestRunStopsOnCancel(t *testing.T) {
	log.SetOutput(io.Discard)
	sctx := studyctx.InitTestCtx(t)
	assert.NoError(t, config.Write(sctx, config.Config{}), "writing config")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, sctx, Options{
			Interval:       10 * time.Millisecond,
			ConfigInterval: 10 * time.Millisecond,
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "running")
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestRunWritesLogFile(t *testing.T) {
	sctx := studyctx.InitTestCtx(t)
	assert.NoError(t, config.Write(sctx, config.Config{}), "writing config")
	defer log.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, sctx, Options{
		Interval:       10 * time.Millisecond,
		ConfigInterval: 10 * time.Millisecond,
		LogFile:        true,
	})
	assert.NoError(t, err, "running")

	b, err := os.ReadFile(filepath.Join(sctx.Paths.State, consts.DirName, consts.LogFilename))
	assert.NoError(t, err, "reading the log file")
	assert.Equal(t, strings.Contains(string(b), "stopped"), true, "log should be written to the file")
}
