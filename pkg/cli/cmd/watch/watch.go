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

// Package watch implements the sync daemon
package watch

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/config"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/consts"
	studyctx "github.com/hotsuka/uscpa-learning-sub000/pkg/cli/context"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/infra"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/scheduler"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/syncer"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var example = `
 * Keep the local data in sync until interrupted
 studylog watch

 * Log to a file and expose sync metrics
 studylog watch --log-file --metrics-addr 127.0.0.1:9464`

// Options configure the daemon
type Options struct {
	// Interval is the time between connectivity probes while online
	Interval time.Duration
	// ConfigInterval is the polling interval of the config file
	ConfigInterval time.Duration
	// MetricsAddr, if set, is the address serving /metrics
	MetricsAddr string
	// LogFile redirects the log output to the state directory
	LogFile bool
}

var opts = Options{ConfigInterval: time.Second}

// NewCmd returns a new watch command
func NewCmd(ctx studyctx.StudyCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Run in the background and keep data in sync",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.DurationVar(&opts.Interval, "interval", 30*time.Second, "the interval between connectivity checks")
	f.StringVar(&opts.MetricsAddr, "metrics-addr", "", "the address to serve sync metrics on (disabled if empty)")
	f.BoolVar(&opts.LogFile, "log-file", false, "write the log to the state directory instead of the terminal")

	return cmd
}

func newRun(ctx studyctx.StudyCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return Run(c, ctx, opts)
	}
}

// newMetricsHandler serves the sync metrics
func newMetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(syncer.Registry, promhttp.HandlerOpts{}))

	return mux
}

func serveMetrics(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server: %s\n", err.Error())
		}
	}()

	return srv
}

// Run pulls the stale families, then probes the remote and reloads the
// config until the context is done. It waits for the in-flight syncs before
// returning.
func Run(ctx context.Context, sctx studyctx.StudyCtx, o Options) error {
	if o.LogFile {
		path := filepath.Join(sctx.Paths.State, consts.DirName, consts.LogFilename)
		closeLog := log.SetFileOutput(path)
		defer closeLog()
	}

	defer sctx.Wait()

	if families := sctx.Scheduler.OnStart(ctx); len(families) > 0 {
		log.Infof("pulling %s\n", strings.Join(families, ", "))
	}

	stopWatching, err := config.Watch(config.GetPath(sctx), o.ConfigInterval, func(cf config.Config) {
		sctx.Remote.Reconfigure(cf.RemoteOptions(sctx.Version))
		log.Info("config reloaded\n")

		for family, err := range sctx.Scheduler.PullAll(ctx) {
			log.Warnf("failed to pull %s: %s\n", family, err.Error())
		}
	})
	if err != nil {
		return errors.Wrap(err, "watching the config")
	}
	defer stopWatching()

	if o.MetricsAddr != "" {
		srv := serveMetrics(o.MetricsAddr)
		defer srv.Close()

		log.Infof("serving metrics on %s\n", o.MetricsAddr)
	}

	m := scheduler.NewMonitor(sctx.Remote, sctx.Scheduler, o.Interval)
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "monitoring the remote")
	}

	log.Info("stopped\n")

	return nil
}
