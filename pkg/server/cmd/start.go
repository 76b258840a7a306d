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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/buildinfo"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/config"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/controllers"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/metrics"
)

const shutdownTimeout = 10 * time.Second

func startCmd(args []string) {
	fs := setupFlagSet("start", "studylog-server start")

	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	dbDriver := fs.String("dbDriver", "", "Database driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file, or the connection string for postgres (env: DBPath or DATABASE_URL, default: $XDG_DATA_HOME/studylog/server.db)")
	envFile := fs.String("envFile", ".env", "Path to a file of environment variables")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	fs.Parse(args)

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("Error: %s\n\n", err)
		os.Exit(1)
	}

	cfg, err := config.New(config.Params{
		Port:     *port,
		DBDriver: *dbDriver,
		DBPath:   *dbPath,
		LogLevel: *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	a, err := initApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		sqlDB, err := a.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}()

	purge, err := a.StartPurge(cfg.PurgeSchedule, func(n int64) {
		metrics.DocumentsPurged.Add(float64(n))
	})
	if err != nil {
		return err
	}
	defer purge.Stop()

	handler, err := controllers.NewHandler(&a)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithFields(log.Fields{
		"version":  buildinfo.Version,
		"port":     cfg.Port,
		"dbDriver": cfg.DBDriver,
	}).Info("Studylog server starting")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
