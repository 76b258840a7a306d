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

package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/app"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/server/metrics"
	mw "github.com/hotsuka/uscpa-learning-sub000/pkg/server/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	WebRoutes   []Route
	APIRoutes   []Route
}

// NewWebRoutes returns the routes outside of the API
func NewWebRoutes(a *app.App, c *Controllers) []Route {
	metricsHandler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})

	return []Route{
		{"GET", "/health", c.Health.Index, false},
		{"GET", "/metrics", metricsHandler.ServeHTTP, false},
	}
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	auth := mw.NewTokenAuth(a)

	return []Route{
		// v1
		{"GET", "/v1/databases/{databaseID}/documents", auth.Auth(c.Documents.Index), true},
		{"POST", "/v1/databases/{databaseID}/documents", auth.Auth(c.Documents.Create), true},
		{"GET", "/v1/documents/{documentID}", auth.Auth(c.Documents.Show), true},
		{"PATCH", "/v1/documents/{documentID}", auth.Auth(c.Documents.Update), true},
		{"DELETE", "/v1/documents/{documentID}", auth.Auth(c.Documents.Archive), true},
	}
}

func webMw(h http.HandlerFunc, app *app.App, rateLimit bool) http.Handler {
	return mw.ApplyLimit(h, rateLimit)
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(mw.Instrument)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)
	registerRoutes(router, webMw, app, rc.WebRoutes)

	router.PathPrefix("/api/v0").Handler(mw.ApplyLimit(mw.NotSupported, true))
	router.PathPrefix("/api/v2").Handler(mw.ApplyLimit(mw.NotSupported, true))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw.RespondNotFound(w)
	})

	return mw.Global(router), nil
}
