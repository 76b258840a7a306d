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

// Package metrics holds the prometheus collectors of the server
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the registry served on /metrics
	Registry = prometheus.NewRegistry()

	// RequestsTotal counts the handled requests by route and status code
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studylog_server_requests_total",
		Help: "Number of handled HTTP requests.",
	}, []string{"method", "route", "code"})

	// RequestDuration observes the handling time of requests by route
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studylog_server_request_duration_seconds",
		Help:    "Time spent handling HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// DocumentsPurged counts the archived documents deleted by the purge job
	DocumentsPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studylog_server_documents_purged_total",
		Help: "Number of archived documents permanently deleted.",
	})
)

func init() {
	Registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		DocumentsPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
