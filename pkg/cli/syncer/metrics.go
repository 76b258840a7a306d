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

package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the sync metrics. The watch daemon serves it.
var Registry = prometheus.NewRegistry()

// Metric label values
const (
	opCreate  = "create"
	opUpdate  = "update"
	opArchive = "archive"
	opUpsert  = "upsert"

	resultOK    = "ok"
	resultError = "error"
)

var (
	pushTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studylog_sync_push_total",
		Help: "Number of remote calls made by pushes, by family, operation and result.",
	}, []string{"family", "op", "result"})

	pullTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studylog_sync_pull_total",
		Help: "Number of pulls, by family and result.",
	}, []string{"family", "result"})
)

func init() {
	Registry.MustRegister(pushTotal, pullTotal)
}

func resultLabel(err error) string {
	if err != nil {
		return resultError
	}

	return resultOK
}

func countPush(family, op string, err error) {
	pushTotal.WithLabelValues(family, op, resultLabel(err)).Inc()
}

func countPull(family string, err error) {
	pullTotal.WithLabelValues(family, resultLabel(err)).Inc()
}
