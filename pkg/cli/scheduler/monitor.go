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

package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/remote"
	"github.com/pkg/errors"
)

// Pinger checks that the remote is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor probes the remote and feeds connectivity changes into a
// Scheduler. While offline it probes with exponential backoff.
type Monitor struct {
	pinger    Pinger
	scheduler *Scheduler
	interval  time.Duration

	// InitialBackoff and MaxBackoff bound the probe interval while offline
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// NewMonitor returns a monitor probing every interval while online
func NewMonitor(p Pinger, s *Scheduler, interval time.Duration) *Monitor {
	return &Monitor{
		pinger:         p,
		scheduler:      s,
		interval:       interval,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Minute,
	}
}

func (m *Monitor) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.InitialBackoff
	b.MaxInterval = m.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	return b
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Run probes until the context is done
func (m *Monitor) Run(ctx context.Context) error {
	for {
		err := m.pinger.Ping(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch {
		case errors.Is(err, remote.ErrNotConfigured):
			log.Debug("remote is not configured, not probing\n")
		case err != nil:
			log.Debug("remote unreachable: %s\n", err.Error())
			m.scheduler.SetOnline(ctx, false)

			if !m.waitOnline(ctx) {
				return ctx.Err()
			}
			m.scheduler.SetOnline(ctx, true)
		}

		if !sleep(ctx, m.interval) {
			return ctx.Err()
		}
	}
}

// waitOnline probes with backoff until the remote answers. It returns false
// if the context is done first.
func (m *Monitor) waitOnline(ctx context.Context) bool {
	b := m.newBackOff()

	for {
		if !sleep(ctx, b.NextBackOff()) {
			return false
		}

		err := m.pinger.Ping(ctx)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if errors.Is(err, remote.ErrNotConfigured) {
			// reconfigured away while offline
			return true
		}

		log.Debug("remote still unreachable: %s\n", err.Error())
	}
}
