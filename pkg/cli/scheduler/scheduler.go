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

// Package scheduler decides when entity families are pulled. Pulls are
// event driven: once at startup for stale families, and for every family
// when connectivity comes back.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/hotsuka/uscpa-learning-sub000/pkg/cli/log"
	"github.com/hotsuka/uscpa-learning-sub000/pkg/clock"
)

// QuietInterval is the minimum age of the last pull for a family to be
// pulled at startup
const QuietInterval = 5 * time.Minute

// Puller pulls one entity family
type Puller interface {
	Family() string
	Pull(ctx context.Context) error
	LastPulledAt() (time.Time, bool)
}

// Scheduler triggers pulls. Triggered pulls run concurrently and a failure
// of one family does not affect the others.
type Scheduler struct {
	clock   clock.Clock
	pullers []Puller

	startOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.Mutex
	online bool
}

// New returns a scheduler for the given families. The scheduler starts in
// the online state.
func New(c clock.Clock, pullers ...Puller) *Scheduler {
	return &Scheduler{
		clock:   c,
		pullers: pullers,
		online:  true,
	}
}

// due reports whether the family has never been pulled or was last pulled
// more than QuietInterval ago
func (s *Scheduler) due(p Puller) bool {
	last, ok := p.LastPulledAt()
	if !ok {
		return true
	}

	return s.clock.Now().Sub(last) > QuietInterval
}

// OnStart triggers a pull for every family that is due. It does nothing
// after the first call. It returns the triggered families.
func (s *Scheduler) OnStart(ctx context.Context) []string {
	var triggered []string

	s.startOnce.Do(func() {
		for _, p := range s.pullers {
			if !s.due(p) {
				log.Debug("skipping startup pull of %s\n", p.Family())
				continue
			}

			s.trigger(ctx, p)
			triggered = append(triggered, p.Family())
		}
	})

	return triggered
}

// SetOnline records the connectivity state. A transition from offline to
// online triggers a pull of every family. It returns the triggered families.
func (s *Scheduler) SetOnline(ctx context.Context, online bool) []string {
	s.mu.Lock()
	wasOnline := s.online
	s.online = online
	s.mu.Unlock()

	if wasOnline || !online {
		return nil
	}

	log.Debug("back online, pulling every family\n")

	triggered := make([]string, 0, len(s.pullers))
	for _, p := range s.pullers {
		s.trigger(ctx, p)
		triggered = append(triggered, p.Family())
	}

	return triggered
}

// Online returns the last recorded connectivity state
func (s *Scheduler) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.online
}

func (s *Scheduler) trigger(ctx context.Context, p Puller) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if err := p.Pull(ctx); err != nil {
			log.Warnf("failed to pull %s: %s\n", p.Family(), err.Error())
		}
	}()
}

// PullAll pulls every family concurrently and waits for all of them. It
// returns the errors by family.
func (s *Scheduler) PullAll(ctx context.Context) map[string]error {
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := map[string]error{}

	for _, p := range s.pullers {
		wg.Add(1)

		go func(p Puller) {
			defer wg.Done()

			if err := p.Pull(ctx); err != nil {
				mu.Lock()
				errs[p.Family()] = err
				mu.Unlock()
			}
		}(p)
	}

	wg.Wait()

	return errs
}

// Wait blocks until every triggered pull has finished
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
