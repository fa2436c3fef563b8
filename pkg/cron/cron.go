// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/google/uuid"
	robfig "github.com/robfig/cron/v3"
)

var (
	ErrDuplicateName = errors.New("cron job name already registered")
	ErrNotFound      = errors.New("cron job not found")
)

// specParser accepts five field specs, an optional leading seconds field
// and descriptors such as @every 1h.
var specParser = robfig.NewParser(
	robfig.SecondOptional | robfig.Minute | robfig.Hour | robfig.Dom | robfig.Month | robfig.Dow | robfig.Descriptor,
)

type options struct {
	location    *time.Location
	skipRunning bool
}

type OpOption func(*options)

// WithLocation schedules in loc instead of the local time zone.
func WithLocation(loc *time.Location) OpOption {
	return func(o *options) { o.location = loc }
}

// WithSkipIfRunning skips a tick while the previous run of the same job
// is still going.
func WithSkipIfRunning() OpOption {
	return func(o *options) { o.skipRunning = true }
}

type Job = robfig.Job

// Entry is a snapshot of a scheduled job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

// Cron is a robfig scheduler whose jobs are addressed by name.
type Cron struct {
	mu      sync.Mutex
	c       *robfig.Cron
	entries map[string]namedEntry
	running bool
}

type namedEntry struct {
	id   robfig.EntryID
	spec string
}

func New(opts ...OpOption) *Cron {
	o := &options{location: time.Local}
	for _, opt := range opts {
		opt(o)
	}

	logger := zapLogger{}
	wrappers := []robfig.JobWrapper{robfig.Recover(logger)}
	if o.skipRunning {
		wrappers = append(wrappers, robfig.SkipIfStillRunning(logger))
	}
	return &Cron{
		c: robfig.New(
			robfig.WithParser(specParser),
			robfig.WithLocation(o.location),
			robfig.WithLogger(logger),
			robfig.WithChain(wrappers...),
		),
		entries: map[string]namedEntry{},
	}
}

// ParseSpec validates spec without scheduling anything.
func ParseSpec(spec string) error {
	_, err := specParser.Parse(spec)
	return err
}

// AddFunc schedules cmd. Without a name a random one is used.
func (c *Cron) AddFunc(spec string, cmd func(), names ...string) error {
	return c.AddJob(spec, robfig.FuncJob(cmd), names...)
}

func (c *Cron) AddJob(spec string, job Job, names ...string) error {
	name := uuid.NewString()
	if len(names) > 0 && names[0] != "" {
		name = names[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	id, err := c.c.AddJob(spec, job)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	c.entries[name] = namedEntry{id: id, spec: spec}
	return nil
}

func (c *Cron) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	c.c.Remove(e.id)
	delete(c.entries, name)
	return nil
}

// Entries returns the jobs ordered by their next run.
func (c *Cron) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entry, 0, len(c.entries))
	for name, e := range c.entries {
		re := c.c.Entry(e.id)
		out = append(out, &Entry{Name: name, Spec: e.spec, Next: re.Next, Prev: re.Prev})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Next.Equal(out[j].Next) {
			return out[i].Name < out[j].Name
		}
		return out[i].Next.Before(out[j].Next)
	})
	return out
}

func (c *Cron) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.c.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx ends.
func (c *Cron) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	done := c.c.Stop()
	c.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// zapLogger routes scheduler messages to the global logger.
type zapLogger struct{}

func (zapLogger) Info(msg string, keysAndValues ...any) {
	log.Debugw("cron: "+msg, keysAndValues...)
}

func (zapLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
