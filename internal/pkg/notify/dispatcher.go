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

package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/pkg/notify/channel"
	"github.com/go-arcade/agileboard/internal/pkg/notify/template"
	"github.com/go-arcade/agileboard/pkg/event"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/go-arcade/agileboard/pkg/retry"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("email rate limit exceeded")

// Directory resolves the email address of a user.
type Directory interface {
	Recipient(ctx context.Context, userId string) (Recipient, error)
}

// Observer records delivery outcomes.
type Observer interface {
	ObserveEmail(channel, result string)
}

// Dispatcher turns committed notifications into emails. Delivery is best
// effort: every failure is logged and dropped.
type Dispatcher struct {
	mailer    channel.Mailer
	engine    *template.TemplateEngine
	directory Directory
	limiter   *rate.Limiter
	observer  Observer
	timeout   time.Duration
	attempts  int
	backoff   retry.Backoff

	queue chan NotificationCreated
	wg    sync.WaitGroup
	once  sync.Once
	stop  chan struct{}
}

func NewDispatcher(conf Conf, mailer channel.Mailer, directory Directory, observer Observer) *Dispatcher {
	conf.SetDefaults()
	return &Dispatcher{
		mailer:    mailer,
		engine:    template.NewTemplateEngine(),
		directory: directory,
		limiter:   rate.NewLimiter(rate.Limit(conf.RateLimit), conf.Burst),
		observer:  observer,
		timeout:   time.Duration(conf.Timeout) * time.Second,
		attempts:  conf.MaxAttempts,
		backoff:   retry.Exponential(time.Duration(conf.RetryBackoff)*time.Millisecond, 10*time.Second),
		queue:     make(chan NotificationCreated, conf.QueueSize),
		stop:      make(chan struct{}),
	}
}

// Subscribe registers the dispatcher for notification events on bus.
func (d *Dispatcher) Subscribe(bus *event.EventBus) {
	bus.Subscribe(consts.EventNotificationCreated, d.enqueue)
}

// Start runs the delivery worker until ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.stop:
				d.drain()
				return
			case n := <-d.queue:
				d.deliverWithTimeout(n)
			}
		}
	}()
}

// Stop delivers what is already queued and waits for the worker.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.stop) })
	d.wg.Wait()
}

func (d *Dispatcher) drain() {
	for {
		select {
		case n := <-d.queue:
			d.deliverWithTimeout(n)
		default:
			return
		}
	}
}

func (d *Dispatcher) enqueue(e event.Event) {
	n, ok := e.(NotificationCreated)
	if !ok {
		log.Warnw("unexpected notification event", "type", fmt.Sprintf("%T", e))
		return
	}
	select {
	case d.queue <- n:
	default:
		d.observe("dropped")
		log.Warnw("notification email queue full, dropping", "notificationId", n.NotificationId, "userId", n.UserId)
	}
}

func (d *Dispatcher) deliverWithTimeout(n NotificationCreated) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.Deliver(ctx, n); err != nil {
		log.Warnw("notification email not sent",
			"notificationId", n.NotificationId,
			"userId", n.UserId,
			"type", n.Type,
			"error", err,
		)
	}
}

// Deliver renders and sends the email for n. The error is informational.
// Recipients who turned emails off are skipped without error.
func (d *Dispatcher) Deliver(ctx context.Context, n NotificationCreated) error {
	rcpt, err := d.directory.Recipient(ctx, n.UserId)
	if err != nil {
		d.observe("no_recipient")
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if rcpt.OptedOut {
		d.observe("opted_out")
		log.Ctx(ctx).Debugw("notification email skipped, recipient opted out", "notificationId", n.NotificationId, "userId", n.UserId)
		return nil
	}

	if !d.limiter.Allow() {
		d.observe("rate_limited")
		return ErrRateLimited
	}

	data := make(map[string]any, len(n.Data)+2)
	for k, v := range n.Data {
		data[k] = v
	}
	data["content"] = n.Content
	data["recipientName"] = rcpt.Name

	subject, body, err := d.engine.Render(n.Type, data)
	if err != nil {
		d.observe("render_failed")
		return fmt.Errorf("render: %w", err)
	}

	msg := channel.Message{To: rcpt.Email, ToName: rcpt.Name, Subject: subject, Body: body}
	err = retry.Do(ctx, func(ctx context.Context) error {
		return d.mailer.Send(ctx, msg)
	},
		retry.WithMaxAttempts(d.attempts),
		retry.WithBackoff(d.backoff),
		retry.WithJitter(retry.FullJitter),
		retry.OnRetry(func(attempt int, err error) {
			d.observe("retried")
			log.Ctx(ctx).Debugw("retrying notification email", "notificationId", n.NotificationId, "attempt", attempt, "error", err)
		}),
	)
	if err != nil {
		d.observe("failed")
		return err
	}
	d.observe("sent")
	log.Ctx(ctx).Debugw("notification email sent", "notificationId", n.NotificationId, "channel", d.mailer.Name())
	return nil
}

func (d *Dispatcher) observe(result string) {
	if d.observer != nil {
		d.observer.ObserveEmail(d.mailer.Name(), result)
	}
}
