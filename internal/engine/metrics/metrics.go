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

package metrics

import (
	pkgmetrics "github.com/go-arcade/agileboard/pkg/metrics"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agileboard"

var ProviderSet = wire.NewSet(ProvideCollectors)

// Collectors are the domain counters. A nil *Collectors is valid and
// records nothing.
type Collectors struct {
	AccessDecisions      *prometheus.CounterVec
	LifecycleTransitions *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
	Emails               *prometheus.CounterVec
}

func NewCollectors() *Collectors {
	return &Collectors{
		AccessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Access guard decisions by capability, result and deny reason.",
		}, []string{"capability", "result", "reason"}),
		LifecycleTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Project lifecycle transition attempts by event and result.",
		}, []string{"event", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Notifications persisted by type.",
		}, []string{"type"}),
		Emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_emails_total",
			Help:      "Notification email deliveries by channel and result.",
		}, []string{"channel", "result"}),
	}
}

func (c *Collectors) all() []prometheus.Collector {
	return []prometheus.Collector{c.AccessDecisions, c.LifecycleTransitions, c.Notifications, c.Emails}
}

// Register adds every collector to reg.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, col := range c.all() {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// ProvideCollectors builds the collectors and exposes them on the metrics
// server.
func ProvideCollectors(server *pkgmetrics.Server) (*Collectors, error) {
	c := NewCollectors()
	for _, col := range c.all() {
		if err := server.RegisterCollector(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collectors) ObserveAccess(capability, result, reason string) {
	if c == nil {
		return
	}
	c.AccessDecisions.WithLabelValues(capability, result, reason).Inc()
}

func (c *Collectors) ObserveTransition(event, result string) {
	if c == nil {
		return
	}
	c.LifecycleTransitions.WithLabelValues(event, result).Inc()
}

func (c *Collectors) ObserveNotification(kind string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.Notifications.WithLabelValues(kind).Add(float64(n))
}

func (c *Collectors) ObserveEmail(channel, result string) {
	if c == nil {
		return
	}
	c.Emails.WithLabelValues(channel, result).Inc()
}
