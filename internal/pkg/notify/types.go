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

import "github.com/go-arcade/agileboard/internal/engine/consts"

const (
	ChannelSMTP    = "smtp"
	ChannelMailjet = "mailjet"
	ChannelLog     = "log"
)

// Conf 邮件通知配置
type Conf struct {
	Enabled   bool    `mapstructure:"enabled"`
	Channel   string  `mapstructure:"channel"`
	FromEmail string  `mapstructure:"fromEmail"`
	FromName  string  `mapstructure:"fromName"`
	RateLimit float64 `mapstructure:"rateLimit"` // emails per second
	Burst     int     `mapstructure:"burst"`
	QueueSize int     `mapstructure:"queueSize"`
	Timeout   int     `mapstructure:"timeout"` // seconds per delivery

	// MaxAttempts bounds sends of one email, RetryBackoff is the first
	// wait in milliseconds and doubles after each failure.
	MaxAttempts  int `mapstructure:"maxAttempts"`
	RetryBackoff int `mapstructure:"retryBackoff"`

	SMTP    SMTPConf    `mapstructure:"smtp"`
	Mailjet MailjetConf `mapstructure:"mailjet"`
}

type SMTPConf struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MailjetConf struct {
	BaseURL   string `mapstructure:"baseUrl"`
	APIKey    string `mapstructure:"apiKey"`
	SecretKey string `mapstructure:"secretKey"`
}

func (c *Conf) SetDefaults() {
	if c.Channel == "" {
		c.Channel = ChannelLog
	}
	if c.FromName == "" {
		c.FromName = "Agileboard"
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 10
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
}

// NotificationCreated is published after a notification row commits.
type NotificationCreated struct {
	NotificationId string
	UserId         string
	Type           string
	Content        string
	EntityId       string
	Data           map[string]any
}

func (e NotificationCreated) EventName() string {
	return consts.EventNotificationCreated
}

func (e NotificationCreated) EventType() string {
	return e.Type
}

// Recipient is the addressee resolved for a user id.
type Recipient struct {
	Email    string
	Name     string
	OptedOut bool // the user turned notification emails off
}
