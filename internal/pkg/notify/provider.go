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
	"fmt"
	"time"

	"github.com/go-arcade/agileboard/internal/pkg/notify/auth"
	"github.com/go-arcade/agileboard/internal/pkg/notify/channel"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideMailer, NewDispatcher)

// ProvideMailer builds the configured channel. Disabled notifications
// fall back to the log channel.
func ProvideMailer(conf Conf) (channel.Mailer, error) {
	conf.SetDefaults()
	from := channel.Sender{Email: conf.FromEmail, Name: conf.FromName}

	var mailer channel.Mailer
	switch {
	case !conf.Enabled || conf.Channel == ChannelLog:
		mailer = channel.NewLogChannel()
	case conf.Channel == ChannelSMTP:
		var creds *auth.BasicAuth
		if conf.SMTP.Username != "" {
			creds = auth.NewBasicAuth(conf.SMTP.Username, conf.SMTP.Password)
		}
		mailer = channel.NewSMTPChannel(conf.SMTP.Host, conf.SMTP.Port, from, creds)
	case conf.Channel == ChannelMailjet:
		creds := auth.NewBasicAuth(conf.Mailjet.APIKey, conf.Mailjet.SecretKey)
		mailer = channel.NewMailjetChannel(conf.Mailjet.BaseURL, from, creds, time.Duration(conf.Timeout)*time.Second)
	default:
		return nil, fmt.Errorf("unknown notify channel: %s", conf.Channel)
	}

	if err := mailer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s channel: %w", mailer.Name(), err)
	}
	return mailer, nil
}
