package channel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/agileboard/internal/pkg/notify/auth"
	pkghttp "github.com/go-arcade/agileboard/pkg/http"
	"github.com/go-arcade/agileboard/pkg/retry"
	"github.com/go-resty/resty/v2"
)

const DefaultMailjetURL = "https://api.mailjet.com"

// MailjetChannel sends mail through the Mailjet v3.1 send API.
type MailjetChannel struct {
	client       *resty.Client
	from         Sender
	authProvider *auth.BasicAuth
}

func NewMailjetChannel(baseURL string, from Sender, authProvider *auth.BasicAuth, timeout time.Duration) *MailjetChannel {
	if baseURL == "" {
		baseURL = DefaultMailjetURL
	}
	client := pkghttp.NewClient(baseURL, timeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return &MailjetChannel{client: client, from: from, authProvider: authProvider}
}

func (c *MailjetChannel) Name() string {
	return "mailjet"
}

func (c *MailjetChannel) Validate() error {
	if c.from.Email == "" {
		return fmt.Errorf("from email is required")
	}
	if c.authProvider == nil {
		return fmt.Errorf("mailjet api key and secret are required")
	}
	return c.authProvider.Validate()
}

type mailjetAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	Subject  string           `json:"Subject"`
	TextPart string           `json:"TextPart"`
}

type mailjetRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

func (c *MailjetChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return retry.Permanent(err)
	}
	if err := c.Validate(); err != nil {
		return retry.Permanent(err)
	}

	header, value := c.authProvider.GetAuthHeader()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(header, value).
		SetBody(mailjetRequest{Messages: []mailjetMessage{{
			From:     mailjetAddress{Email: c.from.Email, Name: c.from.Name},
			To:       []mailjetAddress{{Email: msg.To, Name: msg.ToName}},
			Subject:  msg.Subject,
			TextPart: msg.Body,
		}}}).
		Post("/v3.1/send")
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.IsError() {
		err := fmt.Errorf("mailjet returned %d: %s", resp.StatusCode(), resp.String())
		// only throttling and server errors are worth another attempt
		if resp.StatusCode() < 500 && resp.StatusCode() != http.StatusTooManyRequests {
			return retry.Permanent(err)
		}
		return err
	}
	return nil
}
