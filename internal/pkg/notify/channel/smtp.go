package channel

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/go-arcade/agileboard/internal/pkg/notify/auth"
)

// SMTPChannel sends mail through an SMTP relay with PLAIN auth.
type SMTPChannel struct {
	host         string
	port         int
	from         Sender
	authProvider *auth.BasicAuth
	sendMail     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPChannel(host string, port int, from Sender, authProvider *auth.BasicAuth) *SMTPChannel {
	return &SMTPChannel{
		host:         host,
		port:         port,
		from:         from,
		authProvider: authProvider,
		sendMail:     smtp.SendMail,
	}
}

func (c *SMTPChannel) Name() string {
	return "smtp"
}

func (c *SMTPChannel) Validate() error {
	if c.host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.port <= 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.from.Email == "" {
		return fmt.Errorf("from email is required")
	}
	if c.authProvider != nil {
		return c.authProvider.Validate()
	}
	return nil
}

func (c *SMTPChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var smtpAuth smtp.Auth
	if c.authProvider != nil {
		smtpAuth = smtp.PlainAuth("", c.authProvider.Username, c.authProvider.Password, c.host)
	}

	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	if err := c.sendMail(addr, smtpAuth, c.from.Email, []string{msg.To}, c.build(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (c *SMTPChannel) build(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + formatAddress(c.from.Name, c.from.Email) + "\r\n")
	b.WriteString("To: " + formatAddress(msg.ToName, msg.To) + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%q <%s>", name, email)
}
