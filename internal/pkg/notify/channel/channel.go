package channel

import (
	"context"
	"errors"
)

var ErrNoRecipient = errors.New("message has no recipient")

// Message is a rendered plain text email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

func (m Message) Validate() error {
	if m.To == "" {
		return ErrNoRecipient
	}
	return nil
}

// Mailer defines the interface for email delivery channels
type Mailer interface {
	// Name returns the channel name used in logs and metrics
	Name() string
	// Send delivers one message
	Send(ctx context.Context, msg Message) error
	// Validate validates the channel configuration
	Validate() error
}

// Sender identifies the From address.
type Sender struct {
	Email string
	Name  string
}
