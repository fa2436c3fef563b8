package channel

import (
	"context"

	"github.com/go-arcade/agileboard/pkg/log"
)

// LogChannel writes messages to the application log instead of sending
// them. Used when no mail relay is configured.
type LogChannel struct{}

func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

func (c *LogChannel) Name() string {
	return "log"
}

func (c *LogChannel) Validate() error {
	return nil
}

func (c *LogChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	log.Ctx(ctx).Infow("email (log channel)", "to", msg.To, "subject", msg.Subject)
	return nil
}
