package backend

import (
	"context"
	"strings"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type Contact struct {
	*resource
}

func (c *Contact) Send(ctx context.Context, message domain.ContactMessage) error {
	message.Email = strings.TrimSpace(message.Email)
	if err := c.validator.check("message", message); err != nil {
		return err
	}

	_, err := c.send(ctx, post("/contact", message), "Failed to send message")
	return err
}
