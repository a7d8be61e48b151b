package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/courtsidehq/courtside/internal/store"
)

const sendTimeout = 5 * time.Second

// NotifyClient delivers a message to a client's email asynchronously. Send
// failures are logged and never surfaced to the caller; notification is
// best-effort by design.
func NotifyClient(ctx context.Context, q *store.Queries, sender EmailSender, clientID int64, message Message, logger *zerolog.Logger) {
	if sender == nil || q == nil {
		return
	}
	if message.Subject == "" || message.Body == "" {
		return
	}

	client, err := q.GetClient(ctx, clientID)
	if err != nil {
		if logger != nil {
			logger.Error().Err(err).Int64("client_id", clientID).Msg("Failed to load client for email")
		}
		return
	}
	recipient := strings.TrimSpace(client.Email)
	if recipient == "" {
		return
	}

	go func() {
		sendCtx, cancel := newEmailContext(ctx, sendTimeout)
		defer cancel()
		if sendCtx.Err() != nil {
			return
		}
		if err := sender.Send(sendCtx, recipient, message.Subject, message.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send client email")
		}
	}()
}
