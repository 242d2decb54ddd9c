package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it; tests substitute a mock.
type MessagingClient interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Dispatcher struct {
	client MessagingClient
	logger *slog.Logger
}

func NewDispatcher(client MessagingClient, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger.With("component", "FCMDispatcher"),
	}
}

// Dispatch sends msg to all of its tokens in one multicast call.
// Per-token failures are only logged; the batch response is returned as-is.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	if len(msg.Tokens) == 0 {
		d.logger.Debug("Skipping multicast with no tokens")
		return &messaging.BatchResponse{}, nil
	}

	br, err := d.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm transport failed: %w", err)
	}

	if br.FailureCount > 0 {
		unregistered, invalid, other := 0, 0, 0
		for idx, resp := range br.Responses {
			if resp.Success {
				continue
			}
			switch {
			case messaging.IsRegistrationTokenNotRegistered(resp.Error):
				unregistered++
			case messaging.IsInvalidArgument(resp.Error):
				invalid++
			default:
				other++
				d.logger.Warn("FCM token delivery failed", "index", idx, "err", resp.Error)
			}
		}
		d.logger.Warn("FCM multicast had failures",
			"failure", br.FailureCount,
			"unregistered", unregistered,
			"invalid", invalid,
			"other", other,
		)
	}

	d.logger.Info("FCM multicast sent", "tokens", len(msg.Tokens), "success", br.SuccessCount)
	return br, nil
}
