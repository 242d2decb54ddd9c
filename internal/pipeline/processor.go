package pipeline

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"

	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

// ChangeHandler is the share notifier as seen by the pipeline.
type ChangeHandler interface {
	Handle(ctx context.Context, event photoshare.ChangeEvent) (*messaging.BatchResponse, error)
}

// NewProcessor invokes the handler once per change event. A returned error
// Nacks the message; redelivery and dead-lettering are left to Pub/Sub.
func NewProcessor(handler ChangeHandler, logger *slog.Logger) messagepipeline.StreamProcessor[photoshare.ChangeEvent] {
	return func(ctx context.Context, original messagepipeline.Message, event *photoshare.ChangeEvent) error {
		procLogger := logger.With(
			"photo_id", event.PhotoID,
			"pubsub_msg_id", original.ID,
		)

		resp, err := handler.Handle(ctx, *event)
		if err != nil {
			procLogger.Error("Share notification failed", "err", err)
			return err
		}

		if resp == nil {
			procLogger.Debug("No notification required")
			return nil
		}
		procLogger.Info("Share notification dispatched",
			"success", resp.SuccessCount,
			"failure", resp.FailureCount,
		)
		return nil
	}
}
