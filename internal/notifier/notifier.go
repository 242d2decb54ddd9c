// Package notifier reacts to photo sharing changes by pushing a notification
// to every newly added viewer.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"golang.org/x/sync/errgroup"

	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

type Notifier struct {
	directory photoshare.ViewerDirectory
	gateway   photoshare.Gateway
	logger    *slog.Logger
}

func New(directory photoshare.ViewerDirectory, gateway photoshare.Gateway, logger *slog.Logger) *Notifier {
	return &Notifier{
		directory: directory,
		gateway:   gateway,
		logger:    logger.With("component", "ShareNotifier"),
	}
}

// Handle processes one update of a photo record.
// A nil response with a nil error means there was nothing to send.
func (n *Notifier) Handle(ctx context.Context, event photoshare.ChangeEvent) (*messaging.BatchResponse, error) {
	log := n.logger.With("photo_id", event.PhotoID)

	// 1. Change detection
	if !SharedWithChanged(event.Before.SharedWith, event.After.SharedWith) {
		log.Debug("sharedWith unchanged; nothing to do")
		return nil, nil
	}

	// 2. Recipient diff
	recipients := NewRecipients(event.Before.SharedWith, event.After.SharedWith)
	if len(recipients) == 0 {
		log.Debug("No new recipients")
		return nil, nil
	}

	// 3. Endpoint resolution
	tokens, err := n.resolveTokens(ctx, recipients)
	if err != nil {
		log.Error("Failed to resolve recipient tokens", "recipients", len(recipients), "err", err)
		return nil, err
	}
	if len(tokens) == 0 {
		log.Info("New recipients have no registered devices", "recipients", len(recipients))
		return nil, nil
	}

	// 4. Dispatch
	msg := BuildMessage(event.PhotoID, event.After, tokens)
	resp, err := n.gateway.Dispatch(ctx, msg)
	if err != nil {
		log.Error("Dispatch failed", "tokens", len(tokens), "err", err)
		return nil, fmt.Errorf("dispatch for photo %s failed: %w", event.PhotoID, err)
	}

	log.Info("Share notification sent",
		"recipients", len(recipients),
		"tokens", len(tokens),
		"success", resp.SuccessCount,
		"failure", resp.FailureCount,
	)
	return resp, nil
}

// resolveTokens looks every recipient up concurrently and flattens their
// tokens in recipient order. Any lookup failure fails the whole batch.
func (n *Notifier) resolveTokens(ctx context.Context, recipients []string) ([]string, error) {
	viewers := make([]*photoshare.Viewer, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	for i, viewerID := range recipients {
		g.Go(func() error {
			v, err := n.directory.GetViewer(gctx, viewerID)
			if err != nil {
				return fmt.Errorf("lookup of viewer %s failed: %w", viewerID, err)
			}
			viewers[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tokens []string
	for _, v := range viewers {
		if v == nil {
			continue
		}
		tokens = append(tokens, v.FCMTokens...)
	}
	return tokens, nil
}
