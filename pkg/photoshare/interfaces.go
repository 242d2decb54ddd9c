package photoshare

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// ViewerDirectory resolves viewers to their push endpoints.
type ViewerDirectory interface {
	// GetViewer returns the viewer, or (nil, nil) if no such viewer exists.
	GetViewer(ctx context.Context, viewerID string) (*Viewer, error)
}

// Gateway sends a single message to many device tokens at once.
type Gateway interface {
	Dispatch(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}
