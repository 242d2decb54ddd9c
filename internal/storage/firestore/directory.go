package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

const (
	DefaultUsersCollection = "users"

	fcmTokensField = "fcmTokens"
)

// FirestoreDirectory implements photoshare.ViewerDirectory on top of the
// users collection: users/{viewerID} with an fcmTokens array.
type FirestoreDirectory struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreDirectory(client *firestore.Client, collection string) *FirestoreDirectory {
	if collection == "" {
		collection = DefaultUsersCollection
	}
	return &FirestoreDirectory{client: client, collection: collection}
}

// GetViewer is a single point read. A missing document is not an error.
func (d *FirestoreDirectory) GetViewer(ctx context.Context, viewerID string) (*photoshare.Viewer, error) {
	doc, err := d.userRef(viewerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore read of %s/%s failed: %w", d.collection, viewerID, err)
	}
	if !doc.Exists() {
		return nil, nil
	}

	return &photoshare.Viewer{
		ID:        viewerID,
		FCMTokens: tokensFrom(doc.Data()),
	}, nil
}

// RegisterToken appends a token to the viewer's fcmTokens, creating the
// document if needed.
func (d *FirestoreDirectory) RegisterToken(ctx context.Context, viewerID, token string) error {
	_, err := d.userRef(viewerID).Set(ctx, map[string]any{
		fcmTokensField: firestore.ArrayUnion(token),
	}, firestore.MergeAll)
	return err
}

func (d *FirestoreDirectory) UnregisterToken(ctx context.Context, viewerID, token string) error {
	_, err := d.userRef(viewerID).Update(ctx, []firestore.Update{
		{Path: fcmTokensField, Value: firestore.ArrayRemove(token)},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

func (d *FirestoreDirectory) userRef(viewerID string) *firestore.DocumentRef {
	return d.client.Collection(d.collection).Doc(viewerID)
}

// tokensFrom reads fcmTokens only when it is an array; anything else
// (missing, wrong type) yields no tokens. Non-string entries are dropped.
func tokensFrom(data map[string]any) []string {
	raw, ok := data[fcmTokensField].([]any)
	if !ok {
		return nil
	}
	tokens := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			tokens = append(tokens, s)
		}
	}
	return tokens
}
