// Package photoshare contains the public domain models and contracts for the
// photo share notifier.
package photoshare

// Snapshot is one immutable view of a shared photo record.
// A nil SharedWith means the field was absent on the document.
type Snapshot struct {
	SharedWith map[string]any `json:"sharedWith,omitempty" firestore:"sharedWith"`
	URL        string         `json:"url,omitempty" firestore:"url"`
}

// ChangeEvent is a single update of a photo record: the state before and
// after the write, addressed by the photo's document ID.
type ChangeEvent struct {
	PhotoID string   `json:"photoId"`
	Before  Snapshot `json:"before"`
	After   Snapshot `json:"after"`
}

// Viewer is a user directory entry and its registered FCM endpoints.
type Viewer struct {
	ID        string   `json:"id"`
	FCMTokens []string `json:"fcmTokens,omitempty"`
}
