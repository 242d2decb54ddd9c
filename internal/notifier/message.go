package notifier

import (
	"firebase.google.com/go/v4/messaging"

	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

const (
	NotificationTitle = "New photo for you!"
	NotificationBody  = "Someone shared a photo with you."

	// CollapseKey groups pending photo-share notifications on a device.
	CollapseKey = "photo_share"

	// PhotoIDDataKey is the data payload key carrying the record ID.
	PhotoIDDataKey = "photoId"
)

// BuildMessage assembles the multicast message for a share event.
func BuildMessage(photoID string, after photoshare.Snapshot, tokens []string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    NotificationTitle,
			Body:     NotificationBody,
			ImageURL: after.URL,
		},
		Data: map[string]string{
			PhotoIDDataKey: photoID,
		},
		Android: &messaging.AndroidConfig{
			CollapseKey: CollapseKey,
		},
	}
}
