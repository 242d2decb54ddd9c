// Package pipeline adapts photo change events delivered over Pub/Sub to the
// share notifier.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

// wireEvent accepts both supported payload shapes:
// the plain {photoId, before, after} form and the Firestore document change
// form {oldValue, value}, whose documents are proto3 JSON.
type wireEvent struct {
	PhotoID string               `json:"photoId"`
	Before  *photoshare.Snapshot `json:"before"`
	After   *photoshare.Snapshot `json:"after"`

	OldValue json.RawMessage `json:"oldValue"`
	Value    json.RawMessage `json:"value"`
}

var documentUnmarshaler = protojson.UnmarshalOptions{DiscardUnknown: true}

// ChangeEventTransformer unmarshals a raw message payload into a
// photoshare.ChangeEvent. Malformed payloads return an error without skip so
// the StreamingService Nacks them and the subscription dead-letters them.
func ChangeEventTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*photoshare.ChangeEvent, bool, error) {
	var wire wireEvent
	if err := json.Unmarshal(msg.Payload, &wire); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal change event from message %s: %w", msg.ID, err)
	}

	var (
		event *photoshare.ChangeEvent
		err   error
	)
	if isPresent(wire.Value) {
		event, err = fromDocumentChange(wire.OldValue, wire.Value)
	} else {
		event, err = fromPlain(wire)
	}
	if err != nil {
		return nil, false, fmt.Errorf("invalid change event in message %s: %w", msg.ID, err)
	}
	return event, false, nil
}

func fromPlain(wire wireEvent) (*photoshare.ChangeEvent, error) {
	if wire.PhotoID == "" {
		return nil, fmt.Errorf("missing photoId")
	}
	if wire.After == nil {
		return nil, fmt.Errorf("missing after snapshot")
	}
	event := &photoshare.ChangeEvent{PhotoID: wire.PhotoID, After: *wire.After}
	if wire.Before != nil {
		event.Before = *wire.Before
	}
	return event, nil
}

func fromDocumentChange(oldValue, value json.RawMessage) (*photoshare.ChangeEvent, error) {
	var after firestorepb.Document
	if err := documentUnmarshaler.Unmarshal(value, &after); err != nil {
		return nil, fmt.Errorf("failed to decode value document: %w", err)
	}
	photoID, err := PhotoIDFromDocumentName(after.GetName())
	if err != nil {
		return nil, err
	}

	event := &photoshare.ChangeEvent{
		PhotoID: photoID,
		After:   snapshotFromDocument(&after),
	}

	if isPresent(oldValue) {
		var before firestorepb.Document
		if err := documentUnmarshaler.Unmarshal(oldValue, &before); err != nil {
			return nil, fmt.Errorf("failed to decode oldValue document: %w", err)
		}
		event.Before = snapshotFromDocument(&before)
	}
	return event, nil
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
