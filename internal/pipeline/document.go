package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/firestore/apiv1/firestorepb"

	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

const (
	PhotosCollection = "photos"

	sharedWithField = "sharedWith"
	urlField        = "url"
)

// projects/{PROJECT_ID}/databases/{DATABASE_ID}/documents/{DOCUMENT_PATH}
var documentNameRegex = regexp.MustCompile(`^projects/[^/]+/databases/[^/]+/documents/(.+)$`)

// PhotoIDFromDocumentName extracts {photoId} from a full document resource
// name matching photos/{photoId}.
func PhotoIDFromDocumentName(name string) (string, error) {
	matches := documentNameRegex.FindStringSubmatch(strings.Trim(name, "/"))
	if len(matches) != 2 {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	segments := strings.Split(matches[1], "/")
	if len(segments) != 2 || segments[0] != PhotosCollection || segments[1] == "" {
		return "", fmt.Errorf("document %q is not in %s/{photoId}", matches[1], PhotosCollection)
	}
	return segments[1], nil
}

// snapshotFromDocument reads only sharedWith and url; every other field is
// ignored. A sharedWith that is not a map is treated as absent.
func snapshotFromDocument(doc *firestorepb.Document) photoshare.Snapshot {
	var snap photoshare.Snapshot
	fields := doc.GetFields()
	if sw := fields[sharedWithField].GetMapValue(); sw != nil {
		snap.SharedWith = mapFromFields(sw.GetFields())
	}
	if url, ok := fields[urlField].GetValueType().(*firestorepb.Value_StringValue); ok {
		snap.URL = url.StringValue
	}
	return snap
}

func mapFromFields(fields map[string]*firestorepb.Value) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = valueToAny(v)
	}
	return out
}

// valueToAny converts a Firestore value into plain Go values so that
// snapshots can be compared structurally.
func valueToAny(v *firestorepb.Value) any {
	switch t := v.GetValueType().(type) {
	case *firestorepb.Value_BooleanValue:
		return t.BooleanValue
	case *firestorepb.Value_IntegerValue:
		return t.IntegerValue
	case *firestorepb.Value_DoubleValue:
		return t.DoubleValue
	case *firestorepb.Value_TimestampValue:
		return t.TimestampValue.AsTime()
	case *firestorepb.Value_StringValue:
		return t.StringValue
	case *firestorepb.Value_BytesValue:
		return t.BytesValue
	case *firestorepb.Value_ReferenceValue:
		return t.ReferenceValue
	case *firestorepb.Value_GeoPointValue:
		return map[string]any{
			"latitude":  t.GeoPointValue.GetLatitude(),
			"longitude": t.GeoPointValue.GetLongitude(),
		}
	case *firestorepb.Value_ArrayValue:
		values := t.ArrayValue.GetValues()
		out := make([]any, 0, len(values))
		for _, item := range values {
			out = append(out, valueToAny(item))
		}
		return out
	case *firestorepb.Value_MapValue:
		return mapFromFields(t.MapValue.GetFields())
	default:
		return nil
	}
}
