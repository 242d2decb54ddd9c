package notifier

import (
	"reflect"
	"sort"
)

// SharedWithChanged reports whether the sharing map differs between the two
// snapshots. Comparison is structural, so key order never matters.
// An absent map and an empty map are treated as different values here; the
// recipient diff that follows treats both as empty.
func SharedWithChanged(before, after map[string]any) bool {
	return !reflect.DeepEqual(before, after)
}

// NewRecipients returns the keys present in after but not in before, sorted.
// Values are ignored: only key presence counts.
func NewRecipients(before, after map[string]any) []string {
	var added []string
	for viewerID := range after {
		if _, ok := before[viewerID]; !ok {
			added = append(added, viewerID)
		}
	}
	sort.Strings(added)
	return added
}
