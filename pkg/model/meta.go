package model

import (
	"encoding/json"
	"sort"
)

// TimeLayout is the fixed serialization format for timestamps in
// notification payloads and public entry projections.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Metadata crosses two encodings. The public (CDMI) form is a plain
// string→string mapping. The storage form JSON-encodes every value so that
// structured values survive the column store's text columns untouched.
// Re-serialization happens on every read/write boundary.

// encodeMetadata converts public metadata to its storage encoding.
func encodeMetadata(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	encoded := make(map[string]string, len(meta))
	for k, v := range meta {
		raw, err := json.Marshal(v)
		if err != nil {
			// Strings always marshal; kept for safety.
			encoded[k] = v
			continue
		}
		encoded[k] = string(raw)
	}
	return encoded
}

// decodeMetadata converts storage metadata back to its public form.
// Values that are not valid JSON are passed through raw, tolerating rows
// written before the encoding boundary existed.
func decodeMetadata(meta map[string]string) map[string]string {
	decoded := make(map[string]string, len(meta))
	for k, v := range meta {
		decoded[k] = decodeMetaValue(v)
	}
	return decoded
}

func decodeMetaValue(value string) string {
	var out string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return value
	}
	return out
}

// MetadataEntry is one key/value couple of an entry's metadata, used by
// callers that need a stable ordering (web UI tables, payload diffs).
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// metadataToList projects storage metadata onto a key-sorted list of
// decoded entries.
func metadataToList(meta map[string]string) []MetadataEntry {
	entries := make([]MetadataEntry, 0, len(meta))
	for k, v := range meta {
		entries = append(entries, MetadataEntry{Key: k, Value: decodeMetaValue(v)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// metadataEqual compares two storage-encoded metadata maps.
func metadataEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
