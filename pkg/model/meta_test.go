package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataEncoding(t *testing.T) {
	public := map[string]string{"owner": "alice", "note": "with \"quotes\""}

	stored := encodeMetadata(public)
	assert.Equal(t, `"alice"`, stored["owner"])
	assert.Equal(t, public, decodeMetadata(stored))

	// Values that predate the encoding boundary pass through raw.
	assert.Equal(t, map[string]string{"legacy": "plain"}, decodeMetadata(map[string]string{"legacy": "plain"}))

	assert.Nil(t, encodeMetadata(nil))
}

func TestMetadataToList(t *testing.T) {
	stored := encodeMetadata(map[string]string{"b": "2", "a": "1", "c": "3"})
	assert.Equal(t, []MetadataEntry{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: "c", Value: "3"},
	}, metadataToList(stored))
}

func TestMetadataEqual(t *testing.T) {
	a := encodeMetadata(map[string]string{"k": "v"})
	assert.True(t, metadataEqual(a, encodeMetadata(map[string]string{"k": "v"})))
	assert.False(t, metadataEqual(a, encodeMetadata(map[string]string{"k": "v2"})))
	assert.False(t, metadataEqual(a, nil))
	assert.True(t, metadataEqual(nil, nil))
}
