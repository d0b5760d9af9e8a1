package model

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateResource(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip with defaults", func(t *testing.T) {
		m, _ := newTestModelWithRoot(t)

		created, err := m.CreateResource(ctx, ResourceCreate{
			Container: "/",
			Name:      "report.pdf",
			Mimetype:  "application/pdf",
			Size:      1024,
			Metadata:  map[string]string{"author": "alice"},
		})
		require.NoError(t, err)
		assert.Equal(t, "/report.pdf", created.Path())
		assert.Equal(t, "report.pdf", created.FileName)
		assert.Equal(t, "UNKNOWN", created.Type)

		byPath, err := m.FindResourceByPath(ctx, "/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byPath.ID)
		assert.Equal(t, map[string]string{"author": "alice"}, byPath.GetMetadata())

		byID, err := m.FindResourceByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "/report.pdf", byID.Path())
	})

	t.Run("missing container", func(t *testing.T) {
		m, _ := newTestModelWithRoot(t)

		_, err := m.CreateResource(ctx, ResourceCreate{Container: "/nowhere", Name: "f"})
		assert.True(t, IsCode(err, ErrNoSuchCollection))
	})

	t.Run("conflicts", func(t *testing.T) {
		m, _ := newTestModelWithRoot(t)

		_, err := m.CreateCollection(ctx, "/", "dir", nil)
		require.NoError(t, err)
		_, err = m.CreateResource(ctx, ResourceCreate{Container: "/", Name: "dir"})
		assert.True(t, IsCode(err, ErrCollectionConflict))

		_, err = m.CreateResource(ctx, ResourceCreate{Container: "/", Name: "f"})
		require.NoError(t, err)
		_, err = m.CreateResource(ctx, ResourceCreate{Container: "/", Name: "f"})
		assert.True(t, IsCode(err, ErrResourceConflict))
	})

	t.Run("create event is a flat single state", func(t *testing.T) {
		m, pub := newTestModelWithRoot(t)

		_, err := m.CreateResource(ctx, ResourceCreate{Container: "/", Name: "f", URL: "coral://abc"})
		require.NoError(t, err)

		event := pub.last()
		assert.Equal(t, "create/resource/f", event.Topic)

		var state map[string]any
		require.NoError(t, json.Unmarshal(event.Payload, &state))
		assert.Equal(t, "f", state["name"])
		assert.Equal(t, "coral://abc", state["url"])
		assert.NotContains(t, state, "pre")
		assert.NotContains(t, state, "post")
	})
}

func TestUpdateResource(t *testing.T) {
	m, pub := newTestModelWithRoot(t)
	ctx := context.Background()

	_, err := m.CreateResource(ctx, ResourceCreate{Container: "/", Name: "f", Size: 1})
	require.NoError(t, err)

	size := int64(2048)
	checksum := "abc123"
	updated, err := m.UpdateResource(ctx, "/f", ResourceUpdate{
		Size:     &size,
		Checksum: &checksum,
		Metadata: map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2048), updated.Size)
	assert.Equal(t, "abc123", updated.Checksum)
	assert.Equal(t, map[string]string{"k": "v"}, updated.GetMetadata())

	assert.Equal(t, "update/resource/f", pub.last().Topic)

	_, err = m.UpdateResource(ctx, "/ghost", ResourceUpdate{})
	assert.True(t, IsCode(err, ErrNotFound))
}

func TestDeleteResource(t *testing.T) {
	m, pub := newTestModelWithRoot(t)
	ctx := context.Background()

	created, err := m.CreateResource(ctx, ResourceCreate{Container: "/", Name: "f"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteResource(ctx, "/f"))
	assert.Equal(t, "delete/resource/f", pub.last().Topic)

	_, err = m.FindResourceByPath(ctx, "/f")
	assert.True(t, IsCode(err, ErrNotFound))
	_, err = m.FindResourceByID(ctx, created.ID)
	assert.True(t, IsCode(err, ErrNotFound))

	assert.True(t, IsCode(m.DeleteResource(ctx, "/f"), ErrNotFound))
}

func TestResourceIDNotConfusedWithCollection(t *testing.T) {
	m, _ := newTestModelWithRoot(t)
	ctx := context.Background()

	c, err := m.CreateCollection(ctx, "/", "dir", nil)
	require.NoError(t, err)

	// A collection id must not resolve as a resource, and vice versa.
	_, err = m.FindResourceByID(ctx, c.ID)
	assert.True(t, IsCode(err, ErrNotFound))

	r, err := m.CreateResource(ctx, ResourceCreate{Container: "/", Name: "f"})
	require.NoError(t, err)
	_, err = m.FindCollectionByID(ctx, r.ID)
	assert.True(t, IsCode(err, ErrNotFound))
}
