package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroups(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		g, err := m.CreateGroup(ctx, "staff")
		require.NoError(t, err)
		assert.Len(t, g.ID, 32)

		byID, err := m.FindGroupByID(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "staff", byID.Name)

		byName, err := m.FindGroupByName(ctx, "staff")
		require.NoError(t, err)
		assert.Equal(t, g.ID, byName.ID)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := m.CreateGroup(ctx, "staff")
		assert.True(t, IsCode(err, ErrUniqueViolation))
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := m.CreateGroup(ctx, "")
		assert.True(t, IsCode(err, ErrInvalidArgument))
	})

	t.Run("delete", func(t *testing.T) {
		g, err := m.CreateGroup(ctx, "shortlived")
		require.NoError(t, err)
		require.NoError(t, m.DeleteGroup(ctx, g.ID))

		_, err = m.FindGroupByID(ctx, g.ID)
		assert.True(t, IsCode(err, ErrNotFound))
		assert.True(t, IsCode(m.DeleteGroup(ctx, g.ID), ErrNotFound))
	})
}
