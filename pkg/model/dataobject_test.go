package model

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllChunks(t *testing.T, m *Model, id string) [][]byte {
	t.Helper()
	var chunks [][]byte
	err := m.ChunkContent(context.Background(), id, func(data []byte) error {
		chunk := make([]byte, len(data))
		copy(chunk, data)
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)
	return chunks
}

func TestDataObjectChunkRoundTrip(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()

	t.Run("plain chunks in sequence order", func(t *testing.T) {
		h, err := m.CreateDataObject(ctx, []byte("first"), false)
		require.NoError(t, err)
		require.NoError(t, m.AppendChunk(ctx, h.ID, []byte("second"), 1, false))
		require.NoError(t, m.AppendChunk(ctx, h.ID, []byte("third"), 2, false))

		chunks := readAllChunks(t, m, h.ID)
		assert.Equal(t, [][]byte{[]byte("first"), []byte("second"), []byte("third")}, chunks)
	})

	t.Run("mixed compressed and plain chunks", func(t *testing.T) {
		packed, err := CompressChunk([]byte("compressed payload"))
		require.NoError(t, err)

		h, err := m.CreateDataObject(ctx, packed, true)
		require.NoError(t, err)
		require.NoError(t, m.AppendChunk(ctx, h.ID, []byte("plain payload"), 1, false))

		chunks := readAllChunks(t, m, h.ID)
		require.Len(t, chunks, 2)
		assert.Equal(t, []byte("compressed payload"), chunks[0])
		assert.Equal(t, []byte("plain payload"), chunks[1])
	})

	t.Run("rereading restarts from the first chunk", func(t *testing.T) {
		h, err := m.CreateDataObject(ctx, []byte("a"), false)
		require.NoError(t, err)
		require.NoError(t, m.AppendChunk(ctx, h.ID, []byte("b"), 1, false))

		first := readAllChunks(t, m, h.ID)
		second := readAllChunks(t, m, h.ID)
		assert.Equal(t, first, second)
	})

	t.Run("many chunks stay in numeric order", func(t *testing.T) {
		h, err := m.CreateDataObject(ctx, []byte{0}, false)
		require.NoError(t, err)
		// Sequence numbers past single digits catch lexicographic-vs-numeric
		// ordering bugs in the key encoding.
		for seq := uint64(1); seq <= 12; seq++ {
			require.NoError(t, m.AppendChunk(ctx, h.ID, []byte{byte(seq)}, seq, false))
		}

		var got []byte
		for _, chunk := range readAllChunks(t, m, h.ID) {
			got = append(got, chunk...)
		}
		assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, got)
	})
}

func TestCompressChunkRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("coral "), 1000)
	packed, err := CompressChunk(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data))

	unpacked, err := decompressChunk(packed)
	require.NoError(t, err)
	assert.Equal(t, data, unpacked)
}

func TestUpdateDataObject(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()

	h, err := m.CreateDataObject(ctx, []byte("data"), false)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", h.Type)
	assert.Equal(t, URLScheme+h.ID, h.URL())

	checksum := "deadbeef"
	size := int64(4)
	updated, err := m.UpdateDataObject(ctx, h.ID, ObjectUpdate{
		Checksum: &checksum,
		Size:     &size,
		Metadata: map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", updated.Checksum)
	assert.Equal(t, int64(4), updated.Size)

	found, err := m.FindDataObject(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", found.Checksum)

	_, err = m.UpdateDataObject(ctx, "unknown", ObjectUpdate{})
	assert.True(t, IsCode(err, ErrNotFound))
}

func TestDeleteDataObject(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()

	h, err := m.CreateDataObject(ctx, []byte("data"), false)
	require.NoError(t, err)
	require.NoError(t, m.AppendChunk(ctx, h.ID, []byte("more"), 1, false))

	require.NoError(t, m.DeleteDataObject(ctx, h.ID))

	_, err = m.FindDataObject(ctx, h.ID)
	assert.True(t, IsCode(err, ErrNotFound))
	assert.Empty(t, readAllChunks(t, m, h.ID))

	// Unknown ids delete cleanly.
	assert.NoError(t, m.DeleteDataObject(ctx, "unknown"))
}

func TestUpdateACL(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()

	staff, err := m.CreateGroup(ctx, "staff")
	require.NoError(t, err)
	admins, err := m.CreateGroup(ctx, "admins")
	require.NoError(t, err)

	h, err := m.CreateDataObject(ctx, []byte("data"), false)
	require.NoError(t, err)

	t.Run("grants resolve group names", func(t *testing.T) {
		err := m.UpdateACL(ctx, h.ID, []string{staff.ID, admins.ID}, []string{admins.ID})
		require.NoError(t, err)

		got, err := m.FindDataObject(ctx, h.ID)
		require.NoError(t, err)

		require.Contains(t, got.ACL, "staff")
		assert.Equal(t, uint32(ACEMaskRead), got.ACL["staff"].ACEMask)
		require.Contains(t, got.ACL, "admins")
		assert.Equal(t, uint32(ACEMaskRead|ACEMaskWrite), got.ACL["admins"].ACEMask)

		lists := got.AccessLists()
		assert.ElementsMatch(t, []string{"staff", "admins"}, lists.ReadAccess)
		assert.ElementsMatch(t, []string{"admins"}, lists.WriteAccess)
	})

	t.Run("authenticated token passes through", func(t *testing.T) {
		err := m.UpdateACL(ctx, h.ID, []string{AuthenticatedToken}, nil)
		require.NoError(t, err)

		got, err := m.FindDataObject(ctx, h.ID)
		require.NoError(t, err)
		require.Contains(t, got.ACL, AuthenticatedToken)
		assert.Equal(t, uint32(ACEMaskRead), got.ACL[AuthenticatedToken].ACEMask)
	})

	t.Run("unknown group is skipped, rest applies", func(t *testing.T) {
		fresh, err := m.CreateDataObject(ctx, []byte("x"), false)
		require.NoError(t, err)

		err = m.UpdateACL(ctx, fresh.ID, []string{"nosuchgroup", staff.ID}, nil)
		require.NoError(t, err)

		got, err := m.FindDataObject(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Contains(t, got.ACL, "staff")
		assert.NotContains(t, got.ACL, "nosuchgroup")
		assert.Len(t, got.ACL, 1)
	})
}

func TestUpdateCDMIACL(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()

	staff, err := m.CreateGroup(ctx, "staff")
	require.NoError(t, err)
	admins, err := m.CreateGroup(ctx, "admins")
	require.NoError(t, err)

	h, err := m.CreateDataObject(ctx, []byte("data"), false)
	require.NoError(t, err)
	require.NoError(t, m.UpdateACL(ctx, h.ID, []string{admins.ID}, nil))

	err = m.UpdateCDMIACL(ctx, h.ID, []CDMIACE{
		{Identifier: staff.ID, ACEType: "allow", ACEFlags: "NO_FLAGS", ACEMask: "READ_OBJECT, READ_METADATA"},
		{Identifier: staff.ID, ACEType: ACETypeAllow, ACEFlags: "NO_FLAGS", ACEMask: "NOT_A_MASK"},
		{Identifier: AuthenticatedToken, ACEType: ACETypeAllow, ACEFlags: "NO_FLAGS", ACEMask: "0x56"},
	})
	require.NoError(t, err)

	got, err := m.FindDataObject(ctx, h.ID)
	require.NoError(t, err)

	// The CDMI update replaces the previous ACL wholesale; group ids resolve
	// to names and the malformed entry is skipped.
	assert.NotContains(t, got.ACL, "admins")
	assert.NotContains(t, got.ACL, staff.ID)
	require.Contains(t, got.ACL, "staff")
	assert.Equal(t, uint32(ACEMaskRead), got.ACL["staff"].ACEMask)
	assert.Equal(t, ACETypeAllow, got.ACL["staff"].ACEType)
	require.Contains(t, got.ACL, AuthenticatedToken)
	assert.Equal(t, uint32(0x56), got.ACL[AuthenticatedToken].ACEMask)

	t.Run("unknown group is skipped, rest applies", func(t *testing.T) {
		fresh, err := m.CreateDataObject(ctx, []byte("x"), false)
		require.NoError(t, err)

		err = m.UpdateCDMIACL(ctx, fresh.ID, []CDMIACE{
			{Identifier: "nosuchgroup", ACEType: ACETypeAllow, ACEFlags: "NO_FLAGS", ACEMask: "READ_OBJECT"},
			{Identifier: staff.ID, ACEType: ACETypeAllow, ACEFlags: "NO_FLAGS", ACEMask: "READ_OBJECT"},
		})
		require.NoError(t, err)

		got, err := m.FindDataObject(ctx, fresh.ID)
		require.NoError(t, err)
		assert.NotContains(t, got.ACL, "nosuchgroup")
		assert.Contains(t, got.ACL, "staff")
		assert.Len(t, got.ACL, 1)
	})
}
