package model

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/archivelab/coral/internal/logger"
)

// URLScheme prefixes resource URLs that point at internally stored data
// objects rather than external content.
const URLScheme = "coral://"

// compressedMember is the archive member name chunk writers use when a
// chunk is stored compressed. Each compressed chunk is a complete zip
// archive with this single member.
const compressedMember = "data"

// ObjectHeader is the shared descriptor of a data object: everything about
// the blob except the blob itself. The header is written at creation and
// updated last-write-wins; chunk appends do not touch it.
type ObjectHeader struct {
	ID         string            `json:"id"`
	Checksum   string            `json:"checksum"`
	Size       int64             `json:"size"`
	Metadata   map[string]string `json:"metadata"`
	Mimetype   string            `json:"mimetype"`
	AltURL     []string          `json:"alt_url"`
	CreateTS   time.Time         `json:"create_ts"`
	ModifiedTS time.Time         `json:"modified_ts"`
	Type       string            `json:"type"`
	ACL        ACL               `json:"acl"`
	TreePath   string            `json:"treepath"`
}

// URL returns the internal URL addressing this object.
func (h *ObjectHeader) URL() string {
	return URLScheme + h.ID
}

// AccessLists projects the object's ACL onto the coarse four-list view.
func (h *ObjectHeader) AccessLists() AccessLists {
	return h.ACL.AccessLists()
}

// chunk is one stored block of a data object. Blob is the raw or zip-packed
// bytes; Compressed selects the read path.
type chunk struct {
	Blob       []byte `json:"blob"`
	Compressed bool   `json:"compressed"`
}

// ObjectUpdate carries the mutable parts of an object header. Nil fields are
// left unchanged.
type ObjectUpdate struct {
	Checksum *string
	Size     *int64
	Metadata map[string]string
	Mimetype *string
	TreePath *string
}

// CDMIACE is one access-control entry in CDMI string form, as delivered by
// the CDMI API layer.
type CDMIACE struct {
	Identifier string `json:"identifier"`
	ACEType    string `json:"acetype"`
	ACEFlags   string `json:"aceflags"`
	ACEMask    string `json:"acemask"`
}

// CompressChunk packs data into the single-member zip archive layout used
// for compressed chunks.
func CompressChunk(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(compressedMember)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressChunk unpacks the single-member archive of a compressed chunk.
func decompressChunk(blob []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("corrupt compressed chunk: %w", err)
	}
	f, err := zr.Open(compressedMember)
	if err != nil {
		return nil, fmt.Errorf("compressed chunk missing %q member: %w", compressedMember, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// CreateDataObject stores a new data object holding data as its first chunk
// (sequence 0) and returns the header.
func (m *Model) CreateDataObject(ctx context.Context, data []byte, compressed bool) (h *ObjectHeader, err error) {
	start := time.Now()
	defer func() { m.observe("create_data_object", start, err) }()

	now := time.Now().UTC()
	h = &ObjectHeader{
		ID:         NewID(),
		CreateTS:   now,
		ModifiedTS: now,
		Type:       "UNKNOWN",
	}
	if err = m.putJSON(ctx, keyObjectHeader(h.ID), h); err != nil {
		return nil, err
	}
	if err = m.putJSON(ctx, keyObjectChunk(h.ID, 0), chunk{Blob: data, Compressed: compressed}); err != nil {
		return nil, err
	}
	return h, nil
}

// AppendChunk stores one more chunk of an existing data object.
//
// Sequence numbers are caller-assigned and not validated for contiguity;
// readers yield whatever chunks exist in sequence order. Writers that skip
// numbers get exactly the gaps they wrote.
func (m *Model) AppendChunk(ctx context.Context, id string, data []byte, sequence uint64, compressed bool) (err error) {
	start := time.Now()
	defer func() { m.observe("append_chunk", start, err) }()

	return m.putJSON(ctx, keyObjectChunk(id, sequence), chunk{Blob: data, Compressed: compressed})
}

// FindDataObject loads the header of a data object.
func (m *Model) FindDataObject(ctx context.Context, id string) (h *ObjectHeader, err error) {
	start := time.Now()
	defer func() { m.observe("find_data_object", start, err) }()

	var header ObjectHeader
	found, err := m.getJSON(ctx, keyObjectHeader(id), &header)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errNotFound("data object", id)
	}
	return &header, nil
}

// UpdateDataObject applies an update to an object header and refreshes its
// modification timestamp. Header writes are last-write-wins.
func (m *Model) UpdateDataObject(ctx context.Context, id string, update ObjectUpdate) (h *ObjectHeader, err error) {
	start := time.Now()
	defer func() { m.observe("update_data_object", start, err) }()

	h, err = m.FindDataObject(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Checksum != nil {
		h.Checksum = *update.Checksum
	}
	if update.Size != nil {
		h.Size = *update.Size
	}
	if update.Metadata != nil {
		h.Metadata = encodeMetadata(update.Metadata)
	}
	if update.Mimetype != nil {
		h.Mimetype = *update.Mimetype
	}
	if update.TreePath != nil {
		h.TreePath = *update.TreePath
	}
	h.ModifiedTS = time.Now().UTC()

	if err = m.putJSON(ctx, keyObjectHeader(id), h); err != nil {
		return nil, err
	}
	return h, nil
}

// ChunkContent streams the object's content to fn, one decompressed chunk
// at a time, in sequence order. Iteration stops at the first fn error.
//
// Each call opens a fresh scan, so a retried download restarts cleanly from
// the first chunk regardless of how far the previous attempt got.
func (m *Model) ChunkContent(ctx context.Context, id string, fn func(data []byte) error) (err error) {
	start := time.Now()
	defer func() { m.observe("chunk_content", start, err) }()

	return m.store.Scan(ctx, keyObjectChunkPrefix(id), func(key, value []byte) error {
		var c chunk
		if jsonErr := json.Unmarshal(value, &c); jsonErr != nil {
			return fmt.Errorf("failed to decode chunk %q: %w", key, jsonErr)
		}
		data := c.Blob
		if c.Compressed {
			var zErr error
			if data, zErr = decompressChunk(c.Blob); zErr != nil {
				return fmt.Errorf("chunk %q: %w", key, zErr)
			}
		}
		return fn(data)
	})
}

// DeleteDataObject removes the object's header and all of its chunks.
// Deleting an unknown id is a no-op.
func (m *Model) DeleteDataObject(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { m.observe("delete_data_object", start, err) }()

	var chunkKeys [][]byte
	err = m.store.Scan(ctx, keyObjectChunkPrefix(id), func(key, _ []byte) error {
		k := make([]byte, len(key))
		copy(k, key)
		chunkKeys = append(chunkKeys, k)
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range chunkKeys {
		if err = m.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return m.store.Delete(ctx, keyObjectHeader(id))
}

// UpdateACL grants the given group ids read and/or write access to a data
// object, merging ALLOW entries into its ACL.
//
// Group ids are resolved to group names through the group registry; the
// AUTHENTICATED@ token passes through unresolved. An unknown group id is
// logged and skipped, never an error, so one stale id does not block the
// rest of the grant.
func (m *Model) UpdateACL(ctx context.Context, id string, readAccess, writeAccess []string) (err error) {
	start := time.Now()
	defer func() { m.observe("update_acl", start, err) }()

	h, err := m.FindDataObject(ctx, id)
	if err != nil {
		return err
	}
	if h.ACL == nil {
		h.ACL = ACL{}
	}

	access := map[string]string{}
	for _, gid := range readAccess {
		access[gid] = "read"
	}
	for _, gid := range writeAccess {
		if access[gid] == "read" {
			access[gid] = "read/write"
		} else {
			access[gid] = "write"
		}
	}

	for gid, level := range access {
		identifier := gid
		if gid != AuthenticatedToken {
			g, gErr := m.FindGroupByID(ctx, gid)
			if gErr != nil {
				if IsCode(gErr, ErrNotFound) {
					logger.Warn("unknown group %s in acl update for object %s, skipping", gid, id)
					continue
				}
				return gErr
			}
			identifier = g.Name
		}
		h.ACL[identifier] = ACE{
			Identifier: identifier,
			ACEType:    ACETypeAllow,
			ACEFlags:   0,
			ACEMask:    strToACEMask(level),
		}
	}

	h.ModifiedTS = time.Now().UTC()
	return m.putJSON(ctx, keyObjectHeader(id), h)
}

// UpdateCDMIACL replaces a data object's ACL with the given CDMI-form
// entries.
//
// Identifiers resolve through the group registry the same way UpdateACL
// grants do: the AUTHENTICATED@ token passes through unresolved, and an
// unknown group identifier is logged and skipped, like malformed mask or
// flag strings, so one bad entry never blocks the rest of the update.
func (m *Model) UpdateCDMIACL(ctx context.Context, id string, aces []CDMIACE) (err error) {
	start := time.Now()
	defer func() { m.observe("update_cdmi_acl", start, err) }()

	h, err := m.FindDataObject(ctx, id)
	if err != nil {
		return err
	}

	acl := ACL{}
	for _, ace := range aces {
		identifier := ace.Identifier
		if identifier != AuthenticatedToken {
			g, gErr := m.FindGroupByID(ctx, identifier)
			if gErr != nil {
				if IsCode(gErr, ErrNotFound) {
					logger.Warn("unknown group %s in cdmi acl update for object %s, skipping entry", identifier, id)
					continue
				}
				return gErr
			}
			identifier = g.Name
		}
		mask, maskErr := cdmiStrToACEMask(ace.ACEMask)
		if maskErr != nil {
			logger.Warn("invalid acemask %q for object %s, skipping entry: %v", ace.ACEMask, id, maskErr)
			continue
		}
		flags, flagsErr := cdmiStrToACEFlags(ace.ACEFlags)
		if flagsErr != nil {
			logger.Warn("invalid aceflags %q for object %s, skipping entry: %v", ace.ACEFlags, id, flagsErr)
			continue
		}
		acl[identifier] = ACE{
			Identifier: identifier,
			ACEType:    strings.ToUpper(ace.ACEType),
			ACEFlags:   flags,
			ACEMask:    mask,
		}
	}

	h.ACL = acl
	h.ModifiedTS = time.Now().UTC()
	return m.putJSON(ctx, keyObjectHeader(id), h)
}
