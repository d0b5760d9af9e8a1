// Package content provides drivers that stream source content in fixed-size
// chunks, for ingestion into stored data objects.
package content

import (
	"context"

	"github.com/archivelab/coral/pkg/model"
)

// ChunkSize is the block size drivers read and ingest in: 1MB.
const ChunkSize = 1024 * 1024

// Driver streams one piece of source content. Implementations call fn once
// per chunk, in order; the chunk slice is only valid for the duration of
// the call.
type Driver interface {
	ChunkContent(ctx context.Context, fn func(chunk []byte) error) error
}

// Ingest stores a driver's content as a new data object and returns its
// header. When compress is set every chunk is zip-packed before storage.
//
// An empty source still produces a data object, with a single empty chunk.
func Ingest(ctx context.Context, m *model.Model, d Driver, compress bool) (*model.ObjectHeader, error) {
	var header *model.ObjectHeader
	var sequence uint64

	store := func(chunk []byte) error {
		blob := chunk
		if compress {
			var err error
			if blob, err = model.CompressChunk(chunk); err != nil {
				return err
			}
		}
		if header == nil {
			var err error
			header, err = m.CreateDataObject(ctx, blob, compress)
			return err
		}
		sequence++
		return m.AppendChunk(ctx, header.ID, blob, sequence, compress)
	}

	if err := d.ChunkContent(ctx, store); err != nil {
		return nil, err
	}
	if header == nil {
		if err := store(nil); err != nil {
			return nil, err
		}
	}
	return header, nil
}
