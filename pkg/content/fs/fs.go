// Package fs implements a content driver over a local file.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/archivelab/coral/pkg/content"
)

// Driver streams a local file in fixed-size chunks.
type Driver struct {
	path string
}

// New creates a driver for the file at path. The file is opened lazily on
// each ChunkContent call.
func New(path string) *Driver {
	return &Driver{path: path}
}

// ChunkContent reads the file front to back, calling fn once per chunk.
// The final chunk may be shorter than ChunkSize. The chunk buffer is reused
// between calls.
func (d *Driver) ChunkContent(ctx context.Context, fn func(chunk []byte) error) error {
	f, err := os.Open(d.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", d.path, err)
	}
	defer f.Close()

	buf := make([]byte, content.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			if fnErr := fn(buf[:n]); fnErr != nil {
				return fnErr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", d.path, err)
		}
	}
}
