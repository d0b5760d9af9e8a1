// Package s3 implements a content driver over an S3 (or S3-compatible)
// object.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/archivelab/coral/pkg/content"
)

// Driver streams one S3 object in fixed-size chunks.
//
// The client is shared and injected; building it (region, endpoint,
// credentials) is the configuration layer's job. Custom endpoints cover
// S3-compatible backends like MinIO and Localstack.
type Driver struct {
	client *s3.Client
	bucket string
	key    string
}

// New creates a driver for one object.
func New(client *s3.Client, bucket, key string) *Driver {
	return &Driver{client: client, bucket: bucket, key: key}
}

// ChunkContent downloads the object and calls fn once per chunk. The
// download is a single GetObject stream, not ranged requests; a retried
// ingest restarts from the first byte.
func (d *Driver) ChunkContent(ctx context.Context, fn func(chunk []byte) error) error {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return fmt.Errorf("object s3://%s/%s does not exist: %w", d.bucket, d.key, err)
		}
		return fmt.Errorf("failed to get s3://%s/%s: %w", d.bucket, d.key, err)
	}
	defer out.Body.Close()

	buf := make([]byte, content.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(out.Body, buf)
		if n > 0 {
			if fnErr := fn(buf[:n]); fnErr != nil {
				return fnErr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read s3://%s/%s: %w", d.bucket, d.key, err)
		}
	}
}
