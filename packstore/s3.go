// packstore/s3.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package packstore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source fetches pack objects from a single S3 bucket.
type S3Source struct {
	client *s3.Client
	bucket string
}

// NewS3Source wraps an already-configured S3 client (typically built with
// config.LoadDefaultConfig plus static or environment credentials) for a
// single bucket.
func NewS3Source(cfg aws.Config, bucket string) *S3Source {
	return &S3Source{client: s3.NewFromConfig(cfg), bucket: bucket}
}

func (s *S3Source) Fetch(ctx context.Context, key string) (io.ReadCloser, PackManifestEntry, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, PackManifestEntry{}, fmt.Errorf("packstore: s3 get %s/%s: %w", s.bucket, key, err)
	}

	entry := PackManifestEntry{Key: key}
	if out.ContentLength != nil {
		entry.SizeBytes = *out.ContentLength
	}
	if out.ETag != nil {
		entry.SHA256 = *out.ETag
	}
	if out.LastModified != nil {
		entry.ModTime = *out.LastModified
	}

	return out.Body, entry, nil
}
