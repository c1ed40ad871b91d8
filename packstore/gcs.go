// packstore/gcs.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package packstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSSource fetches pack objects from a single Cloud Storage bucket,
// grounded in the teacher's GCSBackend.OpenRead/ReadObject pattern.
type GCSSource struct {
	bucket *storage.BucketHandle
}

// NewGCSSource wraps an already-configured storage.Client for a single
// bucket.
func NewGCSSource(client *storage.Client, bucket string) *GCSSource {
	return &GCSSource{bucket: client.Bucket(bucket)}
}

func (g *GCSSource) Fetch(ctx context.Context, key string) (io.ReadCloser, PackManifestEntry, error) {
	obj := g.bucket.Object(key)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, PackManifestEntry{}, fmt.Errorf("packstore: gcs attrs %s: %w", key, err)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, PackManifestEntry{}, fmt.Errorf("packstore: gcs open %s: %w", key, err)
	}

	entry := PackManifestEntry{
		Key:       key,
		SizeBytes: attrs.Size,
		SHA256:    fmt.Sprintf("%x", attrs.MD5),
		ModTime:   attrs.Updated,
	}
	return r, entry, nil
}
