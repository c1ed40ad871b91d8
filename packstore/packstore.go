// packstore/packstore.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package packstore fetches the bytes of a land-mask raster or an
// environment-pack bundle from object storage, keeps the manifest entry
// reported with them, and caches decoded payloads on local disk so repeated
// Engine construction does not refetch data already cached.
package packstore

import (
	"context"
	"io"
	"time"
)

// PackManifestEntry is the size/hash/mtime record a Source reports
// alongside an object's bytes. DiskCache stores it with the cached payload
// and returns it unchanged; it is not compared against the remote object.
type PackManifestEntry struct {
	Key       string
	SizeBytes int64
	SHA256    string
	ModTime   time.Time
}

// Source fetches the raw bytes of one pack object plus its manifest entry.
// A Source never silently substitutes stale or empty data; on failure it
// returns a wrapped error unchanged to the caller.
type Source interface {
	Fetch(ctx context.Context, key string) (io.ReadCloser, PackManifestEntry, error)
}
