// packstore/dedup.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package packstore

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/sync/singleflight"
)

// Dedup wraps a Source so that N concurrent Fetch calls for the same key
// trigger exactly one underlying fetch; the other callers receive their
// own independent reader over the buffered bytes.
type Dedup struct {
	src   Source
	group singleflight.Group
}

// NewDedup wraps src with request deduplication.
func NewDedup(src Source) *Dedup {
	return &Dedup{src: src}
}

type dedupResult struct {
	data  []byte
	entry PackManifestEntry
}

func (d *Dedup) Fetch(ctx context.Context, key string) (io.ReadCloser, PackManifestEntry, error) {
	v, err, _ := d.group.Do(key, func() (any, error) {
		r, entry, ferr := d.src.Fetch(ctx, key)
		if ferr != nil {
			return nil, ferr
		}
		defer r.Close()

		data, rerr := io.ReadAll(r)
		if rerr != nil {
			return nil, rerr
		}
		return dedupResult{data: data, entry: entry}, nil
	})
	if err != nil {
		return nil, PackManifestEntry{}, err
	}

	res := v.(dedupResult)
	return io.NopCloser(bytes.NewReader(res.data)), res.entry, nil
}
