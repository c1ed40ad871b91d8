// packstore/diskcache.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package packstore

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oceanpilot/georoute/packio"
)

// cacheRecord is the on-disk representation of one cached object: the
// manifest entry the source reported plus the decoded payload, matching
// the teacher's msgpack-over-flate on-disk cache convention
// (util.CacheStoreObject/CacheRetrieveObject).
type cacheRecord struct {
	Entry PackManifestEntry
	Data  []byte
}

// DiskCache wraps a Source, downloading an object once and thereafter
// serving it from a local on-disk cache plus a bounded in-memory LRU. A
// key is treated as immutable once cached: DiskCache never re-validates a
// cached copy against the remote source, matching the teacher's
// write-once cache convention.
type DiskCache struct {
	src      Source
	cacheDir string
	maxBytes int64
	mem      *expirable.LRU[string, []byte]
}

// NewDiskCache wraps src, caching decoded payloads under cacheDir (created
// on first write) and culling the oldest cached files once the directory
// exceeds maxBytes. maxBytes <= 0 disables culling.
func NewDiskCache(src Source, cacheDir string, maxBytes int64) *DiskCache {
	return &DiskCache{
		src:      src,
		cacheDir: cacheDir,
		maxBytes: maxBytes,
		mem:      expirable.NewLRU[string, []byte](16, nil, 4*time.Hour),
	}
}

func (c *DiskCache) cachePath(key string) string {
	return filepath.Join(c.cacheDir, filepath.FromSlash(key)+".msgpack.flate")
}

// Fetch returns key's decoded payload and manifest entry, from the
// in-memory LRU if warm, else the on-disk cache, else the wrapped Source
// (after which the decoded payload is written to both caches).
func (c *DiskCache) Fetch(ctx context.Context, key string) (io.ReadCloser, PackManifestEntry, error) {
	if data, ok := c.mem.Get(key); ok {
		if rec, err := readCacheRecord(bytes.NewReader(data)); err == nil {
			return io.NopCloser(bytes.NewReader(rec.Data)), rec.Entry, nil
		}
	}

	if f, err := os.Open(c.cachePath(key)); err == nil {
		rec, decErr := readCacheRecord(f)
		f.Close()
		if decErr == nil {
			return io.NopCloser(bytes.NewReader(rec.Data)), rec.Entry, nil
		}
	}

	body, entry, err := c.src.Fetch(ctx, key)
	if err != nil {
		return nil, PackManifestEntry{}, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, PackManifestEntry{}, fmt.Errorf("packstore: read %s: %w", key, err)
	}

	decoded, err := decompressZstd(raw)
	if err != nil {
		return nil, PackManifestEntry{}, fmt.Errorf("packstore: decompress %s: %w", key, err)
	}

	rec := cacheRecord{Entry: entry, Data: decoded}
	if buf, encErr := encodeCacheRecord(rec); encErr == nil {
		c.mem.Add(key, buf)
		if writeErr := c.writeCacheFile(key, buf); writeErr == nil {
			c.cull()
		}
	}

	return io.NopCloser(bytes.NewReader(decoded)), entry, nil
}

func (c *DiskCache) writeCacheFile(key string, buf []byte) error {
	path := c.cachePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// readCacheRecord reads a cacheRecord written by encodeCacheRecord,
// reversing both the flate compression and the delta-encoding applied to
// its payload.
func readCacheRecord(r io.Reader) (cacheRecord, error) {
	fr := flate.NewReader(r)
	defer fr.Close()

	var rec cacheRecord
	if err := msgpack.NewDecoder(fr).Decode(&rec); err != nil {
		return cacheRecord{}, err
	}
	rec.Data = packio.DeltaDecodeCells(rec.Data)
	return rec, nil
}

// encodeCacheRecord delta-encodes rec's payload before flate-compressing
// it, grounded in the teacher's util/compress.go delta-then-flate
// convention; slowly varying payloads such as a land mask's cell array
// compress substantially better this way.
func encodeCacheRecord(rec cacheRecord) ([]byte, error) {
	rec.Data = packio.DeltaEncodeCells(rec.Data)

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, err
	}
	if err := msgpack.NewEncoder(fw).Encode(rec); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressZstd(raw []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// cull removes the oldest cache files, by modification time, until the
// directory is back under maxBytes. Grounded directly in the teacher's
// util.CacheCullObjects.
func (c *DiskCache) cull() {
	if c.maxBytes <= 0 {
		return
	}

	type fileInfo struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []fileInfo
	var total int64

	_ = filepath.Walk(c.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, fileInfo{path: path, size: info.Size(), modTime: info.ModTime()})
			total += info.Size()
		}
		return nil
	})

	slices.SortFunc(files, func(a, b fileInfo) int { return a.modTime.Compare(b.modTime) })

	for len(files) > 0 && total > c.maxBytes {
		f := files[0]
		if err := os.Remove(f.path); err == nil {
			total -= f.size
		}
		files = files[1:]
	}
}
