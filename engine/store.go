// engine/store.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/oceanpilot/georoute/grid"
	"github.com/oceanpilot/georoute/log"
	"github.com/oceanpilot/georoute/packio"
	"github.com/oceanpilot/georoute/packstore"
)

// NewFromStore constructs an Engine over grid, fetching the land mask and
// environment pack from store under landMaskKey and envPackKey and loading
// both before returning. Either key may be empty to skip loading that
// component, leaving the Engine in its zero-mask/zero-pack state.
func NewFromStore(g grid.Descriptor, store *packstore.DiskCache, landMaskKey, envPackKey string) (*Engine, error) {
	return NewFromStoreWithLogger(context.Background(), g, store, landMaskKey, envPackKey, log.Discard())
}

// NewFromStoreWithLogger is NewFromStore with an explicit context and
// logger, for hosts that want fetch cancellation or structured logging of
// the load.
func NewFromStoreWithLogger(ctx context.Context, g grid.Descriptor, store *packstore.DiskCache, landMaskKey, envPackKey string, lg *log.Logger) (*Engine, error) {
	e, err := New(g, lg)
	if err != nil {
		return nil, err
	}

	if landMaskKey != "" {
		data, err := fetchAll(ctx, store, landMaskKey)
		if err != nil {
			return nil, loadErrorf("fetch land mask %q: %w", landMaskKey, err)
		}
		if err := e.LoadLandMask(data); err != nil {
			return nil, err
		}
	}

	if envPackKey != "" {
		data, err := fetchAll(ctx, store, envPackKey)
		if err != nil {
			return nil, loadErrorf("fetch environment pack %q: %w", envPackKey, err)
		}
		planes, err := packio.DecodeEnvPackBundle(data)
		if err != nil {
			return nil, &LoadError{Err: fmt.Errorf("decode environment pack %q: %w", envPackKey, err)}
		}
		if err := e.LoadEnvironmentPack(planes); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func fetchAll(ctx context.Context, store *packstore.DiskCache, key string) ([]byte, error) {
	r, _, err := store.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
