// packio/delta.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package packio

import "github.com/oceanpilot/georoute/util"

// DeltaEncodeCells delta-encodes a land-mask cell array, which is slowly
// varying along each row, so that the pack store's disk cache compresses
// it substantially better than the raw bytes.
func DeltaEncodeCells(cells []byte) []byte {
	return util.DeltaEncode(cells)
}

// DeltaDecodeCells inverts DeltaEncodeCells.
func DeltaDecodeCells(cells []byte) []byte {
	return util.DeltaDecode(cells)
}
