// util/sysinfo.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a point-in-time snapshot of host resource usage, logged once at
// engine construction so that operators can correlate slow solves with
// resource pressure.
type Stats struct {
	Goroutines    int
	NumCPU        int
	MemAllocBytes uint64
	MemTotalBytes uint64
}

// SnapshotStats reads current host and process resource usage. It never
// fails: if the underlying gopsutil call errors (e.g. on an unsupported
// platform), the memory totals are left at zero.
func SnapshotStats() Stats {
	s := Stats{
		Goroutines: runtime.NumGoroutine(),
		NumCPU:     runtime.NumCPU(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.MemAllocBytes = ms.Alloc

	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemTotalBytes = vm.Total
	}

	return s
}
