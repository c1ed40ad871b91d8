// envpack/sampler.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package envpack

// SampleFunc is the environment sampler contract both solvers are driven
// by: given a position and elapsed time since departure, return an
// environment reading. The internal bilinear pack sampler and a
// host-supplied override both satisfy this signature (specification C10).
//
// Implementations must be deterministic for a given solve and free of
// observable side effects; the solver may call a SampleFunc many times per
// second of wall-clock search time.
type SampleFunc func(lat, lon, timeHours float64) (Sample, error)

// FromPack adapts a Pack into a SampleFunc for use by a solver. Pack
// sampling is pure and never fails, so the returned function never
// returns a non-nil error.
func FromPack(p Pack) SampleFunc {
	return func(lat, lon, timeHours float64) (Sample, error) {
		return p.Sample(lat, lon, timeHours), nil
	}
}

// Calm returns a SampleFunc describing a benign "calm sea, deep water"
// environment, used when no pack is loaded and no host sampler is
// supplied.
func Calm() SampleFunc {
	return func(lat, lon, timeHours float64) (Sample, error) {
		return Sample{WaveHeightM: DefaultWaveHeightM, DepthM: DefaultDepthM}, nil
	}
}
