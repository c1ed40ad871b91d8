// vessel/vessel.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package vessel holds the ship performance model and the safety caps a
// solve may overlay onto it, plus the speed model both solvers use to
// convert an environment sample into a ground-speed vector.
package vessel

import (
	"fmt"
	"math"
)

// Model is a vessel's performance and safety envelope.
type Model struct {
	CalmSpeedKts         float64
	MinSpeedKts          float64
	MaxWaveHeightM       float64
	MaxHeadingChangeDeg  float64
	DraftM               float64
	SafetyDepthBufferM   float64
	WaveDragCoefficient  float64
}

// Default returns the specification's default vessel model.
func Default() Model {
	return Model{
		CalmSpeedKts:        14,
		MinSpeedKts:         3,
		MaxWaveHeightM:      8,
		MaxHeadingChangeDeg: 30,
		DraftM:              5,
		SafetyDepthBufferM:  10,
		WaveDragCoefficient: 0.1,
	}
}

// SafetyCaps optionally overrides a subset of a vessel model's safety
// fields for a single solve.
type SafetyCaps struct {
	MaxWaveHeightM      *float64
	MaxHeadingChangeDeg *float64
	MinWaterDepthM      *float64
}

// Effective overlays non-nil caps onto ship and returns the resulting
// model used for a solve. MinWaterDepthM (if set) replaces the
// DraftM+SafetyDepthBufferM sum, raising or lowering it: ship's draft is
// left untouched and the buffer is adjusted so Draft+Buffer equals the cap,
// or equals the draft alone (buffer zero) when the cap is below the draft.
func Effective(ship Model, caps SafetyCaps) Model {
	eff := ship
	if caps.MaxWaveHeightM != nil {
		eff.MaxWaveHeightM = *caps.MaxWaveHeightM
	}
	if caps.MaxHeadingChangeDeg != nil {
		eff.MaxHeadingChangeDeg = *caps.MaxHeadingChangeDeg
	}
	if caps.MinWaterDepthM != nil {
		need := *caps.MinWaterDepthM
		if need < eff.DraftM {
			need = eff.DraftM
		}
		eff.SafetyDepthBufferM = need - eff.DraftM
	}
	return eff
}

// MinRequiredDepthM returns the minimum water depth under which transit is
// unsafe: draft plus the safety buffer.
func (m Model) MinRequiredDepthM() float64 {
	return m.DraftM + m.SafetyDepthBufferM
}

// Validate checks the invariants the specification requires of an
// effective vessel model before it is used in a solve.
func (m Model) Validate() error {
	if !(m.CalmSpeedKts > m.MinSpeedKts) || m.MinSpeedKts <= 0 {
		return fmt.Errorf("vessel: require calmSpeed (%f) > minSpeed (%f) > 0", m.CalmSpeedKts, m.MinSpeedKts)
	}
	if !(m.MaxHeadingChangeDeg > 0 && m.MaxHeadingChangeDeg <= 180) {
		return fmt.Errorf("vessel: maxHeadingChangeDeg (%f) must be in (0,180]", m.MaxHeadingChangeDeg)
	}
	if m.DraftM+m.SafetyDepthBufferM <= 0 {
		return fmt.Errorf("vessel: draft+safetyBuffer must be > 0")
	}
	return nil
}

// ThroughWaterSpeedKts returns the vessel's speed through the water at the
// given wave height: calmSpeed reduced linearly by wave drag, floored at
// minSpeed.
func (m Model) ThroughWaterSpeedKts(waveHeightM float64) float64 {
	v := m.CalmSpeedKts - m.WaveDragCoefficient*waveHeightM
	if v < m.MinSpeedKts {
		v = m.MinSpeedKts
	}
	return v
}

// GroundSpeedVector composes the vessel's through-water speed along
// heading headingDeg (degrees clockwise from north) with the ambient
// current (currentEastKn, currentNorthKn), returning the resulting
// ground-speed east/north components in knots.
func (m Model) GroundSpeedVector(headingDeg, waveHeightM, currentEastKn, currentNorthKn float64) (east, north float64) {
	tw := m.ThroughWaterSpeedKts(waveHeightM)
	h := headingDeg * math.Pi / 180
	east = tw*math.Sin(h) + currentEastKn
	north = tw*math.Cos(h) + currentNorthKn
	return east, north
}

// GroundSpeedKts returns the magnitude of GroundSpeedVector, floored at
// minSpeed.
func (m Model) GroundSpeedKts(headingDeg, waveHeightM, currentEastKn, currentNorthKn float64) float64 {
	e, n := m.GroundSpeedVector(headingDeg, waveHeightM, currentEastKn, currentNorthKn)
	v := math.Hypot(e, n)
	if v < m.MinSpeedKts {
		v = m.MinSpeedKts
	}
	return v
}
