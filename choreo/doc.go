// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package choreo drives a fluid simulation from the host side.
//
// It holds the pieces a front-end layers on top of the simulator: a
// [Pointer] that turns mouse or touch movement into splat velocity, and
// two scripted jet setups, [Spells] and [Spin], that inject dye every
// frame. All positions are drawing buffer pixels with y pointing up.
//
// Radii passed to the simulator come from [Radius], which scales a
// user-facing factor in [0.01, 3] by the canvas size.
//
// Typical frame:
//
//	radius := choreo.Radius(w, h, pointerRadius)
//	if ptr.Moved() {
//		sim.Splat(radius, ptr.Position(), ptr.Velocity(), color[:])
//	}
//	if !paused {
//		spells.Apply(sim, w, h)
//	}
//	sim.Update(frame)
//	ptr.ResetMove()
package choreo
