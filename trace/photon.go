package trace

import "github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/types"

// NoLink is the sentinel link value marking the absence of a previous or
// next photon. A photon with PrevID == NoLink starts a ray path; a photon
// with NextID == NoLink ends one.
const NoLink int32 = 0

// Photon is a single interaction sample recorded by the ray tracer.
type Photon struct {
	// Photon identifier within the trace run.
	ID int32

	// World coordinates of the interaction.
	X, Y, Z float64

	// Side of the surface that was hit (0 or 1). Opaque to this package.
	Side int32

	// Back/forward links to the neighbouring photons of the same ray.
	PrevID int32
	NextID int32

	// Identifier of the surface the photon was recorded on.
	SurfaceID int32
}

// Position of the photon as a vector.
func (p *Photon) Position() types.Vec3 {
	return types.Vec3{p.X, p.Y, p.Z}
}

// IsPathStart returns true if this photon starts a ray path.
func (p *Photon) IsPathStart() bool {
	return p.PrevID == NoLink
}

// IsPathEnd returns true if this photon terminates a ray path.
func (p *Photon) IsPathEnd() bool {
	return p.NextID == NoLink
}

// RayPath is an ordered chain of photons representing one light ray's
// history. Served paths always contain at least two photons.
type RayPath struct {
	Photons []Photon
}
