package processor

import (
	"fmt"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/trace"
	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/types"
)

// Incidence describes a ray arriving at the reference surface.
type Incidence struct {
	// World coordinates of the photon recorded on the surface.
	Point types.Vec3

	// Unit vector from the surface point towards the previous
	// interaction, i.e. against the direction of travel.
	Direction types.Vec3

	// Length of the final segment before the surface.
	Length float64
}

// Directions computes the incoming direction and segment length for every
// ray path that reaches the reference surface.
type Directions struct {
	surfaceID int32
}

// NewDirections creates a Directions processor for the given reference
// surface identifier.
func NewDirections(surfaceID int32) *Directions {
	return &Directions{surfaceID: surfaceID}
}

// Process scans the path for the first photon recorded on the reference
// surface and derives the incidence geometry from its predecessor. Paths
// that never touch the surface produce no result. A surface photon whose
// predecessor is not part of the path is a linkage inconsistency and
// aborts the run.
func (p *Directions) Process(path *trace.RayPath) (Incidence, bool, error) {
	var onSurface *trace.Photon
	for i := range path.Photons {
		if path.Photons[i].SurfaceID == p.surfaceID {
			onSurface = &path.Photons[i]
			break
		}
	}
	if onSurface == nil {
		return Incidence{}, false, nil
	}

	var prev *trace.Photon
	for i := range path.Photons {
		if path.Photons[i].ID == onSurface.PrevID {
			prev = &path.Photons[i]
			break
		}
	}
	if prev == nil {
		return Incidence{}, false, fmt.Errorf("processor: photon %d on surface %d has no predecessor %d in its ray path",
			onSurface.ID, p.surfaceID, onSurface.PrevID)
	}

	diff := prev.Position().Sub(onSurface.Position())
	length := diff.Len()
	return Incidence{
		Point:     onSurface.Position(),
		Direction: diff.Div(length),
		Length:    length,
	}, true, nil
}
