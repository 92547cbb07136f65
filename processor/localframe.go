package processor

import (
	"fmt"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/trace"
	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/types"
)

// LocalSample is an incidence expressed in the local frame of the
// reference surface.
type LocalSample struct {
	// Surface point in local coordinates, relative to the surface
	// center.
	Point types.Vec3

	// Length of the final segment before the surface.
	Length float64

	// Incoming direction angles in degrees: azimuth in [0, 360)
	// measured in the tangent plane, zenith from the surface normal.
	Azimuth float64
	Zenith  float64
}

// LocalFrame transforms incidence geometry into the local frame of the
// reference surface, given its center and normal.
type LocalFrame struct {
	surfaceID int32
	center    types.Vec3
	frame     types.Frame
}

// NewLocalFrame creates a LocalFrame processor. normal does not need to
// be a unit vector.
func NewLocalFrame(surfaceID int32, center, normal types.Vec3) *LocalFrame {
	return &LocalFrame{
		surfaceID: surfaceID,
		center:    center,
		frame:     types.NewFrame(normal),
	}
}

// Process walks consecutive photon pairs until one lands on the reference
// surface, then expresses the surface point and the incoming direction in
// the surface frame. The pair must be chained by the on-disk links;
// anything else is a linkage inconsistency that aborts the run.
func (p *LocalFrame) Process(path *trace.RayPath) (LocalSample, bool, error) {
	if len(path.Photons) < 2 {
		return LocalSample{}, false, nil
	}

	prev := &path.Photons[0]
	for i := 1; i < len(path.Photons); i++ {
		photon := &path.Photons[i]
		if photon.SurfaceID != p.surfaceID {
			prev = photon
			continue
		}

		if prev.ID != photon.PrevID {
			return LocalSample{}, false, fmt.Errorf("processor: photon %d on surface %d is not linked to its predecessor %d",
				photon.ID, p.surfaceID, prev.ID)
		}

		diff := prev.Position().Sub(photon.Position())
		length := diff.Len()
		localDir := p.frame.ToLocal(diff.Normalize())
		azimuth, zenith := p.frame.Angles(localDir)

		return LocalSample{
			Point:   p.frame.ToLocal(photon.Position().Sub(p.center)),
			Length:  length,
			Azimuth: azimuth,
			Zenith:  zenith,
		}, true, nil
	}

	return LocalSample{}, false, nil
}
