package types

import "math"

// Degree is the size of one degree in radians.
const Degree = math.Pi / 180.0

// A Frame is a right-handed orthonormal basis attached to a surface point.
// K is the surface normal; I and J span the tangent plane with I kept
// horizontal (zero z component) whenever the normal is not vertical.
type Frame struct {
	I Vec3
	J Vec3
	K Vec3
}

// Build the local frame for a surface with the given normal.
func NewFrame(normal Vec3) Frame {
	k := normal.Normalize()

	// Project the normal on the XY plane to anchor I horizontally. A
	// vertical normal has no horizontal projection; fall back to an
	// arbitrary orthogonal axis.
	anchor := Vec3{k[0], k[1], 0}
	if anchor.LenSq() <= 0 {
		anchor = k.Orthogonal()
	}

	i := anchor.Cross(k).Normalize()
	j := k.Cross(i).Normalize()
	return Frame{I: i, J: j, K: k}
}

// Express a world-space vector in frame coordinates.
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.I), v.Dot(f.J), v.Dot(f.K)}
}

// Azimuth and zenith angle (degrees) of a unit direction expressed in frame
// coordinates. Azimuth is measured from +J towards +I and normalized to
// [0, 360); the zenith angle is measured from the normal K.
func (f Frame) Angles(localDir Vec3) (azimuth, zenith float64) {
	azimuth = NormalizeAngle(math.Atan2(localDir[0], localDir[1]), 0) / Degree
	zenith = math.Acos(localDir[2]) / Degree
	return azimuth, zenith
}

// Normalize angle phi to the range [phi0, phi0 + 2pi).
func NormalizeAngle(phi, phi0 float64) float64 {
	return phi - 2.0*math.Pi*math.Floor((phi-phi0)/(2.0*math.Pi))
}
