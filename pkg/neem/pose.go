// Package neem holds the domain model for recorded robot-execution episodes:
// poses and transforms sampled from the tf tables, the tabular query result
// they are read from, and the mapping of ontology task types onto abstract
// action categories.
package neem

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion is an orientation in xyzw component order, matching the
// transform rotation columns of the episode database.
type Quaternion struct {
	X float64 `json:"qx"`
	Y float64 `json:"qy"`
	Z float64 `json:"qz"`
	W float64 `json:"qw"`
}

// IdentityQuaternion is the no-rotation orientation.
var IdentityQuaternion = Quaternion{W: 1}

func (q Quaternion) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Normalize returns the unit quaternion. The zero quaternion normalizes to
// the identity.
func (q Quaternion) Normalize() Quaternion {
	n := quat.Abs(q.number())
	if n == 0 {
		return IdentityQuaternion
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Dot returns the four-dimensional dot product of two quaternions.
func (q Quaternion) Dot(o Quaternion) float64 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Slerp spherically interpolates between q and o at parameter t in [0, 1].
// Used when resampling recorded trajectories onto a fixed timestep.
func (q Quaternion) Slerp(o Quaternion, t float64) Quaternion {
	a, b := q.Normalize(), o.Normalize()

	dot := a.Dot(b)
	// Take the short arc.
	if dot < 0 {
		b = Quaternion{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
		dot = -dot
	}

	// Nearly parallel: fall back to lerp to avoid division by sin(0).
	if dot > 0.9995 {
		return Quaternion{
			X: a.X + t*(b.X-a.X),
			Y: a.Y + t*(b.Y-a.Y),
			Z: a.Z + t*(b.Z-a.Z),
			W: a.W + t*(b.W-a.W),
		}.Normalize()
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta

	an, bn := a.number(), b.number()
	return fromNumber(quat.Add(quat.Scale(wa, an), quat.Scale(wb, bn)))
}

// Pose is a position and orientation in some reference frame.
type Pose struct {
	Position    r3.Vec     `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// NewPose builds a pose from raw translation and rotation components.
func NewPose(x, y, z, qx, qy, qz, qw float64) Pose {
	return Pose{
		Position:    r3.Vec{X: x, Y: y, Z: z},
		Orientation: Quaternion{X: qx, Y: qy, Z: qz, W: qw},
	}
}

// IsZero reports whether the pose is the origin with identity or zero
// orientation. Replay uses this to tell "still at spawn" apart from a real
// recorded sample.
func (p Pose) IsZero() bool {
	if p.Position != (r3.Vec{}) {
		return false
	}
	return p.Orientation == (Quaternion{}) || p.Orientation == IdentityQuaternion
}

// Interpolate linearly interpolates position and slerps orientation between
// p and o at parameter t in [0, 1].
func (p Pose) Interpolate(o Pose, t float64) Pose {
	return Pose{
		Position:    r3.Add(r3.Scale(1-t, p.Position), r3.Scale(t, o.Position)),
		Orientation: p.Orientation.Slerp(o.Orientation, t),
	}
}

// Transform is a stamped pose between two frames, one row of the tf data.
type Transform struct {
	FrameID      string  `json:"frame_id"`
	ChildFrameID string  `json:"child_frame_id"`
	Stamp        float64 `json:"stamp"`
	Pose         Pose    `json:"pose"`
}
