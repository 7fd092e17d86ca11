package trf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/helixprop/internal/units"
)

// Kind is the pure type of a surface.
type Kind uint8

const (
	KindCylinder Kind = iota // cylinder coaxial with z
	KindZPlane               // plane at fixed z
	KindXYPlane              // plane parallel to z at fixed normal distance
	KindDCA                  // closest approach to a (possibly tilted) line
	numKinds
)

var kindNames = [numKinds]string{"Cylinder", "ZPlane", "XYPlane", "DCA"}

// NumKinds is the number of surface kinds, for sizing dispatch tables.
const NumKinds = int(numKinds)

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Track vector indices. The meaning of each slot depends on the surface kind:
//
//	Cylinder: φ, z, α = φdir−φ, tanλ, q/pT
//	ZPlane:   x, y, dx/dz, dy/dz, q/p
//	XYPlane:  v, z, dv/du, dz/du, q/p
//	DCA:      r (signed), z, φdir, tanλ, q/pT
const (
	IPhi  = 0
	IZ    = 1
	IAlf  = 2
	ITlm  = 3
	IQpt  = 4
	IX    = 0
	IY    = 1
	IDXDZ = 2
	IDYDZ = 3
	IQp   = 4
	IV    = 0
	IZC   = 1
	IDVDU = 2
	IDZDU = 3
	IRSig = 0
	IPhiD = 2
)

// pureTolerance is the structural equality tolerance for plane and DCA parameters.
const pureTolerance = 1e-7

// Surface is an immutable reference locus. The zero value is not a usable
// surface; construct one with NewCylinder, NewZPlane, NewXYPlane or NewDCA.
//
// Bounded variants carry an extent used by Contains. Extent never takes part
// in PureEqual or PureLess.
type Surface struct {
	kind    Kind
	par     [4]float64
	bounded bool
	lim     [4]float64
	valid   bool
}

// NewCylinder returns an unbounded cylinder of radius r about the z axis.
func NewCylinder(r float64) Surface {
	return Surface{kind: KindCylinder, par: [4]float64{r}, valid: true}
}

// NewBoundedCylinder returns a cylinder of radius r spanning [zmin, zmax].
func NewBoundedCylinder(r, zmin, zmax float64) Surface {
	s := NewCylinder(r)
	s.bounded = true
	s.lim = [4]float64{zmin, zmax}
	return s
}

// NewZPlane returns an unbounded plane at z.
func NewZPlane(z float64) Surface {
	return Surface{kind: KindZPlane, par: [4]float64{z}, valid: true}
}

// NewDisk returns a plane at z restricted to rmin <= ρ <= rmax.
func NewDisk(z, rmin, rmax float64) Surface {
	s := NewZPlane(z)
	s.bounded = true
	s.lim = [4]float64{rmin, rmax}
	return s
}

// NewXYPlane returns a plane parallel to z whose normal has azimuth phi and
// lies at distance dist from the z axis. phi is reduced into [0, 2π).
func NewXYPlane(phi, dist float64) Surface {
	return Surface{kind: KindXYPlane, par: [4]float64{units.NormPhi(phi), dist}, valid: true}
}

// NewBoundedXYPlane returns an xy-plane restricted to vmin <= v <= vmax and
// zmin <= z <= zmax.
func NewBoundedXYPlane(phi, dist, vmin, vmax, zmin, zmax float64) Surface {
	s := NewXYPlane(phi, dist)
	s.bounded = true
	s.lim = [4]float64{vmin, vmax, zmin, zmax}
	return s
}

// NewDCA returns the closest-approach surface for the line through (x, y, 0)
// with slopes dx/dz and dy/dz.
func NewDCA(x, y, dxdz, dydz float64) Surface {
	return Surface{kind: KindDCA, par: [4]float64{x, y, dxdz, dydz}, valid: true}
}

// Kind returns the pure type.
func (s Surface) Kind() Kind { return s.kind }

// IsValid reports whether s was built by a constructor.
func (s Surface) IsValid() bool { return s.valid }

// Bounded reports whether s carries an extent.
func (s Surface) Bounded() bool { return s.bounded }

// NumParameters returns the number of defining parameters for the kind.
func (s Surface) NumParameters() int {
	switch s.kind {
	case KindCylinder, KindZPlane:
		return 1
	case KindXYPlane:
		return 2
	case KindDCA:
		return 4
	}
	return 0
}

// Parameter returns defining parameter i:
//
//	Cylinder: 0 radius
//	ZPlane:   0 z
//	XYPlane:  0 normal azimuth, 1 distance
//	DCA:      0 x, 1 y, 2 dx/dz, 3 dy/dz
func (s Surface) Parameter(i int) (float64, error) {
	if !s.valid || i < 0 || i >= s.NumParameters() {
		return 0, fmt.Errorf("%w: %s has no parameter %d", ErrUnknownParameter, s.kind, i)
	}
	return s.par[i], nil
}

// Radius, Z, NormalPhi, Distance and the DCA accessors read the parameter
// array without the index check. Callers must know the kind.
func (s Surface) Radius() float64    { return s.par[0] }
func (s Surface) Z() float64         { return s.par[0] }
func (s Surface) NormalPhi() float64 { return s.par[0] }
func (s Surface) Distance() float64  { return s.par[1] }

// Anchor returns the DCA line's (x, y) at z = 0 and its slopes.
func (s Surface) Anchor() (x, y, dxdz, dydz float64) {
	return s.par[0], s.par[1], s.par[2], s.par[3]
}

// Tilted reports whether a DCA surface has nonzero slope.
func (s Surface) Tilted() bool {
	return s.kind == KindDCA && (s.par[2] != 0 || s.par[3] != 0)
}

// PureEqual reports structural equality ignoring extent. Surfaces of
// different kinds are never equal.
func (s Surface) PureEqual(o Surface) bool {
	if !s.valid || !o.valid || s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindCylinder, KindZPlane:
		return s.par[0] == o.par[0]
	}
	for i := 0; i < s.NumParameters(); i++ {
		if math.Abs(s.par[i]-o.par[i]) >= pureTolerance {
			return false
		}
	}
	return true
}

// PureLess orders same-kind surfaces: cylinders by radius, z-planes by z,
// xy-planes by distance then azimuth, DCA surfaces lexicographically.
// Different kinds never order.
func (s Surface) PureLess(o Surface) bool {
	if !s.valid || !o.valid || s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindCylinder, KindZPlane:
		return s.par[0] < o.par[0]
	case KindXYPlane:
		return s.par[1] < o.par[1]-pureTolerance ||
			(math.Abs(s.par[1]-o.par[1]) < pureTolerance && s.par[0] < o.par[0]-pureTolerance)
	}
	for i := 0; i < 4; i++ {
		if math.Abs(s.par[i]-o.par[i]) >= pureTolerance {
			return s.par[i] < o.par[i]
		}
	}
	return false
}

// Pure returns a copy of s without extent.
func (s Surface) Pure() Surface {
	return Surface{kind: s.kind, par: s.par, valid: s.valid}
}

// Contains reports whether a vector on s lies within its extent. Unbounded
// surfaces contain every vector.
func (s Surface) Contains(v Vector) bool {
	if !s.bounded {
		return true
	}
	switch s.kind {
	case KindCylinder:
		return v[IZ] >= s.lim[0] && v[IZ] <= s.lim[1]
	case KindZPlane:
		r := math.Hypot(v[IX], v[IY])
		return r >= s.lim[0] && r <= s.lim[1]
	case KindXYPlane:
		return v[IV] >= s.lim[0] && v[IV] <= s.lim[1] &&
			v[IZC] >= s.lim[2] && v[IZC] <= s.lim[3]
	}
	return true
}

// SpacePoint returns the position described by v on s.
func (s Surface) SpacePoint(v Vector) r3.Vec {
	switch s.kind {
	case KindCylinder:
		r := s.par[0]
		return r3.Vec{X: r * math.Cos(v[IPhi]), Y: r * math.Sin(v[IPhi]), Z: v[IZ]}
	case KindZPlane:
		return r3.Vec{X: v[IX], Y: v[IY], Z: s.par[0]}
	case KindXYPlane:
		c, sn := math.Cos(s.par[0]), math.Sin(s.par[0])
		u := s.par[1]
		return r3.Vec{X: u*c - v[IV]*sn, Y: u*sn + v[IV]*c, Z: v[IZC]}
	case KindDCA:
		x0, y0, bx, by := s.Anchor()
		z := v[IZ]
		return r3.Vec{
			X: x0 + bx*z + v[IRSig]*math.Sin(v[IPhiD]),
			Y: y0 + by*z - v[IRSig]*math.Cos(v[IPhiD]),
			Z: z,
		}
	}
	return r3.Vec{}
}

// VecDiff returns a−b with azimuthal components wrapped into [-π, π).
func (s Surface) VecDiff(a, b Vector) Vector {
	d := a.Sub(b)
	switch s.kind {
	case KindCylinder:
		d[IPhi] = units.NormAngle(d[IPhi])
		d[IAlf] = units.NormAngle(d[IAlf])
	case KindDCA:
		d[IPhiD] = units.NormAngle(d[IPhiD])
	}
	return d
}

func (s Surface) String() string {
	if !s.valid {
		return "Surface(invalid)"
	}
	var b string
	if s.bounded {
		b = fmt.Sprintf(" bounds=%v", s.lim)
	}
	switch s.kind {
	case KindCylinder:
		return fmt.Sprintf("Cylinder(r=%g%s)", s.par[0], b)
	case KindZPlane:
		return fmt.Sprintf("ZPlane(z=%g%s)", s.par[0], b)
	case KindXYPlane:
		return fmt.Sprintf("XYPlane(phi=%g, u=%g%s)", s.par[0], s.par[1], b)
	case KindDCA:
		return fmt.Sprintf("DCA(x=%g, y=%g, dxdz=%g, dydz=%g)", s.par[0], s.par[1], s.par[2], s.par[3])
	}
	return s.kind.String()
}
