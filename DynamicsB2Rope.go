package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Definition of a standalone soft rope: a chain of point masses kept
/// together by stretch and bend constraints. The rope lives outside any
/// world and does not collide.
type B2RopeDef struct {
	/// The rest shape of the rope. At least three points.
	Vertices []B2Vec2

	/// One mass per vertex. A zero mass pins the vertex in place.
	Masses []float64

	Gravity B2Vec2

	/// Velocity damping per second.
	Damping float64

	/// Stretching stiffness in [0,1].
	K2 float64

	/// Bending stiffness in [0,1]. Values above 0.5 can make the simulation blow up.
	K3 float64
}

func MakeB2RopeDef() B2RopeDef {
	return B2RopeDef{
		Damping: 0.1,
		K2:      0.9,
		K3:      0.1,
	}
}

func (def *B2RopeDef) validate() error {
	switch {
	case len(def.Vertices) < 3:
		return errors.Wrapf(ErrInvalidShape, "rope needs 3 vertices, got %d", len(def.Vertices))
	case len(def.Masses) != len(def.Vertices):
		return errors.Wrapf(ErrInvalidShape, "rope has %d vertices and %d masses", len(def.Vertices), len(def.Masses))
	case !def.Gravity.IsValid():
		return errors.Wrap(ErrInvalidShape, "rope gravity")
	case !B2IsValid(def.Damping) || def.Damping < 0.0:
		return errors.Wrapf(ErrInvalidShape, "rope damping %v", def.Damping)
	case !B2IsValid(def.K2) || def.K2 < 0.0 || def.K2 > 1.0:
		return errors.Wrapf(ErrInvalidShape, "rope stretch stiffness %v", def.K2)
	case !B2IsValid(def.K3) || def.K3 < 0.0 || def.K3 > 1.0:
		return errors.Wrapf(ErrInvalidShape, "rope bend stiffness %v", def.K3)
	}
	for i, v := range def.Vertices {
		if !v.IsValid() {
			return errors.Wrapf(ErrInvalidShape, "rope vertex %d", i)
		}
		if m := def.Masses[i]; !B2IsValid(m) || m < 0.0 {
			return errors.Wrapf(ErrInvalidDensity, "rope mass %d is %v", i, m)
		}
	}
	return nil
}

/// A verlet rope solved with position based constraints.
type B2Rope struct {
	ps  []B2Vec2
	p0s []B2Vec2
	vs  []B2Vec2

	ims []float64

	// Rest lengths and rest angles.
	ls []float64
	as []float64

	gravity B2Vec2
	damping float64

	k2 float64
	k3 float64
}

func NewB2Rope(def *B2RopeDef) (*B2Rope, error) {
	if err := def.validate(); err != nil {
		return nil, errors.Wrap(err, "create rope")
	}

	count := len(def.Vertices)
	rope := &B2Rope{
		ps:      append([]B2Vec2(nil), def.Vertices...),
		p0s:     append([]B2Vec2(nil), def.Vertices...),
		vs:      make([]B2Vec2, count),
		ims:     make([]float64, count),
		ls:      make([]float64, count-1),
		as:      make([]float64, count-2),
		gravity: def.Gravity,
		damping: def.Damping,
		k2:      def.K2,
		k3:      def.K3,
	}

	for i, m := range def.Masses {
		rope.ims[i] = b2Inverse(m)
	}

	for i := range rope.ls {
		rope.ls[i] = B2Vec2Distance(rope.ps[i], rope.ps[i+1])
	}

	for i := range rope.as {
		d1 := B2Vec2Sub(rope.ps[i+1], rope.ps[i])
		d2 := B2Vec2Sub(rope.ps[i+2], rope.ps[i+1])
		rope.as[i] = math.Atan2(B2Vec2Cross(d1, d2), B2Vec2Dot(d1, d2))
	}

	return rope, nil
}

func (rope *B2Rope) GetVertexCount() int {
	return len(rope.ps)
}

/// The current vertex positions. The slice is owned by the rope.
func (rope *B2Rope) GetVertices() []B2Vec2 {
	return rope.ps
}

/// Advance the rope by h seconds.
func (rope *B2Rope) Step(h float64, iterations int) {
	if h == 0.0 {
		return
	}

	d := math.Exp(-h * rope.damping)

	for i := range rope.ps {
		rope.p0s[i] = rope.ps[i]
		if rope.ims[i] > 0.0 {
			rope.vs[i] = B2Vec2MulAdd(rope.vs[i], h, rope.gravity)
		}
		rope.vs[i] = B2Vec2MulScalar(d, rope.vs[i])
		rope.ps[i] = B2Vec2MulAdd(rope.ps[i], h, rope.vs[i])
	}

	for i := 0; i < iterations; i++ {
		rope.solveStretch()
		rope.solveBend()
		rope.solveStretch()
	}

	inv_h := 1.0 / h
	for i := range rope.ps {
		rope.vs[i] = B2Vec2MulScalar(inv_h, B2Vec2Sub(rope.ps[i], rope.p0s[i]))
	}
}

/// Set the rest angle of every bend.
func (rope *B2Rope) SetAngle(angle float64) {
	for i := range rope.as {
		rope.as[i] = angle
	}
}

func (rope *B2Rope) solveStretch() {
	for i, rest := range rope.ls {
		p1 := rope.ps[i]
		p2 := rope.ps[i+1]

		d := B2Vec2Sub(p2, p1)
		L := d.Normalize()

		im1 := rope.ims[i]
		im2 := rope.ims[i+1]

		if im1+im2 == 0.0 {
			continue
		}

		s1 := im1 / (im1 + im2)
		s2 := im2 / (im1 + im2)

		rope.ps[i] = B2Vec2MulSub(p1, rope.k2*s1*(rest-L), d)
		rope.ps[i+1] = B2Vec2MulAdd(p2, rope.k2*s2*(rest-L), d)
	}
}

func (rope *B2Rope) solveBend() {
	for i, rest := range rope.as {
		p1 := rope.ps[i]
		p2 := rope.ps[i+1]
		p3 := rope.ps[i+2]

		m1 := rope.ims[i]
		m2 := rope.ims[i+1]
		m3 := rope.ims[i+2]

		d1 := B2Vec2Sub(p2, p1)
		d2 := B2Vec2Sub(p3, p2)

		L1sqr := d1.LengthSquared()
		L2sqr := d2.LengthSquared()

		if L1sqr*L2sqr == 0.0 {
			continue
		}

		angle := math.Atan2(B2Vec2Cross(d1, d2), B2Vec2Dot(d1, d2))

		Jd1 := B2Vec2MulScalar(-1.0/L1sqr, d1.Skew())
		Jd2 := B2Vec2MulScalar(1.0/L2sqr, d2.Skew())

		J1 := Jd1.Negate()
		J2 := B2Vec2Sub(Jd1, Jd2)
		J3 := Jd2

		mass := m1*B2Vec2Dot(J1, J1) + m2*B2Vec2Dot(J2, J2) + m3*B2Vec2Dot(J3, J3)
		if mass == 0.0 {
			continue
		}

		mass = 1.0 / mass

		// Wrap the error into (-pi, pi].
		C := angle - rest
		for C > B2_pi {
			C -= 2.0 * B2_pi
		}
		for C < -B2_pi {
			C += 2.0 * B2_pi
		}

		impulse := -rope.k3 * mass * C

		rope.ps[i] = B2Vec2MulAdd(p1, m1*impulse, J1)
		rope.ps[i+1] = B2Vec2MulAdd(p2, m2*impulse, J2)
		rope.ps[i+2] = B2Vec2MulAdd(p3, m3*impulse, J3)
	}
}
