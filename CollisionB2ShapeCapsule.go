package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// A solid capsule: two semicircles connected by a rectangle. The cap radius
/// lives on B2Shape.
type B2CapsuleShape struct {
	/// Local centers of the two semicircles
	Center1, Center2 B2Vec2
}

func MakeB2CapsuleShape(center1, center2 B2Vec2, radius float64) (B2Shape, error) {
	shape := B2Shape{
		Type:    B2Shape_Type.E_capsule,
		Radius:  radius,
		Capsule: B2CapsuleShape{Center1: center1, Center2: center2},
	}
	if err := shape.Validate(); err != nil {
		return B2Shape{}, err
	}
	return shape, nil
}

/// The capsule core as a two sided polygon. The collision routines treat it
/// as a rounded polygon with the capsule radius.
func (capsule B2CapsuleShape) corePolygon() B2PolygonShape {
	return b2MakeSegmentPolygon(capsule.Center1, capsule.Center2)
}

var b2CapsuleOps = b2ShapeOps{
	childCount: func(shape *B2Shape) int {
		return 1
	},

	testPoint: func(shape *B2Shape, xf B2Transform, p B2Vec2) bool {
		pLocal := B2TransformVec2MulT(xf, p)
		c1 := shape.Capsule.Center1
		c2 := shape.Capsule.Center2

		d := B2Vec2Sub(c2, c1)
		dd := B2Vec2Dot(d, d)
		if dd == 0.0 {
			return B2Vec2DistanceSquared(pLocal, c1) <= shape.Radius*shape.Radius
		}

		t := B2FloatClamp(B2Vec2Dot(B2Vec2Sub(pLocal, c1), d)/dd, 0.0, 1.0)
		closest := B2Vec2MulAdd(c1, t, d)
		return B2Vec2DistanceSquared(pLocal, closest) <= shape.Radius*shape.Radius
	},

	rayCast: func(shape *B2Shape, input B2RayCastInput, xf B2Transform, childIndex int) (B2RayCastOutput, bool) {
		// A ray starting inside reports no hit, as with polygons.
		if shape.TestPoint(xf, input.P1) {
			return B2RayCastOutput{}, false
		}

		c1 := shape.Capsule.Center1
		c2 := shape.Capsule.Center2
		offset := B2Vec2MulScalar(shape.Radius, B2Vec2CrossVectorScalar(B2Vec2Sub(c2, c1), 1.0).Normalized())

		var best B2RayCastOutput
		hit := false
		consider := func(output B2RayCastOutput, ok bool) {
			if ok && (!hit || output.Fraction < best.Fraction) {
				best = output
				hit = true
			}
		}

		consider(b2RayCastCircle(input, B2TransformVec2Mul(xf, c1), shape.Radius))
		consider(b2RayCastCircle(input, B2TransformVec2Mul(xf, c2), shape.Radius))
		consider(b2RayCastSegment(input, xf, B2Vec2Add(c1, offset), B2Vec2Add(c2, offset)))
		consider(b2RayCastSegment(input, xf, B2Vec2Sub(c1, offset), B2Vec2Sub(c2, offset)))
		return best, hit
	},

	computeAABB: func(shape *B2Shape, xf B2Transform, childIndex int) B2AABB {
		return b2SegmentAABB(xf, shape.Capsule.Center1, shape.Capsule.Center2, shape.Radius)
	},

	computeMass: func(shape *B2Shape, density float64) B2MassData {
		radius := shape.Radius
		rr := radius * radius
		p1 := shape.Capsule.Center1
		p2 := shape.Capsule.Center2
		length := B2Vec2Distance(p1, p2)
		ll := length * length

		circleMass := density * (B2_pi * rr)
		boxMass := density * (2.0 * radius * length)

		var massData B2MassData
		massData.Mass = circleMass + boxMass
		massData.Center = B2Vec2Lerp(p1, p2, 0.5)

		// two offset half circles, both halves add up to full circle and each half is offset by half length
		// semicircle centroid = 4 r / 3 pi
		// Need to apply parallel-axis theorem twice:
		// 1. shift semicircle centroid to origin
		// 2. shift semicircle to box end
		lc := 4.0 * radius / (3.0 * math.Pi)
		h := 0.5 * length

		circleInertia := circleMass * (0.5*rr + h*h + 2.0*h*lc)
		boxInertia := boxMass * (4.0*rr + ll) / 12.0
		massData.I = circleInertia + boxInertia

		// shift to center of mass
		massData.I += massData.Mass * B2Vec2Dot(massData.Center, massData.Center)
		return massData
	},

	validate: func(shape *B2Shape) error {
		c := shape.Capsule
		if !c.Center1.IsValid() || !c.Center2.IsValid() {
			return errors.Wrap(ErrInvalidShape, "capsule centers")
		}
		if shape.Radius <= 0.0 {
			return errors.Wrapf(ErrInvalidShape, "capsule radius %v", shape.Radius)
		}
		if B2Vec2DistanceSquared(c.Center1, c.Center2) <= B2_linearSlop*B2_linearSlop {
			return errors.Wrap(ErrInvalidShape, "capsule centers are too close, use a circle")
		}
		return nil
	},
}
