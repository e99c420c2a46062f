package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// A solid circle shape. The radius lives on B2Shape.
type B2CircleShape struct {
	/// Position
	P B2Vec2
}

func MakeB2CircleShape(radius float64) B2Shape {
	return MakeB2CircleShapeAt(B2Vec2{}, radius)
}

/// A circle whose center is offset from the body origin.
func MakeB2CircleShapeAt(center B2Vec2, radius float64) B2Shape {
	return B2Shape{
		Type:   B2Shape_Type.E_circle,
		Radius: radius,
		Circle: B2CircleShape{P: center},
	}
}

var b2CircleOps = b2ShapeOps{
	childCount: func(shape *B2Shape) int {
		return 1
	},

	testPoint: func(shape *B2Shape, transform B2Transform, p B2Vec2) bool {
		center := B2TransformVec2Mul(transform, shape.Circle.P)
		d := B2Vec2Sub(p, center)
		return B2Vec2Dot(d, d) <= shape.Radius*shape.Radius
	},

	rayCast: func(shape *B2Shape, input B2RayCastInput, transform B2Transform, childIndex int) (B2RayCastOutput, bool) {
		position := B2TransformVec2Mul(transform, shape.Circle.P)
		return b2RayCastCircle(input, position, shape.Radius)
	},

	computeAABB: func(shape *B2Shape, transform B2Transform, childIndex int) B2AABB {
		p := B2TransformVec2Mul(transform, shape.Circle.P)
		return B2AABB{
			LowerBound: B2Vec2{p.X - shape.Radius, p.Y - shape.Radius},
			UpperBound: B2Vec2{p.X + shape.Radius, p.Y + shape.Radius},
		}
	},

	computeMass: func(shape *B2Shape, density float64) B2MassData {
		rr := shape.Radius * shape.Radius
		mass := density * B2_pi * rr
		// inertia about the local origin
		return B2MassData{
			Mass:   mass,
			Center: shape.Circle.P,
			I:      mass * (0.5*rr + B2Vec2Dot(shape.Circle.P, shape.Circle.P)),
		}
	},

	validate: func(shape *B2Shape) error {
		if shape.Radius <= 0.0 {
			return errors.Wrapf(ErrInvalidShape, "circle radius %v", shape.Radius)
		}
		if !shape.Circle.P.IsValid() {
			return errors.Wrap(ErrInvalidShape, "circle center")
		}
		return nil
	},
}

// Collision Detection in Interactive 3D Environments by Gino van den Bergen
// From Section 3.1.2
// x = s + a * r
// norm(x) = radius
func b2RayCastCircle(input B2RayCastInput, position B2Vec2, radius float64) (B2RayCastOutput, bool) {
	var output B2RayCastOutput

	s := B2Vec2Sub(input.P1, position)
	b := B2Vec2Dot(s, s) - radius*radius

	// Solve quadratic equation.
	r := B2Vec2Sub(input.P2, input.P1)
	c := B2Vec2Dot(s, r)
	rr := B2Vec2Dot(r, r)
	sigma := c*c - rr*b

	// Check for negative discriminant and short segment.
	if sigma < 0.0 || rr < B2_epsilon {
		return output, false
	}

	// Find the point of intersection of the line with the circle.
	a := -(c + math.Sqrt(sigma))

	// Is the intersection point on the segment?
	if 0.0 <= a && a <= input.MaxFraction*rr {
		a /= rr
		output.Fraction = a
		output.Normal = B2Vec2MulAdd(s, a, r).Normalized()
		return output, true
	}

	return output, false
}
