package box2d

import (
	"github.com/pkg/errors"
)

/// A line segment (edge) shape. These can be connected in chains or loops
/// to other edge shapes. The connectivity information is used to ensure
/// correct contact normals.
type B2EdgeShape struct {
	/// These are the edge vertices
	Vertex1, Vertex2 B2Vec2

	/// Optional adjacent vertices. These are used for smooth collision.
	Vertex0, Vertex3       B2Vec2
	HasVertex0, HasVertex3 bool
}

/// Set this as an isolated edge.
func MakeB2EdgeShape(v1, v2 B2Vec2) B2Shape {
	return B2Shape{
		Type:   B2Shape_Type.E_edge,
		Radius: B2_polygonRadius,
		Edge:   B2EdgeShape{Vertex1: v1, Vertex2: v2},
	}
}

/// Set this as an edge with ghost vertices for smooth collision against neighbours.
func MakeB2SmoothEdgeShape(v0, v1, v2, v3 B2Vec2) B2Shape {
	shape := MakeB2EdgeShape(v1, v2)
	shape.Edge.Vertex0 = v0
	shape.Edge.Vertex3 = v3
	shape.Edge.HasVertex0 = true
	shape.Edge.HasVertex3 = true
	return shape
}

var b2EdgeOps = b2ShapeOps{
	childCount: func(shape *B2Shape) int {
		return 1
	},

	testPoint: func(shape *B2Shape, xf B2Transform, p B2Vec2) bool {
		return false
	},

	rayCast: func(shape *B2Shape, input B2RayCastInput, xf B2Transform, childIndex int) (B2RayCastOutput, bool) {
		return b2RayCastSegment(input, xf, shape.Edge.Vertex1, shape.Edge.Vertex2)
	},

	computeAABB: func(shape *B2Shape, xf B2Transform, childIndex int) B2AABB {
		return b2SegmentAABB(xf, shape.Edge.Vertex1, shape.Edge.Vertex2, shape.Radius)
	},

	computeMass: func(shape *B2Shape, density float64) B2MassData {
		return B2MassData{Center: B2Vec2Lerp(shape.Edge.Vertex1, shape.Edge.Vertex2, 0.5)}
	},

	validate: func(shape *B2Shape) error {
		e := shape.Edge
		if !e.Vertex1.IsValid() || !e.Vertex2.IsValid() {
			return errors.Wrap(ErrInvalidShape, "edge vertices")
		}
		if B2Vec2DistanceSquared(e.Vertex1, e.Vertex2) <= B2_linearSlop*B2_linearSlop {
			return errors.Wrap(ErrInvalidShape, "edge is shorter than the linear slop")
		}
		return nil
	},
}

// p = p1 + t * d
// v = v1 + s * e
// p1 + t * d = v1 + s * e
// s * e - t * d = p1 - v1
func b2RayCastSegment(input B2RayCastInput, xf B2Transform, v1, v2 B2Vec2) (B2RayCastOutput, bool) {
	var output B2RayCastOutput

	// Put the ray into the edge's frame of reference.
	p1 := B2RotVec2MulT(xf.Q, B2Vec2Sub(input.P1, xf.P))
	p2 := B2RotVec2MulT(xf.Q, B2Vec2Sub(input.P2, xf.P))
	d := B2Vec2Sub(p2, p1)

	e := B2Vec2Sub(v2, v1)
	normal := B2Vec2{e.Y, -e.X}.Normalized()

	// q = p1 + t * d
	// dot(normal, q - v1) = 0
	// dot(normal, p1 - v1) + t * dot(normal, d) = 0
	numerator := B2Vec2Dot(normal, B2Vec2Sub(v1, p1))
	denominator := B2Vec2Dot(normal, d)
	if denominator == 0.0 {
		return output, false
	}

	t := numerator / denominator
	if t < 0.0 || input.MaxFraction < t {
		return output, false
	}

	q := B2Vec2MulAdd(p1, t, d)

	// q = v1 + s * r
	// s = dot(q - v1, r) / dot(r, r)
	rr := B2Vec2Dot(e, e)
	if rr == 0.0 {
		return output, false
	}

	s := B2Vec2Dot(B2Vec2Sub(q, v1), e) / rr
	if s < 0.0 || 1.0 < s {
		return output, false
	}

	output.Fraction = t
	if numerator > 0.0 {
		output.Normal = B2RotVec2Mul(xf.Q, normal).Negate()
	} else {
		output.Normal = B2RotVec2Mul(xf.Q, normal)
	}
	return output, true
}

func b2SegmentAABB(xf B2Transform, v1, v2 B2Vec2, radius float64) B2AABB {
	w1 := B2TransformVec2Mul(xf, v1)
	w2 := B2TransformVec2Mul(xf, v2)
	return B2AABB{LowerBound: B2Vec2Min(w1, w2), UpperBound: B2Vec2Max(w1, w2)}.Extended(radius)
}
