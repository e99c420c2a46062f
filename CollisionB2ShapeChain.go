package box2d

import (
	"github.com/pkg/errors"
)

/// A chain shape is a free form sequence of line segments.
/// The chain has two-sided collision, so you can use inside and outside collision.
/// Therefore, you may use any winding order.
/// Connectivity information is used to create smooth collisions.
/// WARNING: The chain will not collide properly if there are self-intersections.
type B2ChainShape struct {
	/// The vertices. A loop repeats its first vertex at the end.
	Vertices []B2Vec2

	PrevVertex, NextVertex       B2Vec2
	HasPrevVertex, HasNextVertex bool
}

func b2CheckChainVertices(vertices []B2Vec2, minCount int) error {
	if len(vertices) < minCount {
		return errors.Wrapf(ErrInvalidChain, "need at least %d vertices, got %d", minCount, len(vertices))
	}
	for i := 1; i < len(vertices); i++ {
		if B2Vec2DistanceSquared(vertices[i-1], vertices[i]) <= B2_linearSlop*B2_linearSlop {
			return errors.Wrapf(ErrInvalidChain, "vertices %d and %d are too close together", i-1, i)
		}
	}
	return nil
}

/// Create a loop. This automatically adjusts connectivity.
func MakeB2LoopShape(vertices []B2Vec2) (B2Shape, error) {
	count := len(vertices)
	if count < 3 {
		return B2Shape{}, errors.Wrapf(ErrInvalidChain, "need at least 3 vertices, got %d", count)
	}

	vs := make([]B2Vec2, count+1)
	copy(vs, vertices)
	vs[count] = vs[0]
	if err := b2CheckChainVertices(vs, 4); err != nil {
		return B2Shape{}, err
	}

	return B2Shape{
		Type:   B2Shape_Type.E_chain,
		Radius: B2_polygonRadius,
		Chain: B2ChainShape{
			Vertices:      vs,
			PrevVertex:    vs[count-1],
			NextVertex:    vs[1],
			HasPrevVertex: true,
			HasNextVertex: true,
		},
	}, nil
}

/// Create a chain with isolated end vertices.
func MakeB2ChainShape(vertices []B2Vec2) (B2Shape, error) {
	if err := b2CheckChainVertices(vertices, 2); err != nil {
		return B2Shape{}, err
	}

	vs := make([]B2Vec2, len(vertices))
	copy(vs, vertices)

	return B2Shape{
		Type:   B2Shape_Type.E_chain,
		Radius: B2_polygonRadius,
		Chain:  B2ChainShape{Vertices: vs},
	}, nil
}

/// Establish connectivity to a vertex that precedes the first vertex.
/// Don't call this for loops.
func (chain *B2ChainShape) SetPrevVertex(prevVertex B2Vec2) {
	chain.PrevVertex = prevVertex
	chain.HasPrevVertex = true
}

/// Establish connectivity to a vertex that follows the last vertex.
/// Don't call this for loops.
func (chain *B2ChainShape) SetNextVertex(nextVertex B2Vec2) {
	chain.NextVertex = nextVertex
	chain.HasNextVertex = true
}

/// Get a child edge, complete with the ghost vertices of its neighbours.
func (shape *B2Shape) GetChildEdge(index int) B2Shape {
	chain := &shape.Chain
	count := len(chain.Vertices)
	B2Assert(0 <= index && index < count-1)

	edge := MakeB2EdgeShape(chain.Vertices[index], chain.Vertices[index+1])
	edge.Radius = shape.Radius

	if index > 0 {
		edge.Edge.Vertex0 = chain.Vertices[index-1]
		edge.Edge.HasVertex0 = true
	} else {
		edge.Edge.Vertex0 = chain.PrevVertex
		edge.Edge.HasVertex0 = chain.HasPrevVertex
	}

	if index < count-2 {
		edge.Edge.Vertex3 = chain.Vertices[index+2]
		edge.Edge.HasVertex3 = true
	} else {
		edge.Edge.Vertex3 = chain.NextVertex
		edge.Edge.HasVertex3 = chain.HasNextVertex
	}

	return edge
}

func (chain *B2ChainShape) childVertices(childIndex int) (B2Vec2, B2Vec2) {
	B2Assert(childIndex < len(chain.Vertices))
	i2 := childIndex + 1
	if i2 == len(chain.Vertices) {
		i2 = 0
	}
	return chain.Vertices[childIndex], chain.Vertices[i2]
}

var b2ChainOps = b2ShapeOps{
	childCount: func(shape *B2Shape) int {
		// edge count = vertex count - 1
		return len(shape.Chain.Vertices) - 1
	},

	testPoint: func(shape *B2Shape, xf B2Transform, p B2Vec2) bool {
		return false
	},

	rayCast: func(shape *B2Shape, input B2RayCastInput, xf B2Transform, childIndex int) (B2RayCastOutput, bool) {
		v1, v2 := shape.Chain.childVertices(childIndex)
		return b2RayCastSegment(input, xf, v1, v2)
	},

	computeAABB: func(shape *B2Shape, xf B2Transform, childIndex int) B2AABB {
		v1, v2 := shape.Chain.childVertices(childIndex)
		return b2SegmentAABB(xf, v1, v2, shape.Radius)
	},

	computeMass: func(shape *B2Shape, density float64) B2MassData {
		return B2MassData{}
	},

	validate: func(shape *B2Shape) error {
		return b2CheckChainVertices(shape.Chain.Vertices, 2)
	},
}
