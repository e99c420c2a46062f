package box2d

import (
	"math"
)

// Compute contact points for edge versus circle.
// This accounts for edge connectivity.
func B2CollideEdgeAndCircle(manifold *B2Manifold, edgeA *B2Shape, xfA B2Transform, circleB *B2Shape, xfB B2Transform) {
	manifold.PointCount = 0
	edge := &edgeA.Edge

	// Compute circle in frame of edge
	Q := B2TransformVec2MulT(xfA, B2TransformVec2Mul(xfB, circleB.Circle.P))

	A := edge.Vertex1
	B := edge.Vertex2
	e := B2Vec2Sub(B, A)

	// Barycentric coordinates
	u := B2Vec2Dot(e, B2Vec2Sub(B, Q))
	v := B2Vec2Dot(e, B2Vec2Sub(Q, A))

	radius := edgeA.Radius + circleB.Radius

	vertexContact := func(P B2Vec2, index uint8) {
		manifold.PointCount = 1
		manifold.Type = B2Manifold_Type.E_circles
		manifold.LocalNormal.SetZero()
		manifold.LocalPoint = P
		manifold.Points[0].Id = B2ContactID{IndexA: index, TypeA: B2ContactFeature_Type.E_vertex, TypeB: B2ContactFeature_Type.E_vertex}
		manifold.Points[0].LocalPoint = circleB.Circle.P
	}

	// Region A
	if v <= 0.0 {
		if B2Vec2DistanceSquared(Q, A) > radius*radius {
			return
		}

		// Is there an edge connected to A?
		if edge.HasVertex0 {
			e1 := B2Vec2Sub(A, edge.Vertex0)
			u1 := B2Vec2Dot(e1, B2Vec2Sub(A, Q))

			// Is the circle in Region AB of the previous edge?
			if u1 > 0.0 {
				return
			}
		}

		vertexContact(A, 0)
		return
	}

	// Region B
	if u <= 0.0 {
		if B2Vec2DistanceSquared(Q, B) > radius*radius {
			return
		}

		// Is there an edge connected to B?
		if edge.HasVertex3 {
			e2 := B2Vec2Sub(edge.Vertex3, B)
			v2 := B2Vec2Dot(e2, B2Vec2Sub(Q, B))

			// Is the circle in Region AB of the next edge?
			if v2 > 0.0 {
				return
			}
		}

		vertexContact(B, 1)
		return
	}

	// Region AB
	den := B2Vec2Dot(e, e)
	B2Assert(den > 0.0)
	P := B2Vec2MulScalar(1.0/den, B2Vec2Add(B2Vec2MulScalar(u, A), B2Vec2MulScalar(v, B)))
	if B2Vec2DistanceSquared(Q, P) > radius*radius {
		return
	}

	n := B2Vec2{-e.Y, e.X}
	if B2Vec2Dot(n, B2Vec2Sub(Q, A)) < 0.0 {
		n = n.Negate()
	}

	manifold.PointCount = 1
	manifold.Type = B2Manifold_Type.E_faceA
	manifold.LocalNormal = n.Normalized()
	manifold.LocalPoint = A
	manifold.Points[0].Id = B2ContactID{IndexA: 0, TypeA: B2ContactFeature_Type.E_face, TypeB: B2ContactFeature_Type.E_vertex}
	manifold.Points[0].LocalPoint = circleB.Circle.P
}

// This structure is used to keep track of the best separating axis.
const (
	b2AxisUnknown uint8 = iota
	b2AxisEdgeA
	b2AxisEdgeB
)

type b2EPAxis struct {
	kind       uint8
	index      int
	separation float64
}

// Reference face used for clipping
type b2ReferenceFace struct {
	i1, i2 int
	v1, v2 B2Vec2
	normal B2Vec2

	sideNormal1 B2Vec2
	sideOffset1 float64

	sideNormal2 B2Vec2
	sideOffset2 float64
}

// Collides an edge and a polygon, taking into account edge adjacency.
// Everything is computed in the frame of the edge.
type b2EPCollider struct {
	polygonB B2PolygonShape

	xf                      B2Transform
	centroidB               B2Vec2
	v0, v1, v2, v3          B2Vec2
	normal0, normal1, normal2 B2Vec2
	normal                  B2Vec2
	lowerLimit, upperLimit  B2Vec2
	radius                  float64
	front                   bool
}

// Classifies the polygon centroid as in front of or behind the edge and
// derives the admissible normal cone from the neighbouring edges.
//
// For a given side the lower and upper limits come from the ghost edge that is
// convex on that side; a concave or missing neighbour clamps the cone to the
// edge normal itself. A missing neighbour opens the cone all the way around
// that end.
func (c *b2EPCollider) computeNormalLimits(edge *B2EdgeShape) {
	edge1 := B2Vec2Sub(c.v2, c.v1).Normalized()
	c.normal1 = B2Vec2{edge1.Y, -edge1.X}
	offset1 := B2Vec2Dot(c.normal1, B2Vec2Sub(c.centroidB, c.v1))

	offset0, offset2 := 0.0, 0.0
	convex1, convex2 := false, false

	// Is there a preceding edge?
	if edge.HasVertex0 {
		edge0 := B2Vec2Sub(c.v1, c.v0).Normalized()
		c.normal0 = B2Vec2{edge0.Y, -edge0.X}
		convex1 = B2Vec2Cross(edge0, edge1) >= 0.0
		offset0 = B2Vec2Dot(c.normal0, B2Vec2Sub(c.centroidB, c.v0))
	}

	// Is there a following edge?
	if edge.HasVertex3 {
		edge2 := B2Vec2Sub(c.v3, c.v2).Normalized()
		c.normal2 = B2Vec2{edge2.Y, -edge2.X}
		convex2 = B2Vec2Cross(edge1, edge2) > 0.0
		offset2 = B2Vec2Dot(c.normal2, B2Vec2Sub(c.centroidB, c.v2))
	}

	n0, n1, n2 := c.normal0, c.normal1, c.normal2

	switch {
	case edge.HasVertex0 && edge.HasVertex3:
		switch {
		case convex1 && convex2:
			c.front = offset0 >= 0.0 || offset1 >= 0.0 || offset2 >= 0.0
			c.setLimits(n0, n2, n1.Negate(), n1.Negate())
		case convex1:
			c.front = offset0 >= 0.0 || (offset1 >= 0.0 && offset2 >= 0.0)
			c.setLimits(n0, n1, n2.Negate(), n1.Negate())
		case convex2:
			c.front = offset2 >= 0.0 || (offset0 >= 0.0 && offset1 >= 0.0)
			c.setLimits(n1, n2, n1.Negate(), n0.Negate())
		default:
			c.front = offset0 >= 0.0 && offset1 >= 0.0 && offset2 >= 0.0
			c.setLimits(n1, n1, n2.Negate(), n0.Negate())
		}

	case edge.HasVertex0:
		if convex1 {
			c.front = offset0 >= 0.0 || offset1 >= 0.0
			c.setLimits(n0, n1.Negate(), n1, n1.Negate())
		} else {
			c.front = offset0 >= 0.0 && offset1 >= 0.0
			c.setLimits(n1, n1.Negate(), n1, n0.Negate())
		}

	case edge.HasVertex3:
		if convex2 {
			c.front = offset1 >= 0.0 || offset2 >= 0.0
			c.setLimits(n1.Negate(), n2, n1.Negate(), n1)
		} else {
			c.front = offset1 >= 0.0 && offset2 >= 0.0
			c.setLimits(n1.Negate(), n1, n2.Negate(), n1)
		}

	default:
		c.front = offset1 >= 0.0
		c.setLimits(n1.Negate(), n1.Negate(), n1, n1)
	}
}

// Picks the normal and limits for the side the polygon is on.
func (c *b2EPCollider) setLimits(frontLower, frontUpper, backLower, backUpper B2Vec2) {
	if c.front {
		c.normal = c.normal1
		c.lowerLimit = frontLower
		c.upperLimit = frontUpper
	} else {
		c.normal = c.normal1.Negate()
		c.lowerLimit = backLower
		c.upperLimit = backUpper
	}
}

// Algorithm:
// 1. Classify v1 and v2
// 2. Classify polygon centroid as front or back
// 3. Flip normal if necessary
// 4. Initialize normal range to [-pi, pi] about face normal
// 5. Adjust normal range according to adjacent edges
// 6. Visit each separating axes, only accept axes within the range
// 7. Return if _any_ axis indicates separation
// 8. Clip
func (c *b2EPCollider) collide(manifold *B2Manifold, edgeA *B2Shape, xfA B2Transform, polygonB *B2Shape, xfB B2Transform) {
	edge := &edgeA.Edge
	polygon := &polygonB.Polygon

	c.xf = B2TransformMulT(xfA, xfB)
	c.centroidB = B2TransformVec2Mul(c.xf, polygon.Centroid)

	c.v0 = edge.Vertex0
	c.v1 = edge.Vertex1
	c.v2 = edge.Vertex2
	c.v3 = edge.Vertex3

	c.computeNormalLimits(edge)

	// Get polygonB in frameA
	c.polygonB.Count = polygon.Count
	for i := 0; i < polygon.Count; i++ {
		c.polygonB.Vertices[i] = B2TransformVec2Mul(c.xf, polygon.Vertices[i])
		c.polygonB.Normals[i] = B2RotVec2Mul(c.xf.Q, polygon.Normals[i])
	}

	c.radius = polygonB.Radius + edgeA.Radius

	manifold.PointCount = 0

	edgeAxis := c.computeEdgeSeparation()

	// If no valid normal can be found than this edge should not collide.
	if edgeAxis.kind == b2AxisUnknown {
		return
	}

	if edgeAxis.separation > c.radius {
		return
	}

	polygonAxis := c.computePolygonSeparation()
	if polygonAxis.kind != b2AxisUnknown && polygonAxis.separation > c.radius {
		return
	}

	// Use hysteresis for jitter reduction.
	const k_relativeTol = 0.98
	const k_absoluteTol = 0.001

	primaryAxis := edgeAxis
	if polygonAxis.kind != b2AxisUnknown && polygonAxis.separation > k_relativeTol*edgeAxis.separation+k_absoluteTol {
		primaryAxis = polygonAxis
	}

	var ie [2]B2ClipVertex
	var rf b2ReferenceFace
	if primaryAxis.kind == b2AxisEdgeA {
		manifold.Type = B2Manifold_Type.E_faceA

		// Search for the polygon normal that is most anti-parallel to the edge normal.
		bestIndex := 0
		bestValue := B2Vec2Dot(c.normal, c.polygonB.Normals[0])
		for i := 1; i < c.polygonB.Count; i++ {
			value := B2Vec2Dot(c.normal, c.polygonB.Normals[i])
			if value < bestValue {
				bestValue = value
				bestIndex = i
			}
		}

		i1 := bestIndex
		i2 := (i1 + 1) % c.polygonB.Count

		ie[0].V = c.polygonB.Vertices[i1]
		ie[0].Id = B2ContactID{IndexA: 0, IndexB: uint8(i1), TypeA: B2ContactFeature_Type.E_face, TypeB: B2ContactFeature_Type.E_vertex}
		ie[1].V = c.polygonB.Vertices[i2]
		ie[1].Id = B2ContactID{IndexA: 0, IndexB: uint8(i2), TypeA: B2ContactFeature_Type.E_face, TypeB: B2ContactFeature_Type.E_vertex}

		if c.front {
			rf.i1, rf.i2 = 0, 1
			rf.v1, rf.v2 = c.v1, c.v2
			rf.normal = c.normal1
		} else {
			rf.i1, rf.i2 = 1, 0
			rf.v1, rf.v2 = c.v2, c.v1
			rf.normal = c.normal1.Negate()
		}
	} else {
		manifold.Type = B2Manifold_Type.E_faceB

		ie[0].V = c.v1
		ie[0].Id = B2ContactID{IndexA: 0, IndexB: uint8(primaryAxis.index), TypeA: B2ContactFeature_Type.E_vertex, TypeB: B2ContactFeature_Type.E_face}
		ie[1].V = c.v2
		ie[1].Id = B2ContactID{IndexA: 0, IndexB: uint8(primaryAxis.index), TypeA: B2ContactFeature_Type.E_vertex, TypeB: B2ContactFeature_Type.E_face}

		rf.i1 = primaryAxis.index
		rf.i2 = (rf.i1 + 1) % c.polygonB.Count
		rf.v1 = c.polygonB.Vertices[rf.i1]
		rf.v2 = c.polygonB.Vertices[rf.i2]
		rf.normal = c.polygonB.Normals[rf.i1]
	}

	rf.sideNormal1 = B2Vec2{rf.normal.Y, -rf.normal.X}
	rf.sideNormal2 = rf.sideNormal1.Negate()
	rf.sideOffset1 = B2Vec2Dot(rf.sideNormal1, rf.v1)
	rf.sideOffset2 = B2Vec2Dot(rf.sideNormal2, rf.v2)

	// Clip incident edge against extruded edge1 side edges.
	var clipPoints1, clipPoints2 [2]B2ClipVertex

	// Clip to box side 1
	if B2ClipSegmentToLine(&clipPoints1, ie, rf.sideNormal1, rf.sideOffset1, rf.i1) < B2_maxManifoldPoints {
		return
	}

	// Clip to negative box side 1
	if B2ClipSegmentToLine(&clipPoints2, clipPoints1, rf.sideNormal2, rf.sideOffset2, rf.i2) < B2_maxManifoldPoints {
		return
	}

	// Now clipPoints2 contains the clipped points.
	if primaryAxis.kind == b2AxisEdgeA {
		manifold.LocalNormal = rf.normal
		manifold.LocalPoint = rf.v1
	} else {
		manifold.LocalNormal = polygon.Normals[rf.i1]
		manifold.LocalPoint = polygon.Vertices[rf.i1]
	}

	pointCount := 0
	for i := 0; i < B2_maxManifoldPoints; i++ {
		separation := B2Vec2Dot(rf.normal, B2Vec2Sub(clipPoints2[i].V, rf.v1))
		if separation > c.radius {
			continue
		}

		cp := &manifold.Points[pointCount]
		if primaryAxis.kind == b2AxisEdgeA {
			cp.LocalPoint = B2TransformVec2MulT(c.xf, clipPoints2[i].V)
			cp.Id = clipPoints2[i].Id
		} else {
			cp.LocalPoint = clipPoints2[i].V
			cp.Id = clipPoints2[i].Id.Flipped()
		}
		pointCount++
	}

	manifold.PointCount = pointCount
}

func (c *b2EPCollider) computeEdgeSeparation() b2EPAxis {
	axis := b2EPAxis{kind: b2AxisEdgeA, separation: B2_maxFloat}
	if !c.front {
		axis.index = 1
	}

	for i := 0; i < c.polygonB.Count; i++ {
		s := B2Vec2Dot(c.normal, B2Vec2Sub(c.polygonB.Vertices[i], c.v1))
		if s < axis.separation {
			axis.separation = s
		}
	}

	return axis
}

func (c *b2EPCollider) computePolygonSeparation() b2EPAxis {
	axis := b2EPAxis{kind: b2AxisUnknown, index: -1, separation: -B2_maxFloat}

	perp := B2Vec2{-c.normal.Y, c.normal.X}

	for i := 0; i < c.polygonB.Count; i++ {
		n := c.polygonB.Normals[i].Negate()

		s1 := B2Vec2Dot(n, B2Vec2Sub(c.polygonB.Vertices[i], c.v1))
		s2 := B2Vec2Dot(n, B2Vec2Sub(c.polygonB.Vertices[i], c.v2))
		s := math.Min(s1, s2)

		if s > c.radius {
			// No collision
			return b2EPAxis{kind: b2AxisEdgeB, index: i, separation: s}
		}

		// Adjacency
		limit := c.lowerLimit
		if B2Vec2Dot(n, perp) >= 0.0 {
			limit = c.upperLimit
		}
		if B2Vec2Dot(B2Vec2Sub(n, limit), c.normal) < -B2_angularSlop {
			continue
		}

		if s > axis.separation {
			axis = b2EPAxis{kind: b2AxisEdgeB, index: i, separation: s}
		}
	}

	return axis
}

/// Compute the collision manifold between an edge and a polygon.
func B2CollideEdgeAndPolygon(manifold *B2Manifold, edgeA *B2Shape, xfA B2Transform, polygonB *B2Shape, xfB B2Transform) {
	var collider b2EPCollider
	collider.collide(manifold, edgeA, xfA, polygonB, xfB)
}
