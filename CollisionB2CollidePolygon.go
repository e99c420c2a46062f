package box2d

// Find the max separation between poly1 and poly2 using edge normals from poly1.
func b2FindMaxSeparation(poly1 *B2PolygonShape, xf1 B2Transform, poly2 *B2PolygonShape, xf2 B2Transform) (int, float64) {
	xf := B2TransformMulT(xf2, xf1)

	bestIndex := 0
	maxSeparation := -B2_maxFloat
	for i := 0; i < poly1.Count; i++ {
		// Get poly1 normal in frame2.
		n := B2RotVec2Mul(xf.Q, poly1.Normals[i])
		v1 := B2TransformVec2Mul(xf, poly1.Vertices[i])

		// Find deepest point for normal i.
		si := B2_maxFloat
		for j := 0; j < poly2.Count; j++ {
			sij := B2Vec2Dot(n, B2Vec2Sub(poly2.Vertices[j], v1))
			if sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}

	return bestIndex, maxSeparation
}

func b2FindIncidentEdge(poly1 *B2PolygonShape, xf1 B2Transform, edge1 int, poly2 *B2PolygonShape, xf2 B2Transform) [2]B2ClipVertex {
	B2Assert(0 <= edge1 && edge1 < poly1.Count)

	// Get the normal of the reference edge in poly2's frame.
	normal1 := B2RotVec2MulT(xf2.Q, B2RotVec2Mul(xf1.Q, poly1.Normals[edge1]))

	// Find the incident edge on poly2.
	index := 0
	minDot := B2_maxFloat
	for i := 0; i < poly2.Count; i++ {
		dot := B2Vec2Dot(normal1, poly2.Normals[i])
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	// Build the clip vertices for the incident edge.
	i1 := index
	i2 := (i1 + 1) % poly2.Count

	var c [2]B2ClipVertex
	c[0].V = B2TransformVec2Mul(xf2, poly2.Vertices[i1])
	c[0].Id = B2ContactID{IndexA: uint8(edge1), IndexB: uint8(i1), TypeA: B2ContactFeature_Type.E_face, TypeB: B2ContactFeature_Type.E_vertex}
	c[1].V = B2TransformVec2Mul(xf2, poly2.Vertices[i2])
	c[1].Id = B2ContactID{IndexA: uint8(edge1), IndexB: uint8(i2), TypeA: B2ContactFeature_Type.E_face, TypeB: B2ContactFeature_Type.E_vertex}
	return c
}

/// Compute the collision manifold between two polygons.
func B2CollidePolygons(manifold *B2Manifold, polyA *B2Shape, xfA B2Transform, polyB *B2Shape, xfB B2Transform) {
	b2ClipPolygons(manifold, &polyA.Polygon, polyA.Radius, xfA, &polyB.Polygon, polyB.Radius, xfB)
}

// Find edge normal of max separation on A - return if separating axis is found
// Find edge normal of max separation on B - return if separation axis is found
// Choose reference edge as min(minA, minB)
// Find incident edge
// Clip

// The normal points from 1 to 2
func b2ClipPolygons(manifold *B2Manifold, polyA *B2PolygonShape, radiusA float64, xfA B2Transform, polyB *B2PolygonShape, radiusB float64, xfB B2Transform) {
	manifold.PointCount = 0
	totalRadius := radiusA + radiusB

	edgeA, separationA := b2FindMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return
	}

	edgeB, separationB := b2FindMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return
	}

	poly1, poly2 := polyA, polyB // reference and incident polygon
	xf1, xf2 := xfA, xfB
	edge1 := edgeA // reference edge
	flip := false
	manifold.Type = B2Manifold_Type.E_faceA

	const k_tol = 0.1 * B2_linearSlop
	if separationB > separationA+k_tol {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		manifold.Type = B2Manifold_Type.E_faceB
		flip = true
	}

	incidentEdge := b2FindIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	iv1 := edge1
	iv2 := (edge1 + 1) % poly1.Count

	v11 := poly1.Vertices[iv1]
	v12 := poly1.Vertices[iv2]

	localTangent := B2Vec2Sub(v12, v11).Normalized()

	localNormal := B2Vec2CrossVectorScalar(localTangent, 1.0)
	planePoint := B2Vec2Lerp(v11, v12, 0.5)

	tangent := B2RotVec2Mul(xf1.Q, localTangent)
	normal := B2Vec2CrossVectorScalar(tangent, 1.0)

	v11 = B2TransformVec2Mul(xf1, v11)
	v12 = B2TransformVec2Mul(xf1, v12)

	// Face offset.
	frontOffset := B2Vec2Dot(normal, v11)

	// Side offsets, extended by polytope skin thickness.
	sideOffset1 := -B2Vec2Dot(tangent, v11) + totalRadius
	sideOffset2 := B2Vec2Dot(tangent, v12) + totalRadius

	// Clip incident edge against extruded edge1 side edges.
	var clipPoints1, clipPoints2 [2]B2ClipVertex

	// Clip to box side 1
	if B2ClipSegmentToLine(&clipPoints1, incidentEdge, tangent.Negate(), sideOffset1, iv1) < 2 {
		return
	}

	// Clip to negative box side 1
	if B2ClipSegmentToLine(&clipPoints2, clipPoints1, tangent, sideOffset2, iv2) < 2 {
		return
	}

	// Now clipPoints2 contains the clipped points.
	manifold.LocalNormal = localNormal
	manifold.LocalPoint = planePoint

	pointCount := 0
	for i := 0; i < B2_maxManifoldPoints; i++ {
		separation := B2Vec2Dot(normal, clipPoints2[i].V) - frontOffset
		if separation <= totalRadius {
			cp := &manifold.Points[pointCount]
			cp.LocalPoint = B2TransformVec2MulT(xf2, clipPoints2[i].V)
			cp.Id = clipPoints2[i].Id
			if flip {
				cp.Id = cp.Id.Flipped()
			}
			pointCount++
		}
	}

	manifold.PointCount = pointCount
}

/// A two vertex polygon along a segment, used to collide rounded segments
/// (capsules and edges) through the polygon routines.
func b2MakeSegmentPolygon(v1, v2 B2Vec2) B2PolygonShape {
	var poly B2PolygonShape
	poly.Count = 2
	poly.Vertices[0] = v1
	poly.Vertices[1] = v2
	poly.Centroid = B2Vec2Lerp(v1, v2, 0.5)

	n := B2Vec2CrossVectorScalar(B2Vec2Sub(v2, v1), 1.0).Normalized()
	poly.Normals[0] = n
	poly.Normals[1] = n.Negate()
	return poly
}

// Two polygons inflated by a radius each. Face contacts go through the
// clipper. When the cores are apart and the closest features are not face
// aligned, a single rounded point at the closest points is produced instead,
// since face axes alone overestimate contact around rounded corners.
func b2CollideRoundedPolygons(manifold *B2Manifold, polyA *B2PolygonShape, radiusA float64, xfA B2Transform, polyB *B2PolygonShape, radiusB float64, xfB B2Transform) {
	manifold.PointCount = 0

	input := B2DistanceInput{
		ProxyA:     MakeB2DistanceProxy(polyA.Vertices[:polyA.Count], 0.0),
		ProxyB:     MakeB2DistanceProxy(polyB.Vertices[:polyB.Count], 0.0),
		TransformA: xfA,
		TransformB: xfB,
	}

	var cache B2SimplexCache
	output := B2Distance(&cache, &input)

	if output.Distance > radiusA+radiusB {
		return
	}

	if output.Distance < 0.1*B2_linearSlop {
		// Cores overlap.
		b2ClipPolygons(manifold, polyA, radiusA, xfA, polyB, radiusB, xfB)
		return
	}

	normal := B2Vec2Sub(output.PointB, output.PointA).Normalized()

	b2ClipPolygons(manifold, polyA, radiusA, xfA, polyB, radiusB, xfB)
	if manifold.PointCount > 0 {
		var faceNormal B2Vec2
		if manifold.Type == B2Manifold_Type.E_faceA {
			faceNormal = B2RotVec2Mul(xfA.Q, manifold.LocalNormal)
		} else {
			faceNormal = B2RotVec2Mul(xfB.Q, manifold.LocalNormal).Negate()
		}

		const faceAlignment = 0.999
		if B2Vec2Dot(faceNormal, normal) > faceAlignment {
			return
		}
	}

	manifold.Type = B2Manifold_Type.E_circles
	manifold.LocalNormal.SetZero()
	manifold.LocalPoint = B2TransformVec2MulT(xfA, output.PointA)
	manifold.PointCount = 1

	cp := &manifold.Points[0]
	cp.LocalPoint = B2TransformVec2MulT(xfB, output.PointB)
	cp.Id = B2ContactID{
		IndexA: uint8(cache.IndexA[0]),
		IndexB: uint8(cache.IndexB[0]),
		TypeA:  B2ContactFeature_Type.E_vertex,
		TypeB:  B2ContactFeature_Type.E_vertex,
	}
	cp.NormalImpulse = 0.0
	cp.TangentImpulse = 0.0
}

/// Compute the collision manifold between a polygon and a capsule.
func B2CollidePolygonAndCapsule(manifold *B2Manifold, polygonA *B2Shape, xfA B2Transform, capsuleB *B2Shape, xfB B2Transform) {
	core := capsuleB.Capsule.corePolygon()
	b2CollideRoundedPolygons(manifold, &polygonA.Polygon, polygonA.Radius, xfA, &core, capsuleB.Radius, xfB)
}

/// Compute the collision manifold between two capsules.
func B2CollideCapsules(manifold *B2Manifold, capsuleA *B2Shape, xfA B2Transform, capsuleB *B2Shape, xfB B2Transform) {
	coreA := capsuleA.Capsule.corePolygon()
	coreB := capsuleB.Capsule.corePolygon()
	b2CollideRoundedPolygons(manifold, &coreA, capsuleA.Radius, xfA, &coreB, capsuleB.Radius, xfB)
}

/// Compute the collision manifold between an edge (or chain child edge) and
/// a capsule. Ghost vertices are not consulted.
func B2CollideEdgeAndCapsule(manifold *B2Manifold, edgeA *B2Shape, xfA B2Transform, capsuleB *B2Shape, xfB B2Transform) {
	segment := b2MakeSegmentPolygon(edgeA.Edge.Vertex1, edgeA.Edge.Vertex2)
	core := capsuleB.Capsule.corePolygon()
	b2CollideRoundedPolygons(manifold, &segment, edgeA.Radius, xfA, &core, capsuleB.Radius, xfB)
}
