package box2d

/// Compute the collision manifold between two circles.
func B2CollideCircles(manifold *B2Manifold, circleA *B2Shape, xfA B2Transform, circleB *B2Shape, xfB B2Transform) {
	manifold.PointCount = 0

	pA := B2TransformVec2Mul(xfA, circleA.Circle.P)
	pB := B2TransformVec2Mul(xfB, circleB.Circle.P)

	radius := circleA.Radius + circleB.Radius
	if B2Vec2DistanceSquared(pA, pB) > radius*radius {
		return
	}

	manifold.Type = B2Manifold_Type.E_circles
	manifold.LocalPoint = circleA.Circle.P
	manifold.LocalNormal.SetZero()
	manifold.PointCount = 1

	manifold.Points[0].LocalPoint = circleB.Circle.P
	manifold.Points[0].Id = B2ContactID{}
}

/// Compute the collision manifold between a polygon and a circle.
func B2CollidePolygonAndCircle(manifold *B2Manifold, polygonA *B2Shape, xfA B2Transform, circleB *B2Shape, xfB B2Transform) {
	b2CollidePolygonAndPoint(manifold, &polygonA.Polygon, polygonA.Radius, xfA, circleB.Circle.P, circleB.Radius, xfB)
}

/// Compute the collision manifold between a capsule and a circle.
func B2CollideCapsuleAndCircle(manifold *B2Manifold, capsuleA *B2Shape, xfA B2Transform, circleB *B2Shape, xfB B2Transform) {
	core := capsuleA.Capsule.corePolygon()
	b2CollidePolygonAndPoint(manifold, &core, capsuleA.Radius, xfA, circleB.Circle.P, circleB.Radius, xfB)
}

// Rounded polygon against a rounded point. The polygon may be a two vertex
// segment, in which case the face and vertex regions still hold.
func b2CollidePolygonAndPoint(manifold *B2Manifold, polygonA *B2PolygonShape, radiusA float64, xfA B2Transform, localCenter B2Vec2, radiusB float64, xfB B2Transform) {
	manifold.PointCount = 0

	// Compute circle position in the frame of the polygon.
	cLocal := B2TransformVec2MulT(xfA, B2TransformVec2Mul(xfB, localCenter))

	// Find the min separating edge.
	normalIndex := 0
	separation := -B2_maxFloat
	radius := radiusA + radiusB
	vertexCount := polygonA.Count
	vertices := &polygonA.Vertices
	normals := &polygonA.Normals

	for i := 0; i < vertexCount; i++ {
		s := B2Vec2Dot(normals[i], B2Vec2Sub(cLocal, vertices[i]))
		if s > radius {
			// Early out.
			return
		}

		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	// Vertices that subtend the incident face.
	vertIndex1 := normalIndex
	vertIndex2 := (vertIndex1 + 1) % vertexCount
	v1 := vertices[vertIndex1]
	v2 := vertices[vertIndex2]

	setPoint := func(normal, point B2Vec2) {
		manifold.PointCount = 1
		manifold.Type = B2Manifold_Type.E_faceA
		manifold.LocalNormal = normal
		manifold.LocalPoint = point
		manifold.Points[0].LocalPoint = localCenter
		manifold.Points[0].Id = B2ContactID{}
	}

	// If the center is inside the polygon ...
	if separation < B2_epsilon {
		setPoint(normals[normalIndex], B2Vec2Lerp(v1, v2, 0.5))
		return
	}

	// Compute barycentric coordinates
	u1 := B2Vec2Dot(B2Vec2Sub(cLocal, v1), B2Vec2Sub(v2, v1))
	u2 := B2Vec2Dot(B2Vec2Sub(cLocal, v2), B2Vec2Sub(v1, v2))

	switch {
	case u1 <= 0.0:
		if B2Vec2DistanceSquared(cLocal, v1) > radius*radius {
			return
		}
		setPoint(B2Vec2Sub(cLocal, v1).Normalized(), v1)

	case u2 <= 0.0:
		if B2Vec2DistanceSquared(cLocal, v2) > radius*radius {
			return
		}
		setPoint(B2Vec2Sub(cLocal, v2).Normalized(), v2)

	default:
		faceCenter := B2Vec2Lerp(v1, v2, 0.5)
		if B2Vec2Dot(B2Vec2Sub(cLocal, faceCenter), normals[vertIndex1]) > radius {
			return
		}
		setPoint(normals[vertIndex1], faceCenter)
	}
}
