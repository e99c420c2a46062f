package box2d

import (
	"math"
)

///////////////////////////////////////////////////////////////////////////////
// Contact features and manifolds
///////////////////////////////////////////////////////////////////////////////

const B2_nullFeature uint8 = math.MaxUint8

var B2ContactFeature_Type = struct {
	E_vertex uint8
	E_face   uint8
}{
	E_vertex: 0,
	E_face:   1,
}

/// The features that intersect to form the contact point.
type B2ContactFeature struct {
	IndexA uint8 ///< Feature index on shapeA
	IndexB uint8 ///< Feature index on shapeB
	TypeA  uint8 ///< The feature type on shapeA
	TypeB  uint8 ///< The feature type on shapeB
}

/// Contact ids to facilitate warm starting.
type B2ContactID B2ContactFeature

/// Packs the feature into a comparable key.
func (v B2ContactID) Key() uint32 {
	return uint32(v.IndexA) | uint32(v.IndexB)<<8 | uint32(v.TypeA)<<16 | uint32(v.TypeB)<<24
}

func (v *B2ContactID) SetKey(key uint32) {
	v.IndexA = uint8(key)
	v.IndexB = uint8(key >> 8)
	v.TypeA = uint8(key >> 16)
	v.TypeB = uint8(key >> 24)
}

/// Swaps the A and B sides of the feature.
func (v B2ContactID) Flipped() B2ContactID {
	return B2ContactID{IndexA: v.IndexB, IndexB: v.IndexA, TypeA: v.TypeB, TypeB: v.TypeA}
}

/// A manifold point is a contact point belonging to a contact
/// manifold. It holds details related to the geometry and dynamics
/// of the contact points.
/// The local point usage depends on the manifold type:
/// -e_circles: the local center of circleB
/// -e_faceA: the local center of cirlceB or the clip point of polygonB
/// -e_faceB: the clip point of polygonA
/// Note: the impulses are used for internal caching and may not
/// provide reliable contact forces, especially for high speed collisions.
type B2ManifoldPoint struct {
	LocalPoint     B2Vec2      ///< usage depends on manifold type
	NormalImpulse  float64     ///< the non-penetration impulse
	TangentImpulse float64     ///< the friction impulse
	Id             B2ContactID ///< uniquely identifies a contact point between two shapes
}

var B2Manifold_Type = struct {
	E_circles uint8
	E_faceA   uint8
	E_faceB   uint8
}{
	E_circles: 0,
	E_faceA:   1,
	E_faceB:   2,
}

/// A manifold for two touching convex shapes.
/// The local point usage depends on the manifold type:
/// -e_circles: the local center of circleA
/// -e_faceA: the center of faceA
/// -e_faceB: the center of faceB
/// Similarly the local normal usage:
/// -e_circles: not used
/// -e_faceA: the normal on polygonA
/// -e_faceB: the normal on polygonB
/// Contacts are stored in body local coordinates so that position correction
/// can account for movement, which is critical for continuous physics.
type B2Manifold struct {
	Points      [B2_maxManifoldPoints]B2ManifoldPoint ///< the points of contact
	LocalNormal B2Vec2                                ///< not use for Type::e_points
	LocalPoint  B2Vec2                                ///< usage depends on manifold type
	Type        uint8                                 // B2Manifold_Type
	PointCount  int                                   ///< the number of manifold points
}

/// This is used to compute the current state of a contact manifold.
type B2WorldManifold struct {
	Normal      B2Vec2                        ///< world vector pointing from A to B
	Points      [B2_maxManifoldPoints]B2Vec2  ///< world contact point (point of intersection)
	Separations [B2_maxManifoldPoints]float64 ///< a negative value indicates overlap, in meters
}

/// Evaluate the manifold with supplied transforms. This assumes
/// modest motion from the original state. This does not change the
/// point count, impulses, etc. The radii must come from the shapes
/// that generated the manifold.
func (wm *B2WorldManifold) Initialize(manifold *B2Manifold, xfA B2Transform, radiusA float64, xfB B2Transform, radiusB float64) {
	if manifold.PointCount == 0 {
		return
	}

	switch manifold.Type {
	case B2Manifold_Type.E_circles:
		wm.Normal.Set(1.0, 0.0)
		pointA := B2TransformVec2Mul(xfA, manifold.LocalPoint)
		pointB := B2TransformVec2Mul(xfB, manifold.Points[0].LocalPoint)
		if B2Vec2DistanceSquared(pointA, pointB) > B2_epsilon*B2_epsilon {
			wm.Normal = B2Vec2Sub(pointB, pointA)
			wm.Normal.Normalize()
		}

		cA := B2Vec2MulAdd(pointA, radiusA, wm.Normal)
		cB := B2Vec2MulSub(pointB, radiusB, wm.Normal)
		wm.Points[0] = B2Vec2MulScalar(0.5, B2Vec2Add(cA, cB))
		wm.Separations[0] = B2Vec2Dot(B2Vec2Sub(cB, cA), wm.Normal)

	case B2Manifold_Type.E_faceA:
		wm.Normal = B2RotVec2Mul(xfA.Q, manifold.LocalNormal)
		planePoint := B2TransformVec2Mul(xfA, manifold.LocalPoint)

		for i := 0; i < manifold.PointCount; i++ {
			clipPoint := B2TransformVec2Mul(xfB, manifold.Points[i].LocalPoint)
			cA := B2Vec2MulAdd(clipPoint, radiusA-B2Vec2Dot(B2Vec2Sub(clipPoint, planePoint), wm.Normal), wm.Normal)
			cB := B2Vec2MulSub(clipPoint, radiusB, wm.Normal)
			wm.Points[i] = B2Vec2MulScalar(0.5, B2Vec2Add(cA, cB))
			wm.Separations[i] = B2Vec2Dot(B2Vec2Sub(cB, cA), wm.Normal)
		}

	case B2Manifold_Type.E_faceB:
		wm.Normal = B2RotVec2Mul(xfB.Q, manifold.LocalNormal)
		planePoint := B2TransformVec2Mul(xfB, manifold.LocalPoint)

		for i := 0; i < manifold.PointCount; i++ {
			clipPoint := B2TransformVec2Mul(xfA, manifold.Points[i].LocalPoint)
			cB := B2Vec2MulAdd(clipPoint, radiusB-B2Vec2Dot(B2Vec2Sub(clipPoint, planePoint), wm.Normal), wm.Normal)
			cA := B2Vec2MulSub(clipPoint, radiusA, wm.Normal)
			wm.Points[i] = B2Vec2MulScalar(0.5, B2Vec2Add(cA, cB))
			wm.Separations[i] = B2Vec2Dot(B2Vec2Sub(cA, cB), wm.Normal)
		}

		// Ensure normal points from A to B.
		wm.Normal = wm.Normal.Negate()
	}
}

/// This is used for determining the state of contact points.
type B2PointStateType uint8

const (
	B2_nullState    B2PointStateType = iota ///< point does not exist
	B2_addState                             ///< point was added in the update
	B2_persistState                         ///< point persisted across the update
	B2_removeState                          ///< point was removed in the update
)

func (s B2PointStateType) String() string {
	switch s {
	case B2_addState:
		return "add"
	case B2_persistState:
		return "persist"
	case B2_removeState:
		return "remove"
	}
	return "null"
}

/// Compute the point states given two manifolds. The states pertain to the transition from manifold1
/// to manifold2. So state1 is either persist or remove while state2 is either add or persist.
func B2GetPointStates(manifold1, manifold2 *B2Manifold) (state1, state2 [B2_maxManifoldPoints]B2PointStateType) {
	// Detect persists and removes.
	for i := 0; i < manifold1.PointCount; i++ {
		key := manifold1.Points[i].Id.Key()
		state1[i] = B2_removeState
		for j := 0; j < manifold2.PointCount; j++ {
			if manifold2.Points[j].Id.Key() == key {
				state1[i] = B2_persistState
				break
			}
		}
	}

	// Detect persists and adds.
	for i := 0; i < manifold2.PointCount; i++ {
		key := manifold2.Points[i].Id.Key()
		state2[i] = B2_addState
		for j := 0; j < manifold1.PointCount; j++ {
			if manifold1.Points[j].Id.Key() == key {
				state2[i] = B2_persistState
				break
			}
		}
	}

	return state1, state2
}

/// Used for computing contact manifolds.
type B2ClipVertex struct {
	V  B2Vec2
	Id B2ContactID
}

/// Ray-cast input data. The ray extends from p1 to p1 + maxFraction * (p2 - p1).
type B2RayCastInput struct {
	P1, P2      B2Vec2
	MaxFraction float64
}

/// Ray-cast output data. The ray hits at p1 + fraction * (p2 - p1), where p1 and p2
/// come from B2RayCastInput.
type B2RayCastOutput struct {
	Normal   B2Vec2
	Fraction float64
}

///////////////////////////////////////////////////////////////////////////////
/// An axis aligned bounding box.
///////////////////////////////////////////////////////////////////////////////
type B2AABB struct {
	LowerBound B2Vec2 ///< the lower vertex
	UpperBound B2Vec2 ///< the upper vertex
}

func MakeB2AABB(lower, upper B2Vec2) B2AABB {
	return B2AABB{LowerBound: lower, UpperBound: upper}
}

func (bb B2AABB) GetCenter() B2Vec2 {
	return B2Vec2MulScalar(0.5, B2Vec2Add(bb.LowerBound, bb.UpperBound))
}

/// Get the extents of the AABB (half-widths).
func (bb B2AABB) GetExtents() B2Vec2 {
	return B2Vec2MulScalar(0.5, B2Vec2Sub(bb.UpperBound, bb.LowerBound))
}

func (bb B2AABB) GetPerimeter() float64 {
	wx := bb.UpperBound.X - bb.LowerBound.X
	wy := bb.UpperBound.Y - bb.LowerBound.Y
	return 2.0 * (wx + wy)
}

func B2AABBCombine(a, b B2AABB) B2AABB {
	return B2AABB{
		LowerBound: B2Vec2Min(a.LowerBound, b.LowerBound),
		UpperBound: B2Vec2Max(a.UpperBound, b.UpperBound),
	}
}

/// Does this aabb contain the provided AABB.
func (bb B2AABB) Contains(aabb B2AABB) bool {
	return bb.LowerBound.X <= aabb.LowerBound.X &&
		bb.LowerBound.Y <= aabb.LowerBound.Y &&
		aabb.UpperBound.X <= bb.UpperBound.X &&
		aabb.UpperBound.Y <= bb.UpperBound.Y
}

func (bb B2AABB) IsValid() bool {
	d := B2Vec2Sub(bb.UpperBound, bb.LowerBound)
	return d.X >= 0.0 && d.Y >= 0.0 && bb.LowerBound.IsValid() && bb.UpperBound.IsValid()
}

/// Grows the box by r in every direction.
func (bb B2AABB) Extended(r float64) B2AABB {
	ext := B2Vec2{r, r}
	return B2AABB{LowerBound: B2Vec2Sub(bb.LowerBound, ext), UpperBound: B2Vec2Add(bb.UpperBound, ext)}
}

func B2TestOverlapBoundingBoxes(a, b B2AABB) bool {
	if b.LowerBound.X-a.UpperBound.X > 0.0 || b.LowerBound.Y-a.UpperBound.Y > 0.0 {
		return false
	}
	if a.LowerBound.X-b.UpperBound.X > 0.0 || a.LowerBound.Y-b.UpperBound.Y > 0.0 {
		return false
	}
	return true
}

// From Real-time Collision Detection, p179.
func (bb B2AABB) RayCast(input B2RayCastInput) (B2RayCastOutput, bool) {
	var output B2RayCastOutput
	tmin := -B2_maxFloat
	tmax := B2_maxFloat

	p := input.P1
	d := B2Vec2Sub(input.P2, input.P1)
	absD := B2Vec2Abs(d)

	var normal B2Vec2

	for i := 0; i < 2; i++ {
		if absD.At(i) < B2_epsilon {
			// Parallel.
			if p.At(i) < bb.LowerBound.At(i) || bb.UpperBound.At(i) < p.At(i) {
				return output, false
			}
			continue
		}

		invD := 1.0 / d.At(i)
		t1 := (bb.LowerBound.At(i) - p.At(i)) * invD
		t2 := (bb.UpperBound.At(i) - p.At(i)) * invD

		// Sign of the normal vector.
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}

		// Push the min up
		if t1 > tmin {
			normal.SetZero()
			normal.SetAt(i, s)
			tmin = t1
		}

		// Pull the max down
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return output, false
		}
	}

	// Does the ray start inside the box?
	// Does the ray intersect beyond the max fraction?
	if tmin < 0.0 || input.MaxFraction < tmin {
		return output, false
	}

	output.Fraction = tmin
	output.Normal = normal
	return output, true
}

// Sutherland-Hodgman clipping.
func B2ClipSegmentToLine(vOut *[2]B2ClipVertex, vIn [2]B2ClipVertex, normal B2Vec2, offset float64, vertexIndexA int) int {
	numOut := 0

	// Calculate the distance of end points to the line
	distance0 := B2Vec2Dot(normal, vIn[0].V) - offset
	distance1 := B2Vec2Dot(normal, vIn[1].V) - offset

	// If the points are behind the plane
	if distance0 <= 0.0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if distance1 <= 0.0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	// If the points are on different sides of the plane
	if distance0*distance1 < 0.0 {
		// Find intersection point of edge and plane
		interp := distance0 / (distance0 - distance1)
		vOut[numOut].V = B2Vec2MulAdd(vIn[0].V, interp, B2Vec2Sub(vIn[1].V, vIn[0].V))

		// VertexA is hitting edgeB.
		vOut[numOut].Id.IndexA = uint8(vertexIndexA)
		vOut[numOut].Id.IndexB = vIn[0].Id.IndexB
		vOut[numOut].Id.TypeA = B2ContactFeature_Type.E_vertex
		vOut[numOut].Id.TypeB = B2ContactFeature_Type.E_face
		numOut++
	}

	return numOut
}

/// Determine if two generic shapes overlap.
func B2TestOverlapShapes(shapeA *B2Shape, indexA int, shapeB *B2Shape, indexB int, xfA, xfB B2Transform) bool {
	var input B2DistanceInput
	input.ProxyA.Set(shapeA, indexA)
	input.ProxyB.Set(shapeB, indexB)
	input.TransformA = xfA
	input.TransformB = xfB
	input.UseRadii = true

	var cache B2SimplexCache
	output := B2Distance(&cache, &input)
	return output.Distance < 10.0*B2_epsilon
}
