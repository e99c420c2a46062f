package box2d

import (
	"github.com/pkg/errors"
)

/// A convex polygon. It is assumed that the interior of the polygon is to
/// the left of each edge.
/// Polygons have a maximum number of vertices equal to B2_maxPolygonVertices.
/// A two vertex polygon is only ever built internally, to collide capsules.
type B2PolygonShape struct {
	Centroid B2Vec2
	Vertices [B2_maxPolygonVertices]B2Vec2
	Normals  [B2_maxPolygonVertices]B2Vec2
	Count    int
}

/// Build vertices to represent an axis-aligned box centered on the local origin.
/// @param hx the half-width.
/// @param hy the half-height.
func MakeB2BoxShape(hx, hy float64) B2Shape {
	shape := B2Shape{Type: B2Shape_Type.E_polygon, Radius: B2_polygonRadius}
	poly := &shape.Polygon
	poly.Count = 4
	poly.Vertices[0].Set(-hx, -hy)
	poly.Vertices[1].Set(hx, -hy)
	poly.Vertices[2].Set(hx, hy)
	poly.Vertices[3].Set(-hx, hy)
	poly.Normals[0].Set(0.0, -1.0)
	poly.Normals[1].Set(1.0, 0.0)
	poly.Normals[2].Set(0.0, 1.0)
	poly.Normals[3].Set(-1.0, 0.0)
	return shape
}

/// Build vertices to represent an oriented box.
/// @param center the center of the box in local coordinates.
/// @param angle the rotation of the box in local coordinates.
func MakeB2OrientedBoxShape(hx, hy float64, center B2Vec2, angle float64) B2Shape {
	shape := MakeB2BoxShape(hx, hy)
	poly := &shape.Polygon
	poly.Centroid = center

	xf := MakeB2Transform()
	xf.Set(center, angle)
	for i := 0; i < poly.Count; i++ {
		poly.Vertices[i] = B2TransformVec2Mul(xf, poly.Vertices[i])
		poly.Normals[i] = B2RotVec2Mul(xf.Q, poly.Normals[i])
	}
	return shape
}

/// Create a convex polygon from the given points. Points closer than half the
/// linear slop are welded. Input that is not convex (a point strictly inside the
/// hull of the others) is rejected, points lying on a hull edge are dropped.
func MakeB2PolygonShape(points []B2Vec2) (B2Shape, error) {
	hull, err := B2ComputeHull(points)
	if err != nil {
		return B2Shape{}, err
	}

	shape := B2Shape{Type: B2Shape_Type.E_polygon, Radius: B2_polygonRadius}
	poly := &shape.Polygon
	poly.Count = len(hull)
	copy(poly.Vertices[:], hull)

	// Compute normals. Ensure the edges have non-zero length.
	for i := 0; i < poly.Count; i++ {
		i2 := (i + 1) % poly.Count
		edge := B2Vec2Sub(poly.Vertices[i2], poly.Vertices[i])
		if edge.LengthSquared() <= B2_epsilon*B2_epsilon {
			return B2Shape{}, errors.Wrapf(ErrDegeneratePolygon, "edge %d has zero length", i)
		}
		poly.Normals[i] = B2Vec2CrossVectorScalar(edge, 1.0).Normalized()
	}

	centroid, err := b2ComputeCentroid(poly.Vertices[:poly.Count])
	if err != nil {
		return B2Shape{}, err
	}
	poly.Centroid = centroid
	return shape, nil
}

/// Computes the counter clockwise convex hull of the points with the gift
/// wrapping algorithm. See http://en.wikipedia.org/wiki/Gift_wrapping_algorithm
func B2ComputeHull(points []B2Vec2) ([]B2Vec2, error) {
	if len(points) > B2_maxPolygonVertices {
		return nil, errors.Wrapf(ErrTooManyVertices, "%d vertices, at most %d allowed", len(points), B2_maxPolygonVertices)
	}

	// Perform welding and copy vertices into local buffer.
	ps := make([]B2Vec2, 0, len(points))
	weld := 0.5 * B2_linearSlop
	for _, v := range points {
		if !v.IsValid() {
			return nil, errors.Wrap(ErrDegeneratePolygon, "vertex is not a finite number")
		}
		unique := true
		for _, p := range ps {
			if B2Vec2DistanceSquared(v, p) < weld*weld {
				unique = false
				break
			}
		}
		if unique {
			ps = append(ps, v)
		}
	}

	n := len(ps)
	if n < 3 {
		return nil, errors.Wrapf(ErrDegeneratePolygon, "%d distinct vertices", n)
	}

	// Find the right most point on the hull
	i0 := 0
	x0 := ps[0].X
	for i := 1; i < n; i++ {
		x := ps[i].X
		if x > x0 || (x == x0 && ps[i].Y < ps[i0].Y) {
			i0 = i
			x0 = x
		}
	}

	hull := make([]int, 0, n)
	ih := i0
	for {
		if len(hull) >= n {
			return nil, errors.Wrap(ErrDegeneratePolygon, "hull did not close")
		}
		hull = append(hull, ih)

		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}

			r := B2Vec2Sub(ps[ie], ps[ih])
			v := B2Vec2Sub(ps[j], ps[ih])
			c := B2Vec2Cross(r, v)
			if c < 0.0 {
				ie = j
			}

			// Collinearity check
			if c == 0.0 && v.LengthSquared() > r.LengthSquared() {
				ie = j
			}
		}

		ih = ie
		if ie == i0 {
			break
		}
	}

	if len(hull) < 3 {
		return nil, errors.Wrap(ErrDegeneratePolygon, "vertices are collinear")
	}

	vs := make([]B2Vec2, len(hull))
	for i, index := range hull {
		vs[i] = ps[index]
	}

	// Any input point strictly inside the hull means the outline was concave.
	for i, p := range ps {
		onHull := false
		for _, index := range hull {
			if index == i {
				onHull = true
				break
			}
		}
		if onHull {
			continue
		}

		inside := true
		for k := range vs {
			e := B2Vec2Sub(vs[(k+1)%len(vs)], vs[k])
			if B2Vec2Cross(e, B2Vec2Sub(p, vs[k])) <= B2_linearSlop*e.Length() {
				inside = false
				break
			}
		}
		if inside {
			return nil, errors.Wrapf(ErrNonConvexPolygon, "vertex %d lies inside the hull", i)
		}
	}

	return vs, nil
}

func b2ComputeCentroid(vs []B2Vec2) (B2Vec2, error) {
	count := len(vs)
	var c B2Vec2
	area := 0.0

	// pRef is the reference point for forming triangles.
	// Its location doesn't change the result (except for rounding error).
	var pRef B2Vec2
	for _, v := range vs {
		pRef = B2Vec2Add(pRef, v)
	}
	pRef = B2Vec2MulScalar(1.0/float64(count), pRef)

	inv3 := 1.0 / 3.0
	for i := 0; i < count; i++ {
		// Triangle vertices.
		p1 := pRef
		p2 := vs[i]
		p3 := vs[(i+1)%count]

		e1 := B2Vec2Sub(p2, p1)
		e2 := B2Vec2Sub(p3, p1)
		triangleArea := 0.5 * B2Vec2Cross(e1, e2)
		area += triangleArea

		// Area weighted centroid
		c = B2Vec2MulAdd(c, triangleArea*inv3, B2Vec2Add(B2Vec2Add(p1, p2), p3))
	}

	if area <= B2_epsilon {
		return B2Vec2{}, errors.Wrapf(ErrDegeneratePolygon, "area %v", area)
	}
	return B2Vec2MulScalar(1.0/area, c), nil
}

/// Checks convexity: every vertex must be left of every edge.
func (poly B2PolygonShape) Validate() bool {
	for i := 0; i < poly.Count; i++ {
		i2 := (i + 1) % poly.Count
		p := poly.Vertices[i]
		e := B2Vec2Sub(poly.Vertices[i2], p)

		for j := 0; j < poly.Count; j++ {
			if j == i || j == i2 {
				continue
			}
			if B2Vec2Cross(e, B2Vec2Sub(poly.Vertices[j], p)) < 0.0 {
				return false
			}
		}
	}
	return true
}

var b2PolygonOps = b2ShapeOps{
	childCount: func(shape *B2Shape) int {
		return 1
	},

	testPoint: func(shape *B2Shape, xf B2Transform, p B2Vec2) bool {
		poly := &shape.Polygon
		pLocal := B2RotVec2MulT(xf.Q, B2Vec2Sub(p, xf.P))
		for i := 0; i < poly.Count; i++ {
			if B2Vec2Dot(poly.Normals[i], B2Vec2Sub(pLocal, poly.Vertices[i])) > 0.0 {
				return false
			}
		}
		return true
	},

	rayCast: func(shape *B2Shape, input B2RayCastInput, xf B2Transform, childIndex int) (B2RayCastOutput, bool) {
		var output B2RayCastOutput
		poly := &shape.Polygon

		// Put the ray into the polygon's frame of reference.
		p1 := B2RotVec2MulT(xf.Q, B2Vec2Sub(input.P1, xf.P))
		p2 := B2RotVec2MulT(xf.Q, B2Vec2Sub(input.P2, xf.P))
		d := B2Vec2Sub(p2, p1)

		lower := 0.0
		upper := input.MaxFraction
		index := -1

		for i := 0; i < poly.Count; i++ {
			// p = p1 + a * d
			// dot(normal, p - v) = 0
			// dot(normal, p1 - v) + a * dot(normal, d) = 0
			numerator := B2Vec2Dot(poly.Normals[i], B2Vec2Sub(poly.Vertices[i], p1))
			denominator := B2Vec2Dot(poly.Normals[i], d)

			if denominator == 0.0 {
				if numerator < 0.0 {
					return output, false
				}
			} else {
				// lower < numerator / denominator, where denominator < 0
				// Since denominator < 0, we have to flip the inequality:
				// lower < numerator / denominator <==> denominator * lower > numerator.
				if denominator < 0.0 && numerator < lower*denominator {
					// The segment enters this half-space.
					lower = numerator / denominator
					index = i
				} else if denominator > 0.0 && numerator < upper*denominator {
					// The segment exits this half-space.
					upper = numerator / denominator
				}
			}

			if upper < lower {
				return output, false
			}
		}

		if index >= 0 {
			output.Fraction = lower
			output.Normal = B2RotVec2Mul(xf.Q, poly.Normals[index])
			return output, true
		}
		return output, false
	},

	computeAABB: func(shape *B2Shape, xf B2Transform, childIndex int) B2AABB {
		poly := &shape.Polygon
		lower := B2TransformVec2Mul(xf, poly.Vertices[0])
		upper := lower
		for i := 1; i < poly.Count; i++ {
			v := B2TransformVec2Mul(xf, poly.Vertices[i])
			lower = B2Vec2Min(lower, v)
			upper = B2Vec2Max(upper, v)
		}
		return B2AABB{LowerBound: lower, UpperBound: upper}.Extended(shape.Radius)
	},

	// Polygon mass, centroid, and inertia.
	// Let rho be the polygon density in mass per unit area.
	// Then:
	// mass = rho * int(dA)
	// centroid.x = (1/mass) * rho * int(x * dA)
	// centroid.y = (1/mass) * rho * int(y * dA)
	// I = rho * int((x*x + y*y) * dA)
	//
	// The integrals are summed over triangles fanned from a reference point
	// inside the polygon, using the (u,v) parametrization of each triangle
	// with Jacobian D = cross(e1, e2).
	computeMass: func(shape *B2Shape, density float64) B2MassData {
		poly := &shape.Polygon
		B2Assert(poly.Count >= 3)

		var center B2Vec2
		area := 0.0
		I := 0.0

		// s is the reference point for forming triangles.
		var s B2Vec2
		for i := 0; i < poly.Count; i++ {
			s = B2Vec2Add(s, poly.Vertices[i])
		}
		s = B2Vec2MulScalar(1.0/float64(poly.Count), s)

		const kInv3 = 1.0 / 3.0

		for i := 0; i < poly.Count; i++ {
			// Triangle vertices.
			e1 := B2Vec2Sub(poly.Vertices[i], s)
			e2 := B2Vec2Sub(poly.Vertices[(i+1)%poly.Count], s)

			D := B2Vec2Cross(e1, e2)
			triangleArea := 0.5 * D
			area += triangleArea

			// Area weighted centroid
			center = B2Vec2MulAdd(center, triangleArea*kInv3, B2Vec2Add(e1, e2))

			intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
			inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y
			I += (0.25 * kInv3 * D) * (intx2 + inty2)
		}

		var massData B2MassData
		massData.Mass = density * area

		B2Assert(area > B2_epsilon)
		center = B2Vec2MulScalar(1.0/area, center)
		massData.Center = B2Vec2Add(center, s)

		// Inertia tensor relative to the local origin (point s).
		massData.I = density * I

		// Shift to center of mass then to original body origin.
		massData.I += massData.Mass * (B2Vec2Dot(massData.Center, massData.Center) - B2Vec2Dot(center, center))
		return massData
	},

	validate: func(shape *B2Shape) error {
		poly := &shape.Polygon
		if poly.Count < 3 || poly.Count > B2_maxPolygonVertices {
			return errors.Wrapf(ErrDegeneratePolygon, "%d vertices", poly.Count)
		}
		for i := 0; i < poly.Count; i++ {
			if !poly.Vertices[i].IsValid() {
				return errors.Wrapf(ErrInvalidShape, "vertex %d is %v", i, poly.Vertices[i])
			}
		}
		// Boxes with zero or negative extents enclose no area.
		if _, err := b2ComputeCentroid(poly.Vertices[:poly.Count]); err != nil {
			return err
		}
		if !poly.Validate() {
			return ErrNonConvexPolygon
		}
		for i := 0; i < poly.Count; i++ {
			edge := B2Vec2Sub(poly.Vertices[(i+1)%poly.Count], poly.Vertices[i])
			if B2Vec2Dot(B2Vec2CrossVectorScalar(edge, 1.0).Normalized(), poly.Normals[i]) < 1.0-B2_linearSlop {
				return errors.Wrapf(ErrInvalidShape, "normal %d does not face out of its edge", i)
			}
		}
		return nil
	},
}
