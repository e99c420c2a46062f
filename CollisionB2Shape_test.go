package box2d_test

import (
	"math"
	"testing"

	"github.com/kolombet/box2d"
	"github.com/pkg/errors"
)

func TestShapeMass(t *testing.T) {
	box := box2d.MakeB2BoxShape(1.0, 0.5)
	md := box.ComputeMass(2.0)
	if math.Abs(md.Mass-4.0) > 1e-9 {
		t.Fatalf("box mass %v, want 4", md.Mass)
	}
	if md.Center.Length() > 1e-9 {
		t.Fatalf("box centroid %v", md.Center)
	}
	if want := 4.0 * (4.0 + 1.0) / 12.0; math.Abs(md.I-want) > 1e-9 {
		t.Fatalf("box inertia %v, want %v", md.I, want)
	}

	circle := box2d.MakeB2CircleShapeAt(box2d.MakeB2Vec2(1.0, 0.0), 1.0)
	md = circle.ComputeMass(1.0)
	if math.Abs(md.Mass-math.Pi) > 1e-9 {
		t.Fatalf("circle mass %v", md.Mass)
	}
	if want := math.Pi * (0.5 + 1.0); math.Abs(md.I-want) > 1e-9 {
		t.Fatalf("circle inertia about the origin %v, want %v", md.I, want)
	}

	edge := box2d.MakeB2EdgeShape(box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(1.0, 0.0))
	if md := edge.ComputeMass(1.0); md.Mass != 0.0 {
		t.Fatalf("edge has mass %v", md.Mass)
	}

	capsule, err := box2d.MakeB2CapsuleShape(box2d.MakeB2Vec2(-1.0, 0.0), box2d.MakeB2Vec2(1.0, 0.0), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	md = capsule.ComputeMass(1.0)
	if want := 2.0*1.0 + math.Pi*0.25; math.Abs(md.Mass-want) > 1e-9 {
		t.Fatalf("capsule mass %v, want %v", md.Mass, want)
	}
}

func TestPolygonHull(t *testing.T) {
	// Scrambled corners of a unit square.
	poly, err := box2d.MakeB2PolygonShape([]box2d.B2Vec2{
		{X: 1.0, Y: 1.0},
		{X: 0.0, Y: 0.0},
		{X: 1.0, Y: 0.0},
		{X: 0.0, Y: 1.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if poly.Polygon.Count != 4 {
		t.Fatalf("hull has %d vertices", poly.Polygon.Count)
	}
	if err := poly.Validate(); err != nil {
		t.Fatalf("hull is not convex: %v", err)
	}
	if c := poly.Polygon.Centroid; math.Abs(c.X-0.5) > 1e-9 || math.Abs(c.Y-0.5) > 1e-9 {
		t.Fatalf("centroid %v", c)
	}

	xf := box2d.MakeB2Transform()
	if !poly.TestPoint(xf, box2d.MakeB2Vec2(0.5, 0.5)) || poly.TestPoint(xf, box2d.MakeB2Vec2(1.5, 0.5)) {
		t.Fatal("point containment is wrong")
	}
}

func TestPolygonErrors(t *testing.T) {
	cases := []struct {
		name   string
		points []box2d.B2Vec2
		want   error
	}{
		{"collinear", []box2d.B2Vec2{{X: 0.0}, {X: 1.0}, {X: 2.0}}, box2d.ErrDegeneratePolygon},
		{"welded", []box2d.B2Vec2{{X: 0.0}, {X: 0.001}, {X: 0.0, Y: 0.001}}, box2d.ErrDegeneratePolygon},
		{"concave", []box2d.B2Vec2{{X: 0.0, Y: 0.0}, {X: 2.0, Y: 0.0}, {X: 1.0, Y: 0.5}, {X: 2.0, Y: 2.0}, {X: 0.0, Y: 2.0}}, box2d.ErrNonConvexPolygon},
		{"tooMany", make([]box2d.B2Vec2, box2d.B2_maxPolygonVertices+1), box2d.ErrTooManyVertices},
	}

	for _, c := range cases {
		if _, err := box2d.MakeB2PolygonShape(c.points); errors.Cause(err) != c.want {
			t.Errorf("%s: got %v, want %v", c.name, err, c.want)
		}
	}
}

func TestBoxExtentsMustBePositive(t *testing.T) {
	cases := []struct {
		name   string
		hx, hy float64
	}{
		{"zeroWidth", 0.0, 1.0},
		{"negativeHeight", 1.0, -0.5},
		{"bothNegative", -1.0, -1.0},
		{"nan", math.NaN(), 1.0},
	}

	for _, c := range cases {
		box := box2d.MakeB2BoxShape(c.hx, c.hy)
		if err := box.Validate(); err == nil {
			t.Errorf("%s: box %v x %v was accepted", c.name, c.hx, c.hy)
		}
	}

	box := box2d.MakeB2BoxShape(1.0, 0.5)
	if err := box.Validate(); err != nil {
		t.Fatal(err)
	}
	oriented := box2d.MakeB2OrientedBoxShape(1.0, 0.5, box2d.MakeB2Vec2(2.0, 1.0), 0.7)
	if err := oriented.Validate(); err != nil {
		t.Fatal(err)
	}

	world := box2d.NewB2World(box2d.B2Vec2{})
	bd := box2d.MakeB2BodyDef()
	body, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := body.CreateFixtureFromShape(box2d.MakeB2BoxShape(0.0, 0.0), 0.0); errors.Cause(err) != box2d.ErrDegeneratePolygon {
		t.Fatalf("empty box fixture returned %v", err)
	}
}

func TestChainShapes(t *testing.T) {
	square := []box2d.B2Vec2{{X: 0.0, Y: 0.0}, {X: 1.0, Y: 0.0}, {X: 1.0, Y: 1.0}, {X: 0.0, Y: 1.0}}

	loop, err := box2d.MakeB2LoopShape(square)
	if err != nil {
		t.Fatal(err)
	}
	if n := loop.GetChildCount(); n != 4 {
		t.Fatalf("loop has %d children, want 4", n)
	}
	closing := loop.GetChildEdge(3)
	if closing.Edge.Vertex1 != square[3] || closing.Edge.Vertex2 != square[0] {
		t.Fatalf("closing edge %v -> %v", closing.Edge.Vertex1, closing.Edge.Vertex2)
	}
	if !closing.Edge.HasVertex0 || !closing.Edge.HasVertex3 {
		t.Fatal("loop edges must have both ghost vertices")
	}

	chain, err := box2d.MakeB2ChainShape(square)
	if err != nil {
		t.Fatal(err)
	}
	if n := chain.GetChildCount(); n != 3 {
		t.Fatalf("chain has %d children, want 3", n)
	}
	if first := chain.GetChildEdge(0); first.Edge.HasVertex0 || !first.Edge.HasVertex3 {
		t.Fatal("open chain start has the wrong ghost vertices")
	}

	if _, err := box2d.MakeB2ChainShape([]box2d.B2Vec2{{X: 0.0}, {X: 0.001}}); errors.Cause(err) != box2d.ErrInvalidChain {
		t.Fatalf("near duplicate vertices returned %v", err)
	}
	if _, err := box2d.MakeB2LoopShape(square[:2]); errors.Cause(err) != box2d.ErrInvalidChain {
		t.Fatalf("two vertex loop returned %v", err)
	}
}

func TestShapeCloneIsDeep(t *testing.T) {
	chain, err := box2d.MakeB2ChainShape([]box2d.B2Vec2{{X: 0.0}, {X: 1.0}, {X: 2.0, Y: 1.0}})
	if err != nil {
		t.Fatal(err)
	}

	clone := chain.Clone()
	clone.Chain.Vertices[0] = box2d.MakeB2Vec2(-5.0, -5.0)

	if chain.Chain.Vertices[0] != (box2d.B2Vec2{}) {
		t.Fatal("clone shares chain vertices with the original")
	}
	if clone.GetChildCount() != chain.GetChildCount() || clone.Radius != chain.Radius {
		t.Fatal("clone lost data")
	}
}

func TestShapeRayCast(t *testing.T) {
	circle := box2d.MakeB2CircleShape(1.0)
	input := box2d.B2RayCastInput{P1: box2d.MakeB2Vec2(-5.0, 0.0), P2: box2d.MakeB2Vec2(5.0, 0.0), MaxFraction: 1.0}

	output, hit := circle.RayCast(input, box2d.MakeB2Transform(), 0)
	if !hit {
		t.Fatal("ray missed the circle")
	}
	if math.Abs(output.Fraction-0.4) > 1e-9 || output.Normal != box2d.MakeB2Vec2(-1.0, 0.0) {
		t.Fatalf("hit at %v with normal %v", output.Fraction, output.Normal)
	}

	input.MaxFraction = 0.3
	if _, hit := circle.RayCast(input, box2d.MakeB2Transform(), 0); hit {
		t.Fatal("ray hit beyond its max fraction")
	}

	box := box2d.MakeB2BoxShape(0.5, 0.5)
	xf := box2d.MakeB2TransformByPositionAndRotation(box2d.MakeB2Vec2(0.0, 3.0), box2d.MakeB2RotFromAngle(0.0))
	input = box2d.B2RayCastInput{P1: box2d.MakeB2Vec2(0.0, 0.0), P2: box2d.MakeB2Vec2(0.0, 10.0), MaxFraction: 1.0}
	output, hit = box.RayCast(input, xf, 0)
	if !hit || math.Abs(output.Fraction-0.25) > 1e-9 {
		t.Fatalf("box hit=%v fraction=%v, want 0.25", hit, output.Fraction)
	}
}

func TestShapeAABB(t *testing.T) {
	box := box2d.MakeB2OrientedBoxShape(1.0, 0.5, box2d.MakeB2Vec2(2.0, 0.0), 0.0)
	aabb := box.ComputeAABB(box2d.MakeB2Transform(), 0)

	r := box2d.B2_polygonRadius
	if math.Abs(aabb.LowerBound.X-(1.0-r)) > 1e-9 || math.Abs(aabb.UpperBound.Y-(0.5+r)) > 1e-9 {
		t.Fatalf("aabb %v", aabb)
	}
}
