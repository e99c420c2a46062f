package box2d_test

import (
	"math"
	"testing"

	"github.com/kolombet/box2d"
)

func TestCollideCircles(t *testing.T) {
	a := box2d.MakeB2CircleShape(1.0)
	b := box2d.MakeB2CircleShape(1.0)

	var manifold box2d.B2Manifold
	box2d.B2CollideCircles(&manifold, &a, translation(0.0, 0.0), &b, translation(1.5, 0.0))
	if manifold.PointCount != 1 || manifold.Type != box2d.B2Manifold_Type.E_circles {
		t.Fatalf("manifold %+v", manifold)
	}

	var wm box2d.B2WorldManifold
	wm.Initialize(&manifold, translation(0.0, 0.0), a.Radius, translation(1.5, 0.0), b.Radius)
	if math.Abs(wm.Normal.X-1.0) > 1e-9 || math.Abs(wm.Separations[0]+0.5) > 1e-9 {
		t.Fatalf("normal %v separation %v", wm.Normal, wm.Separations[0])
	}

	box2d.B2CollideCircles(&manifold, &a, translation(0.0, 0.0), &b, translation(2.5, 0.0))
	if manifold.PointCount != 0 {
		t.Fatal("separated circles produced contact points")
	}
}

func TestCollidePolygonsStackedBoxes(t *testing.T) {
	box := box2d.MakeB2BoxShape(1.0, 1.0)

	var manifold box2d.B2Manifold
	box2d.B2CollidePolygons(&manifold, &box, translation(0.0, 0.0), &box, translation(0.5, 1.95))
	if manifold.PointCount != 2 {
		t.Fatalf("resting boxes have %d points, want 2", manifold.PointCount)
	}

	var wm box2d.B2WorldManifold
	wm.Initialize(&manifold, translation(0.0, 0.0), box.Radius, translation(0.5, 1.95), box.Radius)
	if math.Abs(wm.Normal.Y-1.0) > 1e-9 {
		t.Fatalf("normal %v, want up", wm.Normal)
	}
	for i := 0; i < manifold.PointCount; i++ {
		if wm.Separations[i] > 0.0 {
			t.Fatalf("point %d separation %v, want overlap", i, wm.Separations[i])
		}
	}

	// The same configuration a moment later keeps its feature ids.
	var next box2d.B2Manifold
	box2d.B2CollidePolygons(&next, &box, translation(0.0, 0.0), &box, translation(0.5, 1.96))
	state1, state2 := box2d.B2GetPointStates(&manifold, &next)
	for i := 0; i < 2; i++ {
		if state1[i] != box2d.B2_persistState || state2[i] != box2d.B2_persistState {
			t.Fatalf("point %d states %v -> %v, want persist", i, state1[i], state2[i])
		}
	}

	// Moving apart removes both points.
	var apart box2d.B2Manifold
	box2d.B2CollidePolygons(&apart, &box, translation(0.0, 0.0), &box, translation(0.5, 3.0))
	state1, _ = box2d.B2GetPointStates(&manifold, &apart)
	if state1[0] != box2d.B2_removeState || state1[1] != box2d.B2_removeState {
		t.Fatalf("states %v, want remove", state1)
	}
}

func TestCollideEdgeAndCircle(t *testing.T) {
	edge := box2d.MakeB2EdgeShape(box2d.MakeB2Vec2(-2.0, 0.0), box2d.MakeB2Vec2(2.0, 0.0))
	circle := box2d.MakeB2CircleShape(0.5)

	var manifold box2d.B2Manifold
	box2d.B2CollideEdgeAndCircle(&manifold, &edge, translation(0.0, 0.0), &circle, translation(1.0, 0.4))
	if manifold.PointCount != 1 {
		t.Fatalf("circle on edge has %d points", manifold.PointCount)
	}

	box2d.B2CollideEdgeAndCircle(&manifold, &edge, translation(0.0, 0.0), &circle, translation(3.0, 0.4))
	if manifold.PointCount != 0 {
		t.Fatal("circle past the end of the edge touched it")
	}
}

func TestCollideCapsules(t *testing.T) {
	capsule, err := box2d.MakeB2CapsuleShape(box2d.MakeB2Vec2(-1.0, 0.0), box2d.MakeB2Vec2(1.0, 0.0), 0.25)
	if err != nil {
		t.Fatal(err)
	}

	var manifold box2d.B2Manifold
	box2d.B2CollideCapsules(&manifold, &capsule, translation(0.0, 0.0), &capsule, translation(0.5, 0.45))
	if manifold.PointCount != 2 {
		t.Fatalf("parallel capsules have %d points, want 2", manifold.PointCount)
	}

	box2d.B2CollideCapsules(&manifold, &capsule, translation(0.0, 0.0), &capsule, translation(0.0, 1.0))
	if manifold.PointCount != 0 {
		t.Fatal("separated capsules touched")
	}
}

func TestOverlapShapes(t *testing.T) {
	box := box2d.MakeB2BoxShape(0.5, 0.5)
	circle := box2d.MakeB2CircleShape(0.5)

	if !box2d.B2TestOverlapShapes(&box, 0, &circle, 0, translation(0.0, 0.0), translation(0.9, 0.0)) {
		t.Fatal("overlapping shapes reported apart")
	}
	if box2d.B2TestOverlapShapes(&box, 0, &circle, 0, translation(0.0, 0.0), translation(1.5, 0.0)) {
		t.Fatal("separated shapes reported overlapping")
	}
}

func TestAABBOperations(t *testing.T) {
	a := box2d.MakeB2AABB(box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(1.0, 1.0))
	b := box2d.MakeB2AABB(box2d.MakeB2Vec2(2.0, -1.0), box2d.MakeB2Vec2(3.0, 0.5))

	if box2d.B2TestOverlapBoundingBoxes(a, b) {
		t.Fatal("disjoint boxes overlap")
	}

	c := box2d.B2AABBCombine(a, b)
	if c.LowerBound != box2d.MakeB2Vec2(0.0, -1.0) || c.UpperBound != box2d.MakeB2Vec2(3.0, 1.0) {
		t.Fatalf("combined %v", c)
	}
	if !c.Contains(a) || !c.Contains(b) {
		t.Fatal("combined box does not contain its parts")
	}
}
