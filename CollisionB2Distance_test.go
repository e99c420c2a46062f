package box2d_test

import (
	"math"
	"testing"

	"github.com/kolombet/box2d"
)

func translation(x, y float64) box2d.B2Transform {
	return box2d.MakeB2TransformByPositionAndRotation(box2d.MakeB2Vec2(x, y), box2d.MakeB2RotFromAngle(0.0))
}

func TestDistanceBetweenBoxes(t *testing.T) {
	box := box2d.MakeB2BoxShape(0.5, 0.5)

	var input box2d.B2DistanceInput
	input.ProxyA.Set(&box, 0)
	input.ProxyB.Set(&box, 0)
	input.TransformA = translation(0.0, 0.0)
	input.TransformB = translation(3.0, 0.25)

	var cache box2d.B2SimplexCache
	output := box2d.B2Distance(&cache, &input)

	if math.Abs(output.Distance-2.0) > 1e-9 {
		t.Fatalf("distance %v, want 2", output.Distance)
	}
	if math.Abs(output.PointA.X-0.5) > 1e-9 || math.Abs(output.PointB.X-2.5) > 1e-9 {
		t.Fatalf("witness points %v %v", output.PointA, output.PointB)
	}

	// A warm cache gives the same answer.
	again := box2d.B2Distance(&cache, &input)
	if math.Abs(again.Distance-output.Distance) > 1e-12 {
		t.Fatalf("cached distance %v differs from %v", again.Distance, output.Distance)
	}

	input.UseRadii = true
	output = box2d.B2Distance(&box2d.B2SimplexCache{}, &input)
	if want := 2.0 - 2.0*box2d.B2_polygonRadius; math.Abs(output.Distance-want) > 1e-9 {
		t.Fatalf("distance with radii %v, want %v", output.Distance, want)
	}
}

func TestDistanceOfOverlappingShapesIsZero(t *testing.T) {
	circle := box2d.MakeB2CircleShape(1.0)

	var input box2d.B2DistanceInput
	input.ProxyA.Set(&circle, 0)
	input.ProxyB.Set(&circle, 0)
	input.TransformA = translation(0.0, 0.0)
	input.TransformB = translation(1.0, 0.0)
	input.UseRadii = true

	output := box2d.B2Distance(&box2d.B2SimplexCache{}, &input)
	if output.Distance != 0.0 {
		t.Fatalf("overlapping circles are %v apart", output.Distance)
	}
}

func TestTimeOfImpactCircleHitsBox(t *testing.T) {
	box := box2d.MakeB2BoxShape(0.5, 0.5)
	circle := box2d.MakeB2CircleShape(0.5)

	var input box2d.B2TOIInput
	input.ProxyA.Set(&box, 0)
	input.ProxyB.Set(&circle, 0)
	input.SweepB = box2d.B2Sweep{C0: box2d.MakeB2Vec2(-5.0, 0.0), C: box2d.MakeB2Vec2(5.0, 0.0)}
	input.TMax = 1.0

	output := box2d.B2TimeOfImpact(&input)
	if output.State != box2d.B2TOIOutput_State.E_touching {
		t.Fatalf("state %d, want touching", output.State)
	}

	// The circle stops just short of the box, inside the slop band.
	target := math.Max(box2d.B2_linearSlop, box.Radius+circle.Radius-3.0*box2d.B2_linearSlop)
	want := (-0.5 - target + 5.0) / 10.0
	if math.Abs(output.T-want) > box2d.B2_linearSlop/10.0 {
		t.Fatalf("impact time %v, want %v", output.T, want)
	}
}

func TestTimeOfImpactMiss(t *testing.T) {
	box := box2d.MakeB2BoxShape(0.5, 0.5)
	circle := box2d.MakeB2CircleShape(0.5)

	var input box2d.B2TOIInput
	input.ProxyA.Set(&box, 0)
	input.ProxyB.Set(&circle, 0)
	input.SweepB = box2d.B2Sweep{C0: box2d.MakeB2Vec2(-5.0, 3.0), C: box2d.MakeB2Vec2(5.0, 3.0)}
	input.TMax = 1.0

	output := box2d.B2TimeOfImpact(&input)
	if output.State != box2d.B2TOIOutput_State.E_separated || output.T != 1.0 {
		t.Fatalf("state %d at %v, want separated at 1", output.State, output.T)
	}
}

func TestTimeOfImpactInitiallyOverlapped(t *testing.T) {
	box := box2d.MakeB2BoxShape(0.5, 0.5)

	var input box2d.B2TOIInput
	input.ProxyA.Set(&box, 0)
	input.ProxyB.Set(&box, 0)
	input.SweepB = box2d.B2Sweep{C0: box2d.MakeB2Vec2(0.2, 0.0), C: box2d.MakeB2Vec2(5.0, 0.0)}
	input.TMax = 1.0

	output := box2d.B2TimeOfImpact(&input)
	if output.State != box2d.B2TOIOutput_State.E_overlapped || output.T != 0.0 {
		t.Fatalf("state %d at %v, want overlapped at 0", output.State, output.T)
	}
}

func TestDistanceOfOverlappingBoxesFillsSimplex(t *testing.T) {
	box := box2d.MakeB2BoxShape(0.5, 0.5)

	var input box2d.B2DistanceInput
	input.ProxyA.Set(&box, 0)
	input.ProxyB.Set(&box, 0)
	input.TransformA = translation(0.0, 0.0)
	input.TransformB = translation(0.2, 0.0)

	var cache box2d.B2SimplexCache
	output := box2d.B2Distance(&cache, &input)
	if cache.Count != 3 {
		t.Fatalf("simplex has %d vertices, want 3", cache.Count)
	}
	if output.Distance > 10.0*box2d.B2_epsilon {
		t.Fatalf("overlapping boxes are %v apart", output.Distance)
	}
}
