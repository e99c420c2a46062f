package box2d_test

import (
	"math"
	"testing"

	"github.com/kolombet/box2d"
	"github.com/pkg/errors"
)

func makeHangingRope(count int) box2d.B2RopeDef {
	def := box2d.MakeB2RopeDef()
	def.Gravity = box2d.MakeB2Vec2(0.0, -10.0)
	for i := 0; i < count; i++ {
		def.Vertices = append(def.Vertices, box2d.MakeB2Vec2(0.25*float64(i), 0.0))
		def.Masses = append(def.Masses, 1.0)
	}
	// Pin the first vertex.
	def.Masses[0] = 0.0
	return def
}

func TestRopeHangsFromPinnedEnd(t *testing.T) {
	def := makeHangingRope(20)
	def.Damping = 5.0
	rope, err := box2d.NewB2Rope(&def)
	if err != nil {
		t.Fatal(err)
	}
	if rope.GetVertexCount() != 20 {
		t.Fatalf("vertex count %d", rope.GetVertexCount())
	}

	for i := 0; i < 600; i++ {
		rope.Step(1.0/60.0, 8)
	}

	vs := rope.GetVertices()
	if vs[0] != box2d.MakeB2Vec2(0.0, 0.0) {
		t.Fatalf("pinned vertex moved to %v", vs[0])
	}

	// The free end settles below the pin and the segments barely stretch.
	last := vs[len(vs)-1]
	if last.Y > -4.5 || math.Abs(last.X) > 0.25 {
		t.Fatalf("rope end at %v did not hang down", last)
	}
	for i := 1; i < len(vs); i++ {
		if l := box2d.B2Vec2Distance(vs[i-1], vs[i]); math.Abs(l-0.25) > 0.05 {
			t.Fatalf("segment %d has length %v, want 0.25", i, l)
		}
	}
}

func TestRopeZeroStepIsNoop(t *testing.T) {
	def := makeHangingRope(4)
	rope, err := box2d.NewB2Rope(&def)
	if err != nil {
		t.Fatal(err)
	}
	before := append([]box2d.B2Vec2(nil), rope.GetVertices()...)

	rope.Step(0.0, 8)

	for i, v := range rope.GetVertices() {
		if v != before[i] {
			t.Fatalf("vertex %d moved on a zero step", i)
		}
	}
}

func TestRopeDefinitionValidation(t *testing.T) {
	def := makeHangingRope(2)
	if _, err := box2d.NewB2Rope(&def); errors.Cause(err) != box2d.ErrInvalidShape {
		t.Fatalf("two vertex rope returned %v", err)
	}

	def = makeHangingRope(5)
	def.Masses = def.Masses[:4]
	if _, err := box2d.NewB2Rope(&def); errors.Cause(err) != box2d.ErrInvalidShape {
		t.Fatalf("mass count mismatch returned %v", err)
	}

	def = makeHangingRope(5)
	def.Masses[2] = -1.0
	if _, err := box2d.NewB2Rope(&def); errors.Cause(err) != box2d.ErrInvalidDensity {
		t.Fatalf("negative mass returned %v", err)
	}

	def = makeHangingRope(5)
	def.K2 = 1.5
	if _, err := box2d.NewB2Rope(&def); errors.Cause(err) != box2d.ErrInvalidShape {
		t.Fatalf("stiffness 1.5 returned %v", err)
	}
}
