package box2d_test

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/kolombet/box2d"
	"github.com/pmezard/go-difflib/difflib"
)

// Builds the character collision scene: static ground made of edges, chains,
// tiles and loops with a handful of fixed rotation characters dropped on it.
func buildCharacterScene(t *testing.T, world *box2d.B2World) map[string]box2d.B2Body {
	t.Helper()

	characters := make(map[string]box2d.B2Body)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	static := func(bd box2d.B2BodyDef) box2d.B2Body {
		t.Helper()
		body, err := world.CreateBody(&bd)
		must(err)
		return body
	}

	// Ground body
	{
		ground := static(box2d.MakeB2BodyDef())
		_, err := ground.CreateFixtureFromShape(box2d.MakeB2EdgeShape(box2d.MakeB2Vec2(-20.0, 0.0), box2d.MakeB2Vec2(20.0, 0.0)), 0.0)
		must(err)
		characters["00_ground"] = ground
	}

	// Collinear edges with no adjacency information.
	// This shows the problematic case where a box shape can hit
	// an internal vertex.
	{
		ground := static(box2d.MakeB2BodyDef())
		for _, x := range []float64{-8.0, -6.0, -4.0} {
			_, err := ground.CreateFixtureFromShape(box2d.MakeB2EdgeShape(box2d.MakeB2Vec2(x, 1.0), box2d.MakeB2Vec2(x+2.0, 1.0)), 0.0)
			must(err)
		}
		characters["01_colinearground"] = ground
	}

	// Chain shape
	{
		bd := box2d.MakeB2BodyDef()
		bd.Angle = 0.25 * box2d.B2_pi
		ground := static(bd)

		shape, err := box2d.MakeB2ChainShape([]box2d.B2Vec2{
			{X: 5.0, Y: 7.0},
			{X: 6.0, Y: 8.0},
			{X: 7.0, Y: 8.0},
			{X: 8.0, Y: 7.0},
		})
		must(err)
		_, err = ground.CreateFixtureFromShape(shape, 0.0)
		must(err)
		characters["02_chainshape"] = ground
	}

	// Square tiles. This shows that adjacency shapes may
	// have non-smooth collision. There is no solution
	// to this problem.
	{
		ground := static(box2d.MakeB2BodyDef())
		for _, x := range []float64{4.0, 6.0, 8.0} {
			_, err := ground.CreateFixtureFromShape(box2d.MakeB2OrientedBoxShape(1.0, 1.0, box2d.MakeB2Vec2(x, 3.0), 0.0), 0.0)
			must(err)
		}
		characters["03_squaretiles"] = ground
	}

	// Square made from an edge loop. Collision should be smooth.
	{
		ground := static(box2d.MakeB2BodyDef())
		shape, err := box2d.MakeB2LoopShape([]box2d.B2Vec2{
			{X: -1.0, Y: 3.0},
			{X: 1.0, Y: 3.0},
			{X: 1.0, Y: 5.0},
			{X: -1.0, Y: 5.0},
		})
		must(err)
		_, err = ground.CreateFixtureFromShape(shape, 0.0)
		must(err)
		characters["04_edgeloopsquare"] = ground
	}

	// Edge loop. Collision should be smooth.
	{
		bd := box2d.MakeB2BodyDef()
		bd.Position.Set(-10.0, 4.0)
		ground := static(bd)

		shape, err := box2d.MakeB2LoopShape([]box2d.B2Vec2{
			{X: 0.0, Y: 0.0},
			{X: 6.0, Y: 0.0},
			{X: 6.0, Y: 2.0},
			{X: 4.0, Y: 1.0},
			{X: 2.0, Y: 2.0},
			{X: 0.0, Y: 2.0},
			{X: -2.0, Y: 2.0},
			{X: -4.0, Y: 3.0},
			{X: -6.0, Y: 2.0},
			{X: -6.0, Y: 0.0},
		})
		must(err)
		_, err = ground.CreateFixtureFromShape(shape, 0.0)
		must(err)
		characters["05_edgelooppoly"] = ground
	}

	character := func(name string, x, y float64, fixedRotation bool, shape box2d.B2Shape, friction float64) {
		t.Helper()

		bd := box2d.MakeB2BodyDef()
		bd.Position.Set(x, y)
		bd.Type = box2d.B2BodyType.B2_dynamicBody
		bd.FixedRotation = fixedRotation
		bd.AllowSleep = false

		body, err := world.CreateBody(&bd)
		must(err)

		fd := box2d.MakeB2FixtureDef(shape)
		fd.Density = 20.0
		fd.Friction = friction
		_, err = body.CreateFixture(&fd)
		must(err)
		characters[name] = body
	}

	character("06_squarecharacter1", -3.0, 8.0, true, box2d.MakeB2BoxShape(0.5, 0.5), 0.2)
	character("07_squarecharacter2", -5.0, 5.0, true, box2d.MakeB2BoxShape(0.25, 0.25), 0.2)

	// Hexagon character
	{
		angle := 0.0
		delta := box2d.B2_pi / 3.0
		vertices := make([]box2d.B2Vec2, 6)
		for i := range vertices {
			vertices[i].Set(0.5*math.Cos(angle), 0.5*math.Sin(angle))
			angle += delta
		}
		shape, err := box2d.MakeB2PolygonShape(vertices)
		must(err)
		character("08_hexagoncharacter", -5.0, 8.0, true, shape, 0.2)
	}

	character("09_circlecharacter1", 3.0, 5.0, true, box2d.MakeB2CircleShape(0.5), 0.2)
	character("10_circlecharacter2", -7.0, 6.0, false, box2d.MakeB2CircleShape(0.25), 1.0)

	return characters
}

func runCharacterScene(t *testing.T, configure func(world *box2d.B2World)) string {
	t.Helper()

	world := box2d.NewB2World(box2d.MakeB2Vec2(0.0, -10.0))
	if configure != nil {
		configure(world)
	}
	characters := buildCharacterScene(t, world)

	names := make([]string, 0, len(characters))
	for name := range characters {
		names = append(names, name)
	}
	sort.Strings(names)

	// Prepare for simulation. Typically we use a time step of 1/60 of a
	// second (60Hz) and 10 iterations. This provides a high quality simulation
	// in most game scenarios.
	timeStep := 1.0 / 60.0
	velocityIterations := 8
	positionIterations := 3

	var output strings.Builder
	for i := 0; i < 120; i++ {
		world.Step(timeStep, velocityIterations, positionIterations)

		for _, name := range names {
			position := characters[name].GetPosition()
			angle := characters[name].GetAngle()
			fmt.Fprintf(&output, "%v(%s): %.9f %.9f %.9f\n", i, name, position.X, position.Y, angle)
		}
	}

	var dump bytes.Buffer
	if err := world.Dump(&dump); err != nil {
		t.Fatal(err)
	}
	output.Write(dump.Bytes())

	return output.String()
}

func diffTrajectories(t *testing.T, expected, current string) {
	t.Helper()

	if expected == current {
		return
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(current),
		FromFile: "Expected",
		ToFile:   "Current",
		Context:  0,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	t.Fatalf("trajectories differ:\n%s", text)
}

func TestCharacterSceneIsDeterministic(t *testing.T) {
	first := runCharacterScene(t, nil)
	second := runCharacterScene(t, nil)
	diffTrajectories(t, first, second)
}

func TestParallelIslandsMatchSequential(t *testing.T) {
	sequential := runCharacterScene(t, nil)
	parallel := runCharacterScene(t, func(world *box2d.B2World) {
		world.SetParallelIslands(true)
	})
	diffTrajectories(t, sequential, parallel)
}

func TestCharacterSceneStaysAboveGround(t *testing.T) {
	world := box2d.NewB2World(box2d.MakeB2Vec2(0.0, -10.0))
	characters := buildCharacterScene(t, world)

	for i := 0; i < 300; i++ {
		world.Step(1.0/60.0, 8, 3)
	}

	for name, body := range characters {
		if body.GetType() != box2d.B2BodyType.B2_dynamicBody {
			continue
		}
		p := body.GetPosition()
		if !p.IsValid() {
			t.Fatalf("%s has an invalid position", name)
		}
		if p.Y < 0.0 {
			t.Errorf("%s fell through the ground: y=%v", name, p.Y)
		}
	}
}
