package box2d_test

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/kolombet/box2d"
	"github.com/pkg/errors"
)

const testTimeStep = 1.0 / 60.0

func newTestWorld(gravity box2d.B2Vec2) *box2d.B2World {
	return box2d.NewB2World(gravity)
}

func createGroundBox(t *testing.T, world *box2d.B2World) box2d.B2Body {
	t.Helper()
	bd := box2d.MakeB2BodyDef()
	bd.Position.Set(0.0, -1.0)
	ground, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ground.CreateFixtureFromShape(box2d.MakeB2BoxShape(50.0, 1.0), 0.0); err != nil {
		t.Fatal(err)
	}
	return ground
}

func createDynamic(t *testing.T, world *box2d.B2World, x, y float64, shape box2d.B2Shape) box2d.B2Body {
	t.Helper()
	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(x, y)
	body, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := body.CreateFixtureFromShape(shape, 1.0); err != nil {
		t.Fatal(err)
	}
	return body
}

func stepN(world *box2d.B2World, n int) {
	for i := 0; i < n; i++ {
		world.Step(testTimeStep, 8, 3)
	}
}

func TestFreeFallMatchesSemiImplicitEuler(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	body := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(0.5))

	stepN(world, 60)

	v := body.GetLinearVelocity()
	if math.Abs(v.Y+10.0) > 1e-9 || v.X != 0.0 {
		t.Fatalf("velocity after one second = %v, want (0, -10)", v)
	}

	// y = -g h^2 (1 + 2 + ... + 60)
	want := -10.0 * testTimeStep * testTimeStep * 60.0 * 61.0 / 2.0
	if y := body.GetPosition().Y; math.Abs(y-want) > 1e-9 {
		t.Fatalf("y after one second = %v, want %v", y, want)
	}
}

func TestBallSettlesOnGround(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createGroundBox(t, world)
	ball := createDynamic(t, world, 0.0, 4.0, box2d.MakeB2CircleShape(0.5))

	stepN(world, 300)

	if y := ball.GetPosition().Y; math.Abs(y-0.5) > 2.0*box2d.B2_linearSlop {
		t.Fatalf("ball rests at y=%v, want about 0.5", y)
	}
	if v := ball.GetLinearVelocity(); v.Length() > 0.01 {
		t.Fatalf("ball still moving: %v", v)
	}
	if p := ground.GetPosition(); p.X != 0.0 || p.Y != -1.0 || ground.GetAngle() != 0.0 {
		t.Fatalf("static ground moved to %v", p)
	}
	if ground.GetLinearVelocity() != (box2d.B2Vec2{}) {
		t.Fatalf("static ground has velocity %v", ground.GetLinearVelocity())
	}
}

func TestBodySleepsAndWakes(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	createGroundBox(t, world)
	box := createDynamic(t, world, 0.0, 0.5, box2d.MakeB2BoxShape(0.5, 0.5))

	slept := false
	for i := 0; i < 600 && !slept; i++ {
		world.Step(testTimeStep, 8, 3)
		slept = !box.IsAwake()
	}
	if !slept {
		t.Fatal("resting box never fell asleep")
	}
	if v := box.GetLinearVelocity(); v != (box2d.B2Vec2{}) {
		t.Fatalf("sleeping box has velocity %v", v)
	}

	box.ApplyLinearImpulse(box2d.MakeB2Vec2(0.0, 5.0), box.GetWorldCenter(), true)
	if !box.IsAwake() {
		t.Fatal("impulse with wake did not wake the box")
	}

	world.Step(testTimeStep, 8, 3)
	if box.GetPosition().Y <= 0.5 {
		t.Fatalf("woken box did not move up: y=%v", box.GetPosition().Y)
	}
}

func TestSleepingDisabledKeepsBodiesAwake(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	world.SetAllowSleeping(false)
	createGroundBox(t, world)
	box := createDynamic(t, world, 0.0, 0.5, box2d.MakeB2BoxShape(0.5, 0.5))

	stepN(world, 300)

	if !box.IsAwake() {
		t.Fatal("box fell asleep with sleeping disabled")
	}
}

func TestFastBodyDoesNotTunnelThroughWall(t *testing.T) {
	for _, bullet := range []bool{false, true} {
		world := newTestWorld(box2d.B2Vec2{})

		bd := box2d.MakeB2BodyDef()
		bd.Position.Set(10.0, 0.0)
		wall, err := world.CreateBody(&bd)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := wall.CreateFixtureFromShape(box2d.MakeB2BoxShape(0.1, 5.0), 0.0); err != nil {
			t.Fatal(err)
		}

		projectile := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(0.1))
		projectile.SetBullet(bullet)
		projectile.SetLinearVelocity(box2d.MakeB2Vec2(90.0, 0.0))

		stepN(world, 30)

		if x := projectile.GetPosition().X; x > 10.0 {
			t.Fatalf("bullet=%v: projectile tunneled to x=%v", bullet, x)
		}
	}
}

func TestContinuousPhysicsOffAllowsTunneling(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	world.SetContinuousPhysics(false)

	bd := box2d.MakeB2BodyDef()
	bd.Position.Set(10.0, 0.0)
	wall, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wall.CreateFixtureFromShape(box2d.MakeB2BoxShape(0.1, 5.0), 0.0); err != nil {
		t.Fatal(err)
	}

	projectile := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(0.1))
	projectile.SetLinearVelocity(box2d.MakeB2Vec2(90.0, 0.0))

	stepN(world, 30)

	if x := projectile.GetPosition().X; x < 10.0 {
		t.Fatalf("projectile stopped at x=%v without continuous collision", x)
	}
}

func TestRayCastAndQuery(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})

	near := createDynamic(t, world, 5.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))
	far := createDynamic(t, world, 10.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))
	// Prime the broad-phase.
	world.Step(testTimeStep, 8, 3)

	var closest box2d.B2Fixture
	var closestPoint box2d.B2Vec2
	world.RayCast(func(fixture box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) float64 {
		closest = fixture
		closestPoint = point
		return fraction
	}, box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(20.0, 0.0))

	if closest.GetBody() != near {
		t.Fatalf("closest hit is not the near box")
	}
	if math.Abs(closestPoint.X-4.5) > 1e-6 {
		t.Fatalf("hit point %v, want x=4.5", closestPoint)
	}

	hits := 0
	world.RayCast(func(fixture box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) float64 {
		hits++
		return 1.0
	}, box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(20.0, 0.0))
	if hits != 2 {
		t.Fatalf("ray cast without clipping hit %d fixtures, want 2", hits)
	}

	var found []box2d.B2Body
	world.QueryAABB(func(fixture box2d.B2Fixture) bool {
		found = append(found, fixture.GetBody())
		return true
	}, box2d.MakeB2AABB(box2d.MakeB2Vec2(9.0, -1.0), box2d.MakeB2Vec2(11.0, 1.0)))
	if len(found) != 1 || found[0] != far {
		t.Fatalf("query found %d bodies, want only the far box", len(found))
	}
}

func TestDestroyedHandlesGoStale(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	body := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(1.0))
	fixture := body.GetFixtures()[0]

	if err := world.DestroyBody(body); err != nil {
		t.Fatal(err)
	}

	if body.IsValid() || fixture.IsValid() {
		t.Fatal("handles still valid after destroy")
	}
	if body.GetPosition() != (box2d.B2Vec2{}) || body.GetMass() != 0.0 {
		t.Fatal("stale body handle returned live data")
	}
	body.SetLinearVelocity(box2d.MakeB2Vec2(1.0, 1.0))

	err := world.DestroyBody(body)
	if errors.Cause(err) != box2d.ErrStaleHandle {
		t.Fatalf("second destroy returned %v, want ErrStaleHandle", err)
	}
	if _, err := body.CreateFixtureFromShape(box2d.MakeB2CircleShape(1.0), 1.0); errors.Cause(err) != box2d.ErrStaleHandle {
		t.Fatalf("create fixture on stale body returned %v", err)
	}

	// The slot is reused but the old handle stays dead.
	reborn := createDynamic(t, world, 3.0, 0.0, box2d.MakeB2CircleShape(1.0))
	if body.IsValid() {
		t.Fatal("old handle revived by slot reuse")
	}
	if !reborn.IsValid() || reborn.GetPosition().X != 3.0 {
		t.Fatal("new body is not usable")
	}
	if world.GetBodyCount() != 1 {
		t.Fatalf("body count %d, want 1", world.GetBodyCount())
	}
}

func TestFixtureMassRoundTrip(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	body, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}

	fixture, err := body.CreateFixtureFromShape(box2d.MakeB2BoxShape(0.5, 0.5), 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if m := body.GetMass(); math.Abs(m-2.0) > 1e-12 {
		t.Fatalf("mass %v, want 2", m)
	}

	if _, err := body.CreateFixtureFromShape(box2d.MakeB2CircleShapeAt(box2d.MakeB2Vec2(2.0, 0.0), 0.5), 0.0); errors.Cause(err) != box2d.ErrInvalidDensity {
		t.Fatalf("solid zero density fixture on a dynamic body returned %v", err)
	}
	if err := fixture.SetDensity(0.0); errors.Cause(err) != box2d.ErrInvalidDensity {
		t.Fatalf("zeroing the density of a solid fixture returned %v", err)
	}

	sensor := box2d.MakeB2FixtureDef(box2d.MakeB2CircleShapeAt(box2d.MakeB2Vec2(2.0, 0.0), 0.5))
	sensor.IsSensor = true
	if _, err := body.CreateFixture(&sensor); err != nil {
		t.Fatal(err)
	}
	if m := body.GetMass(); math.Abs(m-2.0) > 1e-12 {
		t.Fatalf("massless sensor changed the mass to %v", m)
	}

	if err := body.DestroyFixture(fixture); err != nil {
		t.Fatal(err)
	}
	// A dynamic body without mass gets unit mass.
	if m := body.GetMass(); m != 1.0 {
		t.Fatalf("mass %v after removing the dense fixture, want 1", m)
	}
	if len(body.GetFixtures()) != 1 {
		t.Fatalf("%d fixtures left, want 1", len(body.GetFixtures()))
	}
}

func TestInvalidDefinitionsAreRejected(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})

	bd := box2d.MakeB2BodyDef()
	bd.Position.Set(math.NaN(), 0.0)
	if _, err := world.CreateBody(&bd); errors.Cause(err) != box2d.ErrInvalidBodyDef {
		t.Fatalf("NaN position returned %v", err)
	}

	bd = box2d.MakeB2BodyDef()
	body, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}

	fd := box2d.MakeB2FixtureDef(box2d.MakeB2CircleShape(1.0))
	fd.Density = -1.0
	if _, err := body.CreateFixture(&fd); errors.Cause(err) != box2d.ErrInvalidDensity {
		t.Fatalf("negative density returned %v", err)
	}

	fd = box2d.MakeB2FixtureDef(box2d.MakeB2CircleShape(1.0))
	fd.Friction = math.Inf(1)
	if _, err := body.CreateFixture(&fd); errors.Cause(err) != box2d.ErrInvalidFriction {
		t.Fatalf("infinite friction returned %v", err)
	}

	if len(body.GetFixtures()) != 0 {
		t.Fatal("rejected fixtures were attached")
	}

	fd = box2d.MakeB2FixtureDef(box2d.MakeB2CircleShape(1.0))
	fixture, err := body.CreateFixture(&fd)
	if err != nil {
		t.Fatal(err)
	}
	if err := fixture.SetFriction(-0.5); errors.Cause(err) != box2d.ErrInvalidFriction {
		t.Fatalf("negative friction returned %v", err)
	}
	if err := fixture.SetRestitution(math.NaN()); errors.Cause(err) != box2d.ErrInvalidRestitution {
		t.Fatalf("NaN restitution returned %v", err)
	}
	if fixture.GetFriction() != 0.2 || fixture.GetRestitution() != 0.0 {
		t.Fatal("rejected material values were stored")
	}
	if err := fixture.SetFriction(0.8); err != nil || fixture.GetFriction() != 0.8 {
		t.Fatalf("valid friction returned %v", err)
	}
}

func TestCollisionFilterGroups(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})

	shape := box2d.MakeB2CircleShape(1.0)
	create := func(x float64, group int16) box2d.B2Body {
		bd := box2d.MakeB2BodyDef()
		bd.Type = box2d.B2BodyType.B2_dynamicBody
		bd.Position.Set(x, 0.0)
		body, err := world.CreateBody(&bd)
		if err != nil {
			t.Fatal(err)
		}
		fd := box2d.MakeB2FixtureDef(shape)
		fd.Density = 1.0
		fd.Filter.GroupIndex = group
		if _, err := body.CreateFixture(&fd); err != nil {
			t.Fatal(err)
		}
		return body
	}

	a := create(0.0, -1)
	b := create(1.0, -1)

	stepN(world, 2)
	if world.GetContactCount() != 0 {
		t.Fatalf("bodies in a negative group have %d contacts", world.GetContactCount())
	}
	if a.GetPosition().X != 0.0 || b.GetPosition().X != 1.0 {
		t.Fatal("filtered bodies pushed each other")
	}

	// Moving one body into another group lets them collide.
	filter := b.GetFixtures()[0].GetFilterData()
	filter.GroupIndex = 0
	b.GetFixtures()[0].SetFilterData(filter)

	stepN(world, 2)
	if world.GetContactCount() != 1 {
		t.Fatalf("refiltered bodies have %d contacts, want 1", world.GetContactCount())
	}
	if a.GetPosition().X >= 0.0 || b.GetPosition().X <= 1.0 {
		t.Fatal("overlapping bodies were not separated")
	}
}

type touchCounter struct {
	box2d.B2ContactListenerAdapter
	begin, end, post int
}

func (l *touchCounter) BeginContact(contact box2d.B2Contact) { l.begin++ }
func (l *touchCounter) EndContact(contact box2d.B2Contact)   { l.end++ }
func (l *touchCounter) PostSolve(contact box2d.B2Contact, impulse *box2d.B2ContactImpulse) {
	l.post++
}

func TestSensorReportsContactWithoutResponse(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	listener := &touchCounter{}
	world.SetContactListener(listener)

	bd := box2d.MakeB2BodyDef()
	zone, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	fd := box2d.MakeB2FixtureDef(box2d.MakeB2BoxShape(2.0, 0.5))
	fd.IsSensor = true
	if _, err := zone.CreateFixture(&fd); err != nil {
		t.Fatal(err)
	}

	ball := createDynamic(t, world, 0.0, 3.0, box2d.MakeB2CircleShape(0.25))

	stepN(world, 120)

	if listener.begin != 1 || listener.end != 1 {
		t.Fatalf("sensor reported begin=%d end=%d, want 1 and 1", listener.begin, listener.end)
	}
	if listener.post != 0 {
		t.Fatalf("sensor contact was solved %d times", listener.post)
	}
	if ball.GetPosition().Y > -0.5 {
		t.Fatalf("ball stopped in the sensor at y=%v", ball.GetPosition().Y)
	}
}

type destroyOnTouch struct {
	box2d.B2ContactListenerAdapter
	t       *testing.T
	world   *box2d.B2World
	target  box2d.B2Body
	spawned box2d.B2Body
	calls   int
}

func (l *destroyOnTouch) BeginContact(contact box2d.B2Contact) {
	l.calls++
	if l.calls > 1 {
		return
	}
	if err := l.world.DestroyBody(l.target); err != nil {
		l.t.Errorf("destroy inside callback: %v", err)
	}
	if !l.target.IsValid() {
		l.t.Error("body destroyed before the step finished")
	}

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(0.0, 10.0)
	body, err := l.world.CreateBody(&bd)
	if err != nil {
		l.t.Errorf("create inside callback: %v", err)
		return
	}
	if _, err := body.CreateFixtureFromShape(box2d.MakeB2CircleShape(0.5), 1.0); err != nil {
		l.t.Errorf("create fixture inside callback: %v", err)
	}
	l.spawned = body
}

func TestCallbacksDeferWorldChanges(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	createGroundBox(t, world)
	ball := createDynamic(t, world, 0.0, 1.0, box2d.MakeB2CircleShape(0.5))

	listener := &destroyOnTouch{t: t, world: world, target: ball}
	world.SetContactListener(listener)

	for i := 0; i < 120 && listener.calls == 0; i++ {
		world.Step(testTimeStep, 8, 3)
	}
	if listener.calls == 0 {
		t.Fatal("ball never touched the ground")
	}

	if ball.IsValid() {
		t.Fatal("queued destroy was not applied after the step")
	}
	if !listener.spawned.IsValid() {
		t.Fatal("body created inside the callback is gone")
	}
	if world.GetBodyCount() != 2 {
		t.Fatalf("body count %d, want ground plus the spawned body", world.GetBodyCount())
	}

	// The spawned body joins the simulation on the next step.
	y := listener.spawned.GetPosition().Y
	stepN(world, 10)
	if listener.spawned.GetPosition().Y >= y {
		t.Fatal("spawned body is not simulated")
	}
}

type lockedMutator struct {
	box2d.B2ContactListenerAdapter
	world *box2d.B2World
	body  box2d.B2Body
	done  bool
}

func (l *lockedMutator) PreSolve(contact box2d.B2Contact, oldManifold box2d.B2Manifold) {
	if l.done {
		return
	}
	l.done = true
	l.body.SetTransform(box2d.MakeB2Vec2(100.0, 100.0), 0.0)
	l.world.Step(testTimeStep, 8, 3)
}

func TestLockedWorldRejectsStructuralChanges(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	var logs bytes.Buffer
	world.SetLogger(log.New(&logs, "", 0))

	createGroundBox(t, world)
	ball := createDynamic(t, world, 0.0, 0.5, box2d.MakeB2CircleShape(0.5))
	listener := &lockedMutator{world: world, body: ball}
	world.SetContactListener(listener)

	stepN(world, 10)

	if !listener.done {
		t.Fatal("PreSolve never ran")
	}
	if p := ball.GetPosition(); p.X > 1.0 || p.Y > 1.0 {
		t.Fatalf("SetTransform applied while locked: %v", p)
	}
	for _, name := range []string{"SetTransform ignored", "Step ignored"} {
		if !strings.Contains(logs.String(), name) {
			t.Errorf("log does not mention %q:\n%s", name, logs.String())
		}
	}
	if world.IsLocked() {
		t.Fatal("world still locked after the step")
	}
}

type goodbyeRecorder struct {
	fixtures int
	joints   int
}

func (r *goodbyeRecorder) SayGoodbyeToFixture(fixture box2d.B2Fixture) { r.fixtures++ }
func (r *goodbyeRecorder) SayGoodbyeToJoint(joint box2d.B2Joint)       { r.joints++ }

func TestDestroyBodyCascades(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	recorder := &goodbyeRecorder{}
	world.SetDestructionListener(recorder)

	a := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))
	if _, err := a.CreateFixtureFromShape(box2d.MakeB2CircleShapeAt(box2d.MakeB2Vec2(1.0, 0.0), 0.25), 1.0); err != nil {
		t.Fatal(err)
	}
	b := createDynamic(t, world, 0.8, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))

	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(a, b, box2d.MakeB2Vec2(0.5, 0.0))
	joint, err := world.CreateJoint(&jd)
	if err != nil {
		t.Fatal(err)
	}

	stepN(world, 1)

	if err := world.DestroyBody(a); err != nil {
		t.Fatal(err)
	}

	if recorder.fixtures != 2 || recorder.joints != 1 {
		t.Fatalf("goodbye fixtures=%d joints=%d, want 2 and 1", recorder.fixtures, recorder.joints)
	}
	if joint.IsValid() {
		t.Fatal("joint survived its body")
	}
	if len(b.GetJoints()) != 0 || len(b.GetContacts()) != 0 {
		t.Fatal("surviving body still references destroyed edges")
	}
	if world.GetJointCount() != 0 || world.GetContactCount() != 0 {
		t.Fatalf("joints=%d contacts=%d after destroy", world.GetJointCount(), world.GetContactCount())
	}
	if world.GetProxyCount() != 1 {
		t.Fatalf("proxy count %d, want 1", world.GetProxyCount())
	}
}

func TestShiftOrigin(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	body := createDynamic(t, world, 5.0, 5.0, box2d.MakeB2CircleShape(0.5))
	stepN(world, 1)

	world.ShiftOrigin(box2d.MakeB2Vec2(1.0, 2.0))

	if p := body.GetPosition(); p.X != 4.0 || p.Y != 3.0 {
		t.Fatalf("position after shift %v, want (4, 3)", p)
	}

	found := 0
	world.QueryAABB(func(fixture box2d.B2Fixture) bool {
		found++
		return true
	}, box2d.MakeB2AABB(box2d.MakeB2Vec2(3.9, 2.9), box2d.MakeB2Vec2(4.1, 3.1)))
	if found != 1 {
		t.Fatal("broad-phase was not shifted with the bodies")
	}
}

func TestZeroTimeStepDoesNotMoveBodies(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	body := createDynamic(t, world, 0.0, 3.0, box2d.MakeB2CircleShape(0.5))

	stepN(world, 0)
	world.Step(0.0, 8, 3)

	if p := body.GetPosition(); p.Y != 3.0 {
		t.Fatalf("zero step moved the body to %v", p)
	}
}

func TestStackSettlesWithWarmStarting(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	createGroundBox(t, world)

	var top box2d.B2Body
	for i := 0; i < 5; i++ {
		top = createDynamic(t, world, 0.0, 0.5+1.0*float64(i), box2d.MakeB2BoxShape(0.5, 0.5))
	}

	stepN(world, 300)

	p := top.GetPosition()
	if math.Abs(p.X) > 0.1 || math.Abs(p.Y-4.5) > 0.1 {
		t.Fatalf("top of the stack ended at %v", p)
	}
}

// Without warm starting a tall stack drifts sideways, so resting positions
// are compared on scenes with a single layer of contacts.
func TestRestingPositionsIndependentOfWarmStarting(t *testing.T) {
	scenes := []struct {
		name  string
		build func(world *box2d.B2World) []box2d.B2Body
	}{
		{"box", func(world *box2d.B2World) []box2d.B2Body {
			return []box2d.B2Body{createDynamic(t, world, 0.0, 2.0, box2d.MakeB2BoxShape(0.5, 0.5))}
		}},
		{"twoCircles", func(world *box2d.B2World) []box2d.B2Body {
			return []box2d.B2Body{
				createDynamic(t, world, -1.0, 3.0, box2d.MakeB2CircleShape(1.0)),
				createDynamic(t, world, 1.0, 3.0, box2d.MakeB2CircleShape(1.0)),
			}
		}},
	}

	for _, scene := range scenes {
		var rest [2][]box2d.B2Vec2
		for k, warm := range []bool{true, false} {
			world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
			world.SetWarmStarting(warm)
			createGroundBox(t, world)
			bodies := scene.build(world)

			stepN(world, 300)

			for _, b := range bodies {
				rest[k] = append(rest[k], b.GetPosition())
			}
		}

		for i := range rest[0] {
			if d := box2d.B2Vec2Distance(rest[0][i], rest[1][i]); d > 2.0*box2d.B2_linearSlop {
				t.Errorf("%s: body %d rests at %v with warm starting and %v without", scene.name, i, rest[0][i], rest[1][i])
			}
		}
	}
}

func TestTwoCirclesComeToRestWithoutOverlap(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	createGroundBox(t, world)
	left := createDynamic(t, world, -1.0, 3.0, box2d.MakeB2CircleShape(1.0))
	right := createDynamic(t, world, 1.0, 3.0, box2d.MakeB2CircleShape(1.0))

	stepN(world, 300)

	a, b := left.GetPosition(), right.GetPosition()
	if d := box2d.B2Vec2Distance(a, b); d < 2.0-2.0*box2d.B2_linearSlop {
		t.Fatalf("circles overlap: centers %v apart", d)
	}
	for _, p := range []box2d.B2Vec2{a, b} {
		if math.Abs(p.Y-1.0) > 2.0*box2d.B2_linearSlop {
			t.Fatalf("circle rests at %v, want y=1", p)
		}
	}
	for _, b := range []box2d.B2Body{left, right} {
		if v := b.GetLinearVelocity().Length(); v > 0.05 {
			t.Fatalf("circle still moving at %v", v)
		}
	}
}

func TestSubSteppingStopsBullets(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	world.SetSubStepping(true)
	createGroundBox(t, world)

	var bullets []box2d.B2Body
	for i := 0; i < 3; i++ {
		b := createDynamic(t, world, float64(i)*2.0-2.0, 5.0, box2d.MakeB2CircleShape(0.2))
		b.SetBullet(true)
		b.SetLinearVelocity(box2d.MakeB2Vec2(0.0, -120.0))
		bullets = append(bullets, b)
	}

	for i := 0; i < 300; i++ {
		world.Step(testTimeStep, 8, 3)
		for _, b := range bullets {
			if y := b.GetPosition().Y; y < 0.0 {
				t.Fatalf("step %d: bullet went through the ground to %v", i, y)
			}
		}
	}

	for _, b := range bullets {
		if y := b.GetPosition().Y; math.Abs(y-0.2) > 0.02 {
			t.Fatalf("sub-stepped bullet rests at %v, want 0.2", y)
		}
	}
}

func TestStaticBodyIgnoresVelocityAndImpulses(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createGroundBox(t, world)
	start := ground.GetPosition()

	ground.SetLinearVelocity(box2d.MakeB2Vec2(3.0, 4.0))
	ground.SetAngularVelocity(2.0)
	ground.ApplyLinearImpulseToCenter(box2d.MakeB2Vec2(100.0, 0.0), true)
	ground.ApplyAngularImpulse(50.0, true)
	ground.ApplyForceToCenter(box2d.MakeB2Vec2(0.0, 1000.0), true)
	ground.ApplyTorque(10.0, true)

	stepN(world, 10)

	if v := ground.GetLinearVelocity(); v != (box2d.B2Vec2{}) {
		t.Fatalf("static body velocity %v", v)
	}
	if w := ground.GetAngularVelocity(); w != 0.0 {
		t.Fatalf("static body angular velocity %v", w)
	}
	if p := ground.GetPosition(); p != start || ground.GetAngle() != 0.0 {
		t.Fatalf("static body moved to %v", p)
	}
}

func TestDestroyedWorldKeepsOldHandlesStale(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	createGroundBox(t, world)
	old := createDynamic(t, world, 0.0, 2.0, box2d.MakeB2CircleShape(0.5))
	fixture := old.GetFixtures()[0]

	world.Destroy()
	if old.IsValid() || world.GetBodyCount() != 0 {
		t.Fatal("destroy left bodies behind")
	}

	// The refilled world reuses the freed slots under new revisions.
	createGroundBox(t, world)
	fresh := createDynamic(t, world, 0.0, 2.0, box2d.MakeB2CircleShape(0.5))
	if old.IsValid() || fixture.GetBody().IsValid() {
		t.Fatal("handle from before the destroy resolves to a new record")
	}
	if old.GetPosition() != (box2d.B2Vec2{}) {
		t.Fatalf("stale handle reads position %v", old.GetPosition())
	}

	stepN(world, 60)
	if fresh.GetPosition().Y >= 2.0 {
		t.Fatal("refilled world does not simulate")
	}
}
