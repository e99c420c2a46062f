package box2d_test

import (
	"math"
	"testing"

	"github.com/kolombet/box2d"
	"github.com/pkg/errors"
)

func createStatic(t *testing.T, world *box2d.B2World) box2d.B2Body {
	t.Helper()
	bd := box2d.MakeB2BodyDef()
	ground, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	return ground
}

func createJoint(t *testing.T, world *box2d.B2World, def box2d.B2JointDefInterface) box2d.B2Joint {
	t.Helper()
	joint, err := world.CreateJoint(def)
	if err != nil {
		t.Fatal(err)
	}
	return joint
}

func TestRevoluteJointKeepsAnchorsTogether(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createStatic(t, world)
	bob := createDynamic(t, world, 2.0, 0.0, box2d.MakeB2CircleShape(0.25))

	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(ground, bob, box2d.MakeB2Vec2(0.0, 0.0))
	joint := createJoint(t, world, &jd)

	for i := 0; i < 120; i++ {
		world.Step(testTimeStep, 8, 3)
		if d := box2d.B2Vec2Distance(joint.GetAnchorA(), joint.GetAnchorB()); d > 0.01 {
			t.Fatalf("step %d: anchors drifted %v apart", i, d)
		}
	}

	if r := bob.GetPosition().Length(); math.Abs(r-2.0) > 0.01 {
		t.Fatalf("pendulum radius %v, want 2", r)
	}
	if bob.GetPosition().Y >= 0.0 {
		t.Fatal("pendulum did not swing down")
	}
}

func TestRevoluteJointLimitAndMotor(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	ground := createStatic(t, world)
	wheel := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2BoxShape(1.0, 0.1))

	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(ground, wheel, box2d.MakeB2Vec2(0.0, 0.0))
	jd.EnableMotor = true
	jd.MotorSpeed = 2.0
	jd.MaxMotorTorque = 100.0
	jd.EnableLimit = true
	jd.LowerAngle = -0.5
	jd.UpperAngle = 0.5
	joint, ok := createJoint(t, world, &jd).AsRevoluteJoint()
	if !ok {
		t.Fatal("not a revolute joint")
	}

	stepN(world, 120)

	// The position solve leaves the limit within the angular slop.
	if angle := joint.GetJointAngle(); math.Abs(angle-0.5) > box2d.B2_angularSlop {
		t.Fatalf("motor against the limit settled at %v, want 0.5", angle)
	}

	if err := joint.SetLimits(1.0, -1.0); errors.Cause(err) != box2d.ErrInvalidJoint {
		t.Fatalf("inverted limits returned %v", err)
	}
}

func TestDistanceJointHoldsLength(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createStatic(t, world)
	bob := createDynamic(t, world, 0.0, -2.0, box2d.MakeB2CircleShape(0.25))
	bob.SetLinearVelocity(box2d.MakeB2Vec2(5.0, 0.0))

	jd := box2d.MakeB2DistanceJointDef()
	jd.Initialize(ground, bob, box2d.MakeB2Vec2(0.0, 0.0), bob.GetPosition())
	joint, _ := createJoint(t, world, &jd).AsDistanceJoint()

	if joint.GetLength() != 2.0 {
		t.Fatalf("initialized length %v, want 2", joint.GetLength())
	}

	stepN(world, 120)

	if r := bob.GetPosition().Length(); math.Abs(r-2.0) > 0.01 {
		t.Fatalf("distance %v, want 2", r)
	}
}

func TestPrismaticJointStaysOnAxis(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createStatic(t, world)
	slider := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))
	slider.SetLinearVelocity(box2d.MakeB2Vec2(5.0, 0.0))

	jd := box2d.MakeB2PrismaticJointDef()
	jd.Initialize(ground, slider, box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(1.0, 0.0))
	jd.EnableLimit = true
	jd.LowerTranslation = 0.0
	jd.UpperTranslation = 1.0
	joint, _ := createJoint(t, world, &jd).AsPrismaticJoint()

	stepN(world, 60)

	p := slider.GetPosition()
	if math.Abs(p.Y) > 0.01 || math.Abs(slider.GetAngle()) > 0.01 {
		t.Fatalf("slider left its axis: p=%v angle=%v", p, slider.GetAngle())
	}
	if tr := joint.GetJointTranslation(); tr > 1.0+box2d.B2_linearSlop || tr < 0.9 {
		t.Fatalf("translation %v, want the upper limit 1", tr)
	}
}

func TestWeldJointHoldsBody(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createStatic(t, world)
	beam := createDynamic(t, world, 1.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.1))

	jd := box2d.MakeB2WeldJointDef()
	jd.Initialize(ground, beam, box2d.MakeB2Vec2(0.5, 0.0))
	createJoint(t, world, &jd)

	stepN(world, 60)

	if p := beam.GetPosition(); box2d.B2Vec2Distance(p, box2d.MakeB2Vec2(1.0, 0.0)) > 0.05 {
		t.Fatalf("welded beam sagged to %v", p)
	}
	if a := beam.GetAngle(); math.Abs(a) > 0.05 {
		t.Fatalf("welded beam rotated to %v", a)
	}
}

func TestRopeJointLimitsDistance(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createStatic(t, world)
	bob := createDynamic(t, world, 0.0, -1.0, box2d.MakeB2CircleShape(0.25))

	jd := box2d.MakeB2RopeJointDef()
	jd.BodyA = ground
	jd.BodyB = bob
	jd.LocalAnchorA = box2d.B2Vec2{}
	jd.LocalAnchorB = box2d.B2Vec2{}
	jd.MaxLength = 2.0
	joint, _ := createJoint(t, world, &jd).AsRopeJoint()

	if joint.GetLimitState() != box2d.B2LimitState.E_inactiveLimit {
		t.Fatal("slack rope reports its limit")
	}

	for i := 0; i < 120; i++ {
		world.Step(testTimeStep, 8, 3)
		if r := bob.GetPosition().Length(); r > 2.0+0.01 {
			t.Fatalf("step %d: rope stretched to %v", i, r)
		}
	}
	if r := bob.GetPosition().Length(); r < 1.9 {
		t.Fatalf("rope length %v, want taut at 2", r)
	}

	// Pulled past the limit the rope engages and draws the bob back in.
	bob.SetTransform(box2d.MakeB2Vec2(0.0, -3.0), 0.0)
	bob.SetAwake(true)
	world.Step(testTimeStep, 8, 3)
	if joint.GetLimitState() != box2d.B2LimitState.E_atUpperLimit {
		t.Fatal("stretched rope does not report its limit")
	}
	if r := bob.GetPosition().Length(); r >= 3.0 {
		t.Fatalf("stretched rope left the bob at %v", r)
	}

	jd.MaxLength = -1.0
	if _, err := world.CreateJoint(&jd); errors.Cause(err) != box2d.ErrInvalidJoint {
		t.Fatalf("negative rope length returned %v", err)
	}
}

func TestPulleyJointConservesLength(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	left := createDynamic(t, world, -2.0, -2.0, box2d.MakeB2BoxShape(0.5, 0.5))
	right := createDynamic(t, world, 2.0, -2.0, box2d.MakeB2BoxShape(0.5, 0.5))
	if _, err := left.CreateFixtureFromShape(box2d.MakeB2CircleShape(0.5), 2.0); err != nil {
		t.Fatal(err)
	}

	jd := box2d.MakeB2PulleyJointDef()
	jd.Initialize(left, right,
		box2d.MakeB2Vec2(-2.0, 2.0), box2d.MakeB2Vec2(2.0, 2.0),
		left.GetPosition(), right.GetPosition(), 1.0)
	joint, _ := createJoint(t, world, &jd).AsPulleyJoint()

	total := joint.GetLengthA() + joint.GetLengthB()

	stepN(world, 60)

	if got := joint.GetCurrentLengthA() + joint.GetCurrentLengthB(); math.Abs(got-total) > 0.02 {
		t.Fatalf("rope length %v, want %v", got, total)
	}
	if left.GetPosition().Y >= -2.0 || right.GetPosition().Y <= -2.0 {
		t.Fatal("the heavier side did not pull the lighter side up")
	}
}

func TestGearJointCouplesAngles(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	ground := createStatic(t, world)
	a := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(1.0))
	b := createDynamic(t, world, 3.0, 0.0, box2d.MakeB2CircleShape(0.5))

	rd := box2d.MakeB2RevoluteJointDef()
	rd.Initialize(ground, a, a.GetPosition())
	joint1 := createJoint(t, world, &rd)
	rd.Initialize(ground, b, b.GetPosition())
	joint2 := createJoint(t, world, &rd)

	gd := box2d.MakeB2GearJointDef()
	gd.Initialize(joint1, joint2, 2.0)
	gear := createJoint(t, world, &gd)

	a.SetAngularVelocity(1.0)
	stepN(world, 60)

	if c := a.GetAngle() + 2.0*b.GetAngle(); math.Abs(c) > 0.01 {
		t.Fatalf("gear coordinate drifted to %v", c)
	}
	if a.GetAngle() == 0.0 {
		t.Fatal("geared wheels did not turn")
	}

	recorder := &goodbyeRecorder{}
	world.SetDestructionListener(recorder)
	if err := world.DestroyJoint(joint1); err != nil {
		t.Fatal(err)
	}
	if gear.IsValid() {
		t.Fatal("gear outlived one of its joints")
	}
	if recorder.joints != 1 {
		t.Fatalf("%d goodbye calls, want one for the gear", recorder.joints)
	}
	if world.GetJointCount() != 1 {
		t.Fatalf("joint count %d, want 1", world.GetJointCount())
	}
}

func TestGearJointRejectsOtherJointTypes(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	ground := createStatic(t, world)
	a := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(1.0))
	b := createDynamic(t, world, 3.0, 0.0, box2d.MakeB2CircleShape(0.5))

	wd := box2d.MakeB2WeldJointDef()
	wd.Initialize(ground, a, a.GetPosition())
	weld := createJoint(t, world, &wd)

	rd := box2d.MakeB2RevoluteJointDef()
	rd.Initialize(ground, b, b.GetPosition())
	revolute := createJoint(t, world, &rd)

	gd := box2d.MakeB2GearJointDef()
	gd.Initialize(weld, revolute, 1.0)
	if _, err := world.CreateJoint(&gd); errors.Cause(err) != box2d.ErrInvalidJoint {
		t.Fatalf("gear over a weld returned %v", err)
	}
}

func TestMouseJointDragsBody(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	ground := createStatic(t, world)
	body := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))

	md := box2d.MakeB2MouseJointDef()
	md.BodyA = ground
	md.BodyB = body
	md.Target = body.GetPosition()
	md.MaxForce = 1000.0 * body.GetMass()
	mouse, ok := createJoint(t, world, &md).AsMouseJoint()
	if !ok {
		t.Fatal("not a mouse joint")
	}

	target := box2d.MakeB2Vec2(5.0, 5.0)
	mouse.SetTarget(target)
	stepN(world, 180)

	if d := box2d.B2Vec2Distance(body.GetPosition(), target); d > 0.1 {
		t.Fatalf("body is %v away from the target", d)
	}
}

func TestMotorJointReachesOffset(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	ground := createStatic(t, world)
	body := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))

	md := box2d.MakeB2MotorJointDef()
	md.Initialize(ground, body)
	md.MaxForce = 100.0
	md.MaxTorque = 100.0
	motor, _ := createJoint(t, world, &md).AsMotorJoint()
	motor.SetLinearOffset(box2d.MakeB2Vec2(2.0, 0.0))
	motor.SetAngularOffset(0.5)

	stepN(world, 180)

	if d := box2d.B2Vec2Distance(body.GetPosition(), box2d.MakeB2Vec2(2.0, 0.0)); d > 0.05 {
		t.Fatalf("body is %v away from the offset", d)
	}
	if a := body.GetAngle(); math.Abs(a-0.5) > 0.05 {
		t.Fatalf("angle %v, want 0.5", a)
	}

	if err := motor.SetCorrectionFactor(2.0); errors.Cause(err) != box2d.ErrInvalidJoint {
		t.Fatalf("correction factor 2 returned %v", err)
	}
}

func TestWheelJointSuspension(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createStatic(t, world)
	wheel := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(0.4))

	wd := box2d.MakeB2WheelJointDef()
	wd.Initialize(ground, wheel, wheel.GetPosition(), box2d.MakeB2Vec2(0.0, 1.0))
	joint, _ := createJoint(t, world, &wd).AsWheelJoint()

	stepN(world, 300)

	if x := wheel.GetPosition().X; math.Abs(x) > 0.01 {
		t.Fatalf("wheel left the suspension axis: x=%v", x)
	}
	if tr := joint.GetJointTranslation(); tr >= 0.0 {
		t.Fatalf("spring did not compress under gravity: %v", tr)
	}
	if v := wheel.GetLinearVelocity(); v.Length() > 0.05 {
		t.Fatalf("suspension still oscillating: %v", v)
	}
}

func TestFrictionJointStopsBody(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	ground := createStatic(t, world)
	puck := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))
	puck.SetLinearVelocity(box2d.MakeB2Vec2(5.0, 0.0))
	puck.SetAngularVelocity(2.0)

	fd := box2d.MakeB2FrictionJointDef()
	fd.Initialize(ground, puck, puck.GetWorldCenter())
	fd.MaxForce = 10.0
	fd.MaxTorque = 10.0
	createJoint(t, world, &fd)

	stepN(world, 60)

	if v := puck.GetLinearVelocity(); v.Length() > 1e-3 {
		t.Fatalf("puck still sliding at %v", v)
	}
	if w := puck.GetAngularVelocity(); math.Abs(w) > 1e-3 {
		t.Fatalf("puck still spinning at %v", w)
	}
	if x := puck.GetPosition().X; x < 1.0 || x > 1.5 {
		t.Fatalf("puck stopped at x=%v, want about 1.25", x)
	}
}

func TestJointBetweenSameBodyIsRejected(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	body := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(1.0))

	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(body, body, box2d.B2Vec2{})
	if _, err := world.CreateJoint(&jd); errors.Cause(err) != box2d.ErrSameBody {
		t.Fatalf("same body joint returned %v", err)
	}
	if world.GetJointCount() != 0 {
		t.Fatal("rejected joint was added")
	}
}

func TestJointDisablesCollisionBetweenBodies(t *testing.T) {
	world := newTestWorld(box2d.B2Vec2{})
	a := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))
	b := createDynamic(t, world, 0.5, 0.0, box2d.MakeB2BoxShape(0.5, 0.5))

	stepN(world, 1)
	if world.GetContactCount() != 1 {
		t.Fatalf("overlapping boxes have %d contacts, want 1", world.GetContactCount())
	}

	jd := box2d.MakeB2WeldJointDef()
	jd.Initialize(a, b, box2d.MakeB2Vec2(0.25, 0.0))
	joint := createJoint(t, world, &jd)

	stepN(world, 1)
	if world.GetContactCount() != 0 {
		t.Fatalf("jointed boxes still have %d contacts", world.GetContactCount())
	}

	if err := world.DestroyJoint(joint); err != nil {
		t.Fatal(err)
	}
	// The pair is only found again once a proxy is touched.
	a.GetFixtures()[0].Refilter()
	stepN(world, 2)
	if world.GetContactCount() != 1 {
		t.Fatalf("boxes did not collide again after the joint went away")
	}
}

type weldOnTouch struct {
	box2d.B2ContactListenerAdapter
	t     *testing.T
	world *box2d.B2World
	joint box2d.B2Joint
}

func (l *weldOnTouch) BeginContact(contact box2d.B2Contact) {
	if l.joint.IsValid() {
		return
	}
	a := contact.GetFixtureA().GetBody()
	b := contact.GetFixtureB().GetBody()

	jd := box2d.MakeB2WeldJointDef()
	jd.Initialize(a, b, b.GetWorldCenter())
	joint, err := l.world.CreateJoint(&jd)
	if err != nil {
		l.t.Errorf("create joint inside callback: %v", err)
		return
	}
	l.joint = joint
}

func TestJointCreatedInsideCallback(t *testing.T) {
	world := newTestWorld(box2d.MakeB2Vec2(0.0, -10.0))
	ground := createGroundBox(t, world)
	ball := createDynamic(t, world, 0.0, 2.0, box2d.MakeB2CircleShape(0.5))

	listener := &weldOnTouch{t: t, world: world}
	world.SetContactListener(listener)

	for i := 0; i < 120 && !listener.joint.IsValid(); i++ {
		world.Step(testTimeStep, 8, 3)
	}
	if !listener.joint.IsValid() {
		t.Fatal("no joint was created")
	}
	if len(ball.GetJoints()) != 1 || len(ground.GetJoints()) != 1 {
		t.Fatal("joint edges missing after the step")
	}

	stepN(world, 60)
	if world.GetContactCount() != 0 {
		t.Fatalf("welded bodies still have %d contacts", world.GetContactCount())
	}
	if ball.GetPosition().Y < 0.0 {
		t.Fatal("welded ball fell through")
	}
}
