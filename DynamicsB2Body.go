package box2d

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

/// The body type.
/// static: zero mass, zero velocity, may be manually moved
/// kinematic: zero mass, non-zero velocity set by user, moved by solver
/// dynamic: positive mass, non-zero velocity determined by forces, moved by solver
var B2BodyType = struct {
	B2_staticBody    uint8
	B2_kinematicBody uint8
	B2_dynamicBody   uint8
}{
	B2_staticBody:    0,
	B2_kinematicBody: 1,
	B2_dynamicBody:   2,
}

/// A body definition holds all the data needed to construct a rigid body.
/// You can safely re-use body definitions. Shapes are added to a body after construction.
type B2BodyDef struct {
	/// The body type: static, kinematic, or dynamic.
	/// Note: if a dynamic body would have zero mass, the mass is set to one.
	Type uint8

	/// The world position of the body. Avoid creating bodies at the origin
	/// since this can lead to many overlapping shapes.
	Position B2Vec2

	/// The world angle of the body in radians.
	Angle float64

	/// The linear velocity of the body's origin in world co-ordinates.
	LinearVelocity B2Vec2

	/// The angular velocity of the body.
	AngularVelocity float64

	/// Linear damping is use to reduce the linear velocity. The damping parameter
	/// can be larger than 1.0 but the damping effect becomes sensitive to the
	/// time step when the damping parameter is large.
	/// Units are 1/time
	LinearDamping float64

	/// Angular damping is use to reduce the angular velocity.
	/// Units are 1/time
	AngularDamping float64

	/// Set this flag to false if this body should never fall asleep. Note that
	/// this increases CPU usage.
	AllowSleep bool

	/// Is this body initially awake or sleeping?
	Awake bool

	/// Should this body be prevented from rotating? Useful for characters.
	FixedRotation bool

	/// Is this a fast moving body that should be prevented from tunneling through
	/// other moving bodies? Note that all bodies are prevented from tunneling through
	/// kinematic and static bodies. This setting is only considered on dynamic bodies.
	/// @warning You should use this flag sparingly since it increases processing time.
	Bullet bool

	/// Does this body start out enabled?
	Enabled bool

	/// Use this to store application specific body data.
	UserData interface{}

	/// Scale the gravity applied to this body.
	GravityScale float64
}

/// This constructor sets the body definition default values.
func MakeB2BodyDef() B2BodyDef {
	return B2BodyDef{
		Type:         B2BodyType.B2_staticBody,
		AllowSleep:   true,
		Awake:        true,
		Enabled:      true,
		GravityScale: 1.0,
	}
}

func (def *B2BodyDef) validate() error {
	switch {
	case def.Type > B2BodyType.B2_dynamicBody:
		return errors.Wrapf(ErrInvalidBodyDef, "body type %d", def.Type)
	case !def.Position.IsValid() || !B2IsValid(def.Angle):
		return errors.Wrap(ErrInvalidBodyDef, "position")
	case !def.LinearVelocity.IsValid() || !B2IsValid(def.AngularVelocity):
		return errors.Wrap(ErrInvalidBodyDef, "velocity")
	case !B2IsValid(def.LinearDamping) || def.LinearDamping < 0.0:
		return errors.Wrapf(ErrInvalidBodyDef, "linear damping %v", def.LinearDamping)
	case !B2IsValid(def.AngularDamping) || def.AngularDamping < 0.0:
		return errors.Wrapf(ErrInvalidBodyDef, "angular damping %v", def.AngularDamping)
	case !B2IsValid(def.GravityScale):
		return errors.Wrapf(ErrInvalidBodyDef, "gravity scale %v", def.GravityScale)
	}
	return nil
}

var B2Body_Flags = struct {
	E_islandFlag        uint32
	E_awakeFlag         uint32
	E_autoSleepFlag     uint32
	E_bulletFlag        uint32
	E_fixedRotationFlag uint32
	E_enabledFlag       uint32
	E_toiFlag           uint32
	E_inertFlag         uint32
}{
	E_islandFlag:        0x0001,
	E_awakeFlag:         0x0002,
	E_autoSleepFlag:     0x0004,
	E_bulletFlag:        0x0008,
	E_fixedRotationFlag: 0x0010,
	E_enabledFlag:       0x0020,
	E_toiFlag:           0x0040,
	E_inertFlag:         0x0080,
}

type b2Body struct {
	world *B2World

	typ   uint8
	flags uint32

	islandIndex int

	xf    B2Transform // the body origin transform
	sweep B2Sweep     // the swept motion for CCD

	linearVelocity  B2Vec2
	angularVelocity float64

	force  B2Vec2
	torque float64

	// Graph edges, all indices into the world pools.
	fixtures []int32
	joints   []int32
	contacts []int32

	mass, invMass float64

	// Rotational inertia about the center of mass.
	I, invI float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	sleepTime float64

	userData interface{}
}

func (b *b2Body) create(world *B2World, bd *B2BodyDef) {
	b.world = world

	if bd.Bullet {
		b.flags |= B2Body_Flags.E_bulletFlag
	}
	if bd.FixedRotation {
		b.flags |= B2Body_Flags.E_fixedRotationFlag
	}
	if bd.AllowSleep {
		b.flags |= B2Body_Flags.E_autoSleepFlag
	}
	if bd.Awake && bd.Type != B2BodyType.B2_staticBody {
		b.flags |= B2Body_Flags.E_awakeFlag
	}
	if bd.Enabled {
		b.flags |= B2Body_Flags.E_enabledFlag
	}

	b.xf.P = bd.Position
	b.xf.Q.Set(bd.Angle)

	b.sweep.LocalCenter.SetZero()
	b.sweep.C0 = b.xf.P
	b.sweep.C = b.xf.P
	b.sweep.A0 = bd.Angle
	b.sweep.A = bd.Angle
	b.sweep.Alpha0 = 0.0

	b.linearVelocity = bd.LinearVelocity
	b.angularVelocity = bd.AngularVelocity

	b.linearDamping = bd.LinearDamping
	b.angularDamping = bd.AngularDamping
	b.gravityScale = bd.GravityScale

	b.typ = bd.Type

	if b.typ == B2BodyType.B2_dynamicBody {
		b.mass = 1.0
		b.invMass = 1.0
	}

	b.userData = bd.UserData
}

func (b *b2Body) hasFlag(flag uint32) bool {
	return b.flags&flag == flag
}

func (b *b2Body) setFlag(flag uint32, on bool) {
	if on {
		b.flags |= flag
	} else {
		b.flags &= ^flag
	}
}

func (b *b2Body) isAwake() bool {
	return b.hasFlag(B2Body_Flags.E_awakeFlag)
}

func (b *b2Body) isEnabled() bool {
	return b.hasFlag(B2Body_Flags.E_enabledFlag)
}

func (b *b2Body) setAwake(flag bool) {
	if b.typ == B2BodyType.B2_staticBody {
		return
	}

	b.sleepTime = 0.0
	if flag {
		b.flags |= B2Body_Flags.E_awakeFlag
		return
	}

	b.flags &= ^B2Body_Flags.E_awakeFlag
	b.linearVelocity.SetZero()
	b.angularVelocity = 0.0
	b.force.SetZero()
	b.torque = 0.0
}

func (b *b2Body) synchronizeTransform() {
	b.xf.Q.Set(b.sweep.A)
	b.xf.P = B2Vec2Sub(b.sweep.C, B2RotVec2Mul(b.xf.Q, b.sweep.LocalCenter))
}

// Advance to the new safe time. This doesn't sync the broad-phase.
func (b *b2Body) advance(alpha float64) {
	b.sweep.Advance(alpha)
	b.sweep.C = b.sweep.C0
	b.sweep.A = b.sweep.A0
	b.synchronizeTransform()
}

func (b *b2Body) synchronizeFixtures() {
	var xf1 B2Transform
	xf1.Q.Set(b.sweep.A0)
	xf1.P = B2Vec2Sub(b.sweep.C0, B2RotVec2Mul(xf1.Q, b.sweep.LocalCenter))

	broadPhase := &b.world.contactManager.broadPhase
	for _, fi := range b.fixtures {
		b.world.fixtures.get(fi).synchronize(broadPhase, xf1, b.xf)
	}
}

// This is used to prevent connected bodies from colliding.
// It may lie, depending on the collideConnected flag.
func (b *b2Body) shouldCollide(self int32, other int32) bool {
	o := b.world.bodies.get(other)

	// At least one body should be dynamic.
	if b.typ != B2BodyType.B2_dynamicBody && o.typ != B2BodyType.B2_dynamicBody {
		return false
	}

	// Does a joint prevent collision?
	for _, ji := range b.joints {
		j := b.world.joints.get(ji)
		if j.other(self) == other && !j.collideConnected {
			return false
		}
	}

	return true
}

func (b *b2Body) resetMassData() {
	// Compute mass data from shapes. Each shape has its own density.
	b.mass = 0.0
	b.invMass = 0.0
	b.I = 0.0
	b.invI = 0.0
	b.sweep.LocalCenter.SetZero()

	// Static and kinematic bodies have zero mass.
	if b.typ != B2BodyType.B2_dynamicBody {
		b.sweep.C0 = b.xf.P
		b.sweep.C = b.xf.P
		b.sweep.A0 = b.sweep.A
		return
	}

	// Accumulate mass over all fixtures.
	var localCenter B2Vec2
	for _, fi := range b.fixtures {
		f := b.world.fixtures.get(fi)
		if f.density == 0.0 || f.inert {
			continue
		}

		massData := f.massData()
		b.mass += massData.Mass
		localCenter = B2Vec2MulAdd(localCenter, massData.Mass, massData.Center)
		b.I += massData.I
	}

	// Compute center of mass.
	if b.mass > 0.0 {
		b.invMass = 1.0 / b.mass
		localCenter = B2Vec2MulScalar(b.invMass, localCenter)
	} else {
		// Force all dynamic bodies to have a positive mass.
		b.mass = 1.0
		b.invMass = 1.0
	}

	if b.I > 0.0 && !b.hasFlag(B2Body_Flags.E_fixedRotationFlag) {
		// Center the inertia about the center of mass.
		b.I -= b.mass * B2Vec2Dot(localCenter, localCenter)
		B2Assert(b.I > 0.0)
		b.invI = 1.0 / b.I
	} else {
		b.I = 0.0
		b.invI = 0.0
	}

	b.moveCenter(localCenter)
}

// Move center of mass and keep the velocity of the origin unchanged.
func (b *b2Body) moveCenter(localCenter B2Vec2) {
	oldCenter := b.sweep.C
	b.sweep.LocalCenter = localCenter
	b.sweep.C0 = B2TransformVec2Mul(b.xf, b.sweep.LocalCenter)
	b.sweep.C = b.sweep.C0

	// Update center of mass velocity.
	b.linearVelocity = B2Vec2Add(b.linearVelocity, B2Vec2CrossScalarVector(b.angularVelocity, B2Vec2Sub(b.sweep.C, oldCenter)))
}

func (b *b2Body) destroyContacts() {
	// The contact manager edits b.contacts while we walk it.
	for len(b.contacts) > 0 {
		b.world.contactManager.destroy(b.contacts[len(b.contacts)-1])
	}
}

func b2RemoveEdge(edges []int32, index int32) []int32 {
	i := slices.Index(edges, index)
	B2Assert(i >= 0)
	return slices.Delete(edges, i, i+1)
}

/// A rigid body. These are created via B2World.CreateBody.
///
/// B2Body is a handle. Once the body is destroyed every accessor returns a
/// zero value and every mutator does nothing.
type B2Body struct {
	world    *B2World
	id       int32
	revision uint32
}

func (body B2Body) get() *b2Body {
	if body.world == nil {
		return nil
	}
	return body.world.bodies.lookup(body.id, body.revision)
}

/// Reports whether the body still exists.
func (body B2Body) IsValid() bool {
	return body.get() != nil
}

/// Get the parent world of this body.
func (body B2Body) GetWorld() *B2World {
	if body.get() == nil {
		return nil
	}
	return body.world
}

/// Creates a fixture and attach it to this body. Use this function if you need
/// to set some fixture parameters, like friction. Otherwise you can create the
/// fixture directly from a shape.
/// If the density is non-zero, this function automatically updates the mass of the body.
/// Contacts are not created until the next time step.
/// While the world is locked the fixture is attached but takes no part in
/// the simulation until the step completes.
func (body B2Body) CreateFixture(def *B2FixtureDef) (B2Fixture, error) {
	b := body.get()
	if b == nil {
		return B2Fixture{}, errors.Wrap(ErrStaleHandle, "create fixture")
	}
	if err := def.validate(); err != nil {
		return B2Fixture{}, errors.Wrap(err, "create fixture")
	}
	// Sensors carry no mass, so only solid fixtures need a density.
	if b.typ == B2BodyType.B2_dynamicBody && !def.IsSensor && def.Density == 0.0 {
		return B2Fixture{}, errors.Wrap(ErrInvalidDensity, "create fixture: zero density on a dynamic body")
	}

	world := body.world
	index, revision := world.fixtures.alloc()
	f := world.fixtures.get(index)
	f.create(body.id, def)
	b.fixtures = append(b.fixtures, index)

	fixture := B2Fixture{world: world, id: index, revision: revision}
	if world.IsLocked() || b.hasFlag(B2Body_Flags.E_inertFlag) {
		f.inert = true
		world.deferActivation(b2DeferredOp{kind: b2Deferred_activateFixture, fixture: fixture})
		return fixture, nil
	}

	world.activateFixture(b, index, f)
	return fixture, nil
}

/// Creates a fixture from a shape and attach it to this body.
/// This is a convenience function. Use B2FixtureDef if you need to set parameters
/// like friction, restitution, user data, or filtering.
func (body B2Body) CreateFixtureFromShape(shape B2Shape, density float64) (B2Fixture, error) {
	def := MakeB2FixtureDef(shape)
	def.Density = density
	return body.CreateFixture(&def)
}

/// Destroy a fixture. This removes the fixture from the broad-phase and
/// destroys all contacts associated with this fixture. This will
/// automatically adjust the mass of the body if the body is dynamic and the
/// fixture has positive density.
/// All fixtures attached to a body are implicitly destroyed when the body is destroyed.
/// While the world is locked the destruction is queued until the step completes.
func (body B2Body) DestroyFixture(fixture B2Fixture) error {
	b := body.get()
	f := fixture.get()
	if b == nil || f == nil {
		return errors.Wrap(ErrStaleHandle, "destroy fixture")
	}
	if f.body != body.id || fixture.world != body.world {
		return errors.Wrap(ErrInvalidShape, "fixture is not attached to this body")
	}

	world := body.world
	if world.IsLocked() {
		world.deferDestroy(b2DeferredOp{kind: b2Deferred_destroyFixture, fixture: fixture})
		return nil
	}

	world.destroyFixture(b, fixture.id, f)
	b.resetMassData()
	return nil
}

/// Set the position of the body's origin and rotation.
/// Manipulating a body's transform may cause non-physical behavior.
/// Note: contacts are updated on the next call to B2World.Step.
func (body B2Body) SetTransform(position B2Vec2, angle float64) {
	b := body.get()
	if b == nil || body.world.rejectLocked("SetTransform") {
		return
	}

	b.xf.Q.Set(angle)
	b.xf.P = position

	b.sweep.C = B2TransformVec2Mul(b.xf, b.sweep.LocalCenter)
	b.sweep.A = angle

	b.sweep.C0 = b.sweep.C
	b.sweep.A0 = angle

	broadPhase := &body.world.contactManager.broadPhase
	for _, fi := range b.fixtures {
		body.world.fixtures.get(fi).synchronize(broadPhase, b.xf, b.xf)
	}
}

/// Get the body transform for the body's origin.
func (body B2Body) GetTransform() B2Transform {
	b := body.get()
	if b == nil {
		return B2Transform{}
	}
	return b.xf
}

/// Get the world body origin position.
func (body B2Body) GetPosition() B2Vec2 {
	b := body.get()
	if b == nil {
		return B2Vec2{}
	}
	return b.xf.P
}

/// Get the angle in radians.
func (body B2Body) GetAngle() float64 {
	b := body.get()
	if b == nil {
		return 0.0
	}
	return b.sweep.A
}

/// Get the world position of the center of mass.
func (body B2Body) GetWorldCenter() B2Vec2 {
	b := body.get()
	if b == nil {
		return B2Vec2{}
	}
	return b.sweep.C
}

/// Get the local position of the center of mass.
func (body B2Body) GetLocalCenter() B2Vec2 {
	b := body.get()
	if b == nil {
		return B2Vec2{}
	}
	return b.sweep.LocalCenter
}

/// Set the linear velocity of the center of mass.
func (body B2Body) SetLinearVelocity(v B2Vec2) {
	b := body.get()
	if b == nil || b.typ == B2BodyType.B2_staticBody {
		return
	}

	if B2Vec2Dot(v, v) > 0.0 {
		b.setAwake(true)
	}

	b.linearVelocity = v
}

/// Get the linear velocity of the center of mass.
func (body B2Body) GetLinearVelocity() B2Vec2 {
	b := body.get()
	if b == nil {
		return B2Vec2{}
	}
	return b.linearVelocity
}

/// Set the angular velocity in radians/second.
func (body B2Body) SetAngularVelocity(w float64) {
	b := body.get()
	if b == nil || b.typ == B2BodyType.B2_staticBody {
		return
	}

	if w*w > 0.0 {
		b.setAwake(true)
	}

	b.angularVelocity = w
}

func (body B2Body) GetAngularVelocity() float64 {
	b := body.get()
	if b == nil {
		return 0.0
	}
	return b.angularVelocity
}

// Forces and impulses only affect awake dynamic bodies. A sleeping body is
// woken first when wake is set, otherwise the call is ignored.
func (body B2Body) forceTarget(wake bool) *b2Body {
	b := body.get()
	if b == nil || b.typ != B2BodyType.B2_dynamicBody {
		return nil
	}

	if wake && !b.isAwake() {
		b.setAwake(true)
	}

	if !b.isAwake() {
		return nil
	}
	return b
}

/// Apply a force at a world point. If the force is not
/// applied at the center of mass, it will generate a torque and
/// affect the angular velocity. This wakes up the body.
func (body B2Body) ApplyForce(force B2Vec2, point B2Vec2, wake bool) {
	if b := body.forceTarget(wake); b != nil {
		b.force = B2Vec2Add(b.force, force)
		b.torque += B2Vec2Cross(B2Vec2Sub(point, b.sweep.C), force)
	}
}

/// Apply a force to the center of mass. This wakes up the body.
func (body B2Body) ApplyForceToCenter(force B2Vec2, wake bool) {
	if b := body.forceTarget(wake); b != nil {
		b.force = B2Vec2Add(b.force, force)
	}
}

/// Apply a torque. This affects the angular velocity
/// without affecting the linear velocity of the center of mass.
func (body B2Body) ApplyTorque(torque float64, wake bool) {
	if b := body.forceTarget(wake); b != nil {
		b.torque += torque
	}
}

/// Apply an impulse at a point. This immediately modifies the velocity.
/// It also modifies the angular velocity if the point of application
/// is not at the center of mass.
func (body B2Body) ApplyLinearImpulse(impulse B2Vec2, point B2Vec2, wake bool) {
	if b := body.forceTarget(wake); b != nil {
		b.linearVelocity = B2Vec2MulAdd(b.linearVelocity, b.invMass, impulse)
		b.angularVelocity += b.invI * B2Vec2Cross(B2Vec2Sub(point, b.sweep.C), impulse)
	}
}

/// Apply an impulse to the center of mass. This immediately modifies the velocity.
func (body B2Body) ApplyLinearImpulseToCenter(impulse B2Vec2, wake bool) {
	if b := body.forceTarget(wake); b != nil {
		b.linearVelocity = B2Vec2MulAdd(b.linearVelocity, b.invMass, impulse)
	}
}

/// Apply an angular impulse.
func (body B2Body) ApplyAngularImpulse(impulse float64, wake bool) {
	if b := body.forceTarget(wake); b != nil {
		b.angularVelocity += b.invI * impulse
	}
}

/// Get the total mass of the body, usually in kilograms (kg).
func (body B2Body) GetMass() float64 {
	b := body.get()
	if b == nil {
		return 0.0
	}
	return b.mass
}

/// Get the rotational inertia of the body about the local origin.
func (body B2Body) GetInertia() float64 {
	b := body.get()
	if b == nil {
		return 0.0
	}
	return b.I + b.mass*B2Vec2Dot(b.sweep.LocalCenter, b.sweep.LocalCenter)
}

/// Get the mass data of the body. The rotational inertia is relative to the
/// local origin.
func (body B2Body) GetMassData() B2MassData {
	b := body.get()
	if b == nil {
		return B2MassData{}
	}
	return B2MassData{
		Mass:   b.mass,
		Center: b.sweep.LocalCenter,
		I:      b.I + b.mass*B2Vec2Dot(b.sweep.LocalCenter, b.sweep.LocalCenter),
	}
}

/// Set the mass properties to override the mass properties of the fixtures.
/// Note that this changes the center of mass position.
/// Note that creating or destroying fixtures can also alter the mass.
/// This function has no effect if the body isn't dynamic.
func (body B2Body) SetMassData(massData B2MassData) {
	b := body.get()
	if b == nil || body.world.rejectLocked("SetMassData") {
		return
	}

	if b.typ != B2BodyType.B2_dynamicBody {
		return
	}

	b.invMass = 0.0
	b.I = 0.0
	b.invI = 0.0

	b.mass = massData.Mass
	if b.mass <= 0.0 {
		b.mass = 1.0
	}

	b.invMass = 1.0 / b.mass

	if massData.I > 0.0 && !b.hasFlag(B2Body_Flags.E_fixedRotationFlag) {
		b.I = massData.I - b.mass*B2Vec2Dot(massData.Center, massData.Center)
		B2Assert(b.I > 0.0)
		b.invI = 1.0 / b.I
	}

	b.moveCenter(massData.Center)
}

/// This resets the mass properties to the sum of the mass properties of the fixtures.
/// This normally does not need to be called unless you called SetMassData to override
/// the mass and you later want to reset the mass.
func (body B2Body) ResetMassData() {
	b := body.get()
	if b == nil || body.world.rejectLocked("ResetMassData") {
		return
	}
	b.resetMassData()
}

/// Get the world coordinates of a point given the local coordinates.
func (body B2Body) GetWorldPoint(localPoint B2Vec2) B2Vec2 {
	return B2TransformVec2Mul(body.GetTransform(), localPoint)
}

/// Get the world coordinates of a vector given the local coordinates.
func (body B2Body) GetWorldVector(localVector B2Vec2) B2Vec2 {
	return B2RotVec2Mul(body.GetTransform().Q, localVector)
}

/// Gets a local point relative to the body's origin given a world point.
func (body B2Body) GetLocalPoint(worldPoint B2Vec2) B2Vec2 {
	return B2TransformVec2MulT(body.GetTransform(), worldPoint)
}

/// Gets a local vector given a world vector.
func (body B2Body) GetLocalVector(worldVector B2Vec2) B2Vec2 {
	return B2RotVec2MulT(body.GetTransform().Q, worldVector)
}

/// Get the world linear velocity of a world point attached to this body.
func (body B2Body) GetLinearVelocityFromWorldPoint(worldPoint B2Vec2) B2Vec2 {
	b := body.get()
	if b == nil {
		return B2Vec2{}
	}
	return B2Vec2Add(b.linearVelocity, B2Vec2CrossScalarVector(b.angularVelocity, B2Vec2Sub(worldPoint, b.sweep.C)))
}

/// Get the world velocity of a local point.
func (body B2Body) GetLinearVelocityFromLocalPoint(localPoint B2Vec2) B2Vec2 {
	return body.GetLinearVelocityFromWorldPoint(body.GetWorldPoint(localPoint))
}

func (body B2Body) GetLinearDamping() float64 {
	b := body.get()
	if b == nil {
		return 0.0
	}
	return b.linearDamping
}

func (body B2Body) SetLinearDamping(linearDamping float64) {
	if b := body.get(); b != nil {
		b.linearDamping = linearDamping
	}
}

func (body B2Body) GetAngularDamping() float64 {
	b := body.get()
	if b == nil {
		return 0.0
	}
	return b.angularDamping
}

func (body B2Body) SetAngularDamping(angularDamping float64) {
	if b := body.get(); b != nil {
		b.angularDamping = angularDamping
	}
}

func (body B2Body) GetGravityScale() float64 {
	b := body.get()
	if b == nil {
		return 0.0
	}
	return b.gravityScale
}

func (body B2Body) SetGravityScale(scale float64) {
	if b := body.get(); b != nil {
		b.gravityScale = scale
	}
}

/// Set the type of this body. This may alter the mass and velocity.
func (body B2Body) SetType(bodyType uint8) {
	b := body.get()
	if b == nil || bodyType > B2BodyType.B2_dynamicBody || body.world.rejectLocked("SetType") {
		return
	}

	if b.typ == bodyType {
		return
	}

	b.typ = bodyType

	b.resetMassData()

	if b.typ == B2BodyType.B2_staticBody {
		b.linearVelocity.SetZero()
		b.angularVelocity = 0.0
		b.sweep.A0 = b.sweep.A
		b.sweep.C0 = b.sweep.C
		b.flags &= ^B2Body_Flags.E_awakeFlag
		b.synchronizeFixtures()
	} else {
		b.setAwake(true)
	}

	b.force.SetZero()
	b.torque = 0.0

	// Delete the attached contacts.
	b.destroyContacts()

	// Touch the proxies so that new contacts will be created (when appropriate)
	broadPhase := &body.world.contactManager.broadPhase
	for _, fi := range b.fixtures {
		body.world.fixtures.get(fi).touchProxies(broadPhase)
	}
}

/// Get the type of this body.
func (body B2Body) GetType() uint8 {
	b := body.get()
	if b == nil {
		return B2BodyType.B2_staticBody
	}
	return b.typ
}

/// Should this body be treated like a bullet for continuous collision detection?
func (body B2Body) SetBullet(flag bool) {
	if b := body.get(); b != nil {
		b.setFlag(B2Body_Flags.E_bulletFlag, flag)
	}
}

/// Is this body treated like a bullet for continuous collision detection?
func (body B2Body) IsBullet() bool {
	b := body.get()
	return b != nil && b.hasFlag(B2Body_Flags.E_bulletFlag)
}

/// You can disable sleeping on this body. If you disable sleeping, the
/// body will be woken.
func (body B2Body) SetSleepingAllowed(flag bool) {
	b := body.get()
	if b == nil {
		return
	}
	b.setFlag(B2Body_Flags.E_autoSleepFlag, flag)
	if !flag {
		b.setAwake(true)
	}
}

/// Is this body allowed to sleep
func (body B2Body) IsSleepingAllowed() bool {
	b := body.get()
	return b != nil && b.hasFlag(B2Body_Flags.E_autoSleepFlag)
}

/// Set the sleep state of the body. A sleeping body has very
/// low CPU cost.
/// @param flag set to true to wake the body, false to put it to sleep.
func (body B2Body) SetAwake(flag bool) {
	if b := body.get(); b != nil {
		b.setAwake(flag)
	}
}

/// Get the sleeping state of this body.
/// @return true if the body is awake.
func (body B2Body) IsAwake() bool {
	b := body.get()
	return b != nil && b.isAwake()
}

/// Allow a body to be disabled. A disabled body is not simulated and cannot
/// be collided with or woken up.
/// If you pass a flag of true, all fixtures will be added to the broad-phase.
/// If you pass a flag of false, all fixtures will be removed from the
/// broad-phase and all contacts will be destroyed.
/// Fixtures and joints are otherwise unaffected. You may continue
/// to create/destroy fixtures and joints on disabled bodies.
/// Fixtures on a disabled body are implicitly disabled and will
/// not participate in collisions, ray-casts, or queries.
/// Joints connected to a disabled body are implicitly disabled.
func (body B2Body) SetEnabled(flag bool) {
	b := body.get()
	if b == nil || body.world.rejectLocked("SetEnabled") {
		return
	}

	if flag == b.isEnabled() {
		return
	}

	broadPhase := &body.world.contactManager.broadPhase
	b.setFlag(B2Body_Flags.E_enabledFlag, flag)

	if flag {
		// Create all proxies. Contacts are created the next time step.
		for _, fi := range b.fixtures {
			f := body.world.fixtures.get(fi)
			if !f.inert {
				f.createProxies(broadPhase, fi, b.xf)
			}
		}
		body.world.flags |= B2World_Flags.E_newFixture
		return
	}

	// Destroy all proxies.
	for _, fi := range b.fixtures {
		body.world.fixtures.get(fi).destroyProxies(broadPhase)
	}

	// Destroy the attached contacts.
	b.destroyContacts()
}

/// Get the enabled state of the body.
func (body B2Body) IsEnabled() bool {
	b := body.get()
	return b != nil && b.isEnabled()
}

/// Set this body to have fixed rotation. This causes the mass
/// to be reset.
func (body B2Body) SetFixedRotation(flag bool) {
	b := body.get()
	if b == nil || b.hasFlag(B2Body_Flags.E_fixedRotationFlag) == flag {
		return
	}

	b.setFlag(B2Body_Flags.E_fixedRotationFlag, flag)
	b.angularVelocity = 0.0
	b.resetMassData()
}

/// Does this body have fixed rotation?
func (body B2Body) IsFixedRotation() bool {
	b := body.get()
	return b != nil && b.hasFlag(B2Body_Flags.E_fixedRotationFlag)
}

/// Get the fixtures attached to this body, in creation order.
func (body B2Body) GetFixtures() []B2Fixture {
	b := body.get()
	if b == nil {
		return nil
	}
	fixtures := make([]B2Fixture, len(b.fixtures))
	for i, fi := range b.fixtures {
		fixtures[i] = body.world.fixtureHandle(fi)
	}
	return fixtures
}

/// Get the joints attached to this body.
func (body B2Body) GetJoints() []B2Joint {
	b := body.get()
	if b == nil {
		return nil
	}
	joints := make([]B2Joint, len(b.joints))
	for i, ji := range b.joints {
		joints[i] = body.world.jointHandle(ji)
	}
	return joints
}

/// Get the contacts attached to this body. Contacts are created and
/// destroyed in the middle of a time step, use the contact listener
/// to avoid missing contacts.
func (body B2Body) GetContacts() []B2Contact {
	b := body.get()
	if b == nil {
		return nil
	}
	contacts := make([]B2Contact, len(b.contacts))
	for i, ci := range b.contacts {
		contacts[i] = body.world.contactHandle(ci)
	}
	return contacts
}

/// Get the user data pointer that was provided in the body definition.
func (body B2Body) GetUserData() interface{} {
	b := body.get()
	if b == nil {
		return nil
	}
	return b.userData
}

/// Set the user data. Use this to store your application specific data.
func (body B2Body) SetUserData(data interface{}) {
	if b := body.get(); b != nil {
		b.userData = data
	}
}
