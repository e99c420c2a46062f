package box2d

import (
	"github.com/pkg/errors"
)

var B2JointType = struct {
	E_unknownJoint   uint8
	E_revoluteJoint  uint8
	E_prismaticJoint uint8
	E_distanceJoint  uint8
	E_pulleyJoint    uint8
	E_mouseJoint     uint8
	E_gearJoint      uint8
	E_wheelJoint     uint8
	E_weldJoint      uint8
	E_frictionJoint  uint8
	E_ropeJoint      uint8
	E_motorJoint     uint8
}{
	E_unknownJoint:   1,
	E_revoluteJoint:  2,
	E_prismaticJoint: 3,
	E_distanceJoint:  4,
	E_pulleyJoint:    5,
	E_mouseJoint:     6,
	E_gearJoint:      7,
	E_wheelJoint:     8,
	E_weldJoint:      9,
	E_frictionJoint:  10,
	E_ropeJoint:      11,
	E_motorJoint:     12,
}

const b2_jointTypeCount = 13

var B2LimitState = struct {
	E_inactiveLimit uint8
	E_atLowerLimit  uint8
	E_atUpperLimit  uint8
	E_equalLimits   uint8
}{
	E_inactiveLimit: 1,
	E_atLowerLimit:  2,
	E_atUpperLimit:  3,
	E_equalLimits:   4,
}

/// Joint definitions are used to construct joints.
type B2JointDef struct {
	/// Use this to attach application specific data to your joints.
	UserData interface{}

	/// The first attached body.
	BodyA B2Body

	/// The second attached body.
	BodyB B2Body

	/// Set this flag to true if the attached bodies should collide.
	CollideConnected bool
}

func (def *B2JointDef) base() *B2JointDef {
	return def
}

/// Implemented by every joint definition of this package. The set of joint
/// kinds is closed.
type B2JointDefInterface interface {
	base() *B2JointDef
	kind() uint8
	validate() error
	build(j *b2Joint)
}

/// Per kind joint operations.
type b2JointOps struct {
	initVelocityConstraints  func(j *b2Joint, data *B2SolverData)
	solveVelocityConstraints func(j *b2Joint, data *B2SolverData)
	solvePositionConstraints func(j *b2Joint, data *B2SolverData) bool

	// Local anchors, mapped to world space by the handle.
	localAnchorA func(j *b2Joint) B2Vec2
	localAnchorB func(j *b2Joint) B2Vec2

	reactionForce  func(j *b2Joint, inv_dt float64) B2Vec2
	reactionTorque func(j *b2Joint, inv_dt float64) float64

	// Optional. Joints storing world points move them here.
	shiftOrigin func(j *b2Joint, newOrigin B2Vec2)

	// Optional. Anchors stored in world space.
	worldAnchors func(j *b2Joint) (B2Vec2, B2Vec2)
}

var b2JointRegisters [b2_jointTypeCount]b2JointOps

func b2AddJointType(typ uint8, ops b2JointOps) {
	B2Assert(int(typ) < b2_jointTypeCount)
	b2JointRegisters[typ] = ops
}

/// The joint record owned by the world. The common part holds the graph
/// edges and the solver temporaries every kind needs. Exactly one payload
/// pointer is set, matching typ.
type b2Joint struct {
	world *B2World

	typ              uint8
	bodyA, bodyB     int32
	collideConnected bool
	islandFlag       bool
	inert            bool
	userData         interface{}

	// Solver temp
	indexA, indexB             int
	localCenterA, localCenterB B2Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64

	distance  *b2DistanceJoint
	revolute  *b2RevoluteJoint
	prismatic *b2PrismaticJoint
	weld      *b2WeldJoint
	pulley    *b2PulleyJoint
	gear      *b2GearJoint
	motor     *b2MotorJoint
	mouse     *b2MouseJoint
	wheel     *b2WheelJoint
	friction  *b2FrictionJoint
	rope      *b2RopeJoint
}

func (j *b2Joint) create(world *B2World, def B2JointDefInterface) {
	base := def.base()

	j.world = world
	j.typ = def.kind()
	j.bodyA = base.BodyA.id
	j.bodyB = base.BodyB.id
	j.collideConnected = base.CollideConnected
	j.userData = base.UserData

	def.build(j)
}

func (j *b2Joint) ops() *b2JointOps {
	return &b2JointRegisters[j.typ]
}

/// The body on the other side of the joint.
func (j *b2Joint) other(body int32) int32 {
	if j.bodyA == body {
		return j.bodyB
	}
	return j.bodyA
}

func (j *b2Joint) initVelocityConstraints(data *B2SolverData) {
	j.ops().initVelocityConstraints(j, data)
}

func (j *b2Joint) solveVelocityConstraints(data *B2SolverData) {
	j.ops().solveVelocityConstraints(j, data)
}

func (j *b2Joint) solvePositionConstraints(data *B2SolverData) bool {
	return j.ops().solvePositionConstraints(j, data)
}

/// Caches the island indices and mass properties of both bodies.
func (j *b2Joint) prepare(data *B2SolverData) {
	var bA, bB *b2Body
	j.indexA, bA = data.body(j.bodyA)
	j.indexB, bB = data.body(j.bodyB)
	j.localCenterA = bA.sweep.LocalCenter
	j.localCenterB = bB.sweep.LocalCenter
	j.invMassA = bA.invMass
	j.invMassB = bB.invMass
	j.invIA = bA.invI
	j.invIB = bB.invI
}

func (j *b2Joint) loadVelocities(data *B2SolverData) (B2Vec2, float64, B2Vec2, float64) {
	velA := data.Velocities[j.indexA]
	velB := data.Velocities[j.indexB]
	return velA.V, velA.W, velB.V, velB.W
}

func (j *b2Joint) storeVelocities(data *B2SolverData, vA B2Vec2, wA float64, vB B2Vec2, wB float64) {
	data.Velocities[j.indexA] = B2Velocity{V: vA, W: wA}
	data.Velocities[j.indexB] = B2Velocity{V: vB, W: wB}
}

func (j *b2Joint) loadPositions(data *B2SolverData) (B2Vec2, float64, B2Vec2, float64) {
	posA := data.Positions[j.indexA]
	posB := data.Positions[j.indexB]
	return posA.C, posA.A, posB.C, posB.A
}

func (j *b2Joint) storePositions(data *B2SolverData, cA B2Vec2, aA float64, cB B2Vec2, aB float64) {
	data.Positions[j.indexA] = B2Position{C: cA, A: aA}
	data.Positions[j.indexB] = B2Position{C: cB, A: aB}
}

// Applies the linear impulse P at the anchors with an extra angular impulse L.
func (j *b2Joint) applyImpulse(vA *B2Vec2, wA *float64, vB *B2Vec2, wB *float64, rA, rB, P B2Vec2, L float64) {
	*vA = B2Vec2MulSub(*vA, j.invMassA, P)
	*wA -= j.invIA * (B2Vec2Cross(rA, P) + L)
	*vB = B2Vec2MulAdd(*vB, j.invMassB, P)
	*wB += j.invIB * (B2Vec2Cross(rB, P) + L)
}

func (j *b2Joint) records() (*b2Body, *b2Body) {
	return j.world.bodies.get(j.bodyA), j.world.bodies.get(j.bodyB)
}

func (j *b2Joint) wakeBodies() {
	j.world.bodies.get(j.bodyA).setAwake(true)
	j.world.bodies.get(j.bodyB).setAwake(true)
}

func (j *b2Joint) anchors() (B2Vec2, B2Vec2) {
	ops := j.ops()
	if ops.worldAnchors != nil {
		return ops.worldAnchors(j)
	}
	xfA := j.world.bodies.get(j.bodyA).xf
	xfB := j.world.bodies.get(j.bodyB).xf
	return B2TransformVec2Mul(xfA, ops.localAnchorA(j)), B2TransformVec2Mul(xfB, ops.localAnchorB(j))
}

// Soft constraint coefficients from a mass-spring-damper. Returns gamma and
// the bias factor for the position error.
func b2SoftConstraint(mass, frequencyHz, dampingRatio, h float64) (float64, float64) {
	// Frequency
	omega := 2.0 * B2_pi * frequencyHz

	// Damping coefficient
	d := 2.0 * mass * dampingRatio * omega

	// Spring stiffness
	k := mass * omega * omega

	// magic formulas
	gamma := h * (d + h*k)
	if gamma != 0.0 {
		gamma = 1.0 / gamma
	}
	return gamma, h * k * gamma
}

// Effective mass of a point-to-point constraint plus a relative angle row.
//
// J = [-I -r1_skew I r2_skew]
//     [ 0       -1 0       1]
// r_skew = [-ry; rx]
//
// K = [ mA+r1y^2*iA+mB+r2y^2*iB,  -r1y*iA*r1x-r2y*iB*r2x,          -r1y*iA-r2y*iB]
//     [  -r1y*iA*r1x-r2y*iB*r2x, mA+r1x^2*iA+mB+r2x^2*iB,           r1x*iA+r2x*iB]
//     [          -r1y*iA-r2y*iB,           r1x*iA+r2x*iB,                   iA+iB]
func b2PointAngleMass(mA, mB, iA, iB float64, rA, rB B2Vec2) B2Mat33 {
	var K B2Mat33
	K.Ex.X = mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	K.Ey.X = -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	K.Ez.X = -rA.Y*iA - rB.Y*iB
	K.Ex.Y = K.Ey.X
	K.Ey.Y = mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB
	K.Ez.Y = rA.X*iA + rB.X*iB
	K.Ex.Z = K.Ez.X
	K.Ey.Z = K.Ez.Y
	K.Ez.Z = iA + iB
	return K
}

// The upper left block of b2PointAngleMass.
func b2PointMass(mA, mB, iA, iB float64, rA, rB B2Vec2) B2Mat22 {
	var K B2Mat22
	K.Ex.X = mA + mB + iA*rA.Y*rA.Y + iB*rB.Y*rB.Y
	K.Ex.Y = -iA*rA.X*rA.Y - iB*rB.X*rB.Y
	K.Ey.X = K.Ex.Y
	K.Ey.Y = mA + mB + iA*rA.X*rA.X + iB*rB.X*rB.X
	return K
}

func b2Inverse(x float64) float64 {
	if x != 0.0 {
		return 1.0 / x
	}
	return 0.0
}

func b2ValidateJointDef(def B2JointDefInterface) error {
	base := def.base()
	if !base.BodyA.IsValid() || !base.BodyB.IsValid() {
		return errors.Wrap(ErrStaleHandle, "joint body")
	}
	if base.BodyA.world != base.BodyB.world {
		return errors.Wrap(ErrInvalidJoint, "bodies belong to different worlds")
	}
	if base.BodyA.id == base.BodyB.id {
		return ErrSameBody
	}
	return def.validate()
}

/// The base joint handle. Joints are used to constrain two bodies together in
/// various fashions. Some joints also feature limits and motors.
///
/// Like the other handles a joint reads back as gone once destroyed.
type B2Joint struct {
	world    *B2World
	id       int32
	revision uint32
}

func (joint B2Joint) get() *b2Joint {
	if joint.world == nil {
		return nil
	}
	return joint.world.joints.lookup(joint.id, joint.revision)
}

/// Reports whether the joint still exists.
func (joint B2Joint) IsValid() bool {
	return joint.get() != nil
}

/// Get the type of the concrete joint.
func (joint B2Joint) GetType() uint8 {
	if j := joint.get(); j != nil {
		return j.typ
	}
	return B2JointType.E_unknownJoint
}

/// Get the first body attached to this joint.
func (joint B2Joint) GetBodyA() B2Body {
	if j := joint.get(); j != nil {
		return joint.world.bodyHandle(j.bodyA)
	}
	return B2Body{}
}

/// Get the second body attached to this joint.
func (joint B2Joint) GetBodyB() B2Body {
	if j := joint.get(); j != nil {
		return joint.world.bodyHandle(j.bodyB)
	}
	return B2Body{}
}

/// Get the anchor point on bodyA in world coordinates.
func (joint B2Joint) GetAnchorA() B2Vec2 {
	if j := joint.get(); j != nil {
		a, _ := j.anchors()
		return a
	}
	return B2Vec2{}
}

/// Get the anchor point on bodyB in world coordinates.
func (joint B2Joint) GetAnchorB() B2Vec2 {
	if j := joint.get(); j != nil {
		_, b := j.anchors()
		return b
	}
	return B2Vec2{}
}

/// Get the reaction force on bodyB at the joint anchor in Newtons.
func (joint B2Joint) GetReactionForce(inv_dt float64) B2Vec2 {
	if j := joint.get(); j != nil {
		return j.ops().reactionForce(j, inv_dt)
	}
	return B2Vec2{}
}

/// Get the reaction torque on bodyB in N*m.
func (joint B2Joint) GetReactionTorque(inv_dt float64) float64 {
	if j := joint.get(); j != nil {
		return j.ops().reactionTorque(j, inv_dt)
	}
	return 0.0
}

func (joint B2Joint) GetUserData() interface{} {
	if j := joint.get(); j != nil {
		return j.userData
	}
	return nil
}

func (joint B2Joint) SetUserData(data interface{}) {
	if j := joint.get(); j != nil {
		j.userData = data
	}
}

/// Short-cut function to determine if either body is enabled.
func (joint B2Joint) IsEnabled() bool {
	j := joint.get()
	if j == nil {
		return false
	}
	return joint.world.bodies.get(j.bodyA).isEnabled() && joint.world.bodies.get(j.bodyB).isEnabled()
}

/// Get collide connected.
/// Note: modifying the collide connect flag won't work correctly because
/// the flag is only checked when fixture AABBs begin to overlap.
func (joint B2Joint) IsCollideConnected() bool {
	if j := joint.get(); j != nil {
		return j.collideConnected
	}
	return false
}

/// Returns the world that owns the joint.
func (joint B2Joint) GetWorld() *B2World {
	return joint.world
}
