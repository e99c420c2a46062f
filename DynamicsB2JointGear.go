package box2d

import (
	"github.com/pkg/errors"
)

/// Gear joint definition. This definition requires two existing
/// revolute or prismatic joints (any combination will work).
type B2GearJointDef struct {
	B2JointDef

	/// The first revolute/prismatic joint attached to the gear joint.
	Joint1 B2Joint

	/// The second revolute/prismatic joint attached to the gear joint.
	Joint2 B2Joint

	/// The gear ratio.
	/// @see B2GearJoint for explanation.
	Ratio float64
}

func MakeB2GearJointDef() B2GearJointDef {
	return B2GearJointDef{
		Ratio: 1.0,
	}
}

/// Initialize the joints, ratio and the geared bodies. BodyA is the second
/// body of joint1, BodyB the second body of joint2.
func (def *B2GearJointDef) Initialize(joint1 B2Joint, joint2 B2Joint, ratio float64) {
	def.Joint1 = joint1
	def.Joint2 = joint2
	def.BodyA = joint1.GetBodyB()
	def.BodyB = joint2.GetBodyB()
	def.Ratio = ratio
}

func (def *B2GearJointDef) kind() uint8 {
	return B2JointType.E_gearJoint
}

func b2IsGearable(joint B2Joint) bool {
	typ := joint.GetType()
	return typ == B2JointType.E_revoluteJoint || typ == B2JointType.E_prismaticJoint
}

func (def *B2GearJointDef) validate() error {
	switch {
	case !def.Joint1.IsValid() || !def.Joint2.IsValid():
		return errors.Wrap(ErrStaleHandle, "gear joint")
	case !b2IsGearable(def.Joint1) || !b2IsGearable(def.Joint2):
		return errors.Wrap(ErrInvalidJoint, "gear needs revolute or prismatic joints")
	case def.Joint1.world != def.BodyA.world || def.Joint2.world != def.BodyA.world:
		return errors.Wrap(ErrInvalidJoint, "gear joints belong to another world")
	case def.Joint1.GetBodyB() != def.BodyA || def.Joint2.GetBodyB() != def.BodyB:
		return errors.Wrap(ErrInvalidJoint, "gear bodies must be the second bodies of the geared joints")
	case !B2IsValid(def.Ratio) || def.Ratio == 0.0:
		return errors.Wrapf(ErrInvalidJoint, "gear ratio %v", def.Ratio)
	}
	return nil
}

// Geometry of one geared joint as seen from the gear.
type b2GearSide struct {
	typ            uint8
	body           int32 // the ground side of the geared joint
	localAnchor    B2Vec2
	localAnchorG   B2Vec2 // anchor on the ground side
	localAxis      B2Vec2
	referenceAngle float64
}

func makeB2GearSide(geared *b2Joint) b2GearSide {
	side := b2GearSide{
		typ:  geared.typ,
		body: geared.bodyA,
	}
	if geared.typ == B2JointType.E_revoluteJoint {
		side.localAnchorG = geared.revolute.localAnchorA
		side.localAnchor = geared.revolute.localAnchorB
		side.referenceAngle = geared.revolute.referenceAngle
	} else {
		side.localAnchorG = geared.prismatic.localAnchorA
		side.localAnchor = geared.prismatic.localAnchorB
		side.referenceAngle = geared.prismatic.referenceAngle
		side.localAxis = geared.prismatic.localXAxisA
	}
	return side
}

// Joint coordinate from the body transforms.
func (side *b2GearSide) coordinate(xf B2Transform, a float64, xfG B2Transform, aG float64) float64 {
	if side.typ == B2JointType.E_revoluteJoint {
		return a - aG - side.referenceAngle
	}
	pG := side.localAnchorG
	p := B2RotVec2MulT(xfG.Q, B2Vec2Add(B2RotVec2Mul(xf.Q, side.localAnchor), B2Vec2Sub(xf.P, xfG.P)))
	return B2Vec2Dot(B2Vec2Sub(p, pG), side.localAxis)
}

func (def *B2GearJointDef) build(j *b2Joint) {
	world := j.world
	joint1 := world.joints.get(def.Joint1.id)
	joint2 := world.joints.get(def.Joint2.id)

	gear := &b2GearJoint{
		joint1: def.Joint1.id,
		joint2: def.Joint2.id,
		sideA:  makeB2GearSide(joint1),
		sideB:  makeB2GearSide(joint2),
		ratio:  def.Ratio,
	}

	// Body A is connected to body C, body B to body D.
	j.bodyA = joint1.bodyB
	j.bodyB = joint2.bodyB

	bA := world.bodies.get(j.bodyA)
	bB := world.bodies.get(j.bodyB)
	bC := world.bodies.get(gear.sideA.body)
	bD := world.bodies.get(gear.sideB.body)

	coordinateA := gear.sideA.coordinate(bA.xf, bA.sweep.A, bC.xf, bC.sweep.A)
	coordinateB := gear.sideB.coordinate(bB.xf, bB.sweep.A, bD.xf, bD.sweep.A)

	gear.constant = coordinateA + gear.ratio*coordinateB
	j.gear = gear
}

type b2GearJoint struct {
	joint1 int32
	joint2 int32

	sideA b2GearSide
	sideB b2GearSide

	// Solver shared
	constant float64
	ratio    float64
	impulse  float64

	// Solver temp
	indexC, indexD int
	lcC, lcD       B2Vec2
	mC, mD         float64
	iC, iD         float64
	JvAC, JvBD     B2Vec2
	JwA, JwB       float64
	JwC, JwD       float64
	mass           float64
}

// Gear Joint:
// C0 = (coordinate1 + ratio * coordinate2)_initial
// C = (coordinate1 + ratio * coordinate2) - C0 = 0
// J = [J1 ratio * J2]
// K = J * invM * JT
//   = J1 * invM1 * J1T + ratio * ratio * J2 * invM2 * J2T
//
// Revolute:
// coordinate = rotation
// Cdot = angularVelocity
// J = [0 0 1]
// K = J * invM * JT = invI
//
// Prismatic:
// coordinate = dot(p - pg, ug)
// Cdot = dot(v + cross(w, r), ug)
// J = [ug cross(r, ug)]
// K = J * invM * JT = invMass + invI * cross(r, ug)^2

func init() {
	b2AddJointType(B2JointType.E_gearJoint, b2JointOps{
		initVelocityConstraints:  b2GearInitVelocityConstraints,
		solveVelocityConstraints: b2GearSolveVelocityConstraints,
		solvePositionConstraints: b2GearSolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.gear.sideA.localAnchor },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.gear.sideB.localAnchor },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt*j.gear.impulse, j.gear.JvAC)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 {
			return inv_dt * j.gear.impulse * j.gear.JwA
		},
	})
}

// Jacobian rows and effective mass for the current positions.
type b2GearJacobian struct {
	JvAC, JvBD         B2Vec2
	JwA, JwB, JwC, JwD float64
	mass               float64
}

func (joint *b2GearJoint) jacobian(j *b2Joint, qA, qB, qC, qD B2Rot) b2GearJacobian {
	var jac b2GearJacobian

	if joint.sideA.typ == B2JointType.E_revoluteJoint {
		jac.JwA = 1.0
		jac.JwC = 1.0
		jac.mass += j.invIA + joint.iC
	} else {
		u := B2RotVec2Mul(qC, joint.sideA.localAxis)
		rC := B2RotVec2Mul(qC, B2Vec2Sub(joint.sideA.localAnchorG, joint.lcC))
		rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.sideA.localAnchor, j.localCenterA))
		jac.JvAC = u
		jac.JwC = B2Vec2Cross(rC, u)
		jac.JwA = B2Vec2Cross(rA, u)
		jac.mass += joint.mC + j.invMassA + joint.iC*jac.JwC*jac.JwC + j.invIA*jac.JwA*jac.JwA
	}

	ratio := joint.ratio
	if joint.sideB.typ == B2JointType.E_revoluteJoint {
		jac.JwB = ratio
		jac.JwD = ratio
		jac.mass += ratio * ratio * (j.invIB + joint.iD)
	} else {
		u := B2RotVec2Mul(qD, joint.sideB.localAxis)
		rD := B2RotVec2Mul(qD, B2Vec2Sub(joint.sideB.localAnchorG, joint.lcD))
		rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.sideB.localAnchor, j.localCenterB))
		jac.JvBD = B2Vec2MulScalar(ratio, u)
		jac.JwD = ratio * B2Vec2Cross(rD, u)
		jac.JwB = ratio * B2Vec2Cross(rB, u)
		jac.mass += ratio*ratio*(joint.mD+j.invMassB) + joint.iD*jac.JwD*jac.JwD + j.invIB*jac.JwB*jac.JwB
	}
	return jac
}

// Moves all four bodies along the gear Jacobian. Works for velocities and
// positions alike.
func (joint *b2GearJoint) apply(j *b2Joint, jac *b2GearJacobian, s *[4]B2Vec2, a *[4]float64, impulse float64) {
	s[0] = B2Vec2MulAdd(s[0], j.invMassA*impulse, jac.JvAC)
	a[0] += j.invIA * impulse * jac.JwA
	s[1] = B2Vec2MulAdd(s[1], j.invMassB*impulse, jac.JvBD)
	a[1] += j.invIB * impulse * jac.JwB
	s[2] = B2Vec2MulSub(s[2], joint.mC*impulse, jac.JvAC)
	a[2] -= joint.iC * impulse * jac.JwC
	s[3] = B2Vec2MulSub(s[3], joint.mD*impulse, jac.JvBD)
	a[3] -= joint.iD * impulse * jac.JwD
}

func (joint *b2GearJoint) indices(j *b2Joint) [4]int {
	return [4]int{j.indexA, j.indexB, joint.indexC, joint.indexD}
}

func (joint *b2GearJoint) loadVelocities(j *b2Joint, data *B2SolverData) (v [4]B2Vec2, w [4]float64) {
	for k, index := range joint.indices(j) {
		v[k] = data.Velocities[index].V
		w[k] = data.Velocities[index].W
	}
	return
}

func (joint *b2GearJoint) storeVelocities(j *b2Joint, data *B2SolverData, v [4]B2Vec2, w [4]float64) {
	for k, index := range joint.indices(j) {
		data.Velocities[index] = B2Velocity{V: v[k], W: w[k]}
	}
}

func b2GearInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.gear
	j.prepare(data)

	var bC, bD *b2Body
	joint.indexC, bC = data.body(joint.sideA.body)
	joint.indexD, bD = data.body(joint.sideB.body)
	joint.lcC = bC.sweep.LocalCenter
	joint.lcD = bD.sweep.LocalCenter
	joint.mC = bC.invMass
	joint.mD = bD.invMass
	joint.iC = bC.invI
	joint.iD = bD.invI

	qA := MakeB2RotFromAngle(data.Positions[j.indexA].A)
	qB := MakeB2RotFromAngle(data.Positions[j.indexB].A)
	qC := MakeB2RotFromAngle(data.Positions[joint.indexC].A)
	qD := MakeB2RotFromAngle(data.Positions[joint.indexD].A)

	jac := joint.jacobian(j, qA, qB, qC, qD)
	joint.JvAC, joint.JvBD = jac.JvAC, jac.JvBD
	joint.JwA, joint.JwB, joint.JwC, joint.JwD = jac.JwA, jac.JwB, jac.JwC, jac.JwD

	// Compute effective mass.
	joint.mass = b2Inverse(jac.mass)

	v, w := joint.loadVelocities(j, data)

	if data.Step.WarmStarting {
		joint.apply(j, &jac, &v, &w, joint.impulse)
	} else {
		joint.impulse = 0.0
	}

	joint.storeVelocities(j, data, v, w)
}

func b2GearSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.gear
	v, w := joint.loadVelocities(j, data)

	Cdot := B2Vec2Dot(joint.JvAC, B2Vec2Sub(v[0], v[2])) + B2Vec2Dot(joint.JvBD, B2Vec2Sub(v[1], v[3]))
	Cdot += (joint.JwA*w[0] - joint.JwC*w[2]) + (joint.JwB*w[1] - joint.JwD*w[3])

	impulse := -joint.mass * Cdot
	joint.impulse += impulse

	jac := b2GearJacobian{
		JvAC: joint.JvAC, JvBD: joint.JvBD,
		JwA: joint.JwA, JwB: joint.JwB, JwC: joint.JwC, JwD: joint.JwD,
	}
	joint.apply(j, &jac, &v, &w, impulse)

	joint.storeVelocities(j, data, v, w)
}

func b2GearSolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.gear
	indices := joint.indices(j)

	var c [4]B2Vec2
	var a [4]float64
	for k, index := range indices {
		c[k] = data.Positions[index].C
		a[k] = data.Positions[index].A
	}

	qA := MakeB2RotFromAngle(a[0])
	qB := MakeB2RotFromAngle(a[1])
	qC := MakeB2RotFromAngle(a[2])
	qD := MakeB2RotFromAngle(a[3])

	jac := joint.jacobian(j, qA, qB, qC, qD)

	var coordinateA, coordinateB float64
	if joint.sideA.typ == B2JointType.E_revoluteJoint {
		coordinateA = a[0] - a[2] - joint.sideA.referenceAngle
	} else {
		rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.sideA.localAnchor, j.localCenterA))
		pC := B2Vec2Sub(joint.sideA.localAnchorG, joint.lcC)
		pA := B2RotVec2MulT(qC, B2Vec2Add(rA, B2Vec2Sub(c[0], c[2])))
		coordinateA = B2Vec2Dot(B2Vec2Sub(pA, pC), joint.sideA.localAxis)
	}

	if joint.sideB.typ == B2JointType.E_revoluteJoint {
		coordinateB = a[1] - a[3] - joint.sideB.referenceAngle
	} else {
		rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.sideB.localAnchor, j.localCenterB))
		pD := B2Vec2Sub(joint.sideB.localAnchorG, joint.lcD)
		pB := B2RotVec2MulT(qD, B2Vec2Add(rB, B2Vec2Sub(c[1], c[3])))
		coordinateB = B2Vec2Dot(B2Vec2Sub(pB, pD), joint.sideB.localAxis)
	}

	C := (coordinateA + joint.ratio*coordinateB) - joint.constant

	impulse := 0.0
	if jac.mass > 0.0 {
		impulse = -C / jac.mass
	}

	joint.apply(j, &jac, &c, &a, impulse)

	for k, index := range indices {
		data.Positions[index] = B2Position{C: c[k], A: a[k]}
	}

	// The gear coordinate error is not tracked; the geared joints report
	// their own errors.
	return true
}

/// A gear joint is used to connect two joints together. Either joint
/// can be a revolute or prismatic joint. You specify a gear ratio
/// to bind the motions together:
/// coordinate1 + ratio * coordinate2 = constant
/// The ratio can be negative or positive. If one joint is a revolute joint
/// and the other joint is a prismatic joint, then the ratio will have units
/// of length or units of 1/length.
/// Destroying joint1 or joint2 destroys the gear joint as well.
type B2GearJoint struct {
	B2Joint
}

func (joint B2Joint) AsGearJoint() (B2GearJoint, bool) {
	return B2GearJoint{joint}, joint.GetType() == B2JointType.E_gearJoint
}

func (joint B2GearJoint) data() *b2GearJoint {
	if j := joint.get(); j != nil {
		return j.gear
	}
	return nil
}

/// Get the first joint.
func (joint B2GearJoint) GetJoint1() B2Joint {
	if d := joint.data(); d != nil {
		return joint.world.jointHandle(d.joint1)
	}
	return B2Joint{}
}

/// Get the second joint.
func (joint B2GearJoint) GetJoint2() B2Joint {
	if d := joint.data(); d != nil {
		return joint.world.jointHandle(d.joint2)
	}
	return B2Joint{}
}

/// Set/Get the gear ratio.
func (joint B2GearJoint) SetRatio(ratio float64) error {
	d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}
	if !B2IsValid(ratio) {
		return errors.Wrapf(ErrInvalidJoint, "gear ratio %v", ratio)
	}
	d.ratio = ratio
	return nil
}

func (joint B2GearJoint) GetRatio() float64 {
	if d := joint.data(); d != nil {
		return d.ratio
	}
	return 0.0
}
