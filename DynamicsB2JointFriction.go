package box2d

import (
	"github.com/pkg/errors"
)

/// Friction joint definition.
type B2FrictionJointDef struct {
	B2JointDef

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The maximum friction force in N.
	MaxForce float64

	/// The maximum friction torque in N-m.
	MaxTorque float64
}

func MakeB2FrictionJointDef() B2FrictionJointDef {
	return B2FrictionJointDef{}
}

/// Initialize the bodies and anchors using a world anchor point.
func (def *B2FrictionJointDef) Initialize(bodyA B2Body, bodyB B2Body, anchor B2Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.GetLocalPoint(anchor)
	def.LocalAnchorB = bodyB.GetLocalPoint(anchor)
}

func (def *B2FrictionJointDef) kind() uint8 {
	return B2JointType.E_frictionJoint
}

func (def *B2FrictionJointDef) validate() error {
	if !B2IsValid(def.MaxForce) || def.MaxForce < 0.0 || !B2IsValid(def.MaxTorque) || def.MaxTorque < 0.0 {
		return errors.Wrap(ErrInvalidJoint, "friction force and torque must be non-negative")
	}
	return nil
}

func (def *B2FrictionJointDef) build(j *b2Joint) {
	j.friction = &b2FrictionJoint{
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		b2FrictionCore: b2FrictionCore{
			maxForce:  def.MaxForce,
			maxTorque: def.MaxTorque,
		},
	}
}

/// Clamped linear and angular friction between two bodies. The motor joint
/// drives the same rows with a position bias.
type b2FrictionCore struct {
	// Solver shared
	linearImpulse  B2Vec2
	angularImpulse float64
	maxForce       float64
	maxTorque      float64

	// Solver temp
	rA          B2Vec2
	rB          B2Vec2
	linearMass  B2Mat22
	angularMass float64
}

func (core *b2FrictionCore) initMass(j *b2Joint) {
	K := b2PointMass(j.invMassA, j.invMassB, j.invIA, j.invIB, core.rA, core.rB)
	core.linearMass = K.GetInverse()
	core.angularMass = b2Inverse(j.invIA + j.invIB)
}

func (core *b2FrictionCore) warmStart(j *b2Joint, data *B2SolverData) {
	vA, wA, vB, wB := j.loadVelocities(data)

	if data.Step.WarmStarting {
		// Scale impulses to support a variable time step.
		core.linearImpulse = B2Vec2MulScalar(data.Step.DtRatio, core.linearImpulse)
		core.angularImpulse *= data.Step.DtRatio

		j.applyImpulse(&vA, &wA, &vB, &wB, core.rA, core.rB, core.linearImpulse, core.angularImpulse)
	} else {
		core.linearImpulse.SetZero()
		core.angularImpulse = 0.0
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func (core *b2FrictionCore) solve(j *b2Joint, data *B2SolverData, linearBias B2Vec2, angularBias float64) {
	vA, wA, vB, wB := j.loadVelocities(data)

	h := data.Step.Dt

	// Solve angular friction
	{
		Cdot := wB - wA + angularBias
		impulse := -core.angularMass * Cdot

		oldImpulse := core.angularImpulse
		maxImpulse := h * core.maxTorque
		core.angularImpulse = B2FloatClamp(core.angularImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = core.angularImpulse - oldImpulse

		wA -= j.invIA * impulse
		wB += j.invIB * impulse
	}

	// Solve linear friction
	{
		Cdot := B2Vec2Add(b2RelativeVelocity(vA, wA, core.rA, vB, wB, core.rB), linearBias)

		impulse := B2Vec2Mat22Mul(core.linearMass, Cdot).Negate()
		oldImpulse := core.linearImpulse
		core.linearImpulse = B2Vec2Add(core.linearImpulse, impulse)

		maxImpulse := h * core.maxForce

		if core.linearImpulse.LengthSquared() > maxImpulse*maxImpulse {
			core.linearImpulse.Normalize()
			core.linearImpulse = B2Vec2MulScalar(maxImpulse, core.linearImpulse)
		}

		impulse = B2Vec2Sub(core.linearImpulse, oldImpulse)
		j.applyImpulse(&vA, &wA, &vB, &wB, core.rA, core.rB, impulse, 0.0)
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

type b2FrictionJoint struct {
	b2FrictionCore

	localAnchorA B2Vec2
	localAnchorB B2Vec2
}

// Point-to-point constraint
// Cdot = v2 - v1
//      = v2 + cross(w2, r2) - v1 - cross(w1, r1)
// J = [-I -r1_skew I r2_skew ]
// Identity used:
// w k % (rx i + ry j) = w * (-ry i + rx j)

// Angle constraint
// Cdot = w2 - w1
// J = [0 0 -1 0 0 1]
// K = invI1 + invI2

func init() {
	b2AddJointType(B2JointType.E_frictionJoint, b2JointOps{
		initVelocityConstraints: func(j *b2Joint, data *B2SolverData) {
			joint := j.friction
			j.prepare(data)

			_, aA, _, aB := j.loadPositions(data)
			qA := MakeB2RotFromAngle(aA)
			qB := MakeB2RotFromAngle(aB)

			// Compute the effective mass matrix.
			joint.rA = B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
			joint.rB = B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
			joint.initMass(j)
			joint.warmStart(j, data)
		},
		solveVelocityConstraints: func(j *b2Joint, data *B2SolverData) {
			j.friction.solve(j, data, B2Vec2{}, 0.0)
		},
		solvePositionConstraints: func(j *b2Joint, data *B2SolverData) bool {
			return true
		},
		localAnchorA: func(j *b2Joint) B2Vec2 { return j.friction.localAnchorA },
		localAnchorB: func(j *b2Joint) B2Vec2 { return j.friction.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt, j.friction.linearImpulse)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 {
			return inv_dt * j.friction.angularImpulse
		},
	})
}

/// Friction joint. This is used for top-down friction.
/// It provides 2D translational friction and angular friction.
type B2FrictionJoint struct {
	B2Joint
}

func (joint B2Joint) AsFrictionJoint() (B2FrictionJoint, bool) {
	return B2FrictionJoint{joint}, joint.GetType() == B2JointType.E_frictionJoint
}

func (joint B2FrictionJoint) data() *b2FrictionJoint {
	if j := joint.get(); j != nil {
		return j.friction
	}
	return nil
}

/// The local anchor point relative to bodyA's origin.
func (joint B2FrictionJoint) GetLocalAnchorA() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorA
	}
	return B2Vec2{}
}

/// The local anchor point relative to bodyB's origin.
func (joint B2FrictionJoint) GetLocalAnchorB() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorB
	}
	return B2Vec2{}
}

/// Set the maximum friction force in N.
func (joint B2FrictionJoint) SetMaxForce(force float64) error {
	d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}
	if !B2IsValid(force) || force < 0.0 {
		return errors.Wrapf(ErrInvalidJoint, "friction force %v", force)
	}
	d.maxForce = force
	return nil
}

/// Get the maximum friction force in N.
func (joint B2FrictionJoint) GetMaxForce() float64 {
	if d := joint.data(); d != nil {
		return d.maxForce
	}
	return 0.0
}

/// Set the maximum friction torque in N*m.
func (joint B2FrictionJoint) SetMaxTorque(torque float64) error {
	d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}
	if !B2IsValid(torque) || torque < 0.0 {
		return errors.Wrapf(ErrInvalidJoint, "friction torque %v", torque)
	}
	d.maxTorque = torque
	return nil
}

/// Get the maximum friction torque in N*m.
func (joint B2FrictionJoint) GetMaxTorque() float64 {
	if d := joint.data(); d != nil {
		return d.maxTorque
	}
	return 0.0
}
