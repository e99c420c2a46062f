package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Weld joint definition. You need to specify local anchor points
/// where they are attached and the relative body angle. The position
/// of the anchor points is important for computing the reaction torque.
type B2WeldJointDef struct {
	B2JointDef

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The bodyB angle minus bodyA angle in the reference state (radians).
	ReferenceAngle float64

	/// The mass-spring-damper frequency in Hertz. Rotation only.
	/// Disable softness with a value of 0.
	FrequencyHz float64

	/// The damping ratio. 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeB2WeldJointDef() B2WeldJointDef {
	return B2WeldJointDef{}
}

/// Initialize the bodies, anchors, and reference angle using a world
/// anchor point.
func (def *B2WeldJointDef) Initialize(bodyA B2Body, bodyB B2Body, anchor B2Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.GetLocalPoint(anchor)
	def.LocalAnchorB = bodyB.GetLocalPoint(anchor)
	def.ReferenceAngle = bodyB.GetAngle() - bodyA.GetAngle()
}

func (def *B2WeldJointDef) kind() uint8 {
	return B2JointType.E_weldJoint
}

func (def *B2WeldJointDef) validate() error {
	if def.FrequencyHz < 0.0 || def.DampingRatio < 0.0 {
		return errors.Wrap(ErrInvalidJoint, "weld softness")
	}
	return nil
}

func (def *B2WeldJointDef) build(j *b2Joint) {
	j.weld = &b2WeldJoint{
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
}

type b2WeldJoint struct {
	frequencyHz  float64
	dampingRatio float64
	bias         float64

	// Solver shared
	localAnchorA   B2Vec2
	localAnchorB   B2Vec2
	referenceAngle float64
	gamma          float64
	impulse        B2Vec3

	// Solver temp
	rA   B2Vec2
	rB   B2Vec2
	mass B2Mat33
}

// Point-to-point constraint
// C = p2 - p1
// Cdot = v2 - v1
//      = v2 + cross(w2, r2) - v1 - cross(w1, r1)
// J = [-I -r1_skew I r2_skew ]
// Identity used:
// w k % (rx i + ry j) = w * (-ry i + rx j)

// Angle constraint
// C = angle2 - angle1 - referenceAngle
// Cdot = w2 - w1
// J = [0 0 -1 0 0 1]
// K = invI1 + invI2

func init() {
	b2AddJointType(B2JointType.E_weldJoint, b2JointOps{
		initVelocityConstraints:  b2WeldInitVelocityConstraints,
		solveVelocityConstraints: b2WeldSolveVelocityConstraints,
		solvePositionConstraints: b2WeldSolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.weld.localAnchorA },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.weld.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt, B2Vec2{j.weld.impulse.X, j.weld.impulse.Y})
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 {
			return inv_dt * j.weld.impulse.Z
		},
	})
}

func b2WeldInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.weld
	j.prepare(data)

	_, aA, _, aB := j.loadPositions(data)
	vA, wA, vB, wB := j.loadVelocities(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	joint.rA = B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	joint.rB = B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))

	iA, iB := j.invIA, j.invIB

	K := b2PointAngleMass(j.invMassA, j.invMassB, iA, iB, joint.rA, joint.rB)

	switch {
	case joint.frequencyHz > 0.0:
		joint.mass = K.GetInverse22()

		invM := iA + iB
		m := 0.0
		if invM > 0.0 {
			m = 1.0 / invM
		}

		C := aB - aA - joint.referenceAngle

		var beta float64
		joint.gamma, beta = b2SoftConstraint(m, joint.frequencyHz, joint.dampingRatio, data.Step.Dt)
		joint.bias = C * beta

		invM += joint.gamma
		joint.mass.Ez.Z = b2Inverse(invM)

	case K.Ez.Z == 0.0:
		joint.mass = K.GetInverse22()
		joint.gamma = 0.0
		joint.bias = 0.0

	default:
		joint.mass = K.GetSymInverse33()
		joint.gamma = 0.0
		joint.bias = 0.0
	}

	if data.Step.WarmStarting {
		// Scale impulses to support a variable time step.
		joint.impulse = B2Vec3MulScalar(data.Step.DtRatio, joint.impulse)

		P := B2Vec2{joint.impulse.X, joint.impulse.Y}
		j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, P, joint.impulse.Z)
	} else {
		joint.impulse.SetZero()
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2WeldSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.weld
	vA, wA, vB, wB := j.loadVelocities(data)

	if joint.frequencyHz > 0.0 {
		Cdot2 := wB - wA

		impulse2 := -joint.mass.Ez.Z * (Cdot2 + joint.bias + joint.gamma*joint.impulse.Z)
		joint.impulse.Z += impulse2

		wA -= j.invIA * impulse2
		wB += j.invIB * impulse2

		Cdot1 := b2RelativeVelocity(vA, wA, joint.rA, vB, wB, joint.rB)

		impulse1 := B2Vec2Mul22(joint.mass, Cdot1).Negate()
		joint.impulse.X += impulse1.X
		joint.impulse.Y += impulse1.Y

		j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, impulse1, 0.0)
	} else {
		Cdot1 := b2RelativeVelocity(vA, wA, joint.rA, vB, wB, joint.rB)
		Cdot2 := wB - wA
		Cdot := MakeB2Vec3(Cdot1.X, Cdot1.Y, Cdot2)

		impulse := B2Vec3Mat33Mul(joint.mass, Cdot).Negate()
		joint.impulse = B2Vec3Add(joint.impulse, impulse)

		P := B2Vec2{impulse.X, impulse.Y}
		j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, P, impulse.Z)
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2WeldSolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.weld
	cA, aA, cB, aB := j.loadPositions(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))

	positionError := 0.0
	angularError := 0.0

	K := b2PointAngleMass(mA, mB, iA, iB, rA, rB)

	C1 := B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, rB), cA), rA)
	positionError = C1.Length()

	var impulse B2Vec3
	if joint.frequencyHz > 0.0 {
		P := K.Solve22(C1).Negate()
		impulse = B2Vec3{P.X, P.Y, 0.0}
	} else {
		C2 := aB - aA - joint.referenceAngle
		angularError = math.Abs(C2)

		if K.Ez.Z > 0.0 {
			impulse = K.Solve33(B2Vec3{C1.X, C1.Y, C2}).Negate()
		} else {
			impulse2 := K.Solve22(C1).Negate()
			impulse = B2Vec3{impulse2.X, impulse2.Y, 0.0}
		}
	}

	P := B2Vec2{impulse.X, impulse.Y}

	cA = B2Vec2MulSub(cA, mA, P)
	aA -= iA * (B2Vec2Cross(rA, P) + impulse.Z)

	cB = B2Vec2MulAdd(cB, mB, P)
	aB += iB * (B2Vec2Cross(rB, P) + impulse.Z)

	j.storePositions(data, cA, aA, cB, aB)

	return positionError <= B2_linearSlop && angularError <= B2_angularSlop
}

/// A weld joint essentially glues two bodies together. A weld joint may
/// distort somewhat because the island constraint solver is approximate.
type B2WeldJoint struct {
	B2Joint
}

func (joint B2Joint) AsWeldJoint() (B2WeldJoint, bool) {
	return B2WeldJoint{joint}, joint.GetType() == B2JointType.E_weldJoint
}

func (joint B2WeldJoint) data() *b2WeldJoint {
	if j := joint.get(); j != nil {
		return j.weld
	}
	return nil
}

/// The local anchor point relative to bodyA's origin.
func (joint B2WeldJoint) GetLocalAnchorA() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorA
	}
	return B2Vec2{}
}

/// The local anchor point relative to bodyB's origin.
func (joint B2WeldJoint) GetLocalAnchorB() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorB
	}
	return B2Vec2{}
}

/// Get the reference angle.
func (joint B2WeldJoint) GetReferenceAngle() float64 {
	if d := joint.data(); d != nil {
		return d.referenceAngle
	}
	return 0.0
}

/// Set/get frequency in Hz.
func (joint B2WeldJoint) SetFrequency(hz float64) {
	if d := joint.data(); d != nil {
		d.frequencyHz = hz
	}
}

func (joint B2WeldJoint) GetFrequency() float64 {
	if d := joint.data(); d != nil {
		return d.frequencyHz
	}
	return 0.0
}

/// Set/get damping ratio.
func (joint B2WeldJoint) SetDampingRatio(ratio float64) {
	if d := joint.data(); d != nil {
		d.dampingRatio = ratio
	}
}

func (joint B2WeldJoint) GetDampingRatio() float64 {
	if d := joint.data(); d != nil {
		return d.dampingRatio
	}
	return 0.0
}
