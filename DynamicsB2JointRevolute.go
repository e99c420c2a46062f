package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Revolute joint definition. This requires defining an
/// anchor point where the bodies are joined. The definition
/// uses local anchor points so that the initial configuration
/// can violate the constraint slightly. You also need to
/// specify the initial relative angle for joint limits. This
/// helps when saving and loading a game.
/// The local anchor points are measured from the body's origin
/// rather than the center of mass because:
/// 1. you might not know where the center of mass will be.
/// 2. if you add/remove shapes from a body and recompute the mass,
///    the joints will be broken.
type B2RevoluteJointDef struct {
	B2JointDef

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The bodyB angle minus bodyA angle in the reference state (radians).
	ReferenceAngle float64

	/// A flag to enable joint limits.
	EnableLimit bool

	/// The lower angle for the joint limit (radians).
	LowerAngle float64

	/// The upper angle for the joint limit (radians).
	UpperAngle float64

	/// A flag to enable the joint motor.
	EnableMotor bool

	/// The desired motor speed. Usually in radians per second.
	MotorSpeed float64

	/// The maximum motor torque used to achieve the desired motor speed.
	/// Usually in N-m.
	MaxMotorTorque float64
}

func MakeB2RevoluteJointDef() B2RevoluteJointDef {
	return B2RevoluteJointDef{}
}

/// Initialize the bodies, anchors, and reference angle using a world
/// anchor point.
func (def *B2RevoluteJointDef) Initialize(bodyA B2Body, bodyB B2Body, anchor B2Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.GetLocalPoint(anchor)
	def.LocalAnchorB = bodyB.GetLocalPoint(anchor)
	def.ReferenceAngle = bodyB.GetAngle() - bodyA.GetAngle()
}

func (def *B2RevoluteJointDef) kind() uint8 {
	return B2JointType.E_revoluteJoint
}

func (def *B2RevoluteJointDef) validate() error {
	if def.EnableLimit && def.LowerAngle > def.UpperAngle {
		return errors.Wrapf(ErrInvalidJoint, "revolute limits %v > %v", def.LowerAngle, def.UpperAngle)
	}
	if def.MaxMotorTorque < 0.0 {
		return errors.Wrapf(ErrInvalidJoint, "revolute motor torque %v", def.MaxMotorTorque)
	}
	return nil
}

func (def *B2RevoluteJointDef) build(j *b2Joint) {
	j.revolute = &b2RevoluteJoint{
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
		maxMotorTorque: def.MaxMotorTorque,
		motorSpeed:     def.MotorSpeed,
		enableLimit:    def.EnableLimit,
		enableMotor:    def.EnableMotor,
		limitState:     B2LimitState.E_inactiveLimit,
	}
}

type b2RevoluteJoint struct {
	// Solver shared
	localAnchorA B2Vec2
	localAnchorB B2Vec2
	impulse      B2Vec3
	motorImpulse float64

	enableMotor    bool
	maxMotorTorque float64
	motorSpeed     float64

	enableLimit    bool
	referenceAngle float64
	lowerAngle     float64
	upperAngle     float64

	// Solver temp
	rA         B2Vec2
	rB         B2Vec2
	mass       B2Mat33 // effective mass for point-to-point constraint.
	motorMass  float64 // effective mass for motor/limit angular constraint.
	limitState uint8
}

// Point-to-point constraint
// C = p2 - p1
// Cdot = v2 - v1
//      = v2 + cross(w2, r2) - v1 - cross(w1, r1)
// J = [-I -r1_skew I r2_skew ]
// Identity used:
// w k % (rx i + ry j) = w * (-ry i + rx j)

// Motor constraint
// Cdot = w2 - w1
// J = [0 0 -1 0 0 1]
// K = invI1 + invI2

func init() {
	b2AddJointType(B2JointType.E_revoluteJoint, b2JointOps{
		initVelocityConstraints:  b2RevoluteInitVelocityConstraints,
		solveVelocityConstraints: b2RevoluteSolveVelocityConstraints,
		solvePositionConstraints: b2RevoluteSolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.revolute.localAnchorA },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.revolute.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt, B2Vec2{j.revolute.impulse.X, j.revolute.impulse.Y})
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 {
			return inv_dt * j.revolute.impulse.Z
		},
	})
}

func b2RevoluteInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.revolute
	j.prepare(data)

	_, aA, _, aB := j.loadPositions(data)
	vA, wA, vB, wB := j.loadVelocities(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	joint.rA = B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	joint.rB = B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB
	rA, rB := joint.rA, joint.rB

	fixedRotation := iA+iB == 0.0

	joint.mass = b2PointAngleMass(mA, mB, iA, iB, rA, rB)

	joint.motorMass = b2Inverse(iA + iB)

	if !joint.enableMotor || fixedRotation {
		joint.motorImpulse = 0.0
	}

	if joint.enableLimit && !fixedRotation {
		jointAngle := aB - aA - joint.referenceAngle
		joint.updateLimitState(jointAngle)
	} else {
		joint.limitState = B2LimitState.E_inactiveLimit
	}

	if data.Step.WarmStarting {
		// Scale impulses to support a variable time step.
		joint.impulse = B2Vec3MulScalar(data.Step.DtRatio, joint.impulse)
		joint.motorImpulse *= data.Step.DtRatio

		P := B2Vec2{joint.impulse.X, joint.impulse.Y}
		j.applyImpulse(&vA, &wA, &vB, &wB, rA, rB, P, joint.motorImpulse+joint.impulse.Z)
	} else {
		joint.impulse.SetZero()
		joint.motorImpulse = 0.0
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func (joint *b2RevoluteJoint) updateLimitState(jointAngle float64) {
	switch {
	case math.Abs(joint.upperAngle-joint.lowerAngle) < 2.0*B2_angularSlop:
		joint.limitState = B2LimitState.E_equalLimits
	case jointAngle <= joint.lowerAngle:
		if joint.limitState != B2LimitState.E_atLowerLimit {
			joint.impulse.Z = 0.0
		}
		joint.limitState = B2LimitState.E_atLowerLimit
	case jointAngle >= joint.upperAngle:
		if joint.limitState != B2LimitState.E_atUpperLimit {
			joint.impulse.Z = 0.0
		}
		joint.limitState = B2LimitState.E_atUpperLimit
	default:
		joint.limitState = B2LimitState.E_inactiveLimit
		joint.impulse.Z = 0.0
	}
}

func b2RevoluteSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.revolute
	vA, wA, vB, wB := j.loadVelocities(data)

	iA, iB := j.invIA, j.invIB

	fixedRotation := iA+iB == 0.0

	// Solve motor constraint.
	if joint.enableMotor && joint.limitState != B2LimitState.E_equalLimits && !fixedRotation {
		Cdot := wB - wA - joint.motorSpeed
		impulse := -joint.motorMass * Cdot
		oldImpulse := joint.motorImpulse
		maxImpulse := data.Step.Dt * joint.maxMotorTorque
		joint.motorImpulse = B2FloatClamp(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		wA -= iA * impulse
		wB += iB * impulse
	}

	Cdot1 := b2RelativeVelocity(vA, wA, joint.rA, vB, wB, joint.rB)

	// Solve limit constraint.
	if joint.enableLimit && joint.limitState != B2LimitState.E_inactiveLimit && !fixedRotation {
		Cdot2 := wB - wA
		Cdot := MakeB2Vec3(Cdot1.X, Cdot1.Y, Cdot2)

		impulse := joint.mass.Solve33(Cdot).Negate()

		switch joint.limitState {
		case B2LimitState.E_equalLimits:
			joint.impulse = B2Vec3Add(joint.impulse, impulse)

		case B2LimitState.E_atLowerLimit, B2LimitState.E_atUpperLimit:
			newImpulse := joint.impulse.Z + impulse.Z
			lower := joint.limitState == B2LimitState.E_atLowerLimit
			if (lower && newImpulse < 0.0) || (!lower && newImpulse > 0.0) {
				rhs := B2Vec2MulAdd(Cdot1.Negate(), joint.impulse.Z, B2Vec2{joint.mass.Ez.X, joint.mass.Ez.Y})
				reduced := joint.mass.Solve22(rhs)
				impulse.X = reduced.X
				impulse.Y = reduced.Y
				impulse.Z = -joint.impulse.Z
				joint.impulse.X += reduced.X
				joint.impulse.Y += reduced.Y
				joint.impulse.Z = 0.0
			} else {
				joint.impulse = B2Vec3Add(joint.impulse, impulse)
			}
		}

		P := B2Vec2{impulse.X, impulse.Y}
		j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, P, impulse.Z)
	} else {
		// Solve point-to-point constraint
		impulse := joint.mass.Solve22(Cdot1.Negate())

		joint.impulse.X += impulse.X
		joint.impulse.Y += impulse.Y

		j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, impulse, 0.0)
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2RevoluteSolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.revolute
	cA, aA, cB, aB := j.loadPositions(data)

	angularError := 0.0
	positionError := 0.0

	fixedRotation := j.invIA+j.invIB == 0.0

	// Solve angular limit constraint.
	if joint.enableLimit && joint.limitState != B2LimitState.E_inactiveLimit && !fixedRotation {
		angle := aB - aA - joint.referenceAngle
		limitImpulse := 0.0

		switch joint.limitState {
		case B2LimitState.E_equalLimits:
			// Prevent large angular corrections
			C := B2FloatClamp(angle-joint.lowerAngle, -B2_maxAngularCorrection, B2_maxAngularCorrection)
			limitImpulse = -joint.motorMass * C
			angularError = math.Abs(C)

		case B2LimitState.E_atLowerLimit:
			C := angle - joint.lowerAngle
			angularError = -C

			// Prevent large angular corrections and allow some slop.
			C = B2FloatClamp(C+B2_angularSlop, -B2_maxAngularCorrection, 0.0)
			limitImpulse = -joint.motorMass * C

		case B2LimitState.E_atUpperLimit:
			C := angle - joint.upperAngle
			angularError = C

			// Prevent large angular corrections and allow some slop.
			C = B2FloatClamp(C-B2_angularSlop, 0.0, B2_maxAngularCorrection)
			limitImpulse = -joint.motorMass * C
		}

		aA -= j.invIA * limitImpulse
		aB += j.invIB * limitImpulse
	}

	// Solve point-to-point constraint.
	{
		qA := MakeB2RotFromAngle(aA)
		qB := MakeB2RotFromAngle(aB)
		rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
		rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))

		C := B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, rB), cA), rA)
		positionError = C.Length()

		mA, mB := j.invMassA, j.invMassB
		iA, iB := j.invIA, j.invIB

		var K B2Mat22
		K.Ex.X = mA + mB + iA*rA.Y*rA.Y + iB*rB.Y*rB.Y
		K.Ex.Y = -iA*rA.X*rA.Y - iB*rB.X*rB.Y
		K.Ey.X = K.Ex.Y
		K.Ey.Y = mA + mB + iA*rA.X*rA.X + iB*rB.X*rB.X

		impulse := K.Solve(C).Negate()

		cA = B2Vec2MulSub(cA, mA, impulse)
		aA -= iA * B2Vec2Cross(rA, impulse)

		cB = B2Vec2MulAdd(cB, mB, impulse)
		aB += iB * B2Vec2Cross(rB, impulse)
	}

	j.storePositions(data, cA, aA, cB, aB)

	return positionError <= B2_linearSlop && angularError <= B2_angularSlop
}

/// A revolute joint constrains two bodies to share a common point while they
/// are free to rotate about the point. The relative rotation about the shared
/// point is the joint angle. You can limit the relative rotation with
/// a joint limit that specifies a lower and upper angle. You can use a motor
/// to drive the relative rotation about the shared point. A maximum motor torque
/// is provided so that infinite forces are not generated.
type B2RevoluteJoint struct {
	B2Joint
}

func (joint B2Joint) AsRevoluteJoint() (B2RevoluteJoint, bool) {
	return B2RevoluteJoint{joint}, joint.GetType() == B2JointType.E_revoluteJoint
}

func (joint B2RevoluteJoint) data() (*b2Joint, *b2RevoluteJoint) {
	if j := joint.get(); j != nil && j.revolute != nil {
		return j, j.revolute
	}
	return nil, nil
}

/// The local anchor point relative to bodyA's origin.
func (joint B2RevoluteJoint) GetLocalAnchorA() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localAnchorA
	}
	return B2Vec2{}
}

/// The local anchor point relative to bodyB's origin.
func (joint B2RevoluteJoint) GetLocalAnchorB() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localAnchorB
	}
	return B2Vec2{}
}

/// Get the reference angle.
func (joint B2RevoluteJoint) GetReferenceAngle() float64 {
	if _, d := joint.data(); d != nil {
		return d.referenceAngle
	}
	return 0.0
}

/// Get the current joint angle in radians.
func (joint B2RevoluteJoint) GetJointAngle() float64 {
	j, d := joint.data()
	if d == nil {
		return 0.0
	}
	bA, bB := j.records()
	return bB.sweep.A - bA.sweep.A - d.referenceAngle
}

/// Get the current joint angle speed in radians per second.
func (joint B2RevoluteJoint) GetJointSpeed() float64 {
	j, d := joint.data()
	if d == nil {
		return 0.0
	}
	bA, bB := j.records()
	return bB.angularVelocity - bA.angularVelocity
}

func (joint B2RevoluteJoint) IsLimitEnabled() bool {
	if _, d := joint.data(); d != nil {
		return d.enableLimit
	}
	return false
}

/// Enable/disable the joint limit.
func (joint B2RevoluteJoint) EnableLimit(flag bool) {
	j, d := joint.data()
	if d == nil || flag == d.enableLimit {
		return
	}
	j.wakeBodies()
	d.enableLimit = flag
	d.impulse.Z = 0.0
}

func (joint B2RevoluteJoint) GetLowerLimit() float64 {
	if _, d := joint.data(); d != nil {
		return d.lowerAngle
	}
	return 0.0
}

func (joint B2RevoluteJoint) GetUpperLimit() float64 {
	if _, d := joint.data(); d != nil {
		return d.upperAngle
	}
	return 0.0
}

/// Set the joint limits in radians. Lower must not exceed upper.
func (joint B2RevoluteJoint) SetLimits(lower float64, upper float64) error {
	if lower > upper {
		return errors.Wrapf(ErrInvalidJoint, "revolute limits %v > %v", lower, upper)
	}

	j, d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}

	if lower != d.lowerAngle || upper != d.upperAngle {
		j.wakeBodies()
		d.impulse.Z = 0.0
		d.lowerAngle = lower
		d.upperAngle = upper
	}
	return nil
}

func (joint B2RevoluteJoint) IsMotorEnabled() bool {
	if _, d := joint.data(); d != nil {
		return d.enableMotor
	}
	return false
}

/// Enable/disable the joint motor.
func (joint B2RevoluteJoint) EnableMotor(flag bool) {
	j, d := joint.data()
	if d == nil || flag == d.enableMotor {
		return
	}
	j.wakeBodies()
	d.enableMotor = flag
}

/// Set the motor speed in radians per second.
func (joint B2RevoluteJoint) SetMotorSpeed(speed float64) {
	j, d := joint.data()
	if d == nil || speed == d.motorSpeed {
		return
	}
	j.wakeBodies()
	d.motorSpeed = speed
}

func (joint B2RevoluteJoint) GetMotorSpeed() float64 {
	if _, d := joint.data(); d != nil {
		return d.motorSpeed
	}
	return 0.0
}

/// Set the maximum motor torque, usually in N-m.
func (joint B2RevoluteJoint) SetMaxMotorTorque(torque float64) {
	j, d := joint.data()
	if d == nil || torque == d.maxMotorTorque {
		return
	}
	j.wakeBodies()
	d.maxMotorTorque = torque
}

func (joint B2RevoluteJoint) GetMaxMotorTorque() float64 {
	if _, d := joint.data(); d != nil {
		return d.maxMotorTorque
	}
	return 0.0
}

/// Get the current motor torque given the inverse time step.
/// Unit is N*m.
func (joint B2RevoluteJoint) GetMotorTorque(inv_dt float64) float64 {
	if _, d := joint.data(); d != nil {
		return inv_dt * d.motorImpulse
	}
	return 0.0
}
