package box2d

import (
	"github.com/pkg/errors"
)

/// Motor joint definition.
type B2MotorJointDef struct {
	B2JointDef

	/// Position of bodyB minus the position of bodyA, in bodyA's frame, in meters.
	LinearOffset B2Vec2

	/// The bodyB angle minus bodyA angle in radians.
	AngularOffset float64

	/// The maximum motor force in N.
	MaxForce float64

	/// The maximum motor torque in N-m.
	MaxTorque float64

	/// Position correction factor in the range [0,1].
	CorrectionFactor float64
}

func MakeB2MotorJointDef() B2MotorJointDef {
	return B2MotorJointDef{
		MaxForce:         1.0,
		MaxTorque:        1.0,
		CorrectionFactor: 0.3,
	}
}

/// Initialize the bodies and offsets using the current transforms.
func (def *B2MotorJointDef) Initialize(bodyA B2Body, bodyB B2Body) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LinearOffset = bodyA.GetLocalPoint(bodyB.GetPosition())
	def.AngularOffset = bodyB.GetAngle() - bodyA.GetAngle()
}

func (def *B2MotorJointDef) kind() uint8 {
	return B2JointType.E_motorJoint
}

func (def *B2MotorJointDef) validate() error {
	switch {
	case !B2IsValid(def.MaxForce) || def.MaxForce < 0.0:
		return errors.Wrapf(ErrInvalidJoint, "motor force %v", def.MaxForce)
	case !B2IsValid(def.MaxTorque) || def.MaxTorque < 0.0:
		return errors.Wrapf(ErrInvalidJoint, "motor torque %v", def.MaxTorque)
	case !B2IsValid(def.CorrectionFactor) || def.CorrectionFactor < 0.0 || def.CorrectionFactor > 1.0:
		return errors.Wrapf(ErrInvalidJoint, "motor correction factor %v", def.CorrectionFactor)
	}
	return nil
}

func (def *B2MotorJointDef) build(j *b2Joint) {
	j.motor = &b2MotorJoint{
		linearOffset:     def.LinearOffset,
		angularOffset:    def.AngularOffset,
		correctionFactor: def.CorrectionFactor,
		b2FrictionCore: b2FrictionCore{
			maxForce:  def.MaxForce,
			maxTorque: def.MaxTorque,
		},
	}
}

type b2MotorJoint struct {
	b2FrictionCore

	// Solver shared
	linearOffset     B2Vec2
	angularOffset    float64
	correctionFactor float64

	// Solver temp
	linearError  B2Vec2
	angularError float64
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
	b2AddJointType(B2JointType.E_motorJoint, b2JointOps{
		initVelocityConstraints: func(j *b2Joint, data *B2SolverData) {
			joint := j.motor
			j.prepare(data)

			cA, aA, cB, aB := j.loadPositions(data)
			qA := MakeB2RotFromAngle(aA)
			qB := MakeB2RotFromAngle(aB)

			// Compute the effective mass matrix.
			joint.rA = B2RotVec2Mul(qA, j.localCenterA.Negate())
			joint.rB = B2RotVec2Mul(qB, j.localCenterB.Negate())
			joint.initMass(j)

			joint.linearError = B2Vec2Sub(B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, joint.rB), cA), joint.rA), B2RotVec2Mul(qA, joint.linearOffset))
			joint.angularError = aB - aA - joint.angularOffset

			joint.warmStart(j, data)
		},
		solveVelocityConstraints: func(j *b2Joint, data *B2SolverData) {
			joint := j.motor
			bias := data.Step.Inv_dt * joint.correctionFactor
			joint.solve(j, data, B2Vec2MulScalar(bias, joint.linearError), bias*joint.angularError)
		},
		solvePositionConstraints: func(j *b2Joint, data *B2SolverData) bool {
			return true
		},
		// The anchors are the body origins.
		localAnchorA: func(j *b2Joint) B2Vec2 { return B2Vec2{} },
		localAnchorB: func(j *b2Joint) B2Vec2 { return B2Vec2{} },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt, j.motor.linearImpulse)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 {
			return inv_dt * j.motor.angularImpulse
		},
	})
}

/// A motor joint is used to control the relative motion
/// between two bodies. A typical usage is to control the movement
/// of a dynamic body with respect to the ground.
type B2MotorJoint struct {
	B2Joint
}

func (joint B2Joint) AsMotorJoint() (B2MotorJoint, bool) {
	return B2MotorJoint{joint}, joint.GetType() == B2JointType.E_motorJoint
}

func (joint B2MotorJoint) data() (*b2Joint, *b2MotorJoint) {
	if j := joint.get(); j != nil && j.motor != nil {
		return j, j.motor
	}
	return nil, nil
}

/// Set/get the target linear offset, in frame A, in meters.
func (joint B2MotorJoint) SetLinearOffset(linearOffset B2Vec2) {
	if j, d := joint.data(); d != nil && linearOffset != d.linearOffset {
		j.wakeBodies()
		d.linearOffset = linearOffset
	}
}

func (joint B2MotorJoint) GetLinearOffset() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.linearOffset
	}
	return B2Vec2{}
}

/// Set/get the target angular offset, in radians.
func (joint B2MotorJoint) SetAngularOffset(angularOffset float64) {
	if j, d := joint.data(); d != nil && angularOffset != d.angularOffset {
		j.wakeBodies()
		d.angularOffset = angularOffset
	}
}

func (joint B2MotorJoint) GetAngularOffset() float64 {
	if _, d := joint.data(); d != nil {
		return d.angularOffset
	}
	return 0.0
}

/// Set the maximum friction force in N.
func (joint B2MotorJoint) SetMaxForce(force float64) error {
	_, d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}
	if !B2IsValid(force) || force < 0.0 {
		return errors.Wrapf(ErrInvalidJoint, "motor force %v", force)
	}
	d.maxForce = force
	return nil
}

/// Get the maximum friction force in N.
func (joint B2MotorJoint) GetMaxForce() float64 {
	if _, d := joint.data(); d != nil {
		return d.maxForce
	}
	return 0.0
}

/// Set the maximum friction torque in N*m.
func (joint B2MotorJoint) SetMaxTorque(torque float64) error {
	_, d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}
	if !B2IsValid(torque) || torque < 0.0 {
		return errors.Wrapf(ErrInvalidJoint, "motor torque %v", torque)
	}
	d.maxTorque = torque
	return nil
}

/// Get the maximum friction torque in N*m.
func (joint B2MotorJoint) GetMaxTorque() float64 {
	if _, d := joint.data(); d != nil {
		return d.maxTorque
	}
	return 0.0
}

/// Set the position correction factor in the range [0,1].
func (joint B2MotorJoint) SetCorrectionFactor(factor float64) error {
	_, d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}
	if !B2IsValid(factor) || factor < 0.0 || factor > 1.0 {
		return errors.Wrapf(ErrInvalidJoint, "motor correction factor %v", factor)
	}
	d.correctionFactor = factor
	return nil
}

/// Get the position correction factor in the range [0,1].
func (joint B2MotorJoint) GetCorrectionFactor() float64 {
	if _, d := joint.data(); d != nil {
		return d.correctionFactor
	}
	return 0.0
}
