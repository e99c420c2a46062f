package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Wheel joint definition. This requires defining a line of
/// motion using an axis and an anchor point. The definition uses local
/// anchor points and a local axis so that the initial configuration
/// can violate the constraint slightly. The joint translation is zero
/// when the local anchor points coincide in world space. Using local
/// anchors and a local axis helps when saving and loading a game.
type B2WheelJointDef struct {
	B2JointDef

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The local translation axis in bodyA.
	LocalAxisA B2Vec2

	/// Enable/disable the joint motor.
	EnableMotor bool

	/// The maximum motor torque, usually in N-m.
	MaxMotorTorque float64

	/// The desired motor speed in radians per second.
	MotorSpeed float64

	/// Suspension frequency, zero indicates no suspension
	FrequencyHz float64

	/// Suspension damping ratio, one indicates critical damping
	DampingRatio float64
}

func MakeB2WheelJointDef() B2WheelJointDef {
	return B2WheelJointDef{
		LocalAxisA:   B2Vec2{X: 1.0, Y: 0.0},
		FrequencyHz:  2.0,
		DampingRatio: 0.7,
	}
}

/// Initialize the bodies, anchors, axis, and reference angle using the world
/// anchor and world axis.
func (def *B2WheelJointDef) Initialize(bodyA B2Body, bodyB B2Body, anchor B2Vec2, axis B2Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.GetLocalPoint(anchor)
	def.LocalAnchorB = bodyB.GetLocalPoint(anchor)
	def.LocalAxisA = bodyA.GetLocalVector(axis)
}

func (def *B2WheelJointDef) kind() uint8 {
	return B2JointType.E_wheelJoint
}

func (def *B2WheelJointDef) validate() error {
	switch {
	case !def.LocalAxisA.IsValid() || def.LocalAxisA.LengthSquared() < B2_epsilon*B2_epsilon:
		return errors.Wrap(ErrInvalidJoint, "wheel axis")
	case def.FrequencyHz < 0.0 || def.DampingRatio < 0.0:
		return errors.Wrap(ErrInvalidJoint, "wheel suspension")
	case def.MaxMotorTorque < 0.0:
		return errors.Wrapf(ErrInvalidJoint, "wheel motor torque %v", def.MaxMotorTorque)
	}
	return nil
}

func (def *B2WheelJointDef) build(j *b2Joint) {
	axis := def.LocalAxisA.Normalized()
	j.wheel = &b2WheelJoint{
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		localXAxisA:    axis,
		localYAxisA:    B2Vec2CrossScalarVector(1.0, axis),
		maxMotorTorque: def.MaxMotorTorque,
		motorSpeed:     def.MotorSpeed,
		enableMotor:    def.EnableMotor,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
}

type b2WheelJoint struct {
	frequencyHz  float64
	dampingRatio float64

	// Solver shared
	localAnchorA B2Vec2
	localAnchorB B2Vec2
	localXAxisA  B2Vec2
	localYAxisA  B2Vec2

	impulse       float64
	motorImpulse  float64
	springImpulse float64

	maxMotorTorque float64
	motorSpeed     float64
	enableMotor    bool

	// Solver temp
	ax, ay   B2Vec2
	sAx, sBx float64
	sAy, sBy float64

	mass       float64
	motorMass  float64
	springMass float64

	bias  float64
	gamma float64
}

// Linear constraint (point-to-line)
// d = pB - pA = xB + rB - xA - rA
// C = dot(ay, d)
// Cdot = dot(d, cross(wA, ay)) + dot(ay, vB + cross(wB, rB) - vA - cross(wA, rA))
//      = -dot(ay, vA) - dot(cross(d + rA, ay), wA) + dot(ay, vB) + dot(cross(rB, ay), vB)
// J = [-ay, -cross(d + rA, ay), ay, cross(rB, ay)]

// Spring linear constraint
// C = dot(ax, d)
// Cdot = = -dot(ax, vA) - dot(cross(d + rA, ax), wA) + dot(ax, vB) + dot(cross(rB, ax), vB)
// J = [-ax -cross(d+rA, ax) ax cross(rB, ax)]

// Motor rotational constraint
// Cdot = wB - wA
// J = [0 0 -1 0 0 1]

func init() {
	b2AddJointType(B2JointType.E_wheelJoint, b2JointOps{
		initVelocityConstraints:  b2WheelInitVelocityConstraints,
		solveVelocityConstraints: b2WheelSolveVelocityConstraints,
		solvePositionConstraints: b2WheelSolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.wheel.localAnchorA },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.wheel.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			joint := j.wheel
			return B2Vec2MulScalar(inv_dt, B2Vec2Add(B2Vec2MulScalar(joint.impulse, joint.ay), B2Vec2MulScalar(joint.springImpulse, joint.ax)))
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 {
			return inv_dt * j.wheel.motorImpulse
		},
	})
}

func b2WheelInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.wheel
	j.prepare(data)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	cA, aA, cB, aB := j.loadPositions(data)
	vA, wA, vB, wB := j.loadVelocities(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	// Compute the effective masses.
	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	d := B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, rB), cA), rA)

	// Point to line constraint
	joint.ay = B2RotVec2Mul(qA, joint.localYAxisA)
	joint.sAy = B2Vec2Cross(B2Vec2Add(d, rA), joint.ay)
	joint.sBy = B2Vec2Cross(rB, joint.ay)
	joint.mass = b2Inverse(mA + mB + iA*joint.sAy*joint.sAy + iB*joint.sBy*joint.sBy)

	// Spring constraint
	joint.springMass = 0.0
	joint.bias = 0.0
	joint.gamma = 0.0
	if joint.frequencyHz > 0.0 {
		joint.ax = B2RotVec2Mul(qA, joint.localXAxisA)
		joint.sAx = B2Vec2Cross(B2Vec2Add(d, rA), joint.ax)
		joint.sBx = B2Vec2Cross(rB, joint.ax)

		invMass := mA + mB + iA*joint.sAx*joint.sAx + iB*joint.sBx*joint.sBx

		if invMass > 0.0 {
			C := B2Vec2Dot(d, joint.ax)

			var beta float64
			joint.gamma, beta = b2SoftConstraint(1.0/invMass, joint.frequencyHz, joint.dampingRatio, data.Step.Dt)
			joint.bias = C * beta
			joint.springMass = b2Inverse(invMass + joint.gamma)
		}
	} else {
		joint.springImpulse = 0.0
	}

	// Rotational motor
	if joint.enableMotor {
		joint.motorMass = b2Inverse(iA + iB)
	} else {
		joint.motorMass = 0.0
		joint.motorImpulse = 0.0
	}

	if data.Step.WarmStarting {
		// Account for variable time step.
		joint.impulse *= data.Step.DtRatio
		joint.springImpulse *= data.Step.DtRatio
		joint.motorImpulse *= data.Step.DtRatio

		P := B2Vec2Add(B2Vec2MulScalar(joint.impulse, joint.ay), B2Vec2MulScalar(joint.springImpulse, joint.ax))
		LA := joint.impulse*joint.sAy + joint.springImpulse*joint.sAx + joint.motorImpulse
		LB := joint.impulse*joint.sBy + joint.springImpulse*joint.sBx + joint.motorImpulse

		j.applyPrismaticImpulse(&vA, &wA, &vB, &wB, P, LA, LB)
	} else {
		joint.impulse = 0.0
		joint.springImpulse = 0.0
		joint.motorImpulse = 0.0
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2WheelSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.wheel
	vA, wA, vB, wB := j.loadVelocities(data)

	// Solve spring constraint
	{
		Cdot := B2Vec2Dot(joint.ax, B2Vec2Sub(vB, vA)) + joint.sBx*wB - joint.sAx*wA
		impulse := -joint.springMass * (Cdot + joint.bias + joint.gamma*joint.springImpulse)
		joint.springImpulse += impulse

		P := B2Vec2MulScalar(impulse, joint.ax)
		j.applyPrismaticImpulse(&vA, &wA, &vB, &wB, P, impulse*joint.sAx, impulse*joint.sBx)
	}

	// Solve rotational motor constraint
	{
		Cdot := wB - wA - joint.motorSpeed
		impulse := -joint.motorMass * Cdot

		oldImpulse := joint.motorImpulse
		maxImpulse := data.Step.Dt * joint.maxMotorTorque
		joint.motorImpulse = B2FloatClamp(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		wA -= j.invIA * impulse
		wB += j.invIB * impulse
	}

	// Solve point to line constraint
	{
		Cdot := B2Vec2Dot(joint.ay, B2Vec2Sub(vB, vA)) + joint.sBy*wB - joint.sAy*wA
		impulse := -joint.mass * Cdot
		joint.impulse += impulse

		P := B2Vec2MulScalar(impulse, joint.ay)
		j.applyPrismaticImpulse(&vA, &wA, &vB, &wB, P, impulse*joint.sAy, impulse*joint.sBy)
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2WheelSolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.wheel
	cA, aA, cB, aB := j.loadPositions(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	d := B2Vec2Sub(B2Vec2Add(B2Vec2Sub(cB, cA), rB), rA)

	ay := B2RotVec2Mul(qA, joint.localYAxisA)

	sAy := B2Vec2Cross(B2Vec2Add(d, rA), ay)
	sBy := B2Vec2Cross(rB, ay)

	C := B2Vec2Dot(d, ay)

	k := j.invMassA + j.invMassB + j.invIA*sAy*sAy + j.invIB*sBy*sBy

	impulse := 0.0
	if k != 0.0 {
		impulse = -C / k
	}

	P := B2Vec2MulScalar(impulse, ay)

	cA = B2Vec2MulSub(cA, j.invMassA, P)
	aA -= j.invIA * impulse * sAy
	cB = B2Vec2MulAdd(cB, j.invMassB, P)
	aB += j.invIB * impulse * sBy

	j.storePositions(data, cA, aA, cB, aB)

	return math.Abs(C) <= B2_linearSlop
}

/// A wheel joint. This joint provides two degrees of freedom: translation
/// along an axis fixed in bodyA and rotation in the plane. In other words, it is a point to
/// line constraint with a rotational motor and a linear spring/damper.
/// This joint is designed for vehicle suspensions.
type B2WheelJoint struct {
	B2Joint
}

func (joint B2Joint) AsWheelJoint() (B2WheelJoint, bool) {
	return B2WheelJoint{joint}, joint.GetType() == B2JointType.E_wheelJoint
}

func (joint B2WheelJoint) data() (*b2Joint, *b2WheelJoint) {
	if j := joint.get(); j != nil && j.wheel != nil {
		return j, j.wheel
	}
	return nil, nil
}

/// The local anchor point relative to bodyA's origin.
func (joint B2WheelJoint) GetLocalAnchorA() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localAnchorA
	}
	return B2Vec2{}
}

/// The local anchor point relative to bodyB's origin.
func (joint B2WheelJoint) GetLocalAnchorB() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localAnchorB
	}
	return B2Vec2{}
}

/// The local joint axis relative to bodyA.
func (joint B2WheelJoint) GetLocalAxisA() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localXAxisA
	}
	return B2Vec2{}
}

/// Get the current joint translation, usually in meters.
func (joint B2WheelJoint) GetJointTranslation() float64 {
	j, d := joint.data()
	if d == nil {
		return 0.0
	}
	bA, bB := j.records()
	pA := B2TransformVec2Mul(bA.xf, d.localAnchorA)
	pB := B2TransformVec2Mul(bB.xf, d.localAnchorB)
	axis := B2RotVec2Mul(bA.xf.Q, d.localXAxisA)
	return B2Vec2Dot(B2Vec2Sub(pB, pA), axis)
}

/// Get the current joint linear speed, usually in meters per second.
func (joint B2WheelJoint) GetJointLinearSpeed() float64 {
	j, d := joint.data()
	if d == nil {
		return 0.0
	}
	bA, bB := j.records()

	rA := B2RotVec2Mul(bA.xf.Q, B2Vec2Sub(d.localAnchorA, bA.sweep.LocalCenter))
	rB := B2RotVec2Mul(bB.xf.Q, B2Vec2Sub(d.localAnchorB, bB.sweep.LocalCenter))
	p1 := B2Vec2Add(bA.sweep.C, rA)
	p2 := B2Vec2Add(bB.sweep.C, rB)
	axis := B2RotVec2Mul(bA.xf.Q, d.localXAxisA)

	vA, wA := bA.linearVelocity, bA.angularVelocity
	vB, wB := bB.linearVelocity, bB.angularVelocity

	return B2Vec2Dot(B2Vec2Sub(p2, p1), B2Vec2CrossScalarVector(wA, axis)) +
		B2Vec2Dot(axis, b2RelativeVelocity(vA, wA, rA, vB, wB, rB))
}

/// Get the current joint angle in radians.
func (joint B2WheelJoint) GetJointAngle() float64 {
	j, d := joint.data()
	if d == nil {
		return 0.0
	}
	bA, bB := j.records()
	return bB.sweep.A - bA.sweep.A
}

/// Get the current joint angular speed in radians per second.
func (joint B2WheelJoint) GetJointAngularSpeed() float64 {
	j, d := joint.data()
	if d == nil {
		return 0.0
	}
	bA, bB := j.records()
	return bB.angularVelocity - bA.angularVelocity
}

func (joint B2WheelJoint) IsMotorEnabled() bool {
	if _, d := joint.data(); d != nil {
		return d.enableMotor
	}
	return false
}

/// Enable/disable the joint motor.
func (joint B2WheelJoint) EnableMotor(flag bool) {
	j, d := joint.data()
	if d == nil || flag == d.enableMotor {
		return
	}
	j.wakeBodies()
	d.enableMotor = flag
}

/// Set the motor speed, usually in radians per second.
func (joint B2WheelJoint) SetMotorSpeed(speed float64) {
	j, d := joint.data()
	if d == nil || speed == d.motorSpeed {
		return
	}
	j.wakeBodies()
	d.motorSpeed = speed
}

func (joint B2WheelJoint) GetMotorSpeed() float64 {
	if _, d := joint.data(); d != nil {
		return d.motorSpeed
	}
	return 0.0
}

/// Set/Get the maximum motor torque, usually in N-m.
func (joint B2WheelJoint) SetMaxMotorTorque(torque float64) {
	j, d := joint.data()
	if d == nil || torque == d.maxMotorTorque {
		return
	}
	j.wakeBodies()
	d.maxMotorTorque = torque
}

func (joint B2WheelJoint) GetMaxMotorTorque() float64 {
	if _, d := joint.data(); d != nil {
		return d.maxMotorTorque
	}
	return 0.0
}

/// Get the current motor torque given the inverse time step, usually in N-m.
func (joint B2WheelJoint) GetMotorTorque(inv_dt float64) float64 {
	if _, d := joint.data(); d != nil {
		return inv_dt * d.motorImpulse
	}
	return 0.0
}

/// Set/Get the spring frequency in hertz. Setting the frequency to zero disables the spring.
func (joint B2WheelJoint) SetSpringFrequencyHz(hz float64) {
	if _, d := joint.data(); d != nil {
		d.frequencyHz = hz
	}
}

func (joint B2WheelJoint) GetSpringFrequencyHz() float64 {
	if _, d := joint.data(); d != nil {
		return d.frequencyHz
	}
	return 0.0
}

/// Set/Get the spring damping ratio
func (joint B2WheelJoint) SetSpringDampingRatio(ratio float64) {
	if _, d := joint.data(); d != nil {
		d.dampingRatio = ratio
	}
}

func (joint B2WheelJoint) GetSpringDampingRatio() float64 {
	if _, d := joint.data(); d != nil {
		return d.dampingRatio
	}
	return 0.0
}
