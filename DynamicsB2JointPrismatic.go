package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Prismatic joint definition. This requires defining a line of
/// motion using an axis and an anchor point. The definition uses local
/// anchor points and a local axis so that the initial configuration
/// can violate the constraint slightly. The joint translation is zero
/// when the local anchor points coincide in world space. Using local
/// anchors and a local axis helps when saving and loading a game.
type B2PrismaticJointDef struct {
	B2JointDef

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The local translation unit axis in bodyA.
	LocalAxisA B2Vec2

	/// The constrained angle between the bodies: bodyB_angle - bodyA_angle.
	ReferenceAngle float64

	/// Enable/disable the joint limit.
	EnableLimit bool

	/// The lower translation limit, usually in meters.
	LowerTranslation float64

	/// The upper translation limit, usually in meters.
	UpperTranslation float64

	/// Enable/disable the joint motor.
	EnableMotor bool

	/// The maximum motor torque, usually in N-m.
	MaxMotorForce float64

	/// The desired motor speed in radians per second.
	MotorSpeed float64
}

func MakeB2PrismaticJointDef() B2PrismaticJointDef {
	return B2PrismaticJointDef{
		LocalAxisA: B2Vec2{1.0, 0.0},
	}
}

/// Initialize the bodies, anchors, axis, and reference angle using the world
/// anchor and unit world axis.
func (def *B2PrismaticJointDef) Initialize(bodyA B2Body, bodyB B2Body, anchor B2Vec2, axis B2Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.GetLocalPoint(anchor)
	def.LocalAnchorB = bodyB.GetLocalPoint(anchor)
	def.LocalAxisA = bodyA.GetLocalVector(axis)
	def.ReferenceAngle = bodyB.GetAngle() - bodyA.GetAngle()
}

func (def *B2PrismaticJointDef) kind() uint8 {
	return B2JointType.E_prismaticJoint
}

func (def *B2PrismaticJointDef) validate() error {
	switch {
	case !def.LocalAxisA.IsValid() || def.LocalAxisA.LengthSquared() < B2_epsilon*B2_epsilon:
		return errors.Wrap(ErrInvalidJoint, "prismatic axis")
	case def.EnableLimit && def.LowerTranslation > def.UpperTranslation:
		return errors.Wrapf(ErrInvalidJoint, "prismatic limits %v > %v", def.LowerTranslation, def.UpperTranslation)
	case def.MaxMotorForce < 0.0:
		return errors.Wrapf(ErrInvalidJoint, "prismatic motor force %v", def.MaxMotorForce)
	}
	return nil
}

func (def *B2PrismaticJointDef) build(j *b2Joint) {
	axis := def.LocalAxisA.Normalized()
	j.prismatic = &b2PrismaticJoint{
		localAnchorA:     def.LocalAnchorA,
		localAnchorB:     def.LocalAnchorB,
		localXAxisA:      axis,
		localYAxisA:      B2Vec2CrossScalarVector(1.0, axis),
		referenceAngle:   def.ReferenceAngle,
		lowerTranslation: def.LowerTranslation,
		upperTranslation: def.UpperTranslation,
		maxMotorForce:    def.MaxMotorForce,
		motorSpeed:       def.MotorSpeed,
		enableLimit:      def.EnableLimit,
		enableMotor:      def.EnableMotor,
		limitState:       B2LimitState.E_inactiveLimit,
	}
}

type b2PrismaticJoint struct {
	// Solver shared
	localAnchorA     B2Vec2
	localAnchorB     B2Vec2
	localXAxisA      B2Vec2
	localYAxisA      B2Vec2
	referenceAngle   float64
	impulse          B2Vec3
	motorImpulse     float64
	lowerTranslation float64
	upperTranslation float64
	maxMotorForce    float64
	motorSpeed       float64
	enableLimit      bool
	enableMotor      bool
	limitState       uint8

	// Solver temp
	axis, perp B2Vec2
	s1, s2     float64
	a1, a2     float64
	K          B2Mat33
	motorMass  float64
}

// Linear constraint (point-to-line)
// d = p2 - p1 = x2 + r2 - x1 - r1
// C = dot(perp, d)
// Cdot = dot(d, cross(w1, perp)) + dot(perp, v2 + cross(w2, r2) - v1 - cross(w1, r1))
//      = -dot(perp, v1) - dot(cross(d + r1, perp), w1) + dot(perp, v2) + dot(cross(r2, perp), v2)
// J = [-perp, -cross(d + r1, perp), perp, cross(r2,perp)]
//
// Angular constraint
// C = a2 - a1 + a_initial
// Cdot = w2 - w1
// J = [0 0 -1 0 0 1]
//
// K = J * invM * JT
//
// J = [-a -s1 a s2]
//     [0  -1  0  1]
// a = perp
// s1 = cross(d + r1, a) = cross(p2 - x1, a)
// s2 = cross(r2, a) = cross(p2 - x2, a)

// Motor/Limit linear constraint
// C = dot(ax1, d)
// Cdot = = -dot(ax1, v1) - dot(cross(d + r1, ax1), w1) + dot(ax1, v2) + dot(cross(r2, ax1), v2)
// J = [-ax1 -cross(d+r1,ax1) ax1 cross(r2,ax1)]

// Block Solver
// We develop a block solver that includes the joint limit. This makes the limit stiff (inelastic) even
// when the mass has poor distribution (leading to large torques about the joint anchor points).
//
// The Jacobian has 3 rows:
// J = [-uT -s1 uT s2] // linear
//     [0   -1   0  1] // angular
//     [-vT -a1 vT a2] // limit
//
// u = perp
// v = axis
// s1 = cross(d + r1, u), s2 = cross(r2, u)
// a1 = cross(d + r1, v), a2 = cross(r2, v)
//
// Clamp accumulated limit impulse.
// lower: f2(3) = max(f2(3), 0)
// upper: f2(3) = min(f2(3), 0)
//
// Solve for correct f2(1:2)
// f2(1:2) = invK(1:2,1:2) * (-Cdot(1:2) - K(1:2,3) * (f2(3) - f1(3))) + f1(1:2)

func init() {
	b2AddJointType(B2JointType.E_prismaticJoint, b2JointOps{
		initVelocityConstraints:  b2PrismaticInitVelocityConstraints,
		solveVelocityConstraints: b2PrismaticSolveVelocityConstraints,
		solvePositionConstraints: b2PrismaticSolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.prismatic.localAnchorA },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.prismatic.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			joint := j.prismatic
			P := B2Vec2Add(B2Vec2MulScalar(joint.impulse.X, joint.perp), B2Vec2MulScalar(joint.motorImpulse+joint.impulse.Z, joint.axis))
			return B2Vec2MulScalar(inv_dt, P)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 {
			return inv_dt * j.prismatic.impulse.Y
		},
	})
}

// Linear plus angular impulse along the prismatic Jacobian rows.
func (j *b2Joint) applyPrismaticImpulse(vA *B2Vec2, wA *float64, vB *B2Vec2, wB *float64, P B2Vec2, LA, LB float64) {
	*vA = B2Vec2MulSub(*vA, j.invMassA, P)
	*wA -= j.invIA * LA
	*vB = B2Vec2MulAdd(*vB, j.invMassB, P)
	*wB += j.invIB * LB
}

func b2PrismaticInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.prismatic
	j.prepare(data)

	cA, aA, cB, aB := j.loadPositions(data)
	vA, wA, vB, wB := j.loadVelocities(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	// Compute the effective masses.
	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	d := B2Vec2Sub(B2Vec2Add(B2Vec2Sub(cB, cA), rB), rA)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	// Compute motor Jacobian and effective mass.
	{
		joint.axis = B2RotVec2Mul(qA, joint.localXAxisA)
		joint.a1 = B2Vec2Cross(B2Vec2Add(d, rA), joint.axis)
		joint.a2 = B2Vec2Cross(rB, joint.axis)

		joint.motorMass = b2Inverse(mA + mB + iA*joint.a1*joint.a1 + iB*joint.a2*joint.a2)
	}

	// Prismatic constraint.
	{
		joint.perp = B2RotVec2Mul(qA, joint.localYAxisA)

		joint.s1 = B2Vec2Cross(B2Vec2Add(d, rA), joint.perp)
		joint.s2 = B2Vec2Cross(rB, joint.perp)

		joint.K = b2PrismaticMass(mA, mB, iA, iB, joint.s1, joint.s2, joint.a1, joint.a2)
	}

	// Compute motor and limit terms.
	if joint.enableLimit {
		jointTranslation := B2Vec2Dot(joint.axis, d)
		switch {
		case math.Abs(joint.upperTranslation-joint.lowerTranslation) < 2.0*B2_linearSlop:
			joint.limitState = B2LimitState.E_equalLimits
		case jointTranslation <= joint.lowerTranslation:
			if joint.limitState != B2LimitState.E_atLowerLimit {
				joint.limitState = B2LimitState.E_atLowerLimit
				joint.impulse.Z = 0.0
			}
		case jointTranslation >= joint.upperTranslation:
			if joint.limitState != B2LimitState.E_atUpperLimit {
				joint.limitState = B2LimitState.E_atUpperLimit
				joint.impulse.Z = 0.0
			}
		default:
			joint.limitState = B2LimitState.E_inactiveLimit
			joint.impulse.Z = 0.0
		}
	} else {
		joint.limitState = B2LimitState.E_inactiveLimit
		joint.impulse.Z = 0.0
	}

	if !joint.enableMotor {
		joint.motorImpulse = 0.0
	}

	if data.Step.WarmStarting {
		// Account for variable time step.
		joint.impulse = B2Vec3MulScalar(data.Step.DtRatio, joint.impulse)
		joint.motorImpulse *= data.Step.DtRatio

		axial := joint.motorImpulse + joint.impulse.Z
		P := B2Vec2Add(B2Vec2MulScalar(joint.impulse.X, joint.perp), B2Vec2MulScalar(axial, joint.axis))
		LA := joint.impulse.X*joint.s1 + joint.impulse.Y + axial*joint.a1
		LB := joint.impulse.X*joint.s2 + joint.impulse.Y + axial*joint.a2

		j.applyPrismaticImpulse(&vA, &wA, &vB, &wB, P, LA, LB)
	} else {
		joint.impulse.SetZero()
		joint.motorImpulse = 0.0
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2PrismaticMass(mA, mB, iA, iB, s1, s2, a1, a2 float64) B2Mat33 {
	k11 := mA + mB + iA*s1*s1 + iB*s2*s2
	k12 := iA*s1 + iB*s2
	k13 := iA*s1*a1 + iB*s2*a2
	k22 := iA + iB
	if k22 == 0.0 {
		// For bodies with fixed rotation.
		k22 = 1.0
	}
	k23 := iA*a1 + iB*a2
	k33 := mA + mB + iA*a1*a1 + iB*a2*a2

	return B2Mat33{
		Ex: B2Vec3{k11, k12, k13},
		Ey: B2Vec3{k12, k22, k23},
		Ez: B2Vec3{k13, k23, k33},
	}
}

func b2PrismaticSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.prismatic
	vA, wA, vB, wB := j.loadVelocities(data)

	// Solve linear motor constraint.
	if joint.enableMotor && joint.limitState != B2LimitState.E_equalLimits {
		Cdot := B2Vec2Dot(joint.axis, B2Vec2Sub(vB, vA)) + joint.a2*wB - joint.a1*wA
		impulse := joint.motorMass * (joint.motorSpeed - Cdot)
		oldImpulse := joint.motorImpulse
		maxImpulse := data.Step.Dt * joint.maxMotorForce
		joint.motorImpulse = B2FloatClamp(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		P := B2Vec2MulScalar(impulse, joint.axis)
		j.applyPrismaticImpulse(&vA, &wA, &vB, &wB, P, impulse*joint.a1, impulse*joint.a2)
	}

	var Cdot1 B2Vec2
	Cdot1.X = B2Vec2Dot(joint.perp, B2Vec2Sub(vB, vA)) + joint.s2*wB - joint.s1*wA
	Cdot1.Y = wB - wA

	if joint.enableLimit && joint.limitState != B2LimitState.E_inactiveLimit {
		// Solve prismatic and limit constraint in block form.
		Cdot2 := B2Vec2Dot(joint.axis, B2Vec2Sub(vB, vA)) + joint.a2*wB - joint.a1*wA
		Cdot := MakeB2Vec3(Cdot1.X, Cdot1.Y, Cdot2)

		f1 := joint.impulse
		df := joint.K.Solve33(Cdot.Negate())
		joint.impulse = B2Vec3Add(joint.impulse, df)

		if joint.limitState == B2LimitState.E_atLowerLimit {
			joint.impulse.Z = math.Max(joint.impulse.Z, 0.0)
		} else if joint.limitState == B2LimitState.E_atUpperLimit {
			joint.impulse.Z = math.Min(joint.impulse.Z, 0.0)
		}

		// f2(1:2) = invK(1:2,1:2) * (-Cdot(1:2) - K(1:2,3) * (f2(3) - f1(3))) + f1(1:2)
		b := B2Vec2MulSub(Cdot1.Negate(), joint.impulse.Z-f1.Z, B2Vec2{joint.K.Ez.X, joint.K.Ez.Y})
		f2r := B2Vec2Add(joint.K.Solve22(b), B2Vec2{f1.X, f1.Y})
		joint.impulse.X = f2r.X
		joint.impulse.Y = f2r.Y

		df = B2Vec3Sub(joint.impulse, f1)

		P := B2Vec2Add(B2Vec2MulScalar(df.X, joint.perp), B2Vec2MulScalar(df.Z, joint.axis))
		LA := df.X*joint.s1 + df.Y + df.Z*joint.a1
		LB := df.X*joint.s2 + df.Y + df.Z*joint.a2

		j.applyPrismaticImpulse(&vA, &wA, &vB, &wB, P, LA, LB)
	} else {
		// Limit is inactive, just solve the prismatic constraint in block form.
		df := joint.K.Solve22(Cdot1.Negate())
		joint.impulse.X += df.X
		joint.impulse.Y += df.Y

		P := B2Vec2MulScalar(df.X, joint.perp)
		LA := df.X*joint.s1 + df.Y
		LB := df.X*joint.s2 + df.Y

		j.applyPrismaticImpulse(&vA, &wA, &vB, &wB, P, LA, LB)
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

// The position solver only copes with integration error, so its pseudo
// impulses have no physical meaning. The limit state is recomputed here
// because the joint may push past a limit the velocity solver saw as
// inactive.
func b2PrismaticSolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.prismatic
	cA, aA, cB, aB := j.loadPositions(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	// Compute fresh Jacobians
	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	d := B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, rB), cA), rA)

	axis := B2RotVec2Mul(qA, joint.localXAxisA)
	a1 := B2Vec2Cross(B2Vec2Add(d, rA), axis)
	a2 := B2Vec2Cross(rB, axis)
	perp := B2RotVec2Mul(qA, joint.localYAxisA)

	s1 := B2Vec2Cross(B2Vec2Add(d, rA), perp)
	s2 := B2Vec2Cross(rB, perp)

	var impulse B2Vec3
	C1 := B2Vec2{B2Vec2Dot(perp, d), aB - aA - joint.referenceAngle}

	linearError := math.Abs(C1.X)
	angularError := math.Abs(C1.Y)

	active := false
	C2 := 0.0
	if joint.enableLimit {
		translation := B2Vec2Dot(axis, d)
		switch {
		case math.Abs(joint.upperTranslation-joint.lowerTranslation) < 2.0*B2_linearSlop:
			// Prevent large angular corrections
			C2 = B2FloatClamp(translation, -B2_maxLinearCorrection, B2_maxLinearCorrection)
			linearError = math.Max(linearError, math.Abs(translation))
			active = true
		case translation <= joint.lowerTranslation:
			// Prevent large linear corrections and allow some slop.
			C2 = B2FloatClamp(translation-joint.lowerTranslation+B2_linearSlop, -B2_maxLinearCorrection, 0.0)
			linearError = math.Max(linearError, joint.lowerTranslation-translation)
			active = true
		case translation >= joint.upperTranslation:
			// Prevent large linear corrections and allow some slop.
			C2 = B2FloatClamp(translation-joint.upperTranslation-B2_linearSlop, 0.0, B2_maxLinearCorrection)
			linearError = math.Max(linearError, translation-joint.upperTranslation)
			active = true
		}
	}

	K := b2PrismaticMass(mA, mB, iA, iB, s1, s2, a1, a2)
	if active {
		impulse = K.Solve33(B2Vec3{C1.X, C1.Y, C2}.Negate())
	} else {
		impulse1 := K.Solve22(C1.Negate())
		impulse = B2Vec3{impulse1.X, impulse1.Y, 0.0}
	}

	P := B2Vec2Add(B2Vec2MulScalar(impulse.X, perp), B2Vec2MulScalar(impulse.Z, axis))
	LA := impulse.X*s1 + impulse.Y + impulse.Z*a1
	LB := impulse.X*s2 + impulse.Y + impulse.Z*a2

	cA = B2Vec2MulSub(cA, mA, P)
	aA -= iA * LA
	cB = B2Vec2MulAdd(cB, mB, P)
	aB += iB * LB

	j.storePositions(data, cA, aA, cB, aB)

	return linearError <= B2_linearSlop && angularError <= B2_angularSlop
}

/// A prismatic joint. This joint provides one degree of freedom: translation
/// along an axis fixed in bodyA. Relative rotation is prevented. You can
/// use a joint limit to restrict the range of motion and a joint motor to
/// drive the motion or to model joint friction.
type B2PrismaticJoint struct {
	B2Joint
}

func (joint B2Joint) AsPrismaticJoint() (B2PrismaticJoint, bool) {
	return B2PrismaticJoint{joint}, joint.GetType() == B2JointType.E_prismaticJoint
}

func (joint B2PrismaticJoint) data() (*b2Joint, *b2PrismaticJoint) {
	if j := joint.get(); j != nil && j.prismatic != nil {
		return j, j.prismatic
	}
	return nil, nil
}

/// The local anchor point relative to bodyA's origin.
func (joint B2PrismaticJoint) GetLocalAnchorA() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localAnchorA
	}
	return B2Vec2{}
}

/// The local anchor point relative to bodyB's origin.
func (joint B2PrismaticJoint) GetLocalAnchorB() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localAnchorB
	}
	return B2Vec2{}
}

/// The local joint axis relative to bodyA.
func (joint B2PrismaticJoint) GetLocalAxisA() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.localXAxisA
	}
	return B2Vec2{}
}

/// Get the reference angle.
func (joint B2PrismaticJoint) GetReferenceAngle() float64 {
	if _, d := joint.data(); d != nil {
		return d.referenceAngle
	}
	return 0.0
}

/// Get the current joint translation, usually in meters.
func (joint B2PrismaticJoint) GetJointTranslation() float64 {
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

/// Get the current joint translation speed, usually in meters per second.
func (joint B2PrismaticJoint) GetJointSpeed() float64 {
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

func (joint B2PrismaticJoint) IsLimitEnabled() bool {
	if _, d := joint.data(); d != nil {
		return d.enableLimit
	}
	return false
}

/// Enable/disable the joint limit.
func (joint B2PrismaticJoint) EnableLimit(flag bool) {
	j, d := joint.data()
	if d == nil || flag == d.enableLimit {
		return
	}
	j.wakeBodies()
	d.enableLimit = flag
	d.impulse.Z = 0.0
}

func (joint B2PrismaticJoint) GetLowerLimit() float64 {
	if _, d := joint.data(); d != nil {
		return d.lowerTranslation
	}
	return 0.0
}

func (joint B2PrismaticJoint) GetUpperLimit() float64 {
	if _, d := joint.data(); d != nil {
		return d.upperTranslation
	}
	return 0.0
}

/// Set the joint limits, usually in meters.
func (joint B2PrismaticJoint) SetLimits(lower float64, upper float64) error {
	if lower > upper {
		return errors.Wrapf(ErrInvalidJoint, "prismatic limits %v > %v", lower, upper)
	}

	j, d := joint.data()
	if d == nil {
		return ErrStaleHandle
	}

	if lower != d.lowerTranslation || upper != d.upperTranslation {
		j.wakeBodies()
		d.lowerTranslation = lower
		d.upperTranslation = upper
		d.impulse.Z = 0.0
	}
	return nil
}

func (joint B2PrismaticJoint) IsMotorEnabled() bool {
	if _, d := joint.data(); d != nil {
		return d.enableMotor
	}
	return false
}

/// Enable/disable the joint motor.
func (joint B2PrismaticJoint) EnableMotor(flag bool) {
	j, d := joint.data()
	if d == nil || flag == d.enableMotor {
		return
	}
	j.wakeBodies()
	d.enableMotor = flag
}

/// Set the motor speed, usually in meters per second.
func (joint B2PrismaticJoint) SetMotorSpeed(speed float64) {
	j, d := joint.data()
	if d == nil || speed == d.motorSpeed {
		return
	}
	j.wakeBodies()
	d.motorSpeed = speed
}

func (joint B2PrismaticJoint) GetMotorSpeed() float64 {
	if _, d := joint.data(); d != nil {
		return d.motorSpeed
	}
	return 0.0
}

/// Set the maximum motor force, usually in N.
func (joint B2PrismaticJoint) SetMaxMotorForce(force float64) {
	j, d := joint.data()
	if d == nil || force == d.maxMotorForce {
		return
	}
	j.wakeBodies()
	d.maxMotorForce = force
}

func (joint B2PrismaticJoint) GetMaxMotorForce() float64 {
	if _, d := joint.data(); d != nil {
		return d.maxMotorForce
	}
	return 0.0
}

/// Get the current motor force given the inverse time step, usually in N.
func (joint B2PrismaticJoint) GetMotorForce(inv_dt float64) float64 {
	if _, d := joint.data(); d != nil {
		return inv_dt * d.motorImpulse
	}
	return 0.0
}
