package box2d

import (
	"math"

	"github.com/pkg/errors"
)

const b2_minPulleyLength = 2.0

/// Pulley joint definition. This requires two ground anchors,
/// two dynamic body anchor points, and a pulley ratio.
type B2PulleyJointDef struct {
	B2JointDef

	/// The first ground anchor in world coordinates. This point never moves.
	GroundAnchorA B2Vec2

	/// The second ground anchor in world coordinates. This point never moves.
	GroundAnchorB B2Vec2

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The a reference length for the segment attached to bodyA.
	LengthA float64

	/// The a reference length for the segment attached to bodyB.
	LengthB float64

	/// The pulley ratio, used to simulate a block-and-tackle.
	Ratio float64
}

func MakeB2PulleyJointDef() B2PulleyJointDef {
	res := B2PulleyJointDef{}
	res.GroundAnchorA.Set(-1.0, 1.0)
	res.GroundAnchorB.Set(1.0, 1.0)
	res.LocalAnchorA.Set(-1.0, 0.0)
	res.LocalAnchorB.Set(1.0, 0.0)
	res.Ratio = 1.0
	res.CollideConnected = true
	return res
}

/// Initialize the bodies, anchors, lengths, max lengths, and ratio using
/// the world anchors.
func (def *B2PulleyJointDef) Initialize(bodyA B2Body, bodyB B2Body, groundA B2Vec2, groundB B2Vec2, anchorA B2Vec2, anchorB B2Vec2, ratio float64) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.GroundAnchorA = groundA
	def.GroundAnchorB = groundB
	def.LocalAnchorA = bodyA.GetLocalPoint(anchorA)
	def.LocalAnchorB = bodyB.GetLocalPoint(anchorB)
	def.LengthA = B2Vec2Distance(anchorA, groundA)
	def.LengthB = B2Vec2Distance(anchorB, groundB)
	def.Ratio = ratio
}

func (def *B2PulleyJointDef) kind() uint8 {
	return B2JointType.E_pulleyJoint
}

func (def *B2PulleyJointDef) validate() error {
	if !(def.Ratio > B2_epsilon) {
		return errors.Wrapf(ErrInvalidJoint, "pulley ratio %v", def.Ratio)
	}
	if def.LengthA < 0.0 || def.LengthB < 0.0 {
		return errors.Wrap(ErrInvalidJoint, "pulley lengths")
	}
	return nil
}

func (def *B2PulleyJointDef) build(j *b2Joint) {
	j.pulley = &b2PulleyJoint{
		groundAnchorA: def.GroundAnchorA,
		groundAnchorB: def.GroundAnchorB,
		localAnchorA:  def.LocalAnchorA,
		localAnchorB:  def.LocalAnchorB,
		lengthA:       def.LengthA,
		lengthB:       def.LengthB,
		ratio:         def.Ratio,
		constant:      def.LengthA + def.Ratio*def.LengthB,
	}
}

type b2PulleyJoint struct {
	groundAnchorA B2Vec2
	groundAnchorB B2Vec2
	lengthA       float64
	lengthB       float64

	// Solver shared
	localAnchorA B2Vec2
	localAnchorB B2Vec2
	constant     float64
	ratio        float64
	impulse      float64

	// Solver temp
	uA   B2Vec2
	uB   B2Vec2
	rA   B2Vec2
	rB   B2Vec2
	mass float64
}

// Pulley:
// length1 = norm(p1 - s1)
// length2 = norm(p2 - s2)
// C0 = (length1 + ratio * length2)_initial
// C = C0 - (length1 + ratio * length2)
// u1 = (p1 - s1) / norm(p1 - s1)
// u2 = (p2 - s2) / norm(p2 - s2)
// Cdot = -dot(u1, v1 + cross(w1, r1)) - ratio * dot(u2, v2 + cross(w2, r2))
// J = -[u1 cross(r1, u1) ratio * u2  ratio * cross(r2, u2)]
// K = J * invM * JT
//   = invMass1 + invI1 * cross(r1, u1)^2 + ratio^2 * (invMass2 + invI2 * cross(r2, u2)^2)

func init() {
	b2AddJointType(B2JointType.E_pulleyJoint, b2JointOps{
		initVelocityConstraints:  b2PulleyInitVelocityConstraints,
		solveVelocityConstraints: b2PulleySolveVelocityConstraints,
		solvePositionConstraints: b2PulleySolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.pulley.localAnchorA },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.pulley.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt*j.pulley.impulse, j.pulley.uB)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 { return 0.0 },
		shiftOrigin: func(j *b2Joint, newOrigin B2Vec2) {
			j.pulley.groundAnchorA = B2Vec2Sub(j.pulley.groundAnchorA, newOrigin)
			j.pulley.groundAnchorB = B2Vec2Sub(j.pulley.groundAnchorB, newOrigin)
		},
	})
}

// Unit axes from the ground anchors to the body anchors, with lengths.
func (joint *b2PulleyJoint) axes(cA, rA, cB, rB B2Vec2) (uA B2Vec2, lengthA float64, uB B2Vec2, lengthB float64) {
	uA = B2Vec2Sub(B2Vec2Add(cA, rA), joint.groundAnchorA)
	uB = B2Vec2Sub(B2Vec2Add(cB, rB), joint.groundAnchorB)

	lengthA = uA.Length()
	lengthB = uB.Length()

	if lengthA > 10.0*B2_linearSlop {
		uA = B2Vec2MulScalar(1.0/lengthA, uA)
	} else {
		uA.SetZero()
	}

	if lengthB > 10.0*B2_linearSlop {
		uB = B2Vec2MulScalar(1.0/lengthB, uB)
	} else {
		uB.SetZero()
	}
	return
}

func (joint *b2PulleyJoint) effectiveMass(j *b2Joint, rA, uA, rB, uB B2Vec2) float64 {
	ruA := B2Vec2Cross(rA, uA)
	ruB := B2Vec2Cross(rB, uB)

	mA := j.invMassA + j.invIA*ruA*ruA
	mB := j.invMassB + j.invIB*ruB*ruB

	return b2Inverse(mA + joint.ratio*joint.ratio*mB)
}

func (joint *b2PulleyJoint) apply(j *b2Joint, vA *B2Vec2, wA *float64, vB *B2Vec2, wB *float64, rA, uA, rB, uB B2Vec2, impulse float64) {
	PA := B2Vec2MulScalar(-impulse, uA)
	PB := B2Vec2MulScalar(-joint.ratio*impulse, uB)

	*vA = B2Vec2MulAdd(*vA, j.invMassA, PA)
	*wA += j.invIA * B2Vec2Cross(rA, PA)
	*vB = B2Vec2MulAdd(*vB, j.invMassB, PB)
	*wB += j.invIB * B2Vec2Cross(rB, PB)
}

func b2PulleyInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.pulley
	j.prepare(data)

	cA, aA, cB, aB := j.loadPositions(data)
	vA, wA, vB, wB := j.loadVelocities(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	joint.rA = B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	joint.rB = B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))

	// Get the pulley axes.
	joint.uA, _, joint.uB, _ = joint.axes(cA, joint.rA, cB, joint.rB)

	// Compute effective mass.
	joint.mass = joint.effectiveMass(j, joint.rA, joint.uA, joint.rB, joint.uB)

	if data.Step.WarmStarting {
		// Scale impulses to support variable time steps.
		joint.impulse *= data.Step.DtRatio

		// Warm starting.
		joint.apply(j, &vA, &wA, &vB, &wB, joint.rA, joint.uA, joint.rB, joint.uB, joint.impulse)
	} else {
		joint.impulse = 0.0
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2PulleySolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.pulley
	vA, wA, vB, wB := j.loadVelocities(data)

	vpA := B2Vec2Add(vA, B2Vec2CrossScalarVector(wA, joint.rA))
	vpB := B2Vec2Add(vB, B2Vec2CrossScalarVector(wB, joint.rB))

	Cdot := -B2Vec2Dot(joint.uA, vpA) - joint.ratio*B2Vec2Dot(joint.uB, vpB)
	impulse := -joint.mass * Cdot
	joint.impulse += impulse

	joint.apply(j, &vA, &wA, &vB, &wB, joint.rA, joint.uA, joint.rB, joint.uB, impulse)

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2PulleySolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.pulley
	cA, aA, cB, aB := j.loadPositions(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))

	uA, lengthA, uB, lengthB := joint.axes(cA, rA, cB, rB)
	mass := joint.effectiveMass(j, rA, uA, rB, uB)

	C := joint.constant - lengthA - joint.ratio*lengthB
	linearError := math.Abs(C)

	impulse := -mass * C

	var wA, wB float64
	joint.apply(j, &cA, &wA, &cB, &wB, rA, uA, rB, uB, impulse)
	aA += wA
	aB += wB

	j.storePositions(data, cA, aA, cB, aB)

	return linearError < B2_linearSlop
}

/// The pulley joint is connected to two bodies and two fixed ground points.
/// The pulley supports a ratio such that:
/// length1 + ratio * length2 <= constant
/// Yes, the force transmitted is scaled by the ratio.
/// Warning: the pulley joint can get a bit squirrelly by itself. They often
/// work better when combined with prismatic joints. You should also cover the
/// the anchor points with static shapes to prevent one side from going to
/// zero length.
type B2PulleyJoint struct {
	B2Joint
}

func (joint B2Joint) AsPulleyJoint() (B2PulleyJoint, bool) {
	return B2PulleyJoint{joint}, joint.GetType() == B2JointType.E_pulleyJoint
}

func (joint B2PulleyJoint) data() (*b2Joint, *b2PulleyJoint) {
	if j := joint.get(); j != nil {
		return j, j.pulley
	}
	return nil, nil
}

/// Get the first ground anchor.
func (joint B2PulleyJoint) GetGroundAnchorA() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.groundAnchorA
	}
	return B2Vec2{}
}

/// Get the second ground anchor.
func (joint B2PulleyJoint) GetGroundAnchorB() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.groundAnchorB
	}
	return B2Vec2{}
}

/// Get the current length of the segment attached to bodyA.
func (joint B2PulleyJoint) GetLengthA() float64 {
	if _, d := joint.data(); d != nil {
		return d.lengthA
	}
	return 0.0
}

/// Get the current length of the segment attached to bodyB.
func (joint B2PulleyJoint) GetLengthB() float64 {
	if _, d := joint.data(); d != nil {
		return d.lengthB
	}
	return 0.0
}

/// Get the pulley ratio.
func (joint B2PulleyJoint) GetRatio() float64 {
	if _, d := joint.data(); d != nil {
		return d.ratio
	}
	return 0.0
}

/// Get the current length of the segment attached to bodyA.
func (joint B2PulleyJoint) GetCurrentLengthA() float64 {
	if j, d := joint.data(); d != nil {
		bA, _ := j.records()
		return B2Vec2Distance(B2TransformVec2Mul(bA.xf, d.localAnchorA), d.groundAnchorA)
	}
	return 0.0
}

/// Get the current length of the segment attached to bodyB.
func (joint B2PulleyJoint) GetCurrentLengthB() float64 {
	if j, d := joint.data(); d != nil {
		_, bB := j.records()
		return B2Vec2Distance(B2TransformVec2Mul(bB.xf, d.localAnchorB), d.groundAnchorB)
	}
	return 0.0
}
