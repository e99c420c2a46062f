package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Distance joint definition. This requires defining an
/// anchor point on both bodies and the non-zero length of the
/// distance joint. The definition uses local anchor points
/// so that the initial configuration can violate the constraint
/// slightly. This helps when saving and loading a game.
/// @warning Do not use a zero or short length.
type B2DistanceJointDef struct {
	B2JointDef

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The natural length between the anchor points.
	Length float64

	/// The mass-spring-damper frequency in Hertz. A value of 0
	/// disables softness.
	FrequencyHz float64

	/// The damping ratio. 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeB2DistanceJointDef() B2DistanceJointDef {
	return B2DistanceJointDef{
		Length: 1.0,
	}
}

/// Initialize the bodies, anchors, and length using the world
/// anchors.
func (def *B2DistanceJointDef) Initialize(bodyA B2Body, bodyB B2Body, anchorA B2Vec2, anchorB B2Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.GetLocalPoint(anchorA)
	def.LocalAnchorB = bodyB.GetLocalPoint(anchorB)
	def.Length = B2Vec2Distance(anchorA, anchorB)
}

func (def *B2DistanceJointDef) kind() uint8 {
	return B2JointType.E_distanceJoint
}

func (def *B2DistanceJointDef) validate() error {
	switch {
	case !B2IsValid(def.Length) || def.Length <= B2_linearSlop:
		return errors.Wrapf(ErrInvalidJoint, "distance length %v", def.Length)
	case def.FrequencyHz < 0.0 || def.DampingRatio < 0.0:
		return errors.Wrap(ErrInvalidJoint, "distance softness")
	}
	return nil
}

func (def *B2DistanceJointDef) build(j *b2Joint) {
	j.distance = &b2DistanceJoint{
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		length:       def.Length,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

type b2DistanceJoint struct {
	frequencyHz  float64
	dampingRatio float64
	bias         float64

	// Solver shared
	localAnchorA B2Vec2
	localAnchorB B2Vec2
	gamma        float64
	impulse      float64
	length       float64

	// Solver temp
	u    B2Vec2
	rA   B2Vec2
	rB   B2Vec2
	mass float64
}

// 1-D constrained system
// m (v2 - v1) = lambda
// v2 + (beta/h) * x1 + gamma * lambda = 0, gamma has units of inverse mass.
// x2 = x1 + h * v2

// 1-D mass-damper-spring system
// m (v2 - v1) + h * d * v2 + h * k *

// C = norm(p2 - p1) - L
// u = (p2 - p1) / norm(p2 - p1)
// Cdot = dot(u, v2 + cross(w2, r2) - v1 - cross(w1, r1))
// J = [-u -cross(r1, u) u cross(r2, u)]
// K = J * invM * JT
//   = invMass1 + invI1 * cross(r1, u)^2 + invMass2 + invI2 * cross(r2, u)^2

func init() {
	b2AddJointType(B2JointType.E_distanceJoint, b2JointOps{
		initVelocityConstraints:  b2DistanceInitVelocityConstraints,
		solveVelocityConstraints: b2DistanceSolveVelocityConstraints,
		solvePositionConstraints: b2DistanceSolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.distance.localAnchorA },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.distance.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt*j.distance.impulse, j.distance.u)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 { return 0.0 },
	})
}

func b2DistanceInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.distance
	j.prepare(data)

	cA, aA, cB, aB := j.loadPositions(data)
	vA, wA, vB, wB := j.loadVelocities(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	joint.rA = B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	joint.rB = B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	joint.u = B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, joint.rB), cA), joint.rA)

	// Handle singularity.
	length := joint.u.Length()
	if length > B2_linearSlop {
		joint.u = B2Vec2MulScalar(1.0/length, joint.u)
	} else {
		joint.u.SetZero()
	}

	crAu := B2Vec2Cross(joint.rA, joint.u)
	crBu := B2Vec2Cross(joint.rB, joint.u)
	invMass := j.invMassA + j.invIA*crAu*crAu + j.invMassB + j.invIB*crBu*crBu

	// Compute the effective mass matrix.
	joint.mass = b2Inverse(invMass)

	if joint.frequencyHz > 0.0 {
		C := length - joint.length

		var beta float64
		joint.gamma, beta = b2SoftConstraint(joint.mass, joint.frequencyHz, joint.dampingRatio, data.Step.Dt)
		joint.bias = C * beta

		invMass += joint.gamma
		joint.mass = b2Inverse(invMass)
	} else {
		joint.gamma = 0.0
		joint.bias = 0.0
	}

	if data.Step.WarmStarting {
		// Scale the impulse to support a variable time step.
		joint.impulse *= data.Step.DtRatio

		P := B2Vec2MulScalar(joint.impulse, joint.u)
		j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, P, 0.0)
	} else {
		joint.impulse = 0.0
	}

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2DistanceSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.distance
	vA, wA, vB, wB := j.loadVelocities(data)

	// Cdot = dot(u, v + cross(w, r))
	vpA := B2Vec2Add(vA, B2Vec2CrossScalarVector(wA, joint.rA))
	vpB := B2Vec2Add(vB, B2Vec2CrossScalarVector(wB, joint.rB))
	Cdot := B2Vec2Dot(joint.u, B2Vec2Sub(vpB, vpA))

	impulse := -joint.mass * (Cdot + joint.bias + joint.gamma*joint.impulse)
	joint.impulse += impulse

	P := B2Vec2MulScalar(impulse, joint.u)
	j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, P, 0.0)

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2DistanceSolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.distance
	if joint.frequencyHz > 0.0 {
		// There is no position correction for soft distance constraints.
		return true
	}

	cA, aA, cB, aB := j.loadPositions(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	u := B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, rB), cA), rA)

	length := u.Normalize()
	C := B2FloatClamp(length-joint.length, -B2_maxLinearCorrection, B2_maxLinearCorrection)

	impulse := -joint.mass * C
	P := B2Vec2MulScalar(impulse, u)

	cA = B2Vec2MulSub(cA, j.invMassA, P)
	aA -= j.invIA * B2Vec2Cross(rA, P)
	cB = B2Vec2MulAdd(cB, j.invMassB, P)
	aB += j.invIB * B2Vec2Cross(rB, P)

	j.storePositions(data, cA, aA, cB, aB)

	return math.Abs(C) < B2_linearSlop
}

/// A distance joint constrains two points on two bodies
/// to remain at a fixed distance from each other. You can view
/// this as a massless, rigid rod.
type B2DistanceJoint struct {
	B2Joint
}

func (joint B2Joint) AsDistanceJoint() (B2DistanceJoint, bool) {
	return B2DistanceJoint{joint}, joint.GetType() == B2JointType.E_distanceJoint
}

func (joint B2DistanceJoint) data() *b2DistanceJoint {
	if j := joint.get(); j != nil {
		return j.distance
	}
	return nil
}

/// The local anchor point relative to bodyA's origin.
func (joint B2DistanceJoint) GetLocalAnchorA() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorA
	}
	return B2Vec2{}
}

/// The local anchor point relative to bodyB's origin.
func (joint B2DistanceJoint) GetLocalAnchorB() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorB
	}
	return B2Vec2{}
}

/// Set the natural length.
func (joint B2DistanceJoint) SetLength(length float64) {
	if d := joint.data(); d != nil {
		d.length = length
	}
}

func (joint B2DistanceJoint) GetLength() float64 {
	if d := joint.data(); d != nil {
		return d.length
	}
	return 0.0
}

/// Set the mass-spring-damper frequency in Hertz.
func (joint B2DistanceJoint) SetFrequency(hz float64) {
	if d := joint.data(); d != nil {
		d.frequencyHz = hz
	}
}

func (joint B2DistanceJoint) GetFrequency() float64 {
	if d := joint.data(); d != nil {
		return d.frequencyHz
	}
	return 0.0
}

/// Set the damping ratio. 0 = no damping, 1 = critical damping.
func (joint B2DistanceJoint) SetDampingRatio(ratio float64) {
	if d := joint.data(); d != nil {
		d.dampingRatio = ratio
	}
}

func (joint B2DistanceJoint) GetDampingRatio() float64 {
	if d := joint.data(); d != nil {
		return d.dampingRatio
	}
	return 0.0
}
