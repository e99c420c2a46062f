package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Rope joint definition. This requires two body anchor points and
/// a maximum lengths.
/// Note: by default the connected objects will not collide.
/// see CollideConnected in B2JointDef.
type B2RopeJointDef struct {
	B2JointDef

	/// The local anchor point relative to bodyA's origin.
	LocalAnchorA B2Vec2

	/// The local anchor point relative to bodyB's origin.
	LocalAnchorB B2Vec2

	/// The maximum length of the rope.
	/// Warning: this must be larger than B2_linearSlop or
	/// the joint will have no effect.
	MaxLength float64
}

func MakeB2RopeJointDef() B2RopeJointDef {
	return B2RopeJointDef{
		LocalAnchorA: B2Vec2{X: -1.0, Y: 0.0},
		LocalAnchorB: B2Vec2{X: 1.0, Y: 0.0},
	}
}

func (def *B2RopeJointDef) kind() uint8 {
	return B2JointType.E_ropeJoint
}

func (def *B2RopeJointDef) validate() error {
	if !B2IsValid(def.MaxLength) || def.MaxLength < 0.0 {
		return errors.Wrapf(ErrInvalidJoint, "rope max length %v", def.MaxLength)
	}
	return nil
}

func (def *B2RopeJointDef) build(j *b2Joint) {
	j.rope = &b2RopeJoint{
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxLength:    def.MaxLength,
		state:        B2LimitState.E_inactiveLimit,
	}
}

type b2RopeJoint struct {
	// Solver shared
	localAnchorA B2Vec2
	localAnchorB B2Vec2
	maxLength    float64
	length       float64
	impulse      float64

	// Solver temp
	u     B2Vec2
	rA    B2Vec2
	rB    B2Vec2
	mass  float64
	state uint8
}

// Limit:
// C = norm(pB - pA) - L
// u = (pB - pA) / norm(pB - pA)
// Cdot = dot(u, vB + cross(wB, rB) - vA - cross(wA, rA))
// J = [-u -cross(rA, u) u cross(rB, u)]
// K = J * invM * JT
//   = invMassA + invIA * cross(rA, u)^2 + invMassB + invIB * cross(rB, u)^2

func init() {
	b2AddJointType(B2JointType.E_ropeJoint, b2JointOps{
		initVelocityConstraints:  b2RopeInitVelocityConstraints,
		solveVelocityConstraints: b2RopeSolveVelocityConstraints,
		solvePositionConstraints: b2RopeSolvePositionConstraints,
		localAnchorA:             func(j *b2Joint) B2Vec2 { return j.rope.localAnchorA },
		localAnchorB:             func(j *b2Joint) B2Vec2 { return j.rope.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt*j.rope.impulse, j.rope.u)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 { return 0.0 },
	})
}

func b2RopeInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.rope
	j.prepare(data)

	cA, aA, cB, aB := j.loadPositions(data)
	vA, wA, vB, wB := j.loadVelocities(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	joint.rA = B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	joint.rB = B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	joint.u = B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, joint.rB), cA), joint.rA)

	joint.length = joint.u.Length()

	if joint.length-joint.maxLength > 0.0 {
		joint.state = B2LimitState.E_atUpperLimit
	} else {
		joint.state = B2LimitState.E_inactiveLimit
	}

	if joint.length <= B2_linearSlop {
		joint.u.SetZero()
		joint.mass = 0.0
		joint.impulse = 0.0
		return
	}
	joint.u = B2Vec2MulScalar(1.0/joint.length, joint.u)

	// Compute effective mass.
	crA := B2Vec2Cross(joint.rA, joint.u)
	crB := B2Vec2Cross(joint.rB, joint.u)
	joint.mass = b2Inverse(j.invMassA + j.invIA*crA*crA + j.invMassB + j.invIB*crB*crB)

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

func b2RopeSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.rope
	vA, wA, vB, wB := j.loadVelocities(data)

	// Cdot = dot(u, v + cross(w, r))
	C := joint.length - joint.maxLength
	Cdot := B2Vec2Dot(joint.u, b2RelativeVelocity(vA, wA, joint.rA, vB, wB, joint.rB))

	// Predictive constraint.
	if C < 0.0 {
		Cdot += data.Step.Inv_dt * C
	}

	impulse := -joint.mass * Cdot
	oldImpulse := joint.impulse
	joint.impulse = math.Min(0.0, joint.impulse+impulse)
	impulse = joint.impulse - oldImpulse

	P := B2Vec2MulScalar(impulse, joint.u)
	j.applyImpulse(&vA, &wA, &vB, &wB, joint.rA, joint.rB, P, 0.0)

	j.storeVelocities(data, vA, wA, vB, wB)
}

func b2RopeSolvePositionConstraints(j *b2Joint, data *B2SolverData) bool {
	joint := j.rope
	cA, aA, cB, aB := j.loadPositions(data)

	qA := MakeB2RotFromAngle(aA)
	qB := MakeB2RotFromAngle(aB)

	rA := B2RotVec2Mul(qA, B2Vec2Sub(joint.localAnchorA, j.localCenterA))
	rB := B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))
	u := B2Vec2Sub(B2Vec2Sub(B2Vec2Add(cB, rB), cA), rA)

	length := u.Normalize()
	C := B2FloatClamp(length-joint.maxLength, 0.0, B2_maxLinearCorrection)

	impulse := -joint.mass * C
	P := B2Vec2MulScalar(impulse, u)

	cA = B2Vec2MulSub(cA, j.invMassA, P)
	aA -= j.invIA * B2Vec2Cross(rA, P)
	cB = B2Vec2MulAdd(cB, j.invMassB, P)
	aB += j.invIB * B2Vec2Cross(rB, P)

	j.storePositions(data, cA, aA, cB, aB)

	return length-joint.maxLength < B2_linearSlop
}

/// A rope joint enforces a maximum distance between two points
/// on two bodies. It has no other effect.
/// Warning: if you attempt to change the maximum length during
/// the simulation you will get some non-physical behavior.
/// See B2DistanceJoint if you want to dynamically control length.
type B2RopeJoint struct {
	B2Joint
}

func (joint B2Joint) AsRopeJoint() (B2RopeJoint, bool) {
	return B2RopeJoint{joint}, joint.GetType() == B2JointType.E_ropeJoint
}

func (joint B2RopeJoint) data() *b2RopeJoint {
	if j := joint.get(); j != nil {
		return j.rope
	}
	return nil
}

/// The local anchor point relative to bodyA's origin.
func (joint B2RopeJoint) GetLocalAnchorA() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorA
	}
	return B2Vec2{}
}

/// The local anchor point relative to bodyB's origin.
func (joint B2RopeJoint) GetLocalAnchorB() B2Vec2 {
	if d := joint.data(); d != nil {
		return d.localAnchorB
	}
	return B2Vec2{}
}

/// Set/Get the maximum length of the rope.
func (joint B2RopeJoint) SetMaxLength(length float64) {
	if d := joint.data(); d != nil {
		d.maxLength = length
	}
}

func (joint B2RopeJoint) GetMaxLength() float64 {
	if d := joint.data(); d != nil {
		return d.maxLength
	}
	return 0.0
}

/// Whether the rope was taut during the last step.
func (joint B2RopeJoint) GetLimitState() uint8 {
	if d := joint.data(); d != nil {
		return d.state
	}
	return B2LimitState.E_inactiveLimit
}
