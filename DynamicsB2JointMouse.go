package box2d

import (
	"github.com/pkg/errors"
)

/// Mouse joint definition. This requires a world target point,
/// tuning parameters, and the time step.
type B2MouseJointDef struct {
	B2JointDef

	/// The initial world target point. This is assumed
	/// to coincide with the body anchor initially.
	Target B2Vec2

	/// The maximum constraint force that can be exerted
	/// to move the candidate body. Usually you will express
	/// as some multiple of the weight (multiplier * mass * gravity).
	MaxForce float64

	/// The response speed.
	FrequencyHz float64

	/// The damping ratio. 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeB2MouseJointDef() B2MouseJointDef {
	return B2MouseJointDef{
		FrequencyHz:  5.0,
		DampingRatio: 0.7,
	}
}

func (def *B2MouseJointDef) kind() uint8 {
	return B2JointType.E_mouseJoint
}

func (def *B2MouseJointDef) validate() error {
	switch {
	case !def.Target.IsValid():
		return errors.Wrap(ErrInvalidJoint, "mouse target")
	case !B2IsValid(def.MaxForce) || def.MaxForce < 0.0:
		return errors.Wrapf(ErrInvalidJoint, "mouse force %v", def.MaxForce)
	case !B2IsValid(def.FrequencyHz) || def.FrequencyHz <= 0.0:
		return errors.Wrapf(ErrInvalidJoint, "mouse frequency %v", def.FrequencyHz)
	case !B2IsValid(def.DampingRatio) || def.DampingRatio < 0.0:
		return errors.Wrapf(ErrInvalidJoint, "mouse damping ratio %v", def.DampingRatio)
	}
	return nil
}

func (def *B2MouseJointDef) build(j *b2Joint) {
	bB := j.world.bodies.get(j.bodyB)
	j.mouse = &b2MouseJoint{
		targetA:      def.Target,
		localAnchorB: B2TransformVec2MulT(bB.xf, def.Target),
		maxForce:     def.MaxForce,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

type b2MouseJoint struct {
	localAnchorB B2Vec2
	targetA      B2Vec2
	frequencyHz  float64
	dampingRatio float64
	beta         float64

	// Solver shared
	impulse  B2Vec2
	maxForce float64
	gamma    float64

	// Solver temp
	rB   B2Vec2
	mass B2Mat22
	C    B2Vec2
}

// p = attached point, m = mouse point
// C = p - m
// Cdot = v
//      = v + cross(w, r)
// J = [I r_skew]
// Identity used:
// w k % (rx i + ry j) = w * (-ry i + rx j)

func init() {
	b2AddJointType(B2JointType.E_mouseJoint, b2JointOps{
		initVelocityConstraints:  b2MouseInitVelocityConstraints,
		solveVelocityConstraints: b2MouseSolveVelocityConstraints,
		solvePositionConstraints: func(j *b2Joint, data *B2SolverData) bool {
			return true
		},
		localAnchorA: func(j *b2Joint) B2Vec2 { return B2Vec2{} },
		localAnchorB: func(j *b2Joint) B2Vec2 { return j.mouse.localAnchorB },
		reactionForce: func(j *b2Joint, inv_dt float64) B2Vec2 {
			return B2Vec2MulScalar(inv_dt, j.mouse.impulse)
		},
		reactionTorque: func(j *b2Joint, inv_dt float64) float64 { return 0.0 },
		shiftOrigin: func(j *b2Joint, newOrigin B2Vec2) {
			j.mouse.targetA = B2Vec2Sub(j.mouse.targetA, newOrigin)
		},
		worldAnchors: func(j *b2Joint) (B2Vec2, B2Vec2) {
			bB := j.world.bodies.get(j.bodyB)
			return j.mouse.targetA, B2TransformVec2Mul(bB.xf, j.mouse.localAnchorB)
		},
	})
}

func b2MouseInitVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.mouse
	j.prepare(data)

	_, bB := data.body(j.bodyB)
	_, _, cB, aB := j.loadPositions(data)
	_, _, vB, wB := j.loadVelocities(data)

	qB := MakeB2RotFromAngle(aB)

	// gamma has units of inverse mass.
	// beta has units of inverse time.
	h := data.Step.Dt
	joint.gamma, joint.beta = b2SoftConstraint(bB.mass, joint.frequencyHz, joint.dampingRatio, h)

	// Compute the effective mass matrix.
	joint.rB = B2RotVec2Mul(qB, B2Vec2Sub(joint.localAnchorB, j.localCenterB))

	// K    = [(1/m1 + 1/m2) * eye(2) - skew(r1) * invI1 * skew(r1) - skew(r2) * invI2 * skew(r2)]
	//      = [1/m1+1/m2     0    ] + invI1 * [r1.y*r1.y -r1.x*r1.y] + invI2 * [r1.y*r1.y -r1.x*r1.y]
	//        [    0     1/m1+1/m2]           [-r1.x*r1.y r1.x*r1.x]           [-r1.x*r1.y r1.x*r1.x]
	K := b2PointMass(0.0, j.invMassB, 0.0, j.invIB, B2Vec2{}, joint.rB)
	K.Ex.X += joint.gamma
	K.Ey.Y += joint.gamma

	joint.mass = K.GetInverse()

	joint.C = B2Vec2MulScalar(joint.beta, B2Vec2Sub(B2Vec2Add(cB, joint.rB), joint.targetA))

	// Cheat with some damping
	wB *= 0.98

	if data.Step.WarmStarting {
		joint.impulse = B2Vec2MulScalar(data.Step.DtRatio, joint.impulse)
		vB = B2Vec2MulAdd(vB, j.invMassB, joint.impulse)
		wB += j.invIB * B2Vec2Cross(joint.rB, joint.impulse)
	} else {
		joint.impulse.SetZero()
	}

	data.Velocities[j.indexB] = B2Velocity{V: vB, W: wB}
}

func b2MouseSolveVelocityConstraints(j *b2Joint, data *B2SolverData) {
	joint := j.mouse
	_, _, vB, wB := j.loadVelocities(data)

	// Cdot = v + cross(w, r)
	Cdot := B2Vec2Add(vB, B2Vec2CrossScalarVector(wB, joint.rB))
	impulse := B2Vec2Mat22Mul(joint.mass, B2Vec2Add(B2Vec2Add(Cdot, joint.C), B2Vec2MulScalar(joint.gamma, joint.impulse)).Negate())

	oldImpulse := joint.impulse
	joint.impulse = B2Vec2Add(joint.impulse, impulse)
	maxImpulse := data.Step.Dt * joint.maxForce
	if joint.impulse.LengthSquared() > maxImpulse*maxImpulse {
		joint.impulse = B2Vec2MulScalar(maxImpulse/joint.impulse.Length(), joint.impulse)
	}
	impulse = B2Vec2Sub(joint.impulse, oldImpulse)

	vB = B2Vec2MulAdd(vB, j.invMassB, impulse)
	wB += j.invIB * B2Vec2Cross(joint.rB, impulse)

	data.Velocities[j.indexB] = B2Velocity{V: vB, W: wB}
}

/// A mouse joint is used to make a point on a body track a
/// specified world point. This a soft constraint with a maximum
/// force. This allows the constraint to stretch and without
/// applying huge forces.
type B2MouseJoint struct {
	B2Joint
}

func (joint B2Joint) AsMouseJoint() (B2MouseJoint, bool) {
	return B2MouseJoint{joint}, joint.GetType() == B2JointType.E_mouseJoint
}

func (joint B2MouseJoint) data() (*b2Joint, *b2MouseJoint) {
	if j := joint.get(); j != nil && j.mouse != nil {
		return j, j.mouse
	}
	return nil, nil
}

/// Use this to update the target point. Moving the target wakes the body.
func (joint B2MouseJoint) SetTarget(target B2Vec2) {
	j, d := joint.data()
	if d == nil || target == d.targetA {
		return
	}
	j.world.bodies.get(j.bodyB).setAwake(true)
	d.targetA = target
}

func (joint B2MouseJoint) GetTarget() B2Vec2 {
	if _, d := joint.data(); d != nil {
		return d.targetA
	}
	return B2Vec2{}
}

/// Set/get the maximum force in Newtons.
func (joint B2MouseJoint) SetMaxForce(force float64) {
	if _, d := joint.data(); d != nil {
		d.maxForce = force
	}
}

func (joint B2MouseJoint) GetMaxForce() float64 {
	if _, d := joint.data(); d != nil {
		return d.maxForce
	}
	return 0.0
}

/// Set/get the frequency in Hertz.
func (joint B2MouseJoint) SetFrequency(hz float64) {
	if _, d := joint.data(); d != nil {
		d.frequencyHz = hz
	}
}

func (joint B2MouseJoint) GetFrequency() float64 {
	if _, d := joint.data(); d != nil {
		return d.frequencyHz
	}
	return 0.0
}

/// Set/get the damping ratio (dimensionless).
func (joint B2MouseJoint) SetDampingRatio(ratio float64) {
	if _, d := joint.data(); d != nil {
		d.dampingRatio = ratio
	}
}

func (joint B2MouseJoint) GetDampingRatio() float64 {
	if _, d := joint.data(); d != nil {
		return d.dampingRatio
	}
	return 0.0
}
