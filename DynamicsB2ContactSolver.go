package box2d

import (
	"math"
)

type B2VelocityConstraintPoint struct {
	RA             B2Vec2
	RB             B2Vec2
	NormalImpulse  float64
	TangentImpulse float64
	NormalMass     float64
	TangentMass    float64
	VelocityBias   float64
}

type B2ContactVelocityConstraint struct {
	Points             [B2_maxManifoldPoints]B2VelocityConstraintPoint
	Normal             B2Vec2
	NormalMass         B2Mat22
	K                  B2Mat22
	IndexA             int
	IndexB             int
	InvMassA, InvMassB float64
	InvIA, InvIB       float64
	Friction           float64
	Restitution        float64
	TangentSpeed       float64
	PointCount         int
	ContactIndex       int
}

type B2ContactPositionConstraint struct {
	LocalPoints                [B2_maxManifoldPoints]B2Vec2
	LocalNormal                B2Vec2
	LocalPoint                 B2Vec2
	IndexA                     int
	IndexB                     int
	InvMassA, InvMassB         float64
	LocalCenterA, LocalCenterB B2Vec2
	InvIA, InvIB               float64
	Type                       uint8
	RadiusA, RadiusB           float64
	PointCount                 int
}

// Ensure a reasonable condition number for the block solver.
const b2_maxConditionNumber = 1000.0

type b2ContactSolver struct {
	step                B2TimeStep
	positions           []B2Position
	velocities          []B2Velocity
	positionConstraints []B2ContactPositionConstraint
	velocityConstraints []B2ContactVelocityConstraint
	contacts            []*b2Contact
}

// The constraint slices are kept by the island and reused across steps.
func (solver *b2ContactSolver) initialize(island *b2Island, step B2TimeStep) {
	world := island.world
	contacts := island.contactRecords
	count := len(contacts)

	solver.step = step
	solver.positions = island.positions
	solver.velocities = island.velocities
	solver.contacts = contacts

	if cap(solver.velocityConstraints) < count {
		solver.velocityConstraints = make([]B2ContactVelocityConstraint, count)
		solver.positionConstraints = make([]B2ContactPositionConstraint, count)
	}
	solver.velocityConstraints = solver.velocityConstraints[:count]
	solver.positionConstraints = solver.positionConstraints[:count]

	// Initialize position independent portions of the constraints.
	for i, contact := range contacts {
		bodyA := world.bodies.get(contact.bodyA)
		bodyB := world.bodies.get(contact.bodyB)
		manifold := &contact.manifold
		indexA := island.localIndex(contact.bodyA)
		indexB := island.localIndex(contact.bodyB)

		pointCount := manifold.PointCount
		B2Assert(pointCount > 0)

		solver.velocityConstraints[i] = B2ContactVelocityConstraint{
			Friction:     contact.friction,
			Restitution:  contact.restitution,
			TangentSpeed: contact.tangentSpeed,
			IndexA:       indexA,
			IndexB:       indexB,
			InvMassA:     bodyA.invMass,
			InvMassB:     bodyB.invMass,
			InvIA:        bodyA.invI,
			InvIB:        bodyB.invI,
			ContactIndex: i,
			PointCount:   pointCount,
		}
		vc := &solver.velocityConstraints[i]

		solver.positionConstraints[i] = B2ContactPositionConstraint{
			IndexA:       indexA,
			IndexB:       indexB,
			InvMassA:     bodyA.invMass,
			InvMassB:     bodyB.invMass,
			LocalCenterA: bodyA.sweep.LocalCenter,
			LocalCenterB: bodyB.sweep.LocalCenter,
			InvIA:        bodyA.invI,
			InvIB:        bodyB.invI,
			LocalNormal:  manifold.LocalNormal,
			LocalPoint:   manifold.LocalPoint,
			PointCount:   pointCount,
			RadiusA:      world.fixtures.get(contact.fixtureA).shape.Radius,
			RadiusB:      world.fixtures.get(contact.fixtureB).shape.Radius,
			Type:         manifold.Type,
		}
		pc := &solver.positionConstraints[i]

		for j := 0; j < pointCount; j++ {
			cp := &manifold.Points[j]
			vcp := &vc.Points[j]

			// Impulses carry over scaled to the new time step.
			if step.WarmStarting {
				vcp.NormalImpulse = step.DtRatio * cp.NormalImpulse
				vcp.TangentImpulse = step.DtRatio * cp.TangentImpulse
			}

			pc.LocalPoints[j] = cp.LocalPoint
		}
	}
}

func (solver *b2ContactSolver) transforms(pc *B2ContactPositionConstraint) (B2Transform, B2Transform) {
	posA := solver.positions[pc.IndexA]
	posB := solver.positions[pc.IndexB]

	var xfA, xfB B2Transform
	xfA.Q.Set(posA.A)
	xfB.Q.Set(posB.A)
	xfA.P = B2Vec2Sub(posA.C, B2RotVec2Mul(xfA.Q, pc.LocalCenterA))
	xfB.P = B2Vec2Sub(posB.C, B2RotVec2Mul(xfB.Q, pc.LocalCenterB))
	return xfA, xfB
}

// Initialize position dependent portions of the velocity constraints.
func (solver *b2ContactSolver) initializeVelocityConstraints() {
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]
		pc := &solver.positionConstraints[i]
		manifold := &solver.contacts[vc.ContactIndex].manifold

		mA, mB := vc.InvMassA, vc.InvMassB
		iA, iB := vc.InvIA, vc.InvIB

		cA := solver.positions[vc.IndexA].C
		vA := solver.velocities[vc.IndexA].V
		wA := solver.velocities[vc.IndexA].W

		cB := solver.positions[vc.IndexB].C
		vB := solver.velocities[vc.IndexB].V
		wB := solver.velocities[vc.IndexB].W

		B2Assert(manifold.PointCount > 0)

		xfA, xfB := solver.transforms(pc)

		var worldManifold B2WorldManifold
		worldManifold.Initialize(manifold, xfA, pc.RadiusA, xfB, pc.RadiusB)

		vc.Normal = worldManifold.Normal
		tangent := B2Vec2CrossVectorScalar(vc.Normal, 1.0)

		for j := 0; j < vc.PointCount; j++ {
			vcp := &vc.Points[j]

			vcp.RA = B2Vec2Sub(worldManifold.Points[j], cA)
			vcp.RB = B2Vec2Sub(worldManifold.Points[j], cB)

			rnA := B2Vec2Cross(vcp.RA, vc.Normal)
			rnB := B2Vec2Cross(vcp.RB, vc.Normal)
			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			vcp.NormalMass = 0.0
			if kNormal > 0.0 {
				vcp.NormalMass = 1.0 / kNormal
			}

			rtA := B2Vec2Cross(vcp.RA, tangent)
			rtB := B2Vec2Cross(vcp.RB, tangent)
			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB
			vcp.TangentMass = 0.0
			if kTangent > 0.0 {
				vcp.TangentMass = 1.0 / kTangent
			}

			// Setup a velocity bias for restitution.
			vcp.VelocityBias = 0.0
			vRel := B2Vec2Dot(vc.Normal, b2RelativeVelocity(vA, wA, vcp.RA, vB, wB, vcp.RB))
			if vRel < -B2_velocityThreshold {
				vcp.VelocityBias = -vc.Restitution * vRel
			}
		}

		// If we have two points, then prepare the block solver.
		if vc.PointCount == 2 {
			vcp1 := &vc.Points[0]
			vcp2 := &vc.Points[1]

			rn1A := B2Vec2Cross(vcp1.RA, vc.Normal)
			rn1B := B2Vec2Cross(vcp1.RB, vc.Normal)
			rn2A := B2Vec2Cross(vcp2.RA, vc.Normal)
			rn2B := B2Vec2Cross(vcp2.RB, vc.Normal)

			k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
			k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
			k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

			if k11*k11 < b2_maxConditionNumber*(k11*k22-k12*k12) {
				// K is safe to invert.
				vc.K = MakeB2Mat22FromScalars(k11, k12, k12, k22)
				vc.NormalMass = vc.K.GetInverse()
			} else {
				// The constraints are redundant, just use one.
				vc.PointCount = 1
			}
		}
	}
}

// Velocity of B relative to A at the given anchors.
func b2RelativeVelocity(vA B2Vec2, wA float64, rA B2Vec2, vB B2Vec2, wB float64, rB B2Vec2) B2Vec2 {
	return B2Vec2Sub(
		B2Vec2Add(vB, B2Vec2CrossScalarVector(wB, rB)),
		B2Vec2Add(vA, B2Vec2CrossScalarVector(wA, rA)),
	)
}

func (solver *b2ContactSolver) warmStart() {
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]

		velA := &solver.velocities[vc.IndexA]
		velB := &solver.velocities[vc.IndexB]

		normal := vc.Normal
		tangent := B2Vec2CrossVectorScalar(normal, 1.0)

		for j := 0; j < vc.PointCount; j++ {
			vcp := &vc.Points[j]
			P := B2Vec2Add(B2Vec2MulScalar(vcp.NormalImpulse, normal), B2Vec2MulScalar(vcp.TangentImpulse, tangent))
			velA.W -= vc.InvIA * B2Vec2Cross(vcp.RA, P)
			velA.V = B2Vec2MulSub(velA.V, vc.InvMassA, P)
			velB.W += vc.InvIB * B2Vec2Cross(vcp.RB, P)
			velB.V = B2Vec2MulAdd(velB.V, vc.InvMassB, P)
		}
	}
}

func (solver *b2ContactSolver) solveVelocityConstraints() {
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]

		mA, mB := vc.InvMassA, vc.InvMassB
		iA, iB := vc.InvIA, vc.InvIB

		vA := solver.velocities[vc.IndexA].V
		wA := solver.velocities[vc.IndexA].W
		vB := solver.velocities[vc.IndexB].V
		wB := solver.velocities[vc.IndexB].W

		normal := vc.Normal
		tangent := B2Vec2CrossVectorScalar(normal, 1.0)

		B2Assert(vc.PointCount == 1 || vc.PointCount == 2)

		apply := func(vcp *B2VelocityConstraintPoint, P B2Vec2) {
			vA = B2Vec2MulSub(vA, mA, P)
			wA -= iA * B2Vec2Cross(vcp.RA, P)

			vB = B2Vec2MulAdd(vB, mB, P)
			wB += iB * B2Vec2Cross(vcp.RB, P)
		}

		// Solve tangent constraints first because non-penetration is more important
		// than friction.
		for j := 0; j < vc.PointCount; j++ {
			vcp := &vc.Points[j]

			// Relative velocity at contact
			dv := b2RelativeVelocity(vA, wA, vcp.RA, vB, wB, vcp.RB)

			// Compute tangent force
			vt := B2Vec2Dot(dv, tangent) - vc.TangentSpeed
			lambda := vcp.TangentMass * (-vt)

			// Clamp the accumulated force to the friction cone.
			maxFriction := vc.Friction * vcp.NormalImpulse
			newImpulse := B2FloatClamp(vcp.TangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vcp.TangentImpulse
			vcp.TangentImpulse = newImpulse

			apply(vcp, B2Vec2MulScalar(lambda, tangent))
		}

		if vc.PointCount == 1 {
			vcp := &vc.Points[0]

			// Relative velocity at contact
			dv := b2RelativeVelocity(vA, wA, vcp.RA, vB, wB, vcp.RB)

			// Compute normal impulse
			vn := B2Vec2Dot(dv, normal)
			lambda := -vcp.NormalMass * (vn - vcp.VelocityBias)

			// Clamp the accumulated impulse
			newImpulse := math.Max(vcp.NormalImpulse+lambda, 0.0)
			lambda = newImpulse - vcp.NormalImpulse
			vcp.NormalImpulse = newImpulse

			apply(vcp, B2Vec2MulScalar(lambda, normal))
		} else {
			solver.solveBlock(vc, &vA, &wA, &vB, &wB)
		}

		solver.velocities[vc.IndexA].V = vA
		solver.velocities[vc.IndexA].W = wA
		solver.velocities[vc.IndexB].V = vB
		solver.velocities[vc.IndexB].W = wB
	}
}

// Block solver developed in collaboration with Dirk Gregorius (back in 01/07 on Box2D_Lite).
// Build the mini LCP for this contact patch
//
// vn = A * x + b, vn >= 0, x >= 0 and vn_i * x_i = 0 with i = 1..2
//
// A = J * W * JT and J = ( -n, -r1 x n, n, r2 x n )
// b = vn0 - velocityBias
//
// The system is solved using the "Total enumeration method" (s. Murty). The complementary constraint vn_i * x_i
// implies that we must have in any solution either vn_i = 0 or x_i = 0. So for the 2D contact problem the cases
// vn1 = 0 and vn2 = 0, x1 = 0 and x2 = 0, x1 = 0 and vn2 = 0, x2 = 0 and vn1 = 0 need to be tested. The first valid
// solution that satisfies the problem is chosen.
//
// In order to account of the accumulated impulse 'a' (because of the iterative nature of the solver which only requires
// that the accumulated impulse is clamped and not the incremental impulse) we change the impulse variable (x_i).
//
// Substitute:
//
// x = a + d
//
// a := old total impulse
// x := new total impulse
// d := incremental impulse
//
// For the current iteration we extend the formula for the incremental impulse
// to compute the new total impulse:
//
// vn = A * d + b
//    = A * (x - a) + b
//    = A * x + b - A * a
//    = A * x + b'
// b' = b - A * a;
func (solver *b2ContactSolver) solveBlock(vc *B2ContactVelocityConstraint, vA *B2Vec2, wA *float64, vB *B2Vec2, wB *float64) {
	cp1 := &vc.Points[0]
	cp2 := &vc.Points[1]
	normal := vc.Normal

	a := B2Vec2{cp1.NormalImpulse, cp2.NormalImpulse}
	B2Assert(a.X >= 0.0 && a.Y >= 0.0)

	// Relative velocity at contact
	dv1 := b2RelativeVelocity(*vA, *wA, cp1.RA, *vB, *wB, cp1.RB)
	dv2 := b2RelativeVelocity(*vA, *wA, cp2.RA, *vB, *wB, cp2.RB)

	// Compute normal velocity
	vn1 := B2Vec2Dot(dv1, normal)
	vn2 := B2Vec2Dot(dv2, normal)

	// Compute b'
	b := B2Vec2{vn1 - cp1.VelocityBias, vn2 - cp2.VelocityBias}
	b = B2Vec2Sub(b, B2Vec2Mat22Mul(vc.K, a))

	// Apply the incremental impulse d = x - a and record x.
	resolve := func(x B2Vec2) {
		d := B2Vec2Sub(x, a)

		P1 := B2Vec2MulScalar(d.X, normal)
		P2 := B2Vec2MulScalar(d.Y, normal)
		P := B2Vec2Add(P1, P2)

		*vA = B2Vec2MulSub(*vA, vc.InvMassA, P)
		*wA -= vc.InvIA * (B2Vec2Cross(cp1.RA, P1) + B2Vec2Cross(cp2.RA, P2))

		*vB = B2Vec2MulAdd(*vB, vc.InvMassB, P)
		*wB += vc.InvIB * (B2Vec2Cross(cp1.RB, P1) + B2Vec2Cross(cp2.RB, P2))

		cp1.NormalImpulse = x.X
		cp2.NormalImpulse = x.Y
	}

	// Case 1: vn = 0
	//
	// 0 = A * x + b'
	//
	// Solve for x:
	//
	// x = - inv(A) * b'
	x := B2Vec2Mat22Mul(vc.NormalMass, b).Negate()
	if x.X >= 0.0 && x.Y >= 0.0 {
		resolve(x)
		return
	}

	// Case 2: vn1 = 0 and x2 = 0
	//
	//   0 = a11 * x1 + a12 * 0 + b1'
	// vn2 = a21 * x1 + a22 * 0 + b2'
	x = B2Vec2{-cp1.NormalMass * b.X, 0.0}
	vn2 = vc.K.Ex.Y*x.X + b.Y
	if x.X >= 0.0 && vn2 >= 0.0 {
		resolve(x)
		return
	}

	// Case 3: vn2 = 0 and x1 = 0
	//
	// vn1 = a11 * 0 + a12 * x2 + b1'
	//   0 = a21 * 0 + a22 * x2 + b2'
	x = B2Vec2{0.0, -cp2.NormalMass * b.Y}
	vn1 = vc.K.Ey.X*x.Y + b.X
	if x.Y >= 0.0 && vn1 >= 0.0 {
		resolve(x)
		return
	}

	// Case 4: x1 = 0 and x2 = 0
	//
	// vn1 = b1
	// vn2 = b2
	x = B2Vec2{}
	if b.X >= 0.0 && b.Y >= 0.0 {
		resolve(x)
		return
	}

	// No solution, give up. This is hit sometimes, but it doesn't seem to matter.
}

func (solver *b2ContactSolver) storeImpulses() {
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]
		manifold := &solver.contacts[vc.ContactIndex].manifold

		for j := 0; j < vc.PointCount; j++ {
			manifold.Points[j].NormalImpulse = vc.Points[j].NormalImpulse
			manifold.Points[j].TangentImpulse = vc.Points[j].TangentImpulse
		}
	}
}

type b2PositionSolverManifold struct {
	normal     B2Vec2
	point      B2Vec2
	separation float64
}

func (psm *b2PositionSolverManifold) initialize(pc *B2ContactPositionConstraint, xfA B2Transform, xfB B2Transform, index int) {
	B2Assert(pc.PointCount > 0)

	switch pc.Type {
	case B2Manifold_Type.E_circles:
		pointA := B2TransformVec2Mul(xfA, pc.LocalPoint)
		pointB := B2TransformVec2Mul(xfB, pc.LocalPoints[0])
		psm.normal = B2Vec2Sub(pointB, pointA)
		psm.normal.Normalize()
		psm.point = B2Vec2Lerp(pointA, pointB, 0.5)
		psm.separation = B2Vec2Dot(B2Vec2Sub(pointB, pointA), psm.normal) - pc.RadiusA - pc.RadiusB

	case B2Manifold_Type.E_faceA:
		psm.normal = B2RotVec2Mul(xfA.Q, pc.LocalNormal)
		planePoint := B2TransformVec2Mul(xfA, pc.LocalPoint)

		clipPoint := B2TransformVec2Mul(xfB, pc.LocalPoints[index])
		psm.separation = B2Vec2Dot(B2Vec2Sub(clipPoint, planePoint), psm.normal) - pc.RadiusA - pc.RadiusB
		psm.point = clipPoint

	case B2Manifold_Type.E_faceB:
		psm.normal = B2RotVec2Mul(xfB.Q, pc.LocalNormal)
		planePoint := B2TransformVec2Mul(xfB, pc.LocalPoint)

		clipPoint := B2TransformVec2Mul(xfA, pc.LocalPoints[index])
		psm.separation = B2Vec2Dot(B2Vec2Sub(clipPoint, planePoint), psm.normal) - pc.RadiusA - pc.RadiusB
		psm.point = clipPoint

		// Ensure normal points from A to B
		psm.normal = psm.normal.Negate()
	}
}

// Sequential solver. Each pass moves the positions directly (nonlinear
// Gauss-Seidel) by a fraction of the remaining penetration. Returns true once
// every contact is within the tolerance.
func (solver *b2ContactSolver) solvePositions(baumgarte float64, isToiBody func(index int) bool, tolerance float64) bool {
	minSeparation := 0.0

	for i := range solver.positionConstraints {
		pc := &solver.positionConstraints[i]

		mA, iA := pc.InvMassA, pc.InvIA
		mB, iB := pc.InvMassB, pc.InvIB

		if isToiBody != nil {
			if !isToiBody(pc.IndexA) {
				mA, iA = 0.0, 0.0
			}
			if !isToiBody(pc.IndexB) {
				mB, iB = 0.0, 0.0
			}
		}

		posA := &solver.positions[pc.IndexA]
		posB := &solver.positions[pc.IndexB]

		// Solve normal constraints
		for j := 0; j < pc.PointCount; j++ {
			xfA, xfB := solver.transforms(pc)

			var psm b2PositionSolverManifold
			psm.initialize(pc, xfA, xfB, j)
			normal := psm.normal

			rA := B2Vec2Sub(psm.point, posA.C)
			rB := B2Vec2Sub(psm.point, posB.C)

			// Track max constraint error.
			minSeparation = math.Min(minSeparation, psm.separation)

			// Prevent large corrections and allow slop.
			C := B2FloatClamp(baumgarte*(psm.separation+B2_linearSlop), -B2_maxLinearCorrection, 0.0)

			// Compute the effective mass.
			rnA := B2Vec2Cross(rA, normal)
			rnB := B2Vec2Cross(rB, normal)
			K := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			// Compute normal impulse
			impulse := 0.0
			if K > 0.0 {
				impulse = -C / K
			}

			P := B2Vec2MulScalar(impulse, normal)

			posA.C = B2Vec2MulSub(posA.C, mA, P)
			posA.A -= iA * B2Vec2Cross(rA, P)

			posB.C = B2Vec2MulAdd(posB.C, mB, P)
			posB.A += iB * B2Vec2Cross(rB, P)
		}
	}

	// We can't expect minSpeparation >= -b2_linearSlop because we don't
	// push the separation above -b2_linearSlop.
	return minSeparation >= tolerance
}

func (solver *b2ContactSolver) solvePositionConstraints() bool {
	return solver.solvePositions(B2_baumgarte, nil, -3.0*B2_linearSlop)
}

// Only the two TOI bodies move. Every other body acts as if it had infinite mass.
func (solver *b2ContactSolver) solveTOIPositionConstraints(toiIndexA int, toiIndexB int) bool {
	isToiBody := func(index int) bool {
		return index == toiIndexA || index == toiIndexB
	}
	return solver.solvePositions(B2_toiBaugarte, isToiBody, -1.5*B2_linearSlop)
}
