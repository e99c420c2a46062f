package box2d

import (
	"math"
)

/*
Position Correction Notes
=========================
Position errors are removed with Full NGS (nonlinear Gauss-Seidel). After the
velocity solver and position integration each constraint recomputes its
position error, Jacobian and effective mass, then moves the bodies directly.
The iterations stop early once every error is below the slop.

Baumgarte feeds a fraction of the position error back into the velocity
error. It is cheap but artificially affects momentum, which leads to false
bounce and separated chains. Full NGS keeps joints stiff and bridges stable.
*/

/*
Cache Performance

The bodies are not accessed during iteration. Read only data, such as the
mass values, are stored with the constraints. The body velocities/positions
are held in compact, temporary arrays indexed by island index.
*/

/// Timings of one island solve, in milliseconds.
type b2IslandProfile struct {
	solveInit     float64
	solveVelocity float64
	solvePosition float64
}

/// A connected group of awake bodies with the contacts and joints that
/// couple them. Static bodies may show up in many islands at once, so their
/// island index lives in the island rather than in the body.
type b2Island struct {
	world    *B2World
	listener B2ContactListenerInterface

	bodies   []int32
	contacts []int32
	joints   []int32

	contactRecords []*b2Contact
	jointRecords   []*b2Joint

	statics map[int32]int

	positions  []B2Position
	velocities []B2Velocity

	contactSolver b2ContactSolver
}

func makeB2Island(world *B2World, listener B2ContactListenerInterface) b2Island {
	return b2Island{
		world:    world,
		listener: listener,
		statics:  make(map[int32]int),
	}
}

func (island *b2Island) clear() {
	island.bodies = island.bodies[:0]
	island.contacts = island.contacts[:0]
	island.joints = island.joints[:0]
	island.contactRecords = island.contactRecords[:0]
	island.jointRecords = island.jointRecords[:0]
	for k := range island.statics {
		delete(island.statics, k)
	}
}

func (island *b2Island) addBody(index int32) {
	b := island.world.bodies.get(index)
	local := len(island.bodies)
	if b.typ == B2BodyType.B2_staticBody {
		island.statics[index] = local
	} else {
		b.islandIndex = local
	}
	island.bodies = append(island.bodies, index)
}

func (island *b2Island) addContact(index int32) {
	island.contacts = append(island.contacts, index)
	island.contactRecords = append(island.contactRecords, island.world.contactManager.contacts.get(index))
}

func (island *b2Island) addJoint(index int32) {
	island.joints = append(island.joints, index)
	island.jointRecords = append(island.jointRecords, island.world.joints.get(index))
}

/// Position of the body in the island state arrays.
func (island *b2Island) localIndex(body int32) int {
	b := island.world.bodies.get(body)
	if b.typ == B2BodyType.B2_staticBody {
		local, ok := island.statics[body]
		B2Assert(ok)
		return local
	}
	return b.islandIndex
}

func (island *b2Island) loadState() {
	n := len(island.bodies)
	if cap(island.positions) < n {
		island.positions = make([]B2Position, n)
		island.velocities = make([]B2Velocity, n)
	}
	island.positions = island.positions[:n]
	island.velocities = island.velocities[:n]
}

// Clamp large velocities and move the positions forward by h.
func (island *b2Island) integratePositions(h float64) {
	for i := range island.positions {
		c := island.positions[i].C
		a := island.positions[i].A
		v := island.velocities[i].V
		w := island.velocities[i].W

		// Check for large velocities
		translation := B2Vec2MulScalar(h, v)
		if B2Vec2Dot(translation, translation) > B2_maxTranslationSquared {
			ratio := B2_maxTranslation / translation.Length()
			v = B2Vec2MulScalar(ratio, v)
		}

		rotation := h * w
		if rotation*rotation > B2_maxRotationSquared {
			ratio := B2_maxRotation / math.Abs(rotation)
			w *= ratio
		}

		// Integrate
		c = B2Vec2MulAdd(c, h, v)
		a += h * w

		island.positions[i].C = c
		island.positions[i].A = a
		island.velocities[i].V = v
		island.velocities[i].W = w
	}
}

func (island *b2Island) solverData(step B2TimeStep) *B2SolverData {
	return &B2SolverData{
		Step:       step,
		Positions:  island.positions,
		Velocities: island.velocities,
		island:     island,
	}
}

/// Integrates, solves the constraints and updates sleep timers. Static bodies
/// are only read so several islands may be solved concurrently.
func (island *b2Island) solve(step B2TimeStep, gravity B2Vec2, allowSleep bool) b2IslandProfile {
	var profile b2IslandProfile
	world := island.world
	timer := MakeB2Timer()

	h := step.Dt

	island.loadState()

	// Integrate velocities and apply damping. Initialize the body state.
	for i, bi := range island.bodies {
		b := world.bodies.get(bi)

		c := b.sweep.C
		a := b.sweep.A
		v := b.linearVelocity
		w := b.angularVelocity

		if b.typ != B2BodyType.B2_staticBody {
			// Store positions for continuous collision.
			b.sweep.C0 = b.sweep.C
			b.sweep.A0 = b.sweep.A
		}

		if b.typ == B2BodyType.B2_dynamicBody {
			// Integrate velocities.
			v = B2Vec2MulAdd(v, h, B2Vec2Add(B2Vec2MulScalar(b.gravityScale, gravity), B2Vec2MulScalar(b.invMass, b.force)))
			w += h * b.invI * b.torque

			// Apply damping.
			// ODE: dv/dt + c * v = 0
			// Solution: v(t) = v0 * exp(-c * t)
			// Time step: v(t + dt) = v0 * exp(-c * (t + dt)) = v0 * exp(-c * t) * exp(-c * dt) = v * exp(-c * dt)
			// v2 = exp(-c * dt) * v1
			// Pade approximation:
			// v2 = v1 * 1 / (1 + c * dt)
			v = B2Vec2MulScalar(1.0/(1.0+h*b.linearDamping), v)
			w *= 1.0 / (1.0 + h*b.angularDamping)
		}

		island.positions[i] = B2Position{C: c, A: a}
		island.velocities[i] = B2Velocity{V: v, W: w}
	}

	timer.Reset()

	data := island.solverData(step)

	// Initialize velocity constraints.
	solver := &island.contactSolver
	solver.initialize(island, step)
	solver.initializeVelocityConstraints()

	if step.WarmStarting {
		solver.warmStart()
	}

	for _, j := range island.jointRecords {
		j.initVelocityConstraints(data)
	}

	profile.solveInit = timer.GetMilliseconds()

	// Solve velocity constraints
	timer.Reset()
	for i := 0; i < step.VelocityIterations; i++ {
		for _, j := range island.jointRecords {
			j.solveVelocityConstraints(data)
		}

		solver.solveVelocityConstraints()
	}

	// Store impulses for warm starting
	solver.storeImpulses()
	profile.solveVelocity = timer.GetMilliseconds()

	island.integratePositions(h)

	// Solve position constraints
	timer.Reset()
	positionSolved := false
	for i := 0; i < step.PositionIterations; i++ {
		contactsOkay := solver.solvePositionConstraints()

		jointsOkay := true
		for _, j := range island.jointRecords {
			jointOkay := j.solvePositionConstraints(data)
			jointsOkay = jointsOkay && jointOkay
		}

		if contactsOkay && jointsOkay {
			// Exit early if the position errors are small.
			positionSolved = true
			break
		}
	}

	// Copy state buffers back to the bodies
	for i, bi := range island.bodies {
		b := world.bodies.get(bi)
		if b.typ == B2BodyType.B2_staticBody {
			continue
		}
		b.sweep.C = island.positions[i].C
		b.sweep.A = island.positions[i].A
		b.linearVelocity = island.velocities[i].V
		b.angularVelocity = island.velocities[i].W
		b.synchronizeTransform()
	}

	profile.solvePosition = timer.GetMilliseconds()

	if allowSleep {
		island.updateSleep(h, positionSolved)
	}

	return profile
}

func (island *b2Island) updateSleep(h float64, positionSolved bool) {
	minSleepTime := B2_maxFloat

	linTolSqr := B2_linearSleepTolerance * B2_linearSleepTolerance
	angTolSqr := B2_angularSleepTolerance * B2_angularSleepTolerance

	for _, bi := range island.bodies {
		b := island.world.bodies.get(bi)
		if b.typ == B2BodyType.B2_staticBody {
			continue
		}

		if !b.hasFlag(B2Body_Flags.E_autoSleepFlag) ||
			b.angularVelocity*b.angularVelocity > angTolSqr ||
			B2Vec2Dot(b.linearVelocity, b.linearVelocity) > linTolSqr {
			b.sleepTime = 0.0
			minSleepTime = 0.0
		} else {
			b.sleepTime += h
			minSleepTime = math.Min(minSleepTime, b.sleepTime)
		}
	}

	if minSleepTime >= B2_timeToSleep && positionSolved {
		for _, bi := range island.bodies {
			island.world.bodies.get(bi).setAwake(false)
		}
	}
}

/// Resolves a time of impact event. Only the two TOI bodies move during the
/// position pass, the rest of the island is pushed by the velocity pass.
func (island *b2Island) solveTOI(subStep B2TimeStep, toiIndexA int, toiIndexB int) {
	world := island.world

	B2Assert(toiIndexA < len(island.bodies))
	B2Assert(toiIndexB < len(island.bodies))

	island.loadState()

	// Initialize the body state.
	for i, bi := range island.bodies {
		b := world.bodies.get(bi)
		island.positions[i] = B2Position{C: b.sweep.C, A: b.sweep.A}
		island.velocities[i] = B2Velocity{V: b.linearVelocity, W: b.angularVelocity}
	}

	solver := &island.contactSolver
	solver.initialize(island, subStep)

	// Solve position constraints.
	for i := 0; i < subStep.PositionIterations; i++ {
		if solver.solveTOIPositionConstraints(toiIndexA, toiIndexB) {
			break
		}
	}

	// Leap of faith to new safe state.
	bodyA := world.bodies.get(island.bodies[toiIndexA])
	bodyB := world.bodies.get(island.bodies[toiIndexB])
	bodyA.sweep.C0 = island.positions[toiIndexA].C
	bodyA.sweep.A0 = island.positions[toiIndexA].A
	bodyB.sweep.C0 = island.positions[toiIndexB].C
	bodyB.sweep.A0 = island.positions[toiIndexB].A

	// No warm starting is needed for TOI events because warm
	// starting impulses were applied in the discrete solver.
	solver.initializeVelocityConstraints()

	// Solve velocity constraints.
	for i := 0; i < subStep.VelocityIterations; i++ {
		solver.solveVelocityConstraints()
	}

	// Don't store the TOI contact forces for warm starting
	// because they can be quite large.

	island.integratePositions(subStep.Dt)

	// Sync bodies
	for i, bi := range island.bodies {
		b := world.bodies.get(bi)
		if b.typ == B2BodyType.B2_staticBody {
			continue
		}
		b.sweep.C = island.positions[i].C
		b.sweep.A = island.positions[i].A
		b.linearVelocity = island.velocities[i].V
		b.angularVelocity = island.velocities[i].W
		b.synchronizeTransform()
	}

	island.report()
}

/// Sends the solved impulses to the contact listener.
func (island *b2Island) report() {
	if island.listener == nil {
		return
	}

	constraints := island.contactSolver.velocityConstraints
	for i, ci := range island.contacts {
		vc := &constraints[i]

		var impulse B2ContactImpulse
		impulse.Count = vc.PointCount

		for j := 0; j < vc.PointCount; j++ {
			impulse.NormalImpulses[j] = vc.Points[j].NormalImpulse
			impulse.TangentImpulses[j] = vc.Points[j].TangentImpulse
		}

		island.listener.PostSolve(island.world.contactHandle(ci), &impulse)
	}
}
