package box2d

import (
	"fmt"
	"io"
	"log"
	"math"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var B2World_Flags = struct {
	E_newFixture  uint32
	E_locked      uint32
	E_clearForces uint32
}{
	E_newFixture:  0x0001,
	E_locked:      0x0002,
	E_clearForces: 0x0004,
}

/// The world class manages all physics entities, dynamic simulation,
/// and asynchronous queries. The world owns every body, fixture, joint and
/// contact record; the application only holds handles.
///
/// A world is not safe for concurrent use. Parallel island solving happens
/// inside Step and is invisible to callers.
type B2World struct {
	flags uint32

	contactManager b2ContactManager

	bodies   b2Pool[b2Body]
	fixtures b2Pool[b2Fixture]
	joints   b2Pool[b2Joint]

	gravity    B2Vec2
	allowSleep bool

	destructionListener B2DestructionListenerInterface

	// This is used to compute the time step ratio to
	// support a variable time step.
	inv_dt0 float64

	// These are for debugging the solver.
	warmStarting      bool
	continuousPhysics bool
	subStepping       bool
	parallelIslands   bool

	stepComplete bool

	profile B2Profile

	logger *log.Logger

	// Mutations requested from callbacks while the world was locked.
	deferred []b2DeferredOp

	// Scratch state reused by every step.
	stack     []int32
	island    b2Island
	toiIsland b2Island
}

/// Construct a world object.
/// @param gravity the world gravity vector.
func NewB2World(gravity B2Vec2) *B2World {
	world := &B2World{
		gravity:           gravity,
		allowSleep:        true,
		warmStarting:      true,
		continuousPhysics: true,
		stepComplete:      true,
		flags:             B2World_Flags.E_clearForces,
		logger:            log.New(io.Discard, "box2d: ", log.LstdFlags),
	}
	world.contactManager = makeB2ContactManager(world)
	world.island = makeB2Island(world, nil)
	world.toiIsland = makeB2Island(world, nil)
	return world
}

/// Destroy the world. All bodies, fixtures and joints are released and every
/// outstanding handle reads back as gone, even after the world is refilled.
/// No listener is called.
func (world *B2World) Destroy() {
	world.contactManager.contacts.reset()
	world.joints.reset()
	world.fixtures.reset()
	world.bodies.reset()
	world.contactManager.broadPhase = MakeB2BroadPhase[b2ProxyKey]()
	world.deferred = nil
	world.flags &= ^B2World_Flags.E_newFixture
	world.stepComplete = true
}

/// Register a destruction listener. The listener is owned by you and must
/// remain in scope.
func (world *B2World) SetDestructionListener(listener B2DestructionListenerInterface) {
	world.destructionListener = listener
}

/// Register a contact filter to provide specific control over collision.
/// Otherwise the default filter is used. Passing nil lets every pair collide.
func (world *B2World) SetContactFilter(filter B2ContactFilterInterface) {
	world.contactManager.contactFilter = filter
}

/// Register a contact event listener. The listener is owned by you and must
/// remain in scope.
func (world *B2World) SetContactListener(listener B2ContactListenerInterface) {
	world.contactManager.contactListener = listener
}

/// Route the world's diagnostics to l. Passing nil silences them.
func (world *B2World) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	world.logger = l
}

/// Is the world locked (in the middle of a time step).
func (world *B2World) IsLocked() bool {
	return world.flags&B2World_Flags.E_locked == B2World_Flags.E_locked
}

// Reports and logs a structural change attempted inside the step.
func (world *B2World) rejectLocked(name string) bool {
	if !world.IsLocked() {
		return false
	}
	world.logger.Printf("%s ignored: %v", name, ErrWorldLocked)
	return true
}

func (world *B2World) bodyHandle(index int32) B2Body {
	return B2Body{world: world, id: index, revision: world.bodies.revision(index)}
}

func (world *B2World) fixtureHandle(index int32) B2Fixture {
	return B2Fixture{world: world, id: index, revision: world.fixtures.revision(index)}
}

func (world *B2World) jointHandle(index int32) B2Joint {
	return B2Joint{world: world, id: index, revision: world.joints.revision(index)}
}

func (world *B2World) contactHandle(index int32) B2Contact {
	return B2Contact{world: world, id: index, revision: world.contactManager.contacts.revision(index)}
}

/// Create a rigid body given a definition. No reference to the definition
/// is retained.
/// Bodies created inside a callback take no part in the current step.
func (world *B2World) CreateBody(def *B2BodyDef) (B2Body, error) {
	if err := def.validate(); err != nil {
		return B2Body{}, errors.Wrap(err, "create body")
	}

	index, revision := world.bodies.alloc()
	world.bodies.get(index).create(world, def)
	body := B2Body{world: world, id: index, revision: revision}

	if world.IsLocked() {
		world.bodies.get(index).flags |= B2Body_Flags.E_inertFlag
		world.deferActivation(b2DeferredOp{kind: b2Deferred_activateBody, body: body})
	}

	return body, nil
}

/// Destroy a rigid body given a handle.
/// This automatically deletes all associated shapes and joints.
/// Inside a callback the destruction is queued until the step completes.
func (world *B2World) DestroyBody(body B2Body) error {
	if body.world != world || !body.IsValid() {
		return errors.Wrap(ErrStaleHandle, "destroy body")
	}

	if world.IsLocked() {
		world.deferDestroy(b2DeferredOp{kind: b2Deferred_destroyBody, body: body})
		return nil
	}

	world.destroyBody(body.id)
	return nil
}

func (world *B2World) destroyBody(index int32) {
	b := world.bodies.get(index)

	// Delete the attached joints. Gear joints go with the joints they drive,
	// so the edge list can shrink by more than one per pass.
	for len(b.joints) > 0 {
		ji := b.joints[len(b.joints)-1]
		if world.destructionListener != nil {
			world.destructionListener.SayGoodbyeToJoint(world.jointHandle(ji))
		}
		world.destroyJoint(ji)
	}

	// Delete the attached contacts.
	b.destroyContacts()

	// Delete the attached fixtures. This destroys broad-phase proxies.
	for len(b.fixtures) > 0 {
		fi := b.fixtures[len(b.fixtures)-1]
		if world.destructionListener != nil {
			world.destructionListener.SayGoodbyeToFixture(world.fixtureHandle(fi))
		}
		f := world.fixtures.get(fi)
		f.destroyProxies(&world.contactManager.broadPhase)
		b.fixtures = b.fixtures[:len(b.fixtures)-1]
		world.fixtures.release(fi)
	}

	world.bodies.release(index)
}

// Puts a fixture into the simulation: proxies, mass and contact discovery.
func (world *B2World) activateFixture(b *b2Body, index int32, f *b2Fixture) {
	f.inert = false

	if b.isEnabled() {
		f.createProxies(&world.contactManager.broadPhase, index, b.xf)
	}

	// Adjust mass properties if needed.
	if f.density > 0.0 {
		b.resetMassData()
	}

	// Let the world know we have a new fixture. This will cause new contacts
	// to be created at the beginning of the next time step.
	world.flags |= B2World_Flags.E_newFixture
}

func (world *B2World) destroyFixture(b *b2Body, index int32, f *b2Fixture) {
	// Destroy any contacts associated with the fixture.
	for i := len(b.contacts) - 1; i >= 0; i-- {
		ci := b.contacts[i]
		c := world.contactManager.contacts.get(ci)
		if c.fixtureA == index || c.fixtureB == index {
			// This destroys the contact and removes it from
			// this body's contact list.
			world.contactManager.destroy(ci)
		}
	}

	f.destroyProxies(&world.contactManager.broadPhase)
	b.fixtures = b2RemoveEdge(b.fixtures, index)
	world.fixtures.release(index)
}

/// Create a joint to constrain bodies together. No reference to the definition
/// is retained. This may cause the connected bodies to cease colliding.
/// Joints created inside a callback take no part in the current step.
func (world *B2World) CreateJoint(def B2JointDefInterface) (B2Joint, error) {
	if err := b2ValidateJointDef(def); err != nil {
		return B2Joint{}, errors.Wrap(err, "create joint")
	}
	if def.base().BodyA.world != world {
		return B2Joint{}, errors.Wrap(ErrInvalidJoint, "create joint: bodies belong to another world")
	}

	index, revision := world.joints.alloc()
	j := world.joints.get(index)
	j.create(world, def)

	// Connect to the bodies' edge lists.
	bA, bB := j.records()
	bA.joints = append(bA.joints, index)
	bB.joints = append(bB.joints, index)

	joint := B2Joint{world: world, id: index, revision: revision}
	if world.IsLocked() {
		j.inert = true
		world.deferActivation(b2DeferredOp{kind: b2Deferred_activateJoint, joint: joint})
		return joint, nil
	}

	world.activateJoint(j)
	return joint, nil
}

func (world *B2World) activateJoint(j *b2Joint) {
	j.inert = false

	// If the joint prevents collisions, then flag any contacts for filtering.
	if !j.collideConnected {
		world.flagContactsBetween(j.bodyA, j.bodyB)
	}
}

func (world *B2World) flagContactsBetween(bodyA, bodyB int32) {
	for _, ci := range world.bodies.get(bodyB).contacts {
		c := world.contactManager.contacts.get(ci)
		if c.other(bodyB) == bodyA {
			c.flagForFiltering()
		}
	}
}

/// Destroy a joint. This may cause the connected bodies to begin colliding.
/// Gear joints driven by this joint are destroyed with it and reported to
/// the destruction listener.
/// Inside a callback the destruction is queued until the step completes.
func (world *B2World) DestroyJoint(joint B2Joint) error {
	if joint.world != world || !joint.IsValid() {
		return errors.Wrap(ErrStaleHandle, "destroy joint")
	}

	if world.IsLocked() {
		world.deferDestroy(b2DeferredOp{kind: b2Deferred_destroyJoint, joint: joint})
		return nil
	}

	world.destroyJoint(joint.id)
	return nil
}

func (world *B2World) destroyJoint(index int32) {
	// A gear cannot outlive the joints it couples.
	var gears []int32
	world.joints.each(func(gi int32, g *b2Joint) bool {
		if g.gear != nil && gi != index && (g.gear.joint1 == index || g.gear.joint2 == index) {
			gears = append(gears, gi)
		}
		return true
	})
	for _, gi := range gears {
		if !world.joints.valid(gi) {
			continue
		}
		if world.destructionListener != nil {
			world.destructionListener.SayGoodbyeToJoint(world.jointHandle(gi))
		}
		world.destroyJoint(gi)
	}

	j := world.joints.get(index)
	collideConnected := j.collideConnected
	bodyA, bodyB := j.bodyA, j.bodyB

	// Wake up connected bodies.
	bA, bB := j.records()
	bA.setAwake(true)
	bB.setAwake(true)

	// Remove from the body edge lists.
	bA.joints = b2RemoveEdge(bA.joints, index)
	bB.joints = b2RemoveEdge(bB.joints, index)

	world.joints.release(index)

	// If the joint prevents collisions, then flag any contacts for filtering.
	if !collideConnected {
		world.flagContactsBetween(bodyA, bodyB)
	}
}

/// Take a time step. This performs collision detection, integration,
/// and constraint solution.
/// @param timeStep the amount of time to simulate, this should not vary.
/// @param velocityIterations for the velocity constraint solver.
/// @param positionIterations for the position constraint solver.
func (world *B2World) Step(dt float64, velocityIterations int, positionIterations int) {
	if world.rejectLocked("Step") {
		return
	}

	stepTimer := MakeB2Timer()

	// If new fixtures were added, we need to find the new contacts.
	if world.flags&B2World_Flags.E_newFixture != 0 {
		world.contactManager.findNewContacts()
		world.flags &= ^B2World_Flags.E_newFixture
	}

	world.flags |= B2World_Flags.E_locked

	step := B2TimeStep{
		Dt:                 dt,
		VelocityIterations: velocityIterations,
		PositionIterations: positionIterations,
		DtRatio:            world.inv_dt0 * dt,
		WarmStarting:       world.warmStarting,
	}
	if dt > 0.0 {
		step.Inv_dt = 1.0 / dt
	}

	// Update contacts. This is where some contacts are destroyed.
	{
		timer := MakeB2Timer()
		world.contactManager.collide()
		world.profile.Collide = timer.GetMilliseconds()
	}

	// Integrate velocities, solve velocity constraints, and integrate positions.
	if world.stepComplete && step.Dt > 0.0 {
		timer := MakeB2Timer()
		world.solve(step)
		world.profile.Solve = timer.GetMilliseconds()
	}

	// Handle TOI events.
	if world.continuousPhysics && step.Dt > 0.0 {
		timer := MakeB2Timer()
		world.solveTOI(step)
		world.profile.SolveTOI = timer.GetMilliseconds()
	}

	if step.Dt > 0.0 {
		world.inv_dt0 = step.Inv_dt
	}

	if world.flags&B2World_Flags.E_clearForces != 0 {
		world.ClearForces()
	}

	world.flags &= ^B2World_Flags.E_locked

	world.drainDeferred()

	world.profile.Step = stepTimer.GetMilliseconds()
}

// Collects the island of seed with a depth first search over touching
// contacts and joints. Static bodies are added but not propagated.
func (world *B2World) buildIsland(island *b2Island, seed int32) {
	stack := append(world.stack[:0], seed)
	world.bodies.get(seed).flags |= B2Body_Flags.E_islandFlag

	for len(stack) > 0 {
		bi := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b := world.bodies.get(bi)
		island.addBody(bi)

		// To keep islands as small as possible, we don't
		// propagate islands across static bodies.
		if b.typ == B2BodyType.B2_staticBody {
			continue
		}

		// Make sure the body is awake (without resetting sleep timer).
		b.flags |= B2Body_Flags.E_awakeFlag

		// Search all contacts connected to this body.
		for _, ci := range b.contacts {
			c := world.contactManager.contacts.get(ci)

			// Has this contact already been added to an island?
			if c.hasFlag(B2Contact_Flag.E_islandFlag) {
				continue
			}

			// Is this contact solid and touching?
			if !c.hasFlag(B2Contact_Flag.E_enabledFlag) || !c.hasFlag(B2Contact_Flag.E_touchingFlag) {
				continue
			}

			// Skip sensors.
			if world.fixtures.get(c.fixtureA).isSensor || world.fixtures.get(c.fixtureB).isSensor {
				continue
			}

			island.addContact(ci)
			c.flags |= B2Contact_Flag.E_islandFlag

			other := c.other(bi)
			o := world.bodies.get(other)

			// Was the other body already added to this island?
			if o.hasFlag(B2Body_Flags.E_islandFlag) {
				continue
			}

			stack = append(stack, other)
			o.flags |= B2Body_Flags.E_islandFlag
		}

		// Search all joints connect to this body.
		for _, ji := range b.joints {
			j := world.joints.get(ji)
			if j.islandFlag || j.inert {
				continue
			}

			other := j.other(bi)
			o := world.bodies.get(other)

			// Don't simulate joints connected to disabled bodies.
			if !o.isEnabled() {
				continue
			}

			island.addJoint(ji)
			j.islandFlag = true

			if o.hasFlag(B2Body_Flags.E_islandFlag) {
				continue
			}

			stack = append(stack, other)
			o.flags |= B2Body_Flags.E_islandFlag
		}
	}

	world.stack = stack
}

// Post solve cleanup. Allow static bodies to participate in other islands.
func (world *B2World) releaseStatics(island *b2Island) {
	for bi := range island.statics {
		world.bodies.get(bi).flags &= ^B2Body_Flags.E_islandFlag
	}
}

func (world *B2World) solve(step B2TimeStep) {
	world.profile.SolveInit = 0.0
	world.profile.SolveVelocity = 0.0
	world.profile.SolvePosition = 0.0

	listener := world.contactManager.contactListener

	// Clear all the island flags.
	world.bodies.each(func(_ int32, b *b2Body) bool {
		b.flags &= ^B2Body_Flags.E_islandFlag
		return true
	})
	world.contactManager.contacts.each(func(_ int32, c *b2Contact) bool {
		c.flags &= ^B2Contact_Flag.E_islandFlag
		return true
	})
	world.joints.each(func(_ int32, j *b2Joint) bool {
		j.islandFlag = false
		return true
	})

	seedable := func(b *b2Body) bool {
		if b.hasFlag(B2Body_Flags.E_islandFlag) || b.hasFlag(B2Body_Flags.E_inertFlag) {
			return false
		}
		if !b.isAwake() || !b.isEnabled() {
			return false
		}

		// The seed can be dynamic or kinematic.
		return b.typ != B2BodyType.B2_staticBody
	}

	if world.parallelIslands {
		world.solveParallel(step, listener, seedable)
	} else {
		island := &world.island
		island.listener = listener
		world.bodies.each(func(seed int32, b *b2Body) bool {
			if !seedable(b) {
				return true
			}

			island.clear()
			world.buildIsland(island, seed)
			world.profile.addIsland(island.solve(step, world.gravity, world.allowSleep))
			island.report()
			world.releaseStatics(island)
			return true
		})
	}

	{
		timer := MakeB2Timer()

		// Synchronize fixtures, check for out of range bodies.
		world.bodies.each(func(_ int32, b *b2Body) bool {
			// If a body was not in an island then it did not move.
			if !b.hasFlag(B2Body_Flags.E_islandFlag) || b.typ == B2BodyType.B2_staticBody {
				return true
			}

			// Update fixtures (for broad-phase).
			b.synchronizeFixtures()
			return true
		})

		// Look for new contacts.
		world.contactManager.findNewContacts()
		world.profile.Broadphase = timer.GetMilliseconds()
	}
}

// Islands share no mutable state, static bodies are only read. They are
// built sequentially, solved concurrently and reported in build order so the
// listener sees the same sequence as the sequential path.
func (world *B2World) solveParallel(step B2TimeStep, listener B2ContactListenerInterface, seedable func(b *b2Body) bool) {
	var islands []*b2Island
	world.bodies.each(func(seed int32, b *b2Body) bool {
		if !seedable(b) {
			return true
		}

		island := makeB2Island(world, listener)
		world.buildIsland(&island, seed)
		world.releaseStatics(&island)
		islands = append(islands, &island)
		return true
	})

	profiles := make([]b2IslandProfile, len(islands))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, island := range islands {
		g.Go(func() error {
			profiles[i] = island.solve(step, world.gravity, world.allowSleep)
			return nil
		})
	}
	_ = g.Wait()

	for i, island := range islands {
		world.profile.addIsland(profiles[i])
		island.report()
	}
}

// Find TOI contacts and solve them.
func (world *B2World) solveTOI(step B2TimeStep) {
	island := &world.toiIsland
	island.listener = world.contactManager.contactListener
	contacts := &world.contactManager.contacts
	listener := world.contactManager.contactListener

	if world.stepComplete {
		world.bodies.each(func(_ int32, b *b2Body) bool {
			b.flags &= ^B2Body_Flags.E_islandFlag
			b.sweep.Alpha0 = 0.0
			return true
		})

		contacts.each(func(_ int32, c *b2Contact) bool {
			// Invalidate TOI
			c.flags &= ^(B2Contact_Flag.E_toiFlag | B2Contact_Flag.E_toiFailedFlag | B2Contact_Flag.E_islandFlag)
			c.toiCount = 0
			c.toi = 1.0
			return true
		})
	}

	// Find TOI events and solve them.
	for {
		// Find the first TOI.
		minContact := B2_nullIndex
		minAlpha := 1.0

		contacts.each(func(ci int32, c *b2Contact) bool {
			// Is this contact disabled?
			if !c.hasFlag(B2Contact_Flag.E_enabledFlag) {
				return true
			}

			// Prevent excessive sub-stepping.
			if c.toiCount > B2_maxSubSteps {
				return true
			}

			alpha := 1.0
			if c.hasFlag(B2Contact_Flag.E_toiFlag) {
				// This contact has a valid cached TOI.
				alpha = c.toi
			} else {
				fA := world.fixtures.get(c.fixtureA)
				fB := world.fixtures.get(c.fixtureB)

				// Is there a sensor?
				if fA.isSensor || fB.isSensor {
					return true
				}

				bA := world.bodies.get(c.bodyA)
				bB := world.bodies.get(c.bodyB)

				typeA := bA.typ
				typeB := bB.typ
				B2Assert(typeA == B2BodyType.B2_dynamicBody || typeB == B2BodyType.B2_dynamicBody)

				activeA := bA.isAwake() && typeA != B2BodyType.B2_staticBody
				activeB := bB.isAwake() && typeB != B2BodyType.B2_staticBody

				// Is at least one body active (awake and dynamic or kinematic)?
				if !activeA && !activeB {
					return true
				}

				collideA := bA.hasFlag(B2Body_Flags.E_bulletFlag) || typeA != B2BodyType.B2_dynamicBody
				collideB := bB.hasFlag(B2Body_Flags.E_bulletFlag) || typeB != B2BodyType.B2_dynamicBody

				// Are these two non-bullet dynamic bodies?
				if !collideA && !collideB {
					return true
				}

				// Compute the TOI for this contact.
				// Put the sweeps onto the same time interval.
				alpha0 := bA.sweep.Alpha0

				if bA.sweep.Alpha0 < bB.sweep.Alpha0 {
					alpha0 = bB.sweep.Alpha0
					bA.sweep.Advance(alpha0)
				} else if bB.sweep.Alpha0 < bA.sweep.Alpha0 {
					alpha0 = bA.sweep.Alpha0
					bB.sweep.Advance(alpha0)
				}

				B2Assert(alpha0 < 1.0)

				// Compute the time of impact in interval [0, minTOI]
				var input B2TOIInput
				input.ProxyA.Set(&fA.shape, c.indexA)
				input.ProxyB.Set(&fB.shape, c.indexB)
				input.SweepA = bA.sweep
				input.SweepB = bB.sweep
				input.TMax = 1.0

				output := B2TimeOfImpact(&input)

				// Beta is the fraction of the remaining portion of the step.
				beta := output.T
				switch output.State {
				case B2TOIOutput_State.E_touching:
					alpha = math.Min(alpha0+(1.0-alpha0)*beta, 1.0)
				case B2TOIOutput_State.E_failed:
					// Hold the pair at the start of its sweep rather than let it tunnel.
					world.logger.Printf("time of impact search failed for fixtures %d and %d at t=%g", c.fixtureA, c.fixtureB, beta)
					alpha = alpha0
					c.flags |= B2Contact_Flag.E_toiFailedFlag
				}

				c.toi = alpha
				c.flags |= B2Contact_Flag.E_toiFlag
			}

			if alpha < minAlpha {
				// This is the minimum TOI found so far.
				minContact = ci
				minAlpha = alpha
			}
			return true
		})

		if minContact == B2_nullIndex || 1.0-10.0*B2_epsilon < minAlpha {
			// No more TOI events. Done!
			world.stepComplete = true
			break
		}

		// Advance the bodies to the TOI.
		c := contacts.get(minContact)
		ia, ib := c.bodyA, c.bodyB
		bA := world.bodies.get(ia)
		bB := world.bodies.get(ib)

		backup1 := bA.sweep
		backup2 := bB.sweep

		bA.advance(minAlpha)
		bB.advance(minAlpha)

		// The TOI contact likely has some new contact points.
		c.update(world, minContact, listener)
		c.flags &= ^B2Contact_Flag.E_toiFlag
		c.toiCount++

		failed := c.hasFlag(B2Contact_Flag.E_toiFailedFlag)
		c.flags &= ^B2Contact_Flag.E_toiFailedFlag

		// Is the contact solid?
		if !c.hasFlag(B2Contact_Flag.E_enabledFlag) || !c.hasFlag(B2Contact_Flag.E_touchingFlag) {
			c.flags &= ^B2Contact_Flag.E_enabledFlag
			if failed {
				// Keep the pre-sweep pose.
				continue
			}

			// Restore the sweeps.
			bA.sweep = backup1
			bB.sweep = backup2
			bA.synchronizeTransform()
			bB.synchronizeTransform()
			continue
		}

		bA.setAwake(true)
		bB.setAwake(true)

		// Build the island
		island.clear()
		island.addBody(ia)
		island.addBody(ib)
		island.addContact(minContact)

		bA.flags |= B2Body_Flags.E_islandFlag
		bB.flags |= B2Body_Flags.E_islandFlag
		c.flags |= B2Contact_Flag.E_islandFlag

		// Get contacts on bodyA and bodyB.
		for _, bi := range [2]int32{ia, ib} {
			body := world.bodies.get(bi)
			if body.typ != B2BodyType.B2_dynamicBody {
				continue
			}

			for _, ci := range body.contacts {
				if len(island.bodies) == 2*B2_maxTOIContacts || len(island.contacts) == B2_maxTOIContacts {
					break
				}

				contact := contacts.get(ci)

				// Has this contact already been added to the island?
				if contact.hasFlag(B2Contact_Flag.E_islandFlag) {
					continue
				}

				// Only add static, kinematic, or bullet bodies.
				oi := contact.other(bi)
				other := world.bodies.get(oi)
				if other.typ == B2BodyType.B2_dynamicBody &&
					!body.hasFlag(B2Body_Flags.E_bulletFlag) && !other.hasFlag(B2Body_Flags.E_bulletFlag) {
					continue
				}

				// Skip sensors.
				if world.fixtures.get(contact.fixtureA).isSensor || world.fixtures.get(contact.fixtureB).isSensor {
					continue
				}

				// Tentatively advance the body to the TOI.
				backup := other.sweep
				if !other.hasFlag(B2Body_Flags.E_islandFlag) {
					other.advance(minAlpha)
				}

				// Update the contact points
				contact.update(world, ci, listener)

				// Was the contact disabled by the user? Are there contact points?
				if !contact.hasFlag(B2Contact_Flag.E_enabledFlag) || !contact.hasFlag(B2Contact_Flag.E_touchingFlag) {
					other.sweep = backup
					other.synchronizeTransform()
					continue
				}

				// Add the contact to the island
				contact.flags |= B2Contact_Flag.E_islandFlag
				island.addContact(ci)

				// Has the other body already been added to the island?
				if other.hasFlag(B2Body_Flags.E_islandFlag) {
					continue
				}

				// Add the other body to the island.
				other.flags |= B2Body_Flags.E_islandFlag

				if other.typ != B2BodyType.B2_staticBody {
					other.setAwake(true)
				}

				island.addBody(oi)
			}
		}

		subStep := B2TimeStep{
			Dt:                 (1.0 - minAlpha) * step.Dt,
			DtRatio:            1.0,
			PositionIterations: B2_toiPositionIterations,
			VelocityIterations: step.VelocityIterations,
			WarmStarting:       false,
		}
		subStep.Inv_dt = 1.0 / subStep.Dt
		island.solveTOI(subStep, island.localIndex(ia), island.localIndex(ib))

		// Reset island flags and synchronize broad-phase proxies.
		for _, bi := range island.bodies {
			body := world.bodies.get(bi)
			body.flags &= ^B2Body_Flags.E_islandFlag

			if body.typ != B2BodyType.B2_dynamicBody {
				continue
			}

			body.synchronizeFixtures()

			// Invalidate all contact TOIs on this displaced body.
			for _, ci := range body.contacts {
				contacts.get(ci).flags &= ^(B2Contact_Flag.E_toiFlag | B2Contact_Flag.E_islandFlag)
			}
		}

		// Commit fixture proxy movements to the broad-phase so that new contacts are created.
		// Also, some contacts can be destroyed.
		world.contactManager.findNewContacts()

		if world.subStepping {
			world.stepComplete = false
			break
		}
	}
}

/// Manually clear the force buffer on all bodies. By default, forces are cleared automatically
/// after each call to Step. The default behavior is modified by calling SetAutoClearForces.
/// The purpose of this function is to support sub-stepping. Sub-stepping is often used to maintain
/// a fixed sized time step under a variable frame-rate.
/// When you perform sub-stepping you will disable auto clearing of forces and instead call
/// ClearForces after all sub-steps are complete in one pass of your game loop.
/// @see SetAutoClearForces
func (world *B2World) ClearForces() {
	world.bodies.each(func(_ int32, b *b2Body) bool {
		b.force.SetZero()
		b.torque = 0.0
		return true
	})
}

/// Query the world for all fixtures that potentially overlap the
/// provided AABB.
/// @param callback a user implemented callback function.
/// @param aabb the query box.
func (world *B2World) QueryAABB(callback B2BroadPhaseQueryCallback, aabb B2AABB) {
	broadPhase := &world.contactManager.broadPhase
	broadPhase.Query(func(proxyId int32) bool {
		key := broadPhase.GetUserData(proxyId)
		return callback(world.fixtureHandle(key.fixture))
	}, aabb)
}

/// Ray-cast the world for all fixtures in the path of the ray. Your callback
/// controls whether you get the closest point, any point, or n-points.
/// The ray-cast ignores shapes that contain the starting point.
/// @param callback a user implemented callback function.
/// @param point1 the ray starting point
/// @param point2 the ray ending point
func (world *B2World) RayCast(callback B2RaycastCallback, point1 B2Vec2, point2 B2Vec2) {
	broadPhase := &world.contactManager.broadPhase

	input := B2RayCastInput{P1: point1, P2: point2, MaxFraction: 1.0}
	broadPhase.RayCast(func(input B2RayCastInput, proxyId int32) float64 {
		key := broadPhase.GetUserData(proxyId)
		f := world.fixtures.get(key.fixture)

		output, hit := f.shape.RayCast(input, world.bodies.get(f.body).xf, int(key.child))
		if !hit {
			return input.MaxFraction
		}

		fraction := output.Fraction
		point := B2Vec2Add(B2Vec2MulScalar(1.0-fraction, input.P1), B2Vec2MulScalar(fraction, input.P2))
		return callback(world.fixtureHandle(key.fixture), point, output.Normal, fraction)
	}, input)
}

/// Get the bodies in the world, in creation order of their slots.
func (world *B2World) GetBodies() []B2Body {
	bodies := make([]B2Body, 0, world.bodies.count)
	world.bodies.each(func(index int32, _ *b2Body) bool {
		bodies = append(bodies, world.bodyHandle(index))
		return true
	})
	return bodies
}

/// Get the joints in the world.
func (world *B2World) GetJoints() []B2Joint {
	joints := make([]B2Joint, 0, world.joints.count)
	world.joints.each(func(index int32, _ *b2Joint) bool {
		joints = append(joints, world.jointHandle(index))
		return true
	})
	return joints
}

/// Get the contacts in the world. A contact exists for each pair of
/// overlapping fat AABBs, touching or not.
/// @warning contacts are created and destroyed in the middle of a time step.
/// Use B2ContactListenerInterface to avoid missing contacts.
func (world *B2World) GetContacts() []B2Contact {
	contacts := make([]B2Contact, 0, world.contactManager.contacts.count)
	world.contactManager.contacts.each(func(index int32, _ *b2Contact) bool {
		contacts = append(contacts, world.contactHandle(index))
		return true
	})
	return contacts
}

/// Enable/disable sleep. Waking happens immediately when disabled.
func (world *B2World) SetAllowSleeping(flag bool) {
	if flag == world.allowSleep {
		return
	}

	world.allowSleep = flag
	if !world.allowSleep {
		world.bodies.each(func(_ int32, b *b2Body) bool {
			b.setAwake(true)
			return true
		})
	}
}

func (world *B2World) GetAllowSleeping() bool {
	return world.allowSleep
}

/// Enable/disable warm starting. For testing.
func (world *B2World) SetWarmStarting(flag bool) {
	world.warmStarting = flag
}

func (world *B2World) GetWarmStarting() bool {
	return world.warmStarting
}

/// Enable/disable continuous physics. For testing.
func (world *B2World) SetContinuousPhysics(flag bool) {
	world.continuousPhysics = flag
}

func (world *B2World) GetContinuousPhysics() bool {
	return world.continuousPhysics
}

/// Enable/disable single stepped continuous physics. For testing.
func (world *B2World) SetSubStepping(flag bool) {
	world.subStepping = flag
}

func (world *B2World) GetSubStepping() bool {
	return world.subStepping
}

/// Solve independent islands on several goroutines. Results match the
/// sequential solver exactly.
func (world *B2World) SetParallelIslands(flag bool) {
	world.parallelIslands = flag
}

func (world *B2World) GetParallelIslands() bool {
	return world.parallelIslands
}

/// Get the number of broad-phase proxies.
func (world *B2World) GetProxyCount() int {
	return world.contactManager.broadPhase.GetProxyCount()
}

/// Get the number of bodies.
func (world *B2World) GetBodyCount() int {
	return world.bodies.count
}

/// Get the number of joints.
func (world *B2World) GetJointCount() int {
	return world.joints.count
}

/// Get the number of contacts (each may have 0 or more contact points).
func (world *B2World) GetContactCount() int {
	return world.contactManager.getContactCount()
}

/// Get the height of the dynamic tree.
func (world *B2World) GetTreeHeight() int {
	return world.contactManager.broadPhase.GetTreeHeight()
}

/// Get the balance of the dynamic tree.
func (world *B2World) GetTreeBalance() int {
	return world.contactManager.broadPhase.GetTreeBalance()
}

/// Get the quality metric of the dynamic tree. The smaller the better.
/// The minimum is 1.
func (world *B2World) GetTreeQuality() float64 {
	return world.contactManager.broadPhase.GetTreeQuality()
}

/// Change the global gravity vector.
func (world *B2World) SetGravity(gravity B2Vec2) {
	world.gravity = gravity
}

/// Get the global gravity vector.
func (world *B2World) GetGravity() B2Vec2 {
	return world.gravity
}

/// Set flag to control automatic clearing of forces after each time step.
func (world *B2World) SetAutoClearForces(flag bool) {
	if flag {
		world.flags |= B2World_Flags.E_clearForces
	} else {
		world.flags &= ^B2World_Flags.E_clearForces
	}
}

/// Get the flag that controls automatic clearing of forces after each time step.
func (world *B2World) GetAutoClearForces() bool {
	return world.flags&B2World_Flags.E_clearForces == B2World_Flags.E_clearForces
}

/// Shift the world origin. Useful for large worlds.
/// The body shift formula is: position -= newOrigin
/// @param newOrigin the new origin with respect to the old origin
func (world *B2World) ShiftOrigin(newOrigin B2Vec2) {
	if world.rejectLocked("ShiftOrigin") {
		return
	}

	world.bodies.each(func(_ int32, b *b2Body) bool {
		b.xf.P = B2Vec2Sub(b.xf.P, newOrigin)
		b.sweep.C0 = B2Vec2Sub(b.sweep.C0, newOrigin)
		b.sweep.C = B2Vec2Sub(b.sweep.C, newOrigin)
		return true
	})

	world.joints.each(func(_ int32, j *b2Joint) bool {
		if shift := j.ops().shiftOrigin; shift != nil {
			shift(j, newOrigin)
		}
		return true
	})

	world.contactManager.broadPhase.ShiftOrigin(newOrigin)
}

/// Get the current profile.
func (world *B2World) GetProfile() B2Profile {
	return world.profile
}

/// Write the state of every body to w, one line per body in slot order.
/// Two worlds built and stepped the same way produce identical dumps.
func (world *B2World) Dump(w io.Writer) error {
	var err error
	world.bodies.each(func(index int32, b *b2Body) bool {
		_, err = fmt.Fprintf(w, "body %d type=%d p=(%.9f, %.9f) a=%.9f v=(%.9f, %.9f) w=%.9f awake=%t\n",
			index, b.typ, b.xf.P.X, b.xf.P.Y, b.sweep.A,
			b.linearVelocity.X, b.linearVelocity.Y, b.angularVelocity, b.isAwake())
		return err == nil
	})
	return errors.Wrap(err, "dump world")
}
