package box2d

// Delegate of B2World.
type b2ContactManager struct {
	world *B2World

	broadPhase B2BroadPhase[b2ProxyKey]
	contacts   b2Pool[b2Contact]

	contactFilter   B2ContactFilterInterface
	contactListener B2ContactListenerInterface
}

func makeB2ContactManager(world *B2World) b2ContactManager {
	return b2ContactManager{
		world:         world,
		broadPhase:    MakeB2BroadPhase[b2ProxyKey](),
		contactFilter: B2ContactFilter{},
	}
}

func (mgr *b2ContactManager) shouldCollide(fixtureA, fixtureB int32) bool {
	if mgr.contactFilter == nil {
		return true
	}
	return mgr.contactFilter.ShouldCollide(mgr.world.fixtureHandle(fixtureA), mgr.world.fixtureHandle(fixtureB))
}

func (mgr *b2ContactManager) destroy(ci int32) {
	world := mgr.world
	c := mgr.contacts.get(ci)

	if mgr.contactListener != nil && c.hasFlag(B2Contact_Flag.E_touchingFlag) {
		mgr.contactListener.EndContact(world.contactHandle(ci))
	}

	bodyA := world.bodies.get(c.bodyA)
	bodyB := world.bodies.get(c.bodyB)

	if c.manifold.PointCount > 0 && !world.fixtures.get(c.fixtureA).isSensor && !world.fixtures.get(c.fixtureB).isSensor {
		bodyA.setAwake(true)
		bodyB.setAwake(true)
	}

	// Remove from the island graph.
	bodyA.contacts = b2RemoveEdge(bodyA.contacts, ci)
	bodyB.contacts = b2RemoveEdge(bodyB.contacts, ci)

	mgr.contacts.release(ci)
}

// This is the top level collision call for the time step. Here
// all the narrow phase collision is processed for the world
// contact list.
func (mgr *b2ContactManager) collide() {
	world := mgr.world

	// Update awake contacts.
	mgr.contacts.each(func(ci int32, c *b2Contact) bool {
		bodyA := world.bodies.get(c.bodyA)
		bodyB := world.bodies.get(c.bodyB)

		// Is this contact flagged for filtering?
		if c.hasFlag(B2Contact_Flag.E_filterFlag) {
			// Should these bodies collide? Check user filtering too.
			if !bodyB.shouldCollide(c.bodyB, c.bodyA) || !mgr.shouldCollide(c.fixtureA, c.fixtureB) {
				mgr.destroy(ci)
				return true
			}

			// Clear the filtering flag.
			c.flags &= ^B2Contact_Flag.E_filterFlag
		}

		activeA := bodyA.isAwake() && bodyA.typ != B2BodyType.B2_staticBody
		activeB := bodyB.isAwake() && bodyB.typ != B2BodyType.B2_staticBody

		// At least one body must be awake and it must be dynamic or kinematic.
		if !activeA && !activeB {
			return true
		}

		proxyIdA := world.fixtures.get(c.fixtureA).proxies[c.indexA].proxyId
		proxyIdB := world.fixtures.get(c.fixtureB).proxies[c.indexB].proxyId

		// Here we destroy contacts that cease to overlap in the broad-phase.
		if !mgr.broadPhase.TestOverlap(proxyIdA, proxyIdB) {
			mgr.destroy(ci)
			return true
		}

		// The contact persists.
		c.update(world, ci, mgr.contactListener)
		return true
	})
}

func (mgr *b2ContactManager) findNewContacts() {
	mgr.broadPhase.UpdatePairs(mgr.addPair)
}

// Broad-phase callback.
func (mgr *b2ContactManager) addPair(proxyA, proxyB b2ProxyKey) {
	world := mgr.world

	fixtureA, fixtureB := proxyA.fixture, proxyB.fixture
	indexA, indexB := int(proxyA.child), int(proxyB.child)

	bodyIndexA := world.fixtures.get(fixtureA).body
	bodyIndexB := world.fixtures.get(fixtureB).body

	// Are the fixtures on the same body?
	if bodyIndexA == bodyIndexB {
		return
	}

	bodyB := world.bodies.get(bodyIndexB)

	// Does a contact already exist?
	for _, ci := range bodyB.contacts {
		c := mgr.contacts.get(ci)
		if c.other(bodyIndexB) != bodyIndexA {
			continue
		}

		if c.fixtureA == fixtureA && c.fixtureB == fixtureB && c.indexA == indexA && c.indexB == indexB {
			return
		}

		if c.fixtureA == fixtureB && c.fixtureB == fixtureA && c.indexA == indexB && c.indexB == indexA {
			return
		}
	}

	// Does a joint override collision? Is at least one body dynamic?
	if !bodyB.shouldCollide(bodyIndexB, bodyIndexA) {
		return
	}

	// Check user filtering.
	if !mgr.shouldCollide(fixtureA, fixtureB) {
		return
	}

	// Call the factory.
	var contact b2Contact
	if !contact.create(world, fixtureA, indexA, fixtureB, indexB) {
		return
	}

	ci, _ := mgr.contacts.alloc()
	c := mgr.contacts.get(ci)
	*c = contact

	// Contact creation may swap fixtures.
	bA := world.bodies.get(c.bodyA)
	bB := world.bodies.get(c.bodyB)

	// Connect to island graph.
	bA.contacts = append(bA.contacts, ci)
	bB.contacts = append(bB.contacts, ci)

	// Wake up the bodies
	if !world.fixtures.get(c.fixtureA).isSensor && !world.fixtures.get(c.fixtureB).isSensor {
		bA.setAwake(true)
		bB.setAwake(true)
	}
}

func (mgr *b2ContactManager) getContactCount() int {
	return mgr.contacts.count
}
