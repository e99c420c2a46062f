package box2d

import (
	"math"
)

/// Friction mixing law. The idea is to allow either fixture to drive the friction to zero.
/// For example, anything slides on ice.
func B2MixFriction(friction1, friction2 float64) float64 {
	return math.Sqrt(friction1 * friction2)
}

/// Restitution mixing law. The idea is allow for anything to bounce off an inelastic surface.
/// For example, a superball bounces on anything.
func B2MixRestitution(restitution1, restitution2 float64) float64 {
	return math.Max(restitution1, restitution2)
}

/// Computes the manifold of a contact from the two shapes and their child indices.
type b2ContactEvaluateFcn func(manifold *B2Manifold, shapeA *B2Shape, indexA int, xfA B2Transform, shapeB *B2Shape, indexB int, xfB B2Transform)

type b2ContactRegister struct {
	evaluate b2ContactEvaluateFcn
	primary  bool
}

// Keyed by [typeA][typeB]. A pair whose evaluate is nil never forms a contact.
var b2ContactRegisters [5][5]b2ContactRegister

func b2AddContactType(evaluate b2ContactEvaluateFcn, type1, type2 uint8) {
	B2Assert(type1 < B2Shape_Type.E_typeCount && type2 < B2Shape_Type.E_typeCount)

	b2ContactRegisters[type1][type2] = b2ContactRegister{evaluate: evaluate, primary: true}
	if type1 != type2 {
		b2ContactRegisters[type2][type1] = b2ContactRegister{evaluate: evaluate, primary: false}
	}
}

func init() {
	circle := B2Shape_Type.E_circle
	edge := B2Shape_Type.E_edge
	polygon := B2Shape_Type.E_polygon
	chain := B2Shape_Type.E_chain
	capsule := B2Shape_Type.E_capsule

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollideCircles(m, sA, xfA, sB, xfB)
	}, circle, circle)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollidePolygonAndCircle(m, sA, xfA, sB, xfB)
	}, polygon, circle)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollidePolygons(m, sA, xfA, sB, xfB)
	}, polygon, polygon)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollideEdgeAndCircle(m, sA, xfA, sB, xfB)
	}, edge, circle)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollideEdgeAndPolygon(m, sA, xfA, sB, xfB)
	}, edge, polygon)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		edgeA := sA.GetChildEdge(iA)
		B2CollideEdgeAndCircle(m, &edgeA, xfA, sB, xfB)
	}, chain, circle)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		edgeA := sA.GetChildEdge(iA)
		B2CollideEdgeAndPolygon(m, &edgeA, xfA, sB, xfB)
	}, chain, polygon)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollideCapsuleAndCircle(m, sA, xfA, sB, xfB)
	}, capsule, circle)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollidePolygonAndCapsule(m, sA, xfA, sB, xfB)
	}, polygon, capsule)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollideCapsules(m, sA, xfA, sB, xfB)
	}, capsule, capsule)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		B2CollideEdgeAndCapsule(m, sA, xfA, sB, xfB)
	}, edge, capsule)

	b2AddContactType(func(m *B2Manifold, sA *B2Shape, iA int, xfA B2Transform, sB *B2Shape, iB int, xfB B2Transform) {
		edgeA := sA.GetChildEdge(iA)
		B2CollideEdgeAndCapsule(m, &edgeA, xfA, sB, xfB)
	}, chain, capsule)
}

var B2Contact_Flag = struct {
	// Used when crawling contact graph when forming islands.
	E_islandFlag uint32
	// Set when the shapes are touching.
	E_touchingFlag uint32
	// This contact can be disabled (by user)
	E_enabledFlag uint32
	// This contact needs filtering because a fixture filter was changed.
	E_filterFlag uint32
	// This bullet contact had a TOI event
	E_bulletHitFlag uint32
	// This contact has a valid TOI in toi
	E_toiFlag uint32
	// The TOI search for this contact did not converge
	E_toiFailedFlag uint32
}{
	E_islandFlag:    0x0001,
	E_touchingFlag:  0x0002,
	E_enabledFlag:   0x0004,
	E_filterFlag:    0x0008,
	E_bulletHitFlag: 0x0010,
	E_toiFlag:       0x0020,
	E_toiFailedFlag: 0x0040,
}

type b2Contact struct {
	flags uint32

	fixtureA, fixtureB int32
	bodyA, bodyB       int32
	indexA, indexB     int

	evaluate b2ContactEvaluateFcn

	manifold B2Manifold

	toiCount int
	toi      float64

	friction     float64
	restitution  float64
	tangentSpeed float64
}

func (c *b2Contact) hasFlag(flag uint32) bool {
	return c.flags&flag == flag
}

func (c *b2Contact) flagForFiltering() {
	c.flags |= B2Contact_Flag.E_filterFlag
}

// Builds a contact for the pair, swapping the fixtures when the dispatch table
// wants them the other way around. Returns false when the shape kinds never
// collide.
func (c *b2Contact) create(world *B2World, fixtureA int32, indexA int, fixtureB int32, indexB int) bool {
	fA := world.fixtures.get(fixtureA)
	fB := world.fixtures.get(fixtureB)

	register := b2ContactRegisters[fA.shape.Type][fB.shape.Type]
	if register.evaluate == nil {
		return false
	}

	if !register.primary {
		fixtureA, fixtureB = fixtureB, fixtureA
		indexA, indexB = indexB, indexA
		fA, fB = fB, fA
	}

	*c = b2Contact{
		flags:       B2Contact_Flag.E_enabledFlag,
		fixtureA:    fixtureA,
		fixtureB:    fixtureB,
		bodyA:       fA.body,
		bodyB:       fB.body,
		indexA:      indexA,
		indexB:      indexB,
		evaluate:    register.evaluate,
		friction:    B2MixFriction(fA.friction, fB.friction),
		restitution: B2MixRestitution(fA.restitution, fB.restitution),
	}
	return true
}

func (c *b2Contact) other(body int32) int32 {
	if c.bodyA == body {
		return c.bodyB
	}
	return c.bodyA
}

// Update the contact manifold and touching status.
// Note: do not assume the fixture AABBs are overlapping or are valid.
func (c *b2Contact) update(world *B2World, self int32, listener B2ContactListenerInterface) {
	oldManifold := c.manifold

	// Re-enable this contact.
	c.flags |= B2Contact_Flag.E_enabledFlag

	touching := false
	wasTouching := c.hasFlag(B2Contact_Flag.E_touchingFlag)

	fixtureA := world.fixtures.get(c.fixtureA)
	fixtureB := world.fixtures.get(c.fixtureB)
	sensor := fixtureA.isSensor || fixtureB.isSensor

	bodyA := world.bodies.get(c.bodyA)
	bodyB := world.bodies.get(c.bodyB)
	xfA := bodyA.xf
	xfB := bodyB.xf

	// Is this contact a sensor?
	if sensor {
		touching = B2TestOverlapShapes(&fixtureA.shape, c.indexA, &fixtureB.shape, c.indexB, xfA, xfB)

		// Sensors don't generate manifolds.
		c.manifold.PointCount = 0
	} else {
		c.evaluate(&c.manifold, &fixtureA.shape, c.indexA, xfA, &fixtureB.shape, c.indexB, xfB)
		touching = c.manifold.PointCount > 0

		// Match old contact ids to new contact ids and copy the
		// stored impulses to warm start the solver.
		for i := 0; i < c.manifold.PointCount; i++ {
			mp2 := &c.manifold.Points[i]
			mp2.NormalImpulse = 0.0
			mp2.TangentImpulse = 0.0
			key := mp2.Id.Key()

			for j := 0; j < oldManifold.PointCount; j++ {
				mp1 := &oldManifold.Points[j]
				if mp1.Id.Key() == key {
					mp2.NormalImpulse = mp1.NormalImpulse
					mp2.TangentImpulse = mp1.TangentImpulse
					break
				}
			}
		}

		if touching != wasTouching {
			bodyA.setAwake(true)
			bodyB.setAwake(true)
		}
	}

	if touching {
		c.flags |= B2Contact_Flag.E_touchingFlag
	} else {
		c.flags &= ^B2Contact_Flag.E_touchingFlag
	}

	if listener == nil {
		return
	}

	handle := world.contactHandle(self)
	if !wasTouching && touching {
		listener.BeginContact(handle)
	}

	if wasTouching && !touching {
		listener.EndContact(handle)
	}

	if !sensor && touching {
		listener.PreSolve(handle, oldManifold)
	}
}

/// The class manages contact between two shapes. A contact exists for each overlapping
/// AABB in the broad-phase (except if filtered). Therefore a contact object may exist
/// that has no contact points.
///
/// B2Contact is a handle. Contacts come and go during the step, so do not
/// keep one past the callback it was handed to unless you check IsValid.
type B2Contact struct {
	world    *B2World
	id       int32
	revision uint32
}

func (contact B2Contact) get() *b2Contact {
	if contact.world == nil {
		return nil
	}
	return contact.world.contactManager.contacts.lookup(contact.id, contact.revision)
}

/// Reports whether the contact still exists.
func (contact B2Contact) IsValid() bool {
	return contact.get() != nil
}

/// Get the contact manifold. Do not modify the manifold unless you understand the
/// internals of Box2D.
func (contact B2Contact) GetManifold() *B2Manifold {
	c := contact.get()
	if c == nil {
		return nil
	}
	return &c.manifold
}

/// Get the world manifold.
func (contact B2Contact) GetWorldManifold() B2WorldManifold {
	var worldManifold B2WorldManifold
	c := contact.get()
	if c == nil {
		return worldManifold
	}

	world := contact.world
	fixtureA := world.fixtures.get(c.fixtureA)
	fixtureB := world.fixtures.get(c.fixtureB)
	worldManifold.Initialize(&c.manifold,
		world.bodies.get(c.bodyA).xf, fixtureA.shape.Radius,
		world.bodies.get(c.bodyB).xf, fixtureB.shape.Radius)
	return worldManifold
}

/// Is this contact touching?
func (contact B2Contact) IsTouching() bool {
	c := contact.get()
	return c != nil && c.hasFlag(B2Contact_Flag.E_touchingFlag)
}

/// Enable/disable this contact. This can be used inside the pre-solve
/// contact listener. The contact is only disabled for the current
/// time step (or sub-step in continuous collisions).
func (contact B2Contact) SetEnabled(flag bool) {
	c := contact.get()
	if c == nil {
		return
	}
	if flag {
		c.flags |= B2Contact_Flag.E_enabledFlag
	} else {
		c.flags &= ^B2Contact_Flag.E_enabledFlag
	}
}

/// Has this contact been disabled?
func (contact B2Contact) IsEnabled() bool {
	c := contact.get()
	return c != nil && c.hasFlag(B2Contact_Flag.E_enabledFlag)
}

/// Get fixture A in this contact.
func (contact B2Contact) GetFixtureA() B2Fixture {
	c := contact.get()
	if c == nil {
		return B2Fixture{}
	}
	return contact.world.fixtureHandle(c.fixtureA)
}

/// Get the child primitive index for fixture A.
func (contact B2Contact) GetChildIndexA() int {
	c := contact.get()
	if c == nil {
		return 0
	}
	return c.indexA
}

/// Get fixture B in this contact.
func (contact B2Contact) GetFixtureB() B2Fixture {
	c := contact.get()
	if c == nil {
		return B2Fixture{}
	}
	return contact.world.fixtureHandle(c.fixtureB)
}

/// Get the child primitive index for fixture B.
func (contact B2Contact) GetChildIndexB() int {
	c := contact.get()
	if c == nil {
		return 0
	}
	return c.indexB
}

/// Override the default friction mixture. You can call this in PreSolve.
/// This value persists until set or reset.
func (contact B2Contact) SetFriction(friction float64) {
	if c := contact.get(); c != nil {
		c.friction = friction
	}
}

/// Get the friction.
func (contact B2Contact) GetFriction() float64 {
	c := contact.get()
	if c == nil {
		return 0.0
	}
	return c.friction
}

/// Reset the friction mixture to the default value.
func (contact B2Contact) ResetFriction() {
	c := contact.get()
	if c == nil {
		return
	}
	world := contact.world
	c.friction = B2MixFriction(world.fixtures.get(c.fixtureA).friction, world.fixtures.get(c.fixtureB).friction)
}

/// Override the default restitution mixture. You can call this in PreSolve.
/// The value persists until you set or reset.
func (contact B2Contact) SetRestitution(restitution float64) {
	if c := contact.get(); c != nil {
		c.restitution = restitution
	}
}

/// Get the restitution.
func (contact B2Contact) GetRestitution() float64 {
	c := contact.get()
	if c == nil {
		return 0.0
	}
	return c.restitution
}

/// Reset the restitution to the default value.
func (contact B2Contact) ResetRestitution() {
	c := contact.get()
	if c == nil {
		return
	}
	world := contact.world
	c.restitution = B2MixRestitution(world.fixtures.get(c.fixtureA).restitution, world.fixtures.get(c.fixtureB).restitution)
}

/// Set the desired tangent speed for a conveyor belt behavior. In meters per second.
func (contact B2Contact) SetTangentSpeed(speed float64) {
	if c := contact.get(); c != nil {
		c.tangentSpeed = speed
	}
}

/// Get the desired tangent speed. In meters per second.
func (contact B2Contact) GetTangentSpeed() float64 {
	c := contact.get()
	if c == nil {
		return 0.0
	}
	return c.tangentSpeed
}
