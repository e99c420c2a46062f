package box2d

/// Joints and fixtures are destroyed when their associated
/// body is destroyed. Implement this listener so that you
/// may nullify references to these joints and shapes.
type B2DestructionListenerInterface interface {
	/// Called when any fixture is about to be destroyed due
	/// to the destruction of its parent body.
	SayGoodbyeToFixture(fixture B2Fixture)

	/// Called when any joint is about to be destroyed due
	/// to the destruction of one of its attached bodies.
	SayGoodbyeToJoint(joint B2Joint)
}

/// Implement this to provide collision filtering. In other words, you can implement
/// this if you want finer control over contact creation.
type B2ContactFilterInterface interface {
	/// Return true if contact calculations should be performed between these two shapes.
	/// @warning for performance reasons this is only called when the AABBs begin to overlap.
	ShouldCollide(fixtureA B2Fixture, fixtureB B2Fixture) bool
}

/// Contact impulses for reporting. Impulses are used instead of forces because
/// sub-step forces may approach infinity for rigid body collisions. These
/// match up one-to-one with the contact points in B2Manifold.
type B2ContactImpulse struct {
	NormalImpulses  [B2_maxManifoldPoints]float64
	TangentImpulses [B2_maxManifoldPoints]float64
	Count           int
}

/// Implement this class to get contact information. You can use these results for
/// things like sounds and game logic. You can also get contact results by
/// traversing the contact lists after the time step. However, you might miss
/// some contacts because continuous physics leads to sub-stepping.
/// Additionally you may receive multiple callbacks for the same contact in a
/// single time step.
/// You should strive to make your callbacks efficient because there may be
/// many callbacks per time step.
/// @warning You may create and destroy bodies, fixtures and joints inside a
/// callback. The world queues the change and applies it when the step returns.
type B2ContactListenerInterface interface {
	/// Called when two fixtures begin to touch.
	BeginContact(contact B2Contact)

	/// Called when two fixtures cease to touch.
	EndContact(contact B2Contact)

	/// This is called after a contact is updated. This allows you to inspect a
	/// contact before it goes to the solver. If you are careful, you can modify the
	/// contact manifold (e.g. disable contact).
	/// A copy of the old manifold is provided so that you can detect changes.
	/// Note: this is called only for awake bodies.
	/// Note: this is called even when the number of contact points is zero.
	/// Note: this is not called for sensors.
	/// Note: if you set the number of contact points to zero, you will not
	/// get an EndContact callback. However, you may get a BeginContact callback
	/// the next step.
	PreSolve(contact B2Contact, oldManifold B2Manifold)

	/// This lets you inspect a contact after the solver is finished. This is useful
	/// for inspecting impulses.
	/// Note: the contact manifold does not include time of impact impulses, which can be
	/// arbitrarily large if the sub-step is small. Hence the impulse is provided explicitly
	/// in a separate data structure.
	/// Note: this is only called for contacts that are touching, solid, and awake.
	PostSolve(contact B2Contact, impulse *B2ContactImpulse)
}

/// A listener with empty callbacks. Embed it to implement only the callbacks you need.
type B2ContactListenerAdapter struct{}

func (B2ContactListenerAdapter) BeginContact(contact B2Contact)                          {}
func (B2ContactListenerAdapter) EndContact(contact B2Contact)                            {}
func (B2ContactListenerAdapter) PreSolve(contact B2Contact, oldManifold B2Manifold)      {}
func (B2ContactListenerAdapter) PostSolve(contact B2Contact, impulse *B2ContactImpulse) {}

/// Callback class for AABB queries. Return false to terminate the query.
type B2BroadPhaseQueryCallback func(fixture B2Fixture) bool

/// The default contact filter.
type B2ContactFilter struct{}

// Return true if contact calculations should be performed between these two shapes.
// If you implement your own collision filter you may want to build from this implementation.
func (B2ContactFilter) ShouldCollide(fixtureA B2Fixture, fixtureB B2Fixture) bool {
	return b2ShouldCollideFilters(fixtureA.GetFilterData(), fixtureB.GetFilterData())
}

func b2ShouldCollideFilters(filterA, filterB B2Filter) bool {
	if filterA.GroupIndex == filterB.GroupIndex && filterA.GroupIndex != 0 {
		return filterA.GroupIndex > 0
	}

	return (filterA.MaskBits&filterB.CategoryBits) != 0 && (filterA.CategoryBits&filterB.MaskBits) != 0
}

/// Called for each fixture found in the query. You control how the ray cast
/// proceeds by returning a float:
/// return -1: ignore this fixture and continue
/// return 0: terminate the ray cast
/// return fraction: clip the ray to this point
/// return 1: don't clip the ray and continue
/// @param fixture the fixture hit by the ray
/// @param point the point of initial intersection
/// @param normal the normal vector at the point of intersection
/// @return -1 to filter, 0 to terminate, fraction to clip the ray for
/// closest hit, 1 to continue
type B2RaycastCallback func(fixture B2Fixture, point B2Vec2, normal B2Vec2, fraction float64) float64
