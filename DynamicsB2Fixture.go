package box2d

import (
	"github.com/pkg/errors"
)

/// This holds contact filtering data.
type B2Filter struct {
	/// The collision category bits. Normally you would just set one bit.
	CategoryBits uint16

	/// The collision mask bits. This states the categories that this
	/// shape would accept for collision.
	MaskBits uint16

	/// Collision groups allow a certain group of objects to never collide (negative)
	/// or always collide (positive). Zero means no collision group. Non-zero group
	/// filtering always wins against the mask bits.
	GroupIndex int16
}

func MakeB2Filter() B2Filter {
	return B2Filter{
		CategoryBits: 0x0001,
		MaskBits:     0xFFFF,
		GroupIndex:   0,
	}
}

/// A fixture definition is used to create a fixture. You can reuse fixture
/// definitions safely.
type B2FixtureDef struct {
	/// The shape, this must be set. The fixture keeps its own deep copy.
	Shape B2Shape

	/// Use this to store application specific fixture data.
	UserData interface{}

	/// The friction coefficient, usually in the range [0,1].
	Friction float64

	/// The restitution (elasticity) usually in the range [0,1].
	Restitution float64

	/// The density, usually in kg/m^2.
	Density float64

	/// A sensor shape collects contact information but never generates a collision
	/// response.
	IsSensor bool

	/// Contact filtering data.
	Filter B2Filter
}

/// The constructor sets the default fixture definition values.
func MakeB2FixtureDef(shape B2Shape) B2FixtureDef {
	return B2FixtureDef{
		Shape:       shape,
		Friction:    0.2,
		Restitution: 0.0,
		Density:     0.0,
		Filter:      MakeB2Filter(),
	}
}

func (def *B2FixtureDef) validate() error {
	if err := def.Shape.Validate(); err != nil {
		return err
	}
	return b2ValidateMaterial(def.Density, def.Friction, def.Restitution)
}

/// Broad-phase user data: the fixture record and the child primitive.
type b2ProxyKey struct {
	fixture int32
	child   int32
}

/// This proxy is used internally to connect fixtures to the broad-phase.
type b2FixtureProxy struct {
	aabb       B2AABB
	childIndex int
	proxyId    int32
}

type b2Fixture struct {
	body int32

	shape       B2Shape
	density     float64
	friction    float64
	restitution float64

	proxies []b2FixtureProxy

	filter   B2Filter
	isSensor bool

	// Created while the world was locked. Has no proxies and no mass
	// contribution until the world drains its deferred queue.
	inert bool

	userData interface{}
}

func (f *b2Fixture) create(bodyIndex int32, def *B2FixtureDef) {
	f.body = bodyIndex
	f.shape = def.Shape.Clone()
	f.density = def.Density
	f.friction = def.Friction
	f.restitution = def.Restitution
	f.filter = def.Filter
	f.isSensor = def.IsSensor
	f.userData = def.UserData
	f.proxies = make([]b2FixtureProxy, 0, f.shape.GetChildCount())
}

func (f *b2Fixture) massData() B2MassData {
	return f.shape.ComputeMass(f.density)
}

// These support body activation/deactivation.
func (f *b2Fixture) createProxies(broadPhase *B2BroadPhase[b2ProxyKey], index int32, xf B2Transform) {
	B2Assert(len(f.proxies) == 0)

	// Create proxies in the broad-phase.
	childCount := f.shape.GetChildCount()
	for i := 0; i < childCount; i++ {
		aabb := f.shape.ComputeAABB(xf, i)
		f.proxies = append(f.proxies, b2FixtureProxy{
			aabb:       aabb,
			childIndex: i,
			proxyId:    broadPhase.CreateProxy(aabb, b2ProxyKey{fixture: index, child: int32(i)}),
		})
	}
}

func (f *b2Fixture) destroyProxies(broadPhase *B2BroadPhase[b2ProxyKey]) {
	for _, proxy := range f.proxies {
		broadPhase.DestroyProxy(proxy.proxyId)
	}
	f.proxies = f.proxies[:0]
}

func (f *b2Fixture) synchronize(broadPhase *B2BroadPhase[b2ProxyKey], transform1, transform2 B2Transform) {
	displacement := B2Vec2Sub(transform2.P, transform1.P)

	for i := range f.proxies {
		proxy := &f.proxies[i]

		// Compute an AABB that covers the swept shape (may miss some rotation effect).
		aabb1 := f.shape.ComputeAABB(transform1, proxy.childIndex)
		aabb2 := f.shape.ComputeAABB(transform2, proxy.childIndex)
		proxy.aabb = B2AABBCombine(aabb1, aabb2)

		broadPhase.MoveProxy(proxy.proxyId, proxy.aabb, displacement)
	}
}

func (f *b2Fixture) touchProxies(broadPhase *B2BroadPhase[b2ProxyKey]) {
	for _, proxy := range f.proxies {
		broadPhase.TouchProxy(proxy.proxyId)
	}
}

/// A fixture is used to attach a shape to a body for collision detection. A fixture
/// inherits its transform from its parent. Fixtures hold additional non-geometric data
/// such as friction, collision filters, etc.
///
/// B2Fixture is a handle. Once the fixture is destroyed every accessor
/// returns a zero value and every mutator does nothing.
type B2Fixture struct {
	world    *B2World
	id       int32
	revision uint32
}

func (fixture B2Fixture) get() *b2Fixture {
	if fixture.world == nil {
		return nil
	}
	return fixture.world.fixtures.lookup(fixture.id, fixture.revision)
}

/// Reports whether the fixture still exists.
func (fixture B2Fixture) IsValid() bool {
	return fixture.get() != nil
}

/// Get the type of the child shape. You can use this to down cast to the concrete shape.
func (fixture B2Fixture) GetType() uint8 {
	f := fixture.get()
	if f == nil {
		return 0
	}
	return f.shape.Type
}

/// Get a copy of the child shape.
func (fixture B2Fixture) GetShape() B2Shape {
	f := fixture.get()
	if f == nil {
		return B2Shape{}
	}
	return f.shape.Clone()
}

/// Get the parent body of this fixture.
func (fixture B2Fixture) GetBody() B2Body {
	f := fixture.get()
	if f == nil {
		return B2Body{}
	}
	return fixture.world.bodyHandle(f.body)
}

/// Is this fixture a sensor (non-solid)?
func (fixture B2Fixture) IsSensor() bool {
	f := fixture.get()
	return f != nil && f.isSensor
}

/// Set if this fixture is a sensor.
func (fixture B2Fixture) SetSensor(sensor bool) {
	f := fixture.get()
	if f == nil || f.isSensor == sensor {
		return
	}
	fixture.world.bodies.get(f.body).setAwake(true)
	f.isSensor = sensor
}

/// Get the contact filtering data.
func (fixture B2Fixture) GetFilterData() B2Filter {
	f := fixture.get()
	if f == nil {
		return B2Filter{}
	}
	return f.filter
}

/// Set the contact filtering data. This will not update contacts until the next time
/// step when either parent body is active and awake.
/// This automatically calls Refilter.
func (fixture B2Fixture) SetFilterData(filter B2Filter) {
	f := fixture.get()
	if f == nil {
		return
	}
	f.filter = filter
	fixture.Refilter()
}

/// Call this if you want to establish collision that was previously disabled by B2ContactFilter.ShouldCollide.
func (fixture B2Fixture) Refilter() {
	f := fixture.get()
	if f == nil {
		return
	}

	world := fixture.world
	body := world.bodies.get(f.body)

	// Flag associated contacts for filtering.
	for _, ci := range body.contacts {
		c := world.contactManager.contacts.get(ci)
		if c.fixtureA == fixture.id || c.fixtureB == fixture.id {
			c.flagForFiltering()
		}
	}

	// Touch each proxy so that new pairs may be created
	f.touchProxies(&world.contactManager.broadPhase)
}

/// Get the user data that was assigned in the fixture definition.
func (fixture B2Fixture) GetUserData() interface{} {
	f := fixture.get()
	if f == nil {
		return nil
	}
	return f.userData
}

func (fixture B2Fixture) SetUserData(data interface{}) {
	if f := fixture.get(); f != nil {
		f.userData = data
	}
}

/// Set the density of this fixture. This will _not_ automatically adjust the mass
/// of the body. You must call B2Body.ResetMassData to update the body's mass.
func (fixture B2Fixture) SetDensity(density float64) error {
	f := fixture.get()
	if f == nil {
		return errors.WithStack(ErrStaleHandle)
	}
	if !B2IsValid(density) || density < 0.0 {
		return errors.Wrapf(ErrInvalidDensity, "density %v", density)
	}
	if density == 0.0 && !f.isSensor && fixture.world.bodies.get(f.body).typ == B2BodyType.B2_dynamicBody {
		return errors.Wrap(ErrInvalidDensity, "zero density on a dynamic body")
	}
	f.density = density
	return nil
}

func (fixture B2Fixture) GetDensity() float64 {
	f := fixture.get()
	if f == nil {
		return 0.0
	}
	return f.density
}

func (fixture B2Fixture) GetFriction() float64 {
	f := fixture.get()
	if f == nil {
		return 0.0
	}
	return f.friction
}

/// Set the coefficient of friction. This will _not_ change the friction of
/// existing contacts.
func (fixture B2Fixture) SetFriction(friction float64) error {
	f := fixture.get()
	if f == nil {
		return errors.WithStack(ErrStaleHandle)
	}
	if !B2IsValid(friction) || friction < 0.0 {
		return errors.Wrapf(ErrInvalidFriction, "friction %v", friction)
	}
	f.friction = friction
	return nil
}

func (fixture B2Fixture) GetRestitution() float64 {
	f := fixture.get()
	if f == nil {
		return 0.0
	}
	return f.restitution
}

/// Set the coefficient of restitution. This will _not_ change the restitution of
/// existing contacts.
func (fixture B2Fixture) SetRestitution(restitution float64) error {
	f := fixture.get()
	if f == nil {
		return errors.WithStack(ErrStaleHandle)
	}
	if !B2IsValid(restitution) || restitution < 0.0 {
		return errors.Wrapf(ErrInvalidRestitution, "restitution %v", restitution)
	}
	f.restitution = restitution
	return nil
}

/// Test a point for containment in this fixture.
/// @param p a point in world coordinates.
func (fixture B2Fixture) TestPoint(p B2Vec2) bool {
	f := fixture.get()
	if f == nil {
		return false
	}
	return f.shape.TestPoint(fixture.world.bodies.get(f.body).xf, p)
}

/// Cast a ray against this shape.
func (fixture B2Fixture) RayCast(input B2RayCastInput, childIndex int) (B2RayCastOutput, bool) {
	f := fixture.get()
	if f == nil {
		return B2RayCastOutput{}, false
	}
	return f.shape.RayCast(input, fixture.world.bodies.get(f.body).xf, childIndex)
}

/// Get the mass data for this fixture. The mass data is based on the density and
/// the shape. The rotational inertia is about the shape's origin.
func (fixture B2Fixture) GetMassData() B2MassData {
	f := fixture.get()
	if f == nil {
		return B2MassData{}
	}
	return f.massData()
}

/// Get the fixture's AABB. This AABB may be enlarge and/or stale.
/// If you need a more accurate AABB, compute it using the shape and
/// the body transform.
func (fixture B2Fixture) GetAABB(childIndex int) B2AABB {
	f := fixture.get()
	if f == nil || childIndex < 0 || childIndex >= len(f.proxies) {
		return B2AABB{}
	}
	return f.proxies[childIndex].aabb
}
