package box2d

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

/// This holds the mass data computed for a shape.
type B2MassData struct {
	/// The mass of the shape, usually in kilograms.
	Mass float64

	/// The position of the shape's centroid relative to the shape's origin.
	Center B2Vec2

	/// The rotational inertia of the shape about the local origin.
	I float64
}

/// The closed set of shape kinds. The ordering matters: contact dispatch
/// keys on (typeA, typeB) pairs.
var B2Shape_Type = struct {
	E_circle    uint8
	E_edge      uint8
	E_polygon   uint8
	E_chain     uint8
	E_capsule   uint8
	E_typeCount uint8
}{
	E_circle:    0,
	E_edge:      1,
	E_polygon:   2,
	E_chain:     3,
	E_capsule:   4,
	E_typeCount: 5,
}

/// A shape is used for collision detection. Shapes are immutable once attached
/// to a fixture: the fixture keeps its own copy. Exactly one of the payloads is
/// meaningful, selected by Type.
type B2Shape struct {
	Type uint8

	/// Radius of a shape. For polygonal shapes this must be B2_polygonRadius.
	/// For capsules it is the cap radius.
	Radius float64

	Circle  B2CircleShape
	Edge    B2EdgeShape
	Polygon B2PolygonShape
	Chain   B2ChainShape
	Capsule B2CapsuleShape
}

/// Per kind operations. Every kind fills every slot.
type b2ShapeOps struct {
	childCount  func(shape *B2Shape) int
	testPoint   func(shape *B2Shape, xf B2Transform, p B2Vec2) bool
	rayCast     func(shape *B2Shape, input B2RayCastInput, xf B2Transform, childIndex int) (B2RayCastOutput, bool)
	computeAABB func(shape *B2Shape, xf B2Transform, childIndex int) B2AABB
	computeMass func(shape *B2Shape, density float64) B2MassData
	validate    func(shape *B2Shape) error
}

var b2ShapeRegistry [5]b2ShapeOps

func init() {
	b2ShapeRegistry[B2Shape_Type.E_circle] = b2CircleOps
	b2ShapeRegistry[B2Shape_Type.E_edge] = b2EdgeOps
	b2ShapeRegistry[B2Shape_Type.E_polygon] = b2PolygonOps
	b2ShapeRegistry[B2Shape_Type.E_chain] = b2ChainOps
	b2ShapeRegistry[B2Shape_Type.E_capsule] = b2CapsuleOps
}

func (shape *B2Shape) ops() *b2ShapeOps {
	B2Assert(shape.Type < B2Shape_Type.E_typeCount)
	return &b2ShapeRegistry[shape.Type]
}

func (shape B2Shape) GetType() uint8 {
	return shape.Type
}

func (shape B2Shape) GetRadius() float64 {
	return shape.Radius
}

/// Get the number of child primitives.
func (shape *B2Shape) GetChildCount() int {
	return shape.ops().childCount(shape)
}

/// Test a point for containment in this shape. This only works for convex shapes.
/// @param xf the shape world transform.
/// @param p a point in world coordinates.
func (shape *B2Shape) TestPoint(xf B2Transform, p B2Vec2) bool {
	return shape.ops().testPoint(shape, xf, p)
}

/// Cast a ray against a child shape.
func (shape *B2Shape) RayCast(input B2RayCastInput, xf B2Transform, childIndex int) (B2RayCastOutput, bool) {
	return shape.ops().rayCast(shape, input, xf, childIndex)
}

/// Given a transform, compute the associated axis aligned bounding box for a child shape.
func (shape *B2Shape) ComputeAABB(xf B2Transform, childIndex int) B2AABB {
	return shape.ops().computeAABB(shape, xf, childIndex)
}

/// Compute the mass properties of this shape using its dimensions and density.
/// The inertia tensor is computed about the local origin.
func (shape *B2Shape) ComputeMass(density float64) B2MassData {
	return shape.ops().computeMass(shape, density)
}

/// Checks the geometric invariants of the shape.
func (shape *B2Shape) Validate() error {
	if shape.Type >= B2Shape_Type.E_typeCount {
		return errors.Wrapf(ErrInvalidShape, "unknown shape type %d", shape.Type)
	}
	if !B2IsValid(shape.Radius) || shape.Radius < 0.0 {
		return errors.Wrapf(ErrInvalidShape, "radius %v", shape.Radius)
	}
	return shape.ops().validate(shape)
}

/// Deep copy of the shape. Chain vertices are not shared with the original.
func (shape B2Shape) Clone() B2Shape {
	var clone B2Shape
	if err := copier.CopyWithOption(&clone, &shape, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for identical types.
		panic(err)
	}
	return clone
}
