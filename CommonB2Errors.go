package box2d

import (
	"github.com/pkg/errors"
)

// Construction errors. Creation functions wrap these with context, use
// errors.Cause (or errors.Is) to test for them.
var (
	ErrInvalidDensity     = errors.New("box2d: density must be finite and non-negative")
	ErrInvalidFriction    = errors.New("box2d: friction must be finite and non-negative")
	ErrInvalidRestitution = errors.New("box2d: restitution must be finite and non-negative")
	ErrDegeneratePolygon  = errors.New("box2d: polygon is degenerate")
	ErrNonConvexPolygon   = errors.New("box2d: polygon is not convex")
	ErrTooManyVertices    = errors.New("box2d: too many polygon vertices")
	ErrInvalidShape       = errors.New("box2d: invalid shape")
	ErrInvalidChain       = errors.New("box2d: invalid chain")
	ErrInvalidBodyDef     = errors.New("box2d: invalid body definition")
	ErrStaleHandle        = errors.New("box2d: handle refers to a destroyed object")
	ErrWorldLocked        = errors.New("box2d: world is locked")
	ErrSameBody           = errors.New("box2d: joint bodies must differ")
	ErrInvalidJoint       = errors.New("box2d: invalid joint definition")
	ErrInvalidConfig      = errors.New("box2d: invalid settings")
)

func b2ValidateMaterial(density, friction, restitution float64) error {
	if !B2IsValid(density) || density < 0.0 {
		return errors.Wrapf(ErrInvalidDensity, "density %v", density)
	}
	if !B2IsValid(friction) || friction < 0.0 {
		return errors.Wrapf(ErrInvalidFriction, "friction %v", friction)
	}
	if !B2IsValid(restitution) || restitution < 0.0 {
		return errors.Wrapf(ErrInvalidRestitution, "restitution %v", restitution)
	}
	return nil
}
