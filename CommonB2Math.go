package box2d

import (
	"math"
)

///////////////////////////////////////////////////////////////////////////////
// Scalars
///////////////////////////////////////////////////////////////////////////////

/// Reports whether x is a usable number (not NaN, not infinite).
func B2IsValid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func B2FloatClamp(a, low, high float64) float64 {
	return math.Max(low, math.Min(a, high))
}

func B2NextPowerOfTwo(x uint32) uint32 {
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	return x + 1
}

func B2IsPowerOfTwo(x uint32) bool {
	return x > 0 && (x&(x-1)) == 0
}

///////////////////////////////////////////////////////////////////////////////
/// A 2D column vector.
///////////////////////////////////////////////////////////////////////////////
type B2Vec2 struct {
	X, Y float64
}

func MakeB2Vec2(x, y float64) B2Vec2 {
	return B2Vec2{X: x, Y: y}
}

func (v *B2Vec2) SetZero() {
	v.X, v.Y = 0.0, 0.0
}

func (v *B2Vec2) Set(x, y float64) {
	v.X, v.Y = x, y
}

func (v B2Vec2) Negate() B2Vec2 {
	return B2Vec2{-v.X, -v.Y}
}

/// Component access: 0 is X, anything else is Y.
func (v B2Vec2) At(i int) float64 {
	if i == 0 {
		return v.X
	}
	return v.Y
}

func (v *B2Vec2) SetAt(i int, value float64) {
	if i == 0 {
		v.X = value
		return
	}
	v.Y = value
}

func (v B2Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

/// Cheaper than Length when only comparisons are needed.
func (v B2Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

/// Convert this vector into a unit vector. Returns the length.
/// Vectors shorter than B2_epsilon are left untouched and 0 is returned.
func (v *B2Vec2) Normalize() float64 {
	length := v.Length()
	if length < B2_epsilon {
		return 0.0
	}
	invLength := 1.0 / length
	v.X *= invLength
	v.Y *= invLength
	return length
}

/// Returns the unit vector of v, or the zero vector when v is degenerate.
func (v B2Vec2) Normalized() B2Vec2 {
	v.Normalize()
	return v
}

func (v B2Vec2) IsValid() bool {
	return B2IsValid(v.X) && B2IsValid(v.Y)
}

/// Get the skew vector such that dot(skew_vec, other) == cross(vec, other)
func (v B2Vec2) Skew() B2Vec2 {
	return B2Vec2{-v.Y, v.X}
}

func B2Vec2Add(a, b B2Vec2) B2Vec2 {
	return B2Vec2{a.X + b.X, a.Y + b.Y}
}

func B2Vec2Sub(a, b B2Vec2) B2Vec2 {
	return B2Vec2{a.X - b.X, a.Y - b.Y}
}

func B2Vec2MulScalar(s float64, a B2Vec2) B2Vec2 {
	return B2Vec2{s * a.X, s * a.Y}
}

/// a + s * b
func B2Vec2MulAdd(a B2Vec2, s float64, b B2Vec2) B2Vec2 {
	return B2Vec2{a.X + s*b.X, a.Y + s*b.Y}
}

/// a - s * b
func B2Vec2MulSub(a B2Vec2, s float64, b B2Vec2) B2Vec2 {
	return B2Vec2{a.X - s*b.X, a.Y - s*b.Y}
}

func B2Vec2Dot(a, b B2Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

/// Perform the cross product on two vectors. In 2D this produces a scalar.
func B2Vec2Cross(a, b B2Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

/// Perform the cross product on a vector and a scalar. In 2D this produces a vector.
func B2Vec2CrossVectorScalar(a B2Vec2, s float64) B2Vec2 {
	return B2Vec2{s * a.Y, -s * a.X}
}

/// Perform the cross product on a scalar and a vector. In 2D this produces a vector.
func B2Vec2CrossScalarVector(s float64, a B2Vec2) B2Vec2 {
	return B2Vec2{-s * a.Y, s * a.X}
}

func B2Vec2Equals(a, b B2Vec2) bool {
	return a.X == b.X && a.Y == b.Y
}

func B2Vec2Distance(a, b B2Vec2) float64 {
	return B2Vec2Sub(a, b).Length()
}

func B2Vec2DistanceSquared(a, b B2Vec2) float64 {
	return B2Vec2Sub(a, b).LengthSquared()
}

func B2Vec2Abs(a B2Vec2) B2Vec2 {
	return B2Vec2{math.Abs(a.X), math.Abs(a.Y)}
}

func B2Vec2Min(a, b B2Vec2) B2Vec2 {
	return B2Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)}
}

func B2Vec2Max(a, b B2Vec2) B2Vec2 {
	return B2Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

func B2Vec2Clamp(a, low, high B2Vec2) B2Vec2 {
	return B2Vec2Max(low, B2Vec2Min(a, high))
}

/// Linear interpolation, t in [0,1].
func B2Vec2Lerp(a, b B2Vec2, t float64) B2Vec2 {
	return B2Vec2{(1.0-t)*a.X + t*b.X, (1.0-t)*a.Y + t*b.Y}
}

///////////////////////////////////////////////////////////////////////////////
/// A 2D column vector with 3 elements.
///////////////////////////////////////////////////////////////////////////////
type B2Vec3 struct {
	X, Y, Z float64
}

func MakeB2Vec3(x, y, z float64) B2Vec3 {
	return B2Vec3{X: x, Y: y, Z: z}
}

func (v *B2Vec3) SetZero() {
	v.X, v.Y, v.Z = 0.0, 0.0, 0.0
}

func (v B2Vec3) Negate() B2Vec3 {
	return B2Vec3{-v.X, -v.Y, -v.Z}
}

func B2Vec3Add(a, b B2Vec3) B2Vec3 {
	return B2Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func B2Vec3Sub(a, b B2Vec3) B2Vec3 {
	return B2Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func B2Vec3MulScalar(s float64, a B2Vec3) B2Vec3 {
	return B2Vec3{s * a.X, s * a.Y, s * a.Z}
}

func B2Vec3Dot(a, b B2Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func B2Vec3Cross(a, b B2Vec3) B2Vec3 {
	return B2Vec3{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

///////////////////////////////////////////////////////////////////////////////
/// A 2-by-2 matrix. Stored in column-major order.
///////////////////////////////////////////////////////////////////////////////
type B2Mat22 struct {
	Ex, Ey B2Vec2
}

func MakeB2Mat22FromColumns(c1, c2 B2Vec2) B2Mat22 {
	return B2Mat22{Ex: c1, Ey: c2}
}

func MakeB2Mat22FromScalars(a11, a12, a21, a22 float64) B2Mat22 {
	return B2Mat22{Ex: B2Vec2{a11, a21}, Ey: B2Vec2{a12, a22}}
}

func (m *B2Mat22) SetIdentity() {
	m.Ex.Set(1.0, 0.0)
	m.Ey.Set(0.0, 1.0)
}

func (m *B2Mat22) SetZero() {
	m.Ex.SetZero()
	m.Ey.SetZero()
}

func (m B2Mat22) GetInverse() B2Mat22 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0.0 {
		det = 1.0 / det
	}
	return B2Mat22{
		Ex: B2Vec2{det * d, -det * c},
		Ey: B2Vec2{-det * b, det * a},
	}
}

/// Solve A * x = b, where b is a column vector. This is more efficient
/// than computing the inverse in one-shot cases.
func (m B2Mat22) Solve(b B2Vec2) B2Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0.0 {
		det = 1.0 / det
	}
	return B2Vec2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}

/// Multiply a matrix times a vector.
func B2Vec2Mat22Mul(A B2Mat22, v B2Vec2) B2Vec2 {
	return B2Vec2{A.Ex.X*v.X + A.Ey.X*v.Y, A.Ex.Y*v.X + A.Ey.Y*v.Y}
}

/// Multiply a matrix transpose times a vector.
func B2Vec2Mat22MulT(A B2Mat22, v B2Vec2) B2Vec2 {
	return B2Vec2{B2Vec2Dot(v, A.Ex), B2Vec2Dot(v, A.Ey)}
}

func B2Mat22Add(A, B B2Mat22) B2Mat22 {
	return B2Mat22{Ex: B2Vec2Add(A.Ex, B.Ex), Ey: B2Vec2Add(A.Ey, B.Ey)}
}

func B2Mat22Mul(A, B B2Mat22) B2Mat22 {
	return B2Mat22{Ex: B2Vec2Mat22Mul(A, B.Ex), Ey: B2Vec2Mat22Mul(A, B.Ey)}
}

///////////////////////////////////////////////////////////////////////////////
/// A 3-by-3 matrix. Stored in column-major order.
///////////////////////////////////////////////////////////////////////////////
type B2Mat33 struct {
	Ex, Ey, Ez B2Vec3
}

func (m *B2Mat33) SetZero() {
	m.Ex.SetZero()
	m.Ey.SetZero()
	m.Ez.SetZero()
}

func B2Vec3Mat33Mul(A B2Mat33, v B2Vec3) B2Vec3 {
	return B2Vec3Add(
		B2Vec3Add(B2Vec3MulScalar(v.X, A.Ex), B2Vec3MulScalar(v.Y, A.Ey)),
		B2Vec3MulScalar(v.Z, A.Ez),
	)
}

/// Multiply the upper-left 2-by-2 block of a 3-by-3 matrix times a 2D vector.
func B2Vec2Mul22(A B2Mat33, v B2Vec2) B2Vec2 {
	return B2Vec2{A.Ex.X*v.X + A.Ey.X*v.Y, A.Ex.Y*v.X + A.Ey.Y*v.Y}
}

/// Solve A * x = b for the full 3-by-3 system.
func (m B2Mat33) Solve33(b B2Vec3) B2Vec3 {
	det := B2Vec3Dot(m.Ex, B2Vec3Cross(m.Ey, m.Ez))
	if det != 0.0 {
		det = 1.0 / det
	}
	return B2Vec3{
		det * B2Vec3Dot(b, B2Vec3Cross(m.Ey, m.Ez)),
		det * B2Vec3Dot(m.Ex, B2Vec3Cross(b, m.Ez)),
		det * B2Vec3Dot(m.Ex, B2Vec3Cross(m.Ey, b)),
	}
}

/// Solve A * x = b using only the upper 2-by-2 block.
func (m B2Mat33) Solve22(b B2Vec2) B2Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0.0 {
		det = 1.0 / det
	}
	return B2Vec2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}

/// Returns the inverse of the upper 2-by-2 block as a 3-by-3 matrix with zero third row/column.
func (m B2Mat33) GetInverse22() B2Mat33 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0.0 {
		det = 1.0 / det
	}
	var M B2Mat33
	M.Ex.X = det * d
	M.Ey.X = -det * b
	M.Ex.Y = -det * c
	M.Ey.Y = det * a
	return M
}

/// Returns the symmetric inverse. Zero if singular.
func (m B2Mat33) GetSymInverse33() B2Mat33 {
	det := B2Vec3Dot(m.Ex, B2Vec3Cross(m.Ey, m.Ez))
	if det != 0.0 {
		det = 1.0 / det
	}

	a11, a12, a13 := m.Ex.X, m.Ey.X, m.Ez.X
	a22, a23 := m.Ey.Y, m.Ez.Y
	a33 := m.Ez.Z

	var M B2Mat33
	M.Ex.X = det * (a22*a33 - a23*a23)
	M.Ex.Y = det * (a13*a23 - a12*a33)
	M.Ex.Z = det * (a12*a23 - a13*a22)

	M.Ey.X = M.Ex.Y
	M.Ey.Y = det * (a11*a33 - a13*a13)
	M.Ey.Z = det * (a13*a12 - a11*a23)

	M.Ez.X = M.Ex.Z
	M.Ez.Y = M.Ey.Z
	M.Ez.Z = det * (a11*a22 - a12*a12)
	return M
}

///////////////////////////////////////////////////////////////////////////////
/// Rotation stored as a sine/cosine pair.
///////////////////////////////////////////////////////////////////////////////
type B2Rot struct {
	S, C float64
}

func MakeB2Rot() B2Rot {
	return B2Rot{S: 0.0, C: 1.0}
}

func MakeB2RotFromAngle(angle float64) B2Rot {
	return B2Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

func (r *B2Rot) Set(angle float64) {
	r.S = math.Sin(angle)
	r.C = math.Cos(angle)
}

func (r *B2Rot) SetIdentity() {
	r.S, r.C = 0.0, 1.0
}

func (r B2Rot) GetAngle() float64 {
	return math.Atan2(r.S, r.C)
}

func (r B2Rot) GetXAxis() B2Vec2 {
	return B2Vec2{r.C, r.S}
}

func (r B2Rot) GetYAxis() B2Vec2 {
	return B2Vec2{-r.S, r.C}
}

/// q * r
func B2RotMul(q, r B2Rot) B2Rot {
	return B2Rot{
		S: q.S*r.C + q.C*r.S,
		C: q.C*r.C - q.S*r.S,
	}
}

/// transpose(q) * r
func B2RotMulT(q, r B2Rot) B2Rot {
	return B2Rot{
		S: q.C*r.S - q.S*r.C,
		C: q.C*r.C + q.S*r.S,
	}
}

/// Rotate a vector.
func B2RotVec2Mul(q B2Rot, v B2Vec2) B2Vec2 {
	return B2Vec2{q.C*v.X - q.S*v.Y, q.S*v.X + q.C*v.Y}
}

/// Inverse rotate a vector.
func B2RotVec2MulT(q B2Rot, v B2Vec2) B2Vec2 {
	return B2Vec2{q.C*v.X + q.S*v.Y, -q.S*v.X + q.C*v.Y}
}

///////////////////////////////////////////////////////////////////////////////
/// A transform contains translation and rotation. It is used to represent
/// the position and orientation of rigid frames.
///////////////////////////////////////////////////////////////////////////////
type B2Transform struct {
	P B2Vec2
	Q B2Rot
}

func MakeB2Transform() B2Transform {
	return B2Transform{Q: MakeB2Rot()}
}

func MakeB2TransformByPositionAndRotation(position B2Vec2, rotation B2Rot) B2Transform {
	return B2Transform{P: position, Q: rotation}
}

func (t *B2Transform) SetIdentity() {
	t.P.SetZero()
	t.Q.SetIdentity()
}

func (t *B2Transform) Set(position B2Vec2, angle float64) {
	t.P = position
	t.Q.Set(angle)
}

func B2TransformVec2Mul(T B2Transform, v B2Vec2) B2Vec2 {
	return B2Vec2{
		(T.Q.C*v.X - T.Q.S*v.Y) + T.P.X,
		(T.Q.S*v.X + T.Q.C*v.Y) + T.P.Y,
	}
}

func B2TransformVec2MulT(T B2Transform, v B2Vec2) B2Vec2 {
	px := v.X - T.P.X
	py := v.Y - T.P.Y
	return B2Vec2{T.Q.C*px + T.Q.S*py, -T.Q.S*px + T.Q.C*py}
}

// v2 = A.q.Rot(B.q.Rot(v1) + B.p) + A.p
//    = (A.q * B.q).Rot(v1) + A.q.Rot(B.p) + A.p
func B2TransformMul(A, B B2Transform) B2Transform {
	return B2Transform{
		Q: B2RotMul(A.Q, B.Q),
		P: B2Vec2Add(B2RotVec2Mul(A.Q, B.P), A.P),
	}
}

// v2 = A.q' * (B.q * v1 + B.p - A.p)
//    = A.q' * B.q * v1 + A.q' * (B.p - A.p)
func B2TransformMulT(A, B B2Transform) B2Transform {
	return B2Transform{
		Q: B2RotMulT(A.Q, B.Q),
		P: B2RotVec2MulT(A.Q, B2Vec2Sub(B.P, A.P)),
	}
}

///////////////////////////////////////////////////////////////////////////////
/// This describes the motion of a body/shape for TOI computation.
/// Shapes are defined with respect to the body origin, which may
/// not coincide with the center of mass. However, to support dynamics
/// we must interpolate the center of mass position.
///////////////////////////////////////////////////////////////////////////////
type B2Sweep struct {
	LocalCenter B2Vec2  ///< local center of mass position
	C0, C       B2Vec2  ///< center world positions
	A0, A       float64 ///< world angles

	/// Fraction of the current time step in the range [0,1]
	/// c0 and a0 are the positions at alpha0.
	Alpha0 float64
}

/// Get the interpolated transform at a specific time.
/// beta is a factor in [0,1], where 0 indicates alpha0.
func (sweep B2Sweep) GetTransform(beta float64) B2Transform {
	var xf B2Transform
	xf.P = B2Vec2Add(B2Vec2MulScalar(1.0-beta, sweep.C0), B2Vec2MulScalar(beta, sweep.C))
	xf.Q.Set((1.0-beta)*sweep.A0 + beta*sweep.A)

	// Shift to origin
	xf.P = B2Vec2Sub(xf.P, B2RotVec2Mul(xf.Q, sweep.LocalCenter))
	return xf
}

/// Advance the sweep forward, yielding a new initial state.
/// alpha is the new initial time.
func (sweep *B2Sweep) Advance(alpha float64) {
	B2Assert(sweep.Alpha0 < 1.0)
	beta := (alpha - sweep.Alpha0) / (1.0 - sweep.Alpha0)
	sweep.C0 = B2Vec2Add(sweep.C0, B2Vec2MulScalar(beta, B2Vec2Sub(sweep.C, sweep.C0)))
	sweep.A0 += beta * (sweep.A - sweep.A0)
	sweep.Alpha0 = alpha
}

/// Normalize the angles to keep them in [-pi, pi] after long runs.
func (sweep *B2Sweep) Normalize() {
	twoPi := 2.0 * B2_pi
	d := twoPi * math.Floor(sweep.A0/twoPi)
	sweep.A0 -= d
	sweep.A -= d
}
