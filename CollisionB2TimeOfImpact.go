package box2d

import (
	"math"
)

/// Input parameters for B2TimeOfImpact
type B2TOIInput struct {
	ProxyA B2DistanceProxy
	ProxyB B2DistanceProxy
	SweepA B2Sweep
	SweepB B2Sweep
	TMax   float64 // defines sweep interval [0, tMax]
}

var B2TOIOutput_State = struct {
	E_unknown    uint8
	E_failed     uint8
	E_overlapped uint8
	E_touching   uint8
	E_separated  uint8
}{
	E_unknown:    1,
	E_failed:     2,
	E_overlapped: 3,
	E_touching:   4,
	E_separated:  5,
}

/// Output parameters for B2TimeOfImpact.
type B2TOIOutput struct {
	State uint8
	T     float64
}

const (
	b2_toiMaxIters     = 20
	b2_toiMaxRootIters = 50
)

const (
	b2SeparationPoints uint8 = iota
	b2SeparationFaceA
	b2SeparationFaceB
)

type b2SeparationFunction struct {
	proxyA, proxyB *B2DistanceProxy
	sweepA, sweepB B2Sweep
	kind           uint8
	localPoint     B2Vec2
	axis           B2Vec2
}

func (f *b2SeparationFunction) initialize(cache *B2SimplexCache, proxyA *B2DistanceProxy, sweepA B2Sweep, proxyB *B2DistanceProxy, sweepB B2Sweep, t1 float64) float64 {
	f.proxyA = proxyA
	f.proxyB = proxyB
	count := cache.Count
	B2Assert(0 < count && count < 3)

	f.sweepA = sweepA
	f.sweepB = sweepB

	xfA := f.sweepA.GetTransform(t1)
	xfB := f.sweepB.GetTransform(t1)

	if count == 1 {
		f.kind = b2SeparationPoints
		pointA := B2TransformVec2Mul(xfA, proxyA.GetVertex(cache.IndexA[0]))
		pointB := B2TransformVec2Mul(xfB, proxyB.GetVertex(cache.IndexB[0]))
		f.axis = B2Vec2Sub(pointB, pointA)
		return f.axis.Normalize()
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		// Two points on B and one on A.
		f.kind = b2SeparationFaceB
		localPointB1 := proxyB.GetVertex(cache.IndexB[0])
		localPointB2 := proxyB.GetVertex(cache.IndexB[1])

		f.axis = B2Vec2CrossVectorScalar(B2Vec2Sub(localPointB2, localPointB1), 1.0).Normalized()
		normal := B2RotVec2Mul(xfB.Q, f.axis)

		f.localPoint = B2Vec2Lerp(localPointB1, localPointB2, 0.5)
		pointB := B2TransformVec2Mul(xfB, f.localPoint)
		pointA := B2TransformVec2Mul(xfA, proxyA.GetVertex(cache.IndexA[0]))

		s := B2Vec2Dot(B2Vec2Sub(pointA, pointB), normal)
		if s < 0.0 {
			f.axis = f.axis.Negate()
			s = -s
		}
		return s
	}

	// Two points on A and one or two points on B.
	f.kind = b2SeparationFaceA
	localPointA1 := proxyA.GetVertex(cache.IndexA[0])
	localPointA2 := proxyA.GetVertex(cache.IndexA[1])

	f.axis = B2Vec2CrossVectorScalar(B2Vec2Sub(localPointA2, localPointA1), 1.0).Normalized()
	normal := B2RotVec2Mul(xfA.Q, f.axis)

	f.localPoint = B2Vec2Lerp(localPointA1, localPointA2, 0.5)
	pointA := B2TransformVec2Mul(xfA, f.localPoint)
	pointB := B2TransformVec2Mul(xfB, proxyB.GetVertex(cache.IndexB[0]))

	s := B2Vec2Dot(B2Vec2Sub(pointB, pointA), normal)
	if s < 0.0 {
		f.axis = f.axis.Negate()
		s = -s
	}
	return s
}

/// Finds the deepest points at time t and returns their separation.
func (f *b2SeparationFunction) findMinSeparation(t float64) (indexA, indexB int, separation float64) {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case b2SeparationPoints:
		axisA := B2RotVec2MulT(xfA.Q, f.axis)
		axisB := B2RotVec2MulT(xfB.Q, f.axis.Negate())

		indexA = f.proxyA.GetSupport(axisA)
		indexB = f.proxyB.GetSupport(axisB)

		pointA := B2TransformVec2Mul(xfA, f.proxyA.GetVertex(indexA))
		pointB := B2TransformVec2Mul(xfB, f.proxyB.GetVertex(indexB))
		return indexA, indexB, B2Vec2Dot(B2Vec2Sub(pointB, pointA), f.axis)

	case b2SeparationFaceA:
		normal := B2RotVec2Mul(xfA.Q, f.axis)
		pointA := B2TransformVec2Mul(xfA, f.localPoint)

		indexB = f.proxyB.GetSupport(B2RotVec2MulT(xfB.Q, normal.Negate()))
		pointB := B2TransformVec2Mul(xfB, f.proxyB.GetVertex(indexB))
		return -1, indexB, B2Vec2Dot(B2Vec2Sub(pointB, pointA), normal)

	case b2SeparationFaceB:
		normal := B2RotVec2Mul(xfB.Q, f.axis)
		pointB := B2TransformVec2Mul(xfB, f.localPoint)

		indexA = f.proxyA.GetSupport(B2RotVec2MulT(xfA.Q, normal.Negate()))
		pointA := B2TransformVec2Mul(xfA, f.proxyA.GetVertex(indexA))
		return indexA, -1, B2Vec2Dot(B2Vec2Sub(pointA, pointB), normal)
	}

	B2Assert(false)
	return -1, -1, 0.0
}

func (f *b2SeparationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case b2SeparationPoints:
		pointA := B2TransformVec2Mul(xfA, f.proxyA.GetVertex(indexA))
		pointB := B2TransformVec2Mul(xfB, f.proxyB.GetVertex(indexB))
		return B2Vec2Dot(B2Vec2Sub(pointB, pointA), f.axis)

	case b2SeparationFaceA:
		normal := B2RotVec2Mul(xfA.Q, f.axis)
		pointA := B2TransformVec2Mul(xfA, f.localPoint)
		pointB := B2TransformVec2Mul(xfB, f.proxyB.GetVertex(indexB))
		return B2Vec2Dot(B2Vec2Sub(pointB, pointA), normal)

	case b2SeparationFaceB:
		normal := B2RotVec2Mul(xfB.Q, f.axis)
		pointB := B2TransformVec2Mul(xfB, f.localPoint)
		pointA := B2TransformVec2Mul(xfA, f.proxyA.GetVertex(indexA))
		return B2Vec2Dot(B2Vec2Sub(pointA, pointB), normal)
	}

	B2Assert(false)
	return 0.0
}

/// Compute the upper bound on time before two shapes penetrate. Time is represented as
/// a fraction between [0,tMax]. This uses a swept separating axis and may miss some intermediate,
/// non-tunneling collision. If you change the time interval, you should call this function
/// again.
/// Note: use B2Distance to compute the contact point and normal at the time of impact.
///
/// A result in state E_failed means the root finder did not converge; T then
/// holds the last safe time, which callers may treat as conservative.
// CCD via the local separating axis method. This seeks progression
// by computing the largest time at which separation is maintained.
func B2TimeOfImpact(input *B2TOIInput) B2TOIOutput {
	b2Stats.toiCalls.Add(1)

	output := B2TOIOutput{State: B2TOIOutput_State.E_unknown, T: input.TMax}

	proxyA := &input.ProxyA
	proxyB := &input.ProxyB

	sweepA := input.SweepA
	sweepB := input.SweepB

	// Large rotations can make the root finder fail, so we normalize the
	// sweep angles.
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.Radius + proxyB.Radius
	target := math.Max(B2_linearSlop, totalRadius-3.0*B2_linearSlop)
	tolerance := 0.25 * B2_linearSlop
	B2Assert(target > tolerance)

	t1 := 0.0
	iter := 0

	// Prepare input for distance query.
	var cache B2SimplexCache
	distanceInput := B2DistanceInput{
		ProxyA: input.ProxyA,
		ProxyB: input.ProxyB,
	}

	// The outer loop progressively attempts to compute new separating axes.
	// This loop terminates when an axis is repeated (no progress is made).
	for {
		// Get the distance between shapes. We can also use the results
		// to get a separating axis.
		distanceInput.TransformA = sweepA.GetTransform(t1)
		distanceInput.TransformB = sweepB.GetTransform(t1)
		distanceOutput := B2Distance(&cache, &distanceInput)

		// If the shapes are overlapped, we give up on continuous collision.
		// A full simplex encloses the origin; the reported distance is then
		// only rounding noise.
		if cache.Count == 3 || distanceOutput.Distance < 10.0*B2_epsilon {
			output.State = B2TOIOutput_State.E_overlapped
			output.T = 0.0
			break
		}

		if distanceOutput.Distance < target+tolerance {
			output.State = B2TOIOutput_State.E_touching
			output.T = t1
			break
		}

		// Initialize the separating axis.
		var fcn b2SeparationFunction
		fcn.initialize(&cache, proxyA, sweepA, proxyB, sweepB, t1)

		// Compute the TOI on the separating axis. We do this by successively
		// resolving the deepest point. This loop is bounded by the number of vertices.
		done := false
		t2 := tMax
		pushBackIter := 0
		for {
			// Find the deepest point at t2. Store the witness point indices.
			indexA, indexB, s2 := fcn.findMinSeparation(t2)

			// Is the final configuration separated?
			if s2 > target+tolerance {
				output.State = B2TOIOutput_State.E_separated
				output.T = tMax
				done = true
				break
			}

			// Has the separation reached tolerance?
			if s2 > target-tolerance {
				// Advance the sweeps
				t1 = t2
				break
			}

			// Compute the initial separation of the witness points.
			s1 := fcn.evaluate(indexA, indexB, t1)

			// Check for initial overlap. This might happen if the root finder
			// runs out of iterations.
			if s1 < target-tolerance {
				output.State = B2TOIOutput_State.E_failed
				output.T = t1
				done = true
				break
			}

			// Check for touching
			if s1 <= target+tolerance {
				// t1 should hold the TOI (could be 0.0).
				output.State = B2TOIOutput_State.E_touching
				output.T = t1
				done = true
				break
			}

			// Compute 1D root of: f(x) - target = 0
			rootIterCount := 0
			a1 := t1
			a2 := t2
			for rootIterCount < b2_toiMaxRootIters {
				// Use a mix of the secant rule and bisection.
				var t float64
				if rootIterCount&1 != 0 {
					// Secant rule to improve convergence.
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					// Bisection to guarantee progress.
					t = 0.5 * (a1 + a2)
				}
				rootIterCount++

				s := fcn.evaluate(indexA, indexB, t)

				if math.Abs(s-target) < tolerance {
					// t2 holds a tentative value for t1
					t2 = t
					break
				}

				// Ensure we continue to bracket the root.
				if s > target {
					a1 = t
					s1 = s
				} else {
					a2 = t
					s2 = s
				}
			}

			b2Stats.toiRootIters.Add(int64(rootIterCount))
			b2AtomicMax(&b2Stats.toiMaxRootIters, int64(rootIterCount))

			pushBackIter++
			if pushBackIter == B2_maxPolygonVertices {
				break
			}
		}

		iter++
		b2Stats.toiIters.Add(1)

		if done {
			break
		}

		if iter == b2_toiMaxIters {
			// Root finder got stuck.
			output.State = B2TOIOutput_State.E_failed
			output.T = t1
			break
		}
	}

	b2AtomicMax(&b2Stats.toiMaxIters, int64(iter))
	return output
}
