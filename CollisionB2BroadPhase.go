package box2d

import (
	"golang.org/x/exp/slices"
)

type B2BroadPhaseAddPairCallback[T any] func(userDataA, userDataB T)

type B2Pair struct {
	ProxyIdA int32
	ProxyIdB int32
}

/// This is used to sort pairs.
func B2PairCompare(pair1, pair2 B2Pair) int {
	if pair1.ProxyIdA != pair2.ProxyIdA {
		return int(pair1.ProxyIdA - pair2.ProxyIdA)
	}
	return int(pair1.ProxyIdB - pair2.ProxyIdB)
}

/// The broad-phase is used for computing pairs and performing volume queries and ray casts.
/// This broad-phase does not persist pairs. Instead, this reports potentially new pairs.
/// It is up to the client to consume the new pairs and to track subsequent overlap.
type B2BroadPhase[T any] struct {
	tree B2DynamicTree[T]

	proxyCount int

	moveBuffer []int32
	pairBuffer []B2Pair

	queryProxyId int32
}

func MakeB2BroadPhase[T any]() B2BroadPhase[T] {
	return B2BroadPhase[T]{
		tree:       MakeB2DynamicTree[T](),
		moveBuffer: make([]int32, 0, 16),
		pairBuffer: make([]B2Pair, 0, 16),
	}
}

/// Create a proxy with an initial AABB. Pairs are not reported until
/// UpdatePairs is called.
func (bp *B2BroadPhase[T]) CreateProxy(aabb B2AABB, userData T) int32 {
	proxyId := bp.tree.CreateProxy(aabb, userData)
	bp.proxyCount++
	bp.bufferMove(proxyId)
	return proxyId
}

/// Destroy a proxy. It is up to the client to remove any pairs.
func (bp *B2BroadPhase[T]) DestroyProxy(proxyId int32) {
	bp.unBufferMove(proxyId)
	bp.proxyCount--
	bp.tree.DestroyProxy(proxyId)
}

/// Call MoveProxy as many times as you like, then when you are done
/// call UpdatePairs to finalized the proxy pairs (for your time step).
func (bp *B2BroadPhase[T]) MoveProxy(proxyId int32, aabb B2AABB, displacement B2Vec2) {
	if bp.tree.MoveProxy(proxyId, aabb, displacement) {
		bp.bufferMove(proxyId)
	}
}

/// Call to trigger a re-processing of it's pairs on the next call to UpdatePairs.
func (bp *B2BroadPhase[T]) TouchProxy(proxyId int32) {
	bp.bufferMove(proxyId)
}

func (bp *B2BroadPhase[T]) GetFatAABB(proxyId int32) B2AABB {
	return bp.tree.GetFatAABB(proxyId)
}

func (bp *B2BroadPhase[T]) GetUserData(proxyId int32) T {
	return bp.tree.GetUserData(proxyId)
}

/// Test overlap of fat AABBs.
func (bp *B2BroadPhase[T]) TestOverlap(proxyIdA, proxyIdB int32) bool {
	return B2TestOverlapBoundingBoxes(bp.tree.GetFatAABB(proxyIdA), bp.tree.GetFatAABB(proxyIdB))
}

func (bp *B2BroadPhase[T]) GetProxyCount() int {
	return bp.proxyCount
}

func (bp *B2BroadPhase[T]) GetTreeHeight() int {
	return bp.tree.GetHeight()
}

func (bp *B2BroadPhase[T]) GetTreeBalance() int {
	return bp.tree.GetMaxBalance()
}

func (bp *B2BroadPhase[T]) GetTreeQuality() float64 {
	return bp.tree.GetAreaRatio()
}

/// Update the pairs. This results in pair callbacks. This can only add pairs.
func (bp *B2BroadPhase[T]) UpdatePairs(addPairCallback B2BroadPhaseAddPairCallback[T]) {
	// Reset pair buffer
	bp.pairBuffer = bp.pairBuffer[:0]

	// Perform tree queries for all moving proxies.
	for _, proxyId := range bp.moveBuffer {
		bp.queryProxyId = proxyId
		if proxyId == B2_nullNode {
			continue
		}

		// We have to query the tree with the fat AABB so that
		// we don't fail to create a pair that may touch later.
		fatAABB := bp.tree.GetFatAABB(proxyId)

		// Query tree, create pairs and add them pair buffer.
		bp.tree.Query(bp.queryCallback, fatAABB)
	}

	// Sort the pair buffer to expose duplicates.
	slices.SortFunc(bp.pairBuffer, B2PairCompare)
	bp.pairBuffer = slices.Compact(bp.pairBuffer)

	// Send the pairs back to the client.
	for _, pair := range bp.pairBuffer {
		addPairCallback(bp.tree.GetUserData(pair.ProxyIdA), bp.tree.GetUserData(pair.ProxyIdB))
	}

	// Clear move flags
	for _, proxyId := range bp.moveBuffer {
		if proxyId != B2_nullNode {
			bp.tree.ClearMoved(proxyId)
		}
	}

	// Reset move buffer
	bp.moveBuffer = bp.moveBuffer[:0]
}

/// Query an AABB for overlapping proxies. The callback is called for each
/// proxy that overlaps the supplied AABB.
func (bp *B2BroadPhase[T]) Query(callback B2TreeQueryCallback, aabb B2AABB) {
	bp.tree.Query(callback, aabb)
}

func (bp *B2BroadPhase[T]) RayCast(callback B2TreeRayCastCallback, input B2RayCastInput) {
	bp.tree.RayCast(callback, input)
}

/// Shift the world origin. Useful for large worlds.
func (bp *B2BroadPhase[T]) ShiftOrigin(newOrigin B2Vec2) {
	bp.tree.ShiftOrigin(newOrigin)
}

func (bp *B2BroadPhase[T]) bufferMove(proxyId int32) {
	bp.moveBuffer = append(bp.moveBuffer, proxyId)
}

func (bp *B2BroadPhase[T]) unBufferMove(proxyId int32) {
	for i := range bp.moveBuffer {
		if bp.moveBuffer[i] == proxyId {
			bp.moveBuffer[i] = B2_nullNode
		}
	}
}

// This is called from B2DynamicTree.Query when we are gathering pairs.
func (bp *B2BroadPhase[T]) queryCallback(proxyId int32) bool {
	// A proxy cannot form a pair with itself.
	if proxyId == bp.queryProxyId {
		return true
	}

	// Both proxies are moving. Avoid duplicate pairs.
	if bp.tree.WasMoved(proxyId) && proxyId > bp.queryProxyId {
		return true
	}

	bp.pairBuffer = append(bp.pairBuffer, B2Pair{
		ProxyIdA: min(proxyId, bp.queryProxyId),
		ProxyIdB: max(proxyId, bp.queryProxyId),
	})
	return true
}
