package box2d

import (
	"math"

	"github.com/pkg/errors"
)

/// Return false to stop the query.
type B2TreeQueryCallback func(proxyId int32) bool

/// Return the new max fraction: 0 terminates the cast, -1 ignores the
/// proxy, input.MaxFraction continues unclipped.
type B2TreeRayCastCallback func(input B2RayCastInput, proxyId int32) float64

const B2_nullNode int32 = -1

/// A node in the dynamic tree. The client does not interact with this directly.
type b2TreeNode[T any] struct {
	/// Enlarged AABB
	aabb     B2AABB
	userData T

	// parent when in the tree, next when on the free list
	parent int32

	child1 int32
	child2 int32

	// leaf = 0, free node = -1
	height int32

	moved bool
}

func (node *b2TreeNode[T]) isLeaf() bool {
	return node.child1 == B2_nullNode
}

/// A dynamic AABB tree broad-phase, inspired by Nathanael Presson's btDbvt.
/// A dynamic tree arranges data in a binary tree to accelerate
/// queries such as volume queries and ray casts. Leafs are proxies
/// with an AABB. In the tree we expand the proxy AABB by B2_aabbExtension
/// so that the proxy AABB is bigger than the client object. This allows the client
/// object to move by small amounts without triggering a tree update.
///
/// Nodes are pooled and relocatable, so we use node indices rather than pointers.
/// The tree tolerates proxies being created or destroyed from inside a query
/// callback: freed nodes are skipped, new ones may or may not be visited.
type B2DynamicTree[T any] struct {
	root     int32
	nodes    []b2TreeNode[T]
	count    int
	freeList int32

	insertionCount int
}

func MakeB2DynamicTree[T any]() B2DynamicTree[T] {
	tree := B2DynamicTree[T]{root: B2_nullNode, freeList: B2_nullNode}
	tree.grow(16)
	return tree
}

// Links new nodes onto the free list.
func (tree *B2DynamicTree[T]) grow(capacity int) {
	start := len(tree.nodes)
	tree.nodes = append(tree.nodes, make([]b2TreeNode[T], capacity-start)...)
	for i := capacity - 1; i >= start; i-- {
		tree.nodes[i].parent = tree.freeList
		tree.nodes[i].height = -1
		tree.freeList = int32(i)
	}
}

// Allocate a node from the pool. Grow the pool if necessary.
func (tree *B2DynamicTree[T]) allocateNode() int32 {
	if tree.freeList == B2_nullNode {
		B2Assert(tree.count == len(tree.nodes))
		tree.grow(2 * len(tree.nodes))
	}

	// Peel a node off the free list.
	nodeId := tree.freeList
	node := &tree.nodes[nodeId]
	tree.freeList = node.parent
	*node = b2TreeNode[T]{
		parent: B2_nullNode,
		child1: B2_nullNode,
		child2: B2_nullNode,
	}
	tree.count++
	return nodeId
}

// Return a node to the pool.
func (tree *B2DynamicTree[T]) freeNode(nodeId int32) {
	B2Assert(0 <= nodeId && int(nodeId) < len(tree.nodes))
	B2Assert(0 < tree.count)
	var zero T
	tree.nodes[nodeId].userData = zero
	tree.nodes[nodeId].parent = tree.freeList
	tree.nodes[nodeId].height = -1
	tree.freeList = nodeId
	tree.count--
}

func (tree *B2DynamicTree[T]) checkProxy(proxyId int32) {
	B2Assert(0 <= proxyId && int(proxyId) < len(tree.nodes))
	B2Assert(tree.nodes[proxyId].height == 0)
}

/// Create a proxy. Provide a tight fitting AABB and a userData.
func (tree *B2DynamicTree[T]) CreateProxy(aabb B2AABB, userData T) int32 {
	proxyId := tree.allocateNode()

	// Fatten the aabb.
	node := &tree.nodes[proxyId]
	node.aabb = aabb.Extended(B2_aabbExtension)
	node.userData = userData
	node.height = 0
	node.moved = true

	tree.insertLeaf(proxyId)
	return proxyId
}

/// Destroy a proxy. This asserts if the id is invalid.
func (tree *B2DynamicTree[T]) DestroyProxy(proxyId int32) {
	tree.checkProxy(proxyId)
	tree.removeLeaf(proxyId)
	tree.freeNode(proxyId)
}

/// Move a proxy with a swepted AABB. If the proxy has moved outside of its fattened AABB,
/// then the proxy is removed from the tree and re-inserted. Otherwise
/// the function returns immediately.
/// @return true if the proxy was re-inserted.
func (tree *B2DynamicTree[T]) MoveProxy(proxyId int32, aabb B2AABB, displacement B2Vec2) bool {
	tree.checkProxy(proxyId)

	// Extend AABB
	fatAABB := aabb.Extended(B2_aabbExtension)

	// Predict AABB movement
	d := B2Vec2MulScalar(B2_aabbMultiplier, displacement)
	if d.X < 0.0 {
		fatAABB.LowerBound.X += d.X
	} else {
		fatAABB.UpperBound.X += d.X
	}
	if d.Y < 0.0 {
		fatAABB.LowerBound.Y += d.Y
	} else {
		fatAABB.UpperBound.Y += d.Y
	}

	treeAABB := tree.nodes[proxyId].aabb
	if treeAABB.Contains(aabb) {
		// The tree AABB still contains the object, but it might be too large.
		// Perhaps the object was moving fast but has since gone to sleep.
		// The huge AABB is larger than the new fat AABB.
		hugeAABB := fatAABB.Extended(4.0 * B2_aabbExtension)
		if hugeAABB.Contains(treeAABB) {
			// The tree AABB contains the object AABB and the tree AABB is
			// not too large. No tree update needed.
			return false
		}
		// Otherwise the tree AABB is huge and needs to be shrunk
	}

	tree.removeLeaf(proxyId)
	tree.nodes[proxyId].aabb = fatAABB
	tree.insertLeaf(proxyId)
	tree.nodes[proxyId].moved = true
	return true
}

/// Get proxy user data.
func (tree *B2DynamicTree[T]) GetUserData(proxyId int32) T {
	B2Assert(0 <= proxyId && int(proxyId) < len(tree.nodes))
	return tree.nodes[proxyId].userData
}

func (tree *B2DynamicTree[T]) WasMoved(proxyId int32) bool {
	B2Assert(0 <= proxyId && int(proxyId) < len(tree.nodes))
	return tree.nodes[proxyId].moved
}

func (tree *B2DynamicTree[T]) ClearMoved(proxyId int32) {
	B2Assert(0 <= proxyId && int(proxyId) < len(tree.nodes))
	tree.nodes[proxyId].moved = false
}

/// Get the fat AABB for a proxy.
func (tree *B2DynamicTree[T]) GetFatAABB(proxyId int32) B2AABB {
	B2Assert(0 <= proxyId && int(proxyId) < len(tree.nodes))
	return tree.nodes[proxyId].aabb
}

func (tree *B2DynamicTree[T]) GetProxyCount() int {
	leaves := 0
	for i := range tree.nodes {
		if tree.nodes[i].height == 0 {
			leaves++
		}
	}
	return leaves
}

/// Query an AABB for overlapping proxies. The callback is called for each
/// proxy that overlaps the supplied AABB.
func (tree *B2DynamicTree[T]) Query(callback B2TreeQueryCallback, aabb B2AABB) {
	stack := MakeB2GrowableStack[int32](256)
	stack.Push(tree.root)

	for stack.GetCount() > 0 {
		nodeId := stack.Pop()
		if nodeId == B2_nullNode || int(nodeId) >= len(tree.nodes) {
			continue
		}

		node := tree.nodes[nodeId]
		if node.height < 0 {
			// Freed by an earlier callback.
			continue
		}

		if B2TestOverlapBoundingBoxes(node.aabb, aabb) {
			if node.isLeaf() {
				if !callback(nodeId) {
					return
				}
			} else {
				stack.Push(node.child1)
				stack.Push(node.child2)
			}
		}
	}
}

/// Ray-cast against the proxies in the tree. This relies on the callback
/// to perform a exact ray-cast in the case were the proxy contains a shape.
/// The callback also performs the any collision filtering. This has performance
/// roughly equal to k * log(n), where k is the number of collisions and n is the
/// number of proxies in the tree.
func (tree *B2DynamicTree[T]) RayCast(callback B2TreeRayCastCallback, input B2RayCastInput) {
	p1 := input.P1
	p2 := input.P2
	r := B2Vec2Sub(p2, p1)
	if r.LengthSquared() <= 0.0 {
		return
	}
	r.Normalize()

	// v is perpendicular to the segment.
	v := B2Vec2CrossScalarVector(1.0, r)
	absV := B2Vec2Abs(v)

	// Separating axis for segment (Gino, p80).
	// |dot(v, p1 - c)| > dot(|v|, h)

	maxFraction := input.MaxFraction

	// Build a bounding box for the segment.
	segment := func() B2AABB {
		t := B2Vec2MulAdd(p1, maxFraction, B2Vec2Sub(p2, p1))
		return B2AABB{LowerBound: B2Vec2Min(p1, t), UpperBound: B2Vec2Max(p1, t)}
	}
	segmentAABB := segment()

	stack := MakeB2GrowableStack[int32](256)
	stack.Push(tree.root)

	for stack.GetCount() > 0 {
		nodeId := stack.Pop()
		if nodeId == B2_nullNode || int(nodeId) >= len(tree.nodes) {
			continue
		}

		node := tree.nodes[nodeId]
		if node.height < 0 {
			continue
		}

		if !B2TestOverlapBoundingBoxes(node.aabb, segmentAABB) {
			continue
		}

		c := node.aabb.GetCenter()
		h := node.aabb.GetExtents()
		separation := math.Abs(B2Vec2Dot(v, B2Vec2Sub(p1, c))) - B2Vec2Dot(absV, h)
		if separation > 0.0 {
			continue
		}

		if node.isLeaf() {
			subInput := B2RayCastInput{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}

			value := callback(subInput, nodeId)

			if value == 0.0 {
				// The client has terminated the ray cast.
				return
			}

			if value > 0.0 {
				// Update segment bounding box.
				maxFraction = value
				segmentAABB = segment()
			}
		} else {
			stack.Push(node.child1)
			stack.Push(node.child2)
		}
	}
}

func (tree *B2DynamicTree[T]) insertLeaf(leaf int32) {
	tree.insertionCount++

	if tree.root == B2_nullNode {
		tree.root = leaf
		tree.nodes[tree.root].parent = B2_nullNode
		return
	}

	// Find the best sibling for this node
	leafAABB := tree.nodes[leaf].aabb
	index := tree.root
	for !tree.nodes[index].isLeaf() {
		child1 := tree.nodes[index].child1
		child2 := tree.nodes[index].child2

		area := tree.nodes[index].aabb.GetPerimeter()

		combinedArea := B2AABBCombine(tree.nodes[index].aabb, leafAABB).GetPerimeter()

		// Cost of creating a new parent for this node and the new leaf
		cost := 2.0 * combinedArea

		// Minimum cost of pushing the leaf further down the tree
		inheritanceCost := 2.0 * (combinedArea - area)

		descendCost := func(child int32) float64 {
			combined := B2AABBCombine(leafAABB, tree.nodes[child].aabb).GetPerimeter()
			if tree.nodes[child].isLeaf() {
				return combined + inheritanceCost
			}
			return combined - tree.nodes[child].aabb.GetPerimeter() + inheritanceCost
		}

		cost1 := descendCost(child1)
		cost2 := descendCost(child2)

		// Descend according to the minimum cost.
		if cost < cost1 && cost < cost2 {
			break
		}

		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// Create a new parent.
	oldParent := tree.nodes[sibling].parent
	newParent := tree.allocateNode()
	tree.nodes[newParent].parent = oldParent
	tree.nodes[newParent].aabb = B2AABBCombine(leafAABB, tree.nodes[sibling].aabb)
	tree.nodes[newParent].height = tree.nodes[sibling].height + 1
	tree.nodes[newParent].child1 = sibling
	tree.nodes[newParent].child2 = leaf
	tree.nodes[sibling].parent = newParent
	tree.nodes[leaf].parent = newParent

	if oldParent != B2_nullNode {
		// The sibling was not the root.
		if tree.nodes[oldParent].child1 == sibling {
			tree.nodes[oldParent].child1 = newParent
		} else {
			tree.nodes[oldParent].child2 = newParent
		}
	} else {
		// The sibling was the root.
		tree.root = newParent
	}

	// Walk back up the tree fixing heights and AABBs
	tree.refit(tree.nodes[leaf].parent)
}

func (tree *B2DynamicTree[T]) refit(index int32) {
	for index != B2_nullNode {
		index = tree.balance(index)

		child1 := tree.nodes[index].child1
		child2 := tree.nodes[index].child2

		B2Assert(child1 != B2_nullNode)
		B2Assert(child2 != B2_nullNode)

		tree.nodes[index].height = 1 + max(tree.nodes[child1].height, tree.nodes[child2].height)
		tree.nodes[index].aabb = B2AABBCombine(tree.nodes[child1].aabb, tree.nodes[child2].aabb)

		index = tree.nodes[index].parent
	}
}

func (tree *B2DynamicTree[T]) removeLeaf(leaf int32) {
	if leaf == tree.root {
		tree.root = B2_nullNode
		return
	}

	parent := tree.nodes[leaf].parent
	grandParent := tree.nodes[parent].parent
	sibling := tree.nodes[parent].child1
	if sibling == leaf {
		sibling = tree.nodes[parent].child2
	}

	if grandParent != B2_nullNode {
		// Destroy parent and connect sibling to grandParent.
		if tree.nodes[grandParent].child1 == parent {
			tree.nodes[grandParent].child1 = sibling
		} else {
			tree.nodes[grandParent].child2 = sibling
		}
		tree.nodes[sibling].parent = grandParent
		tree.freeNode(parent)

		// Adjust ancestor bounds.
		tree.refit(grandParent)
	} else {
		tree.root = sibling
		tree.nodes[sibling].parent = B2_nullNode
		tree.freeNode(parent)
	}
}

// Perform a left or right rotation if node A is imbalanced.
// Returns the new root index.
func (tree *B2DynamicTree[T]) balance(iA int32) int32 {
	B2Assert(iA != B2_nullNode)

	A := &tree.nodes[iA]
	if A.isLeaf() || A.height < 2 {
		return iA
	}

	iB := A.child1
	iC := A.child2
	B := &tree.nodes[iB]
	C := &tree.nodes[iC]

	balance := C.height - B.height

	// Rotate C up
	if balance > 1 {
		iF := C.child1
		iG := C.child2
		F := &tree.nodes[iF]
		G := &tree.nodes[iG]

		// Swap A and C
		C.child1 = iA
		C.parent = A.parent
		A.parent = iC

		// A's old parent should point to C
		tree.replaceChild(C.parent, iA, iC)

		// Rotate
		if F.height > G.height {
			C.child2 = iF
			A.child2 = iG
			G.parent = iA
			A.aabb = B2AABBCombine(B.aabb, G.aabb)
			C.aabb = B2AABBCombine(A.aabb, F.aabb)

			A.height = 1 + max(B.height, G.height)
			C.height = 1 + max(A.height, F.height)
		} else {
			C.child2 = iG
			A.child2 = iF
			F.parent = iA
			A.aabb = B2AABBCombine(B.aabb, F.aabb)
			C.aabb = B2AABBCombine(A.aabb, G.aabb)

			A.height = 1 + max(B.height, F.height)
			C.height = 1 + max(A.height, G.height)
		}

		return iC
	}

	// Rotate B up
	if balance < -1 {
		iD := B.child1
		iE := B.child2
		D := &tree.nodes[iD]
		E := &tree.nodes[iE]

		// Swap A and B
		B.child1 = iA
		B.parent = A.parent
		A.parent = iB

		// A's old parent should point to B
		tree.replaceChild(B.parent, iA, iB)

		// Rotate
		if D.height > E.height {
			B.child2 = iD
			A.child1 = iE
			E.parent = iA
			A.aabb = B2AABBCombine(C.aabb, E.aabb)
			B.aabb = B2AABBCombine(A.aabb, D.aabb)

			A.height = 1 + max(C.height, E.height)
			B.height = 1 + max(A.height, D.height)
		} else {
			B.child2 = iE
			A.child1 = iD
			D.parent = iA
			A.aabb = B2AABBCombine(C.aabb, D.aabb)
			B.aabb = B2AABBCombine(A.aabb, E.aabb)

			A.height = 1 + max(C.height, D.height)
			B.height = 1 + max(A.height, E.height)
		}

		return iB
	}

	return iA
}

func (tree *B2DynamicTree[T]) replaceChild(parent, oldChild, newChild int32) {
	if parent == B2_nullNode {
		tree.root = newChild
		return
	}
	if tree.nodes[parent].child1 == oldChild {
		tree.nodes[parent].child1 = newChild
	} else {
		B2Assert(tree.nodes[parent].child2 == oldChild)
		tree.nodes[parent].child2 = newChild
	}
}

/// Compute the height of the binary tree in O(N) time. Should not be
/// called often.
func (tree *B2DynamicTree[T]) GetHeight() int {
	if tree.root == B2_nullNode {
		return 0
	}
	return int(tree.nodes[tree.root].height)
}

/// Get the ratio of the sum of the node areas to the root area.
func (tree *B2DynamicTree[T]) GetAreaRatio() float64 {
	if tree.root == B2_nullNode {
		return 0.0
	}

	rootArea := tree.nodes[tree.root].aabb.GetPerimeter()

	totalArea := 0.0
	for i := range tree.nodes {
		if tree.nodes[i].height < 0 {
			// Free node in pool
			continue
		}
		totalArea += tree.nodes[i].aabb.GetPerimeter()
	}

	return totalArea / rootArea
}

/// Get the maximum balance of an node in the tree. The balance is the difference
/// in height of the two children of a node.
func (tree *B2DynamicTree[T]) GetMaxBalance() int {
	maxBalance := int32(0)
	for i := range tree.nodes {
		node := &tree.nodes[i]
		if node.height <= 1 {
			continue
		}

		B2Assert(!node.isLeaf())
		balance := tree.nodes[node.child2].height - tree.nodes[node.child1].height
		if balance < 0 {
			balance = -balance
		}
		maxBalance = max(maxBalance, balance)
	}
	return int(maxBalance)
}

func (tree *B2DynamicTree[T]) computeHeight(nodeId int32) int32 {
	node := &tree.nodes[nodeId]
	if node.isLeaf() {
		return 0
	}
	return 1 + max(tree.computeHeight(node.child1), tree.computeHeight(node.child2))
}

/// Validate this tree: structure, cached heights and AABBs, and the free
/// list. Returns the first inconsistency found.
func (tree *B2DynamicTree[T]) Validate() error {
	if tree.root != B2_nullNode && tree.nodes[tree.root].parent != B2_nullNode {
		return errors.New("root has a parent")
	}
	if err := tree.validateNode(tree.root); err != nil {
		return err
	}

	freeCount := 0
	for freeIndex := tree.freeList; freeIndex != B2_nullNode; freeIndex = tree.nodes[freeIndex].parent {
		if freeIndex < 0 || int(freeIndex) >= len(tree.nodes) {
			return errors.Errorf("free list index %d out of range", freeIndex)
		}
		freeCount++
	}

	if tree.GetHeight() != int(tree.computeTotalHeight()) {
		return errors.New("cached root height is stale")
	}
	if tree.count+freeCount != len(tree.nodes) {
		return errors.Errorf("%d live and %d free nodes for capacity %d", tree.count, freeCount, len(tree.nodes))
	}
	return nil
}

func (tree *B2DynamicTree[T]) computeTotalHeight() int32 {
	if tree.root == B2_nullNode {
		return 0
	}
	return tree.computeHeight(tree.root)
}

func (tree *B2DynamicTree[T]) validateNode(index int32) error {
	if index == B2_nullNode {
		return nil
	}

	node := &tree.nodes[index]
	child1 := node.child1
	child2 := node.child2

	if node.isLeaf() {
		if child2 != B2_nullNode || node.height != 0 {
			return errors.Errorf("leaf %d is malformed", index)
		}
		return nil
	}

	if tree.nodes[child1].parent != index || tree.nodes[child2].parent != index {
		return errors.Errorf("children of node %d do not point back to it", index)
	}

	height := 1 + max(tree.nodes[child1].height, tree.nodes[child2].height)
	if node.height != height {
		return errors.Errorf("node %d has height %d, want %d", index, node.height, height)
	}

	aabb := B2AABBCombine(tree.nodes[child1].aabb, tree.nodes[child2].aabb)
	if aabb != node.aabb {
		return errors.Errorf("node %d has a stale AABB", index)
	}

	if err := tree.validateNode(child1); err != nil {
		return err
	}
	return tree.validateNode(child2)
}

/// Build an optimal tree. Very expensive. For testing.
func (tree *B2DynamicTree[T]) RebuildBottomUp() {
	nodes := make([]int32, 0, tree.count)

	// Build array of leaves. Free the rest.
	for i := range tree.nodes {
		if tree.nodes[i].height < 0 {
			// free node in pool
			continue
		}

		if tree.nodes[i].isLeaf() {
			tree.nodes[i].parent = B2_nullNode
			nodes = append(nodes, int32(i))
		} else {
			tree.freeNode(int32(i))
		}
	}

	if len(nodes) == 0 {
		tree.root = B2_nullNode
		return
	}

	for len(nodes) > 1 {
		minCost := B2_maxFloat
		iMin, jMin := -1, -1
		for i := 0; i < len(nodes); i++ {
			aabbi := tree.nodes[nodes[i]].aabb
			for j := i + 1; j < len(nodes); j++ {
				cost := B2AABBCombine(aabbi, tree.nodes[nodes[j]].aabb).GetPerimeter()
				if cost < minCost {
					iMin = i
					jMin = j
					minCost = cost
				}
			}
		}

		index1 := nodes[iMin]
		index2 := nodes[jMin]

		parentIndex := tree.allocateNode()
		parent := &tree.nodes[parentIndex]
		parent.child1 = index1
		parent.child2 = index2
		parent.height = 1 + max(tree.nodes[index1].height, tree.nodes[index2].height)
		parent.aabb = B2AABBCombine(tree.nodes[index1].aabb, tree.nodes[index2].aabb)
		parent.parent = B2_nullNode

		tree.nodes[index1].parent = parentIndex
		tree.nodes[index2].parent = parentIndex

		nodes[jMin] = nodes[len(nodes)-1]
		nodes[iMin] = parentIndex
		nodes = nodes[:len(nodes)-1]
	}

	tree.root = nodes[0]
}

/// Shift the world origin. Useful for large worlds.
/// The shift formula is: position -= newOrigin
func (tree *B2DynamicTree[T]) ShiftOrigin(newOrigin B2Vec2) {
	for i := range tree.nodes {
		tree.nodes[i].aabb.LowerBound = B2Vec2Sub(tree.nodes[i].aabb.LowerBound, newOrigin)
		tree.nodes[i].aabb.UpperBound = B2Vec2Sub(tree.nodes[i].aabb.UpperBound, newOrigin)
	}
}
