package box2d_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/kolombet/box2d"
)

func unitBox(x, y float64) box2d.B2AABB {
	return box2d.MakeB2AABB(box2d.MakeB2Vec2(x-0.5, y-0.5), box2d.MakeB2Vec2(x+0.5, y+0.5))
}

func TestDynamicTreeQuery(t *testing.T) {
	tree := box2d.MakeB2DynamicTree[int]()

	ids := make(map[int]int32)
	for i := 0; i < 100; i++ {
		x := float64(i%10) * 3.0
		y := float64(i/10) * 3.0
		ids[i] = tree.CreateProxy(unitBox(x, y), i)
	}

	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}
	if tree.GetProxyCount() != 100 {
		t.Fatalf("proxy count %d", tree.GetProxyCount())
	}
	if h := tree.GetHeight(); h > 12 {
		t.Fatalf("tree height %d is unbalanced for 100 proxies", h)
	}

	query := func(aabb box2d.B2AABB) []int {
		var found []int
		tree.Query(func(proxyId int32) bool {
			found = append(found, tree.GetUserData(proxyId))
			return true
		}, aabb)
		sort.Ints(found)
		return found
	}

	// Covers the boxes at (3,3), (6,3), (3,6) and (6,6).
	found := query(box2d.MakeB2AABB(box2d.MakeB2Vec2(2.5, 2.5), box2d.MakeB2Vec2(6.5, 6.5)))
	want := []int{11, 12, 21, 22}
	if len(found) != len(want) {
		t.Fatalf("query found %v, want %v", found, want)
	}
	for i := range want {
		if found[i] != want[i] {
			t.Fatalf("query found %v, want %v", found, want)
		}
	}

	// Move a proxy far away and destroy another one.
	tree.MoveProxy(ids[11], unitBox(100.0, 100.0), box2d.MakeB2Vec2(5.0, 5.0))
	tree.DestroyProxy(ids[22])
	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}

	found = query(box2d.MakeB2AABB(box2d.MakeB2Vec2(2.5, 2.5), box2d.MakeB2Vec2(6.5, 6.5)))
	if len(found) != 2 || found[0] != 12 || found[1] != 21 {
		t.Fatalf("after move and destroy the query found %v", found)
	}
	if got := query(unitBox(100.0, 100.0)); len(got) != 1 || got[0] != 11 {
		t.Fatalf("moved proxy not found at its new place: %v", got)
	}

	// Early exit.
	calls := 0
	tree.Query(func(proxyId int32) bool {
		calls++
		return false
	}, box2d.MakeB2AABB(box2d.MakeB2Vec2(-100.0, -100.0), box2d.MakeB2Vec2(100.0, 100.0)))
	if calls != 1 {
		t.Fatalf("query continued after the callback stopped it: %d calls", calls)
	}
}

func TestDynamicTreeFatMargin(t *testing.T) {
	tree := box2d.MakeB2DynamicTree[string]()
	id := tree.CreateProxy(unitBox(0.0, 0.0), "box")

	fat := tree.GetFatAABB(id)
	if fat.LowerBound.X >= -0.5 || fat.UpperBound.X <= 0.5 {
		t.Fatalf("fat aabb %v is not enlarged", fat)
	}

	// A small move stays inside the fat box and is not reported.
	if tree.MoveProxy(id, unitBox(0.01, 0.0), box2d.MakeB2Vec2(0.01, 0.0)) {
		t.Fatal("small move re-inserted the proxy")
	}
	if !tree.MoveProxy(id, unitBox(2.0, 0.0), box2d.MakeB2Vec2(2.0, 0.0)) {
		t.Fatal("large move was not reported")
	}
	if !tree.WasMoved(id) {
		t.Fatal("moved flag not set")
	}
	tree.ClearMoved(id)
	if tree.WasMoved(id) {
		t.Fatal("moved flag not cleared")
	}
}

func TestDynamicTreeRayCast(t *testing.T) {
	tree := box2d.MakeB2DynamicTree[int]()
	for i := 0; i < 5; i++ {
		tree.CreateProxy(unitBox(float64(i+1)*4.0, 0.0), i)
	}

	var order []int
	input := box2d.B2RayCastInput{P1: box2d.MakeB2Vec2(0.0, 0.0), P2: box2d.MakeB2Vec2(30.0, 0.0), MaxFraction: 1.0}
	tree.RayCast(func(input box2d.B2RayCastInput, proxyId int32) float64 {
		order = append(order, tree.GetUserData(proxyId))
		return input.MaxFraction
	}, input)
	if len(order) != 5 {
		t.Fatalf("ray visited %d proxies, want 5", len(order))
	}

	// Returning zero terminates the cast.
	hits := 0
	tree.RayCast(func(input box2d.B2RayCastInput, proxyId int32) float64 {
		hits++
		return 0.0
	}, input)
	if hits != 1 {
		t.Fatalf("terminated ray still visited %d proxies", hits)
	}

	// A ray beside the row touches nothing.
	input.P1.Y, input.P2.Y = 5.0, 5.0
	tree.RayCast(func(input box2d.B2RayCastInput, proxyId int32) float64 {
		t.Fatalf("ray beside the row hit proxy %d", tree.GetUserData(proxyId))
		return 0.0
	}, input)
}

func TestDynamicTreeRebuildAndShift(t *testing.T) {
	tree := box2d.MakeB2DynamicTree[int]()
	rng := rand.New(rand.NewSource(7))

	ids := make([]int32, 0, 200)
	for i := 0; i < 200; i++ {
		ids = append(ids, tree.CreateProxy(unitBox(rng.Float64()*100.0, rng.Float64()*100.0), i))
	}
	for i := 0; i < 50; i++ {
		tree.DestroyProxy(ids[i])
	}

	tree.RebuildBottomUp()
	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}
	if tree.GetProxyCount() != 150 {
		t.Fatalf("proxy count %d after rebuild", tree.GetProxyCount())
	}

	before := tree.GetFatAABB(ids[100])
	tree.ShiftOrigin(box2d.MakeB2Vec2(10.0, -10.0))
	after := tree.GetFatAABB(ids[100])
	if after.LowerBound.X != before.LowerBound.X-10.0 || after.LowerBound.Y != before.LowerBound.Y+10.0 {
		t.Fatalf("shift moved %v to %v", before, after)
	}
	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}
}
