package box2d

import "testing"

func TestPoolRevisionsInvalidateHandles(t *testing.T) {
	var pool b2Pool[int]

	a, revA := pool.alloc()
	*pool.get(a) = 7
	b, _ := pool.alloc()

	if pool.count != 2 || pool.capacity() != 2 {
		t.Fatalf("count %d capacity %d", pool.count, pool.capacity())
	}
	if v := pool.lookup(a, revA); v == nil || *v != 7 {
		t.Fatal("live record not found")
	}

	pool.release(a)
	if pool.lookup(a, revA) != nil || pool.check(a, revA) {
		t.Fatal("released record still resolves")
	}

	// The freed slot is reused with a new revision and a zeroed record.
	c, revC := pool.alloc()
	if c != a {
		t.Fatalf("slot %d not reused, got %d", a, c)
	}
	if revC == revA {
		t.Fatal("reused slot kept its revision")
	}
	if *pool.get(c) != 0 {
		t.Fatal("reused record was not zeroed")
	}
	if pool.lookup(a, revA) != nil {
		t.Fatal("old handle resolves to the new record")
	}

	var visited []int32
	pool.each(func(index int32, _ *int) bool {
		visited = append(visited, index)
		return true
	})
	if len(visited) != 2 || visited[0] != c || visited[1] != b {
		t.Fatalf("each visited %v", visited)
	}

	revB := pool.revision(b)
	pool.reset()
	if pool.count != 0 || pool.valid(b) {
		t.Fatal("reset left records behind")
	}

	// Slots are reused lowest first and handles from before the reset stay stale.
	d, revD := pool.alloc()
	if d != 0 {
		t.Fatalf("first slot after reset is %d, want 0", d)
	}
	e, _ := pool.alloc()
	if e != b {
		t.Fatalf("second slot after reset is %d, want %d", e, b)
	}
	if pool.check(c, revC) || pool.check(b, revB) {
		t.Fatal("handle from before the reset resolves")
	}
	if !pool.check(d, revD) {
		t.Fatal("fresh handle does not resolve")
	}
}

func TestGrowableStack(t *testing.T) {
	stack := MakeB2GrowableStack[int32](2)
	for i := int32(0); i < 10; i++ {
		stack.Push(i)
	}
	if stack.GetCount() != 10 {
		t.Fatalf("count %d", stack.GetCount())
	}
	for i := int32(9); i >= 0; i-- {
		if v := stack.Pop(); v != i {
			t.Fatalf("popped %d, want %d", v, i)
		}
	}
	if stack.Pop() != 0 || stack.GetCount() != 0 {
		t.Fatal("empty stack pop")
	}
}
