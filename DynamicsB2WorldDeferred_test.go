package box2d

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func newDropScene(t *testing.T) (*B2World, B2Body) {
	t.Helper()
	world := NewB2World(MakeB2Vec2(0.0, -10.0))

	bd := MakeB2BodyDef()
	ground, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ground.CreateFixtureFromShape(MakeB2BoxShape(5.0, 0.5), 0.0); err != nil {
		t.Fatal(err)
	}

	bd.Type = B2BodyType.B2_dynamicBody
	bd.Position.Set(0.0, 1.0)
	body, err := world.CreateBody(&bd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := body.CreateFixtureFromShape(MakeB2CircleShape(0.5), 1.0); err != nil {
		t.Fatal(err)
	}
	return world, body
}

func TestWorldLockedDuringCallbacks(t *testing.T) {
	world, _ := newDropScene(t)

	listener := &lockProbe{world: world}
	world.SetContactListener(listener)
	for i := 0; i < 30; i++ {
		world.Step(1.0/60.0, 8, 3)
	}

	if listener.calls == 0 {
		t.Fatal("no callbacks")
	}
	if listener.unlocked != 0 {
		t.Fatalf("%d callbacks ran with the world unlocked", listener.unlocked)
	}
	if world.IsLocked() || len(world.deferred) != 0 {
		t.Fatal("world left locked or with queued changes")
	}
}

type lockProbe struct {
	B2ContactListenerAdapter
	world    *B2World
	calls    int
	unlocked int
}

func (p *lockProbe) PreSolve(contact B2Contact, oldManifold B2Manifold) {
	p.calls++
	if !p.world.IsLocked() {
		p.unlocked++
	}
}

func (p *lockProbe) PostSolve(contact B2Contact, impulse *B2ContactImpulse) {
	p.calls++
	if !p.world.IsLocked() {
		p.unlocked++
	}
}

type doubleDestroy struct {
	B2ContactListenerAdapter
	world *B2World
	body  B2Body
	done  bool
}

func (d *doubleDestroy) BeginContact(contact B2Contact) {
	if d.done {
		return
	}
	d.done = true
	fixture := d.body.GetFixtures()[0]
	_ = d.body.DestroyFixture(fixture)
	_ = d.world.DestroyBody(d.body)
	_ = d.world.DestroyBody(d.body)
}

func TestDeferredQueueSkipsStaleEntries(t *testing.T) {
	world, body := newDropScene(t)
	var logs bytes.Buffer
	world.SetLogger(log.New(&logs, "", 0))

	listener := &doubleDestroy{world: world, body: body}
	world.SetContactListener(listener)
	for i := 0; i < 60 && !listener.done; i++ {
		world.Step(1.0/60.0, 8, 3)
	}

	if !listener.done {
		t.Fatal("body never touched the ground")
	}
	if body.IsValid() {
		t.Fatal("body survived the queued destroy")
	}
	if !strings.Contains(logs.String(), "applied 2 of 3 deferred world changes") {
		t.Fatalf("unexpected log:\n%s", logs.String())
	}
	if world.GetBodyCount() != 1 || world.fixtures.count != 1 {
		t.Fatalf("bodies=%d fixtures=%d after drain", world.GetBodyCount(), world.fixtures.count)
	}
}
