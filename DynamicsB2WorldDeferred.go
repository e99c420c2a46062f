package box2d

const (
	b2Deferred_activateBody uint8 = iota
	b2Deferred_activateFixture
	b2Deferred_activateJoint
	b2Deferred_destroyBody
	b2Deferred_destroyFixture
	b2Deferred_destroyJoint
)

/// A world mutation requested while the world was locked. Exactly the handle
/// matching kind is set.
type b2DeferredOp struct {
	kind    uint8
	body    B2Body
	fixture B2Fixture
	joint   B2Joint
}

func (world *B2World) deferActivation(op b2DeferredOp) {
	world.deferred = append(world.deferred, op)
}

func (world *B2World) deferDestroy(op b2DeferredOp) {
	world.deferred = append(world.deferred, op)
}

// Applies the queued mutations in request order, with the world unlocked.
// Stale handles are skipped, so destroying twice or destroying something
// created in the same step is harmless.
func (world *B2World) drainDeferred() {
	if len(world.deferred) == 0 {
		return
	}

	ops := world.deferred
	world.deferred = nil

	applied := 0
	for _, op := range ops {
		switch op.kind {
		case b2Deferred_activateBody:
			if b := op.body.get(); b != nil {
				b.flags &= ^B2Body_Flags.E_inertFlag
				applied++
			}

		case b2Deferred_activateFixture:
			f := op.fixture.get()
			if f == nil || !f.inert {
				continue
			}
			world.activateFixture(world.bodies.get(f.body), op.fixture.id, f)
			applied++

		case b2Deferred_activateJoint:
			if j := op.joint.get(); j != nil && j.inert {
				world.activateJoint(j)
				applied++
			}

		case b2Deferred_destroyBody:
			if op.body.IsValid() {
				world.destroyBody(op.body.id)
				applied++
			}

		case b2Deferred_destroyFixture:
			f := op.fixture.get()
			if f == nil {
				continue
			}
			b := world.bodies.get(f.body)
			world.destroyFixture(b, op.fixture.id, f)
			b.resetMassData()
			applied++

		case b2Deferred_destroyJoint:
			if op.joint.IsValid() {
				world.destroyJoint(op.joint.id)
				applied++
			}
		}
	}

	world.logger.Printf("applied %d of %d deferred world changes", applied, len(ops))
}
