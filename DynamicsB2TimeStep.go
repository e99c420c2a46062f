package box2d

/// Profiling data. Times are in milliseconds.
type B2Profile struct {
	Step          float64
	Collide       float64
	Solve         float64
	SolveInit     float64
	SolveVelocity float64
	SolvePosition float64
	Broadphase    float64
	SolveTOI      float64
}

func (p *B2Profile) addIsland(island b2IslandProfile) {
	p.SolveInit += island.solveInit
	p.SolveVelocity += island.solveVelocity
	p.SolvePosition += island.solvePosition
}

/// This is an internal structure.
type B2TimeStep struct {
	Dt                 float64 // time step
	Inv_dt             float64 // inverse time step (0 if dt == 0).
	DtRatio            float64 // dt * inv_dt0
	VelocityIterations int
	PositionIterations int
	WarmStarting       bool
}

/// This is an internal structure.
type B2Position struct {
	C B2Vec2
	A float64
}

/// This is an internal structure.
type B2Velocity struct {
	V B2Vec2
	W float64
}

/// Solver Data
type B2SolverData struct {
	Step       B2TimeStep
	Positions  []B2Position
	Velocities []B2Velocity

	island *b2Island
}

/// Island index and record of a body taking part in the solve.
func (data *B2SolverData) body(index int32) (int, *b2Body) {
	return data.island.localIndex(index), data.island.world.bodies.get(index)
}
