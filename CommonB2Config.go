package box2d

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

/// Simulation settings handed to a world from outside. The zero value is not
/// useful, start from MakeB2Settings.
type B2Settings struct {
	Gravity B2Vec2 `yaml:"gravity"`

	/// Steps per second. Zero pauses the simulation.
	Hz float64 `yaml:"hz"`

	VelocityIterations int `yaml:"velocityIterations"`
	PositionIterations int `yaml:"positionIterations"`

	EnableSleep           bool `yaml:"enableSleep"`
	EnableWarmStarting    bool `yaml:"enableWarmStarting"`
	EnableContinuous      bool `yaml:"enableContinuous"`
	EnableSubStepping     bool `yaml:"enableSubStepping"`
	EnableParallelIslands bool `yaml:"enableParallelIslands"`
}

func MakeB2Settings() B2Settings {
	return B2Settings{
		Gravity:            B2Vec2{X: 0.0, Y: -10.0},
		Hz:                 60.0,
		VelocityIterations: 8,
		PositionIterations: 3,
		EnableSleep:        true,
		EnableWarmStarting: true,
		EnableContinuous:   true,
	}
}

/// Parse YAML settings. Keys missing from data keep their default value.
func ParseB2Settings(data []byte) (B2Settings, error) {
	settings := MakeB2Settings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return B2Settings{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := settings.Validate(); err != nil {
		return B2Settings{}, err
	}
	return settings, nil
}

/// Read YAML settings from a file.
func LoadB2Settings(path string) (B2Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return B2Settings{}, errors.Wrapf(err, "load settings %s", path)
	}
	settings, err := ParseB2Settings(data)
	if err != nil {
		return B2Settings{}, errors.Wrapf(err, "load settings %s", path)
	}
	return settings, nil
}

func (s B2Settings) Validate() error {
	switch {
	case !s.Gravity.IsValid():
		return errors.Wrap(ErrInvalidConfig, "gravity")
	case !B2IsValid(s.Hz) || s.Hz < 0.0:
		return errors.Wrapf(ErrInvalidConfig, "hz %v", s.Hz)
	case s.VelocityIterations < 0:
		return errors.Wrapf(ErrInvalidConfig, "velocity iterations %d", s.VelocityIterations)
	case s.PositionIterations < 0:
		return errors.Wrapf(ErrInvalidConfig, "position iterations %d", s.PositionIterations)
	}
	return nil
}

/// The time step for one call to Step, zero when paused.
func (s B2Settings) TimeStep() float64 {
	if s.Hz > 0.0 {
		return 1.0 / s.Hz
	}
	return 0.0
}

/// Push gravity and the solver toggles into the world.
func (s B2Settings) Apply(world *B2World) {
	world.SetGravity(s.Gravity)
	world.SetAllowSleeping(s.EnableSleep)
	world.SetWarmStarting(s.EnableWarmStarting)
	world.SetContinuousPhysics(s.EnableContinuous)
	world.SetSubStepping(s.EnableSubStepping)
	world.SetParallelIslands(s.EnableParallelIslands)
}

/// Apply the settings and advance the world by one settings time step.
func (world *B2World) StepWithSettings(s B2Settings) {
	s.Apply(world)
	world.Step(s.TimeStep(), s.VelocityIterations, s.PositionIterations)
}
