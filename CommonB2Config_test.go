package box2d_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kolombet/box2d"
	"github.com/pkg/errors"
)

func TestParseSettingsOverlaysDefaults(t *testing.T) {
	settings, err := box2d.ParseB2Settings([]byte(`
gravity:
  x: 0
  y: -9.8
hz: 120
enableParallelIslands: true
enableSleep: false
`))
	if err != nil {
		t.Fatal(err)
	}

	if settings.Gravity != box2d.MakeB2Vec2(0.0, -9.8) {
		t.Fatalf("gravity %v", settings.Gravity)
	}
	if settings.TimeStep() != 1.0/120.0 {
		t.Fatalf("time step %v", settings.TimeStep())
	}
	if !settings.EnableParallelIslands || settings.EnableSleep {
		t.Fatal("toggles were not read")
	}

	defaults := box2d.MakeB2Settings()
	if settings.VelocityIterations != defaults.VelocityIterations || settings.PositionIterations != defaults.PositionIterations {
		t.Fatal("missing keys did not keep their defaults")
	}
	if !settings.EnableWarmStarting || !settings.EnableContinuous {
		t.Fatal("missing toggles did not keep their defaults")
	}
}

func TestParseSettingsRejectsBadInput(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":     "hz: [60",
		"negativeHz": "hz: -1",
		"iterations": "velocityIterations: -3",
		"wrongType":  "enableSleep: maybe",
	} {
		if _, err := box2d.ParseB2Settings([]byte(doc)); errors.Cause(err) != box2d.ErrInvalidConfig {
			t.Errorf("%s: got %v, want ErrInvalidConfig", name, err)
		}
	}
}

func TestLoadSettingsAndStep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	if err := os.WriteFile(path, []byte("hz: 30\nenableSleep: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := box2d.LoadB2Settings(path)
	if err != nil {
		t.Fatal(err)
	}

	world := box2d.NewB2World(box2d.B2Vec2{})
	body := createDynamic(t, world, 0.0, 0.0, box2d.MakeB2CircleShape(0.5))

	world.StepWithSettings(settings)

	if world.GetAllowSleeping() {
		t.Fatal("settings were not applied to the world")
	}
	if world.GetGravity() != settings.Gravity {
		t.Fatalf("world gravity %v", world.GetGravity())
	}
	// One 1/30 s step under default gravity.
	if v := body.GetLinearVelocity().Y; v > -0.33 || v < -0.34 {
		t.Fatalf("velocity after one step %v", v)
	}

	if _, err := box2d.LoadB2Settings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file loaded")
	}
}

func TestPausedSettingsDoNotStep(t *testing.T) {
	settings := box2d.MakeB2Settings()
	settings.Hz = 0.0
	if err := settings.Validate(); err != nil {
		t.Fatal(err)
	}

	world := box2d.NewB2World(box2d.B2Vec2{})
	body := createDynamic(t, world, 0.0, 1.0, box2d.MakeB2CircleShape(0.5))
	world.StepWithSettings(settings)

	if body.GetPosition().Y != 1.0 {
		t.Fatal("paused settings advanced the world")
	}
}
