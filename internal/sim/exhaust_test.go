package sim

import (
	"math"
	"testing"
)

// immortalSettings returns settings whose particles never expire, so
// tests can count spawns through the active set.
func immortalSettings() EmitterSettings {
	s := SmokeSettings()
	s.LifeFrom = 1e6
	s.LifeTo = 1e6
	s.InitialOpacity = 1.0
	s.OpacityDecay = 0
	s.ScaleDelta = 0
	return s
}

// TestEmissionRateFidelity verifies the carry-remainder accumulator
// never drifts under a non-integer dt/addTime ratio.
func TestEmissionRateFidelity(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 42)
	e.Settings = immortalSettings()
	e.Settings.AddTime = 0.02

	const dt = 0.016
	const calls = 1000
	for i := 0; i < calls; i++ {
		e.Update(dt, DriveDrive)
	}

	want := int(math.Floor(calls * dt / 0.02)) // 800
	got := e.Pool().ActiveCount()
	if got < want-1 || got > want+1 {
		t.Errorf("spawned %d particles over %d calls, want %d±1", got, calls, want)
	}
}

// TestCapEnforcement verifies a burst far beyond the cap yields exactly
// MaxParticles active particles with no error.
func TestCapEnforcement(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 1)
	e.Settings = immortalSettings()
	e.Settings.AddTime = 1e-5 // 10000 spawn requests in one 0.1s update

	e.Update(0.1, DriveDrive)

	if got := e.Pool().ActiveCount(); got != MaxParticles {
		t.Errorf("active = %d, want exactly %d", got, MaxParticles)
	}
	if e.DrawCount != MaxParticles {
		t.Errorf("draw count = %d, want %d", e.DrawCount, MaxParticles)
	}
}

// TestNoSpawnWhileStopped verifies stop emits nothing unless a backfire
// is engaged.
func TestNoSpawnWhileStopped(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 3)
	e.Settings = immortalSettings()

	for i := 0; i < 100; i++ {
		e.Update(0.016, DriveStop)
	}
	if got := e.Pool().ActiveCount(); got != 0 {
		t.Fatalf("stopped emitter spawned %d particles", got)
	}

	e.TriggerBackfire(0.5)
	e.Update(0.016, DriveStop)
	if e.Pool().ActiveCount() == 0 {
		t.Error("backfire while stopped spawned nothing")
	}
}

// TestAccelTwoTierRate verifies accel doubles the spawn rate versus
// drive over the same simulated time.
func TestAccelTwoTierRate(t *testing.T) {
	spawnOver := func(state DriveState) int {
		e := NewExhaustEmitter(Vec3{}, 9)
		e.Settings = immortalSettings()
		e.Settings.AddTime = 0.02
		for i := 0; i < 100; i++ {
			e.Update(0.016, state)
		}
		return e.Pool().ActiveCount()
	}

	drive := spawnOver(DriveDrive)
	accel := spawnOver(DriveAccel)
	if accel < 2*drive-2 || accel > 2*drive+2 {
		t.Errorf("accel spawned %d, drive %d; want accel ≈ 2×drive", accel, drive)
	}
}

// TestBackfireCountdown verifies the burst disengages after its
// configured duration and restarts idempotently.
func TestBackfireCountdown(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 5)

	e.TriggerBackfire(0.5)
	if !e.BackfireEngaged() {
		t.Fatal("backfire not engaged after trigger")
	}

	for i := 0; i < 20; i++ {
		e.Update(0.02, DriveStop) // 0.4s total
	}
	if !e.BackfireEngaged() {
		t.Fatal("backfire disengaged early")
	}

	// Restart while engaged resets the countdown.
	e.TriggerBackfire(0.5)
	for i := 0; i < 20; i++ {
		e.Update(0.02, DriveStop)
	}
	if !e.BackfireEngaged() {
		t.Fatal("restarted backfire should still be engaged at 0.4s")
	}

	for i := 0; i < 10; i++ {
		e.Update(0.02, DriveStop)
	}
	if e.BackfireEngaged() {
		t.Error("backfire still engaged past its duration")
	}
}

// TestLifetimeMonotonicity verifies remaining lifetime decreases by dt
// each update until the particle is released.
func TestLifetimeMonotonicity(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 11)
	s := immortalSettings()
	s.LifeFrom = 0.1
	s.LifeTo = 0.1
	e.spawnOne(s, s.SpeedFrom, s.SpeedTo)

	p := e.Pool().active[0]
	prev := p.Life
	const dt = 0.016
	for e.Pool().ActiveCount() > 0 {
		e.Update(dt, DriveStop)
		if e.Pool().ActiveCount() == 0 {
			break
		}
		if got := prev - p.Life; math.Abs(got-dt) > 1e-12 {
			t.Fatalf("lifetime stepped by %g, want %g", got, dt)
		}
		prev = p.Life
	}
	if p.Life > 0 {
		t.Errorf("released with lifetime %g > 0", p.Life)
	}
}

// TestSpawnSetsEveryField verifies a recycled record carries no state
// from its previous use.
func TestSpawnSetsEveryField(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 13)
	s := immortalSettings()
	e.spawnOne(s, s.SpeedFrom, s.SpeedTo)

	// Poison the record, then expire it.
	p := e.Pool().active[0]
	p.Col = RGB{R: 9, G: 9, B: 9}
	p.ColProgress = 0.7
	p.Rotation = 99
	p.Life = 0
	e.Update(0.016, DriveStop)
	if e.Pool().ActiveCount() != 0 {
		t.Fatal("poisoned particle not released")
	}

	e.spawnOne(s, s.SpeedFrom, s.SpeedTo)
	q := e.Pool().active[0]
	if q != p {
		t.Fatal("expected the recycled record")
	}
	if q.ColProgress != 0 {
		t.Errorf("stale color progress %g", q.ColProgress)
	}
	if q.Alpha != s.InitialOpacity {
		t.Errorf("alpha = %g, want %g", q.Alpha, s.InitialOpacity)
	}
	if q.Rotation < s.RotationFrom || q.Rotation > s.RotationTo {
		t.Errorf("rotation %g outside [%g,%g]", q.Rotation, s.RotationFrom, s.RotationTo)
	}
	if q.Col.R > 2 {
		t.Errorf("stale color bled through: %+v", q.Col)
	}
}

// TestRenderBufferTruncation verifies DrawCount tracks the active set
// so stale slots are never drawn.
func TestRenderBufferTruncation(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 17)
	s := immortalSettings()
	s.LifeFrom = 0.05
	s.LifeTo = 0.05
	e.Settings = s
	e.Settings.AddTime = 0.01

	e.Update(0.04, DriveDrive)
	first := e.DrawCount
	if first == 0 {
		t.Fatal("no particles drawn")
	}
	if first != e.Pool().ActiveCount() {
		t.Errorf("draw count %d != active %d", first, e.Pool().ActiveCount())
	}

	// Let everything expire while stopped.
	for i := 0; i < 10; i++ {
		e.Update(0.02, DriveStop)
	}
	if e.DrawCount != 0 {
		t.Errorf("draw count %d after all particles expired", e.DrawCount)
	}
}

// TestAccelScenario runs the end-to-end smoke scenario: constant accel
// emission balanced by particle lifetime should stabilize the active
// count well below the cap.
func TestAccelScenario(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 23)
	s := SmokeSettings()
	s.AddTime = 0.02 // accel tier halves this to 0.01 -> 2 per 0.02s call
	s.LifeFrom = 1.0
	s.LifeTo = 1.5
	s.InitialOpacity = 1.0
	s.OpacityDecay = 0.001
	e.Settings = s

	for i := 0; i < 200; i++ {
		e.Update(0.02, DriveAccel)
		if e.Pool().ActiveCount() > MaxParticles {
			t.Fatalf("call %d: active %d exceeds cap", i, e.Pool().ActiveCount())
		}
	}

	got := e.Pool().ActiveCount()
	if got < 50 || got > 150 {
		t.Errorf("stabilized active count %d, want 50..150", got)
	}
}

// TestSpawnDirectionPointsUp verifies cone sampling always yields an
// upward component from the lifted outer disk.
func TestSpawnDirectionPointsUp(t *testing.T) {
	e := NewExhaustEmitter(Vec3{}, 29)
	s := SmokeSettings()
	for i := 0; i < 200; i++ {
		e.spawnOne(s, s.SpeedFrom, s.SpeedTo)
	}
	for _, p := range e.Pool().active {
		if p.Vel.Y <= 0 {
			t.Fatalf("spawn direction not upward: %+v", p.Vel)
		}
	}
}
