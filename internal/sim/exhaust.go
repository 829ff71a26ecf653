package sim

import "math"

// EmitterSettings configures one particle source. Ranges are sampled
// uniformly per spawned particle.
type EmitterSettings struct {
	AddTime float64 // seconds between spawns

	// Spawn cone: direction from a uniform-area point on the inner
	// disk (Radius1) toward the same-angle point on the outer disk
	// (Radius2) lifted by RadiusHeight.
	Radius1      float64
	Radius2      float64
	RadiusHeight float64

	ColFrom RGB
	ColTo   RGB

	BrightnessFrom, BrightnessTo float64
	SpeedFrom, SpeedTo           float64
	ScaleFrom, ScaleTo           float64
	LifeFrom, LifeTo             float64
	RotationFrom, RotationTo     float64
	ColSpeedFrom, ColSpeedTo     float64

	InitialOpacity float64
	OpacityDecay   float64
	ScaleDelta     float64 // per-frame growth (negative = shrink)
}

// SmokeSettings returns the normal exhaust plume configuration.
func SmokeSettings() EmitterSettings {
	return EmitterSettings{
		AddTime:        SmokeAddTime,
		Radius1:        0.04,
		Radius2:        0.10,
		RadiusHeight:   0.22,
		ColFrom:        Palette.SmokeFrom,
		ColTo:          Palette.SmokeTo,
		BrightnessFrom: 0.85,
		BrightnessTo:   1.1,
		SpeedFrom:      0.004,
		SpeedTo:        0.010,
		ScaleFrom:      0.10,
		ScaleTo:        0.18,
		LifeFrom:       1.0,
		LifeTo:         1.5,
		RotationFrom:   0,
		RotationTo:     2 * math.Pi,
		ColSpeedFrom:   0.01,
		ColSpeedTo:     0.03,
		InitialOpacity: 0.55,
		OpacityDecay:   0.004,
		ScaleDelta:     0.0025,
	}
}

// BackfireSettings returns the hot, fast-shrinking burst configuration.
func BackfireSettings() EmitterSettings {
	return EmitterSettings{
		AddTime:        BackfireAddTime,
		Radius1:        0.02,
		Radius2:        0.06,
		RadiusHeight:   0.10,
		ColFrom:        Palette.BackfireHot,
		ColTo:          Palette.BackfireCool,
		BrightnessFrom: 0.9,
		BrightnessTo:   1.3,
		SpeedFrom:      0.012,
		SpeedTo:        0.028,
		ScaleFrom:      0.06,
		ScaleTo:        0.12,
		LifeFrom:       0.25,
		LifeTo:         0.5,
		RotationFrom:   0,
		RotationTo:     2 * math.Pi,
		ColSpeedFrom:   0.05,
		ColSpeedTo:     0.12,
		InitialOpacity: 0.9,
		OpacityDecay:   0.015,
		ScaleDelta:     -0.0015,
	}
}

// ExhaustEmitter turns elapsed time plus drive state into spawn events,
// advances the live particles, and fills the flat render buffers the
// GPU upload reads from.
type ExhaustEmitter struct {
	Pos      Vec3
	Settings EmitterSettings
	Backfire EmitterSettings

	pool *ParticlePool
	rand *Rand

	elapsed         float64 // emission-interval accumulator
	backfireElapsed float64
	backfireTimer   float64
	backfireFor     float64
	backfireOn      bool

	// Flat GPU-side buffers; DrawCount slots are valid each frame.
	Positions [MaxParticles * 3]float32
	Colors    [MaxParticles * 4]float32
	Sizes     [MaxParticles]float32
	DrawCount int
}

func NewExhaustEmitter(pos Vec3, seed uint64) *ExhaustEmitter {
	return &ExhaustEmitter{
		Pos:      pos,
		Settings: SmokeSettings(),
		Backfire: BackfireSettings(),
		pool:     NewParticlePool(),
		rand:     NewRand(seed),
	}
}

func (e *ExhaustEmitter) Pool() *ParticlePool { return e.pool }

// TriggerBackfire engages the backfire burst for the given duration.
// Calling while already engaged restarts the countdown.
func (e *ExhaustEmitter) TriggerBackfire(duration float64) {
	if duration <= 0 {
		duration = BackfireDuration
	}
	e.backfireOn = true
	e.backfireTimer = 0
	e.backfireElapsed = 0
	e.backfireFor = duration
}

func (e *ExhaustEmitter) BackfireEngaged() bool { return e.backfireOn }

// Update advances the emitter by dt seconds under the given drive state.
func (e *ExhaustEmitter) Update(dt float64, state DriveState) {
	if dt <= 0 {
		return
	}

	if e.backfireOn {
		e.backfireTimer += dt
		if e.backfireTimer >= e.backfireFor {
			e.backfireOn = false
		}
	}

	// Backfire pre-empts normal smoke while engaged.
	s := e.Settings
	if e.backfireOn {
		s = e.Backfire
	}

	enabled := state != DriveStop || e.backfireOn

	// Two-tier accel rate: spawn faster and push particles harder while
	// accelerating. Deliberately a step, not an interpolation.
	addTime := s.AddTime
	speedFrom, speedTo := s.SpeedFrom, s.SpeedTo
	if !e.backfireOn && state == DriveAccel {
		addTime *= AccelAddTimeScale
		speedFrom *= AccelSpeedBoost
		speedTo *= AccelSpeedBoost
	}

	if enabled {
		// Carry the remainder forward so the emission rate tracks
		// wall-clock time exactly, whatever the frame rate does. The
		// backfire burst keeps its own accumulator.
		acc := &e.elapsed
		if e.backfireOn {
			acc = &e.backfireElapsed
		}
		*acc += dt
		spawn := int(*acc / addTime)
		*acc -= float64(spawn) * addTime

		for i := 0; i < spawn; i++ {
			if e.pool.ActiveCount() >= MaxParticles {
				break // silent admission control: drop newest
			}
			e.spawnOne(s, speedFrom, speedTo)
		}
	}

	e.integrate(dt)
	e.fillBuffers()
}

// spawnOne acquires a particle and sets every field from settings.
func (e *ExhaustEmitter) spawnOne(s EmitterSettings, speedFrom, speedTo float64) {
	r := e.rand

	// Uniform-area point on the inner disk.
	r1 := s.Radius1 * math.Sqrt(r.Float64())
	theta := 2 * math.Pi * r.Float64()
	cos, sin := math.Cos(theta), math.Sin(theta)
	inner := Vec3{X: r1 * cos, Z: r1 * sin}

	// Same-angle point on the outer disk, lifted by RadiusHeight.
	r2 := s.Radius2 * math.Sqrt(r.Float64())
	outer := Vec3{X: r2 * cos, Y: s.RadiusHeight, Z: r2 * sin}

	dir := outer.Sub(inner).Normalize()
	speed := r.RangeF(speedFrom, speedTo)

	// Brightness scales both endpoints so a dark particle stays dark
	// across its whole fade, not just at birth.
	brightness := r.RangeF(s.BrightnessFrom, s.BrightnessTo)
	scale := r.RangeF(s.ScaleFrom, s.ScaleTo)

	p := e.pool.Acquire()
	p.Pos = e.Pos.Add(inner)
	p.Vel = dir.Scale(speed)
	p.ScaleX = scale
	p.ScaleY = scale
	p.ScaleDelta = s.ScaleDelta
	p.Rotation = r.RangeF(s.RotationFrom, s.RotationTo)
	p.ColFrom = s.ColFrom.Scale(brightness)
	p.ColTo = s.ColTo.Scale(brightness)
	p.Col = p.ColFrom
	p.ColSpeed = r.RangeF(s.ColSpeedFrom, s.ColSpeedTo)
	p.ColProgress = 0
	p.Alpha = s.InitialOpacity
	p.OpacityDecay = s.OpacityDecay
	p.Life = r.RangeF(s.LifeFrom, s.LifeTo)
}

// integrate advances all active particles and releases expired ones.
// Reverse order keeps swap-removal safe within the same pass.
func (e *ExhaustEmitter) integrate(dt float64) {
	active := e.pool.active
	for i := len(active) - 1; i >= 0; i-- {
		p := active[i]

		p.Pos = p.Pos.Add(p.Vel)
		p.ScaleX += p.ScaleDelta
		p.ScaleY += p.ScaleDelta

		p.ColProgress += p.ColSpeed
		if p.ColProgress > 1 {
			p.ColProgress = 1
		}
		p.Col = lerpRGB(p.ColFrom, p.ColTo, p.ColProgress)

		p.Alpha -= p.OpacityDecay
		p.Life -= dt

		if p.Life <= 0 || p.Alpha <= 0 || p.ScaleX <= 0 {
			e.pool.releaseAt(i)
		}
	}
}

// fillBuffers writes surviving particles into the flat buffers at
// matching indices; DrawCount truncates what the renderer may read.
func (e *ExhaustEmitter) fillBuffers() {
	n := 0
	for _, p := range e.pool.active {
		e.Positions[n*3] = float32(p.Pos.X)
		e.Positions[n*3+1] = float32(p.Pos.Y)
		e.Positions[n*3+2] = float32(p.Pos.Z)
		e.Colors[n*4] = float32(p.Col.R)
		e.Colors[n*4+1] = float32(p.Col.G)
		e.Colors[n*4+2] = float32(p.Col.B)
		e.Colors[n*4+3] = float32(clampF(p.Alpha, 0, 1))
		e.Sizes[n] = float32(p.ScaleX)
		n++
	}
	e.DrawCount = n
}
