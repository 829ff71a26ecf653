package sim

// Particle is one pooled smoke puff. While a particle sits on the free
// list its fields are meaningless; the emitter sets every field on
// spawn, so stale values never leak between uses.
type Particle struct {
	Pos Vec3 // world-space offset from the emitter
	Vel Vec3 // per-frame displacement

	ScaleX, ScaleY float64
	ScaleDelta     float64
	Rotation       float64

	Col     RGB
	Alpha   float64 // doubles as opacity; particle dies at <= 0
	ColFrom RGB
	ColTo   RGB
	// Color interpolation progress advances by ColSpeed each frame,
	// clamped to 1.
	ColSpeed    float64
	ColProgress float64

	OpacityDecay float64
	Life         float64 // remaining lifetime in seconds
}

// ParticlePool recycles Particle records. A record is in exactly one of
// the free list or the active set at any time; records are constructed
// lazily and never deallocated.
type ParticlePool struct {
	active []*Particle
	free   []*Particle
	built  int // total records ever constructed
}

func NewParticlePool() *ParticlePool {
	return &ParticlePool{
		active: make([]*Particle, 0, 64),
		free:   make([]*Particle, 0, 64),
	}
}

// Acquire returns a record moved into the active set. Callers enforce
// the global cap by checking ActiveCount before calling.
func (pp *ParticlePool) Acquire() *Particle {
	var p *Particle
	if n := len(pp.free); n > 0 {
		p = pp.free[n-1]
		pp.free = pp.free[:n-1]
	} else {
		p = &Particle{}
		pp.built++
	}
	pp.active = append(pp.active, p)
	return p
}

// Release moves p back to the free list. No-op if p is not active.
func (pp *ParticlePool) Release(p *Particle) {
	for i, q := range pp.active {
		if q == p {
			pp.releaseAt(i)
			return
		}
	}
}

// releaseAt removes the active particle at index i (swap-remove).
func (pp *ParticlePool) releaseAt(i int) {
	last := len(pp.active) - 1
	p := pp.active[i]
	pp.active[i] = pp.active[last]
	pp.active = pp.active[:last]
	pp.free = append(pp.free, p)
}

func (pp *ParticlePool) ActiveCount() int { return len(pp.active) }

func (pp *ParticlePool) FreeCount() int { return len(pp.free) }

// Built reports how many records were ever constructed (the pool's
// high-water mark).
func (pp *ParticlePool) Built() int { return pp.built }

// Clear returns every active particle to the free list.
func (pp *ParticlePool) Clear() {
	for len(pp.active) > 0 {
		pp.releaseAt(len(pp.active) - 1)
	}
}
