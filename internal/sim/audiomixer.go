package sim

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/hajimehoshi/oto/v2"
)

// Perspective is a simulated microphone position. Mix is the legacy
// baseline channel: it never plays on its own emitter once the
// perspectives are split, but it remains valid as a solo selection
// meaning "no isolation".
type Perspective int

const (
	PerspectiveMix Perspective = iota
	PerspectiveIntake
	PerspectiveExhaust
	PerspectiveInterior
	PerspectiveCount
)

func (p Perspective) String() string {
	switch p {
	case PerspectiveMix:
		return "mix"
	case PerspectiveIntake:
		return "intake"
	case PerspectiveExhaust:
		return "exhaust"
	case PerspectiveInterior:
		return "interior"
	}
	return "unknown"
}

// EngineSound identifies one entry of a perspective's sound bank.
type EngineSound int

const (
	SoundIgnitionOn EngineSound = iota
	SoundIdle
	SoundIgnitionOff
	SoundRevShort
	SoundRevMedium
	SoundRevLong
	EngineSoundCount
)

// perspectiveEmitter is one microphone's playback chain:
// voice -> gain -> optional reverb send.
type perspectiveEmitter struct {
	voice   *engineVoice
	gain    *gainNode
	reverb  *reverbSend
	balance float64 // global per-perspective volume multiplier
}

func newPerspectiveEmitter(balance float64) *perspectiveEmitter {
	v := &engineVoice{}
	return &perspectiveEmitter{
		voice:   v,
		gain:    &gainNode{src: v, gain: 0},
		balance: balance,
	}
}

// out returns the head of the chain the device reader pulls.
func (pe *perspectiveEmitter) out() beep.Streamer {
	if pe.reverb != nil && pe.reverb.connected {
		return pe.reverb
	}
	return pe.gain
}

// EngineAudio owns the perspective emitters, their sound bank, and the
// oto output device. All graph mutation goes through mu; the device
// reader holds mu only while pulling samples.
type EngineAudio struct {
	mu       sync.Mutex
	emitters [PerspectiveCount]*perspectiveEmitter
	bank     [PerspectiveCount][EngineSoundCount][][2]float64
	solo     Perspective
	running  bool

	ctx    *oto.Context
	ready  chan struct{}
	player oto.Player
}

// NewEngineAudio builds the graph without opening an audio device;
// Start attaches it to oto. Tests drive the graph directly.
func NewEngineAudio() *EngineAudio {
	ea := &EngineAudio{solo: PerspectiveMix}
	for p := PerspectiveMix; p < PerspectiveCount; p++ {
		ea.emitters[p] = newPerspectiveEmitter(1.0)
	}
	return ea
}

// Start opens the audio device and begins pulling the graph.
func (ea *EngineAudio) Start() error {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return err
	}
	ea.ctx = ctx
	ea.ready = ready
	player := ctx.NewPlayer(&deviceReader{ea: ea})
	player.SetVolume(1.0)
	ea.player = player
	go func() {
		<-ready
		player.Play()
	}()
	return nil
}

func (ea *EngineAudio) Stop() {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	if ea.player != nil {
		ea.player.Close()
		ea.player = nil
	}
}

// SetBalance sets the global volume multiplier for one perspective.
func (ea *EngineAudio) SetBalance(p Perspective, balance float64) {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	ea.emitters[p].balance = balance
}

// SetSound installs a decoded buffer into the bank.
func (ea *EngineAudio) SetSound(p Perspective, s EngineSound, buf [][2]float64) {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	ea.bank[p][s] = buf
}

// Gain reports a perspective's current gain.
func (ea *EngineAudio) Gain(p Perspective) float64 {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	return ea.emitters[p].gain.gain
}

// SetPerspectiveVolumes steps every emitter's gain toward the target
// implied by the solo selection. Each call moves a gain by at most
// GainStep, so repeated per-frame calls produce a click-free fade.
func (ea *EngineAudio) SetPerspectiveVolumes(solo Perspective) {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	ea.solo = solo
	for p := PerspectiveMix; p < PerspectiveCount; p++ {
		em := ea.emitters[p]
		if p == PerspectiveMix {
			// Legacy placeholder channel: never audible.
			em.gain.gain = 0
			continue
		}
		var target float64
		switch {
		case p == solo:
			target = 1.0
		case solo == PerspectiveMix:
			target = MixBaselineGain
		}
		target = clampF(target*em.balance, 0, 1)
		em.gain.gain = approach(em.gain.gain, target, GainStep)
	}
}

// Solo returns the current solo selection.
func (ea *EngineAudio) Solo() Perspective {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	return ea.solo
}

// ApplyConvolutionReverb routes every perspective through a parallel
// wet/dry convolution of ir. Re-applying tears the previous send down
// first, so repeated calls never stack parallel paths.
func (ea *EngineAudio) ApplyConvolutionReverb(ir []float64, blend, scaling float64) {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	for p := PerspectiveMix; p < PerspectiveCount; p++ {
		em := ea.emitters[p]
		if em.reverb != nil {
			em.reverb.disconnect()
			em.reverb = nil
		}
		em.reverb = newReverbSend(em.gain, ir, blend, scaling)
	}
}

// RemoveConvolutionReverb restores direct dry output on every emitter.
func (ea *EngineAudio) RemoveConvolutionReverb() {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	for p := PerspectiveMix; p < PerspectiveCount; p++ {
		em := ea.emitters[p]
		if em.reverb != nil {
			em.reverb.disconnect()
			em.reverb = nil
		}
	}
}

// PlayIgnitionOn plays the start-up one-shot on every perspective and
// queues the idle loop behind it.
func (ea *EngineAudio) PlayIgnitionOn() {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	ea.running = true
	for p := PerspectiveIntake; p < PerspectiveCount; p++ {
		em := ea.emitters[p]
		if len(ea.bank[p][SoundIgnitionOn]) == 0 {
			// Missing start-up sample: go straight to idling.
			em.voice.play(ea.bank[p][SoundIdle], true)
			continue
		}
		em.voice.play(ea.bank[p][SoundIgnitionOn], false)
		em.voice.queue(ea.bank[p][SoundIdle], true)
	}
}

// PlayIgnitionOff plays the shutdown one-shot and ends in silence.
func (ea *EngineAudio) PlayIgnitionOff() {
	ea.mu.Lock()
	defer ea.mu.Unlock()
	ea.running = false
	for p := PerspectiveIntake; p < PerspectiveCount; p++ {
		em := ea.emitters[p]
		if len(ea.bank[p][SoundIgnitionOff]) == 0 {
			em.voice.silence()
			continue
		}
		em.voice.play(ea.bank[p][SoundIgnitionOff], false)
	}
}

// PlayRev plays a rev one-shot, returning to the idle loop afterwards
// while the engine is running.
func (ea *EngineAudio) PlayRev(s EngineSound) {
	if s != SoundRevShort && s != SoundRevMedium && s != SoundRevLong {
		return
	}
	ea.mu.Lock()
	defer ea.mu.Unlock()
	for p := PerspectiveIntake; p < PerspectiveCount; p++ {
		em := ea.emitters[p]
		em.voice.play(ea.bank[p][s], false)
		if ea.running {
			em.voice.queue(ea.bank[p][SoundIdle], true)
		}
	}
}

// deviceReader renders the summed perspective chains as stereo float32
// LE frames for oto.
type deviceReader struct {
	ea      *EngineAudio
	mix     [][2]float64
	scratch [][2]float64
}

func (r *deviceReader) Read(p []byte) (int, error) {
	n := len(p) / 8
	if n == 0 {
		return 0, nil
	}
	if len(r.mix) < n {
		r.mix = make([][2]float64, n)
		r.scratch = make([][2]float64, n)
	}
	mix := r.mix[:n]
	for i := range mix {
		mix[i] = [2]float64{}
	}

	r.ea.mu.Lock()
	for _, em := range r.ea.emitters {
		out := em.out()
		m, _ := out.Stream(r.scratch[:n])
		for i := 0; i < m; i++ {
			mix[i][0] += r.scratch[i][0]
			mix[i][1] += r.scratch[i][1]
		}
	}
	r.ea.mu.Unlock()

	for i := range mix {
		putStereoF32LR(p, i, softSat(mix[i][0]), softSat(mix[i][1]))
	}
	return n * 8, nil
}
