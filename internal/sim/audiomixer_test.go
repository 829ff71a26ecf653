package sim

import (
	"math"
	"testing"
)

// TestVolumeRampConvergence verifies a 0->1 fade takes exactly five
// steps at the configured gain step.
func TestVolumeRampConvergence(t *testing.T) {
	ea := NewEngineAudio()

	calls := 0
	for ea.Gain(PerspectiveIntake) < 1.0 {
		ea.SetPerspectiveVolumes(PerspectiveIntake)
		calls++
		if calls > 100 {
			t.Fatal("gain never converged")
		}
	}
	if calls != 5 {
		t.Errorf("converged in %d calls, want 5", calls)
	}
}

// TestVolumeRampBoundedStep verifies no single update moves any gain by
// more than GainStep, for a sweep of starting gains and targets.
func TestVolumeRampBoundedStep(t *testing.T) {
	targets := []Perspective{PerspectiveMix, PerspectiveIntake, PerspectiveExhaust, PerspectiveInterior}
	for _, solo := range targets {
		for start := 0.0; start <= 1.0; start += 0.1 {
			ea := NewEngineAudio()
			for p := PerspectiveIntake; p < PerspectiveCount; p++ {
				ea.emitters[p].gain.gain = start
			}
			before := [PerspectiveCount]float64{}
			for p := PerspectiveMix; p < PerspectiveCount; p++ {
				before[p] = ea.emitters[p].gain.gain
			}

			ea.SetPerspectiveVolumes(solo)

			for p := PerspectiveIntake; p < PerspectiveCount; p++ {
				step := math.Abs(ea.emitters[p].gain.gain - before[p])
				if step > GainStep+1e-12 {
					t.Fatalf("solo %v start %.1f: %v stepped %g > %g",
						solo, start, p, step, GainStep)
				}
			}
		}
	}
}

// TestVolumeTargets verifies converged gains match the solo selection.
func TestVolumeTargets(t *testing.T) {
	cases := []struct {
		solo     Perspective
		intake   float64
		exhaust  float64
		interior float64
	}{
		{PerspectiveMix, MixBaselineGain, MixBaselineGain, MixBaselineGain},
		{PerspectiveIntake, 1.0, 0.0, 0.0},
		{PerspectiveExhaust, 0.0, 1.0, 0.0},
		{PerspectiveInterior, 0.0, 0.0, 1.0},
	}

	for _, tc := range cases {
		ea := NewEngineAudio()
		for i := 0; i < 20; i++ {
			ea.SetPerspectiveVolumes(tc.solo)
		}
		got := []float64{
			ea.Gain(PerspectiveIntake),
			ea.Gain(PerspectiveExhaust),
			ea.Gain(PerspectiveInterior),
		}
		want := []float64{tc.intake, tc.exhaust, tc.interior}
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-12 {
				t.Errorf("solo %v: gains %v, want %v", tc.solo, got, want)
				break
			}
		}
		if ea.Gain(PerspectiveMix) != 0 {
			t.Errorf("solo %v: mix emitter gain %g, want 0", tc.solo, ea.Gain(PerspectiveMix))
		}
	}
}

// TestBalanceMultiplier verifies per-perspective balance scales the
// solo target before clamping.
func TestBalanceMultiplier(t *testing.T) {
	ea := NewEngineAudio()
	ea.SetBalance(PerspectiveIntake, 0.5)
	for i := 0; i < 20; i++ {
		ea.SetPerspectiveVolumes(PerspectiveIntake)
	}
	if got := ea.Gain(PerspectiveIntake); got != 0.5 {
		t.Errorf("balanced gain = %g, want 0.5", got)
	}
}

// TestReverbIdempotency verifies repeated applies keep exactly one
// connected send per emitter, and remove clears them all.
func TestReverbIdempotency(t *testing.T) {
	ea := NewEngineAudio()
	ir := []float64{1, 0.5, 0.25}

	ea.ApplyConvolutionReverb(ir, 0.4, 0.9)
	first := make([]*reverbSend, PerspectiveCount)
	for p := PerspectiveMix; p < PerspectiveCount; p++ {
		rs := ea.emitters[p].reverb
		if rs == nil || !rs.connected {
			t.Fatalf("%v: no connected send after apply", p)
		}
		first[p] = rs
	}

	ea.ApplyConvolutionReverb(ir, 0.4, 0.9)
	for p := PerspectiveMix; p < PerspectiveCount; p++ {
		rs := ea.emitters[p].reverb
		if rs == nil || !rs.connected {
			t.Fatalf("%v: no connected send after re-apply", p)
		}
		if rs == first[p] {
			t.Fatalf("%v: re-apply did not rebuild the send", p)
		}
		if first[p].connected {
			t.Fatalf("%v: previous send still connected", p)
		}
	}

	ea.RemoveConvolutionReverb()
	for p := PerspectiveMix; p < PerspectiveCount; p++ {
		if ea.emitters[p].reverb != nil {
			t.Fatalf("%v: send still routed after remove", p)
		}
	}

	// Double remove must stay a no-op.
	ea.RemoveConvolutionReverb()
}

// TestReverbWetDryMix verifies the parallel mix: with a unit impulse
// response the output is (dry + wet) * scaling of the source.
func TestReverbWetDryMix(t *testing.T) {
	buf := [][2]float64{{0.5, 0.5}, {0.25, 0.25}, {-0.5, -0.5}}

	ea := NewEngineAudio()
	em := ea.emitters[PerspectiveExhaust]
	em.voice.play(buf, false)
	em.gain.gain = 1.0

	const blend, scaling = 0.3, 0.8
	ea.ApplyConvolutionReverb([]float64{1}, blend, scaling)

	out := make([][2]float64, len(buf))
	n, _ := em.out().Stream(out)
	if n != len(buf) {
		t.Fatalf("streamed %d frames, want %d", n, len(buf))
	}
	for i := range buf {
		want := buf[i][0] * ((1-blend)*scaling + blend*scaling)
		if math.Abs(out[i][0]-want) > 1e-12 {
			t.Errorf("frame %d: got %g, want %g", i, out[i][0], want)
		}
	}
}

// TestConvolverDelayTap verifies a delayed impulse response shifts the
// wet signal.
func TestConvolverDelayTap(t *testing.T) {
	c := newConvolver([]float64{0, 0, 1}) // pure 2-sample delay
	in := []float64{1, 2, 3, 4}
	want := []float64{0, 0, 1, 2}
	for i, x := range in {
		l, r := c.process(x, x)
		if math.Abs(l-want[i]) > 1e-12 || math.Abs(r-want[i]) > 1e-12 {
			t.Fatalf("sample %d: got %g/%g, want %g", i, l, r, want[i])
		}
	}
}

// TestVoiceQueueChainsIntoLoop verifies a one-shot hands off to its
// queued loop and the loop wraps.
func TestVoiceQueueChainsIntoLoop(t *testing.T) {
	oneShot := [][2]float64{{1, 1}, {2, 2}}
	loop := [][2]float64{{5, 5}}

	v := &engineVoice{}
	v.play(oneShot, false)
	v.queue(loop, true)

	out := make([][2]float64, 6)
	v.Stream(out)

	want := []float64{1, 2, 5, 5, 5, 5}
	for i := range want {
		if out[i][0] != want[i] {
			t.Fatalf("frame %d: got %g, want %g (out %v)", i, out[i][0], want, out)
		}
	}
}

// TestVoiceEndsInSilence verifies a one-shot with no queue goes silent.
func TestVoiceEndsInSilence(t *testing.T) {
	v := &engineVoice{}
	v.play([][2]float64{{1, 1}}, false)

	out := make([][2]float64, 4)
	n, ok := v.Stream(out)
	if n != 4 || !ok {
		t.Fatalf("voice stream returned %d/%v, want endless stream", n, ok)
	}
	if out[0][0] != 1 || out[1][0] != 0 || out[3][0] != 0 {
		t.Errorf("unexpected tail: %v", out)
	}
}

// TestIgnitionSequencing verifies ignition-on queues the idle loop and
// ignition-off plays the shutdown buffer.
func TestIgnitionSequencing(t *testing.T) {
	ign := [][2]float64{{0.1, 0.1}}
	idle := [][2]float64{{0.2, 0.2}}
	off := [][2]float64{{0.3, 0.3}}

	ea := NewEngineAudio()
	for p := PerspectiveIntake; p < PerspectiveCount; p++ {
		ea.SetSound(p, SoundIgnitionOn, ign)
		ea.SetSound(p, SoundIdle, idle)
		ea.SetSound(p, SoundIgnitionOff, off)
	}

	ea.PlayIgnitionOn()
	out := make([][2]float64, 3)
	ea.emitters[PerspectiveExhaust].voice.Stream(out)
	if out[0][0] != 0.1 || out[1][0] != 0.2 || out[2][0] != 0.2 {
		t.Errorf("ignition-on sequence: %v", out)
	}

	ea.PlayIgnitionOff()
	out = make([][2]float64, 2)
	ea.emitters[PerspectiveExhaust].voice.Stream(out)
	if out[0][0] != 0.3 || out[1][0] != 0 {
		t.Errorf("ignition-off sequence: %v", out)
	}
}

// TestMissingSoundIsSkipped verifies unloaded buffers don't play and
// don't disturb what is already playing.
func TestMissingSoundIsSkipped(t *testing.T) {
	idle := [][2]float64{{0.2, 0.2}}

	ea := NewEngineAudio()
	for p := PerspectiveIntake; p < PerspectiveCount; p++ {
		ea.SetSound(p, SoundIdle, idle)
	}
	ea.PlayIgnitionOn() // no ignition buffer: falls through to idling

	ea.PlayRev(SoundRevLong) // rev buffer missing entirely

	out := make([][2]float64, 2)
	ea.emitters[PerspectiveIntake].voice.Stream(out)
	if out[0][0] != 0.2 || out[1][0] != 0.2 {
		t.Errorf("idle loop disturbed by missing sounds: %v", out)
	}
}
