package sim

import (
	"fmt"
	"math"
	"os"

	"github.com/gopxl/beep"
)

// The audio graph is a small set of beep.Streamer nodes pulled by the
// oto device reader: one endless voice per perspective, a gain node for
// cross-fading, and an optional wet/dry convolution send.

// engineVoice plays one buffer with an optional queued follow-up, then
// silence. It never ends, so the device reader can pull it forever.
type engineVoice struct {
	cur  [][2]float64
	pos  int
	loop bool

	next     [][2]float64
	nextLoop bool
}

// play replaces the current buffer immediately.
func (v *engineVoice) play(buf [][2]float64, loop bool) {
	if len(buf) == 0 {
		return
	}
	v.cur = buf
	v.pos = 0
	v.loop = loop
	v.next = nil
}

// queue schedules buf to start when the current buffer finishes.
// Ignored while looping (loops never finish on their own).
func (v *engineVoice) queue(buf [][2]float64, loop bool) {
	if len(buf) == 0 {
		return
	}
	v.next = buf
	v.nextLoop = loop
}

func (v *engineVoice) silence() {
	v.cur = nil
	v.next = nil
}

func (v *engineVoice) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if v.cur != nil && v.pos >= len(v.cur) {
			switch {
			case v.next != nil:
				v.cur = v.next
				v.loop = v.nextLoop
				v.next = nil
				v.pos = 0
			case v.loop:
				v.pos = 0
			default:
				v.cur = nil
			}
		}
		if v.cur == nil {
			samples[i] = [2]float64{}
			continue
		}
		samples[i] = v.cur[v.pos]
		v.pos++
	}
	return len(samples), true
}

func (v *engineVoice) Err() error { return nil }

// gainNode scales its source by a mutable gain.
type gainNode struct {
	src  beep.Streamer
	gain float64
}

func (g *gainNode) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.src.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= g.gain
		samples[i][1] *= g.gain
	}
	return n, ok
}

func (g *gainNode) Err() error { return g.src.Err() }

// convolver is a direct-form FIR running a mono impulse response over
// both channels.
type convolver struct {
	ir           []float64
	histL, histR []float64
	pos          int
}

func newConvolver(ir []float64) *convolver {
	c := &convolver{
		ir:    append([]float64(nil), ir...),
		histL: make([]float64, len(ir)),
		histR: make([]float64, len(ir)),
	}
	if len(c.ir) == 0 {
		c.ir = []float64{1}
		c.histL = make([]float64, 1)
		c.histR = make([]float64, 1)
	}
	return c
}

func (c *convolver) process(l, r float64) (float64, float64) {
	c.histL[c.pos] = l
	c.histR[c.pos] = r
	var outL, outR float64
	idx := c.pos
	for _, k := range c.ir {
		outL += k * c.histL[idx]
		outR += k * c.histR[idx]
		idx--
		if idx < 0 {
			idx = len(c.ir) - 1
		}
	}
	c.pos++
	if c.pos >= len(c.ir) {
		c.pos = 0
	}
	return outL, outR
}

// reverbSend mixes the dry source with its convolved wet copy in
// parallel. The source is pulled exactly once per chunk, so the dry
// path is never delayed by the convolver.
type reverbSend struct {
	src       beep.Streamer
	conv      *convolver
	dryGain   float64
	wetGain   float64
	connected bool
	scratch   [][2]float64
}

func newReverbSend(src beep.Streamer, ir []float64, blend, scaling float64) *reverbSend {
	return &reverbSend{
		src:       src,
		conv:      newConvolver(ir),
		dryGain:   (1 - blend) * scaling,
		wetGain:   blend * scaling,
		connected: true,
	}
}

// disconnect detaches the send. Guarded by the connected flag so a
// double teardown warns instead of corrupting the chain.
func (rs *reverbSend) disconnect() {
	if !rs.connected {
		fmt.Fprintf(os.Stderr, "audio: reverb send already disconnected\n")
		return
	}
	rs.connected = false
	rs.conv = nil
}

func (rs *reverbSend) Stream(samples [][2]float64) (int, bool) {
	if len(rs.scratch) < len(samples) {
		rs.scratch = make([][2]float64, len(samples))
	}
	n, ok := rs.src.Stream(rs.scratch[:len(samples)])
	for i := 0; i < n; i++ {
		dl := rs.scratch[i][0]
		dr := rs.scratch[i][1]
		wl, wr := rs.conv.process(dl, dr)
		samples[i][0] = dl*rs.dryGain + wl*rs.wetGain
		samples[i][1] = dr*rs.dryGain + wr*rs.wetGain
	}
	return n, ok
}

func (rs *reverbSend) Err() error { return rs.src.Err() }

// softSat applies gentle tanh-like saturation instead of hard clipping.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/(x)
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

// putStereoF32LR writes independent left/right samples in [-1,1] as
// float32 LE at frame i.
func putStereoF32LR(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}
