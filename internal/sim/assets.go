package sim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

var engineSoundFiles = [EngineSoundCount]string{
	SoundIgnitionOn:  "ignition_on.ogg",
	SoundIdle:        "idle.ogg",
	SoundIgnitionOff: "ignition_off.ogg",
	SoundRevShort:    "rev_short.ogg",
	SoundRevMedium:   "rev_medium.ogg",
	SoundRevLong:     "rev_long.ogg",
}

// DecodeSound loads an Ogg or WAV file into an in-memory stereo buffer
// at the engine sample rate.
func DecodeSound(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("decode %s: unsupported extension", path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	var st beep.Streamer = s
	if format.SampleRate != beep.SampleRate(SampleRate) {
		st = beep.Resample(4, format.SampleRate, beep.SampleRate(SampleRate), s)
	}

	var out [][2]float64
	chunk := make([][2]float64, 512)
	for {
		n, ok := st.Stream(chunk)
		out = append(out, chunk[:n]...)
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// LoadBank populates the sound bank from dir, expecting
// dir/<perspective>/<sound>.ogg. Missing or broken files are warned
// about and skipped; whatever loaded still plays.
func (ea *EngineAudio) LoadBank(dir string) {
	for p := PerspectiveIntake; p < PerspectiveCount; p++ {
		for s := EngineSound(0); s < EngineSoundCount; s++ {
			path := filepath.Join(dir, p.String(), engineSoundFiles[s])
			buf, err := DecodeSound(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "audio: skipping %s: %v\n", path, err)
				continue
			}
			ea.SetSound(p, s, buf)
		}
	}
}

// ReverbPreset pairs an impulse-response asset with its wet/dry mix
// constants.
type ReverbPreset struct {
	Name    string
	File    string
	Blend   float64
	Scaling float64
}

var ReverbPresets = []ReverbPreset{
	{Name: "garage", File: "garage.wav", Blend: 0.35, Scaling: 0.9},
	{Name: "tunnel", File: "tunnel.wav", Blend: 0.55, Scaling: 0.85},
}

// ApplyReverbPreset loads a preset's impulse response from dir/ir and
// routes all perspectives through it. Failures are non-fatal: the mixer
// keeps its current routing.
func (ea *EngineAudio) ApplyReverbPreset(dir string, preset ReverbPreset) error {
	buf, err := DecodeSound(filepath.Join(dir, "ir", preset.File))
	if err != nil {
		return fmt.Errorf("reverb %s: %w", preset.Name, err)
	}
	// Mono-ize: the convolver runs one kernel over both channels.
	ir := make([]float64, len(buf))
	for i, fr := range buf {
		ir[i] = (fr[0] + fr[1]) * 0.5
	}
	ea.ApplyConvolutionReverb(ir, preset.Blend, preset.Scaling)
	return nil
}
