package sim

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// RunDesktop opens the window and drives the frame loop until closed.
func RunDesktop(assetDir string) {
	runtime.LockOSThread()

	window, err := initWindow()
	if err != nil {
		panic(err)
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		panic(fmt.Errorf("gl init: %w", err))
	}

	// Seed from environment or clock.
	seed := uint64(time.Now().UnixNano())
	if s := os.Getenv("RX7_SEED"); s != "" {
		if v, err := strconv.ParseUint(s, 10, 64); err == nil {
			seed = v
		}
	}

	// Audio: non-fatal if the device is unavailable.
	audio := NewEngineAudio()
	if err := audio.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "audio init failed (continuing without sound): %v\n", err)
	} else {
		audio.LoadBank(assetDir)
		defer audio.Stop()
	}

	// GL state.
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(
		float32(Palette.Ground.R),
		float32(Palette.Ground.G),
		float32(Palette.Ground.B),
		1.0,
	)

	rend, err := NewRenderer()
	if err != nil {
		panic(fmt.Errorf("renderer: %w", err))
	}
	defer rend.Destroy()

	// Tailpipe sits at the rear left of the car footprint.
	exhaust := NewExhaustEmitter(Vec3{X: -0.9, Y: 0.25, Z: 0.35}, seed)
	drive := NewDriveModel()
	camera := NewCamera(Vec3{Y: 0.6})
	input := NewInput()

	solo := PerspectiveMix
	last := glfw.GetTime()

	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := now - last
		last = now
		if dt > 0.1 {
			dt = 0.1 // clamp hitches so the simulation never jumps
		}

		glfw.PollEvents()
		if input.JustPressed(window, glfw.KeyEscape) {
			window.SetShouldClose(true)
		}

		// Ignition, backfire, revs.
		if input.JustPressed(window, glfw.KeyI) {
			if drive.State == DriveStop || drive.State == DriveDecel {
				drive.IgnitionOn()
				audio.PlayIgnitionOn()
			} else {
				drive.IgnitionOff()
				audio.PlayIgnitionOff()
			}
		}
		if input.JustPressed(window, glfw.KeyB) {
			exhaust.TriggerBackfire(BackfireDuration)
		}
		if input.JustPressed(window, glfw.KeyR) {
			audio.PlayRev(SoundRevShort)
		}
		if input.JustPressed(window, glfw.KeyT) {
			audio.PlayRev(SoundRevMedium)
		}
		if input.JustPressed(window, glfw.KeyY) {
			audio.PlayRev(SoundRevLong)
		}

		// Perspective solo selection.
		if input.JustPressed(window, glfw.Key1) {
			solo = PerspectiveMix
		}
		if input.JustPressed(window, glfw.Key2) {
			solo = PerspectiveIntake
		}
		if input.JustPressed(window, glfw.Key3) {
			solo = PerspectiveExhaust
		}
		if input.JustPressed(window, glfw.Key4) {
			solo = PerspectiveInterior
		}

		// Reverb environments.
		if input.JustPressed(window, glfw.KeyG) {
			if err := audio.ApplyReverbPreset(assetDir, ReverbPresets[0]); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		}
		if input.JustPressed(window, glfw.KeyU) {
			if err := audio.ApplyReverbPreset(assetDir, ReverbPresets[1]); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		}
		if input.JustPressed(window, glfw.Key0) {
			audio.RemoveConvolutionReverb()
		}

		camera.Orbit(input.OrbitDeltas(window, dt))

		// Per-frame simulation.
		drive.Update(dt)
		exhaust.Update(dt, drive.State)
		audio.SetPerspectiveVolumes(solo)

		// Render.
		fbW, fbH := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(fbW), int32(fbH))
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		vp := camera.ViewProj(fbW, fbH)
		rend.DrawGrid(vp)
		rend.DrawSmoke(exhaust, vp, camera.PointScale(fbH))

		window.SwapBuffers()
	}
}
