package sim

import "github.com/go-gl/glfw/v3.3/glfw"

type Input struct {
	prevKeys map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{prevKeys: make(map[glfw.Key]bool)}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

func (in *Input) Held(window *glfw.Window, key glfw.Key) bool {
	return window.GetKey(key) == glfw.Press
}

// OrbitDeltas reads the camera keys: arrows orbit, -/= zoom.
func (in *Input) OrbitDeltas(window *glfw.Window, dt float64) (dYaw, dPitch, dDist float64) {
	const orbitSpeed = 1.6
	const zoomSpeed = 4.0
	if in.Held(window, glfw.KeyLeft) {
		dYaw -= orbitSpeed * dt
	}
	if in.Held(window, glfw.KeyRight) {
		dYaw += orbitSpeed * dt
	}
	if in.Held(window, glfw.KeyUp) {
		dPitch += orbitSpeed * dt
	}
	if in.Held(window, glfw.KeyDown) {
		dPitch -= orbitSpeed * dt
	}
	if in.Held(window, glfw.KeyMinus) {
		dDist += zoomSpeed * dt
	}
	if in.Held(window, glfw.KeyEqual) {
		dDist -= zoomSpeed * dt
	}
	return
}
