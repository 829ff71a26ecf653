package sim

import "math"

// Camera orbits the car: yaw/pitch around a target point at a fixed
// distance, producing the view-projection matrix for the renderer.
type Camera struct {
	Target   Vec3
	Yaw      float64 // radians around Y
	Pitch    float64 // radians above the ground plane
	Distance float64

	FovY float64 // vertical field of view, radians
}

func NewCamera(target Vec3) *Camera {
	return &Camera{
		Target:   target,
		Yaw:      math.Pi * 0.25,
		Pitch:    0.45,
		Distance: 5.0,
		FovY:     math.Pi / 3,
	}
}

// Orbit applies yaw/pitch/zoom deltas with pitch and distance clamped.
func (c *Camera) Orbit(dYaw, dPitch, dDist float64) {
	c.Yaw += dYaw
	c.Pitch = clampF(c.Pitch+dPitch, MinCamPitch, MaxCamPitch)
	c.Distance = clampF(c.Distance+dDist, MinCamDistance, MaxCamDistance)
}

// Eye returns the camera position in world space.
func (c *Camera) Eye() Vec3 {
	cp := math.Cos(c.Pitch)
	return Vec3{
		X: c.Target.X + c.Distance*cp*math.Cos(c.Yaw),
		Y: c.Target.Y + c.Distance*math.Sin(c.Pitch),
		Z: c.Target.Z + c.Distance*cp*math.Sin(c.Yaw),
	}
}

// ViewProj returns the column-major view-projection matrix.
func (c *Camera) ViewProj(fbW, fbH int) [16]float32 {
	aspect := 1.0
	if fbH > 0 {
		aspect = float64(fbW) / float64(fbH)
	}
	proj := mat4Perspective(c.FovY, aspect, 0.05, 100.0)
	view := mat4LookAt(c.Eye(), c.Target, Vec3{Y: 1})
	return mat4Mul(proj, view)
}

// PointScale converts a world-space particle size into the factor the
// vertex shader multiplies by size/w to get a pixel point size.
func (c *Camera) PointScale(fbH int) float32 {
	return float32(float64(fbH) / (2.0 * math.Tan(c.FovY*0.5)))
}

func dot3(a, b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross3(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func mat4Perspective(fovy, aspect, near, far float64) [16]float32 {
	var m [16]float32
	f := 1.0 / math.Tan(fovy*0.5)
	m[0] = float32(f / aspect)
	m[5] = float32(f)
	m[10] = float32((far + near) / (near - far))
	m[11] = -1
	m[14] = float32(2 * far * near / (near - far))
	return m
}

func mat4LookAt(eye, target, up Vec3) [16]float32 {
	f := target.Sub(eye).Normalize()
	s := cross3(f, up).Normalize()
	u := cross3(s, f)

	var m [16]float32
	m[0] = float32(s.X)
	m[1] = float32(u.X)
	m[2] = float32(-f.X)
	m[4] = float32(s.Y)
	m[5] = float32(u.Y)
	m[6] = float32(-f.Y)
	m[8] = float32(s.Z)
	m[9] = float32(u.Z)
	m[10] = float32(-f.Z)
	m[12] = float32(-dot3(s, eye))
	m[13] = float32(-dot3(u, eye))
	m[14] = float32(dot3(f, eye))
	m[15] = 1
	return m
}

// mat4Mul multiplies column-major 4x4 matrices (a * b).
func mat4Mul(a, b [16]float32) [16]float32 {
	var out [16]float32
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}
