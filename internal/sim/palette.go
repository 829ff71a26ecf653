package sim

// RGB holds normalized [0,1] color components. Particle colors stay in
// float space because they are interpolated every frame and uploaded to
// the GPU as-is.
type RGB struct {
	R, G, B float64
}

func (c RGB) Scale(s float64) RGB {
	return RGB{R: c.R * s, G: c.G * s, B: c.B * s}
}

func lerpRGB(a, b RGB, t float64) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return RGB{
		R: lerpF(a.R, b.R, t),
		G: lerpF(a.G, b.G, t),
		B: lerpF(a.B, b.B, t),
	}
}

// Palette holds the demo's fixed colors.
var Palette = struct {
	SmokeFrom    RGB
	SmokeTo      RGB
	BackfireHot  RGB
	BackfireCool RGB
	Ground       RGB
}{
	SmokeFrom:    RGB{R: 0.78, G: 0.78, B: 0.80},
	SmokeTo:      RGB{R: 0.42, G: 0.42, B: 0.46},
	BackfireHot:  RGB{R: 1.00, G: 0.62, B: 0.12},
	BackfireCool: RGB{R: 0.85, G: 0.18, B: 0.05},
	Ground:       RGB{R: 0.13, G: 0.13, B: 0.15},
}
