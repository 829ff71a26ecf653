package sim

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Renderer owns the GL programs and buffers for the smoke sprites and
// the ground reference grid.
type Renderer struct {
	smokeProg uint32
	smokeVAO  uint32
	posVBO    uint32
	colVBO    uint32
	sizeVBO   uint32

	smUViewProj   int32
	smUPointScale int32

	gridProg    uint32
	gridVAO     uint32
	gridVBO     uint32
	gridVerts   int32
	grUViewProj int32
	grUColor    int32
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{}

	prog, err := linkProgram(smokeVertSrc, smokeFragSrc)
	if err != nil {
		return nil, fmt.Errorf("smoke program: %w", err)
	}
	r.smokeProg = prog
	r.smUViewProj = gl.GetUniformLocation(prog, gl.Str("uViewProj\x00"))
	r.smUPointScale = gl.GetUniformLocation(prog, gl.Str("uPointScale\x00"))

	gl.GenVertexArrays(1, &r.smokeVAO)
	gl.BindVertexArray(r.smokeVAO)

	// Three flat stream buffers preallocated at the particle cap; each
	// frame uploads only the live prefix.
	gl.GenBuffers(1, &r.posVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, MaxParticles*3*4, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, nil)

	gl.GenBuffers(1, &r.colVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colVBO)
	gl.BufferData(gl.ARRAY_BUFFER, MaxParticles*4*4, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 0, nil)

	gl.GenBuffers(1, &r.sizeVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.sizeVBO)
	gl.BufferData(gl.ARRAY_BUFFER, MaxParticles*4, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 1, gl.FLOAT, false, 0, nil)

	if err := r.initGrid(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) initGrid() error {
	prog, err := linkProgram(gridVertSrc, gridFragSrc)
	if err != nil {
		return fmt.Errorf("grid program: %w", err)
	}
	r.gridProg = prog
	r.grUViewProj = gl.GetUniformLocation(prog, gl.Str("uViewProj\x00"))
	r.grUColor = gl.GetUniformLocation(prog, gl.Str("uColor\x00"))

	// Ground grid on the XZ plane, 1 m spacing.
	const half = 6
	var verts []float32
	for i := -half; i <= half; i++ {
		fi := float32(i)
		verts = append(verts,
			fi, 0, -half, fi, 0, half,
			-half, 0, fi, half, 0, fi,
		)
	}
	r.gridVerts = int32(len(verts) / 3)

	gl.GenVertexArrays(1, &r.gridVAO)
	gl.BindVertexArray(r.gridVAO)
	gl.GenBuffers(1, &r.gridVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.gridVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, nil)
	return nil
}

// DrawSmoke uploads the live prefix of the emitter's flat buffers and
// draws count point sprites. Slots past count are never read.
func (r *Renderer) DrawSmoke(e *ExhaustEmitter, viewProj [16]float32, pointScale float32) {
	count := e.DrawCount
	if count <= 0 {
		return
	}
	if count > MaxParticles {
		count = MaxParticles
	}

	gl.UseProgram(r.smokeProg)
	gl.BindVertexArray(r.smokeVAO)
	gl.UniformMatrix4fv(r.smUViewProj, 1, false, &viewProj[0])
	gl.Uniform1f(r.smUPointScale, pointScale)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.posVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, count*3*4, gl.Ptr(&e.Positions[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, count*4*4, gl.Ptr(&e.Colors[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.sizeVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, count*4, gl.Ptr(&e.Sizes[0]))

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	gl.DrawArrays(gl.POINTS, 0, int32(count))
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

// DrawGrid draws the ground reference lines.
func (r *Renderer) DrawGrid(viewProj [16]float32) {
	gl.UseProgram(r.gridProg)
	gl.BindVertexArray(r.gridVAO)
	gl.UniformMatrix4fv(r.grUViewProj, 1, false, &viewProj[0])
	gl.Uniform4f(r.grUColor, 0.30, 0.30, 0.34, 1.0)
	gl.DrawArrays(gl.LINES, 0, r.gridVerts)
}

func (r *Renderer) Destroy() {
	gl.DeleteBuffers(1, &r.posVBO)
	gl.DeleteBuffers(1, &r.colVBO)
	gl.DeleteBuffers(1, &r.sizeVBO)
	gl.DeleteBuffers(1, &r.gridVBO)
	gl.DeleteVertexArrays(1, &r.smokeVAO)
	gl.DeleteVertexArrays(1, &r.gridVAO)
	gl.DeleteProgram(r.smokeProg)
	gl.DeleteProgram(r.gridProg)
}
