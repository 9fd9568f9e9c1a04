package glyph

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/textensions/internal/engine/shader"
	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/pkg/math"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec4 aColor;

uniform mat4 uProjection;

out vec2 vTexCoord;
out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vTexCoord = aTexCoord;
	vColor = aColor;
}
`

// The atlas is a single-channel coverage mask.
const fragmentShaderSource = `
#version 410 core

uniform sampler2D uTexture;

in vec2 vTexCoord;
in vec4 vColor;

out vec4 FragColor;

void main() {
	float coverage = texture(uTexture, vTexCoord).r;
	FragColor = vec4(vColor.rgb, vColor.a * coverage);
}
`

// Renderer draws text meshes with OpenGL in a y-up screen space whose origin
// is the bottom-left corner of the window.
type Renderer struct {
	width, height           int
	pixelWidth, pixelHeight int

	program *shader.Program
	vao     uint32
	vbo     uint32

	texture     uint32
	atlas       *textmesh.Atlas
	texRevision uint64

	vertices []float32
	log      *zap.Logger
}

// New creates a renderer for a width x height window. A current GL context
// is required.
func New(width, height int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init OpenGL: %w", err)
	}

	r := &Renderer{
		width:       width,
		height:      height,
		pixelWidth:  width,
		pixelHeight: height,
		vertices:    make([]float32, 0, 4096),
		log:         logger.Named("glyph"),
	}

	var err error
	r.program, err = shader.Compile(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("create glyph shader: %w", err)
	}

	r.createBuffers()
	gl.GenTextures(1, &r.texture)

	r.log.Info("renderer created",
		zap.String("gl_version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return r, nil
}

// createBuffers creates the VAO/VBO for textured glyph quads.
func (r *Renderer) createBuffers() {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(FloatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 5*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Resize updates the projection size and the framebuffer size in pixels.
func (r *Renderer) Resize(width, height, pixelWidth, pixelHeight int) {
	r.width, r.height = width, height
	r.pixelWidth, r.pixelHeight = pixelWidth, pixelHeight
}

func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Clear resets the viewport and clears it to c.
func (r *Renderer) Clear(c textmesh.Color32) {
	gl.Viewport(0, 0, int32(r.pixelWidth), int32(r.pixelHeight))
	gl.ClearColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Draw renders src translated by offset.
func (r *Renderer) Draw(src Source, offset math.Vec2) {
	r.vertices = AppendVertices(r.vertices[:0], src, offset)
	if len(r.vertices) == 0 {
		return
	}
	r.syncAtlas(src.Atlas())

	var prevBlend int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.program.Use()
	r.program.SetMat4("uProjection", math.Ortho(0, float32(r.width), 0, float32(r.height), -1, 1))
	r.program.SetInt("uTexture", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.vertices)*4, unsafe.Pointer(&r.vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.vertices)/FloatsPerVertex))

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
}

// syncAtlas re-uploads the atlas texture when it changed since the last draw.
func (r *Renderer) syncAtlas(atlas *textmesh.Atlas) {
	if atlas == nil {
		return
	}
	if atlas == r.atlas && atlas.Revision() == r.texRevision {
		return
	}

	img := atlas.Image()
	size := img.Rect.Size()

	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(size.X), int32(size.Y), 0,
		gl.RED, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.atlas = atlas
	r.texRevision = atlas.Revision()
	r.log.Debug("atlas uploaded",
		zap.Int("width", size.X),
		zap.Int("height", size.Y),
		zap.Uint64("revision", r.texRevision),
	)
}

// ReadPixels returns the framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.pixelWidth, r.pixelHeight
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}
