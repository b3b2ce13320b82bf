package graphics

import (
	"os"

	"github.com/sirupsen/logrus"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	backdropScale = 1000
	// Width/height ratio of an equirectangular panorama is about 2:1.
	equirectAspectMin = 1.8
	equirectAspectMax = 2.2
)

// Backdrop is the optional environment image drawn behind the product, either a cubemap or an
// equirectangular panorama. A nil *Backdrop draws nothing.
type Backdrop struct {
	path     string
	equirect bool
	pending  bool
	loaded   bool

	tex       rl.Texture2D
	mesh      rl.Mesh
	mtl       rl.Material
	camPosLoc int32
	texLoc    int32
}

// NewBackdrop checks the image at path and decides cubemap or panorama. GPU resources are created
// on the first Draw, once the window exists. It returns nil when path is empty or unreadable.
func NewBackdrop(path string, log logrus.FieldLogger) *Backdrop {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		log.WithError(err).Warn("environment image not found, using a plain background")
		return nil
	}
	img := rl.LoadImage(path)
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		log.WithField("path", path).Warn("environment image could not be decoded")
		return nil
	}
	aspect := float32(img.Width) / float32(img.Height)
	rl.UnloadImage(img)
	return &Backdrop{
		path:     path,
		equirect: aspect >= equirectAspectMin && aspect <= equirectAspectMax,
		pending:  true,
	}
}

func (b *Backdrop) ensureLoaded() {
	if !b.pending {
		return
	}
	b.pending = false

	if !b.equirect {
		img := rl.LoadImage(b.path)
		if img == nil || img.Width <= 0 || img.Height <= 0 {
			return
		}
		b.tex = rl.LoadTextureCubemap(img, rl.CubemapLayoutAutoDetect)
		rl.UnloadImage(img)
		if !rl.IsTextureValid(b.tex) {
			return
		}
		b.mesh = rl.GenMeshCube(1, 1, 1)
		b.mtl = rl.LoadMaterialDefault()
		rl.SetMaterialTexture(&b.mtl, rl.MapCubemap, b.tex)
		b.loaded = true
		return
	}

	b.tex = rl.LoadTexture(b.path)
	if !rl.IsTextureValid(b.tex) {
		return
	}
	shader := rl.LoadShaderFromMemory(equirectVS, equirectFS)
	if !rl.IsShaderValid(shader) {
		rl.UnloadTexture(b.tex)
		return
	}
	b.mesh = rl.GenMeshCube(1, 1, 1)
	b.mtl = rl.LoadMaterialDefault()
	b.mtl.Shader = shader
	b.camPosLoc = rl.GetShaderLocation(shader, "cameraPosition")
	b.texLoc = rl.GetShaderLocation(shader, "panorama")
	b.loaded = true
}

// Draw draws the backdrop as a large cube centered on the camera. Call first inside BeginMode3D.
func (b *Backdrop) Draw(camPos rl.Vector3) {
	if b == nil {
		return
	}
	b.ensureLoaded()
	if !b.loaded {
		return
	}
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	transform := rl.MatrixMultiply(
		rl.MatrixScale(backdropScale, backdropScale, backdropScale),
		rl.MatrixTranslate(camPos.X, camPos.Y, camPos.Z),
	)
	if b.equirect {
		if b.camPosLoc >= 0 {
			rl.SetShaderValueV(b.mtl.Shader, b.camPosLoc, []float32{camPos.X, camPos.Y, camPos.Z}, rl.ShaderUniformVec3, 1)
		}
		if b.texLoc >= 0 {
			rl.SetShaderValueTexture(b.mtl.Shader, b.texLoc, b.tex)
		}
	}
	rl.DrawMesh(b.mesh, b.mtl, transform)
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
}

// Unload frees the GPU resources.
func (b *Backdrop) Unload() {
	if b == nil || !b.loaded {
		return
	}
	rl.UnloadTexture(b.tex)
	rl.UnloadMesh(&b.mesh)
	if b.equirect {
		rl.UnloadShader(b.mtl.Shader)
	}
	b.loaded = false
}

const (
	equirectVS = `#version 330
in vec3 vertexPosition;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragWorldPos;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragWorldPos = worldPos.xyz;
  gl_Position = matProjection * matView * worldPos;
}
`
	equirectFS = `#version 330
in vec3 fragWorldPos;
out vec4 finalColor;
uniform sampler2D panorama;
uniform vec3 cameraPosition;
void main() {
  vec3 dir = normalize(fragWorldPos - cameraPosition);
  float u = atan(dir.z, dir.x) / 6.28318530718 + 0.5;
  float v = 0.5 - asin(clamp(dir.y, -1.0, 1.0)) / 3.14159265359;
  finalColor = texture(panorama, vec2(u, v));
}
`
)
