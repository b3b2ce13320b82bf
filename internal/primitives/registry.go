package primitives

import (
	"unsafe"

	"product-viewer/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry owns the GPU meshes for named primitives and the lit shader shared by primitives and
// loaded models. Everything is created lazily so it happens after the window/OpenGL context exists.
type Registry struct {
	cache   map[string]cached
	shader  rl.Shader
	loaded  bool
	viewPos [3]float32
	rig     scene.RigUniforms
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{cache: make(map[string]cached)}
}

// SetView sets the camera position and light rig for this frame. Call once per frame before drawing.
func (r *Registry) SetView(viewPos [3]float32, lights []scene.Light) {
	r.viewPos = viewPos
	r.rig = scene.Uniforms(lights)
	r.setUniforms()
}

// Shader returns the lit shader, loading it on first use. It may be invalid if compilation failed,
// in which case raylib's default shader stays in use.
func (r *Registry) Shader() rl.Shader {
	if !r.loaded {
		r.shader = rl.LoadShaderFromMemory(litVS, litFS)
		r.loaded = true
	}
	return r.shader
}

// Shade puts the lit shader on every material of model. glTF files can carry several materials;
// their textures and colors are kept.
func (r *Registry) Shade(model *rl.Model) {
	shader := r.Shader()
	if !rl.IsShaderValid(shader) || model.MaterialCount == 0 {
		return
	}
	materials := unsafe.Slice(model.Materials, model.MaterialCount)
	for i := range materials {
		materials[i].Shader = shader
	}
}

// Draw draws one primitive centered at pos with a uniform scale. Only "cube" is known; other names
// draw nothing and return false. Must be called between BeginMode3D and EndMode3D.
func (r *Registry) Draw(prim string, pos scene.Vec3, scale float32, color scene.Color) bool {
	c, ok := r.ensure(prim)
	if !ok {
		return false
	}
	if scale == 0 {
		scale = 1
	}
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.NewColor(color.R, color.G, color.B, color.A)
	}
	transform := rl.MatrixMultiply(rl.MatrixScale(scale, scale, scale), rl.MatrixTranslate(pos[0], pos[1], pos[2]))
	rl.DrawMesh(c.mesh, c.mtl, transform)
	return true
}

func (r *Registry) ensure(prim string) (cached, bool) {
	if c, ok := r.cache[prim]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch prim {
	case "cube":
		mesh = rl.GenMeshCube(1, 1, 1)
	default:
		return cached{}, false
	}
	mtl := rl.LoadMaterialDefault()
	if shader := r.Shader(); rl.IsShaderValid(shader) {
		mtl.Shader = shader
	}
	c := cached{mesh: mesh, mtl: mtl}
	r.cache[prim] = c
	return c, true
}

// Unload frees the meshes. The shader is freed with it.
func (r *Registry) Unload() {
	for k, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, k)
	}
	if r.loaded && rl.IsShaderValid(r.shader) {
		rl.UnloadShader(r.shader)
	}
	r.loaded = false
}

const (
	specularPower    = float32(48)
	specularStrength = float32(0.25)
)

// setUniforms uploads the view and rig. Values are copied into local arrays before crossing cgo.
func (r *Registry) setUniforms() {
	shader := r.Shader()
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := []float32{r.viewPos[0], r.viewPos[1], r.viewPos[2]}
	amb := []float32{r.rig.Ambient[0], r.rig.Ambient[1], r.rig.Ambient[2]}
	dirs := make([]float32, 0, 3*scene.MaxDirectional)
	colors := make([]float32, 0, 3*scene.MaxDirectional)
	for i := 0; i < scene.MaxDirectional; i++ {
		dirs = append(dirs, r.rig.Dirs[i][:]...)
		colors = append(colors, r.rig.Colors[i][:]...)
	}
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos, rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb, rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDirs"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, dirs, rl.ShaderUniformVec3, scene.MaxDirectional)
	}
	if loc := rl.GetShaderLocation(shader, "lightColors"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, colors, rl.ShaderUniformVec3, scene.MaxDirectional)
	}
	if loc := rl.GetShaderLocation(shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularStrength}, rl.ShaderUniformFloat)
	}
}

// Unused light slots have a zero color and are skipped by the fragment shader.
const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 mvp;
uniform mat4 matModel;
uniform mat4 matNormal;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  fragPosition = vec3(matModel * vec4(vertexPosition, 1.0));
  fragTexCoord = vertexTexCoord;
  fragNormal = normalize(vec3(matNormal * vec4(vertexNormal, 0.0)));
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 ambient;
uniform vec3 lightDirs[2];
uniform vec3 lightColors[2];
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = texture(texture0, fragTexCoord) * colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 V = normalize(viewPos - fragPosition);
  vec3 lit = ambient * tint.rgb;
  for (int i = 0; i < 2; i++) {
    if (dot(lightColors[i], lightColors[i]) == 0.0) continue;
    vec3 L = normalize(lightDirs[i]);
    float NdotL = max(dot(N, L), 0.0);
    lit += tint.rgb * NdotL * lightColors[i];
    if (NdotL > 0.0) {
      float highlight = pow(max(dot(N, normalize(L + V)), 0.0), specularPower) * specularStrength;
      lit += lightColors[i] * highlight;
    }
  }
  finalColor = vec4(lit, tint.a);
}
`
)
