package scene

import "github.com/chewxy/math32"

// MaxDirectional is how many directional lights the lit shader accepts.
const MaxDirectional = 2

// RigUniforms is a light rig flattened into shader inputs.
type RigUniforms struct {
	Ambient   [3]float32
	Dirs      [MaxDirectional][3]float32 // unit vectors pointing towards each light
	Colors    [MaxDirectional][3]float32 // color premultiplied by intensity
	NumLights int32
}

// Uniforms sums the ambient lights and keeps the first MaxDirectional directional lights.
// A directional light placed at the origin has no direction and is skipped.
func Uniforms(lights []Light) RigUniforms {
	var u RigUniforms
	for _, l := range lights {
		c := l.Color.scaled(l.Intensity)
		switch l.Kind {
		case LightAmbient:
			for i := range u.Ambient {
				u.Ambient[i] += c[i]
			}
		case LightDirectional:
			if int(u.NumLights) == MaxDirectional {
				continue
			}
			p := l.Position
			n := math32.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
			if n == 0 {
				continue
			}
			u.Dirs[u.NumLights] = [3]float32{p[0] / n, p[1] / n, p[2] / n}
			u.Colors[u.NumLights] = c
			u.NumLights++
		}
	}
	return u
}

func (c Color) scaled(k float32) [3]float32 {
	return [3]float32{
		float32(c.R) / 255 * k,
		float32(c.G) / 255 * k,
		float32(c.B) / 255 * k,
	}
}
