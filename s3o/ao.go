package s3o

import "math"

// Ambient occlusion is packed into the last few bits of the texture U
// coordinate as a miniscule fractional value. #BlameBeherith for this
// fractional float abuse.
const aoGranularity = 1 << 14

// AmbientOcclusion unpacks the AO scalar hidden in TexCoords[0].
func (v *Vertex) AmbientOcclusion() float32 {
	ao := math.Mod(float64(v.TexCoords[0])*aoGranularity, 1.0)
	if ao < 0 {
		ao += 1.0
	}
	return float32(ao)
}

// SetAmbientOcclusion re-packs the AO payload, keeping the coarse
// 14-bit-quantized U value intact. The value is clamped away from 0
// and 1 so float rounding cannot eat the fraction on round-trip.
func (v *Vertex) SetAmbientOcclusion(value float32) {
	if value < 0.02 {
		value = 0.02
	} else if value > 0.98 {
		value = 0.98
	}

	u := float64(v.TexCoords[0])
	v.TexCoords[0] = float32(math.Floor(u*aoGranularity)/aoGranularity +
		float64(value)/aoGranularity)
}
