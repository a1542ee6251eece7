package s3o

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAmbientOcclusionRoundTrip(t *testing.T) {
	uValues := []float32{0, 0.25, 0.73, -0.3, 5.7}
	aoValues := []float32{0.02, 0.25, 0.5, 0.75, 0.98}

	for _, u := range uValues {
		for _, ao := range aoValues {
			v := Vertex{TexCoords: mgl32.Vec2{u, 0}}
			v.SetAmbientOcclusion(ao)
			got := v.AmbientOcclusion()
			// recovery error grows with the float32 ulp of u
			if math.Abs(float64(got-ao)) > 1e-2 {
				t.Errorf("u=%v ao=%v: got %v back", u, ao, got)
			}
		}
	}
}

func TestAmbientOcclusionClamped(t *testing.T) {
	tests := []struct {
		set, want float32
	}{
		{-1, 0.02},
		{0, 0.02},
		{1, 0.98},
		{2, 0.98},
	}
	for _, test := range tests {
		v := Vertex{TexCoords: mgl32.Vec2{0.5, 0}}
		v.SetAmbientOcclusion(test.set)
		if got := v.AmbientOcclusion(); math.Abs(float64(got-test.want)) > 1e-2 {
			t.Errorf("set %v: got %v, want %v", test.set, got, test.want)
		}
	}
}

// Repeated re-packing must not walk the coarse U coordinate: the
// quantized real U survives any number of AO writes.
func TestAmbientOcclusionCoarseUStable(t *testing.T) {
	v := Vertex{TexCoords: mgl32.Vec2{0.73, 0}}
	v.SetAmbientOcclusion(0.5)
	coarse := math.Floor(float64(v.TexCoords[0]) * aoGranularity)

	for i := 0; i < 20; i++ {
		v.SetAmbientOcclusion(float32(i) / 20)
		if got := math.Floor(float64(v.TexCoords[0]) * aoGranularity); got != coarse {
			t.Fatalf("pass %d: coarse u drifted from %v to %v", i, coarse, got)
		}
	}
}

func TestAmbientOcclusionNegativeU(t *testing.T) {
	v := Vertex{TexCoords: mgl32.Vec2{-0.125, 0}}
	got := v.AmbientOcclusion()
	if got < 0 || got >= 1 {
		t.Fatalf("ao of negative u = %v, want within [0,1)", got)
	}
}
