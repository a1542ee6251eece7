package s3o

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// two triangles meeting at a 90 degree ridge along the z axis
func ridgePiece() *Piece {
	p := NewPiece("ridge")
	p.Vertices = []Vertex{
		{Position: mgl32.Vec3{-1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec3{0, 1, 1}},
		{Position: mgl32.Vec3{1, 0, 0}},
	}
	p.Indices = []int32{0, 2, 1, 1, 2, 3}
	return p
}

func TestRecalculateNormalsSmooth(t *testing.T) {
	p := ridgePiece()
	p.RecalculateNormals(180, false)

	if len(p.Vertices) != 6 || len(p.Indices) != 6 {
		t.Fatalf("expected exploded corners: %d vertices %d indices",
			len(p.Vertices), len(p.Indices))
	}

	// the shared ridge corners get the averaged normal of both faces
	for i, v := range p.Vertices {
		if v.Position[0] != 0 {
			continue
		}
		if math.Abs(float64(v.Normal.Len()-1)) > 1e-4 {
			t.Errorf("vertex %d normal not unit: %v", i, v.Normal)
		}
		if v.Normal[0] != 0 || v.Normal[1] <= 0 {
			t.Errorf("vertex %d ridge normal = %v, want averaged upward", i, v.Normal)
		}
	}
}

func TestRecalculateNormalsHardEdge(t *testing.T) {
	p := ridgePiece()
	p.RecalculateNormals(10, false)

	// 90 degrees apart is far over a 10 degree smoothing threshold,
	// so every corner keeps its own face normal
	for i := range p.Vertices {
		face := i / 3
		a := p.Vertices[face*3].Position
		b := p.Vertices[face*3+1].Position
		c := p.Vertices[face*3+2].Position
		want := b.Sub(a).Cross(c.Sub(a)).Normalize()
		if p.Vertices[i].Normal.Sub(want).Len() > 1e-4 {
			t.Errorf("vertex %d normal = %v, want face normal %v", i, p.Vertices[i].Normal, want)
		}
	}
}

func TestRecalculateNormalsSkipsNonTriangles(t *testing.T) {
	p := NewPiece("strip")
	p.PrimitiveType = PrimitiveTriangleStrips
	p.Vertices = []Vertex{{}, {}, {}}
	p.Indices = []int32{0, 1, 2}

	p.RecalculateNormals(60, false)

	if len(p.Vertices) != 3 {
		t.Errorf("strip piece was exploded")
	}
}
