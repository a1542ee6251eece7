package s3o

import (
	"reflect"
	"testing"
)

func TestTriangulateFaces(t *testing.T) {
	tests := []struct {
		name string
		pt   PrimitiveType
		in   []int32
		want []int32
	}{
		{"triangles untouched", PrimitiveTriangles,
			[]int32{0, 1, 2, 2, 1, 3},
			[]int32{0, 1, 2, 2, 1, 3}},
		{"strip pair windows", PrimitiveTriangleStrips,
			[]int32{0, 1, 2, 3},
			[]int32{0, 1, 1, 2}},
		{"strip sentinel skipped", PrimitiveTriangleStrips,
			[]int32{0, 1, 2, -1, 3, 4, 5},
			[]int32{0, 1, 1, 2, 3, 4}},
		{"strip too short", PrimitiveTriangleStrips,
			[]int32{0, 1},
			[]int32{}},
		{"quad split", PrimitiveQuads,
			[]int32{0, 1, 2, 3},
			[]int32{0, 1, 0, 2, 3}},
		{"two quads", PrimitiveQuads,
			[]int32{0, 1, 2, 3, 4, 5, 6, 7},
			[]int32{0, 1, 0, 2, 3, 4, 5, 4, 6, 7}},
		{"quad count not multiple of four", PrimitiveQuads,
			[]int32{0, 1, 2, 3, 4},
			[]int32{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := NewPiece("p")
			p.PrimitiveType = test.pt
			p.Indices = append([]int32(nil), test.in...)

			p.TriangulateFaces(false)

			if p.PrimitiveType != PrimitiveTriangles {
				t.Errorf("primitive type = %v after triangulation", p.PrimitiveType)
			}
			got := p.Indices
			if len(got) == 0 && len(test.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("indices = %v, want %v", got, test.want)
			}
		})
	}
}

func TestTriangulateFacesIdempotent(t *testing.T) {
	p := NewPiece("p")
	p.PrimitiveType = PrimitiveQuads
	p.Indices = []int32{0, 1, 2, 3}

	p.TriangulateFaces(false)
	once := append([]int32(nil), p.Indices...)
	p.TriangulateFaces(false)

	if !reflect.DeepEqual(p.Indices, once) {
		t.Errorf("second run changed indices: %v -> %v", once, p.Indices)
	}
}

func TestTriangulateFacesRecursive(t *testing.T) {
	root := NewPiece("root")
	child := NewPiece("child")
	child.PrimitiveType = PrimitiveTriangleStrips
	child.Indices = []int32{0, 1, 2}
	root.AddChild(child)

	m := &Model{RootPiece: root}
	m.TriangulateFaces()

	if child.PrimitiveType != PrimitiveTriangles {
		t.Errorf("child not triangulated: %v", child.PrimitiveType)
	}
	if !reflect.DeepEqual(child.Indices, []int32{0, 1}) {
		t.Errorf("child indices = %v, want [0 1]", child.Indices)
	}
}
