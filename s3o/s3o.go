// Package s3o implements the Spring/Recoil engine ".s3o" unit-model
// format: an offset-based little-endian binary layout holding a tree of
// rigid pieces, plus the mesh passes the community tooling runs on it.
package s3o

import (
	"github.com/go-gl/mathgl/mgl32"
)

type PrimitiveType int32

const (
	PrimitiveTriangles      PrimitiveType = 0
	PrimitiveTriangleStrips PrimitiveType = 1
	PrimitiveQuads          PrimitiveType = 2
)

func (pt PrimitiveType) String() string {
	switch pt {
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveTriangleStrips:
		return "triangle strips"
	case PrimitiveQuads:
		return "quads"
	}
	return "unknown"
}

// Vertex is a plain value; the optimizer deduplicates on exact bit
// equality of all three fields.
//
// TexCoords[0] is overloaded: the fractional part at 1/16384
// granularity carries a packed ambient-occlusion scalar, the coarse
// part is the real U coordinate. See AmbientOcclusion.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
}

// Piece is one rigid node of the model hierarchy. It owns its
// vertices, indices and children; ParentOffset is expressed in the
// parent's local space.
type Piece struct {
	Name          string
	ParentOffset  mgl32.Vec3
	PrimitiveType PrimitiveType
	Vertices      []Vertex
	Indices       []int32
	Children      []*Piece

	parent *Piece
}

func NewPiece(name string) *Piece {
	return &Piece{
		Name:          name,
		PrimitiveType: PrimitiveTriangles,
	}
}

// Parent returns the non-owning back-reference set up by decode or
// AddChild. Nil for the root.
func (p *Piece) Parent() *Piece {
	return p.parent
}

func (p *Piece) AddChild(child *Piece) {
	child.parent = p
	p.Children = append(p.Children, child)
}

// Traverse visits the piece and every descendant depth-first, in
// declaration order.
func (p *Piece) Traverse(visit func(*Piece)) {
	visit(p)
	for _, child := range p.Children {
		child.Traverse(visit)
	}
}

// IsEmitPiece reports whether the piece is an aim/emit marker rather
// than visible geometry: 0-2 vertices, no faces.
func (p *Piece) IsEmitPiece() bool {
	return len(p.Indices) == 0 && len(p.Vertices) <= 2
}

// Model is the root object of one .s3o file. Single-owner value tree;
// one decode/transform/encode pipeline works on it at a time.
type Model struct {
	CollisionRadius float32
	Height          float32
	Midpoint        mgl32.Vec3
	TexturePath1    string
	TexturePath2    string
	RootPiece       *Piece
}
