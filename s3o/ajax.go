package s3o

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ChrisFloofyKitsune/s3o-browser/config"
	"github.com/ChrisFloofyKitsune/s3o-browser/vertexcache"
)

// view structs handed to the web ui as json

type AjaxModel struct {
	CollisionRadius float32
	Height          float32
	Midpoint        mgl32.Vec3
	TexturePath1    string
	TexturePath2    string
	PieceCount      int
	VertexCount     int
	TriangleCount   int
	Root            *AjaxPiece
}

type AjaxPiece struct {
	Name          string
	ParentOffset  mgl32.Vec3
	PrimitiveType string
	NumVertices   int
	NumIndices    int
	TriangleCount int
	ACMR          float64
	AOMin         float32
	AOMax         float32
	IsEmit        bool
	Children      []*AjaxPiece
}

func (m *Model) Marshal() *AjaxModel {
	am := &AjaxModel{
		CollisionRadius: m.CollisionRadius,
		Height:          m.Height,
		Midpoint:        m.Midpoint,
		TexturePath1:    m.TexturePath1,
		TexturePath2:    m.TexturePath2,
		Root:            marshalPiece(m.RootPiece),
	}
	m.RootPiece.Traverse(func(p *Piece) {
		am.PieceCount++
		am.VertexCount += len(p.Vertices)
		if p.PrimitiveType == PrimitiveTriangles {
			am.TriangleCount += len(p.Indices) / 3
		}
	})
	return am
}

func marshalPiece(p *Piece) *AjaxPiece {
	ap := &AjaxPiece{
		Name:          p.Name,
		ParentOffset:  p.ParentOffset,
		PrimitiveType: p.PrimitiveType.String(),
		NumVertices:   len(p.Vertices),
		NumIndices:    len(p.Indices),
		IsEmit:        p.IsEmitPiece(),
	}

	if p.PrimitiveType == PrimitiveTriangles && len(p.Indices)%3 == 0 {
		ap.TriangleCount = len(p.Indices) / 3
		ap.ACMR = pieceACMR(p)
	}

	aoMin, aoMax := float32(1), float32(0)
	for i := range p.Vertices {
		ao := p.Vertices[i].AmbientOcclusion()
		if ao < aoMin {
			aoMin = ao
		}
		if ao > aoMax {
			aoMax = ao
		}
	}
	if len(p.Vertices) > 0 {
		ap.AOMin, ap.AOMax = aoMin, aoMax
	}

	for _, child := range p.Children {
		ap.Children = append(ap.Children, marshalPiece(child))
	}
	return ap
}

func pieceACMR(p *Piece) float64 {
	tris := make([]vertexcache.Triangle, 0, len(p.Indices)/3)
	for t := 0; t+2 < len(p.Indices); t += 3 {
		tris = append(tris, vertexcache.Triangle{
			int(p.Indices[t]), int(p.Indices[t+1]), int(p.Indices[t+2])})
	}
	return vertexcache.AverageTransformToVertexRatio(tris, config.VertexCacheSize())
}
