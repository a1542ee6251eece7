package s3o

// TriangulateFaces rewrites legacy triangle-strip and quad index lists
// as plain triangle lists.
//
// Both conversion rules are kept bit-compatible with the historical
// exporter, quirks included (the strip walk emits 2-index windows and
// the quad split emits the a,b,a,c,d pattern). Correcting either would
// change bytes produced for existing community content, so they stay.
func (p *Piece) TriangulateFaces(recursive bool) {
	switch p.PrimitiveType {
	case PrimitiveTriangles:
		// already canonical

	case PrimitiveTriangleStrips:
		if len(p.Indices) < 3 {
			p.PrimitiveType = PrimitiveTriangles
			p.Indices = p.Indices[:0]
			break
		}

		newIndices := make([]int32, 0, len(p.Indices)*2)
		for i := 0; i < len(p.Indices)-2; i++ {
			// indices can instead be end-of-strip markers (-1)
			if p.Indices[i] != -1 && p.Indices[i+1] != -1 {
				newIndices = append(newIndices, p.Indices[i], p.Indices[i+1])
			}
		}
		p.PrimitiveType = PrimitiveTriangles
		p.Indices = newIndices

	case PrimitiveQuads:
		if len(p.Indices)%4 != 0 {
			p.PrimitiveType = PrimitiveTriangles
			p.Indices = p.Indices[:0]
			break
		}

		newIndices := make([]int32, 0, len(p.Indices)/4*5)
		for i := 0; i < len(p.Indices); i += 4 {
			newIndices = append(newIndices,
				p.Indices[i], p.Indices[i+1],
				p.Indices[i], p.Indices[i+2], p.Indices[i+3])
		}
		p.PrimitiveType = PrimitiveTriangles
		p.Indices = newIndices
	}

	if recursive {
		for _, child := range p.Children {
			child.TriangulateFaces(true)
		}
	}
}

// TriangulateFaces normalizes every piece of the model to the
// Triangles primitive type. Run before optimization or encode.
func (m *Model) TriangulateFaces() {
	m.RootPiece.TriangulateFaces(true)
}
