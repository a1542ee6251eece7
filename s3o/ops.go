package s3o

// MergeChildren folds every descendant's geometry into this piece.
// Child vertices are rebased by the child's ParentOffset and child
// indices shifted past the parent's vertices, bottom-up, so the result
// is a single flat piece with identical world-space geometry.
func (p *Piece) MergeChildren() {
	for _, child := range p.Children {
		child.MergeChildren()
	}

	indexOffset := int32(len(p.Vertices))
	for _, child := range p.Children {
		for _, v := range child.Vertices {
			v.Position = v.Position.Add(child.ParentOffset)
			p.Vertices = append(p.Vertices, v)
		}
		for _, index := range child.Indices {
			p.Indices = append(p.Indices, index+indexOffset)
		}
		indexOffset += int32(len(child.Vertices))
	}
	p.Children = nil
}

// Rescale multiplies the piece subtree's offsets and vertex positions
// by scale. Normals and texture coordinates are untouched.
func (p *Piece) Rescale(scale float32) {
	p.ParentOffset = p.ParentOffset.Mul(scale)
	for i := range p.Vertices {
		p.Vertices[i].Position = p.Vertices[i].Position.Mul(scale)
	}
	for _, child := range p.Children {
		child.Rescale(scale)
	}
}

// Rescale scales the whole model, including its header metrics.
func (m *Model) Rescale(scale float32) {
	m.CollisionRadius *= scale
	m.Height *= scale
	m.Midpoint = m.Midpoint.Mul(scale)
	m.RootPiece.Rescale(scale)
}
