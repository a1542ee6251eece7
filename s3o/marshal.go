package s3o

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ChrisFloofyKitsune/s3o-browser/utils"
)

// Validate checks the in-memory invariants encoding relies on. A
// violation is a caller programming error, not recoverable corruption.
func (m *Model) Validate() error {
	if m.RootPiece == nil {
		return errors.Errorf("model has no root piece")
	}
	var err error
	m.RootPiece.Traverse(func(p *Piece) {
		if err != nil {
			return
		}
		for i, index := range p.Indices {
			if index == -1 && p.PrimitiveType == PrimitiveTriangleStrips {
				continue // end-of-strip sentinel
			}
			if index < 0 || int(index) >= len(p.Vertices) {
				err = errors.Errorf("piece %q: index %d at position %d is out of range (%d vertices)",
					p.Name, index, i, len(p.Vertices))
			}
		}
	})
	return err
}

// MarshalBuffer serializes the model to .s3o bytes: header, both
// texture paths, then the root subtree depth-first with every piece's
// header, name, child table, vertex and index data contiguous.
//
// No "empty offset bias" is applied: when a piece has no children,
// vertices or indices, the corresponding offset may equal the first
// byte past its header. Decoders never dereference an offset whose
// count is zero, so this round-trips cleanly (asserted by tests).
func (m *Model) MarshalBuffer() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	tex1 := utils.StringToBytes(m.TexturePath1, true)
	tex2 := utils.StringToBytes(m.TexturePath2, true)

	tex1Offset := int32(headerSize)
	tex2Offset := tex1Offset + int32(len(tex1))
	rootOffset := tex2Offset + int32(len(tex2))

	var data bytes.Buffer
	data.Write(utils.AsBytes(&rawHeader{
		Magic:           magic,
		Version:         0,
		Radius:          m.CollisionRadius,
		Height:          m.Height,
		Mid:             [3]float32{m.Midpoint[0], m.Midpoint[1], m.Midpoint[2]},
		RootPieceOffset: rootOffset,
		Texture1Offset:  tex1Offset,
		Texture2Offset:  tex2Offset,
	}))
	data.Write(tex1)
	data.Write(tex2)
	data.Write(m.RootPiece.marshal(rootOffset))

	return data.Bytes(), nil
}

// marshal serializes the piece subtree, offset being the absolute
// position its header will land at. Child offsets are only knowable
// after each child is serialized, so the child table is written as
// zeros first and fixed up afterwards.
func (p *Piece) marshal(offset int32) []byte {
	name := utils.StringToBytes(p.Name, true)

	nameOffset := offset + pieceHeaderSize
	childrenOffset := nameOffset + int32(len(name))
	vertexOffset := childrenOffset + int32(len(p.Children)*childEntrySize)
	indexOffset := vertexOffset + int32(len(p.Vertices)*vertexSize)

	var data bytes.Buffer
	data.Write(utils.AsBytes(&rawPiece{
		NameOffset:     nameOffset,
		NumChildren:    int32(len(p.Children)),
		ChildrenOffset: childrenOffset,
		NumVertices:    int32(len(p.Vertices)),
		VertexOffset:   vertexOffset,
		PrimitiveType:  int32(p.PrimitiveType),
		NumIndices:     int32(len(p.Indices)),
		IndexOffset:    indexOffset,
		Offset:         [3]float32{p.ParentOffset[0], p.ParentOffset[1], p.ParentOffset[2]},
	}))
	data.Write(name)
	childTablePos := data.Len()
	data.Write(make([]byte, len(p.Children)*childEntrySize))
	if len(p.Vertices) > 0 {
		data.Write(utils.AsBytes(p.Vertices))
	}
	if len(p.Indices) > 0 {
		data.Write(utils.AsBytes(p.Indices))
	}

	childOffsets := make([]int32, len(p.Children))
	var childData bytes.Buffer
	for i, child := range p.Children {
		childOffsets[i] = offset + int32(data.Len()) + int32(childData.Len())
		childData.Write(child.marshal(childOffsets[i]))
	}

	out := append(data.Bytes(), childData.Bytes()...)
	for i, childOffset := range childOffsets {
		binary.LittleEndian.PutUint32(
			out[childTablePos+i*childEntrySize:], uint32(childOffset))
	}
	return out
}
