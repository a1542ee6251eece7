package s3o

import (
	"bytes"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ChrisFloofyKitsune/s3o-browser/utils"
)

const (
	headerSize      = 0x34 // 12s magic, i32 version, 5 f32, 4 i32
	pieceHeaderSize = 0x34 // 10 i32, 3 f32
	vertexSize      = 0x20 // 3 f32 position, 3 f32 normal, 2 f32 uv
	indexSize       = 0x4
	childEntrySize  = 0x4
)

var magic = [12]byte{'S', 'p', 'r', 'i', 'n', 'g', ' ', 'u', 'n', 'i', 't', 0}

type rawHeader struct {
	Magic               [12]byte
	Version             int32
	Radius              float32
	Height              float32
	Mid                 [3]float32
	RootPieceOffset     int32
	CollisionDataOffset int32
	Texture1Offset      int32
	Texture2Offset      int32
}

type rawPiece struct {
	NameOffset          int32
	NumChildren         int32
	ChildrenOffset      int32
	NumVertices         int32
	VertexOffset        int32
	VertexType          int32 // reserved, always 0
	PrimitiveType       int32
	NumIndices          int32
	IndexOffset         int32
	CollisionDataOffset int32 // reserved, always 0
	Offset              [3]float32
}

// sliceAt bounds-checks a count/offset pair before dereferencing it.
// Offsets are absolute and are not assumed monotonic or non-overlapping.
func sliceAt(buf []byte, offset int32, size int, what string) ([]byte, error) {
	if offset < 0 || int(offset)+size > len(buf) {
		return nil, newFormatErrorf(
			"%s at 0x%x (+0x%x) runs past end of file (0x%x bytes)",
			what, offset, size, len(buf))
	}
	return buf[offset : int(offset)+size], nil
}

// extractString reads a NUL-terminated string at an absolute offset.
// Offset 0 denotes the empty string, not "read at byte 0".
func extractString(buf []byte, offset int32, what string) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if offset < 0 || int(offset) >= len(buf) {
		return "", newFormatErrorf("%s offset 0x%x is outside of file", what, offset)
	}
	end := bytes.IndexByte(buf[offset:], 0)
	if end < 0 {
		return "", newFormatErrorf("%s at 0x%x is not NUL-terminated", what, offset)
	}
	return utils.BytesToString(buf[offset:]), nil
}

// NewFromData decodes one .s3o byte buffer into a Model. The buffer is
// not retained.
func NewFromData(buf []byte) (*Model, error) {
	raw, err := sliceAt(buf, 0, headerSize, "header")
	if err != nil {
		return nil, err
	}
	var h rawHeader
	utils.ReadBytes(&h, raw)

	if h.Magic != magic {
		return nil, newFormatErrorf("bad magic %q, not a Spring unit file", h.Magic[:])
	}
	if h.Version != 0 {
		return nil, newFormatErrorf("unsupported version %d, only 0 exists", h.Version)
	}
	if h.CollisionDataOffset != 0 {
		return nil, &UnsupportedFeatureError{
			Message: "file carries extended collision data, which this tool does not implement",
		}
	}

	tex1, err := extractString(buf, h.Texture1Offset, "texture 1 path")
	if err != nil {
		return nil, err
	}
	tex2, err := extractString(buf, h.Texture2Offset, "texture 2 path")
	if err != nil {
		return nil, err
	}

	root, err := decodePiece(buf, h.RootPieceOffset, nil, make(map[int32]struct{}))
	if err != nil {
		return nil, err
	}

	return &Model{
		CollisionRadius: h.Radius,
		Height:          h.Height,
		Midpoint:        mgl32.Vec3{h.Mid[0], h.Mid[1], h.Mid[2]},
		TexturePath1:    tex1,
		TexturePath2:    tex2,
		RootPiece:       root,
	}, nil
}

func decodePiece(buf []byte, offset int32, parent *Piece, seen map[int32]struct{}) (*Piece, error) {
	if _, ok := seen[offset]; ok {
		return nil, newFormatErrorf("piece headers form a cycle through 0x%x", offset)
	}
	seen[offset] = struct{}{}

	raw, err := sliceAt(buf, offset, pieceHeaderSize, "piece header")
	if err != nil {
		return nil, err
	}
	var rp rawPiece
	utils.ReadBytes(&rp, raw)

	if rp.NumChildren < 0 || rp.NumVertices < 0 || rp.NumIndices < 0 {
		return nil, newFormatErrorf("piece at 0x%x has negative counts", offset)
	}
	if rp.PrimitiveType < int32(PrimitiveTriangles) || rp.PrimitiveType > int32(PrimitiveQuads) {
		return nil, newFormatErrorf("piece at 0x%x has unknown primitive type %d", offset, rp.PrimitiveType)
	}

	name, err := extractString(buf, rp.NameOffset, "piece name")
	if err != nil {
		return nil, err
	}

	p := &Piece{
		Name:          name,
		ParentOffset:  mgl32.Vec3{rp.Offset[0], rp.Offset[1], rp.Offset[2]},
		PrimitiveType: PrimitiveType(rp.PrimitiveType),
		parent:        parent,
	}

	if rp.NumVertices > 0 {
		vraw, err := sliceAt(buf, rp.VertexOffset, int(rp.NumVertices)*vertexSize, "vertex data")
		if err != nil {
			return nil, err
		}
		p.Vertices = make([]Vertex, rp.NumVertices)
		utils.ReadBytes(p.Vertices, vraw)
	}

	if rp.NumIndices > 0 {
		iraw, err := sliceAt(buf, rp.IndexOffset, int(rp.NumIndices)*indexSize, "index data")
		if err != nil {
			return nil, err
		}
		p.Indices = make([]int32, rp.NumIndices)
		utils.ReadBytes(p.Indices, iraw)
	}

	if rp.NumChildren > 0 {
		craw, err := sliceAt(buf, rp.ChildrenOffset, int(rp.NumChildren)*childEntrySize, "child offset table")
		if err != nil {
			return nil, err
		}
		childOffsets := make([]int32, rp.NumChildren)
		utils.ReadBytes(childOffsets, craw)

		p.Children = make([]*Piece, 0, rp.NumChildren)
		for _, childOffset := range childOffsets {
			child, err := decodePiece(buf, childOffset, p, seen)
			if err != nil {
				return nil, err
			}
			p.Children = append(p.Children, child)
		}
	}

	return p, nil
}
