package s3o

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testModel() *Model {
	base := NewPiece("base")
	base.Vertices = []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}, TexCoords: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}, TexCoords: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0, 0, 1}, Normal: mgl32.Vec3{0, 1, 0}, TexCoords: mgl32.Vec2{0, 1}},
	}
	base.Indices = []int32{0, 1, 2}

	return &Model{
		CollisionRadius: 10,
		Height:          20,
		Midpoint:        mgl32.Vec3{0, 5, 0},
		TexturePath1:    "unittex1.dds",
		TexturePath2:    "unittex2.dds",
		RootPiece:       base,
	}
}

func TestRoundTripMinimal(t *testing.T) {
	m := testModel()
	buf, err := m.MarshalBuffer()
	if err != nil {
		t.Fatalf("MarshalBuffer: %v", err)
	}

	got, err := NewFromData(buf)
	if err != nil {
		t.Fatalf("NewFromData: %v", err)
	}

	if got.CollisionRadius != 10 || got.Height != 20 {
		t.Errorf("radius/height = %v/%v, want 10/20", got.CollisionRadius, got.Height)
	}
	if got.Midpoint != (mgl32.Vec3{0, 5, 0}) {
		t.Errorf("midpoint = %v, want (0,5,0)", got.Midpoint)
	}
	if got.TexturePath1 != "unittex1.dds" || got.TexturePath2 != "unittex2.dds" {
		t.Errorf("textures = %q/%q", got.TexturePath1, got.TexturePath2)
	}

	root := got.RootPiece
	if root.Name != "base" {
		t.Errorf("root name = %q, want base", root.Name)
	}
	if root.PrimitiveType != PrimitiveTriangles {
		t.Errorf("primitive type = %v", root.PrimitiveType)
	}
	if len(root.Vertices) != 3 || len(root.Indices) != 3 {
		t.Fatalf("got %d vertices %d indices, want 3/3", len(root.Vertices), len(root.Indices))
	}
	for i, v := range m.RootPiece.Vertices {
		if root.Vertices[i] != v {
			t.Errorf("vertex %d = %+v, want %+v", i, root.Vertices[i], v)
		}
	}
	if root.Parent() != nil {
		t.Errorf("root has a parent")
	}
}

func TestRoundTripHierarchy(t *testing.T) {
	m := testModel()

	turret := NewPiece("turret")
	turret.ParentOffset = mgl32.Vec3{1, 2, 3}
	turret.Vertices = m.RootPiece.Vertices
	turret.Indices = []int32{0, 1, 2}
	m.RootPiece.AddChild(turret)

	barrel := NewPiece("barrel")
	barrel.ParentOffset = mgl32.Vec3{0, 0.5, 4}
	turret.AddChild(barrel)

	flare := NewPiece("flare")
	flare.Vertices = []Vertex{{Position: mgl32.Vec3{0, 0, 1}}}
	m.RootPiece.AddChild(flare)

	buf, err := m.MarshalBuffer()
	if err != nil {
		t.Fatalf("MarshalBuffer: %v", err)
	}
	got, err := NewFromData(buf)
	if err != nil {
		t.Fatalf("NewFromData: %v", err)
	}

	root := got.RootPiece
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}
	gotTurret, gotFlare := root.Children[0], root.Children[1]
	if gotTurret.Name != "turret" || gotFlare.Name != "flare" {
		t.Fatalf("children = %q, %q", gotTurret.Name, gotFlare.Name)
	}
	if gotTurret.ParentOffset != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("turret offset = %v", gotTurret.ParentOffset)
	}
	if len(gotTurret.Children) != 1 || gotTurret.Children[0].Name != "barrel" {
		t.Fatalf("turret children wrong: %+v", gotTurret.Children)
	}
	if gotTurret.Children[0].Parent() != gotTurret || gotTurret.Parent() != root {
		t.Errorf("parent back-references not wired")
	}
	if !gotFlare.IsEmitPiece() {
		t.Errorf("flare not detected as emit piece")
	}
}

func TestEmitPieceRoundTrip(t *testing.T) {
	m := testModel()
	emit := NewPiece("emit")
	emit.Vertices = []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{0, 0, 1}},
	}
	m.RootPiece.AddChild(emit)

	buf, err := m.MarshalBuffer()
	if err != nil {
		t.Fatalf("MarshalBuffer: %v", err)
	}
	got, err := NewFromData(buf)
	if err != nil {
		t.Fatalf("NewFromData: %v", err)
	}

	gotEmit := got.RootPiece.Children[0]
	if !gotEmit.IsEmitPiece() {
		t.Fatalf("emit piece lost its marker status: %d vertices %d indices",
			len(gotEmit.Vertices), len(gotEmit.Indices))
	}
	if gotEmit.Vertices[1].Position != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("emit direction vertex = %v", gotEmit.Vertices[1].Position)
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := testModel().MarshalBuffer()
	if err != nil {
		t.Fatalf("MarshalBuffer: %v", err)
	}

	tests := []struct {
		name    string
		corrupt func(buf []byte) []byte
		errPart string
	}{
		{"bad magic", func(buf []byte) []byte {
			buf[0] = 'X'
			return buf
		}, "bad magic"},
		{"bad version", func(buf []byte) []byte {
			binary.LittleEndian.PutUint32(buf[12:], 9)
			return buf
		}, "version"},
		{"truncated header", func(buf []byte) []byte {
			return buf[:20]
		}, "header"},
		{"truncated vertices", func(buf []byte) []byte {
			return buf[:len(buf)-40]
		}, "runs past end"},
		{"root offset outside file", func(buf []byte) []byte {
			binary.LittleEndian.PutUint32(buf[36:], uint32(len(buf)+100))
			return buf
		}, "runs past end"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := append([]byte(nil), valid...)
			_, err := NewFromData(test.corrupt(buf))
			if err == nil {
				t.Fatalf("decode succeeded on corrupt input")
			}
			if _, ok := err.(*FormatError); !ok {
				t.Fatalf("error type = %T, want *FormatError (%v)", err, err)
			}
			if !strings.Contains(err.Error(), test.errPart) {
				t.Errorf("error %q does not mention %q", err, test.errPart)
			}
		})
	}
}

func TestDecodeCollisionDataUnsupported(t *testing.T) {
	buf, err := testModel().MarshalBuffer()
	if err != nil {
		t.Fatalf("MarshalBuffer: %v", err)
	}
	binary.LittleEndian.PutUint32(buf[40:], 0x1234)

	_, err = NewFromData(buf)
	if _, ok := err.(*UnsupportedFeatureError); !ok {
		t.Fatalf("error = %v (%T), want *UnsupportedFeatureError", err, err)
	}
}

// An empty piece's data offsets may point right past its own header
// with no padding byte in between. Decoders must never dereference an
// offset whose count is zero, so the encoder does not bias them.
func TestEncodeEmptyOffsetsNoBias(t *testing.T) {
	m := &Model{RootPiece: NewPiece("hollow")}
	buf, err := m.MarshalBuffer()
	if err != nil {
		t.Fatalf("MarshalBuffer: %v", err)
	}

	rootOffset := binary.LittleEndian.Uint32(buf[36:])
	piece := buf[rootOffset:]
	nameOffset := binary.LittleEndian.Uint32(piece[0:])
	childrenOffset := binary.LittleEndian.Uint32(piece[8:])
	vertexOffset := binary.LittleEndian.Uint32(piece[16:])
	indexOffset := binary.LittleEndian.Uint32(piece[32:])

	wantChildren := nameOffset + uint32(len("hollow")+1)
	if childrenOffset != wantChildren {
		t.Errorf("children offset = 0x%x, want 0x%x", childrenOffset, wantChildren)
	}
	if vertexOffset != childrenOffset || indexOffset != vertexOffset {
		t.Errorf("empty offsets biased: children=0x%x vertices=0x%x indices=0x%x",
			childrenOffset, vertexOffset, indexOffset)
	}

	if _, err := NewFromData(buf); err != nil {
		t.Fatalf("decode of empty-piece model: %v", err)
	}
}

func TestValidateRejectsBadIndices(t *testing.T) {
	m := testModel()
	m.RootPiece.Indices = []int32{0, 1, 7}
	if _, err := m.MarshalBuffer(); err == nil {
		t.Fatalf("MarshalBuffer accepted out-of-range index")
	}

	// -1 is only legal as a strip sentinel
	m.RootPiece.Indices = []int32{0, 1, -1}
	if _, err := m.MarshalBuffer(); err == nil {
		t.Fatalf("MarshalBuffer accepted -1 in a triangle list")
	}
	m.RootPiece.PrimitiveType = PrimitiveTriangleStrips
	if _, err := m.MarshalBuffer(); err != nil {
		t.Fatalf("MarshalBuffer rejected strip sentinel: %v", err)
	}
}

func TestEmptyTexturePaths(t *testing.T) {
	m := testModel()
	m.TexturePath1 = ""
	m.TexturePath2 = ""

	buf, err := m.MarshalBuffer()
	if err != nil {
		t.Fatalf("MarshalBuffer: %v", err)
	}
	got, err := NewFromData(buf)
	if err != nil {
		t.Fatalf("NewFromData: %v", err)
	}
	if got.TexturePath1 != "" || got.TexturePath2 != "" {
		t.Errorf("texture paths = %q/%q, want empty", got.TexturePath1, got.TexturePath2)
	}
}
