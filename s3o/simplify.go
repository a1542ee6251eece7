package s3o

import (
	"log"

	"github.com/fogleman/simplify"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// SimplifyGeometry decimates the piece's triangles to roughly
// factor*current count using a quadric error metric. Lossy and
// explicitly user-invoked: normals are rebuilt from faces and texture
// coordinates (with their packed AO) are discarded, so this is for
// generating LOD or collision meshes, not for round-tripping art.
func (p *Piece) SimplifyGeometry(factor float64) error {
	if p.PrimitiveType != PrimitiveTriangles {
		return errors.Errorf("piece %q is %v, triangulate before simplifying", p.Name, p.PrimitiveType)
	}
	if len(p.Indices)%3 != 0 {
		return errors.Errorf("piece %q has a ragged index list", p.Name)
	}
	if factor <= 0 || factor > 1 {
		return errors.Errorf("simplify factor %v outside (0, 1]", factor)
	}
	if len(p.Indices) == 0 {
		return nil
	}

	asVector := func(index int32) simplify.Vector {
		pos := p.Vertices[index].Position
		return simplify.Vector{X: float64(pos[0]), Y: float64(pos[1]), Z: float64(pos[2])}
	}

	triangles := make([]*simplify.Triangle, 0, len(p.Indices)/3)
	for t := 0; t+2 < len(p.Indices); t += 3 {
		if !p.validTriangle(t) {
			return errors.Errorf("piece %q has out-of-range indices", p.Name)
		}
		triangles = append(triangles, simplify.NewTriangle(
			asVector(p.Indices[t]), asVector(p.Indices[t+1]), asVector(p.Indices[t+2])))
	}

	result := simplify.NewMesh(triangles).Simplify(factor)

	remap := make(map[simplify.Vector]int32)
	p.Vertices = p.Vertices[:0]
	p.Indices = p.Indices[:0]
	add := func(v simplify.Vector) {
		index, ok := remap[v]
		if !ok {
			index = int32(len(p.Vertices))
			remap[v] = index
			p.Vertices = append(p.Vertices, Vertex{
				Position: mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)},
			})
		}
		p.Indices = append(p.Indices, index)
	}
	for _, triangle := range result.Triangles {
		add(triangle.V1)
		add(triangle.V2)
		add(triangle.V3)
	}

	p.RepairNormals()
	log.Printf("[simplify] piece %q: %d -> %d triangles",
		p.Name, len(triangles), len(result.Triangles))
	return nil
}
