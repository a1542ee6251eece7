package s3o

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// positional tolerance when deciding two exploded vertices are "the
// same point" for smoothing purposes
const coincidentTolerance = 0.05

// RecalculateNormals rebuilds vertex normals from face geometry using a
// smoothing angle (degrees). Every triangle corner becomes its own
// vertex instance; corners sitting on coincident positions share an
// averaged normal when the local faces meet at less than smoothAngle,
// and keep the hard per-face normal otherwise.
//
// Opt-in and lossy with respect to vertex sharing: the piece ends up
// fully exploded. Run Optimize afterwards to re-merge what smoothing
// made identical. O(n^2) over piece vertices, fine for the low hundreds
// of vertices a piece carries.
func (p *Piece) RecalculateNormals(smoothAngle float32, recursive bool) {
	if recursive {
		for _, child := range p.Children {
			child.RecalculateNormals(smoothAngle, true)
		}
	}

	if p.PrimitiveType != PrimitiveTriangles || len(p.Indices) < 3 {
		return
	}
	if len(p.Indices)%3 != 0 {
		log.Printf("[normals] piece %q has a ragged index list, skipping", p.Name)
		return
	}
	for _, index := range p.Indices {
		if index < 0 || int(index) >= len(p.Vertices) {
			log.Printf("[normals] piece %q has out-of-range index %d, skipping", p.Name, index)
			return
		}
	}

	// explode shared vertices so each triangle corner is unique
	exploded := make([]Vertex, len(p.Indices))
	for i, index := range p.Indices {
		exploded[i] = p.Vertices[index]
	}

	faceNormals := make([]mgl32.Vec3, len(exploded)/3)
	for t := range faceNormals {
		a := exploded[t*3].Position
		b := exploded[t*3+1].Position
		c := exploded[t*3+2].Position
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Len() < 0.001 {
			log.Printf("[normals] piece %q triangle %d is degenerate", p.Name, t)
			normal = mgl32.Vec3{0, 1, 0}
		} else {
			normal = normal.Normalize()
		}
		faceNormals[t] = normal
	}

	cosThreshold := math.Cos(float64(mgl32.DegToRad(smoothAngle)))

	for i := range exploded {
		// every face touching a vertex coincident with this corner
		touching := make(map[int]struct{})
		for j := range exploded {
			if coincident(exploded[i].Position, exploded[j].Position) {
				touching[j/3] = struct{}{}
			}
		}

		var sum mgl32.Vec3
		for t := range touching {
			sum = sum.Add(faceNormals[t])
		}

		own := faceNormals[i/3]
		if sum.Len() < 0.001 {
			exploded[i].Normal = own
			continue
		}
		averaged := sum.Normalize()

		if float64(own.Dot(averaged)) >= cosThreshold {
			exploded[i].Normal = averaged
		} else {
			exploded[i].Normal = own
		}
	}

	p.Vertices = exploded
	p.Indices = make([]int32, len(exploded))
	for i := range p.Indices {
		p.Indices[i] = int32(i)
	}
}

func coincident(a, b mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) >= coincidentTolerance {
			return false
		}
	}
	return true
}
