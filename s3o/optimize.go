package s3o

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ChrisFloofyKitsune/s3o-browser/config"
	"github.com/ChrisFloofyKitsune/s3o-browser/vertexcache"
)

// Optimize runs the lossless geometry passes on the piece: exact-value
// vertex dedup, vertex-cache-aware triangle reorder (kept only when it
// strictly improves ACMR), dense reindexing, and normal repair.
// Triangulate first; strip/quad pieces are left alone by the reorder.
func (p *Piece) Optimize(recursive bool) {
	if len(p.Indices) > 0 {
		p.optimizeGeometry()
	}
	p.RepairNormals()

	if recursive {
		for _, child := range p.Children {
			child.Optimize(true)
		}
	}
}

func (p *Piece) optimizeGeometry() {
	log.Printf("[optimize] optimizing piece %q", p.Name)

	// collapse bitwise-equal vertices, first-seen index wins
	remap := make(map[Vertex]int32, len(p.Vertices))
	newIndices := make([]int32, 0, len(p.Indices))
	for _, index := range p.Indices {
		if index < 0 || int(index) >= len(p.Vertices) {
			log.Printf("[optimize] piece %q has out-of-range index %d, skipping", p.Name, index)
			return
		}
		vertex := p.Vertices[index]
		newIndex, ok := remap[vertex]
		if !ok {
			newIndex = int32(len(remap))
			remap[vertex] = newIndex
		}
		newIndices = append(newIndices, newIndex)
	}
	newVertices := make([]Vertex, len(remap))
	for vertex, index := range remap {
		newVertices[index] = vertex
	}

	if p.PrimitiveType == PrimitiveTriangles && len(newIndices) > 0 {
		if reordered, ok := cacheOptimizedIndices(newIndices); ok {
			newIndices = reordered
		}
	}

	// renumber densely in order of first appearance in the index stream
	order := make([]int32, 0, len(newVertices))
	position := make(map[int32]int32, len(newVertices))
	remapped := make([]int32, len(newIndices))
	for i, index := range newIndices {
		newIndex, ok := position[index]
		if !ok {
			newIndex = int32(len(order))
			position[index] = newIndex
			order = append(order, index)
		}
		remapped[i] = newIndex
	}
	compact := make([]Vertex, len(order))
	for i, old := range order {
		compact[i] = newVertices[old]
	}

	p.Vertices = compact
	p.Indices = remapped
}

// cacheOptimizedIndices returns a reordered index stream when the
// greedy reorder strictly improves the average cache miss ratio.
func cacheOptimizedIndices(indices []int32) ([]int32, bool) {
	if len(indices)%3 != 0 {
		log.Printf("[optimize] %d indices is not a whole number of triangles, skipping cache reorder", len(indices))
		return nil, false
	}

	tris := make([]vertexcache.Triangle, len(indices)/3)
	for i := range tris {
		tris[i] = vertexcache.Triangle{
			int(indices[i*3]), int(indices[i*3+1]), int(indices[i*3+2])}
	}

	cacheSize := config.VertexCacheSize()
	acmr := vertexcache.AverageTransformToVertexRatio(tris, cacheSize)
	reordered := vertexcache.GetCacheOptimizedTriangles(tris)
	acmrNew := vertexcache.AverageTransformToVertexRatio(reordered, cacheSize)
	if acmrNew >= acmr {
		return nil, false
	}

	out := make([]int32, 0, len(reordered)*3)
	for _, tri := range reordered {
		out = append(out, int32(tri[0]), int32(tri[1]), int32(tri[2]))
	}
	return out, true
}

// RepairNormals fixes up zero, degenerate and non-unit normals in
// place. Purely diagnostic: conditions are logged, never fatal.
//
// A near-zero normal becomes (0,1,0) when nothing references the
// vertex, otherwise the face normal of the first triangle using it.
// A normal with length outside [0.9, 1.1] is renormalized.
func (p *Piece) RepairNormals() {
	referenced := make([]bool, len(p.Vertices))
	for _, index := range p.Indices {
		if index >= 0 && int(index) < len(p.Vertices) {
			referenced[index] = true
		}
	}

	badCount, nonUnitCount := 0, 0
	for i := range p.Vertices {
		length := p.Vertices[i].Normal.Len()
		switch {
		case length < 0.01:
			badCount++
			if !referenced[i] {
				p.Vertices[i].Normal = mgl32.Vec3{0, 1, 0}
			} else {
				p.Vertices[i].Normal = p.firstFaceNormal(int32(i))
			}
		case length < 0.9 || length > 1.1:
			nonUnitCount++
			p.Vertices[i].Normal = p.Vertices[i].Normal.Mul(1 / length)
		}
	}

	if badCount > 0 || nonUnitCount > 0 {
		log.Printf("[optimize] piece %q: replaced %d degenerate normals, renormalized %d",
			p.Name, badCount, nonUnitCount)
	}
}

// firstFaceNormal finds the first triangle containing the vertex and
// returns its face normal, falling back to (0,1,0) for degenerate
// triangles (or when no triangle uses the vertex at all).
func (p *Piece) firstFaceNormal(vertex int32) mgl32.Vec3 {
	for t := 0; t+2 < len(p.Indices); t += 3 {
		if p.Indices[t] != vertex && p.Indices[t+1] != vertex && p.Indices[t+2] != vertex {
			continue
		}
		if !p.validTriangle(t) {
			continue
		}
		a := p.Vertices[p.Indices[t]].Position
		b := p.Vertices[p.Indices[t+1]].Position
		c := p.Vertices[p.Indices[t+2]].Position
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Len() < 0.001 {
			return mgl32.Vec3{0, 1, 0}
		}
		return normal.Normalize()
	}
	return mgl32.Vec3{0, 1, 0}
}

func (p *Piece) validTriangle(t int) bool {
	for _, index := range p.Indices[t : t+3] {
		if index < 0 || int(index) >= len(p.Vertices) {
			return false
		}
	}
	return true
}
