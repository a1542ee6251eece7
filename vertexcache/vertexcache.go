// Package vertexcache reorders triangle lists to minimize GPU
// vertex-transform cache misses.
//
// This is an implementation of 'Linear-Speed Vertex Cache Optimisation'
// by Tom Forsyth, 28th September 2006.
package vertexcache

import "math"

// CacheSize models the post-transform FIFO. Higher values yield
// virtually no improvement.
const CacheSize = 32

const (
	cacheDecayPower   = 1.5
	lastTriScore      = 0.75
	valenceBoostScale = 2.0
	valenceBoostPower = 0.5
)

type Triangle [3]int

type vertexInfo struct {
	cachePosition   int
	score           float64
	triangleIndices []int
}

func (vi *vertexInfo) updateScore() {
	if len(vi.triangleIndices) == 0 {
		// no triangle needs this vertex
		vi.score = -1
		return
	}

	if vi.cachePosition < 0 {
		vi.score = 0
	} else if vi.cachePosition < 3 {
		// used in the last triangle
		vi.score = lastTriScore
	} else {
		vi.score = math.Pow(
			1.0-float64(vi.cachePosition-3)/float64(CacheSize-3),
			cacheDecayPower)
	}

	// bonus for having few triangles still in use
	vi.score += valenceBoostScale *
		math.Pow(float64(len(vi.triangleIndices)), -valenceBoostPower)
}

type triangleInfo struct {
	added         bool
	score         float64
	vertexIndices Triangle
}

type mesh struct {
	vertexInfos   []vertexInfo
	triangleInfos []triangleInfo
}

// newMesh indexes which triangles use which vertex. Degenerate
// triangles are skipped and duplicates (up to rotation) collapse into
// one, matching the behavior the optimizer has always had.
func newMesh(triangles []Triangle) *mesh {
	m := &mesh{}

	numVertices := 0
	for _, tri := range triangles {
		for _, v := range tri {
			if v+1 > numVertices {
				numVertices = v + 1
			}
		}
	}
	m.vertexInfos = make([]vertexInfo, numVertices)
	for i := range m.vertexInfos {
		m.vertexInfos[i].cachePosition = -1
		m.vertexInfos[i].score = -1
	}

	added := make(map[Triangle]struct{})
	triangleIndex := 0
	for _, tri := range triangles {
		v0, v1, v2 := tri[0], tri[1], tri[2]
		if v0 == v1 || v1 == v2 || v2 == v0 {
			continue
		}
		var verts Triangle
		switch {
		case v0 < v1 && v0 < v2:
			verts = Triangle{v0, v1, v2}
		case v1 < v0 && v1 < v2:
			verts = Triangle{v1, v2, v0}
		default:
			verts = Triangle{v2, v0, v1}
		}
		if _, ok := added[verts]; ok {
			continue
		}
		added[verts] = struct{}{}
		m.triangleInfos = append(m.triangleInfos, triangleInfo{vertexIndices: verts})
		for _, v := range verts {
			m.vertexInfos[v].triangleIndices = append(
				m.vertexInfos[v].triangleIndices, triangleIndex)
		}
		triangleIndex++
	}

	for i := range m.vertexInfos {
		m.vertexInfos[i].updateScore()
	}
	for i := range m.triangleInfos {
		m.triangleInfos[i].score = m.triangleScore(i)
	}
	return m
}

func (m *mesh) triangleScore(triangle int) float64 {
	score := 0.0
	for _, v := range m.triangleInfos[triangle].vertexIndices {
		score += m.vertexInfos[v].score
	}
	return score
}

// GetCacheOptimizedTriangles greedily reorders triangles so vertices
// already resident in the simulated cache are reused. Deterministic:
// ties go to the earliest triangle.
func GetCacheOptimizedTriangles(triangles []Triangle) []Triangle {
	m := newMesh(triangles)

	result := make([]Triangle, 0, len(m.triangleInfos))
	cache := make([]int, 0, CacheSize+3)

	for len(result) < len(m.triangleInfos) {
		best := -1
		bestScore := math.Inf(-1)
		for i := range m.triangleInfos {
			if !m.triangleInfos[i].added && m.triangleInfos[i].score > bestScore {
				best = i
				bestScore = m.triangleInfos[i].score
			}
		}

		bestInfo := &m.triangleInfos[best]
		bestInfo.added = true
		result = append(result, bestInfo.vertexIndices)

		updatedVertices := make(map[int]struct{})
		updatedTriangles := make(map[int]struct{})

		for _, vertex := range bestInfo.vertexIndices {
			vi := &m.vertexInfos[vertex]
			vi.triangleIndices = removeInt(vi.triangleIndices, best)
			updatedVertices[vertex] = struct{}{}
			for _, t := range vi.triangleIndices {
				updatedTriangles[t] = struct{}{}
			}

			if !containsInt(cache, vertex) {
				cache = append([]int{vertex}, cache...)
				if len(cache) > CacheSize {
					// cache overflow, evict the oldest vertex
					removed := cache[len(cache)-1]
					cache = cache[:len(cache)-1]
					ri := &m.vertexInfos[removed]
					ri.cachePosition = -1
					updatedVertices[removed] = struct{}{}
					for _, t := range ri.triangleIndices {
						updatedTriangles[t] = struct{}{}
					}
				}
			}
		}

		for i, vertex := range cache {
			vi := &m.vertexInfos[vertex]
			vi.cachePosition = i
			updatedVertices[vertex] = struct{}{}
			for _, t := range vi.triangleIndices {
				updatedTriangles[t] = struct{}{}
			}
		}

		for vertex := range updatedVertices {
			m.vertexInfos[vertex].updateScore()
		}
		for triangle := range updatedTriangles {
			m.triangleInfos[triangle].score = m.triangleScore(triangle)
		}
	}

	return result
}

// GetCacheOptimizedVertexMap maps old vertex indices to new ones so
// that triangles reference vertices in order of first use. Unused
// vertices map to -1.
func GetCacheOptimizedVertexMap(triangles []Triangle) []int {
	numVertices := 0
	for _, tri := range triangles {
		for _, v := range tri {
			if v+1 > numVertices {
				numVertices = v + 1
			}
		}
	}

	vertexMap := make([]int, numVertices)
	for i := range vertexMap {
		vertexMap[i] = -1
	}
	newVertex := 0
	for _, tri := range triangles {
		for _, oldVertex := range tri {
			if vertexMap[oldVertex] == -1 {
				vertexMap[oldVertex] = newVertex
				newVertex++
			}
		}
	}
	return vertexMap
}

// AverageTransformToVertexRatio simulates a bounded FIFO of transformed
// vertices and returns cache misses divided by the number of distinct
// triangles. See http://castano.ludicon.com/blog/2009/01/29/acmr/
func AverageTransformToVertexRatio(triangles []Triangle, cacheSize int) float64 {
	distinct := make(map[Triangle]struct{}, len(triangles))
	for _, tri := range triangles {
		distinct[tri] = struct{}{}
	}
	if len(distinct) == 0 {
		return 0
	}

	cache := make([]int, 0, cacheSize)
	numMisses := 0
	for _, triangle := range triangles {
		for _, vertex := range triangle {
			if !containsInt(cache, vertex) {
				cache = append([]int{vertex}, cache...)
				if len(cache) > cacheSize {
					cache = cache[:cacheSize]
				}
				numMisses++
			}
		}
	}
	return float64(numMisses) / float64(len(distinct))
}

func containsInt(s []int, v int) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func removeInt(s []int, v int) []int {
	for i, e := range s {
		if e == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
