package vertexcache

import (
	"math"
	"testing"
)

func trisEqual(a, b []Triangle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGetCacheOptimizedTriangles(t *testing.T) {
	tests := []struct {
		name string
		in   []Triangle
		out  []Triangle
	}{
		{
			name: "empty",
			in:   []Triangle{},
			out:  []Triangle{},
		},
		{
			name: "disconnected picked by valence",
			in:   []Triangle{{0, 1, 2}, {7, 8, 9}, {2, 3, 4}},
			out:  []Triangle{{7, 8, 9}, {0, 1, 2}, {2, 3, 4}},
		},
		{
			name: "degenerate and duplicate collapse",
			in:   []Triangle{{0, 1, 2}, {1, 2, 0}, {1, 1, 2}},
			out:  []Triangle{{0, 1, 2}},
		},
	}

	for _, test := range tests {
		got := GetCacheOptimizedTriangles(test.in)
		if !trisEqual(got, test.out) {
			t.Errorf("%s: GetCacheOptimizedTriangles(%v)=%v; expected %v",
				test.name, test.in, got, test.out)
		}
	}
}

func TestGetCacheOptimizedTrianglesDeterministic(t *testing.T) {
	in := []Triangle{{0, 1, 2}, {2, 1, 3}, {3, 2, 4}, {4, 3, 5}, {10, 11, 12}}
	first := GetCacheOptimizedTriangles(in)
	for i := 0; i < 5; i++ {
		if got := GetCacheOptimizedTriangles(in); !trisEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestGetCacheOptimizedVertexMap(t *testing.T) {
	got := GetCacheOptimizedVertexMap([]Triangle{{5, 2, 1}, {0, 2, 3}})
	expected := []int{3, 2, 1, 4, -1, 0}
	if len(got) != len(expected) {
		t.Fatalf("map length %d; expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("map[%d]=%d; expected %d", i, got[i], expected[i])
		}
	}
}

func TestAverageTransformToVertexRatio(t *testing.T) {
	// two triangles sharing an edge: 4 misses over 2 distinct triangles
	tris := []Triangle{{0, 1, 2}, {2, 1, 3}}
	if got := AverageTransformToVertexRatio(tris, CacheSize); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("ACMR=%v; expected 2.0", got)
	}

	// a tiny cache forces re-transforms
	strip := []Triangle{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}, {4, 3, 5}}
	big := AverageTransformToVertexRatio(strip, CacheSize)
	small := AverageTransformToVertexRatio(strip, 2)
	if small <= big {
		t.Errorf("expected worse ratio with tiny cache: %v <= %v", small, big)
	}
}

func TestOptimizedOrderNeverWorseOnStrips(t *testing.T) {
	// scrambled grid of triangles
	var tris []Triangle
	w := 8
	for y := 0; y < w; y++ {
		for x := 0; x < w; x++ {
			a := y*(w+1) + x
			b := a + 1
			c := a + w + 1
			d := c + 1
			tris = append(tris, Triangle{a, b, c}, Triangle{b, d, c})
		}
	}
	// interleave front/back to make the initial order cache-hostile
	scrambled := make([]Triangle, 0, len(tris))
	for i, j := 0, len(tris)-1; i <= j; i, j = i+1, j-1 {
		scrambled = append(scrambled, tris[i])
		if i != j {
			scrambled = append(scrambled, tris[j])
		}
	}

	before := AverageTransformToVertexRatio(scrambled, CacheSize)
	after := AverageTransformToVertexRatio(GetCacheOptimizedTriangles(scrambled), CacheSize)
	if after > before {
		t.Errorf("optimization regressed ACMR: %v -> %v", before, after)
	}
}
