package terrain

import (
	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a triangulated height grid. Triangles holds index triples into
// Positions; Normals and Colors run parallel to Positions (Colors is nil when
// no gradient is configured).
type Mesh struct {
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	Colors    []gradient.Color
	Triangles []int
	Bounds    Bounds
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl64.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Size returns the box extents per axis.
func (b Bounds) Size() mgl64.Vec3 { return b.Max.Sub(b.Min) }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Positions: append([]mgl64.Vec3(nil), m.Positions...),
		Normals:   append([]mgl64.Vec3(nil), m.Normals...),
		Triangles: append([]int(nil), m.Triangles...),
		Bounds:    m.Bounds,
	}
	if m.Colors != nil {
		out.Colors = append([]gradient.Color(nil), m.Colors...)
	}
	return out
}

// Triangulate returns the index list for a grid of xCount by zCount cells
// laid out row by row with xCount+1 vertices per row. Each cell yields two
// triangles: (v, v+W+1, v+1) and (v+1, v+W+1, v+W+2) with W = xCount.
func Triangulate(xCount, zCount int) []int {
	tris := make([]int, xCount*zCount*6)
	v, t := 0, 0
	for z := 0; z < zCount; z++ {
		for x := 0; x < xCount; x++ {
			tris[t] = v
			tris[t+1] = v + xCount + 1
			tris[t+2] = v + 1
			tris[t+3] = v + 1
			tris[t+4] = v + xCount + 1
			tris[t+5] = v + xCount + 2
			v++
			t += 6
		}
		// skip the last vertex of the row
		v++
	}
	return tris
}

// recalculateNormals sets each vertex normal to the normalized sum of the
// area-weighted normals of its adjacent faces.
func (m *Mesh) recalculateNormals() {
	for i := range m.Normals {
		m.Normals[i] = mgl64.Vec3{}
	}
	for t := 0; t+2 < len(m.Triangles); t += 3 {
		a, b, c := m.Triangles[t], m.Triangles[t+1], m.Triangles[t+2]
		pa := m.Positions[a]
		n := m.Positions[b].Sub(pa).Cross(m.Positions[c].Sub(pa))
		m.Normals[a] = m.Normals[a].Add(n)
		m.Normals[b] = m.Normals[b].Add(n)
		m.Normals[c] = m.Normals[c].Add(n)
	}
	for i, n := range m.Normals {
		if l := n.Len(); l > 0 {
			m.Normals[i] = n.Mul(1 / l)
		} else {
			m.Normals[i] = mgl64.Vec3{0, 1, 0}
		}
	}
}

func (m *Mesh) recalculateBounds() {
	if len(m.Positions) == 0 {
		m.Bounds = Bounds{}
		return
	}
	lo, hi := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < lo[i] {
				lo[i] = p[i]
			}
			if p[i] > hi[i] {
				hi[i] = p[i]
			}
		}
	}
	m.Bounds = Bounds{Min: lo, Max: hi}
}
