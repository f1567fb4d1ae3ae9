package terrain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Surface receives each finished mesh, e.g. a renderer or collider.
// The mesh is owned by the synthesizer and reused by later rebuilds;
// implementations that keep it past the call must Clone it.
type Surface interface {
	ReceiveMesh(m *Mesh) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(m *Mesh) error

// ReceiveMesh calls f(m).
func (f SurfaceFunc) ReceiveMesh(m *Mesh) error { return f(m) }

// MemorySurface keeps a copy of the latest mesh.
type MemorySurface struct {
	Last     *Mesh
	Received int
}

// ReceiveMesh stores a clone of m.
func (s *MemorySurface) ReceiveMesh(m *Mesh) error {
	s.Last = m.Clone()
	s.Received++
	return nil
}

// OBJSurface writes every received mesh to a Wavefront OBJ file.
type OBJSurface struct {
	Path string
}

// ReceiveMesh overwrites Path with m.
func (s *OBJSurface) ReceiveMesh(m *Mesh) error {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create mesh dir: %w", err)
		}
	}
	file, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create mesh %s: %w", s.Path, err)
	}
	defer file.Close()

	if err := WriteOBJ(file, m); err != nil {
		return fmt.Errorf("failed to write mesh %s: %w", s.Path, err)
	}
	return nil
}

// WriteOBJ encodes m as Wavefront OBJ. Vertex colors, when present, follow
// the position on each "v" line.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	for i, p := range m.Positions {
		if m.Colors != nil {
			c := m.Colors[i]
			fmt.Fprintf(bw, "v %.6f %.6f %.6f %.4f %.4f %.4f\n", p[0], p[1], p[2], c.R, c.G, c.B)
		} else {
			fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", p[0], p[1], p[2])
		}
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", n[0], n[1], n[2])
	}
	for t := 0; t+2 < len(m.Triangles); t += 3 {
		a, b, c := m.Triangles[t]+1, m.Triangles[t+1]+1, m.Triangles[t+2]+1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	return bw.Flush()
}
