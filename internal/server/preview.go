package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"

	"github.com/MeKo-Tech/noisegen/internal/terrain"
	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/gorilla/websocket"
)

// TextureStream is a texture.Receiver that broadcasts every texture as a
// binary PNG message.
type TextureStream struct {
	Hub *Hub
	buf bytes.Buffer
}

// ReceiveTexture encodes img and broadcasts it.
func (s *TextureStream) ReceiveTexture(img *image.NRGBA) error {
	s.buf.Reset()
	if err := texture.Encode(&s.buf, img, texture.PNG); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	s.Hub.Broadcast(websocket.BinaryMessage, bytes.Clone(s.buf.Bytes()))
	return nil
}

// MeshMessage is the JSON form of a terrain mesh.
type MeshMessage struct {
	Type       string       `json:"type"`
	Generation uint64       `json:"generation"`
	Vertices   [][3]float64 `json:"vertices"`
	Normals    [][3]float64 `json:"normals"`
	Colors     [][4]float64 `json:"colors,omitempty"`
	Indices    []int        `json:"indices"`
	BoundsMin  [3]float64   `json:"boundsMin"`
	BoundsMax  [3]float64   `json:"boundsMax"`
	Center     [3]float64   `json:"center"`
}

// NewMeshMessage converts m for the wire.
func NewMeshMessage(m *terrain.Mesh, generation uint64) MeshMessage {
	msg := MeshMessage{
		Type:       "mesh",
		Generation: generation,
		Vertices:   make([][3]float64, len(m.Positions)),
		Normals:    make([][3]float64, len(m.Normals)),
		Indices:    m.Triangles,
		BoundsMin:  m.Bounds.Min,
		BoundsMax:  m.Bounds.Max,
		Center:     m.Bounds.Center(),
	}
	for i, p := range m.Positions {
		msg.Vertices[i] = p
	}
	for i, n := range m.Normals {
		msg.Normals[i] = n
	}
	if m.Colors != nil {
		msg.Colors = make([][4]float64, len(m.Colors))
		for i, c := range m.Colors {
			msg.Colors[i] = [4]float64{c.R, c.G, c.B, c.A}
		}
	}
	return msg
}

// TerrainStream is a terrain.Surface that broadcasts every mesh as JSON.
type TerrainStream struct {
	Hub        *Hub
	generation uint64
}

// ReceiveMesh encodes m and broadcasts it.
func (s *TerrainStream) ReceiveMesh(m *terrain.Mesh) error {
	s.generation++
	data, err := json.Marshal(NewMeshMessage(m, s.generation))
	if err != nil {
		return fmt.Errorf("failed to encode mesh: %w", err)
	}
	s.Hub.Broadcast(websocket.TextMessage, data)
	return nil
}
