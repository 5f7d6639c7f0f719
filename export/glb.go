package export

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"

	"github.com/fekomat/fekomat/feko"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// surfaceHeight is the height of the loudest element; the grid spans [0,1] in x and z.
const surfaceHeight = 0.5

// WriteGLB writes a binary glTF surface of the matrix magnitude. Element (i, j)
// becomes a vertex at x=j, z=i, with height and colour taken from 20*log10|Z|
// normalised over the matrix. It is a viewer aid and cannot be read back.
func WriteGLB(w io.Writer, m *feko.Matrix) error {
	if m.Rows < 2 || m.Cols < 2 {
		return fmt.Errorf("%w: glb surface needs at least 2x2, got %dx%d", ErrMatrixShape, m.Rows, m.Cols)
	}
	levels := normalisedLevels(m)

	positions := make([][3]float32, m.Len())
	colors := make([][4]float32, m.Len())
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			k := i*m.Cols + j
			h := levels[k]
			positions[k] = [3]float32{
				float32(j) / float32(m.Cols-1),
				h * surfaceHeight,
				float32(i) / float32(m.Rows-1),
			}
			colors[k] = [4]float32{h, 0.2, 1 - h, 1}
		}
	}

	indices := make([]uint32, 0, 6*(m.Rows-1)*(m.Cols-1))
	for i := 0; i < m.Rows-1; i++ {
		for j := 0; j < m.Cols-1; j++ {
			a := uint32(i*m.Cols + j)
			b := a + 1
			c := a + uint32(m.Cols)
			d := c + 1
			indices = append(indices, a, c, b, b, c, d)
		}
	}
	normals := vertexNormals(positions, indices)

	doc := gltf.NewDocument()
	doc.Asset.Generator = "fekomat |Z| surface"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque, DoubleSided: true}}
	doc.Meshes = []*gltf.Mesh{{Name: "ZmatMagnitude", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "ZmatMagnitude", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

// normalisedLevels maps 20*log10|Z| onto [0,1]. Zero elements sit at the floor.
func normalisedLevels(m *feko.Matrix) []float32 {
	db := make([]float64, m.Len())
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			v := 20 * math.Log10(cmplx.Abs(m.At(i, j)))
			db[i*m.Cols+j] = v
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	out := make([]float32, len(db))
	span := hi - lo
	for k, v := range db {
		switch {
		case math.IsInf(v, 1):
			out[k] = 1
		case math.IsInf(v, -1), math.IsNaN(v), !(span > 0):
			out[k] = 0
		default:
			out[k] = float32((v - lo) / span)
		}
	}
	return out
}

// vertexNormals averages the face normals around each vertex.
func vertexNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			vec1[1]*vec2[2] - vec1[2]*vec2[1],
			vec1[2]*vec2[0] - vec1[0]*vec2[2],
			vec1[0]*vec2[1] - vec1[1]*vec2[0],
		}
		for _, v := range []uint32{v0, v1, v2} {
			normals[v][0] += cross[0]
			normals[v][1] += cross[1]
			normals[v][2] += cross[2]
		}
	}
	for i, n := range normals {
		length := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
		if length > 0 {
			normals[i] = [3]float32{n[0] / length, n[1] / length, n[2] / length}
		} else {
			normals[i] = [3]float32{0, 1, 0}
		}
	}
	return normals
}
