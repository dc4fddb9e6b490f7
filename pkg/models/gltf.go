package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/ortho/pkg/logging"
	"github.com/taigrr/ortho/pkg/math3d"
	"github.com/taigrr/ortho/pkg/world"
)

// ErrMalformed is returned when an accessor points outside its buffer or
// has a layout the importer does not read.
var ErrMalformed = errors.New("models: malformed gltf")

// LoadGLB loads a binary GLTF (.glb) or a .gltf file.
func LoadGLB(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return FromDocument(doc, filepath.Base(path))
}

// LoadScene loads path and flattens it onto plane.
func LoadScene(path string, plane Plane) (world.Scene, error) {
	m, err := LoadGLB(path)
	if err != nil {
		return world.Scene{}, err
	}
	return m.Scene(plane), nil
}

// FromDocument extracts every mesh primitive of doc into one model.
func FromDocument(doc *gltf.Document, name string) (*Model, error) {
	model := NewModel(name)

	for _, mat := range doc.Materials {
		model.Materials = append(model.Materials, convertMaterial(mat))
	}

	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, model); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	model.CalculateBounds()
	logging.Logger().Debug("gltf loaded",
		"name", name,
		"vertices", model.VertexCount(),
		"triangles", model.TriangleCount(),
		"edges", len(model.Edges),
	)
	return model, nil
}

func convertMaterial(mat *gltf.Material) Material {
	out := Material{Name: mat.Name, BaseColor: [4]float64{1, 1, 1, 1}}
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		out.BaseColor = *pbr.BaseColorFactor
	}
	return out
}

// processMesh appends the geometry of every primitive in m.
func processMesh(doc *gltf.Document, m *gltf.Mesh, model *Model) error {
	for _, prim := range m.Primitives {
		if prim.Mode == gltf.PrimitivePoints {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for _, ix := range indices {
				if ix < 0 || ix >= len(positions) {
					return fmt.Errorf("%w: index %d out of %d vertices", ErrMalformed, ix, len(positions))
				}
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		base := len(model.Vertices)
		model.Vertices = append(model.Vertices, positions...)
		for i := range indices {
			indices[i] += base
		}

		switch prim.Mode {
		case gltf.PrimitiveTriangles:
			for i := 0; i+2 < len(indices); i += 3 {
				model.addFace(indices[i], indices[i+1], indices[i+2], material)
			}
		case gltf.PrimitiveTriangleStrip:
			for i := 0; i+2 < len(indices); i++ {
				if i%2 == 0 {
					model.addFace(indices[i], indices[i+1], indices[i+2], material)
				} else {
					model.addFace(indices[i+1], indices[i], indices[i+2], material)
				}
			}
		case gltf.PrimitiveTriangleFan:
			for i := 1; i+1 < len(indices); i++ {
				model.addFace(indices[0], indices[i], indices[i+1], material)
			}
		case gltf.PrimitiveLines:
			for i := 0; i+1 < len(indices); i += 2 {
				model.addEdge(indices[i], indices[i+1], material)
			}
		case gltf.PrimitiveLineStrip, gltf.PrimitiveLineLoop:
			for i := 0; i+1 < len(indices); i++ {
				model.addEdge(indices[i], indices[i+1], material)
			}
			if prim.Mode == gltf.PrimitiveLineLoop && len(indices) > 2 {
				model.addEdge(indices[len(indices)-1], indices[0], material)
			}
		}
	}

	return nil
}

func (m *Model) addFace(a, b, c, material int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}, Material: material})
}

func (m *Model) addEdge(a, b, material int) {
	m.Edges = append(m.Edges, Edge{V: [2]int{a, b}, Material: material})
}

// readVec3Accessor reads float VEC3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, err := lookupAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("%w: expected float VEC3, got %v/%v", ErrMalformed, accessor.Type, accessor.ComponentType)
	}

	view, err := accessorView(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		b := view.element(i)
		result[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := lookupAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("%w: expected SCALAR indices, got %v", ErrMalformed, accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("%w: index component %v", ErrMalformed, accessor.ComponentType)
	}

	view, err := accessorView(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		b := view.element(i)
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

func lookupAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrMalformed, idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}

// strided is a bounds-checked window onto buffer bytes.
type strided struct {
	data   []byte
	start  int
	stride int
	size   int
}

func (s strided) element(i int) []byte {
	off := s.start + i*s.stride
	return s.data[off : off+s.size]
}

// accessorView resolves accessor to its buffer bytes and checks that all
// Count elements of elemSize bytes lie inside both the view and the buffer.
func accessorView(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) (strided, error) {
	if accessor.BufferView == nil {
		return strided{}, fmt.Errorf("%w: accessor has no buffer view", ErrMalformed)
	}
	bvIdx := *accessor.BufferView
	if bvIdx < 0 || bvIdx >= len(doc.BufferViews) {
		return strided{}, fmt.Errorf("%w: buffer view %d of %d", ErrMalformed, bvIdx, len(doc.BufferViews))
	}
	bufferView := doc.BufferViews[bvIdx]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return strided{}, fmt.Errorf("%w: buffer %d of %d", ErrMalformed, bufferView.Buffer, len(doc.Buffers))
	}
	data := doc.Buffers[bufferView.Buffer].Data
	if len(data) == 0 {
		return strided{}, fmt.Errorf("%w: buffer has no data", ErrMalformed)
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if stride < elemSize {
		return strided{}, fmt.Errorf("%w: stride %d below element size %d", ErrMalformed, stride, elemSize)
	}

	if accessor.Count > 0 {
		last := accessor.ByteOffset + (accessor.Count-1)*stride + elemSize
		if last > bufferView.ByteLength {
			return strided{}, fmt.Errorf("%w: accessor overruns buffer view", ErrMalformed)
		}
		if bufferView.ByteOffset+last > len(data) {
			return strided{}, fmt.Errorf("%w: buffer view overruns buffer", ErrMalformed)
		}
	}

	return strided{
		data:   data,
		start:  bufferView.ByteOffset + accessor.ByteOffset,
		stride: stride,
		size:   elemSize,
	}, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
