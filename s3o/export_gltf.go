package s3o

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/ChrisFloofyKitsune/s3o-browser/utils"
	"github.com/ChrisFloofyKitsune/s3o-browser/utils/gltfutils"
)

type gltfExporter struct {
	doc *gltf.Document
	rng utils.RandomNameGenerator
}

// ExportGLTF converts the piece tree to a glTF document. The node
// hierarchy mirrors the piece hierarchy with parent offsets as node
// translations, so animation scripts keyed on piece names keep making
// sense in a viewer. Packed ambient occlusion is exposed as COLOR_0 so
// it survives the trip even though the raw texcoords are what carry it
// in the container.
func (m *Model) ExportGLTF() (*gltf.Document, error) {
	e := &gltfExporter{doc: gltfutils.NewDocument()}

	e.doc.Materials = append(e.doc.Materials, &gltf.Material{
		Name:        "default",
		DoubleSided: false,
	})

	if _, err := e.exportPiece(m.RootPiece); err != nil {
		return nil, err
	}
	return e.doc, nil
}

// ExportGLTFBinary writes the model as a single GLB blob.
func (m *Model) ExportGLTFBinary(w io.Writer) error {
	doc, err := m.ExportGLTF()
	if err != nil {
		return err
	}
	return gltfutils.ExportBinary(w, doc)
}

func (e *gltfExporter) exportPiece(p *Piece) (uint32, error) {
	name := p.Name
	if name == "" {
		name = e.rng.RandomName()
	}

	node := &gltf.Node{
		Name:        name,
		Translation: p.ParentOffset,
	}

	if p.PrimitiveType == PrimitiveTriangles && len(p.Indices) >= 3 && len(p.Indices)%3 == 0 {
		mesh, err := e.exportGeometry(name, p)
		if err != nil {
			return 0, err
		}
		e.doc.Meshes = append(e.doc.Meshes, mesh)
		node.Mesh = gltf.Index(uint32(len(e.doc.Meshes) - 1))
	}

	e.doc.Nodes = append(e.doc.Nodes, node)
	iNode := uint32(len(e.doc.Nodes) - 1)

	for _, child := range p.Children {
		iChild, err := e.exportPiece(child)
		if err != nil {
			return 0, err
		}
		node.Children = append(node.Children, iChild)
	}
	return iNode, nil
}

func (e *gltfExporter) exportGeometry(name string, p *Piece) (*gltf.Mesh, error) {
	verticesCount := len(p.Vertices)

	positions := make([][3]float32, verticesCount)
	normals := make([][3]float32, verticesCount)
	uvs := make([][2]float32, verticesCount)
	colors := make([][3]float32, verticesCount)
	for iVertex, v := range p.Vertices {
		positions[iVertex] = v.Position
		normal := v.Normal
		if normal.Len() > 0.5 {
			normal = normal.Normalize()
		}
		normals[iVertex] = normal
		uvs[iVertex] = v.TexCoords
		ao := v.AmbientOcclusion()
		colors[iVertex] = [3]float32{ao, ao, ao}
	}

	indices := make([]uint32, len(p.Indices))
	for i, index := range p.Indices {
		if index < 0 || int(index) >= verticesCount {
			return nil, errors.Errorf("piece %q index %d out of range", p.Name, index)
		}
		indices[i] = uint32(index)
	}

	attributes := map[string]uint32{
		"POSITION":   modeler.WritePosition(e.doc, positions),
		"NORMAL":     modeler.WriteNormal(e.doc, normals),
		"TEXCOORD_0": modeler.WriteTextureCoord(e.doc, uvs),
		"COLOR_0":    modeler.WriteColor(e.doc, colors),
	}

	return &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{
			&gltf.Primitive{
				Indices:    gltf.Index(modeler.WriteIndices(e.doc, indices)),
				Attributes: attributes,
				Material:   gltf.Index(0),
			},
		},
	}, nil
}
