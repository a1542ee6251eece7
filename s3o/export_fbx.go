package s3o

import (
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/ChrisFloofyKitsune/s3o-browser/utils"
	"github.com/ChrisFloofyKitsune/s3o-browser/utils/fbxbuilder"
)

type fbxExporter struct {
	rng utils.RandomNameGenerator
}

// ExportFbx emits the piece tree into the builder: one Model per
// piece (Mesh when it has triangles, Null otherwise), geometry and
// hierarchy wired through OO connections. Parent offsets become local
// translations so the tree poses identically in a DCC tool.
func (m *Model) ExportFbx(f *fbxbuilder.FBXBuilder) {
	e := &fbxExporter{}
	rootId := e.exportPiece(f, m.RootPiece)
	f.AddConnections(bfbx73.C("OO", rootId, 0))
}

// ExportFbxDefault builds a complete standalone document.
func (m *Model) ExportFbxDefault(filename string) *fbxbuilder.FBXBuilder {
	f := fbxbuilder.NewFBXBuilder(filename)
	m.ExportFbx(f)
	return f
}

func (e *fbxExporter) exportPiece(f *fbxbuilder.FBXBuilder, p *Piece) int64 {
	name := p.Name
	if name == "" {
		name = e.rng.RandomName()
	}

	modelId := f.GenerateId()
	hasGeometry := p.PrimitiveType == PrimitiveTriangles &&
		len(p.Indices) >= 3 && len(p.Indices)%3 == 0

	class := "Null"
	if hasGeometry {
		class = "Mesh"
	}

	model := bfbx73.Model(modelId, name+"\x00\x01Model", class).AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A",
				float64(p.ParentOffset[0]), float64(p.ParentOffset[1]), float64(p.ParentOffset[2])),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
	f.AddObjects(model)

	if hasGeometry {
		geometryId := e.exportGeometry(f, name, p)
		f.AddConnections(bfbx73.C("OO", geometryId, modelId))
	} else {
		nodeAttribute := bfbx73.NodeAttribute(
			f.GenerateId(), name+"\x00\x01NodeAttribute", "Null").AddNodes(
			bfbx73.TypeFlags("Null"),
		)
		f.AddObjects(nodeAttribute)
		f.AddConnections(bfbx73.C("OO", nodeAttribute.Properties[0].(int64), modelId))
	}

	for _, child := range p.Children {
		childId := e.exportPiece(f, child)
		f.AddConnections(bfbx73.C("OO", childId, modelId))
	}
	return modelId
}

func (e *fbxExporter) exportGeometry(f *fbxbuilder.FBXBuilder, name string, p *Piece) int64 {
	vertices := make([]float64, 0, len(p.Vertices)*3)
	normals := make([]float64, 0, len(p.Vertices)*3)
	uv := make([]float64, 0, len(p.Vertices)*2)
	for _, v := range p.Vertices {
		vertices = append(vertices,
			float64(v.Position[0]), float64(v.Position[1]), float64(v.Position[2]))
		normals = append(normals,
			float64(v.Normal[0]), float64(v.Normal[1]), float64(v.Normal[2]))
		uv = append(uv, float64(v.TexCoords[0]), float64(-v.TexCoords[1]))
	}

	// last index of every triangle is stored negated-minus-one
	indexes := make([]int32, 0, len(p.Indices))
	uvindexes := make([]int32, 0, len(p.Indices))
	for t := 0; t+2 < len(p.Indices); t += 3 {
		indexes = append(indexes,
			p.Indices[t], p.Indices[t+1], -(p.Indices[t+2])-1)
		uvindexes = append(uvindexes,
			p.Indices[t], p.Indices[t+1], p.Indices[t+2])
	}

	geometryId := f.GenerateId()
	geometryLayer := bfbx73.Layer(0).AddNodes(
		bfbx73.Version(100),
	)

	geometry := bfbx73.Geometry(geometryId, "\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(indexes),
		geometryLayer,
	)

	geometry.AddNode(
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(normals),
		),
	)
	geometryLayer.AddNode(
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementNormal"),
			bfbx73.TypedIndex(0),
		),
	)

	geometry.AddNode(
		bfbx73.LayerElementUV(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByPolygonVertex"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.UV(uv),
			bfbx73.UVIndex(uvindexes),
		),
	)
	geometryLayer.AddNode(
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementUV"),
			bfbx73.TypedIndex(0),
		),
	)

	f.AddObjects(geometry)
	return geometryId
}
