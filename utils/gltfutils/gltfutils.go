package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// ExportBinary attaches every node without a parent to the default
// scene and writes the document as GLB.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	child := make(map[uint32]struct{})
	for _, node := range doc.Nodes {
		for _, c := range node.Children {
			child[c] = struct{}{}
		}
	}
	for iNode := range doc.Nodes {
		if _, ok := child[uint32(iNode)]; !ok {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
