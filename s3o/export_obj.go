package s3o

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ChrisFloofyKitsune/s3o-browser/utils"
)

type objWriter struct {
	w    io.Writer
	err  error
	iV  uint32 // obj indexes vertices from 1
	rng utils.RandomNameGenerator
}

func (o *objWriter) line(format string, args ...interface{}) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, format+"\n", args...)
}

// ExportObj writes the whole piece tree as Wavefront OBJ, one object
// group per piece with cumulative parent offsets baked into positions.
// Emit pieces become small placeholder triangles so downstream editors
// keep them visible, matching how the community OBJ exports always
// looked.
func (m *Model) ExportObj(w io.Writer) error {
	o := &objWriter{w: w}
	o.line("# Spring unit export")
	o.line("# mx=%.2f,my=%.2f,mz=%.2f,r=%.2f,h=%.2f,t1=%s,t2=%s",
		m.Midpoint[0], m.Midpoint[1], m.Midpoint[2],
		m.CollisionRadius, m.Height,
		m.TexturePath1, m.TexturePath2)
	o.exportPiece(m.RootPiece, mgl32.Vec3{})
	return o.err
}

func (o *objWriter) exportPiece(p *Piece, parentPos mgl32.Vec3) {
	name := p.Name
	if name == "" {
		name = o.rng.RandomName()
	}

	pos := parentPos.Add(p.ParentOffset)

	switch {
	case p.PrimitiveType == PrimitiveTriangles && len(p.Indices) >= 3 && len(p.Indices)%3 == 0:
		o.line("o %s", name)
		for _, v := range p.Vertices {
			wp := v.Position.Add(pos)
			o.line("v %f %f %f", wp[0], wp[1], wp[2])
			o.line("vt %.9f %.9f", v.TexCoords[0], v.TexCoords[1])
			o.line("vn %f %f %f", v.Normal[0], v.Normal[1], v.Normal[2])
		}
		for t := 0; t+2 < len(p.Indices); t += 3 {
			a := o.iV + uint32(p.Indices[t]) + 1
			b := o.iV + uint32(p.Indices[t+1]) + 1
			c := o.iV + uint32(p.Indices[t+2]) + 1
			o.line("f %d/%d/%d %d/%d/%d %d/%d/%d", a, a, a, b, b, b, c, c, c)
		}
		o.iV += uint32(len(p.Vertices))

	case len(p.Vertices) <= 2:
		// aim/emit marker: placeholder triangle spanning position and direction
		o.line("o %s,e=%d", name, len(p.Vertices))
		corners := emitPlaceholder(p, pos)
		for _, corner := range corners {
			o.line("v %f %f %f", corner[0], corner[1], corner[2])
		}
		o.line("f %d %d %d", o.iV+1, o.iV+2, o.iV+3)
		o.iV += 3

	default:
		o.line("# piece %s skipped: %v with %d indices", name, p.PrimitiveType, len(p.Indices))
	}

	for _, child := range p.Children {
		o.exportPiece(child, pos)
	}
}

func emitPlaceholder(p *Piece, pos mgl32.Vec3) [3]mgl32.Vec3 {
	switch len(p.Vertices) {
	case 1:
		return [3]mgl32.Vec3{
			pos,
			pos.Add(p.Vertices[0].Position),
			pos.Add(mgl32.Vec3{0, 2, 0}),
		}
	case 2:
		return [3]mgl32.Vec3{
			pos.Add(p.Vertices[0].Position),
			pos.Add(p.Vertices[1].Position),
			pos.Add(p.Vertices[0].Position).Add(mgl32.Vec3{0, 2, 0}),
		}
	default:
		return [3]mgl32.Vec3{
			pos,
			pos.Add(mgl32.Vec3{0, 0, 4}),
			pos.Add(mgl32.Vec3{0, 2, 0}),
		}
	}
}
