package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ChrisFloofyKitsune/s3o-browser/config"
	"github.com/ChrisFloofyKitsune/s3o-browser/s3o"
	"github.com/ChrisFloofyKitsune/s3o-browser/utils"
)

// batch model tool: the same passes the browser runs, without a browser
func main() {
	var inPath, outPath, op, encoding string
	var scale, angle, factor float64
	var cacheSize int
	var dump bool
	flag.StringVar(&inPath, "i", "", "Input .s3o file or folder")
	flag.StringVar(&outPath, "o", "", "Output file or folder (defaults to rewriting in place)")
	flag.StringVar(&op, "op", "optimize", "Operation: optimize, triangulate, normals, merge, rescale, simplify, obj, gltf, fbx")
	flag.StringVar(&encoding, "encoding", "Windows 1252", "Code page for piece names and texture paths")
	flag.Float64Var(&scale, "scale", 1, "Scale factor for -op rescale")
	flag.Float64Var(&angle, "angle", 60, "Smoothing angle in degrees for -op normals")
	flag.Float64Var(&factor, "factor", 0.5, "Triangle ratio for -op simplify")
	flag.IntVar(&cacheSize, "cachesize", 32, "Simulated vertex cache size used by optimization")
	flag.BoolVar(&dump, "dump", false, "Dump the decoded model tree to the log")
	flag.Parse()

	if inPath == "" {
		flag.PrintDefaults()
		return
	}

	s := config.Default()
	s.Encoding = encoding
	s.VertexCacheSize = cacheSize
	if err := config.Apply(s); err != nil {
		log.Fatal(err)
	}

	files, err := collectInputs(inPath)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatalf("no .s3o files under %q", inPath)
	}

	for _, file := range files {
		if err := processFile(file, outPath, op, scale, angle, factor, dump); err != nil {
			log.Fatalf("%s: %v", file, err)
		}
	}
}

func collectInputs(inPath string) ([]string, error) {
	info, err := os.Stat(inPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{inPath}, nil
	}

	entries, err := os.ReadDir(inPath)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".s3o") {
			files = append(files, filepath.Join(inPath, entry.Name()))
		}
	}
	return files, nil
}

func processFile(file, outPath, op string, scale, angle, factor float64, dump bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	m, err := s3o.NewFromData(data)
	if err != nil {
		return err
	}
	if dump {
		utils.LogDump(m.Marshal())
	}

	var out bytes.Buffer
	ext := ".s3o"

	switch op {
	case "triangulate":
		m.TriangulateFaces()
	case "optimize":
		m.TriangulateFaces()
		m.RootPiece.Optimize(true)
	case "normals":
		m.RootPiece.RecalculateNormals(float32(angle), true)
	case "merge":
		m.TriangulateFaces()
		m.RootPiece.MergeChildren()
	case "rescale":
		m.Rescale(float32(scale))
	case "simplify":
		m.TriangulateFaces()
		var serr error
		m.RootPiece.Traverse(func(p *s3o.Piece) {
			if serr != nil || len(p.Indices) == 0 {
				return
			}
			serr = p.SimplifyGeometry(factor)
		})
		if serr != nil {
			return serr
		}
	case "obj":
		m.TriangulateFaces()
		ext = ".obj"
		if err := m.ExportObj(&out); err != nil {
			return err
		}
	case "gltf":
		m.TriangulateFaces()
		ext = ".glb"
		if err := m.ExportGLTFBinary(&out); err != nil {
			return err
		}
	case "fbx":
		m.TriangulateFaces()
		ext = ".fbx"
		f := m.ExportFbxDefault(filepath.Base(file))
		if err := f.Write(&out); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown operation %q", op)
	}

	if ext == ".s3o" {
		data, err := m.MarshalBuffer()
		if err != nil {
			return err
		}
		out.Write(data)
	}

	target := targetPath(file, outPath, ext)
	if err := os.WriteFile(target, out.Bytes(), 0644); err != nil {
		return err
	}
	log.Printf("[s3opt] %s -> %s (%d bytes)", file, target, out.Len())
	return nil
}

func targetPath(file, outPath, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	switch {
	case outPath == "":
		return filepath.Join(filepath.Dir(file), stem+ext)
	case isDir(outPath):
		return filepath.Join(outPath, stem+ext)
	default:
		return outPath
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
