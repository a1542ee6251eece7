package web

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/ChrisFloofyKitsune/s3o-browser/s3o"
	"github.com/ChrisFloofyKitsune/s3o-browser/status"
	"github.com/ChrisFloofyKitsune/s3o-browser/texture"
	"github.com/ChrisFloofyKitsune/s3o-browser/webutils"
)

// modelPath maps a request file name onto the models directory.
// filepath.Base strips any traversal the client may have smuggled in.
func modelPath(file string) string {
	return filepath.Join(ServerModelsDir, filepath.Base(file))
}

func loadModel(file string) (*s3o.Model, error) {
	data, err := os.ReadFile(modelPath(file))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read model %q", file)
	}
	return s3o.NewFromData(data)
}

func HandlerAjaxModels(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(ServerModelsDir)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".s3o") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	webutils.WriteJson(w, files)
}

func HandlerAjaxModelFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	m, err := loadModel(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, m.Marshal())
}

func HandlerDumpModelFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := os.Open(modelPath(file))
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	defer f.Close()
	webutils.WriteFile(w, f, filepath.Base(file))
}

func HandlerUploadModelFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	// decode before accepting so a broken upload cannot clobber a model
	if _, err := s3o.NewFromData(data); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Uploaded file is not a valid model"))
		return
	}

	if err := os.WriteFile(modelPath(file), data, 0644); err != nil {
		webutils.WriteError(w, err)
		return
	}
	status.Info("uploaded %s (%d bytes)", filepath.Base(file), len(data))
	webutils.WriteJson(w, "ok")
}

func HandlerActionModelFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	action := mux.Vars(r)["action"]

	m, err := loadModel(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	switch action {
	case "triangulate":
		m.TriangulateFaces()
		writeModelDownload(w, m, stem+".s3o")

	case "optimize":
		status.Info("optimizing %s", stem)
		m.TriangulateFaces()
		m.RootPiece.Optimize(true)
		status.Info("optimized %s", stem)
		writeModelDownload(w, m, stem+".s3o")

	case "normals":
		angle := queryFloat(r, "angle", 60)
		m.RootPiece.RecalculateNormals(float32(angle), true)
		writeModelDownload(w, m, stem+".s3o")

	case "merge":
		m.TriangulateFaces()
		m.RootPiece.MergeChildren()
		writeModelDownload(w, m, stem+".s3o")

	case "rescale":
		m.Rescale(float32(queryFloat(r, "scale", 1)))
		writeModelDownload(w, m, stem+".s3o")

	case "simplify":
		factor := queryFloat(r, "factor", 0.5)
		m.TriangulateFaces()
		var serr error
		m.RootPiece.Traverse(func(p *s3o.Piece) {
			if serr != nil || len(p.Indices) == 0 {
				return
			}
			serr = p.SimplifyGeometry(factor)
		})
		if serr != nil {
			webutils.WriteError(w, serr)
			return
		}
		writeModelDownload(w, m, stem+".s3o")

	case "obj":
		m.TriangulateFaces()
		var buf bytes.Buffer
		if err := m.ExportObj(&buf); err != nil {
			webutils.WriteError(w, err)
			return
		}
		webutils.WriteFile(w, &buf, stem+".obj")

	case "gltf":
		m.TriangulateFaces()
		var buf bytes.Buffer
		if err := m.ExportGLTFBinary(&buf); err != nil {
			webutils.WriteError(w, err)
			return
		}
		webutils.WriteFile(w, &buf, stem+".glb")

	case "fbx":
		m.TriangulateFaces()
		f := m.ExportFbxDefault(stem + ".fbx")
		webutils.WriteFileHeaders(w, stem+".fbx")
		if err := f.Write(w); err != nil {
			webutils.WriteError(w, err)
		}

	case "fbxzip":
		m.TriangulateFaces()
		f := m.ExportFbxDefault(stem + ".fbx")
		for _, tex := range []string{m.TexturePath1, m.TexturePath2} {
			path, err := texture.Find(tex)
			if err != nil {
				continue
			}
			if data, err := os.ReadFile(path); err == nil {
				f.AddExportFile(filepath.Base(path), data)
			}
		}
		webutils.WriteFileHeaders(w, stem+".zip")
		if err := f.WriteZip(w, stem+".fbx"); err != nil {
			webutils.WriteError(w, err)
		}

	case "texture", "texture2":
		tex := m.TexturePath1
		if action == "texture2" {
			tex = m.TexturePath2
		}
		writeTexturePreview(w, tex)

	default:
		webutils.WriteError(w, errors.Errorf("Unknown action %q", action))
	}
}

func writeModelDownload(w http.ResponseWriter, m *s3o.Model, name string) {
	data, err := m.MarshalBuffer()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, bytes.NewReader(data), name)
}

func writeTexturePreview(w http.ResponseWriter, tex string) {
	path, err := texture.Find(tex)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	img, err := texture.Load(path)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	img = texture.Preview(img, 512)

	w.Header().Set("Content-Type", "image/webp")
	if err := texture.EncodeWebp(w, img); err != nil {
		webutils.WriteError(w, err)
	}
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return value
}
