// Package texture loads the diffuse/teamcolor and shading textures a
// model references and re-encodes them as webp for the browser ui.
// Spring content ships these as tga, bmp, png or jpeg; dds is out of
// scope, those files are reported instead of silently skipped.
package texture

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/ChrisFloofyKitsune/s3o-browser/config"
)

// Find resolves a texture path from a model against the configured
// textures directory. Model paths are treated as bare file names so a
// hostile path cannot escape the directory.
func Find(name string) (string, error) {
	if name == "" {
		return "", errors.Errorf("model has no texture path set")
	}
	dir := config.TexturesDir()
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	path := filepath.Join(dir, base)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// content often references a different container than what is on
	// disk, so retry the stem with every extension we can decode
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, ext := range []string{".png", ".tga", ".bmp", ".jpg", ".jpeg"} {
		path := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Errorf("texture %q not found under %q", name, dir)
}

// Load reads and decodes a texture file into NRGBA.
func Load(path string) (*image.NRGBA, error) {
	if strings.EqualFold(filepath.Ext(path), ".dds") {
		return nil, errors.Errorf("dds textures are not supported, convert %q first", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read texture %q", path)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode texture %q", path)
	}
	return toNRGBA(img), nil
}

// EncodeWebp writes the image as lossless webp.
func EncodeWebp(w io.Writer, img *image.NRGBA) error {
	return nativewebp.Encode(w, img, nil)
}

// Preview downscales the image so its longest side fits maxSize.
func Preview(img *image.NRGBA, maxSize int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}
	if w >= h {
		h = h * maxSize / w
		w = maxSize
	} else {
		w = w * maxSize / h
		h = maxSize
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// no alpha channel in the source, force it opaque
		draw.Draw(dst, b, src, b.Min, draw.Src)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Pix[dst.PixOffset(x, y)+3] = 255
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
