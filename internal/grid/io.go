package grid

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/tiff"

	postcolor "github.com/gogpu/postfx/internal/color"
)

// ReadFile decodes the image at path into a linear grid. The codec is
// chosen by extension: .hdr (Radiance RGBE, already linear), .tif/.tiff,
// .png and .jpg/.jpeg (sRGB encoded, linearized on load).
func ReadFile(path string) (*Grid, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("grid: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, filepath.Ext(path))
}

// Decode reads an image in the format named by ext (with or without the
// leading dot).
func Decode(r io.Reader, ext string) (*Grid, error) {
	var (
		img image.Image
		err error
	)
	switch normalizeExt(ext) {
	case ".hdr":
		img, err = rgbe.Decode(r)
	case ".tif", ".tiff":
		img, err = tiff.Decode(r)
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("grid: decode %s: %w", ext, err)
	}
	return FromImage(img)
}

// FromImage converts img to a linear grid. HDR images keep their values;
// every other image is treated as sRGB encoded and unpremultiplied.
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	g, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	if h, ok := img.(hdr.Image); ok {
		for y := 0; y < g.height; y++ {
			for x := 0; x < g.width; x++ {
				r, gg, bb, _ := h.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
				g.Set(x, y, f32.Vec4{float32(r), float32(gg), float32(bb), 1})
			}
		}
		return g, nil
	}

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			s := f32.Vec4{
				float32(c.R) / 0xffff,
				float32(c.G) / 0xffff,
				float32(c.B) / 0xffff,
				float32(c.A) / 0xffff,
			}
			g.Set(x, y, postcolor.ToLinear(s))
		}
	}
	return g, nil
}

// WriteFile encodes g to path, choosing the codec by extension. .hdr keeps
// the full linear range; .png and .tif are sRGB encoded and clipped to [0,1].
func WriteFile(path string, g *Grid) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("grid: create file: %w", err)
	}
	if err := Encode(f, g, filepath.Ext(path)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes g to w in the format named by ext.
func Encode(w io.Writer, g *Grid, ext string) error {
	var err error
	switch normalizeExt(ext) {
	case ".hdr":
		err = rgbe.Encode(w, hdrImage{g})
	case ".tif", ".tiff":
		err = tiff.Encode(w, ToNRGBA64(g), &tiff.Options{Compression: tiff.Deflate})
	case ".png":
		err = png.Encode(w, ToNRGBA(g))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("grid: encode %s: %w", ext, err)
	}
	return nil
}

// ToNRGBA converts g to an 8-bit sRGB image.
func ToNRGBA(g *Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.width, g.height))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: postcolor.Encode8(c[0]),
				G: postcolor.Encode8(c[1]),
				B: postcolor.Encode8(c[2]),
				A: unorm8(c[3]),
			})
		}
	}
	return img
}

// ToNRGBA64 converts g to a 16-bit sRGB image.
func ToNRGBA64(g *Grid) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, g.width, g.height))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			s := postcolor.ToSRGB(g.At(x, y))
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: unorm16(s[0]),
				G: unorm16(s[1]),
				B: unorm16(s[2]),
				A: unorm16(s[3]),
			})
		}
	}
	return img
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return ext
}

func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func unorm16(v float32) uint16 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// hdrImage exposes a grid as an hdr.Image for the RGBE encoder.
type hdrImage struct {
	g *Grid
}

func (h hdrImage) ColorModel() color.Model { return hdrcolor.RGBModel }
func (h hdrImage) Bounds() image.Rectangle { return image.Rect(0, 0, h.g.width, h.g.height) }
func (h hdrImage) At(x, y int) color.Color { return h.HDRAt(x, y) }
func (h hdrImage) Size() int               { return h.g.width * h.g.height }

func (h hdrImage) HDRAt(x, y int) hdrcolor.Color {
	c := h.g.At(x, y)
	return hdrcolor.RGB{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}
}
