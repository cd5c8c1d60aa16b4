package render

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"github.com/spakin/netpbm"
	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// OutputFormat is the closed set of encodable image formats. Every
// variant maps to exactly one encoder, file extension and content type.
type OutputFormat int

const (
	FormatPNG OutputFormat = iota
	FormatJPEG
	FormatGIF
	FormatWebP
	FormatPNM
	FormatTIFF
	FormatTGA
	FormatBMP
	FormatICO
	FormatHDR
	FormatOpenEXR
	FormatFarbfeld
	FormatAVIF
	FormatQOI
)

// ErrUnsupportedEncoding is returned by Encode for formats that parse
// but have no usable Go encoder (hdr, exr). The per-page failure policy
// decides whether that drops the page or aborts the request.
var ErrUnsupportedEncoding = errors.New("no encoder available for format")

const jpegQuality = 90

// ParseFormat resolves the format query parameter. An empty value means
// PNG; anything outside the closed set is a validation error.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "webp":
		return FormatWebP, nil
	case "pnm":
		return FormatPNM, nil
	case "tiff":
		return FormatTIFF, nil
	case "tga":
		return FormatTGA, nil
	case "bmp":
		return FormatBMP, nil
	case "ico":
		return FormatICO, nil
	case "hdr":
		return FormatHDR, nil
	case "openexr", "exr":
		return FormatOpenEXR, nil
	case "farbfeld", "ff":
		return FormatFarbfeld, nil
	case "avif":
		return FormatAVIF, nil
	case "qoi":
		return FormatQOI, nil
	}
	return 0, fmt.Errorf("unknown output format %q", s)
}

// Extension returns the object key suffix for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpg"
	case FormatGIF:
		return "gif"
	case FormatWebP:
		return "webp"
	case FormatPNM:
		return "pnm"
	case FormatTIFF:
		return "tiff"
	case FormatTGA:
		return "tga"
	case FormatBMP:
		return "bmp"
	case FormatICO:
		return "ico"
	case FormatHDR:
		return "hdr"
	case FormatOpenEXR:
		return "exr"
	case FormatFarbfeld:
		return "ff"
	case FormatAVIF:
		return "avif"
	case FormatQOI:
		return "qoi"
	}
	return "bin"
}

// ContentType returns the MIME type stored alongside the object.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	case FormatPNM:
		return "image/x-portable-anymap"
	case FormatTIFF:
		return "image/tiff"
	case FormatTGA:
		return "image/x-tga"
	case FormatBMP:
		return "image/bmp"
	case FormatICO:
		return "image/x-icon"
	case FormatHDR:
		return "image/vnd.radiance"
	case FormatOpenEXR:
		return "image/x-exr"
	case FormatFarbfeld:
		return "image/farbfeld"
	case FormatAVIF:
		return "image/avif"
	case FormatQOI:
		return "image/qoi"
	}
	return "application/octet-stream"
}

func (f OutputFormat) String() string {
	return f.Extension()
}

// Encode writes img to w in the receiver format.
func (f OutputFormat) Encode(w io.Writer, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatGIF:
		return gif.Encode(w, img, nil)
	case FormatWebP:
		return webp.Encode(w, img, webp.Options{Quality: jpegQuality})
	case FormatPNM:
		return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PPM, MaxValue: 255})
	case FormatTIFF:
		return tiff.Encode(w, img, nil)
	case FormatTGA:
		return tga.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatICO:
		return encodeICO(w, img)
	case FormatFarbfeld:
		return encodeFarbfeld(w, img)
	case FormatAVIF:
		return avif.Encode(w, img)
	case FormatQOI:
		return qoi.Encode(w, img)
	case FormatHDR, FormatOpenEXR:
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, f)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, f)
}
