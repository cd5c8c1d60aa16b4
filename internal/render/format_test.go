package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want OutputFormat
	}{
		{"", FormatPNG},
		{"png", FormatPNG},
		{"jpeg", FormatJPEG},
		{"jpg", FormatJPEG},
		{"gif", FormatGIF},
		{"webp", FormatWebP},
		{"pnm", FormatPNM},
		{"tiff", FormatTIFF},
		{"tga", FormatTGA},
		{"bmp", FormatBMP},
		{"ico", FormatICO},
		{"hdr", FormatHDR},
		{"openexr", FormatOpenEXR},
		{"exr", FormatOpenEXR},
		{"farbfeld", FormatFarbfeld},
		{"ff", FormatFarbfeld},
		{"avif", FormatAVIF},
		{"qoi", FormatQOI},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("svg"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExtensionTable(t *testing.T) {
	want := map[OutputFormat]string{
		FormatPNG:      "png",
		FormatJPEG:     "jpg",
		FormatGIF:      "gif",
		FormatWebP:     "webp",
		FormatPNM:      "pnm",
		FormatTIFF:     "tiff",
		FormatTGA:      "tga",
		FormatBMP:      "bmp",
		FormatICO:      "ico",
		FormatHDR:      "hdr",
		FormatOpenEXR:  "exr",
		FormatFarbfeld: "ff",
		FormatAVIF:     "avif",
		FormatQOI:      "qoi",
	}

	for f, ext := range want {
		if got := f.Extension(); got != ext {
			t.Errorf("Extension(%v) = %q, want %q", f, got, ext)
		}
		if f.ContentType() == "" {
			t.Errorf("ContentType(%v) is empty", f)
		}
	}
}

func TestEncode(t *testing.T) {
	img := testImage()

	encodable := []OutputFormat{
		FormatPNG, FormatJPEG, FormatGIF, FormatWebP, FormatPNM,
		FormatTIFF, FormatTGA, FormatBMP, FormatICO, FormatFarbfeld,
		FormatAVIF, FormatQOI,
	}

	for _, f := range encodable {
		t.Run(f.Extension(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.Encode(&buf, img); err != nil {
				t.Fatalf("Encode(%s) failed: %v", f, err)
			}
			if buf.Len() == 0 {
				t.Errorf("Encode(%s) produced no bytes", f)
			}
		})
	}

	for _, f := range []OutputFormat{FormatHDR, FormatOpenEXR} {
		t.Run(f.Extension()+" unsupported", func(t *testing.T) {
			err := f.Encode(&bytes.Buffer{}, img)
			if !errors.Is(err, ErrUnsupportedEncoding) {
				t.Errorf("expected ErrUnsupportedEncoding for %s, got %v", f, err)
			}
		})
	}
}

func TestEncodeICOContainer(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatICO.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	if len(b) < 22 {
		t.Fatalf("ICO output too short: %d bytes", len(b))
	}
	// ICONDIR: reserved=0, type=1, count=1
	if b[0] != 0 || b[1] != 0 || b[2] != 1 || b[3] != 0 || b[4] != 1 || b[5] != 0 {
		t.Errorf("unexpected ICONDIR header: %v", b[:6])
	}

	// Payload at offset 22 must be a decodable PNG
	img, err := png.Decode(bytes.NewReader(b[22:]))
	if err != nil {
		t.Fatalf("ICO payload is not PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("expected 16px payload, got %d", img.Bounds().Dx())
	}
}

func TestEncodeFarbfeld(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatFarbfeld.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	if string(b[:8]) != "farbfeld" {
		t.Errorf("missing farbfeld magic, got %q", b[:8])
	}
	// 8 magic + 8 dimensions + 16*16 pixels * 8 bytes
	if want := 8 + 8 + 16*16*8; len(b) != want {
		t.Errorf("expected %d bytes, got %d", want, len(b))
	}
}
