package render

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"io"
)

// encodeICO writes a single-entry ICO container with a PNG payload.
// PNG-compressed entries have been valid since Vista and every modern
// decoder accepts them; the ecosystem has no maintained ICO encoder, so
// the container header is written by hand.
func encodeICO(w io.Writer, img image.Image) error {
	var payload bytes.Buffer
	if err := png.Encode(&payload, img); err != nil {
		return err
	}

	bounds := img.Bounds()

	// A zero dimension byte means 256; larger images keep zero and rely
	// on the decoder reading the real size from the PNG payload.
	dimByte := func(n int) byte {
		if n >= 256 {
			return 0
		}
		return byte(n)
	}

	// ICONDIR: reserved, type 1 (icon), one entry.
	header := []any{
		uint16(0),
		uint16(1),
		uint16(1),
	}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	// ICONDIRENTRY, offset 22 = 6 byte dir + 16 byte entry.
	entry := []any{
		dimByte(bounds.Dx()),
		dimByte(bounds.Dy()),
		byte(0),    // palette size
		byte(0),    // reserved
		uint16(1),  // color planes
		uint16(32), // bits per pixel
		uint32(payload.Len()),
		uint32(22),
	}
	for _, v := range entry {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	_, err := w.Write(payload.Bytes())
	return err
}
