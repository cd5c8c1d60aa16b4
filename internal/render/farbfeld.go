package render

import (
	"bufio"
	"encoding/binary"
	"image"
	"image/color"
	"io"
)

// encodeFarbfeld writes the suckless farbfeld format: an 8-byte magic,
// big-endian width and height, then 16-bit straight-alpha RGBA pixels.
// The format is small enough that writing it directly beats pulling in
// an unmaintained dependency.
func encodeFarbfeld(w io.Writer, img image.Image) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("farbfeld"); err != nil {
		return err
	}

	bounds := img.Bounds()
	if err := binary.Write(bw, binary.BigEndian, uint32(bounds.Dx())); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, uint32(bounds.Dy())); err != nil {
		return err
	}

	var px [8]byte
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// farbfeld stores non-premultiplied components
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			binary.BigEndian.PutUint16(px[0:], c.R)
			binary.BigEndian.PutUint16(px[2:], c.G)
			binary.BigEndian.PutUint16(px[4:], c.B)
			binary.BigEndian.PutUint16(px[6:], c.A)
			if _, err := bw.Write(px[:]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}
