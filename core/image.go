package core

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// decoders are matched against the leading bytes of an image. TGA has no
// magic and is tried last. The tga package registers itself with an empty
// magic, so image.Decode would route every format to it.
var decoders = []struct {
	format string
	match  func(header []byte) bool
	decode func(io.Reader) (image.Image, error)
}{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode},
	{"bmp", prefix("BM"), bmp.Decode},
	{"webp", func(h []byte) bool {
		return len(h) >= 12 && string(h[:4]) == "RIFF" && string(h[8:12]) == "WEBP"
	}, webp.Decode},
	{"tga", func([]byte) bool { return true }, tga.Decode},
}

func prefix(magic string) func([]byte) bool {
	return func(h []byte) bool {
		return bytes.HasPrefix(h, []byte(magic))
	}
}

// DecodeImage decodes a png, jpeg, bmp, webp or tga image and reports
// which of them it was.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(12)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	for _, d := range decoders {
		if !d.match(header) {
			continue
		}
		img, err := d.decode(br)
		if err != nil {
			return nil, "", fmt.Errorf("decode %s image: %w", d.format, err)
		}
		return img, d.format, nil
	}
	return nil, "", image.ErrFormat
}

// LoadImage decodes the image file at path
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// RGBAPixels draws img onto a tightly packed RGBA canvas and returns its
// pixels, top row first.
func RGBAPixels(img image.Image) []uint8 {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*rgba.Rect.Dx() && rgba.Rect.Min == (image.Point{}) {
		return rgba.Pix
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba.Pix
}

// ScaleImage resamples img to width x height
func ScaleImage(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
