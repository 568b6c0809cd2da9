package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"publicpulse/internal/domain"
	"publicpulse/internal/port"
)

type stdCodec struct{}

// NewCodec returns an ImageCodec backed by the standard library raster
// packages, with x/image CatmullRom resampling for resizes.
func NewCodec() port.ImageCodec {
	return &stdCodec{}
}

func (c *stdCodec) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	return img, format, nil
}

func (c *stdCodec) Encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	default:
		if quality < 1 {
			quality = 1
		} else if quality > 100 {
			quality = 100
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (c *stdCodec) Resize(img image.Image, w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
