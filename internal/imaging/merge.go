package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"publicpulse/internal/domain"
	"publicpulse/internal/port"
)

// Orientation is the axis along which merged images are laid out.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// MergeLayout configures one merge call. Immutable per call.
type MergeLayout struct {
	Orientation Orientation
	MaxWidth    int
	MaxHeight   int
	Spacing     int
	Background  color.Color
	Quality     int // JPEG quality 1..100 for the re-encoded output
}

// DefaultMergeLayout returns the layout used for multi-page submissions.
func DefaultMergeLayout() MergeLayout {
	return MergeLayout{
		Orientation: Vertical,
		MaxWidth:    2048,
		MaxHeight:   4096,
		Spacing:     20,
		Background:  color.White,
		Quality:     85,
	}
}

// Merger composes several document images into a single composite image so
// a batch can be extracted in one vision call.
type Merger struct {
	codec port.ImageCodec
}

// NewMerger creates a Merger on top of the given codec.
func NewMerger(codec port.ImageCodec) *Merger {
	return &Merger{codec: codec}
}

// Merge lays the images out sequentially along the configured axis and
// returns one JPEG-encoded composite. A single input is returned unchanged.
// Any decode failure fails the whole merge; callers fall back to the
// unmerged originals.
func (m *Merger) Merge(images [][]byte, layout MergeLayout) ([]byte, error) {
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}
	if len(images) == 1 {
		return images[0], nil
	}

	decoded := make([]image.Image, len(images))
	for i, data := range images {
		img, _, err := m.codec.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decoding image %d of %d: %w", i+1, len(images), err)
		}
		decoded[i] = img
	}

	// Common slot size: the max width and height across all inputs.
	slotW, slotH := 0, 0
	for _, img := range decoded {
		b := img.Bounds()
		if b.Dx() > slotW {
			slotW = b.Dx()
		}
		if b.Dy() > slotH {
			slotH = b.Dy()
		}
	}

	count := len(decoded)
	var totalW, totalH int
	if layout.Orientation == Horizontal {
		totalW = slotW*count + layout.Spacing*(count-1)
		totalH = slotH
	} else {
		totalW = slotW
		totalH = slotH*count + layout.Spacing*(count-1)
	}

	// Uniform downscale when the composite exceeds the configured bounds.
	scale := 1.0
	if layout.MaxWidth > 0 && totalW > layout.MaxWidth {
		scale = math.Min(scale, float64(layout.MaxWidth)/float64(totalW))
	}
	if layout.MaxHeight > 0 && totalH > layout.MaxHeight {
		scale = math.Min(scale, float64(layout.MaxHeight)/float64(totalH))
	}
	spacing := layout.Spacing
	if scale < 1 {
		totalW = atLeast1(int(math.Round(float64(totalW) * scale)))
		totalH = atLeast1(int(math.Round(float64(totalH) * scale)))
		slotW = atLeast1(int(math.Round(float64(slotW) * scale)))
		slotH = atLeast1(int(math.Round(float64(slotH) * scale)))
		spacing = int(math.Round(float64(spacing) * scale))
	}

	background := layout.Background
	if background == nil {
		background = color.White
	}
	canvas := image.NewRGBA(image.Rect(0, 0, totalW, totalH))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	for i, img := range decoded {
		b := img.Bounds()
		// Fit within the slot preserving aspect ratio.
		fit := math.Min(float64(slotW)/float64(b.Dx()), float64(slotH)/float64(b.Dy()))
		dw := atLeast1(int(math.Round(float64(b.Dx()) * fit)))
		dh := atLeast1(int(math.Round(float64(b.Dy()) * fit)))
		scaled := m.codec.Resize(img, dw, dh)

		var slotX, slotY int
		if layout.Orientation == Horizontal {
			slotX = i * (slotW + spacing)
		} else {
			slotY = i * (slotH + spacing)
		}
		// Center within the slot; the rest stays background.
		x := slotX + (slotW-dw)/2
		y := slotY + (slotH-dh)/2
		rect := image.Rect(x, y, x+dw, y+dh)
		draw.Draw(canvas, rect, scaled, scaled.Bounds().Min, draw.Src)
	}

	return m.codec.Encode(canvas, "jpeg", layout.Quality)
}

func atLeast1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
