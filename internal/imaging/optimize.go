package imaging

import (
	"image"
	"math"

	"publicpulse/internal/port"
)

const maxSearchIterations = 8

// OptimizationTarget configures one optimization call.
// Invariant: MinQuality <= InitialQuality. Qualities are in (0,1].
type OptimizationTarget struct {
	MaxFileSizeMB  float64
	MaxWidth       int
	MaxHeight      int
	InitialQuality float64
	MinQuality     float64
	Format         string // output format; defaults to jpeg
}

// DefaultOptimizationTarget returns the target used before extraction
// calls, sized for the vision API's inline payload ceiling.
func DefaultOptimizationTarget() OptimizationTarget {
	return OptimizationTarget{
		MaxFileSizeMB:  3.5,
		MaxWidth:       2048,
		MaxHeight:      2048,
		InitialQuality: 0.85,
		MinQuality:     0.3,
		Format:         "jpeg",
	}
}

// Optimizer recompresses and rescales images until they fit a payload-size
// ceiling, preferring the highest quality that satisfies it.
type Optimizer struct {
	codec port.ImageCodec
}

// NewOptimizer creates an Optimizer on top of the given codec.
func NewOptimizer(codec port.ImageCodec) *Optimizer {
	return &Optimizer{codec: codec}
}

// Optimize returns an encoding of data no larger than the target size where
// possible. When even the minimum quality cannot satisfy the budget, the
// minimum-quality attempt is returned rather than an error; an oversized
// payload is preferred over losing the submission.
func (o *Optimizer) Optimize(data []byte, target OptimizationTarget) ([]byte, error) {
	maxBytes := int(target.MaxFileSizeMB * 1024 * 1024)
	if maxBytes > 0 && len(data) <= maxBytes {
		return data, nil
	}

	img, _, err := o.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	format := target.Format
	if format == "" {
		format = "jpeg"
	}

	b := img.Bounds()
	if (target.MaxWidth > 0 && b.Dx() > target.MaxWidth) || (target.MaxHeight > 0 && b.Dy() > target.MaxHeight) {
		scale := math.Min(
			float64(target.MaxWidth)/float64(b.Dx()),
			float64(target.MaxHeight)/float64(b.Dy()),
		)
		img = o.codec.Resize(img,
			int(math.Round(float64(b.Dx())*scale)),
			int(math.Round(float64(b.Dy())*scale)))
	}

	encoded, err := o.encodeAt(img, format, target.InitialQuality)
	if err != nil {
		return nil, err
	}
	if len(encoded) <= maxBytes {
		return encoded, nil
	}

	// Binary search on quality between the floor and the last attempt,
	// keeping the best compliant result.
	var best []byte
	low, high := target.MinQuality, target.InitialQuality
	for i := 0; i < maxSearchIterations && high-low > 0.05; i++ {
		mid := (low + high) / 2
		out, err := o.encodeAt(img, format, mid)
		if err != nil {
			return nil, err
		}
		if len(out) <= maxBytes {
			best = out
			low = mid // compliant: try higher quality
		} else {
			high = mid
		}
	}
	if best != nil {
		return best, nil
	}

	// Nothing in the window fit; fall back to the floor itself and accept
	// the result either way.
	out, err := o.encodeAt(img, format, target.MinQuality)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OptimizeBatch optimizes each item independently, in order. Items that
// fail (undecodable payloads) are passed through unchanged so one bad image
// does not sink the batch. onProgress, when non-nil, is called after each
// item with (completed, total).
func (o *Optimizer) OptimizeBatch(items [][]byte, target OptimizationTarget, onProgress func(done, total int)) [][]byte {
	out := make([][]byte, len(items))
	for i, data := range items {
		optimized, err := o.Optimize(data, target)
		if err != nil {
			optimized = data
		}
		out[i] = optimized
		if onProgress != nil {
			onProgress(i+1, len(items))
		}
	}
	return out
}

func (o *Optimizer) encodeAt(img image.Image, format string, quality float64) ([]byte, error) {
	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	} else if q > 100 {
		q = 100
	}
	return o.codec.Encode(img, format, q)
}
