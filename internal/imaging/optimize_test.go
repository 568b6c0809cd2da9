package imaging

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisy images defeat JPEG compression, which keeps payloads large enough
// to force the search loop.
func encodeNoisyJPEG(t *testing.T, w, h, quality int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	data, err := NewCodec().Encode(img, "jpeg", quality)
	require.NoError(t, err)
	return data
}

func TestOptimizer_SmallPayloadUntouched(t *testing.T) {
	o := NewOptimizer(NewCodec())
	data := encodeTestJPEG(t, 50, 50)

	out, err := o.Optimize(data, DefaultOptimizationTarget())
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestOptimizer_ResizesOversizedDimensions(t *testing.T) {
	codec := NewCodec()
	o := NewOptimizer(codec)
	data := encodeNoisyJPEG(t, 600, 400, 95)

	target := OptimizationTarget{
		MaxFileSizeMB:  0.00001, // force the resize and search path
		MaxWidth:       300,
		MaxHeight:      300,
		InitialQuality: 0.85,
		MinQuality:     0.3,
	}

	out, err := o.Optimize(data, target)
	require.NoError(t, err)

	img, _, err := codec.Decode(out)
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 300)
	assert.LessOrEqual(t, img.Bounds().Dy(), 300)
}

func TestOptimizer_ShrinksToBudget(t *testing.T) {
	o := NewOptimizer(NewCodec())
	data := encodeNoisyJPEG(t, 500, 500, 100)

	maxMB := 0.02 // ~20KB, below the high-quality noisy payload
	require.Greater(t, len(data), int(maxMB*1024*1024))

	target := OptimizationTarget{
		MaxFileSizeMB:  maxMB,
		MaxWidth:       500,
		MaxHeight:      500,
		InitialQuality: 0.9,
		MinQuality:     0.05,
	}

	out, err := o.Optimize(data, target)
	require.NoError(t, err)
	assert.Less(t, len(out), len(data))
}

func TestOptimizer_MinQualityFallbackNeverFails(t *testing.T) {
	o := NewOptimizer(NewCodec())
	data := encodeNoisyJPEG(t, 400, 400, 100)

	target := OptimizationTarget{
		MaxFileSizeMB:  0.0001, // ~100 bytes, unreachable
		MaxWidth:       400,
		MaxHeight:      400,
		InitialQuality: 0.85,
		MinQuality:     0.3,
	}

	out, err := o.Optimize(data, target)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestOptimizer_UndecodablePayloadFails(t *testing.T) {
	o := NewOptimizer(NewCodec())

	target := DefaultOptimizationTarget()
	target.MaxFileSizeMB = 0.000001

	_, err := o.Optimize([]byte("not an image"), target)
	assert.Error(t, err)
}

func TestOptimizer_BatchPassesThroughFailures(t *testing.T) {
	o := NewOptimizer(NewCodec())
	good := encodeTestJPEG(t, 20, 20)
	bad := []byte("broken payload")

	target := DefaultOptimizationTarget()

	var calls []int
	out := o.OptimizeBatch([][]byte{good, bad}, target, func(done, total int) {
		assert.Equal(t, 2, total)
		calls = append(calls, done)
	})

	require.Len(t, out, 2)
	assert.Equal(t, good, out[0])
	assert.Equal(t, bad, out[1])
	assert.Equal(t, []int{1, 2}, calls)
}
