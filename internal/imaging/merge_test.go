package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicpulse/internal/domain"
)

func TestMerger_SingleImagePassthrough(t *testing.T) {
	m := NewMerger(NewCodec())
	data := encodeTestJPEG(t, 30, 30)

	out, err := m.Merge([][]byte{data}, DefaultMergeLayout())
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestMerger_NoImages(t *testing.T) {
	m := NewMerger(NewCodec())
	_, err := m.Merge(nil, DefaultMergeLayout())
	assert.ErrorIs(t, err, domain.ErrNoImages)
}

func TestMerger_VerticalComposite(t *testing.T) {
	codec := NewCodec()
	m := NewMerger(codec)

	// Slot size is the max of the inputs: 60x40.
	a := encodeTestJPEG(t, 60, 30)
	b := encodeTestJPEG(t, 50, 40)

	layout := MergeLayout{
		Orientation: Vertical,
		MaxWidth:    1000,
		MaxHeight:   1000,
		Spacing:     10,
		Background:  color.White,
		Quality:     85,
	}

	out, err := m.Merge([][]byte{a, b}, layout)
	require.NoError(t, err)

	img, format, err := codec.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 40*2+10, img.Bounds().Dy())
}

func TestMerger_HorizontalComposite(t *testing.T) {
	codec := NewCodec()
	m := NewMerger(codec)

	a := encodeTestJPEG(t, 40, 60)
	b := encodeTestJPEG(t, 40, 60)
	c := encodeTestJPEG(t, 40, 60)

	layout := MergeLayout{
		Orientation: Horizontal,
		MaxWidth:    1000,
		MaxHeight:   1000,
		Spacing:     5,
		Background:  color.White,
		Quality:     85,
	}

	out, err := m.Merge([][]byte{a, b, c}, layout)
	require.NoError(t, err)

	img, _, err := codec.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 40*3+5*2, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestMerger_DownscalesToBounds(t *testing.T) {
	codec := NewCodec()
	m := NewMerger(codec)

	a := encodeTestJPEG(t, 400, 400)
	b := encodeTestJPEG(t, 400, 400)

	layout := MergeLayout{
		Orientation: Vertical,
		MaxWidth:    200,
		MaxHeight:   300,
		Spacing:     0,
		Background:  color.White,
		Quality:     85,
	}

	out, err := m.Merge([][]byte{a, b}, layout)
	require.NoError(t, err)

	img, _, err := codec.Decode(out)
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 200)
	assert.LessOrEqual(t, img.Bounds().Dy(), 300)
}

func TestMerger_UndecodableInputFailsWholeMerge(t *testing.T) {
	m := NewMerger(NewCodec())
	good := encodeTestJPEG(t, 30, 30)

	_, err := m.Merge([][]byte{good, []byte("broken")}, DefaultMergeLayout())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrImageDecode)
}
