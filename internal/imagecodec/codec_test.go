package imagecodec

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var red = color.RGBA{R: 255, G: 0, B: 0, A: 0}

func solidImage(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 120, 200, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not an image"),
	} {
		t.Run(name, func(t *testing.T) {
			mat, err := Decode(data)
			defer mat.Close()
			require.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeRejectsTruncatedJPEG(t *testing.T) {
	img := solidImage(t, 48, 64)
	defer img.Close()

	data, err := Encode(img)
	require.NoError(t, err)

	mat, err := Decode(data[:20])
	defer mat.Close()
	require.ErrorIs(t, err, ErrDecode)
}

func TestEncodeDecodeKeepsDimensions(t *testing.T) {
	img := solidImage(t, 48, 64)
	defer img.Close()

	data, err := Encode(img)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	back, err := Decode(data)
	require.NoError(t, err)
	defer back.Close()

	assert.Equal(t, 48, back.Rows())
	assert.Equal(t, 64, back.Cols())
	assert.Equal(t, 3, back.Channels())
}

func TestEncodeRejectsEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := Encode(empty)
	require.ErrorIs(t, err, ErrEncode)
}

func TestDrawBorder(t *testing.T) {
	img := solidImage(t, 30, 40)
	defer img.Close()

	bordered, err := DrawBorder(img, 10, red)
	require.NoError(t, err)
	defer bordered.Close()

	assert.Equal(t, 50, bordered.Rows())
	assert.Equal(t, 60, bordered.Cols())
	// source untouched
	assert.Equal(t, 30, img.Rows())

	// BGR order: the corner is pure red, the centre keeps the source colour
	corner := bordered.GetVecbAt(0, 0)
	assert.Equal(t, []uint8{0, 0, 255}, []uint8{corner[0], corner[1], corner[2]})
	centre := bordered.GetVecbAt(25, 30)
	assert.Equal(t, []uint8{40, 120, 200}, []uint8{centre[0], centre[1], centre[2]})

	// the bordered result still survives a codec round trip
	data, err := Encode(bordered)
	require.NoError(t, err)
	back, err := Decode(data)
	require.NoError(t, err)
	defer back.Close()
	assert.Equal(t, 50, back.Rows())
	assert.Equal(t, 60, back.Cols())
}

func TestDrawBorderZeroThicknessCopies(t *testing.T) {
	img := solidImage(t, 8, 8)
	defer img.Close()

	out, err := DrawBorder(img, 0, red)
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, 8, out.Rows())
	assert.Equal(t, 8, out.Cols())
}
