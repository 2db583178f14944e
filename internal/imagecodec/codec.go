// Package imagecodec converts uploaded bytes to gocv matrices and back.
package imagecodec

import (
	"errors"
	"fmt"
	"image/color"

	"gocv.io/x/gocv"
)

// JPEGQuality is the fixed quality used for every encoded response.
const JPEGQuality = 90

var (
	ErrDecode = errors.New("failed to decode image")
	ErrEncode = errors.New("failed to encode image")
)

// Decode interprets data as a compressed image and returns a 3-channel BGR Mat.
// The caller owns the returned Mat.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty buffer", ErrDecode)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: unrecognised or truncated data", ErrDecode)
	}
	return mat, nil
}

// Encode serializes img as JPEG.
func Encode(img gocv.Mat) ([]byte, error) {
	if img.Empty() || img.Rows() == 0 || img.Cols() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrEncode)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// DrawBorder returns a new Mat padded on all four sides with a solid band of
// the given thickness. img is left untouched.
func DrawBorder(img gocv.Mat, thickness int, c color.RGBA) (gocv.Mat, error) {
	dst := gocv.NewMat()
	if thickness <= 0 {
		img.CopyTo(&dst)
		return dst, nil
	}
	err := gocv.CopyMakeBorder(img, &dst, thickness, thickness, thickness, thickness, gocv.BorderConstant, c)
	if err != nil {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("draw border: %w", err)
	}
	return dst, nil
}
