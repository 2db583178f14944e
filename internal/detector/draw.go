package detector

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var boxColor = color.RGBA{0, 255, 0, 255}

// DrawDetections returns a clone of frame with every box outlined and captioned.
func DrawDetections(frame gocv.Mat, boxes []Box) gocv.Mat {
	annotated := frame.Clone()

	for _, box := range boxes {
		label := fmt.Sprintf("%s: %.2f", box.Label, box.Confidence)
		labelSize := gocv.GetTextSize(label, gocv.FontHersheySimplex, 0.5, 2)

		gocv.Rectangle(&annotated, image.Rect(box.X1, box.Y1, box.X2, box.Y2), boxColor, 2)
		gocv.Rectangle(&annotated, image.Rect(box.X1, box.Y1-labelSize.Y-10, box.X1+labelSize.X, box.Y1), boxColor, -1)
		gocv.PutText(&annotated, label, image.Pt(box.X1, box.Y1-5), gocv.FontHersheySimplex, 0.5, color.RGBA{0, 0, 0, 255}, 2)
	}

	return annotated
}
