package detector

import (
	"image"
)

// decodeYOLO reads a YOLOv8 style output tensor laid out as [attrs, n] where
// the first four attributes are cx, cy, w, h in network-input pixels and the
// remaining attrs-4 are per-class scores. Coordinates are multiplied by scale
// and clamped to a cols x rows image.
func decodeYOLO(data []float32, attrs, n int, scale float32, confThreshold float32,
	labels *LabelSet, cols, rows int) ([]image.Rectangle, []float32, []int) {
	var (
		rects    []image.Rectangle
		scores   []float32
		classIds []int
	)
	if attrs <= 4 || len(data) < attrs*n {
		return rects, scores, classIds
	}

	for i := 0; i < n; i++ {
		bestClass := -1
		var bestScore float32
		for c := 0; c < attrs-4; c++ {
			if s := data[(4+c)*n+i]; s > bestScore {
				bestScore = s
				bestClass = c
			}
		}
		if bestClass < 0 || bestScore < confThreshold {
			continue
		}
		if _, keep := labels.Lookup(bestClass); !keep {
			continue
		}

		cx, cy := data[i], data[n+i]
		w, h := data[2*n+i], data[3*n+i]
		rect := image.Rect(
			int((cx-w/2)*scale),
			int((cy-h/2)*scale),
			int((cx+w/2)*scale),
			int((cy+h/2)*scale),
		).Intersect(image.Rect(0, 0, cols, rows))
		if rect.Empty() {
			continue
		}

		rects = append(rects, rect)
		scores = append(scores, bestScore)
		classIds = append(classIds, bestClass)
	}
	return rects, scores, classIds
}
