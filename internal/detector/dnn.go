package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"teddywatch/internal/config"
)

// DNNDetector runs an ONNX export of the model in-process with OpenCV.
type DNNDetector struct {
	// cv::dnn::Net is not safe for concurrent forward passes
	mu            sync.Mutex
	net           gocv.Net
	inputSize     int
	confThreshold float32
	iouThreshold  float32
	labels        *LabelSet
	logger        *logrus.Entry
}

func NewDNNDetector(conf config.DetectorConfig, labels *LabelSet, logger *logrus.Entry) (*DNNDetector, error) {
	if _, err := os.Stat(conf.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found at %s: %w", conf.ModelPath, err)
	}

	logger.Infof("loading model %s", conf.ModelPath)
	net := gocv.ReadNet(conf.ModelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", conf.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set preferable backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set preferable target: %w", err)
	}
	logger.Info("model loaded successfully")

	return &DNNDetector{
		net:           net,
		inputSize:     conf.InputSize,
		confThreshold: conf.ConfThreshold,
		iouThreshold:  conf.IoUThreshold,
		labels:        labels,
		logger:        logger,
	}, nil
}

func (d *DNNDetector) Detect(ctx context.Context, img gocv.Mat) ([]Box, error) {
	if img.Empty() {
		return nil, errors.New("empty input image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := img.Rows(), img.Cols()
	maxDim := max(rows, cols)

	// letterbox into a square so the aspect ratio survives the resize
	square := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(114, 114, 114, 0), maxDim, maxDim, gocv.MatTypeCV8UC3)
	defer square.Close()
	roi := square.Region(image.Rect(0, 0, cols, rows))
	img.CopyTo(&roi)
	roi.Close()

	blob := gocv.BlobFromImage(square, 1.0/255.0, image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	d.mu.Unlock()
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output tensor: %w", err)
	}

	scale := float32(maxDim) / float32(d.inputSize)
	rects, scores, classIds := decodeYOLO(data, dims[1], dims[2], scale, d.confThreshold, d.labels, cols, rows)
	if len(rects) == 0 {
		return nil, nil
	}

	indices := gocv.NMSBoxes(rects, scores, d.confThreshold, d.iouThreshold)
	boxes := make([]Box, 0, len(indices))
	for _, idx := range indices {
		label, _ := d.labels.Lookup(classIds[idx])
		r := rects[idx]
		boxes = append(boxes, Box{
			X1:         r.Min.X,
			Y1:         r.Min.Y,
			X2:         r.Max.X,
			Y2:         r.Max.Y,
			Confidence: scores[idx],
			ClassId:    classIds[idx],
			Label:      label,
		})
	}
	return boxes, nil
}

func (d *DNNDetector) Annotate(img gocv.Mat, boxes []Box) gocv.Mat {
	return DrawDetections(img, boxes)
}

func (d *DNNDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
