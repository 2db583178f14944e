package detector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Trendyol/go-triton-client/base"
	tritonGrpc "github.com/Trendyol/go-triton-client/client/grpc"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"teddywatch/internal/config"
)

// TritonDetector sends frames to a Triton model that returns DETECTIONS as a
// flat float32 slice of [N, 6] rows (x1, y1, x2, y2, confidence, class_id).
type TritonDetector struct {
	tritonCli    base.Client
	modelName    string
	modelVersion string
	labels       *LabelSet
	logger       *logrus.Entry
}

func NewTritonDetector(ctx context.Context, conf config.TritonConfig, labels *LabelSet, logger *logrus.Entry) (*TritonDetector, error) {
	tritonCli, err := tritonGrpc.NewClient(
		conf.ServerAddr,
		false, // verbose logging
		30,    // connection timeout in seconds
		30,    // network timeout in seconds
		false, // use ssl
		true,  // insecure connection
		nil,   // existing grpc connection
		nil,   // logger
	)
	if err != nil {
		return nil, err
	}

	if isLive, err := tritonCli.IsServerLive(ctx, nil); err != nil {
		return nil, err
	} else if !isLive {
		return nil, errors.New("triton server is not live")
	}

	if isReady, err := tritonCli.IsServerReady(ctx, nil); err != nil {
		return nil, err
	} else if !isReady {
		return nil, errors.New("triton server is not ready")
	}

	if isReady, err := tritonCli.IsModelReady(ctx, conf.ModelName, conf.ModelVersion, nil); err != nil {
		return nil, err
	} else if !isReady {
		return nil, fmt.Errorf("triton model %s is not ready", conf.ModelName)
	}
	logger.Infof("triton model %s/%s ready on %s", conf.ModelName, conf.ModelVersion, conf.ServerAddr)

	return &TritonDetector{
		tritonCli:    tritonCli,
		modelName:    conf.ModelName,
		modelVersion: conf.ModelVersion,
		labels:       labels,
		logger:       logger,
	}, nil
}

func (d *TritonDetector) Detect(ctx context.Context, img gocv.Mat) ([]Box, error) {
	if img.Empty() {
		return nil, errors.New("empty input image")
	}

	frameInput := tritonGrpc.NewInferInput("FRAME", "BYTES", []int64{int64(img.Rows()), int64(img.Cols()), 3}, nil)
	if err := frameInput.SetData(img.ToBytes(), true); err != nil {
		return nil, fmt.Errorf("failed to set FRAME input data: %v", err)
	}
	frameInput.SetDatatype("UINT8")

	outputs := []base.InferOutput{
		tritonGrpc.NewInferOutput("DETECTIONS", map[string]any{"binary_data": false}),
	}

	response, err := d.tritonCli.Infer(ctx, d.modelName, d.modelVersion, []base.InferInput{frameInput}, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %v", err)
	}

	detections, err := response.AsFloat32Slice("DETECTIONS")
	if err != nil {
		return nil, fmt.Errorf("failed to get detection data: %v", err)
	}

	return parseDetections(detections, d.labels), nil
}

// parseDetections converts [N, 6] rows into boxes, dropping unlabelled or
// filtered classes and a trailing partial row.
func parseDetections(detections []float32, labels *LabelSet) []Box {
	var boxes []Box
	for i := 0; i+5 < len(detections); i += 6 {
		classId := int(detections[i+5])
		label, keep := labels.Lookup(classId)
		if !keep {
			continue
		}

		boxes = append(boxes, Box{
			X1:         int(detections[i]),
			Y1:         int(detections[i+1]),
			X2:         int(detections[i+2]),
			Y2:         int(detections[i+3]),
			Confidence: detections[i+4],
			ClassId:    classId,
			Label:      label,
		})
	}
	return boxes
}

func (d *TritonDetector) Annotate(img gocv.Mat, boxes []Box) gocv.Mat {
	return DrawDetections(img, boxes)
}

func (d *TritonDetector) Close() error {
	return nil
}
