// Package detector wraps the pretrained object-detection model behind a
// single interface. Two backends exist: a local ONNX network run through
// OpenCV's DNN module and a remote Triton inference server.
package detector

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"teddywatch/internal/config"
)

type Box struct {
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Confidence float32 `json:"confidence"`
	ClassId    int     `json:"classId"`
	Label      string  `json:"label"`
}

// Detector runs inference on decoded images. Detect is synchronous and may
// take seconds; implementations must be safe for concurrent use.
type Detector interface {
	Detect(ctx context.Context, img gocv.Mat) ([]Box, error)
	// Annotate returns a copy of img with boxes and captions burned in.
	Annotate(img gocv.Mat, boxes []Box) gocv.Mat
	Close() error
}

// New builds the backend selected by conf.Detector.Backend. Any error is a
// startup failure: the model must be loadable before the service accepts
// uploads.
func New(ctx context.Context, conf *config.Config, logger *logrus.Entry) (Detector, error) {
	labels := NewLabelSet(conf.Detector.Labels, conf.Detector.Classes)

	switch conf.Detector.Backend {
	case config.DetectorBackendDNN:
		d, err := NewDNNDetector(conf.Detector, labels, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DetectorBackendTriton:
		d, err := NewTritonDetector(ctx, conf.Triton, labels, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", conf.Detector.Backend)
	}
}

// LabelSet maps class ids to labels and decides which classes are counted.
type LabelSet struct {
	names   map[int]string
	allowed map[string]bool
}

// NewLabelSet parses a comma separated label list; the position of a label is
// its class id. An empty classes list counts every labelled class.
func NewLabelSet(labels string, classes []string) *LabelSet {
	ls := &LabelSet{names: make(map[int]string)}
	for i, label := range strings.Split(labels, ",") {
		ls.names[i] = strings.TrimSpace(label)
	}
	if len(classes) > 0 {
		ls.allowed = make(map[string]bool, len(classes))
		for _, c := range classes {
			ls.allowed[strings.TrimSpace(c)] = true
		}
	}
	return ls
}

// Lookup returns the label for classId and whether detections of that class
// should be kept.
func (ls *LabelSet) Lookup(classId int) (string, bool) {
	name, exists := ls.names[classId]
	if !exists || name == "" {
		return "", false
	}
	if ls.allowed != nil && !ls.allowed[name] {
		return name, false
	}
	return name, true
}

func (ls *LabelSet) Len() int {
	return len(ls.names)
}
