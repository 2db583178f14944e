package dao

import (
	"encoding/base64"

	"teddywatch/internal/detector"
)

// DetectResponse 检测接口返回
type DetectResponse struct {
	// base64 编码的 JPEG
	Image         string `json:"image"`
	TeddyDetected bool   `json:"teddy_detected"`
	// 仅在检测到时返回
	TeddyCount int    `json:"teddy_count,omitempty"`
	Message    string `json:"message"`
}

func NewDetectResponse(jpeg []byte, count int, message string) DetectResponse {
	return DetectResponse{
		Image:         base64.StdEncoding.EncodeToString(jpeg),
		TeddyDetected: count > 0,
		TeddyCount:    count,
		Message:       message,
	}
}

// DetectionMessage is published to the message queue for every processed
// upload.
type DetectionMessage struct {
	Kind      string         `json:"kind"`
	Count     int            `json:"count"`
	Timestamp string         `json:"timestamp"`
	Message   string         `json:"message"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Boxes     []detector.Box `json:"boxes,omitempty"`
}
