package dao

import (
	"teddywatch/internal/stats"
)

// DetectionRecord 历史记录，result 为渲染后的文本
type DetectionRecord struct {
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Count     int    `json:"count"`
}

type StatsResponse struct {
	Detections       []DetectionRecord `json:"detections"`
	TotalDetections  int64             `json:"total_detections"`
	TotalFalseAlarms int64             `json:"total_false_alarms"`
}

func FromStatistics(s *stats.Statistics) StatsResponse {
	resp := StatsResponse{
		Detections:       make([]DetectionRecord, 0, len(s.Detections)),
		TotalDetections:  s.TotalDetections,
		TotalFalseAlarms: s.TotalFalseAlarms,
	}
	for _, ev := range s.Detections {
		resp.Detections = append(resp.Detections, DetectionRecord{
			Result:    ev.Result(),
			Timestamp: ev.Timestamp,
			Kind:      string(ev.Kind),
			Count:     ev.Count,
		})
	}
	return resp
}

// StatsSummaryRequest 最近 N 天统计，默认 5 天
type StatsSummaryRequest struct {
	Days int `form:"days" json:"days" binding:"omitempty,min=1,max=365"`
}

type StatsSummaryResponse struct {
	Days              int   `json:"days"`
	RecentDetections  int   `json:"recent_detections"`
	RecentFalseAlarms int   `json:"recent_false_alarms"`
	DaySpan           int   `json:"day_span"`
	TotalDetections   int64 `json:"total_detections"`
	TotalFalseAlarms  int64 `json:"total_false_alarms"`
}

// DailyStatsResponse 图表数据，三个数组按日期对齐
type DailyStatsResponse struct {
	Labels      []string `json:"labels"`
	Detections  []int    `json:"detections"`
	FalseAlarms []int    `json:"falseAlarms"`
}

func FromDailyBuckets(buckets []stats.DailyBucket) DailyStatsResponse {
	resp := DailyStatsResponse{
		Labels:      make([]string, 0, len(buckets)),
		Detections:  make([]int, 0, len(buckets)),
		FalseAlarms: make([]int, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.Labels = append(resp.Labels, b.Date)
		resp.Detections = append(resp.Detections, b.Detections)
		resp.FalseAlarms = append(resp.FalseAlarms, b.FalseAlarms)
	}
	return resp
}

// StatsTrendRequest 查询参数
// 采用 RFC3339 时间字符串和窗口字符串（如 1m、5m、1h）
// 若未提供则使用默认值：start=过去24小时, end=当前时间, window=1h
type StatsTrendRequest struct {
	Start  string `form:"start" json:"start"`
	End    string `form:"end" json:"end"`
	Window string `form:"window" json:"window"`
}

// KindTimeCount 按类型的上传数量趋势
type KindTimeCount struct {
	Kind  string `json:"kind"`
	Time  string `json:"time"`
	Count int64  `json:"count"`
}

type StatsTrendResponse struct {
	Uploads []KindTimeCount `json:"uploads"`
}
