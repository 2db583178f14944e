package server

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"teddywatch/internal/dao"
	"teddywatch/internal/sink"
	"teddywatch/internal/stats"
)

const defaultSummaryDays = 5

var windowRe = regexp.MustCompile(`^[0-9]+(ms|s|m|h|d|w)$`)

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

// handleGetStats 获取检测统计
// @Summary 获取检测统计
// @Description 返回累计计数和最近的检测历史（最多 100 条，旧的在前）
// @Tags 统计
// @Produce json
// @Success 200 {object} dao.StatsResponse "获取成功"
// @Failure 500 {object} ErrorResponse "统计数据无法读取"
// @Router /stats [get]
func (s *Server) handleGetStats(c *gin.Context) {
	st, err := s.pipeline.Statistics(c.Request.Context())
	if err != nil {
		s.writePipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, dao.FromStatistics(st))
}

// handleStatsSummary 最近 N 天统计
// @Summary 最近 N 天统计
// @Tags 统计
// @Produce json
// @Param days query int false "天数" default(5)
// @Success 200 {object} dao.StatsSummaryResponse "获取成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 500 {object} ErrorResponse "统计数据无法读取"
// @Router /stats/summary [get]
func (s *Server) handleStatsSummary(c *gin.Context) {
	var req dao.StatsSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if req.Days == 0 {
		req.Days = defaultSummaryDays
	}

	st, err := s.pipeline.Statistics(c.Request.Context())
	if err != nil {
		s.writePipelineError(c, err)
		return
	}

	now := s.now()
	c.JSON(http.StatusOK, dao.StatsSummaryResponse{
		Days:              req.Days,
		RecentDetections:  stats.CountRecent(st, stats.KindHit, req.Days, now),
		RecentFalseAlarms: stats.CountRecent(st, stats.KindMiss, req.Days, now),
		DaySpan:           stats.DaySpan(st),
		TotalDetections:   st.TotalDetections,
		TotalFalseAlarms:  st.TotalFalseAlarms,
	})
}

// handleDailyStats 按天统计
// @Summary 按天统计
// @Description 按本地日期聚合历史：检测到的泰迪熊数量之和与误报次数
// @Tags 统计
// @Produce json
// @Success 200 {object} dao.DailyStatsResponse "获取成功"
// @Failure 500 {object} ErrorResponse "统计数据无法读取"
// @Router /stats/daily [get]
func (s *Server) handleDailyStats(c *gin.Context) {
	st, err := s.pipeline.Statistics(c.Request.Context())
	if err != nil {
		s.writePipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, dao.FromDailyBuckets(stats.Daily(st)))
}

// handleStatsSchema 统计文档的 JSON Schema
// @Summary 统计文档 JSON Schema
// @Tags 统计
// @Produce json
// @Success 200 {object} map[string]any "获取成功"
// @Router /stats/schema [get]
func (s *Server) handleStatsSchema(c *gin.Context) {
	c.JSON(http.StatusOK, reflector.Reflect(&dao.StatsResponse{}))
}

// handleStatsTrend 上传趋势
// @Summary 上传趋势
// @Description 从InfluxDB查询各类型（hit/miss）上传数量趋势
// @Tags 统计
// @Produce json
// @Param start query string false "开始时间(RFC3339)"
// @Param end query string false "结束时间(RFC3339)"
// @Param window query string false "聚合窗口，如1m、5m、1h" default(1h)
// @Success 200 {object} dao.StatsTrendResponse "获取成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 500 {object} ErrorResponse "内部服务器错误"
// @Router /stats/trend [get]
func (s *Server) handleStatsTrend(c *gin.Context) {
	if s.influxQuery == nil {
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("influxdb not enabled"))
		return
	}

	var req dao.StatsTrendRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	start, end, window, err := parseTrendRange(req, s.now())
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	uploads, err := s.queryUploadsTrend(c.Request.Context(), start, end, window)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dao.StatsTrendResponse{Uploads: uploads})
}

func parseTrendRange(req dao.StatsTrendRequest, now time.Time) (time.Time, time.Time, string, error) {
	end := now.UTC()
	if req.End != "" {
		te, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			return time.Time{}, time.Time{}, "", fmt.Errorf("invalid end: %w", err)
		}
		end = te.UTC()
	}

	start := end.Add(-24 * time.Hour)
	if req.Start != "" {
		ts, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			return time.Time{}, time.Time{}, "", fmt.Errorf("invalid start: %w", err)
		}
		start = ts.UTC()
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, "", fmt.Errorf("start must be before end")
	}

	window := req.Window
	if window == "" {
		window = "1h"
	}
	if !windowRe.MatchString(window) {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid window: %s", window)
	}
	return start, end, window, nil
}

func trendQuery(bucket string, start, end time.Time, window string) string {
	return fmt.Sprintf(
		`from(bucket: "%s")
      |> range(start: time(v: "%s"), stop: time(v: "%s"))
      |> filter(fn: (r) => r["_measurement"] == "%s")
      |> filter(fn: (r) => r["_field"] == "count")
      |> aggregateWindow(every: %s, fn: count, createEmpty: false)
      |> group(columns: ["kind"])`,
		bucket,
		start.Format(time.RFC3339),
		end.Format(time.RFC3339),
		sink.InfluxMeasurement,
		window,
	)
}

func (s *Server) queryUploadsTrend(ctx context.Context, start, end time.Time, window string) ([]dao.KindTimeCount, error) {
	res, err := s.influxQuery.Query(ctx, trendQuery(s.conf.InfluxDB.Bucket, start, end, window))
	if err != nil {
		return nil, fmt.Errorf("query uploads trend: %w", err)
	}
	defer res.Close()

	items := make([]dao.KindTimeCount, 0, 64)
	for res.Next() {
		rec := res.Record()
		kind, _ := rec.ValueByKey("kind").(string)
		t := rec.Time().UTC().Format(time.RFC3339)
		items = append(items, dao.KindTimeCount{Kind: kind, Time: t, Count: toInt64(rec.Value())})
	}
	if res.Err() != nil {
		return nil, fmt.Errorf("query uploads trend result error: %v", res.Err())
	}
	return items, nil
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case uint64:
		return int64(t)
	case int32:
		return int64(t)
	case float64:
		return int64(t)
	case int:
		return int64(t)
	default:
		return 0
	}
}
