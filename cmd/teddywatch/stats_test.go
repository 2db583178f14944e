package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teddywatch/internal/dao"
)

func TestFetchStatsSummary(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/summary", r.URL.Path)
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(dao.StatsSummaryResponse{Days: 3, RecentDetections: 2, TotalDetections: 9})
	}))
	defer srv.Close()

	out, err := fetchStats(context.Background(), srv.Client(), srv.URL+"/", 3, false)
	require.NoError(t, err)
	assert.Equal(t, "days=3", gotQuery)

	summary, ok := out.(dao.StatsSummaryResponse)
	require.True(t, ok)
	assert.Equal(t, 2, summary.RecentDetections)
	assert.EqualValues(t, 9, summary.TotalDetections)
}

func TestFetchStatsHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		w.Write([]byte(`{"detections":[{"result":"Detected 1 teddy bear(s)","timestamp":"2024-05-01T10:00:00.000000+00:00"}],"total_detections":1,"total_false_alarms":0}`))
	}))
	defer srv.Close()

	out, err := fetchStats(context.Background(), srv.Client(), srv.URL, 5, true)
	require.NoError(t, err)

	history, ok := out.(dao.StatsResponse)
	require.True(t, ok)
	require.Len(t, history.Detections, 1)
	assert.Equal(t, "Detected 1 teddy bear(s)", history.Detections[0].Result)
}

func TestFetchStatsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to read statistics"}`))
	}))
	defer srv.Close()

	_, err := fetchStats(context.Background(), srv.Client(), srv.URL, 5, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "Failed to read statistics")
}
