package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"teddywatch/internal/config"
	"teddywatch/internal/dao"
	"teddywatch/internal/stats"
	"teddywatch/pkg/log"
)

var (
	summaryDays int
	showHistory bool
	serverURL   string
)

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Print detection statistics",
	Long: `Print detection statistics.

By default the statistics store named in the config is opened directly. The
badger backend holds an exclusive lock on its directory, so while serve is
running against the same directory open it through the server instead:

  teddywatch stats --url http://127.0.0.1:8000`,
	Run: func(cmd *cobra.Command, args []string) {
		runStats()
	},
}

func init() {
	statsCommand.Flags().IntVarP(&summaryDays, "days", "d", 5, "Summary window in days")
	statsCommand.Flags().BoolVar(&showHistory, "history", false, "Print the full history instead of a summary")
	statsCommand.Flags().StringVar(&serverURL, "url", "", "Read statistics from a running server instead of the local store")
}

func runStats() {
	ctx := context.Background()

	var (
		out any
		err error
	)
	if serverURL != "" {
		cli := &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
			Timeout:   15 * time.Second,
		}
		out, err = fetchStats(ctx, cli, serverURL, summaryDays, showHistory)
	} else {
		out, err = localStats(ctx)
	}
	if err != nil {
		logrus.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logrus.Fatal(err)
	}
}

func localStats(ctx context.Context) (any, error) {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("initConfig error, %w", err)
	}

	store, err := stats.NewStore(conf, log.Component(ctx, "stats"))
	if err != nil {
		return nil, fmt.Errorf("open stats store failed: %w", err)
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init stats store failed: %w", err)
	}

	st, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats failed: %w", err)
	}

	if showHistory {
		return dao.FromStatistics(st), nil
	}
	now := time.Now()
	return dao.StatsSummaryResponse{
		Days:              summaryDays,
		RecentDetections:  stats.CountRecent(st, stats.KindHit, summaryDays, now),
		RecentFalseAlarms: stats.CountRecent(st, stats.KindMiss, summaryDays, now),
		DaySpan:           stats.DaySpan(st),
		TotalDetections:   st.TotalDetections,
		TotalFalseAlarms:  st.TotalFalseAlarms,
	}, nil
}

// fetchStats reads the same views from the HTTP API of a running server.
func fetchStats(ctx context.Context, cli *http.Client, base string, days int, history bool) (any, error) {
	base = strings.TrimRight(base, "/")
	if history {
		var resp dao.StatsResponse
		if err := getJSON(ctx, cli, base+"/stats", &resp); err != nil {
			return nil, err
		}
		return resp, nil
	}

	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	var resp dao.StatsSummaryResponse
	if err := getJSON(ctx, cli, base+"/stats/summary?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func getJSON(ctx context.Context, cli *http.Client, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := cli.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", target, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
