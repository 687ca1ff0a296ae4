package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"travel-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 3 * time.Second

// DBPinger is satisfied by *sql.DB. A nil pinger reports the database as disconnected.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// Report is the /health/json body.
type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	HeapAllocMB   int    `json:"heapAllocMb"`
	HeapInuseMB   int    `json:"heapInuseMb"`
	Goroutines    int    `json:"goroutines"`
	Platform      string `json:"platform"`
	GoVersion     string `json:"goVersion"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// ping runs fn with a timeout and reports connected/error with its latency.
func ping(ctx context.Context, fn func(context.Context) error) DepStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	start := time.Now()
	if err := fn(ctx); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// CollectHealth pings the database and redis concurrently and reads the traffic
// counters kept by the health marker middleware.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger) Report {
	dbStatus := DepStatus{Status: "disconnected"}
	redisStatus := DepStatus{Status: "disconnected"}

	g, gctx := errgroup.WithContext(ctx)
	if db != nil {
		g.Go(func() error {
			dbStatus = ping(gctx, db.PingContext)
			return nil
		})
	}
	if rdb != nil {
		g.Go(func() error {
			redisStatus = ping(gctx, func(c context.Context) error { return rdb.Ping(c).Err() })
			return nil
		})
	}
	_ = g.Wait()

	startTimeMs := time.Now().UnixMilli()
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	if redisStatus.Status == "connected" {
		stats, startTimeMs = readTraffic(ctx, rdb, startTimeMs)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptime < 0 {
		uptime = 0
	}

	report := Report{
		Status: "issue",
		Runtime: RuntimeInfo{
			UptimeSeconds: uptime,
			HeapAllocMB:   int(m.HeapAlloc / 1024 / 1024),
			HeapInuseMB:   int(m.HeapInuse / 1024 / 1024),
			Goroutines:    runtime.NumGoroutine(),
			Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
			GoVersion:     runtime.Version(),
		},
		Traffic: stats,
		Dependencies: map[string]DepStatus{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	}
	if dbStatus.Status == "connected" && redisStatus.Status == "connected" {
		report.Status = "ok"
	}
	return report
}

func readTraffic(ctx context.Context, rdb *redis.Client, startTimeMs int64) (TrafficInfo, int64) {
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	vals, err := rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	if err != nil {
		return stats, startTimeMs
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	if s := str(4); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		rdb.SetNX(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	count, _ := strconv.Atoi(str(3))
	if count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if s := str(5); s != "" {
		var last map[string]interface{}
		if json.Unmarshal([]byte(s), &last) == nil {
			stats.LastRequest = last
		}
	}
	return stats, startTimeMs
}

// RecentErrors returns the last server errors recorded by the error handler, newest first.
func RecentErrors(ctx context.Context, rdb *redis.Client) ([]map[string]interface{}, error) {
	out := []map[string]interface{}{}
	if rdb == nil {
		return out, nil
	}
	raw, err := rdb.LRange(ctx, middleware.KeyErrorLog, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	for _, s := range raw {
		var entry map[string]interface{}
		if json.Unmarshal([]byte(s), &entry) == nil {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Reset clears the traffic counters and the error log.
func Reset(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyLastReq, middleware.KeyErrorLog,
	).Err()
}
