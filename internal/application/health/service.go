package health

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"strconv"
	"time"

	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/bureau"
	"github.com/amanuelrf/reliance-mobile/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusIssue    = "issue"

	bureauPingTimeout = 3 * time.Second
)

// DBPinger is satisfied by *sql.DB. A nil pinger reports the database as disconnected.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// BureauPinger checks that the credit bureau answers. A nil pinger reports it as not configured.
type BureauPinger interface {
	Ping(ctx context.Context) error
}

// Report is the payload behind /health/json.
type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB    int `json:"allocMb"`
	HeapUsedMB int `json:"heapUsedMb"`
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
	Error  string `json:"error,omitempty"`
}

// Collect gathers traffic counters from Redis and pings every dependency.
// The database and Redis decide between ok and issue. An unreachable bureau only degrades,
// since credit checks still complete without it.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger, bureauClient BureauPinger) Report {
	report := Report{Dependencies: make(map[string]DepStatus, 3)}

	dbDep := DepStatus{Status: "disconnected"}
	if db != nil {
		dbDep = ping(func() error { return db.PingContext(ctx) }, "connected", "error")
	}
	report.Dependencies["database"] = dbDep

	startMs := time.Now().UnixMilli()
	redisDep := DepStatus{Status: "disconnected"}
	report.Traffic = TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	if rdb != nil {
		redisDep = ping(func() error { return rdb.Ping(ctx).Err() }, "connected", "error")
		if redisDep.Status == "connected" {
			report.Traffic, startMs = readTraffic(ctx, rdb, startMs)
		}
	}
	report.Dependencies["redis"] = redisDep

	bureauDep := DepStatus{Status: "not_configured"}
	if bureauClient != nil {
		pctx, cancel := context.WithTimeout(ctx, bureauPingTimeout)
		var err error
		bureauDep = ping(func() error {
			err = bureauClient.Ping(pctx)
			return err
		}, "reachable", "unreachable")
		cancel()
		if errors.Is(err, bureau.ErrNotConfigured) {
			bureauDep = DepStatus{Status: "not_configured"}
		}
	}
	report.Dependencies["bureau"] = bureauDep

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	report.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsedMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	switch {
	case dbDep.Status != "connected" || redisDep.Status != "connected":
		report.Status = StatusIssue
	case bureauDep.Status != "reachable":
		report.Status = StatusDegraded
	default:
		report.Status = StatusOK
	}
	return report
}

func ping(fn func() error, up, down string) DepStatus {
	start := time.Now()
	if err := fn(); err != nil {
		return DepStatus{Status: down, Error: err.Error()}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: up, PingMs: &ms}
}

func readTraffic(ctx context.Context, rdb *redis.Client, startMs int64) (TrafficInfo, int64) {
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	vals, err := rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	if err != nil {
		return stats, startMs
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	if s := str(4); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil {
			startMs = t
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startMs, 0)
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
	return stats, startMs
}
