// README: Bench checks for the fare API: environment, scenarios, error payloads, determinism and throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

var mondayTrip = map[string]any{
	"trip_distance": 2.5,
	"trip_duration": 15,
	"trip_hours":    14,
	"day_name":      "Monday",
	"is_tolls":      0,
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: taxi_table populated",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				var n int64
				if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM taxi_table").Scan(&n); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: "PENDING", Note: "table is empty; run fare-etl"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("rows=%d", n)}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil, nil),
		httpCaseMethod("API: info", http.MethodGet, base+"/", nil, []int{200}, nil, nil),
		httpCaseMethod("API: model info", http.MethodGet, base+"/model", nil, []int{200}, []int{503}, nil),

		httpCase("Predict: Monday 2.5mi scenario", base+"/predict", mondayTrip, []int{200}, []int{503}, expectFare),
		httpCase("Predict: unknown day still predicts", base+"/predict", withField("day_name", "Someday"), []int{200}, []int{503}, expectFare),
		httpCase("Predict: missing day_name -> 400", base+"/predict", withField("day_name", nil), []int{400}, nil, expectError),
		httpCase("Predict: hour out of range -> 400", base+"/predict", withField("trip_hours", 24), []int{400}, nil, expectError),
		httpCase("Predict: invalid json -> 400", base+"/predict", []byte(`{"trip_distance":`), []int{400}, nil, expectError),
		httpCase("Predict: batch", base+"/predict/batch", map[string]any{
			"trips": []any{mondayTrip, withField("day_name", nil)},
		}, []int{200}, []int{503}, nil),
		httpCase("Predict: route", base+"/predict/route", map[string]any{
			"origin":      "Penn Station, New York, NY",
			"destination": "Union Square, New York, NY",
		}, []int{200}, []int{503}, expectFare),

		{
			Name: "Concurrency: identical requests agree",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentAgree(ctx, r, base+"/predict")
			},
		},
		{
			Name: "Perf: predict throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/predict", mondayTrip)
			},
		},
	}
}

// withField copies mondayTrip with key set to v, or removed when v is nil.
func withField(key string, v any) map[string]any {
	out := make(map[string]any, len(mondayTrip))
	for k, val := range mondayTrip {
		out[k] = val
	}
	if v == nil {
		delete(out, key)
	} else {
		out[key] = v
	}
	return out
}

func expectFare(body []byte) error {
	var resp struct {
		EstimatedFare *float64 `json:"estimated_fare"`
		Currency      string   `json:"currency"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	if resp.EstimatedFare == nil || *resp.EstimatedFare < 0 || resp.Currency != "USD" {
		return fmt.Errorf("unexpected body %s", body)
	}
	return nil
}

func expectError(body []byte) error {
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	if resp.Error == "" {
		return errors.New("error payload has no message")
	}
	return nil
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int, check func([]byte) error) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses, check)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int, check func([]byte) error) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, respBody, err := r.do(ctx, method, url, body)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			note := fmt.Sprintf("status=%d", status)

			switch {
			case slices.Contains(okStatuses, status):
				if check != nil {
					if err := check(respBody); err != nil {
						return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
					}
				}
				return Result{Status: "PASS", Latency: latency, Note: note}
			case slices.Contains(pendingStatuses, status):
				return Result{Status: "PENDING", Latency: latency, Note: note}
			default:
				return Result{Status: "FAIL", Latency: latency, Note: note}
			}
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, err
}

func concurrentAgree(ctx context.Context, r *Runner, url string) Result {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fares = map[string]int{}
		unav  int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body, err := r.do(ctx, http.MethodPost, url, mondayTrip)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if status == http.StatusServiceUnavailable {
				unav++
				return
			}
			fares[string(body)]++
		}()
	}
	wg.Wait()

	if unav == r.cfg.Concurrency {
		return Result{Status: "PENDING", Note: "model not loaded"}
	}
	if len(fares) == 1 {
		return Result{Status: "PASS", Note: fmt.Sprintf("responses=%d", r.cfg.Concurrency-unav)}
	}
	return Result{Status: "FAIL", Note: fmt.Sprintf("distinct responses=%d", len(fares))}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		latencies []time.Duration
		errCount  int64
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				start := time.Now()
				status, _, err := r.do(ctx, http.MethodPost, url, payload)
				elapsed := time.Since(start)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					latencies = append(latencies, elapsed)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(latencies) == 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("no successful requests (errors=%d)", errCount)}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	rps := float64(len(latencies)) / r.cfg.Duration.Seconds()
	p50 := latencies[len(latencies)/2]
	p95 := latencies[len(latencies)*95/100]
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f p50=%s p95=%s errors=%d", rps, p50, p95, errCount)}
}
