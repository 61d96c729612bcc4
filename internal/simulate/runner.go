package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/logger"
)

// Stats accumulates the outcome of a run.
type Stats struct {
	Submitted  int64
	Duplicates int64
	Rejected   int64
	Failed     int64
	Profiles   int64
}

// Run generates cfg.Assessments synthetic submissions, posts them
// concurrently, then reads back each persona profile.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	log := logger.Get().Named("simulate")

	reg, err := registry.New()
	if err != nil {
		return nil, fmt.Errorf("load instrument: %w", err)
	}
	log.Info(ctx, "starting simulation",
		logger.Int("assessments", cfg.Assessments),
		logger.Int("workers", cfg.Workers),
		logger.String("base_url", cfg.BaseURL),
	)

	client := &http.Client{Timeout: cfg.Timeout}
	stats := &Stats{}

	ids := make([]string, cfg.Assessments)
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				submitOne(ctx, cfg, client, reg, id, stats, log)
			}
		}()
	}
	for _, id := range ids {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return stats, ctx.Err()
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()

	// Give the engine a beat to drain its queue before reading profiles.
	time.Sleep(500 * time.Millisecond)
	for _, id := range ids {
		if fetchProfile(ctx, cfg, client, id, stats, log) {
			atomic.AddInt64(&stats.Profiles, 1)
		}
	}

	log.Info(ctx, "simulation complete",
		logger.Int64("submitted", atomic.LoadInt64(&stats.Submitted)),
		logger.Int64("duplicates", atomic.LoadInt64(&stats.Duplicates)),
		logger.Int64("rejected", atomic.LoadInt64(&stats.Rejected)),
		logger.Int64("failed", atomic.LoadInt64(&stats.Failed)),
		logger.Int64("profiles", atomic.LoadInt64(&stats.Profiles)),
	)
	return stats, nil
}

func submitOne(ctx context.Context, cfg *Config, client *http.Client, reg *registry.Registry, assessmentID string, stats *Stats, log logger.Logger) {
	sub := Generate(reg, assessmentID)

	var body any
	if sub.MapPayload != nil {
		body = sub.MapPayload
	} else {
		body = sub.Entries
	}
	data, err := json.Marshal(body)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}

	url := cfg.BaseURL + "/assessments/" + assessmentID + "/responses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		log.Warn(ctx, "submit failed", logger.String("assessment_id", assessmentID), logger.Error(err))
		return
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		atomic.AddInt64(&stats.Submitted, 1)
		if cfg.Verbose {
			var ack ackResponse
			_ = json.Unmarshal(raw, &ack)
			log.Debug(ctx, "submission accepted",
				logger.String("assessment_id", assessmentID),
				logger.String("style", styleName(sub.Style)),
				logger.String("mode", ack.Mode),
				logger.Int("accepted", ack.Accepted),
			)
		}
	case http.StatusOK:
		atomic.AddInt64(&stats.Duplicates, 1)
	case http.StatusUnprocessableEntity:
		atomic.AddInt64(&stats.Rejected, 1)
	default:
		atomic.AddInt64(&stats.Failed, 1)
		log.Warn(ctx, "unexpected submit status",
			logger.String("assessment_id", assessmentID),
			logger.Int("status", resp.StatusCode),
		)
	}
}

func fetchProfile(ctx context.Context, cfg *Config, client *http.Client, assessmentID string, stats *Stats, log logger.Logger) bool {
	url := cfg.BaseURL + "/assessments/" + assessmentID + "/profile"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Warn(ctx, "profile fetch failed", logger.String("assessment_id", assessmentID), logger.Error(err))
		return false
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var profile profileResponse
	if err := json.Unmarshal(raw, &profile); err != nil {
		return false
	}
	if cfg.Verbose && profile.Primary != nil {
		log.Debug(ctx, "profile ready",
			logger.String("assessment_id", assessmentID),
			logger.String("primary", profile.Primary.Schema),
			logger.Float64("index", profile.Primary.Index),
		)
	}
	return true
}
