package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"futuresBot/internal/ports"
)

// Config holds scheduler endpoints and pacing.
type Config struct {
	ExecuteURL     string
	TrailingURL    string
	SettleDelay    time.Duration // Between execute and the trailing stop check
	CycleDelay     time.Duration // After the trailing stop check
	ExecuteTimeout time.Duration
	TrailTimeout   time.Duration
	Logger         ports.Logger
	Client         *http.Client // Optional
}

// Scheduler drives the bot over HTTP: execute, settle, update the trailing
// stop, wait, repeat. Errors are logged and the loop continues.
type Scheduler struct {
	cfg    Config
	client *http.Client
	logger ports.Logger
}

func New(cfg Config) (*Scheduler, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for scheduler")
	}
	if cfg.ExecuteURL == "" || cfg.TrailingURL == "" {
		return nil, fmt.Errorf("execute and trailing stop URLs are required: %w", ports.ErrConfigurationError)
	}
	if cfg.ExecuteTimeout <= 0 {
		cfg.ExecuteTimeout = 30 * time.Second
	}
	if cfg.TrailTimeout <= 0 {
		cfg.TrailTimeout = 15 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Scheduler{cfg: cfg, client: client, logger: cfg.Logger}, nil
}

// Run loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Scheduler started", map[string]interface{}{
		"executeURL":  s.cfg.ExecuteURL,
		"trailingURL": s.cfg.TrailingURL,
		"settle":      s.cfg.SettleDelay.String(),
		"cycle":       s.cfg.CycleDelay.String(),
	})
	for {
		if !s.RunOnce(ctx) {
			break
		}
		if !sleep(ctx, s.cfg.CycleDelay) {
			break
		}
	}
	s.logger.Info(context.Background(), "Scheduler stopped")
	return nil
}

// RunOnce performs one execute / settle / trailing stop round. It returns
// false if ctx was cancelled along the way.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	s.call(ctx, "execute", s.cfg.ExecuteURL, s.cfg.ExecuteTimeout)
	if !sleep(ctx, s.cfg.SettleDelay) {
		return false
	}
	s.call(ctx, "update-tsl", s.cfg.TrailingURL, s.cfg.TrailTimeout)
	return ctx.Err() == nil
}

func (s *Scheduler) call(ctx context.Context, name, url string, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to build request", map[string]interface{}{"call": name})
		return
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error(ctx, err, "Request failed", map[string]interface{}{"call": name, "url": url})
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		s.logger.Error(ctx, err, "Failed to read response", map[string]interface{}{"call": name})
		return
	}
	fields := map[string]interface{}{"call": name, "httpStatus": resp.StatusCode}
	var body map[string]interface{}
	if json.Unmarshal(raw, &body) == nil {
		for _, k := range []string{"status", "signal", "reason", "detail"} {
			if v, ok := body[k]; ok {
				fields[k] = v
			}
		}
	} else {
		fields["body"] = string(raw)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Warn(ctx, "Bot returned an error", fields)
		return
	}
	s.logger.Info(ctx, "Bot responded", fields)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
