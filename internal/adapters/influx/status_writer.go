package influx

import (
	"context"
	"fmt"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

const measurement = "bot_status"

// Config holds connection settings for the InfluxDB status mirror.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	Logger ports.Logger
}

// StatusWriter mirrors status snapshots into InfluxDB. A writer built without
// a URL is disabled and drops every point.
type StatusWriter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	logger   ports.Logger
	enabled  bool
}

// NewStatusWriter creates a status writer. It does not contact the server.
func NewStatusWriter(cfg Config) (*StatusWriter, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for influx status writer")
	}
	if cfg.URL == "" {
		return &StatusWriter{logger: cfg.Logger}, nil
	}
	if cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("influx org and bucket are required when url is set: %w", ports.ErrConfigurationError)
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	cfg.Logger.Info(context.Background(), "InfluxDB status mirror enabled", map[string]interface{}{
		"url":    cfg.URL,
		"bucket": cfg.Bucket,
	})
	return &StatusWriter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		logger:   cfg.Logger,
		enabled:  true,
	}, nil
}

// Enabled reports whether points are actually written.
func (w *StatusWriter) Enabled() bool {
	return w.enabled
}

// WriteStatus writes one point per snapshot. RSI and balance are omitted when unknown.
func (w *StatusWriter) WriteStatus(ctx context.Context, symbol string, log *domain.StatusLog) error {
	if !w.enabled || log == nil {
		return nil
	}

	fields := map[string]interface{}{
		"close_price": log.ClosePrice,
		"signal":      string(log.Signal),
	}
	if log.RSI != nil {
		fields["rsi"] = *log.RSI
	}
	if log.USDTBalance != nil {
		fields["balance_usdt"] = *log.USDTBalance
	}

	point := influxdb2.NewPoint(
		measurement,
		map[string]string{
			"symbol":   symbol,
			"strategy": string(log.Strategy),
		},
		fields,
		log.Timestamp,
	)

	if err := w.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("failed to write status point: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP resources.
func (w *StatusWriter) Close() {
	if w.client != nil {
		w.client.Close()
	}
}
