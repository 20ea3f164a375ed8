package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans (dev only)
	SlowQueryThresh time.Duration // queries slower than this get a slow_query event
	DBSystem        string        // postgresql or sqlite
}

// DBTracingConfigFrom derives the tracing settings for a database driver
func DBTracingConfigFrom(cfg config.TelemetryConfig, driver string) DBTracingConfig {
	system := "postgresql"
	if driver == "sqlite" {
		system = "sqlite"
	}
	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThreshold
	}
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: thresh,
		DBSystem:        system,
	}
}

// DBTracingPlugin registers otelgorm and annotates its spans with row
// counts, table names and slow query markers.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// Register installs the otelgorm plugin and the timing callbacks on db.
// It does nothing when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	processors := []struct {
		op     string
		before func(string) callbackRegistrar
		after  func(string) callbackRegistrar
	}{
		{"create", func(n string) callbackRegistrar { return cb.Create().Before(n) }, func(n string) callbackRegistrar { return cb.Create().After(n) }},
		{"query", func(n string) callbackRegistrar { return cb.Query().Before(n) }, func(n string) callbackRegistrar { return cb.Query().After(n) }},
		{"update", func(n string) callbackRegistrar { return cb.Update().Before(n) }, func(n string) callbackRegistrar { return cb.Update().After(n) }},
		{"delete", func(n string) callbackRegistrar { return cb.Delete().Before(n) }, func(n string) callbackRegistrar { return cb.Delete().After(n) }},
		{"row", func(n string) callbackRegistrar { return cb.Row().Before(n) }, func(n string) callbackRegistrar { return cb.Row().After(n) }},
		{"raw", func(n string) callbackRegistrar { return cb.Raw().Before(n) }, func(n string) callbackRegistrar { return cb.Raw().After(n) }},
	}
	for _, proc := range processors {
		gormName := "gorm:" + proc.op
		if err := proc.before(gormName).Register("otel_timing:before_"+proc.op, markQueryStart); err != nil {
			return err
		}
		if err := proc.after(gormName).Register("otel_timing:after_"+proc.op, p.annotateSpan); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// callbackRegistrar is the part of gorm's callback processor used here
type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
