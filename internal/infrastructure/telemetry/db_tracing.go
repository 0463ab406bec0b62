package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// DBTracing adds otelgorm spans plus slow query marking to a GORM handle
type DBTracing struct {
	enabled   bool
	fullSQL   bool
	slowQuery time.Duration
	dbSystem  string
	logger    *zap.Logger
}

// NewDBTracing reads the db_* telemetry settings
func NewDBTracing(cfg config.TelemetryConfig, dbSystem string, logger *zap.Logger) *DBTracing {
	return &DBTracing{
		enabled:   cfg.Enabled && cfg.DBTraceEnabled,
		fullSQL:   cfg.DBLogFullSQL,
		slowQuery: cfg.DBSlowQueryThresh,
		dbSystem:  dbSystem,
		logger:    logger,
	}
}

// Register installs the plugin and timing callbacks
func (t *DBTracing) Register(db *gorm.DB) error {
	if !t.enabled {
		return nil
	}
	// registered ahead of otelgorm so finish sees its span before it ends
	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("storefront:start_create", markStart),
		cb.Create().After("gorm:create").Register("storefront:finish_create", t.finish),
		cb.Query().Before("gorm:query").Register("storefront:start_query", markStart),
		cb.Query().After("gorm:query").Register("storefront:finish_query", t.finish),
		cb.Update().Before("gorm:update").Register("storefront:start_update", markStart),
		cb.Update().After("gorm:update").Register("storefront:finish_update", t.finish),
		cb.Delete().Before("gorm:delete").Register("storefront:start_delete", markStart),
		cb.Delete().After("gorm:delete").Register("storefront:finish_delete", t.finish),
		cb.Row().Before("gorm:row").Register("storefront:start_row", markStart),
		cb.Row().After("gorm:row").Register("storefront:finish_row", t.finish),
		cb.Raw().Before("gorm:raw").Register("storefront:start_raw", markStart),
		cb.Raw().After("gorm:raw").Register("storefront:finish_raw", t.finish),
	} {
		if err != nil {
			return err
		}
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(t.dbSystem)}
	if !t.fullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	t.logger.Info("Database tracing enabled",
		zap.String("db_system", t.dbSystem),
		zap.Duration("slow_query_threshold", t.slowQuery),
	)
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *DBTracing) finish(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	// a missing row is an expected outcome, not a span error
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > t.slowQuery {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		t.logger.Warn("slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.String("trace_id", TraceID(ctx)),
		)
	}
}
