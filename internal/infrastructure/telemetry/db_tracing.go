package telemetry

import (
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// DBPlugins returns the GORM plugins that emit a span per statement. Query
// parameters are left out of spans unless db_log_full_sql is set.
func DBPlugins(cfg config.TelemetryConfig, dbSystem string) []gorm.Plugin {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(dbSystem)}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return []gorm.Plugin{otelgorm.NewPlugin(opts...)}
}
