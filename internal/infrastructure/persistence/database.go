package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/finance"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/partner"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the configured database, applies pool settings and
// registers the tenant guard. Plugins (tracing) are installed before the
// first statement runs.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, plugins ...gorm.Plugin) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logger.MapGormLogLevel("warn"), cfg.SlowQuery),
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver != "sqlite",
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY storms; the allocator still retries
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := tenant.RegisterGuard(db); err != nil {
		return nil, fmt.Errorf("failed to register tenant guard: %w", err)
	}
	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("failed to install plugin %s: %w", p.Name(), err)
		}
	}

	return &Database{DB: db}, nil
}

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&identity.Tenant{},
		&identity.PermissionRecord{},
		&identity.Role{},
		&identity.User{},
		&catalog.Product{},
		&inventory.InventoryTransaction{},
		&partner.Supplier{},
		&trade.Sale{},
		&trade.SaleItem{},
		&trade.PurchaseInvoice{},
		&trade.PurchaseItem{},
		&trade.Return{},
		&trade.DocumentSequence{},
		&finance.Expense{},
	}
}

// uniqueIndexes are tenant-scoped uniqueness rules GORM tags cannot express
// on embedded columns.
var uniqueIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_tenant_username ON users (tenant_id, username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_tenant_invoice ON sales (tenant_id, invoice_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_invoices_tenant_invoice ON purchase_invoices (tenant_id, invoice_number)`,
}

// AutoMigrate creates the schema from the models. Production deployments use
// the SQL migrations under migrations/; this path serves sqlite development
// databases and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}
