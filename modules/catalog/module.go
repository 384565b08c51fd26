package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/example/task-admin/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"golang.org/x/sync/singleflight"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CatalogModule provides product management services backed by GORM +
// SQLite with a cache-aside layer on top.
type CatalogModule struct {
	dbPath  string
	seed    bool
	db      *gorm.DB
	repo    *Repository
	cache   cache.Store
	sfGroup singleflight.Group
}

// Compile-time interface checks.
var _ mono.Module = (*CatalogModule)(nil)
var _ mono.ServiceProviderModule = (*CatalogModule)(nil)
var _ mono.HealthCheckableModule = (*CatalogModule)(nil)

// NewModule creates a new CatalogModule. The cache store must be wired
// via SetCache before the application starts.
func NewModule(dbPath string, seed bool) *CatalogModule {
	return &CatalogModule{
		dbPath: dbPath,
		seed:   seed,
	}
}

// Name returns the module name.
func (m *CatalogModule) Name() string {
	return "catalog"
}

// SetCache wires the cache store handle. Called from main before start.
func (m *CatalogModule) SetCache(store cache.Store) {
	m.cache = store
}

// RegisterServices registers request-reply services in the service
// container. The framework prefixes service names with "services.catalog."
// in the NATS subject.
func (m *CatalogModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.createProduct,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getProduct,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listProducts,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateProduct,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteProduct,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[catalog] Registered services: services.catalog.{create,get,list,update,delete}")
	return nil
}

// Start opens the database connection, runs migrations and seeds the
// catalog when it is empty.
func (m *CatalogModule) Start(_ context.Context) error {
	if m.cache == nil {
		return fmt.Errorf("cache store not configured, call SetCache before start")
	}

	log.Printf("[catalog] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := m.db.AutoMigrate(&Product{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.repo = NewRepository(m.db)

	if m.seed {
		count, err := m.repo.Count()
		if err != nil {
			return err
		}
		if count == 0 {
			if err := seedProducts(m.repo); err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
			log.Println("[catalog] Seeded sample products")
		}
	}

	log.Println("[catalog] Module started successfully")
	return nil
}

// Stop gracefully closes the database connection.
func (m *CatalogModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	log.Println("[catalog] Closing database connection...")

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[catalog] Database connection closed")
	return nil
}

// Health performs a health check on the catalog module.
func (m *CatalogModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	count, err := m.repo.Count()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("count query failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":   "sqlite",
			"path":     m.dbPath,
			"products": count,
		},
	}
}
