// Package testutil provides shared helpers for stockflow tests: in-memory
// databases, seed data, fake collaborators and HTTP assertions.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens a private in-memory database with the full schema.
// The pool is pinned to one connection so every query sees the same database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "Failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...), "Failed to migrate schema")
	return db
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a sqlmock-backed gorm handle using the postgres dialect.
// The connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() { _ = mockDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// SeedProduct inserts a product with the given on-hand quantity.
func SeedProduct(t *testing.T, db *gorm.DB, name string, quantity int64) *inventory.Product {
	t.Helper()

	p := &inventory.Product{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Quantity:      quantity,
		PurchasePrice: decimal.NewFromInt(5),
		SellingPrice:  decimal.NewFromInt(8),
	}
	require.NoError(t, persistence.NewGormProductRepository(db).Create(context.Background(), p))
	return p
}

// SeedSupplier inserts a supplier.
func SeedSupplier(t *testing.T, db *gorm.DB, name string) *partner.Supplier {
	t.Helper()

	s := &partner.Supplier{BaseEntity: shared.NewBaseEntity(), Name: name}
	require.NoError(t, persistence.NewGormSupplierRepository(db).Create(context.Background(), s))
	return s
}

// SeedCustomer inserts a customer.
func SeedCustomer(t *testing.T, db *gorm.DB, name string) *partner.Customer {
	t.Helper()

	c := &partner.Customer{BaseEntity: shared.NewBaseEntity(), Name: name}
	require.NoError(t, persistence.NewGormCustomerRepository(db).Create(context.Background(), c))
	return c
}

// ProductQuantity reads the stored on-hand quantity of a product.
func ProductQuantity(t *testing.T, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()

	p, err := persistence.NewGormProductRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

// NewTestUUID generates a deterministic UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// ContextWithTimeout creates a context that is cancelled when the test ends
// or the timeout elapses, whichever comes first.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
