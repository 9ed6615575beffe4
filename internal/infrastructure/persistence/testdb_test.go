package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database with the full schema.
// A single connection keeps every query on the same in-memory database.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockDB returns a gorm handle over sqlmock with the postgres dialect
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func seedProduct(t *testing.T, db *gorm.DB, name string, quantity int64) *inventory.Product {
	t.Helper()

	p := &inventory.Product{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Quantity:      quantity,
		PurchasePrice: decimal.NewFromInt(5),
		SellingPrice:  decimal.NewFromInt(8),
	}
	require.NoError(t, NewGormProductRepository(db).Create(context.Background(), p))
	return p
}

func seedSupplier(t *testing.T, db *gorm.DB) *partner.Supplier {
	t.Helper()

	s := &partner.Supplier{BaseEntity: shared.NewBaseEntity(), Name: "Acme Supply"}
	require.NoError(t, NewGormSupplierRepository(db).Create(context.Background(), s))
	return s
}

func seedCustomer(t *testing.T, db *gorm.DB) *partner.Customer {
	t.Helper()

	c := &partner.Customer{BaseEntity: shared.NewBaseEntity(), Name: "Jane Doe"}
	require.NoError(t, NewGormCustomerRepository(db).Create(context.Background(), c))
	return c
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}
