// Package integration runs the storefront against a real PostgreSQL started
// with testcontainers. The schema comes from the embedded SQL migrations, so
// these tests also check that the migrations agree with the GORM models.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tungtungsport/storefront/internal/infrastructure/migration"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB represents a test database connection
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// skipWithoutDocker skips integration tests in -short mode or when asked to
func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if os.Getenv("STORE_SKIP_INTEGRATION") != "" {
		t.Skip("STORE_SKIP_INTEGRATION is set")
	}
}

func runPostgres(ctx context.Context, database string) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(database),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, "", err
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}
	return container, dsn, nil
}

// NewTestDB starts a fresh PostgreSQL container with the schema migrated
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipWithoutDocker(t)

	container, dsn, err := runPostgres(context.Background(), "storefront_test")
	require.NoError(t, err, "Failed to start PostgreSQL container")

	db, sqlDB := connectToDatabase(t, dsn)
	runMigrations(t, sqlDB)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(testDB.Close)
	return testDB
}

// NewSharedTestDB returns a connection to a container shared by the package.
// Tests using it must clean up after themselves or use CleanTables.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipWithoutDocker(t)

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		container, dsn, err := runPostgres(context.Background(), "storefront_shared_test")
		require.NoError(t, err, "Failed to start shared PostgreSQL container")
		sharedContainer = container
		sharedContainerDSN = dsn

		_, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		_ = sqlDB.Close()
	}

	db, sqlDB := connectToDatabase(t, sharedContainerDSN)
	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: sharedContainer,
		DSN:       sharedContainerDSN,
		t:         t,
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return testDB
}

// Close closes the connection and terminates a non-shared container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil && tdb.Container != sharedContainer {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CleanTables truncates every table except the migration bookkeeping and the
// seeded catalog
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename NOT IN ('schema_migrations', 'products')
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			tdb.t.Logf("Warning: Failed to truncate table %s: %v", table, err)
		}
	}
}

// WithTransaction runs fn inside a transaction that is always rolled back
func (tdb *TestDB) WithTransaction(fn func(tx *gorm.DB)) {
	tdb.t.Helper()

	tx := tdb.DB.Begin()
	require.NoError(tdb.t, tx.Error, "Failed to begin transaction")
	defer tx.Rollback()

	fn(tx)
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// runMigrations applies the embedded migrations, the same set cmd/migrate ships
func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}
