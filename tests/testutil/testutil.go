// Package testutil holds helpers shared by the storefront's package and
// integration tests.
package testutil

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewMockDB opens a PostgreSQL-dialect GORM handle over sqlmock. The
// connection is closed when the test ends; expectations are left to the
// caller so a test can check them at the point it cares about.
func NewMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       conn,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

// Eventually polls cond every 10ms and fails the test when it is still false
// after timeout
func Eventually(t *testing.T, cond func() bool, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	require.Eventually(t, cond, timeout, 10*time.Millisecond, msgAndArgs...)
}
