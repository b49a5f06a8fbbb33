package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockPool wires a sqlmock connection behind a Database so pool methods
// can be exercised without PostgreSQL.
func mockPool(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       conn,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock
}

func TestDatabase_Ping(t *testing.T) {
	db, mock := mockPool(t)
	defer db.Close()

	mock.ExpectPing()

	assert.NoError(t, db.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock := mockPool(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Stats(t *testing.T) {
	db, _ := mockPool(t)
	defer db.Close()

	stats, err := db.Stats()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, stats.Open, 0)
	assert.Equal(t, stats.Open, stats.InUse+stats.Idle)
	assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
}
