package sql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/joinsql/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithSlowThreshold(time.Hour),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	assert.Equal(t, dialect.SQLite, drv.Dialect())

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM car", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("DELETE").WillReturnError(errors.New("locked"))
	require.Error(t, drv.Exec(context.Background(), "DELETE FROM car", []any{}, nil))

	s := drv.QueryStats().Stats()
	assert.EqualValues(t, 1, s.TotalQueries)
	assert.EqualValues(t, 1, s.TotalExecs)
	assert.EqualValues(t, 1, s.Errors)
	assert.Zero(t, s.SlowQueries)
	assert.Empty(t, slow)

	drv.SetSlowThreshold(-1)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM engine", []any{}, rows))
	require.NoError(t, rows.Close())
	assert.EqualValues(t, 1, drv.QueryStats().Stats().SlowQueries)
	assert.Equal(t, []string{"SELECT id FROM engine"}, slow)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsSnapshot(t *testing.T) {
	var s StatsSnapshot
	assert.Zero(t, s.AvgDuration())

	s = StatsSnapshot{TotalQueries: 3, TotalExecs: 1, TotalDuration: 40 * time.Millisecond, SlowQueries: 1}
	assert.Equal(t, 10*time.Millisecond, s.AvgDuration())
	assert.Equal(t, "queries=3 execs=1 duration=40ms avg=10ms slow=1 errors=0", s.String())
}
