package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB returns a migrated in-memory SQLite store. Every call gets a fresh,
// isolated database that disappears with the connection.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newMockDB(t *testing.T, dialect Dialect) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewWithConn(conn, dialect), mock
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", DialectSQLite, false},
		{" SQLite ", DialectSQLite, false},
		{"postgres", DialectPostgres, false},
		{"postgresql", DialectPostgres, false},
		{"pgx", DialectPostgres, false},
		{"mysql", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ? LIMIT ?`

	lite := &DB{dialect: DialectSQLite}
	assert.Equal(t, q, lite.rebind(q))

	pg := &DB{dialect: DialectPostgres}
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y = $2 LIMIT $3`, pg.rebind(q))
}

func TestDriverSource(t *testing.T) {
	name, src, err := driverSource(DialectSQLite, ":memory:")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", name)
	assert.Contains(t, src, "foreign_keys(1)")
	assert.NotContains(t, src, "journal_mode(WAL)")

	_, src, err = driverSource(DialectSQLite, "data/dev.db")
	require.NoError(t, err)
	assert.Contains(t, src, "journal_mode(WAL)")

	name, src, err = driverSource(DialectPostgres, "postgres://localhost/dev")
	require.NoError(t, err)
	assert.Equal(t, "pgx", name)
	assert.Equal(t, "postgres://localhost/dev", src)

	_, _, err = driverSource(DialectPostgres, "")
	assert.Error(t, err)
	_, _, err = driverSource(DialectSQLite, "")
	assert.Error(t, err)
}

func TestMigrate_DownThenUp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(MigrateDown))
	require.NoError(t, db.Migrate(MigrateUp))
	// already current
	require.NoError(t, db.Migrate(MigrateUp))

	_, err := db.ListProfiles(ctx)
	assert.NoError(t, err)

	assert.Error(t, db.Migrate("sideways"))
}

func TestOpen_LeavesSchemaAlone(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ListProfiles(ctx)
	require.Error(t, err)

	require.NoError(t, db.Migrate(MigrateUp))
	_, err = db.ListProfiles(ctx)
	assert.NoError(t, err)
}

// The identity delete fails after experience and profile were deleted: the
// transaction must roll back rather than leave a profile-less identity.
func TestDeleteProfileAndUser_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t, DialectSQLite)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM experiences WHERE user_id = ?`)).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM profiles WHERE user_id = ?`)).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs("u1").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := db.DeleteProfileAndUser(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleting user")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrependExperience_PostgresLocksProfileRow(t *testing.T) {
	db, mock := newMockDB(t, DialectPostgres)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM profiles WHERE user_id = $1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	_, err := db.PrependExperience(context.Background(), "u1", &model.Experience{Title: "Dev"})
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
