package sqlstore

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDriver(t *testing.T) {
	tests := []struct {
		name    string
		want    Driver
		wantErr bool
	}{
		{name: "sqlite", want: DriverSQLite},
		{name: "pgx", want: DriverPostgres},
		{name: "postgres", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDriver(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	query := "UPDATE scores SET score = ? WHERE id = ? AND owner_id = ?"

	assert.Equal(t, query, DriverSQLite.rebind(query))
	assert.Equal(t, "UPDATE scores SET score = $1 WHERE id = $2 AND owner_id = $3", DriverPostgres.rebind(query))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, DriverPostgres.isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, DriverPostgres.isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, DriverSQLite.isUniqueViolation(errors.New("UNIQUE constraint failed")))
}
