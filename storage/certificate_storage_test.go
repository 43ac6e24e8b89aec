package storage

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			"sqlite unique",
			errors.New("UNIQUE constraint failed: certificates.cert_id"),
			true,
		},
		{
			"mysql duplicate entry",
			errors.New("Error 1062 (23000): Duplicate entry 'OF-1' for key 'certificates.idx_cert_id'"),
			true,
		},
		{
			"postgres duplicate key",
			errors.New(`ERROR: duplicate key value violates unique constraint "idx_certificates_cert_id" (SQLSTATE 23505)`),
			true,
		},
		{
			"unrelated error",
			errors.New("connection refused"),
			false,
		},
		{
			// The check is deliberately coarse: any sqlite constraint failure
			// is treated as a uniqueness violation.
			"sqlite generic constraint",
			errors.New("constraint failed: certificates.cert_id"),
			true,
		},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				assert.Equal(t, test.expected, isUniqueConstraintError(test.err))
			},
		)
	}
}

func TestDSN(t *testing.T) {
	dsn, err := DSN(
		DriverMySQL, DSNConf{
			User:     "opalforge",
			Password: "secret",
			Host:     "db.internal",
			DB:       "opalforge",
		},
	)
	assert.NoError(t, err)
	assert.Equal(t, "opalforge:secret@tcp(db.internal:3306)/opalforge?charset=utf8mb4&parseTime=True", dsn)

	dsn, err = DSN(
		DriverPostgres, DSNConf{
			User:     "opalforge",
			Password: "secret",
			Host:     "db.internal",
			DB:       "opalforge",
		},
	)
	assert.NoError(t, err)
	assert.Equal(t, "host=db.internal user=opalforge password=secret dbname=opalforge port=5432", dsn)

	_, err = DSN(DriverSQLite, DSNConf{})
	assert.Error(t, err)
}
