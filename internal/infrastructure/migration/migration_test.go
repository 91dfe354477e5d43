package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	statements []string
	failOn     int
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...interface{}) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	if r.failOn > 0 && len(r.statements) == r.failOn {
		return nil, errors.New("boom")
	}
	return pgconn.CommandTag("OK"), nil
}

func TestRunMigrations(t *testing.T) {
	db := &recordingExecer{}
	require.NoError(t, RunMigrations(context.Background(), db, zerolog.Nop()))

	require.Len(t, db.statements, len(Migrations))
	for _, s := range db.statements {
		assert.Contains(t, s, "IF NOT EXISTS")
	}
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	db := &recordingExecer{failOn: 2}
	err := RunMigrations(context.Background(), db, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), Migrations[1].Name)
	assert.Len(t, db.statements, 2)
}
