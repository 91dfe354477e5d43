package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrCVNotFound is returned when the user owns no CV with the given id.
var ErrCVNotFound = errors.New("cv not found")

// ErrNoDatabase is returned by reads when the service runs without a database.
var ErrNoDatabase = errors.New("cv storage not configured")

// CVRepo reads stored CV documents.
type CVRepo struct {
	db DB
}

func NewCVRepo(pool *pgxpool.Pool) *CVRepo {
	return &CVRepo{db: fromPool(pool)}
}

// Get returns the raw JSON document of a CV owned by userID.
func (r *CVRepo) Get(ctx context.Context, userID, cvID uuid.UUID) (json.RawMessage, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}
	raw, err := queryJSON(ctx, r.db, `SELECT document FROM cvs WHERE id = $1 AND user_id = $2`, cvID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCVNotFound, cvID)
	}
	if err != nil {
		return nil, fmt.Errorf("load cv %s: %w", cvID, err)
	}
	return raw, nil
}

// queryJSON runs a SQL that returns a single json value.
func queryJSON(ctx context.Context, db DB, sql string, args ...interface{}) (json.RawMessage, error) {
	var raw []byte
	if err := db.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, errors.New("stored document is not valid json")
	}
	return raw, nil
}
