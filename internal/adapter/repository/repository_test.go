package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-export/internal/domain"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	called := m.Called(sql, args)
	return pgconn.CommandTag("INSERT 0 1"), called.Error(0)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.Called(sql, args).Get(0).(pgx.Row)
}

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.data
	return nil
}

func TestExportsRepo_NilPoolIsNoop(t *testing.T) {
	r := NewExportsRepo(nil)
	assert.NoError(t, r.Save(context.Background(), &domain.CVExport{}))
}

func TestExportsRepo_Save(t *testing.T) {
	db := new(mockDB)
	r := &ExportsRepo{db: db}
	e := &domain.CVExport{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Template:      "classic",
		Status:        domain.StatusCompleted,
		PagesRendered: 3,
		PagesReturned: 2,
		RemovedPages:  []int{1},
		Metadata:      map[string]interface{}{"bytes": 1024},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	db.On("Exec", mock.MatchedBy(func(sql string) bool { return len(sql) > 0 }), mock.MatchedBy(func(args []interface{}) bool {
		return len(args) == 11 && args[0] == e.ID && assert.ObjectsAreEqual([]int32{1}, args[7])
	})).Return(nil).Once()

	require.NoError(t, r.Save(context.Background(), e))
	db.AssertExpectations(t)
}

func TestExportsRepo_SaveWrapsError(t *testing.T) {
	db := new(mockDB)
	db.On("Exec", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	err := (&ExportsRepo{db: db}).Save(context.Background(), &domain.CVExport{})
	assert.ErrorContains(t, err, "upsert cv_exports")
}

func TestCVRepo_Get(t *testing.T) {
	userID, cvID := uuid.New(), uuid.New()

	t.Run("found", func(t *testing.T) {
		db := new(mockDB)
		db.On("QueryRow", mock.Anything, []interface{}{cvID, userID}).Return(fakeRow{data: []byte(`{"meta":{}}`)})

		raw, err := (&CVRepo{db: db}).Get(context.Background(), userID, cvID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"meta":{}}`, string(raw))
	})

	t.Run("not found", func(t *testing.T) {
		db := new(mockDB)
		db.On("QueryRow", mock.Anything, mock.Anything).Return(fakeRow{err: pgx.ErrNoRows})

		_, err := (&CVRepo{db: db}).Get(context.Background(), userID, cvID)
		assert.ErrorIs(t, err, ErrCVNotFound)
	})

	t.Run("corrupt document", func(t *testing.T) {
		db := new(mockDB)
		db.On("QueryRow", mock.Anything, mock.Anything).Return(fakeRow{data: []byte(`{`)})

		_, err := (&CVRepo{db: db}).Get(context.Background(), userID, cvID)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCVNotFound)
	})

	t.Run("no database", func(t *testing.T) {
		_, err := NewCVRepo(nil).Get(context.Background(), userID, cvID)
		assert.ErrorIs(t, err, ErrNoDatabase)
	})
}
