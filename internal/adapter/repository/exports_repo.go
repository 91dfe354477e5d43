package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"resume-export/internal/domain"
)

type ExportsRepo struct {
	db DB
}

// NewExportsRepo returns a repo backed by pool. A nil pool makes Save a no-op.
func NewExportsRepo(pool *pgxpool.Pool) *ExportsRepo {
	return &ExportsRepo{db: fromPool(pool)}
}

func (r *ExportsRepo) Save(ctx context.Context, e *domain.CVExport) error {
	if r.db == nil {
		return nil
	}

	metaB, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal export metadata: %w", err)
	}
	removed := make([]int32, len(e.RemovedPages))
	for i, p := range e.RemovedPages {
		removed[i] = int32(p)
	}

	_, err = r.db.Exec(ctx, `INSERT INTO cv_exports (id, user_id, cv_id, template, status, pages_rendered, pages_returned, removed_pages, metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, pages_rendered = EXCLUDED.pages_rendered, pages_returned = EXCLUDED.pages_returned, removed_pages = EXCLUDED.removed_pages, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		e.ID, e.UserID, e.CVID, e.Template, e.Status, e.PagesRendered, e.PagesReturned, removed, metaB, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert cv_exports: %w", err)
	}
	return nil
}
