package content

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/platform/dbctx"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type ContentRecordRepo interface {
	Upsert(dbc dbctx.Context, rows []*domain.ContentRecord) error
	List(dbc dbctx.Context) ([]*domain.ContentRecord, error)
	DeleteExcept(dbc dbctx.Context, keepIDs []string) (int64, error)
	Count(dbc dbctx.Context) (int64, error)
}

type contentRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRecordRepo(db *gorm.DB, baseLog *logger.Logger) ContentRecordRepo {
	return &contentRecordRepo{
		db:  db,
		log: baseLog.With("repo", "ContentRecordRepo"),
	}
}

func (r *contentRecordRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Context())
}

func (r *contentRecordRepo) Upsert(dbc dbctx.Context, rows []*domain.ContentRecord) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	return r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"position",
				"type",
				"name",
				"status",
				"version",
				"level_scheme",
				"document",
				"checksum",
				"source",
				"generation",
				"updated_at",
			}),
		}).
		CreateInBatches(rows, 200).Error
}

// List returns every row in mirror order. Status filtering happens in the
// service so hidden records still resolve as cross-reference targets.
func (r *contentRecordRepo) List(dbc dbctx.Context) ([]*domain.ContentRecord, error) {
	var out []*domain.ContentRecord
	if err := r.tx(dbc).
		Order("position ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteExcept removes rows whose id is not in keepIDs. An empty keepIDs
// deletes nothing.
func (r *contentRecordRepo) DeleteExcept(dbc dbctx.Context, keepIDs []string) (int64, error) {
	if len(keepIDs) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).
		Where("id NOT IN ?", keepIDs).
		Delete(&domain.ContentRecord{})
	return res.RowsAffected, res.Error
}

func (r *contentRecordRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.tx(dbc).Model(&domain.ContentRecord{}).Count(&n).Error
	return n, err
}
