package repository

import (
	"context"
	"time"

	"almapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CierreRepository stores the write-once close snapshots. Only the
// reporte_* columns are ever updated after insert.
type CierreRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error)
	List(ctx context.Context, comercioID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error)
	ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.CierreCaja, error)
	MarcarReporteGenerado(ctx context.Context, id uuid.UUID, path string) error
	MarcarReporteError(ctx context.Context, id uuid.UUID, cause string, nextRetryAt time.Time) error
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.CierreCaja, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) CreateTx(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cierreRepo) List(ctx context.Context, comercioID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error) {
	var cierres []model.CierreCaja
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CierreCaja{}).Where("comercio_id = ?", comercioID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&cierres).Error
	return cierres, total, err
}

func (r *cierreRepo) ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&cierres).Error
	return cierres, err
}

func (r *cierreRepo) MarcarReporteGenerado(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.CierreCaja{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reporte_estado": model.ReporteGenerado,
			"reporte_path":   path,
			"next_retry_at":  nil,
			"last_error":     nil,
		}).Error
}

func (r *cierreRepo) MarcarReporteError(ctx context.Context, id uuid.UUID, cause string, nextRetryAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.CierreCaja{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reporte_estado": model.ReporteError,
			"last_error":     cause,
			"next_retry_at":  nextRetryAt,
			"retry_count":    gorm.Expr("retry_count + 1"),
		}).Error
}

// ListPendingRetries feeds the retry cron: errored reports whose
// next_retry_at has elapsed.
func (r *cierreRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).
		Where("reporte_estado = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.ReporteError, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&cierres).Error
	return cierres, err
}
