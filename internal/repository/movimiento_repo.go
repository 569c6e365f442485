package repository

import (
	"context"

	"almapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoRepository persists gastos e ingresos extra. All writes take the
// caller's tx: the service gates them on session estado inside that same tx.
type MovimientoRepository interface {
	CreateGastoTx(ctx context.Context, tx *gorm.DB, g *model.Gasto) error
	UpdateGastoTx(ctx context.Context, tx *gorm.DB, g *model.Gasto) error
	DeleteGastoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FindGastoByID(ctx context.Context, id uuid.UUID) (*model.Gasto, error)

	CreateIngresoTx(ctx context.Context, tx *gorm.DB, i *model.IngresoExtra) error
	UpdateIngresoTx(ctx context.Context, tx *gorm.DB, i *model.IngresoExtra) error
	DeleteIngresoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FindIngresoByID(ctx context.Context, id uuid.UUID) (*model.IngresoExtra, error)

	ListGastosPorSesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.Gasto, error)
	ListIngresosPorSesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.IngresoExtra, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *movimientoRepo) CreateGastoTx(ctx context.Context, tx *gorm.DB, g *model.Gasto) error {
	return tx.WithContext(ctx).Create(g).Error
}

func (r *movimientoRepo) UpdateGastoTx(ctx context.Context, tx *gorm.DB, g *model.Gasto) error {
	return tx.WithContext(ctx).Save(g).Error
}

func (r *movimientoRepo) DeleteGastoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.Gasto{}, "id = ?", id).Error
}

func (r *movimientoRepo) FindGastoByID(ctx context.Context, id uuid.UUID) (*model.Gasto, error) {
	var g model.Gasto
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *movimientoRepo) CreateIngresoTx(ctx context.Context, tx *gorm.DB, i *model.IngresoExtra) error {
	return tx.WithContext(ctx).Create(i).Error
}

func (r *movimientoRepo) UpdateIngresoTx(ctx context.Context, tx *gorm.DB, i *model.IngresoExtra) error {
	return tx.WithContext(ctx).Save(i).Error
}

func (r *movimientoRepo) DeleteIngresoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.IngresoExtra{}, "id = ?", id).Error
}

func (r *movimientoRepo) FindIngresoByID(ctx context.Context, id uuid.UUID) (*model.IngresoExtra, error) {
	var i model.IngresoExtra
	if err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *movimientoRepo) ListGastosPorSesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.Gasto, error) {
	var gastos []model.Gasto
	err := r.conn(tx).WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&gastos).Error
	return gastos, err
}

func (r *movimientoRepo) ListIngresosPorSesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.IngresoExtra, error) {
	var ingresos []model.IngresoExtra
	err := r.conn(tx).WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&ingresos).Error
	return ingresos, err
}
