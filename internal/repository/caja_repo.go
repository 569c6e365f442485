package repository

import (
	"context"

	"almapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
	CreateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	FindSesionPorFecha(ctx context.Context, comercioID uuid.UUID, fecha string) (*model.SesionCaja, error)
	// FindSesionPorFechaTx re-reads the session inside the caller's
	// transaction; lock=true takes a FOR UPDATE row lock so concurrent
	// close/sale paths serialize on the session row.
	FindSesionPorFechaTx(ctx context.Context, tx *gorm.DB, comercioID uuid.UUID, fecha string, lock bool) (*model.SesionCaja, error)
	FindSesionByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.SesionCaja, error)
	FindUltimaCerradaAntesTx(ctx context.Context, tx *gorm.DB, comercioID uuid.UUID, fecha string) (*model.SesionCaja, error)
	UpdateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionPorFecha(ctx context.Context, comercioID uuid.UUID, fecha string) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("comercio_id = ? AND fecha = ?", comercioID, fecha).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionPorFechaTx(ctx context.Context, tx *gorm.DB, comercioID uuid.UUID, fecha string, lock bool) (*model.SesionCaja, error) {
	q := tx.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var s model.SesionCaja
	err := q.Where("comercio_id = ? AND fecha = ?", comercioID, fecha).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, lock bool) (*model.SesionCaja, error) {
	q := tx.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var s model.SesionCaja
	if err := q.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindUltimaCerradaAntesTx returns the most recent cerrada session strictly
// before fecha. The YYYY-MM-DD key compares correctly as a string.
func (r *cajaRepo) FindUltimaCerradaAntesTx(ctx context.Context, tx *gorm.DB, comercioID uuid.UUID, fecha string) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.WithContext(ctx).
		Where("comercio_id = ? AND fecha < ? AND estado = ?", comercioID, fecha, model.SesionCerrada).
		Order("fecha DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) UpdateSesionTx(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return tx.WithContext(ctx).Save(s).Error
}
