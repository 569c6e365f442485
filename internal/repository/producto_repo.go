package repository

import (
	"context"

	"almapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository is the narrow stock-ledger interface this core consumes.
// Catalog management happens elsewhere; sales only need atomic relative
// stock adjustments plus a couple of lookups.
type ProductoRepository interface {
	DB() *gorm.DB
	// AjustarStockTx applies a relative delta (negative on sale, positive
	// on anulación) inside the caller's transaction. The update is a single
	// relative SQL statement, never read-modify-write.
	AjustarStockTx(ctx context.Context, tx *gorm.DB, comercioID, productoID uuid.UUID, delta int) error
	FindByID(ctx context.Context, comercioID, id uuid.UUID) (*model.Producto, error)
	Create(ctx context.Context, p *model.Producto) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) AjustarStockTx(ctx context.Context, tx *gorm.DB, comercioID, productoID uuid.UUID, delta int) error {
	res := tx.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND comercio_id = ?", productoID, comercioID).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) FindByID(ctx context.Context, comercioID, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Where("id = ? AND comercio_id = ?", id, comercioID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}
