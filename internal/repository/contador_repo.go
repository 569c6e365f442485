package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContadorRepository issues strictly increasing document numbers per
// (comercio, tipo, punto de venta).
type ContadorRepository interface {
	// SiguienteTx allocates the next number. It must run inside the
	// caller's transaction: if the enclosing tx aborts, the increment
	// rolls back and the number is never consumed.
	SiguienteTx(ctx context.Context, tx *gorm.DB, comercioID uuid.UUID, tipo string, puntoDeVenta int) (int64, error)
}

type contadorRepo struct{ db *gorm.DB }

func NewContadorRepository(db *gorm.DB) ContadorRepository { return &contadorRepo{db: db} }

// SiguienteTx performs a single conditional write: insert the counter at 1,
// or atomically bump it if the key exists. Two concurrent transactions for
// the same key serialize on the conflicting row, so they can never observe
// the same returned value. A read-then-write here would race.
func (r *contadorRepo) SiguienteTx(ctx context.Context, tx *gorm.DB, comercioID uuid.UUID, tipo string, puntoDeVenta int) (int64, error) {
	var numero int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO contadores_documento (comercio_id, tipo, punto_de_venta, actual, created_at, updated_at)
		VALUES (?, ?, ?, 1, now(), now())
		ON CONFLICT (comercio_id, tipo, punto_de_venta)
		DO UPDATE SET actual = contadores_documento.actual + 1, updated_at = now()
		RETURNING actual`,
		comercioID, tipo, puntoDeVenta,
	).Scan(&numero).Error
	return numero, err
}
