package service

import (
	"context"

	"almapos/internal/dto"
	"almapos/internal/model"
	"almapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductoService exposes the stock-ledger surface: manual relative
// adjustments (recounts, breakage, received goods) and lookups.
type ProductoService interface {
	AjustarStock(ctx context.Context, comercioID, productoID uuid.UUID, req dto.AjustarStockRequest) (*model.Producto, error)
	Obtener(ctx context.Context, comercioID, productoID uuid.UUID) (*model.Producto, error)
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) AjustarStock(ctx context.Context, comercioID, productoID uuid.UUID, req dto.AjustarStockRequest) (*model.Producto, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.AjustarStockTx(ctx, tx, comercioID, productoID, req.Delta)
	})
	if txErr != nil {
		return nil, notFoundOr(txErr, "Producto no encontrado")
	}
	log.Info().
		Str("producto_id", productoID.String()).
		Int("delta", req.Delta).
		Str("motivo", req.Motivo).
		Msg("stock ajustado manualmente")
	return s.Obtener(ctx, comercioID, productoID)
}

func (s *productoService) Obtener(ctx context.Context, comercioID, productoID uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, comercioID, productoID)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado")
	}
	return p, nil
}
