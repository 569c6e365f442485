package service

import (
	"context"
	"time"

	"almapos/internal/apierror"
	"almapos/internal/dto"
	"almapos/internal/model"
	"almapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	// RegistrarVenta allocates a document number, persists the sale with its
	// item snapshots and discounts stock, all in one transaction.
	RegistrarVenta(ctx context.Context, comercioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	// AnularVenta flips the sale to anulada and restores stock from the item
	// snapshots. The assigned numero stays consumed.
	AnularVenta(ctx context.Context, comercioID, ventaID uuid.UUID) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, comercioID, ventaID uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, comercioID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo      repository.VentaRepository
	cajaRepo  repository.CajaRepository
	contador  repository.ContadorRepository
	productos repository.ProductoRepository
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	contador repository.ContadorRepository,
	productos repository.ProductoRepository,
) VentaService {
	return &ventaService{
		repo:      repo,
		cajaRepo:  cajaRepo,
		contador:  contador,
		productos: productos,
	}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────

func (s *ventaService) RegistrarVenta(ctx context.Context, comercioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	var venta *model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The session row lock serializes this sale against a concurrent
		// cierre on the same day: either the sale lands before the close and
		// counts toward the teórico, or it fails cleanly after it.
		sesion, err := s.cajaRepo.FindSesionPorFechaTx(ctx, tx, comercioID, req.Fecha, true)
		if err != nil {
			return notFoundOr(err, "No existe sesión de caja para esa fecha")
		}
		// Presupuestos do not move money and may be issued on a closed day.
		if req.Tipo != model.TipoPresupuesto && sesion.Estado != model.SesionAbierta {
			return apierror.InvalidState("La sesión de caja está cerrada")
		}

		// Estado checks precede allocation: a rejected sale never consumes
		// a document number.
		numero, err := s.contador.SiguienteTx(ctx, tx, comercioID, req.Tipo, req.PuntoDeVenta)
		if err != nil {
			return err
		}

		monto := decimal.Zero
		items := make([]model.VentaItem, 0, len(req.Items))
		for _, it := range req.Items {
			subtotal := it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
			monto = monto.Add(subtotal)

			var productoID *uuid.UUID
			if it.ProductoID != "" {
				id, err := uuid.Parse(it.ProductoID)
				if err != nil {
					return apierror.Validation("producto_id inválido: " + it.ProductoID)
				}
				productoID = &id
			}
			items = append(items, model.VentaItem{
				ProductoID:     productoID,
				NombreProducto: it.Nombre,
				Cantidad:       it.Cantidad,
				PrecioUnitario: it.PrecioUnitario,
				Subtotal:       subtotal,
			})
		}

		venta = &model.Venta{
			ComercioID:      comercioID,
			SesionCajaID:    sesion.ID,
			Tipo:            req.Tipo,
			PuntoDeVenta:    req.PuntoDeVenta,
			Numero:          numero,
			Monto:           monto,
			MetodoPago:      req.MetodoPago,
			Comision:        req.Comision,
			Estado:          model.VentaCompletada,
			ClienteNombre:   req.ClienteNombre,
			ClienteTelefono: req.ClienteTelefono,
			Items:           items,
		}
		if err := s.repo.CreateTx(ctx, tx, venta); err != nil {
			return err
		}

		// Presupuestos reserve nothing; only catalog-backed lines touch stock.
		if req.Tipo != model.TipoPresupuesto {
			for _, it := range venta.Items {
				if it.ProductoID == nil {
					continue
				}
				if err := s.productos.AjustarStockTx(ctx, tx, comercioID, *it.ProductoID, -it.Cantidad); err != nil {
					return notFoundOr(err, "Producto inexistente: "+it.NombreProducto)
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return ventaToResponse(venta), nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────

func (s *ventaService) AnularVenta(ctx context.Context, comercioID, ventaID uuid.UUID) (*dto.VentaResponse, error) {
	var venta *model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.repo.FindByIDTx(ctx, tx, ventaID)
		if err != nil {
			return notFoundOr(err, "Venta no encontrada")
		}
		if venta.ComercioID != comercioID {
			return apierror.Unauthorized("La venta pertenece a otro comercio")
		}
		if venta.Tipo == model.TipoPresupuesto {
			return apierror.InvalidState("Un presupuesto no se anula, no afecta caja ni stock")
		}
		if venta.Estado == model.VentaAnulada {
			return apierror.InvalidState("La venta ya está anulada")
		}

		if err := s.repo.UpdateEstadoTx(ctx, tx, venta.ID, model.VentaAnulada); err != nil {
			return err
		}
		venta.Estado = model.VentaAnulada

		// Restore from the snapshot quantities, never from current catalog
		// state: later price or name edits must not change what comes back.
		for _, it := range venta.Items {
			if it.ProductoID == nil {
				continue
			}
			if err := s.productos.AjustarStockTx(ctx, tx, comercioID, *it.ProductoID, it.Cantidad); err != nil {
				return notFoundOr(err, "Producto inexistente: "+it.NombreProducto)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return ventaToResponse(venta), nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, comercioID, ventaID uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, notFoundOr(err, "Venta no encontrada")
	}
	if venta.ComercioID != comercioID {
		return nil, apierror.Unauthorized("La venta pertenece a otro comercio")
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) ListarVentas(ctx context.Context, comercioID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, comercioID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, it := range v.Items {
		var productoID *string
		if it.ProductoID != nil {
			id := it.ProductoID.String()
			productoID = &id
		}
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     productoID,
			Nombre:         it.NombreProducto,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		Tipo:           v.Tipo,
		PuntoDeVenta:   v.PuntoDeVenta,
		Numero:         v.Numero,
		NumeroCompleto: v.NumeroCompleto(),
		Items:          items,
		Monto:          v.Monto,
		MetodoPago:     v.MetodoPago,
		Comision:       v.Comision,
		Estado:         v.Estado,
		ClienteNombre:  v.ClienteNombre,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}
