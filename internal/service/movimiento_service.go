package service

import (
	"context"
	"time"

	"almapos/internal/apierror"
	"almapos/internal/dto"
	"almapos/internal/model"
	"almapos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoService manages gastos e ingresos extra. Every mutation locks the
// owning session and checks it is abierta inside the same transaction, so a
// concurrent cierre can never interleave with a movement edit.
type MovimientoService interface {
	CrearGasto(ctx context.Context, comercioID uuid.UUID, req dto.GastoRequest) (*dto.MovimientoResponse, error)
	ActualizarGasto(ctx context.Context, comercioID, gastoID uuid.UUID, req dto.GastoRequest) (*dto.MovimientoResponse, error)
	EliminarGasto(ctx context.Context, comercioID, gastoID uuid.UUID) error

	CrearIngreso(ctx context.Context, comercioID uuid.UUID, req dto.IngresoRequest) (*dto.MovimientoResponse, error)
	ActualizarIngreso(ctx context.Context, comercioID, ingresoID uuid.UUID, req dto.IngresoRequest) (*dto.MovimientoResponse, error)
	EliminarIngreso(ctx context.Context, comercioID, ingresoID uuid.UUID) error

	ListarMovimientos(ctx context.Context, comercioID uuid.UUID, fecha string) ([]dto.MovimientoResponse, []dto.MovimientoResponse, error)
}

type movimientoService struct {
	repo     repository.MovimientoRepository
	cajaRepo repository.CajaRepository
}

func NewMovimientoService(repo repository.MovimientoRepository, cajaRepo repository.CajaRepository) MovimientoService {
	return &movimientoService{repo: repo, cajaRepo: cajaRepo}
}

// sesionAbiertaPorFecha locks the session for fecha and rejects the mutation
// unless it is abierta.
func (s *movimientoService) sesionAbiertaPorFecha(ctx context.Context, tx *gorm.DB, comercioID uuid.UUID, fecha string) (*model.SesionCaja, error) {
	sesion, err := s.cajaRepo.FindSesionPorFechaTx(ctx, tx, comercioID, fecha, true)
	if err != nil {
		return nil, notFoundOr(err, "No existe sesión de caja para esa fecha")
	}
	if sesion.Estado != model.SesionAbierta {
		return nil, apierror.InvalidState("La sesión de caja está cerrada")
	}
	return sesion, nil
}

// sesionAbiertaPorID is the gate for update/delete, where the movement row
// already names its owning session.
func (s *movimientoService) sesionAbiertaPorID(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) error {
	sesion, err := s.cajaRepo.FindSesionByIDTx(ctx, tx, sesionID, true)
	if err != nil {
		return notFoundOr(err, "No existe la sesión de caja del movimiento")
	}
	if sesion.Estado != model.SesionAbierta {
		return apierror.InvalidState("La sesión de caja está cerrada")
	}
	return nil
}

// ── Gastos ────────────────────────────────────────────────────────────────────

func (s *movimientoService) CrearGasto(ctx context.Context, comercioID uuid.UUID, req dto.GastoRequest) (*dto.MovimientoResponse, error) {
	categoria := req.Categoria
	if categoria == "" {
		categoria = "general"
	}
	var gasto *model.Gasto
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.sesionAbiertaPorFecha(ctx, tx, comercioID, req.Fecha)
		if err != nil {
			return err
		}
		gasto = &model.Gasto{
			ComercioID:   comercioID,
			SesionCajaID: sesion.ID,
			Descripcion:  req.Descripcion,
			Monto:        req.Monto,
			Categoria:    categoria,
		}
		return s.repo.CreateGastoTx(ctx, tx, gasto)
	})
	if txErr != nil {
		return nil, txErr
	}
	return gastoToResponse(gasto), nil
}

func (s *movimientoService) ActualizarGasto(ctx context.Context, comercioID, gastoID uuid.UUID, req dto.GastoRequest) (*dto.MovimientoResponse, error) {
	var gasto *model.Gasto
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		gasto, err = s.repo.FindGastoByID(ctx, gastoID)
		if err != nil {
			return notFoundOr(err, "Gasto no encontrado")
		}
		if gasto.ComercioID != comercioID {
			return apierror.Unauthorized("El gasto pertenece a otro comercio")
		}
		if err := s.sesionAbiertaPorID(ctx, tx, gasto.SesionCajaID); err != nil {
			return err
		}
		gasto.Descripcion = req.Descripcion
		gasto.Monto = req.Monto
		if req.Categoria != "" {
			gasto.Categoria = req.Categoria
		}
		return s.repo.UpdateGastoTx(ctx, tx, gasto)
	})
	if txErr != nil {
		return nil, txErr
	}
	return gastoToResponse(gasto), nil
}

func (s *movimientoService) EliminarGasto(ctx context.Context, comercioID, gastoID uuid.UUID) error {
	return runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		gasto, err := s.repo.FindGastoByID(ctx, gastoID)
		if err != nil {
			return notFoundOr(err, "Gasto no encontrado")
		}
		if gasto.ComercioID != comercioID {
			return apierror.Unauthorized("El gasto pertenece a otro comercio")
		}
		if err := s.sesionAbiertaPorID(ctx, tx, gasto.SesionCajaID); err != nil {
			return err
		}
		return s.repo.DeleteGastoTx(ctx, tx, gasto.ID)
	})
}

// ── Ingresos extra ────────────────────────────────────────────────────────────

func (s *movimientoService) CrearIngreso(ctx context.Context, comercioID uuid.UUID, req dto.IngresoRequest) (*dto.MovimientoResponse, error) {
	tipo := req.Tipo
	if tipo == "" {
		tipo = "otro"
	}
	var ingreso *model.IngresoExtra
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.sesionAbiertaPorFecha(ctx, tx, comercioID, req.Fecha)
		if err != nil {
			return err
		}
		ingreso = &model.IngresoExtra{
			ComercioID:   comercioID,
			SesionCajaID: sesion.ID,
			Descripcion:  req.Descripcion,
			Monto:        req.Monto,
			Tipo:         tipo,
		}
		return s.repo.CreateIngresoTx(ctx, tx, ingreso)
	})
	if txErr != nil {
		return nil, txErr
	}
	return ingresoToResponse(ingreso), nil
}

func (s *movimientoService) ActualizarIngreso(ctx context.Context, comercioID, ingresoID uuid.UUID, req dto.IngresoRequest) (*dto.MovimientoResponse, error) {
	var ingreso *model.IngresoExtra
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		ingreso, err = s.repo.FindIngresoByID(ctx, ingresoID)
		if err != nil {
			return notFoundOr(err, "Ingreso no encontrado")
		}
		if ingreso.ComercioID != comercioID {
			return apierror.Unauthorized("El ingreso pertenece a otro comercio")
		}
		if err := s.sesionAbiertaPorID(ctx, tx, ingreso.SesionCajaID); err != nil {
			return err
		}
		ingreso.Descripcion = req.Descripcion
		ingreso.Monto = req.Monto
		if req.Tipo != "" {
			ingreso.Tipo = req.Tipo
		}
		return s.repo.UpdateIngresoTx(ctx, tx, ingreso)
	})
	if txErr != nil {
		return nil, txErr
	}
	return ingresoToResponse(ingreso), nil
}

func (s *movimientoService) EliminarIngreso(ctx context.Context, comercioID, ingresoID uuid.UUID) error {
	return runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		ingreso, err := s.repo.FindIngresoByID(ctx, ingresoID)
		if err != nil {
			return notFoundOr(err, "Ingreso no encontrado")
		}
		if ingreso.ComercioID != comercioID {
			return apierror.Unauthorized("El ingreso pertenece a otro comercio")
		}
		if err := s.sesionAbiertaPorID(ctx, tx, ingreso.SesionCajaID); err != nil {
			return err
		}
		return s.repo.DeleteIngresoTx(ctx, tx, ingreso.ID)
	})
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *movimientoService) ListarMovimientos(ctx context.Context, comercioID uuid.UUID, fecha string) ([]dto.MovimientoResponse, []dto.MovimientoResponse, error) {
	if err := validarFecha(fecha); err != nil {
		return nil, nil, err
	}
	sesion, err := s.cajaRepo.FindSesionPorFecha(ctx, comercioID, fecha)
	if err != nil {
		return nil, nil, notFoundOr(err, "No existe sesión de caja para esa fecha")
	}
	gastos, err := s.repo.ListGastosPorSesion(ctx, nil, sesion.ID)
	if err != nil {
		return nil, nil, err
	}
	ingresos, err := s.repo.ListIngresosPorSesion(ctx, nil, sesion.ID)
	if err != nil {
		return nil, nil, err
	}

	gastosResp := make([]dto.MovimientoResponse, 0, len(gastos))
	for i := range gastos {
		gastosResp = append(gastosResp, *gastoToResponse(&gastos[i]))
	}
	ingresosResp := make([]dto.MovimientoResponse, 0, len(ingresos))
	for i := range ingresos {
		ingresosResp = append(ingresosResp, *ingresoToResponse(&ingresos[i]))
	}
	return gastosResp, ingresosResp, nil
}

func gastoToResponse(g *model.Gasto) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		ID:          g.ID.String(),
		Descripcion: g.Descripcion,
		Monto:       g.Monto,
		Categoria:   g.Categoria,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
}

func ingresoToResponse(i *model.IngresoExtra) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		ID:          i.ID.String(),
		Descripcion: i.Descripcion,
		Monto:       i.Monto,
		Categoria:   i.Tipo,
		CreatedAt:   i.CreatedAt.Format(time.RFC3339),
	}
}
