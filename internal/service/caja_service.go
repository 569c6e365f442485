package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"almapos/internal/apierror"
	"almapos/internal/dto"
	"almapos/internal/model"
	"almapos/internal/repository"
	"almapos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const fechaLayout = "2006-01-02"

// resumenCacheTTL bounds the staleness of the live dashboard read path.
const resumenCacheTTL = 10 * time.Second

type CajaService interface {
	// AsegurarSesion returns the session for (comercio, fecha), creating it
	// lazily with balances carried over from the last cerrada session.
	AsegurarSesion(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.SesionResponse, error)
	Cerrar(ctx context.Context, comercioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreResponse, error)
	Reabrir(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.SesionResponse, error)
	IniciarDiaSiguiente(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.SesionResponse, error)
	Resumen(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.ResumenCaja, error)
	ListarCierres(ctx context.Context, comercioID uuid.UUID, page, limit int) ([]dto.CierreListItem, int64, error)
}

type cajaService struct {
	repo       repository.CajaRepository
	ventaRepo  repository.VentaRepository
	movRepo    repository.MovimientoRepository
	cierreRepo repository.CierreRepository
	dispatcher *worker.Dispatcher
	rdb        *redis.Client
}

func NewCajaService(
	repo repository.CajaRepository,
	ventaRepo repository.VentaRepository,
	movRepo repository.MovimientoRepository,
	cierreRepo repository.CierreRepository,
	dispatcher *worker.Dispatcher,
	rdb *redis.Client,
) CajaService {
	return &cajaService{
		repo:       repo,
		ventaRepo:  ventaRepo,
		movRepo:    movRepo,
		cierreRepo: cierreRepo,
		dispatcher: dispatcher,
		rdb:        rdb,
	}
}

// ── AsegurarSesion ────────────────────────────────────────────────────────────

func (s *cajaService) AsegurarSesion(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.SesionResponse, error) {
	if err := validarFecha(fecha); err != nil {
		return nil, err
	}

	var sesion *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		existing, err := s.repo.FindSesionPorFechaTx(ctx, tx, comercioID, fecha, false)
		if err == nil {
			sesion = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Seed opening balances from the most recent cerrada session.
		inicialEfectivo, inicialDigital := decimal.Zero, decimal.Zero
		if prev, err := s.repo.FindUltimaCerradaAntesTx(ctx, tx, comercioID, fecha); err == nil {
			if prev.FinalEfectivo != nil {
				inicialEfectivo = *prev.FinalEfectivo
			}
			if prev.FinalDigital != nil {
				inicialDigital = *prev.FinalDigital
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sesion = &model.SesionCaja{
			ComercioID:      comercioID,
			Fecha:           fecha,
			Estado:          model.SesionAbierta,
			InicialEfectivo: inicialEfectivo,
			InicialDigital:  inicialDigital,
		}
		return s.repo.CreateSesionTx(ctx, tx, sesion)
	})
	if txErr != nil {
		// Two callers may race on first creation; the unique index on
		// (comercio_id, fecha) rejects the loser — hand it the winner's row.
		if existing, err := s.repo.FindSesionPorFecha(ctx, comercioID, fecha); err == nil {
			return sesionToResponse(existing), nil
		}
		return nil, txErr
	}
	return sesionToResponse(sesion), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Locks the session row, derives the theoretical total from the recorded
// ventas/gastos/ingresos read inside the same transaction, persists the close
// and appends the write-once CierreCaja snapshot. Report generation happens
// after commit and can fail without affecting the cierre.

func (s *cajaService) Cerrar(ctx context.Context, comercioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreResponse, error) {
	if err := validarFecha(req.Fecha); err != nil {
		return nil, err
	}

	var resp *dto.CierreResponse
	var cierreID uuid.UUID
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.repo.FindSesionPorFechaTx(ctx, tx, comercioID, req.Fecha, true)
		if err != nil {
			return notFoundOr(err, "No existe sesión de caja para esa fecha")
		}
		if sesion.Estado != model.SesionAbierta {
			return apierror.InvalidState("La sesión ya está cerrada")
		}

		ventas, err := s.ventaRepo.ListPorSesion(ctx, tx, sesion.ID)
		if err != nil {
			return err
		}
		gastos, err := s.movRepo.ListGastosPorSesion(ctx, tx, sesion.ID)
		if err != nil {
			return err
		}
		ingresos, err := s.movRepo.ListIngresosPorSesion(ctx, tx, sesion.ID)
		if err != nil {
			return err
		}

		tot := CalcularTeorico(sesion.InicialEfectivo, sesion.InicialDigital, ventas, gastos, ingresos)
		declarado := req.DeclaradoEfectivo.Add(req.DeclaradoDigital)
		diferencia := CalcularDiferencia(declarado, tot.Teorico)

		now := time.Now()
		finalEfectivo, finalDigital := req.DeclaradoEfectivo, req.DeclaradoDigital
		sesion.FinalEfectivo = &finalEfectivo
		sesion.FinalDigital = &finalDigital
		sesion.Diferencia = &diferencia
		sesion.Estado = model.SesionCerrada
		sesion.ClosedAt = &now
		sesion.Observaciones = req.Observaciones
		if err := s.repo.UpdateSesionTx(ctx, tx, sesion); err != nil {
			return err
		}

		cierre := &model.CierreCaja{
			ComercioID:        comercioID,
			SesionCajaID:      sesion.ID,
			Fecha:             sesion.Fecha,
			InicialEfectivo:   sesion.InicialEfectivo,
			InicialDigital:    sesion.InicialDigital,
			TotalVentas:       tot.TotalVentas,
			TotalComisiones:   tot.TotalComisiones,
			TotalGastos:       tot.TotalGastos,
			TotalIngresos:     tot.TotalIngresos,
			Teorico:           tot.Teorico,
			DeclaradoEfectivo: req.DeclaradoEfectivo,
			DeclaradoDigital:  req.DeclaradoDigital,
			Diferencia:        diferencia,
			Observaciones:     req.Observaciones,
			ReporteEstado:     model.ReportePendiente,
		}
		if err := s.cierreRepo.CreateTx(ctx, tx, cierre); err != nil {
			return err
		}
		cierreID = cierre.ID

		resp = &dto.CierreResponse{
			CierreID: cierre.ID.String(),
			Resumen: dto.ResumenCaja{
				SesionID:        sesion.ID.String(),
				Fecha:           sesion.Fecha,
				Estado:          sesion.Estado,
				InicialEfectivo: sesion.InicialEfectivo,
				InicialDigital:  sesion.InicialDigital,
				TotalVentas:     tot.TotalVentas,
				TotalComisiones: tot.TotalComisiones,
				TotalGastos:     tot.TotalGastos,
				TotalIngresos:   tot.TotalIngresos,
				Teorico:         tot.Teorico,
			},
			DeclaradoEfectivo: req.DeclaradoEfectivo,
			DeclaradoDigital:  req.DeclaradoDigital,
			Diferencia:        diferencia,
			ReporteEstado:     model.ReportePendiente,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async PDF report — best-effort, the cierre is already committed.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueReporte(ctx, worker.ReporteJobPayload{CierreID: cierreID.String()}); err != nil {
			log.Warn().Err(err).Str("cierre_id", cierreID.String()).Msg("cierre: no se pudo encolar el reporte")
		}
	}
	s.invalidarResumen(ctx, comercioID, req.Fecha)
	return resp, nil
}

// ── Reabrir ───────────────────────────────────────────────────────────────────
// Emergency unlock: reverts the live session to abierta. Snapshots, ventas,
// gastos e ingresos stay exactly as recorded.

func (s *cajaService) Reabrir(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.SesionResponse, error) {
	if err := validarFecha(fecha); err != nil {
		return nil, err
	}

	var sesion *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionPorFechaTx(ctx, tx, comercioID, fecha, true)
		if err != nil {
			return notFoundOr(err, "No existe sesión de caja para esa fecha")
		}
		if sesion.Estado != model.SesionCerrada {
			return apierror.InvalidState("Solo una sesión cerrada puede reabrirse")
		}
		sesion.Estado = model.SesionAbierta
		sesion.FinalEfectivo = nil
		sesion.FinalDigital = nil
		sesion.Diferencia = nil
		sesion.ClosedAt = nil
		return s.repo.UpdateSesionTx(ctx, tx, sesion)
	})
	if txErr != nil {
		return nil, txErr
	}
	s.invalidarResumen(ctx, comercioID, fecha)
	return sesionToResponse(sesion), nil
}

// ── IniciarDiaSiguiente ───────────────────────────────────────────────────────

func (s *cajaService) IniciarDiaSiguiente(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.SesionResponse, error) {
	dia, err := time.Parse(fechaLayout, fecha)
	if err != nil {
		return nil, apierror.Validation("Fecha inválida, se espera YYYY-MM-DD")
	}
	siguiente := dia.AddDate(0, 0, 1).Format(fechaLayout)

	var nueva *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actual, err := s.repo.FindSesionPorFechaTx(ctx, tx, comercioID, fecha, true)
		if err != nil {
			return notFoundOr(err, "No existe sesión de caja para esa fecha")
		}
		if actual.Estado != model.SesionCerrada {
			return apierror.InvalidState("La sesión debe estar cerrada antes de iniciar el día siguiente")
		}

		if _, err := s.repo.FindSesionPorFechaTx(ctx, tx, comercioID, siguiente, false); err == nil {
			return apierror.InvalidState("Ya existe una sesión para el día siguiente")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		inicialEfectivo, inicialDigital := decimal.Zero, decimal.Zero
		if actual.FinalEfectivo != nil {
			inicialEfectivo = *actual.FinalEfectivo
		}
		if actual.FinalDigital != nil {
			inicialDigital = *actual.FinalDigital
		}
		nueva = &model.SesionCaja{
			ComercioID:      comercioID,
			Fecha:           siguiente,
			Estado:          model.SesionAbierta,
			InicialEfectivo: inicialEfectivo,
			InicialDigital:  inicialDigital,
		}
		return s.repo.CreateSesionTx(ctx, tx, nueva)
	})
	if txErr != nil {
		return nil, txErr
	}
	return sesionToResponse(nueva), nil
}

// ── Resumen ───────────────────────────────────────────────────────────────────
// Display read path: not transactionally consistent with in-flight writes,
// cached briefly in Redis.

func (s *cajaService) Resumen(ctx context.Context, comercioID uuid.UUID, fecha string) (*dto.ResumenCaja, error) {
	if err := validarFecha(fecha); err != nil {
		return nil, err
	}

	cacheKey := "resumen:" + comercioID.String() + ":" + fecha
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached dto.ResumenCaja
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	sesion, err := s.repo.FindSesionPorFecha(ctx, comercioID, fecha)
	if err != nil {
		return nil, notFoundOr(err, "No existe sesión de caja para esa fecha")
	}
	ventas, err := s.ventaRepo.ListPorSesion(ctx, nil, sesion.ID)
	if err != nil {
		return nil, err
	}
	gastos, err := s.movRepo.ListGastosPorSesion(ctx, nil, sesion.ID)
	if err != nil {
		return nil, err
	}
	ingresos, err := s.movRepo.ListIngresosPorSesion(ctx, nil, sesion.ID)
	if err != nil {
		return nil, err
	}

	tot := CalcularTeorico(sesion.InicialEfectivo, sesion.InicialDigital, ventas, gastos, ingresos)
	resumen := &dto.ResumenCaja{
		SesionID:        sesion.ID.String(),
		Fecha:           sesion.Fecha,
		Estado:          sesion.Estado,
		InicialEfectivo: sesion.InicialEfectivo,
		InicialDigital:  sesion.InicialDigital,
		TotalVentas:     tot.TotalVentas,
		TotalComisiones: tot.TotalComisiones,
		TotalGastos:     tot.TotalGastos,
		TotalIngresos:   tot.TotalIngresos,
		Teorico:         tot.Teorico,
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(resumen); err == nil {
			_ = s.rdb.Set(ctx, cacheKey, raw, resumenCacheTTL).Err()
		}
	}
	return resumen, nil
}

func (s *cajaService) ListarCierres(ctx context.Context, comercioID uuid.UUID, page, limit int) ([]dto.CierreListItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	cierres, total, err := s.cierreRepo.List(ctx, comercioID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.CierreListItem, 0, len(cierres))
	for _, c := range cierres {
		items = append(items, dto.CierreListItem{
			ID:                c.ID.String(),
			Fecha:             c.Fecha,
			Teorico:           c.Teorico,
			DeclaradoEfectivo: c.DeclaradoEfectivo,
			DeclaradoDigital:  c.DeclaradoDigital,
			Diferencia:        c.Diferencia,
			ReporteEstado:     c.ReporteEstado,
			CreatedAt:         c.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, total, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) invalidarResumen(ctx context.Context, comercioID uuid.UUID, fecha string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, "resumen:"+comercioID.String()+":"+fecha).Err()
}

func validarFecha(fecha string) error {
	if _, err := time.Parse(fechaLayout, fecha); err != nil {
		return apierror.Validation("Fecha inválida, se espera YYYY-MM-DD")
	}
	return nil
}

// notFoundOr translates gorm's record-not-found into a typed NotFound;
// anything else bubbles up as-is (and collapses to the generic internal
// envelope at the HTTP boundary).
func notFoundOr(err error, detail string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(detail)
	}
	return err
}

func sesionToResponse(s *model.SesionCaja) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:              s.ID.String(),
		Fecha:           s.Fecha,
		Estado:          s.Estado,
		InicialEfectivo: s.InicialEfectivo,
		InicialDigital:  s.InicialDigital,
		FinalEfectivo:   s.FinalEfectivo,
		FinalDigital:    s.FinalDigital,
		Diferencia:      s.Diferencia,
		Observaciones:   s.Observaciones,
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
