package service_test

// In-memory repository stubs. DB() returns nil so services run their
// transaction bodies directly; row locking is approximated with mutexes.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"almapos/internal/dto"
	"almapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── CajaRepository ────────────────────────────────────────────────────────────

type memCajaRepo struct {
	mu       sync.Mutex
	sesiones map[uuid.UUID]*model.SesionCaja
}

func newMemCajaRepo() *memCajaRepo {
	return &memCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *memCajaRepo) DB() *gorm.DB { return nil }

func (r *memCajaRepo) CreateSesionTx(_ context.Context, _ *gorm.DB, s *model.SesionCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sesiones {
		if existing.ComercioID == s.ComercioID && existing.Fecha == s.Fecha {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.sesiones[s.ID] = s
	return nil
}

func (r *memCajaRepo) findPorFecha(comercioID uuid.UUID, fecha string) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.ComercioID == comercioID && s.Fecha == fecha {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCajaRepo) FindSesionPorFecha(_ context.Context, comercioID uuid.UUID, fecha string) (*model.SesionCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findPorFecha(comercioID, fecha)
}

func (r *memCajaRepo) FindSesionPorFechaTx(_ context.Context, _ *gorm.DB, comercioID uuid.UUID, fecha string, _ bool) (*model.SesionCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findPorFecha(comercioID, fecha)
}

func (r *memCajaRepo) FindSesionByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID, _ bool) (*model.SesionCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *memCajaRepo) FindUltimaCerradaAntesTx(_ context.Context, _ *gorm.DB, comercioID uuid.UUID, fecha string) (*model.SesionCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.SesionCaja
	for _, s := range r.sesiones {
		if s.ComercioID != comercioID || s.Estado != model.SesionCerrada || s.Fecha >= fecha {
			continue
		}
		if best == nil || s.Fecha > best.Fecha {
			best = s
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r *memCajaRepo) UpdateSesionTx(_ context.Context, _ *gorm.DB, s *model.SesionCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sesiones[s.ID] = s
	return nil
}

// ── VentaRepository ───────────────────────────────────────────────────────────

type memVentaRepo struct {
	mu     sync.Mutex
	ventas map[uuid.UUID]*model.Venta
}

func newMemVentaRepo() *memVentaRepo {
	return &memVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *memVentaRepo) DB() *gorm.DB { return nil }

func (r *memVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *memVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *memVentaRepo) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	return r.FindByID(ctx, id)
}

func (r *memVentaRepo) UpdateEstadoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, estado string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Estado = estado
	return nil
}

func (r *memVentaRepo) ListPorSesion(_ context.Context, _ *gorm.DB, sesionID uuid.UUID) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for _, v := range r.ventas {
		if v.SesionCajaID == sesionID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVentaRepo) List(_ context.Context, comercioID uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for _, v := range r.ventas {
		if v.ComercioID != comercioID {
			continue
		}
		if filter.Estado != "" && filter.Estado != "all" && v.Estado != filter.Estado {
			continue
		}
		if filter.Tipo != "" && v.Tipo != filter.Tipo {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

// ── ContadorRepository ────────────────────────────────────────────────────────

type memContadorRepo struct {
	mu         sync.Mutex
	contadores map[string]int64
}

func newMemContadorRepo() *memContadorRepo {
	return &memContadorRepo{contadores: make(map[string]int64)}
}

func (r *memContadorRepo) SiguienteTx(_ context.Context, _ *gorm.DB, comercioID uuid.UUID, tipo string, puntoDeVenta int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s|%s|%d", comercioID, tipo, puntoDeVenta)
	r.contadores[key]++
	return r.contadores[key], nil
}

// ── MovimientoRepository ──────────────────────────────────────────────────────

type memMovimientoRepo struct {
	mu       sync.Mutex
	gastos   map[uuid.UUID]*model.Gasto
	ingresos map[uuid.UUID]*model.IngresoExtra
}

func newMemMovimientoRepo() *memMovimientoRepo {
	return &memMovimientoRepo{
		gastos:   make(map[uuid.UUID]*model.Gasto),
		ingresos: make(map[uuid.UUID]*model.IngresoExtra),
	}
}

func (r *memMovimientoRepo) CreateGastoTx(_ context.Context, _ *gorm.DB, g *model.Gasto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.CreatedAt = time.Now()
	r.gastos[g.ID] = g
	return nil
}

func (r *memMovimientoRepo) UpdateGastoTx(_ context.Context, _ *gorm.DB, g *model.Gasto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gastos[g.ID] = g
	return nil
}

func (r *memMovimientoRepo) DeleteGastoTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.gastos, id)
	return nil
}

func (r *memMovimientoRepo) FindGastoByID(_ context.Context, id uuid.UUID) (*model.Gasto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gastos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (r *memMovimientoRepo) CreateIngresoTx(_ context.Context, _ *gorm.DB, i *model.IngresoExtra) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.CreatedAt = time.Now()
	r.ingresos[i.ID] = i
	return nil
}

func (r *memMovimientoRepo) UpdateIngresoTx(_ context.Context, _ *gorm.DB, i *model.IngresoExtra) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingresos[i.ID] = i
	return nil
}

func (r *memMovimientoRepo) DeleteIngresoTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ingresos, id)
	return nil
}

func (r *memMovimientoRepo) FindIngresoByID(_ context.Context, id uuid.UUID) (*model.IngresoExtra, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.ingresos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *memMovimientoRepo) ListGastosPorSesion(_ context.Context, _ *gorm.DB, sesionID uuid.UUID) ([]model.Gasto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Gasto
	for _, g := range r.gastos {
		if g.SesionCajaID == sesionID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memMovimientoRepo) ListIngresosPorSesion(_ context.Context, _ *gorm.DB, sesionID uuid.UUID) ([]model.IngresoExtra, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.IngresoExtra
	for _, i := range r.ingresos {
		if i.SesionCajaID == sesionID {
			out = append(out, *i)
		}
	}
	return out, nil
}

// ── CierreRepository ──────────────────────────────────────────────────────────

type memCierreRepo struct {
	mu      sync.Mutex
	cierres map[uuid.UUID]*model.CierreCaja
}

func newMemCierreRepo() *memCierreRepo {
	return &memCierreRepo{cierres: make(map[uuid.UUID]*model.CierreCaja)}
}

func (r *memCierreRepo) CreateTx(_ context.Context, _ *gorm.DB, c *model.CierreCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.cierres[c.ID] = c
	return nil
}

func (r *memCierreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cierres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *memCierreRepo) List(_ context.Context, comercioID uuid.UUID, _, _ int) ([]model.CierreCaja, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.ComercioID == comercioID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memCierreRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.CierreCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.SesionCajaID == sesionID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCierreRepo) MarcarReporteGenerado(_ context.Context, id uuid.UUID, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cierres[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ReporteEstado = model.ReporteGenerado
	c.ReportePath = &path
	c.NextRetryAt = nil
	c.LastError = nil
	return nil
}

func (r *memCierreRepo) MarcarReporteError(_ context.Context, id uuid.UUID, cause string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cierres[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ReporteEstado = model.ReporteError
	c.LastError = &cause
	c.NextRetryAt = &nextRetryAt
	c.RetryCount++
	return nil
}

func (r *memCierreRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.CierreCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.ReporteEstado == model.ReporteError && c.NextRetryAt != nil && !c.NextRetryAt.After(now) {
			out = append(out, *c)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ── ProductoRepository ────────────────────────────────────────────────────────

type memProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
}

func newMemProductoRepo() *memProductoRepo {
	return &memProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *memProductoRepo) DB() *gorm.DB { return nil }

func (r *memProductoRepo) AjustarStockTx(_ context.Context, _ *gorm.DB, comercioID, productoID uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[productoID]
	if !ok || p.ComercioID != comercioID {
		return gorm.ErrRecordNotFound
	}
	p.StockActual += delta
	return nil
}

func (r *memProductoRepo) FindByID(_ context.Context, comercioID, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok || p.ComercioID != comercioID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *memProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}
