package service_test

import (
	"context"
	"testing"

	"almapos/internal/apierror"
	"almapos/internal/dto"
	"almapos/internal/model"
	"almapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cajaFixture struct {
	cajaRepo   *memCajaRepo
	ventaRepo  *memVentaRepo
	movRepo    *memMovimientoRepo
	cierreRepo *memCierreRepo
	svc        service.CajaService
	comercioID uuid.UUID
}

func newCajaFixture() *cajaFixture {
	f := &cajaFixture{
		cajaRepo:   newMemCajaRepo(),
		ventaRepo:  newMemVentaRepo(),
		movRepo:    newMemMovimientoRepo(),
		cierreRepo: newMemCierreRepo(),
		comercioID: uuid.New(),
	}
	f.svc = service.NewCajaService(f.cajaRepo, f.ventaRepo, f.movRepo, f.cierreRepo, nil, nil)
	return f
}

func TestAsegurarSesionCreaYEsIdempotente(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	primera, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, model.SesionAbierta, primera.Estado)
	assert.True(t, primera.InicialEfectivo.IsZero())

	segunda, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, primera.ID, segunda.ID)
	assert.Len(t, f.cajaRepo.sesiones, 1)
}

func TestAsegurarSesionHeredaSaldosDelUltimoCierre(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	_, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-28")
	require.NoError(t, err)
	_, err = f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{
		Fecha:             "2026-08-28",
		DeclaradoEfectivo: d("750.00"),
		DeclaradoDigital:  d("320.00"),
	})
	require.NoError(t, err)

	nueva, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	assert.True(t, nueva.InicialEfectivo.Equal(d("750.00")))
	assert.True(t, nueva.InicialDigital.Equal(d("320.00")))
}

func TestCerrarCalculaDiferenciaYRegistraCierre(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	sesion, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)

	sesionID := uuid.MustParse(sesion.ID)
	require.NoError(t, f.ventaRepo.CreateTx(ctx, nil, &model.Venta{
		ComercioID:   f.comercioID,
		SesionCajaID: sesionID,
		Tipo:         model.TipoTicket,
		Estado:       model.VentaCompletada,
		Monto:        d("300.00"),
		Comision:     d("9.00"),
	}))
	require.NoError(t, f.movRepo.CreateGastoTx(ctx, nil, &model.Gasto{
		ComercioID: f.comercioID, SesionCajaID: sesionID, Monto: d("50.00"),
	}))
	require.NoError(t, f.movRepo.CreateIngresoTx(ctx, nil, &model.IngresoExtra{
		ComercioID: f.comercioID, SesionCajaID: sesionID, Monto: d("20.00"),
	}))

	// teorico = 0 + 20 + 300 − 9 − 50 = 261; declarado = 250 → faltante de 11
	resp, err := f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{
		Fecha:             "2026-08-29",
		DeclaradoEfectivo: d("250.00"),
		DeclaradoDigital:  decimal.Zero,
	})
	require.NoError(t, err)
	assert.True(t, resp.Resumen.Teorico.Equal(d("261.00")))
	assert.True(t, resp.Diferencia.Equal(d("-11.00")))
	assert.Equal(t, model.ReportePendiente, resp.ReporteEstado)

	cerrada, err := f.cajaRepo.FindSesionPorFecha(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, model.SesionCerrada, cerrada.Estado)
	require.NotNil(t, cerrada.ClosedAt)
	require.NotNil(t, cerrada.Diferencia)
	assert.True(t, cerrada.Diferencia.Equal(d("-11.00")))

	cierres, err := f.cierreRepo.ListPorSesion(ctx, sesionID)
	require.NoError(t, err)
	require.Len(t, cierres, 1)
	assert.True(t, cierres[0].TotalVentas.Equal(d("300.00")))
}

func TestCerrarSesionYaCerrada(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	_, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	_, err = f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{Fecha: "2026-08-29"})
	require.NoError(t, err)

	_, err = f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{Fecha: "2026-08-29"})
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestCerrarSinSesion(t *testing.T) {
	f := newCajaFixture()
	_, err := f.svc.Cerrar(context.Background(), f.comercioID, dto.CerrarCajaRequest{Fecha: "2026-08-29"})
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestReabrirYRecerrarAcumulaCierres(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	sesion, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	_, err = f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{Fecha: "2026-08-29", DeclaradoEfectivo: d("100.00")})
	require.NoError(t, err)

	reabierta, err := f.svc.Reabrir(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, model.SesionAbierta, reabierta.Estado)
	assert.Nil(t, reabierta.FinalEfectivo)
	assert.Nil(t, reabierta.Diferencia)
	assert.Nil(t, reabierta.ClosedAt)

	_, err = f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{Fecha: "2026-08-29", DeclaradoEfectivo: d("105.00")})
	require.NoError(t, err)

	cierres, err := f.cierreRepo.ListPorSesion(ctx, uuid.MustParse(sesion.ID))
	require.NoError(t, err)
	assert.Len(t, cierres, 2)
}

func TestReabrirSoloSesionCerrada(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	_, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)

	_, err = f.svc.Reabrir(ctx, f.comercioID, "2026-08-29")
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestIniciarDiaSiguienteCopiaSaldos(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	_, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	_, err = f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{
		Fecha:             "2026-08-29",
		DeclaradoEfectivo: d("500.00"),
		DeclaradoDigital:  d("200.00"),
	})
	require.NoError(t, err)

	nueva, err := f.svc.IniciarDiaSiguiente(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", nueva.Fecha)
	assert.Equal(t, model.SesionAbierta, nueva.Estado)
	assert.True(t, nueva.InicialEfectivo.Equal(d("500.00")))
	assert.True(t, nueva.InicialDigital.Equal(d("200.00")))
}

func TestIniciarDiaSiguienteRequiereCierre(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	_, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)

	_, err = f.svc.IniciarDiaSiguiente(ctx, f.comercioID, "2026-08-29")
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestIniciarDiaSiguienteDuplicado(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	_, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	_, err = f.svc.Cerrar(ctx, f.comercioID, dto.CerrarCajaRequest{Fecha: "2026-08-29"})
	require.NoError(t, err)

	_, err = f.svc.IniciarDiaSiguiente(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)

	_, err = f.svc.IniciarDiaSiguiente(ctx, f.comercioID, "2026-08-29")
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestResumenSinRedis(t *testing.T) {
	f := newCajaFixture()
	ctx := context.Background()

	sesion, err := f.svc.AsegurarSesion(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	sesionID := uuid.MustParse(sesion.ID)
	require.NoError(t, f.ventaRepo.CreateTx(ctx, nil, &model.Venta{
		ComercioID:   f.comercioID,
		SesionCajaID: sesionID,
		Tipo:         model.TipoTicket,
		Estado:       model.VentaCompletada,
		Monto:        d("150.00"),
	}))

	resumen, err := f.svc.Resumen(ctx, f.comercioID, "2026-08-29")
	require.NoError(t, err)
	assert.True(t, resumen.TotalVentas.Equal(d("150.00")))
	assert.True(t, resumen.Teorico.Equal(d("150.00")))
	assert.Equal(t, model.SesionAbierta, resumen.Estado)
}

func TestFechaInvalida(t *testing.T) {
	f := newCajaFixture()
	_, err := f.svc.AsegurarSesion(context.Background(), f.comercioID, "29/08/2026")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}
