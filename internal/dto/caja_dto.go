package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AsegurarSesionRequest struct {
	Fecha string `json:"fecha" validate:"required,datetime=2006-01-02"`
}

type CerrarCajaRequest struct {
	Fecha             string          `json:"fecha"              validate:"required,datetime=2006-01-02"`
	DeclaradoEfectivo decimal.Decimal `json:"declarado_efectivo" validate:"min=0"`
	DeclaradoDigital  decimal.Decimal `json:"declarado_digital"  validate:"min=0"`
	Observaciones     *string         `json:"observaciones"`
}

type ReabrirCajaRequest struct {
	Fecha string `json:"fecha" validate:"required,datetime=2006-01-02"`
}

type DiaSiguienteRequest struct {
	Fecha string `json:"fecha" validate:"required,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionResponse struct {
	ID              string           `json:"id"`
	Fecha           string           `json:"fecha"`
	Estado          string           `json:"estado"`
	InicialEfectivo decimal.Decimal  `json:"inicial_efectivo"`
	InicialDigital  decimal.Decimal  `json:"inicial_digital"`
	FinalEfectivo   *decimal.Decimal `json:"final_efectivo"`
	FinalDigital    *decimal.Decimal `json:"final_digital"`
	Diferencia      *decimal.Decimal `json:"diferencia"`
	Observaciones   *string          `json:"observaciones"`
	ClosedAt        *string          `json:"closed_at"`
}

// ResumenCaja is the computed breakdown of a session at a point in time.
type ResumenCaja struct {
	SesionID        string          `json:"sesion_id"`
	Fecha           string          `json:"fecha"`
	Estado          string          `json:"estado"`
	InicialEfectivo decimal.Decimal `json:"inicial_efectivo"`
	InicialDigital  decimal.Decimal `json:"inicial_digital"`
	TotalVentas     decimal.Decimal `json:"total_ventas"`
	TotalComisiones decimal.Decimal `json:"total_comisiones"`
	TotalGastos     decimal.Decimal `json:"total_gastos"`
	TotalIngresos   decimal.Decimal `json:"total_ingresos"`
	Teorico         decimal.Decimal `json:"teorico"`
}

type CierreResponse struct {
	CierreID          string          `json:"cierre_id"`
	Resumen           ResumenCaja     `json:"resumen"`
	DeclaradoEfectivo decimal.Decimal `json:"declarado_efectivo"`
	DeclaradoDigital  decimal.Decimal `json:"declarado_digital"`
	Diferencia        decimal.Decimal `json:"diferencia"`
	// ReporteEstado is "pendiente" right after close — PDF generation is
	// async and its failure never rolls back the cierre.
	ReporteEstado string `json:"reporte_estado"`
}

type CierreListItem struct {
	ID                string          `json:"id"`
	Fecha             string          `json:"fecha"`
	Teorico           decimal.Decimal `json:"teorico"`
	DeclaradoEfectivo decimal.Decimal `json:"declarado_efectivo"`
	DeclaradoDigital  decimal.Decimal `json:"declarado_digital"`
	Diferencia        decimal.Decimal `json:"diferencia"`
	ReporteEstado     string          `json:"reporte_estado"`
	CreatedAt         string          `json:"created_at"`
}
