package dto

import "github.com/shopspring/decimal"

// Gastos e ingresos extra — summable inputs to the arqueo, editable only
// while the owning session is abierta.

type GastoRequest struct {
	Fecha       string          `json:"fecha"       validate:"required,datetime=2006-01-02"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Categoria   string          `json:"categoria"   validate:"omitempty,max=30"`
}

type IngresoRequest struct {
	Fecha       string          `json:"fecha"       validate:"required,datetime=2006-01-02"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Tipo        string          `json:"tipo"        validate:"omitempty,max=30"`
}

type MovimientoResponse struct {
	ID          string          `json:"id"`
	Descripcion string          `json:"descripcion"`
	Monto       decimal.Decimal `json:"monto"`
	Categoria   string          `json:"categoria,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type AjustarStockRequest struct {
	// Delta is relative: positive = entrada, negative = salida
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}
