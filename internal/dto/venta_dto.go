package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"  validate:"omitempty,datetime=2006-01-02"`
	Estado string `form:"estado,default=completada"` // completada | anulada | all
	Tipo   string `form:"tipo"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	// ProductoID empty = free-form line without stock effect (venta rapida)
	ProductoID     string          `json:"producto_id" validate:"omitempty,uuid"`
	Nombre         string          `json:"nombre"      validate:"required"`
	Cantidad       int             `json:"cantidad"    validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type RegistrarVentaRequest struct {
	Fecha           string             `json:"fecha"          validate:"required,datetime=2006-01-02"`
	PuntoDeVenta    int                `json:"punto_de_venta" validate:"required,min=1"`
	Tipo            string             `json:"tipo"           validate:"required,oneof=ticket presupuesto factura_a factura_b factura_c venta_rapida"`
	Items           []ItemVentaRequest `json:"items"          validate:"required,min=1,dive"`
	MetodoPago      string             `json:"metodo_pago"    validate:"required,oneof=efectivo debito credito transferencia qr"`
	Comision        decimal.Decimal    `json:"comision"       validate:"min=0"`
	ClienteNombre   *string            `json:"cliente_nombre"`
	ClienteTelefono *string            `json:"cliente_telefono"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     *string         `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	Tipo           string              `json:"tipo"`
	PuntoDeVenta   int                 `json:"punto_de_venta"`
	Numero         int64               `json:"numero"`
	NumeroCompleto string              `json:"numero_completo"`
	Items          []ItemVentaResponse `json:"items"`
	Monto          decimal.Decimal     `json:"monto"`
	MetodoPago     string              `json:"metodo_pago"`
	Comision       decimal.Decimal     `json:"comision"`
	Estado         string              `json:"estado"`
	ClienteNombre  *string             `json:"cliente_nombre"`
	CreatedAt      string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
