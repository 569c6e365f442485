package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document types.
const (
	TipoTicket      = "ticket"
	TipoPresupuesto = "presupuesto"
	TipoFacturaA    = "factura_a"
	TipoFacturaB    = "factura_b"
	TipoFacturaC    = "factura_c"
	TipoVentaRapida = "venta_rapida"
)

// Sale states.
const (
	VentaCompletada = "completada"
	VentaAnulada    = "anulada"
)

// Venta is a sale or quote. The numero is assigned exactly once at creation
// and never reused, not even after anulación. Rows are never hard-deleted.
type Venta struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComercioID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_venta_numero,priority:1"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo         string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_venta_numero,priority:2"`
	PuntoDeVenta int       `gorm:"not null;uniqueIndex:idx_venta_numero,priority:3"`
	Numero       int64     `gorm:"not null;uniqueIndex:idx_venta_numero,priority:4"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	// Comision is caller-supplied — which payment methods carry a fee is a
	// business rule that lives outside this core.
	Comision        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'completada'"`
	ClienteNombre   *string
	ClienteTelefono *string `gorm:"type:varchar(30)"`
	// CAE fields are reserved for fiscal integration; the core never sets them.
	CAE            *string    `gorm:"type:varchar(20);column:cae"`
	CAEVencimiento *time.Time `gorm:"column:cae_vencimiento"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// NumeroCompleto is the display identifier: register padded to 4 digits,
// number padded to 8.
func (v *Venta) NumeroCompleto() string {
	return fmt.Sprintf("%04d-%08d", v.PuntoDeVenta, v.Numero)
}

// VentaItem is an immutable line snapshot owned by exactly one Venta.
// NombreProducto and PrecioUnitario are frozen at sale time and never
// follow later catalog edits.
type VentaItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID `gorm:"type:uuid;not null;index"`
	// ProductoID is nullable: quick-sale lines have no catalog reference
	// and therefore no stock effect.
	ProductoID     *uuid.UUID `gorm:"type:uuid"`
	NombreProducto string     `gorm:"not null"`
	Cantidad       int        `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time
}

func (VentaItem) TableName() string { return "venta_items" }
