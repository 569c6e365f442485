package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the minimal catalog row the stock ledger operates on.
// Catalog management lives in another system; this core only needs the
// authoritative stock count and enough data to seed demo environments.
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ComercioID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"comercio_id"`
	CodigoBarras string          `gorm:"uniqueIndex;not null" json:"codigo_barras"`
	Nombre       string          `gorm:"index;not null" json:"nombre"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"precio_venta"`
	StockActual  int             `gorm:"not null;default:0" json:"stock_actual"`
	Activo       bool            `gorm:"not null;default:true" json:"activo"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Producto) TableName() string { return "productos" }
