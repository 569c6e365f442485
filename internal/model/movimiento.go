package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto is an expense charged against an open session. Gastos are mutable
// only while the owning session is abierta.
type Gasto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComercioID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Descripcion  string          `gorm:"not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Categoria    string          `gorm:"type:varchar(30);not null;default:'general'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Gasto) TableName() string { return "gastos" }

// IngresoExtra is money entering the drawer outside of sales (e.g. change
// funds, owner deposits). Same open-session gate as Gasto.
type IngresoExtra struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComercioID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Descripcion  string          `gorm:"not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tipo         string          `gorm:"type:varchar(30);not null;default:'otro'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (IngresoExtra) TableName() string { return "ingresos_extra" }
