package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session states.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// SesionCaja is the per-calendar-day drawer record of one comercio.
// At most one row exists per (comercio_id, fecha); the fecha is immutable.
// Estado cycles abierta → cerrada → abierta (reapertura de emergencia).
type SesionCaja struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComercioID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sesion_comercio_fecha"`
	// Fecha is the calendar-day key, always YYYY-MM-DD
	Fecha           string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_sesion_comercio_fecha"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	InicialEfectivo decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	InicialDigital  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Finals and Diferencia are null until the session is closed
	FinalEfectivo *decimal.Decimal `gorm:"type:decimal(12,2)"`
	FinalDigital  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observaciones *string
	ClosedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SesionCaja) TableName() string { return "sesiones_caja" }
