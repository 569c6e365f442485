package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Report generation states for a cierre snapshot.
const (
	ReportePendiente = "pendiente"
	ReporteGenerado  = "generado"
	ReporteError     = "error"
)

// CierreCaja is the write-once snapshot appended on every session close.
// It freezes the full computed breakdown at that moment: a later reapertura
// and re-close appends a NEW snapshot instead of touching this one.
// Only the reporte_* columns change after insert (async PDF generation).
type CierreCaja struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComercioID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Fecha        string    `gorm:"type:varchar(10);not null"`

	InicialEfectivo decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	InicialDigital  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVentas     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalComisiones decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalGastos     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalIngresos   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Teorico         decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	DeclaradoEfectivo decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DeclaradoDigital  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Diferencia = declarado − teorico (negative = faltante, positive = sobrante)
	Diferencia decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Observaciones *string
	ReportePath   *string `gorm:"column:reporte_path"`
	ReporteEstado string  `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// Retry fields used by the report retry cron
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
}

func (CierreCaja) TableName() string { return "cierres_caja" }
