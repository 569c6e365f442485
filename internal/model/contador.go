package model

import (
	"time"

	"github.com/google/uuid"
)

// ContadorDocumento is the monotonic number source for one
// (comercio, tipo de documento, punto de venta) key.
// Actual only ever grows; it is bumped inside the same transaction that
// creates the Venta, so an aborted sale never consumes a number.
type ContadorDocumento struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComercioID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contador_clave,priority:1"`
	Tipo         string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_contador_clave,priority:2"`
	PuntoDeVenta int       `gorm:"not null;uniqueIndex:idx_contador_clave,priority:3"`
	Actual       int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ContadorDocumento) TableName() string { return "contadores_documento" }
