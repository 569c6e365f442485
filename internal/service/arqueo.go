package service

// arqueo.go — theoretical drawer balance computation.
// Pure functions over a session's recorded rows; no queries, no side effects.

import (
	"almapos/internal/model"

	"github.com/shopspring/decimal"
)

// TotalesArqueo is the breakdown behind a theoretical total.
type TotalesArqueo struct {
	TotalVentas     decimal.Decimal
	TotalComisiones decimal.Decimal
	TotalGastos     decimal.Decimal
	TotalIngresos   decimal.Decimal
	Teorico         decimal.Decimal
}

// CalcularTeorico derives the expected drawer balance:
//
//	teorico = (inicialEfectivo + inicialDigital + Σ ingresos)
//	        + (Σ ventas − Σ comisiones)
//	        − Σ gastos
//
// Ventas anuladas are excluded from both the gross sum and the fee sum.
// Presupuestos never move money and are excluded as well.
func CalcularTeorico(inicialEfectivo, inicialDigital decimal.Decimal, ventas []model.Venta, gastos []model.Gasto, ingresos []model.IngresoExtra) TotalesArqueo {
	t := TotalesArqueo{
		TotalVentas:     decimal.Zero,
		TotalComisiones: decimal.Zero,
		TotalGastos:     decimal.Zero,
		TotalIngresos:   decimal.Zero,
	}

	for _, v := range ventas {
		if v.Estado != model.VentaCompletada || v.Tipo == model.TipoPresupuesto {
			continue
		}
		t.TotalVentas = t.TotalVentas.Add(v.Monto)
		t.TotalComisiones = t.TotalComisiones.Add(v.Comision)
	}
	for _, g := range gastos {
		t.TotalGastos = t.TotalGastos.Add(g.Monto)
	}
	for _, i := range ingresos {
		t.TotalIngresos = t.TotalIngresos.Add(i.Monto)
	}

	t.Teorico = inicialEfectivo.Add(inicialDigital).
		Add(t.TotalIngresos).
		Add(t.TotalVentas).Sub(t.TotalComisiones).
		Sub(t.TotalGastos)
	return t
}

// CalcularDiferencia compares the manually counted total against the
// theoretical one: zero = balanced, negative = faltante, positive = sobrante.
func CalcularDiferencia(declarado, teorico decimal.Decimal) decimal.Decimal {
	return declarado.Sub(teorico)
}
