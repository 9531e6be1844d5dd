package caja

import (
	"github.com/shopspring/decimal"

	"github.com/facturadom/gestion-api/internal/domain/entity"
)

// Balance re-reproduce el libro de una sesión en orden de inserción y devuelve
// el balance esperado del sistema: la suma con signo de todos los movimientos
// (la apertura incluida). Es la única fuente de verdad del monto de cierre;
// el balance corrido de la sesión debe coincidir siempre con este cálculo.
func Balance(movs []*entity.CashMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movs {
		total = total.Add(m.Amount)
	}
	return total
}

// Discrepancy calcula el descuadre de un arqueo: declarado - esperado.
// Negativo = faltante en caja; positivo = sobrante.
func Discrepancy(declared, system decimal.Decimal) decimal.Decimal {
	return declared.Sub(system)
}

// Clasificación del descuadre relativa al monto esperado.
const (
	DescuadreNormal      = "normal"      // hasta 1% del esperado
	DescuadreAdvertencia = "advertencia" // hasta 5%
	DescuadreCritico     = "critico"     // más de 5%
)

var (
	umbralAdvertencia = decimal.NewFromFloat(0.01)
	umbralCritico     = decimal.NewFromFloat(0.05)
)

// ClassifyDiscrepancy clasifica el descuadre según su magnitud relativa al
// monto esperado. Con esperado cero, cualquier descuadre distinto de cero es crítico.
func ClassifyDiscrepancy(discrepancy, system decimal.Decimal) string {
	if discrepancy.IsZero() {
		return DescuadreNormal
	}
	if system.IsZero() {
		return DescuadreCritico
	}
	pct := discrepancy.Abs().Div(system.Abs())
	switch {
	case pct.LessThanOrEqual(umbralAdvertencia):
		return DescuadreNormal
	case pct.LessThanOrEqual(umbralCritico):
		return DescuadreAdvertencia
	default:
		return DescuadreCritico
	}
}
