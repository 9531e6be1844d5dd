package ncf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/facturadom/gestion-api/internal/domain/entity"
)

// Serie de comprobantes en papel/POS autorizada por la DGII.
const Serie = "B"

// MinWidth ancho mínimo del secuencial: las series clásicas de la DGII usan 8 dígitos.
const MinWidth = 8

// Width devuelve el ancho de cero-padding del secuencial para un rango:
// la cantidad de dígitos de rangeEnd, nunca menos de MinWidth.
func Width(rangeEnd int64) int {
	w := len(strconv.FormatInt(rangeEnd, 10))
	if w < MinWidth {
		return MinWidth
	}
	return w
}

// Format construye el NCF completo: serie + tipo de comprobante + secuencial
// con cero-padding al ancho del rango. Ej: Format("02", 1305, 99999999) →
// "B0200001305".
func Format(ncfType string, value, rangeEnd int64) (string, error) {
	if !entity.ValidNCFType(ncfType) {
		return "", fmt.Errorf("ncf: tipo de comprobante desconocido %q", ncfType)
	}
	if value <= 0 {
		return "", fmt.Errorf("ncf: secuencial inválido %d", value)
	}
	return fmt.Sprintf("%s%s%0*d", Serie, ncfType, Width(rangeEnd), value), nil
}

// Parse descompone un NCF formateado en tipo y secuencial. Acepta cualquier
// ancho de padding >= MinWidth.
func Parse(formatted string) (ncfType string, value int64, err error) {
	if len(formatted) < 1+2+MinWidth || !strings.HasPrefix(formatted, Serie) {
		return "", 0, fmt.Errorf("ncf: formato inválido %q", formatted)
	}
	ncfType = formatted[1:3]
	if !entity.ValidNCFType(ncfType) {
		return "", 0, fmt.Errorf("ncf: tipo de comprobante desconocido en %q", formatted)
	}
	value, err = strconv.ParseInt(formatted[3:], 10, 64)
	if err != nil || value <= 0 {
		return "", 0, fmt.Errorf("ncf: secuencial inválido en %q", formatted)
	}
	return ncfType, value, nil
}
