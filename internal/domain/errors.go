package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los handlers HTTP los mapean a códigos de estado; los casos de uso solo los retornan.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Secuencias fiscales (NCF)
	ErrNoActiveSequence  = errors.New("no hay secuencia fiscal activa para ese tipo de comprobante")
	ErrSequenceExhausted = errors.New("secuencia fiscal agotada: se alcanzó el fin del rango autorizado")
	ErrSequenceOverlap   = errors.New("el rango se solapa con una secuencia existente")

	// Sesiones de caja
	ErrSessionAlreadyOpen = errors.New("la caja ya tiene una sesión abierta")
	ErrSessionNotOpen     = errors.New("la sesión de caja no está abierta")
	ErrSessionNotClosed   = errors.New("la sesión de caja no está cerrada")

	// ErrContention: no se pudo tomar el bloqueo de fila dentro del presupuesto
	// de lock_timeout. Es seguro que el caller reintente la operación completa.
	ErrContention = errors.New("contención sobre el recurso, reintente la operación")
)
