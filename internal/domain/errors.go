package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUnknownProduct    = errors.New("producto desconocido")
	ErrInvalidDirection  = errors.New("dirección de movimiento inválida")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrWouldGoNegative   = errors.New("el saldo quedaría negativo")
	ErrStoreUnavailable  = errors.New("almacén de datos no disponible")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
)
