package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidPurpose    = errors.New("la unidad no admite ese propósito")
	ErrCreditBlocked     = errors.New("crédito bloqueado")
	ErrExceedsBalance    = errors.New("el abono excede el saldo de la nota")
	ErrHistoryLocked     = errors.New("el historial de la sucursal no se puede purgar")
)

// ValidationError describe un campo de entrada rechazado antes de cualquier efecto.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError indica qué producto dejaría el saldo en negativo (cantidades en unidad base).
type InsufficientStockError struct {
	BranchID  string
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %s (sucursal %s) disponible=%s solicitado=%s",
		ErrInsufficientStock, e.ProductID, e.BranchID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
