package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrStaleState          = errors.New("la operación no corresponde al estado actual")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación completa")
)

// ValidationError entrada malformada o fuera de rango. No hubo mutación.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Shortfall describe una línea sin stock suficiente.
// LotID solo se informa cuando se pidió un lote específico.
type Shortfall struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name,omitempty"`
	LotID     string          `json:"lot_id,omitempty"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
}

// Missing cantidad que falta para cubrir Required.
func (s Shortfall) Missing() decimal.Decimal {
	return s.Required.Sub(s.Available)
}

// InsufficientStockError enumera todas las líneas cortas de una operación.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		label := s.ItemID
		if s.Name != "" {
			label = fmt.Sprintf("%s (%s)", s.Name, s.ItemID)
		}
		if s.LotID != "" {
			label += " lote " + s.LotID
		}
		parts = append(parts, fmt.Sprintf("%s: requerido %s, disponible %s, faltan %s",
			label, s.Required.String(), s.Available.String(), s.Missing().String()))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StaleStateError la operación se intentó desde una etapa o estado inesperado.
type StaleStateError struct {
	Entity   string
	ID       string
	Current  string
	Expected string
}

func (e *StaleStateError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%s %s: operación no permitida en estado %s", e.Entity, e.ID, e.Current)
	}
	return fmt.Sprintf("%s %s: estado actual %s, se esperaba %s", e.Entity, e.ID, e.Current, e.Expected)
}

func (e *StaleStateError) Unwrap() error { return ErrStaleState }

// NotFoundError referencia a una entidad inexistente.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}
