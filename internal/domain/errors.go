package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Las cuatro categorías base (ErrInvalidInput, ErrForbidden, ErrNotFound, ErrConflict) son las que
// la capa HTTP usa para decidir el código de respuesta; los errores específicos las envuelven.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrRateLimited        = errors.New("demasiadas solicitudes")
	ErrUserNotFound       = fmt.Errorf("usuario no encontrado: %w", ErrNotFound)
	ErrCompanyNotFound    = fmt.Errorf("empresa no encontrada: %w", ErrNotFound)
	ErrModuleNotFound     = fmt.Errorf("módulo no encontrado: %w", ErrNotFound)
	ErrInvitationNotFound = fmt.Errorf("invitación no encontrada: %w", ErrNotFound)
	ErrEmailAlreadyExists = fmt.Errorf("el email ya está registrado: %w", ErrConflict)
	ErrCrossCompany       = fmt.Errorf("operación sobre otra empresa: %w", ErrForbidden)
	ErrRoleNotAssignable  = fmt.Errorf("rol fuera de la jerarquía del actor: %w", ErrForbidden)
)

// ValidationError describe un campo rechazado. Envuelve ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un error de validación para el campo indicado.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// StateConflictError informa que un recurso no admite la operación en su estado actual.
// State lleva el estado vigente (p. ej. "accepted", "expired") para devolverlo al llamador.
type StateConflictError struct {
	Resource string
	State    string
}

// NewStateConflict construye el error de conflicto con el estado actual del recurso.
func NewStateConflict(resource, state string) *StateConflictError {
	return &StateConflictError{Resource: resource, State: state}
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s en estado %q", e.Resource, e.State)
}

func (e *StateConflictError) Unwrap() error { return ErrConflict }
