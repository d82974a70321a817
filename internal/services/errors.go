package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mverdier64/garage-app/internal/validation"
)

// Sentinel errors for state-machine violations and numbering exhaustion.
// The API layer maps them to HTTP codes; the engine only discriminates them.
var (
	ErrInvalidTransition     = errors.New("transition_invalide")
	ErrIncompletePaymentInfo = errors.New("informations_paiement_incompletes")
	ErrImmutableDocument     = errors.New("document_immuable")
	ErrNumberingConflict     = errors.New("conflit_numerotation")
	ErrEmailDejaUtilise      = errors.New("email_deja_utilise")
)

// ValidationError carries field-level violations collected before any
// computation runs. Recoverable by the caller correcting its input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for field, code := range e.Violations {
		parts = append(parts, field+": "+code)
	}
	return "validation: " + strings.Join(parts, ", ")
}

// NotFoundError identifies a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d introuvable", e.Entity, e.ID)
}

// ReferentialIntegrityError blocks a deletion while dependent records exist.
type ReferentialIntegrityError struct {
	Entity     string
	ID         uint
	Dependents string // ex: "vehicules", "lignes_devis"
	Count      int64
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("suppression %s %d refusée: %d %s référencé(s)", e.Entity, e.ID, e.Count, e.Dependents)
}

// TransitionError wraps a sentinel with the attempted from/to pair so callers
// can log the exact refused move.
type TransitionError struct {
	Entity string
	From   string
	To     string
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %v", e.Entity, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

func newValidationError(v validation.Violations) error {
	return &ValidationError{Violations: v}
}
