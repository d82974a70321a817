package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
)

// EntityType scopes document numbering.
type EntityType string

const (
	EntityClient  EntityType = "CLIENT"
	EntityDevis   EntityType = "DEVIS"
	EntityODR     EntityType = "ODR"
	EntityFacture EntityType = "FACTURE"
)

const maxNumberingAttempts = 3

// SequenceService produit les numéros lisibles des documents (CLI-001,
// DEV-2024-003, ...). La fenêtre lecture-du-compte -> insertion est sérialisée
// par type d'entité via un mutex, et les colonnes Numero portent un index
// unique : en cas de doublon malgré tout (plusieurs instances), on retente.
type SequenceService struct {
	DB *gorm.DB

	mu      sync.Mutex
	perType map[EntityType]*sync.Mutex
}

func NewSequenceService(db *gorm.DB) *SequenceService {
	return &SequenceService{DB: db, perType: make(map[EntityType]*sync.Mutex)}
}

func (s *SequenceService) mutexFor(t EntityType) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.perType[t]
	if !ok {
		m = &sync.Mutex{}
		s.perType[t] = m
	}
	return m
}

// Next computes the next number for the given type. CLIENT numbers are global
// (CLI-%03d); the document types reset each year ({PREFIX}-{year}-%03d).
// Callers that persist the number should go through WithNumber instead, which
// adds the serialization and retry the raw count lacks.
func (s *SequenceService) Next(t EntityType, year int) (string, error) {
	count, err := s.countExisting(t, year)
	if err != nil {
		return "", err
	}
	return formatNumero(t, year, count+1), nil
}

// WithNumber generates a number and hands it to create, retrying with a fresh
// number when create fails on the unique index. After maxNumberingAttempts
// duplicates it gives up with ErrNumberingConflict.
func (s *SequenceService) WithNumber(t EntityType, year int, create func(numero string) error) error {
	m := s.mutexFor(t)
	m.Lock()
	defer m.Unlock()

	for attempt := 0; attempt < maxNumberingAttempts; attempt++ {
		numero, err := s.Next(t, year)
		if err != nil {
			return err
		}
		err = create(numero)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
	}
	return ErrNumberingConflict
}

func (s *SequenceService) countExisting(t EntityType, year int) (int64, error) {
	var count int64
	var err error
	switch t {
	case EntityClient:
		err = s.DB.Model(&models.Client{}).Count(&count).Error
	case EntityDevis:
		err = s.DB.Model(&models.Devis{}).Where("numero LIKE ?", fmt.Sprintf("DEV-%d-%%", year)).Count(&count).Error
	case EntityODR:
		err = s.DB.Model(&models.OrdreReparation{}).Where("numero LIKE ?", fmt.Sprintf("ODR-%d-%%", year)).Count(&count).Error
	case EntityFacture:
		err = s.DB.Model(&models.Facture{}).Where("numero LIKE ?", fmt.Sprintf("FAC-%d-%%", year)).Count(&count).Error
	default:
		return 0, fmt.Errorf("type d'entité inconnu: %s", t)
	}
	return count, err
}

func formatNumero(t EntityType, year int, seq int64) string {
	switch t {
	case EntityClient:
		return fmt.Sprintf("CLI-%03d", seq)
	case EntityDevis:
		return fmt.Sprintf("DEV-%d-%03d", year, seq)
	case EntityODR:
		return fmt.Sprintf("ODR-%d-%03d", year, seq)
	case EntityFacture:
		return fmt.Sprintf("FAC-%d-%03d", year, seq)
	}
	return ""
}

// isUniqueViolation matches both the gorm translated error and the raw driver
// messages (sqlite and postgres word it differently).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
