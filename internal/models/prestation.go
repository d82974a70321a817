package models

import "time"

// TypeService classe les prestations du catalogue.
type TypeService string

const (
	TypeServiceCarrosserie TypeService = "CARROSSERIE"
	TypeServiceMecanique   TypeService = "MECANIQUE"
)

// Prestation du catalogue (main d'oeuvre, pièces forfaitaires, etc.).
// La suppression est bloquée dès qu'une ligne de devis ou d'ODR la référence.
type Prestation struct {
	ID          uint        `gorm:"primaryKey"`
	Nom         string      `gorm:"not null;index"`
	Description string
	TypeService TypeService `gorm:"size:16;not null"`
	PrixTTC     float64     `gorm:"not null"` // prix de base TTC
	Actif       bool        `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
