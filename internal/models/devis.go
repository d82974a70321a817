package models

import "time"

// StatutDevis suit le devis de sa rédaction à son issue.
type StatutDevis string

const (
	DevisBrouillon StatutDevis = "BROUILLON"
	DevisEnvoye    StatutDevis = "ENVOYE"
	DevisAccepte   StatutDevis = "ACCEPTE"
	DevisRefuse    StatutDevis = "REFUSE"
	DevisExpire    StatutDevis = "EXPIRE"
)

// Devis (quote) models
type Devis struct {
	ID           uint         `gorm:"primaryKey"`
	Numero       string       `gorm:"size:20;uniqueIndex;not null"` // ex: DEV-2024-003
	ClientID     uint         `gorm:"not null;index"`
	Client       Client       `gorm:"foreignKey:ClientID"`
	VehiculeID   uint         `gorm:"not null;index"`
	Vehicule     Vehicule     `gorm:"foreignKey:VehiculeID"`
	Statut       StatutDevis  `gorm:"size:16;not null;default:'BROUILLON'"`
	Lignes       []LigneDevis `gorm:"foreignKey:DevisID"`
	TotalHT      float64
	MontantTVA   float64
	TotalTTC     float64
	TauxTVA      float64 // taux appliqué au moment du calcul, ex: 0.20
	DateValidite time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName évite le pluriel automatique, incorrect sur un nom français.
func (Devis) TableName() string { return "devis" }

type LigneDevis struct {
	ID              uint    `gorm:"primaryKey"`
	DevisID         uint    `gorm:"not null;index"`
	PrestationID    *uint   `gorm:"index"` // référence catalogue optionnelle
	Designation     string  `gorm:"not null"`
	PrixUnitaireTTC float64 `gorm:"not null"`
	Quantite        int     `gorm:"not null"`
	TotalTTC        float64 // PrixUnitaireTTC * Quantite, arrondi au centime
	Position        int     // ordre d'affichage
}

func (LigneDevis) TableName() string { return "lignes_devis" }
