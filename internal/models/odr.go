package models

import "time"

// StatutODR suit l'ordre de réparation.
type StatutODR string

const (
	ODREnCours StatutODR = "EN_COURS"
	ODRTermine StatutODR = "TERMINE"
	ODRAnnule  StatutODR = "ANNULE"
)

// OrdreReparation représente les travaux en cours sur un véhicule.
// Même forme qu'un devis, mais le montant suivi est le total TTC.
type OrdreReparation struct {
	ID           uint       `gorm:"primaryKey"`
	Numero       string     `gorm:"size:20;uniqueIndex;not null"` // ex: ODR-2024-012
	ClientID     uint       `gorm:"not null;index"`
	Client       Client     `gorm:"foreignKey:ClientID"`
	VehiculeID   uint       `gorm:"not null;index"`
	Vehicule     Vehicule   `gorm:"foreignKey:VehiculeID"`
	DevisID      *uint      `gorm:"index"` // renseigné quand l'ODR vient d'un devis accepté
	Statut       StatutODR  `gorm:"size:16;not null;default:'EN_COURS'"`
	Lignes       []LigneODR `gorm:"foreignKey:OdrID"`
	MontantTotal float64    // TTC, recalculé à chaque modification des lignes
	TauxTVA      float64
	DateDebut    time.Time
	DateFin      *time.Time // renseignée au passage TERMINE
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OrdreReparation) TableName() string { return "ordres_reparation" }

type LigneODR struct {
	ID              uint    `gorm:"primaryKey"`
	OdrID           uint    `gorm:"not null;index"`
	PrestationID    *uint   `gorm:"index"`
	Designation     string  `gorm:"not null"`
	PrixUnitaireTTC float64 `gorm:"not null"`
	Quantite        int     `gorm:"not null"`
	TotalTTC        float64
	Position        int
}

func (LigneODR) TableName() string { return "lignes_odr" }
