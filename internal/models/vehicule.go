package models

import "time"

// Vehicule appartient à exactement un Client. Pas de suppression en cascade :
// la suppression du client est bloquée tant que des véhicules existent.
type Vehicule struct {
	ID              uint   `gorm:"primaryKey"`
	ClientID        uint   `gorm:"not null;index"`
	Client          Client `gorm:"foreignKey:ClientID"`
	Immatriculation string `gorm:"size:16;uniqueIndex;not null"` // plaque
	Marque          string `gorm:"not null"`
	Modele          string `gorm:"not null"`
	Annee           int
	VIN             string `gorm:"size:17;index"`
	Kilometrage     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
