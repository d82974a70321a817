package models

import "time"

// TypeClient distingue les clients particuliers des grands comptes.
type TypeClient string

const (
	TypeClientNormal      TypeClient = "NORMAL"
	TypeClientGrandCompte TypeClient = "GRAND_COMPTE"
)

// Client entity
type Client struct {
	ID           uint       `gorm:"primaryKey"`
	NumeroClient string     `gorm:"size:16;uniqueIndex;not null"` // ex: CLI-001, assigné à la création, immuable
	Nom          string     `gorm:"not null;index"`
	Prenom       string     `gorm:"index"`
	Email        string     `gorm:"uniqueIndex;not null"`
	Telephone    string
	Adresse      string
	CodePostal   string
	Ville        string
	TypeClient   TypeClient `gorm:"size:16;not null;default:'NORMAL'"`
	// Interlocuteurs dédiés pour les grands comptes
	ContactPrincipal string
	ContactTelephone string
	Notes            string
	Vehicules        []Vehicule `gorm:"foreignKey:ClientID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
