package models

import "time"

// Audit logging
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	EventID    string `gorm:"size:36;uniqueIndex"` // uuid, corrèle avec les logs applicatifs
	Acteur     string `gorm:"not null;index"`      // qui a fait la modification
	EntityType string // ex: "Devis", "OrdreReparation", "Facture"
	EntityID   uint   // ID de l'entité modifiée
	Action     string // ex: "transition", "create", "delete"
	OldValue   string // ancienne valeur (optionnel)
	NewValue   string // nouvelle valeur (optionnel)
	CreatedAt  time.Time
}
