package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
)

// Audit enregistre qui a fait quoi : une ligne structurée dans les logs et une
// ligne en base. Chaque événement porte un uuid pour corréler les deux.
type Audit struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewAudit(db *gorm.DB, log *logrus.Logger) *Audit {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Audit{DB: db, Log: log}
}

// Record persiste un événement d'audit. Une erreur d'écriture en base est
// loggée mais ne fait pas échouer l'opération métier déjà commise.
func (a *Audit) Record(acteur, entityType string, entityID uint, action, oldValue, newValue string) {
	entry := models.AuditLog{
		EventID:    uuid.NewString(),
		Acteur:     acteur,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	a.Log.WithFields(logrus.Fields{
		"event_id":    entry.EventID,
		"acteur":      acteur,
		"entity_type": entityType,
		"entity_id":   entityID,
		"action":      action,
		"old":         oldValue,
		"new":         newValue,
	}).Info("audit")
	if a.DB != nil {
		if err := a.DB.Create(&entry).Error; err != nil {
			a.Log.WithError(err).Warn("audit: écriture en base échouée")
		}
	}
}
