package db

import (
	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
)

// Seed installe un catalogue de prestations de base (idempotent).
func Seed(db *gorm.DB) {
	basePrestations := []models.Prestation{
		{Nom: "Diagnostic électronique", TypeService: models.TypeServiceMecanique, PrixTTC: 60, Actif: true},
		{Nom: "Vidange + filtre à huile", TypeService: models.TypeServiceMecanique, PrixTTC: 120, Actif: true},
		{Nom: "Plaquettes de frein avant", TypeService: models.TypeServiceMecanique, PrixTTC: 150, Actif: true},
		{Nom: "Redressage aile avant", TypeService: models.TypeServiceCarrosserie, PrixTTC: 280, Actif: true},
		{Nom: "Peinture élément", TypeService: models.TypeServiceCarrosserie, PrixTTC: 350, Actif: true},
		{Nom: "Remplacement pare-brise", TypeService: models.TypeServiceCarrosserie, PrixTTC: 420, Actif: true},
	}
	for _, p := range basePrestations {
		var existing models.Prestation
		if err := db.Where("nom = ?", p.Nom).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&p)
		}
	}
}
