package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
	"github.com/mverdier64/garage-app/internal/validation"
)

type PrestationService struct {
	DB    *gorm.DB
	Audit *Audit
}

func NewPrestationService(db *gorm.DB, audit *Audit) *PrestationService {
	return &PrestationService{DB: db, Audit: audit}
}

type PrestationInput struct {
	Nom         string
	Description string
	TypeService models.TypeService
	PrixTTC     float64
	Actif       *bool
}

func (in PrestationInput) validate() error {
	v := make(validation.Violations)
	validation.Required("nom", in.Nom, v)
	validation.OneOf("type_service", string(in.TypeService), []string{string(models.TypeServiceCarrosserie), string(models.TypeServiceMecanique)}, v)
	validation.NonNegativeFloat("prix_ttc", in.PrixTTC, v)
	if !v.Empty() {
		return newValidationError(v)
	}
	return nil
}

func (s *PrestationService) Create(in PrestationInput, acteur string) (*models.Prestation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	actif := true
	if in.Actif != nil {
		actif = *in.Actif
	}
	prestation := models.Prestation{
		Nom: in.Nom, Description: in.Description,
		TypeService: in.TypeService, PrixTTC: in.PrixTTC, Actif: actif,
	}
	if err := s.DB.Create(&prestation).Error; err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Prestation", prestation.ID, "create", "", prestation.Nom)
	return &prestation, nil
}

func (s *PrestationService) Get(id uint) (*models.Prestation, error) {
	var prestation models.Prestation
	if err := s.DB.First(&prestation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Prestation", ID: id}
		}
		return nil, err
	}
	return &prestation, nil
}

// List renvoie le catalogue, filtré par type de service si fourni, actifs
// d'abord.
func (s *PrestationService) List(typeService models.TypeService, page, limit int) ([]models.Prestation, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	dbq := s.DB.Model(&models.Prestation{})
	if typeService != "" {
		dbq = dbq.Where("type_service = ?", typeService)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var prestations []models.Prestation
	if err := dbq.Order("actif desc, nom").Limit(limit).Offset((page - 1) * limit).Find(&prestations).Error; err != nil {
		return nil, 0, err
	}
	return prestations, total, nil
}

func (s *PrestationService) Update(id uint, in PrestationInput, acteur string) (*models.Prestation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	prestation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	prestation.Nom = in.Nom
	prestation.Description = in.Description
	prestation.TypeService = in.TypeService
	prestation.PrixTTC = in.PrixTTC
	if in.Actif != nil {
		prestation.Actif = *in.Actif
	}
	if err := s.DB.Save(prestation).Error; err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Prestation", id, "update", "", "")
	return prestation, nil
}

// Delete refuse la suppression dès qu'une ligne de devis ou d'ODR référence la
// prestation ; la retirer du catalogue passe par Actif=false.
func (s *PrestationService) Delete(id uint, acteur string) error {
	prestation, err := s.Get(id)
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.Model(&models.LigneDevis{}).Where("prestation_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialIntegrityError{Entity: "Prestation", ID: id, Dependents: "lignes_devis", Count: count}
	}
	if err := s.DB.Model(&models.LigneODR{}).Where("prestation_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialIntegrityError{Entity: "Prestation", ID: id, Dependents: "lignes_odr", Count: count}
	}
	if err := s.DB.Delete(&models.Prestation{}, id).Error; err != nil {
		return err
	}
	s.Audit.Record(acteur, "Prestation", id, "delete", prestation.Nom, "")
	return nil
}
