package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
	"github.com/mverdier64/garage-app/internal/validation"
)

type VehiculeService struct {
	DB    *gorm.DB
	Audit *Audit
}

func NewVehiculeService(db *gorm.DB, audit *Audit) *VehiculeService {
	return &VehiculeService{DB: db, Audit: audit}
}

type VehiculeInput struct {
	ClientID        uint
	Immatriculation string
	Marque          string
	Modele          string
	Annee           int
	VIN             string
	Kilometrage     int
}

func (in VehiculeInput) validate() error {
	v := make(validation.Violations)
	validation.RequiredRef("client_id", in.ClientID, v)
	validation.Required("immatriculation", in.Immatriculation, v)
	validation.Required("marque", in.Marque, v)
	validation.Required("modele", in.Modele, v)
	if !v.Empty() {
		return newValidationError(v)
	}
	return nil
}

func (s *VehiculeService) Create(in VehiculeInput, acteur string) (*models.Vehicule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var count int64
	if err := s.DB.Model(&models.Client{}).Where("id = ?", in.ClientID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &NotFoundError{Entity: "Client", ID: in.ClientID}
	}
	vehicule := models.Vehicule{
		ClientID: in.ClientID, Immatriculation: in.Immatriculation,
		Marque: in.Marque, Modele: in.Modele, Annee: in.Annee,
		VIN: in.VIN, Kilometrage: in.Kilometrage,
	}
	if err := s.DB.Create(&vehicule).Error; err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Vehicule", vehicule.ID, "create", "", vehicule.Immatriculation)
	return &vehicule, nil
}

func (s *VehiculeService) Get(id uint) (*models.Vehicule, error) {
	var vehicule models.Vehicule
	if err := s.DB.First(&vehicule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Vehicule", ID: id}
		}
		return nil, err
	}
	return &vehicule, nil
}

// List renvoie les véhicules, restreints à un client si clientID > 0.
func (s *VehiculeService) List(clientID uint, page, limit int) ([]models.Vehicule, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	dbq := s.DB.Model(&models.Vehicule{})
	if clientID > 0 {
		dbq = dbq.Where("client_id = ?", clientID)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vehicules []models.Vehicule
	if err := dbq.Order("immatriculation").Limit(limit).Offset((page - 1) * limit).Find(&vehicules).Error; err != nil {
		return nil, 0, err
	}
	return vehicules, total, nil
}

func (s *VehiculeService) Update(id uint, in VehiculeInput, acteur string) (*models.Vehicule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	vehicule, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	vehicule.Immatriculation = in.Immatriculation
	vehicule.Marque = in.Marque
	vehicule.Modele = in.Modele
	vehicule.Annee = in.Annee
	vehicule.VIN = in.VIN
	vehicule.Kilometrage = in.Kilometrage
	if err := s.DB.Save(vehicule).Error; err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Vehicule", id, "update", "", "")
	return vehicule, nil
}

// Delete refuse la suppression tant qu'un devis ou un ODR cite le véhicule.
func (s *VehiculeService) Delete(id uint, acteur string) error {
	vehicule, err := s.Get(id)
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.Model(&models.Devis{}).Where("vehicule_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialIntegrityError{Entity: "Vehicule", ID: id, Dependents: "devis", Count: count}
	}
	if err := s.DB.Model(&models.OrdreReparation{}).Where("vehicule_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialIntegrityError{Entity: "Vehicule", ID: id, Dependents: "ordres_reparation", Count: count}
	}
	if err := s.DB.Delete(&models.Vehicule{}, id).Error; err != nil {
		return err
	}
	s.Audit.Record(acteur, "Vehicule", id, "delete", vehicule.Immatriculation, "")
	return nil
}
