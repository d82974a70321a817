package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
	"github.com/mverdier64/garage-app/internal/validation"
)

// ClientService porte le cycle de vie des clients : numérotation à la
// création, unicité de l'email, suppression gardée par l'intégrité
// référentielle.
type ClientService struct {
	DB    *gorm.DB
	Seq   *SequenceService
	Audit *Audit
}

func NewClientService(db *gorm.DB, seq *SequenceService, audit *Audit) *ClientService {
	return &ClientService{DB: db, Seq: seq, Audit: audit}
}

type ClientInput struct {
	Nom              string
	Prenom           string
	Email            string
	Telephone        string
	Adresse          string
	CodePostal       string
	Ville            string
	TypeClient       models.TypeClient
	ContactPrincipal string
	ContactTelephone string
	Notes            string
}

func (in *ClientInput) validate() error {
	v := make(validation.Violations)
	validation.Required("nom", in.Nom, v)
	validation.Required("email", in.Email, v)
	if in.TypeClient == "" {
		in.TypeClient = models.TypeClientNormal
	}
	validation.OneOf("type_client", string(in.TypeClient), []string{string(models.TypeClientNormal), string(models.TypeClientGrandCompte)}, v)
	if !v.Empty() {
		return newValidationError(v)
	}
	return nil
}

// Create assigne le numéro client (immuable ensuite) et persiste.
func (s *ClientService) Create(in ClientInput, acteur string) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	var count int64
	if err := s.DB.Model(&models.Client{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailDejaUtilise
	}

	client := models.Client{
		Nom: in.Nom, Prenom: in.Prenom, Email: email,
		Telephone: in.Telephone, Adresse: in.Adresse, CodePostal: in.CodePostal, Ville: in.Ville,
		TypeClient: in.TypeClient, Notes: in.Notes,
		ContactPrincipal: in.ContactPrincipal, ContactTelephone: in.ContactTelephone,
	}
	err := s.Seq.WithNumber(EntityClient, 0, func(numero string) error {
		client.NumeroClient = numero
		return s.DB.Create(&client).Error
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Client", client.ID, "create", "", client.NumeroClient)
	return &client, nil
}

func (s *ClientService) Get(id uint) (*models.Client, error) {
	var client models.Client
	if err := s.DB.Preload("Vehicules").First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Client", ID: id}
		}
		return nil, err
	}
	return &client, nil
}

// List renvoie une page de clients, filtrée sur nom/email si q est fourni.
func (s *ClientService) List(q string, page, limit int) ([]models.Client, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	dbq := s.DB.Model(&models.Client{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(nom) LIKE ? OR lower(email) LIKE ?", like, like)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var clients []models.Client
	if err := dbq.Order("nom").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// Update modifie les coordonnées ; NumeroClient n'est jamais touché.
func (s *ClientService) Update(id uint, in ClientInput, acteur string) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	client, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != client.Email {
		var count int64
		if err := s.DB.Model(&models.Client{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrEmailDejaUtilise
		}
	}
	client.Nom = in.Nom
	client.Prenom = in.Prenom
	client.Email = email
	client.Telephone = in.Telephone
	client.Adresse = in.Adresse
	client.CodePostal = in.CodePostal
	client.Ville = in.Ville
	client.TypeClient = in.TypeClient
	client.ContactPrincipal = in.ContactPrincipal
	client.ContactTelephone = in.ContactTelephone
	client.Notes = in.Notes
	if err := s.DB.Save(client).Error; err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Client", client.ID, "update", "", "")
	return client, nil
}

// Delete refuse la suppression tant que le client possède des véhicules,
// devis, ODR ou factures. Pas de cascade.
func (s *ClientService) Delete(id uint, acteur string) error {
	client, err := s.Get(id)
	if err != nil {
		return err
	}
	checks := []struct {
		model      interface{}
		column     string
		dependents string
	}{
		{&models.Vehicule{}, "client_id", "vehicules"},
		{&models.Devis{}, "client_id", "devis"},
		{&models.OrdreReparation{}, "client_id", "ordres_reparation"},
		{&models.Facture{}, "client_id", "factures"},
	}
	for _, c := range checks {
		var count int64
		if err := s.DB.Model(c.model).Where(c.column+" = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ReferentialIntegrityError{Entity: "Client", ID: id, Dependents: c.dependents, Count: count}
		}
	}
	if err := s.DB.Delete(&models.Client{}, id).Error; err != nil {
		return err
	}
	s.Audit.Record(acteur, "Client", id, "delete", client.NumeroClient, "")
	return nil
}
