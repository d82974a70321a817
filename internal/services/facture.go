package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
	"github.com/mverdier64/garage-app/internal/validation"
)

// FactureService porte l'émission des factures, la sous-machine de paiement
// et les alertes d'échéance.
type FactureService struct {
	DB                  *gorm.DB
	Seq                 *SequenceService
	Audit               *Audit
	TauxTVA             float64
	DelaiPaiementJours  int
	DelaiAlerteEcheance int
	Now                 func() time.Time
}

func NewFactureService(db *gorm.DB, seq *SequenceService, audit *Audit, tauxTVA float64, delaiPaiementJours, delaiAlerteEcheance int) *FactureService {
	return &FactureService{
		DB: db, Seq: seq, Audit: audit,
		TauxTVA:             tauxTVA,
		DelaiPaiementJours:  delaiPaiementJours,
		DelaiAlerteEcheance: delaiAlerteEcheance,
		Now:                 time.Now,
	}
}

type FactureInput struct {
	ClientID   uint
	MontantTTC float64
	// DateEcheance optionnelle ; échéance par défaut = émission + délai config.
	DateEcheance *time.Time
}

// Create émet une facture libre (hors ODR) : montants dérivés du TTC saisi.
func (s *FactureService) Create(in FactureInput, acteur string) (*models.Facture, error) {
	v := make(validation.Violations)
	validation.RequiredRef("client_id", in.ClientID, v)
	validation.NonNegativeFloat("montant_ttc", in.MontantTTC, v)
	if !v.Empty() {
		return nil, newValidationError(v)
	}
	var count int64
	if err := s.DB.Model(&models.Client{}).Where("id = ?", in.ClientID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &NotFoundError{Entity: "Client", ID: in.ClientID}
	}

	now := s.Now()
	echeance := now.AddDate(0, 0, s.DelaiPaiementJours)
	if in.DateEcheance != nil {
		echeance = *in.DateEcheance
	}
	totaux := SplitTTC(in.MontantTTC, s.TauxTVA)
	facture := models.Facture{
		ClientID:     in.ClientID,
		MontantHT:    totaux.TotalHT,
		MontantTVA:   totaux.MontantTVA,
		MontantTTC:   totaux.TotalTTC,
		TauxTVA:      s.TauxTVA,
		Statut:       models.FactureEnAttente,
		DateEmission: now,
		DateEcheance: echeance,
	}
	err := s.Seq.WithNumber(EntityFacture, now.Year(), func(numero string) error {
		facture.Numero = numero
		return s.DB.Create(&facture).Error
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Facture", facture.ID, "create", "", facture.Numero)
	return &facture, nil
}

func (s *FactureService) Get(id uint) (*models.Facture, error) {
	var facture models.Facture
	if err := s.DB.Preload("Client").First(&facture, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Facture", ID: id}
		}
		return nil, err
	}
	return &facture, nil
}

func (s *FactureService) List(statut models.StatutFacture, page, limit int) ([]models.Facture, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	dbq := s.DB.Model(&models.Facture{})
	if statut != "" {
		dbq = dbq.Where("statut = ?", statut)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var factures []models.Facture
	if err := dbq.Order("id desc").Limit(limit).Offset((page - 1) * limit).Find(&factures).Error; err != nil {
		return nil, 0, err
	}
	return factures, total, nil
}

// transition applique la sous-machine de paiement et persiste statut et
// métadonnées de règlement d'un seul tenant.
func (s *FactureService) transition(id uint, target models.StatutFacture, p PaiementInfo, acteur string) (*models.Facture, error) {
	facture, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	old := facture.Statut
	if err := TransitionFacture(facture, target, p); err != nil {
		return nil, err
	}
	err = s.DB.Model(facture).Updates(map[string]interface{}{
		"statut":         facture.Statut,
		"mode_paiement":  facture.ModePaiement,
		"date_reglement": facture.DateReglement,
		"montant_regle":  facture.MontantRegle,
	}).Error
	if err != nil {
		return nil, err
	}
	action := "transition"
	if p.AnnulationApresReglement {
		action = "annulation_apres_reglement"
	}
	s.Audit.Record(acteur, "Facture", facture.ID, action, string(old), string(target))
	return facture, nil
}

// MarquerPayee solde la facture ; mode et date de règlement sont exigés
// ensemble par la machine à états.
func (s *FactureService) MarquerPayee(id uint, mode models.ModePaiement, dateReglement *time.Time, acteur string) (*models.Facture, error) {
	return s.transition(id, models.FacturePayee, PaiementInfo{Mode: mode, DateReglement: dateReglement}, acteur)
}

func (s *FactureService) MarquerPartiellementPayee(id uint, mode models.ModePaiement, dateReglement *time.Time, montant float64, acteur string) (*models.Facture, error) {
	return s.transition(id, models.FacturePartiellementPayee, PaiementInfo{Mode: mode, DateReglement: dateReglement, MontantRegle: montant}, acteur)
}

func (s *FactureService) MarquerImpayee(id uint, acteur string) (*models.Facture, error) {
	return s.transition(id, models.FactureImpayee, PaiementInfo{}, acteur)
}

func (s *FactureService) RemettreEnAttente(id uint, acteur string) (*models.Facture, error) {
	return s.transition(id, models.FactureEnAttente, PaiementInfo{}, acteur)
}

// Annuler annule la facture. Depuis PAYEE il faut poser apresReglement, la
// transition est alors auditée distinctement.
func (s *FactureService) Annuler(id uint, apresReglement bool, acteur string) (*models.Facture, error) {
	return s.transition(id, models.FactureAnnulee, PaiementInfo{AnnulationApresReglement: apresReglement}, acteur)
}

// Alertes charge les factures encore ouvertes et les passe à l'évaluateur pur.
func (s *FactureService) Alertes(now time.Time) (AlertesEcheance, error) {
	var factures []models.Facture
	err := s.DB.Where("statut IN ?", []models.StatutFacture{models.FactureEnAttente, models.FactureImpayee}).
		Find(&factures).Error
	if err != nil {
		return AlertesEcheance{}, err
	}
	return EvaluateEcheances(factures, now, s.DelaiAlerteEcheance), nil
}
