package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
	"github.com/mverdier64/garage-app/internal/validation"
)

// ODRService porte le cycle de vie des ordres de réparation et la génération
// de facture depuis un ODR terminé.
type ODRService struct {
	DB                 *gorm.DB
	Seq                *SequenceService
	Audit              *Audit
	TauxTVA            float64
	DelaiPaiementJours int
	Now                func() time.Time
}

func NewODRService(db *gorm.DB, seq *SequenceService, audit *Audit, tauxTVA float64, delaiPaiementJours int) *ODRService {
	return &ODRService{DB: db, Seq: seq, Audit: audit, TauxTVA: tauxTVA, DelaiPaiementJours: delaiPaiementJours, Now: time.Now}
}

type ODRInput struct {
	ClientID   uint
	VehiculeID uint
	Lignes     []LigneInput
}

func (s *ODRService) validateRefs(in ODRInput) error {
	v := make(validation.Violations)
	validation.RequiredRef("client_id", in.ClientID, v)
	validation.RequiredRef("vehicule_id", in.VehiculeID, v)
	validateLignes(in.Lignes, v)
	if !v.Empty() {
		return newValidationError(v)
	}
	var count int64
	if err := s.DB.Model(&models.Client{}).Where("id = ?", in.ClientID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &NotFoundError{Entity: "Client", ID: in.ClientID}
	}
	var vehicule models.Vehicule
	if err := s.DB.First(&vehicule, in.VehiculeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "Vehicule", ID: in.VehiculeID}
		}
		return err
	}
	if vehicule.ClientID != in.ClientID {
		v["vehicule_id"] = "autre_proprietaire"
		return newValidationError(v)
	}
	return nil
}

func buildLignesODR(lignes []LigneInput) []models.LigneODR {
	out := make([]models.LigneODR, len(lignes))
	for i, l := range lignes {
		out[i] = models.LigneODR{
			PrestationID:    l.PrestationID,
			Designation:     l.Designation,
			PrixUnitaireTTC: l.PrixUnitaireTTC,
			Quantite:        l.Quantite,
			TotalTTC:        LigneTotalTTC(l.PrixUnitaireTTC, l.Quantite),
			Position:        i,
		}
	}
	return out
}

// Create ouvre un ODR directement (sans devis préalable).
func (s *ODRService) Create(in ODRInput, acteur string) (*models.OrdreReparation, error) {
	if err := s.validateRefs(in); err != nil {
		return nil, err
	}
	totaux := ComputeTotals(lignesToCalc(in.Lignes), s.TauxTVA)
	now := s.Now()
	odr := models.OrdreReparation{
		ClientID:     in.ClientID,
		VehiculeID:   in.VehiculeID,
		Statut:       models.ODREnCours,
		Lignes:       buildLignesODR(in.Lignes),
		MontantTotal: totaux.TotalTTC,
		TauxTVA:      s.TauxTVA,
		DateDebut:    now,
	}
	err := s.Seq.WithNumber(EntityODR, now.Year(), func(numero string) error {
		odr.Numero = numero
		return s.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&odr).Error
		})
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "OrdreReparation", odr.ID, "create", "", odr.Numero)
	return &odr, nil
}

func (s *ODRService) Get(id uint) (*models.OrdreReparation, error) {
	var odr models.OrdreReparation
	err := s.DB.Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Client").Preload("Vehicule").First(&odr, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "OrdreReparation", ID: id}
		}
		return nil, err
	}
	return &odr, nil
}

func (s *ODRService) List(statut models.StatutODR, page, limit int) ([]models.OrdreReparation, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	dbq := s.DB.Model(&models.OrdreReparation{})
	if statut != "" {
		dbq = dbq.Where("statut = ?", statut)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var odrs []models.OrdreReparation
	if err := dbq.Preload("Lignes").Order("id desc").Limit(limit).Offset((page - 1) * limit).Find(&odrs).Error; err != nil {
		return nil, 0, err
	}
	return odrs, total, nil
}

// UpdateLignes n'est permis qu'en EN_COURS ; après TERMINE ou ANNULE les
// lignes sont gelées.
func (s *ODRService) UpdateLignes(id uint, lignes []LigneInput, acteur string) (*models.OrdreReparation, error) {
	odr, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if ODREstTerminal(odr.Statut) {
		return nil, &TransitionError{Entity: "OrdreReparation", From: string(odr.Statut), To: string(odr.Statut), Err: ErrImmutableDocument}
	}
	v := make(validation.Violations)
	validateLignes(lignes, v)
	if !v.Empty() {
		return nil, newValidationError(v)
	}

	totaux := ComputeTotals(lignesToCalc(lignes), odr.TauxTVA)
	nouvelles := buildLignesODR(lignes)
	for i := range nouvelles {
		nouvelles[i].OdrID = odr.ID
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("odr_id = ?", odr.ID).Delete(&models.LigneODR{}).Error; err != nil {
			return err
		}
		if len(nouvelles) > 0 {
			if err := tx.Create(&nouvelles).Error; err != nil {
				return err
			}
		}
		return tx.Model(odr).Update("montant_total", totaux.TotalTTC).Error
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "OrdreReparation", odr.ID, "update_lignes", "", fmt.Sprintf("%.2f", totaux.TotalTTC))
	return s.Get(id)
}

// Terminer recalcule le montant depuis les lignes courantes et fige l'ODR.
func (s *ODRService) Terminer(id uint, acteur string) (*models.OrdreReparation, error) {
	return s.transition(id, models.ODRTermine, acteur)
}

func (s *ODRService) Annuler(id uint, acteur string) (*models.OrdreReparation, error) {
	return s.transition(id, models.ODRAnnule, acteur)
}

func (s *ODRService) transition(id uint, target models.StatutODR, acteur string) (*models.OrdreReparation, error) {
	odr, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	old := odr.Statut
	if err := TransitionODR(odr, target, s.Now()); err != nil {
		return nil, err
	}
	err = s.DB.Model(odr).Updates(map[string]interface{}{
		"statut":        odr.Statut,
		"montant_total": odr.MontantTotal,
		"date_fin":      odr.DateFin,
	}).Error
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "OrdreReparation", odr.ID, "transition", string(old), string(target))
	return odr, nil
}

// GenerateFacture émet la facture d'un ODR terminé : montants dérivés du
// total TTC de l'ODR, échéance posée à DelaiPaiementJours.
func (s *ODRService) GenerateFacture(id uint, acteur string) (*models.Facture, error) {
	odr, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if odr.Statut != models.ODRTermine {
		return nil, &TransitionError{Entity: "OrdreReparation", From: string(odr.Statut), To: "facturation", Err: ErrInvalidTransition}
	}
	var count int64
	if err := s.DB.Model(&models.Facture{}).Where("odr_id = ?", odr.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newValidationError(validation.Violations{"odr_id": "deja_facture"})
	}

	now := s.Now()
	totaux := SplitTTC(odr.MontantTotal, odr.TauxTVA)
	odrID := odr.ID
	facture := models.Facture{
		ClientID:     odr.ClientID,
		OdrID:        &odrID,
		MontantHT:    totaux.TotalHT,
		MontantTVA:   totaux.MontantTVA,
		MontantTTC:   totaux.TotalTTC,
		TauxTVA:      odr.TauxTVA,
		Statut:       models.FactureEnAttente,
		DateEmission: now,
		DateEcheance: now.AddDate(0, 0, s.DelaiPaiementJours),
	}
	err = s.Seq.WithNumber(EntityFacture, now.Year(), func(numero string) error {
		facture.Numero = numero
		return s.DB.Create(&facture).Error
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "OrdreReparation", odr.ID, "facturation", odr.Numero, facture.Numero)
	return &facture, nil
}

// Delete n'est permis que si aucune facture n'est issue de l'ODR.
func (s *ODRService) Delete(id uint, acteur string) error {
	odr, err := s.Get(id)
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.Model(&models.Facture{}).Where("odr_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialIntegrityError{Entity: "OrdreReparation", ID: id, Dependents: "factures", Count: count}
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("odr_id = ?", id).Delete(&models.LigneODR{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.OrdreReparation{}, id).Error
	})
	if err != nil {
		return err
	}
	s.Audit.Record(acteur, "OrdreReparation", id, "delete", odr.Numero, "")
	return nil
}
