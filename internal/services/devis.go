package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
	"github.com/mverdier64/garage-app/internal/validation"
)

// LigneInput est la saisie commune aux lignes de devis et d'ODR.
type LigneInput struct {
	PrestationID    *uint
	Designation     string
	PrixUnitaireTTC float64
	Quantite        int
}

// validateLignes contrôle chaque ligne avant tout calcul : le calculateur de
// totaux suppose des entrées déjà validées.
func validateLignes(lignes []LigneInput, v validation.Violations) {
	for i, l := range lignes {
		prefix := fmt.Sprintf("lignes[%d].", i)
		validation.Required(prefix+"designation", l.Designation, v)
		validation.NonNegativeFloat(prefix+"prix_unitaire_ttc", l.PrixUnitaireTTC, v)
		validation.PositiveInt(prefix+"quantite", l.Quantite, v)
	}
}

// DevisService porte le cycle de vie des devis : numérotation, calcul des
// totaux, transitions de statut et conversion en ODR.
type DevisService struct {
	DB      *gorm.DB
	Seq     *SequenceService
	Audit   *Audit
	TauxTVA float64
	// Now est injectable pour les tests ; time.Now par défaut.
	Now func() time.Time
}

func NewDevisService(db *gorm.DB, seq *SequenceService, audit *Audit, tauxTVA float64) *DevisService {
	return &DevisService{DB: db, Seq: seq, Audit: audit, TauxTVA: tauxTVA, Now: time.Now}
}

type DevisInput struct {
	ClientID     uint
	VehiculeID   uint
	DateValidite time.Time
	Lignes       []LigneInput
}

func (s *DevisService) validateRefs(in DevisInput) error {
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
	for _, l := range in.Lignes {
		if l.PrestationID == nil {
			continue
		}
		if err := s.DB.Model(&models.Prestation{}).Where("id = ?", *l.PrestationID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &NotFoundError{Entity: "Prestation", ID: *l.PrestationID}
		}
	}
	return nil
}

func buildLignesDevis(lignes []LigneInput) []models.LigneDevis {
	out := make([]models.LigneDevis, len(lignes))
	for i, l := range lignes {
		out[i] = models.LigneDevis{
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

// Create valide les références, numérote, calcule les totaux et persiste le
// devis avec ses lignes en une transaction.
func (s *DevisService) Create(in DevisInput, acteur string) (*models.Devis, error) {
	if err := s.validateRefs(in); err != nil {
		return nil, err
	}
	totaux := ComputeTotals(lignesToCalc(in.Lignes), s.TauxTVA)
	devis := models.Devis{
		ClientID:     in.ClientID,
		VehiculeID:   in.VehiculeID,
		Statut:       models.DevisBrouillon,
		Lignes:       buildLignesDevis(in.Lignes),
		TotalHT:      totaux.TotalHT,
		MontantTVA:   totaux.MontantTVA,
		TotalTTC:     totaux.TotalTTC,
		TauxTVA:      s.TauxTVA,
		DateValidite: in.DateValidite,
	}
	year := s.Now().Year()
	err := s.Seq.WithNumber(EntityDevis, year, func(numero string) error {
		devis.Numero = numero
		return s.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&devis).Error
		})
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Devis", devis.ID, "create", "", devis.Numero)
	return &devis, nil
}

func (s *DevisService) Get(id uint) (*models.Devis, error) {
	var devis models.Devis
	err := s.DB.Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Client").Preload("Vehicule").First(&devis, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Devis", ID: id}
		}
		return nil, err
	}
	return &devis, nil
}

func (s *DevisService) List(statut models.StatutDevis, page, limit int) ([]models.Devis, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	dbq := s.DB.Model(&models.Devis{})
	if statut != "" {
		dbq = dbq.Where("statut = ?", statut)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var devisList []models.Devis
	if err := dbq.Preload("Lignes").Order("id desc").Limit(limit).Offset((page - 1) * limit).Find(&devisList).Error; err != nil {
		return nil, 0, err
	}
	return devisList, total, nil
}

// UpdateLignes remplace les lignes et recalcule les totaux. Refusé dès que le
// devis a atteint un état terminal.
func (s *DevisService) UpdateLignes(id uint, lignes []LigneInput, acteur string) (*models.Devis, error) {
	devis, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if DevisEstTerminal(devis.Statut) {
		return nil, &TransitionError{Entity: "Devis", From: string(devis.Statut), To: string(devis.Statut), Err: ErrImmutableDocument}
	}
	v := make(validation.Violations)
	validateLignes(lignes, v)
	if !v.Empty() {
		return nil, newValidationError(v)
	}

	totaux := ComputeTotals(lignesToCalc(lignes), devis.TauxTVA)
	nouvelles := buildLignesDevis(lignes)
	for i := range nouvelles {
		nouvelles[i].DevisID = devis.ID
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("devis_id = ?", devis.ID).Delete(&models.LigneDevis{}).Error; err != nil {
			return err
		}
		if len(nouvelles) > 0 {
			if err := tx.Create(&nouvelles).Error; err != nil {
				return err
			}
		}
		return tx.Model(devis).Updates(map[string]interface{}{
			"total_ht":    totaux.TotalHT,
			"montant_tva": totaux.MontantTVA,
			"total_ttc":   totaux.TotalTTC,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Devis", devis.ID, "update_lignes", "", fmt.Sprintf("%.2f", totaux.TotalTTC))
	return s.Get(id)
}

// transition charge, applique la machine à états et persiste le nouveau statut.
func (s *DevisService) transition(id uint, target models.StatutDevis, acteur string) (*models.Devis, error) {
	devis, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	old := devis.Statut
	if err := TransitionDevis(devis, target); err != nil {
		return nil, err
	}
	if err := s.DB.Model(devis).Update("statut", devis.Statut).Error; err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Devis", devis.ID, "transition", string(old), string(target))
	return devis, nil
}

func (s *DevisService) Envoyer(id uint, acteur string) (*models.Devis, error) {
	return s.transition(id, models.DevisEnvoye, acteur)
}

func (s *DevisService) Accepter(id uint, acteur string) (*models.Devis, error) {
	return s.transition(id, models.DevisAccepte, acteur)
}

func (s *DevisService) Refuser(id uint, acteur string) (*models.Devis, error) {
	return s.transition(id, models.DevisRefuse, acteur)
}

func (s *DevisService) Expirer(id uint, acteur string) (*models.Devis, error) {
	return s.transition(id, models.DevisExpire, acteur)
}

// ConvertToODR crée l'ordre de réparation depuis un devis accepté, en copiant
// ses lignes. Refusé tant que CanConvertToODR est faux.
func (s *DevisService) ConvertToODR(id uint, acteur string) (*models.OrdreReparation, error) {
	devis, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !CanConvertToODR(devis) {
		return nil, &TransitionError{Entity: "Devis", From: string(devis.Statut), To: "conversion_odr", Err: ErrInvalidTransition}
	}
	var count int64
	if err := s.DB.Model(&models.OrdreReparation{}).Where("devis_id = ?", devis.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		v := validation.Violations{"devis_id": "deja_converti"}
		return nil, newValidationError(v)
	}

	now := s.Now()
	lignes := make([]models.LigneODR, len(devis.Lignes))
	for i, l := range devis.Lignes {
		lignes[i] = models.LigneODR{
			PrestationID:    l.PrestationID,
			Designation:     l.Designation,
			PrixUnitaireTTC: l.PrixUnitaireTTC,
			Quantite:        l.Quantite,
			TotalTTC:        l.TotalTTC,
			Position:        l.Position,
		}
	}
	devisID := devis.ID
	odr := models.OrdreReparation{
		ClientID:     devis.ClientID,
		VehiculeID:   devis.VehiculeID,
		DevisID:      &devisID,
		Statut:       models.ODREnCours,
		Lignes:       lignes,
		MontantTotal: devis.TotalTTC,
		TauxTVA:      devis.TauxTVA,
		DateDebut:    now,
	}
	err = s.Seq.WithNumber(EntityODR, now.Year(), func(numero string) error {
		odr.Numero = numero
		return s.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&odr).Error
		})
	})
	if err != nil {
		return nil, err
	}
	s.Audit.Record(acteur, "Devis", devis.ID, "conversion_odr", devis.Numero, odr.Numero)
	return &odr, nil
}

// Delete n'est permis que si aucun ODR n'est issu du devis.
func (s *DevisService) Delete(id uint, acteur string) error {
	devis, err := s.Get(id)
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.Model(&models.OrdreReparation{}).Where("devis_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialIntegrityError{Entity: "Devis", ID: id, Dependents: "ordres_reparation", Count: count}
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("devis_id = ?", id).Delete(&models.LigneDevis{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Devis{}, id).Error
	})
	if err != nil {
		return err
	}
	s.Audit.Record(acteur, "Devis", id, "delete", devis.Numero, "")
	return nil
}

func lignesToCalc(lignes []LigneInput) []Ligne {
	out := make([]Ligne, len(lignes))
	for i, l := range lignes {
		out[i] = Ligne{PrixUnitaireTTC: l.PrixUnitaireTTC, Quantite: l.Quantite}
	}
	return out
}
