package services

import (
	"time"

	"github.com/mverdier64/garage-app/internal/models"
)

// Tables de transition centralisées. Tout couple (état, cible) absent d'ici
// est refusé avec ErrInvalidTransition, le document restant inchangé.
var devisTransitions = map[models.StatutDevis][]models.StatutDevis{
	models.DevisBrouillon: {models.DevisEnvoye},
	models.DevisEnvoye:    {models.DevisAccepte, models.DevisRefuse, models.DevisExpire},
	// ACCEPTE, REFUSE, EXPIRE sont terminaux
}

var odrTransitions = map[models.StatutODR][]models.StatutODR{
	models.ODREnCours: {models.ODRTermine, models.ODRAnnule},
	// TERMINE et ANNULE sont terminaux
}

var factureTransitions = map[models.StatutFacture][]models.StatutFacture{
	models.FactureEnAttente:          {models.FacturePayee, models.FacturePartiellementPayee, models.FactureImpayee, models.FactureAnnulee},
	models.FacturePartiellementPayee: {models.FacturePayee, models.FactureImpayee, models.FactureEnAttente, models.FactureAnnulee},
	models.FactureImpayee:            {models.FacturePayee, models.FacturePartiellementPayee, models.FactureEnAttente, models.FactureAnnulee},
	// PAYEE -> ANNULEE existe mais exige le drapeau d'annulation explicite,
	// contrôlé dans TransitionFacture.
	models.FacturePayee: {models.FactureAnnulee},
	// ANNULEE est terminal
}

func allowed[S comparable](table map[S][]S, from, to S) bool {
	for _, t := range table[from] {
		if t == to {
			return true
		}
	}
	return false
}

// DevisEstTerminal indique un état final de devis (lignes gelées).
func DevisEstTerminal(s models.StatutDevis) bool {
	return s == models.DevisAccepte || s == models.DevisRefuse || s == models.DevisExpire
}

// ODREstTerminal indique un état final d'ODR (lignes gelées).
func ODREstTerminal(s models.StatutODR) bool {
	return s == models.ODRTermine || s == models.ODRAnnule
}

// CanConvertToODR : seul un devis accepté peut donner lieu à un ODR.
func CanConvertToODR(d *models.Devis) bool {
	return d != nil && d.Statut == models.DevisAccepte
}

// TransitionDevis applique une transition de statut de devis.
func TransitionDevis(d *models.Devis, target models.StatutDevis) error {
	if !allowed(devisTransitions, d.Statut, target) {
		return &TransitionError{Entity: "Devis", From: string(d.Statut), To: string(target), Err: ErrInvalidTransition}
	}
	d.Statut = target
	return nil
}

// TransitionODR applique une transition d'ODR. Le passage à TERMINE recalcule
// le montant total depuis les lignes courantes et pose la date de fin.
func TransitionODR(o *models.OrdreReparation, target models.StatutODR, now time.Time) error {
	if !allowed(odrTransitions, o.Statut, target) {
		return &TransitionError{Entity: "OrdreReparation", From: string(o.Statut), To: string(target), Err: ErrInvalidTransition}
	}
	if target == models.ODRTermine {
		totaux := ComputeTotals(lignesFromODR(o.Lignes), o.TauxTVA)
		o.MontantTotal = totaux.TotalTTC
		fin := now
		o.DateFin = &fin
	}
	o.Statut = target
	return nil
}

// PaiementInfo accompagne une transition de facture. Mode et DateReglement
// sont exigés ensemble pour entrer en PAYEE ou PARTIELLEMENT_PAYEE.
type PaiementInfo struct {
	Mode          models.ModePaiement
	DateReglement *time.Time
	// MontantRegle n'est consulté que pour PARTIELLEMENT_PAYEE ; le passage en
	// PAYEE solde la facture à son montant TTC.
	MontantRegle float64
	// AnnulationApresReglement autorise explicitement PAYEE -> ANNULEE.
	// Transition distincte, auditée comme "annulation_apres_reglement".
	AnnulationApresReglement bool
}

// TransitionFacture applique la sous-machine de paiement. Le document n'est
// modifié que si la transition est acceptée dans son intégralité.
func TransitionFacture(f *models.Facture, target models.StatutFacture, p PaiementInfo) error {
	if !allowed(factureTransitions, f.Statut, target) {
		return &TransitionError{Entity: "Facture", From: string(f.Statut), To: string(target), Err: ErrInvalidTransition}
	}
	if f.Statut == models.FacturePayee && target == models.FactureAnnulee && !p.AnnulationApresReglement {
		return &TransitionError{Entity: "Facture", From: string(f.Statut), To: string(target), Err: ErrInvalidTransition}
	}

	switch target {
	case models.FacturePayee, models.FacturePartiellementPayee:
		if p.Mode == "" || p.DateReglement == nil {
			return &TransitionError{Entity: "Facture", From: string(f.Statut), To: string(target), Err: ErrIncompletePaymentInfo}
		}
		f.ModePaiement = p.Mode
		f.DateReglement = p.DateReglement
		if target == models.FacturePayee {
			f.MontantRegle = f.MontantTTC
		} else {
			f.MontantRegle = p.MontantRegle
		}
	case models.FactureEnAttente, models.FactureImpayee:
		// Un retour en arrière ne doit laisser aucune métadonnée de paiement.
		f.ModePaiement = ""
		f.DateReglement = nil
		f.MontantRegle = 0
	}
	f.Statut = target
	return nil
}
