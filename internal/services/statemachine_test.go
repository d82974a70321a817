package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mverdier64/garage-app/internal/models"
)

func TestTransitionDevisTable(t *testing.T) {
	all := []models.StatutDevis{models.DevisBrouillon, models.DevisEnvoye, models.DevisAccepte, models.DevisRefuse, models.DevisExpire}
	legal := map[models.StatutDevis][]models.StatutDevis{
		models.DevisBrouillon: {models.DevisEnvoye},
		models.DevisEnvoye:    {models.DevisAccepte, models.DevisRefuse, models.DevisExpire},
	}
	for _, from := range all {
		for _, to := range all {
			d := models.Devis{Statut: from}
			err := TransitionDevis(&d, to)
			if contientStatut(legal[from], to) {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, d.Statut)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
				// document inchangé en cas de refus
				assert.Equal(t, from, d.Statut)
			}
		}
	}
}

func contientStatut[S comparable](list []S, s S) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func TestCanConvertToODR(t *testing.T) {
	assert.False(t, CanConvertToODR(nil))
	for _, s := range []models.StatutDevis{models.DevisBrouillon, models.DevisEnvoye, models.DevisRefuse, models.DevisExpire} {
		assert.False(t, CanConvertToODR(&models.Devis{Statut: s}), "statut %s", s)
	}
	assert.True(t, CanConvertToODR(&models.Devis{Statut: models.DevisAccepte}))
}

func TestTransitionODRTermineRecalcule(t *testing.T) {
	o := models.OrdreReparation{
		Statut:  models.ODREnCours,
		TauxTVA: 0.20,
		Lignes: []models.LigneODR{
			{PrixUnitaireTTC: 100, Quantite: 1},
			{PrixUnitaireTTC: 50, Quantite: 2},
		},
		MontantTotal: 0, // volontairement périmé
	}
	now := fixedNow()
	require.NoError(t, TransitionODR(&o, models.ODRTermine, now))
	assert.Equal(t, models.ODRTermine, o.Statut)
	assert.Equal(t, 200.00, o.MontantTotal)
	require.NotNil(t, o.DateFin)
	assert.Equal(t, now, *o.DateFin)
}

func TestTransitionODRDepuisTerminal(t *testing.T) {
	for _, from := range []models.StatutODR{models.ODRTermine, models.ODRAnnule} {
		for _, to := range []models.StatutODR{models.ODREnCours, models.ODRTermine, models.ODRAnnule} {
			o := models.OrdreReparation{Statut: from}
			err := TransitionODR(&o, to, fixedNow())
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			assert.Equal(t, from, o.Statut)
		}
	}
}

func TestTransitionFacturePaiementIncomplet(t *testing.T) {
	date := fixedNow()
	cases := []struct {
		name string
		info PaiementInfo
	}{
		{"sans mode ni date", PaiementInfo{}},
		{"mode seul", PaiementInfo{Mode: models.PaiementCheque}},
		{"date seule", PaiementInfo{DateReglement: &date}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, target := range []models.StatutFacture{models.FacturePayee, models.FacturePartiellementPayee} {
				f := models.Facture{Statut: models.FactureEnAttente, MontantTTC: 100}
				err := TransitionFacture(&f, target, tc.info)
				assert.ErrorIs(t, err, ErrIncompletePaymentInfo)
				assert.Equal(t, models.FactureEnAttente, f.Statut)
				assert.Empty(t, f.ModePaiement)
				assert.Nil(t, f.DateReglement)
			}
		})
	}
}

func TestTransitionFacturePayee(t *testing.T) {
	date := fixedNow()
	f := models.Facture{Statut: models.FactureEnAttente, MontantTTC: 240.00}
	err := TransitionFacture(&f, models.FacturePayee, PaiementInfo{Mode: models.PaiementVirement, DateReglement: &date})
	require.NoError(t, err)
	assert.Equal(t, models.FacturePayee, f.Statut)
	assert.Equal(t, models.PaiementVirement, f.ModePaiement)
	assert.Equal(t, date, *f.DateReglement)
	assert.Equal(t, 240.00, f.MontantRegle)
}

func TestTransitionFacturePartiellementPayee(t *testing.T) {
	date := fixedNow()
	f := models.Facture{Statut: models.FactureEnAttente, MontantTTC: 240.00}
	err := TransitionFacture(&f, models.FacturePartiellementPayee, PaiementInfo{Mode: models.PaiementEspeces, DateReglement: &date, MontantRegle: 100})
	require.NoError(t, err)
	assert.Equal(t, models.FacturePartiellementPayee, f.Statut)
	assert.Equal(t, 100.00, f.MontantRegle)
}

// Un retour en EN_ATTENTE ou IMPAYEE ne doit laisser aucune métadonnée de
// paiement périmée.
func TestTransitionFactureRollbackEffaceLePaiement(t *testing.T) {
	date := fixedNow()
	for _, target := range []models.StatutFacture{models.FactureEnAttente, models.FactureImpayee} {
		f := models.Facture{
			Statut:        models.FacturePartiellementPayee,
			MontantTTC:    240.00,
			ModePaiement:  models.PaiementCheque,
			DateReglement: &date,
			MontantRegle:  100,
		}
		require.NoError(t, TransitionFacture(&f, target, PaiementInfo{}))
		assert.Equal(t, target, f.Statut)
		assert.Empty(t, f.ModePaiement)
		assert.Nil(t, f.DateReglement)
		assert.Zero(t, f.MontantRegle)
	}
}

func TestTransitionFactureAnnulation(t *testing.T) {
	// annulable depuis tout état non payé sans drapeau
	for _, from := range []models.StatutFacture{models.FactureEnAttente, models.FacturePartiellementPayee, models.FactureImpayee} {
		f := models.Facture{Statut: from}
		require.NoError(t, TransitionFacture(&f, models.FactureAnnulee, PaiementInfo{}), "depuis %s", from)
		assert.Equal(t, models.FactureAnnulee, f.Statut)
	}

	// depuis PAYEE : refusé sans le drapeau d'annulation explicite
	f := models.Facture{Statut: models.FacturePayee}
	err := TransitionFacture(&f, models.FactureAnnulee, PaiementInfo{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.FacturePayee, f.Statut)

	require.NoError(t, TransitionFacture(&f, models.FactureAnnulee, PaiementInfo{AnnulationApresReglement: true}))
	assert.Equal(t, models.FactureAnnulee, f.Statut)
}

func TestTransitionFactureDepuisAnnulee(t *testing.T) {
	for _, to := range []models.StatutFacture{models.FactureEnAttente, models.FacturePayee, models.FacturePartiellementPayee, models.FactureImpayee} {
		f := models.Facture{Statut: models.FactureAnnulee}
		err := TransitionFacture(&f, to, PaiementInfo{Mode: models.PaiementVirement, DateReglement: ptrTime(fixedNow())})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, models.FactureAnnulee, f.Statut)
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	f := models.Facture{Statut: models.FactureAnnulee}
	err := TransitionFacture(&f, models.FacturePayee, PaiementInfo{})
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "Facture", te.Entity)
	assert.Equal(t, string(models.FactureAnnulee), te.From)
	assert.Equal(t, string(models.FacturePayee), te.To)
}

func ptrTime(t time.Time) *time.Time { return &t }
