package services

import (
	"time"

	"github.com/mverdier64/garage-app/internal/models"
)

// MetricsSnapshot est la photographie servie au tableau de bord. Recalculée à
// la demande, jamais mise en cache.
type MetricsSnapshot struct {
	TotalClients     int     `json:"total_clients"`
	GrandsComptes    int     `json:"grands_comptes"`
	OdrJour          int     `json:"odr_jour"`
	OdrMois          int     `json:"odr_mois"`
	OdrAnnee         int     `json:"odr_annee"`
	MontantJour      float64 `json:"montant_jour"`
	MontantMois      float64 `json:"montant_mois"`
	MontantAnnee     float64 `json:"montant_annee"`
	FacturesEnCours  int     `json:"factures_en_cours"`
	FacturesImpayees int     `json:"factures_impayees"`
}

// Aggregate compose les compteurs du tableau de bord depuis des collections
// déjà chargées. Les fenêtres jour/mois/année sont calées sur l'horloge
// fournie, dans son fuseau.
func Aggregate(clients []models.Client, odrs []models.OrdreReparation, factures []models.Facture, now time.Time) MetricsSnapshot {
	snap := MetricsSnapshot{TotalClients: len(clients)}
	for _, c := range clients {
		if c.TypeClient == models.TypeClientGrandCompte {
			snap.GrandsComptes++
		}
	}

	debutJour := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	debutMois := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	debutAnnee := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	for _, o := range odrs {
		if o.CreatedAt.After(now) || o.CreatedAt.Before(debutAnnee) {
			continue
		}
		snap.OdrAnnee++
		snap.MontantAnnee += o.MontantTotal
		if !o.CreatedAt.Before(debutMois) {
			snap.OdrMois++
			snap.MontantMois += o.MontantTotal
		}
		if !o.CreatedAt.Before(debutJour) {
			snap.OdrJour++
			snap.MontantJour += o.MontantTotal
		}
	}

	for _, f := range factures {
		switch f.Statut {
		case models.FactureEnAttente:
			snap.FacturesEnCours++
		case models.FactureImpayee:
			snap.FacturesImpayees++
		}
	}
	return snap
}
