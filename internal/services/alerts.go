package services

import (
	"math"
	"sort"
	"time"

	"github.com/mverdier64/garage-app/internal/models"
)

// AlerteFacture associe une facture au nombre de jours restants avant son
// échéance. Négatif en retard : -5 signifie échue depuis cinq jours.
type AlerteFacture struct {
	Facture       models.Facture
	JoursRestants int
}

// AlertesEcheance partitionne les factures éligibles en deux paquets
// disjoints, triés par échéance croissante.
type AlertesEcheance struct {
	Proches  []AlerteFacture // EN_ATTENTE, échéance dans [now, now+delai]
	EnRetard []AlerteFacture // IMPAYEE, échéance passée
}

// EvaluateEcheances est pur : la liste des factures et l'horloge sont fournies
// par l'appelant, ce qui rend l'évaluation déterministe en test. Les factures
// payées ou annulées sont ignorées quelle que soit leur date.
func EvaluateEcheances(factures []models.Facture, now time.Time, delaiJours int) AlertesEcheance {
	res := AlertesEcheance{}
	limite := now.AddDate(0, 0, delaiJours)
	for _, f := range factures {
		switch f.Statut {
		case models.FactureEnAttente:
			if f.DateEcheance.Before(now) || f.DateEcheance.After(limite) {
				continue
			}
			res.Proches = append(res.Proches, AlerteFacture{Facture: f, JoursRestants: joursEntre(now, f.DateEcheance)})
		case models.FactureImpayee:
			if !f.DateEcheance.Before(now) {
				continue
			}
			res.EnRetard = append(res.EnRetard, AlerteFacture{Facture: f, JoursRestants: -joursEntre(f.DateEcheance, now)})
		}
	}
	sort.Slice(res.Proches, func(i, j int) bool {
		return res.Proches[i].Facture.DateEcheance.Before(res.Proches[j].Facture.DateEcheance)
	})
	sort.Slice(res.EnRetard, func(i, j int) bool {
		return res.EnRetard[i].Facture.DateEcheance.Before(res.EnRetard[j].Facture.DateEcheance)
	})
	return res
}

// joursEntre compte les jours de from à to, arrondis vers le haut.
func joursEntre(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
