package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mverdier64/garage-app/internal/models"
)

func TestAggregateClients(t *testing.T) {
	clients := []models.Client{
		{TypeClient: models.TypeClientNormal},
		{TypeClient: models.TypeClientGrandCompte},
		{TypeClient: models.TypeClientGrandCompte},
	}
	snap := Aggregate(clients, nil, nil, fixedNow())
	assert.Equal(t, 3, snap.TotalClients)
	assert.Equal(t, 2, snap.GrandsComptes)
}

func TestAggregateFenetresODR(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)
	odrs := []models.OrdreReparation{
		{MontantTotal: 100, CreatedAt: now.Add(-2 * time.Hour)},                          // aujourd'hui
		{MontantTotal: 200, CreatedAt: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},     // ce mois
		{MontantTotal: 400, CreatedAt: time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)},    // cette année
		{MontantTotal: 800, CreatedAt: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)},  // an dernier
	}
	snap := Aggregate(nil, odrs, nil, now)

	assert.Equal(t, 1, snap.OdrJour)
	assert.Equal(t, 2, snap.OdrMois)
	assert.Equal(t, 3, snap.OdrAnnee)
	assert.Equal(t, 100.00, snap.MontantJour)
	assert.Equal(t, 300.00, snap.MontantMois)
	assert.Equal(t, 700.00, snap.MontantAnnee)
}

func TestAggregateFactures(t *testing.T) {
	factures := []models.Facture{
		{Statut: models.FactureEnAttente},
		{Statut: models.FactureEnAttente},
		{Statut: models.FactureImpayee},
		{Statut: models.FacturePayee},
		{Statut: models.FactureAnnulee},
		{Statut: models.FacturePartiellementPayee},
	}
	snap := Aggregate(nil, nil, factures, fixedNow())
	assert.Equal(t, 2, snap.FacturesEnCours)
	assert.Equal(t, 1, snap.FacturesImpayees)
}
