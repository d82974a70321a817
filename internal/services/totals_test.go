package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsScenario(t *testing.T) {
	// 100.00 x1 + 50.00 x2 à 20% de TVA
	totaux := ComputeTotals([]Ligne{
		{PrixUnitaireTTC: 100.00, Quantite: 1},
		{PrixUnitaireTTC: 50.00, Quantite: 2},
	}, 0.20)

	assert.Equal(t, 200.00, totaux.TotalTTC)
	assert.Equal(t, 166.67, totaux.TotalHT)
	assert.Equal(t, 33.33, totaux.MontantTVA)
}

func TestComputeTotalsEmptyList(t *testing.T) {
	totaux := ComputeTotals(nil, 0.20)
	assert.Zero(t, totaux.TotalHT)
	assert.Zero(t, totaux.MontantTVA)
	assert.Zero(t, totaux.TotalTTC)
}

// L'invariant HT + TVA == TTC doit tenir exactement au centime, sans dérive
// d'arrondi, quelle que soit la composition des lignes.
func TestComputeTotalsInvariant(t *testing.T) {
	cases := [][]Ligne{
		{{PrixUnitaireTTC: 0.01, Quantite: 1}},
		{{PrixUnitaireTTC: 0.01, Quantite: 3}},
		{{PrixUnitaireTTC: 33.33, Quantite: 3}},
		{{PrixUnitaireTTC: 19.99, Quantite: 7}, {PrixUnitaireTTC: 0.05, Quantite: 13}},
		{{PrixUnitaireTTC: 123.45, Quantite: 2}, {PrixUnitaireTTC: 67.89, Quantite: 5}, {PrixUnitaireTTC: 1.11, Quantite: 9}},
		{{PrixUnitaireTTC: 999999.99, Quantite: 1}},
	}
	for _, lignes := range cases {
		totaux := ComputeTotals(lignes, 0.20)
		// la somme se vérifie en décimal : l'addition flottante brute peut
		// introduire un epsilon qui n'existe pas au niveau des centimes
		somme := decimal.NewFromFloat(totaux.TotalHT).Add(decimal.NewFromFloat(totaux.MontantTVA))
		require.True(t, somme.Equal(decimal.NewFromFloat(totaux.TotalTTC)),
			"HT+TVA doit égaler TTC pour %+v (HT=%v TVA=%v TTC=%v)", lignes, totaux.TotalHT, totaux.MontantTVA, totaux.TotalTTC)
	}
}

func TestComputeTotalsVATRateIsParameter(t *testing.T) {
	lignes := []Ligne{{PrixUnitaireTTC: 110.00, Quantite: 1}}
	totaux := ComputeTotals(lignes, 0.10)
	assert.Equal(t, 100.00, totaux.TotalHT)
	assert.Equal(t, 10.00, totaux.MontantTVA)
}

func TestLigneTotalTTCRounding(t *testing.T) {
	assert.Equal(t, 0.03, LigneTotalTTC(0.01, 3))
	assert.Equal(t, 99.99, LigneTotalTTC(33.33, 3))
}

func TestSplitTTC(t *testing.T) {
	totaux := SplitTTC(200.00, 0.20)
	assert.Equal(t, 166.67, totaux.TotalHT)
	assert.Equal(t, 33.33, totaux.MontantTVA)
	assert.Equal(t, 200.00, totaux.TotalTTC)

	assert.Zero(t, SplitTTC(0, 0.20).TotalTTC)
}
