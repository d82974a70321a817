package services

import (
	"github.com/shopspring/decimal"

	"github.com/mverdier64/garage-app/internal/models"
)

// Ligne is the minimal shape the calculator needs; devis and ODR lines both
// adapt to it.
type Ligne struct {
	PrixUnitaireTTC float64
	Quantite        int
}

// Totaux regroupe les trois montants d'un document chiffré.
type Totaux struct {
	TotalHT    float64
	MontantTVA float64
	TotalTTC   float64
}

// ComputeTotals derives HT/TVA/TTC from line items at the given VAT rate.
// Arithmetic runs on decimals rounded to the cent; TVA is obtained by
// subtraction so that TotalHT + MontantTVA == TotalTTC holds exactly.
// Inputs are assumed validated (no negative price, no non-positive quantity);
// an empty list yields zero totals.
func ComputeTotals(lignes []Ligne, tauxTVA float64) Totaux {
	ttc := decimal.Zero
	for _, l := range lignes {
		lineTotal := decimal.NewFromFloat(l.PrixUnitaireTTC).
			Mul(decimal.NewFromInt(int64(l.Quantite))).
			Round(2)
		ttc = ttc.Add(lineTotal)
	}
	if ttc.IsZero() {
		return Totaux{}
	}
	divisor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(tauxTVA))
	ht := ttc.Div(divisor).Round(2)
	tva := ttc.Sub(ht)

	totalHT, _ := ht.Float64()
	montantTVA, _ := tva.Float64()
	totalTTC, _ := ttc.Float64()
	return Totaux{TotalHT: totalHT, MontantTVA: montantTVA, TotalTTC: totalTTC}
}

// LigneTotalTTC returns the rounded line total persisted on each line item.
func LigneTotalTTC(prixUnitaireTTC float64, quantite int) float64 {
	total, _ := decimal.NewFromFloat(prixUnitaireTTC).
		Mul(decimal.NewFromInt(int64(quantite))).
		Round(2).
		Float64()
	return total
}

// SplitTTC décompose un montant TTC déjà connu (facture saisie directement,
// facture issue d'un ODR) en HT et TVA, avec la même garantie de
// réconciliation exacte que ComputeTotals.
func SplitTTC(montantTTC, tauxTVA float64) Totaux {
	ttc := decimal.NewFromFloat(montantTTC).Round(2)
	if ttc.IsZero() {
		return Totaux{}
	}
	divisor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(tauxTVA))
	ht := ttc.Div(divisor).Round(2)
	tva := ttc.Sub(ht)

	totalHT, _ := ht.Float64()
	montantTVA, _ := tva.Float64()
	totalTTC, _ := ttc.Float64()
	return Totaux{TotalHT: totalHT, MontantTVA: montantTVA, TotalTTC: totalTTC}
}

func lignesFromODR(lignes []models.LigneODR) []Ligne {
	out := make([]Ligne, len(lignes))
	for i, l := range lignes {
		out[i] = Ligne{PrixUnitaireTTC: l.PrixUnitaireTTC, Quantite: l.Quantite}
	}
	return out
}
