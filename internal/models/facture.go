package models

import "time"

// StatutFacture porte aussi la sous-machine de paiement.
type StatutFacture string

const (
	FactureEnAttente          StatutFacture = "EN_ATTENTE"
	FacturePayee              StatutFacture = "PAYEE"
	FactureImpayee            StatutFacture = "IMPAYEE"
	FacturePartiellementPayee StatutFacture = "PARTIELLEMENT_PAYEE"
	FactureAnnulee            StatutFacture = "ANNULEE"
)

// ModePaiement des règlements acceptés à l'atelier.
type ModePaiement string

const (
	PaiementEspeces       ModePaiement = "ESPECES"
	PaiementCheque        ModePaiement = "CHEQUE"
	PaiementVirement      ModePaiement = "VIREMENT"
	PaiementTPEVivawallet ModePaiement = "TPE_VIVAWALLET"
	PaiementCreditInterne ModePaiement = "CREDIT_INTERNE"
	PaiementMixte         ModePaiement = "MIXTE"
)

// Facture (invoice). ModePaiement et DateReglement ne sont renseignés que
// lorsqu'un statut porteur de paiement est posé ; un retour à EN_ATTENTE ou
// IMPAYEE les efface.
type Facture struct {
	ID            uint          `gorm:"primaryKey"`
	Numero        string        `gorm:"size:20;uniqueIndex;not null"` // ex: FAC-2024-007
	ClientID      uint          `gorm:"not null;index"`
	Client        Client        `gorm:"foreignKey:ClientID"`
	OdrID         *uint         `gorm:"index"` // facture issue d'un ODR terminé
	MontantHT     float64
	MontantTVA    float64
	MontantTTC    float64
	TauxTVA       float64
	Statut        StatutFacture `gorm:"size:24;not null;default:'EN_ATTENTE'"`
	ModePaiement  ModePaiement  `gorm:"size:16"`
	MontantRegle  float64       // cumul encaissé, utile en PARTIELLEMENT_PAYEE
	DateReglement *time.Time
	DateEmission  time.Time
	DateEcheance  time.Time `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
