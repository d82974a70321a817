package services

import (
	"errors"
	"testing"

	"github.com/mverdier64/garage-app/internal/models"
)

func TestVehiculeCreateClientInconnu(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewVehiculeService(conn, newTestAudit(t, conn))

	_, err := svc.Create(VehiculeInput{ClientID: 42, Immatriculation: "AA-123-BB", Marque: "Renault", Modele: "Clio"}, "tests")
	var nfe *NotFoundError
	if !errors.As(err, &nfe) || nfe.Entity != "Client" {
		t.Fatalf("expected NotFound Client got %v", err)
	}
}

func TestVehiculeDeleteBloqueeParDevis(t *testing.T) {
	conn := setupTestDB(t)
	audit := newTestAudit(t, conn)
	svc := NewVehiculeService(conn, audit)
	client, vehicule := seedClientVehicule(t, conn)

	ds := NewDevisService(conn, NewSequenceService(conn), audit, 0.20)
	ds.Now = fixedNow
	if _, err := ds.Create(DevisInput{
		ClientID:   client.ID,
		VehiculeID: vehicule.ID,
		Lignes:     []LigneInput{{Designation: "Contrôle", PrixUnitaireTTC: 80, Quantite: 1}},
	}, "tests"); err != nil {
		t.Fatalf("create devis: %v", err)
	}

	err := svc.Delete(vehicule.ID, "tests")
	var rie *ReferentialIntegrityError
	if !errors.As(err, &rie) {
		t.Fatalf("expected ReferentialIntegrityError got %v", err)
	}
	if rie.Dependents != "devis" {
		t.Fatalf("unexpected dependents: %s", rie.Dependents)
	}
}

func TestVehiculeDeleteSansDocument(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewVehiculeService(conn, newTestAudit(t, conn))
	_, vehicule := seedClientVehicule(t, conn)

	if err := svc.Delete(vehicule.ID, "tests"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var count int64
	if err := conn.Model(&models.Vehicule{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("vehicule toujours présent")
	}
}
