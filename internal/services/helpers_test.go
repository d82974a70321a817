package services

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/db"
	"github.com/mverdier64/garage-app/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, m := range db.Models() {
		if err := conn.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}
	return conn
}

func newTestAudit(t *testing.T, conn *gorm.DB) *Audit {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAudit(conn, log)
}

// seedClientVehicule installe le couple client/véhicule minimal des tests de
// cycle de vie.
func seedClientVehicule(t *testing.T, conn *gorm.DB) (models.Client, models.Vehicule) {
	t.Helper()
	client := models.Client{NumeroClient: "CLI-900", Nom: "Durand", Email: "durand@test", TypeClient: models.TypeClientNormal}
	if err := conn.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	vehicule := models.Vehicule{ClientID: client.ID, Immatriculation: "AB-123-CD", Marque: "Renault", Modele: "Clio", Annee: 2019}
	if err := conn.Create(&vehicule).Error; err != nil {
		t.Fatalf("vehicule: %v", err)
	}
	return client, vehicule
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
}
