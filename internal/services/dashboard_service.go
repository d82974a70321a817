package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/mverdier64/garage-app/internal/models"
)

// DashboardService charge les collections et délègue le calcul à Aggregate.
type DashboardService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db, Now: time.Now}
}

// Snapshot recalcule les métriques à la demande. Seuls les ODR de l'année en
// cours sont chargés : les fenêtres jour/mois/année n'en demandent pas plus.
func (s *DashboardService) Snapshot() (MetricsSnapshot, error) {
	now := s.Now()
	var clients []models.Client
	if err := s.DB.Find(&clients).Error; err != nil {
		return MetricsSnapshot{}, err
	}
	debutAnnee := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	var odrs []models.OrdreReparation
	if err := s.DB.Where("created_at >= ?", debutAnnee).Find(&odrs).Error; err != nil {
		return MetricsSnapshot{}, err
	}
	var factures []models.Facture
	if err := s.DB.Find(&factures).Error; err != nil {
		return MetricsSnapshot{}, err
	}
	return Aggregate(clients, odrs, factures, now), nil
}
