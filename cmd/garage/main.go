package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mverdier64/garage-app/internal/config"
	"github.com/mverdier64/garage-app/internal/db"
	"github.com/mverdier64/garage-app/internal/services"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedFlag        = flag.Bool("seed", false, "Seed the prestation catalog and exit")
	dashboardFlag   = flag.Bool("dashboard", false, "Print the dashboard metrics snapshot as JSON and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	log := logrus.New()
	if cfg.Env == "development" {
		log.SetLevel(logrus.DebugLevel)
	}

	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("Erreur connexion DB: %v", err)
	}
	if *migrateOnlyFlag {
		log.Info("migrations completed; exiting as requested")
		return
	}
	if *seedFlag {
		db.Seed(dbConn)
		log.Info("catalogue de prestations installé")
		return
	}
	if *dashboardFlag {
		snap, err := services.NewDashboardService(dbConn).Snapshot()
		if err != nil {
			log.Fatalf("dashboard: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}

	log.WithFields(logrus.Fields{"env": cfg.Env, "taux_tva": cfg.TauxTVA}).
		Info("garage-app: base prête (utiliser -migrate-only, -seed ou -dashboard)")
}
