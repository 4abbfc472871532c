package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/fleetrisk/telematics-backend-go/internal/api"
	"github.com/fleetrisk/telematics-backend-go/internal/config"
	"github.com/fleetrisk/telematics-backend-go/internal/database"

	// Import analyzer packages to register them
	_ "github.com/fleetrisk/telematics-backend-go/internal/analysis/detect"
)

func main() {
	// .env is optional; the environment wins either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	router := api.SetupRouter(cfg, db)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
