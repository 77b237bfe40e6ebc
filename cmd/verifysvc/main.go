package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/291e/bogofit-verify/internal/app"
	"github.com/291e/bogofit-verify/internal/config"
)

func main() {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := app.Run(cfg); err != nil {
		log.Fatalf("app: %v", err)
	}
}
