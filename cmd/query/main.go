package main

import (
	"log"

	"cpl-backend/internal/bootstrap"
	"cpl-backend/internal/shared/config"
	"cpl-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.QueryPort)
	log.Printf("Starting CPL query service on %s", addr)

	if err := app.QueryRouter.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
