package main

import (
	"context"
	"log"

	"github.com/Mtank10/career-counselling-chat-app/internal/bootstrap"
	"github.com/Mtank10/career-counselling-chat-app/internal/config"
	"github.com/Mtank10/career-counselling-chat-app/internal/server"
	"github.com/Mtank10/career-counselling-chat-app/internal/tracer"
	"github.com/Mtank10/career-counselling-chat-app/pkg/database"
)

func main() {
	// 0. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	// 2. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Dependency container (also starts the hub and event bridge)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
