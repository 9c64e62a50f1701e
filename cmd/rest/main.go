package main

import (
	"context"
	"log"

	"leadscout-be/internal/bootstrap"
	"leadscout-be/internal/config"
	"leadscout-be/internal/server"
	"leadscout-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	// The research consumer and websocket hub start inside the container.
	container := bootstrap.NewContainer(cfg)

	// 3. Initialize Server
	srv := server.New(cfg, container)

	// 4. Run Server
	log.Fatal(srv.Run())
}
