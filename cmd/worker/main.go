package main

import (
	"context"
	"log"
	"time"

	"examflow/internal/activities"
	"examflow/internal/config"
	"examflow/internal/storage"
	"examflow/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.EnsureSchema(ctx, db); err != nil {
		log.Fatal(err)
	}
	a := activities.New(cfg, db)
	activities.Register(w, a)

	log.Printf("examflow worker listening on %s queue=%s temp_dir=%s", cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.TempFileDir)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
